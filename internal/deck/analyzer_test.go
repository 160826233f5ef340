package deck

import (
	"context"
	"testing"

	"github.com/Shun-123/shadowverse-2pick/internal/cards"
)

// mapSource serves cards from a fixed map.
type mapSource map[string]*cards.Card

func (s mapSource) GetCard(_ context.Context, id string) (*cards.Card, error) {
	return s[id], nil
}

func testCard(id string, cost int, roles ...string) *cards.Card {
	return &cards.Card{
		ID:    id,
		Name:  "Card " + id,
		Cost:  cost,
		Type:  cards.TypeFollower,
		Roles: roles,
	}
}

func TestAnalyzeCountsFullInput(t *testing.T) {
	src := mapSource{
		"1": testCard("1", 2, cards.RoleRemoval),
		"2": testCard("2", 3),
	}

	// "99" is unknown: it still counts toward TotalCards but adds
	// nothing to curve or roles.
	st, err := Analyze(context.Background(), src, []string{"1", "2", "99"})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if st.TotalCards != 3 {
		t.Errorf("TotalCards = %d, want 3", st.TotalCards)
	}
	if st.Curve[2] != 1 || st.Curve[3] != 1 {
		t.Errorf("Curve = %v, want one card each at 2 and 3", st.Curve)
	}
	if st.Roles[cards.RoleRemoval] != 1 {
		t.Errorf("Roles = %v, want one removal", st.Roles)
	}
}

func TestCurveBonusShortage(t *testing.T) {
	// Half-drafted deck with no 2-drops: target is 6*(15/30)=3, so the
	// shortage caps the bonus at 15 before the early-game multiplier.
	st := &State{TotalCards: 15, Curve: map[int]int{}, Roles: map[string]int{}}

	late := CurveBonus(2, st, 12)
	if late != 15 {
		t.Errorf("CurveBonus(cost 2, late pick) = %v, want 15", late)
	}

	early := CurveBonus(2, st, 5)
	if early != 15*1.3 {
		t.Errorf("CurveBonus(cost 2, early pick) = %v, want %v", early, 15*1.3)
	}
}

func TestCurveBonusExcess(t *testing.T) {
	st := &State{
		TotalCards: 30,
		Curve:      map[int]int{3: 12},
		Roles:      map[string]int{},
	}

	// Target 6, current 12 = double the 1.5x ceiling; penalty caps at -10.
	if got := CurveBonus(3, st, 14); got != -10 {
		t.Errorf("CurveBonus = %v, want -10", got)
	}
}

func TestCurveBonusAtTarget(t *testing.T) {
	st := &State{
		TotalCards: 30,
		Curve:      map[int]int{4: 5},
		Roles:      map[string]int{},
	}
	if got := CurveBonus(4, st, 14); got != 0 {
		t.Errorf("CurveBonus at target = %v, want 0", got)
	}
}

func TestRoleBonus(t *testing.T) {
	st := &State{
		TotalCards: 10,
		Curve:      map[int]int{},
		Roles:      map[string]int{cards.RoleDraw: 6},
	}

	// No removal yet: shortage of 4 caps at +12.
	if got := RoleBonus([]string{cards.RoleRemoval}, st); got != 12 {
		t.Errorf("RoleBonus(removal) = %v, want 12", got)
	}

	// Draw is saturated at double its target of 3: flat -5.
	if got := RoleBonus([]string{cards.RoleDraw}, st); got != -5 {
		t.Errorf("RoleBonus(draw) = %v, want -5", got)
	}

	// Untracked roles contribute nothing.
	if got := RoleBonus([]string{cards.RoleHeal}, st); got != 0 {
		t.Errorf("RoleBonus(heal) = %v, want 0", got)
	}
}
