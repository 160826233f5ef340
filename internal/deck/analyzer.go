// Package deck aggregates a pick-in-progress deck into the cost curve
// and role histogram the scoring engines work from, and scores how
// well a candidate card fills curve and role gaps.
package deck

import (
	"context"

	"github.com/Shun-123/shadowverse-2pick/internal/cards"
)

// DeckSize is the number of cards in a finished 2Pick deck.
const DeckSize = 30

// idealCurve is the target cost distribution for a 30-card deck.
var idealCurve = map[int]int{
	1: 4, 2: 6, 3: 6, 4: 5, 5: 4, 6: 2, 7: 1, 8: 1,
}

// roleTargets is the target count for each role in a finished deck.
var roleTargets = map[string]int{
	cards.RoleRemoval:    4,
	cards.RoleDraw:       3,
	cards.RoleFinisher:   2,
	cards.RoleProtection: 3,
	cards.RoleAOE:        2,
}

// State is the analyzed shape of the current partial deck. It is
// recomputed from the raw id list on every query, never persisted.
type State struct {
	// TotalCards counts the caller's full input list, including ids
	// that failed to resolve. Unresolved ids shift the progress-scaled
	// curve and role targets slightly upward, which matches how the
	// advisor has always been calibrated.
	TotalCards int

	// Curve maps cost to card count for resolved cards.
	Curve map[int]int

	// Roles maps role tag to count across resolved cards.
	Roles map[string]int
}

// Analyze builds the deck state for a list of card ids. Ids that do
// not resolve to a known card are skipped; a resolution failure is an
// upstream data problem, not an analyzer error.
func Analyze(ctx context.Context, src cards.Source, deckIDs []string) (*State, error) {
	st := &State{
		TotalCards: len(deckIDs),
		Curve:      make(map[int]int),
		Roles:      make(map[string]int),
	}

	for _, id := range deckIDs {
		card, err := src.GetCard(ctx, id)
		if err != nil {
			return nil, err
		}
		if card == nil {
			continue
		}

		st.Curve[card.Cost]++
		for _, role := range card.Roles {
			st.Roles[role]++
		}
	}

	return st, nil
}

// CurveBonus scores how well a card of the given cost fills the
// deck's curve. Targets scale with deck progress; shortage is
// rewarded up to +15, excess past 1.5x target penalized down to -10.
// Low-cost shortages are weighted up in the first eight picks to
// front-load the curve.
func CurveBonus(cost int, st *State, pickIndex int) float64 {
	current := float64(st.Curve[cost])

	ideal, ok := idealCurve[cost]
	if !ok {
		ideal = 1
	}
	progress := float64(st.TotalCards) / DeckSize
	target := float64(ideal) * progress

	if current < target {
		bonus := minf((target-current)*8, 15)
		if pickIndex <= 8 && cost <= 3 {
			bonus *= 1.3
		}
		return bonus
	}

	if current > target*1.5 {
		return -minf((current-target)*5, 10)
	}

	return 0
}

// RoleBonus scores how well a candidate's role tags fill the deck's
// role gaps, summed across tags. Shortage rewards up to +12 per role;
// saturation past 1.5x target costs a flat 5.
func RoleBonus(roles []string, st *State) float64 {
	bonus := 0.0

	for _, role := range roles {
		target, ok := roleTargets[role]
		if !ok {
			continue
		}

		current := st.Roles[role]
		if current < target {
			bonus += minf(float64(target-current)*6, 12)
		} else if float64(current) >= float64(target)*1.5 {
			bonus -= 5
		}
	}

	return bonus
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
