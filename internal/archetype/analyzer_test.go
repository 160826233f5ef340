package archetype

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/Shun-123/shadowverse-2pick/internal/cards"
)

type mapSource map[string]*cards.Card

func (s mapSource) GetCard(_ context.Context, id string) (*cards.Card, error) {
	return s[id], nil
}

// necroDeck builds n abyss cards matching the Necromancy archetype's
// key patterns plus the source serving them.
func necroDeck(n int) (mapSource, []string) {
	src := mapSource{}
	var ids []string
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("n%d", i)
		src[id] = &cards.Card{
			ID:        id,
			Name:      "Card " + id,
			Craft:     cards.CraftAbyss,
			Cost:      2,
			Type:      cards.TypeFollower,
			SkillText: "Necromancy (4): Deal 2 damage.",
		}
		ids = append(ids, id)
	}
	return src, ids
}

func TestAnalyzeDeckEmpty(t *testing.T) {
	analysis, err := NewAnalyzer(mapSource{}).AnalyzeDeck(context.Background(), nil)
	if err != nil {
		t.Fatalf("AnalyzeDeck failed: %v", err)
	}
	if analysis.Detected != "" {
		t.Errorf("Detected = %q, want empty", analysis.Detected)
	}
	if analysis.Confidence != 0 {
		t.Errorf("Confidence = %v, want 0", analysis.Confidence)
	}
	if len(analysis.Recommendations) != 1 || !strings.Contains(analysis.Recommendations[0], "balanced") {
		t.Errorf("Recommendations = %v, want one generic line", analysis.Recommendations)
	}
}

func TestAnalyzeDeckDetects(t *testing.T) {
	src, ids := necroDeck(5)
	analysis, err := NewAnalyzer(src).AnalyzeDeck(context.Background(), ids)
	if err != nil {
		t.Fatalf("AnalyzeDeck failed: %v", err)
	}

	if analysis.Detected != "Necromancy" {
		t.Fatalf("Detected = %q, want Necromancy", analysis.Detected)
	}
	// 5 matching cards, score 10, confidence min(90, 80) = 80.
	if analysis.Confidence != 80 {
		t.Errorf("Confidence = %v, want 80", analysis.Confidence)
	}
	if len(analysis.Recommendations) == 0 || !strings.HasPrefix(analysis.Recommendations[0], "Strategy:") {
		t.Errorf("Recommendations = %v, want strategy line first", analysis.Recommendations)
	}
	// All five cards sit at cost 2 (ideal 5), so every other tracked
	// slot is short and gets its own line.
	found := false
	for _, rec := range analysis.Recommendations[1:] {
		if strings.Contains(rec, "1-cost") {
			found = true
		}
	}
	if !found {
		t.Errorf("Recommendations = %v, want a 1-cost shortage line", analysis.Recommendations)
	}
}

func TestAnalyzeDeckBelowThreshold(t *testing.T) {
	src, ids := necroDeck(3)
	analysis, err := NewAnalyzer(src).AnalyzeDeck(context.Background(), ids)
	if err != nil {
		t.Fatalf("AnalyzeDeck failed: %v", err)
	}
	if analysis.Detected != "" {
		t.Errorf("Detected = %q, want empty below MinCards", analysis.Detected)
	}
}

func TestAnalyzeDeckConfidenceCap(t *testing.T) {
	src, ids := necroDeck(20)
	analysis, err := NewAnalyzer(src).AnalyzeDeck(context.Background(), ids)
	if err != nil {
		t.Fatalf("AnalyzeDeck failed: %v", err)
	}
	if analysis.Confidence != 90 {
		t.Errorf("Confidence = %v, want cap at 90", analysis.Confidence)
	}
}

func TestCandidateBonusAllOrNothing(t *testing.T) {
	src, ids := necroDeck(5)
	src["match"] = &cards.Card{
		ID:        "match",
		Name:      "Shadow Reaper",
		Craft:     cards.CraftAbyss,
		Cost:      4,
		Type:      cards.TypeFollower,
		SkillText: "Gain 2 shadows.",
	}
	src["miss"] = &cards.Card{
		ID:        "miss",
		Name:      "Plain Goblin",
		Craft:     cards.CraftNeutral,
		Cost:      1,
		Type:      cards.TypeFollower,
		SkillText: "",
	}

	analyzer := NewAnalyzer(src)

	bonus, reasons, err := analyzer.CandidateBonus(context.Background(), "match", ids)
	if err != nil {
		t.Fatalf("CandidateBonus failed: %v", err)
	}
	if bonus != 8.0 {
		t.Errorf("bonus = %v, want exactly 8.0", bonus)
	}
	if len(reasons) != 1 || !strings.Contains(reasons[0], "Necromancy") {
		t.Errorf("reasons = %v, want one Necromancy line", reasons)
	}

	bonus, reasons, err = analyzer.CandidateBonus(context.Background(), "miss", ids)
	if err != nil {
		t.Fatalf("CandidateBonus failed: %v", err)
	}
	if bonus != 0 || len(reasons) != 0 {
		t.Errorf("bonus = %v reasons = %v, want zero for non-matching card", bonus, reasons)
	}
}

func TestCandidateBonusNoArchetype(t *testing.T) {
	src, ids := necroDeck(2)
	src["cand"] = &cards.Card{
		ID:        "cand",
		Craft:     cards.CraftAbyss,
		Cost:      3,
		SkillText: "Necromancy (2): Deal 1 damage.",
	}

	bonus, _, err := NewAnalyzer(src).CandidateBonus(context.Background(), "cand", ids)
	if err != nil {
		t.Fatalf("CandidateBonus failed: %v", err)
	}
	if bonus != 0 {
		t.Errorf("bonus = %v, want 0 when no archetype detected", bonus)
	}
}
