// Package archetype classifies a 2Pick deck into one of a fixed
// catalog of named strategies per craft and scores a candidate's
// alignment with the detected plan.
package archetype

import (
	"context"
	"fmt"
	"math"

	"github.com/Shun-123/shadowverse-2pick/internal/cards"
)

// ArchetypeBonus is the flat score awarded to a candidate matching
// the detected archetype's key patterns. It is all-or-nothing: a
// candidate never earns a partial or stacked archetype bonus.
const ArchetypeBonus = 8.0

// Analysis is the result of classifying a deck.
type Analysis struct {
	// Detected is the matched archetype name, empty when no archetype
	// qualified.
	Detected string `json:"detected_archetype"`

	Description string  `json:"archetype_description,omitempty"`
	Confidence  float64 `json:"confidence"`

	// Recommendations explains the plan and flags curve slots running
	// behind the archetype's ideal counts.
	Recommendations []string `json:"recommendations"`
}

// Analyzer classifies decks against the static archetype catalog.
type Analyzer struct {
	src cards.Source
}

// NewAnalyzer creates an archetype analyzer over the given card
// source.
func NewAnalyzer(src cards.Source) *Analyzer {
	return &Analyzer{src: src}
}

// AnalyzeDeck detects the deck's archetype. Only archetypes of the
// deck's main craft are considered; each deck card matching a key
// pattern adds 2 to the archetype's score, and the archetype needs
// MinCards matches to qualify. The highest score wins, ties broken by
// catalog declaration order.
func (a *Analyzer) AnalyzeDeck(ctx context.Context, deckIDs []string) (*Analysis, error) {
	analysis := &Analysis{}
	deckCards, err := a.loadCards(ctx, deckIDs)
	if err != nil {
		return nil, err
	}
	if len(deckCards) == 0 {
		analysis.Recommendations = []string{"No clear archetype detected yet. Draft for a balanced deck."}
		return analysis, nil
	}

	main := mainClass(deckCards)

	var best *Archetype
	bestScore := 0
	for i := range catalog {
		arch := &catalog[i]
		if arch.Craft != main {
			continue
		}

		score := 0
		matching := 0
		for _, card := range deckCards {
			if matchesAny(arch.KeyPatterns, card.CombinedText()) {
				score += 2
				matching++
			}
		}

		if matching >= arch.MinCards && score > bestScore {
			best = arch
			bestScore = score
		}
	}

	if best == nil {
		analysis.Recommendations = []string{"No clear archetype detected yet. Draft for a balanced deck."}
		return analysis, nil
	}

	analysis.Detected = best.Name
	analysis.Description = best.Strategy
	analysis.Confidence = math.Min(90, float64(bestScore)*8)
	analysis.Recommendations = curveRecommendations(deckCards, best)
	return analysis, nil
}

// CandidateBonus returns the archetype bonus for a candidate: the
// flat ArchetypeBonus when the deck has a detected archetype and the
// candidate matches one of its key patterns, zero otherwise.
func (a *Analyzer) CandidateBonus(ctx context.Context, candidateID string, deckIDs []string) (float64, []string, error) {
	if len(deckIDs) == 0 {
		return 0, nil, nil
	}

	analysis, err := a.AnalyzeDeck(ctx, deckIDs)
	if err != nil {
		return 0, nil, err
	}
	if analysis.Detected == "" {
		return 0, nil, nil
	}

	candidate, err := a.src.GetCard(ctx, candidateID)
	if err != nil {
		return 0, nil, err
	}
	if candidate == nil {
		return 0, nil, nil
	}

	detected := byName(analysis.Detected)
	if detected == nil {
		return 0, nil, nil
	}

	if matchesAny(detected.KeyPatterns, candidate.CombinedText()) {
		reason := fmt.Sprintf("%s key card (+%.1f)", detected.Name, ArchetypeBonus)
		return ArchetypeBonus, []string{reason}, nil
	}
	return 0, nil, nil
}

// curveRecommendations lists the strategy line plus one line for each
// curve slot sitting below 70% of the archetype's ideal count.
func curveRecommendations(deckCards []*cards.Card, arch *Archetype) []string {
	recs := []string{"Strategy: " + arch.Strategy}

	curve := make(map[int]int)
	for _, card := range deckCards {
		cost := card.Cost
		if cost > 6 {
			cost = 6
		}
		curve[cost]++
	}

	for cost := 1; cost <= 8; cost++ {
		ideal, ok := arch.IdealCurve[cost]
		if !ok {
			continue
		}
		current := curve[cost]
		if float64(current) < float64(ideal)*0.7 {
			recs = append(recs, fmt.Sprintf("Add more %d-cost cards (%d now, %d ideal)", cost, current, ideal))
		}
	}

	return recs
}

func byName(name string) *Archetype {
	for i := range catalog {
		if catalog[i].Name == name {
			return &catalog[i]
		}
	}
	return nil
}

func (a *Analyzer) loadCards(ctx context.Context, ids []string) ([]*cards.Card, error) {
	loaded := make([]*cards.Card, 0, len(ids))
	for _, id := range ids {
		card, err := a.src.GetCard(ctx, id)
		if err != nil {
			return nil, err
		}
		if card == nil {
			continue
		}
		loaded = append(loaded, card)
	}
	return loaded, nil
}

// mainClass returns the craft with the most cards, ties broken by the
// lowest craft id.
func mainClass(deckCards []*cards.Card) cards.CraftID {
	counts := make(map[cards.CraftID]int)
	for _, card := range deckCards {
		counts[card.Craft]++
	}

	best := cards.CraftNeutral
	bestCount := -1
	for craft := cards.CraftNeutral; craft <= cards.CraftPortal; craft++ {
		if count := counts[craft]; count > bestCount {
			best = craft
			bestCount = count
		}
	}
	return best
}
