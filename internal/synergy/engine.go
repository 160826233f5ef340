// Package synergy detects enabler/payoff relationships inside a 2Pick
// deck and scores how well a candidate card plugs into them.
package synergy

import (
	"context"
	"fmt"
	"math"

	"github.com/Shun-123/shadowverse-2pick/internal/cards"
)

// RuleCount records how many deck cards matched a rule's enabler and
// payoff patterns.
type RuleCount struct {
	Enablers int `json:"enablers"`
	Payoffs  int `json:"payoffs"`
	Total    int `json:"total"`
}

// DeckAnalysis is the synergy profile of a deck.
type DeckAnalysis struct {
	// Synergies holds per-rule counts for rules with at least one
	// enabler or payoff in the deck.
	Synergies map[string]RuleCount `json:"synergies"`

	// ClassDistribution counts resolved deck cards per craft.
	ClassDistribution map[cards.CraftID]int `json:"class_distribution"`

	// MainClass is the craft with the most cards; ties go to the
	// lowest craft id so results are reproducible.
	MainClass cards.CraftID `json:"main_class"`

	// SynergyScore sums min(total*2, 10) over the recorded rules.
	SynergyScore float64 `json:"synergy_score"`
}

// Engine evaluates decks and candidates against the static rule
// catalog.
type Engine struct {
	src cards.Source
}

// NewEngine creates a synergy engine over the given card source.
func NewEngine(src cards.Source) *Engine {
	return &Engine{src: src}
}

// AnalyzeDeck builds the synergy profile for a deck. Rules from the
// deck's main craft and the neutral catalog are considered;
// unresolvable ids are skipped.
func (e *Engine) AnalyzeDeck(ctx context.Context, deckIDs []string) (*DeckAnalysis, error) {
	analysis := &DeckAnalysis{
		Synergies:         make(map[string]RuleCount),
		ClassDistribution: make(map[cards.CraftID]int),
	}
	if len(deckIDs) == 0 {
		return analysis, nil
	}

	deckCards, err := e.loadCards(ctx, deckIDs)
	if err != nil {
		return nil, err
	}
	for _, card := range deckCards {
		analysis.ClassDistribution[card.Craft]++
	}
	analysis.MainClass = mainClass(analysis.ClassDistribution)

	rules := unionRules(analysis.MainClass, cards.CraftNeutral)
	for _, r := range rules {
		count := RuleCount{}
		for _, card := range deckCards {
			text := card.CombinedText()
			if matchesAny(r.EnablerPatterns, text) {
				count.Enablers++
			}
			if matchesAny(r.PayoffPatterns, text) {
				count.Payoffs++
			}
		}
		if count.Enablers > 0 || count.Payoffs > 0 {
			count.Total = count.Enablers + count.Payoffs
			analysis.Synergies[r.Name] = count
		}
	}

	for _, count := range analysis.Synergies {
		analysis.SynergyScore += math.Min(float64(count.Total)*2, 10)
	}

	return analysis, nil
}

// CandidateBonus scores how a candidate card fits the deck's synergy
// profile. Payoff matches pay out per enabler already drafted, once
// the rule's enabler threshold is met; enabler matches pay out per
// existing payoff at reduced rate. Early picks favor enablers, late
// picks discount both.
func (e *Engine) CandidateBonus(ctx context.Context, candidateID string, deckIDs []string, pickIndex int) (float64, []string, error) {
	if len(deckIDs) == 0 {
		return 0, nil, nil
	}

	analysis, err := e.AnalyzeDeck(ctx, deckIDs)
	if err != nil {
		return 0, nil, err
	}

	candidate, err := e.src.GetCard(ctx, candidateID)
	if err != nil {
		return 0, nil, err
	}
	if candidate == nil {
		return 0, nil, nil
	}

	text := candidate.CombinedText()
	total := 0.0
	var reasons []string

	// The candidate's own craft, the deck's main craft, and neutral
	// all contribute applicable rules.
	applicable := unionRules(candidate.Craft, analysis.MainClass, cards.CraftNeutral)

	for _, r := range applicable {
		data, ok := analysis.Synergies[r.Name]
		if !ok {
			continue
		}

		isEnabler := matchesAny(r.EnablerPatterns, text)
		isPayoff := matchesAny(r.PayoffPatterns, text)

		switch {
		case isPayoff && data.Enablers >= r.MinEnablers:
			bonus := math.Min(float64(data.Enablers)*r.BonusPerCard, r.MaxBonus)
			if pickIndex > 10 {
				bonus *= 0.8
			}
			total += bonus
			reasons = append(reasons, fmt.Sprintf("%s payoff (+%.1f, %d enablers in deck)", r.Name, bonus, data.Enablers))

		case isEnabler && data.Payoffs > 0:
			bonus := math.Min(float64(data.Payoffs)*r.BonusPerCard*0.7, r.MaxBonus*0.6)
			bonus *= enablerPhaseModifier(pickIndex)
			total += bonus
			reasons = append(reasons, fmt.Sprintf("%s enabler (+%.1f)", r.Name, bonus))
		}
	}

	return math.Round(total*10) / 10, reasons, nil
}

// enablerPhaseModifier scales enabler value by draft phase: enablers
// are worth the most early and little once the deck is nearly done.
func enablerPhaseModifier(pickIndex int) float64 {
	switch {
	case pickIndex <= 6:
		return 1.2
	case pickIndex <= 10:
		return 1.0
	default:
		return 0.6
	}
}

func (e *Engine) loadCards(ctx context.Context, ids []string) ([]*cards.Card, error) {
	loaded := make([]*cards.Card, 0, len(ids))
	for _, id := range ids {
		card, err := e.src.GetCard(ctx, id)
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

// unionRules collects the rules for the given crafts in order,
// dropping rules already seen by name so overlapping crafts do not
// double-count.
func unionRules(crafts ...cards.CraftID) []Rule {
	seen := make(map[string]bool)
	var union []Rule
	for _, craft := range crafts {
		for _, r := range RulesFor(craft) {
			if seen[r.Name] {
				continue
			}
			seen[r.Name] = true
			union = append(union, r)
		}
	}
	return union
}

// mainClass returns the craft with the most cards, breaking ties by
// the lowest craft id.
func mainClass(distribution map[cards.CraftID]int) cards.CraftID {
	best := cards.CraftNeutral
	bestCount := -1
	for craft := cards.CraftNeutral; craft <= cards.CraftPortal; craft++ {
		if count := distribution[craft]; count > bestCount {
			best = craft
			bestCount = count
		}
	}
	return best
}
