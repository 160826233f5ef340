// Package advisor combines the rating, curve, role, synergy, archetype,
// and meta components into weighted pick advice for a running 2Pick draft.
package advisor

import (
	"context"
	"fmt"
	"math"

	"github.com/Shun-123/shadowverse-2pick/internal/archetype"
	"github.com/Shun-123/shadowverse-2pick/internal/cards"
	"github.com/Shun-123/shadowverse-2pick/internal/deck"
	"github.com/Shun-123/shadowverse-2pick/internal/metrics"
	"github.com/Shun-123/shadowverse-2pick/internal/predictor"
	"github.com/Shun-123/shadowverse-2pick/internal/synergy"
)

// Scoring factors, in the order they are reported and trained.
const (
	FactorBase        = "base"
	FactorCurve       = "curve"
	FactorRole        = "role"
	FactorDuplication = "duplication"
	FactorSynergy     = "synergy"
	FactorArchetype   = "archetype"
	FactorMeta        = "meta"
)

// Factors lists every scoring factor in canonical order.
var Factors = []string{
	FactorBase,
	FactorCurve,
	FactorRole,
	FactorDuplication,
	FactorSynergy,
	FactorArchetype,
	FactorMeta,
}

// Weights maps a scoring factor to its multiplier.
type Weights map[string]float64

// DefaultWeights returns the neutral weighting of 1.0 per factor.
func DefaultWeights() Weights {
	w := make(Weights, len(Factors))
	for _, f := range Factors {
		w[f] = 1.0
	}
	return w
}

// WeightStore persists factor weights across sessions. Implementations
// must return a consistent snapshot from GetWeights even while a
// SetWeights is in flight.
type WeightStore interface {
	GetWeights(ctx context.Context) (Weights, error)
	SetWeights(ctx context.Context, w Weights) error
}

// MetaSource supplies external score nudges keyed by card id, archetype
// name, or craft name. Unknown keys contribute zero.
type MetaSource interface {
	Adjustment(keys ...string) float64
}

// Pick actions.
const (
	ActionPick   = "pick"
	ActionReroll = "reroll"
)

// CardScore is the full per-candidate score breakdown. Component scores
// are stored unweighted; FinalScore applies the factor weights.
type CardScore struct {
	CardID           string   `json:"card_id"`
	Name             string   `json:"name"`
	Cost             int      `json:"cost"`
	BaseScore        float64  `json:"base_score"`
	CurveBonus       float64  `json:"curve_bonus"`
	RoleBonus        float64  `json:"role_bonus"`
	Duplication      float64  `json:"duplication_penalty"`
	SynergyBonus     float64  `json:"synergy_bonus"`
	ArchetypeBonus   float64  `json:"archetype_bonus"`
	MetaAdjustment   float64  `json:"meta_adjustment"`
	FinalScore       float64  `json:"final_score"`
	SynergyReasons   []string `json:"synergy_reasons,omitempty"`
	ArchetypeReasons []string `json:"archetype_reasons,omitempty"`
}

// Component returns the unweighted score for the given factor.
func (s *CardScore) Component(factor string) float64 {
	switch factor {
	case FactorBase:
		return s.BaseScore
	case FactorCurve:
		return s.CurveBonus
	case FactorRole:
		return s.RoleBonus
	case FactorDuplication:
		return s.Duplication
	case FactorSynergy:
		return s.SynergyBonus
	case FactorArchetype:
		return s.ArchetypeBonus
	case FactorMeta:
		return s.MetaAdjustment
	}
	return 0
}

// PickAdvice is the advisor's answer for a single two-card offer.
type PickAdvice struct {
	Action              string       `json:"action"`
	RecommendedCardID   string       `json:"recommended_card_id,omitempty"`
	RecommendedCardName string       `json:"recommended_card_name,omitempty"`
	Confidence          float64      `json:"confidence"`
	Reasoning           []string     `json:"reasoning"`
	CardScores          []*CardScore `json:"card_scores"`
}

// DeckReport bundles the basic deck state with the synergy, archetype,
// and win-rate views for display.
type DeckReport struct {
	State      *deck.State           `json:"state"`
	Synergies  *synergy.DeckAnalysis `json:"synergy_analysis"`
	Archetype  *archetype.Analysis   `json:"archetype_analysis"`
	Prediction *predictor.Prediction `json:"win_prediction"`
}

// Advisor scores 2Pick candidates against the current deck.
type Advisor struct {
	src        cards.Source
	synergies  *synergy.Engine
	archetypes *archetype.Analyzer
	weights    WeightStore
	meta       MetaSource
}

// New creates an advisor over the given card source. weights may be nil,
// in which case every factor stays at its 1.0 default; meta may be nil,
// in which case the meta term is always zero.
func New(src cards.Source, weights WeightStore, meta MetaSource) *Advisor {
	return &Advisor{
		src:        src,
		synergies:  synergy.NewEngine(src),
		archetypes: archetype.NewAnalyzer(src),
		weights:    weights,
		meta:       meta,
	}
}

// RateCard recomputes the static metric breakdown for a single card.
func (a *Advisor) RateCard(ctx context.Context, cardID string) (*cards.Card, *cards.Metrics, error) {
	card, err := a.src.GetCard(ctx, cardID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load card %s: %w", cardID, err)
	}
	if card == nil {
		return nil, nil, nil
	}
	m := metrics.Rate(card)
	return card, &m, nil
}

// AnalyzeDeck returns the curve and role state of the deck.
func (a *Advisor) AnalyzeDeck(ctx context.Context, deckIDs []string) (*deck.State, error) {
	return deck.Analyze(ctx, a.src, deckIDs)
}

// AnalyzeDeckSynergies reports enabler/payoff counts per synergy rule.
func (a *Advisor) AnalyzeDeckSynergies(ctx context.Context, deckIDs []string) (*synergy.DeckAnalysis, error) {
	return a.synergies.AnalyzeDeck(ctx, deckIDs)
}

// AnalyzeDeckArchetype detects the deck's archetype, if any.
func (a *Advisor) AnalyzeDeckArchetype(ctx context.Context, deckIDs []string) (*archetype.Analysis, error) {
	return a.archetypes.AnalyzeDeck(ctx, deckIDs)
}

// AnalyzeDeckDetailed combines the basic, synergy, archetype, and
// win-rate views in one report.
func (a *Advisor) AnalyzeDeckDetailed(ctx context.Context, deckIDs []string) (*DeckReport, error) {
	state, err := deck.Analyze(ctx, a.src, deckIDs)
	if err != nil {
		return nil, err
	}
	synAnalysis, err := a.synergies.AnalyzeDeck(ctx, deckIDs)
	if err != nil {
		return nil, err
	}
	archAnalysis, err := a.archetypes.AnalyzeDeck(ctx, deckIDs)
	if err != nil {
		return nil, err
	}
	prediction, err := predictor.New(a.src).Predict(ctx, deckIDs)
	if err != nil {
		return nil, err
	}
	return &DeckReport{
		State:      state,
		Synergies:  synAnalysis,
		Archetype:  archAnalysis,
		Prediction: prediction,
	}, nil
}

// GetPickAdvice scores each candidate against the current deck and
// decides between picking the best one and rerolling the offer.
func (a *Advisor) GetPickAdvice(ctx context.Context, candidateIDs, deckIDs []string, pickIndex, rerollsLeft int) (*PickAdvice, error) {
	state, err := deck.Analyze(ctx, a.src, deckIDs)
	if err != nil {
		return nil, err
	}

	weights, err := a.loadWeights(ctx)
	if err != nil {
		return nil, err
	}

	detected := ""
	if a.meta != nil {
		archAnalysis, err := a.archetypes.AnalyzeDeck(ctx, deckIDs)
		if err != nil {
			return nil, err
		}
		detected = archAnalysis.Detected
	}

	var scores []*CardScore
	for _, cardID := range candidateIDs {
		card, err := a.src.GetCard(ctx, cardID)
		if err != nil {
			return nil, fmt.Errorf("failed to load candidate %s: %w", cardID, err)
		}
		if card == nil {
			continue
		}

		score := &CardScore{
			CardID:     cardID,
			Name:       card.Name,
			Cost:       card.Cost,
			BaseScore:  card.BaseRating(),
			CurveBonus: deck.CurveBonus(card.Cost, state, pickIndex),
			RoleBonus:  deck.RoleBonus(card.Roles, state),
		}

		occurrences := 0
		for _, id := range deckIDs {
			if id == cardID {
				occurrences++
			}
		}
		score.Duplication = -5.0 * float64(occurrences)

		score.SynergyBonus, score.SynergyReasons, err = a.synergies.CandidateBonus(ctx, cardID, deckIDs, pickIndex)
		if err != nil {
			return nil, err
		}
		score.ArchetypeBonus, score.ArchetypeReasons, err = a.archetypes.CandidateBonus(ctx, cardID, deckIDs)
		if err != nil {
			return nil, err
		}
		if a.meta != nil {
			score.MetaAdjustment = a.meta.Adjustment(cardID, detected, card.Craft.String())
		}

		var final float64
		for _, f := range Factors {
			final += weights[f] * score.Component(f)
		}
		score.FinalScore = round1(final)
		score.BaseScore = round1(score.BaseScore)
		score.CurveBonus = round1(score.CurveBonus)
		score.RoleBonus = round1(score.RoleBonus)
		score.SynergyBonus = round1(score.SynergyBonus)
		score.ArchetypeBonus = round1(score.ArchetypeBonus)
		score.MetaAdjustment = round1(score.MetaAdjustment)

		scores = append(scores, score)
	}

	if len(scores) == 0 {
		return &PickAdvice{
			Action:     ActionPick,
			Confidence: 0,
			Reasoning:  []string{"No candidate could be evaluated"},
		}, nil
	}

	// Argmax with first-in-input tie-break.
	best := scores[0]
	for _, s := range scores[1:] {
		if s.FinalScore > best.FinalScore {
			best = s
		}
	}

	threshold := rerollThreshold(pickIndex, rerollsLeft, state)
	shouldReroll := rerollsLeft > 0 && best.FinalScore < threshold

	var reasoning []string
	if shouldReroll {
		reasoning = append(reasoning,
			fmt.Sprintf("Best score %.1f is below the reroll threshold %.1f", best.FinalScore, threshold),
			fmt.Sprintf("Rerolls left: %d", rerollsLeft))
	} else {
		reasoning = append(reasoning, fmt.Sprintf("Pick %s (score: %.1f)", best.Name, best.FinalScore))
		if best.CurveBonus > 0 {
			reasoning = append(reasoning, fmt.Sprintf("Curve improvement: +%.1f", best.CurveBonus))
		}
		if best.RoleBonus > 0 {
			reasoning = append(reasoning, fmt.Sprintf("Role coverage: +%.1f", best.RoleBonus))
		}
		if best.SynergyBonus > 0 {
			reasoning = append(reasoning, fmt.Sprintf("Synergy: +%.1f", best.SynergyBonus))
			for i, reason := range best.SynergyReasons {
				if i >= 2 {
					break
				}
				reasoning = append(reasoning, "  - "+reason)
			}
		}
		if best.ArchetypeBonus > 0 {
			reasoning = append(reasoning, fmt.Sprintf("Archetype fit: +%.1f", best.ArchetypeBonus))
			if len(best.ArchetypeReasons) > 0 {
				reasoning = append(reasoning, "  - "+best.ArchetypeReasons[0])
			}
		}
		if best.MetaAdjustment != 0 {
			reasoning = append(reasoning, fmt.Sprintf("Meta adjustment: %+.1f", best.MetaAdjustment))
		}
	}

	confidence := math.Abs(best.FinalScore-60) + 50
	if confidence > 95 {
		confidence = 95
	}
	if confidence < 50 {
		confidence = 50
	}

	advice := &PickAdvice{
		Action:     ActionPick,
		Confidence: confidence,
		Reasoning:  reasoning,
		CardScores: scores,
	}
	if shouldReroll {
		advice.Action = ActionReroll
	} else {
		advice.RecommendedCardID = best.CardID
		advice.RecommendedCardName = best.Name
	}
	return advice, nil
}

func (a *Advisor) loadWeights(ctx context.Context) (Weights, error) {
	if a.weights == nil {
		return DefaultWeights(), nil
	}
	w, err := a.weights.GetWeights(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load weights: %w", err)
	}
	// Missing factors fall back to 1.0 so a partial stored mapping
	// never zeroes out a component.
	full := DefaultWeights()
	for f, v := range w {
		full[f] = v
	}
	return full, nil
}

// rerollThreshold computes the score a best candidate must reach to be
// picked instead of rerolled.
func rerollThreshold(pickIndex, rerollsLeft int, state *deck.State) float64 {
	threshold := 60.0

	switch {
	case pickIndex <= 5:
		threshold += 8 // stay picky early
	case pickIndex <= 10:
		// mid-draft, no adjustment
	default:
		threshold -= 8 // settle late
	}

	rerollAdj := float64(rerollsLeft * 4)
	if rerollAdj > 12 {
		rerollAdj = 12
	}
	threshold += rerollAdj

	if state.Roles[cards.RoleRemoval] == 0 && pickIndex >= 8 {
		threshold += 10
	}
	if state.Curve[1]+state.Curve[2] <= 2 && pickIndex >= 6 {
		threshold += 8
	}

	if threshold < 45 {
		threshold = 45
	}
	if threshold > 80 {
		threshold = 80
	}
	return threshold
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
