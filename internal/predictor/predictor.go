// Package predictor estimates a drafted deck's win rate from its card
// quality, curve shape, synergy strength, role coverage, and consistency.
package predictor

import (
	"context"
	"math"

	"github.com/Shun-123/shadowverse-2pick/internal/cards"
	"github.com/Shun-123/shadowverse-2pick/internal/deck"
	"github.com/Shun-123/shadowverse-2pick/internal/synergy"
)

// factorWeights are empirically tuned contributions to the prediction.
var factorWeights = map[string]float64{
	"avg_rating":       0.30,
	"curve_quality":    0.25,
	"synergy_strength": 0.20,
	"role_coverage":    0.15,
	"consistency":      0.10,
}

// curveIdeal is the reference distribution for curve quality scoring.
var curveIdeal = map[int]int{1: 4, 2: 6, 3: 6, 4: 5, 5: 4, 6: 2}

// coverageTargets are the role counts a complete deck should reach.
var coverageTargets = map[string]int{
	cards.RoleRemoval:    3,
	cards.RoleDraw:       2,
	cards.RoleFinisher:   2,
	cards.RoleProtection: 2,
}

// Prediction is the estimated win rate with its contributing factors.
type Prediction struct {
	WinRate         float64            `json:"win_rate"`
	Confidence      float64            `json:"confidence"`
	Factors         map[string]float64 `json:"factors"`
	Recommendations []string           `json:"recommendations,omitempty"`
}

// Predictor scores deck strength. It resolves cards through the same
// source the advisor uses.
type Predictor struct {
	src       cards.Source
	synergies *synergy.Engine
}

// New creates a predictor over the given card source.
func New(src cards.Source) *Predictor {
	return &Predictor{src: src, synergies: synergy.NewEngine(src)}
}

// Predict estimates the win rate for the given deck. An empty deck yields
// the 50% baseline with zero confidence.
func (p *Predictor) Predict(ctx context.Context, deckIDs []string) (*Prediction, error) {
	if len(deckIDs) == 0 {
		return &Prediction{WinRate: 50.0, Factors: map[string]float64{}}, nil
	}

	state, err := deck.Analyze(ctx, p.src, deckIDs)
	if err != nil {
		return nil, err
	}
	synAnalysis, err := p.synergies.AnalyzeDeck(ctx, deckIDs)
	if err != nil {
		return nil, err
	}
	avgRating, err := p.averageRating(ctx, deckIDs)
	if err != nil {
		return nil, err
	}

	factors := map[string]float64{
		"avg_rating":       normalizeRating(avgRating),
		"curve_quality":    curveQuality(state.Curve),
		"synergy_strength": math.Min(synAnalysis.SynergyScore/20, 1.0),
		"role_coverage":    roleCoverage(state.Roles),
		"consistency":      consistency(deckIDs),
	}

	var weighted float64
	for name, value := range factors {
		weighted += value * factorWeights[name]
	}

	winRate := 35 + weighted*40
	if winRate < 25 {
		winRate = 25
	}
	if winRate > 85 {
		winRate = 85
	}

	confidence := float64(len(deckIDs) * 4)
	if confidence > 100 {
		confidence = 100
	}

	rounded := make(map[string]float64, len(factors))
	for name, value := range factors {
		rounded[name] = math.Round(value*100) / 100
	}

	return &Prediction{
		WinRate:         math.Round(winRate*10) / 10,
		Confidence:      confidence,
		Factors:         rounded,
		Recommendations: recommendations(factors),
	}, nil
}

func (p *Predictor) averageRating(ctx context.Context, deckIDs []string) (float64, error) {
	var sum float64
	count := 0
	for _, id := range deckIDs {
		card, err := p.src.GetCard(ctx, id)
		if err != nil {
			return 0, err
		}
		if card == nil {
			continue
		}
		sum += card.BaseRating()
		count++
	}
	if count == 0 {
		return cards.DefaultBaseRating, nil
	}
	return sum / float64(count), nil
}

// normalizeRating maps the usable rating band [40, 70] to [0, 1].
func normalizeRating(rating float64) float64 {
	v := (rating - 40) / 30
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func curveQuality(curve map[int]int) float64 {
	total := 0
	for _, count := range curve {
		total += count
	}
	if total == 0 {
		return 0.5
	}

	var quality float64
	for cost, ideal := range curveIdeal {
		expected := float64(ideal) * float64(total) / float64(deck.DeckSize)
		diff := math.Abs(float64(curve[cost]) - expected)
		costQuality := 1 - diff/3
		if costQuality < 0 {
			costQuality = 0
		}
		quality += costQuality
	}
	return quality / float64(len(curveIdeal))
}

func roleCoverage(roles map[string]int) float64 {
	var coverage float64
	for role, target := range coverageTargets {
		coverage += math.Min(float64(roles[role])/float64(target), 1.0)
	}
	return coverage / float64(len(coverageTargets))
}

// consistency rewards duplicate copies, which make draws more repeatable.
func consistency(deckIDs []string) float64 {
	counts := make(map[string]int)
	for _, id := range deckIDs {
		counts[id]++
	}
	duplicates := 0
	for _, count := range counts {
		if count >= 2 {
			duplicates++
		}
	}
	return math.Min(float64(duplicates)/4, 1.0)
}

func recommendations(factors map[string]float64) []string {
	var recs []string
	if factors["avg_rating"] < 0.6 {
		recs = append(recs, "Prioritize higher-rated cards")
	}
	if factors["curve_quality"] < 0.6 {
		recs = append(recs, "Improve the mana curve, especially at 2-4 cost")
	}
	if factors["synergy_strength"] < 0.4 {
		recs = append(recs, "Pick with synergies in mind")
	}
	if factors["role_coverage"] < 0.6 {
		recs = append(recs, "Balance removal, draw, and finishers")
	}
	if len(recs) == 0 {
		recs = append(recs, "A well-balanced, strong deck")
	}
	return recs
}
