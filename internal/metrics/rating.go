// Package metrics computes the static per-card quality rating used as
// the base score during 2Pick advice. Rate is a pure function of the
// card's attributes and the fixed weight tables below; recomputing a
// card always yields the same metrics.
package metrics

import (
	"regexp"

	"github.com/Shun-123/shadowverse-2pick/internal/cards"
)

// typeBase is the starting rating for each card type.
var typeBase = map[cards.CardType]float64{
	cards.TypeFollower:        45,
	cards.TypeSpell:           50,
	cards.TypeAmulet:          40,
	cards.TypeCountdownAmulet: 42,
}

const unknownTypeBase = 45

// roleWeights score role tags by their 2Pick importance.
var roleWeights = map[string]float64{
	cards.RoleRemoval:    15,
	cards.RoleAOE:        18,
	cards.RoleDraw:       8,
	cards.RoleFinisher:   12,
	cards.RoleProtection: 8,
	cards.RoleHeal:       4,
}

var keywordWeights = map[string]float64{
	cards.KeywordStorm:             12,
	cards.KeywordRush:              8,
	cards.KeywordWard:              6,
	cards.KeywordNecromancyTrigger: 8,
	cards.KeywordDrain:             6,
	cards.KeywordFanfare:           3,
	cards.KeywordLastword:          3,
}

var rarityBonus = map[cards.Rarity]float64{
	cards.RarityBronze:    0,
	cards.RaritySilver:    5,
	cards.RarityGold:      10,
	cards.RarityLegendary: 15,
}

// expectedStats maps cost to the expected attack+defense total for a
// follower of that cost. Costs beyond the table fall back to cost*2.
var expectedStats = map[int]int{
	1: 2, 2: 4, 3: 6, 4: 8, 5: 10, 6: 12, 7: 14, 8: 16, 9: 18, 10: 20,
}

var (
	destroyPattern = regexp.MustCompile(`(?i)(destroy|banish|damage)`)
	drawPattern    = regexp.MustCompile(`(?i)draw`)
)

const tokenPenalty = 15

// Rate computes the full metrics breakdown for a card.
func Rate(card *cards.Card) cards.Metrics {
	base, ok := typeBase[card.Type]
	if !ok {
		base = unknownTypeBase
	}

	m := cards.Metrics{
		StatEfficiency: statEfficiency(card),
		RoleScore:      roleScore(card),
		KeywordScore:   keywordScore(card),
		RarityBonus:    rarityBonus[card.Rarity],
		ImpactScore:    impactScore(card),
	}

	rating := base + m.StatEfficiency + m.RoleScore + m.KeywordScore + m.RarityBonus + m.ImpactScore
	if card.IsToken {
		rating -= tokenPenalty
	}

	m.BaseRating = clamp(rating, 10, 95)
	return m
}

// statEfficiency scores a follower's stats against the expected total
// for its cost, 2 points per point of difference. Non-followers and
// followers with missing stats score zero.
func statEfficiency(card *cards.Card) float64 {
	if card.Type != cards.TypeFollower || card.Attack == nil || card.Defense == nil {
		return 0
	}
	actual := *card.Attack + *card.Defense
	expected, ok := expectedStats[card.Cost]
	if !ok {
		expected = card.Cost * 2
	}
	return float64(actual-expected) * 2.0
}

func roleScore(card *cards.Card) float64 {
	score := 0.0
	for _, role := range card.Roles {
		score += roleWeights[role]
	}
	return score
}

func keywordScore(card *cards.Card) float64 {
	score := 0.0
	for _, kw := range card.Keywords {
		score += keywordWeights[kw]
	}
	// Dragoncraft's ramp plan makes awakening effects come online early.
	if card.Craft == cards.CraftDragon && card.HasKeyword(cards.KeywordAwakening) {
		score += 5
	}
	return score
}

// impactScore estimates how much a card affects the board the turn it
// is played. Expensive cards with no immediate impact are penalized.
func impactScore(card *cards.Card) float64 {
	score := 0.0

	if card.Type == cards.TypeSpell {
		score += 8
	}

	if card.HasKeyword(cards.KeywordStorm) {
		score += 10
	} else if card.HasKeyword(cards.KeywordRush) {
		score += 6
	}

	if destroyPattern.MatchString(card.SkillText) {
		score += 8
	}
	if drawPattern.MatchString(card.SkillText) {
		score += 5
	}

	if card.Cost >= 6 && score == 0 {
		score -= 8
	}

	return score
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
