// Package cards defines the Shadowverse card model shared by the
// 2Pick scoring engines, and the store/resolver contracts used to
// look cards up.
package cards

import (
	"context"
	"strings"
)

// CraftID identifies a card's class. Craft 0 is neutral; crafts 1-7
// are the playable classes.
type CraftID int

const (
	CraftNeutral CraftID = iota
	CraftForest
	CraftSword
	CraftRune
	CraftDragon
	CraftAbyss
	CraftHaven
	CraftPortal
)

var craftNames = map[CraftID]string{
	CraftNeutral: "Neutral",
	CraftForest:  "Forestcraft",
	CraftSword:   "Swordcraft",
	CraftRune:    "Runecraft",
	CraftDragon:  "Dragoncraft",
	CraftAbyss:   "Abysscraft",
	CraftHaven:   "Havencraft",
	CraftPortal:  "Portalcraft",
}

// String returns the display name for the craft.
func (c CraftID) String() string {
	if name, ok := craftNames[c]; ok {
		return name
	}
	return "Unknown"
}

// CardType identifies the kind of card.
type CardType string

const (
	TypeFollower        CardType = "follower"
	TypeSpell           CardType = "spell"
	TypeAmulet          CardType = "amulet"
	TypeCountdownAmulet CardType = "countdown_amulet"
)

// Rarity is a card's rarity tier.
type Rarity string

const (
	RarityBronze    Rarity = "bronze"
	RaritySilver    Rarity = "silver"
	RarityGold      Rarity = "gold"
	RarityLegendary Rarity = "legendary"
)

// Role tags describe what a card does for the deck. The vocabulary is
// fixed; the rating and role-bonus tables key off these values.
const (
	RoleRemoval    = "removal"
	RoleAOE        = "aoe"
	RoleDraw       = "draw"
	RoleFinisher   = "finisher"
	RoleProtection = "protection"
	RoleHeal       = "heal"
)

// Keyword tags recognized by the rating model.
const (
	KeywordStorm             = "storm"
	KeywordRush              = "rush"
	KeywordWard              = "ward"
	KeywordNecromancyTrigger = "necromancy-trigger"
	KeywordDrain             = "drain"
	KeywordFanfare           = "fanfare"
	KeywordLastword          = "lastword"
	KeywordAwakening         = "awakening"
)

// DefaultBaseRating is substituted when a card has no computed metrics.
const DefaultBaseRating = 50.0

// Card is the immutable reference data for a single card. It is
// populated by the external data pipeline and read-only here.
type Card struct {
	ID     string   `json:"card_id"`
	Name   string   `json:"name"`
	Craft  CraftID  `json:"class_id"`
	Cost   int      `json:"cost"`
	Type   CardType `json:"card_type"`
	Rarity Rarity   `json:"rarity"`

	// Attack/Defense are set for followers only.
	Attack  *int `json:"attack,omitempty"`
	Defense *int `json:"defense,omitempty"`

	Roles    []string `json:"roles"`
	Keywords []string `json:"keywords"`

	SkillText        string `json:"skill_text"`
	EvolvedSkillText string `json:"evo_skill_text"`

	IsToken bool `json:"is_token"`

	// Metrics is the derived rating breakdown, nil until built.
	Metrics *Metrics `json:"metrics,omitempty"`
}

// Metrics is the derived per-card rating breakdown. BaseRating is a
// deterministic pure function of the card's attributes; the component
// scores are persisted for explainability.
type Metrics struct {
	BaseRating     float64 `json:"base_rating"`
	StatEfficiency float64 `json:"stat_efficiency"`
	RoleScore      float64 `json:"role_score"`
	KeywordScore   float64 `json:"keyword_score"`
	RarityBonus    float64 `json:"rarity_bonus"`
	ImpactScore    float64 `json:"impact_score"`
}

// CombinedText returns the card's base and evolved skill text joined
// for pattern matching.
func (c *Card) CombinedText() string {
	return c.SkillText + " " + c.EvolvedSkillText
}

// HasKeyword reports whether the card carries the given keyword tag.
func (c *Card) HasKeyword(keyword string) bool {
	for _, kw := range c.Keywords {
		if strings.EqualFold(kw, keyword) {
			return true
		}
	}
	return false
}

// BaseRating returns the computed base rating, or DefaultBaseRating
// when metrics have not been built for this card.
func (c *Card) BaseRating() float64 {
	if c.Metrics == nil {
		return DefaultBaseRating
	}
	return c.Metrics.BaseRating
}

// Source provides card lookups for the scoring engines. A nil card
// with a nil error means the id is unknown; engines skip such entries
// rather than failing.
type Source interface {
	GetCard(ctx context.Context, id string) (*Card, error)
}

// Store is the full card-store contract backed by persistent storage.
type Store interface {
	Source

	// SearchByName returns non-token cards whose name starts with the
	// given prefix, shortest name first.
	SearchByName(ctx context.Context, prefix string, limit int) ([]*Card, error)
}
