package archetype

import (
	"regexp"

	"github.com/Shun-123/shadowverse-2pick/internal/cards"
)

// Archetype is one named deck strategy in the static catalog. A deck
// qualifies when at least MinCards of its cards match a key pattern.
type Archetype struct {
	Name        string
	Craft       cards.CraftID
	KeyPatterns []*regexp.Regexp

	// IdealCurve is the target cost distribution while on this plan.
	IdealCurve map[int]int

	Strategy string
	MinCards int
}

func patterns(exprs ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, len(exprs))
	for i, expr := range exprs {
		compiled[i] = regexp.MustCompile(`(?i)` + expr)
	}
	return compiled
}

// catalog lists every known archetype. Declaration order is the
// tie-break when two archetypes score equally, so keep it stable.
var catalog = []Archetype{
	{
		Name:        "Fairy Tempo",
		Craft:       cards.CraftForest,
		KeyPatterns: patterns(`fairy`, `combo \([2-4]\)`),
		IdealCurve:  map[int]int{1: 4, 2: 6, 3: 5, 4: 4, 5: 3},
		Strategy:    "Swarm the early board with fairies and keep pressing tempo",
		MinCards:    4,
	},
	{
		Name:        "Soldier Swarm",
		Craft:       cards.CraftSword,
		KeyPatterns: patterns(`soldier`, `commander`, `rally`),
		IdealCurve:  map[int]int{1: 3, 2: 7, 3: 6, 4: 4, 5: 3},
		Strategy:    "Flood the board with soldiers and buff them with commanders",
		MinCards:    5,
	},
	{
		Name:        "Spellboost",
		Craft:       cards.CraftRune,
		KeyPatterns: patterns(`spellboost`, `spell`),
		IdealCurve:  map[int]int{1: 3, 2: 4, 3: 5, 4: 6, 5: 5},
		Strategy:    "Boost spells cheaply, then cash in with discounted threats",
		MinCards:    6,
	},
	{
		Name:        "Earth Rite",
		Craft:       cards.CraftRune,
		KeyPatterns: patterns(`earth sigil`, `earth rite`),
		IdealCurve:  map[int]int{1: 4, 2: 6, 3: 5, 4: 4, 5: 3},
		Strategy:    "Bank earth sigils and spend them on efficient removal",
		MinCards:    4,
	},
	{
		Name:        "Ramp",
		Craft:       cards.CraftDragon,
		KeyPatterns: patterns(`play point`, `awakening`),
		IdealCurve:  map[int]int{1: 2, 2: 4, 3: 3, 4: 4, 5: 5, 6: 4},
		Strategy:    "Accelerate play points into oversized late-game threats",
		MinCards:    3,
	},
	{
		Name:        "Necromancy",
		Craft:       cards.CraftAbyss,
		KeyPatterns: patterns(`necromancy`, `shadows?`),
		IdealCurve:  map[int]int{1: 4, 2: 5, 3: 5, 4: 4, 5: 4},
		Strategy:    "Stockpile shadows early and convert them into value late",
		MinCards:    4,
	},
	{
		Name:        "Ward & Heal",
		Craft:       cards.CraftHaven,
		KeyPatterns: patterns(`ward`, `restore.*defense`, `countdown`),
		IdealCurve:  map[int]int{1: 3, 2: 5, 3: 4, 4: 5, 5: 4},
		Strategy:    "Stall behind wards and healing, then win the long game",
		MinCards:    5,
	},
	{
		Name:        "Artifact",
		Craft:       cards.CraftPortal,
		KeyPatterns: patterns(`artifact`, `fusion`),
		IdealCurve:  map[int]int{1: 3, 2: 4, 3: 5, 4: 5, 5: 4},
		Strategy:    "Generate artifacts and grind value from every one",
		MinCards:    4,
	},
}

// Catalog returns the full archetype catalog in declaration order.
func Catalog() []Archetype {
	return catalog
}

func matchesAny(exprs []*regexp.Regexp, text string) bool {
	for _, re := range exprs {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
