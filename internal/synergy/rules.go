package synergy

import (
	"regexp"

	"github.com/Shun-123/shadowverse-2pick/internal/cards"
)

// Rule describes one enabler/payoff relationship inside a craft's
// strategic theme. Enablers put the resource or condition on the
// table; payoffs spend it. Patterns match against a card's combined
// skill text; the first matching pattern per list short-circuits.
type Rule struct {
	Name            string
	EnablerPatterns []*regexp.Regexp
	PayoffPatterns  []*regexp.Regexp

	// MinEnablers is the minimum enabler count in the deck before a
	// payoff candidate earns the bonus.
	MinEnablers int

	MaxBonus     float64
	BonusPerCard float64
}

func patterns(exprs ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, len(exprs))
	for i, expr := range exprs {
		compiled[i] = regexp.MustCompile(`(?i)` + expr)
	}
	return compiled
}

func rule(name string, enablers, payoffs []*regexp.Regexp, minEnablers int, maxBonus, perCard float64) Rule {
	return Rule{
		Name:            name,
		EnablerPatterns: enablers,
		PayoffPatterns:  payoffs,
		MinEnablers:     minEnablers,
		MaxBonus:        maxBonus,
		BonusPerCard:    perCard,
	}
}

// craftRules is the static synergy catalog, keyed by craft. The
// neutral rules apply to every deck in addition to its own craft's.
// Patterns are calibration data: scores are tuned against these exact
// expressions, so edit with care.
var craftRules = map[cards.CraftID][]Rule{
	cards.CraftNeutral: {
		rule("Enhance", patterns(`enhance`), patterns(`enhance`), 2, 8, 2),
		rule("Ward", patterns(`ward`), patterns(`ward`), 2, 6, 1.5),
	},

	cards.CraftForest: {
		rule("Fairies",
			patterns(`fair(?:y|ies).*hand`, `fair(?:y|ies).*play`),
			patterns(`fairy`, `or more cards in (?:your )?hand`),
			3, 12, 3),
		rule("Combo", patterns(`combo`), patterns(`combo \(\d+\)`), 2, 15, 4),
		rule("Naterra", patterns(`naterra`), patterns(`naterra`), 2, 10, 3),
	},

	cards.CraftSword: {
		rule("Soldiers",
			patterns(`soldier.*(?:play|summon)`),
			patterns(`soldier.*follower`),
			3, 12, 2.5),
		rule("Commanders", patterns(`commander`), patterns(`commander`), 2, 8, 2),
		rule("Rally", patterns(`rally`), patterns(`rally`), 2, 10, 3),
	},

	cards.CraftRune: {
		rule("Spellboost", patterns(`spell`), patterns(`spellboost`), 4, 18, 3.5),
		rule("Earth Sigils",
			patterns(`put.*earth sigil`),
			patterns(`earth rite`, `earth sigil.*consume`),
			3, 15, 4),
		rule("Insight", patterns(`insight`), patterns(`insight`), 2, 6, 2),
	},

	cards.CraftDragon: {
		rule("Awakening",
			patterns(`play point orb`, `restore.*play points?`),
			patterns(`awakening`),
			2, 12, 4),
		rule("Dragons",
			patterns(`dragon.*follower`),
			patterns(`dragon.*follower`),
			3, 10, 2.5),
	},

	cards.CraftAbyss: {
		rule("Necromancy", patterns(`shadows?`), patterns(`necromancy`), 4, 15, 3),
		rule("Last Words", patterns(`last words`), patterns(`last words`), 3, 10, 2.5),
		rule("Reanimate", patterns(`reanimate`), patterns(`reanimate`), 2, 12, 4),
	},

	cards.CraftHaven: {
		rule("Countdown", patterns(`countdown`), patterns(`countdown`), 2, 10, 3),
		rule("Ward", patterns(`ward`), patterns(`ward`), 3, 12, 2),
		rule("Healing", patterns(`restore.*defense`), patterns(`restore.*defense`), 2, 6, 1.5),
	},

	cards.CraftPortal: {
		rule("Artifacts",
			patterns(`artifact.*hand`, `artifact.*deck`),
			patterns(`artifact`),
			3, 15, 3.5),
		rule("Fusion", patterns(`fusion`), patterns(`fusion`), 2, 12, 4),
		rule("Resonance", patterns(`resonance`), patterns(`resonance`), 2, 8, 3),
	},
}

// RulesFor returns the synergy rules for a craft. Crafts without an
// entry have no rules.
func RulesFor(craft cards.CraftID) []Rule {
	return craftRules[craft]
}

func matchesAny(exprs []*regexp.Regexp, text string) bool {
	for _, re := range exprs {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
