package analysis

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/eternal-forge/eternal-forge/internal/deck"
)

// Keywords detected in card text, matched case-insensitively on word
// boundaries.
var keywords = []string{
	"Flying", "Overwhelm", "Lifesteal", "Deadly", "Quickdraw", "Endurance",
	"Aegis", "Charge", "Unblockable", "Revenge", "Destiny", "Echo",
	"Warp", "Infiltrate", "Killer", "Reckless", "Scout", "Mentor",
	"Student", "Tribute", "Ultimate", "Summon", "Entomb", "Spark",
	"Spellcraft", "Empower", "Twist", "Plunder", "Imbue", "Inscribe",
	"Amplify", "Invoke", "Bond", "Ally", "Renown", "Berserk",
	"Double Damage", "Lifegain", "Silence", "Stun", "Shift",
}

// enablerPatterns match ability-granting phrasing in lowercased card text.
var enablerPatterns = []string{
	`gives`, `grant`, `other .* get`, `other .* have`, `your .* get`,
	`your .* have`, `all .* get`, `all .* have`, `units get`, `units have`,
	`when another`, `each other`, `friendly .* get`, `friendly .* have`,
}

// payoffPatterns match conditional/scaling phrasing in lowercased card text.
var payoffPatterns = []string{
	`for each`, `if you have`, `when you play`, `whenever you`,
	`gets \+`, `gain \+`, `equal to`, `based on`, `per `,
	`for every`, `if .* in your void`, `if .* in play`,
}

var (
	keywordRegexps = compileKeywordRegexps()
	enablerRegexps = compilePatterns(enablerPatterns)
	payoffRegexps  = compilePatterns(payoffPatterns)
)

func compileKeywordRegexps() map[string]*regexp.Regexp {
	res := make(map[string]*regexp.Regexp, len(keywords))
	for _, kw := range keywords {
		res[kw] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(kw) + `\b`)
	}
	return res
}

func compilePatterns(patterns []string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		res = append(res, regexp.MustCompile(p))
	}
	return res
}

// keywordPackage pairs a detection threshold with a display name.
type keywordPackage struct {
	name        string
	threshold   int
	description string
}

// Named keyword packages and the quantity-weighted counts that trigger them.
var keywordPackages = map[string]keywordPackage{
	"Lifesteal":  {"Lifesteal Package", 4, "Life gain synergies"},
	"Flying":     {"Evasion Package", 6, "Aerial threats"},
	"Overwhelm":  {"Overwhelm Package", 4, "Damage through blockers"},
	"Aegis":      {"Aegis Package", 4, "Protected threats"},
	"Charge":     {"Aggro Package", 4, "Fast damage"},
	"Warp":       {"Warp Package", 4, "Top-deck manipulation"},
	"Revenge":    {"Revenge Package", 3, "Recurring threats"},
	"Killer":     {"Killer Package", 3, "Removal on units"},
	"Deadly":     {"Deadly Package", 4, "Efficient blockers"},
	"Infiltrate": {"Infiltrate Package", 3, "Face damage payoffs"},
	"Summon":     {"ETB Effects", 6, "Enter-the-battlefield value"},
	"Entomb":     {"Death Triggers", 4, "On-death value"},
	"Ultimate":   {"Ultimate Package", 3, "Late-game power"},
}

// tribalThreshold is the weighted copy count at which a unit-type tag
// becomes a tribal package; tribalStrengthScale normalizes its strength.
const (
	tribalThreshold     = 6
	tribalStrengthScale = 16
)

// KeywordTally is the quantity-weighted count and card list for one keyword
// or unit type.
type KeywordTally struct {
	Count int       `json:"count"`
	Cards []CardRef `json:"cards"`
}

// SynergyCard flags a card as a synergy enabler or payoff.
type SynergyCard struct {
	Name     string        `json:"name"`
	Quantity int           `json:"quantity"`
	CardType deck.CardType `json:"card_type"`
	Cost     int           `json:"cost"`
	Text     string        `json:"text"`
}

// SynergyPackage is a detected keyword or tribal package.
type SynergyPackage struct {
	Name        string    `json:"name"`
	Type        string    `json:"type"` // "keyword" or "tribal"
	Keyword     string    `json:"keyword,omitempty"`
	Tribe       string    `json:"tribe,omitempty"`
	Count       int       `json:"count"`
	Cards       []CardRef `json:"cards"`
	Strength    float64   `json:"strength"` // 0.0 to 1.0
	Description string    `json:"description"`
}

// SynergyAnalysis holds keyword, tribal, and synergy detection results.
type SynergyAnalysis struct {
	Keywords        map[string]KeywordTally `json:"keywords"`
	UnitTypes       map[string]KeywordTally `json:"unit_types"`
	SynergyPackages []SynergyPackage        `json:"synergy_packages"`
	Enablers        []SynergyCard           `json:"enablers"`
	Payoffs         []SynergyCard           `json:"payoffs"`
}

// AnalyzeSynergies scans non-power card text for keywords, parses unit-type
// tags for tribal density, and flags enabler/payoff cards. Each distinct card
// contributes its quantity exactly once per matched keyword or tag; a card
// can be both an enabler and a payoff but is listed at most once in each.
func (a *Analyzer) AnalyzeSynergies() SynergyAnalysis {
	keywordTallies := make(map[string]KeywordTally)
	unitTypeTallies := make(map[string]KeywordTally)
	var enablers, payoffs []SynergyCard

	seen := make(map[string]bool)

	for _, ec := range a.nonPower {
		if seen[ec.card.Name] {
			continue
		}
		seen[ec.card.Name] = true

		ref := CardRef{
			Name:     ec.card.Name,
			Cost:     ec.card.Cost,
			CardType: ec.card.Type,
			Quantity: ec.quantity,
		}

		for _, kw := range keywords {
			if keywordRegexps[kw].MatchString(ec.card.Text) {
				tally := keywordTallies[kw]
				tally.Count += ec.quantity
				tally.Cards = append(tally.Cards, ref)
				keywordTallies[kw] = tally
			}
		}

		for _, tag := range deck.ParseUnitTypes(ec.card.UnitTypes) {
			tally := unitTypeTallies[tag]
			tally.Count += ec.quantity
			tally.Cards = append(tally.Cards, ref)
			unitTypeTallies[tag] = tally
		}

		lower := strings.ToLower(ec.card.Text)
		if matchesAny(enablerRegexps, lower) {
			enablers = append(enablers, synergyCard(ec))
		}
		if matchesAny(payoffRegexps, lower) {
			payoffs = append(payoffs, synergyCard(ec))
		}
	}

	return SynergyAnalysis{
		Keywords:        keywordTallies,
		UnitTypes:       unitTypeTallies,
		SynergyPackages: detectSynergyPackages(keywordTallies, unitTypeTallies),
		Enablers:        enablers,
		Payoffs:         payoffs,
	}
}

func matchesAny(patterns []*regexp.Regexp, text string) bool {
	for _, re := range patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

func synergyCard(ec expandedCard) SynergyCard {
	text := ec.card.Text
	if len(text) > 100 {
		text = text[:100] + "..."
	}
	return SynergyCard{
		Name:     ec.card.Name,
		Quantity: ec.quantity,
		CardType: ec.card.Type,
		Cost:     ec.card.Cost,
		Text:     text,
	}
}

// detectSynergyPackages flags keyword packages whose weighted count meets
// their threshold and tribes with tribalThreshold or more weighted copies,
// sorted by strength descending.
func detectSynergyPackages(kw, tribes map[string]KeywordTally) []SynergyPackage {
	var packages []SynergyPackage

	for keyword, config := range keywordPackages {
		tally, ok := kw[keyword]
		if !ok || tally.Count < config.threshold {
			continue
		}
		strength := float64(tally.Count) / float64(config.threshold*2)
		if strength > 1 {
			strength = 1
		}
		packages = append(packages, SynergyPackage{
			Name:        config.name,
			Type:        "keyword",
			Keyword:     keyword,
			Count:       tally.Count,
			Cards:       tally.Cards,
			Strength:    round2(strength),
			Description: config.description,
		})
	}

	for tribe, tally := range tribes {
		if tally.Count < tribalThreshold {
			continue
		}
		strength := float64(tally.Count) / tribalStrengthScale
		if strength > 1 {
			strength = 1
		}
		packages = append(packages, SynergyPackage{
			Name:        tribe + " Tribal",
			Type:        "tribal",
			Tribe:       tribe,
			Count:       tally.Count,
			Cards:       tally.Cards,
			Strength:    round2(strength),
			Description: tribe + " creature synergies",
		})
	}

	sort.SliceStable(packages, func(i, j int) bool {
		if packages[i].Strength != packages[j].Strength {
			return packages[i].Strength > packages[j].Strength
		}
		return packages[i].Name < packages[j].Name
	})
	return packages
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
