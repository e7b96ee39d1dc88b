package power

import (
	"sort"
	"strings"

	"github.com/eternal-forge/eternal-forge/internal/deck"
)

// Rules-text markers that determine how a power source enters play.
const (
	depletedSemicolonPrefix = "Depleted;"
	depletedPeriodPrefix    = "Depleted."
	conditionalMarker       = "Depleted unless"
)

// Source describes one power-producing deck slot.
type Source struct {
	CardName    string         `json:"card_name"`
	CardID      int            `json:"card_id"`
	Quantity    int            `json:"quantity"`
	Influence   map[string]int `json:"influence"` // faction -> pips per copy
	Depleted    bool           `json:"depleted"`
	Conditional bool           `json:"conditional"`
}

// KeyCard is the castability analysis for an expensive main-deck card.
type KeyCard struct {
	CardName    string         `json:"card_name"`
	CardID      int            `json:"card_id"`
	Quantity    int            `json:"quantity"`
	Cost        int            `json:"cost"`
	Influence   map[string]int `json:"influence"`
	TargetTurn  int            `json:"target_turn"`
	OddsOnCurve float64        `json:"odds_on_curve"`
}

// TableRow is one turn of an odds table. Odds is keyed by the power or
// influence amount needed.
type TableRow struct {
	Turn int             `json:"turn"`
	Odds map[int]float64 `json:"odds"`
}

// Analyzer classifies a deck's power base and computes draw probabilities.
// Market slots are always excluded.
type Analyzer struct {
	sources    []Source
	totalCards int
}

// NewAnalyzer builds an analyzer from a deck snapshot.
func NewAnalyzer(d *deck.Deck) *Analyzer {
	a := &Analyzer{}
	for _, slot := range d.MainSlots() {
		a.totalCards += slot.Quantity

		if !slot.Card.IsPower() {
			continue
		}
		influence := deck.ParseInfluence(slot.Card.Influence)
		if len(influence) == 0 {
			continue
		}

		depleted, conditional := classifyDepleted(slot.Card.Text)
		a.sources = append(a.sources, Source{
			CardName:    slot.Card.Name,
			CardID:      slot.Card.ID,
			Quantity:    slot.Quantity,
			Influence:   influence,
			Depleted:    depleted,
			Conditional: conditional,
		})
	}
	return a
}

// classifyDepleted inspects rules text. Always-depleted takes priority over
// conditionally-depleted; the two never both hold for one source.
func classifyDepleted(cardText string) (depleted, conditional bool) {
	text := strings.TrimSpace(cardText)
	if text == "" {
		return false, false
	}
	if strings.HasPrefix(text, depletedSemicolonPrefix) || strings.HasPrefix(text, depletedPeriodPrefix) {
		return true, false
	}
	if strings.Contains(text, conditionalMarker) {
		return false, true
	}
	return false, false
}

// Sources returns the classified power sources.
func (a *Analyzer) Sources() []Source {
	return a.sources
}

// TotalCards returns the main-deck card count.
func (a *Analyzer) TotalCards() int {
	return a.totalCards
}

// TotalPowerCount returns the number of power cards in the deck.
func (a *Analyzer) TotalPowerCount() int {
	total := 0
	for _, s := range a.sources {
		total += s.Quantity
	}
	return total
}

// UndepletedCount returns the number of power cards that enter ready.
func (a *Analyzer) UndepletedCount() int {
	total := 0
	for _, s := range a.sources {
		if !s.Depleted && !s.Conditional {
			total += s.Quantity
		}
	}
	return total
}

// DepletedCount returns the number of power cards that always enter depleted.
func (a *Analyzer) DepletedCount() int {
	total := 0
	for _, s := range a.sources {
		if s.Depleted {
			total += s.Quantity
		}
	}
	return total
}

// ConditionalCount returns the number of conditionally depleted power cards.
func (a *Analyzer) ConditionalCount() int {
	total := 0
	for _, s := range a.sources {
		if s.Conditional {
			total += s.Quantity
		}
	}
	return total
}

// InfluenceSources returns the total influence pips each faction gets from
// the power base. A copy providing two pips of a faction counts twice for
// that faction. Every faction appears in the map, possibly at zero.
func (a *Analyzer) InfluenceSources() map[string]int {
	sources := make(map[string]int, len(deck.FactionOrder))
	for _, f := range deck.FactionOrder {
		sources[f] = 0
	}
	for _, s := range a.sources {
		for faction, pips := range s.Influence {
			sources[faction] += pips * s.Quantity
		}
	}
	return sources
}

// SourcesByCategory groups power sources into "undepleted", "depleted"
// and "conditional".
func (a *Analyzer) SourcesByCategory() map[string][]Source {
	categories := map[string][]Source{
		"undepleted":  {},
		"depleted":    {},
		"conditional": {},
	}
	for _, s := range a.sources {
		switch {
		case s.Conditional:
			categories["conditional"] = append(categories["conditional"], s)
		case s.Depleted:
			categories["depleted"] = append(categories["depleted"], s)
		default:
			categories["undepleted"] = append(categories["undepleted"], s)
		}
	}
	return categories
}

// cardsSeenBy returns how many cards have been seen by a given turn: the
// opening hand of 7 plus one draw per elapsed turn (turn 1 is already part of
// the opening seven), capped at deck size.
func (a *Analyzer) cardsSeenBy(turn int) int {
	seen := 6 + turn
	if seen > a.totalCards {
		seen = a.totalCards
	}
	return seen
}

// PowerOdds returns the probability of having drawn at least powerNeeded
// power cards by the given turn.
func (a *Analyzer) PowerOdds(powerNeeded, byTurn int) float64 {
	return ProbabilityAtLeast(a.totalCards, a.TotalPowerCount(), a.cardsSeenBy(byTurn), powerNeeded)
}

// InfluenceOdds returns the probability of having drawn at least
// influenceNeeded pips of the given faction by the given turn.
//
// Each pip is treated as an independent success in the population, even
// though multiple pips can come from the same physical card. That makes the
// result an approximation, and it is the approximation the rest of the
// application is calibrated against.
func (a *Analyzer) InfluenceOdds(faction string, influenceNeeded, byTurn int) float64 {
	sources := a.InfluenceSources()[faction]
	return ProbabilityAtLeast(a.totalCards, sources, a.cardsSeenBy(byTurn), influenceNeeded)
}

// CombinedOdds returns the probability of meeting a power requirement and
// every faction's influence requirement by the given turn. Power and each
// faction are multiplied as independent events; sources overlap in reality,
// so this slightly underestimates, matching the displayed numbers elsewhere.
func (a *Analyzer) CombinedOdds(powerNeeded int, influenceNeeded map[string]int, byTurn int) float64 {
	odds := a.PowerOdds(powerNeeded, byTurn)
	for faction, count := range influenceNeeded {
		if count > 0 {
			odds *= a.InfluenceOdds(faction, count, byTurn)
		}
	}
	return odds
}

// PowerTable generates per-turn odds of reaching each power count from 1 up
// to min(turn, 7).
func (a *Analyzer) PowerTable(maxTurns int) []TableRow {
	table := make([]TableRow, 0, maxTurns)
	for turn := 1; turn <= maxTurns; turn++ {
		row := TableRow{Turn: turn, Odds: make(map[int]float64)}
		limit := turn
		if limit > 7 {
			limit = 7
		}
		for p := 1; p <= limit; p++ {
			row.Odds[p] = a.PowerOdds(p, turn)
		}
		table = append(table, row)
	}
	return table
}

// InfluenceTable generates per-turn odds of reaching 1-4 influence for every
// faction the power base actually provides.
func (a *Analyzer) InfluenceTable(maxTurns int) map[string][]TableRow {
	tables := make(map[string][]TableRow)
	for _, faction := range deck.FactionOrder {
		if a.InfluenceSources()[faction] == 0 {
			continue
		}
		table := make([]TableRow, 0, maxTurns)
		for turn := 1; turn <= maxTurns; turn++ {
			row := TableRow{Turn: turn, Odds: make(map[int]float64)}
			for inf := 1; inf <= 4; inf++ {
				row.Odds[inf] = a.InfluenceOdds(faction, inf, turn)
			}
			table = append(table, row)
		}
		tables[faction] = table
	}
	return tables
}

// KeyCardAnalysis computes on-curve castability for every non-power card
// costing 3 or more with an influence requirement, evaluated at the turn
// matching its cost and sorted by cost ascending.
func (a *Analyzer) KeyCardAnalysis(d *deck.Deck) []KeyCard {
	var analysis []KeyCard
	for _, slot := range d.MainSlots() {
		card := slot.Card
		if card.IsPower() || card.Cost < 3 {
			continue
		}
		influence := deck.ParseInfluence(card.Influence)
		if len(influence) == 0 {
			continue
		}

		targetTurn := card.Cost
		analysis = append(analysis, KeyCard{
			CardName:    card.Name,
			CardID:      card.ID,
			Quantity:    slot.Quantity,
			Cost:        card.Cost,
			Influence:   influence,
			TargetTurn:  targetTurn,
			OddsOnCurve: a.CombinedOdds(card.Cost, influence, targetTurn),
		})
	}

	sort.SliceStable(analysis, func(i, j int) bool {
		return analysis[i].Cost < analysis[j].Cost
	})
	return analysis
}
