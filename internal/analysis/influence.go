package analysis

import (
	"sort"

	"github.com/eternal-forge/eternal-forge/internal/deck"
)

// Difficulty score weights. Higher cost, more pips, and more distinct
// factions all make a card harder to cast on schedule.
const (
	pipWeight     = 2
	factionWeight = 3
)

// CardDifficulty scores one card's casting demands.
type CardDifficulty struct {
	Name         string         `json:"name"`
	Cost         int            `json:"cost"`
	Influence    map[string]int `json:"influence"`
	InfluenceStr string         `json:"influence_str"`
	Difficulty   int            `json:"difficulty"`
	CardType     deck.CardType  `json:"card_type"`
	Quantity     int            `json:"quantity"`
}

// FactionDemand summarizes a faction's casting requirements across the deck.
type FactionDemand struct {
	Cards     int `json:"cards"`   // copies requiring this faction
	MaxPips   int `json:"max_pips"` // largest single-card requirement
	TotalPips int `json:"total_pips"`
}

// InfluenceAnalysis holds influence requirement analysis results.
type InfluenceAnalysis struct {
	HardestCards         []CardDifficulty         `json:"hardest_cards"`
	FactionDemands       map[string]FactionDemand `json:"faction_demands"`
	PotentialBottlenecks []CardDifficulty         `json:"potential_bottlenecks"`
	TotalPips            map[string]int           `json:"total_pips"`
}

// AnalyzeInfluenceRequirements scores every non-power card with an influence
// requirement. The hardest-cards list is the top 10 by difficulty; bottleneck
// cards are those needing 3+ pips of one faction or more total pips than
// their cost, kept in difficulty order (a filtered prefix, not re-sorted).
func (a *Analyzer) AnalyzeInfluenceRequirements() InfluenceAnalysis {
	demands := make(map[string]FactionDemand)
	totalPips := make(map[string]int)

	var difficulties []CardDifficulty
	seen := make(map[string]bool)

	for _, ec := range a.nonPower {
		if seen[ec.card.Name] {
			continue
		}
		seen[ec.card.Name] = true

		influence := deck.ParseInfluence(ec.card.Influence)
		if len(influence) == 0 {
			continue
		}

		pips := 0
		for _, n := range influence {
			pips += n
		}
		difficulties = append(difficulties, CardDifficulty{
			Name:         ec.card.Name,
			Cost:         ec.card.Cost,
			Influence:    influence,
			InfluenceStr: ec.card.Influence,
			Difficulty:   ec.card.Cost + pips*pipWeight + len(influence)*factionWeight,
			CardType:     ec.card.Type,
			Quantity:     ec.quantity,
		})

		for faction, n := range influence {
			d := demands[faction]
			d.Cards += ec.quantity
			if n > d.MaxPips {
				d.MaxPips = n
			}
			d.TotalPips += n * ec.quantity
			demands[faction] = d
			totalPips[faction] += n * ec.quantity
		}
	}

	sort.SliceStable(difficulties, func(i, j int) bool {
		return difficulties[i].Difficulty > difficulties[j].Difficulty
	})

	hardest := difficulties
	if len(hardest) > 10 {
		hardest = hardest[:10]
	}

	var bottlenecks []CardDifficulty
	for _, cd := range difficulties {
		maxSingle, total := 0, 0
		for _, n := range cd.Influence {
			total += n
			if n > maxSingle {
				maxSingle = n
			}
		}
		if maxSingle >= 3 || total > cd.Cost {
			bottlenecks = append(bottlenecks, cd)
			if len(bottlenecks) == 10 {
				break
			}
		}
	}

	return InfluenceAnalysis{
		HardestCards:         hardest,
		FactionDemands:       demands,
		PotentialBottlenecks: bottlenecks,
		TotalPips:            totalPips,
	}
}
