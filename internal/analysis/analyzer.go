// Package analysis performs static composition analysis of a deck: cost
// curve, card type distribution, influence difficulty, and keyword/tribal
// synergy detection. It never randomizes; simulators live in internal/sim.
package analysis

import (
	"math"
	"sort"

	"github.com/eternal-forge/eternal-forge/internal/deck"
)

// CardRef is a deduplicated card entry for display lists.
type CardRef struct {
	Name     string        `json:"name"`
	Cost     int           `json:"cost"`
	CardType deck.CardType `json:"card_type"`
	Quantity int           `json:"quantity"`
}

// CurveData holds mana curve analysis results.
type CurveData struct {
	ByCost         map[int]int       `json:"by_cost"`
	NonPowerByCost map[int]int       `json:"non_power_by_cost"`
	AverageCost    float64           `json:"average_cost"` // non-power cards only
	PeakCost       int               `json:"peak_cost"`    // mode of the non-power histogram
	CardsAtCost    map[int][]CardRef `json:"cards_at_cost"`
}

// TypeDistribution holds card type distribution results. Percentages are
// computed over non-power cards only; power types carry no percentage.
type TypeDistribution struct {
	ByType        map[deck.CardType]int       `json:"by_type"`
	Percentages   map[deck.CardType]float64   `json:"percentages"`
	CardsByType   map[deck.CardType][]CardRef `json:"cards_by_type"`
	TotalNonPower int                         `json:"total_non_power"`
	TotalPower    int                         `json:"total_power"`
}

// FullAnalysis bundles every analysis over one deck.
type FullAnalysis struct {
	Curve         CurveData         `json:"curve"`
	Types         TypeDistribution  `json:"types"`
	Influence     InfluenceAnalysis `json:"influence"`
	Synergies     SynergyAnalysis   `json:"synergies"`
	TotalCards    int               `json:"total_cards"`
	PowerCount    int               `json:"power_count"`
	NonPowerCount int               `json:"non_power_count"`
}

// expandedCard is one physical copy of a main-deck card.
type expandedCard struct {
	card     deck.Card
	quantity int // quantity of the owning slot, for weighted tallies
	isPower  bool
}

// Analyzer inspects a deck's main-deck composition. Market slots are
// always excluded.
type Analyzer struct {
	cards    []expandedCard
	power    []expandedCard
	nonPower []expandedCard
}

// NewAnalyzer builds an analyzer from a deck snapshot, expanding each slot
// by quantity.
func NewAnalyzer(d *deck.Deck) *Analyzer {
	a := &Analyzer{}
	for _, slot := range d.MainSlots() {
		ec := expandedCard{
			card:     slot.Card,
			quantity: slot.Quantity,
			isPower:  slot.Card.IsPower(),
		}
		for i := 0; i < slot.Quantity; i++ {
			a.cards = append(a.cards, ec)
			if ec.isPower {
				a.power = append(a.power, ec)
			} else {
				a.nonPower = append(a.nonPower, ec)
			}
		}
	}
	return a
}

// AnalyzeCurve computes the cost histogram, average and peak cost, and
// deduplicated per-cost card lists.
func (a *Analyzer) AnalyzeCurve() CurveData {
	byCost := make(map[int]int)
	nonPowerByCost := make(map[int]int)
	cardsAtCost := make(map[int][]CardRef)
	seenAtCost := make(map[int]map[string]bool)

	totalCost := 0
	nonPowerCount := 0

	for _, ec := range a.cards {
		cost := ec.card.Cost
		byCost[cost]++

		if !ec.isPower {
			nonPowerByCost[cost]++
			totalCost += cost
			nonPowerCount++
		}

		if seenAtCost[cost] == nil {
			seenAtCost[cost] = make(map[string]bool)
		}
		if !seenAtCost[cost][ec.card.Name] {
			seenAtCost[cost][ec.card.Name] = true
			cardsAtCost[cost] = append(cardsAtCost[cost], CardRef{
				Name:     ec.card.Name,
				Cost:     cost,
				CardType: ec.card.Type,
				Quantity: ec.quantity,
			})
		}
	}

	averageCost := 0.0
	if nonPowerCount > 0 {
		averageCost = math.Round(float64(totalCost)/float64(nonPowerCount)*100) / 100
	}

	// Peak cost is the mode of the non-power histogram; the lowest cost wins ties.
	costs := make([]int, 0, len(nonPowerByCost))
	for cost := range nonPowerByCost {
		costs = append(costs, cost)
	}
	sort.Ints(costs)
	peakCost, peakCount := 0, 0
	for _, cost := range costs {
		if nonPowerByCost[cost] > peakCount {
			peakCount = nonPowerByCost[cost]
			peakCost = cost
		}
	}

	return CurveData{
		ByCost:         byCost,
		NonPowerByCost: nonPowerByCost,
		AverageCost:    averageCost,
		PeakCost:       peakCost,
		CardsAtCost:    cardsAtCost,
	}
}

// AnalyzeTypeDistribution computes the card type histogram, percentages over
// the non-power total, and deduplicated per-type card lists.
func (a *Analyzer) AnalyzeTypeDistribution() TypeDistribution {
	byType := make(map[deck.CardType]int)
	cardsByType := make(map[deck.CardType][]CardRef)
	seenByType := make(map[deck.CardType]map[string]bool)

	totalPower := 0
	totalNonPower := 0

	for _, ec := range a.cards {
		cardType := ec.card.Type
		byType[cardType]++

		if ec.isPower {
			totalPower++
		} else {
			totalNonPower++
		}

		if seenByType[cardType] == nil {
			seenByType[cardType] = make(map[string]bool)
		}
		if !seenByType[cardType][ec.card.Name] {
			seenByType[cardType][ec.card.Name] = true
			cardsByType[cardType] = append(cardsByType[cardType], CardRef{
				Name:     ec.card.Name,
				Cost:     ec.card.Cost,
				CardType: cardType,
				Quantity: ec.quantity,
			})
		}
	}

	percentages := make(map[deck.CardType]float64)
	for cardType, count := range byType {
		if cardType.IsPower() {
			continue
		}
		if totalNonPower > 0 {
			percentages[cardType] = math.Round(float64(count)/float64(totalNonPower)*1000) / 10
		} else {
			percentages[cardType] = 0
		}
	}

	return TypeDistribution{
		ByType:        byType,
		Percentages:   percentages,
		CardsByType:   cardsByType,
		TotalNonPower: totalNonPower,
		TotalPower:    totalPower,
	}
}

// FullAnalysis runs every analysis and bundles the results.
func (a *Analyzer) FullAnalysis() FullAnalysis {
	return FullAnalysis{
		Curve:         a.AnalyzeCurve(),
		Types:         a.AnalyzeTypeDistribution(),
		Influence:     a.AnalyzeInfluenceRequirements(),
		Synergies:     a.AnalyzeSynergies(),
		TotalCards:    len(a.cards),
		PowerCount:    len(a.power),
		NonPowerCount: len(a.nonPower),
	}
}
