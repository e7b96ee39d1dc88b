package analysis

import (
	"math"
	"testing"

	"github.com/eternal-forge/eternal-forge/internal/deck"
)

func slot(id int, name string, cardType deck.CardType, cost, qty int) deck.Slot {
	return deck.Slot{
		Card:     deck.Card{ID: id, Name: name, Type: cardType, Cost: cost},
		Quantity: qty,
	}
}

func curveDeck() *deck.Deck {
	return &deck.Deck{
		Name: "Curve Test",
		Slots: []deck.Slot{
			slot(1, "Fire Sigil", deck.TypeSigil, 0, 25),
			slot(2, "Oni Ronin", deck.TypeUnit, 1, 4),
			slot(3, "Torch", deck.TypeFastSpell, 1, 4),
			slot(4, "Rakano Outlaw", deck.TypeUnit, 2, 4),
			slot(5, "Vanquish", deck.TypeSpell, 2, 2),
			slot(6, "Valkyrie Enforcer", deck.TypeUnit, 3, 4),
			{Card: deck.Card{ID: 7, Name: "Market Card", Type: deck.TypeSpell, Cost: 4}, Quantity: 1, IsMarket: true},
		},
	}
}

func TestAnalyzeCurve(t *testing.T) {
	a := NewAnalyzer(curveDeck())
	curve := a.AnalyzeCurve()

	if got, want := curve.ByCost[0], 25; got != want {
		t.Errorf("ByCost[0] = %d, want %d", got, want)
	}
	if got, want := curve.NonPowerByCost[1], 8; got != want {
		t.Errorf("NonPowerByCost[1] = %d, want %d", got, want)
	}
	if _, ok := curve.NonPowerByCost[0]; ok {
		t.Error("power cards must not appear in the non-power histogram")
	}

	// 8*1 + 6*2 + 4*3 = 32 over 18 non-power cards.
	want := math.Round(32.0/18.0*100) / 100
	if curve.AverageCost != want {
		t.Errorf("AverageCost = %v, want %v", curve.AverageCost, want)
	}

	// Cost 1 has 8 cards, the most of any non-power bucket.
	if curve.PeakCost != 1 {
		t.Errorf("PeakCost = %d, want 1", curve.PeakCost)
	}

	// Deduplicated display list keeps one entry per distinct name.
	if got := len(curve.CardsAtCost[1]); got != 2 {
		t.Errorf("CardsAtCost[1] has %d entries, want 2", got)
	}
	if curve.CardsAtCost[1][0].Name != "Oni Ronin" {
		t.Errorf("first cost-1 card = %s, want first-seen Oni Ronin", curve.CardsAtCost[1][0].Name)
	}

	// Market card is invisible to analysis.
	if _, ok := curve.ByCost[4]; ok {
		t.Error("market card leaked into the curve")
	}
}

func TestPeakCostTieBreaksLow(t *testing.T) {
	d := &deck.Deck{
		Slots: []deck.Slot{
			slot(1, "Cheap", deck.TypeUnit, 1, 4),
			slot(2, "Dear", deck.TypeUnit, 3, 4),
		},
	}
	curve := NewAnalyzer(d).AnalyzeCurve()
	if curve.PeakCost != 1 {
		t.Errorf("PeakCost = %d, want the lowest tied cost 1", curve.PeakCost)
	}
}

func TestAnalyzeCurveEmptyDeck(t *testing.T) {
	curve := NewAnalyzer(&deck.Deck{}).AnalyzeCurve()
	if curve.AverageCost != 0 {
		t.Errorf("AverageCost = %v, want 0 for an empty deck", curve.AverageCost)
	}
	if curve.PeakCost != 0 {
		t.Errorf("PeakCost = %v, want 0 for an empty deck", curve.PeakCost)
	}
}

func TestAnalyzeTypeDistribution(t *testing.T) {
	a := NewAnalyzer(curveDeck())
	dist := a.AnalyzeTypeDistribution()

	if dist.TotalPower != 25 || dist.TotalNonPower != 18 {
		t.Errorf("totals = (%d power, %d non-power), want (25, 18)", dist.TotalPower, dist.TotalNonPower)
	}
	if got, want := dist.ByType[deck.TypeUnit], 12; got != want {
		t.Errorf("ByType[Unit] = %d, want %d", got, want)
	}

	// Power types carry no percentage; the rest sum to 100 within rounding.
	if _, ok := dist.Percentages[deck.TypeSigil]; ok {
		t.Error("Sigil must not appear in percentages")
	}
	sum := 0.0
	for _, pct := range dist.Percentages {
		sum += pct
	}
	if math.Abs(sum-100) > 0.5 {
		t.Errorf("percentages sum to %v, want ~100", sum)
	}

	if got := len(dist.CardsByType[deck.TypeUnit]); got != 3 {
		t.Errorf("CardsByType[Unit] has %d entries, want 3 distinct names", got)
	}
}

func TestOnlyNonPowerDeck(t *testing.T) {
	d := &deck.Deck{
		Slots: []deck.Slot{
			slot(1, "Oni Ronin", deck.TypeUnit, 1, 4),
			slot(2, "Torch", deck.TypeFastSpell, 1, 4),
		},
	}
	a := NewAnalyzer(d)
	dist := a.AnalyzeTypeDistribution()
	if dist.TotalPower != 0 {
		t.Errorf("TotalPower = %d, want 0", dist.TotalPower)
	}

	curve := a.AnalyzeCurve()
	nonPowerTotal := 0
	for _, n := range curve.NonPowerByCost {
		nonPowerTotal += n
	}
	if nonPowerTotal != 8 {
		t.Errorf("non-power buckets sum to %d, want 8", nonPowerTotal)
	}
}

func TestAnalyzeInfluenceRequirements(t *testing.T) {
	d := &deck.Deck{
		Slots: []deck.Slot{
			{Card: deck.Card{ID: 1, Name: "Fire Sigil", Type: deck.TypeSigil, Influence: "{F}"}, Quantity: 25},
			{Card: deck.Card{ID: 2, Name: "Torch", Type: deck.TypeFastSpell, Cost: 1, Influence: "{F}"}, Quantity: 4},
			// 3 pips of one faction: a bottleneck by the max-pip rule.
			{Card: deck.Card{ID: 3, Name: "Vara, Fate-Touched", Type: deck.TypeUnit, Cost: 7, Influence: "{S}{S}{S}"}, Quantity: 2},
			// 3 total pips exceeding cost 2: a bottleneck by the cost rule.
			{Card: deck.Card{ID: 4, Name: "Champion of Chaos", Type: deck.TypeUnit, Cost: 2, Influence: "{F}{F}{S}"}, Quantity: 4},
			// No influence requirement: not scored at all.
			{Card: deck.Card{ID: 5, Name: "Grenadin Drone", Type: deck.TypeUnit, Cost: 1}, Quantity: 4},
		},
	}
	ia := NewAnalyzer(d).AnalyzeInfluenceRequirements()

	if len(ia.HardestCards) != 3 {
		t.Fatalf("HardestCards has %d entries, want 3", len(ia.HardestCards))
	}
	// Vara: 7 + 3*2 + 1*3 = 16; Champion: 2 + 3*2 + 2*3 = 14; Torch: 1 + 1*2 + 1*3 = 6.
	if ia.HardestCards[0].Name != "Vara, Fate-Touched" || ia.HardestCards[0].Difficulty != 16 {
		t.Errorf("hardest = %s (%d), want Vara (16)", ia.HardestCards[0].Name, ia.HardestCards[0].Difficulty)
	}
	if ia.HardestCards[1].Name != "Champion of Chaos" || ia.HardestCards[1].Difficulty != 14 {
		t.Errorf("second = %s (%d), want Champion of Chaos (14)", ia.HardestCards[1].Name, ia.HardestCards[1].Difficulty)
	}

	// Bottlenecks keep difficulty order: Vara then Champion; Torch is fine.
	if len(ia.PotentialBottlenecks) != 2 {
		t.Fatalf("PotentialBottlenecks has %d entries, want 2", len(ia.PotentialBottlenecks))
	}
	if ia.PotentialBottlenecks[0].Name != "Vara, Fate-Touched" || ia.PotentialBottlenecks[1].Name != "Champion of Chaos" {
		t.Errorf("bottlenecks = %s, %s; want Vara then Champion",
			ia.PotentialBottlenecks[0].Name, ia.PotentialBottlenecks[1].Name)
	}

	// Quantity-weighted pips: Torch 4*1 + Champion 4*2 = 12 Fire.
	if got := ia.TotalPips["F"]; got != 12 {
		t.Errorf("TotalPips[F] = %d, want 12", got)
	}
	// Vara 2*3 + Champion 4*1 = 10 Shadow.
	if got := ia.TotalPips["S"]; got != 10 {
		t.Errorf("TotalPips[S] = %d, want 10", got)
	}
	if got := ia.FactionDemands["S"].MaxPips; got != 3 {
		t.Errorf("FactionDemands[S].MaxPips = %d, want 3", got)
	}
}
