package draw

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/eternal-forge/eternal-forge/internal/deck"
)

func testDeck() *deck.Deck {
	return &deck.Deck{
		Name: "Draw Test",
		Slots: []deck.Slot{
			{Card: deck.Card{ID: 1, Name: "Fire Sigil", Type: deck.TypeSigil, Influence: "{F}"}, Quantity: 25},
			{Card: deck.Card{ID: 2, Name: "Oni Ronin", Type: deck.TypeUnit, Cost: 1, Influence: "{F}"}, Quantity: 4},
			{Card: deck.Card{ID: 3, Name: "Torch", Type: deck.TypeFastSpell, Cost: 1, Influence: "{F}"}, Quantity: 4},
			{Card: deck.Card{ID: 4, Name: "Rakano Outlaw", Type: deck.TypeUnit, Cost: 2, Influence: "{F}"}, Quantity: 4},
			{Card: deck.Card{ID: 5, Name: "Soulfire Drake", Type: deck.TypeUnit, Cost: 5, Influence: "{F}{F}"}, Quantity: 4},
			{Card: deck.Card{ID: 6, Name: "Market Only", Type: deck.TypeSpell, Cost: 3}, Quantity: 1, IsMarket: true},
		},
	}
}

func rng(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func (s *Simulator) totalCards() int {
	return len(s.hand) + len(s.remaining)
}

func TestNewDrawsSeven(t *testing.T) {
	s := New(testDeck(), rng(1))
	if len(s.Hand()) != HandSize {
		t.Errorf("initial hand has %d cards, want %d", len(s.Hand()), HandSize)
	}
	// 41 main-deck cards; the market card is excluded.
	if got := s.totalCards(); got != 41 {
		t.Errorf("hand + deck = %d cards, want 41", got)
	}
	if s.Remaining() != 34 {
		t.Errorf("Remaining() = %d, want 34", s.Remaining())
	}
}

func TestConservationAcrossMulligans(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		s := New(testDeck(), rng(seed))
		for i := 0; i < 3; i++ {
			s.Mulligan()
			if got := s.totalCards(); got != 41 {
				t.Fatalf("seed %d mulligan %d: hand + deck = %d, want 41", seed, i+1, got)
			}
		}
	}
}

func TestFirstMulliganGuarantees(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		s := New(testDeck(), rng(seed))
		hand, canAgain := s.Mulligan()
		if !canAgain {
			t.Fatalf("seed %d: should be able to mulligan a second time", seed)
		}
		if len(hand) != HandSize {
			t.Fatalf("seed %d: first mulligan hand has %d cards, want %d", seed, len(hand), HandSize)
		}
		power := 0
		for _, c := range hand {
			if c.IsPower {
				power++
			}
		}
		if power < 2 || power > 4 {
			t.Errorf("seed %d: first mulligan power count = %d, want 2-4", seed, power)
		}
	}
}

func TestSecondMulliganHandSize(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		s := New(testDeck(), rng(seed))
		s.Mulligan()
		hand, canAgain := s.Mulligan()
		if canAgain {
			t.Fatalf("seed %d: no third mulligan should be allowed", seed)
		}
		if len(hand) != MulliganHandSize {
			t.Fatalf("seed %d: second mulligan hand has %d cards, want %d", seed, len(hand), MulliganHandSize)
		}
		power := 0
		for _, c := range hand {
			if c.IsPower {
				power++
			}
		}
		if power < 2 || power > 4 {
			t.Errorf("seed %d: second mulligan power count = %d, want 2-4", seed, power)
		}
	}
}

func TestThirdMulliganIsNoOp(t *testing.T) {
	s := New(testDeck(), rng(7))
	s.Mulligan()
	s.Mulligan()
	before := s.Hand()

	hand, ok := s.Mulligan()
	if ok {
		t.Error("third mulligan reported as permitted")
	}
	if len(hand) != len(before) {
		t.Fatalf("third mulligan changed hand size from %d to %d", len(before), len(hand))
	}
	for i := range hand {
		if hand[i] != before[i] {
			t.Fatalf("third mulligan changed the hand at position %d", i)
		}
	}
}

func TestDrawCard(t *testing.T) {
	s := New(testDeck(), rng(3))
	card, ok := s.DrawCard()
	if !ok {
		t.Fatal("DrawCard() failed with a non-empty deck")
	}
	if card.Name == "" {
		t.Error("drawn card has no name")
	}
	if len(s.Hand()) != HandSize+1 {
		t.Errorf("hand has %d cards after drawing, want %d", len(s.Hand()), HandSize+1)
	}

	for s.Remaining() > 0 {
		s.DrawCard()
	}
	if _, ok := s.DrawCard(); ok {
		t.Error("DrawCard() succeeded on an empty deck")
	}
	if got := s.totalCards(); got != 41 {
		t.Errorf("hand + deck = %d after drawing out, want 41", got)
	}
}

func TestDuplicateCopiesDistinguishable(t *testing.T) {
	// A deck of identical cards: every copy must still have a distinct handle.
	d := &deck.Deck{Slots: []deck.Slot{
		{Card: deck.Card{ID: 1, Name: "Fire Sigil", Type: deck.TypeSigil, Influence: "{F}"}, Quantity: 10},
	}}
	s := New(d, rng(1))
	seen := make(map[int]bool)
	for _, idx := range s.hand {
		if seen[idx] {
			t.Fatalf("handle %d appears twice in hand", idx)
		}
		seen[idx] = true
	}
	for _, idx := range s.remaining {
		if seen[idx] {
			t.Fatalf("handle %d in both hand and deck", idx)
		}
		seen[idx] = true
	}
	if len(seen) != 10 {
		t.Errorf("%d distinct handles, want 10", len(seen))
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := New(testDeck(), rng(11))
	s.Mulligan()
	s.DrawCard()

	raw, err := json.Marshal(s.Snapshot())
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}
	var state State
	if err := json.Unmarshal(raw, &state); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}
	restored, err := Restore(&state, rng(99))
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}

	if restored.MulliganCount() != s.MulliganCount() {
		t.Errorf("mulligan count = %d, want %d", restored.MulliganCount(), s.MulliganCount())
	}
	if restored.Remaining() != s.Remaining() {
		t.Errorf("remaining = %d, want %d", restored.Remaining(), s.Remaining())
	}
	origHand, newHand := s.Hand(), restored.Hand()
	if len(origHand) != len(newHand) {
		t.Fatalf("hand size = %d, want %d", len(newHand), len(origHand))
	}
	for i := range origHand {
		if origHand[i] != newHand[i] {
			t.Errorf("hand position %d = %+v, want %+v", i, newHand[i], origHand[i])
		}
	}
}

func TestRestoreRejectsBadIndices(t *testing.T) {
	state := &State{
		Cards: []Card{{ID: 1, Name: "Fire Sigil"}},
		Hand:  []int{3},
	}
	if _, err := Restore(state, nil); err == nil {
		t.Error("Restore accepted an out-of-range card index")
	}
}

func TestHandStats(t *testing.T) {
	s := New(testDeck(), rng(5))
	stats := s.HandStats()

	if stats.TotalCards != HandSize {
		t.Errorf("TotalCards = %d, want %d", stats.TotalCards, HandSize)
	}
	if stats.PowerCount+stats.NonPowerCount != stats.TotalCards {
		t.Error("power + non-power != total")
	}
	if stats.Influence["F"] != stats.PowerCount {
		// Every power card in this deck provides exactly one Fire pip.
		t.Errorf("Influence[F] = %d, want %d", stats.Influence["F"], stats.PowerCount)
	}
	if !stats.CanMulligan || stats.MulliganCount != 0 {
		t.Error("fresh hand should have both mulligans available")
	}
}

func TestSimulateOpeningHands(t *testing.T) {
	const n = 500
	stats := SimulateOpeningHands(testDeck(), n, rng(42))

	if stats.Keeps+stats.MulliganedOnce+stats.MulliganedTwice != n {
		t.Errorf("keep/mull counts sum to %d, want %d",
			stats.Keeps+stats.MulliganedOnce+stats.MulliganedTwice, n)
	}

	total := 0
	for _, count := range stats.PowerDistribution {
		total += count
	}
	if total != n {
		t.Errorf("power distribution sums to %d, want %d", total, n)
	}

	// Forced mulligans guarantee 2-4 power, so hands that mulliganed once
	// always land in range; screw/flood can only come from kept hands or
	// decks too thin to supply the guarantee, neither of which applies to
	// a kept hand here (keeps are only hands already in range).
	if stats.HandsWith2To4Power != n {
		t.Errorf("HandsWith2To4Power = %d, want %d for this deck", stats.HandsWith2To4Power, n)
	}
	if stats.HandsScrew != 0 || stats.HandsFlood != 0 {
		t.Errorf("screw/flood = %d/%d, want 0/0", stats.HandsScrew, stats.HandsFlood)
	}

	if stats.KeepRatePct < 0 || stats.KeepRatePct > 100 {
		t.Errorf("KeepRatePct = %v, want a percentage", stats.KeepRatePct)
	}
	if stats.AvgPowerAfterMull < 2 || stats.AvgPowerAfterMull > 4 {
		t.Errorf("AvgPowerAfterMull = %v, want within the guaranteed range", stats.AvgPowerAfterMull)
	}

	// 16 of 41 cards cost <= 1 in the non-power pool, so most hands have an
	// early play; the counter must at least be sane.
	if stats.PlayableTurn1 > n || stats.PlayableTurn3 < stats.PlayableTurn1 {
		t.Errorf("playability counters inconsistent: t1=%d t3=%d", stats.PlayableTurn1, stats.PlayableTurn3)
	}

	if len(stats.TopCards) == 0 || stats.TopCards[0].Count == 0 {
		t.Error("TopCards should record appearances")
	}
}

func TestSimulateOpeningHandsDeterministic(t *testing.T) {
	a := SimulateOpeningHands(testDeck(), 200, rng(7))
	b := SimulateOpeningHands(testDeck(), 200, rng(7))
	if a.Keeps != b.Keeps || a.AvgPowerInitial != b.AvgPowerInitial {
		t.Error("same seed must reproduce identical aggregates")
	}
}
