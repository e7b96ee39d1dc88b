// Package draw simulates opening hands with the game's mulligan mechanics:
// a random 7, one redraw of 7 with 2-4 power guaranteed, one final redraw of
// 6 with the same guarantee.
package draw

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/eternal-forge/eternal-forge/internal/deck"
)

// Hand and mulligan limits.
const (
	HandSize         = 7
	MulliganHandSize = 6
	MaxMulligans     = 2
	minForcedPower   = 2
	maxForcedPower   = 4
)

// Card is the snapshot of one card carried through the simulation.
type Card struct {
	ID        int           `json:"id"`
	Name      string        `json:"name"`
	Type      deck.CardType `json:"card_type"`
	Cost      int           `json:"cost"`
	Influence string        `json:"influence"`
	IsPower   bool          `json:"is_power"`
}

// State is the serializable simulator state. Cards holds one entry per
// physical copy; Hand and Remaining reference copies by index into Cards, so
// duplicate-named copies stay distinguishable across a round trip.
type State struct {
	Cards     []Card `json:"cards"`
	Hand      []int  `json:"hand"`
	Remaining []int  `json:"remaining"`
	Mulligans int    `json:"mulligans"`
}

// Simulator draws hands from a deck under the game's mulligan rules.
type Simulator struct {
	cards     []Card // expanded copies; index is the copy's handle
	hand      []int
	remaining []int
	mulligans int
	rng       *rand.Rand
}

// New builds a simulator from a deck snapshot (market slots excluded),
// shuffles, and draws the initial hand. A nil rng gets a time-seeded one.
func New(d *deck.Deck, rng *rand.Rand) *Simulator {
	s := &Simulator{rng: ensureRNG(rng)}
	for _, c := range d.ExpandMain() {
		s.cards = append(s.cards, Card{
			ID:        c.ID,
			Name:      c.Name,
			Type:      c.Type,
			Cost:      c.Cost,
			Influence: c.Influence,
			IsPower:   c.IsPower(),
		})
	}
	s.ShuffleAndDraw()
	return s
}

func ensureRNG(rng *rand.Rand) *rand.Rand {
	if rng == nil {
		return rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return rng
}

// ShuffleAndDraw reshuffles the whole deck and draws a fresh 7-card hand,
// resetting the mulligan counter.
func (s *Simulator) ShuffleAndDraw() []Card {
	s.mulligans = 0
	order := s.rng.Perm(len(s.cards))

	n := HandSize
	if n > len(order) {
		n = len(order)
	}
	s.hand = append([]int(nil), order[:n]...)
	s.remaining = append([]int(nil), order[n:]...)
	return s.Hand()
}

// CanMulligan reports whether another mulligan is permitted.
func (s *Simulator) CanMulligan() bool {
	return s.mulligans < MaxMulligans
}

// Mulligan takes a mulligan: the first redraws 7 cards, the second 6, both
// with 2-4 power guaranteed (fewer if the deck cannot provide the split).
// After the second, Mulligan is a no-op returning the current hand and false.
func (s *Simulator) Mulligan() ([]Card, bool) {
	if !s.CanMulligan() {
		return s.Hand(), false
	}
	s.mulligans++

	handSize := HandSize
	if s.mulligans > 1 {
		handSize = MulliganHandSize
	}

	// Reshuffle everything and partition into power / non-power pools.
	order := s.rng.Perm(len(s.cards))
	var power, nonPower []int
	for _, idx := range order {
		if s.cards[idx].IsPower {
			power = append(power, idx)
		} else {
			nonPower = append(nonPower, idx)
		}
	}

	// Pick the guaranteed power count uniformly in [2, min(4, available,
	// handSize-1)], degrading to whatever the deck can supply.
	upper := maxForcedPower
	if len(power) < upper {
		upper = len(power)
	}
	if handSize-1 < upper {
		upper = handSize - 1
	}
	powerCount := upper
	if upper > minForcedPower {
		powerCount = minForcedPower + s.rng.Intn(upper-minForcedPower+1)
	}

	nonPowerCount := handSize - powerCount
	if nonPowerCount > len(nonPower) {
		nonPowerCount = len(nonPower)
	}
	// Short on non-power: backfill from the power surplus.
	if powerCount+nonPowerCount < handSize {
		extra := handSize - powerCount - nonPowerCount
		if extra > len(power)-powerCount {
			extra = len(power) - powerCount
		}
		powerCount += extra
	}

	hand := append(append([]int(nil), power[:powerCount]...), nonPower[:nonPowerCount]...)
	s.rng.Shuffle(len(hand), func(i, j int) { hand[i], hand[j] = hand[j], hand[i] })
	s.hand = hand

	inHand := make(map[int]bool, len(hand))
	for _, idx := range hand {
		inHand[idx] = true
	}
	s.remaining = s.remaining[:0]
	for _, idx := range order {
		if !inHand[idx] {
			s.remaining = append(s.remaining, idx)
		}
	}

	return s.Hand(), s.CanMulligan()
}

// DrawCard moves the top card of the remaining deck into hand. The second
// return is false when the deck is empty.
func (s *Simulator) DrawCard() (Card, bool) {
	if len(s.remaining) == 0 {
		return Card{}, false
	}
	idx := s.remaining[0]
	s.remaining = s.remaining[1:]
	s.hand = append(s.hand, idx)
	return s.cards[idx], true
}

// Hand returns the current hand.
func (s *Simulator) Hand() []Card {
	hand := make([]Card, 0, len(s.hand))
	for _, idx := range s.hand {
		hand = append(hand, s.cards[idx])
	}
	return hand
}

// Remaining returns the number of cards left in the deck.
func (s *Simulator) Remaining() int {
	return len(s.remaining)
}

// MulliganCount returns how many mulligans have been taken.
func (s *Simulator) MulliganCount() int {
	return s.mulligans
}

// HandStats describes the current hand.
type HandStats struct {
	TotalCards    int            `json:"total_cards"`
	PowerCount    int            `json:"power_count"`
	NonPowerCount int            `json:"non_power_count"`
	PowerCards    []Card         `json:"power_cards"`
	NonPowerCards []Card         `json:"non_power_cards"`
	Influence     map[string]int `json:"influence"`
	ByCost        map[int][]Card `json:"by_cost"`
	DeckRemaining int            `json:"deck_remaining"`
	MulliganCount int            `json:"mulligan_count"`
	CanMulligan   bool           `json:"can_mulligan"`
}

// HandStats analyzes the current hand: power split, influence pips available
// from power cards, and non-power cards grouped by cost.
func (s *Simulator) HandStats() HandStats {
	stats := HandStats{
		Influence:     make(map[string]int),
		ByCost:        make(map[int][]Card),
		DeckRemaining: len(s.remaining),
		MulliganCount: s.mulligans,
		CanMulligan:   s.CanMulligan(),
	}
	for _, idx := range s.hand {
		card := s.cards[idx]
		stats.TotalCards++
		if card.IsPower {
			stats.PowerCount++
			stats.PowerCards = append(stats.PowerCards, card)
			for faction, pips := range deck.ParseInfluence(card.Influence) {
				stats.Influence[faction] += pips
			}
		} else {
			stats.NonPowerCount++
			stats.NonPowerCards = append(stats.NonPowerCards, card)
			stats.ByCost[card.Cost] = append(stats.ByCost[card.Cost], card)
		}
	}
	return stats
}

// Snapshot returns a serializable copy of the simulator state. The snapshot
// holds no references to live simulator internals.
func (s *Simulator) Snapshot() *State {
	return &State{
		Cards:     append([]Card(nil), s.cards...),
		Hand:      append([]int(nil), s.hand...),
		Remaining: append([]int(nil), s.remaining...),
		Mulligans: s.mulligans,
	}
}

// Restore rebuilds a simulator from a snapshot, preserving committed shuffle
// results. A nil rng gets a time-seeded one.
func Restore(state *State, rng *rand.Rand) (*Simulator, error) {
	if state == nil {
		return nil, fmt.Errorf("nil state")
	}
	for _, idx := range append(append([]int(nil), state.Hand...), state.Remaining...) {
		if idx < 0 || idx >= len(state.Cards) {
			return nil, fmt.Errorf("card index %d out of range", idx)
		}
	}
	return &Simulator{
		cards:     append([]Card(nil), state.Cards...),
		hand:      append([]int(nil), state.Hand...),
		remaining: append([]int(nil), state.Remaining...),
		mulligans: state.Mulligans,
		rng:       ensureRNG(rng),
	}, nil
}
