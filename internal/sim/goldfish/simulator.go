// Package goldfish simulates playing a deck out turn by turn against an
// opponent who does nothing. Power development, influence accumulation, and
// board presence are tracked; combat, opponent actions, and card text are not
// modeled. Damage potential is the sum of battlefield attack values, not
// damage actually dealt.
package goldfish

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/eternal-forge/eternal-forge/internal/deck"
)

const openingHandSize = 7

// Actions reported by PlayResult.
const (
	ActionPlayedPower = "played_power"
	ActionPlayedUnit  = "played_unit"
	ActionCastSpell   = "cast_spell"
)

// Card is a snapshot of one physical copy in the simulation.
type Card struct {
	ID        int           `json:"id"`
	Name      string        `json:"name"`
	Type      deck.CardType `json:"card_type"`
	Cost      int           `json:"cost"`
	Influence string        `json:"influence"`
	Attack    int           `json:"attack"`
	Health    int           `json:"health"`
	IsPower   bool          `json:"is_power"`
}

// State is the serializable game state. Cards holds one entry per physical
// copy; the four zone lists reference copies by index into Cards, so identical
// copies remain distinguishable across a serialize/restore round trip.
type State struct {
	Cards       []Card `json:"cards"`
	Hand        []int  `json:"hand"`
	Deck        []int  `json:"deck"`
	Battlefield []int  `json:"battlefield"`
	Void        []int  `json:"void"`

	PowerAvailable int            `json:"power_available"`
	PowerMax       int            `json:"power_max"`
	Influence      map[string]int `json:"influence"`

	Turn                int  `json:"turn"`
	PowerPlayedThisTurn bool `json:"power_played_this_turn"`

	TotalDamagePotential int `json:"total_damage_potential"`
	CardsPlayed          int `json:"cards_played"`
	SpellsCast           int `json:"spells_cast"`
}

// Simulator steps a single deck through goldfish turns. Not safe for
// concurrent use; each caller constructs its own instance.
type Simulator struct {
	cards       []Card
	hand        []int
	deck        []int
	battlefield []int
	void        []int

	powerAvailable int
	powerMax       int
	influence      map[string]int

	turn                int
	powerPlayedThisTurn bool

	totalDamagePotential int
	cardsPlayed          int
	spellsCast           int

	rng *rand.Rand
}

// New builds a simulator from the deck's main cards (market excluded),
// shuffles, and draws the opening hand. A nil rng gets a time-seeded one.
func New(d *deck.Deck, rng *rand.Rand) *Simulator {
	s := &Simulator{rng: ensureRNG(rng)}
	for _, c := range d.ExpandMain() {
		s.cards = append(s.cards, Card{
			ID:        c.ID,
			Name:      c.Name,
			Type:      c.Type,
			Cost:      c.Cost,
			Influence: c.Influence,
			Attack:    c.Attack,
			Health:    c.Health,
			IsPower:   c.IsPower(),
		})
	}
	s.setup()
	return s
}

func ensureRNG(rng *rand.Rand) *rand.Rand {
	if rng == nil {
		return rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return rng
}

func (s *Simulator) setup() {
	s.deck = s.rng.Perm(len(s.cards))
	s.hand = nil
	s.battlefield = nil
	s.void = nil
	s.powerAvailable = 0
	s.powerMax = 0
	s.turn = 0
	s.powerPlayedThisTurn = false
	s.totalDamagePotential = 0
	s.cardsPlayed = 0
	s.spellsCast = 0

	s.influence = make(map[string]int, len(deck.FactionOrder))
	for _, f := range deck.FactionOrder {
		s.influence[f] = 0
	}

	for i := 0; i < openingHandSize && len(s.deck) > 0; i++ {
		s.hand = append(s.hand, s.deck[0])
		s.deck = s.deck[1:]
	}
}

// Reset reshuffles and deals a fresh opening hand.
func (s *Simulator) Reset() {
	s.setup()
}

// TurnInfo describes the start of a turn.
type TurnInfo struct {
	Turn           int   `json:"turn"`
	Drawn          *Card `json:"drawn,omitempty"`
	HandSize       int   `json:"hand_size"`
	PowerAvailable int   `json:"power_available"`
}

// StartTurn advances to the next turn: resets the power-played flag, refills
// available power, and draws a card. The player is on the play, so no card is
// drawn on turn 1.
func (s *Simulator) StartTurn() TurnInfo {
	s.turn++
	s.powerPlayedThisTurn = false
	s.powerAvailable = s.powerMax

	var drawn *Card
	if s.turn > 1 && len(s.deck) > 0 {
		idx := s.deck[0]
		s.deck = s.deck[1:]
		s.hand = append(s.hand, idx)
		c := s.cards[idx]
		drawn = &c
	}

	return TurnInfo{
		Turn:           s.turn,
		Drawn:          drawn,
		HandSize:       len(s.hand),
		PowerAvailable: s.powerAvailable,
	}
}

func (s *Simulator) canPlay(idx int) bool {
	c := s.cards[idx]
	if c.IsPower {
		return !s.powerPlayedThisTurn
	}
	if c.Cost > s.powerAvailable {
		return false
	}
	for faction, need := range deck.ParseInfluence(c.Influence) {
		if s.influence[faction] < need {
			return false
		}
	}
	return true
}

// Playable returns the hand positions of cards that can be played right now.
func (s *Simulator) Playable() []int {
	var positions []int
	for pos, idx := range s.hand {
		if s.canPlay(idx) {
			positions = append(positions, pos)
		}
	}
	return positions
}

// PlayableCards returns snapshots of the currently playable cards.
func (s *Simulator) PlayableCards() []Card {
	var out []Card
	for _, pos := range s.Playable() {
		out = append(out, s.cards[s.hand[pos]])
	}
	return out
}

// PlayResult reports the outcome of one play attempt. Gameplay failures are
// result values, not errors.
type PlayResult struct {
	Success bool   `json:"success"`
	Action  string `json:"action,omitempty"`
	Card    Card   `json:"card,omitempty"`
	Error   string `json:"error,omitempty"`

	PowerMax    int `json:"power_max,omitempty"`
	TotalDamage int `json:"total_damage,omitempty"`
}

// PlayCard plays the card at the given hand position. On failure the state is
// unchanged.
func (s *Simulator) PlayCard(handPos int) PlayResult {
	if handPos < 0 || handPos >= len(s.hand) {
		return PlayResult{Success: false, Error: "card not in hand"}
	}
	idx := s.hand[handPos]
	if !s.canPlay(idx) {
		return PlayResult{Success: false, Error: "cannot play this card"}
	}

	s.hand = append(s.hand[:handPos], s.hand[handPos+1:]...)
	s.cardsPlayed++
	c := s.cards[idx]

	if c.IsPower {
		s.powerPlayedThisTurn = true
		s.powerMax++
		s.powerAvailable++
		for faction, pips := range deck.ParseInfluence(c.Influence) {
			s.influence[faction] += pips
		}
		s.void = append(s.void, idx)
		return PlayResult{
			Success:  true,
			Action:   ActionPlayedPower,
			Card:     c,
			PowerMax: s.powerMax,
		}
	}

	s.powerAvailable -= c.Cost
	if c.Type == deck.TypeUnit {
		s.battlefield = append(s.battlefield, idx)
		s.totalDamagePotential += c.Attack
		return PlayResult{
			Success:     true,
			Action:      ActionPlayedUnit,
			Card:        c,
			TotalDamage: s.totalDamagePotential,
		}
	}

	s.void = append(s.void, idx)
	s.spellsCast++
	return PlayResult{Success: true, Action: ActionCastSpell, Card: c}
}

// AutoPlayTurn plays the current turn with a fixed heuristic: one power card
// if possible, then affordable units from highest cost down, then remaining
// spells from highest cost down. Playability is re-evaluated after every play
// since costs and influence change.
func (s *Simulator) AutoPlayTurn() []PlayResult {
	var actions []PlayResult

	if !s.powerPlayedThisTurn {
		for pos, idx := range s.hand {
			if s.cards[idx].IsPower {
				if res := s.PlayCard(pos); res.Success {
					actions = append(actions, res)
				}
				break
			}
		}
	}

	actions = append(actions, s.playGreedy(func(c Card) bool {
		return c.Type == deck.TypeUnit
	})...)
	actions = append(actions, s.playGreedy(func(c Card) bool {
		return !c.IsPower && c.Type != deck.TypeUnit
	})...)

	return actions
}

// playGreedy repeatedly plays the highest-cost playable card matching the
// filter until none remain.
func (s *Simulator) playGreedy(match func(Card) bool) []PlayResult {
	var actions []PlayResult
	for {
		candidates := s.Playable()
		var filtered []int
		for _, pos := range candidates {
			if match(s.cards[s.hand[pos]]) {
				filtered = append(filtered, pos)
			}
		}
		if len(filtered) == 0 {
			return actions
		}
		sort.SliceStable(filtered, func(i, j int) bool {
			return s.cards[s.hand[filtered[i]]].Cost > s.cards[s.hand[filtered[j]]].Cost
		})
		res := s.PlayCard(filtered[0])
		if !res.Success {
			return actions
		}
		actions = append(actions, res)
	}
}

// Summary is a point-in-time view of the game state.
type Summary struct {
	Turn                 int            `json:"turn"`
	Hand                 []Card         `json:"hand"`
	HandSize             int            `json:"hand_size"`
	Battlefield          []Card         `json:"battlefield"`
	BattlefieldSize      int            `json:"battlefield_size"`
	DeckSize             int            `json:"deck_size"`
	VoidSize             int            `json:"void_size"`
	PowerAvailable       int            `json:"power_available"`
	PowerMax             int            `json:"power_max"`
	Influence            map[string]int `json:"influence"`
	TotalDamagePotential int            `json:"total_damage_potential"`
	CardsPlayed          int            `json:"cards_played"`
	SpellsCast           int            `json:"spells_cast"`
}

// StateSummary reports the current state. Influence lists only factions with
// at least one pip accumulated.
func (s *Simulator) StateSummary() Summary {
	influence := make(map[string]int)
	for faction, pips := range s.influence {
		if pips > 0 {
			influence[faction] = pips
		}
	}
	return Summary{
		Turn:                 s.turn,
		Hand:                 s.zoneCards(s.hand),
		HandSize:             len(s.hand),
		Battlefield:          s.zoneCards(s.battlefield),
		BattlefieldSize:      len(s.battlefield),
		DeckSize:             len(s.deck),
		VoidSize:             len(s.void),
		PowerAvailable:       s.powerAvailable,
		PowerMax:             s.powerMax,
		Influence:            influence,
		TotalDamagePotential: s.totalDamagePotential,
		CardsPlayed:          s.cardsPlayed,
		SpellsCast:           s.spellsCast,
	}
}

func (s *Simulator) zoneCards(zone []int) []Card {
	out := make([]Card, len(zone))
	for i, idx := range zone {
		out[i] = s.cards[idx]
	}
	return out
}

// TurnSummary records what happened during one auto-played turn.
type TurnSummary struct {
	Turn             int            `json:"turn"`
	Drawn            *Card          `json:"drawn,omitempty"`
	Actions          []PlayResult   `json:"actions"`
	PowerMax         int            `json:"power_max"`
	Influence        map[string]int `json:"influence"`
	BattlefieldCount int            `json:"battlefield_count"`
	DamagePotential  int            `json:"damage_potential"`
	HandSize         int            `json:"hand_size"`
}

// SimulateTurns auto-plays the given number of turns and returns a summary
// for each.
func (s *Simulator) SimulateTurns(numTurns int) []TurnSummary {
	summaries := make([]TurnSummary, 0, numTurns)
	for i := 0; i < numTurns; i++ {
		info := s.StartTurn()
		actions := s.AutoPlayTurn()
		state := s.StateSummary()
		summaries = append(summaries, TurnSummary{
			Turn:             state.Turn,
			Drawn:            info.Drawn,
			Actions:          actions,
			PowerMax:         state.PowerMax,
			Influence:        state.Influence,
			BattlefieldCount: state.BattlefieldSize,
			DamagePotential:  state.TotalDamagePotential,
			HandSize:         state.HandSize,
		})
	}
	return summaries
}

// Turn returns the current turn number.
func (s *Simulator) Turn() int { return s.turn }

// Hand returns a snapshot of the cards currently in hand.
func (s *Simulator) Hand() []Card { return s.zoneCards(s.hand) }

// Snapshot returns a deep copy of the state suitable for serialization.
func (s *Simulator) Snapshot() *State {
	influence := make(map[string]int, len(s.influence))
	for faction, pips := range s.influence {
		influence[faction] = pips
	}
	return &State{
		Cards:                append([]Card(nil), s.cards...),
		Hand:                 append([]int(nil), s.hand...),
		Deck:                 append([]int(nil), s.deck...),
		Battlefield:          append([]int(nil), s.battlefield...),
		Void:                 append([]int(nil), s.void...),
		PowerAvailable:       s.powerAvailable,
		PowerMax:             s.powerMax,
		Influence:            influence,
		Turn:                 s.turn,
		PowerPlayedThisTurn:  s.powerPlayedThisTurn,
		TotalDamagePotential: s.totalDamagePotential,
		CardsPlayed:          s.cardsPlayed,
		SpellsCast:           s.spellsCast,
	}
}

// Restore rebuilds a simulator from a snapshot. Zone indices are validated
// against the card list.
func Restore(state *State, rng *rand.Rand) (*Simulator, error) {
	for _, zone := range [][]int{state.Hand, state.Deck, state.Battlefield, state.Void} {
		for _, idx := range zone {
			if idx < 0 || idx >= len(state.Cards) {
				return nil, fmt.Errorf("restore goldfish state: card index %d out of range", idx)
			}
		}
	}

	influence := make(map[string]int, len(deck.FactionOrder))
	for _, f := range deck.FactionOrder {
		influence[f] = state.Influence[f]
	}

	return &Simulator{
		cards:                append([]Card(nil), state.Cards...),
		hand:                 append([]int(nil), state.Hand...),
		deck:                 append([]int(nil), state.Deck...),
		battlefield:          append([]int(nil), state.Battlefield...),
		void:                 append([]int(nil), state.Void...),
		powerAvailable:       state.PowerAvailable,
		powerMax:             state.PowerMax,
		influence:            influence,
		turn:                 state.Turn,
		powerPlayedThisTurn:  state.PowerPlayedThisTurn,
		totalDamagePotential: state.TotalDamagePotential,
		cardsPlayed:          state.CardsPlayed,
		spellsCast:           state.SpellsCast,
		rng:                  ensureRNG(rng),
	}, nil
}
