// Package battle simulates games between two decks under simplified rules:
// one power play per turn, units with summoning sickness, a greedy combat
// step, and no spell effects. Games are bounded at a fixed turn cap so the
// loop terminates even for decks that can never win.
package battle

import (
	"math/rand"
	"sort"
	"time"

	"github.com/eternal-forge/eternal-forge/internal/deck"
)

const (
	StartingHealth   = 25
	MaxTurns         = 30
	openingHandSize  = 7
	mulliganHandSize = 6

	// Opening hands with power outside (2, 5) exclusive are redrawn once.
	mulliganLowPower  = 2
	mulliganHighPower = 5
)

// Winner values reported by GameResult.
const (
	WinnerPlayer1 = "player1"
	WinnerPlayer2 = "player2"
	WinnerDraw    = "draw"
)

// Card is a snapshot of one physical copy in a player's deck.
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

// Unit is a card on the battlefield with combat state.
type Unit struct {
	Card
	CurrentHealth int  `json:"current_health"`
	CanAttack     bool `json:"can_attack"`
	Tapped        bool `json:"tapped"`
}

// PlayerState is the per-game state of one side. Rebuilt from the deck
// snapshot at the start of every simulated game.
type PlayerState struct {
	Name        string
	Health      int
	Hand        []Card
	Deck        []Card
	Battlefield []*Unit
	Void        []Card

	PowerAvailable      int
	PowerMax            int
	Influence           map[string]int
	PowerPlayedThisTurn bool
}

// GameResult records the outcome of one simulated game.
type GameResult struct {
	Winner             string `json:"winner"`
	Turns              int    `json:"turns"`
	Player1FinalHealth int    `json:"player1_final_health"`
	Player2FinalHealth int    `json:"player2_final_health"`
	Player1UnitsPlayed int    `json:"player1_units_played"`
	Player2UnitsPlayed int    `json:"player2_units_played"`
	Player1DamageDealt int    `json:"player1_damage_dealt"`
	Player2DamageDealt int    `json:"player2_damage_dealt"`
}

// Aggregate summarizes a batch of simulated games.
type Aggregate struct {
	GamesPlayed      int          `json:"games_played"`
	Player1Wins      int          `json:"player1_wins"`
	Player2Wins      int          `json:"player2_wins"`
	Draws            int          `json:"draws"`
	AvgGameLength    float64      `json:"avg_game_length"`
	AvgPlayer1Health float64      `json:"avg_player1_health"`
	AvgPlayer2Health float64      `json:"avg_player2_health"`
	Player1WinRate   float64      `json:"player1_win_rate"`
	Player2WinRate   float64      `json:"player2_win_rate"`
	Results          []GameResult `json:"results"`
}

// Simulator pits two deck snapshots against each other. Not safe for
// concurrent use; each caller constructs its own instance.
type Simulator struct {
	deck1, deck2 []Card
	name1, name2 string
	rng          *rand.Rand
}

// New builds a simulator from two decks. Market slots are excluded. A nil rng
// gets a time-seeded one.
func New(d1, d2 *deck.Deck, rng *rand.Rand) *Simulator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Simulator{
		deck1: snapshotCards(d1),
		deck2: snapshotCards(d2),
		name1: d1.Name,
		name2: d2.Name,
		rng:   rng,
	}
}

func snapshotCards(d *deck.Deck) []Card {
	var cards []Card
	for _, c := range d.ExpandMain() {
		cards = append(cards, Card{
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
	return cards
}

func (s *Simulator) newPlayer(cards []Card, name string) *PlayerState {
	p := &PlayerState{
		Name:      name,
		Health:    StartingHealth,
		Deck:      make([]Card, len(cards)),
		Influence: make(map[string]int, len(deck.FactionOrder)),
	}
	for _, f := range deck.FactionOrder {
		p.Influence[f] = 0
	}
	for i, j := range s.rng.Perm(len(cards)) {
		p.Deck[i] = cards[j]
	}
	s.drawOpeningHand(p)
	return p
}

// drawOpeningHand deals 7 cards, then mulligans exactly once to a fresh 6 if
// the power count is 2 or fewer, or 5 or more.
func (s *Simulator) drawOpeningHand(p *PlayerState) {
	s.drawCards(p, openingHandSize)

	power := 0
	for _, c := range p.Hand {
		if c.IsPower {
			power++
		}
	}
	if power <= mulliganLowPower || power >= mulliganHighPower {
		p.Deck = append(p.Deck, p.Hand...)
		p.Hand = nil
		s.rng.Shuffle(len(p.Deck), func(i, j int) {
			p.Deck[i], p.Deck[j] = p.Deck[j], p.Deck[i]
		})
		s.drawCards(p, mulliganHandSize)
	}
}

func (s *Simulator) drawCards(p *PlayerState, n int) {
	for i := 0; i < n && len(p.Deck) > 0; i++ {
		p.Hand = append(p.Hand, p.Deck[0])
		p.Deck = p.Deck[1:]
	}
}

func canPlay(p *PlayerState, c Card) bool {
	if c.IsPower {
		return !p.PowerPlayedThisTurn
	}
	if c.Cost > p.PowerAvailable {
		return false
	}
	for faction, need := range deck.ParseInfluence(c.Influence) {
		if p.Influence[faction] < need {
			return false
		}
	}
	return true
}

func playCard(p *PlayerState, handPos int) {
	c := p.Hand[handPos]
	p.Hand = append(p.Hand[:handPos], p.Hand[handPos+1:]...)

	switch {
	case c.IsPower:
		p.PowerPlayedThisTurn = true
		p.PowerMax++
		p.PowerAvailable++
		for faction, pips := range deck.ParseInfluence(c.Influence) {
			p.Influence[faction] += pips
		}
		p.Void = append(p.Void, c)
	case c.Type == deck.TypeUnit:
		// Enters with summoning sickness.
		p.Battlefield = append(p.Battlefield, &Unit{Card: c, CurrentHealth: c.Health})
		p.PowerAvailable -= c.Cost
	default:
		p.Void = append(p.Void, c)
		p.PowerAvailable -= c.Cost
	}
}

// aiPlayTurn plays one power if possible, then affordable units from highest
// cost down. Spells are never cast in this simplified mode.
func aiPlayTurn(p *PlayerState) {
	if !p.PowerPlayedThisTurn {
		for pos, c := range p.Hand {
			if c.IsPower {
				playCard(p, pos)
				break
			}
		}
	}

	for {
		best := -1
		for pos, c := range p.Hand {
			if c.Type != deck.TypeUnit || !canPlay(p, c) {
				continue
			}
			if best < 0 || c.Cost > p.Hand[best].Cost {
				best = pos
			}
		}
		if best < 0 {
			return
		}
		playCard(p, best)
	}
}

// resolveCombat runs the greedy combat step and returns unblocked damage to
// the defending player. Attackers strike in descending attack order; the
// defender always blocks with its highest-current-health unit; a blocked pair
// trades damage simultaneously and either side dies at zero or less.
func resolveCombat(attacker, defender *PlayerState) int {
	var attackers []*Unit
	for _, u := range attacker.Battlefield {
		if u.CanAttack && !u.Tapped {
			attackers = append(attackers, u)
		}
	}
	if len(attackers) == 0 {
		return 0
	}
	sort.SliceStable(attackers, func(i, j int) bool {
		return attackers[i].Attack > attackers[j].Attack
	})

	blockers := append([]*Unit(nil), defender.Battlefield...)
	total := 0

	for _, atk := range attackers {
		if len(blockers) == 0 {
			total += atk.Attack
			continue
		}

		sort.SliceStable(blockers, func(i, j int) bool {
			return blockers[i].CurrentHealth > blockers[j].CurrentHealth
		})
		blk := blockers[0]

		blk.CurrentHealth -= atk.Attack
		atk.CurrentHealth -= blk.Attack

		if blk.CurrentHealth <= 0 {
			removeUnit(defender, blk)
			blockers = blockers[1:]
		}
		if atk.CurrentHealth <= 0 {
			removeUnit(attacker, atk)
		}
	}
	return total
}

func removeUnit(p *PlayerState, u *Unit) {
	for i, cur := range p.Battlefield {
		if cur == u {
			p.Battlefield = append(p.Battlefield[:i], p.Battlefield[i+1:]...)
			p.Void = append(p.Void, u.Card)
			return
		}
	}
}

// SimulateGame plays one full game and returns its result. The starting
// player is chosen uniformly at random; only that player skips the turn 1
// draw.
func (s *Simulator) SimulateGame() GameResult {
	player1 := s.newPlayer(s.deck1, s.name1)
	player2 := s.newPlayer(s.deck2, s.name2)

	current, other := player1, player2
	if s.rng.Intn(2) == 1 {
		current, other = player2, player1
	}

	turn := 0
	var p1Units, p2Units, p1Damage, p2Damage int
	deckedOut := ""

	for turn < MaxTurns {
		turn++

		// Untap: refresh power, clear summoning sickness and tapped flags.
		current.PowerAvailable = current.PowerMax
		current.PowerPlayedThisTurn = false
		for _, u := range current.Battlefield {
			u.Tapped = false
			u.CanAttack = true
		}

		// Turn 1 belongs to whichever player went first; only they skip the
		// draw. Failing a required draw loses the game on the spot.
		if turn > 1 {
			if len(current.Deck) == 0 {
				if current == player1 {
					deckedOut = WinnerPlayer1
				} else {
					deckedOut = WinnerPlayer2
				}
				break
			}
			current.Hand = append(current.Hand, current.Deck[0])
			current.Deck = current.Deck[1:]
		}

		unitsBefore := len(current.Battlefield)
		aiPlayTurn(current)
		unitsPlayed := len(current.Battlefield) - unitsBefore

		damage := resolveCombat(current, other)
		other.Health -= damage

		if current == player1 {
			p1Units += unitsPlayed
			p1Damage += damage
		} else {
			p2Units += unitsPlayed
			p2Damage += damage
		}

		if other.Health <= 0 {
			break
		}
		current, other = other, current
	}

	winner := decideWinner(player1, player2, deckedOut)

	return GameResult{
		Winner:             winner,
		Turns:              turn,
		Player1FinalHealth: max(0, player1.Health),
		Player2FinalHealth: max(0, player2.Health),
		Player1UnitsPlayed: p1Units,
		Player2UnitsPlayed: p2Units,
		Player1DamageDealt: p1Damage,
		Player2DamageDealt: p2Damage,
	}
}

func decideWinner(player1, player2 *PlayerState, deckedOut string) string {
	switch {
	case player1.Health <= 0 && player2.Health <= 0:
		return WinnerDraw
	case player2.Health <= 0:
		return WinnerPlayer1
	case player1.Health <= 0:
		return WinnerPlayer2
	case deckedOut == WinnerPlayer1:
		return WinnerPlayer2
	case deckedOut == WinnerPlayer2:
		return WinnerPlayer1
	case player1.Health > player2.Health:
		return WinnerPlayer1
	case player2.Health > player1.Health:
		return WinnerPlayer2
	default:
		return WinnerDraw
	}
}

// SimulateGames runs n independent games and aggregates the outcomes. Win
// rates are percentages of n.
func (s *Simulator) SimulateGames(n int) *Aggregate {
	agg := &Aggregate{GamesPlayed: n, Results: make([]GameResult, 0, n)}
	if n <= 0 {
		return agg
	}

	var totalTurns, totalP1Health, totalP2Health int
	for i := 0; i < n; i++ {
		res := s.SimulateGame()
		agg.Results = append(agg.Results, res)

		switch res.Winner {
		case WinnerPlayer1:
			agg.Player1Wins++
		case WinnerPlayer2:
			agg.Player2Wins++
		default:
			agg.Draws++
		}
		totalTurns += res.Turns
		totalP1Health += res.Player1FinalHealth
		totalP2Health += res.Player2FinalHealth
	}

	agg.AvgGameLength = float64(totalTurns) / float64(n)
	agg.AvgPlayer1Health = float64(totalP1Health) / float64(n)
	agg.AvgPlayer2Health = float64(totalP2Health) / float64(n)
	agg.Player1WinRate = float64(agg.Player1Wins) / float64(n) * 100
	agg.Player2WinRate = float64(agg.Player2Wins) / float64(n) * 100
	return agg
}
