package deck

import "fmt"

// Deck building limits.
const (
	MinDeckSize       = 75
	MaxDeckSize       = 150
	MaxCopiesPerCard  = 4 // Sigils exempt
	MaxMarketSize     = 5
	MaxCopiesInMarket = 1
)

// Slot is one entry of a deck: a card, how many physical copies occupy the
// slot, and whether the slot belongs to the market instead of the main deck.
type Slot struct {
	Card     Card `json:"card"`
	Quantity int  `json:"quantity"`
	IsMarket bool `json:"is_market"`
}

// Deck is an ordered multiset of card slots.
type Deck struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name"`
	Format string `json:"format"` // "Throne" or "Expedition"
	Slots  []Slot `json:"slots"`
}

// MainSlots returns the main-deck slots, excluding the market.
func (d *Deck) MainSlots() []Slot {
	var slots []Slot
	for _, s := range d.Slots {
		if !s.IsMarket {
			slots = append(slots, s)
		}
	}
	return slots
}

// MarketSlots returns the market slots.
func (d *Deck) MarketSlots() []Slot {
	var slots []Slot
	for _, s := range d.Slots {
		if s.IsMarket {
			slots = append(slots, s)
		}
	}
	return slots
}

// MainDeckCount returns the total number of main-deck cards.
func (d *Deck) MainDeckCount() int {
	total := 0
	for _, s := range d.MainSlots() {
		total += s.Quantity
	}
	return total
}

// MarketCount returns the total number of market cards.
func (d *Deck) MarketCount() int {
	total := 0
	for _, s := range d.MarketSlots() {
		total += s.Quantity
	}
	return total
}

// PowerCount returns the number of power cards in the main deck.
func (d *Deck) PowerCount() int {
	total := 0
	for _, s := range d.MainSlots() {
		if s.Card.IsPower() {
			total += s.Quantity
		}
	}
	return total
}

// NonPowerCount returns the number of non-power cards in the main deck.
func (d *Deck) NonPowerCount() int {
	return d.MainDeckCount() - d.PowerCount()
}

// ExpandMain returns the main deck as a flat list with one entry per physical
// copy, in slot order. Simulators index into this list to keep duplicate-named
// copies distinguishable.
func (d *Deck) ExpandMain() []Card {
	var cards []Card
	for _, s := range d.MainSlots() {
		for i := 0; i < s.Quantity; i++ {
			cards = append(cards, s.Card)
		}
	}
	return cards
}

// ValidationResult reports whether a deck is legal to play.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Validate checks the deck against the game's deck building rules: main deck
// size, minimum power and non-power ratios, market size, and per-card copy
// limits. Violations are errors; the result never panics on degenerate decks.
func (d *Deck) Validate() ValidationResult {
	var errors, warnings []string

	mainCount := d.MainDeckCount()
	marketCount := d.MarketCount()
	powerCount := d.PowerCount()
	nonPowerCount := d.NonPowerCount()

	if mainCount < MinDeckSize {
		errors = append(errors, fmt.Sprintf("Main deck has %d cards (minimum %d)", mainCount, MinDeckSize))
	}
	if mainCount > MaxDeckSize {
		errors = append(errors, fmt.Sprintf("Main deck has %d cards (maximum %d)", mainCount, MaxDeckSize))
	}

	// At least a third of the deck must be power, and a third non-power.
	minThird := (mainCount + 2) / 3
	if powerCount < minThird {
		errors = append(errors, fmt.Sprintf("Need at least %d power cards (have %d)", minThird, powerCount))
	}
	if nonPowerCount < minThird {
		errors = append(errors, fmt.Sprintf("Need at least %d non-power cards (have %d)", minThird, nonPowerCount))
	}

	if marketCount > MaxMarketSize {
		errors = append(errors, fmt.Sprintf("Market has %d cards (maximum %d)", marketCount, MaxMarketSize))
	}

	// Copy limits over the main deck; the same card may appear in several slots.
	counts := make(map[int]int)
	for _, s := range d.MainSlots() {
		counts[s.Card.ID] += s.Quantity
	}
	reported := make(map[int]bool)
	for _, s := range d.MainSlots() {
		if reported[s.Card.ID] {
			continue
		}
		if counts[s.Card.ID] > MaxCopiesPerCard && !s.Card.IsSigil() {
			errors = append(errors, fmt.Sprintf("Too many copies of %s: %d (max %d)", s.Card.Name, counts[s.Card.ID], MaxCopiesPerCard))
			reported[s.Card.ID] = true
		}
	}

	mainIDs := make(map[int]bool)
	for _, s := range d.MainSlots() {
		mainIDs[s.Card.ID] = true
	}
	for _, s := range d.MarketSlots() {
		if s.Quantity > MaxCopiesInMarket {
			errors = append(errors, fmt.Sprintf("Market can only have %d copy of %s", MaxCopiesInMarket, s.Card.Name))
		}
		if mainIDs[s.Card.ID] && !s.Card.IsSigil() && !s.Card.HasBargain() {
			errors = append(errors, fmt.Sprintf("%s cannot be in both main deck and market", s.Card.Name))
		}
	}

	return ValidationResult{
		Valid:    len(errors) == 0,
		Errors:   errors,
		Warnings: warnings,
	}
}
