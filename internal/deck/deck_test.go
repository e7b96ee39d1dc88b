package deck

import (
	"strings"
	"testing"
)

func legalDeck() *Deck {
	return &Deck{
		Name:   "Legal",
		Format: "Throne",
		Slots: []Slot{
			{Card: Card{ID: 1, Name: "Fire Sigil", Type: TypeSigil, Influence: "{F}"}, Quantity: 25},
			{Card: Card{ID: 2, Name: "Oni Ronin", Type: TypeUnit, Cost: 1, Influence: "{F}"}, Quantity: 4},
			{Card: Card{ID: 3, Name: "Torch", Type: TypeFastSpell, Cost: 1, Influence: "{F}"}, Quantity: 4},
			{Card: Card{ID: 4, Name: "Rakano Outlaw", Type: TypeUnit, Cost: 2, Influence: "{F}"}, Quantity: 4},
			{Card: Card{ID: 5, Name: "Pyroknight", Type: TypeUnit, Cost: 3, Influence: "{F}{F}"}, Quantity: 4},
			{Card: Card{ID: 6, Name: "Vadius", Type: TypeUnit, Cost: 4, Influence: "{F}{F}"}, Quantity: 4},
			{Card: Card{ID: 7, Name: "Soulfire Drake", Type: TypeUnit, Cost: 5, Influence: "{F}{F}"}, Quantity: 4},
			{Card: Card{ID: 8, Name: "Flame Blast", Type: TypeSpell, Cost: 6, Influence: "{F}{F}"}, Quantity: 4},
			{Card: Card{ID: 9, Name: "Obliterate", Type: TypeSpell, Cost: 6, Influence: "{F}{F}"}, Quantity: 4},
			{Card: Card{ID: 10, Name: "Mirror Image", Type: TypeSpell, Cost: 4, Influence: "{F}"}, Quantity: 4},
			{Card: Card{ID: 11, Name: "Heart of the Vault", Type: TypeUnit, Cost: 6, Influence: "{F}{F}"}, Quantity: 4},
			{Card: Card{ID: 12, Name: "Granite Waystone", Type: TypeSpell, Cost: 1}, Quantity: 1, IsMarket: true},
		},
	}
}

func TestDeckCounts(t *testing.T) {
	d := legalDeck()

	if got := d.MainDeckCount(); got != 65+10 {
		t.Errorf("MainDeckCount() = %d, want 75", got)
	}
	if got := d.MarketCount(); got != 1 {
		t.Errorf("MarketCount() = %d, want 1", got)
	}
	if got := d.PowerCount(); got != 25 {
		t.Errorf("PowerCount() = %d, want 25", got)
	}
	if got := d.NonPowerCount(); got != 50 {
		t.Errorf("NonPowerCount() = %d, want 50", got)
	}
	if got := len(d.ExpandMain()); got != 75 {
		t.Errorf("ExpandMain() has %d cards, want 75", got)
	}
	if got := len(d.MarketSlots()); got != 1 {
		t.Errorf("%d market slots, want 1", got)
	}
}

func TestExpandMainExcludesMarket(t *testing.T) {
	for _, c := range legalDeck().ExpandMain() {
		if c.Name == "Granite Waystone" {
			t.Fatal("market card leaked into ExpandMain()")
		}
	}
}

func TestValidateLegalDeck(t *testing.T) {
	res := legalDeck().Validate()
	if !res.Valid {
		t.Errorf("legal deck rejected: %v", res.Errors)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Deck)
		wantErr string
	}{
		{
			name: "too small",
			mutate: func(d *Deck) {
				d.Slots[0].Quantity = 10
			},
			wantErr: "minimum 75",
		},
		{
			name: "too large",
			mutate: func(d *Deck) {
				d.Slots[0].Quantity = 120
			},
			wantErr: "maximum 150",
		},
		{
			name: "not enough power",
			mutate: func(d *Deck) {
				// 75 cards but only 20 power: below the one-third floor.
				d.Slots[0].Quantity = 20
				d.Slots[1].Quantity = 9
			},
			wantErr: "power cards",
		},
		{
			name: "too many copies",
			mutate: func(d *Deck) {
				d.Slots[1].Quantity = 5
				d.Slots[0].Quantity = 24
			},
			wantErr: "Too many copies of Oni Ronin",
		},
		{
			name: "market over capacity",
			mutate: func(d *Deck) {
				for i := 0; i < 6; i++ {
					d.Slots = append(d.Slots, Slot{
						Card:     Card{ID: 100 + i, Name: "Extra", Type: TypeSpell},
						Quantity: 1,
						IsMarket: true,
					})
				}
			},
			wantErr: "Market has",
		},
		{
			name: "duplicate market copies",
			mutate: func(d *Deck) {
				d.Slots[len(d.Slots)-1].Quantity = 2
			},
			wantErr: "1 copy",
		},
		{
			name: "main and market overlap",
			mutate: func(d *Deck) {
				d.Slots = append(d.Slots, Slot{
					Card:     Card{ID: 3, Name: "Torch", Type: TypeFastSpell, Cost: 1},
					Quantity: 1,
					IsMarket: true,
				})
			},
			wantErr: "both main deck and market",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := legalDeck()
			tt.mutate(d)
			res := d.Validate()
			if res.Valid {
				t.Fatal("invalid deck accepted")
			}
			found := false
			for _, e := range res.Errors {
				if strings.Contains(e, tt.wantErr) {
					found = true
				}
			}
			if !found {
				t.Errorf("errors %v do not mention %q", res.Errors, tt.wantErr)
			}
		})
	}
}

func TestValidateSigilExemptions(t *testing.T) {
	d := legalDeck()

	// More than 4 sigils in the main deck is fine.
	if res := d.Validate(); !res.Valid {
		t.Fatalf("25 sigils rejected: %v", res.Errors)
	}

	// A sigil may sit in both main deck and market.
	d.Slots = append(d.Slots, Slot{
		Card:     Card{ID: 1, Name: "Fire Sigil", Type: TypeSigil, Influence: "{F}"},
		Quantity: 1,
		IsMarket: true,
	})
	d.Slots[len(d.Slots)-2].Quantity = 0 // make room in the market
	if res := d.Validate(); !res.Valid {
		t.Errorf("sigil main/market overlap rejected: %v", res.Errors)
	}
}

func TestValidateBargainOverlap(t *testing.T) {
	d := legalDeck()
	d.Slots = d.Slots[:len(d.Slots)-1] // drop the market slot
	bargain := Card{ID: 50, Name: "Dealer", Type: TypeUnit, Cost: 3, Text: "Bargain. Flying."}
	d.Slots = append(d.Slots,
		Slot{Card: bargain, Quantity: 4},
		Slot{Card: bargain, Quantity: 1, IsMarket: true},
	)
	d.Slots[10].Quantity = 0 // keep the main deck at 75

	if res := d.Validate(); !res.Valid {
		t.Errorf("Bargain main/market overlap rejected: %v", res.Errors)
	}
}

func TestValidateDegenerateDeck(t *testing.T) {
	d := &Deck{Name: "Empty"}
	res := d.Validate()
	if res.Valid {
		t.Error("empty deck accepted")
	}
}
