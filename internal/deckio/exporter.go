package deckio

import (
	"fmt"
	"sort"
	"strings"

	"github.com/eternal-forge/eternal-forge/internal/deck"
)

const marketSeparator = "---------------MARKET---------------"

// Export renders a deck in the game's import/export text format. Main-deck
// slots are sorted by cost then name; the market section is emitted only when
// the market is non-empty.
func Export(d *deck.Deck) string {
	format := d.Format
	if format == "" {
		format = "Throne"
	}
	lines := []string{"FORMAT:" + format}

	main := d.MainSlots()
	sort.SliceStable(main, func(i, j int) bool {
		if main[i].Card.Cost != main[j].Card.Cost {
			return main[i].Card.Cost < main[j].Card.Cost
		}
		return main[i].Card.Name < main[j].Card.Name
	})
	for _, s := range main {
		lines = append(lines, exportLine(s))
	}

	if market := d.MarketSlots(); len(market) > 0 {
		lines = append(lines, marketSeparator)
		for _, s := range market {
			lines = append(lines, exportLine(s))
		}
	}

	return strings.Join(lines, "\n")
}

func exportLine(s deck.Slot) string {
	return fmt.Sprintf("%d %s (%s)", s.Quantity, s.Card.Name, s.Card.SetCardID())
}
