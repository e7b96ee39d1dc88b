// Package deckio reads and writes deck lists in the game's import/export
// text format:
//
//	FORMAT:Throne
//	4 Torch (Set1 #8)
//	25 Fire Sigil (Set1 #1)
//	---------------MARKET---------------
//	1 Obliterate (Set1 #48)
package deckio

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ParsedCard is a single line of a deck list.
type ParsedCard struct {
	Quantity  int    `json:"quantity"`
	Name      string `json:"name"`
	SetNumber int    `json:"set_number"`
	EternalID int    `json:"eternal_id"`
	IsMarket  bool   `json:"is_market"`
}

// ParsedDeck is the result of parsing one deck list.
type ParsedDeck struct {
	Format   string        `json:"format"`
	Cards    []*ParsedCard `json:"cards"`
	ParsedOK bool          `json:"parsed_ok"`
	Warnings []string      `json:"warnings"`
}

// MainCards returns the parsed main-deck entries.
func (d *ParsedDeck) MainCards() []*ParsedCard {
	var out []*ParsedCard
	for _, c := range d.Cards {
		if !c.IsMarket {
			out = append(out, c)
		}
	}
	return out
}

// MarketCards returns the parsed market entries.
func (d *ParsedDeck) MarketCards() []*ParsedCard {
	var out []*ParsedCard
	for _, c := range d.Cards {
		if c.IsMarket {
			out = append(out, c)
		}
	}
	return out
}

var (
	formatRegex = regexp.MustCompile(`FORMAT:(\w+)`)
	// "4 Card Name (Set1 #15)" with an optional trailing remainder ignored.
	cardRegex = regexp.MustCompile(`^(\d+)\s+(.+?)\s+\(Set(\d+)\s+#(\d+)\)`)
)

// Parse reads deck list text. Lines that are neither a format header, a
// market separator, nor a card line produce warnings, not errors; the only
// hard failure is a list with no cards at all. The format defaults to
// "Throne" when no FORMAT: header is present.
func Parse(input string) (*ParsedDeck, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("empty deck list")
	}

	parsed := &ParsedDeck{Format: "Throne", ParsedOK: true}
	if m := formatRegex.FindStringSubmatch(input); m != nil {
		parsed.Format = m[1]
	}

	inMarket := false
	for i, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "FORMAT:") {
			continue
		}
		if strings.Contains(line, "MARKET") {
			inMarket = true
			continue
		}

		m := cardRegex.FindStringSubmatch(line)
		if m == nil {
			parsed.Warnings = append(parsed.Warnings,
				fmt.Sprintf("Line %d: could not parse %q", i+1, line))
			continue
		}

		quantity, err := strconv.Atoi(m[1])
		if err != nil || quantity <= 0 {
			parsed.Warnings = append(parsed.Warnings,
				fmt.Sprintf("Line %d: invalid quantity %q", i+1, m[1]))
			continue
		}
		setNumber, _ := strconv.Atoi(m[3])
		eternalID, _ := strconv.Atoi(m[4])

		parsed.Cards = append(parsed.Cards, &ParsedCard{
			Quantity:  quantity,
			Name:      strings.TrimSpace(m[2]),
			SetNumber: setNumber,
			EternalID: eternalID,
			IsMarket:  inMarket,
		})
	}

	if len(parsed.Cards) == 0 {
		parsed.ParsedOK = false
		return parsed, fmt.Errorf("no cards found in deck list")
	}
	return parsed, nil
}
