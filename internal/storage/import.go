package storage

import (
	"context"
	"fmt"

	"github.com/eternal-forge/eternal-forge/internal/deckio"
)

// ImportResult reports the outcome of importing a deck list.
type ImportResult struct {
	DeckID       string   `json:"deck_id"`
	CardsAdded   int      `json:"cards_added"`
	CardsSkipped int      `json:"cards_skipped"`
	Skipped      []string `json:"skipped,omitempty"`
	Warnings     []string `json:"warnings,omitempty"`
}

// ImportDeckList parses a deck list and stores it as a new deck. Lines naming
// cards absent from the database are skipped and reported, matching first by
// set and collector number and falling back to exact name.
func (s *Service) ImportDeckList(ctx context.Context, name, text string) (*ImportResult, error) {
	parsed, err := deckio.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse deck list: %w", err)
	}

	record := &DeckRecord{Name: name, Format: parsed.Format}
	result := &ImportResult{Warnings: parsed.Warnings}

	for _, entry := range parsed.Cards {
		card, err := s.GetCardBySetID(ctx, entry.SetNumber, entry.EternalID)
		if err != nil {
			return nil, err
		}
		if card == nil {
			card, err = s.GetCardByName(ctx, entry.Name)
			if err != nil {
				return nil, err
			}
		}
		if card == nil {
			result.CardsSkipped++
			result.Skipped = append(result.Skipped,
				fmt.Sprintf("%s (Set%d #%d)", entry.Name, entry.SetNumber, entry.EternalID))
			continue
		}

		record.Slots = append(record.Slots, DeckSlot{
			Card:     *card,
			Quantity: entry.Quantity,
			IsMarket: entry.IsMarket,
		})
		result.CardsAdded += entry.Quantity
	}

	if err := s.SaveDeck(ctx, record); err != nil {
		return nil, err
	}
	result.DeckID = record.ID
	return result, nil
}
