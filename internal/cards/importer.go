// Package cards loads the EternalWarcry card dataset into local storage.
package cards

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/eternal-forge/eternal-forge/internal/storage"
)

// DatasetCard mirrors one entry of the EternalWarcry eternal-cards.json file.
type DatasetCard struct {
	Name           string   `json:"Name"`
	CardText       string   `json:"CardText"`
	Type           string   `json:"Type"`
	UnitType       []string `json:"UnitType"`
	Cost           int      `json:"Cost"`
	Influence      string   `json:"Influence"`
	Attack         int      `json:"Attack"`
	Health         int      `json:"Health"`
	Rarity         string   `json:"Rarity"`
	SetNumber      int      `json:"SetNumber"`
	EternalID      *int     `json:"EternalID"`
	DeckBuildable  bool     `json:"DeckBuildable"`
	ImageURL       string   `json:"ImageUrl"`
	DetailsURL     string   `json:"DetailsUrl"`
}

// ImportStats reports the outcome of a dataset import.
type ImportStats struct {
	Total    int `json:"total"`
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// Importer writes dataset cards into storage.
type Importer struct {
	store *storage.Service
}

// NewImporter creates an importer backed by the given storage service.
func NewImporter(store *storage.Service) *Importer {
	return &Importer{store: store}
}

// ImportFile loads a dataset JSON file and upserts every card.
func (i *Importer) ImportFile(ctx context.Context, path string) (*ImportStats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read card data file: %w", err)
	}
	return i.Import(ctx, data)
}

// Import upserts every card in the dataset JSON. Entries that fail to store
// are counted as skipped rather than aborting the run. A card without an
// EternalID gets a synthetic one derived from its set and position, matching
// how the dataset is numbered elsewhere.
func (i *Importer) Import(ctx context.Context, data []byte) (*ImportStats, error) {
	var entries []DatasetCard
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse card data: %w", err)
	}

	stats := &ImportStats{Total: len(entries)}
	for idx, entry := range entries {
		if entry.Name == "" {
			stats.Skipped++
			continue
		}

		eternalID := entry.SetNumber*10000 + idx
		if entry.EternalID != nil {
			eternalID = *entry.EternalID
		}

		card := &storage.Card{
			Name:      entry.Name,
			CardType:  entry.Type,
			Cost:      entry.Cost,
			Influence: entry.Influence,
			Attack:    entry.Attack,
			Health:    entry.Health,
			CardText:  entry.CardText,
			UnitTypes: strings.Join(entry.UnitType, ", "),
			Rarity:    entry.Rarity,
			SetNumber: entry.SetNumber,
			EternalID: eternalID,
			ImageURL:  entry.ImageURL,
		}
		if card.CardType == "" {
			card.CardType = "Unknown"
		}
		if card.Rarity == "" {
			card.Rarity = "Common"
		}

		if err := i.store.SaveCard(ctx, card); err != nil {
			stats.Skipped++
			continue
		}
		stats.Imported++
	}
	return stats, nil
}
