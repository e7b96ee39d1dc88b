package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/eternal-forge/eternal-forge/internal/deck"
)

// DeckRecord is a deck row with its slots resolved against the cards table.
type DeckRecord struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Format    string     `json:"format"`
	Notes     string     `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Slots     []DeckSlot `json:"slots"`
}

// DeckSlot is one deck_cards row joined with its card.
type DeckSlot struct {
	Card     Card `json:"card"`
	Quantity int  `json:"quantity"`
	IsMarket bool `json:"is_market"`
}

// Snapshot converts the record into the read-only deck consumed by the
// analysis and simulation packages.
func (r *DeckRecord) Snapshot() *deck.Deck {
	d := &deck.Deck{
		ID:     r.ID,
		Name:   r.Name,
		Format: r.Format,
	}
	for _, s := range r.Slots {
		d.Slots = append(d.Slots, deck.Slot{
			Card:     s.Card.Snapshot(),
			Quantity: s.Quantity,
			IsMarket: s.IsMarket,
		})
	}
	return d
}

// SaveDeck inserts or updates a deck and replaces its slots in one
// transaction. A missing ID gets a fresh UUID, written back to record.ID.
// Every slot's card must already exist in the cards table.
func (s *Service) SaveDeck(ctx context.Context, record *DeckRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.Format == "" {
		record.Format = "Throne"
	}

	tx, err := s.db.Conn().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO decks (id, name, format, notes, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			format = excluded.format,
			notes = excluded.notes,
			updated_at = CURRENT_TIMESTAMP
	`, record.ID, record.Name, record.Format, record.Notes)
	if err != nil {
		return fmt.Errorf("failed to save deck: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM deck_cards WHERE deck_id = ?`, record.ID); err != nil {
		return fmt.Errorf("failed to clear deck slots: %w", err)
	}
	for _, slot := range record.Slots {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO deck_cards (deck_id, card_id, quantity, is_market)
			VALUES (?, ?, ?, ?)
		`, record.ID, slot.Card.ID, slot.Quantity, slot.IsMarket)
		if err != nil {
			return fmt.Errorf("failed to save deck slot for card %d: %w", slot.Card.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit deck: %w", err)
	}
	return nil
}

// GetDeck retrieves a deck and its slots by ID. Returns nil when not found.
func (s *Service) GetDeck(ctx context.Context, id string) (*DeckRecord, error) {
	var record DeckRecord
	err := s.db.Conn().QueryRowContext(ctx, `
		SELECT id, name, format, notes, created_at, updated_at
		FROM decks WHERE id = ?
	`, id).Scan(&record.ID, &record.Name, &record.Format, &record.Notes,
		&record.CreatedAt, &record.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deck: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s, dc.quantity, dc.is_market
		FROM deck_cards dc
		JOIN cards c ON c.id = dc.card_id
		WHERE dc.deck_id = ?
		ORDER BY dc.is_market, c.cost, c.name
	`, prefixedCardColumns("c"))

	rows, err := s.db.Conn().QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get deck slots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var slot DeckSlot
		c := &slot.Card
		err := rows.Scan(
			&c.ID, &c.Name, &c.CardType, &c.Cost, &c.Influence, &c.Attack, &c.Health,
			&c.CardText, &c.UnitTypes, &c.Rarity, &c.SetNumber, &c.EternalID, &c.ImageURL,
			&slot.Quantity, &slot.IsMarket,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deck slot: %w", err)
		}
		record.Slots = append(record.Slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating deck slots: %w", err)
	}

	return &record, nil
}

func prefixedCardColumns(alias string) string {
	return fmt.Sprintf(`%[1]s.id, %[1]s.name, %[1]s.card_type, %[1]s.cost, %[1]s.influence,
		%[1]s.attack, %[1]s.health, %[1]s.card_text, %[1]s.unit_types, %[1]s.rarity,
		%[1]s.set_number, %[1]s.eternal_id, %[1]s.image_url`, alias)
}

// DeckSummary is a deck list row without slots.
type DeckSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Format    string    `json:"format"`
	CardCount int       `json:"card_count"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListDecks returns all decks, most recently updated first.
func (s *Service) ListDecks(ctx context.Context) ([]*DeckSummary, error) {
	rows, err := s.db.Conn().QueryContext(ctx, `
		SELECT d.id, d.name, d.format, COALESCE(SUM(dc.quantity), 0), d.updated_at
		FROM decks d
		LEFT JOIN deck_cards dc ON dc.deck_id = d.id AND NOT dc.is_market
		GROUP BY d.id
		ORDER BY d.updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var decks []*DeckSummary
	for rows.Next() {
		var d DeckSummary
		if err := rows.Scan(&d.ID, &d.Name, &d.Format, &d.CardCount, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan deck summary: %w", err)
		}
		decks = append(decks, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating decks: %w", err)
	}
	return decks, nil
}

// DeleteDeck removes a deck and its slots. Deleting a missing deck is not an
// error.
func (s *Service) DeleteDeck(ctx context.Context, id string) error {
	if _, err := s.db.Conn().ExecContext(ctx, `DELETE FROM deck_cards WHERE deck_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete deck slots: %w", err)
	}
	if _, err := s.db.Conn().ExecContext(ctx, `DELETE FROM decks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete deck: %w", err)
	}
	return nil
}

// LoadSnapshot retrieves a deck by ID and converts it straight to the
// analysis snapshot. Returns nil when the deck does not exist.
func (s *Service) LoadSnapshot(ctx context.Context, id string) (*deck.Deck, error) {
	record, err := s.GetDeck(ctx, id)
	if err != nil || record == nil {
		return nil, err
	}
	return record.Snapshot(), nil
}
