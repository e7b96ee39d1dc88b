package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/eternal-forge/eternal-forge/internal/deck"
)

// Card is a card row in the local database.
type Card struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	CardType  string `json:"card_type"`
	Cost      int    `json:"cost"`
	Influence string `json:"influence"`
	Attack    int    `json:"attack"`
	Health    int    `json:"health"`
	CardText  string `json:"card_text,omitempty"`
	UnitTypes string `json:"unit_types,omitempty"`
	Rarity    string `json:"rarity"`
	SetNumber int    `json:"set_number"`
	EternalID int    `json:"eternal_id"`
	ImageURL  string `json:"image_url,omitempty"`
}

// Snapshot converts the row to the read-only projection used by the analysis
// core.
func (c *Card) Snapshot() deck.Card {
	return deck.Card{
		ID:        c.ID,
		Name:      c.Name,
		Type:      deck.CardType(c.CardType),
		Cost:      c.Cost,
		Influence: c.Influence,
		Attack:    c.Attack,
		Health:    c.Health,
		Text:      c.CardText,
		UnitTypes: c.UnitTypes,
		SetNumber: c.SetNumber,
		EternalID: c.EternalID,
		ImageURL:  c.ImageURL,
	}
}

const cardColumns = `id, name, card_type, cost, influence, attack, health,
	card_text, unit_types, rarity, set_number, eternal_id, image_url`

// SaveCard inserts or updates a card, keyed by its set and collector number.
// The row ID is written back to card.ID.
func (s *Service) SaveCard(ctx context.Context, card *Card) error {
	query := `
		INSERT INTO cards (
			name, card_type, cost, influence, attack, health,
			card_text, unit_types, rarity, set_number, eternal_id, image_url, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(set_number, eternal_id) DO UPDATE SET
			name = excluded.name,
			card_type = excluded.card_type,
			cost = excluded.cost,
			influence = excluded.influence,
			attack = excluded.attack,
			health = excluded.health,
			card_text = excluded.card_text,
			unit_types = excluded.unit_types,
			rarity = excluded.rarity,
			image_url = excluded.image_url,
			updated_at = CURRENT_TIMESTAMP
	`

	_, err := s.db.Conn().ExecContext(ctx, query,
		card.Name, card.CardType, card.Cost, card.Influence, card.Attack, card.Health,
		card.CardText, card.UnitTypes, card.Rarity, card.SetNumber, card.EternalID, card.ImageURL,
	)
	if err != nil {
		return fmt.Errorf("failed to save card: %w", err)
	}

	row := s.db.Conn().QueryRowContext(ctx,
		`SELECT id FROM cards WHERE set_number = ? AND eternal_id = ?`,
		card.SetNumber, card.EternalID,
	)
	if err := row.Scan(&card.ID); err != nil {
		return fmt.Errorf("failed to read back card id: %w", err)
	}
	return nil
}

// GetCard retrieves a card by row ID. Returns nil when not found.
func (s *Service) GetCard(ctx context.Context, id int) (*Card, error) {
	query := fmt.Sprintf(`SELECT %s FROM cards WHERE id = ?`, cardColumns)
	return s.scanCard(s.db.Conn().QueryRowContext(ctx, query, id))
}

// GetCardBySetID retrieves a card by set and collector number. Returns nil
// when not found.
func (s *Service) GetCardBySetID(ctx context.Context, setNumber, eternalID int) (*Card, error) {
	query := fmt.Sprintf(`SELECT %s FROM cards WHERE set_number = ? AND eternal_id = ?`, cardColumns)
	return s.scanCard(s.db.Conn().QueryRowContext(ctx, query, setNumber, eternalID))
}

// GetCardByName retrieves a card by exact name. When several printings share
// the name, the lowest row ID wins. Returns nil when not found.
func (s *Service) GetCardByName(ctx context.Context, name string) (*Card, error) {
	query := fmt.Sprintf(`SELECT %s FROM cards WHERE name = ? ORDER BY id LIMIT 1`, cardColumns)
	return s.scanCard(s.db.Conn().QueryRowContext(ctx, query, name))
}

func (s *Service) scanCard(row *sql.Row) (*Card, error) {
	var c Card
	err := row.Scan(
		&c.ID, &c.Name, &c.CardType, &c.Cost, &c.Influence, &c.Attack, &c.Health,
		&c.CardText, &c.UnitTypes, &c.Rarity, &c.SetNumber, &c.EternalID, &c.ImageURL,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan card: %w", err)
	}
	return &c, nil
}

// SearchCards returns cards whose name contains the query, ordered by name.
func (s *Service) SearchCards(ctx context.Context, nameQuery string, limit int) ([]*Card, error) {
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(
		`SELECT %s FROM cards WHERE name LIKE ? ORDER BY name LIMIT ?`, cardColumns)

	rows, err := s.db.Conn().QueryContext(ctx, query, "%"+nameQuery+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search cards: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var cards []*Card
	for rows.Next() {
		var c Card
		err := rows.Scan(
			&c.ID, &c.Name, &c.CardType, &c.Cost, &c.Influence, &c.Attack, &c.Health,
			&c.CardText, &c.UnitTypes, &c.Rarity, &c.SetNumber, &c.EternalID, &c.ImageURL,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cards: %w", err)
	}
	return cards, nil
}

// CountCards returns the number of cards in the database.
func (s *Service) CountCards(ctx context.Context) (int, error) {
	var count int
	err := s.db.Conn().QueryRowContext(ctx, `SELECT COUNT(*) FROM cards`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count cards: %w", err)
	}
	return count, nil
}
