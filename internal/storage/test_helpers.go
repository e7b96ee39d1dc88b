package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// setupTestService creates a service backed by a temporary migrated database.
func setupTestService(t *testing.T) *Service {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")

	config := DefaultConfig(dbPath)
	config.AutoMigrate = true
	db, err := Open(config)
	require.NoError(t, err, "open test database")

	t.Cleanup(func() { _ = db.Close() })

	return NewService(db)
}

// seedCards stores a playable set of test cards and returns them by name.
func seedCards(t *testing.T, s *Service) map[string]*Card {
	t.Helper()

	cards := []*Card{
		{Name: "Fire Sigil", CardType: "Sigil", Influence: "{F}", SetNumber: 1, EternalID: 1},
		{Name: "Oni Ronin", CardType: "Unit", Cost: 1, Influence: "{F}", Attack: 2, Health: 1, UnitTypes: "Oni, Warrior", SetNumber: 1, EternalID: 13},
		{Name: "Torch", CardType: "Fast Spell", Cost: 1, Influence: "{F}", SetNumber: 1, EternalID: 8},
		{Name: "Obliterate", CardType: "Spell", Cost: 6, Influence: "{F}{F}", SetNumber: 1, EternalID: 48},
	}
	byName := make(map[string]*Card, len(cards))
	for _, c := range cards {
		require.NoError(t, s.SaveCard(context.Background(), c), "seed card %s", c.Name)
		byName[c.Name] = c
	}
	return byName
}
