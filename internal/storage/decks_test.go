package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndGetDeck(t *testing.T) {
	s := setupTestService(t)
	ctx := context.Background()
	cards := seedCards(t, s)

	record := &DeckRecord{
		Name: "Burn Queen",
		Slots: []DeckSlot{
			{Card: *cards["Fire Sigil"], Quantity: 25},
			{Card: *cards["Oni Ronin"], Quantity: 4},
			{Card: *cards["Torch"], Quantity: 4},
			{Card: *cards["Obliterate"], Quantity: 1, IsMarket: true},
		},
	}
	require.NoError(t, s.SaveDeck(ctx, record))
	require.NotEmpty(t, record.ID, "SaveDeck should assign a UUID")

	got, err := s.GetDeck(ctx, record.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Burn Queen", got.Name)
	assert.Equal(t, "Throne", got.Format, "format should default to Throne")
	require.Len(t, got.Slots, 4)

	// Slots come back main first, then market.
	last := got.Slots[len(got.Slots)-1]
	assert.True(t, last.IsMarket)
	assert.Equal(t, "Obliterate", last.Card.Name)
}

func TestSaveDeckReplacesSlots(t *testing.T) {
	s := setupTestService(t)
	ctx := context.Background()
	cards := seedCards(t, s)

	record := &DeckRecord{
		Name:  "Evolving",
		Slots: []DeckSlot{{Card: *cards["Torch"], Quantity: 4}},
	}
	require.NoError(t, s.SaveDeck(ctx, record))

	record.Slots = []DeckSlot{{Card: *cards["Oni Ronin"], Quantity: 4}}
	require.NoError(t, s.SaveDeck(ctx, record))

	got, err := s.GetDeck(ctx, record.ID)
	require.NoError(t, err)
	require.Len(t, got.Slots, 1)
	assert.Equal(t, "Oni Ronin", got.Slots[0].Card.Name)
}

func TestListDecks(t *testing.T) {
	s := setupTestService(t)
	ctx := context.Background()
	cards := seedCards(t, s)

	for _, name := range []string{"First", "Second"} {
		require.NoError(t, s.SaveDeck(ctx, &DeckRecord{
			Name: name,
			Slots: []DeckSlot{
				{Card: *cards["Fire Sigil"], Quantity: 25},
				{Card: *cards["Obliterate"], Quantity: 1, IsMarket: true},
			},
		}))
	}

	decks, err := s.ListDecks(ctx)
	require.NoError(t, err)
	require.Len(t, decks, 2)
	for _, d := range decks {
		assert.Equal(t, 25, d.CardCount, "card count excludes the market")
	}
}

func TestDeleteDeck(t *testing.T) {
	s := setupTestService(t)
	ctx := context.Background()
	cards := seedCards(t, s)

	record := &DeckRecord{Name: "Doomed", Slots: []DeckSlot{{Card: *cards["Torch"], Quantity: 4}}}
	require.NoError(t, s.SaveDeck(ctx, record))
	require.NoError(t, s.DeleteDeck(ctx, record.ID))

	got, err := s.GetDeck(ctx, record.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	// Deleting again is fine.
	require.NoError(t, s.DeleteDeck(ctx, record.ID))
}

func TestLoadSnapshot(t *testing.T) {
	s := setupTestService(t)
	ctx := context.Background()
	cards := seedCards(t, s)

	record := &DeckRecord{
		Name: "Snapshot",
		Slots: []DeckSlot{
			{Card: *cards["Fire Sigil"], Quantity: 25},
			{Card: *cards["Oni Ronin"], Quantity: 4},
			{Card: *cards["Obliterate"], Quantity: 1, IsMarket: true},
		},
	}
	require.NoError(t, s.SaveDeck(ctx, record))

	snap, err := s.LoadSnapshot(ctx, record.ID)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, 29, snap.MainDeckCount())
	assert.Equal(t, 25, snap.PowerCount())
	assert.Equal(t, 1, snap.MarketCount())

	snap, err = s.LoadSnapshot(ctx, "no-such-deck")
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestImportDeckList(t *testing.T) {
	s := setupTestService(t)
	ctx := context.Background()
	seedCards(t, s)

	const list = `FORMAT:Throne
25 Fire Sigil (Set1 #1)
4 Oni Ronin (Set1 #13)
4 Unknown Card (Set9 #999)
---------------MARKET---------------
1 Obliterate (Set1 #48)
`
	result, err := s.ImportDeckList(ctx, "Imported", list)
	require.NoError(t, err)
	assert.Equal(t, 30, result.CardsAdded)
	assert.Equal(t, 1, result.CardsSkipped)
	require.Len(t, result.Skipped, 1)
	assert.Contains(t, result.Skipped[0], "Unknown Card")

	snap, err := s.LoadSnapshot(ctx, result.DeckID)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, 29, snap.MainDeckCount())
	assert.Equal(t, 1, snap.MarketCount())
}
