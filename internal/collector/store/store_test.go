package store_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/collector"
	"github.com/MrJamesThe3rd/tally/internal/collector/store"
	"github.com/MrJamesThe3rd/tally/internal/state"
)

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := state.NewMemoryStore()
	s := store.New(kv)

	empty, err := s.LoadRecords(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	price := decimal.RequireFromString("8.5")
	records := []collector.Record{
		{ID: uuid.New(), Barcode: "789", Name: "Feijão", Price: &price},
		{ID: uuid.New(), Barcode: "123", Name: "Sal"},
	}

	require.NoError(t, s.SaveRecords(ctx, records))

	raw, err := kv.Get(ctx, state.KeyCollected)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"ean":"789"`)
	assert.Contains(t, string(raw), `"nome":"Sal"`)

	got, err := s.LoadRecords(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, records[0].ID, got[0].ID)
	assert.True(t, price.Equal(*got[0].Price))
	assert.Nil(t, got[1].Price)
}
