package store_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/ledger/store"
	"github.com/MrJamesThe3rd/tally/internal/state"
)

func TestStore_Items(t *testing.T) {
	ctx := context.Background()
	kv := state.NewMemoryStore()
	s := store.New(kv, "weekly")

	items, err := s.LoadItems(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	in := []*ledger.LineItem{
		{ID: uuid.New(), Barcode: "7891000100103", Name: "Milk", UnitPrice: decimal.RequireFromString("5.49"), Quantity: 2},
	}
	require.NoError(t, s.SaveItems(ctx, in))

	raw, err := kv.Get(ctx, "weekly/products")
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"total":"10.98"`)

	out, err := s.LoadItems(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, in[0].ID, out[0].ID)
	assert.Equal(t, "Milk", out[0].Name)
	assert.True(t, in[0].UnitPrice.Equal(out[0].UnitPrice))
	assert.True(t, decimal.RequireFromString("10.98").Equal(out[0].LineTotal()))
}

func TestStore_Ceiling(t *testing.T) {
	ctx := context.Background()
	kv := state.NewMemoryStore()
	s := store.New(kv, "")

	got, err := s.LoadCeiling(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.SaveCeiling(ctx, new(decimal.RequireFromString("150"))))

	got, err = s.LoadCeiling(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, decimal.RequireFromString("150").Equal(*got))

	require.NoError(t, s.SaveCeiling(ctx, nil))

	_, err = kv.Get(ctx, state.KeyBudgetCeiling)
	assert.ErrorIs(t, err, state.ErrNotFound)
}
