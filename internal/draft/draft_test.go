package draft_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/catalog"
	"github.com/MrJamesThe3rd/tally/internal/draft"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/plan"
)

func found(name, price string) catalog.Result {
	return catalog.Result{
		Status:  catalog.StatusFound,
		Product: catalog.Product{Barcode: "7891000100103", Name: name, Price: decimal.RequireFromString(price)},
	}
}

func TestForm_Apply(t *testing.T) {
	t.Run("LatestTicketWins", func(t *testing.T) {
		f := draft.New(draft.Fields{Barcode: "7891000100103"})

		first := f.BeginLookup()
		second := f.BeginLookup()

		assert.True(t, f.Apply(second, found("Leite", "4.99")))
		assert.False(t, f.Apply(first, found("Stale", "1.00")))

		got := f.Fields()
		assert.Equal(t, "Leite", got.Name)
		assert.Equal(t, "4.99", got.Price)
	})

	t.Run("ClosedFormDiscards", func(t *testing.T) {
		f := draft.New(draft.Fields{})
		ticket := f.BeginLookup()
		f.Close()

		assert.False(t, f.Apply(ticket, found("Leite", "4.99")))
		assert.Empty(t, f.Fields().Name)
	})

	t.Run("NotFoundClearsNameAndPrice", func(t *testing.T) {
		f := draft.New(draft.Fields{Barcode: "0000000000000", Name: "Old", Price: "3,00", Quantity: "2"})
		ticket := f.BeginLookup()

		assert.True(t, f.Apply(ticket, catalog.Result{Status: catalog.StatusNotFound}))

		got := f.Fields()
		assert.Empty(t, got.Name)
		assert.Empty(t, got.Price)
		assert.Equal(t, "0000000000000", got.Barcode)
		assert.Equal(t, "2", got.Quantity)
	})

	t.Run("ZeroPriceLeavesPriceEmpty", func(t *testing.T) {
		f := draft.New(draft.Fields{Price: "9,99"})
		ticket := f.BeginLookup()

		f.Apply(ticket, found("Sal", "0"))
		assert.Empty(t, f.Fields().Price)
	})
}

func TestForm_Params(t *testing.T) {
	type testCase struct {
		name      string
		fields    draft.Fields
		wantPrice string
		wantQty   int
		wantErr   string
	}

	tests := []testCase{
		{name: "CommaDecimal", fields: draft.Fields{Name: " Milk ", Price: "12,50", Quantity: "2"}, wantPrice: "12.5", wantQty: 2},
		{name: "DotDecimal", fields: draft.Fields{Name: "Milk", Price: "12.50", Quantity: "1"}, wantPrice: "12.5", wantQty: 1},
		{name: "MissingPrice", fields: draft.Fields{Name: "Milk", Quantity: "1"}, wantErr: "unit price"},
		{name: "GarbagePrice", fields: draft.Fields{Name: "Milk", Price: "abc", Quantity: "1"}, wantErr: "unit price"},
		{name: "GarbageQuantity", fields: draft.Fields{Name: "Milk", Price: "1", Quantity: "two"}, wantErr: "quantity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := draft.New(tt.fields).Params()

			if tt.wantErr != "" {
				require.ErrorIs(t, err, ledger.ErrValidation)

				var verr *ledger.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tt.wantErr, verr.Field)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "Milk", got.Name)
			assert.True(t, decimal.RequireFromString(tt.wantPrice).Equal(got.UnitPrice))
			assert.Equal(t, tt.wantQty, got.Quantity)
		})
	}
}

func TestFromItem(t *testing.T) {
	item := &ledger.LineItem{Barcode: "1", Name: "Milk", UnitPrice: decimal.RequireFromString("5"), Quantity: 3}

	got := draft.FromItem(item).Fields()
	assert.Equal(t, draft.Fields{Barcode: "1", Name: "Milk", Price: "5.00", Quantity: "3"}, got)
}

func TestFromPlanned(t *testing.T) {
	f := draft.FromPlanned(plan.Item{Name: "Leite", Quantity: 2})
	assert.Equal(t, draft.Fields{Name: "Leite", Quantity: "2"}, f.Fields())

	_, err := f.Params()
	assert.ErrorIs(t, err, ledger.ErrValidation, "a planned item has no price until one is typed")

	fields := f.Fields()
	fields.Price = "4,50"
	f.Set(fields)

	got, err := f.Params()
	require.NoError(t, err)
	assert.Equal(t, 2, got.Quantity)
	assert.True(t, decimal.RequireFromString("4.5").Equal(got.UnitPrice))
}

func TestForm_Current(t *testing.T) {
	f := draft.New(draft.Fields{})

	first := f.BeginLookup()
	assert.True(t, f.Current(first))

	second := f.BeginLookup()
	assert.False(t, f.Current(first))
	assert.True(t, f.Current(second))

	f.Close()
	assert.False(t, f.Current(second))
}
