package money_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/money"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "10", want: "10"},
		{in: "12,50", want: "12.5"},
		{in: "12.50", want: "12.5"},
		{in: "1.234,56", want: "1234.56"},
		{in: "1,234.56", want: "1234.56"},
		{in: "R$ 3,99", want: "3.99"},
		{in: "  7 ", want: "7"},
		{in: "-588,74", want: "-588.74"},
		{in: "", wantErr: true},
		{in: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := money.Parse(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestFormat_RoundTrips(t *testing.T) {
	for _, in := range []string{"0", "5", "10.98", "1234.5"} {
		d := decimal.RequireFromString(in)

		out := money.Format(d)
		assert.Contains(t, out, "R$")

		back, err := money.Parse(out)
		require.NoError(t, err, out)
		assert.True(t, d.Equal(back), "%s -> %s -> %s", in, out, back)
	}
}
