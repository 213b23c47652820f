package catalog

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/money"
)

// amount accepts prices sent either as JSON numbers or as strings ("4.99", "4,99", "").
type amount struct {
	value decimal.Decimal
	set   bool
}

func (a *amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	var s string
	if data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	} else {
		s = string(data)
	}

	d, err := money.Parse(s)
	if err != nil {
		// Catalogs put free text ("call for price") here; treat it as absent.
		return nil
	}

	a.value = d
	a.set = true

	return nil
}

func firstAmount(candidates ...amount) decimal.Decimal {
	for _, c := range candidates {
		if c.set && !c.value.IsZero() {
			return c.value
		}
	}

	return decimal.Zero
}
