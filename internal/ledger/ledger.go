package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem is one entry of the shopping list.
type LineItem struct {
	ID        uuid.UUID
	Barcode   string // optional, not unique within a list
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// LineTotal is always derived from UnitPrice and Quantity.
func (i *LineItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (i *LineItem) clone() *LineItem {
	c := *i
	if i.UpdatedAt != nil {
		t := *i.UpdatedAt
		c.UpdatedAt = &t
	}

	return &c
}

// Draft carries the editable fields of a LineItem.
type Draft struct {
	Barcode   string
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

// Policy holds the behaviours that differ between list screens.
type Policy struct {
	// RequireCeiling rejects Add while no budget ceiling is set.
	RequireCeiling bool
}
