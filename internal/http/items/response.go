package items

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/ledger"
)

type itemResponse struct {
	ID        uuid.UUID       `json:"id"`
	Barcode   string          `json:"barcode,omitempty"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt *time.Time      `json:"updated_at,omitempty"`
}

type listResponse struct {
	Items     []itemResponse   `json:"items"`
	Total     decimal.Decimal  `json:"total"`
	Ceiling   *decimal.Decimal `json:"ceiling"`
	Remaining *decimal.Decimal `json:"remaining"`
}

func toResponse(item *ledger.LineItem) itemResponse {
	return itemResponse{
		ID:        item.ID,
		Barcode:   item.Barcode,
		Name:      item.Name,
		UnitPrice: item.UnitPrice,
		Quantity:  item.Quantity,
		Total:     item.LineTotal(),
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
}

func toListResponse(svc *ledger.Service) listResponse {
	list := svc.Items()

	resp := listResponse{
		Items: make([]itemResponse, len(list)),
		Total: svc.AggregateTotal(),
	}

	for i, item := range list {
		resp.Items[i] = toResponse(item)
	}

	if c, ok := svc.Ceiling(); ok {
		resp.Ceiling = &c
	}

	if rem, ok := svc.Remaining(); ok {
		resp.Remaining = &rem
	}

	return resp
}
