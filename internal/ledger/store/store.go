package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/state"
)

// Store persists a ledger as two JSON documents in a state.Store, namespaced by list name.
type Store struct {
	kv   state.Store
	list string
}

func New(kv state.Store, list string) *Store {
	return &Store{kv: kv, list: list}
}

type itemRecord struct {
	ID        uuid.UUID       `json:"id"`
	Barcode   string          `json:"barcode,omitempty"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	// Total is written for readers of the raw document; it is recomputed on load.
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt *time.Time      `json:"updated_at,omitempty"`
}

func (s *Store) LoadItems(ctx context.Context) ([]*ledger.LineItem, error) {
	var records []itemRecord

	if _, err := state.GetJSON(ctx, s.kv, state.Key(s.list, state.KeyProducts), &records); err != nil {
		return nil, fmt.Errorf("reading items: %w", err)
	}

	items := make([]*ledger.LineItem, 0, len(records))
	for _, r := range records {
		items = append(items, &ledger.LineItem{
			ID:        r.ID,
			Barcode:   r.Barcode,
			Name:      r.Name,
			UnitPrice: r.UnitPrice,
			Quantity:  r.Quantity,
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
		})
	}

	return items, nil
}

func (s *Store) SaveItems(ctx context.Context, items []*ledger.LineItem) error {
	records := make([]itemRecord, len(items))
	for i, item := range items {
		records[i] = itemRecord{
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

	if err := state.PutJSON(ctx, s.kv, state.Key(s.list, state.KeyProducts), records); err != nil {
		return fmt.Errorf("writing items: %w", err)
	}

	return nil
}

func (s *Store) LoadCeiling(ctx context.Context) (*decimal.Decimal, error) {
	var ceiling decimal.Decimal

	found, err := state.GetJSON(ctx, s.kv, state.Key(s.list, state.KeyBudgetCeiling), &ceiling)
	if err != nil {
		return nil, fmt.Errorf("reading ceiling: %w", err)
	}

	if !found {
		return nil, nil
	}

	return &ceiling, nil
}

// SaveCeiling deletes the key when ceiling is nil.
func (s *Store) SaveCeiling(ctx context.Context, ceiling *decimal.Decimal) error {
	key := state.Key(s.list, state.KeyBudgetCeiling)

	if ceiling == nil {
		if err := s.kv.Delete(ctx, key); err != nil {
			return fmt.Errorf("deleting ceiling: %w", err)
		}

		return nil
	}

	if err := state.PutJSON(ctx, s.kv, key, ceiling); err != nil {
		return fmt.Errorf("writing ceiling: %w", err)
	}

	return nil
}
