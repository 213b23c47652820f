package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/plan"
	"github.com/MrJamesThe3rd/tally/internal/state"
)

// Store keeps the plan as one JSON array next to the list it belongs to.
type Store struct {
	kv   state.Store
	list string
}

func New(kv state.Store, list string) *Store {
	return &Store{kv: kv, list: list}
}

type itemRecord struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Quantity int       `json:"quantity"`
}

func (s *Store) LoadItems(ctx context.Context) ([]plan.Item, error) {
	var records []itemRecord

	if _, err := state.GetJSON(ctx, s.kv, state.Key(s.list, state.KeyPlan), &records); err != nil {
		return nil, fmt.Errorf("reading plan: %w", err)
	}

	items := make([]plan.Item, len(records))
	for i, r := range records {
		items[i] = plan.Item{ID: r.ID, Name: r.Name, Quantity: r.Quantity}
	}

	return items, nil
}

func (s *Store) SaveItems(ctx context.Context, items []plan.Item) error {
	records := make([]itemRecord, len(items))
	for i, item := range items {
		records[i] = itemRecord{ID: item.ID, Name: item.Name, Quantity: item.Quantity}
	}

	if err := state.PutJSON(ctx, s.kv, state.Key(s.list, state.KeyPlan), records); err != nil {
		return fmt.Errorf("writing plan: %w", err)
	}

	return nil
}
