package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/collector"
	"github.com/MrJamesThe3rd/tally/internal/state"
)

// Store persists collected records as one JSON array under "collected-products".
type Store struct {
	kv state.Store
}

func New(kv state.Store) *Store {
	return &Store{kv: kv}
}

type record struct {
	ID    uuid.UUID        `json:"id"`
	EAN   string           `json:"ean"`
	Nome  string           `json:"nome"`
	Valor *decimal.Decimal `json:"valor,omitempty"`
}

func (s *Store) LoadRecords(ctx context.Context) ([]collector.Record, error) {
	var stored []record

	if _, err := state.GetJSON(ctx, s.kv, state.KeyCollected, &stored); err != nil {
		return nil, fmt.Errorf("reading records: %w", err)
	}

	out := make([]collector.Record, len(stored))
	for i, r := range stored {
		out[i] = collector.Record{ID: r.ID, Barcode: r.EAN, Name: r.Nome, Price: r.Valor}
	}

	return out, nil
}

func (s *Store) SaveRecords(ctx context.Context, records []collector.Record) error {
	stored := make([]record, len(records))
	for i, r := range records {
		stored[i] = record{ID: r.ID, EAN: r.Barcode, Nome: r.Name, Valor: r.Price}
	}

	if err := state.PutJSON(ctx, s.kv, state.KeyCollected, stored); err != nil {
		return fmt.Errorf("writing records: %w", err)
	}

	return nil
}
