// Package state is the persisted key-value boundary. Values are JSON documents
// stored under logical keys such as "products" or "budget-ceiling".
package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("state: key not found")

// Logical keys.
const (
	KeyProducts      = "products"
	KeyBudgetCeiling = "budget-ceiling"
	KeyCollected     = "collected-products"
	KeyAuthSession   = "auth-session"
	KeyPlan          = "shopping-plan"
)

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Key namespaces a logical key under a list name.
func Key(namespace, name string) string {
	if namespace == "" {
		return name
	}

	return namespace + "/" + name
}

// GetJSON decodes the value stored under key into v. It reports false when the key is absent.
func GetJSON(ctx context.Context, s Store, key string, v any) (bool, error) {
	data, err := s.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}

		return false, err
	}

	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decoding %s: %w", key, err)
	}

	return true, nil
}

func PutJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}

	return s.Put(ctx, key, data)
}
