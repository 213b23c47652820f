package state

import (
	"context"
	"fmt"

	"github.com/MrJamesThe3rd/tally/internal/config"
	"github.com/MrJamesThe3rd/tally/internal/database"
)

// Open returns the Store selected by cfg.Storage.Driver.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Storage.Driver {
	case "", "bolt":
		return NewBoltStore(cfg.Storage.BoltPath)
	case "postgres":
		db, err := database.New(cfg.ConnectionString())
		if err != nil {
			return nil, err
		}

		s, err := NewPostgresStore(ctx, db)
		if err != nil {
			db.Close()
			return nil, err
		}

		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Storage.Driver)
	}
}
