package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/MrJamesThe3rd/tally/internal/state"
)

// SaveSession keeps the TUI logged in across restarts.
func SaveSession(ctx context.Context, kv state.Store, s Session) error {
	if err := state.PutJSON(ctx, kv, state.KeyAuthSession, s); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}

	return nil
}

// LoadSession returns the stored session, or false when there is none or it has expired.
func LoadSession(ctx context.Context, kv state.Store, now time.Time) (Session, bool, error) {
	var s Session

	found, err := state.GetJSON(ctx, kv, state.KeyAuthSession, &s)
	if err != nil {
		return Session{}, false, fmt.Errorf("loading session: %w", err)
	}

	if !found || s.Expired(now) {
		return Session{}, false, nil
	}

	return s, true, nil
}

func ClearSession(ctx context.Context, kv state.Store) error {
	if err := kv.Delete(ctx, state.KeyAuthSession); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}

	return nil
}
