package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Resolver queries its sources in order and stops at the first valid product.
type Resolver struct {
	sources []Source
}

func NewResolver(sources ...Source) *Resolver {
	return &Resolver{sources: sources}
}

// Resolve returns StatusNotFound when every reachable source had no match.
// An unreachable source falls through to the next one; ErrNetwork is returned
// only when none could be reached.
func (r *Resolver) Resolve(ctx context.Context, barcode string) (Result, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return Result{}, ErrInvalidBarcode
	}

	var (
		unreachable []string
		errs        []error
	)

	for _, src := range r.sources {
		p, err := src.Lookup(ctx, barcode)
		if err == nil {
			return Result{Status: StatusFound, Product: p, Unreachable: unreachable}, nil
		}

		if errors.Is(err, ErrNoMatch) {
			continue
		}

		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}

		slog.Warn("catalog lookup failed", "source", src.Name(), "barcode", barcode, "error", err)

		unreachable = append(unreachable, src.Name())
		errs = append(errs, err)
	}

	if len(r.sources) > 0 && len(unreachable) == len(r.sources) {
		return Result{}, fmt.Errorf("%w: %w", ErrNetwork, errors.Join(errs...))
	}

	return Result{Status: StatusNotFound, Unreachable: unreachable}, nil
}
