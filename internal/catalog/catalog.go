// Package catalog resolves barcodes against external product catalogs.
package catalog

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrNoMatch means the source answered but holds no valid record for the barcode.
	ErrNoMatch = errors.New("catalog: no matching product")
	// ErrNetwork means no source could be reached.
	ErrNetwork        = errors.New("catalog: no catalog reachable")
	ErrInvalidBarcode = errors.New("catalog: barcode is required")
)

type Product struct {
	Barcode string
	Name    string
	Price   decimal.Decimal // zero when the source has no price
	Source  string
}

// Source is a single catalog. Lookup returns ErrNoMatch when nothing valid was
// found; any other error is a transport failure.
type Source interface {
	Name() string
	Lookup(ctx context.Context, barcode string) (Product, error)
}

type Status int

const (
	StatusNotFound Status = iota
	StatusFound
)

func (s Status) String() string {
	if s == StatusFound {
		return "found"
	}

	return "not_found"
}

// Result is the outcome of a resolution that reached at least one source.
type Result struct {
	Status  Status
	Product Product // set only when Status is StatusFound
	// Unreachable names the sources that could not be checked.
	Unreachable []string
}

func (r Result) Found() bool {
	return r.Status == StatusFound
}
