// Package collector keeps the manager's list of barcode records waiting to be
// sent to the shared product collection.
package collector

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound   = errors.New("collector: record not found")
	ErrValidation = errors.New("collector: validation failed")
)

type Record struct {
	ID      uuid.UUID
	Barcode string
	Name    string
	Price   *decimal.Decimal
}

// Params carries the editable fields of a Record.
type Params struct {
	Barcode string
	Name    string
	Price   *decimal.Decimal
}

// Report summarises an upload. Skipped records were already known to the
// primary catalog and stay in the local list.
type Report struct {
	Sent    []Record
	Skipped []Record
	// Pending counts records left to send when the upload stopped early.
	Pending int
}
