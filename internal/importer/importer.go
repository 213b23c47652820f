// Package importer reads product lists exported from spreadsheets.
package importer

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrNoHeader = errors.New("importer: no header row with barcode and name columns")

// Row is one product read from a file. Price is nil when the file has no price for it.
type Row struct {
	Barcode string
	Name    string
	Price   *decimal.Decimal
}
