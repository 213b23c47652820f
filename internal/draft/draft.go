// Package draft holds the add/edit form state shared by the TUI and the CLI.
// Lookups are asynchronous: each one gets a Ticket, and only the newest
// ticket of an open form may write its result back.
package draft

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/catalog"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/money"
	"github.com/MrJamesThe3rd/tally/internal/plan"
)

type Ticket uint64

// Fields are the form inputs as typed.
type Fields struct {
	Barcode  string
	Name     string
	Price    string
	Quantity string
}

type Form struct {
	mu     sync.Mutex
	fields Fields
	latest Ticket
	closed bool
}

func New(initial Fields) *Form {
	if initial.Quantity == "" {
		initial.Quantity = "1"
	}

	return &Form{fields: initial}
}

// FromItem prefills a form for editing an existing item.
func FromItem(item *ledger.LineItem) *Form {
	return New(Fields{
		Barcode:  item.Barcode,
		Name:     item.Name,
		Price:    item.UnitPrice.StringFixed(2),
		Quantity: strconv.Itoa(item.Quantity),
	})
}

// FromPlanned starts a form from a planned item; the price is left for the shelf.
func FromPlanned(item plan.Item) *Form {
	return New(Fields{Name: item.Name, Quantity: strconv.Itoa(item.Quantity)})
}

func (f *Form) Fields() Fields {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.fields
}

func (f *Form) Set(fields Fields) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.fields = fields
}

// BeginLookup supersedes every ticket handed out before it.
func (f *Form) BeginLookup() Ticket {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.latest++

	return f.latest
}

// Current reports whether t is still the newest ticket of an open form.
func (f *Form) Current(t Ticket) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return !f.closed && t == f.latest
}

// Close invalidates all outstanding tickets.
func (f *Form) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true
}

// Apply writes a lookup result into the form. It reports false and leaves the
// form untouched when the ticket is stale or the form is closed. A NotFound
// result clears name and price.
func (f *Form) Apply(t Ticket, res catalog.Result) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed || t != f.latest {
		return false
	}

	if res.Found() {
		if res.Product.Barcode != "" {
			f.fields.Barcode = res.Product.Barcode
		}

		f.fields.Name = res.Product.Name
		f.fields.Price = ""

		if !res.Product.Price.IsZero() {
			f.fields.Price = res.Product.Price.StringFixed(2)
		}

		return true
	}

	f.fields.Name = ""
	f.fields.Price = ""

	return true
}

// Params converts the typed fields into a ledger draft. Price accepts "12,50" and "12.50".
func (f *Form) Params() (ledger.Draft, error) {
	fields := f.Fields()

	price, err := parsePrice(fields.Price)
	if err != nil {
		return ledger.Draft{}, err
	}

	qty, err := strconv.Atoi(strings.TrimSpace(fields.Quantity))
	if err != nil {
		return ledger.Draft{}, &ledger.ValidationError{Field: "quantity", Message: fmt.Sprintf("%q is not a whole number", fields.Quantity)}
	}

	return ledger.Draft{
		Barcode:   strings.TrimSpace(fields.Barcode),
		Name:      strings.TrimSpace(fields.Name),
		UnitPrice: price,
		Quantity:  qty,
	}, nil
}

func parsePrice(s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, &ledger.ValidationError{Field: "unit price", Message: "is required"}
	}

	d, err := money.Parse(s)
	if err != nil {
		return decimal.Zero, &ledger.ValidationError{Field: "unit price", Message: fmt.Sprintf("%q is not a number", s)}
	}

	return d, nil
}
