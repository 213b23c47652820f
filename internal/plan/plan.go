// Package plan is the pre-shopping list: names and quantities only, no prices.
// Finalizing it hands the items to the ledger, either to sum the cart freely
// or to shop against a budget ceiling.
package plan

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/ledger"
)

var (
	ErrNotFound   = errors.New("plan: item not found")
	ErrValidation = errors.New("plan: validation failed")
	ErrEmpty      = errors.New("plan: nothing planned")
)

type Item struct {
	ID       uuid.UUID
	Name     string
	Quantity int
}

// Mode picks the ledger flow a finalized plan continues in.
type Mode string

const (
	ModeSum    Mode = "sum"
	ModeBudget Mode = "budget"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeSum, ModeBudget:
		return m, nil
	}

	return "", fmt.Errorf("%w: unknown mode %q, want sum or budget", ErrValidation, s)
}

// Handoff is a finalized plan.
type Handoff struct {
	Mode  Mode
	Items []Item
}

// Outstanding lists the planned items the ledger holds no item of the same name for.
func (h Handoff) Outstanding(bought []*ledger.LineItem) []Item {
	have := make(map[string]bool, len(bought))
	for _, item := range bought {
		have[foldName(item.Name)] = true
	}

	var out []Item

	for _, item := range h.Items {
		if !have[foldName(item.Name)] {
			out = append(out, item)
		}
	}

	return out
}

func foldName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// capitalize upper-cases the first letter and leaves the rest as typed.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}

	return string(unicode.ToUpper(r)) + s[size:]
}
