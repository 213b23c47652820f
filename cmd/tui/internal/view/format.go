package view

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/money"
)

const (
	opTimeout     = 5 * time.Second
	lookupTimeout = 15 * time.Second
	scanTimeout   = 60 * time.Second
	uploadTimeout = 2 * time.Minute
)

func FormatMoney(d decimal.Decimal) string {
	return money.Format(d)
}

// OpCtx returns a context with the standard timeout for store writes.
func OpCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), opTimeout)
}
