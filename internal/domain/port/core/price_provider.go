package core

import "context"

// PriceProvider supplies the current per-unit price in cents. The price is
// read live on every call and must not be cached by callers, so that price
// changes apply to future increments only.
type PriceProvider interface {
	UnitPrice(ctx context.Context) (int64, error)
}
