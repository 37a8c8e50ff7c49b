// Package book implements the local order book: an in-memory, price-ordered
// view of one instrument's bid and ask sides, mutated exclusively by
// snapshots and sequence-numbered diffs.
package book

import "github.com/shopspring/decimal"

// PriceLevel is a single (price, quantity) entry on one side of the book.
// A zero Qty is the deletion sentinel: it means "remove this price", never
// "an order of size zero".
type PriceLevel struct {
	Price decimal.Decimal
	Qty   decimal.Decimal
}

func (l PriceLevel) isDeletion() bool {
	return l.Qty.IsZero()
}
