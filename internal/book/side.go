package book

import (
	"github.com/emirpasic/gods/maps/treemap"
	"github.com/shopspring/decimal"
)

// decimalComparator orders two decimal.Decimal keys; it is what lets
// treemap.Map give us O(log n) insert/delete plus in-order traversal by
// price instead of the lexicographic ordering a plain string key would.
func decimalComparator(a, b interface{}) int {
	da := a.(decimal.Decimal)
	db := b.(decimal.Decimal)
	return da.Cmp(db)
}

// side is one half (bids or asks) of an OrderBook: a balanced-tree map from
// price to quantity. No level is ever stored with a zero quantity.
type side struct {
	levels *treemap.Map
}

func newSide() *side {
	return &side{levels: treemap.NewWith(decimalComparator)}
}

// put inserts or overwrites a level; a zero-qty level deletes instead.
func (s *side) put(l PriceLevel) {
	if l.isDeletion() {
		s.levels.Remove(l.Price)
		return
	}
	s.levels.Put(l.Price, l.Qty)
}

// replace clears the side and loads it from levels, discarding any
// zero-quantity entries (per ApplySnapshot's "zero levels discarded" rule).
func (s *side) replace(levels []PriceLevel) {
	s.levels.Clear()
	for _, l := range levels {
		if l.isDeletion() {
			continue
		}
		s.levels.Put(l.Price, l.Qty)
	}
}

func (s *side) apply(levels []PriceLevel) {
	for _, l := range levels {
		s.put(l)
	}
}

func (s *side) best() (decimal.Decimal, bool) {
	if s.levels.Empty() {
		return decimal.Decimal{}, false
	}
	k, _ := s.levels.Min()
	return k.(decimal.Decimal), true
}

func (s *side) worst() (decimal.Decimal, bool) {
	if s.levels.Empty() {
		return decimal.Decimal{}, false
	}
	k, _ := s.levels.Max()
	return k.(decimal.Decimal), true
}

// topAscending returns up to n levels starting from the lowest price
// (nearest-first for asks; bids use topDescending).
func (s *side) topAscending(n int) []PriceLevel {
	out := make([]PriceLevel, 0, n)
	it := s.levels.Iterator()
	for it.Next() {
		out = append(out, PriceLevel{
			Price: it.Key().(decimal.Decimal),
			Qty:   it.Value().(decimal.Decimal),
		})
		if len(out) >= n {
			break
		}
	}
	return out
}

// topDescending returns up to n levels starting from the highest price.
func (s *side) topDescending(n int) []PriceLevel {
	out := make([]PriceLevel, 0, n)
	it := s.levels.Iterator()
	for it.End(); it.Prev(); {
		out = append(out, PriceLevel{
			Price: it.Key().(decimal.Decimal),
			Qty:   it.Value().(decimal.Decimal),
		})
		if len(out) >= n {
			break
		}
	}
	return out
}

func (s *side) size() int {
	return s.levels.Size()
}
