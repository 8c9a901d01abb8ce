package cart

import "github.com/shopspring/decimal"

// Store holds the items of one cart. It is not safe for concurrent use; callers
// own a Store per request and persist it through the Repository.
type Store struct {
	items []Item
}

// NewStore rehydrates a store from persisted items. Duplicate product ids are
// merged and quantities below one are clamped.
func NewStore(items ...Item) *Store {
	s := &Store{}
	for _, item := range items {
		if item.Quantity < 1 {
			item.Quantity = 1
		}
		s.Add(item)
	}
	return s
}

func (s *Store) indexOf(productID int64) int {
	for i := range s.items {
		if s.items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Add inserts item or, when the product is already present, increases its quantity.
// A quantity of zero or less counts as one.
func (s *Store) Add(item Item) {
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	if idx := s.indexOf(item.ProductID); idx >= 0 {
		s.items[idx].Quantity += item.Quantity
		return
	}
	s.items = append(s.items, item)
}

// UpdateQuantity sets the quantity of a present product, clamped to at least one.
// It reports whether the product was in the cart.
func (s *Store) UpdateQuantity(productID int64, quantity int) bool {
	idx := s.indexOf(productID)
	if idx < 0 {
		return false
	}
	if quantity < 1 {
		quantity = 1
	}
	s.items[idx].Quantity = quantity
	return true
}

// Remove deletes a product from the cart and reports whether it was present.
func (s *Store) Remove(productID int64) bool {
	idx := s.indexOf(productID)
	if idx < 0 {
		return false
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	return true
}

// Clear empties the cart.
func (s *Store) Clear() {
	s.items = nil
}

// Total sums unit price times quantity over every item.
func (s *Store) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// Items returns a copy of the items in insertion order.
func (s *Store) Items() []Item {
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Count returns the number of units across all items.
func (s *Store) Count() int {
	n := 0
	for _, item := range s.items {
		n += item.Quantity
	}
	return n
}

// IsEmpty reports whether the cart has no items.
func (s *Store) IsEmpty() bool {
	return len(s.items) == 0
}
