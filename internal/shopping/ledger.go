package shopping

import "strings"

// Ledger is the working set of line items for one editing session.
// No two items share (Name, CategoryID) and every quantity is >= 1.
// A Ledger is not safe for concurrent use.
type Ledger struct {
	items []LineItem
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Hydrate builds a ledger from loaded items, merging duplicates and dropping
// rows Add would reject.
func Hydrate(items []LineItem) *Ledger {
	l := NewLedger()
	for _, it := range items {
		l.Add(it.Name, it.CategoryID, it.CategoryName, it.Quantity)
	}
	return l
}

// Add merges the product into an existing (name, categoryID) row by summing
// quantities, or appends a new row. It reports false and changes nothing if
// name is blank, categoryID is empty or quantity < 1.
func (l *Ledger) Add(name, categoryID, categoryName string, quantity int) bool {
	if strings.TrimSpace(name) == "" || categoryID == "" || quantity < 1 {
		return false
	}

	for i := range l.items {
		if l.items[i].Name == name && l.items[i].CategoryID == categoryID {
			l.items[i].Quantity += quantity
			return true
		}
	}

	l.items = append(l.items, LineItem{
		Name:         name,
		CategoryID:   categoryID,
		CategoryName: categoryName,
		Quantity:     quantity,
	})
	return true
}

// Remove deletes the item at index. Out of range is a no-op.
func (l *Ledger) Remove(index int) bool {
	if index < 0 || index >= len(l.items) {
		return false
	}
	l.items = append(l.items[:index], l.items[index+1:]...)
	return true
}

// SetQuantity replaces the quantity at index when quantity >= 1.
func (l *Ledger) SetQuantity(index, quantity int) bool {
	if index < 0 || index >= len(l.items) || quantity < 1 {
		return false
	}
	l.items[index].Quantity = quantity
	return true
}

// Total is the sum of all quantities.
func (l *Ledger) Total() int {
	total := 0
	for _, it := range l.items {
		total += it.Quantity
	}
	return total
}

// Items returns a copy of the rows in ledger order.
func (l *Ledger) Items() []LineItem {
	out := make([]LineItem, len(l.items))
	copy(out, l.items)
	return out
}

func (l *Ledger) Len() int {
	return len(l.items)
}
