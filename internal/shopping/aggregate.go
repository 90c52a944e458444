package shopping

// Group is one category's slice of a list for display.
// Indexes[i] is the ledger position of Items[i].
type Group struct {
	Category Category
	Items    []LineItem
	Indexes  []int
	Subtotal int
}

// Aggregate groups items by category. Groups follow the order of categories
// and only non-empty categories appear; items keep their source order.
// Items whose category is missing from categories are grouped under an
// orphan placeholder appended after the known groups.
func Aggregate(items []LineItem, categories []Category) []Group {
	var groups []Group
	seen := make(map[string]struct{}, len(categories))

	for _, cat := range categories {
		if _, dup := seen[cat.ID]; dup {
			continue
		}
		seen[cat.ID] = struct{}{}
		if g := collect(cat, items, 0); len(g.Items) > 0 {
			groups = append(groups, g)
		}
	}

	for i, it := range items {
		if _, ok := seen[it.CategoryID]; ok {
			continue
		}
		seen[it.CategoryID] = struct{}{}
		name := it.CategoryName
		if name == "" {
			name = it.CategoryID
		}
		placeholder := Category{ID: it.CategoryID, Name: name, Kind: KindOrphan}
		groups = append(groups, collect(placeholder, items, i))
	}
	return groups
}

func collect(cat Category, items []LineItem, from int) Group {
	g := Group{Category: cat}
	for i := from; i < len(items); i++ {
		if items[i].CategoryID != cat.ID {
			continue
		}
		g.Items = append(g.Items, items[i])
		g.Indexes = append(g.Indexes, i)
		g.Subtotal += items[i].Quantity
	}
	return g
}

// GrandTotal sums the subtotals of groups.
func GrandTotal(groups []Group) int {
	total := 0
	for _, g := range groups {
		total += g.Subtotal
	}
	return total
}
