package shopping

import "log"

// Reconciliation is the result of binding persisted items to categories.
// Extra holds orphan categories in discovery order; they never enter the
// catalog.
type Reconciliation struct {
	Items []LineItem
	Extra []Category
}

// Reconcile binds each stored item's category reference to the catalog,
// by id first and then by name. Unresolved references become orphan
// categories whose id and name are the raw reference.
func Reconcile(stored []StoredItem, catalog []Category) Reconciliation {
	var rec Reconciliation
	extraIdx := make(map[string]int)

	for _, item := range stored {
		if item.Category == "" {
			log.Printf("Warning: skipping item %q with no category reference", item.Name)
			continue
		}

		cat, ok := resolve(item.Category, catalog)
		if !ok {
			if i, seen := extraIdx[item.Category]; seen {
				cat = rec.Extra[i]
			} else {
				cat = Category{ID: item.Category, Name: item.Category, Kind: KindOrphan}
				extraIdx[cat.ID] = len(rec.Extra)
				rec.Extra = append(rec.Extra, cat)
			}
		}

		rec.Items = append(rec.Items, LineItem{
			Name:         item.Name,
			CategoryID:   cat.ID,
			CategoryName: cat.Name,
			Quantity:     item.Quantity,
		})
	}
	return rec
}

// resolve matches ref against ids before names. The order decides which
// category a historical item binds to when a name collides with an id.
func resolve(ref string, catalog []Category) (Category, bool) {
	for _, cat := range catalog {
		if cat.ID == ref {
			return cat, true
		}
	}
	for _, cat := range catalog {
		if cat.Name == ref {
			return cat, true
		}
	}
	return Category{}, false
}

// View returns catalog followed by the extra categories not already in it.
func View(catalog, extra []Category) []Category {
	out := make([]Category, 0, len(catalog)+len(extra))
	seen := make(map[string]struct{}, len(catalog)+len(extra))
	for _, group := range [][]Category{catalog, extra} {
		for _, cat := range group {
			if _, dup := seen[cat.ID]; dup {
				continue
			}
			seen[cat.ID] = struct{}{}
			out = append(out, cat)
		}
	}
	return out
}
