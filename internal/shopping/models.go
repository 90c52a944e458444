package shopping

import "time"

// CategoryKind tells a catalog category apart from a placeholder synthesized
// for a reference that no longer resolves.
type CategoryKind int

const (
	KindCatalog CategoryKind = iota
	KindOrphan
)

// Category is a product category. ID is the stable identity.
type Category struct {
	ID   string       `json:"id"`
	Name string       `json:"name"`
	Kind CategoryKind `json:"-"`
}

// IsOrphan reports whether the category only exists for display in the
// current session.
func (c Category) IsOrphan() bool {
	return c.Kind == KindOrphan
}

// LineItem is one product row of a list being composed or edited.
// (Name, CategoryID) is its identity for merging.
type LineItem struct {
	Name         string `json:"name"`
	CategoryID   string `json:"categoryId"`
	CategoryName string `json:"categoryName"`
	Quantity     int    `json:"quantity"`
}

// StoredItem is the persisted shape of a list item. Category holds whatever
// reference was saved: a catalog id, a catalog name, or neither.
type StoredItem struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Quantity int    `json:"quantity"`
}

// ShoppingList is a list as returned by the persistence boundary.
type ShoppingList struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Items     []StoredItem `json:"items"`
	CreatedAt *time.Time   `json:"createdAt,omitempty"`
	UpdatedAt *time.Time   `json:"updatedAt,omitempty"`
}

// Submission is the body sent to create or update a list.
type Submission struct {
	Name  string     `json:"name"`
	Items []LineItem `json:"items"`
}
