package shopping

import (
	"context"
	"log"
	"strings"
)

// Catalog is the authoritative, ordered set of known categories.
type Catalog struct {
	backend    CategoryBackend
	categories []Category
}

// NewCatalog creates an empty catalog backed by b. Call Load to populate it.
func NewCatalog(b CategoryBackend) *Catalog {
	return &Catalog{backend: b}
}

// Load replaces the catalog with the backend's categories. On failure the
// catalog is left empty.
func (c *Catalog) Load(ctx context.Context) ([]Category, error) {
	c.categories = nil

	fetched, err := c.backend.ListCategories(ctx)
	if err != nil {
		return nil, newError(ErrLoad, "failed to load categories", err)
	}

	seen := make(map[string]struct{}, len(fetched))
	loaded := make([]Category, 0, len(fetched))
	for _, cat := range fetched {
		if _, dup := seen[cat.ID]; dup {
			log.Printf("Warning: duplicate category id %q in catalog, keeping first", cat.ID)
			continue
		}
		seen[cat.ID] = struct{}{}
		cat.Kind = KindCatalog
		loaded = append(loaded, cat)
	}
	c.categories = loaded
	return c.Categories(), nil
}

// Create asks the backend for a new category and appends it. A blank name is
// a no-op returning (nil, nil). The catalog is unchanged on failure.
func (c *Catalog) Create(ctx context.Context, name string) (*Category, error) {
	if strings.TrimSpace(name) == "" {
		return nil, nil
	}

	cat, err := c.backend.CreateCategory(ctx, name)
	if err != nil {
		return nil, newError(ErrCreate, "failed to create category", err)
	}
	cat.Kind = KindCatalog

	if existing, ok := c.Lookup(cat.ID); ok {
		return &existing, nil
	}
	c.categories = append(c.categories, cat)
	return &cat, nil
}

// Categories returns a copy of the catalog in order.
func (c *Catalog) Categories() []Category {
	out := make([]Category, len(c.categories))
	copy(out, c.categories)
	return out
}

// Lookup finds a catalog category by id.
func (c *Catalog) Lookup(id string) (Category, bool) {
	for _, cat := range c.categories {
		if cat.ID == id {
			return cat, true
		}
	}
	return Category{}, false
}
