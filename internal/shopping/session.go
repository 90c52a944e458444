package shopping

import (
	"context"
	"strings"
)

// Session is one list-create or list-edit flow. It owns its ledger and
// category view exclusively and performs at most one backend call at a time.
// Nothing is persisted until Submit.
type Session struct {
	backend Backend
	catalog *Catalog
	listID  string
	name    string
	ledger  *Ledger
	extra   []Category
}

// NewSession starts a flow for a list that does not exist yet.
func NewSession(b Backend) *Session {
	return &Session{
		backend: b,
		catalog: NewCatalog(b),
		ledger:  NewLedger(),
	}
}

// NewEditSession starts a flow for the persisted list id. Load must succeed
// before the session reflects the list.
func NewEditSession(b Backend, id string) *Session {
	s := NewSession(b)
	s.listID = id
	return s
}

// Load fetches the catalog and, for edit sessions, the list itself. The list
// is reconciled against the catalog: unresolved category references become
// session-scoped orphan categories.
func (s *Session) Load(ctx context.Context) error {
	catalog, err := s.catalog.Load(ctx)
	if err != nil {
		return err
	}
	if s.listID == "" {
		return nil
	}

	list, err := s.backend.GetShoppingList(ctx, s.listID)
	if err != nil {
		return newError(ErrLoad, "failed to load shopping list", err)
	}

	rec := Reconcile(list.Items, catalog)
	s.name = list.Name
	s.ledger = Hydrate(rec.Items)
	s.extra = rec.Extra
	return nil
}

// ID is the persisted list id, empty until a new list is submitted.
func (s *Session) ID() string { return s.listID }

func (s *Session) Name() string { return s.name }

func (s *Session) SetName(name string) { s.name = name }

// IsNew reports whether Submit will create rather than update.
func (s *Session) IsNew() bool { return s.listID == "" }

// Ledger exposes the working set for positional edits.
func (s *Session) Ledger() *Ledger { return s.ledger }

// Categories is the session's category view: the catalog followed by
// orphan categories found while reconciling.
func (s *Session) Categories() []Category {
	return View(s.catalog.Categories(), s.extra)
}

// Category finds id in the session view.
func (s *Session) Category(id string) (Category, bool) {
	for _, cat := range s.Categories() {
		if cat.ID == id {
			return cat, true
		}
	}
	return Category{}, false
}

// AddItem adds a product under categoryID, caching the category's display
// name from the session view.
func (s *Session) AddItem(name, categoryID string, quantity int) bool {
	var display string
	if cat, ok := s.Category(categoryID); ok {
		display = cat.Name
	}
	return s.ledger.Add(name, categoryID, display, quantity)
}

// CreateCategory adds a category to the catalog through the backend.
func (s *Session) CreateCategory(ctx context.Context, name string) (*Category, error) {
	return s.catalog.Create(ctx, name)
}

// Groups is the aggregated display view of the ledger.
func (s *Session) Groups() []Group {
	return Aggregate(s.ledger.Items(), s.Categories())
}

func (s *Session) Total() int { return s.ledger.Total() }

// Submit validates the list and creates or updates it. Validation failures
// never reach the backend. Session state is unchanged on any failure.
func (s *Session) Submit(ctx context.Context) (*ShoppingList, error) {
	if strings.TrimSpace(s.name) == "" {
		return nil, newError(ErrValidation, "list name is required", nil)
	}
	if s.ledger.Len() == 0 {
		return nil, newError(ErrValidation, "add at least one product", nil)
	}

	sub := Submission{Name: s.name, Items: s.ledger.Items()}

	if s.listID == "" {
		list, err := s.backend.CreateShoppingList(ctx, sub)
		if err != nil {
			return nil, newError(ErrSubmit, "failed to create shopping list", err)
		}
		s.listID = list.ID
		return list, nil
	}

	list, err := s.backend.UpdateShoppingList(ctx, s.listID, sub)
	if err != nil {
		return nil, newError(ErrSubmit, "failed to update shopping list", err)
	}
	return list, nil
}

// ListShoppingLists fetches every persisted list for browsing.
func ListShoppingLists(ctx context.Context, b Backend) ([]ShoppingList, error) {
	lists, err := b.ListShoppingLists(ctx)
	if err != nil {
		return nil, newError(ErrLoad, "failed to load shopping lists", err)
	}
	return lists, nil
}

// DeleteShoppingList removes a persisted list.
func DeleteShoppingList(ctx context.Context, b Backend, id string) error {
	if err := b.DeleteShoppingList(ctx, id); err != nil {
		return newError(ErrDelete, "failed to delete shopping list", err)
	}
	return nil
}
