package shopping

import (
	"context"
	"errors"
	"fmt"
)

// mockBackend is an in-memory Backend that records submissions and can be
// told to fail.
type mockBackend struct {
	categories []Category
	lists      map[string]*ShoppingList
	nextID     int

	failList   error
	failCreate error
	failSubmit error

	created []Submission
	updated []Submission
	calls   int
}

func newMockBackend(categories ...Category) *mockBackend {
	return &mockBackend{categories: categories, lists: map[string]*ShoppingList{}}
}

func (m *mockBackend) ListCategories(ctx context.Context) ([]Category, error) {
	m.calls++
	if m.failList != nil {
		return nil, m.failList
	}
	return append([]Category(nil), m.categories...), nil
}

func (m *mockBackend) CreateCategory(ctx context.Context, name string) (Category, error) {
	m.calls++
	if m.failCreate != nil {
		return Category{}, m.failCreate
	}
	m.nextID++
	cat := Category{ID: fmt.Sprintf("cat-%d", m.nextID), Name: name}
	m.categories = append(m.categories, cat)
	return cat, nil
}

func (m *mockBackend) ListShoppingLists(ctx context.Context) ([]ShoppingList, error) {
	m.calls++
	if m.failList != nil {
		return nil, m.failList
	}
	var out []ShoppingList
	for _, l := range m.lists {
		out = append(out, *l)
	}
	return out, nil
}

func (m *mockBackend) GetShoppingList(ctx context.Context, id string) (*ShoppingList, error) {
	m.calls++
	l, ok := m.lists[id]
	if !ok {
		return nil, ErrNotFound
	}
	return l, nil
}

func (m *mockBackend) CreateShoppingList(ctx context.Context, sub Submission) (*ShoppingList, error) {
	m.calls++
	if m.failSubmit != nil {
		return nil, m.failSubmit
	}
	m.created = append(m.created, sub)
	m.nextID++
	l := &ShoppingList{ID: fmt.Sprintf("list-%d", m.nextID), Name: sub.Name, Items: toStored(sub.Items)}
	m.lists[l.ID] = l
	return l, nil
}

func (m *mockBackend) UpdateShoppingList(ctx context.Context, id string, sub Submission) (*ShoppingList, error) {
	m.calls++
	if m.failSubmit != nil {
		return nil, m.failSubmit
	}
	l, ok := m.lists[id]
	if !ok {
		return nil, ErrNotFound
	}
	m.updated = append(m.updated, sub)
	l.Name = sub.Name
	l.Items = toStored(sub.Items)
	return l, nil
}

func (m *mockBackend) DeleteShoppingList(ctx context.Context, id string) error {
	m.calls++
	if _, ok := m.lists[id]; !ok {
		return ErrNotFound
	}
	delete(m.lists, id)
	return nil
}

func toStored(items []LineItem) []StoredItem {
	out := make([]StoredItem, 0, len(items))
	for _, it := range items {
		out = append(out, StoredItem{Name: it.Name, Category: it.CategoryID, Quantity: it.Quantity})
	}
	return out
}

var errBoom = errors.New("boom")
