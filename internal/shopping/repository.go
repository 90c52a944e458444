package shopping

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"shoplist/internal/database"

	"github.com/google/uuid"
)

// Repository is the SQLite-backed implementation of Backend.
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// NewRepository creates a new shopping list repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{
		db:  d,
		now: time.Now,
	}
}

// ListCategories returns every category in creation order.
func (r *Repository) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := []Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}
	return categories, nil
}

// CreateCategory inserts a category with a fresh id. Names are not unique.
func (r *Repository) CreateCategory(ctx context.Context, name string) (Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Category{}, fmt.Errorf("%w: category name is required", ErrInvalidInput)
	}

	c := Category{ID: uuid.NewString(), Name: name}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (id, name, created_at) VALUES (?, ?, ?)`,
		c.ID, c.Name, database.FormatTime(r.now()),
	)
	if err != nil {
		return Category{}, fmt.Errorf("failed to insert category: %w", err)
	}
	return c, nil
}

// ListShoppingLists returns every list, oldest first.
func (r *Repository) ListShoppingLists(ctx context.Context) ([]ShoppingList, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, items, created_at, updated_at FROM shopping_lists ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query shopping lists: %w", err)
	}
	defer rows.Close()

	lists := []ShoppingList{}
	for rows.Next() {
		list, err := scanList(rows)
		if err != nil {
			return nil, err
		}
		lists = append(lists, *list)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shopping lists: %w", err)
	}
	return lists, nil
}

// GetShoppingList retrieves a list by id, or ErrNotFound.
func (r *Repository) GetShoppingList(ctx context.Context, id string) (*ShoppingList, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, items, created_at, updated_at FROM shopping_lists WHERE id = ?`, id)
	list, err := scanList(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("shopping list %s: %w", id, ErrNotFound)
	}
	return list, err
}

// CreateShoppingList stores a new list.
func (r *Repository) CreateShoppingList(ctx context.Context, sub Submission) (*ShoppingList, error) {
	items, err := storedItems(sub)
	if err != nil {
		return nil, err
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal shopping list items: %w", err)
	}

	now := r.now().UTC().Truncate(time.Millisecond)
	list := &ShoppingList{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(sub.Name),
		Items:     items,
		CreatedAt: &now,
		UpdatedAt: &now,
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO shopping_lists (id, name, items, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		list.ID, list.Name, string(itemsJSON), database.FormatTime(now), database.FormatTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert shopping list: %w", err)
	}
	return list, nil
}

// UpdateShoppingList replaces the name and items of an existing list.
func (r *Repository) UpdateShoppingList(ctx context.Context, id string, sub Submission) (*ShoppingList, error) {
	items, err := storedItems(sub)
	if err != nil {
		return nil, err
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal shopping list items: %w", err)
	}

	now := r.now().UTC().Truncate(time.Millisecond)
	res, err := r.db.ExecContext(ctx,
		`UPDATE shopping_lists SET name = ?, items = ?, updated_at = ? WHERE id = ?`,
		strings.TrimSpace(sub.Name), string(itemsJSON), database.FormatTime(now), id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update shopping list: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, fmt.Errorf("shopping list %s: %w", id, ErrNotFound)
	}
	return r.GetShoppingList(ctx, id)
}

// DeleteShoppingList removes a list by id, or returns ErrNotFound.
func (r *Repository) DeleteShoppingList(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM shopping_lists WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete shopping list: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("shopping list %s: %w", id, ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanList(row rowScanner) (*ShoppingList, error) {
	var list ShoppingList
	var itemsJSON, createdRaw, updatedRaw string
	if err := row.Scan(&list.ID, &list.Name, &itemsJSON, &createdRaw, &updatedRaw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan shopping list: %w", err)
	}

	if err := json.Unmarshal([]byte(itemsJSON), &list.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal shopping list items: %w", err)
	}
	if list.Items == nil {
		list.Items = []StoredItem{}
	}

	created, err := database.ParseTime(createdRaw)
	if err != nil {
		return nil, err
	}
	updated, err := database.ParseTime(updatedRaw)
	if err != nil {
		return nil, err
	}
	list.CreatedAt = &created
	list.UpdatedAt = &updated
	return &list, nil
}

// storedItems validates a submission and converts its rows to the stored
// shape, keeping the category id as the item's reference.
func storedItems(sub Submission) ([]StoredItem, error) {
	if strings.TrimSpace(sub.Name) == "" {
		return nil, fmt.Errorf("%w: list name is required", ErrInvalidInput)
	}

	items := make([]StoredItem, 0, len(sub.Items))
	for i, it := range sub.Items {
		ref := it.CategoryID
		if ref == "" {
			ref = it.CategoryName
		}
		if strings.TrimSpace(it.Name) == "" || ref == "" || it.Quantity < 1 {
			return nil, fmt.Errorf("%w: invalid item at position %d", ErrInvalidInput, i)
		}
		items = append(items, StoredItem{Name: it.Name, Category: ref, Quantity: it.Quantity})
	}
	return items, nil
}
