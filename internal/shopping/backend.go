package shopping

import "context"

// CategoryBackend is the part of the persistence boundary the catalog needs.
type CategoryBackend interface {
	ListCategories(ctx context.Context) ([]Category, error)
	CreateCategory(ctx context.Context, name string) (Category, error)
}

// Backend is the persistence boundary for categories and shopping lists.
// Implementations must report failures as errors rather than partial data.
type Backend interface {
	CategoryBackend
	ListShoppingLists(ctx context.Context) ([]ShoppingList, error)
	GetShoppingList(ctx context.Context, id string) (*ShoppingList, error)
	CreateShoppingList(ctx context.Context, sub Submission) (*ShoppingList, error)
	UpdateShoppingList(ctx context.Context, id string, sub Submission) (*ShoppingList, error)
	DeleteShoppingList(ctx context.Context, id string) error
}
