package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"shoplist/internal/clipper"
	"shoplist/internal/metrics"
	"shoplist/internal/shopping"
	"shoplist/internal/storage"
)

// PageClipper reads shopping items from a web page.
type PageClipper interface {
	Clip(ctx context.Context, url string) ([]clipper.Item, error)
}

// CategorySuggester picks a category for a product.
type CategorySuggester interface {
	Suggest(ctx context.Context, product string, categories []shopping.Category) (shopping.Category, error)
}

// App holds the application's dependencies.
type App struct {
	backend      shopping.Backend
	exports      *storage.ExportStore
	clipper      PageClipper
	categorizer  CategorySuggester
	metricsStore *metrics.Store
	out          io.Writer
}

// NewApp creates and initializes a new App instance. Every dependency but
// backend and out may be nil; the operations that need a missing one fail.
func NewApp(
	backend shopping.Backend,
	exports *storage.ExportStore,
	pageClipper PageClipper,
	categorizer CategorySuggester,
	metricsStore *metrics.Store,
	out io.Writer,
) *App {
	return &App{
		backend:      backend,
		exports:      exports,
		clipper:      pageClipper,
		categorizer:  categorizer,
		metricsStore: metricsStore,
		out:          out,
	}
}

// Backend returns the persistence boundary the app works against.
func (a *App) Backend() shopping.Backend {
	return a.backend
}

// ListLists prints every shopping list.
func (a *App) ListLists(ctx context.Context) error {
	lists, err := shopping.ListShoppingLists(ctx, a.backend)
	if err != nil {
		return err
	}

	if len(lists) == 0 {
		fmt.Fprintln(a.out, "No shopping lists yet.")
		return nil
	}
	for _, l := range lists {
		fmt.Fprintf(a.out, "%s  %s (%d items)\n", l.ID, l.Name, len(l.Items))
	}
	return nil
}

// ShowList prints a list grouped by category with subtotals.
func (a *App) ShowList(ctx context.Context, id string) error {
	s := shopping.NewEditSession(a.backend, id)
	if err := s.Load(ctx); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s (%s)\n", s.Name(), s.ID())
	for _, g := range s.Groups() {
		label := g.Category.Name
		if g.Category.IsOrphan() {
			label += " [not in catalog]"
		}
		fmt.Fprintf(a.out, "\n%s (%d)\n", label, g.Subtotal)
		for _, it := range g.Items {
			fmt.Fprintf(a.out, "  - %s x%d\n", it.Name, it.Quantity)
		}
	}
	fmt.Fprintf(a.out, "\nTotal: %d\n", s.Total())
	return nil
}

// DeleteList removes a shopping list.
func (a *App) DeleteList(ctx context.Context, id string) error {
	if err := shopping.DeleteShoppingList(ctx, a.backend, id); err != nil {
		return err
	}
	if a.exports != nil {
		if err := a.exports.RemoveStaleVersions(id); err != nil {
			log.Printf("Warning: failed to remove exports of %s: %v", id, err)
		}
	}
	fmt.Fprintf(a.out, "Deleted %s\n", id)
	return nil
}

// ListCategories prints the category catalog.
func (a *App) ListCategories(ctx context.Context) error {
	categories, err := shopping.NewCatalog(a.backend).Load(ctx)
	if err != nil {
		return err
	}

	if len(categories) == 0 {
		fmt.Fprintln(a.out, "No categories yet.")
		return nil
	}
	for _, c := range categories {
		fmt.Fprintf(a.out, "%s  %s\n", c.ID, c.Name)
	}
	return nil
}

// AddCategory creates a catalog category.
func (a *App) AddCategory(ctx context.Context, name string) (*shopping.Category, error) {
	catalog := shopping.NewCatalog(a.backend)
	cat, err := catalog.Create(ctx, name)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, errors.New("category name is required")
	}
	fmt.Fprintf(a.out, "Created category %s (%s)\n", cat.Name, cat.ID)
	return cat, nil
}

// ExportList writes the reconciled snapshot of a list to the export store and
// returns the file path. An export of the same version is not rewritten.
func (a *App) ExportList(ctx context.Context, id string) (string, error) {
	if a.exports == nil {
		return "", errors.New("export store is not configured")
	}

	list, err := a.backend.GetShoppingList(ctx, id)
	if err != nil {
		return "", fmt.Errorf("failed to fetch shopping list %s: %w", id, err)
	}
	categories, err := shopping.NewCatalog(a.backend).Load(ctx)
	if err != nil {
		return "", err
	}

	snap := storage.NewSnapshot(list, categories)
	if a.exports.Exists(snap.ID, snap.UpdatedAt) {
		path := a.exports.Path(snap.ID, snap.UpdatedAt)
		log.Printf("List '%s' up-to-date in %s. Skipping export.", snap.Name, path)
		fmt.Fprintln(a.out, path)
		return path, nil
	}

	path, err := a.exports.Save(snap)
	if err != nil {
		return "", err
	}
	fmt.Fprintln(a.out, path)
	return path, nil
}

// PrintUsage prints model usage for the last days.
func (a *App) PrintUsage(ctx context.Context, days int) error {
	if a.metricsStore == nil {
		return errors.New("metrics store is not configured")
	}
	usage, err := a.metricsStore.GetDailyUsage(ctx, days)
	if err != nil {
		return err
	}
	if len(usage) == 0 {
		fmt.Fprintln(a.out, "No usage recorded.")
		return nil
	}
	for _, d := range usage {
		fmt.Fprintf(a.out, "%s  %d tokens (%d calls)\n", d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution)
	}
	return nil
}

// CleanupMetrics removes usage records older than days.
func (a *App) CleanupMetrics(ctx context.Context, days int) error {
	if a.metricsStore == nil {
		return errors.New("metrics store is not configured")
	}
	removed, err := a.metricsStore.Cleanup(ctx, days)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Removed %d metric records older than %d days.\n", removed, days)
	return nil
}
