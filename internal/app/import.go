package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"shoplist/internal/categorizer"
	"shoplist/internal/shopping"
)

// ImportResult reports which clipped products made it into a session.
type ImportResult struct {
	Added   []string
	Skipped []string
}

// ImportInto clips url and adds its items to s. With a category every item
// goes there; otherwise each item's category is suggested. Items that cannot
// be categorized are skipped.
func (a *App) ImportInto(ctx context.Context, s *shopping.Session, url, category string) (ImportResult, error) {
	if a.clipper == nil {
		return ImportResult{}, errors.New("page import is not configured")
	}

	var fixed *shopping.Category
	if strings.TrimSpace(category) != "" {
		cat, err := a.CategoryFor(ctx, s, "", category)
		if err != nil {
			return ImportResult{}, err
		}
		fixed = &cat
	}

	items, err := a.clipper.Clip(ctx, url)
	if err != nil {
		return ImportResult{}, err
	}

	var res ImportResult
	for _, item := range items {
		cat, ok := a.pickCategory(ctx, s, item.Name, fixed)
		if !ok || !s.AddItem(item.Name, cat.ID, item.Quantity) {
			res.Skipped = append(res.Skipped, item.Name)
			continue
		}
		res.Added = append(res.Added, item.Name)
	}
	return res, nil
}

func (a *App) pickCategory(ctx context.Context, s *shopping.Session, product string, fixed *shopping.Category) (shopping.Category, bool) {
	if fixed != nil {
		return *fixed, true
	}
	cat, err := a.CategoryFor(ctx, s, product, "")
	if err != nil {
		log.Printf("Warning: skipping %q: %v", product, err)
		return shopping.Category{}, false
	}
	return cat, true
}

// CategoryFor resolves the category a product goes into. A typed category is
// matched against the session's categories; without one the categorizer
// suggests it.
func (a *App) CategoryFor(ctx context.Context, s *shopping.Session, product, category string) (shopping.Category, error) {
	if strings.TrimSpace(category) != "" {
		cat, ok := categorizer.Match(category, s.Categories())
		if !ok {
			return shopping.Category{}, fmt.Errorf("unknown category %q", category)
		}
		return cat, nil
	}
	if a.categorizer == nil {
		return shopping.Category{}, errors.New("no category given and no categorizer configured")
	}
	return a.categorizer.Suggest(ctx, product, s.Categories())
}

// ImportURL creates a new list called name from the items on a web page.
func (a *App) ImportURL(ctx context.Context, name, category, url string) (*shopping.ShoppingList, error) {
	s := shopping.NewSession(a.backend)
	if err := s.Load(ctx); err != nil {
		return nil, err
	}
	s.SetName(name)

	res, err := a.ImportInto(ctx, s, url, category)
	if err != nil {
		return nil, fmt.Errorf("failed to import %s: %w", url, err)
	}
	if len(res.Skipped) > 0 {
		fmt.Fprintf(a.out, "Skipped %d items without a category: %s\n", len(res.Skipped), strings.Join(res.Skipped, ", "))
	}

	list, err := s.Submit(ctx)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "Created list %s (%s) with %d products\n", list.Name, list.ID, s.Ledger().Len())
	return list, nil
}
