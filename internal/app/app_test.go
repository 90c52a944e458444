package app

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"shoplist/internal/clipper"
	"shoplist/internal/database"
	"shoplist/internal/database/dbtest"
	"shoplist/internal/metrics"
	"shoplist/internal/shopping"
	"shoplist/internal/storage"
)

type mockClipper struct {
	items []clipper.Item
	err   error
}

func (m *mockClipper) Clip(ctx context.Context, url string) ([]clipper.Item, error) {
	return m.items, m.err
}

type mockSuggester struct {
	byProduct map[string]string
}

func (m *mockSuggester) Suggest(ctx context.Context, product string, categories []shopping.Category) (shopping.Category, error) {
	id, ok := m.byProduct[product]
	if !ok {
		return shopping.Category{}, errors.New("no idea")
	}
	for _, c := range categories {
		if c.ID == id {
			return c, nil
		}
	}
	return shopping.Category{}, errors.New("unknown category")
}

type fixture struct {
	app     *App
	repo    *shopping.Repository
	exports *storage.ExportStore
	out     *bytes.Buffer
	fruit   shopping.Category
	dairy   shopping.Category
}

func newFixture(t *testing.T, clip PageClipper, suggester CategorySuggester) *fixture {
	t.Helper()
	ctx := context.Background()

	db := dbtest.New(t)
	repo := shopping.NewRepository(db)
	exports, err := storage.NewExportStore(filepath.Join(t.TempDir(), "exports"))
	if err != nil {
		t.Fatalf("Failed to create export store: %v", err)
	}

	fruit, err := repo.CreateCategory(ctx, "Fruit")
	if err != nil {
		t.Fatalf("Failed to create category: %v", err)
	}
	dairy, err := repo.CreateCategory(ctx, "Dairy")
	if err != nil {
		t.Fatalf("Failed to create category: %v", err)
	}

	out := &bytes.Buffer{}
	return &fixture{
		app:     NewApp(repo, exports, clip, suggester, metrics.NewStore(db), out),
		repo:    repo,
		exports: exports,
		out:     out,
		fruit:   fruit,
		dairy:   dairy,
	}
}

func (f *fixture) createList(t *testing.T, name string, items ...shopping.LineItem) *shopping.ShoppingList {
	t.Helper()
	list, err := f.repo.CreateShoppingList(context.Background(), shopping.Submission{Name: name, Items: items})
	if err != nil {
		t.Fatalf("Failed to create list: %v", err)
	}
	return list
}

func TestApp_Browse(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, nil)

	t.Run("ListListsEmpty", func(t *testing.T) {
		f.out.Reset()
		if err := f.app.ListLists(ctx); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if !strings.Contains(f.out.String(), "No shopping lists yet.") {
			t.Errorf("Unexpected output: %q", f.out.String())
		}
	})

	list := f.createList(t, "Weekend",
		shopping.LineItem{Name: "Apples", CategoryID: f.fruit.ID, Quantity: 2},
		shopping.LineItem{Name: "Milk", CategoryID: f.dairy.ID, Quantity: 1},
		shopping.LineItem{Name: "Chips", CategoryID: "Snacks", Quantity: 3},
	)

	t.Run("ListLists", func(t *testing.T) {
		f.out.Reset()
		if err := f.app.ListLists(ctx); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if !strings.Contains(f.out.String(), list.ID+"  Weekend (3 items)") {
			t.Errorf("Unexpected output: %q", f.out.String())
		}
	})

	t.Run("ShowList", func(t *testing.T) {
		f.out.Reset()
		if err := f.app.ShowList(ctx, list.ID); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		got := f.out.String()
		for _, want := range []string{
			"Weekend (" + list.ID + ")",
			"Fruit (2)\n  - Apples x2",
			"Dairy (1)\n  - Milk x1",
			"Snacks [not in catalog] (3)",
			"Total: 6",
		} {
			if !strings.Contains(got, want) {
				t.Errorf("Expected output to contain %q, got:\n%s", want, got)
			}
		}
		if strings.Index(got, "Fruit") > strings.Index(got, "Dairy") {
			t.Errorf("Expected groups in catalog order, got:\n%s", got)
		}
	})

	t.Run("ShowMissingList", func(t *testing.T) {
		err := f.app.ShowList(ctx, "missing")
		if !errors.Is(err, shopping.ErrLoad) || !errors.Is(err, shopping.ErrNotFound) {
			t.Errorf("Expected a load error wrapping ErrNotFound, got %v", err)
		}
	})

	t.Run("Categories", func(t *testing.T) {
		f.out.Reset()
		if _, err := f.app.AddCategory(ctx, "Bakery"); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if _, err := f.app.AddCategory(ctx, "   "); err == nil {
			t.Error("Expected an error for a blank category name, got nil")
		}

		f.out.Reset()
		if err := f.app.ListCategories(ctx); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		lines := strings.Split(strings.TrimSpace(f.out.String()), "\n")
		if len(lines) != 3 || !strings.HasSuffix(lines[2], "Bakery") {
			t.Errorf("Expected three categories ending with Bakery, got %q", lines)
		}
	})

	t.Run("ExportAndDelete", func(t *testing.T) {
		path, err := f.app.ExportList(ctx, list.ID)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		snap, err := f.exports.Load(list.ID, database.FormatTime(*list.UpdatedAt))
		if err != nil {
			t.Fatalf("Failed to load export: %v", err)
		}
		if snap.Total != 6 || len(snap.Groups) != 3 {
			t.Errorf("Unexpected snapshot: %+v", snap)
		}

		again, err := f.app.ExportList(ctx, list.ID)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if again != path {
			t.Errorf("Expected unchanged export path %s, got %s", path, again)
		}

		if err := f.app.DeleteList(ctx, list.ID); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if f.exports.Exists(list.ID, snap.UpdatedAt) {
			t.Error("Expected exports to be removed with the list")
		}
		if err := f.app.DeleteList(ctx, list.ID); !errors.Is(err, shopping.ErrDelete) {
			t.Errorf("Expected ErrDelete for a missing list, got %v", err)
		}
	})
}

func TestApp_ImportURL(t *testing.T) {
	ctx := context.Background()
	items := []clipper.Item{
		{Name: "Apples", Quantity: 2},
		{Name: "Milk", Quantity: 1},
		{Name: "Mystery", Quantity: 1},
		{Name: "Apples", Quantity: 1},
	}

	t.Run("SuggestedCategories", func(t *testing.T) {
		f := newFixture(t, &mockClipper{items: items}, nil)
		f.app.categorizer = &mockSuggester{byProduct: map[string]string{
			"Apples": f.fruit.ID,
			"Milk":   f.dairy.ID,
		}}

		list, err := f.app.ImportURL(ctx, "Imported", "", "https://example.com/recipe")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(list.Items) != 2 {
			t.Fatalf("Expected 2 merged items, got %+v", list.Items)
		}
		if list.Items[0].Name != "Apples" || list.Items[0].Quantity != 3 || list.Items[0].Category != f.fruit.ID {
			t.Errorf("Unexpected first item: %+v", list.Items[0])
		}
		if !strings.Contains(f.out.String(), "Skipped 1 items without a category: Mystery") {
			t.Errorf("Unexpected output: %q", f.out.String())
		}
	})

	t.Run("FixedCategory", func(t *testing.T) {
		f := newFixture(t, &mockClipper{items: items}, nil)

		list, err := f.app.ImportURL(ctx, "Imported", "dairy", "https://example.com/recipe")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(list.Items) != 3 {
			t.Fatalf("Expected 3 items, got %+v", list.Items)
		}
		for _, it := range list.Items {
			if it.Category != f.dairy.ID {
				t.Errorf("Expected every item in Dairy, got %+v", it)
			}
		}
	})

	t.Run("UnknownCategory", func(t *testing.T) {
		f := newFixture(t, &mockClipper{items: items}, nil)

		if _, err := f.app.ImportURL(ctx, "Imported", "Hardware", "https://example.com"); err == nil {
			t.Fatal("Expected an error, got nil")
		}
	})

	t.Run("NothingCategorized", func(t *testing.T) {
		f := newFixture(t, &mockClipper{items: items}, nil)

		_, err := f.app.ImportURL(ctx, "Imported", "", "https://example.com")
		if !errors.Is(err, shopping.ErrValidation) {
			t.Errorf("Expected a validation error, got %v", err)
		}
	})

	t.Run("ClipFailure", func(t *testing.T) {
		f := newFixture(t, &mockClipper{err: errors.New("status 500")}, nil)

		if _, err := f.app.ImportURL(ctx, "Imported", "Fruit", "https://example.com"); err == nil {
			t.Fatal("Expected an error, got nil")
		}
	})
}

func TestApp_Metrics(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, nil)

	if err := f.app.PrintUsage(ctx, 7); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.Contains(f.out.String(), "No usage recorded.") {
		t.Errorf("Unexpected output: %q", f.out.String())
	}

	f.out.Reset()
	if err := f.app.CleanupMetrics(ctx, 30); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.Contains(f.out.String(), "Removed 0 metric records") {
		t.Errorf("Unexpected output: %q", f.out.String())
	}
}
