package shopping

import (
	"reflect"
	"testing"
)

func TestLedger_Add(t *testing.T) {
	t.Run("MergesSameNameAndCategory", func(t *testing.T) {
		l := NewLedger()
		l.Add("X", "C", "Cat", 2)
		l.Add("X", "C", "Cat", 3)

		want := []LineItem{{Name: "X", CategoryID: "C", CategoryName: "Cat", Quantity: 5}}
		if got := l.Items(); !reflect.DeepEqual(got, want) {
			t.Errorf("Expected %+v, got %+v", want, got)
		}
	})

	t.Run("KeepsDistinctCategories", func(t *testing.T) {
		l := NewLedger()
		l.Add("X", "C1", "One", 2)
		l.Add("X", "C2", "Two", 3)

		if l.Len() != 2 {
			t.Errorf("Expected 2 items, got %d", l.Len())
		}
		if l.Total() != 5 {
			t.Errorf("Expected total 5, got %d", l.Total())
		}
	})

	t.Run("NamesAreCaseSensitive", func(t *testing.T) {
		l := NewLedger()
		l.Add("milk", "C", "", 1)
		l.Add("Milk", "C", "", 1)
		if l.Len() != 2 {
			t.Errorf("Expected 2 items, got %d", l.Len())
		}
	})

	rejected := []struct {
		name       string
		product    string
		categoryID string
		quantity   int
	}{
		{"EmptyName", "", "C", 1},
		{"BlankName", "   ", "C", 1},
		{"EmptyCategory", "X", "", 1},
		{"ZeroQuantity", "X", "C", 0},
		{"NegativeQuantity", "X", "C", -2},
	}
	for _, tc := range rejected {
		t.Run("Rejects"+tc.name, func(t *testing.T) {
			l := NewLedger()
			l.Add("Kept", "C", "", 1)
			if l.Add(tc.product, tc.categoryID, "", tc.quantity) {
				t.Error("Expected Add to report false")
			}
			if l.Len() != 1 || l.Total() != 1 {
				t.Errorf("Expected ledger unchanged, got %+v", l.Items())
			}
		})
	}
}

func TestLedger_Remove(t *testing.T) {
	newABC := func() *Ledger {
		l := NewLedger()
		l.Add("A", "C", "", 1)
		l.Add("B", "C", "", 1)
		l.Add("C", "C", "", 1)
		return l
	}

	t.Run("ByPosition", func(t *testing.T) {
		l := newABC()
		if !l.Remove(1) {
			t.Fatal("Expected Remove(1) to succeed")
		}
		items := l.Items()
		if len(items) != 2 || items[0].Name != "A" || items[1].Name != "C" {
			t.Errorf("Expected [A C], got %+v", items)
		}
	})

	t.Run("OutOfRange", func(t *testing.T) {
		l := newABC()
		if l.Remove(5) || l.Remove(-1) {
			t.Error("Expected out of range Remove to report false")
		}
		if l.Len() != 3 {
			t.Errorf("Expected 3 items, got %d", l.Len())
		}
	})
}

func TestLedger_SetQuantity(t *testing.T) {
	l := NewLedger()
	l.Add("A", "C", "", 1)

	if !l.SetQuantity(0, 4) || l.Total() != 4 {
		t.Errorf("Expected quantity 4, got total %d", l.Total())
	}
	if l.SetQuantity(0, 0) || l.SetQuantity(1, 2) {
		t.Error("Expected invalid SetQuantity to report false")
	}
	if l.Total() != 4 {
		t.Errorf("Expected total unchanged at 4, got %d", l.Total())
	}
}

func TestLedger_ItemsIsACopy(t *testing.T) {
	l := NewLedger()
	l.Add("A", "C", "", 1)

	items := l.Items()
	items[0].Quantity = 99
	if l.Total() != 1 {
		t.Errorf("Expected ledger unaffected by caller mutation, got total %d", l.Total())
	}
}

func TestHydrate(t *testing.T) {
	l := Hydrate([]LineItem{
		{Name: "A", CategoryID: "c1", CategoryName: "One", Quantity: 2},
		{Name: "A", CategoryID: "c1", CategoryName: "One", Quantity: 1},
		{Name: "B", CategoryID: "c1", CategoryName: "One", Quantity: 0},
		{Name: "", CategoryID: "c1", CategoryName: "One", Quantity: 1},
	})

	want := []LineItem{{Name: "A", CategoryID: "c1", CategoryName: "One", Quantity: 3}}
	if got := l.Items(); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}
