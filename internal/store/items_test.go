package store

import (
	"errors"
	"testing"

	"github.com/jmfields/stockroom/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	// Every pooled connection gets its own :memory: database, so pin the
	// pool to one connection.
	s.DB.SetMaxOpenConns(1)
	if err := s.InitSchema(); err != nil {
		t.Fatalf("failed to init schema: %v", err)
	}
	t.Cleanup(func() { s.DB.Close() })
	return s
}

func addItem(t *testing.T, s *Store, name string, quantity, minQuantity int) *models.Item {
	t.Helper()
	item := &models.Item{
		Name:        name,
		Quantity:    quantity,
		ExpiryDate:  "2025-01-01",
		MinQuantity: minQuantity,
	}
	if err := s.CreateItem(item); err != nil {
		t.Fatalf("failed to create item: %v", err)
	}
	return item
}

func TestCreateAndListItems(t *testing.T) {
	s := newTestStore(t)

	item := addItem(t, s, "Gloves", 10, 5)
	if item.ID == 0 {
		t.Error("expected CreateItem to set the generated id")
	}

	items, err := s.GetAllItems()
	if err != nil {
		t.Fatalf("GetAllItems: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	got := items[0]
	if got.Name != "Gloves" || got.Quantity != 10 || got.MinQuantity != 5 || got.ExpiryDate != "2025-01-01" {
		t.Errorf("unexpected item: %+v", got)
	}
	if got.LastUsed.Valid {
		t.Error("new item should have a NULL last_used")
	}
}

func TestGetItemByIDNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetItemByID(42); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUseItemDecrements(t *testing.T) {
	s := newTestStore(t)
	item := addItem(t, s, "Masks", 3, 1)

	used, err := s.UseItem(item.ID)
	if err != nil {
		t.Fatalf("UseItem: %v", err)
	}
	if used.Quantity != 2 {
		t.Errorf("expected quantity 2 after one use, got %d", used.Quantity)
	}
	if used.LastUsed.Valid {
		t.Error("use must not set last_used")
	}
}

func TestUseItemNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.UseItem(99); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUseItemNeverGoesNegative(t *testing.T) {
	s := newTestStore(t)
	item := addItem(t, s, "Gauze", 2, 1)

	for i := 0; i < 2; i++ {
		if _, err := s.UseItem(item.ID); err != nil {
			t.Fatalf("use %d: %v", i+1, err)
		}
	}

	// Depleted: further uses are rejected and leave the row untouched.
	for i := 0; i < 3; i++ {
		if _, err := s.UseItem(item.ID); !errors.Is(err, ErrOutOfStock) {
			t.Fatalf("expected ErrOutOfStock, got %v", err)
		}
		got, err := s.GetItemByID(item.ID)
		if err != nil {
			t.Fatalf("GetItemByID: %v", err)
		}
		if got.Quantity != 0 {
			t.Fatalf("quantity went negative: %d", got.Quantity)
		}
	}
}

func TestUndoUseIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	item := addItem(t, s, "Syringes", 5, 2)

	if _, err := s.UseItem(item.ID); err != nil {
		t.Fatalf("UseItem: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := s.UndoUse(item.ID); err != nil {
			t.Fatalf("UndoUse call %d: %v", i+1, err)
		}
	}

	got, err := s.GetItemByID(item.ID)
	if err != nil {
		t.Fatalf("GetItemByID: %v", err)
	}
	if got.LastUsed.Valid {
		t.Error("last_used should be NULL after undo")
	}
	if got.Quantity != 4 {
		t.Errorf("undo must not restore quantity: got %d, want 4", got.Quantity)
	}
}

func TestDeleteItem(t *testing.T) {
	s := newTestStore(t)
	item := addItem(t, s, "Bandages", 7, 3)

	if err := s.DeleteItem(item.ID); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	if _, err := s.GetItemByID(item.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected deleted item to be gone, got %v", err)
	}
}

func TestGetLowStockItems(t *testing.T) {
	s := newTestStore(t)
	low1 := addItem(t, s, "Gloves", 2, 5)
	addItem(t, s, "Masks", 5, 5)   // at threshold, not below
	addItem(t, s, "Gauze", 10, 3)  // healthy
	low2 := addItem(t, s, "Tape", 0, 1)

	items, err := s.GetLowStockItems()
	if err != nil {
		t.Fatalf("GetLowStockItems: %v", err)
	}

	got := map[int]bool{}
	for _, i := range items {
		got[i.ID] = true
		if i.Quantity >= i.MinQuantity {
			t.Errorf("item %q does not belong on the report: quantity=%d min=%d", i.Name, i.Quantity, i.MinQuantity)
		}
	}
	if len(items) != 2 || !got[low1.ID] || !got[low2.ID] {
		t.Errorf("expected exactly Gloves and Tape on the report, got %+v", items)
	}
}
