package cart

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func newTestStore() *Store {
	return NewStore(context.Background(), "test-session", NewMemoryStorage())
}

func TestAddItemMergesSamePair(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	s.AddItem(ctx, Item{ProductID: "p1", VariantID: "v1", Name: "Tee", Price: 500, Quantity: 3, Stock: 5})
	s.AddItem(ctx, Item{ProductID: "p1", VariantID: "v1", Name: "Tee", Price: 500, Quantity: 4, Stock: 5})

	items := s.Items()
	if len(items) != 1 {
		t.Fatalf("expected 1 line item, got %d", len(items))
	}
	if items[0].Quantity != 5 {
		t.Errorf("expected quantity clamped to 5, got %d", items[0].Quantity)
	}
}

func TestAddItemRetainsOriginalFieldsOnMerge(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	s.AddItem(ctx, Item{ProductID: "p1", VariantID: "v1", Name: "Tee", Price: 500, Quantity: 1, Stock: 10})
	// Same pair added again at a different price: the price honored is the
	// one captured at the original add.
	s.AddItem(ctx, Item{ProductID: "p1", VariantID: "v1", Name: "Tee (renamed)", Price: 650, Quantity: 1, Stock: 10})

	item, ok := s.GetItem("p1", "v1")
	if !ok {
		t.Fatal("expected item to exist")
	}
	if item.Price != 500 {
		t.Errorf("expected original price 500 retained, got %v", item.Price)
	}
	if item.Name != "Tee" {
		t.Errorf("expected original name retained, got %q", item.Name)
	}
	if item.Quantity != 2 {
		t.Errorf("expected quantity 2, got %d", item.Quantity)
	}
}

func TestAddItemDistinctVariantsAreSeparateLines(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	s.AddItem(ctx, Item{ProductID: "p1", VariantID: "v1", Price: 500, Quantity: 2, Stock: 10})
	s.AddItem(ctx, Item{ProductID: "p1", VariantID: "v2", Price: 300, Quantity: 1, Stock: 10})
	s.AddItem(ctx, Item{ProductID: "p1", Price: 100, Quantity: 1, Stock: 10})

	if len(s.Items()) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(s.Items()))
	}
	if s.Subtotal() != 1400 {
		t.Errorf("expected subtotal 1400, got %v", s.Subtotal())
	}
	if s.ItemCount() != 4 {
		t.Errorf("expected item count 4, got %d", s.ItemCount())
	}
}

func TestAddItemOutOfStockCandidate(t *testing.T) {
	t.Run("new pair with zero stock adds no line", func(t *testing.T) {
		ctx := context.Background()
		s := newTestStore()

		s.AddItem(ctx, Item{ProductID: "p1", VariantID: "v1", Price: 500, Quantity: 2, Stock: 0})

		if len(s.Items()) != 0 {
			t.Fatalf("expected no lines, got %d", len(s.Items()))
		}
		if !s.IsOpen() {
			t.Error("AddItem should open the drawer even when the candidate is dropped")
		}
	})

	t.Run("merge with zero stock removes the existing line", func(t *testing.T) {
		ctx := context.Background()
		s := newTestStore()
		s.AddItem(ctx, Item{ProductID: "p1", VariantID: "v1", Price: 500, Quantity: 3, Stock: 5})

		s.AddItem(ctx, Item{ProductID: "p1", VariantID: "v1", Price: 500, Quantity: 1, Stock: 0})

		if len(s.Items()) != 0 {
			t.Fatalf("expected the line removed, got %d lines", len(s.Items()))
		}
	})

	t.Run("other lines survive an out-of-stock merge", func(t *testing.T) {
		ctx := context.Background()
		s := newTestStore()
		s.AddItem(ctx, Item{ProductID: "p1", VariantID: "v1", Price: 500, Quantity: 3, Stock: 5})
		s.AddItem(ctx, Item{ProductID: "p2", Price: 300, Quantity: 1, Stock: 5})

		s.AddItem(ctx, Item{ProductID: "p1", VariantID: "v1", Price: 500, Quantity: 1, Stock: 0})

		items := s.Items()
		if len(items) != 1 || items[0].ProductID != "p2" {
			t.Fatalf("expected only p2 to remain, got %+v", items)
		}
	})
}

func TestConcurrentMutationsPersistLatestState(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	s := NewStore(ctx, "concurrent-session", storage)

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.AddItem(ctx, Item{ProductID: fmt.Sprintf("p%d", i), Price: 10, Quantity: 1, Stock: 5})
		}(i)
	}
	wg.Wait()

	// Saves run under the store mutex, so the last write to storage is always
	// the latest snapshot regardless of goroutine interleaving.
	persisted, err := storage.Load(ctx, "concurrent-session")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(persisted) != len(s.Items()) {
		t.Errorf("persisted %d lines, in-memory has %d", len(persisted), len(s.Items()))
	}
}

func TestSubtotalUsesStoredPrices(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	s.AddItem(ctx, Item{ProductID: "p1", VariantID: "v1", Price: 500, Quantity: 2, Stock: 10})
	s.AddItem(ctx, Item{ProductID: "p1", VariantID: "v2", Price: 300, Quantity: 1, Stock: 10})

	if got := s.Subtotal(); got != 1300 {
		t.Errorf("expected subtotal 1300, got %v", got)
	}
}

func TestUpdateQuantity(t *testing.T) {
	tests := []struct {
		name      string
		quantity  int
		wantLines int
		wantQty   int
	}{
		{"zero removes the line", 0, 0, 0},
		{"negative removes the line", -1, 0, 0},
		{"over stock clamps to stock", 999, 1, 10},
		{"in range is set verbatim", 7, 1, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			s := newTestStore()
			s.AddItem(ctx, Item{ProductID: "p1", VariantID: "v1", Price: 500, Quantity: 2, Stock: 10})
			id := s.Items()[0].ID

			s.UpdateQuantity(ctx, id, tt.quantity)

			items := s.Items()
			if len(items) != tt.wantLines {
				t.Fatalf("expected %d lines, got %d", tt.wantLines, len(items))
			}
			if tt.wantLines > 0 && items[0].Quantity != tt.wantQty {
				t.Errorf("expected quantity %d, got %d", tt.wantQty, items[0].Quantity)
			}
		})
	}
}

func TestRemoveItemUnknownIDIsNoop(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	s.AddItem(ctx, Item{ProductID: "p1", VariantID: "v1", Price: 500, Quantity: 2, Stock: 10})

	s.RemoveItem(ctx, "no-such-line")
	s.UpdateQuantity(ctx, "no-such-line", 3)

	if len(s.Items()) != 1 {
		t.Errorf("expected cart unchanged, got %d lines", len(s.Items()))
	}
}

func TestClearEmptiesCart(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	s.AddItem(ctx, Item{ProductID: "p1", VariantID: "v1", Price: 500, Quantity: 2, Stock: 10})
	s.AddItem(ctx, Item{ProductID: "p2", Price: 300, Quantity: 1, Stock: 10})

	s.Clear(ctx)

	if len(s.Items()) != 0 {
		t.Errorf("expected empty cart, got %d lines", len(s.Items()))
	}
	if s.Subtotal() != 0 {
		t.Errorf("expected zero subtotal, got %v", s.Subtotal())
	}
}

func TestDrawerFlagTransitions(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	if s.IsOpen() {
		t.Error("drawer should start closed")
	}
	s.AddItem(ctx, Item{ProductID: "p1", Price: 1, Quantity: 1, Stock: 1})
	if !s.IsOpen() {
		t.Error("AddItem should open the drawer")
	}
	s.Close()
	if s.IsOpen() {
		t.Error("Close should hide the drawer")
	}
	s.Toggle()
	if !s.IsOpen() {
		t.Error("Toggle should flip the flag")
	}
	s.Open()
	if !s.IsOpen() {
		t.Error("Open should show the drawer")
	}
}

func TestSubscribersNotifiedOnMutation(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	var calls int
	var last []LineItem
	s.Subscribe(func(items []LineItem) {
		calls++
		last = items
	})

	s.AddItem(ctx, Item{ProductID: "p1", Price: 10, Quantity: 2, Stock: 5})
	s.UpdateQuantity(ctx, s.Items()[0].ID, 3)
	s.Clear(ctx)

	if calls != 3 {
		t.Errorf("expected 3 notifications, got %d", calls)
	}
	if len(last) != 0 {
		t.Errorf("expected final snapshot empty, got %d lines", len(last))
	}
}

// Feature: storefront-core, Property 1: Repeated adds of one pair keep one line
func TestProperty_RepeatedAddsKeepSingleLine(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("any sequence of adds of the same pair yields one line with summed-then-clamped quantity", prop.ForAll(
		func(quantities []int, stock int) bool {
			if stock < 1 {
				stock = 1
			}
			ctx := context.Background()
			s := newTestStore()

			sum := 0
			for _, q := range quantities {
				if q < 1 {
					q = 1
				}
				s.AddItem(ctx, Item{ProductID: "p1", VariantID: "v1", Price: 100, Quantity: q, Stock: stock})
				sum += q
				// Clamping uses the incoming candidate's stock, applied at
				// every add, so the running quantity never exceeds stock.
				if sum > stock {
					sum = stock
				}
			}

			if len(quantities) == 0 {
				return len(s.Items()) == 0
			}

			items := s.Items()
			if len(items) != 1 {
				t.Logf("expected 1 line, got %d", len(items))
				return false
			}
			if items[0].Quantity != sum {
				t.Logf("expected quantity %d, got %d", sum, items[0].Quantity)
				return false
			}
			return true
		},
		gen.SliceOf(gen.IntRange(1, 20)),
		gen.IntRange(1, 50),
	))

	properties.TestingRun(t)
}

// Feature: storefront-core, Property 2: Quantity invariant holds under arbitrary updates
func TestProperty_QuantityAlwaysWithinStock(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("after any update, every remaining line has 1 <= quantity <= stock", prop.ForAll(
		func(updates []int, stock int) bool {
			if stock < 1 {
				stock = 1
			}
			ctx := context.Background()
			s := newTestStore()
			s.AddItem(ctx, Item{ProductID: "p1", VariantID: "v1", Price: 50, Quantity: 1, Stock: stock})
			id := s.Items()[0].ID

			for _, q := range updates {
				s.UpdateQuantity(ctx, id, q)
			}

			for _, it := range s.Items() {
				if it.Quantity < 1 || it.Quantity > it.Stock {
					t.Logf("quantity %d out of [1, %d]", it.Quantity, it.Stock)
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(-5, 200)),
		gen.IntRange(1, 100),
	))

	properties.TestingRun(t)
}

// Feature: storefront-core, Property 3: Subtotal equals the sum over lines
func TestProperty_SubtotalMatchesLines(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("subtotal equals the sum of stored price times quantity", prop.ForAll(
		func(prices []int, quantity int) bool {
			if quantity < 1 {
				quantity = 1
			}
			ctx := context.Background()
			s := newTestStore()

			for i, p := range prices {
				s.AddItem(ctx, Item{
					ProductID: "p1",
					VariantID: string(rune('a' + i%26)),
					Price:     float64(p),
					Quantity:  quantity,
					Stock:     quantity,
				})
			}

			var want float64
			for _, it := range s.Items() {
				want += it.Price * float64(it.Quantity)
			}
			return s.Subtotal() == want
		},
		gen.SliceOfN(5, gen.IntRange(1, 10000)),
		gen.IntRange(1, 10),
	))

	properties.TestingRun(t)
}

// Feature: storefront-core, Property 4: Adds never leave a dead line
func TestProperty_AddNeverLeavesZeroQuantityLine(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("after any sequence of adds, every remaining line has quantity >= 1", prop.ForAll(
		func(quantities []int, stocks []int) bool {
			ctx := context.Background()
			s := newTestStore()

			for i, q := range quantities {
				s.AddItem(ctx, Item{
					ProductID: "p1",
					VariantID: "v1",
					Price:     100,
					Quantity:  q,
					Stock:     stocks[i%len(stocks)],
				})
			}

			for _, it := range s.Items() {
				if it.Quantity < 1 {
					t.Logf("line parked at quantity %d", it.Quantity)
					return false
				}
			}
			return true
		},
		gen.SliceOfN(10, gen.IntRange(1, 20)),
		gen.SliceOfN(5, gen.IntRange(0, 20)),
	))

	properties.TestingRun(t)
}
