package wishlist

import (
	"context"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestToggleAddsAndRemoves(t *testing.T) {
	ctx := context.Background()
	s := NewStore(ctx, "sess", NewMemoryStorage())

	e := Entry{ProductID: "p1", VariantID: "v1", Name: "Tee", Price: 500}

	if !s.Toggle(ctx, e) {
		t.Error("first toggle should add")
	}
	if !s.Has("p1", "v1") {
		t.Error("entry should be present after add")
	}
	if s.Toggle(ctx, e) {
		t.Error("second toggle should remove")
	}
	if s.Has("p1", "v1") {
		t.Error("entry should be gone after second toggle")
	}
}

func TestAddIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewStore(ctx, "sess", NewMemoryStorage())

	e := Entry{ProductID: "p1", VariantID: "v1"}
	s.Add(ctx, e)
	s.Add(ctx, e)

	if s.Count() != 1 {
		t.Errorf("expected 1 entry, got %d", s.Count())
	}
}

func TestRemoveUnknownIsNoop(t *testing.T) {
	ctx := context.Background()
	s := NewStore(ctx, "sess", NewMemoryStorage())
	s.Add(ctx, Entry{ProductID: "p1"})

	s.Remove(ctx, "p2", "")

	if s.Count() != 1 {
		t.Errorf("expected 1 entry, got %d", s.Count())
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()

	first := NewStore(ctx, "sess", storage)
	first.Add(ctx, Entry{ProductID: "p1", VariantID: "v1", Name: "Tee"})

	second := NewStore(ctx, "sess", storage)
	if !second.Has("p1", "v1") {
		t.Error("expected persisted entry to reload")
	}
}

// Feature: storefront-core, Property 4: Toggle is an involution
func TestProperty_ToggleTwiceRestoresState(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("toggling the same pair twice restores the original membership", prop.ForAll(
		func(productID string, variantID string) bool {
			if productID == "" {
				productID = "p"
			}
			ctx := context.Background()
			s := NewStore(ctx, "sess", NewMemoryStorage())

			e := Entry{ProductID: productID, VariantID: variantID}
			before := s.Has(productID, variantID)
			s.Toggle(ctx, e)
			s.Toggle(ctx, e)
			return s.Has(productID, variantID) == before
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

func TestManagerEvictsIdleSessions(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	m := NewManager(storage)
	current := time.Now()
	m.now = func() time.Time { return current }

	s := m.Get(ctx, "stale")
	s.Add(ctx, Entry{ProductID: "p1", VariantID: "v1", Name: "Tee", Price: 500})
	m.Get(ctx, "fresh")

	current = current.Add(2 * time.Hour)
	m.Get(ctx, "fresh")
	current = current.Add(30 * time.Minute)

	if evicted := m.EvictIdle(time.Hour); evicted != 1 {
		t.Fatalf("expected 1 eviction, got %d", evicted)
	}

	// The evicted session reloads its persisted entries on return.
	reloaded := m.Get(ctx, "stale")
	if reloaded == s {
		t.Fatal("expected a fresh store instance after eviction")
	}
	if !reloaded.Has("p1", "v1") {
		t.Error("expected persisted entries reloaded after eviction")
	}
}
