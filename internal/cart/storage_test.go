package cart

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestMemoryStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()

	items := []LineItem{
		{ID: "p1-v1-1", ProductID: "p1", VariantID: "v1", Name: "Tee", Price: 500, Quantity: 2, Stock: 10},
		{ID: "p2-novariant-2", ProductID: "p2", Name: "Mug", Price: 300, Quantity: 1, Stock: 4},
	}
	if err := storage.Save(ctx, "sess", items); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := storage.Load(ctx, "sess")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 items, got %d", len(loaded))
	}
	if loaded[0] != items[0] || loaded[1] != items[1] {
		t.Errorf("round trip changed items: %+v", loaded)
	}
}

func TestMemoryStorageUnknownKey(t *testing.T) {
	items, err := NewMemoryStorage().Load(context.Background(), "absent")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if items != nil {
		t.Errorf("expected nil items for unknown key, got %+v", items)
	}
}

func TestRedisStorageRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	storage := NewRedisStorage(client, "cart", 0)

	items := []LineItem{
		{ID: "p1-v1-1", ProductID: "p1", VariantID: "v1", Price: 500, Quantity: 3, Stock: 5},
	}
	if err := storage.Save(ctx, "sess", items); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := storage.Load(ctx, "sess")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(loaded) != 1 || loaded[0] != items[0] {
		t.Errorf("round trip changed items: %+v", loaded)
	}

	missing, err := storage.Load(ctx, "other")
	if err != nil {
		t.Fatalf("unexpected error for missing key: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil items for missing key, got %+v", missing)
	}
}

func TestStoreReloadsPersistedItems(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()

	first := NewStore(ctx, "sess", storage)
	first.AddItem(ctx, Item{ProductID: "p1", VariantID: "v1", Price: 500, Quantity: 2, Stock: 10})
	first.Open()

	// A new store over the same storage sees the items, but the drawer flag
	// is never persisted.
	second := NewStore(ctx, "sess", storage)
	if len(second.Items()) != 1 {
		t.Fatalf("expected persisted item to reload, got %d lines", len(second.Items()))
	}
	if second.IsOpen() {
		t.Error("drawer flag must not survive persistence")
	}
}

func TestManagerReturnsDistinctStoresAcrossSessions(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStorage())

	a := m.Get(ctx, "sess-a")
	b := m.Get(ctx, "sess-b")
	if a == b {
		t.Fatal("different sessions must get different stores")
	}
	if m.Get(ctx, "sess-a") != a {
		t.Error("same session must get the same store instance")
	}
	if m.ActiveSessions() != 2 {
		t.Errorf("expected 2 active sessions, got %d", m.ActiveSessions())
	}
}
