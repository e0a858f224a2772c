package cart

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// LineItem is one entry in a cart: a single product+variant selection and its
// quantity. VariantID is empty for products without variants. Price is the
// unit price captured when the item was added; later catalog price changes do
// not rewrite it.
type LineItem struct {
	ID            string   `json:"id"`
	ProductID     string   `json:"product_id"`
	VariantID     string   `json:"variant_id,omitempty"`
	Name          string   `json:"name"`
	Slug          string   `json:"slug"`
	Price         float64  `json:"price"`
	OriginalPrice *float64 `json:"original_price,omitempty"`
	Quantity      int      `json:"quantity"`
	Size          string   `json:"size,omitempty"`
	Color         string   `json:"color,omitempty"`
	ColorHex      string   `json:"color_hex,omitempty"`
	Image         string   `json:"image,omitempty"`
	Stock         int      `json:"stock"`
}

// Item is a candidate for AddItem. It carries no ID; the store synthesizes
// one when the candidate turns into a new line.
type Item struct {
	ProductID     string
	VariantID     string
	Name          string
	Slug          string
	Price         float64
	OriginalPrice *float64
	Quantity      int
	Size          string
	Color         string
	ColorHex      string
	Image         string
	Stock         int
}

// Subscriber receives a snapshot of the line items after every mutation.
type Subscriber func(items []LineItem)

// Store holds the cart state for one session: the line-item list and the
// drawer visibility flag. Mutations are serialized with a mutex so concurrent
// requests for the same session stay safe, and each mutation persists the
// item list (never the drawer flag) through the injected Storage before
// notifying subscribers.
//
// No operation returns a domain error: over-quantity adds clamp to stock,
// and removals of unknown ids are silent no-ops.
type Store struct {
	mu          sync.Mutex
	key         string
	items       []LineItem
	open        bool
	storage     Storage
	subscribers []Subscriber
	now         func() time.Time
}

// NewStore creates a store for the given session key backed by storage.
// Previously persisted items for the key are loaded eagerly; a load failure
// starts the session with an empty cart.
func NewStore(ctx context.Context, key string, storage Storage) *Store {
	s := &Store{
		key:     key,
		storage: storage,
		now:     time.Now,
	}
	if items, err := storage.Load(ctx, key); err == nil && items != nil {
		s.items = items
	}
	return s
}

// Subscribe registers fn to be called with an item snapshot after every
// mutation. Subscribers run synchronously on the mutating goroutine.
func (s *Store) Subscribe(fn Subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// AddItem merges the candidate into the cart. If a line with the same
// (product, variant) pair exists, only its quantity changes: the sum of the
// existing and incoming quantities, clamped to the incoming candidate's stock
// ceiling. All other fields of the existing line are retained, so the price
// honored is the one from the original add. A new pair appends a fresh line.
// The drawer is opened unconditionally.
//
// A quantity that clamps to zero or less never produces a line: the append
// path drops the candidate, and the merge path removes the existing line, so
// an out-of-stock candidate empties the pair instead of parking it at zero.
func (s *Store) AddItem(ctx context.Context, c Item) {
	s.mu.Lock()
	if idx := s.findPair(c.ProductID, c.VariantID); idx >= 0 {
		q := s.items[idx].Quantity + c.Quantity
		if q > c.Stock {
			q = c.Stock
		}
		if q <= 0 {
			s.items = append(s.items[:idx], s.items[idx+1:]...)
		} else {
			s.items[idx].Quantity = q
		}
	} else {
		if c.Quantity > c.Stock {
			c.Quantity = c.Stock
		}
		if c.Quantity <= 0 {
			s.open = true
			s.mu.Unlock()
			return
		}
		s.items = append(s.items, LineItem{
			ID:            s.lineID(c.ProductID, c.VariantID),
			ProductID:     c.ProductID,
			VariantID:     c.VariantID,
			Name:          c.Name,
			Slug:          c.Slug,
			Price:         c.Price,
			OriginalPrice: c.OriginalPrice,
			Quantity:      c.Quantity,
			Size:          c.Size,
			Color:         c.Color,
			ColorHex:      c.ColorHex,
			Image:         c.Image,
			Stock:         c.Stock,
		})
	}
	s.open = true
	s.commitLocked(ctx)
}

// RemoveItem deletes the line with the given id. Unknown ids are a no-op;
// the cart never rejects a removal from stale UI state.
func (s *Store) RemoveItem(ctx context.Context, id string) {
	s.mu.Lock()
	for i, it := range s.items {
		if it.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.commitLocked(ctx)
			return
		}
	}
	s.mu.Unlock()
}

// UpdateQuantity sets the line's quantity, clamped to its stored stock
// ceiling. A quantity of zero or less removes the line. Unknown ids no-op.
func (s *Store) UpdateQuantity(ctx context.Context, id string, quantity int) {
	if quantity <= 0 {
		s.RemoveItem(ctx, id)
		return
	}
	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ID == id {
			if quantity > s.items[i].Stock {
				quantity = s.items[i].Stock
			}
			s.items[i].Quantity = quantity
			s.commitLocked(ctx)
			return
		}
	}
	s.mu.Unlock()
}

// Clear empties the cart
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.items = nil
	s.commitLocked(ctx)
}

// Open shows the cart drawer
func (s *Store) Open() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = true
}

// Close hides the cart drawer
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = false
}

// Toggle flips the drawer flag
func (s *Store) Toggle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = !s.open
}

// IsOpen reports the drawer flag
func (s *Store) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// ItemCount returns the sum of quantities across all lines, not the line count.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, it := range s.items {
		total += it.Quantity
	}
	return total
}

// Subtotal returns the sum of unit price times quantity across all lines,
// using each line's stored price.
func (s *Store) Subtotal() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total float64
	for _, it := range s.items {
		total += it.Price * float64(it.Quantity)
	}
	return total
}

// GetItem returns the line matching the exact (product, variant) pair.
func (s *Store) GetItem(productID, variantID string) (LineItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx := s.findPair(productID, variantID); idx >= 0 {
		return s.items[idx], true
	}
	return LineItem{}, false
}

// Items returns a snapshot copy of the line items.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) findPair(productID, variantID string) int {
	for i, it := range s.items {
		if it.ProductID == productID && it.VariantID == variantID {
			return i
		}
	}
	return -1
}

func (s *Store) lineID(productID, variantID string) string {
	if variantID == "" {
		variantID = "novariant"
	}
	return fmt.Sprintf("%s-%s-%d", productID, variantID, s.now().UnixMilli())
}

func (s *Store) snapshotLocked() []LineItem {
	out := make([]LineItem, len(s.items))
	copy(out, s.items)
	return out
}

// commitLocked persists the item list and notifies subscribers. It must be
// called with the mutex held. The save runs under the mutex so snapshots
// reach storage in mutation order and the last write always reflects the
// latest state; the mutex is released before running subscribers, so a
// subscriber may call back into the store.
func (s *Store) commitLocked(ctx context.Context) {
	snapshot := s.snapshotLocked()
	subs := make([]Subscriber, len(s.subscribers))
	copy(subs, s.subscribers)

	// Persistence is best-effort: a failed save never fails the mutation.
	_ = s.storage.Save(ctx, s.key, snapshot)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}
