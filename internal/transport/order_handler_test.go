package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront-api/internal/domain"
	"storefront-api/internal/repository"
	"storefront-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type mockOrderRepo struct {
	orders map[uuid.UUID]*domain.Order
	items  map[uuid.UUID][]*domain.OrderItem
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{
		orders: make(map[uuid.UUID]*domain.Order),
		items:  make(map[uuid.UUID][]*domain.OrderItem),
	}
}

func (m *mockOrderRepo) Create(ctx context.Context, order *domain.Order, items []*domain.OrderItem) error {
	m.orders[order.ID] = order
	m.items[order.ID] = items
	return nil
}

func (m *mockOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	return order, nil
}

func (m *mockOrderRepo) FindByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	for _, order := range m.orders {
		if order.OrderNumber == orderNumber {
			return order, nil
		}
	}
	return nil, repository.ErrOrderNotFound
}

func (m *mockOrderRepo) ListItems(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderItem, error) {
	return m.items[orderID], nil
}

func (m *mockOrderRepo) List(ctx context.Context, page, pageSize int) ([]*domain.Order, int, error) {
	out := make([]*domain.Order, 0, len(m.orders))
	for _, order := range m.orders {
		out = append(out, order)
	}
	return out, len(out), nil
}

func (m *mockOrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error {
	order, ok := m.orders[id]
	if !ok {
		return repository.ErrOrderNotFound
	}
	order.Status = status
	return nil
}

func newOrderRouter(t *testing.T, repo *mockOrderRepo) chi.Router {
	t.Helper()
	handler := NewOrderHandler(service.NewOrderService(repo), newTestMetrics(t), zap.NewNop())
	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r
}

func seedOrder(repo *mockOrderRepo, number, email string, status domain.OrderStatus) *domain.Order {
	order := &domain.Order{
		ID:            uuid.New(),
		OrderNumber:   number,
		CustomerEmail: email,
		Status:        status,
		Subtotal:      "1300.00",
		ShippingFee:   "49.50",
		Total:         "1349.50",
		Pincode:       "400001",
	}
	repo.Create(context.Background(), order, []*domain.OrderItem{
		{ID: uuid.New(), OrderID: order.ID, ProductID: uuid.New(), Name: "Organic Honey", UnitPrice: "350.00", Quantity: 2},
	})
	return order
}

func postJSON(t *testing.T, router chi.Router, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestTrackOrder(t *testing.T) {
	repo := newMockOrderRepo()
	seedOrder(repo, "ORD-1001", "jane@example.com", domain.OrderStatusShipped)
	router := newOrderRouter(t, repo)

	rec := postJSON(t, router, "/api/orders/track", TrackOrderRequest{
		OrderNumber: "ORD-1001",
		Email:       "JANE@example.com", // match is case-insensitive
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var tracked service.TrackedOrder
	if err := json.Unmarshal(rec.Body.Bytes(), &tracked); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if tracked.Order.Status != domain.OrderStatusShipped {
		t.Fatalf("expected shipped status, got %s", tracked.Order.Status)
	}
	if len(tracked.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(tracked.Items))
	}
}

func TestTrackOrderEmailMismatchIsNotFound(t *testing.T) {
	repo := newMockOrderRepo()
	seedOrder(repo, "ORD-1001", "jane@example.com", domain.OrderStatusPlaced)
	router := newOrderRouter(t, repo)

	rec := postJSON(t, router, "/api/orders/track", TrackOrderRequest{
		OrderNumber: "ORD-1001",
		Email:       "someone-else@example.com",
	})

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on email mismatch, got %d", rec.Code)
	}
}

func TestUpdateOrderStatusTransitions(t *testing.T) {
	repo := newMockOrderRepo()
	order := seedOrder(repo, "ORD-2001", "jane@example.com", domain.OrderStatusShipped)
	router := newOrderRouter(t, repo)

	patch := func(status string) *httptest.ResponseRecorder {
		raw, _ := json.Marshal(UpdateOrderStatusRequest{Status: status})
		req := httptest.NewRequest(http.MethodPatch, "/api/admin/orders/"+order.ID.String()+"/status", bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	// shipped -> cancelled is not allowed
	if rec := patch("cancelled"); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for shipped->cancelled, got %d", rec.Code)
	}

	// shipped -> delivered is allowed
	if rec := patch("delivered"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for shipped->delivered, got %d", rec.Code)
	}
	if repo.orders[order.ID].Status != domain.OrderStatusDelivered {
		t.Fatalf("expected delivered, got %s", repo.orders[order.ID].Status)
	}
}

func TestUpdateOrderStatusUnknownOrder(t *testing.T) {
	router := newOrderRouter(t, newMockOrderRepo())

	raw, _ := json.Marshal(UpdateOrderStatusRequest{Status: "confirmed"})
	req := httptest.NewRequest(http.MethodPatch, "/api/admin/orders/"+uuid.NewString()+"/status", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
