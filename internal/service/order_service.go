package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront-api/internal/domain"
	"storefront-api/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrOrderEmailMismatch = errors.New("order number and email do not match")
	ErrInvalidTransition  = errors.New("invalid order status transition")
)

// TrackedOrder is an order with its items, as returned to customers
type TrackedOrder struct {
	Order *domain.Order       `json:"order"`
	Items []*domain.OrderItem `json:"items"`
}

// OrderService carries order tracking and the admin status surface
type OrderService interface {
	Track(ctx context.Context, orderNumber, email string) (*TrackedOrder, error)
	List(ctx context.Context, page, pageSize int) ([]*domain.Order, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error
}

type orderService struct {
	orders repository.OrderRepository
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(orders repository.OrderRepository) OrderService {
	return &orderService{orders: orders}
}

// Track looks up an order by its public number. The customer's email must
// match the one on the order; a mismatch is reported the same way as an
// unknown order so the endpoint does not confirm which numbers exist.
func (s *orderService) Track(ctx context.Context, orderNumber, email string) (*TrackedOrder, error) {
	order, err := s.orders.FindByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}

	if !strings.EqualFold(order.CustomerEmail, email) {
		return nil, ErrOrderEmailMismatch
	}

	items, err := s.orders.ListItems(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}

	return &TrackedOrder{Order: order, Items: items}, nil
}

func (s *orderService) List(ctx context.Context, page, pageSize int) ([]*domain.Order, int, error) {
	return s.orders.List(ctx, page, pageSize)
}

// UpdateStatus enforces the order lifecycle before persisting the move
func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if !domain.CanTransition(order.Status, status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, status)
	}

	return s.orders.UpdateStatus(ctx, id, status)
}
