package transport

import (
	"errors"
	"net/http"

	"storefront-api/internal/domain"
	"storefront-api/internal/metrics"
	"storefront-api/internal/middleware"
	"storefront-api/internal/repository"
	"storefront-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TrackOrderRequest represents the public tracking payload. Both the order
// number and the email must match for the order to be disclosed.
type TrackOrderRequest struct {
	OrderNumber string `json:"order_number" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
}

// UpdateOrderStatusRequest represents the admin status change payload
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=placed confirmed shipped delivered cancelled"`
}

// OrderListResponse is a paginated order listing for the admin panel
type OrderListResponse struct {
	Orders   []*domain.Order `json:"orders"`
	Total    int             `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}

// OrderHandler handles HTTP requests for order tracking and administration
type OrderHandler struct {
	orderService service.OrderService
	metrics      *metrics.Metrics
	logger       *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService service.OrderService, m *metrics.Metrics, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		metrics:      m,
		logger:       logger,
	}
}

// RegisterRoutes registers the public tracking route and the admin routes
func (h *OrderHandler) RegisterRoutes(r chi.Router, adminMiddlewares ...func(http.Handler) http.Handler) {
	r.Post("/api/orders/track", h.TrackOrder)

	r.Route("/api/admin/orders", func(r chi.Router) {
		r.Use(adminMiddlewares...)
		r.Get("/", h.ListOrders)
		r.Patch("/{id}/status", h.UpdateStatus)
	})
}

// TrackOrder looks up an order by number and email. A number/email mismatch
// and an unknown number both come back as not found, so the endpoint leaks
// nothing about which orders exist.
func (h *OrderHandler) TrackOrder(w http.ResponseWriter, r *http.Request) {
	var req TrackOrderRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tracked, err := h.orderService.Track(r.Context(), req.OrderNumber, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) || errors.Is(err, service.ErrOrderEmailMismatch) {
			middleware.RespondWithError(w, http.StatusNotFound, "order not found")
			return
		}
		h.logger.Error("Order tracking failed", zap.String("order_number", req.OrderNumber), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to track order")
		return
	}

	h.metrics.OrdersTracked.Add(r.Context(), 1)
	middleware.RespondWithJSON(w, http.StatusOK, tracked)
}

// ListOrders returns a paginated listing, newest first
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r.URL.Query().Get("page"), r.URL.Query().Get("page_size"))

	orders, total, err := h.orderService.List(r.Context(), page, pageSize)
	if err != nil {
		h.logger.Error("Failed to list orders", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, OrderListResponse{
		Orders:   orders,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// UpdateStatus moves an order through its lifecycle; invalid transitions
// are rejected
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req UpdateOrderStatusRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.orderService.UpdateStatus(r.Context(), id, domain.OrderStatus(req.Status)); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "order not found")
			return
		}
		if errors.Is(err, service.ErrInvalidTransition) {
			middleware.RespondWithError(w, http.StatusConflict, err.Error())
			return
		}
		h.logger.Error("Failed to update order status", zap.String("order_id", id.String()), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update order status")
		return
	}

	h.logger.Info("Order status updated", zap.String("order_id", id.String()), zap.String("status", req.Status))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "status updated"})
}
