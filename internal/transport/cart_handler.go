package transport

import (
	"net/http"

	"storefront-api/internal/cart"
	"storefront-api/internal/metrics"
	"storefront-api/internal/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AddItemRequest represents the cart add payload. Stock is the caller's
// snapshot of availability and acts as the quantity ceiling.
type AddItemRequest struct {
	ProductID     string   `json:"product_id" validate:"required"`
	VariantID     string   `json:"variant_id"`
	Name          string   `json:"name" validate:"required"`
	Slug          string   `json:"slug"`
	Price         float64  `json:"price" validate:"gte=0"`
	OriginalPrice *float64 `json:"original_price"`
	Quantity      int      `json:"quantity" validate:"required,min=1"`
	Size          string   `json:"size"`
	Color         string   `json:"color"`
	ColorHex      string   `json:"color_hex"`
	Image         string   `json:"image"`
	Stock         int      `json:"stock" validate:"min=0"`
}

// UpdateQuantityRequest represents the quantity update payload. Zero and
// negative values remove the line.
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

// CartResponse is the full cart state returned after every read or mutation
type CartResponse struct {
	Items     []cart.LineItem `json:"items"`
	ItemCount int             `json:"item_count"`
	Subtotal  float64         `json:"subtotal"`
	IsOpen    bool            `json:"is_open"`
}

// CartHandler handles HTTP requests for the session cart
type CartHandler struct {
	carts   *cart.Manager
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(carts *cart.Manager, m *metrics.Metrics, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		carts:   carts,
		metrics: m,
		logger:  logger,
	}
}

// RegisterRoutes registers all cart routes. Every route is session-scoped
// through the session middleware; there is no cross-session access.
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/cart", func(r chi.Router) {
		r.Get("/", h.GetCart)
		r.Delete("/", h.ClearCart)
		r.Post("/items", h.AddItem)
		r.Patch("/items/{id}", h.UpdateQuantity)
		r.Delete("/items/{id}", h.RemoveItem)
		r.Post("/open", h.OpenDrawer)
		r.Post("/close", h.CloseDrawer)
		r.Post("/toggle", h.ToggleDrawer)
	})
}

func (h *CartHandler) store(r *http.Request) (*cart.Store, bool) {
	sessionID, ok := middleware.GetSessionID(r.Context())
	if !ok {
		return nil, false
	}
	return h.carts.Get(r.Context(), sessionID), true
}

func cartState(s *cart.Store) CartResponse {
	return CartResponse{
		Items:     s.Items(),
		ItemCount: s.ItemCount(),
		Subtotal:  s.Subtotal(),
		IsOpen:    s.IsOpen(),
	}
}

// GetCart returns the session's cart state
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusBadRequest, "missing session")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, cartState(s))
}

// AddItem merges an item into the cart and opens the drawer. Over-stock
// quantities are clamped, never rejected.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusBadRequest, "missing session")
		return
	}

	var req AddItemRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.AddItem(r.Context(), cart.Item{
		ProductID:     req.ProductID,
		VariantID:     req.VariantID,
		Name:          req.Name,
		Slug:          req.Slug,
		Price:         req.Price,
		OriginalPrice: req.OriginalPrice,
		Quantity:      req.Quantity,
		Size:          req.Size,
		Color:         req.Color,
		ColorHex:      req.ColorHex,
		Image:         req.Image,
		Stock:         req.Stock,
	})

	h.metrics.RecordCartMutation(r.Context(), "add")
	h.metrics.ActiveCarts.Record(r.Context(), int64(h.carts.ActiveSessions()))
	middleware.RespondWithJSON(w, http.StatusOK, cartState(s))
}

// UpdateQuantity sets a line's quantity; zero or less removes the line
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusBadRequest, "missing session")
		return
	}

	var req UpdateQuantityRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.UpdateQuantity(r.Context(), chi.URLParam(r, "id"), *req.Quantity)

	h.metrics.RecordCartMutation(r.Context(), "update")
	middleware.RespondWithJSON(w, http.StatusOK, cartState(s))
}

// RemoveItem deletes a line; unknown ids are a silent no-op
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusBadRequest, "missing session")
		return
	}

	s.RemoveItem(r.Context(), chi.URLParam(r, "id"))

	h.metrics.RecordCartMutation(r.Context(), "remove")
	middleware.RespondWithJSON(w, http.StatusOK, cartState(s))
}

// ClearCart empties the cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusBadRequest, "missing session")
		return
	}

	s.Clear(r.Context())

	h.metrics.RecordCartMutation(r.Context(), "clear")
	middleware.RespondWithJSON(w, http.StatusOK, cartState(s))
}

// OpenDrawer shows the cart drawer
func (h *CartHandler) OpenDrawer(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusBadRequest, "missing session")
		return
	}

	s.Open()
	middleware.RespondWithJSON(w, http.StatusOK, cartState(s))
}

// CloseDrawer hides the cart drawer
func (h *CartHandler) CloseDrawer(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusBadRequest, "missing session")
		return
	}

	s.Close()
	middleware.RespondWithJSON(w, http.StatusOK, cartState(s))
}

// ToggleDrawer flips the drawer flag
func (h *CartHandler) ToggleDrawer(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusBadRequest, "missing session")
		return
	}

	s.Toggle()
	middleware.RespondWithJSON(w, http.StatusOK, cartState(s))
}
