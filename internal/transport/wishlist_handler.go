package transport

import (
	"net/http"

	"storefront-api/internal/middleware"
	"storefront-api/internal/wishlist"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// WishlistEntryRequest represents a wishlist add or toggle payload
type WishlistEntryRequest struct {
	ProductID     string   `json:"product_id" validate:"required"`
	VariantID     string   `json:"variant_id"`
	Name          string   `json:"name" validate:"required"`
	Slug          string   `json:"slug"`
	Price         float64  `json:"price" validate:"gte=0"`
	OriginalPrice *float64 `json:"original_price"`
	Image         string   `json:"image"`
}

// WishlistResponse is the full wishlist state
type WishlistResponse struct {
	Entries []wishlist.Entry `json:"entries"`
	Count   int              `json:"count"`
}

// ToggleResponse reports the entry's state after a toggle
type ToggleResponse struct {
	InWishlist bool `json:"in_wishlist"`
	Count      int  `json:"count"`
}

// WishlistHandler handles HTTP requests for the session wishlist
type WishlistHandler struct {
	wishlists *wishlist.Manager
	logger    *zap.Logger
}

// NewWishlistHandler creates a new WishlistHandler
func NewWishlistHandler(wishlists *wishlist.Manager, logger *zap.Logger) *WishlistHandler {
	return &WishlistHandler{
		wishlists: wishlists,
		logger:    logger,
	}
}

// RegisterRoutes registers all wishlist routes
func (h *WishlistHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/wishlist", func(r chi.Router) {
		r.Get("/", h.GetWishlist)
		r.Delete("/", h.ClearWishlist)
		r.Post("/toggle", h.ToggleEntry)
		r.Post("/items", h.AddEntry)
		r.Delete("/items", h.RemoveEntry)
	})
}

func (h *WishlistHandler) store(r *http.Request) (*wishlist.Store, bool) {
	sessionID, ok := middleware.GetSessionID(r.Context())
	if !ok {
		return nil, false
	}
	return h.wishlists.Get(r.Context(), sessionID), true
}

func (h *WishlistHandler) decodeEntry(w http.ResponseWriter, r *http.Request) (wishlist.Entry, bool) {
	var req WishlistEntryRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return wishlist.Entry{}, false
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return wishlist.Entry{}, false
	}

	return wishlist.Entry{
		ProductID:     req.ProductID,
		VariantID:     req.VariantID,
		Name:          req.Name,
		Slug:          req.Slug,
		Price:         req.Price,
		OriginalPrice: req.OriginalPrice,
		Image:         req.Image,
	}, true
}

// GetWishlist returns the session's saved entries
func (h *WishlistHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusBadRequest, "missing session")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, WishlistResponse{
		Entries: s.Entries(),
		Count:   s.Count(),
	})
}

// ToggleEntry flips an entry's membership and reports the resulting state
func (h *WishlistHandler) ToggleEntry(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusBadRequest, "missing session")
		return
	}

	entry, ok := h.decodeEntry(w, r)
	if !ok {
		return
	}

	in := s.Toggle(r.Context(), entry)
	middleware.RespondWithJSON(w, http.StatusOK, ToggleResponse{
		InWishlist: in,
		Count:      s.Count(),
	})
}

// AddEntry saves an entry; re-adding the same pair is a no-op
func (h *WishlistHandler) AddEntry(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusBadRequest, "missing session")
		return
	}

	entry, ok := h.decodeEntry(w, r)
	if !ok {
		return
	}

	s.Add(r.Context(), entry)
	middleware.RespondWithJSON(w, http.StatusOK, WishlistResponse{
		Entries: s.Entries(),
		Count:   s.Count(),
	})
}

// RemoveEntry deletes the pair given in the query string; unknown pairs no-op
func (h *WishlistHandler) RemoveEntry(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusBadRequest, "missing session")
		return
	}

	productID := r.URL.Query().Get("product_id")
	if productID == "" {
		middleware.RespondWithError(w, http.StatusBadRequest, "product_id is required")
		return
	}

	s.Remove(r.Context(), productID, r.URL.Query().Get("variant_id"))
	middleware.RespondWithJSON(w, http.StatusOK, WishlistResponse{
		Entries: s.Entries(),
		Count:   s.Count(),
	})
}

// ClearWishlist empties the wishlist
func (h *WishlistHandler) ClearWishlist(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusBadRequest, "missing session")
		return
	}

	s.Clear(r.Context())
	middleware.RespondWithJSON(w, http.StatusOK, WishlistResponse{
		Entries: s.Entries(),
		Count:   s.Count(),
	})
}
