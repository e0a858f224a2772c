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

// CheckPincodeRequest carries the pincode from the query string
type CheckPincodeRequest struct {
	Pincode string `validate:"required,len=6,numeric"`
}

// CreateZoneRequest represents the zone creation payload
type CreateZoneRequest struct {
	Name                  string  `json:"name" validate:"required"`
	Description           string  `json:"description"`
	Rate                  string  `json:"rate" validate:"required,numeric"`
	FreeShippingThreshold *string `json:"free_shipping_threshold" validate:"omitempty,numeric"`
	EstimatedDays         string  `json:"estimated_days" validate:"required"`
	IsActive              *bool   `json:"is_active"`
	SortOrder             int     `json:"sort_order"`
}

// UpdateZoneRequest represents a partial zone update; omitted fields are
// left untouched.
type UpdateZoneRequest struct {
	Name                  *string `json:"name"`
	Description           *string `json:"description"`
	Rate                  *string `json:"rate" validate:"omitempty,numeric"`
	FreeShippingThreshold *string `json:"free_shipping_threshold" validate:"omitempty,numeric"`
	EstimatedDays         *string `json:"estimated_days"`
	IsActive              *bool   `json:"is_active"`
	SortOrder             *int    `json:"sort_order"`
}

// PincodeEntry is one pincode in an add request
type PincodeEntry struct {
	Pincode string `json:"pincode" validate:"required,len=6,numeric"`
	City    string `json:"city"`
	State   string `json:"state"`
}

// AddPincodesRequest represents the zone pincode add payload
type AddPincodesRequest struct {
	Pincodes []PincodeEntry `json:"pincodes" validate:"required,min=1,dive"`
}

// ImportPincodesRequest represents a bulk pincode import. Rows are not
// validated here; malformed rows are dropped during the import.
type ImportPincodesRequest struct {
	Pincodes []PincodeEntry `json:"pincodes" validate:"required,min=1"`
}

// ImportResponse reports how many rows were actually inserted
type ImportResponse struct {
	Inserted int `json:"inserted"`
}

// BlockPincodeRequest represents the block-list add payload
type BlockPincodeRequest struct {
	Pincode string `json:"pincode" validate:"required,len=6,numeric"`
	Reason  string `json:"reason"`
}

// ShippingHandler handles HTTP requests for serviceability checks and the
// admin shipping surface
type ShippingHandler struct {
	shippingService service.ShippingService
	metrics         *metrics.Metrics
	logger          *zap.Logger
}

// NewShippingHandler creates a new ShippingHandler
func NewShippingHandler(shippingService service.ShippingService, m *metrics.Metrics, logger *zap.Logger) *ShippingHandler {
	return &ShippingHandler{
		shippingService: shippingService,
		metrics:         m,
		logger:          logger,
	}
}

// RegisterRoutes registers the public check endpoint and the admin routes
func (h *ShippingHandler) RegisterRoutes(r chi.Router, adminMiddlewares ...func(http.Handler) http.Handler) {
	r.Get("/api/shipping/check", h.CheckPincode)

	r.Route("/api/admin/shipping", func(r chi.Router) {
		r.Use(adminMiddlewares...)

		r.Get("/zones", h.ListZones)
		r.Post("/zones", h.CreateZone)
		r.Patch("/zones/{id}", h.UpdateZone)
		r.Delete("/zones/{id}", h.DeleteZone)

		r.Get("/zones/{id}/pincodes", h.ListZonePincodes)
		r.Post("/zones/{id}/pincodes", h.AddPincodes)
		r.Post("/zones/{id}/pincodes/import", h.ImportPincodes)
		r.Delete("/pincodes/{id}", h.RemovePincode)

		r.Get("/non-serviceable", h.ListBlockedPincodes)
		r.Post("/non-serviceable", h.BlockPincode)
		r.Delete("/non-serviceable/{id}", h.UnblockPincode)
	})
}

// CheckPincode answers whether delivery is available for a pincode.
// Malformed pincodes are rejected here; the resolver below only ever sees
// six-digit input.
func (h *ShippingHandler) CheckPincode(w http.ResponseWriter, r *http.Request) {
	req := CheckPincodeRequest{Pincode: r.URL.Query().Get("pincode")}
	if err := middleware.ValidateRequest(&req); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "pincode must be exactly 6 digits")
		return
	}

	result, err := h.shippingService.CheckPincode(r.Context(), req.Pincode)
	if err != nil {
		h.logger.Error("Pincode check failed", zap.String("pincode", req.Pincode), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to check pincode")
		return
	}

	h.metrics.RecordPincodeCheck(r.Context(), checkOutcome(result))
	middleware.RespondWithJSON(w, http.StatusOK, result)
}

func checkOutcome(result *domain.PincodeResult) string {
	switch {
	case result.Available:
		return "available"
	case result.Reason != "":
		return "blocked"
	default:
		return "unavailable"
	}
}

// ListZones returns all zones including inactive ones
func (h *ShippingHandler) ListZones(w http.ResponseWriter, r *http.Request) {
	zones, err := h.shippingService.ListZones(r.Context())
	if err != nil {
		h.logger.Error("Failed to list zones", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list zones")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, zones)
}

// CreateZone handles zone creation
func (h *ShippingHandler) CreateZone(w http.ResponseWriter, r *http.Request) {
	var req CreateZoneRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	zone := &domain.ShippingZone{
		Name:                  req.Name,
		Description:           req.Description,
		Rate:                  req.Rate,
		FreeShippingThreshold: req.FreeShippingThreshold,
		EstimatedDays:         req.EstimatedDays,
		IsActive:              isActive,
		SortOrder:             req.SortOrder,
	}

	if err := h.shippingService.CreateZone(r.Context(), zone); err != nil {
		h.logger.Error("Failed to create zone", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create zone")
		return
	}

	h.logger.Info("Shipping zone created", zap.String("zone_id", zone.ID.String()), zap.String("name", zone.Name))
	middleware.RespondWithJSON(w, http.StatusCreated, zone)
}

// UpdateZone applies a partial update to a zone
func (h *ShippingHandler) UpdateZone(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid zone id")
		return
	}

	var req UpdateZoneRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	update := repository.ZoneUpdate{
		Name:                  req.Name,
		Description:           req.Description,
		Rate:                  req.Rate,
		FreeShippingThreshold: req.FreeShippingThreshold,
		EstimatedDays:         req.EstimatedDays,
		IsActive:              req.IsActive,
		SortOrder:             req.SortOrder,
	}

	if err := h.shippingService.UpdateZone(r.Context(), id, update); err != nil {
		if errors.Is(err, repository.ErrZoneNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "zone not found")
			return
		}
		h.logger.Error("Failed to update zone", zap.String("zone_id", id.String()), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update zone")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "zone updated"})
}

// DeleteZone removes a zone and its pincode mappings
func (h *ShippingHandler) DeleteZone(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid zone id")
		return
	}

	if err := h.shippingService.DeleteZone(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrZoneNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "zone not found")
			return
		}
		h.logger.Error("Failed to delete zone", zap.String("zone_id", id.String()), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete zone")
		return
	}

	h.logger.Info("Shipping zone deleted", zap.String("zone_id", id.String()))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "zone deleted"})
}

// ListZonePincodes returns all pincodes mapped to a zone
func (h *ShippingHandler) ListZonePincodes(w http.ResponseWriter, r *http.Request) {
	zoneID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid zone id")
		return
	}

	pincodes, err := h.shippingService.ListZonePincodes(r.Context(), zoneID)
	if err != nil {
		if errors.Is(err, repository.ErrZoneNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "zone not found")
			return
		}
		h.logger.Error("Failed to list zone pincodes", zap.String("zone_id", zoneID.String()), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list pincodes")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, pincodes)
}

// AddPincodes adds validated pincodes to a zone. Duplicates are skipped, so
// the inserted count can be lower than the request size.
func (h *ShippingHandler) AddPincodes(w http.ResponseWriter, r *http.Request) {
	zoneID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid zone id")
		return
	}

	var req AddPincodesRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	inserted, err := h.shippingService.AddPincodes(r.Context(), zoneID, toPincodeRows(req.Pincodes))
	if err != nil {
		if errors.Is(err, repository.ErrZoneNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "zone not found")
			return
		}
		h.logger.Error("Failed to add pincodes", zap.String("zone_id", zoneID.String()), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to add pincodes")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, ImportResponse{Inserted: inserted})
}

// ImportPincodes bulk-loads pincodes into a zone, silently dropping rows
// that are not exactly six digits
func (h *ShippingHandler) ImportPincodes(w http.ResponseWriter, r *http.Request) {
	zoneID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid zone id")
		return
	}

	var req ImportPincodesRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	inserted, err := h.shippingService.ImportPincodes(r.Context(), zoneID, toPincodeRows(req.Pincodes))
	if err != nil {
		if errors.Is(err, repository.ErrZoneNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "zone not found")
			return
		}
		h.logger.Error("Failed to import pincodes", zap.String("zone_id", zoneID.String()), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to import pincodes")
		return
	}

	h.logger.Info("Pincodes imported",
		zap.String("zone_id", zoneID.String()),
		zap.Int("received", len(req.Pincodes)),
		zap.Int("inserted", inserted),
	)
	middleware.RespondWithJSON(w, http.StatusOK, ImportResponse{Inserted: inserted})
}

// RemovePincode deletes one zone pincode mapping
func (h *ShippingHandler) RemovePincode(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid pincode id")
		return
	}

	if err := h.shippingService.RemovePincode(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrPincodeNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "pincode not found")
			return
		}
		h.logger.Error("Failed to remove pincode", zap.String("pincode_id", id.String()), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to remove pincode")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "pincode removed"})
}

// ListBlockedPincodes returns the block-list
func (h *ShippingHandler) ListBlockedPincodes(w http.ResponseWriter, r *http.Request) {
	blocked, err := h.shippingService.ListBlockedPincodes(r.Context())
	if err != nil {
		h.logger.Error("Failed to list blocked pincodes", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list blocked pincodes")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, blocked)
}

// BlockPincode adds a pincode to the block-list; re-blocking is a no-op
func (h *ShippingHandler) BlockPincode(w http.ResponseWriter, r *http.Request) {
	var req BlockPincodeRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.shippingService.BlockPincode(r.Context(), req.Pincode, req.Reason); err != nil {
		h.logger.Error("Failed to block pincode", zap.String("pincode", req.Pincode), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to block pincode")
		return
	}

	h.logger.Info("Pincode blocked", zap.String("pincode", req.Pincode))
	middleware.RespondWithJSON(w, http.StatusCreated, map[string]string{"message": "pincode blocked"})
}

// UnblockPincode removes a block-list entry
func (h *ShippingHandler) UnblockPincode(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.shippingService.UnblockPincode(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrBlockedPincodeNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "blocked pincode not found")
			return
		}
		h.logger.Error("Failed to unblock pincode", zap.String("id", id.String()), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to unblock pincode")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "pincode unblocked"})
}

func toPincodeRows(entries []PincodeEntry) []repository.PincodeRow {
	rows := make([]repository.PincodeRow, len(entries))
	for i, e := range entries {
		rows[i] = repository.PincodeRow{
			Pincode: e.Pincode,
			City:    e.City,
			State:   e.State,
		}
	}
	return rows
}
