package transport

import (
	"errors"
	"net/http"
	"time"

	"storefront-api/internal/domain"
	"storefront-api/internal/middleware"
	"storefront-api/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NotificationRequest represents a site-notice create or update payload
type NotificationRequest struct {
	Title    string     `json:"title" validate:"required"`
	Message  string     `json:"message" validate:"required"`
	Level    string     `json:"level" validate:"required,oneof=info promo warning"`
	IsActive *bool      `json:"is_active"`
	StartsAt *time.Time `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`
}

// NotificationHandler handles HTTP requests for site notices
type NotificationHandler struct {
	notifications repository.NotificationRepository
	logger        *zap.Logger
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifications repository.NotificationRepository, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		notifications: notifications,
		logger:        logger,
	}
}

// RegisterRoutes registers the public visible-notices route and admin CRUD
func (h *NotificationHandler) RegisterRoutes(r chi.Router, adminMiddlewares ...func(http.Handler) http.Handler) {
	r.Get("/api/notifications", h.ListVisible)

	r.Route("/api/admin/notifications", func(r chi.Router) {
		r.Use(adminMiddlewares...)
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

// ListVisible returns the notices customers should see right now
func (h *NotificationHandler) ListVisible(w http.ResponseWriter, r *http.Request) {
	notices, err := h.notifications.ListVisible(r.Context(), time.Now())
	if err != nil {
		h.logger.Error("Failed to list visible notifications", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list notifications")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, notices)
}

// List returns all notices regardless of visibility
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	notices, err := h.notifications.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list notifications", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list notifications")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, notices)
}

// Create handles notice creation
func (h *NotificationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req NotificationRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	notice := &domain.Notification{
		ID:       uuid.New(),
		Title:    req.Title,
		Message:  req.Message,
		Level:    domain.NotificationLevel(req.Level),
		IsActive: boolOrDefault(req.IsActive, true),
		StartsAt: req.StartsAt,
		EndsAt:   req.EndsAt,
	}

	if err := h.notifications.Create(r.Context(), notice); err != nil {
		h.logger.Error("Failed to create notification", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create notification")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, notice)
}

// Update handles notice updates
func (h *NotificationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid notification id")
		return
	}

	var req NotificationRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	notice := &domain.Notification{
		ID:       id,
		Title:    req.Title,
		Message:  req.Message,
		Level:    domain.NotificationLevel(req.Level),
		IsActive: boolOrDefault(req.IsActive, true),
		StartsAt: req.StartsAt,
		EndsAt:   req.EndsAt,
	}

	if err := h.notifications.Update(r.Context(), notice); err != nil {
		if errors.Is(err, repository.ErrNotificationNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "notification not found")
			return
		}
		h.logger.Error("Failed to update notification", zap.String("notification_id", id.String()), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update notification")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, notice)
}

// Delete removes a notice
func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid notification id")
		return
	}

	if err := h.notifications.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotificationNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "notification not found")
			return
		}
		h.logger.Error("Failed to delete notification", zap.String("notification_id", id.String()), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete notification")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "notification deleted"})
}
