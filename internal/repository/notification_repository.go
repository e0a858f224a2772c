package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"storefront-api/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrNotificationNotFound = errors.New("notification not found")
)

// NotificationRepository defines the interface for site-notice data access
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	Update(ctx context.Context, n *domain.Notification) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*domain.Notification, error)
	ListVisible(ctx context.Context, at time.Time) ([]*domain.Notification, error)
}

type notificationRepository struct {
	db *sql.DB
}

// NewNotificationRepository creates a new instance of NotificationRepository
func NewNotificationRepository(db *sql.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

// Create inserts a new notification
func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	query := `
		INSERT INTO notifications (id, title, message, level, is_active, starts_at, ends_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query, n.ID, n.Title, n.Message, n.Level, n.IsActive, n.StartsAt, n.EndsAt, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

// Update rewrites a notification's editable fields
func (r *notificationRepository) Update(ctx context.Context, n *domain.Notification) error {
	query := `
		UPDATE notifications
		SET title = $2, message = $3, level = $4, is_active = $5, starts_at = $6, ends_at = $7
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, n.ID, n.Title, n.Message, n.Level, n.IsActive, n.StartsAt, n.EndsAt)
	if err != nil {
		return fmt.Errorf("failed to update notification: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotificationNotFound
	}

	return nil
}

// Delete removes a notification
func (r *notificationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotificationNotFound
	}

	return nil
}

// List retrieves all notifications newest first
func (r *notificationRepository) List(ctx context.Context) ([]*domain.Notification, error) {
	query := `
		SELECT id, title, message, level, is_active, starts_at, ends_at, created_at
		FROM notifications
		ORDER BY created_at DESC
	`

	return r.queryNotifications(ctx, query)
}

// ListVisible retrieves notifications active at the given time
func (r *notificationRepository) ListVisible(ctx context.Context, at time.Time) ([]*domain.Notification, error) {
	query := `
		SELECT id, title, message, level, is_active, starts_at, ends_at, created_at
		FROM notifications
		WHERE is_active = TRUE
		  AND (starts_at IS NULL OR starts_at <= $1)
		  AND (ends_at IS NULL OR ends_at >= $1)
		ORDER BY created_at DESC
	`

	return r.queryNotifications(ctx, query, at)
}

func (r *notificationRepository) queryNotifications(ctx context.Context, query string, args ...interface{}) ([]*domain.Notification, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	notifications := []*domain.Notification{}
	for rows.Next() {
		n := &domain.Notification{}
		err := rows.Scan(&n.ID, &n.Title, &n.Message, &n.Level, &n.IsActive, &n.StartsAt, &n.EndsAt, &n.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notifications: %w", err)
	}

	return notifications, nil
}
