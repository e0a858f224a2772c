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
	ErrBlockedPincodeNotFound = errors.New("non-serviceable pincode not found")
)

// NonServiceableRepository defines data access for the pincode block-list
type NonServiceableRepository interface {
	Add(ctx context.Context, pincode, reason string) error
	Remove(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*domain.NonServiceablePincode, error)
	FindByPincode(ctx context.Context, pincode string) (*domain.NonServiceablePincode, error)
}

type nonServiceableRepository struct {
	db *sql.DB
}

// NewNonServiceableRepository creates a new instance of NonServiceableRepository
func NewNonServiceableRepository(db *sql.DB) NonServiceableRepository {
	return &nonServiceableRepository{db: db}
}

// Add block-lists a pincode. Re-adding an already blocked pincode is a no-op.
func (r *nonServiceableRepository) Add(ctx context.Context, pincode, reason string) error {
	query := `
		INSERT INTO non_serviceable_pincodes (id, pincode, reason, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (pincode) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query, uuid.New(), pincode, reason, time.Now())
	if err != nil {
		return fmt.Errorf("failed to block pincode: %w", err)
	}

	return nil
}

// Remove deletes a block-list entry by id
func (r *nonServiceableRepository) Remove(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM non_serviceable_pincodes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to unblock pincode: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrBlockedPincodeNotFound
	}

	return nil
}

// List retrieves all block-list entries
func (r *nonServiceableRepository) List(ctx context.Context) ([]*domain.NonServiceablePincode, error) {
	query := `
		SELECT id, pincode, reason, created_at
		FROM non_serviceable_pincodes
		ORDER BY pincode ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list non-serviceable pincodes: %w", err)
	}
	defer rows.Close()

	entries := []*domain.NonServiceablePincode{}
	for rows.Next() {
		e := &domain.NonServiceablePincode{}
		if err := rows.Scan(&e.ID, &e.Pincode, &e.Reason, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan non-serviceable pincode: %w", err)
		}
		entries = append(entries, e)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating non-serviceable pincodes: %w", err)
	}

	return entries, nil
}

// FindByPincode looks up a block-list entry by exact pincode match
func (r *nonServiceableRepository) FindByPincode(ctx context.Context, pincode string) (*domain.NonServiceablePincode, error) {
	query := `
		SELECT id, pincode, reason, created_at
		FROM non_serviceable_pincodes
		WHERE pincode = $1
	`

	e := &domain.NonServiceablePincode{}
	err := r.db.QueryRowContext(ctx, query, pincode).Scan(&e.ID, &e.Pincode, &e.Reason, &e.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrBlockedPincodeNotFound
		}
		return nil, fmt.Errorf("failed to find blocked pincode: %w", err)
	}

	return e, nil
}
