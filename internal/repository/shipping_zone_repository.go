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
	ErrZoneNotFound    = errors.New("shipping zone not found")
	ErrPincodeNotFound = errors.New("zone pincode not found")
)

// ZoneUpdate carries a partial field set for updating a zone; nil fields are
// left untouched.
type ZoneUpdate struct {
	Name                  *string
	Description           *string
	Rate                  *string
	FreeShippingThreshold *string
	EstimatedDays         *string
	IsActive              *bool
	SortOrder             *int
}

// PincodeRow is one row of a pincode import
type PincodeRow struct {
	Pincode string
	City    string
	State   string
}

// ShippingZoneRepository defines data access for zones and their pincodes
type ShippingZoneRepository interface {
	CreateZone(ctx context.Context, zone *domain.ShippingZone) error
	UpdateZone(ctx context.Context, id uuid.UUID, update ZoneUpdate) error
	DeleteZone(ctx context.Context, id uuid.UUID) error
	FindZoneByID(ctx context.Context, id uuid.UUID) (*domain.ShippingZone, error)
	ListZones(ctx context.Context) ([]*domain.ShippingZone, error)

	AddPincodes(ctx context.Context, zoneID uuid.UUID, rows []PincodeRow) (int, error)
	RemovePincode(ctx context.Context, id uuid.UUID) error
	ListZonePincodes(ctx context.Context, zoneID uuid.UUID) ([]*domain.ZonePincode, error)
	FindMembership(ctx context.Context, pincode string) (*domain.ZonePincode, *domain.ShippingZone, error)
}

type shippingZoneRepository struct {
	db *sql.DB
}

// NewShippingZoneRepository creates a new instance of ShippingZoneRepository
func NewShippingZoneRepository(db *sql.DB) ShippingZoneRepository {
	return &shippingZoneRepository{db: db}
}

// CreateZone inserts a new shipping zone using parameterized queries
func (r *shippingZoneRepository) CreateZone(ctx context.Context, zone *domain.ShippingZone) error {
	query := `
		INSERT INTO shipping_zones (id, name, description, rate, free_shipping_threshold, estimated_days, is_active, sort_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		zone.ID,
		zone.Name,
		zone.Description,
		zone.Rate,
		zone.FreeShippingThreshold,
		zone.EstimatedDays,
		zone.IsActive,
		zone.SortOrder,
		zone.CreatedAt,
		zone.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create shipping zone: %w", err)
	}

	return nil
}

// UpdateZone applies a partial field set; omitted fields keep their value.
func (r *shippingZoneRepository) UpdateZone(ctx context.Context, id uuid.UUID, update ZoneUpdate) error {
	setClauses := ""
	args := []interface{}{id}
	argIndex := 2

	addClause := func(column string, value interface{}) {
		if setClauses != "" {
			setClauses += ", "
		}
		setClauses += fmt.Sprintf("%s = $%d", column, argIndex)
		args = append(args, value)
		argIndex++
	}

	if update.Name != nil {
		addClause("name", *update.Name)
	}
	if update.Description != nil {
		addClause("description", *update.Description)
	}
	if update.Rate != nil {
		addClause("rate", *update.Rate)
	}
	if update.FreeShippingThreshold != nil {
		addClause("free_shipping_threshold", *update.FreeShippingThreshold)
	}
	if update.EstimatedDays != nil {
		addClause("estimated_days", *update.EstimatedDays)
	}
	if update.IsActive != nil {
		addClause("is_active", *update.IsActive)
	}
	if update.SortOrder != nil {
		addClause("sort_order", *update.SortOrder)
	}

	if setClauses == "" {
		// Nothing to change; still report not-found for unknown ids.
		_, err := r.FindZoneByID(ctx, id)
		return err
	}

	addClause("updated_at", time.Now())

	query := fmt.Sprintf("UPDATE shipping_zones SET %s WHERE id = $1", setClauses)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update shipping zone: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrZoneNotFound
	}

	return nil
}

// DeleteZone removes a zone; membership rows go with it via FK cascade.
func (r *shippingZoneRepository) DeleteZone(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM shipping_zones WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete shipping zone: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrZoneNotFound
	}

	return nil
}

// FindZoneByID retrieves a zone by ID
func (r *shippingZoneRepository) FindZoneByID(ctx context.Context, id uuid.UUID) (*domain.ShippingZone, error) {
	query := `
		SELECT id, name, description, rate, free_shipping_threshold, estimated_days, is_active, sort_order, created_at, updated_at
		FROM shipping_zones
		WHERE id = $1
	`

	zone := &domain.ShippingZone{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&zone.ID,
		&zone.Name,
		&zone.Description,
		&zone.Rate,
		&zone.FreeShippingThreshold,
		&zone.EstimatedDays,
		&zone.IsActive,
		&zone.SortOrder,
		&zone.CreatedAt,
		&zone.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrZoneNotFound
		}
		return nil, fmt.Errorf("failed to find shipping zone by ID: %w", err)
	}

	return zone, nil
}

// ListZones retrieves all zones ordered by sort order
func (r *shippingZoneRepository) ListZones(ctx context.Context) ([]*domain.ShippingZone, error) {
	query := `
		SELECT id, name, description, rate, free_shipping_threshold, estimated_days, is_active, sort_order, created_at, updated_at
		FROM shipping_zones
		ORDER BY sort_order ASC, name ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list shipping zones: %w", err)
	}
	defer rows.Close()

	zones := []*domain.ShippingZone{}
	for rows.Next() {
		zone := &domain.ShippingZone{}
		err := rows.Scan(
			&zone.ID,
			&zone.Name,
			&zone.Description,
			&zone.Rate,
			&zone.FreeShippingThreshold,
			&zone.EstimatedDays,
			&zone.IsActive,
			&zone.SortOrder,
			&zone.CreatedAt,
			&zone.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shipping zone: %w", err)
		}
		zones = append(zones, zone)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shipping zones: %w", err)
	}

	return zones, nil
}

// AddPincodes inserts membership rows for the zone. A pincode belongs to at
// most one zone, so existing pincodes are skipped rather than duplicated or
// rejected. Returns the number of rows actually inserted.
func (r *shippingZoneRepository) AddPincodes(ctx context.Context, zoneID uuid.UUID, pincodeRows []PincodeRow) (int, error) {
	query := `
		INSERT INTO shipping_zone_pincodes (id, zone_id, pincode, city, state, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (pincode) DO NOTHING
	`

	inserted := 0
	for _, row := range pincodeRows {
		result, err := r.db.ExecContext(
			ctx,
			query,
			uuid.New(),
			zoneID,
			row.Pincode,
			row.City,
			row.State,
			time.Now(),
		)
		if err != nil {
			return inserted, fmt.Errorf("failed to add pincode %s: %w", row.Pincode, err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return inserted, fmt.Errorf("failed to get rows affected: %w", err)
		}
		inserted += int(rowsAffected)
	}

	return inserted, nil
}

// RemovePincode deletes one membership row by id
func (r *shippingZoneRepository) RemovePincode(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM shipping_zone_pincodes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to remove pincode: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrPincodeNotFound
	}

	return nil
}

// ListZonePincodes retrieves all pincodes belonging to a zone
func (r *shippingZoneRepository) ListZonePincodes(ctx context.Context, zoneID uuid.UUID) ([]*domain.ZonePincode, error) {
	query := `
		SELECT id, zone_id, pincode, city, state, created_at
		FROM shipping_zone_pincodes
		WHERE zone_id = $1
		ORDER BY pincode ASC
	`

	rows, err := r.db.QueryContext(ctx, query, zoneID)
	if err != nil {
		return nil, fmt.Errorf("failed to list zone pincodes: %w", err)
	}
	defer rows.Close()

	pincodes := []*domain.ZonePincode{}
	for rows.Next() {
		p := &domain.ZonePincode{}
		if err := rows.Scan(&p.ID, &p.ZoneID, &p.Pincode, &p.City, &p.State, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan zone pincode: %w", err)
		}
		pincodes = append(pincodes, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating zone pincodes: %w", err)
	}

	return pincodes, nil
}

// FindMembership resolves a pincode to its membership row and owning zone in
// one join. ErrPincodeNotFound is returned when no membership exists.
func (r *shippingZoneRepository) FindMembership(ctx context.Context, pincode string) (*domain.ZonePincode, *domain.ShippingZone, error) {
	query := `
		SELECT p.id, p.zone_id, p.pincode, p.city, p.state, p.created_at,
		       z.id, z.name, z.description, z.rate, z.free_shipping_threshold, z.estimated_days, z.is_active, z.sort_order, z.created_at, z.updated_at
		FROM shipping_zone_pincodes p
		JOIN shipping_zones z ON z.id = p.zone_id
		WHERE p.pincode = $1
	`

	p := &domain.ZonePincode{}
	zone := &domain.ShippingZone{}
	err := r.db.QueryRowContext(ctx, query, pincode).Scan(
		&p.ID,
		&p.ZoneID,
		&p.Pincode,
		&p.City,
		&p.State,
		&p.CreatedAt,
		&zone.ID,
		&zone.Name,
		&zone.Description,
		&zone.Rate,
		&zone.FreeShippingThreshold,
		&zone.EstimatedDays,
		&zone.IsActive,
		&zone.SortOrder,
		&zone.CreatedAt,
		&zone.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, ErrPincodeNotFound
		}
		return nil, nil, fmt.Errorf("failed to find pincode membership: %w", err)
	}

	return p, zone, nil
}
