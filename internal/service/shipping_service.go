package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"storefront-api/internal/domain"
	"storefront-api/internal/repository"

	"github.com/google/uuid"
)

// DefaultBlockReason is returned for block-listed pincodes whose entry
// carries no reason of its own.
const DefaultBlockReason = "Delivery is temporarily unavailable in your area"

var pincodePattern = regexp.MustCompile(`^[0-9]{6}$`)

// ShippingService answers serviceability checks and carries the admin
// surface for zones, zone pincodes, and the block-list.
type ShippingService interface {
	CheckPincode(ctx context.Context, pincode string) (*domain.PincodeResult, error)

	CreateZone(ctx context.Context, zone *domain.ShippingZone) error
	UpdateZone(ctx context.Context, id uuid.UUID, update repository.ZoneUpdate) error
	DeleteZone(ctx context.Context, id uuid.UUID) error
	ListZones(ctx context.Context) ([]*domain.ShippingZone, error)

	AddPincodes(ctx context.Context, zoneID uuid.UUID, rows []repository.PincodeRow) (int, error)
	RemovePincode(ctx context.Context, id uuid.UUID) error
	ListZonePincodes(ctx context.Context, zoneID uuid.UUID) ([]*domain.ZonePincode, error)
	ImportPincodes(ctx context.Context, zoneID uuid.UUID, rows []repository.PincodeRow) (int, error)

	BlockPincode(ctx context.Context, pincode, reason string) error
	UnblockPincode(ctx context.Context, id uuid.UUID) error
	ListBlockedPincodes(ctx context.Context) ([]*domain.NonServiceablePincode, error)
}

type shippingService struct {
	zones   repository.ShippingZoneRepository
	blocked repository.NonServiceableRepository
}

// NewShippingService creates a new instance of ShippingService
func NewShippingService(
	zones repository.ShippingZoneRepository,
	blocked repository.NonServiceableRepository,
) ShippingService {
	return &shippingService{
		zones:   zones,
		blocked: blocked,
	}
}

// CheckPincode resolves a pre-validated 6-digit pincode to a serviceability
// decision. The block-list is consulted first and wins over zone membership,
// so an area can be suspended without touching its zone data. A pincode with
// no membership and one whose zone is inactive both come back unavailable
// with no reason attached.
func (s *shippingService) CheckPincode(ctx context.Context, pincode string) (*domain.PincodeResult, error) {
	blocked, err := s.blocked.FindByPincode(ctx, pincode)
	if err != nil && !errors.Is(err, repository.ErrBlockedPincodeNotFound) {
		return nil, fmt.Errorf("failed to check block-list: %w", err)
	}
	if blocked != nil {
		reason := blocked.Reason
		if reason == "" {
			reason = DefaultBlockReason
		}
		return &domain.PincodeResult{Available: false, Reason: reason}, nil
	}

	membership, zone, err := s.zones.FindMembership(ctx, pincode)
	if err != nil {
		if errors.Is(err, repository.ErrPincodeNotFound) {
			return &domain.PincodeResult{Available: false}, nil
		}
		return nil, fmt.Errorf("failed to resolve zone membership: %w", err)
	}

	if !zone.IsActive {
		return &domain.PincodeResult{Available: false}, nil
	}

	// Rates are decimal text until this point; parse only at the response
	// boundary and introduce no rounding.
	rate, err := strconv.ParseFloat(zone.Rate, 64)
	if err != nil {
		return nil, fmt.Errorf("zone %s has malformed rate %q: %w", zone.ID, zone.Rate, err)
	}

	result := &domain.PincodeResult{
		Available:     true,
		ZoneName:      zone.Name,
		Rate:          &rate,
		EstimatedDays: zone.EstimatedDays,
		City:          membership.City,
		State:         membership.State,
	}

	if zone.FreeShippingThreshold != nil {
		threshold, err := strconv.ParseFloat(*zone.FreeShippingThreshold, 64)
		if err != nil {
			return nil, fmt.Errorf("zone %s has malformed free shipping threshold %q: %w", zone.ID, *zone.FreeShippingThreshold, err)
		}
		result.FreeShippingThreshold = &threshold
	}

	return result, nil
}

// CreateZone stamps identity and timestamps before inserting
func (s *shippingService) CreateZone(ctx context.Context, zone *domain.ShippingZone) error {
	if zone.ID == uuid.Nil {
		zone.ID = uuid.New()
	}
	now := time.Now()
	zone.CreatedAt = now
	zone.UpdatedAt = now
	return s.zones.CreateZone(ctx, zone)
}

func (s *shippingService) UpdateZone(ctx context.Context, id uuid.UUID, update repository.ZoneUpdate) error {
	return s.zones.UpdateZone(ctx, id, update)
}

func (s *shippingService) DeleteZone(ctx context.Context, id uuid.UUID) error {
	return s.zones.DeleteZone(ctx, id)
}

func (s *shippingService) ListZones(ctx context.Context) ([]*domain.ShippingZone, error) {
	return s.zones.ListZones(ctx)
}

// AddPincodes adds already-validated rows to a zone. The zone must exist;
// re-adding an existing pincode is a no-op, not an error.
func (s *shippingService) AddPincodes(ctx context.Context, zoneID uuid.UUID, rows []repository.PincodeRow) (int, error) {
	if _, err := s.zones.FindZoneByID(ctx, zoneID); err != nil {
		return 0, err
	}
	return s.zones.AddPincodes(ctx, zoneID, rows)
}

func (s *shippingService) RemovePincode(ctx context.Context, id uuid.UUID) error {
	return s.zones.RemovePincode(ctx, id)
}

func (s *shippingService) ListZonePincodes(ctx context.Context, zoneID uuid.UUID) ([]*domain.ZonePincode, error) {
	if _, err := s.zones.FindZoneByID(ctx, zoneID); err != nil {
		return nil, err
	}
	return s.zones.ListZonePincodes(ctx, zoneID)
}

// ImportPincodes bulk-loads rows into a zone. Rows that are not exactly six
// digits are dropped without individual reporting; the returned count is the
// number of rows actually inserted.
func (s *shippingService) ImportPincodes(ctx context.Context, zoneID uuid.UUID, rows []repository.PincodeRow) (int, error) {
	if _, err := s.zones.FindZoneByID(ctx, zoneID); err != nil {
		return 0, err
	}
	return s.zones.AddPincodes(ctx, zoneID, filterValidRows(rows))
}

// BlockPincode adds a pincode to the block-list; idempotent.
func (s *shippingService) BlockPincode(ctx context.Context, pincode, reason string) error {
	if !pincodePattern.MatchString(pincode) {
		return fmt.Errorf("invalid pincode %q", pincode)
	}
	return s.blocked.Add(ctx, pincode, reason)
}

func (s *shippingService) UnblockPincode(ctx context.Context, id uuid.UUID) error {
	return s.blocked.Remove(ctx, id)
}

func (s *shippingService) ListBlockedPincodes(ctx context.Context) ([]*domain.NonServiceablePincode, error) {
	return s.blocked.List(ctx)
}

func filterValidRows(rows []repository.PincodeRow) []repository.PincodeRow {
	valid := make([]repository.PincodeRow, 0, len(rows))
	for _, row := range rows {
		if pincodePattern.MatchString(row.Pincode) {
			valid = append(valid, row)
		}
	}
	return valid
}
