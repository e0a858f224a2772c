package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront-api/internal/config"
	"storefront-api/internal/domain"
	"storefront-api/internal/metrics"
	"storefront-api/internal/repository"
	"storefront-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
)

// Mock repositories for testing
type mockZoneRepo struct {
	zones    map[uuid.UUID]*domain.ShippingZone
	pincodes map[string]*domain.ZonePincode
}

func newMockZoneRepo() *mockZoneRepo {
	return &mockZoneRepo{
		zones:    make(map[uuid.UUID]*domain.ShippingZone),
		pincodes: make(map[string]*domain.ZonePincode),
	}
}

func (m *mockZoneRepo) CreateZone(ctx context.Context, zone *domain.ShippingZone) error {
	m.zones[zone.ID] = zone
	return nil
}

func (m *mockZoneRepo) UpdateZone(ctx context.Context, id uuid.UUID, update repository.ZoneUpdate) error {
	if _, ok := m.zones[id]; !ok {
		return repository.ErrZoneNotFound
	}
	return nil
}

func (m *mockZoneRepo) DeleteZone(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.zones[id]; !ok {
		return repository.ErrZoneNotFound
	}
	delete(m.zones, id)
	return nil
}

func (m *mockZoneRepo) FindZoneByID(ctx context.Context, id uuid.UUID) (*domain.ShippingZone, error) {
	zone, ok := m.zones[id]
	if !ok {
		return nil, repository.ErrZoneNotFound
	}
	return zone, nil
}

func (m *mockZoneRepo) ListZones(ctx context.Context) ([]*domain.ShippingZone, error) {
	out := make([]*domain.ShippingZone, 0, len(m.zones))
	for _, z := range m.zones {
		out = append(out, z)
	}
	return out, nil
}

func (m *mockZoneRepo) AddPincodes(ctx context.Context, zoneID uuid.UUID, rows []repository.PincodeRow) (int, error) {
	inserted := 0
	for _, row := range rows {
		if _, exists := m.pincodes[row.Pincode]; exists {
			continue
		}
		m.pincodes[row.Pincode] = &domain.ZonePincode{
			ID:      uuid.New(),
			ZoneID:  zoneID,
			Pincode: row.Pincode,
			City:    row.City,
			State:   row.State,
		}
		inserted++
	}
	return inserted, nil
}

func (m *mockZoneRepo) RemovePincode(ctx context.Context, id uuid.UUID) error {
	for pincode, p := range m.pincodes {
		if p.ID == id {
			delete(m.pincodes, pincode)
			return nil
		}
	}
	return repository.ErrPincodeNotFound
}

func (m *mockZoneRepo) ListZonePincodes(ctx context.Context, zoneID uuid.UUID) ([]*domain.ZonePincode, error) {
	var out []*domain.ZonePincode
	for _, p := range m.pincodes {
		if p.ZoneID == zoneID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockZoneRepo) FindMembership(ctx context.Context, pincode string) (*domain.ZonePincode, *domain.ShippingZone, error) {
	p, ok := m.pincodes[pincode]
	if !ok {
		return nil, nil, repository.ErrPincodeNotFound
	}
	zone, ok := m.zones[p.ZoneID]
	if !ok {
		return nil, nil, repository.ErrPincodeNotFound
	}
	return p, zone, nil
}

type mockBlockRepo struct {
	blocked map[string]*domain.NonServiceablePincode
}

func newMockBlockRepo() *mockBlockRepo {
	return &mockBlockRepo{blocked: make(map[string]*domain.NonServiceablePincode)}
}

func (m *mockBlockRepo) Add(ctx context.Context, pincode, reason string) error {
	if _, exists := m.blocked[pincode]; exists {
		return nil
	}
	m.blocked[pincode] = &domain.NonServiceablePincode{ID: uuid.New(), Pincode: pincode, Reason: reason}
	return nil
}

func (m *mockBlockRepo) Remove(ctx context.Context, id uuid.UUID) error {
	for pincode, b := range m.blocked {
		if b.ID == id {
			delete(m.blocked, pincode)
			return nil
		}
	}
	return repository.ErrBlockedPincodeNotFound
}

func (m *mockBlockRepo) List(ctx context.Context) ([]*domain.NonServiceablePincode, error) {
	out := make([]*domain.NonServiceablePincode, 0, len(m.blocked))
	for _, b := range m.blocked {
		out = append(out, b)
	}
	return out, nil
}

func (m *mockBlockRepo) FindByPincode(ctx context.Context, pincode string) (*domain.NonServiceablePincode, error) {
	b, ok := m.blocked[pincode]
	if !ok {
		return nil, repository.ErrBlockedPincodeNotFound
	}
	return b, nil
}

func newTestMetrics(t *testing.T) *metrics.Metrics {
	t.Helper()
	m, _, err := metrics.Init(context.Background(), config.TelemetryConfig{Enabled: false})
	if err != nil {
		t.Fatalf("failed to build test metrics: %v", err)
	}
	return m
}

func newShippingRouter(t *testing.T, zones *mockZoneRepo, blocked *mockBlockRepo) chi.Router {
	t.Helper()
	handler := NewShippingHandler(
		service.NewShippingService(zones, blocked),
		newTestMetrics(t),
		zap.NewNop(),
	)
	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r
}

func TestCheckPincodeAvailable(t *testing.T) {
	zones := newMockZoneRepo()
	blocked := newMockBlockRepo()

	zoneID := uuid.New()
	zones.zones[zoneID] = &domain.ShippingZone{
		ID:            zoneID,
		Name:          "Metro",
		Rate:          "49.50",
		EstimatedDays: "2-3 days",
		IsActive:      true,
	}
	zones.pincodes["400001"] = &domain.ZonePincode{
		ID: uuid.New(), ZoneID: zoneID, Pincode: "400001", City: "Mumbai", State: "Maharashtra",
	}

	router := newShippingRouter(t, zones, blocked)

	req := httptest.NewRequest(http.MethodGet, "/api/shipping/check?pincode=400001", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var result domain.PincodeResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !result.Available {
		t.Fatal("expected pincode to be available")
	}
	if result.ZoneName != "Metro" || result.City != "Mumbai" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Rate == nil || *result.Rate != 49.50 {
		t.Fatalf("expected rate 49.50, got %v", result.Rate)
	}
}

func TestCheckPincodeBlocked(t *testing.T) {
	zones := newMockZoneRepo()
	blocked := newMockBlockRepo()
	blocked.Add(context.Background(), "110001", "Floods in the area")

	router := newShippingRouter(t, zones, blocked)

	req := httptest.NewRequest(http.MethodGet, "/api/shipping/check?pincode=110001", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var result domain.PincodeResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.Available {
		t.Fatal("expected blocked pincode to be unavailable")
	}
	if result.Reason != "Floods in the area" {
		t.Fatalf("expected block reason, got %q", result.Reason)
	}
}

// Feature: serviceability check, Property: any query that is not exactly
// six digits is rejected before reaching the resolver.
func TestProperty_MalformedPincodeRejected(t *testing.T) {
	router := newShippingRouter(t, newMockZoneRepo(), newMockBlockRepo())

	properties := gopter.NewProperties(nil)

	properties.Property("non 6-digit pincodes get 400", prop.ForAll(
		func(pincode string) bool {
			req := httptest.NewRequest(http.MethodGet, "/api/shipping/check", nil)
			q := req.URL.Query()
			q.Set("pincode", pincode)
			req.URL.RawQuery = q.Encode()

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			return rec.Code == http.StatusBadRequest
		},
		gen.OneConstOf("", "12345", "1234567", "40000a", "abcdef", " 40001", "40-001"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestImportPincodesDropsMalformedRows(t *testing.T) {
	zones := newMockZoneRepo()
	zoneID := uuid.New()
	zones.zones[zoneID] = &domain.ShippingZone{ID: zoneID, Name: "Metro", Rate: "49.50", IsActive: true}

	router := newShippingRouter(t, zones, newMockBlockRepo())

	body, _ := json.Marshal(ImportPincodesRequest{Pincodes: []PincodeEntry{
		{Pincode: "400001", City: "Mumbai", State: "Maharashtra"},
		{Pincode: "40000", City: "Bad", State: "Bad"},
		{Pincode: "400002", City: "Mumbai", State: "Maharashtra"},
		{Pincode: "4000021", City: "Bad", State: "Bad"},
	}})

	req := httptest.NewRequest(http.MethodPost, "/api/admin/shipping/zones/"+zoneID.String()+"/pincodes/import", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp ImportResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Inserted != 2 {
		t.Fatalf("expected 2 inserted, got %d", resp.Inserted)
	}
}

func TestAddPincodesRejectsMalformedRows(t *testing.T) {
	zones := newMockZoneRepo()
	zoneID := uuid.New()
	zones.zones[zoneID] = &domain.ShippingZone{ID: zoneID, Name: "Metro", Rate: "49.50", IsActive: true}

	router := newShippingRouter(t, zones, newMockBlockRepo())

	body, _ := json.Marshal(AddPincodesRequest{Pincodes: []PincodeEntry{
		{Pincode: "40000"},
	}})

	req := httptest.NewRequest(http.MethodPost, "/api/admin/shipping/zones/"+zoneID.String()+"/pincodes", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed row, got %d", rec.Code)
	}
}

func TestCreateZoneRejectsNonNumericRate(t *testing.T) {
	router := newShippingRouter(t, newMockZoneRepo(), newMockBlockRepo())

	body, _ := json.Marshal(CreateZoneRequest{
		Name:          "Metro",
		Rate:          "forty-nine",
		EstimatedDays: "2-3 days",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/admin/shipping/zones", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad rate, got %d", rec.Code)
	}
}
