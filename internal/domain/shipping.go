package domain

import (
	"time"

	"github.com/google/uuid"
)

// ShippingZone groups pincodes sharing one flat rate and delivery estimate.
// Rate and FreeShippingThreshold carry the database's decimal text unchanged;
// parsing to float happens only when building a serviceability response.
type ShippingZone struct {
	ID                    uuid.UUID `json:"id" db:"id"`
	Name                  string    `json:"name" db:"name"`
	Description           string    `json:"description" db:"description"`
	Rate                  string    `json:"rate" db:"rate"`
	FreeShippingThreshold *string   `json:"free_shipping_threshold,omitempty" db:"free_shipping_threshold"`
	EstimatedDays         string    `json:"estimated_days" db:"estimated_days"`
	IsActive              bool      `json:"is_active" db:"is_active"`
	SortOrder             int       `json:"sort_order" db:"sort_order"`
	CreatedAt             time.Time `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time `json:"updated_at" db:"updated_at"`
}

// ZonePincode maps one 6-digit postal code to its owning zone.
// City and state describe the pincode, not the zone.
type ZonePincode struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ZoneID    uuid.UUID `json:"zone_id" db:"zone_id"`
	Pincode   string    `json:"pincode" db:"pincode"`
	City      string    `json:"city" db:"city"`
	State     string    `json:"state" db:"state"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// NonServiceablePincode is a block-list entry. It takes precedence over any
// zone membership the same pincode may have.
type NonServiceablePincode struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Pincode   string    `json:"pincode" db:"pincode"`
	Reason    string    `json:"reason" db:"reason"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// PincodeResult is the answer to "can we deliver to this pincode".
// When Available is false the optional fields stay empty; Reason is only set
// for block-listed pincodes.
type PincodeResult struct {
	Available             bool     `json:"available"`
	Reason                string   `json:"reason,omitempty"`
	ZoneName              string   `json:"zone_name,omitempty"`
	Rate                  *float64 `json:"rate,omitempty"`
	FreeShippingThreshold *float64 `json:"free_shipping_threshold,omitempty"`
	EstimatedDays         string   `json:"estimated_days,omitempty"`
	City                  string   `json:"city,omitempty"`
	State                 string   `json:"state,omitempty"`
}
