package domain

import (
	"time"

	"github.com/google/uuid"
)

// Brand represents a product brand shown in the storefront
type Brand struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Slug      string    `json:"slug" db:"slug"`
	LogoURL   string    `json:"logo_url" db:"logo_url"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Category represents a product category
type Category struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Slug        string    `json:"slug" db:"slug"`
	Description string    `json:"description" db:"description"`
	ImageURL    string    `json:"image_url" db:"image_url"`
	SortOrder   int       `json:"sort_order" db:"sort_order"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Product represents a product in the catalog. Prices are kept as the
// database's decimal text and converted to float only at response boundaries.
type Product struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	Name          string     `json:"name" db:"name"`
	Slug          string     `json:"slug" db:"slug"`
	Description   string     `json:"description" db:"description"`
	Price         string     `json:"price" db:"price"`
	OriginalPrice *string    `json:"original_price,omitempty" db:"original_price"`
	BrandID       *uuid.UUID `json:"brand_id,omitempty" db:"brand_id"`
	CategoryID    uuid.UUID  `json:"category_id" db:"category_id"`
	ImageURL      string     `json:"image_url" db:"image_url"`
	Stock         int        `json:"stock" db:"stock"`
	IsActive      bool       `json:"is_active" db:"is_active"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// ProductVariant represents one purchasable configuration of a product.
// Price is optional; a nil price means the product's base price applies.
type ProductVariant struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	Size      string    `json:"size" db:"size"`
	Color     string    `json:"color" db:"color"`
	ColorHex  string    `json:"color_hex" db:"color_hex"`
	Price     *string   `json:"price,omitempty" db:"price"`
	Stock     int       `json:"stock" db:"stock"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
