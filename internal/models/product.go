package models

import "time"

// Product is a row in the catalog panel, stored in PostgreSQL.
type Product struct {
	ID          string    `db:"id" json:"id"`
	SKU         string    `db:"sku" json:"sku"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Category    string    `db:"category" json:"category"`
	Brand       string    `db:"brand" json:"brand"`
	PriceCents  int64     `db:"price_cents" json:"price_cents"`
	ImageURL    string    `db:"image_url" json:"image_url"`
	Active      bool      `db:"active" json:"active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ProductFilter captures paging, sorting and search criteria for the
// catalog listing. SortBy is checked against an allow-list in the
// repository before it reaches SQL.
type ProductFilter struct {
	Category  string
	Brand     string
	Search    string
	SortBy    string
	SortOrder string
	Page      int
	PageSize  int
}

// Brand is a manufacturer entry shown in the panel's filter dropdowns.
type Brand struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	URL       string    `db:"url" json:"url"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Customer is a storefront account managed from the panel.
type Customer struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
