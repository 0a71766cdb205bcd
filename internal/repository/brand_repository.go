package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jucampus/registrar-api/internal/models"
)

// BrandRepository manages the brands behind the panel's filter dropdowns.
type BrandRepository struct {
	db *sqlx.DB
}

// NewBrandRepository constructs a BrandRepository.
func NewBrandRepository(db *sqlx.DB) *BrandRepository {
	return &BrandRepository{db: db}
}

// List returns every brand ordered by name.
func (r *BrandRepository) List(ctx context.Context) ([]models.Brand, error) {
	const query = `SELECT id, name, url, created_at FROM brands ORDER BY name ASC`
	var brands []models.Brand
	if err := r.db.SelectContext(ctx, &brands, query); err != nil {
		return nil, fmt.Errorf("list brands: %w", err)
	}
	return brands, nil
}

// Create inserts a new brand.
func (r *BrandRepository) Create(ctx context.Context, brand *models.Brand) error {
	brand.ID = uuid.NewString()
	brand.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO brands (id, name, url, created_at) VALUES ($1, $2, $3, $4)`
	if _, err := r.db.ExecContext(ctx, query, brand.ID, brand.Name, brand.URL, brand.CreatedAt); err != nil {
		return fmt.Errorf("create brand: %w", err)
	}
	return nil
}

// Delete removes a brand by identifier.
func (r *BrandRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM brands WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete brand: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
