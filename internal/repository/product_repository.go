package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jucampus/registrar-api/internal/models"
)

// ProductRepository manages persistence for the catalog panel.
type ProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository constructs a ProductRepository.
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

const productColumns = "id, sku, name, description, category, brand, price_cents, image_url, active, created_at, updated_at"

// Sort columns the panel may request; anything else falls back to newest
// first.
var productSortColumns = map[string]string{
	"name":       "name",
	"category":   "category",
	"brand":      "brand",
	"price":      "price_cents",
	"created_at": "created_at",
}

func productOrderClause(filter models.ProductFilter) string {
	column, ok := productSortColumns[filter.SortBy]
	if !ok {
		return "ORDER BY created_at DESC"
	}
	direction := "ASC"
	if strings.EqualFold(filter.SortOrder, "desc") {
		direction = "DESC"
	}
	return fmt.Sprintf("ORDER BY %s %s", column, direction)
}

// List returns active products matching the filter, newest first.
func (r *ProductRepository) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, int, error) {
	conditions := []string{"active = TRUE"}
	args := []interface{}{}
	idx := 1

	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", idx))
		args = append(args, filter.Category)
		idx++
	}
	if filter.Brand != "" {
		conditions = append(conditions, fmt.Sprintf("brand = $%d", idx))
		args = append(args, filter.Brand)
		idx++
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", idx, idx))
		args = append(args, "%"+filter.Search+"%")
		idx++
	}

	where := "WHERE " + strings.Join(conditions, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM products " + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 || pageSize > 60 {
		pageSize = 12
	}

	query := fmt.Sprintf("SELECT %s FROM products %s %s LIMIT $%d OFFSET $%d",
		productColumns, where, productOrderClause(filter), idx, idx+1)
	args = append(args, pageSize, (page-1)*pageSize)

	var products []models.Product
	if err := r.db.SelectContext(ctx, &products, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	return products, total, nil
}

// FindByID returns a product by identifier.
func (r *ProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	query := fmt.Sprintf("SELECT %s FROM products WHERE id = $1 LIMIT 1", productColumns)
	var product models.Product
	if err := r.db.GetContext(ctx, &product, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find product by id: %w", err)
	}
	return &product, nil
}

// Create inserts a new product and returns it.
func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	now := time.Now().UTC()
	product.ID = uuid.NewString()
	product.Active = true
	product.CreatedAt = now
	product.UpdatedAt = now

	const query = `INSERT INTO products (id, sku, name, description, category, brand, price_cents, image_url, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	if _, err := r.db.ExecContext(ctx, query,
		product.ID, product.SKU, product.Name, product.Description, product.Category, product.Brand,
		product.PriceCents, product.ImageURL, product.Active, product.CreatedAt, product.UpdatedAt,
	); err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

// Update persists mutable product fields.
func (r *ProductRepository) Update(ctx context.Context, product *models.Product) error {
	product.UpdatedAt = time.Now().UTC()
	const query = `UPDATE products SET name = $2, description = $3, category = $4, brand = $5, price_cents = $6, image_url = $7, active = $8, updated_at = $9 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query,
		product.ID, product.Name, product.Description, product.Category, product.Brand,
		product.PriceCents, product.ImageURL, product.Active, product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete soft-deletes a product by flipping active off.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	const query = `UPDATE products SET active = FALSE, updated_at = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
