package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jucampus/registrar-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func TestProductFindByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewProductRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "sku", "name", "description", "category", "brand", "price_cents", "image_url", "active", "created_at", "updated_at"}).
		AddRow("p1", "HOODIE-M", "Campus Hoodie", "Grey hoodie", "apparel", "JU Merch", int64(149900), "", true, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, sku, name, description, category, brand, price_cents, image_url, active, created_at, updated_at FROM products WHERE id = $1 LIMIT 1")).
		WithArgs("p1").
		WillReturnRows(rows)

	product, err := repo.FindByID(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "HOODIE-M", product.SKU)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductList(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewProductRepository(db)

	countRows := sqlmock.NewRows([]string{"count"}).AddRow(1)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM products WHERE active = TRUE")).
		WillReturnRows(countRows)

	now := time.Now()
	listRows := sqlmock.NewRows([]string{"id", "sku", "name", "description", "category", "brand", "price_cents", "image_url", "active", "created_at", "updated_at"}).
		AddRow("p1", "HOODIE-M", "Campus Hoodie", "Grey hoodie", "apparel", "JU Merch", int64(149900), "", true, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, sku, name, description, category, brand, price_cents, image_url, active, created_at, updated_at FROM products WHERE active = TRUE ORDER BY created_at DESC LIMIT $1 OFFSET $2")).
		WithArgs(12, 0).
		WillReturnRows(listRows)

	products, total, err := repo.List(context.Background(), models.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, products, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductListBrandFilterAndSort(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewProductRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM products WHERE active = TRUE AND brand = $1")).
		WithArgs("JU Merch").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY price_cents DESC LIMIT $2 OFFSET $3")).
		WithArgs("JU Merch", 12, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, _, err := repo.List(context.Background(), models.ProductFilter{Brand: "JU Merch", SortBy: "price", SortOrder: "desc"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductListRejectsUnknownSortColumn(t *testing.T) {
	assert.Equal(t, "ORDER BY created_at DESC",
		productOrderClause(models.ProductFilter{SortBy: "password; DROP TABLE products"}))
}

func TestBrandCreateAndDelete(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBrandRepository(db)

	mock.ExpectExec("INSERT INTO brands").WillReturnResult(sqlmock.NewResult(1, 1))
	brand := &models.Brand{Name: "JU Merch", URL: "https://merch.example.com"}
	require.NoError(t, repo.Create(context.Background(), brand))
	assert.NotEmpty(t, brand.ID)

	mock.ExpectExec("DELETE FROM brands").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.Error(t, repo.Delete(context.Background(), "missing"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerUpdateMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCustomerRepository(db)

	mock.ExpectExec("UPDATE customers").WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.Update(context.Background(), &models.Customer{ID: "missing", Name: "A", Email: "a@b.c"})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewProductRepository(db)

	mock.ExpectExec("INSERT INTO products").WillReturnResult(sqlmock.NewResult(1, 1))

	product := &models.Product{SKU: "MUG-01", Name: "Campus Mug", PriceCents: 39900}
	err := repo.Create(context.Background(), product)
	require.NoError(t, err)
	assert.NotEmpty(t, product.ID)
	assert.True(t, product.Active)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductDeleteMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewProductRepository(db)

	mock.ExpectExec("UPDATE products SET active = FALSE").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "missing")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
