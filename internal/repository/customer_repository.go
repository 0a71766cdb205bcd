package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jucampus/registrar-api/internal/models"
)

// CustomerRepository manages storefront accounts shown in the panel.
type CustomerRepository struct {
	db *sqlx.DB
}

// NewCustomerRepository constructs a CustomerRepository.
func NewCustomerRepository(db *sqlx.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// List returns every customer, newest first.
func (r *CustomerRepository) List(ctx context.Context) ([]models.Customer, error) {
	const query = `SELECT id, name, email, created_at FROM customers ORDER BY created_at DESC`
	var customers []models.Customer
	if err := r.db.SelectContext(ctx, &customers, query); err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return customers, nil
}

// Update renames a customer and changes their contact email.
func (r *CustomerRepository) Update(ctx context.Context, customer *models.Customer) error {
	const query = `UPDATE customers SET name = $2, email = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, customer.ID, customer.Name, customer.Email)
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a customer account.
func (r *CustomerRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
