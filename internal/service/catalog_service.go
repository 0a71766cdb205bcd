package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jucampus/registrar-api/internal/dto"
	"github.com/jucampus/registrar-api/internal/models"
	appErrors "github.com/jucampus/registrar-api/pkg/errors"
)

type productRepository interface {
	List(ctx context.Context, filter models.ProductFilter) ([]models.Product, int, error)
	FindByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
}

type brandRepository interface {
	List(ctx context.Context) ([]models.Brand, error)
	Create(ctx context.Context, brand *models.Brand) error
	Delete(ctx context.Context, id string) error
}

type customerRepository interface {
	List(ctx context.Context) ([]models.Customer, error)
	Update(ctx context.Context, customer *models.Customer) error
	Delete(ctx context.Context, id string) error
}

// CatalogService backs the campus merchandise panel.
type CatalogService struct {
	repo      productRepository
	brands    brandRepository
	customers customerRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(repo productRepository, brands brandRepository, customers customerRepository, validate *validator.Validate, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CatalogService{repo: repo, brands: brands, customers: customers, validator: validate, logger: logger}
}

// List returns a page of products; the panel shows twelve per page.
func (s *CatalogService) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, *models.Pagination, error) {
	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list products")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 || pageSize > 60 {
		pageSize = 12
	}
	return products, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Get returns one product.
func (s *CatalogService) Get(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch product")
	}
	return product, nil
}

// Create adds a product to the catalog.
func (s *CatalogService) Create(ctx context.Context, req dto.CreateProductRequest) (*models.Product, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid product payload")
	}

	product := &models.Product{
		SKU:         req.SKU,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Brand:       req.Brand,
		PriceCents:  req.PriceCents,
		ImageURL:    req.ImageURL,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create product")
	}
	return product, nil
}

// Update patches a product.
func (s *CatalogService) Update(ctx context.Context, id string, req dto.UpdateProductRequest) (*models.Product, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid product payload")
	}

	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Category != nil {
		product.Category = *req.Category
	}
	if req.Brand != nil {
		product.Brand = *req.Brand
	}
	if req.PriceCents != nil {
		product.PriceCents = *req.PriceCents
	}
	if req.ImageURL != nil {
		product.ImageURL = *req.ImageURL
	}
	if req.Active != nil {
		product.Active = *req.Active
	}

	if err := s.repo.Update(ctx, product); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update product")
	}
	return product, nil
}

// Delete retires a product from the panel.
func (s *CatalogService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete product")
	}
	return nil
}

// Brands returns the brand list for the filter dropdowns.
func (s *CatalogService) Brands(ctx context.Context) ([]models.Brand, error) {
	brands, err := s.brands.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list brands")
	}
	return brands, nil
}

// AddBrand registers a brand.
func (s *CatalogService) AddBrand(ctx context.Context, req dto.CreateBrandRequest) (*models.Brand, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid brand payload")
	}

	brand := &models.Brand{Name: req.Name, URL: req.URL}
	if err := s.brands.Create(ctx, brand); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create brand")
	}
	return brand, nil
}

// DeleteBrand removes a brand.
func (s *CatalogService) DeleteBrand(ctx context.Context, id string) error {
	if err := s.brands.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete brand")
	}
	return nil
}

// Customers lists storefront accounts.
func (s *CatalogService) Customers(ctx context.Context) ([]models.Customer, error) {
	customers, err := s.customers.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list customers")
	}
	return customers, nil
}

// UpdateCustomer renames an account and changes its contact email.
func (s *CatalogService) UpdateCustomer(ctx context.Context, id string, req dto.UpdateCustomerRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid customer payload")
	}

	customer := &models.Customer{ID: id, Name: req.Name, Email: req.Email}
	if err := s.customers.Update(ctx, customer); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update customer")
	}
	return nil
}

// DeleteCustomer removes a storefront account.
func (s *CatalogService) DeleteCustomer(ctx context.Context, id string) error {
	if err := s.customers.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete customer")
	}
	return nil
}
