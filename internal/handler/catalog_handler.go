package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jucampus/registrar-api/internal/dto"
	"github.com/jucampus/registrar-api/internal/models"
	"github.com/jucampus/registrar-api/internal/service"
	appErrors "github.com/jucampus/registrar-api/pkg/errors"
	"github.com/jucampus/registrar-api/pkg/response"
)

// CatalogHandler exposes the campus store catalog panel.
type CatalogHandler struct {
	catalog *service.CatalogService
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// List godoc
// @Summary List catalog products
// @Tags Catalog
// @Produce json
// @Param search query string false "Search by name or SKU"
// @Param category query string false "Filter by category"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /catalog/products [get]
func (h *CatalogHandler) List(c *gin.Context) {
	var filter models.ProductFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.Category = c.Query("category")
	filter.Brand = c.Query("brand")
	filter.SortBy = c.Query("sort_by")
	filter.SortOrder = c.DefaultQuery("sort_order", "asc")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "12")); err == nil {
		filter.PageSize = size
	}

	products, pagination, err := h.catalog.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, products, pagination)
}

// Get godoc
// @Summary Get product detail
// @Tags Catalog
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} response.Envelope
// @Router /catalog/products/{id} [get]
func (h *CatalogHandler) Get(c *gin.Context) {
	product, err := h.catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, product, nil)
}

// Create godoc
// @Summary Create product
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body dto.CreateProductRequest true "Product payload"
// @Success 201 {object} response.Envelope
// @Router /admin/catalog/products [post]
func (h *CatalogHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	product, err := h.catalog.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, product)
}

// Update godoc
// @Summary Update product
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param payload body dto.UpdateProductRequest true "Product payload"
// @Success 200 {object} response.Envelope
// @Router /admin/catalog/products/{id} [put]
func (h *CatalogHandler) Update(c *gin.Context) {
	var req dto.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	product, err := h.catalog.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, product, nil)
}

// Delete godoc
// @Summary Retire product
// @Tags Catalog
// @Produce json
// @Param id path string true "Product ID"
// @Success 204
// @Router /admin/catalog/products/{id} [delete]
func (h *CatalogHandler) Delete(c *gin.Context) {
	if err := h.catalog.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Brands godoc
// @Summary List brands
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /catalog/brands [get]
func (h *CatalogHandler) Brands(c *gin.Context) {
	brands, err := h.catalog.Brands(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, brands, nil)
}

// CreateBrand godoc
// @Summary Register a brand
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body dto.CreateBrandRequest true "Brand payload"
// @Success 201 {object} response.Envelope
// @Router /admin/catalog/brands [post]
func (h *CatalogHandler) CreateBrand(c *gin.Context) {
	var req dto.CreateBrandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	brand, err := h.catalog.AddBrand(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, brand)
}

// DeleteBrand godoc
// @Summary Delete a brand
// @Tags Catalog
// @Produce json
// @Param id path string true "Brand ID"
// @Success 204
// @Router /admin/catalog/brands/{id} [delete]
func (h *CatalogHandler) DeleteBrand(c *gin.Context) {
	if err := h.catalog.DeleteBrand(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Customers godoc
// @Summary List storefront customers
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/catalog/customers [get]
func (h *CatalogHandler) Customers(c *gin.Context) {
	customers, err := h.catalog.Customers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, customers, nil)
}

// UpdateCustomer godoc
// @Summary Update a customer account
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path string true "Customer ID"
// @Param payload body dto.UpdateCustomerRequest true "Customer payload"
// @Success 200 {object} response.Envelope
// @Router /admin/catalog/customers/{id} [post]
func (h *CatalogHandler) UpdateCustomer(c *gin.Context) {
	var req dto.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.catalog.UpdateCustomer(c.Request.Context(), c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"updated": true}, nil)
}

// DeleteCustomer godoc
// @Summary Delete a customer account
// @Tags Catalog
// @Produce json
// @Param id path string true "Customer ID"
// @Success 204
// @Router /admin/catalog/customers/{id} [delete]
func (h *CatalogHandler) DeleteCustomer(c *gin.Context) {
	if err := h.catalog.DeleteCustomer(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
