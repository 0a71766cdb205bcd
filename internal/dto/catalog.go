package dto

// CreateProductRequest adds an item to the catalog panel.
type CreateProductRequest struct {
	SKU         string `json:"sku" validate:"required,max=40"`
	Name        string `json:"name" validate:"required,min=2,max=120"`
	Description string `json:"description" validate:"omitempty,max=2000"`
	Category    string `json:"category" validate:"omitempty,max=60"`
	Brand       string `json:"brand" validate:"omitempty,max=60"`
	PriceCents  int64  `json:"price_cents" validate:"gte=0"`
	ImageURL    string `json:"image_url" validate:"omitempty,url"`
}

// UpdateProductRequest patches an existing catalog item.
type UpdateProductRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=120"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Category    *string `json:"category" validate:"omitempty,max=60"`
	Brand       *string `json:"brand" validate:"omitempty,max=60"`
	PriceCents  *int64  `json:"price_cents" validate:"omitempty,gte=0"`
	ImageURL    *string `json:"image_url" validate:"omitempty,url"`
	Active      *bool   `json:"active"`
}

// CreateBrandRequest registers a brand for the filter dropdowns.
type CreateBrandRequest struct {
	Name string `json:"name" validate:"required,min=2,max=60"`
	URL  string `json:"url" validate:"omitempty,url"`
}

// UpdateCustomerRequest renames a customer account.
type UpdateCustomerRequest struct {
	Name  string `json:"name" validate:"required,min=2,max=100"`
	Email string `json:"email" validate:"required,email"`
}
