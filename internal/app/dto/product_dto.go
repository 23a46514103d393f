package dto

import (
	"github.com/mrops-br/products-webapp/internal/domain"
)

// CreateProductRequest represents the request to create a product
type CreateProductRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// ProductResponse represents the product response
type ProductResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *domain.Product) *ProductResponse {
	return &ProductResponse{
		ID:    p.ID,
		Name:  p.Name,
		Color: p.Color,
	}
}

// ToProductResponseList converts a list of domain Products to ProductResponse list
func ToProductResponseList(products []*domain.Product) []*ProductResponse {
	responses := make([]*ProductResponse, len(products))
	for i, p := range products {
		responses[i] = ToProductResponse(p)
	}
	return responses
}
