package domain

import (
	"errors"
	"strings"
)

var (
	ErrInvalidProductName  = errors.New("product name is required")
	ErrInvalidProductColor = errors.New("product color is required")
)

// Product represents the product entity
type Product struct {
	ID    int64
	Name  string
	Color string
}

// NewProduct creates a new, not yet persisted product with validation
func NewProduct(name, color string) (*Product, error) {
	product := &Product{
		Name:  strings.TrimSpace(name),
		Color: strings.TrimSpace(color),
	}

	if err := product.Validate(); err != nil {
		return nil, err
	}

	return product, nil
}

// Validate performs business validation on the product
func (p *Product) Validate() error {
	if p.Name == "" {
		return ErrInvalidProductName
	}
	if p.Color == "" {
		return ErrInvalidProductColor
	}
	return nil
}
