package repositories

import (
	"context"

	"orderapi/internal/models"
)

// ProductFilter narrows a product listing.
type ProductFilter struct {
	Query      string // case-insensitive substring of the name
	OnlyActive bool
	Page       Page
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*models.Product, error)
	// GetForUpdate reads a product and locks its row until the surrounding
	// transaction ends, where the database supports row locks.
	GetForUpdate(ctx context.Context, id string) (*models.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
	// DecrementStock subtracts qty only if at least qty units are in stock.
	DecrementStock(ctx context.Context, id string, qty int) error
	// IncrementStock adds qty back. It reports false when the product no longer exists.
	IncrementStock(ctx context.Context, id string, qty int) (bool, error)
}
