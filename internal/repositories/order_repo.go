package repositories

import (
	"context"

	"orderapi/internal/models"
)

// OrderFilter narrows an order listing.
type OrderFilter struct {
	Status string
	Page   Page
}

// OrderRepository defines the interface for order data access.
// Orders are always returned with their items in cart order.
type OrderRepository interface {
	GetByID(ctx context.Context, id string) (*models.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error)
	Create(ctx context.Context, order *models.Order) error
	// Update overwrites status, address and meta only.
	Update(ctx context.Context, order *models.Order) error
	// Delete removes the order and its items.
	Delete(ctx context.Context, id string) error
}
