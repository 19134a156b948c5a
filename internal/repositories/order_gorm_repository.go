package repositories

import (
	"context"
	"errors"
	"fmt"

	"orderapi/internal/apperr"
	"orderapi/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("position ASC")
	})
}

// GetByID retrieves an order and its items.
func (r *GORMOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := preloadItems(r.db.WithContext(ctx)).First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("order with ID %s not found", id)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	orders := []models.Order{order}
	if err := attachProducts(r.db.WithContext(ctx), orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

// List retrieves one page of orders, newest first.
func (r *GORMOrderRepository) List(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Order{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	orders := make([]models.Order, 0, filter.Page.PerPage)
	err := preloadItems(q).Order("created_at DESC").Order("id DESC").
		Offset(filter.Page.Offset()).Limit(filter.Page.PerPage).
		Find(&orders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	if err := attachProducts(r.db.WithContext(ctx), orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// attachProducts loads the catalog entries the items refer to. Items whose
// product has been deleted keep a nil Product.
func attachProducts(db *gorm.DB, orders []models.Order) error {
	seen := map[string]bool{}
	var ids []string
	for _, o := range orders {
		for _, it := range o.Items {
			if !seen[it.ProductID] {
				seen[it.ProductID] = true
				ids = append(ids, it.ProductID)
			}
		}
	}
	if len(ids) == 0 {
		return nil
	}

	var products []models.Product
	if err := db.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return fmt.Errorf("failed to load order products: %w", err)
	}
	byID := make(map[string]*models.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	for i := range orders {
		for j := range orders[i].Items {
			orders[i].Items[j].Product = byID[orders[i].Items[j].ProductID]
		}
	}
	return nil
}

// Create inserts the order and its items. Missing IDs are generated and
// item positions follow slice order.
func (r *GORMOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	for i := range order.Items {
		if order.Items[i].ID == "" {
			order.Items[i].ID = uuid.New().String()
		}
		order.Items[i].OrderID = order.ID
		order.Items[i].Position = i
	}
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// Update overwrites status, address and meta of an existing order.
func (r *GORMOrderRepository) Update(ctx context.Context, order *models.Order) error {
	res := r.db.WithContext(ctx).Model(order).Omit("Items").
		Select("status", "address", "meta", "updated_at").
		Updates(order)
	if res.Error != nil {
		return fmt.Errorf("failed to update order: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("order with ID %s not found", order.ID)
	}
	return nil
}

// Delete removes the order's items and then the order.
func (r *GORMOrderRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete items of order %s: %w", id, err)
		}
		res := tx.Delete(&models.Order{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete order: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("order with ID %s not found", id)
		}
		return nil
	})
}
