package services

import (
	"context"
	"math"
	"strings"

	"orderapi/internal/apperr"
	"orderapi/internal/models"
	"orderapi/internal/repositories"
)

// ProductPatch holds the fields of a partial product update. Nil fields and
// an unset Description are left untouched; a set Description with a nil
// value clears it.
type ProductPatch struct {
	Name        *string
	Description models.Optional[string]
	Price       *float64
	Stock       *int
	IsActive    *bool
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo repositories.ProductRepository
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository) *ProductService {
	return &ProductService{
		repo: repo,
	}
}

func validatePrice(price float64) error {
	if price < 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return apperr.Invalid("price must be a non-negative number")
	}
	return nil
}

// ListProducts retrieves one page of products matching the filter.
func (s *ProductService) ListProducts(ctx context.Context, filter repositories.ProductFilter) ([]models.Product, int64, error) {
	return s.repo.List(ctx, filter)
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateProduct validates and stores a new product.
func (s *ProductService) CreateProduct(ctx context.Context, product *models.Product) error {
	product.Name = strings.TrimSpace(product.Name)
	if product.Name == "" {
		return apperr.Invalid("name is required")
	}
	if err := validatePrice(product.Price); err != nil {
		return err
	}
	if product.Stock < 0 {
		return apperr.Invalid("stock must be >= 0")
	}
	return s.repo.Create(ctx, product)
}

// UpdateProduct applies a partial update and returns the stored product.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, patch ProductPatch) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		// A blank name keeps the current one.
		if name := strings.TrimSpace(*patch.Name); name != "" {
			product.Name = name
		}
	}
	if patch.Description.Set {
		product.Description = patch.Description.Value
	}
	if patch.Price != nil {
		if err := validatePrice(*patch.Price); err != nil {
			return nil, err
		}
		product.Price = *patch.Price
	}
	if patch.Stock != nil {
		if *patch.Stock < 0 {
			return nil, apperr.Invalid("stock must be >= 0")
		}
		product.Stock = *patch.Stock
	}
	if patch.IsActive != nil {
		product.IsActive = *patch.IsActive
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
