package services

import (
	"context"
	"errors"
	"strings"

	"orderapi/internal/apperr"
	"orderapi/internal/models"
	"orderapi/internal/repositories"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("orderapi/services")

// CartLine is one requested (product, quantity) pair.
type CartLine struct {
	ProductID string
	Quantity  int
}

// CreateOrderInput is everything needed to place an order.
type CreateOrderInput struct {
	UserID  string
	Items   []CartLine
	Address *string
	Meta    map[string]any
}

// OrderPatch holds the fields of a partial order update. Nil Status and Meta
// and an unset Address are left untouched; a set Address with a nil value
// clears it.
type OrderPatch struct {
	Status  *string
	Address models.Optional[string]
	Meta    map[string]any
}

// OrderService places, updates and deletes orders, keeping product stock in
// step with the order lines.
type OrderService struct {
	tx        repositories.TxManager
	orderRepo repositories.OrderRepository
	publisher EventPublisher // optional
}

// NewOrderService creates a new OrderService. publisher may be nil.
func NewOrderService(tx repositories.TxManager, orderRepo repositories.OrderRepository, publisher EventPublisher) *OrderService {
	return &OrderService{
		tx:        tx,
		orderRepo: orderRepo,
		publisher: publisher,
	}
}

// ListOrders retrieves one page of orders.
func (s *OrderService) ListOrders(ctx context.Context, filter repositories.OrderFilter) ([]models.Order, int64, error) {
	return s.orderRepo.List(ctx, filter)
}

// GetOrderByID retrieves a single order with its items.
func (s *OrderService) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	return s.orderRepo.GetByID(ctx, id)
}

// CreateOrder validates the cart line by line, reserves stock, snapshots
// prices and stores the order, all in one transaction. The first failing
// line aborts the whole order and nothing is written.
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	ctx, span := tracer.Start(ctx, "OrderService.CreateOrder", trace.WithAttributes(
		attribute.String("user.id", in.UserID),
		attribute.Int("cart.lines", len(in.Items)),
	))
	defer span.End()

	if len(in.Items) == 0 {
		return nil, spanError(span, apperr.ErrEmptyCart)
	}

	meta := in.Meta
	if meta == nil {
		meta = map[string]any{}
	}
	order := &models.Order{
		UserID:  in.UserID,
		Status:  models.OrderStatusPending,
		Address: in.Address,
		Meta:    meta,
		Items:   make([]models.OrderItem, 0, len(in.Items)),
	}

	err := s.tx.Transaction(ctx, func(repos repositories.TxRepositories) error {
		total := decimal.Zero
		for _, line := range in.Items {
			if line.Quantity <= 0 {
				return apperr.ErrInvalidQuantity
			}

			product, err := repos.Products.GetForUpdate(ctx, line.ProductID)
			if err != nil {
				if errors.Is(err, apperr.ErrNotFound) {
					return apperr.New(apperr.CodeProductUnavailable, "Product %s not available", line.ProductID)
				}
				return err
			}
			if !product.IsActive {
				return apperr.New(apperr.CodeProductUnavailable, "Product %s not available", line.ProductID)
			}
			if product.Stock < line.Quantity {
				return apperr.New(apperr.CodeInsufficientStock, "Insufficient stock for product %s", line.ProductID)
			}

			unitPrice := decimal.NewFromFloat(product.Price)
			subtotal := unitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))).Round(2)
			if err := repos.Products.DecrementStock(ctx, product.ID, line.Quantity); err != nil {
				return err
			}
			product.Stock -= line.Quantity

			order.Items = append(order.Items, models.OrderItem{
				ProductID: product.ID,
				Quantity:  line.Quantity,
				UnitPrice: product.Price,
				Subtotal:  subtotal.InexactFloat64(),
				Product:   product,
			})
			total = total.Add(subtotal)
		}

		order.TotalAmount = total.Round(2).InexactFloat64()
		return repos.Orders.Create(ctx, order)
	})
	if err != nil {
		return nil, spanError(span, err)
	}

	span.SetAttributes(attribute.String("order.id", order.ID))
	log.Info().Str("order_id", order.ID).Str("user_id", order.UserID).
		Float64("total", order.TotalAmount).Int("lines", len(order.Items)).Msg("Order created")
	publishOrderEvent(s.publisher, EventOrderCreated, order)
	return order, nil
}

// UpdateOrder overwrites the fields present in the patch. Totals and stock
// are not touched; status is free text.
func (s *OrderService) UpdateOrder(ctx context.Context, id string, patch OrderPatch) (*models.Order, error) {
	ctx, span := tracer.Start(ctx, "OrderService.UpdateOrder", trace.WithAttributes(attribute.String("order.id", id)))
	defer span.End()

	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, spanError(span, err)
	}

	if patch.Status != nil {
		// A blank status keeps the current one.
		if status := strings.TrimSpace(*patch.Status); status != "" {
			order.Status = status
		}
	}
	if patch.Address.Set {
		order.Address = patch.Address.Value
	}
	if patch.Meta != nil {
		order.Meta = patch.Meta
	}

	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, spanError(span, err)
	}
	publishOrderEvent(s.publisher, EventOrderUpdated, order)
	return order, nil
}

// DeleteOrder removes the order and gives every reserved unit back to its
// product. Lines whose product has since been deleted are skipped.
func (s *OrderService) DeleteOrder(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "OrderService.DeleteOrder", trace.WithAttributes(attribute.String("order.id", id)))
	defer span.End()

	var deleted *models.Order
	err := s.tx.Transaction(ctx, func(repos repositories.TxRepositories) error {
		order, err := repos.Orders.GetByID(ctx, id)
		if err != nil {
			return err
		}
		// Delete first: a concurrent delete of the same order fails here
		// with not-found before any stock is restored twice.
		if err := repos.Orders.Delete(ctx, id); err != nil {
			return err
		}
		for _, it := range order.Items {
			ok, err := repos.Products.IncrementStock(ctx, it.ProductID, it.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				log.Warn().Str("order_id", id).Str("product_id", it.ProductID).Msg("Product gone, stock not restored")
			}
		}
		deleted = order
		return nil
	})
	if err != nil {
		return spanError(span, err)
	}

	log.Info().Str("order_id", id).Msg("Order deleted")
	publishOrderEvent(s.publisher, EventOrderDeleted, deleted)
	return nil
}

func spanError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
