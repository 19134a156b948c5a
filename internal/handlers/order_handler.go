package handlers

import (
	"encoding/json"

	"orderapi/internal/apperr"
	"orderapi/internal/middleware"
	"orderapi/internal/models"
	"orderapi/internal/repositories"
	"orderapi/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service *services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service: service,
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, requireAuth fiber.Handler) {
	orderRoutes := router.Group("/orders", requireAuth)
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Patch("/:id", h.HandleUpdateOrder)
	orderRoutes.Delete("/:id", middleware.RequireCapability(models.CapManageOrders), h.HandleDeleteOrder)
}

// HandleGetOrders lists orders, newest first, optionally filtered by status.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	filter := repositories.OrderFilter{
		Status: c.Query("status"),
		Page:   pageFromQuery(c),
	}
	orders, total, err := h.service.ListOrders(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return okPage(c, orders, filter.Page, total)
}

// HandleGetOrderByID retrieves a single order by its ID.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	order, err := h.service.GetOrderByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, order)
}

// Lines are checked one by one by the order service, so a missing
// product_id is reported in cart order like any other unavailable product.
type orderItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  *int   `json:"quantity"` // defaults to 1
}

type createOrderRequest struct {
	Items   []orderItemRequest `json:"items"`
	Address *string            `json:"address"`
	Meta    map[string]any     `json:"meta"`
}

// HandleCreateOrder places an order for the authenticated user.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	claims, found := middleware.CurrentClaims(c)
	if !found {
		return apperr.ErrMissingAuthHeader
	}

	var req createOrderRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	lines := make([]services.CartLine, 0, len(req.Items))
	for _, it := range req.Items {
		qty := 1
		if it.Quantity != nil {
			qty = *it.Quantity
		}
		lines = append(lines, services.CartLine{ProductID: it.ProductID, Quantity: qty})
	}

	order, err := h.service.CreateOrder(c.UserContext(), services.CreateOrderInput{
		UserID:  claims.UserID(),
		Items:   lines,
		Address: req.Address,
		Meta:    req.Meta,
	})
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusCreated, order)
}

type updateOrderRequest struct {
	Status  *string                 `json:"status"`
	Address models.Optional[string] `json:"address"`
	Meta    json.RawMessage         `json:"meta"`
}

// HandleUpdateOrder overwrites status, address and meta when present. An
// explicit null clears the address; a meta that is not an object is ignored.
func (h *OrderHandler) HandleUpdateOrder(c *fiber.Ctx) error {
	var req updateOrderRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	var meta map[string]any
	if len(req.Meta) > 0 {
		if err := json.Unmarshal(req.Meta, &meta); err != nil {
			meta = nil
		}
	}

	order, err := h.service.UpdateOrder(c.UserContext(), c.Params("id"), services.OrderPatch{
		Status:  req.Status,
		Address: req.Address,
		Meta:    meta,
	})
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, order)
}

// HandleDeleteOrder deletes an order and restores its stock.
func (h *OrderHandler) HandleDeleteOrder(c *fiber.Ctx) error {
	if err := h.service.DeleteOrder(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, fiber.Map{"deleted": true})
}
