package handlers

import (
	"orderapi/internal/apperr"
	"orderapi/internal/middleware"
	"orderapi/internal/models"
	"orderapi/internal/repositories"
	"orderapi/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// ProductHandler handles HTTP requests for the catalog.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: newValidator(),
	}
}

// RegisterRoutes registers the product routes. Reads are open to any
// authenticated user, writes need the catalog capability.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, requireAuth fiber.Handler) {
	manage := middleware.RequireCapability(models.CapManageCatalog)

	productRoutes := router.Group("/products", requireAuth)
	productRoutes.Get("/", h.HandleListProducts)
	productRoutes.Post("/", manage, h.HandleCreateProduct)
	productRoutes.Get("/:id", h.HandleGetProduct)
	productRoutes.Put("/:id", manage, h.HandleUpdateProduct)
	productRoutes.Patch("/:id", manage, h.HandleUpdateProduct)
	productRoutes.Delete("/:id", manage, h.HandleDeleteProduct)
}

// HandleListProducts lists products with optional name search and
// active-only filter.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	onlyActive := false
	switch c.Query("only_active") {
	case "1", "true", "True":
		onlyActive = true
	}
	filter := repositories.ProductFilter{
		Query:      c.Query("q"),
		OnlyActive: onlyActive,
		Page:       pageFromQuery(c),
	}

	products, total, err := h.service.ListProducts(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return okPage(c, products, filter.Page, total)
}

// HandleGetProduct retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	product, err := h.service.GetProductByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, product)
}

type createProductRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Stock       *int     `json:"stock" validate:"omitempty,gte=0"`
	IsActive    *bool    `json:"is_active"`
}

// HandleCreateProduct creates a new product. New products are active unless
// is_active is false.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req createProductRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(err)
	}
	if req.Price == nil {
		return apperr.Invalid("price must be a non-negative number")
	}

	product := &models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		IsActive:    true,
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := h.service.CreateProduct(c.UserContext(), product); err != nil {
		return err
	}
	log.Info().Str("product_id", product.ID).Str("name", product.Name).Msg("Product created")
	return ok(c, fiber.StatusCreated, product)
}

type updateProductRequest struct {
	Name        *string                 `json:"name"`
	Description models.Optional[string] `json:"description"`
	Price       *float64                `json:"price"`
	Stock       *int                    `json:"stock" validate:"omitempty,gte=0"`
	IsActive    *bool                   `json:"is_active"`
}

// HandleUpdateProduct overwrites the fields present in the body. An explicit
// null clears the description.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var req updateProductRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(err)
	}

	product, err := h.service.UpdateProduct(c.UserContext(), c.Params("id"), services.ProductPatch{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, product)
}

// HandleDeleteProduct deletes a product. Past order lines keep their
// product ID and price snapshot.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.service.DeleteProduct(c.UserContext(), id); err != nil {
		return err
	}
	log.Info().Str("product_id", id).Msg("Product deleted")
	return ok(c, fiber.StatusOK, fiber.Map{"deleted": true})
}
