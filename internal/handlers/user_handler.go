package handlers

import (
	"orderapi/internal/middleware"
	"orderapi/internal/models"
	"orderapi/internal/services"

	"github.com/gofiber/fiber/v2"
)

// UserHandler exposes a read-only view of accounts to admins.
type UserHandler struct {
	authService *services.AuthService
}

func NewUserHandler(authService *services.AuthService) *UserHandler {
	return &UserHandler{authService: authService}
}

func (h *UserHandler) RegisterRoutes(router fiber.Router, requireAuth fiber.Handler) {
	userRoutes := router.Group("/users", requireAuth, middleware.RequireCapability(models.CapManageUsers))
	userRoutes.Get("/", h.HandleListUsers)
	userRoutes.Get("/:id", h.HandleGetUser)
}

func (h *UserHandler) HandleListUsers(c *fiber.Ctx) error {
	page := pageFromQuery(c)
	users, total, err := h.authService.ListUsers(c.UserContext(), page)
	if err != nil {
		return err
	}
	return okPage(c, users, page, total)
}

func (h *UserHandler) HandleGetUser(c *fiber.Ctx) error {
	user, err := h.authService.GetUser(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, user)
}
