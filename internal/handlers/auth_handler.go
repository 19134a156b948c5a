package handlers

import (
	"time"

	"orderapi/internal/apperr"
	"orderapi/internal/middleware"
	"orderapi/internal/models"
	"orderapi/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    newValidator(),
	}
}

// RegisterRoutes registers the authentication routes. Login is public; the
// rest go through requireAuth.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, requireAuth fiber.Handler) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Post("/register", requireAuth, middleware.RequireCapability(models.CapManageUsers), h.HandleRegister)
	authRoutes.Get("/me", requireAuth, h.HandleMe)
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin handles user login and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.validate.Struct(req); err != nil {
		return apperr.Invalid("Email and password are required")
	}

	token, err := h.authService.LoginUser(c.UserContext(), req.Email, req.Password)
	if err != nil {
		log.Info().Str("email", services.NormalizeEmail(req.Email)).Err(err).Msg("Login failed")
		return err
	}

	return ok(c, fiber.StatusOK, fiber.Map{
		"access_token": token,
		"token_type":   "Bearer",
	})
}

// RegisterRequest represents the request body for creating an account.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role"`
}

// HandleRegister handles new user registration. Admin only.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.validate.Struct(req); err != nil {
		return apperr.Invalid("Email and password are required")
	}
	role, err := models.ParseRole(req.Role)
	if err != nil {
		return apperr.Invalid("%s", err.Error())
	}

	user, err := h.authService.RegisterUser(c.UserContext(), req.Email, req.Password, role)
	if err != nil {
		return err
	}

	log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("User registered")
	return ok(c, fiber.StatusCreated, fiber.Map{
		"id":    user.ID,
		"email": user.Email,
		"role":  user.Role,
	})
}

// HandleMe returns the identity carried by the caller's token.
func (h *AuthHandler) HandleMe(c *fiber.Ctx) error {
	claims, found := middleware.CurrentClaims(c)
	if !found {
		return apperr.ErrMissingAuthHeader
	}
	return ok(c, fiber.StatusOK, fiber.Map{
		"id":         claims.UserID(),
		"email":      claims.Email,
		"role":       claims.Role,
		"expires_at": time.Unix(claims.ExpiresAt, 0).UTC(),
	})
}
