package middleware

import (
	"strings"

	"orderapi/internal/apperr"
	"orderapi/internal/models"
	"orderapi/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

const claimsKey = "claims"

// TokenVerifier checks an access token and returns its claims.
// *services.TokenService satisfies it.
type TokenVerifier interface {
	Verify(token string) (*services.Claims, error)
}

// AuthRequired is a Fiber middleware to check for a valid JWT token.
func AuthRequired(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Expected format: "Bearer <token>"
		token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return apperr.ErrMissingAuthHeader
		}

		claims, err := verifier.Verify(token)
		if err != nil {
			log.Debug().Err(err).Str("path", c.Path()).Msg("JWT validation failed")
			if _, ok := apperr.From(err); ok {
				return err
			}
			return apperr.ErrInvalidToken
		}

		// Store claims in Fiber context for subsequent handlers
		c.Locals(claimsKey, claims)
		return c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

// CurrentClaims returns the claims stored by AuthRequired.
func CurrentClaims(c *fiber.Ctx) (*services.Claims, bool) {
	claims, ok := c.Locals(claimsKey).(*services.Claims)
	return claims, ok && claims != nil
}

// RequireCapability rejects callers whose role does not grant capability.
// It must run after AuthRequired.
func RequireCapability(capability models.Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := CurrentClaims(c)
		if !ok {
			return apperr.ErrMissingAuthHeader
		}
		if !claims.Role.Can(capability) {
			log.Warn().Str("user_id", claims.UserID()).Str("role", string(claims.Role)).
				Stringer("capability", capability).Str("path", c.Path()).Msg("Forbidden")
			return apperr.New(apperr.CodeForbidden, "Forbidden")
		}
		return c.Next()
	}
}
