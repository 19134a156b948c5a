package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"orderapi/internal/apperr"
	"orderapi/internal/models"
	"orderapi/internal/repositories"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles business logic for authentication and account management.
type AuthService struct {
	userRepo repositories.UserRepository
	tokens   *TokenService
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, tokens *TokenService) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RegisterUser creates an account with a hashed password.
func (s *AuthService) RegisterUser(ctx context.Context, email, password string, role models.Role) (*models.User, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperr.Invalid("Email and password are required")
	}
	if !role.Valid() {
		return nil, apperr.Invalid("unknown role %q", role)
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, apperr.Conflict("Email already registered")
	}
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate checks the credentials and returns the matching user.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperr.Invalid("Email and password are required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			// Same answer as a wrong password: do not reveal which emails exist.
			return nil, apperr.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.ErrInvalidCredentials
	}
	return user, nil
}

// LoginUser authenticates a user and returns a signed access token.
func (s *AuthService) LoginUser(ctx context.Context, email, password string) (string, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return "", err
	}
	return s.tokens.Issue(user)
}

// EnsureAdmin creates the seed admin account unless the email is already taken.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	email = NormalizeEmail(email)
	_, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return err
	}
	if _, err := s.RegisterUser(ctx, email, password, models.RoleAdmin); err != nil {
		return fmt.Errorf("failed to seed admin: %w", err)
	}
	log.Info().Str("email", email).Msg("Seeded admin account")
	return nil
}

// GetUser returns a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// ListUsers returns one page of accounts.
func (s *AuthService) ListUsers(ctx context.Context, page repositories.Page) ([]models.User, int64, error) {
	return s.userRepo.List(ctx, page)
}
