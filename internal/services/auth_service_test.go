package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"orderapi/internal/apperr"
	"orderapi/internal/models"
	"orderapi/internal/repositories"
	"orderapi/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, page repositories.Page) ([]models.User, int64, error) {
	args := m.Called(ctx, page)
	return args.Get(0).([]models.User), args.Get(1).(int64), args.Error(2)
}

func newAuthService(repo *MockUserRepository) (*services.AuthService, *services.TokenService) {
	tokens := services.NewTokenService("test_jwt_secret", time.Hour)
	return services.NewAuthService(repo, tokens), tokens
}

func TestAuthService_RegisterUser(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	authService, _ := newAuthService(mockRepo)

	// Successful registration normalizes the email and hashes the password.
	mockRepo.On("GetByEmail", ctx, "new@example.com").Return(nil, apperr.NotFound("user not found")).Once()
	mockRepo.On("Create", ctx, mock.AnythingOfType("*models.User")).Return(nil).Once()

	user, err := authService.RegisterUser(ctx, "  New@Example.com ", "password123", models.RoleCustomer)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", user.Email)
	assert.Equal(t, models.RoleCustomer, user.Role)
	assert.NotEqual(t, "password123", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password123")))
	mockRepo.AssertExpectations(t)

	// Email already registered.
	mockRepo.On("GetByEmail", ctx, "new@example.com").Return(&models.User{ID: "1"}, nil).Once()
	_, err = authService.RegisterUser(ctx, "new@example.com", "password123", models.RoleCustomer)
	assert.True(t, errors.Is(err, apperr.ErrConflict))
	mockRepo.AssertExpectations(t)

	// Missing fields and unknown roles never reach the repository.
	_, err = authService.RegisterUser(ctx, "", "password123", models.RoleCustomer)
	assert.True(t, errors.Is(err, apperr.ErrInvalidInput))
	_, err = authService.RegisterUser(ctx, "x@example.com", "pw", models.Role("root"))
	assert.True(t, errors.Is(err, apperr.ErrInvalidInput))
	mockRepo.AssertNumberOfCalls(t, "GetByEmail", 2)
}

func TestAuthService_LoginUser(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	authService, tokens := newAuthService(mockRepo)

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &models.User{
		ID:           "user-123",
		Email:        "test@example.com",
		PasswordHash: string(hashedPassword),
		Role:         models.RoleAdmin,
	}

	// Successful login
	mockRepo.On("GetByEmail", ctx, "test@example.com").Return(user, nil).Once()
	token, err := authService.LoginUser(ctx, "Test@Example.com", "password123")
	require.NoError(t, err)
	claims, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID())
	assert.Equal(t, models.RoleAdmin, claims.Role)
	mockRepo.AssertExpectations(t)

	// Wrong password
	mockRepo.On("GetByEmail", ctx, "test@example.com").Return(user, nil).Once()
	token, err = authService.LoginUser(ctx, "test@example.com", "wrongpassword")
	assert.True(t, errors.Is(err, apperr.ErrInvalidCredentials))
	assert.Empty(t, token)
	mockRepo.AssertExpectations(t)

	// Unknown email looks exactly like a wrong password
	mockRepo.On("GetByEmail", ctx, "nobody@example.com").Return(nil, apperr.NotFound("user with email nobody@example.com not found")).Once()
	_, err = authService.LoginUser(ctx, "nobody@example.com", "password123")
	assert.True(t, errors.Is(err, apperr.ErrInvalidCredentials))
	mockRepo.AssertExpectations(t)

	// Store failures are not disguised as bad credentials
	mockRepo.On("GetByEmail", ctx, "test@example.com").Return(nil, fmt.Errorf("connection refused")).Once()
	_, err = authService.LoginUser(ctx, "test@example.com", "password123")
	require.Error(t, err)
	assert.False(t, errors.Is(err, apperr.ErrInvalidCredentials))
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	authService, _ := newAuthService(mockRepo)

	// Already present: nothing is created.
	mockRepo.On("GetByEmail", ctx, "admin@example.com").Return(&models.User{ID: "a"}, nil).Once()
	require.NoError(t, authService.EnsureAdmin(ctx, "admin@example.com", "admin123"))
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)

	// Missing: created with the admin role.
	mockRepo.On("GetByEmail", ctx, "admin@example.com").Return(nil, apperr.NotFound("missing")).Twice()
	mockRepo.On("Create", ctx, mock.MatchedBy(func(u *models.User) bool {
		return u.Email == "admin@example.com" && u.Role == models.RoleAdmin
	})).Return(nil).Once()
	require.NoError(t, authService.EnsureAdmin(ctx, "admin@example.com", "admin123"))
	mockRepo.AssertExpectations(t)
}
