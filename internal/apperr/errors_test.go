package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"orderapi/internal/apperr"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesByCode(t *testing.T) {
	err := apperr.New(apperr.CodeInsufficientStock, "insufficient stock for product %s", "p-1")

	assert.True(t, errors.Is(err, apperr.ErrInsufficientStock))
	assert.False(t, errors.Is(err, apperr.ErrProductUnavailable))
	assert.Equal(t, "insufficient stock for product p-1", err.Error())

	wrapped := fmt.Errorf("create order: %w", err)
	assert.True(t, errors.Is(wrapped, apperr.ErrInsufficientStock))
}

func TestFrom(t *testing.T) {
	wrapped := fmt.Errorf("lookup: %w", apperr.NotFound("order with ID %s not found", "o-1"))
	e, ok := apperr.From(wrapped)
	assert.True(t, ok)
	assert.Equal(t, apperr.CodeNotFound, e.Code)
	assert.Equal(t, http.StatusNotFound, e.Status())

	_, ok = apperr.From(errors.New("connection reset"))
	assert.False(t, ok)
}

func TestStatusFor(t *testing.T) {
	cases := map[apperr.Code]int{
		apperr.CodeValidation:         http.StatusBadRequest,
		apperr.CodeEmptyCart:          http.StatusBadRequest,
		apperr.CodeInvalidQuantity:    http.StatusBadRequest,
		apperr.CodeProductUnavailable: http.StatusBadRequest,
		apperr.CodeInsufficientStock:  http.StatusBadRequest,
		apperr.CodeMissingAuthHeader:  http.StatusUnauthorized,
		apperr.CodeInvalidCredentials: http.StatusUnauthorized,
		apperr.CodeExpiredToken:       http.StatusUnauthorized,
		apperr.CodeInvalidToken:       http.StatusUnauthorized,
		apperr.CodeForbidden:          http.StatusForbidden,
		apperr.CodeNotFound:           http.StatusNotFound,
		apperr.CodeConflict:           http.StatusConflict,
		apperr.CodeInternal:           http.StatusInternalServerError,
	}
	for code, status := range cases {
		assert.Equal(t, status, apperr.StatusFor(code), string(code))
	}
}
