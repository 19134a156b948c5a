package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"orderapi/internal/apperr"
	"orderapi/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/rs/zerolog/log"
)

type errorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Status  int    `json:"status"`
}

func ok(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(fiber.Map{"data": data})
}

func okPage(c *fiber.Ctx, data any, page repositories.Page, total int64) error {
	return c.JSON(fiber.Map{
		"data": data,
		"meta": fiber.Map{
			"page":     page.Page,
			"per_page": page.PerPage,
			"total":    total,
		},
	})
}

// ErrorHandler renders every error as {"error": {message, code, status}}.
// Errors outside the apperr taxonomy are logged and hidden behind a generic
// 500 message.
func ErrorHandler(c *fiber.Ctx, err error) error {
	body := errorBody{}

	var fe *fiber.Error
	if appErr, found := apperr.From(err); found {
		body.Status = appErr.Status()
		body.Code = string(appErr.Code)
		body.Message = appErr.Message
	} else if errors.As(err, &fe) {
		body.Status = fe.Code
		body.Code = strings.ToLower(strings.ReplaceAll(utils.StatusMessage(fe.Code), " ", "_"))
		body.Message = fe.Message
	}

	if body.Status == 0 || body.Status >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("Unhandled error")
		body = errorBody{
			Message: "Internal server error",
			Code:    string(apperr.CodeInternal),
			Status:  fiber.StatusInternalServerError,
		}
	}
	return c.Status(body.Status).JSON(fiber.Map{"error": body})
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return apperr.Invalid("Validation failed: %v", err)
	}
	msgs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		msgs = append(msgs, fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag()))
	}
	return apperr.Invalid("Validation failed: %s", strings.Join(msgs, "; "))
}

// parseBody decodes the JSON body into out. An empty body leaves out as is.
func parseBody(c *fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(out); err != nil {
		log.Debug().Err(err).Str("path", c.Path()).Msg("Error parsing request body")
		return apperr.Invalid("Invalid request body")
	}
	return nil
}

func pageFromQuery(c *fiber.Ctx) repositories.Page {
	return repositories.NewPage(c.QueryInt("page", 1), c.QueryInt("per_page", repositories.DefaultPerPage))
}
