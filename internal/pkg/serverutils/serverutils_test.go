package serverutils

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"offline-chat-be/internal/apperror"
	"offline-chat-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{apperror.Validation("name", "is required"), fiber.StatusBadRequest},
		{&apperror.DuplicateNameError{Entity: "category", Name: "Work"}, fiber.StatusConflict},
		{&apperror.ProtectedEntityError{Entity: "personality", Id: "default"}, fiber.StatusForbidden},
		{fmt.Errorf("lookup: %w", apperror.NotFound("chat", "x")), fiber.StatusNotFound},
		{&apperror.NetworkError{Op: "Model error", Err: errors.New("refused")}, fiber.StatusBadGateway},
		{&apperror.CancelledError{}, fiber.StatusOK},
		{&apperror.RestoreFormatError{Message: "bad"}, fiber.StatusUnprocessableEntity},
		{fiber.ErrUpgradeRequired, fiber.StatusUpgradeRequired},
		{errors.New("boom"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestErrorHandlerMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware(logger.NewNopLogger()))
	app.Get("/missing", func(ctx *fiber.Ctx) error { return apperror.NotFound("chat", "c1") })
	app.Get("/stopped", func(ctx *fiber.Ctx) error { return &apperror.CancelledError{Reason: "Processing was stopped"} })
	app.Get("/boom", func(ctx *fiber.Ctx) error { return errors.New("secret detail") })

	read := func(path string) (int, string) {
		res, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
		require.NoError(t, err)
		defer res.Body.Close()
		body, err := io.ReadAll(res.Body)
		require.NoError(t, err)
		return res.StatusCode, string(body)
	}

	status, body := read("/missing")
	assert.Equal(t, http.StatusNotFound, status)
	assert.JSONEq(t, `{"success":false,"code":404,"message":"chat \"c1\" not found","data":null}`, body)

	status, body = read("/stopped")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"success":true,"code":200,"message":"Processing was stopped","data":{"stopped":true,"error":"Processing was stopped"}}`, body)

	status, body = read("/boom")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.NotContains(t, body, "secret detail")
}

func TestValidateRequest(t *testing.T) {
	type request struct {
		Name string `json:"new_name" validate:"required"`
		Size string `json:"size" validate:"omitempty,oneof=small medium large"`
	}

	assert.NoError(t, ValidateRequest(request{Name: "ok", Size: "small"}))

	err := ValidateRequest(request{})
	var validation *apperror.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "new_name", validation.Field)
	assert.Equal(t, "new_name: is required", err.Error())

	err = ValidateRequest(request{Name: "ok", Size: "huge"})
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "size", validation.Field)
	assert.Equal(t, "must be one of [small medium large]", validation.Message)
}
