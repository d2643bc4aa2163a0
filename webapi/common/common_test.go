package common

import (
	"errors"
	"testing"

	"github.com/amirasaad/brokerage/pkg/domain"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", domain.NewError(domain.ErrNotFound, "account not found"), fiber.StatusNotFound},
		{"validation", domain.NewFieldError("amount", "bad"), fiber.StatusBadRequest},
		{"already exists", domain.NewError(domain.ErrAlreadyExists, "taken"), fiber.StatusBadRequest},
		{"state conflict", domain.NewError(domain.ErrStateConflict, "processed"), fiber.StatusBadRequest},
		{"invalid reference", domain.ErrInvalidReference, fiber.StatusBadRequest},
		{"unauthorized", domain.NewError(domain.ErrUnauthorized, "no"), fiber.StatusUnauthorized},
		{"forbidden", domain.NewError(domain.ErrForbidden, "no"), fiber.StatusForbidden},
		{"concurrent", domain.ErrConcurrentModification, fiber.StatusConflict},
		{"fiber error", fiber.ErrMethodNotAllowed, fiber.StatusMethodNotAllowed},
		{"unknown", errors.New("connection refused"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorToStatusCode(tt.err))
		})
	}
}

func TestProblemDetailsJSON(t *testing.T) {
	app := fiber.New()
	app.Get("/field", func(c *fiber.Ctx) error {
		return ProblemDetailsJSON(c, "Invalid amount", domain.NewFieldError("amount", "amount must not be zero"))
	})
	app.Get("/internal", func(c *fiber.Ctx) error {
		return ProblemDetailsJSON(c, "Internal Server Error", errors.New("pq: password authentication failed"))
	})
	app.Get("/override", func(c *fiber.Ctx) error {
		return ProblemDetailsJSON(c, "Gone", nil, "resource is gone", fiber.StatusGone)
	})

	resp := makeRequest(t, app, fiber.MethodGet, "/field", "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "application/problem+json", resp.Header.Get(fiber.HeaderContentType))
	pd, err := decodeProblem(resp)
	require.NoError(t, err)
	assert.Equal(t, "amount must not be zero", pd.Detail)
	assert.Equal(t, "/field", pd.Instance)
	assert.Equal(t, []FieldError{{Field: "amount", Message: "amount must not be zero"}}, pd.Errors)

	resp = makeRequest(t, app, fiber.MethodGet, "/internal", "")
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	pd, err = decodeProblem(resp)
	require.NoError(t, err)
	assert.NotContains(t, pd.Detail, "password")

	resp = makeRequest(t, app, fiber.MethodGet, "/override", "")
	assert.Equal(t, fiber.StatusGone, resp.StatusCode)
	pd, err = decodeProblem(resp)
	require.NoError(t, err)
	assert.Equal(t, "resource is gone", pd.Detail)
}

type loginInput struct {
	Login    string `json:"login" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func TestBindAndValidate(t *testing.T) {
	app := fiber.New()
	app.Post("/", func(c *fiber.Ctx) error {
		in, err := BindAndValidate[loginInput](c)
		if in == nil {
			return err
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "ok", in)
	})

	t.Run("valid", func(t *testing.T) {
		resp := makeRequest(t, app, fiber.MethodPost, "/", `{"login":"alice","email":"a@example.com","password":"x"}`)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		in, err := decodeResponse[loginInput](resp)
		require.NoError(t, err)
		assert.Equal(t, "alice", in.Login)
	})

	t.Run("malformed", func(t *testing.T) {
		resp := makeRequest(t, app, fiber.MethodPost, "/", `{"login":`)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("field errors use json names", func(t *testing.T) {
		resp := makeRequest(t, app, fiber.MethodPost, "/", `{"login":"al","email":"nope","password":"x"}`)
		require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		pd, err := decodeProblem(resp)
		require.NoError(t, err)
		require.Len(t, pd.Errors, 2)
		assert.Equal(t, "login", pd.Errors[0].Field)
		assert.Equal(t, "email", pd.Errors[1].Field)
	})
}

func TestParamID(t *testing.T) {
	app := fiber.New()
	app.Get("/:id", func(c *fiber.Ctx) error {
		id, err := ParamID(c, "id")
		if err != nil {
			return ProblemDetailsJSON(c, "Invalid id", err)
		}
		return c.JSON(id)
	})
	assert.Equal(t, fiber.StatusOK, makeRequest(t, app, fiber.MethodGet, "/42", "").StatusCode)
	assert.Equal(t, fiber.StatusBadRequest, makeRequest(t, app, fiber.MethodGet, "/abc", "").StatusCode)
	assert.Equal(t, fiber.StatusBadRequest, makeRequest(t, app, fiber.MethodGet, "/0", "").StatusCode)
}
