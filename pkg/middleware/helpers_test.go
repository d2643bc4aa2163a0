package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/amirasaad/brokerage/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, app *fiber.App, path, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodGet, path, nil)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeProblem(resp *http.Response) (common.ProblemDetails, error) {
	var pd common.ProblemDetails
	defer resp.Body.Close() //nolint: errcheck
	err := json.NewDecoder(resp.Body).Decode(&pd)
	return pd, err
}
