package testutils

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/amirasaad/brokerage/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

// MakeRequestWithApp sends one request through app, with an optional JSON
// body and bearer token.
func MakeRequestWithApp(tb testing.TB, app *fiber.App, method, path, body, token string) *http.Response {
	tb.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(tb, err)
	return resp
}

// DecodeResponse reads a success envelope and unmarshals its data into T.
func DecodeResponse[T any](resp *http.Response) (T, error) {
	var out T
	defer resp.Body.Close() //nolint: errcheck
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return out, err
	}
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return out, err
	}
	err = json.Unmarshal(envelope.Data, &out)
	return out, err
}

// DecodeProblem reads a problem details body.
func DecodeProblem(resp *http.Response) (common.ProblemDetails, error) {
	var pd common.ProblemDetails
	defer resp.Body.Close() //nolint: errcheck
	err := json.NewDecoder(resp.Body).Decode(&pd)
	return pd, err
}
