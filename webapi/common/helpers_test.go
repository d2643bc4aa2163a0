package common

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func makeRequest(t *testing.T, app *fiber.App, method, path, body string) *http.Response {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeResponse[T any](resp *http.Response) (T, error) {
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

func decodeProblem(resp *http.Response) (ProblemDetails, error) {
	var pd ProblemDetails
	defer resp.Body.Close() //nolint: errcheck
	err := json.NewDecoder(resp.Body).Decode(&pd)
	return pd, err
}
