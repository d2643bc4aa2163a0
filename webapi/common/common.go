package common

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/amirasaad/brokerage/pkg/domain"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// Response defines the standard API response structure for success cases.
type Response struct {
	Status  int    `json:"status"`         // HTTP status code
	Message string `json:"message"`        // Human-readable explanation
	Data    any    `json:"data,omitempty"` // Response data
}

// ProblemDetails follows RFC 9457 Problem Details for HTTP APIs.
type ProblemDetails struct {
	Type     string       `json:"type,omitempty"`     // A URI reference that identifies the problem type
	Title    string       `json:"title"`              // Short, human-readable summary
	Status   int          `json:"status"`             // HTTP status code
	Detail   string       `json:"detail,omitempty"`   // Human-readable explanation
	Instance string       `json:"instance,omitempty"` // URI reference that identifies the specific occurrence
	Errors   []FieldError `json:"errors,omitempty"`   // Field-level validation failures
}

// FieldError names a request field and what is wrong with it.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

const internalDetail = "An unexpected error occurred"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			name, _, _ = strings.Cut(f.Tag.Get("query"), ",")
		}
		return name
	})
	return v
}

// ErrorToStatusCode maps domain error kinds to HTTP status codes.
func ErrorToStatusCode(err error) int {
	switch {
	case err == nil:
		return fiber.StatusOK
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrConcurrentModification):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrAlreadyExists),
		errors.Is(err, domain.ErrStateConflict),
		errors.Is(err, domain.ErrInvalidReference):
		return fiber.StatusBadRequest
	default:
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return fe.Code
		}
		return fiber.StatusInternalServerError
	}
}

// ProblemDetailsJSON writes an RFC 9457 response for err. The optional args
// override the detail (a string) and the status (an int) derived from err.
// Errors that are not domain errors never leak their message to the caller.
func ProblemDetailsJSON(c *fiber.Ctx, title string, err error, args ...any) error {
	status := ErrorToStatusCode(err)
	if err == nil {
		status = fiber.StatusBadRequest
	}
	pd := ProblemDetails{
		Type:     "about:blank",
		Title:    title,
		Instance: c.OriginalURL(),
	}

	var de *domain.Error
	switch {
	case errors.As(err, &de):
		pd.Detail = de.Error()
		if de.Field() != "" {
			pd.Errors = []FieldError{{Field: de.Field(), Message: de.Error()}}
		}
	case status == fiber.StatusInternalServerError:
		log.Errorw("Request failed", "path", c.Path(), "error", err)
		pd.Detail = internalDetail
	case err != nil && status < fiber.StatusInternalServerError:
		pd.Detail = err.Error()
	}

	for _, arg := range args {
		switch v := arg.(type) {
		case string:
			pd.Detail = v
		case int:
			status = v
		case []FieldError:
			pd.Errors = v
		}
	}
	pd.Status = status
	return c.Status(status).JSON(pd, "application/problem+json")
}

// SuccessResponseJSON wraps data in the standard envelope.
func SuccessResponseJSON(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Response{
		Status:  status,
		Message: message,
		Data:    data,
	})
}

// BindAndValidate parses the request body and validates it using go-playground/validator.
// On failure the problem response is already written and the returned error
// is what the handler should return.
func BindAndValidate[T any](c *fiber.Ctx) (*T, error) {
	var input T
	if err := c.BodyParser(&input); err != nil {
		return nil, ProblemDetailsJSON(c, "Invalid request body", nil, err.Error(), fiber.StatusBadRequest)
	}
	if err := validate.Struct(input); err != nil {
		return nil, validationProblem(c, err)
	}
	return &input, nil
}

// BindQuery parses and validates query parameters.
func BindQuery[T any](c *fiber.Ctx) (*T, error) {
	var input T
	if err := c.QueryParser(&input); err != nil {
		return nil, ProblemDetailsJSON(c, "Invalid query", nil, err.Error(), fiber.StatusBadRequest)
	}
	if err := validate.Struct(input); err != nil {
		return nil, validationProblem(c, err)
	}
	return &input, nil
}

func validationProblem(c *fiber.Ctx, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return ProblemDetailsJSON(c, "Validation failed", nil, err.Error(), fiber.StatusBadRequest)
	}
	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return ProblemDetailsJSON(c, "Validation failed", nil, fields[0].Message, fields, fiber.StatusBadRequest)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "min", "gte":
		return fe.Field() + " must be at least " + fe.Param()
	case "max", "lte":
		return fe.Field() + " must be at most " + fe.Param()
	case "len":
		return fe.Field() + " must be exactly " + fe.Param() + " characters long"
	case "oneof":
		return fe.Field() + " must be one of " + fe.Param()
	case "numeric":
		return fe.Field() + " must contain only digits"
	case "gt":
		return fe.Field() + " must be greater than " + fe.Param()
	}
	return fe.Field() + " is invalid"
}

// ParamID reads a positive integer path parameter.
func ParamID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewFieldError(name, name+" must be a positive integer")
	}
	return id, nil
}
