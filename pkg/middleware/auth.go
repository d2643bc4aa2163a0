// Package middleware holds the fiber middleware that authenticates requests
// and enforces the role guards of each route group.
package middleware

import (
	"context"
	"errors"

	"github.com/amirasaad/brokerage/pkg/config"
	"github.com/amirasaad/brokerage/pkg/domain"
	"github.com/amirasaad/brokerage/pkg/domain/identity"
	"github.com/amirasaad/brokerage/pkg/service/auth"
	"github.com/amirasaad/brokerage/webapi/common"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenKey    = "token"
	identityKey = "identity"
)

var (
	ErrMissingToken = domain.NewError(domain.ErrUnauthorized, "missing or malformed token")
	ErrForbidden    = domain.NewError(domain.ErrForbidden, "insufficient rights for this resource")
)

// IdentityResolver turns verified claims into a live identity.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, claims *auth.Claims) (identity.Identity, error)
}

// JwtProtected verifies the bearer token and resolves the caller. Every
// failure is a 401; nothing downstream runs without an identity in Locals.
func JwtProtected(cfg *config.Jwt, resolver IdentityResolver) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: []byte(cfg.Secret)},
		Claims:       &auth.Claims{},
		ContextKey:   tokenKey,
		ErrorHandler: jwtError,
		SuccessHandler: func(c *fiber.Ctx) error {
			token, ok := c.Locals(tokenKey).(*jwt.Token)
			if !ok {
				return common.ProblemDetailsJSON(c, "Unauthorized", ErrMissingToken)
			}
			claims, ok := token.Claims.(*auth.Claims)
			if !ok {
				return common.ProblemDetailsJSON(c, "Unauthorized", auth.ErrInvalidToken)
			}
			id, err := resolver.ResolveIdentity(c.UserContext(), claims)
			if err != nil {
				return common.ProblemDetailsJSON(c, "Unauthorized", err)
			}
			c.Locals(identityKey, id)
			return c.Next()
		},
	})
}

func jwtError(c *fiber.Ctx, err error) error {
	if errors.Is(err, jwtware.ErrJWTMissingOrMalformed) {
		return common.ProblemDetailsJSON(c, "Unauthorized", ErrMissingToken)
	}
	return common.ProblemDetailsJSON(c, "Unauthorized", auth.ErrInvalidToken)
}

// Identity returns the caller resolved by JwtProtected.
func Identity(c *fiber.Ctx) (identity.Identity, bool) {
	id, ok := c.Locals(identityKey).(identity.Identity)
	return id, ok
}

// Caller is Identity for handlers mounted behind a guard.
func Caller(c *fiber.Ctx) identity.Identity {
	id, _ := Identity(c)
	return id
}

// RequireClient admits clients only.
func RequireClient() fiber.Handler {
	return guard(identity.Identity.IsClient)
}

// RequireStaff admits any staff member.
func RequireStaff() fiber.Handler {
	return guard(identity.Identity.IsStaff)
}

// RequireRights admits staff holding one of the given rights levels.
func RequireRights(levels ...int64) fiber.Handler {
	return guard(func(id identity.Identity) bool {
		return id.HasRights(levels...)
	})
}

func guard(allow func(identity.Identity) bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := Identity(c)
		if !ok {
			return common.ProblemDetailsJSON(c, "Unauthorized", ErrMissingToken)
		}
		if !allow(id) {
			return common.ProblemDetailsJSON(c, "Forbidden", ErrForbidden)
		}
		return c.Next()
	}
}
