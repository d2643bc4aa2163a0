// Package public serves the unauthenticated part of the API: registration,
// login, the exchange screen and reference table dumps.
package public

import (
	"github.com/amirasaad/brokerage/pkg/dto"
	"github.com/amirasaad/brokerage/pkg/middleware"
	authsvc "github.com/amirasaad/brokerage/pkg/service/auth"
	refsvc "github.com/amirasaad/brokerage/pkg/service/reference"
	usersvc "github.com/amirasaad/brokerage/pkg/service/user"
	"github.com/amirasaad/brokerage/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// Routes mounts the public endpoints. protected authenticates the caller of
// the exchange screen.
func Routes(
	router fiber.Router,
	authSvc *authsvc.Service,
	userSvc *usersvc.Service,
	refSvc *refsvc.Service,
	protected fiber.Handler,
) {
	router.Post("/register/user", RegisterUser(userSvc))
	router.Post("/login/user", LoginUser(authSvc))
	router.Post("/login/staff", LoginStaff(authSvc))
	router.Get("/exchange/stocks", protected, ListStocks(refSvc))
	router.Get("/:table", Table(refSvc))
}

// RegisterUser creates a new client.
// @Summary Register a client
// @Description Create an unverified client account with login, email and password
// @Tags public
// @Accept json
// @Produce json
// @Param request body RegisterInput true "Registration data"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 429 {object} common.ProblemDetails
// @Failure 500 {object} common.ProblemDetails
// @Router /api/public/register/user [post]
func RegisterUser(userSvc *usersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[RegisterInput](c)
		if input == nil {
			return err // error response already written
		}
		u, err := userSvc.Register(c.UserContext(), dto.UserCreate{
			Login:    input.Login,
			Email:    input.Email,
			Password: input.Password,
		})
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't register user", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "User registered", u)
	}
}

// LoginUser authenticates a client and returns a bearer token.
// @Summary Client login
// @Tags public
// @Accept json
// @Produce json
// @Param request body LoginInput true "Login credentials"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 401 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails
// @Router /api/public/login/user [post]
func LoginUser(authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[LoginInput](c)
		if input == nil {
			return err
		}
		token, err := authSvc.LoginUser(c.UserContext(), input.Login, input.Password)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Login failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Success login", token)
	}
}

// LoginStaff authenticates a staff member and returns a bearer token.
// @Summary Staff login
// @Tags public
// @Accept json
// @Produce json
// @Param request body LoginInput true "Login credentials"
// @Success 200 {object} common.Response
// @Failure 401 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails
// @Router /api/public/login/staff [post]
func LoginStaff(authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[LoginInput](c)
		if input == nil {
			return err
		}
		token, err := authSvc.LoginStaff(c.UserContext(), input.Login, input.Password)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Login failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Success login", token)
	}
}

// ListStocks returns the exchange screen. Staff also see archived securities.
// @Summary Exchange screen
// @Tags public
// @Produce json
// @Success 200 {object} common.Response
// @Failure 401 {object} common.ProblemDetails
// @Router /api/public/exchange/stocks [get]
// @Security BearerAuth
func ListStocks(refSvc *refsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := middleware.Caller(c)
		stocks, err := refSvc.ListStocks(c.UserContext(), caller.IsStaff())
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't list securities", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Securities fetched", stocks)
	}
}

// Table dumps a reference table.
// @Summary Reference table
// @Tags public
// @Produce json
// @Param table path string true "Table name"
// @Success 200 {object} common.Response
// @Failure 404 {object} common.ProblemDetails
// @Router /api/public/{table} [get]
func Table(refSvc *refsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := refSvc.PublicTable(c.UserContext(), c.Params("table"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't read table", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Table fetched", rows)
	}
}
