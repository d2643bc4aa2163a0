// Package verifier serves passport verification under /api/verifier.
package verifier

import (
	passportsvc "github.com/amirasaad/brokerage/pkg/service/passport"
	"github.com/amirasaad/brokerage/webapi/common"
	"github.com/gofiber/fiber/v2"
)

func Routes(router fiber.Router, passportSvc *passportsvc.Service, guards ...fiber.Handler) {
	r := router.Group("", guards...)
	r.Post("/:user_id/verify_passport", VerifyPassport(passportSvc))
	r.Get("/user/:user_id/passport", GetPassport(passportSvc))
	r.Delete("/user/:user_id/passport", DeletePassport(passportSvc))
}

// VerifyPassport marks the user verified and opens the depository account.
// @Summary Verify a passport
// @Tags verifier
// @Produce json
// @Param user_id path int true "User ID"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /api/verifier/{user_id}/verify_passport [post]
// @Security BearerAuth
func VerifyPassport(passportSvc *passportsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.ParamID(c, "user_id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid user ID", err)
		}
		acc, err := passportSvc.Verify(c.UserContext(), userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't verify passport", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Passport verified", acc)
	}
}

// GetPassport returns the user's actual passport.
// @Summary Get a passport
// @Tags verifier
// @Produce json
// @Param user_id path int true "User ID"
// @Success 200 {object} common.Response
// @Failure 404 {object} common.ProblemDetails
// @Router /api/verifier/user/{user_id}/passport [get]
// @Security BearerAuth
func GetPassport(passportSvc *passportsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.ParamID(c, "user_id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid user ID", err)
		}
		p, err := passportSvc.GetActual(c.UserContext(), userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't get passport", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Passport fetched", p)
	}
}

// DeletePassport removes the user's actual passport.
func DeletePassport(passportSvc *passportsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.ParamID(c, "user_id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid user ID", err)
		}
		if err := passportSvc.DeleteActual(c.UserContext(), userID); err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't delete passport", err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
