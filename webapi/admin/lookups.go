package admin

import (
	refsvc "github.com/amirasaad/brokerage/pkg/service/reference"
	"github.com/amirasaad/brokerage/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// The lookup handlers are bound to one dictionary table each.

func ListLookups(refSvc *refsvc.Service, table string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := refSvc.ListLookups(c.UserContext(), table)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't list statuses", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Statuses fetched", rows)
	}
}

func CreateLookup(refSvc *refsvc.Service, table string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[LookupInput](c)
		if input == nil {
			return err
		}
		l, err := refSvc.CreateLookup(c.UserContext(), table, input.Name)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't create status", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Status created", l)
	}
}

func RenameLookup(refSvc *refsvc.Service, table string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParamID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid status ID", err)
		}
		input, err := common.BindAndValidate[LookupInput](c)
		if input == nil {
			return err
		}
		l, err := refSvc.RenameLookup(c.UserContext(), table, id, input.Name)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't rename status", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Status renamed", l)
	}
}

func DeleteLookup(refSvc *refsvc.Service, table string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParamID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid status ID", err)
		}
		if err := refSvc.DeleteLookup(c.UserContext(), table, id); err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't delete status", err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
