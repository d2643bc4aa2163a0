package admin

import (
	"github.com/amirasaad/brokerage/pkg/dto"
	refsvc "github.com/amirasaad/brokerage/pkg/service/reference"
	"github.com/amirasaad/brokerage/webapi/common"
	"github.com/gofiber/fiber/v2"
)

func ListBanks(refSvc *refsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		banks, err := refSvc.ListBanks(c.UserContext())
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't list banks", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Banks fetched", banks)
	}
}

// CreateBank registers a bank.
// @Summary Create a bank
// @Tags admin
// @Accept json
// @Produce json
// @Param request body BankInput true "Bank data"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Router /api/admin/banks [post]
// @Security BearerAuth
func CreateBank(refSvc *refsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[BankInput](c)
		if input == nil {
			return err
		}
		b, err := refSvc.CreateBank(c.UserContext(), bankWrite(input))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't create bank", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Bank created", b)
	}
}

func UpdateBank(refSvc *refsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParamID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid bank ID", err)
		}
		input, err := common.BindAndValidate[BankInput](c)
		if input == nil {
			return err
		}
		b, err := refSvc.UpdateBank(c.UserContext(), id, bankWrite(input))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't update bank", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Bank updated", b)
	}
}

func DeleteBank(refSvc *refsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParamID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid bank ID", err)
		}
		if err := refSvc.DeleteBank(c.UserContext(), id); err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't delete bank", err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func bankWrite(in *BankInput) dto.BankWrite {
	return dto.BankWrite{
		Name:              in.Name,
		INN:               in.INN,
		OGRN:              in.OGRN,
		BIK:               in.BIK,
		LicenseExpiryDate: parseDate(in.LicenseExpiryDate),
	}
}
