package admin

import (
	"time"

	"github.com/amirasaad/brokerage/pkg/dto"
	refsvc "github.com/amirasaad/brokerage/pkg/service/reference"
	"github.com/amirasaad/brokerage/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// ListCurrencies returns currencies with their latest rate.
// @Summary List currencies
// @Tags admin
// @Produce json
// @Success 200 {object} common.Response
// @Router /api/admin/currencies [get]
// @Security BearerAuth
func ListCurrencies(refSvc *refsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		currencies, err := refSvc.ListCurrencies(c.UserContext())
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't list currencies", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Currencies fetched", currencies)
	}
}

// CreateCurrency adds a currency and its rate for today.
// @Summary Create a currency
// @Tags admin
// @Accept json
// @Produce json
// @Param request body CurrencyInput true "Currency data"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Router /api/admin/currencies [post]
// @Security BearerAuth
func CreateCurrency(refSvc *refsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[CurrencyInput](c)
		if input == nil {
			return err
		}
		cur, err := refSvc.CreateCurrency(c.UserContext(), dto.CurrencyCreate{
			Code:       input.Code,
			Symbol:     input.Symbol,
			RateToBase: input.RateToBase,
		})
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't create currency", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Currency created", cur)
	}
}

func UpdateCurrency(refSvc *refsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParamID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid currency ID", err)
		}
		input, err := common.BindAndValidate[CurrencyUpdateInput](c)
		if input == nil {
			return err
		}
		err = refSvc.UpdateCurrency(c.UserContext(), id, dto.CurrencyUpdate{
			Code:       input.Code,
			Symbol:     input.Symbol,
			RateToBase: input.RateToBase,
		})
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't update currency", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Currency updated", fiber.Map{"id": id})
	}
}

func AddRate(refSvc *refsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParamID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid currency ID", err)
		}
		input, err := common.BindAndValidate[RateInput](c)
		if input == nil {
			return err
		}
		at := parseDate(input.Date)
		if at.IsZero() {
			at = time.Now()
		}
		if err := refSvc.AddRate(c.UserContext(), id, input.Rate, at); err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't store rate", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Rate stored", fiber.Map{
			"currency_id": id,
			"rate":        input.Rate,
			"date":        at.Format(dateLayout),
		})
	}
}

// ArchiveCurrency hides a currency from new accounts and securities.
// @Summary Archive a currency
// @Tags admin
// @Param id path int true "Currency ID"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /api/admin/archive_currency/{id} [post]
// @Security BearerAuth
func ArchiveCurrency(refSvc *refsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParamID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid currency ID", err)
		}
		if err := refSvc.ArchiveCurrency(c.UserContext(), id); err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't archive currency", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Currency archived", fiber.Map{"id": id})
	}
}

func DeleteCurrency(refSvc *refsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParamID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid currency ID", err)
		}
		if err := refSvc.DeleteCurrency(c.UserContext(), id); err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't delete currency", err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
