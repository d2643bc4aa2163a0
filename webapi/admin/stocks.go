package admin

import (
	"github.com/amirasaad/brokerage/pkg/dto"
	"github.com/amirasaad/brokerage/pkg/middleware"
	refsvc "github.com/amirasaad/brokerage/pkg/service/reference"
	"github.com/amirasaad/brokerage/webapi/common"
	"github.com/gofiber/fiber/v2"
)

func ListStocks(refSvc *refsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stocks, err := refSvc.ListStocks(c.UserContext(), true)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't list securities", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Securities fetched", stocks)
	}
}

// CreateStock lists a security with its first price.
// @Summary List a security
// @Tags admin
// @Accept json
// @Produce json
// @Param request body StockInput true "Security data"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /api/admin/exchange/stocks [post]
// @Security BearerAuth
func CreateStock(refSvc *refsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[StockInput](c)
		if input == nil {
			return err
		}
		sec, err := refSvc.CreateStock(c.UserContext(), dto.StockCreate{
			Name:          input.Name,
			Ticker:        input.Ticker,
			ISIN:          input.ISIN,
			LotSize:       input.LotSize,
			Price:         input.Price,
			CurrencyID:    input.CurrencyID,
			PaysDividends: input.PaysDividends,
			StaffID:       middleware.Caller(c).ID,
		})
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't create security", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Security created", sec)
	}
}

// UpdateStock changes a security. A new price is appended to its history.
// @Summary Update a security
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Security ID"
// @Param request body StockUpdateInput true "Fields to change"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /api/admin/exchange/stocks/{id} [put]
// @Security BearerAuth
func UpdateStock(refSvc *refsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParamID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid security ID", err)
		}
		input, err := common.BindAndValidate[StockUpdateInput](c)
		if input == nil {
			return err
		}
		sec, err := refSvc.UpdateStock(c.UserContext(), id, dto.StockUpdate{
			Name:          input.Name,
			Ticker:        input.Ticker,
			ISIN:          input.ISIN,
			LotSize:       input.LotSize,
			Price:         input.Price,
			CurrencyID:    input.CurrencyID,
			PaysDividends: input.PaysDividends,
			StaffID:       middleware.Caller(c).ID,
		})
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't update security", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Security updated", sec)
	}
}

func ArchiveStock(refSvc *refsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParamID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid security ID", err)
		}
		if err := refSvc.ArchiveStock(c.UserContext(), id, middleware.Caller(c).ID); err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't archive security", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Security archived", fiber.Map{"id": id})
	}
}

func DeleteStock(refSvc *refsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParamID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid security ID", err)
		}
		if err := refSvc.DeleteStock(c.UserContext(), id); err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't delete security", err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
