// Package charts serves the aggregated depository views under /api/charts.
package charts

import (
	"github.com/amirasaad/brokerage/pkg/middleware"
	portfoliosvc "github.com/amirasaad/brokerage/pkg/service/portfolio"
	"github.com/amirasaad/brokerage/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// Routes mounts the charts. Both require authentication; each has its own guard.
func Routes(
	router fiber.Router,
	portfolioSvc *portfoliosvc.Service,
	clientOnly, staffOnly fiber.Handler,
) {
	router.Get("/depositary-balance", clientOnly, DepositoryBalance(portfolioSvc))
	router.Get("/depositary-operations", staffOnly, DepositoryOperations(portfolioSvc))
}

// DepositoryBalance returns the caller's positions per security.
// @Summary Depository balance chart
// @Tags charts
// @Produce json
// @Success 200 {object} common.Response
// @Router /api/charts/depositary-balance [get]
// @Security BearerAuth
func DepositoryBalance(portfolioSvc *portfoliosvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := portfolioSvc.BalanceChart(c.UserContext(), middleware.Caller(c).ID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't build chart", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Chart built", items)
	}
}

// DepositoryOperations aggregates depository movements across all clients.
// @Summary Depository operations chart
// @Tags charts
// @Produce json
// @Success 200 {object} common.Response
// @Router /api/charts/depositary-operations [get]
// @Security BearerAuth
func DepositoryOperations(portfolioSvc *portfoliosvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		summary, err := portfolioSvc.OperationsChart(c.UserContext())
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't build chart", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Chart built", summary)
	}
}
