// Package admin serves catalogue and staff maintenance under /api/admin.
package admin

import (
	"time"

	"github.com/amirasaad/brokerage/pkg/domain/reference"
	refsvc "github.com/amirasaad/brokerage/pkg/service/reference"
	staffsvc "github.com/amirasaad/brokerage/pkg/service/staff"
	"github.com/amirasaad/brokerage/webapi/common"
	"github.com/gofiber/fiber/v2"
)

const dateLayout = "2006-01-02"

// lookupPaths maps the URL segment of each editable dictionary to its table.
var lookupPaths = map[string]string{
	"rights_levels":         reference.TableRightsLevels,
	"employment_statuses":   reference.TableEmploymentStatuses,
	"verification_statuses": reference.TableVerificationStatuses,
	"user_block_statuses":   reference.TableUserRestrictionStatuses,
}

func Routes(
	router fiber.Router,
	refSvc *refsvc.Service,
	staffSvc *staffsvc.Service,
	guards ...fiber.Handler,
) {
	r := router.Group("", guards...)

	r.Get("/banks", ListBanks(refSvc))
	r.Post("/banks", CreateBank(refSvc))
	r.Put("/banks/:id", UpdateBank(refSvc))
	r.Delete("/banks/:id", DeleteBank(refSvc))

	r.Get("/currencies", ListCurrencies(refSvc))
	r.Post("/currencies", CreateCurrency(refSvc))
	r.Put("/currencies/:id", UpdateCurrency(refSvc))
	r.Delete("/currencies/:id", DeleteCurrency(refSvc))
	r.Post("/currencies/:id/rates", AddRate(refSvc))
	r.Post("/archive_currency/:id", ArchiveCurrency(refSvc))

	r.Get("/exchange/stocks", ListStocks(refSvc))
	r.Post("/exchange/stocks", CreateStock(refSvc))
	r.Put("/exchange/stocks/:id", UpdateStock(refSvc))
	r.Delete("/exchange/stocks/:id", DeleteStock(refSvc))
	r.Post("/exchange/stocks/:id/archive", ArchiveStock(refSvc))

	r.Post("/staff", CreateStaff(staffSvc))
	r.Put("/staff/:id", UpdateStaff(staffSvc))

	for path, table := range lookupPaths {
		r.Get("/"+path, ListLookups(refSvc, table))
		r.Post("/"+path, CreateLookup(refSvc, table))
		r.Put("/"+path+"/:id", RenameLookup(refSvc, table))
		r.Delete("/"+path+"/:id", DeleteLookup(refSvc, table))
	}

	r.Get("/tables", TableNames(refSvc))
	r.Get("/tables/:table", Table(refSvc))
}

// parseDate reads an optional YYYY-MM-DD value already checked by the validator.
func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, _ := time.Parse(dateLayout, s)
	return t
}

// TableNames lists the tables an administrator may dump.
func TableNames(refSvc *refsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Tables listed", refSvc.TableNames())
	}
}

// Table dumps any table. Password hashes are never serialized.
// @Summary Dump a table
// @Tags admin
// @Produce json
// @Param table path string true "Table name"
// @Success 200 {object} common.Response
// @Failure 404 {object} common.ProblemDetails
// @Router /api/admin/tables/{table} [get]
// @Security BearerAuth
func Table(refSvc *refsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := refSvc.Table(c.UserContext(), c.Params("table"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't read table", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Table fetched", rows)
	}
}
