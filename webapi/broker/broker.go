// Package broker serves proposal review under /api/broker.
package broker

import (
	"github.com/amirasaad/brokerage/pkg/middleware"
	proposalsvc "github.com/amirasaad/brokerage/pkg/service/proposal"
	"github.com/amirasaad/brokerage/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// ProcessInput approves (verify=true) or rejects a pending proposal.
type ProcessInput struct {
	Verify *bool `json:"verify" validate:"required"`
}

func Routes(router fiber.Router, proposalSvc *proposalsvc.Service, guards ...fiber.Handler) {
	r := router.Group("", guards...)
	r.Get("/proposal", ListProposals(proposalSvc))
	r.Get("/proposal/:id", GetProposal(proposalSvc))
	r.Patch("/proposal/:id/process", ProcessProposal(proposalSvc))
}

// ListProposals returns every proposal, newest first.
// @Summary List proposals
// @Tags broker
// @Produce json
// @Success 200 {object} common.Response
// @Failure 403 {object} common.ProblemDetails
// @Router /api/broker/proposal [get]
// @Security BearerAuth
func ListProposals(proposalSvc *proposalsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		proposals, err := proposalSvc.ListAll(c.UserContext())
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't list proposals", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Proposals fetched", proposals)
	}
}

// GetProposal returns one proposal.
// @Summary Get a proposal
// @Tags broker
// @Produce json
// @Param id path int true "Proposal ID"
// @Success 200 {object} common.Response
// @Failure 404 {object} common.ProblemDetails
// @Router /api/broker/proposal/{id} [get]
// @Security BearerAuth
func GetProposal(proposalSvc *proposalsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParamID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid proposal ID", err)
		}
		p, err := proposalSvc.Get(c.UserContext(), id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't get proposal", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Proposal fetched", p)
	}
}

// ProcessProposal approves or rejects a pending proposal. Approval settles
// the trade in the same transaction.
// @Summary Process a proposal
// @Tags broker
// @Accept json
// @Produce json
// @Param id path int true "Proposal ID"
// @Param request body ProcessInput true "Decision"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Failure 409 {object} common.ProblemDetails
// @Router /api/broker/proposal/{id}/process [patch]
// @Security BearerAuth
func ProcessProposal(proposalSvc *proposalsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParamID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid proposal ID", err)
		}
		input, err := common.BindAndValidate[ProcessInput](c)
		if input == nil {
			return err
		}
		res, err := proposalSvc.Process(c.UserContext(), middleware.Caller(c).ID, id, *input.Verify)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't process proposal", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Proposal processed", res)
	}
}
