// Package user serves the client area under /api/user.
package user

import (
	"time"

	"github.com/amirasaad/brokerage/pkg/domain/passport"
	"github.com/amirasaad/brokerage/pkg/dto"
	"github.com/amirasaad/brokerage/pkg/middleware"
	accountsvc "github.com/amirasaad/brokerage/pkg/service/account"
	passportsvc "github.com/amirasaad/brokerage/pkg/service/passport"
	portfoliosvc "github.com/amirasaad/brokerage/pkg/service/portfolio"
	proposalsvc "github.com/amirasaad/brokerage/pkg/service/proposal"
	refsvc "github.com/amirasaad/brokerage/pkg/service/reference"
	usersvc "github.com/amirasaad/brokerage/pkg/service/user"
	"github.com/amirasaad/brokerage/webapi/common"
	"github.com/gofiber/fiber/v2"
)

const dateLayout = "2006-01-02"

// Services groups what the client area depends on.
type Services struct {
	Users     *usersvc.Service
	Accounts  *accountsvc.Service
	Proposals *proposalsvc.Service
	Passports *passportsvc.Service
	Portfolio *portfoliosvc.Service
	Reference *refsvc.Service
}

// Routes mounts the client endpoints behind the given guards.
func Routes(router fiber.Router, svc Services, guards ...fiber.Handler) {
	r := router.Group("", guards...)

	r.Get("/balance/:currency_id", TotalBalance(svc.Accounts))

	r.Get("/brokerage-accounts", ListAccounts(svc.Accounts))
	r.Post("/brokerage-accounts", CreateAccount(svc.Accounts))
	r.Get("/brokerage-accounts/:id", GetAccount(svc.Accounts))
	r.Delete("/brokerage-accounts/:id", DeleteAccount(svc.Accounts))
	r.Get("/brokerage-accounts/:id/operations", AccountOperations(svc.Accounts))
	r.Post("/brokerage-accounts/:id/balance-change-requests", ChangeBalance(svc.Accounts))

	r.Get("/securities", ListSecurities(svc.Reference))
	r.Get("/offers", ListOffers(svc.Proposals))
	r.Post("/offers", CreateOffer(svc.Proposals))
	r.Patch("/proposal/:id/cancel", CancelProposal(svc.Proposals))

	r.Post("/passport", SubmitPassport(svc.Passports))
	r.Get("/portfolio/securities", PortfolioSecurities(svc.Portfolio))
	r.Get("/depositary_account", DepositoryAccount(svc.Portfolio))

	r.Get("/user_verification_status/:id", VerificationStatus(svc.Users))
	r.Get("/user_ban_status/:id", BanStatus(svc.Users))
}

// TotalBalance values everything the client owns in one currency.
// @Summary Total balance in a currency
// @Tags user
// @Produce json
// @Param currency_id path int true "Currency ID"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /api/user/balance/{currency_id} [get]
// @Security BearerAuth
func TotalBalance(accountSvc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		currencyID, err := common.ParamID(c, "currency_id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid currency ID", err)
		}
		total, err := accountSvc.TotalValue(c.UserContext(), middleware.Caller(c).ID, currencyID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't compute balance", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Balance computed", total)
	}
}

// ListAccounts returns the client's brokerage accounts.
// @Summary List brokerage accounts
// @Tags accounts
// @Produce json
// @Success 200 {object} common.Response
// @Router /api/user/brokerage-accounts [get]
// @Security BearerAuth
func ListAccounts(accountSvc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accounts, err := accountSvc.List(c.UserContext(), middleware.Caller(c).ID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't list accounts", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Accounts fetched", accounts)
	}
}

// CreateAccount opens a brokerage account.
// @Summary Open a brokerage account
// @Tags accounts
// @Accept json
// @Produce json
// @Param request body AccountInput true "Account data"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /api/user/brokerage-accounts [post]
// @Security BearerAuth
func CreateAccount(accountSvc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[AccountInput](c)
		if input == nil {
			return err
		}
		a, err := accountSvc.Create(c.UserContext(), dto.AccountCreate{
			UserID:     middleware.Caller(c).ID,
			BankID:     input.BankID,
			CurrencyID: input.CurrencyID,
			INN:        input.INN,
		})
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't create account", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Account created", a)
	}
}

// GetAccount returns one of the client's accounts.
// @Summary Get a brokerage account
// @Tags accounts
// @Produce json
// @Param id path int true "Account ID"
// @Success 200 {object} common.Response
// @Failure 404 {object} common.ProblemDetails
// @Router /api/user/brokerage-accounts/{id} [get]
// @Security BearerAuth
func GetAccount(accountSvc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParamID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid account ID", err)
		}
		a, err := accountSvc.Get(c.UserContext(), middleware.Caller(c).ID, id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't get account", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Account fetched", a)
	}
}

// DeleteAccount closes an empty account.
// @Summary Close a brokerage account
// @Tags accounts
// @Param id path int true "Account ID"
// @Success 204
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /api/user/brokerage-accounts/{id} [delete]
// @Security BearerAuth
func DeleteAccount(accountSvc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParamID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid account ID", err)
		}
		if err := accountSvc.Delete(c.UserContext(), middleware.Caller(c).ID, id); err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't delete account", err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// AccountOperations lists the ledger of an account, newest first.
// @Summary Account operations
// @Tags accounts
// @Produce json
// @Param id path int true "Account ID"
// @Success 200 {object} common.Response
// @Failure 404 {object} common.ProblemDetails
// @Router /api/user/brokerage-accounts/{id}/operations [get]
// @Security BearerAuth
func AccountOperations(accountSvc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParamID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid account ID", err)
		}
		ops, err := accountSvc.Operations(c.UserContext(), middleware.Caller(c).ID, id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't list operations", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Operations fetched", ops)
	}
}

// ChangeBalance deposits or withdraws money.
// @Summary Change account balance
// @Description A positive amount deposits, a negative amount withdraws
// @Tags accounts
// @Accept json
// @Produce json
// @Param id path int true "Account ID"
// @Param request body BalanceChangeInput true "Signed amount with at most two decimals"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Failure 409 {object} common.ProblemDetails
// @Router /api/user/brokerage-accounts/{id}/balance-change-requests [post]
// @Security BearerAuth
func ChangeBalance(accountSvc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParamID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid account ID", err)
		}
		input, err := common.BindAndValidate[BalanceChangeInput](c)
		if input == nil {
			return err
		}
		change, err := accountSvc.ChangeBalance(c.UserContext(), middleware.Caller(c).ID, id, input.Amount)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Balance change failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Balance changed", change)
	}
}

// ListSecurities returns the securities a client can trade.
func ListSecurities(refSvc *refsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stocks, err := refSvc.ListStocks(c.UserContext(), false)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't list securities", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Securities fetched", stocks)
	}
}

// ListOffers returns the client's proposals.
func ListOffers(proposalSvc *proposalsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offers, err := proposalSvc.ListForUser(c.UserContext(), middleware.Caller(c).ID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't list offers", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Offers fetched", offers)
	}
}

// CreateOffer files a buy or sell proposal.
// @Summary Create a proposal
// @Tags proposals
// @Accept json
// @Produce json
// @Param request body OfferInput true "Proposal data"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /api/user/offers [post]
// @Security BearerAuth
func CreateOffer(proposalSvc *proposalsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[OfferInput](c)
		if input == nil {
			return err
		}
		p, err := proposalSvc.Create(c.UserContext(), dto.ProposalCreate{
			UserID:     middleware.Caller(c).ID,
			AccountID:  input.AccountID,
			SecurityID: input.SecurityID,
			Lots:       input.Quantity,
			TypeID:     input.ProposalTypeID,
		})
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't create offer", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Offer created", p)
	}
}

// CancelProposal withdraws the client's own pending proposal.
// @Summary Cancel a proposal
// @Tags proposals
// @Produce json
// @Param id path int true "Proposal ID"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /api/user/proposal/{id}/cancel [patch]
// @Security BearerAuth
func CancelProposal(proposalSvc *proposalsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParamID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid proposal ID", err)
		}
		res, err := proposalSvc.Cancel(c.UserContext(), middleware.Caller(c).ID, id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't cancel proposal", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Proposal cancelled", res)
	}
}

// SubmitPassport stores the client's passport and marks verification pending.
// @Summary Submit a passport
// @Tags passport
// @Accept json
// @Produce json
// @Param request body PassportInput true "Passport data"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Router /api/user/passport [post]
// @Security BearerAuth
func SubmitPassport(passportSvc *passportsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[PassportInput](c)
		if input == nil {
			return err
		}
		// Layouts were checked by the validator.
		birth, _ := time.Parse(dateLayout, input.BirthDate)
		issue, _ := time.Parse(dateLayout, input.IssueDate)
		p, err := passportSvc.Submit(c.UserContext(), middleware.Caller(c).ID, &passport.Passport{
			LastName:          input.LastName,
			FirstName:         input.FirstName,
			MiddleName:        input.MiddleName,
			Series:            input.Series,
			Number:            input.Number,
			Gender:            input.Gender,
			BirthDate:         birth,
			BirthPlace:        input.BirthPlace,
			RegistrationPlace: input.RegistrationPlace,
			IssueDate:         issue,
			IssuedBy:          input.IssuedBy,
		})
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't submit passport", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Passport submitted", p)
	}
}

func PortfolioSecurities(portfolioSvc *portfoliosvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		holdings, err := portfolioSvc.Securities(c.UserContext(), middleware.Caller(c).ID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't list securities", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Securities fetched", holdings)
	}
}

// DepositoryAccount returns the client's depository account with positions
// and history.
// @Summary Depository account
// @Tags portfolio
// @Produce json
// @Success 200 {object} common.Response
// @Failure 404 {object} common.ProblemDetails
// @Router /api/user/depositary_account [get]
// @Security BearerAuth
func DepositoryAccount(portfolioSvc *portfoliosvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		acc, err := portfolioSvc.DepositoryAccount(c.UserContext(), middleware.Caller(c).ID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't get depository account", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Depository account fetched", acc)
	}
}

// VerificationStatus answers whether the caller is verified. Asking about
// another user is forbidden.
func VerificationStatus(userSvc *usersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParamID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid user ID", err)
		}
		status, err := userSvc.VerificationStatus(c.UserContext(), middleware.Caller(c), id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't get verification status", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Verification status fetched", status)
	}
}

// BanStatus answers whether the caller is banned.
func BanStatus(userSvc *usersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParamID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid user ID", err)
		}
		status, err := userSvc.BanStatus(c.UserContext(), middleware.Caller(c), id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't get ban status", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Ban status fetched", status)
	}
}
