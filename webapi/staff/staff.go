// Package staff serves the endpoints shared by every staff member.
package staff

import (
	"github.com/amirasaad/brokerage/pkg/dto"
	staffsvc "github.com/amirasaad/brokerage/pkg/service/staff"
	usersvc "github.com/amirasaad/brokerage/pkg/service/user"
	"github.com/amirasaad/brokerage/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// UpdateUserInput edits a client. Omitted or blank fields are left alone.
type UpdateUserInput struct {
	Login                *string `json:"login" validate:"omitempty,max=50"`
	Email                *string `json:"email" validate:"omitempty,max=255"`
	Password             *string `json:"password"`
	VerificationStatusID *int64  `json:"verification_status_id" validate:"omitempty,gt=0"`
	BlockStatusID        *int64  `json:"block_status_id" validate:"omitempty,gt=0"`
}

func Routes(
	router fiber.Router,
	staffSvc *staffsvc.Service,
	userSvc *usersvc.Service,
	guards ...fiber.Handler,
) {
	r := router.Group("", guards...)
	r.Put("/user/:user_id", UpdateUser(userSvc))
	r.Get("/:staff_id", Profile(staffSvc))
}

// Profile returns a staff member's profile.
// @Summary Staff profile
// @Tags staff
// @Produce json
// @Param staff_id path int true "Staff ID"
// @Success 200 {object} common.Response
// @Failure 404 {object} common.ProblemDetails
// @Router /api/staff/{staff_id} [get]
// @Security BearerAuth
func Profile(staffSvc *staffsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParamID(c, "staff_id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid staff ID", err)
		}
		profile, err := staffSvc.Profile(c.UserContext(), id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't get staff profile", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Staff profile fetched", profile)
	}
}

// UpdateUser edits a client's record.
// @Summary Update a client
// @Tags staff
// @Accept json
// @Produce json
// @Param user_id path int true "User ID"
// @Param request body UpdateUserInput true "Fields to change"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /api/staff/user/{user_id} [put]
// @Security BearerAuth
func UpdateUser(userSvc *usersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParamID(c, "user_id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid user ID", err)
		}
		input, err := common.BindAndValidate[UpdateUserInput](c)
		if input == nil {
			return err
		}
		u, err := userSvc.UpdateByStaff(c.UserContext(), id, dto.UserUpdate{
			Login:                input.Login,
			Email:                input.Email,
			Password:             input.Password,
			VerificationStatusID: input.VerificationStatusID,
			BlockStatusID:        input.BlockStatusID,
		})
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't update user", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "User updated", u)
	}
}
