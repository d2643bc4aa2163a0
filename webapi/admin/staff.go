package admin

import (
	"github.com/amirasaad/brokerage/pkg/dto"
	staffsvc "github.com/amirasaad/brokerage/pkg/service/staff"
	"github.com/amirasaad/brokerage/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// CreateStaff registers a staff member.
// @Summary Create a staff member
// @Tags admin
// @Accept json
// @Produce json
// @Param request body StaffInput true "Staff data"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Router /api/admin/staff [post]
// @Security BearerAuth
func CreateStaff(staffSvc *staffsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[StaffInput](c)
		if input == nil {
			return err
		}
		st, err := staffSvc.Create(c.UserContext(), dto.StaffCreate{
			Login:              input.Login,
			Password:           input.Password,
			ContractNumber:     input.ContractNumber,
			RightsLevelID:      input.RightsLevelID,
			EmploymentStatusID: input.EmploymentStatusID,
		})
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't create staff member", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Staff member created", st)
	}
}

func UpdateStaff(staffSvc *staffsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParamID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid staff ID", err)
		}
		input, err := common.BindAndValidate[StaffUpdateInput](c)
		if input == nil {
			return err
		}
		st, err := staffSvc.Update(c.UserContext(), id, dto.StaffUpdate{
			Login:              input.Login,
			Password:           input.Password,
			ContractNumber:     input.ContractNumber,
			RightsLevelID:      input.RightsLevelID,
			EmploymentStatusID: input.EmploymentStatusID,
		})
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't update staff member", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Staff member updated", st)
	}
}
