package staff

import (
	"strings"

	"github.com/amirasaad/brokerage/pkg/domain"
)

var (
	ErrStaffNotFound = domain.NewError(domain.ErrNotFound, "staff member not found")
	// ErrInvalidCredentials is returned on unknown login or wrong password.
	ErrInvalidCredentials = domain.NewError(domain.ErrUnauthorized, "invalid login or password")
	// ErrBlocked is returned when a staff member with a blocked employment status logs in.
	ErrBlocked                  = domain.NewError(domain.ErrForbidden, "staff member is blocked")
	ErrLoginTaken               = domain.NewError(domain.ErrAlreadyExists, "login already taken")
	ErrContractTaken            = domain.NewError(domain.ErrAlreadyExists, "contract number already in use")
	ErrUnknownRightsLevel       = domain.NewFieldError("rights_level_id", "rights level not found")
	ErrUnknownEmploymentStatus  = domain.NewFieldError("employment_status_id", "employment status not found")
	ErrSystemStaffIsNotEditable = domain.NewError(domain.ErrForbidden, "the system staff account cannot be modified")
)

// Staff is a back-office employee.
type Staff struct {
	ID                 int64  `gorm:"primaryKey" json:"id"`
	Login              string `gorm:"size:50;not null;uniqueIndex" json:"login"`
	PasswordHash       string `gorm:"size:255;not null" json:"-"`
	ContractNumber     string `gorm:"size:50;not null;uniqueIndex" json:"contract_number"`
	RightsLevelID      int64  `gorm:"not null" json:"rights_level_id"`
	EmploymentStatusID int64  `gorm:"not null" json:"employment_status_id"`
}

func (Staff) TableName() string { return "staff" }

// New creates a staff member. passwordHash must already be hashed.
func New(login, passwordHash, contractNumber string, rightsLevel, employmentStatus int64) *Staff {
	return &Staff{
		Login:              strings.TrimSpace(login),
		PasswordHash:       passwordHash,
		ContractNumber:     strings.TrimSpace(contractNumber),
		RightsLevelID:      rightsLevel,
		EmploymentStatusID: employmentStatus,
	}
}
