// Package staff manages back-office employees.
package staff

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/amirasaad/brokerage/pkg/config"
	"github.com/amirasaad/brokerage/pkg/domain"
	"github.com/amirasaad/brokerage/pkg/domain/reference"
	"github.com/amirasaad/brokerage/pkg/domain/staff"
	"github.com/amirasaad/brokerage/pkg/dto"
	"github.com/amirasaad/brokerage/pkg/repository"
	usersvc "github.com/amirasaad/brokerage/pkg/service/user"
	"github.com/amirasaad/brokerage/pkg/utils"
)

var ErrInvalidContract = domain.NewFieldError("contract_number", "contract number must be 1 to 50 characters long")

type Service struct {
	uow    repository.UnitOfWork
	roles  *config.Roles
	logger *slog.Logger
}

func New(uow repository.UnitOfWork, roles *config.Roles, logger *slog.Logger) *Service {
	return &Service{uow: uow, roles: roles, logger: logger}
}

// Create registers a staff member.
func (s *Service) Create(ctx context.Context, in dto.StaffCreate) (*dto.StaffRead, error) {
	log := s.logger.With("context", "CreateStaff", "login", in.Login)
	login := strings.TrimSpace(in.Login)
	contract := strings.TrimSpace(in.ContractNumber)
	if err := usersvc.ValidateLogin(login); err != nil {
		return nil, err
	}
	if err := usersvc.ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	if contract == "" || len(contract) > 50 {
		return nil, ErrInvalidContract
	}
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		log.Error("Password hashing failed", "error", err)
		return nil, err
	}

	var out *dto.StaffRead
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo := uow.Staff()
		if err := s.checkUnique(ctx, repo, login, contract, 0); err != nil {
			return err
		}
		if err := s.checkLookups(ctx, uow.Lookups(), &in.RightsLevelID, &in.EmploymentStatusID); err != nil {
			return err
		}
		st := staff.New(login, hash, contract, in.RightsLevelID, in.EmploymentStatusID)
		if err := repo.Create(ctx, st); err != nil {
			return err
		}
		out, err = repo.GetRead(ctx, st.ID)
		return err
	})
	if err != nil {
		log.Warn("Staff creation failed", "error", err)
		return nil, err
	}
	log.Info("Staff member created", "staff_id", out.ID)
	return out, nil
}

// Update edits a staff member. The reserved system actor cannot be edited.
func (s *Service) Update(ctx context.Context, staffID int64, patch dto.StaffUpdate) (*dto.StaffRead, error) {
	log := s.logger.With("context", "UpdateStaff", "staff_id", staffID)
	if staffID == s.roles.SystemStaffID {
		return nil, staff.ErrSystemStaffIsNotEditable
	}

	var out *dto.StaffRead
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo := uow.Staff()
		st, err := repo.Get(ctx, staffID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return staff.ErrStaffNotFound
			}
			return err
		}
		login, contract := st.Login, st.ContractNumber
		if v := trimmed(patch.Login); v != "" {
			if err := usersvc.ValidateLogin(v); err != nil {
				return err
			}
			login = v
		}
		if v := trimmed(patch.ContractNumber); v != "" {
			if len(v) > 50 {
				return ErrInvalidContract
			}
			contract = v
		}
		if err := s.checkUnique(ctx, repo, login, contract, st.ID); err != nil {
			return err
		}
		if err := s.checkLookups(ctx, uow.Lookups(), patch.RightsLevelID, patch.EmploymentStatusID); err != nil {
			return err
		}
		st.Login, st.ContractNumber = login, contract
		if patch.RightsLevelID != nil {
			st.RightsLevelID = *patch.RightsLevelID
		}
		if patch.EmploymentStatusID != nil {
			st.EmploymentStatusID = *patch.EmploymentStatusID
		}
		if patch.Password != nil && *patch.Password != "" {
			if err := usersvc.ValidatePassword(*patch.Password); err != nil {
				return err
			}
			hash, err := utils.HashPassword(*patch.Password)
			if err != nil {
				return err
			}
			st.PasswordHash = hash
		}
		if err := repo.Update(ctx, st); err != nil {
			return err
		}
		out, err = repo.GetRead(ctx, st.ID)
		return err
	})
	if err != nil {
		log.Warn("Staff update failed", "error", err)
		return nil, err
	}
	log.Info("Staff member updated")
	return out, nil
}

// Profile returns a staff member with resolved lookups.
func (s *Service) Profile(ctx context.Context, staffID int64) (*dto.StaffRead, error) {
	out, err := s.uow.Staff().GetRead(ctx, staffID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, staff.ErrStaffNotFound
	}
	return out, err
}

func (s *Service) checkUnique(ctx context.Context, repo repository.StaffRepository, login, contract string, exceptID int64) error {
	if taken, err := repo.ExistsByLogin(ctx, login, exceptID); err != nil {
		return err
	} else if taken {
		return staff.ErrLoginTaken
	}
	if taken, err := repo.ExistsByContract(ctx, contract, exceptID); err != nil {
		return err
	} else if taken {
		return staff.ErrContractTaken
	}
	return nil
}

func (s *Service) checkLookups(ctx context.Context, lookups repository.LookupRepository, rights, employment *int64) error {
	if rights != nil {
		ok, err := lookups.Exists(ctx, reference.TableRightsLevels, *rights)
		if err != nil {
			return err
		}
		if !ok {
			return staff.ErrUnknownRightsLevel
		}
	}
	if employment != nil {
		ok, err := lookups.Exists(ctx, reference.TableEmploymentStatuses, *employment)
		if err != nil {
			return err
		}
		if !ok {
			return staff.ErrUnknownEmploymentStatus
		}
	}
	return nil
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
