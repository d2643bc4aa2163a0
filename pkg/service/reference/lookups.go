package reference

import (
	"context"
	"slices"
	"strings"

	"github.com/amirasaad/brokerage/pkg/domain"
	"github.com/amirasaad/brokerage/pkg/domain/reference"
	"github.com/amirasaad/brokerage/pkg/domain/user"
	"github.com/amirasaad/brokerage/pkg/repository"
)

var ErrInvalidLookupName = domain.NewFieldError("name", "name must be 1 to 100 characters long")

// EditableLookups are the dictionaries administrators may change. Proposal
// and operation types are fixed by the code that writes them.
var EditableLookups = []string{
	reference.TableRightsLevels,
	reference.TableEmploymentStatuses,
	reference.TableVerificationStatuses,
	reference.TableUserRestrictionStatuses,
}

// reserved returns the ids of table the application refers to by value.
func (s *Service) reserved(table string) []int64 {
	switch table {
	case reference.TableRightsLevels:
		return s.roles.RightsLevels()
	case reference.TableEmploymentStatuses:
		return []int64{s.roles.StaffBlockedStatus}
	case reference.TableVerificationStatuses:
		return []int64{user.VerificationUnverified, user.VerificationPending, user.VerificationVerified}
	case reference.TableUserRestrictionStatuses:
		return []int64{user.BlockStatusActive, s.roles.UserBannedStatus}
	}
	return nil
}

func (s *Service) ListLookups(ctx context.Context, table string) ([]reference.Lookup, error) {
	if !slices.Contains(EditableLookups, table) {
		return nil, reference.ErrTableNotFound
	}
	return s.uow.Lookups().List(ctx, table)
}

// CreateLookup adds an entry with a unique name.
func (s *Service) CreateLookup(ctx context.Context, table, name string) (*reference.Lookup, error) {
	if !slices.Contains(EditableLookups, table) {
		return nil, reference.ErrTableNotFound
	}
	name, err := validLookupName(name)
	if err != nil {
		return nil, err
	}
	l := &reference.Lookup{Name: name}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		if taken, err := uow.Lookups().ExistsByName(ctx, table, name, 0); err != nil {
			return err
		} else if taken {
			return reference.ErrLookupNameTaken
		}
		return uow.Lookups().Create(ctx, table, l)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Lookup entry created", "table", table, "id", l.ID, "name", name)
	return l, nil
}

// RenameLookup changes the name of an entry. Ids never change.
func (s *Service) RenameLookup(ctx context.Context, table string, id int64, name string) (*reference.Lookup, error) {
	if !slices.Contains(EditableLookups, table) {
		return nil, reference.ErrTableNotFound
	}
	name, err := validLookupName(name)
	if err != nil {
		return nil, err
	}
	var l *reference.Lookup
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		var err error
		l, err = uow.Lookups().Get(ctx, table, id)
		if err != nil {
			return notFound(err, reference.ErrLookupNotFound)
		}
		if taken, err := uow.Lookups().ExistsByName(ctx, table, name, id); err != nil {
			return err
		} else if taken {
			return reference.ErrLookupNameTaken
		}
		l.Name = name
		return uow.Lookups().Update(ctx, table, l)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Lookup entry renamed", "table", table, "id", id, "name", name)
	return l, nil
}

// DeleteLookup removes an entry that is neither reserved nor referenced.
func (s *Service) DeleteLookup(ctx context.Context, table string, id int64) error {
	if !slices.Contains(EditableLookups, table) {
		return reference.ErrTableNotFound
	}
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		if _, err := uow.Lookups().Get(ctx, table, id); err != nil {
			return notFound(err, reference.ErrLookupNotFound)
		}
		if slices.Contains(s.reserved(table), id) {
			return reference.ErrLookupReserved
		}
		used, err := uow.Lookups().InUse(ctx, table, id)
		if err != nil {
			return err
		}
		if used {
			return reference.ErrLookupInUse
		}
		return uow.Lookups().Delete(ctx, table, id)
	})
	if err != nil {
		s.logger.Warn("Lookup deletion failed", "table", table, "id", id, "error", err)
		return err
	}
	s.logger.Info("Lookup entry deleted", "table", table, "id", id)
	return nil
}

func validLookupName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if n := len([]rune(name)); n == 0 || n > 100 {
		return "", ErrInvalidLookupName
	}
	return name, nil
}
