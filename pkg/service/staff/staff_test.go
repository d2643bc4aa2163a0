package staff_test

import (
	"context"
	"testing"

	"github.com/amirasaad/brokerage/internal/testutils"
	"github.com/amirasaad/brokerage/pkg/config"
	"github.com/amirasaad/brokerage/pkg/domain"
	"github.com/amirasaad/brokerage/pkg/domain/staff"
	"github.com/amirasaad/brokerage/pkg/dto"
	staffsvc "github.com/amirasaad/brokerage/pkg/service/staff"
	"github.com/amirasaad/brokerage/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newService(t *testing.T) (*staffsvc.Service, *gorm.DB) {
	t.Helper()
	uow, db := testutils.NewUoW(t)
	return staffsvc.New(uow, config.DefaultRoles(), testutils.Logger()), db
}

func ptr[T any](v T) *T { return &v }

func TestCreate(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	got, err := svc.Create(ctx, dto.StaffCreate{
		Login:              "broker1",
		Password:           "secret1",
		ContractNumber:     "TD-001",
		RightsLevelID:      testutils.RightsBroker,
		EmploymentStatusID: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, "broker1", got.Login)
	assert.Equal(t, "broker", got.RightsLevel)
	assert.Equal(t, "active", got.EmploymentStatus)

	var stored staff.Staff
	require.NoError(t, db.First(&stored, got.ID).Error)
	assert.True(t, utils.CheckPasswordHash("secret1", stored.PasswordHash))

	tests := []struct {
		name string
		in   dto.StaffCreate
		want error
	}{
		{"login taken", dto.StaffCreate{Login: "broker1", Password: "secret1", ContractNumber: "TD-002", RightsLevelID: 3, EmploymentStatusID: 1}, staff.ErrLoginTaken},
		{"contract taken", dto.StaffCreate{Login: "broker2", Password: "secret1", ContractNumber: "TD-001", RightsLevelID: 3, EmploymentStatusID: 1}, staff.ErrContractTaken},
		{"unknown rights", dto.StaffCreate{Login: "broker2", Password: "secret1", ContractNumber: "TD-002", RightsLevelID: 42, EmploymentStatusID: 1}, staff.ErrUnknownRightsLevel},
		{"unknown employment", dto.StaffCreate{Login: "broker2", Password: "secret1", ContractNumber: "TD-002", RightsLevelID: 3, EmploymentStatusID: 42}, staff.ErrUnknownEmploymentStatus},
		{"empty contract", dto.StaffCreate{Login: "broker2", Password: "secret1", ContractNumber: " ", RightsLevelID: 3, EmploymentStatusID: 1}, staffsvc.ErrInvalidContract},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUpdate(t *testing.T) {
	svc, db := newService(t)
	a := testutils.CreateStaff(t, db, "alpha", testutils.RightsBroker)
	b := testutils.CreateStaff(t, db, "beta", testutils.RightsBroker)
	ctx := context.Background()

	got, err := svc.Update(ctx, a.ID, dto.StaffUpdate{
		Login:         ptr("alpha2"),
		RightsLevelID: ptr(testutils.RightsAdmin),
		Password:      ptr(""),
	})
	require.NoError(t, err)
	assert.Equal(t, "alpha2", got.Login)
	assert.Equal(t, testutils.RightsAdmin, got.RightsLevelID)
	assert.Equal(t, a.ContractNumber, got.ContractNumber)

	var stored staff.Staff
	require.NoError(t, db.First(&stored, a.ID).Error)
	assert.True(t, utils.CheckPasswordHash(testutils.Password, stored.PasswordHash), "blank password is ignored")

	_, err = svc.Update(ctx, a.ID, dto.StaffUpdate{Login: ptr(b.Login)})
	assert.ErrorIs(t, err, staff.ErrLoginTaken)

	_, err = svc.Update(ctx, a.ID, dto.StaffUpdate{ContractNumber: ptr(b.ContractNumber)})
	assert.ErrorIs(t, err, staff.ErrContractTaken)

	_, err = svc.Update(ctx, a.ID, dto.StaffUpdate{EmploymentStatusID: ptr(int64(7))})
	assert.ErrorIs(t, err, staff.ErrUnknownEmploymentStatus)

	_, err = svc.Update(ctx, 4040, dto.StaffUpdate{Login: ptr("ghost")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Update(ctx, testutils.SystemStaffID, dto.StaffUpdate{Login: ptr("root")})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestProfile(t *testing.T) {
	svc, db := newService(t)
	v := testutils.CreateStaff(t, db, "checker", testutils.RightsVerifier)

	got, err := svc.Profile(context.Background(), v.ID)
	require.NoError(t, err)
	assert.Equal(t, "checker", got.Login)
	assert.Equal(t, "verifier", got.RightsLevel)

	_, err = svc.Profile(context.Background(), 777)
	assert.ErrorIs(t, err, staff.ErrStaffNotFound)
}
