package user_test

import (
	"context"
	"strings"
	"testing"

	"github.com/amirasaad/brokerage/internal/testutils"
	"github.com/amirasaad/brokerage/pkg/config"
	"github.com/amirasaad/brokerage/pkg/domain"
	"github.com/amirasaad/brokerage/pkg/domain/identity"
	"github.com/amirasaad/brokerage/pkg/domain/user"
	"github.com/amirasaad/brokerage/pkg/dto"
	usersvc "github.com/amirasaad/brokerage/pkg/service/user"
	"github.com/amirasaad/brokerage/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newService(t *testing.T) (*usersvc.Service, *gorm.DB) {
	t.Helper()
	uow, db := testutils.NewUoW(t)
	return usersvc.New(uow, config.DefaultRoles(), testutils.Logger()), db
}

func ptr[T any](v T) *T { return &v }

func countUsers(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&user.User{}).Count(&n).Error)
	return n
}

func TestRegister(t *testing.T) {
	svc, db := newService(t)

	u, err := svc.Register(context.Background(), dto.UserCreate{
		Login:    " alice ",
		Email:    "Alice@Example.com",
		Password: "secret1",
	})
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.Equal(t, "alice", u.Login)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, user.VerificationUnverified, u.VerificationStatusID)
	assert.Equal(t, user.BlockStatusActive, u.BlockStatusID)
	assert.True(t, utils.CheckPasswordHash("secret1", u.PasswordHash))
	assert.Equal(t, int64(1), countUsers(t, db))
}

func TestRegister_Conflicts(t *testing.T) {
	svc, db := newService(t)
	testutils.CreateUser(t, db, "alice")
	ctx := context.Background()

	_, err := svc.Register(ctx, dto.UserCreate{Login: "alice", Email: "new@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, user.ErrLoginTaken)

	_, err = svc.Register(ctx, dto.UserCreate{Login: "bob", Email: "alice@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, user.ErrEmailTaken)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	assert.Equal(t, int64(1), countUsers(t, db), "no row inserted on conflict")
}

func TestRegister_Validation(t *testing.T) {
	svc, db := newService(t)
	tests := []struct {
		name string
		in   dto.UserCreate
		want error
	}{
		{"short login", dto.UserCreate{Login: "ab", Email: "a@example.com", Password: "secret1"}, usersvc.ErrInvalidLogin},
		{"long login", dto.UserCreate{Login: strings.Repeat("a", 51), Email: "a@example.com", Password: "secret1"}, usersvc.ErrInvalidLogin},
		{"bad email", dto.UserCreate{Login: "alice", Email: "alice", Password: "secret1"}, usersvc.ErrInvalidEmail},
		{"short password", dto.UserCreate{Login: "alice", Email: "a@example.com", Password: "12345"}, usersvc.ErrInvalidPassword},
		{"password over 72 bytes", dto.UserCreate{Login: "alice", Email: "a@example.com", Password: strings.Repeat("я", 37)}, usersvc.ErrInvalidPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.in)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
	assert.Zero(t, countUsers(t, db))
}

func TestUpdateByStaff(t *testing.T) {
	svc, db := newService(t)
	u := testutils.CreateUser(t, db, "alice")
	testutils.CreateUser(t, db, "bob")
	ctx := context.Background()

	got, err := svc.UpdateByStaff(ctx, u.ID, dto.UserUpdate{
		Login:                ptr("alicia"),
		Email:                ptr("  "),
		Password:             ptr("newpass1"),
		VerificationStatusID: ptr(user.VerificationVerified),
		BlockStatusID:        ptr(int64(2)),
	})
	require.NoError(t, err)
	assert.Equal(t, "alicia", got.Login)
	assert.Equal(t, "alice@example.com", got.Email, "blank fields are ignored")
	assert.True(t, got.IsVerified())

	var stored user.User
	require.NoError(t, db.First(&stored, u.ID).Error)
	assert.Equal(t, "alicia", stored.Login)
	assert.Equal(t, int64(2), stored.BlockStatusID)
	assert.True(t, utils.CheckPasswordHash("newpass1", stored.PasswordHash))

	_, err = svc.UpdateByStaff(ctx, u.ID, dto.UserUpdate{Login: ptr("bob")})
	assert.ErrorIs(t, err, user.ErrLoginTaken)

	_, err = svc.UpdateByStaff(ctx, u.ID, dto.UserUpdate{Email: ptr("bob@example.com")})
	assert.ErrorIs(t, err, user.ErrEmailTaken)

	_, err = svc.UpdateByStaff(ctx, u.ID, dto.UserUpdate{VerificationStatusID: ptr(int64(99))})
	assert.ErrorIs(t, err, user.ErrUnknownVerificationStatus)

	_, err = svc.UpdateByStaff(ctx, u.ID, dto.UserUpdate{BlockStatusID: ptr(int64(99))})
	assert.ErrorIs(t, err, user.ErrUnknownBlockStatus)

	_, err = svc.UpdateByStaff(ctx, 9999, dto.UserUpdate{Login: ptr("ghost")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, db.First(&stored, u.ID).Error)
	assert.Equal(t, "alicia", stored.Login, "failed updates roll back")
}

func TestStatuses(t *testing.T) {
	svc, db := newService(t)
	alice := testutils.CreateUser(t, db, "alice", testutils.Verified)
	bob := testutils.CreateUser(t, db, "bob", testutils.Banned)
	ctx := context.Background()

	v, err := svc.VerificationStatus(ctx, identity.Client(alice.ID, alice.Login), alice.ID)
	require.NoError(t, err)
	assert.True(t, v.IsVerified)

	b, err := svc.BanStatus(ctx, identity.Client(alice.ID, alice.Login), alice.ID)
	require.NoError(t, err)
	assert.False(t, b.IsBanned)

	b, err = svc.BanStatus(ctx, identity.Client(bob.ID, bob.Login), bob.ID)
	require.NoError(t, err)
	assert.True(t, b.IsBanned)

	_, err = svc.VerificationStatus(ctx, identity.Client(alice.ID, alice.Login), bob.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.BanStatus(ctx, identity.Staff(alice.ID, "staff", 2), alice.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
