package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/amirasaad/brokerage/internal/testutils"
	"github.com/amirasaad/brokerage/pkg/config"
	"github.com/amirasaad/brokerage/pkg/domain"
	"github.com/amirasaad/brokerage/pkg/domain/identity"
	"github.com/amirasaad/brokerage/pkg/domain/staff"
	"github.com/amirasaad/brokerage/pkg/domain/user"
	authsvc "github.com/amirasaad/brokerage/pkg/service/auth"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const secret = "test-secret"

func newService(tb testing.TB, expiry time.Duration) (*authsvc.Service, *gorm.DB) {
	tb.Helper()
	uow, db := testutils.NewUoW(tb)
	roles := config.DefaultRoles()
	svc := authsvc.New(uow, &config.Jwt{Secret: secret, Expiry: expiry}, roles, testutils.Logger())
	return svc, db
}

func TestLoginUser(t *testing.T) {
	svc, db := newService(t, time.Hour)
	u := testutils.CreateUser(t, db, "alice")
	ctx := context.Background()

	res, err := svc.LoginUser(ctx, "alice", testutils.Password)
	require.NoError(t, err)
	assert.Equal(t, "bearer", res.TokenType)

	claims, err := svc.ParseToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.False(t, claims.Role.IsStaff())
	require.NotNil(t, claims.UserID)
	assert.Equal(t, u.ID, *claims.UserID)
	assert.Nil(t, claims.StaffID)
	require.NotNil(t, claims.ExpiresAt)
	require.NotNil(t, claims.IssuedAt)
	assert.Equal(t, time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestLoginUser_Failures(t *testing.T) {
	svc, db := newService(t, time.Hour)
	testutils.CreateUser(t, db, "alice")
	testutils.CreateUser(t, db, "mallory", testutils.Banned)
	ctx := context.Background()

	_, err := svc.LoginUser(ctx, "alice", "wrong-password")
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = svc.LoginUser(ctx, "nobody", testutils.Password)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = svc.LoginUser(ctx, "mallory", testutils.Password)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.LoginUser(ctx, "mallory", "wrong-password")
	assert.ErrorIs(t, err, domain.ErrUnauthorized, "credentials are checked before the ban")
}

func TestLoginStaff(t *testing.T) {
	svc, db := newService(t, time.Hour)
	broker := testutils.CreateStaff(t, db, "broker", testutils.RightsBroker)
	ctx := context.Background()

	res, err := svc.LoginStaff(ctx, "broker", testutils.Password)
	require.NoError(t, err)

	claims, err := svc.ParseToken(res.AccessToken)
	require.NoError(t, err)
	assert.True(t, claims.Role.IsStaff())
	assert.Equal(t, testutils.RightsBroker, claims.Role.RightsLevel())
	require.NotNil(t, claims.StaffID)
	assert.Equal(t, broker.ID, *claims.StaffID)
	assert.Nil(t, claims.UserID)

	_, err = svc.LoginStaff(ctx, "broker", "nope")
	assert.ErrorIs(t, err, staff.ErrInvalidCredentials)

	_, err = svc.LoginStaff(ctx, "alice", testutils.Password)
	assert.ErrorIs(t, err, domain.ErrUnauthorized, "clients cannot use the staff login")
}

func TestLoginStaff_Blocked(t *testing.T) {
	svc, db := newService(t, time.Hour)
	s := testutils.CreateStaff(t, db, "former", testutils.RightsAdmin)
	require.NoError(t, db.Model(s).Update("employment_status_id", 2).Error)

	_, err := svc.LoginStaff(context.Background(), "former", testutils.Password)
	assert.ErrorIs(t, err, staff.ErrBlocked)
}

func TestParseToken_Rejects(t *testing.T) {
	svc, _ := newService(t, -time.Minute)
	token, err := svc.GenerateToken(identity.Client(1, "alice"))
	require.NoError(t, err)

	_, err = svc.ParseToken(token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized, "expired")

	_, err = svc.ParseToken("not-a-token")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	other := jwt.NewWithClaims(jwt.SigningMethodHS256, &authsvc.Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	forged, err := other.SignedString([]byte("another-secret"))
	require.NoError(t, err)
	_, err = svc.ParseToken(forged)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestResolveIdentity(t *testing.T) {
	svc, db := newService(t, time.Hour)
	u := testutils.CreateUser(t, db, "alice")
	v := testutils.CreateStaff(t, db, "verifier", testutils.RightsVerifier)
	ctx := context.Background()
	exp := jwt.NewNumericDate(time.Now().Add(time.Hour))
	id := func(v int64) *int64 { return &v }

	got, err := svc.ResolveIdentity(ctx, &authsvc.Claims{
		Role:             identity.ClientRole(),
		UserID:           id(u.ID),
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp},
	})
	require.NoError(t, err)
	assert.Equal(t, identity.Client(u.ID, "alice"), got)

	got, err = svc.ResolveIdentity(ctx, &authsvc.Claims{
		Role:             identity.StaffRole(testutils.RightsVerifier),
		StaffID:          id(v.ID),
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp},
	})
	require.NoError(t, err)
	assert.True(t, got.HasRights(testutils.RightsVerifier))

	tests := []struct {
		name   string
		claims *authsvc.Claims
	}{
		{"nil claims", nil},
		{"missing expiry", &authsvc.Claims{Role: identity.ClientRole(), UserID: id(u.ID)}},
		{"client without user id", &authsvc.Claims{
			Role: identity.ClientRole(), RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp}}},
		{"client carrying staff id", &authsvc.Claims{
			Role: identity.ClientRole(), UserID: id(u.ID), StaffID: id(v.ID),
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp}}},
		{"unknown rights level", &authsvc.Claims{
			Role: identity.StaffRole(42), StaffID: id(v.ID),
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp}}},
		{"deleted user", &authsvc.Claims{
			Role: identity.ClientRole(), UserID: id(u.ID + 1000),
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp}}},
		{"deleted staff", &authsvc.Claims{
			Role: identity.StaffRole(testutils.RightsBroker), StaffID: id(v.ID + 1000),
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ResolveIdentity(ctx, tt.claims)
			assert.ErrorIs(t, err, authsvc.ErrInvalidToken)
		})
	}
}

func TestResolveIdentity_RoundTrip(t *testing.T) {
	svc, db := newService(t, time.Hour)
	a := testutils.CreateStaff(t, db, "admin", testutils.RightsAdmin)

	token, err := svc.GenerateToken(identity.Staff(a.ID, a.Login, a.RightsLevelID))
	require.NoError(t, err)
	claims, err := svc.ParseToken(token)
	require.NoError(t, err)

	got, err := svc.ResolveIdentity(context.Background(), claims)
	require.NoError(t, err)
	assert.Equal(t, identity.Staff(a.ID, "admin", testutils.RightsAdmin), got)
	assert.Equal(t, "staff:3", authsvc.Subject(identity.Staff(3, "x", 1)))

	require.NoError(t, db.Model(a).Update("rights_level_id", testutils.RightsBroker).Error)
	_, err = svc.ResolveIdentity(context.Background(), claims)
	assert.ErrorIs(t, err, authsvc.ErrInvalidToken, "rights changed after the token was issued")
}
