// Package auth authenticates clients and staff and turns verified tokens back
// into identities.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/amirasaad/brokerage/pkg/config"
	"github.com/amirasaad/brokerage/pkg/domain"
	"github.com/amirasaad/brokerage/pkg/domain/identity"
	"github.com/amirasaad/brokerage/pkg/domain/staff"
	"github.com/amirasaad/brokerage/pkg/domain/user"
	"github.com/amirasaad/brokerage/pkg/dto"
	"github.com/amirasaad/brokerage/pkg/repository"
	"github.com/amirasaad/brokerage/pkg/utils"
	"github.com/golang-jwt/jwt/v5"
)

// TokenType is returned alongside every access token.
const TokenType = "bearer"

// ErrInvalidToken is returned for tokens whose claims do not describe a live identity.
var ErrInvalidToken = domain.NewError(domain.ErrUnauthorized, "invalid or expired token")

// Claims is the token payload. Role is "user" for clients and the rights
// level for staff; exactly one of UserID and StaffID is set.
type Claims struct {
	Role    identity.Role `json:"role"`
	UserID  *int64        `json:"user_id,omitempty"`
	StaffID *int64        `json:"staff_id,omitempty"`
	jwt.RegisteredClaims
}

type Service struct {
	uow    repository.UnitOfWork
	cfg    *config.Jwt
	roles  *config.Roles
	logger *slog.Logger
	now    func() time.Time
}

func New(
	uow repository.UnitOfWork,
	cfg *config.Jwt,
	roles *config.Roles,
	logger *slog.Logger,
) *Service {
	return &Service{uow: uow, cfg: cfg, roles: roles, logger: logger, now: time.Now}
}

// LoginUser checks client credentials and issues a token.
func (s *Service) LoginUser(
	ctx context.Context,
	login, password string,
) (*dto.LoginResult, error) {
	log := s.logger.With("context", "LoginUser", "login", login)
	u, err := s.uow.Users().GetByLogin(ctx, login)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			log.Error("Login lookup failed", "error", err)
			return nil, err
		}
		utils.BurnPasswordCheck(password)
		log.Warn("Login failed", "error", user.ErrInvalidCredentials)
		return nil, user.ErrInvalidCredentials
	}
	if !utils.CheckPasswordHash(password, u.PasswordHash) {
		log.Warn("Login failed", "error", user.ErrInvalidCredentials)
		return nil, user.ErrInvalidCredentials
	}
	if u.BlockStatusID == s.roles.UserBannedStatus {
		log.Warn("Login refused", "error", user.ErrBanned)
		return nil, user.ErrBanned
	}
	return s.issue(identity.Client(u.ID, u.Login))
}

// LoginStaff checks staff credentials and issues a token.
func (s *Service) LoginStaff(
	ctx context.Context,
	login, password string,
) (*dto.LoginResult, error) {
	log := s.logger.With("context", "LoginStaff", "login", login)
	st, err := s.uow.Staff().GetByLogin(ctx, login)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			log.Error("Login lookup failed", "error", err)
			return nil, err
		}
		utils.BurnPasswordCheck(password)
		log.Warn("Login failed", "error", staff.ErrInvalidCredentials)
		return nil, staff.ErrInvalidCredentials
	}
	if !utils.CheckPasswordHash(password, st.PasswordHash) {
		log.Warn("Login failed", "error", staff.ErrInvalidCredentials)
		return nil, staff.ErrInvalidCredentials
	}
	if st.EmploymentStatusID == s.roles.StaffBlockedStatus {
		log.Warn("Login refused", "error", staff.ErrBlocked)
		return nil, staff.ErrBlocked
	}
	return s.issue(identity.Staff(st.ID, st.Login, st.RightsLevelID))
}

func (s *Service) issue(id identity.Identity) (*dto.LoginResult, error) {
	token, err := s.GenerateToken(id)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResult{AccessToken: token, TokenType: TokenType}, nil
}

// GenerateToken signs an HS256 token for the identity.
func (s *Service) GenerateToken(id identity.Identity) (string, error) {
	now := s.now().UTC()
	claims := &Claims{
		Role: id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Login,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.Expiry)),
		},
	}
	identityID := id.ID
	if id.IsStaff() {
		claims.StaffID = &identityID
	} else {
		claims.UserID = &identityID
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		s.logger.Error("GenerateToken failed", "login", id.Login, "error", err)
		return "", err
	}
	return token, nil
}

// ParseToken verifies signature and expiry. The HTTP layer relies on the jwt
// middleware instead; this serves tools and tests.
func (s *Service) ParseToken(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return []byte(s.cfg.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ResolveIdentity validates the claim shape and confirms the principal still
// exists. Any mismatch is ErrInvalidToken.
func (s *Service) ResolveIdentity(ctx context.Context, claims *Claims) (identity.Identity, error) {
	log := s.logger.With("context", "ResolveIdentity")
	if claims == nil || claims.ExpiresAt == nil {
		return identity.Identity{}, ErrInvalidToken
	}
	if claims.Role.IsStaff() {
		if claims.StaffID == nil || claims.UserID != nil || !s.roles.IsRightsLevel(claims.Role.RightsLevel()) {
			log.Warn("Rejected staff token with bad claims", "sub", claims.Subject)
			return identity.Identity{}, ErrInvalidToken
		}
		st, err := s.uow.Staff().Get(ctx, *claims.StaffID)
		if err != nil {
			return identity.Identity{}, s.resolveErr(log, err)
		}
		if st.RightsLevelID != claims.Role.RightsLevel() {
			log.Warn("Rejected staff token issued for other rights", "staff_id", st.ID)
			return identity.Identity{}, ErrInvalidToken
		}
		return identity.Staff(st.ID, st.Login, st.RightsLevelID), nil
	}

	if claims.UserID == nil || claims.StaffID != nil {
		log.Warn("Rejected client token with bad claims", "sub", claims.Subject)
		return identity.Identity{}, ErrInvalidToken
	}
	u, err := s.uow.Users().Get(ctx, *claims.UserID)
	if err != nil {
		return identity.Identity{}, s.resolveErr(log, err)
	}
	return identity.Client(u.ID, u.Login), nil
}

func (s *Service) resolveErr(log *slog.Logger, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		log.Warn("Token refers to a principal that no longer exists")
		return ErrInvalidToken
	}
	log.Error("Identity lookup failed", "error", err)
	return err
}

// Subject renders an identity for logs.
func Subject(id identity.Identity) string {
	return string(id.Kind()) + ":" + strconv.FormatInt(id.ID, 10)
}
