package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// AuthService coordinates registration, login, role selection and
// refresh token rotation.
type AuthService struct {
	users       repository.UserRepository
	assignments repository.RoleAssignmentRepository
	refresh     repository.RefreshTokenRepository
	tokenMgr    *auth.TokenManager
	bcryptCost  int
	refreshTTL  time.Duration
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo           repository.UserRepository
	RoleAssignmentRepo repository.RoleAssignmentRepository
	RefreshTokenRepo   repository.RefreshTokenRepository
}

// Session is the credential bundle returned by login-like operations.
// NeedsRoleSelection signals the client that the user holds more than
// one role and the defaulted active role may not be the intended one.
type Session struct {
	User               *domain.User
	AccessToken        string
	AccessExpiresAt    time.Time
	RefreshToken       string
	Roles              []domain.RoleClaim
	ActiveRole         *domain.RoleClaim
	NeedsRoleSelection bool
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:       deps.UserRepo,
		assignments: deps.RoleAssignmentRepo,
		refresh:     deps.RefreshTokenRepo,
		tokenMgr:    auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost:  cfg.Auth.BcryptCost,
		refreshTTL:  time.Duration(cfg.Auth.RefreshTokenTTLMinutes) * time.Minute,
	}
}

// Register creates an account and opens a session. New accounts carry
// no stored assignments and authenticate with the implicit USER role.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*Session, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("EMAIL_TAKEN", "email already registered")
	} else if err != pgx.ErrNoRows {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Status:       domain.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}

	return s.openSession(ctx, user, nil)
}

// Login authenticates by email and password. When the user holds more
// than one role the session defaults the active role to the first
// assignment and flags that a selection is expected.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewAuthentication("invalid credentials")
		}
		return nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewAuthentication("invalid credentials")
	}
	if !user.CanAuthenticate() {
		return nil, apperrors.NewAuthentication("account is not active")
	}

	return s.openSession(ctx, user, nil)
}

// SelectRole re-issues the access token with the chosen active role.
// The selection must be one of the user's current assignments.
func (s *AuthService) SelectRole(ctx context.Context, userID string, selection domain.RoleClaim) (*Session, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return s.openSession(ctx, user, &selection)
}

// Refresh exchanges a refresh token for a new session, rotating the
// refresh credential. An optional role selection carries the active
// hat into the new access token.
func (s *AuthService) Refresh(ctx context.Context, refreshPlain string, selection *domain.RoleClaim) (*Session, error) {
	token, err := s.refresh.GetByHash(ctx, hashRefreshToken(refreshPlain))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewAuthentication("invalid refresh token")
		}
		return nil, apperrors.MapError(err)
	}
	if !token.Usable(time.Now()) {
		return nil, apperrors.NewAuthentication("refresh token expired or revoked")
	}

	user, err := s.users.GetByID(ctx, token.UserID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewAuthentication("user not found")
		}
		return nil, apperrors.MapError(err)
	}
	if !user.CanAuthenticate() {
		return nil, apperrors.NewAuthentication("account is not active")
	}

	if err := s.refresh.MarkUsed(ctx, token.ID); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.refresh.Revoke(ctx, token.ID); err != nil {
		return nil, apperrors.MapError(err)
	}

	return s.openSession(ctx, user, selection)
}

// Logout revokes the presented refresh token. Unknown tokens are
// treated as already logged out.
func (s *AuthService) Logout(ctx context.Context, refreshPlain string) error {
	token, err := s.refresh.GetByHash(ctx, hashRefreshToken(refreshPlain))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil
		}
		return apperrors.MapError(err)
	}
	if err := s.refresh.Revoke(ctx, token.ID); err != nil && err != pgx.ErrNoRows {
		return apperrors.MapError(err)
	}
	return nil
}

// LogoutAll revokes every outstanding refresh token for the user.
func (s *AuthService) LogoutAll(ctx context.Context, userID string) error {
	return apperrors.MapError(s.refresh.RevokeAllForUser(ctx, userID))
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) openSession(ctx context.Context, user *domain.User, selection *domain.RoleClaim) (*Session, error) {
	assignments, err := s.assignments.ListActiveByUser(ctx, user.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	accessToken, expiresAt, err := s.tokenMgr.Issue(user.ID, assignments, selection)
	if err != nil {
		return nil, err
	}

	refreshPlain, err := generateRefreshToken()
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	record := &domain.RefreshToken{
		UserID:    user.ID,
		TokenHash: hashRefreshToken(refreshPlain),
		ExpiresAt: time.Now().Add(s.refreshTTL),
	}
	if err := s.refresh.Create(ctx, record); err != nil {
		return nil, apperrors.MapError(err)
	}

	roles := auth.RoleClaims(assignments)
	active := selection
	if active == nil {
		active = &roles[0]
	}

	return &Session{
		User:               user,
		AccessToken:        accessToken,
		AccessExpiresAt:    expiresAt,
		RefreshToken:       refreshPlain,
		Roles:              roles,
		ActiveRole:         active,
		NeedsRoleSelection: selection == nil && len(roles) > 1,
	}, nil
}

func generateRefreshToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func hashRefreshToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}
