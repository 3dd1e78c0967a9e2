package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// TokenManager handles issuing and validating JWT access tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, ttlMinutes int) *TokenManager {
	if ttlMinutes <= 0 {
		ttlMinutes = 60
	}
	return &TokenManager{secret: []byte(secret), ttl: time.Duration(ttlMinutes) * time.Minute}
}

// Claims describes the JWT payload. Roles carries every active
// assignment as (code, company) pairs; ActiveRole is the selection that
// governs authorization for the token's lifetime. ActiveRole may be
// absent on tokens minted before role selection existed.
type Claims struct {
	Roles      []domain.RoleClaim `json:"roles"`
	ActiveRole *domain.RoleClaim  `json:"active_role,omitempty"`
	jwt.RegisteredClaims
}

// Issue signs a token for the user embedding their role assignments and
// the chosen active role. When selection is nil the first assignment is
// used, preserving pre-selection token behavior. A selection that does
// not correspond to a held assignment fails with an authentication
// error.
func (tm *TokenManager) Issue(userID string, assignments []domain.RoleAssignment, selection *domain.RoleClaim) (string, time.Time, error) {
	roles := RoleClaims(assignments)

	active, err := chooseActiveRole(roles, selection)
	if err != nil {
		return "", time.Time{}, err
	}

	now := time.Now()
	expiresAt := now.Add(tm.ttl)
	claims := &Claims{
		Roles:      roles,
		ActiveRole: active,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseToken validates signature and expiry and returns claims.
func (tm *TokenManager) ParseToken(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// RoleClaims converts assignments that may still back authorization
// into token claims. Every authenticated user is at least USER, so an
// empty assignment list yields the implicit USER claim.
func RoleClaims(assignments []domain.RoleAssignment) []domain.RoleClaim {
	roles := make([]domain.RoleClaim, 0, len(assignments))
	for i := range assignments {
		if !assignments[i].Satisfies() {
			continue
		}
		roles = append(roles, domain.RoleClaim{
			Code:      assignments[i].RoleCode,
			CompanyID: assignments[i].CompanyID,
		})
	}
	if len(roles) == 0 {
		roles = append(roles, domain.RoleClaim{Code: domain.RoleUser})
	}
	return roles
}

func chooseActiveRole(roles []domain.RoleClaim, selection *domain.RoleClaim) (*domain.RoleClaim, error) {
	if selection == nil {
		first := roles[0]
		return &first, nil
	}
	for _, role := range roles {
		if role.Code == selection.Code && sameCompany(role.CompanyID, selection.CompanyID) {
			chosen := role
			return &chosen, nil
		}
	}
	return nil, apperrors.NewAuthentication("selected role is not assigned to user")
}

func sameCompany(a, b *string) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}
