package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

const contextKey = "request_context"

// Middleware validates bearer tokens and resolves the per-request
// context, including the active role claimed by the credential.
type Middleware struct {
	tokens *TokenManager
	users  repository.UserRepository
}

// NewMiddleware constructs middleware.
func NewMiddleware(tokens *TokenManager, users repository.UserRepository) *Middleware {
	return &Middleware{tokens: tokens, users: users}
}

// Handle enforces authentication for protected routes. It terminates
// the request before any business logic when the credential is
// missing, invalid or expired, or when the account is suspended.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewAuthentication("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewAuthentication("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewAuthentication("invalid token")
	}

	user, err := m.users.GetByID(c.Context(), claims.Subject)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewAuthentication("user not found")
		}
		return apperrors.MapError(err)
	}
	if !user.CanAuthenticate() {
		return apperrors.NewAuthentication("account is not active")
	}

	rc := RequestContext{
		UserID:     user.ID,
		User:       user,
		Roles:      claims.Roles,
		ActiveRole: claims.ActiveRole,
	}
	c.Locals(contextKey, rc)
	return c.Next()
}

// ContextFrom retrieves the resolved request context.
func ContextFrom(c *fiber.Ctx) (RequestContext, bool) {
	val := c.Locals(contextKey)
	if val == nil {
		return RequestContext{}, false
	}
	rc, ok := val.(RequestContext)
	return rc, ok
}
