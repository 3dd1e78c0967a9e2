package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// AuthHandler exposes account and session endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("name, email, password required", nil)
	}

	session, err := h.auth.Register(c.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": sessionResponse(session)})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	session, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": sessionResponse(session)})
}

// SelectRole handles POST /auth/select-role.
func (h *AuthHandler) SelectRole(c *fiber.Ctx) error {
	rc, ok := auth.ContextFrom(c)
	if !ok {
		return apperrors.NewAuthentication("authentication required")
	}
	var req dto.SelectRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.RoleCode == "" {
		return apperrors.NewValidationError("role_code required", nil)
	}

	selection := domain.RoleClaim{Code: req.RoleCode, CompanyID: req.CompanyID}
	session, err := h.auth.SelectRole(c.UserContext(), rc.UserID, selection)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": sessionResponse(session)})
}

// Refresh handles POST /auth/refresh.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.RefreshToken == "" {
		return apperrors.NewValidationError("refresh_token required", nil)
	}

	session, err := h.auth.Refresh(c.UserContext(), req.RefreshToken, req.ActiveRole)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": sessionResponse(session)})
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req dto.LogoutRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.RefreshToken == "" {
		return apperrors.NewValidationError("refresh_token required", nil)
	}
	if err := h.auth.Logout(c.UserContext(), req.RefreshToken); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	rc, ok := auth.ContextFrom(c)
	if !ok {
		return apperrors.NewAuthentication("authentication required")
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"user": dto.UserResponse{
			ID:    rc.User.ID,
			Name:  rc.User.Name,
			Email: rc.User.Email,
		},
		"roles":       rc.Roles,
		"active_role": rc.ActiveRole,
	}})
}

func sessionResponse(session *service.Session) dto.SessionResponse {
	return dto.SessionResponse{
		User: dto.UserResponse{
			ID:    session.User.ID,
			Name:  session.User.Name,
			Email: session.User.Email,
		},
		AccessToken:        session.AccessToken,
		AccessExpiresAt:    session.AccessExpiresAt,
		RefreshToken:       session.RefreshToken,
		Roles:              session.Roles,
		ActiveRole:         session.ActiveRole,
		NeedsRoleSelection: session.NeedsRoleSelection,
	}
}
