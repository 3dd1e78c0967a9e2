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

// RolesHandler exposes role assignment endpoints.
type RolesHandler struct {
	roles *service.RoleService
}

// NewRolesHandler constructs handler.
func NewRolesHandler(roleService *service.RoleService) *RolesHandler {
	return &RolesHandler{roles: roleService}
}

// Assign handles POST /roles/assignments.
func (h *RolesHandler) Assign(c *fiber.Ctx) error {
	rc, ok := auth.ContextFrom(c)
	if !ok {
		return apperrors.NewAuthentication("authentication required")
	}
	var req dto.AssignRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.UserID == "" || req.RoleCode == "" {
		return apperrors.NewValidationError("user_id and role_code required", nil)
	}

	assignment, err := h.roles.Assign(c.UserContext(), rc, service.RoleAssignInput{
		UserID:    req.UserID,
		RoleCode:  req.RoleCode,
		CompanyID: req.CompanyID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": assignmentResponse(assignment)})
}

// Revoke handles DELETE /roles/assignments/:id.
func (h *RolesHandler) Revoke(c *fiber.Ctx) error {
	rc, ok := auth.ContextFrom(c)
	if !ok {
		return apperrors.NewAuthentication("authentication required")
	}
	if err := h.roles.Revoke(c.UserContext(), rc, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ListForUser handles GET /users/:id/roles.
func (h *RolesHandler) ListForUser(c *fiber.Ctx) error {
	rc, ok := auth.ContextFrom(c)
	if !ok {
		return apperrors.NewAuthentication("authentication required")
	}
	assignments, err := h.roles.ListForUser(c.UserContext(), rc, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.RoleAssignmentResponse, 0, len(assignments))
	for i := range assignments {
		items = append(items, assignmentResponse(&assignments[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func assignmentResponse(a *domain.RoleAssignment) dto.RoleAssignmentResponse {
	return dto.RoleAssignmentResponse{
		ID:         a.ID,
		UserID:     a.UserID,
		RoleCode:   a.RoleCode,
		CompanyID:  a.CompanyID,
		Active:     a.Satisfies(),
		AssignedAt: a.AssignedAt,
		RevokedAt:  a.RevokedAt,
	}
}
