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

// AnnouncementsHandler exposes announcement endpoints.
type AnnouncementsHandler struct {
	announcements *service.AnnouncementService
}

// NewAnnouncementsHandler constructs handler.
func NewAnnouncementsHandler(announcementService *service.AnnouncementService) *AnnouncementsHandler {
	return &AnnouncementsHandler{announcements: announcementService}
}

// Create handles POST /companies/:id/announcements.
func (h *AnnouncementsHandler) Create(c *fiber.Ctx) error {
	rc, ok := auth.ContextFrom(c)
	if !ok {
		return apperrors.NewAuthentication("authentication required")
	}
	req, err := parseAnnouncementRequest(c)
	if err != nil {
		return err
	}

	announcement, err := h.announcements.Create(c.UserContext(), rc, c.Params("id"), service.AnnouncementInput{
		Kind:    req.Kind,
		Title:   req.Title,
		Body:    req.Body,
		Publish: req.Publish,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": announcementResponse(announcement)})
}

// Update handles PUT /announcements/:id.
func (h *AnnouncementsHandler) Update(c *fiber.Ctx) error {
	rc, ok := auth.ContextFrom(c)
	if !ok {
		return apperrors.NewAuthentication("authentication required")
	}
	req, err := parseAnnouncementRequest(c)
	if err != nil {
		return err
	}

	announcement, err := h.announcements.Update(c.UserContext(), rc, c.Params("id"), service.AnnouncementInput{
		Kind:    req.Kind,
		Title:   req.Title,
		Body:    req.Body,
		Publish: req.Publish,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": announcementResponse(announcement)})
}

// Delete handles DELETE /announcements/:id.
func (h *AnnouncementsHandler) Delete(c *fiber.Ctx) error {
	rc, ok := auth.ContextFrom(c)
	if !ok {
		return apperrors.NewAuthentication("authentication required")
	}
	if err := h.announcements.Delete(c.UserContext(), rc, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ListForCompany handles GET /companies/:id/announcements.
func (h *AnnouncementsHandler) ListForCompany(c *fiber.Ctx) error {
	rc, ok := auth.ContextFrom(c)
	if !ok {
		return apperrors.NewAuthentication("authentication required")
	}
	announcements, err := h.announcements.ListForCompany(c.UserContext(), rc, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.AnnouncementResponse, 0, len(announcements))
	for i := range announcements {
		items = append(items, announcementResponse(&announcements[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func parseAnnouncementRequest(c *fiber.Ctx) (*dto.AnnouncementRequest, error) {
	var req dto.AnnouncementRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, apperrors.NewValidationError("invalid payload", nil)
	}
	switch req.Kind {
	case domain.AnnouncementKindNews, domain.AnnouncementKindIncident, domain.AnnouncementKindMaintenance:
	default:
		return nil, apperrors.NewValidationError("unknown announcement kind", map[string]any{"kind": req.Kind})
	}
	if req.Title == "" {
		return nil, apperrors.NewValidationError("title required", nil)
	}
	return &req, nil
}

func announcementResponse(a *domain.Announcement) dto.AnnouncementResponse {
	return dto.AnnouncementResponse{
		ID:          a.ID,
		CompanyID:   a.CompanyID,
		AuthorID:    a.AuthorID,
		Kind:        a.Kind,
		Title:       a.Title,
		Body:        a.Body,
		PublishedAt: a.PublishedAt,
		CreatedAt:   a.CreatedAt,
	}
}
