package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// TicketsHandler exposes ticket endpoints.
type TicketsHandler struct {
	tickets *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{tickets: ticketService}
}

// Create handles POST /tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	rc, ok := auth.ContextFrom(c)
	if !ok {
		return apperrors.NewAuthentication("authentication required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.CompanyID == "" || req.CategoryID == "" || req.Title == "" {
		return apperrors.NewValidationError("company_id, category_id, title required", nil)
	}

	ticket, err := h.tickets.Create(c.UserContext(), rc, service.TicketCreateInput{
		CompanyID:   req.CompanyID,
		CategoryID:  req.CategoryID,
		AreaID:      req.AreaID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// List handles GET /tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	rc, ok := auth.ContextFrom(c)
	if !ok {
		return apperrors.NewAuthentication("authentication required")
	}
	input := service.TicketListInput{
		Limit:  queryInt(c, "limit", 50),
		Offset: queryInt(c, "offset", 0),
	}
	if v := c.Query("company_id"); v != "" {
		input.CompanyID = &v
	}
	if v := c.Query("status"); v != "" {
		status := domain.TicketStatus(v)
		input.Status = &status
	}
	if v := c.Query("priority"); v != "" {
		priority := domain.TicketPriority(v)
		input.Priority = &priority
	}

	tickets, err := h.tickets.List(c.UserContext(), rc, input)
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get handles GET /tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	rc, ok := auth.ContextFrom(c)
	if !ok {
		return apperrors.NewAuthentication("authentication required")
	}
	ticket, thread, err := h.tickets.Get(c.UserContext(), rc, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket, thread)})
}

// Respond handles POST /tickets/:id/responses.
func (h *TicketsHandler) Respond(c *fiber.Ctx) error {
	rc, ok := auth.ContextFrom(c)
	if !ok {
		return apperrors.NewAuthentication("authentication required")
	}
	var req dto.RespondRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	response, err := h.tickets.Respond(c.UserContext(), rc, c.Params("id"), req.Content)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": responseItem(response)})
}

// Resolve handles POST /tickets/:id/resolve.
func (h *TicketsHandler) Resolve(c *fiber.Ctx) error {
	return h.transition(c, h.tickets.Resolve)
}

// Close handles POST /tickets/:id/close.
func (h *TicketsHandler) Close(c *fiber.Ctx) error {
	return h.transition(c, h.tickets.Close)
}

// Reopen handles POST /tickets/:id/reopen.
func (h *TicketsHandler) Reopen(c *fiber.Ctx) error {
	return h.transition(c, h.tickets.Reopen)
}

// Rate handles POST /tickets/:id/rating.
func (h *TicketsHandler) Rate(c *fiber.Ctx) error {
	rc, ok := auth.ContextFrom(c)
	if !ok {
		return apperrors.NewAuthentication("authentication required")
	}
	var req dto.RateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.tickets.Rate(c.UserContext(), rc, c.Params("id"), req.Rating, req.Comment)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// AssignAgent handles POST /tickets/:id/assignee.
func (h *TicketsHandler) AssignAgent(c *fiber.Ctx) error {
	rc, ok := auth.ContextFrom(c)
	if !ok {
		return apperrors.NewAuthentication("authentication required")
	}
	var req dto.AssignAgentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.AgentID == "" {
		return apperrors.NewValidationError("agent_id required", nil)
	}

	ticket, err := h.tickets.AssignAgent(c.UserContext(), rc, c.Params("id"), req.AgentID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// Delete handles DELETE /tickets/:id.
func (h *TicketsHandler) Delete(c *fiber.Ctx) error {
	rc, ok := auth.ContextFrom(c)
	if !ok {
		return apperrors.NewAuthentication("authentication required")
	}
	if err := h.tickets.Delete(c.UserContext(), rc, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func (h *TicketsHandler) transition(c *fiber.Ctx, op func(ctx context.Context, rc auth.RequestContext, ticketID string) (*domain.Ticket, error)) error {
	rc, ok := auth.ContextFrom(c)
	if !ok {
		return apperrors.NewAuthentication("authentication required")
	}
	ticket, err := op(c.UserContext(), rc, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

func queryInt(c *fiber.Ctx, key string, fallback int) int {
	val := c.Query(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}

func ticketSummary(t *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:           t.ID,
		Code:         t.Code,
		CompanyID:    t.CompanyID,
		CategoryID:   t.CategoryID,
		AreaID:       t.AreaID,
		OwnerAgentID: t.OwnerAgentID,
		Title:        t.Title,
		Status:       t.Status,
		Priority:     t.Priority,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func ticketDetail(t *domain.Ticket, thread []domain.TicketResponse) dto.TicketDetailResponse {
	responses := make([]dto.TicketResponseResponse, 0, len(thread))
	for i := range thread {
		responses = append(responses, responseItem(&thread[i]))
	}
	return dto.TicketDetailResponse{
		TicketSummary:   ticketSummary(t),
		Description:     t.Description,
		FirstResponseAt: t.FirstResponseAt,
		ResolvedAt:      t.ResolvedAt,
		ClosedAt:        t.ClosedAt,
		Rating:          t.Rating,
		RatingComment:   t.RatingComment,
		Responses:       responses,
	}
}

func responseItem(r *domain.TicketResponse) dto.TicketResponseResponse {
	return dto.TicketResponseResponse{
		ID:         r.ID,
		AuthorID:   r.AuthorID,
		AuthorType: r.AuthorType,
		Content:    r.Content,
		CreatedAt:  r.CreatedAt,
	}
}
