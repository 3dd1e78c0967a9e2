package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/lifecycle"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// Ticket role sets, derived from the permission catalog.
var (
	ticketAgentRoles  = domain.RolesWithPermission(domain.PermTicketResolve)
	ticketReadRoles   = domain.RolesWithPermission(domain.PermTicketResolve, domain.PermTicketDelete)
	ticketAssignRoles = domain.RolesWithPermission(domain.PermTicketAssign)
	ticketDeleteRoles = domain.RolesWithPermission(domain.PermTicketDelete)
)

// TicketService coordinates ticket workflows. Authorization decisions
// go through the gate; status decisions go through the lifecycle
// package; this service wires them to persistence and events.
type TicketService struct {
	tickets    repository.TicketRepository
	responses  repository.ResponseRepository
	companies  repository.CompanyRepository
	categories repository.CategoryRepository
	areas      repository.AreaRepository
	gate       *auth.Gate
	dispatcher events.Dispatcher
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo   repository.TicketRepository
	ResponseRepo repository.ResponseRepository
	CompanyRepo  repository.CompanyRepository
	CategoryRepo repository.CategoryRepository
	AreaRepo     repository.AreaRepository
	Gate         *auth.Gate
	Dispatcher   events.Dispatcher
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	CompanyID   string
	CategoryID  string
	AreaID      *string
	Title       string
	Description string
	Priority    domain.TicketPriority
}

// TicketListInput describes listing filters; visibility scoping by the
// caller's active role is applied on top.
type TicketListInput struct {
	CompanyID *string
	Status    *domain.TicketStatus
	Priority  *domain.TicketPriority
	Limit     int
	Offset    int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		responses:  deps.ResponseRepo,
		companies:  deps.CompanyRepo,
		categories: deps.CategoryRepo,
		areas:      deps.AreaRepo,
		gate:       deps.Gate,
		dispatcher: deps.Dispatcher,
	}
}

// Create opens a ticket in the target company. Category and optional
// area must belong to that company and be active.
func (s *TicketService) Create(ctx context.Context, rc auth.RequestContext, input TicketCreateInput) (*domain.Ticket, error) {
	company, err := s.companies.GetByID(ctx, input.CompanyID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("company", map[string]any{"company_id": input.CompanyID})
		}
		return nil, apperrors.MapError(err)
	}
	if company.Status != domain.CompanyStatusActive {
		return nil, apperrors.NewConflict("COMPANY_SUSPENDED", "company does not accept new tickets")
	}

	category, err := s.categories.GetByID(ctx, input.CategoryID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("category", map[string]any{"category_id": input.CategoryID})
		}
		return nil, apperrors.MapError(err)
	}
	if category.CompanyID != input.CompanyID {
		return nil, apperrors.NewValidationError("category belongs to another company", map[string]any{"category_id": input.CategoryID})
	}
	if !category.IsActive {
		return nil, apperrors.NewValidationError("category is inactive", map[string]any{"category_id": input.CategoryID})
	}

	if input.AreaID != nil {
		area, err := s.areas.GetByID(ctx, *input.AreaID)
		if err != nil {
			if err == pgx.ErrNoRows {
				return nil, apperrors.NewNotFound("area", map[string]any{"area_id": *input.AreaID})
			}
			return nil, apperrors.MapError(err)
		}
		if area.CompanyID != input.CompanyID {
			return nil, apperrors.NewValidationError("area belongs to another company", map[string]any{"area_id": *input.AreaID})
		}
		if !area.IsActive {
			return nil, apperrors.NewValidationError("area is inactive", map[string]any{"area_id": *input.AreaID})
		}
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title is required", nil)
	}

	code, err := s.nextTicketCode(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	ticket := &domain.Ticket{
		Code:                   code,
		CompanyID:              input.CompanyID,
		CategoryID:             input.CategoryID,
		AreaID:                 input.AreaID,
		CreatedByUserID:        rc.UserID,
		Title:                  title,
		Description:            strings.TrimSpace(input.Description),
		Status:                 domain.TicketStatusOpen,
		Priority:               input.Priority,
		LastResponseAuthorType: domain.AuthorTypeNone,
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.TicketPriorityMedium
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:      events.EventTicketCreated,
		SubjectID: ticket.ID,
		Actor:     requestActor(rc),
		Payload: events.TicketCreatedPayload{
			CompanyID:  ticket.CompanyID,
			CategoryID: ticket.CategoryID,
			Priority:   ticket.Priority,
			Title:      ticket.Title,
		},
	})
	return ticket, nil
}

// List returns tickets visible to the caller's active role. Users see
// their own tickets, company hats see their company's, the platform
// hat sees everything.
func (s *TicketService) List(ctx context.Context, rc auth.RequestContext, input TicketListInput) ([]domain.Ticket, error) {
	filter := repository.TicketFilter{
		Status:   input.Status,
		Priority: input.Priority,
		Limit:    input.Limit,
		Offset:   input.Offset,
	}

	switch {
	case rc.IsActiveRole(domain.RolePlatformAdmin):
		filter.CompanyID = input.CompanyID
	case rc.IsActiveRoleOneOf(ticketAgentRoles...):
		companyID := rc.ActiveCompanyID()
		if companyID == nil {
			return nil, apperrors.NewAuthorization(auth.ReasonWrongCompany, "active role has no company scope")
		}
		if err := s.gate.Authorize(ctx, rc, ticketAgentRoles, companyID); err != nil {
			return nil, err
		}
		filter.CompanyID = companyID
	default:
		userID := rc.UserID
		filter.CreatedByUserID = &userID
		filter.CompanyID = input.CompanyID
	}

	result, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return result, nil
}

// Get fetches a ticket with its conversation thread.
func (s *TicketService) Get(ctx context.Context, rc auth.RequestContext, ticketID string) (*domain.Ticket, []domain.TicketResponse, error) {
	ticket, err := s.loadVisible(ctx, rc, ticketID)
	if err != nil {
		return nil, nil, err
	}
	thread, err := s.responses.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return ticket, thread, nil
}

// Respond appends a response. Agent responses drive the OPEN to
// PENDING transition and stamp the first response time.
func (s *TicketService) Respond(ctx context.Context, rc auth.RequestContext, ticketID, content string) (*domain.TicketResponse, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("content is required", nil)
	}

	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	actor, err := s.resolveActor(ctx, rc, ticket)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if actor.Kind == domain.AuthorTypeAgent {
		err = lifecycle.RecordAgentResponse(ticket, actor.ID, now)
	} else {
		err = lifecycle.RecordUserResponse(ticket, now)
	}
	if err != nil {
		return nil, err
	}

	response := &domain.TicketResponse{
		TicketID:   ticket.ID,
		AuthorID:   actor.ID,
		AuthorType: actor.Kind,
		Content:    content,
	}
	if err := s.responses.Create(ctx, response); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:      events.EventTicketResponded,
		SubjectID: ticket.ID,
		Actor:     requestActor(rc),
		Payload: events.TicketRespondedPayload{
			ResponseID:  response.ID,
			AuthorType:  response.AuthorType,
			BodyPreview: stringPreview(content, 120),
		},
	})
	return response, nil
}

// Resolve marks the ticket resolved; agent hats only.
func (s *TicketService) Resolve(ctx context.Context, rc auth.RequestContext, ticketID string) (*domain.Ticket, error) {
	return s.transition(ctx, rc, ticketID, lifecycle.ActionResolve)
}

// Close closes the ticket. Users may close resolved tickets; agent
// hats may close from any non-terminal state.
func (s *TicketService) Close(ctx context.Context, rc auth.RequestContext, ticketID string) (*domain.Ticket, error) {
	return s.transition(ctx, rc, ticketID, lifecycle.ActionClose)
}

// Reopen moves a resolved or closed ticket back to OPEN. The creating
// user may reopen a closed ticket only inside the reopen window.
func (s *TicketService) Reopen(ctx context.Context, rc auth.RequestContext, ticketID string) (*domain.Ticket, error) {
	return s.transition(ctx, rc, ticketID, lifecycle.ActionReopen)
}

// Rate records the creator's satisfaction rating on a resolved or
// closed ticket.
func (s *TicketService) Rate(ctx context.Context, rc auth.RequestContext, ticketID string, rating int, comment *string) (*domain.Ticket, error) {
	if rating < 1 || rating > 5 {
		return nil, apperrors.NewValidationError("rating must be between 1 and 5", map[string]any{"rating": rating})
	}

	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.CreatedByUserID != rc.UserID {
		return nil, apperrors.NewAuthorization(auth.ReasonInsufficientPermissions, "only the ticket creator may rate it")
	}
	if ticket.Status != domain.TicketStatusResolved && ticket.Status != domain.TicketStatusClosed {
		return nil, apperrors.NewConflict("NOT_RATEABLE", "only resolved or closed tickets can be rated")
	}
	if ticket.Rating != nil {
		return nil, apperrors.NewConflict("ALREADY_RATED", "ticket has already been rated")
	}

	ticket.Rating = &rating
	ticket.RatingComment = comment
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// AssignAgent sets the ticket owner; agent hats of the company only.
func (s *TicketService) AssignAgent(ctx context.Context, rc auth.RequestContext, ticketID, agentID string) (*domain.Ticket, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Authorize(ctx, rc, ticketAssignRoles, &ticket.CompanyID); err != nil {
		return nil, err
	}
	if ticket.IsTerminal() {
		return nil, apperrors.NewConflict("TICKET_CLOSED", "cannot assign a closed ticket")
	}

	ticket.OwnerAgentID = &agentID
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// Delete removes a ticket permanently. Only closed tickets can be
// deleted, and only by admin hats.
func (s *TicketService) Delete(ctx context.Context, rc auth.RequestContext, ticketID string) error {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return err
	}
	if err := s.gate.Authorize(ctx, rc, ticketDeleteRoles, &ticket.CompanyID); err != nil {
		return err
	}
	if !ticket.IsTerminal() {
		return apperrors.NewConflict("NOT_CLOSED", "only closed tickets can be deleted")
	}
	return apperrors.MapError(s.tickets.Delete(ctx, ticket.ID))
}

func (s *TicketService) transition(ctx context.Context, rc auth.RequestContext, ticketID string, action lifecycle.Action) (*domain.Ticket, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	actor, err := s.resolveActor(ctx, rc, ticket)
	if err != nil {
		return nil, err
	}

	oldStatus := ticket.Status
	if _, err := lifecycle.Transition(ticket, action, actor, time.Now()); err != nil {
		return nil, err
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:      events.EventTicketStatusChanged,
		SubjectID: ticket.ID,
		Actor:     requestActor(rc),
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: ticket.Status,
		},
	})
	return ticket, nil
}

// resolveActor decides in which capacity the caller touches the
// ticket. An agent hat for the ticket's company acts as AGENT; the
// creating user acts as USER; anyone else is denied.
func (s *TicketService) resolveActor(ctx context.Context, rc auth.RequestContext, ticket *domain.Ticket) (lifecycle.Actor, error) {
	if rc.IsActiveRoleOneOf(ticketAgentRoles...) {
		if err := s.gate.Authorize(ctx, rc, ticketAgentRoles, &ticket.CompanyID); err != nil {
			return lifecycle.Actor{}, err
		}
		return lifecycle.Actor{ID: rc.UserID, Kind: domain.AuthorTypeAgent}, nil
	}
	if ticket.CreatedByUserID == rc.UserID {
		return lifecycle.Actor{ID: rc.UserID, Kind: domain.AuthorTypeUser}, nil
	}
	// Legacy tokens carry no active role; fall back to the gate's
	// any-assignment check for agent capacity.
	if rc.ActiveRole == nil {
		if err := s.gate.Authorize(ctx, rc, ticketAgentRoles, &ticket.CompanyID); err == nil {
			return lifecycle.Actor{ID: rc.UserID, Kind: domain.AuthorTypeAgent}, nil
		}
	}
	return lifecycle.Actor{}, apperrors.NewAuthorization(auth.ReasonInsufficientPermissions, "no access to this ticket")
}

// loadVisible applies read visibility: creator, company agent hats and
// the platform hat.
func (s *TicketService) loadVisible(ctx context.Context, rc auth.RequestContext, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.CreatedByUserID == rc.UserID {
		return ticket, nil
	}
	if err := s.gate.Authorize(ctx, rc, ticketReadRoles, &ticket.CompanyID); err != nil {
		return nil, err
	}
	return ticket, nil
}

// getTicket accepts either the ticket UUID or its public TKT code.
func (s *TicketService) getTicket(ctx context.Context, ref string) (*domain.Ticket, error) {
	var (
		ticket *domain.Ticket
		err    error
	)
	if strings.HasPrefix(ref, "TKT-") {
		ticket, err = s.tickets.GetByCode(ctx, ref)
	} else {
		ticket, err = s.tickets.GetByID(ctx, ref)
	}
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket": ref})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *TicketService) nextTicketCode(ctx context.Context) (string, error) {
	n, err := s.tickets.NextCodeNumber(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("TKT-%d-%05d", time.Now().Year(), n), nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
