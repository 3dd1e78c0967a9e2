package events

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketEscalated     EventType = "ticket_escalated"
	EventTicketResponded     EventType = "ticket_responded"
	EventRoleAssigned        EventType = "role_assigned"
	EventRoleRevoked         EventType = "role_revoked"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID string            `json:"user_id"`
	Role   *domain.RoleClaim `json:"role,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SubjectID string      `json:"subject_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	CompanyID  string                `json:"company_id"`
	CategoryID string                `json:"category_id"`
	Priority   domain.TicketPriority `json:"priority"`
	Title      string                `json:"title"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketEscalatedPayload payload.
type TicketEscalatedPayload struct {
	OldPriority domain.TicketPriority `json:"old_priority"`
	NewPriority domain.TicketPriority `json:"new_priority"`
}

// TicketRespondedPayload payload.
type TicketRespondedPayload struct {
	ResponseID  string            `json:"response_id"`
	AuthorType  domain.AuthorType `json:"author_type"`
	BodyPreview string            `json:"body_preview"`
}

// RoleAssignedPayload payload.
type RoleAssignedPayload struct {
	AssignmentID string          `json:"assignment_id"`
	RoleCode     domain.RoleCode `json:"role_code"`
	CompanyID    *string         `json:"company_id,omitempty"`
}

// RoleRevokedPayload payload.
type RoleRevokedPayload struct {
	AssignmentID string          `json:"assignment_id"`
	RoleCode     domain.RoleCode `json:"role_code"`
}
