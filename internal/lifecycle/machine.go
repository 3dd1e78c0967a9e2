// Package lifecycle owns the ticket state machine: which status
// transitions exist, who may trigger them, and which timestamps they
// stamp. It performs no I/O; services persist the mutated ticket.
package lifecycle

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// Action enumerates explicit lifecycle actions.
type Action string

const (
	ActionResolve Action = "resolve"
	ActionClose   Action = "close"
	ActionReopen  Action = "reopen"
)

// Actor identifies who triggers a transition. Kind distinguishes the
// ticket's creating user from an agent acting for the company; company
// scoping is enforced upstream by the authorization gate.
type Actor struct {
	ID   string
	Kind domain.AuthorType
}

// UserReopenWindow bounds how long after closing the creating user may
// still reopen a ticket. Agents are not time-bounded.
const UserReopenWindow = 30 * 24 * time.Hour

var allowedTransitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusOpen:     {domain.TicketStatusPending, domain.TicketStatusResolved, domain.TicketStatusClosed},
	domain.TicketStatusPending:  {domain.TicketStatusResolved, domain.TicketStatusClosed},
	domain.TicketStatusResolved: {domain.TicketStatusClosed, domain.TicketStatusOpen},
	domain.TicketStatusClosed:   {domain.TicketStatusOpen},
}

// CanTransition reports whether an edge exists between two statuses.
func CanTransition(current, next domain.TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// Transition validates and applies an explicit lifecycle action,
// mutating the ticket in place. The returned status is the ticket's
// status after the transition.
func Transition(t *domain.Ticket, action Action, actor Actor, now time.Time) (domain.TicketStatus, error) {
	var err error
	switch action {
	case ActionResolve:
		err = applyResolve(t, actor, now)
	case ActionClose:
		err = applyClose(t, actor, now)
	case ActionReopen:
		err = applyReopen(t, actor, now)
	default:
		err = apperrors.NewValidationError("unknown ticket action", map[string]any{"action": string(action)})
	}
	if err != nil {
		return t.Status, err
	}
	return t.Status, nil
}

// RecordAgentResponse applies the response-driven transition: the first
// agent response stamps first_response_at exactly once, claims
// ownership when the ticket is unassigned, and moves OPEN to PENDING.
func RecordAgentResponse(t *domain.Ticket, agentID string, now time.Time) error {
	if t.Status == domain.TicketStatusClosed {
		return apperrors.NewConflict("TICKET_CLOSED", "cannot respond to a closed ticket")
	}
	if t.FirstResponseAt == nil {
		firstResponse := now
		t.FirstResponseAt = &firstResponse
	}
	if t.OwnerAgentID == nil {
		owner := agentID
		t.OwnerAgentID = &owner
	}
	if t.Status == domain.TicketStatusOpen {
		t.Status = domain.TicketStatusPending
	}
	t.LastResponseAuthorType = domain.AuthorTypeAgent
	return nil
}

// RecordUserResponse applies the user side of a conversation turn.
func RecordUserResponse(t *domain.Ticket, now time.Time) error {
	if t.Status == domain.TicketStatusClosed {
		return apperrors.NewConflict("TICKET_CLOSED", "cannot respond to a closed ticket")
	}
	t.LastResponseAuthorType = domain.AuthorTypeUser
	return nil
}

func applyResolve(t *domain.Ticket, actor Actor, now time.Time) error {
	if actor.Kind != domain.AuthorTypeAgent {
		return apperrors.NewAuthorization("INSUFFICIENT_PERMISSIONS", "only agents may resolve tickets")
	}
	switch t.Status {
	case domain.TicketStatusResolved:
		return apperrors.NewConflict("ALREADY_RESOLVED", "ticket is already resolved")
	case domain.TicketStatusClosed:
		return apperrors.NewConflict("ALREADY_CLOSED", "ticket is already closed")
	}
	resolvedAt := now
	t.Status = domain.TicketStatusResolved
	t.ResolvedAt = &resolvedAt
	return nil
}

func applyClose(t *domain.Ticket, actor Actor, now time.Time) error {
	if t.Status == domain.TicketStatusClosed {
		return apperrors.NewConflict("ALREADY_CLOSED", "ticket is already closed")
	}
	if actor.Kind == domain.AuthorTypeUser && t.Status != domain.TicketStatusResolved {
		return apperrors.NewAuthorization("INSUFFICIENT_PERMISSIONS", "users may only close resolved tickets")
	}
	closedAt := now
	t.Status = domain.TicketStatusClosed
	t.ClosedAt = &closedAt
	// last_response_author_type is deliberately preserved.
	return nil
}

func applyReopen(t *domain.Ticket, actor Actor, now time.Time) error {
	if t.Status != domain.TicketStatusResolved && t.Status != domain.TicketStatusClosed {
		return apperrors.NewConflict("CANNOT_REOPEN", "only resolved or closed tickets can be reopened")
	}
	if actor.Kind == domain.AuthorTypeUser && t.Status == domain.TicketStatusClosed {
		if t.ClosedAt != nil && now.Sub(*t.ClosedAt) > UserReopenWindow {
			return apperrors.NewAuthorization("INSUFFICIENT_PERMISSIONS", "reopen window has expired")
		}
	}
	t.Status = domain.TicketStatusOpen
	t.ResolvedAt = nil
	t.ClosedAt = nil
	return nil
}
