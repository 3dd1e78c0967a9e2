package lifecycle

import (
	"testing"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

func openTicket() *domain.Ticket {
	return &domain.Ticket{
		ID:                     "t1",
		CreatedByUserID:        "u1",
		Status:                 domain.TicketStatusOpen,
		Priority:               domain.TicketPriorityMedium,
		LastResponseAuthorType: domain.AuthorTypeNone,
	}
}

func agentActor() Actor { return Actor{ID: "a1", Kind: domain.AuthorTypeAgent} }
func userActor() Actor  { return Actor{ID: "u1", Kind: domain.AuthorTypeUser} }

func TestAgentFirstResponseMovesOpenToPending(t *testing.T) {
	ticket := openTicket()
	now := time.Now()

	if err := RecordAgentResponse(ticket, "a1", now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ticket.Status != domain.TicketStatusPending {
		t.Fatalf("expected PENDING, got %s", ticket.Status)
	}
	if ticket.FirstResponseAt == nil || !ticket.FirstResponseAt.Equal(now) {
		t.Fatalf("first_response_at not stamped")
	}
	if ticket.OwnerAgentID == nil || *ticket.OwnerAgentID != "a1" {
		t.Fatalf("owner not claimed")
	}
	if ticket.LastResponseAuthorType != domain.AuthorTypeAgent {
		t.Fatalf("last response author not agent")
	}
}

func TestFirstResponseStampedOnlyOnce(t *testing.T) {
	ticket := openTicket()
	first := time.Now()
	if err := RecordAgentResponse(ticket, "a1", first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	later := first.Add(time.Hour)
	if err := RecordAgentResponse(ticket, "a2", later); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ticket.FirstResponseAt.Equal(first) {
		t.Fatalf("first_response_at was overwritten")
	}
	if *ticket.OwnerAgentID != "a1" {
		t.Fatalf("owner was reassigned by later response")
	}
}

func TestUserResponseDoesNotChangeStatus(t *testing.T) {
	ticket := openTicket()
	if err := RecordUserResponse(ticket, time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ticket.Status != domain.TicketStatusOpen {
		t.Fatalf("user response must not transition status, got %s", ticket.Status)
	}
	if ticket.FirstResponseAt != nil {
		t.Fatalf("user response must not stamp first_response_at")
	}
}

func TestRespondToClosedTicketRejected(t *testing.T) {
	ticket := openTicket()
	ticket.Status = domain.TicketStatusClosed

	if err := RecordAgentResponse(ticket, "a1", time.Now()); !apperrors.IsCode(err, "TICKET_CLOSED") {
		t.Fatalf("expected TICKET_CLOSED, got %v", err)
	}
	if err := RecordUserResponse(ticket, time.Now()); !apperrors.IsCode(err, "TICKET_CLOSED") {
		t.Fatalf("expected TICKET_CLOSED, got %v", err)
	}
}

func TestResolveByAgent(t *testing.T) {
	ticket := openTicket()
	now := time.Now()
	status, err := Transition(ticket, ActionResolve, agentActor(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != domain.TicketStatusResolved {
		t.Fatalf("expected RESOLVED, got %s", status)
	}
	if ticket.ResolvedAt == nil {
		t.Fatalf("resolved_at not stamped")
	}
}

func TestResolveByUserDenied(t *testing.T) {
	ticket := openTicket()
	if _, err := Transition(ticket, ActionResolve, userActor(), time.Now()); !apperrors.IsCode(err, "INSUFFICIENT_PERMISSIONS") {
		t.Fatalf("expected denial, got %v", err)
	}
}

func TestResolveResolvedConflicts(t *testing.T) {
	ticket := openTicket()
	ticket.Status = domain.TicketStatusResolved
	if _, err := Transition(ticket, ActionResolve, agentActor(), time.Now()); !apperrors.IsCode(err, "ALREADY_RESOLVED") {
		t.Fatalf("expected ALREADY_RESOLVED, got %v", err)
	}
}

func TestUserClosesResolvedTicket(t *testing.T) {
	ticket := openTicket()
	ticket.Status = domain.TicketStatusResolved
	ticket.LastResponseAuthorType = domain.AuthorTypeAgent

	status, err := Transition(ticket, ActionClose, userActor(), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != domain.TicketStatusClosed {
		t.Fatalf("expected CLOSED, got %s", status)
	}
	if ticket.ClosedAt == nil {
		t.Fatalf("closed_at not stamped")
	}
	if ticket.LastResponseAuthorType != domain.AuthorTypeAgent {
		t.Fatalf("closing must preserve last_response_author_type")
	}
}

func TestUserCannotCloseOpenTicket(t *testing.T) {
	ticket := openTicket()
	if _, err := Transition(ticket, ActionClose, userActor(), time.Now()); !apperrors.IsCode(err, "INSUFFICIENT_PERMISSIONS") {
		t.Fatalf("expected denial, got %v", err)
	}
}

func TestAgentClosesFromAnyNonTerminalState(t *testing.T) {
	for _, status := range []domain.TicketStatus{domain.TicketStatusOpen, domain.TicketStatusPending, domain.TicketStatusResolved} {
		ticket := openTicket()
		ticket.Status = status
		if _, err := Transition(ticket, ActionClose, agentActor(), time.Now()); err != nil {
			t.Fatalf("close from %s: %v", status, err)
		}
	}
}

func TestCloseClosedConflicts(t *testing.T) {
	ticket := openTicket()
	ticket.Status = domain.TicketStatusClosed
	if _, err := Transition(ticket, ActionClose, agentActor(), time.Now()); !apperrors.IsCode(err, "ALREADY_CLOSED") {
		t.Fatalf("expected ALREADY_CLOSED, got %v", err)
	}
}

func TestReopenClearsTimestamps(t *testing.T) {
	ticket := openTicket()
	ticket.Status = domain.TicketStatusResolved
	resolvedAt := time.Now()
	ticket.ResolvedAt = &resolvedAt

	status, err := Transition(ticket, ActionReopen, userActor(), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != domain.TicketStatusOpen {
		t.Fatalf("expected OPEN, got %s", status)
	}
	if ticket.ResolvedAt != nil || ticket.ClosedAt != nil {
		t.Fatalf("reopen must clear resolved_at and closed_at")
	}
}

func TestUserReopenInsideWindow(t *testing.T) {
	ticket := openTicket()
	ticket.Status = domain.TicketStatusClosed
	closedAt := time.Now().Add(-29 * 24 * time.Hour)
	ticket.ClosedAt = &closedAt

	if _, err := Transition(ticket, ActionReopen, userActor(), time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUserReopenAfterWindowDenied(t *testing.T) {
	ticket := openTicket()
	ticket.Status = domain.TicketStatusClosed
	closedAt := time.Now().Add(-31 * 24 * time.Hour)
	ticket.ClosedAt = &closedAt

	if _, err := Transition(ticket, ActionReopen, userActor(), time.Now()); !apperrors.IsCode(err, "INSUFFICIENT_PERMISSIONS") {
		t.Fatalf("expected denial, got %v", err)
	}
}

func TestAgentReopenIgnoresWindow(t *testing.T) {
	ticket := openTicket()
	ticket.Status = domain.TicketStatusClosed
	closedAt := time.Now().Add(-90 * 24 * time.Hour)
	ticket.ClosedAt = &closedAt

	if _, err := Transition(ticket, ActionReopen, agentActor(), time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestReopenOpenTicketConflicts(t *testing.T) {
	ticket := openTicket()
	if _, err := Transition(ticket, ActionReopen, userActor(), time.Now()); !apperrors.IsCode(err, "CANNOT_REOPEN") {
		t.Fatalf("expected CANNOT_REOPEN, got %v", err)
	}
}

func TestCanTransitionTable(t *testing.T) {
	if !CanTransition(domain.TicketStatusOpen, domain.TicketStatusPending) {
		t.Fatalf("OPEN -> PENDING should be allowed")
	}
	if CanTransition(domain.TicketStatusPending, domain.TicketStatusOpen) {
		t.Fatalf("PENDING -> OPEN should not be allowed")
	}
	if !CanTransition(domain.TicketStatusClosed, domain.TicketStatusOpen) {
		t.Fatalf("CLOSED -> OPEN should be allowed")
	}
}
