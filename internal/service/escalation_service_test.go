package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/scheduler"
)

type escalationEnv struct {
	service    *EscalationService
	tickets    *fakeTicketRepo
	queue      scheduler.Queue
	dispatcher events.Dispatcher
}

func newEscalationEnv(delay time.Duration) *escalationEnv {
	env := &escalationEnv{
		tickets:    newFakeTicketRepo(),
		queue:      scheduler.NewMemoryQueue(),
		dispatcher: events.NewInMemoryDispatcher(zap.NewNop()),
	}
	env.service = NewEscalationService(EscalationDependencies{
		TicketRepo: env.tickets,
		Queue:      env.queue,
		Dispatcher: env.dispatcher,
		Metrics:    observability.NewMetrics(),
		Delay:      delay,
	})
	return env
}

func (env *escalationEnv) openTicket(priority domain.TicketPriority) *domain.Ticket {
	return env.tickets.add(&domain.Ticket{
		Code:            "TKT-2026-00001",
		CompanyID:       "c1",
		CreatedByUserID: "u1",
		Title:           "slow dashboard",
		Status:          domain.TicketStatusOpen,
		Priority:        priority,
	})
}

func TestEscalationSchedulesOnTicketCreated(t *testing.T) {
	env := newEscalationEnv(24 * time.Hour)
	worker := scheduler.NewWorker(env.queue, zap.NewNop(), nil, time.Second, 1)
	env.service.Register(env.dispatcher, worker)

	now := time.Now()
	err := env.dispatcher.Publish(context.Background(), events.Event{
		ID:        "ev1",
		Type:      events.EventTicketCreated,
		SubjectID: "t1",
		Timestamp: now,
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	// Nothing is due before the delay elapses.
	early, err := env.queue.Claim(context.Background(), now.Add(time.Hour), 10)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if len(early) != 0 {
		t.Fatalf("task fired before its delay: %+v", early)
	}

	due, err := env.queue.Claim(context.Background(), now.Add(25*time.Hour), 10)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if len(due) != 1 || due[0].Payload["ticket_id"] != "t1" {
		t.Fatalf("expected one escalation task for t1, got %+v", due)
	}
	if due[0].Kind != scheduler.TaskKindEscalateTicket {
		t.Fatalf("unexpected task kind %s", due[0].Kind)
	}
}

func TestEscalationEscalatesStaleOpenTicket(t *testing.T) {
	env := newEscalationEnv(24 * time.Hour)
	ticket := env.openTicket(domain.TicketPriorityMedium)

	var escalated []events.Event
	env.dispatcher.Subscribe(events.EventTicketEscalated, func(_ context.Context, event events.Event) error {
		escalated = append(escalated, event)
		return nil
	})

	outcome, err := env.service.Check(context.Background(), ticket.ID)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if outcome != OutcomeEscalated {
		t.Fatalf("outcome = %s, want escalated", outcome)
	}

	stored, err := env.tickets.GetByID(context.Background(), ticket.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Priority != domain.TicketPriorityHigh {
		t.Fatalf("priority = %s, want HIGH", stored.Priority)
	}
	if stored.Status != domain.TicketStatusOpen {
		t.Fatalf("escalation must not change status, got %s", stored.Status)
	}
	if len(escalated) != 1 || escalated[0].SubjectID != ticket.ID {
		t.Fatalf("ticket_escalated event not published: %+v", escalated)
	}
}

func TestEscalationSkipsAnsweredTicket(t *testing.T) {
	env := newEscalationEnv(24 * time.Hour)
	ticket := env.openTicket(domain.TicketPriorityMedium)
	answeredAt := time.Now()
	ticket.FirstResponseAt = &answeredAt

	outcome, err := env.service.Check(context.Background(), ticket.ID)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if outcome != OutcomeAlreadyHandled {
		t.Fatalf("outcome = %s, want already_handled", outcome)
	}

	stored, _ := env.tickets.GetByID(context.Background(), ticket.ID)
	if stored.Priority != domain.TicketPriorityMedium {
		t.Fatalf("answered ticket must keep its priority, got %s", stored.Priority)
	}
}

func TestEscalationSkipsNonOpenAndHighTickets(t *testing.T) {
	env := newEscalationEnv(24 * time.Hour)

	resolved := env.openTicket(domain.TicketPriorityMedium)
	resolved.Status = domain.TicketStatusResolved
	if outcome, err := env.service.Check(context.Background(), resolved.ID); err != nil || outcome != OutcomeAlreadyHandled {
		t.Fatalf("resolved ticket: outcome=%s err=%v", outcome, err)
	}

	high := env.openTicket(domain.TicketPriorityHigh)
	if outcome, err := env.service.Check(context.Background(), high.ID); err != nil || outcome != OutcomeAlreadyHandled {
		t.Fatalf("high ticket: outcome=%s err=%v", outcome, err)
	}
}

func TestEscalationTicketGone(t *testing.T) {
	env := newEscalationEnv(24 * time.Hour)

	outcome, err := env.service.Check(context.Background(), "no-such-ticket")
	if err != nil {
		t.Fatalf("missing ticket must be a no-op, got %v", err)
	}
	if outcome != OutcomeTicketGone {
		t.Fatalf("outcome = %s, want ticket_gone", outcome)
	}
}

// End to end: a created ticket gets a deferred check that fires after
// the delay and raises the priority.
func TestEscalationEndToEnd(t *testing.T) {
	env := newEscalationEnv(24 * time.Hour)
	worker := scheduler.NewWorker(env.queue, zap.NewNop(), nil, time.Second, 1)
	env.service.Register(env.dispatcher, worker)

	ticket := env.openTicket(domain.TicketPriorityMedium)
	err := env.dispatcher.Publish(context.Background(), events.Event{
		ID:        "ev1",
		Type:      events.EventTicketCreated,
		SubjectID: ticket.ID,
		Timestamp: time.Now(),
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	due, err := env.queue.Claim(context.Background(), time.Now().Add(25*time.Hour), 10)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if len(due) != 1 {
		t.Fatalf("expected one due task, got %d", len(due))
	}
	if err := env.service.handleTask(context.Background(), due[0]); err != nil {
		t.Fatalf("handle task: %v", err)
	}

	stored, _ := env.tickets.GetByID(context.Background(), ticket.ID)
	if stored.Priority != domain.TicketPriorityHigh {
		t.Fatalf("priority = %s, want HIGH", stored.Priority)
	}
}

func TestEscalationCheckIsIdempotent(t *testing.T) {
	env := newEscalationEnv(24 * time.Hour)
	ticket := env.openTicket(domain.TicketPriorityLow)

	first, err := env.service.Check(context.Background(), ticket.ID)
	if err != nil || first != OutcomeEscalated {
		t.Fatalf("first check: outcome=%s err=%v", first, err)
	}
	second, err := env.service.Check(context.Background(), ticket.ID)
	if err != nil || second != OutcomeAlreadyHandled {
		t.Fatalf("second check: outcome=%s err=%v", second, err)
	}
}
