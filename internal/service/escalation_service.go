package service

import (
	"context"
	"crypto/rand"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/scheduler"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// EscalationOutcome classifies what an escalation check did.
type EscalationOutcome string

const (
	OutcomeEscalated      EscalationOutcome = "escalated"
	OutcomeAlreadyHandled EscalationOutcome = "already_handled"
	OutcomeTicketGone     EscalationOutcome = "ticket_gone"
)

// EscalationService schedules a deferred priority check for every new
// ticket and runs it when it fires. The check re-reads the ticket and
// escalates only if it is still OPEN, unanswered and below HIGH;
// anything else is a silent no-op, which makes the task idempotent and
// safe under at-least-once delivery.
type EscalationService struct {
	tickets    repository.TicketRepository
	queue      scheduler.Queue
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	delay      time.Duration
}

// EscalationDependencies bundles requirements for escalation.
type EscalationDependencies struct {
	TicketRepo repository.TicketRepository
	Queue      scheduler.Queue
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Delay      time.Duration
}

// NewEscalationService constructs the service.
func NewEscalationService(deps EscalationDependencies) *EscalationService {
	return &EscalationService{
		tickets:    deps.TicketRepo,
		queue:      deps.Queue,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		delay:      deps.Delay,
	}
}

// Register subscribes to ticket creation and binds the deferred check
// to the worker.
func (s *EscalationService) Register(dispatcher events.Dispatcher, worker *scheduler.Worker) {
	dispatcher.Subscribe(events.EventTicketCreated, s.onTicketCreated)
	worker.Register(scheduler.TaskKindEscalateTicket, s.handleTask)
}

func (s *EscalationService) onTicketCreated(ctx context.Context, event events.Event) error {
	return s.Schedule(ctx, event.SubjectID, time.Now())
}

// Schedule enqueues the escalation check for one ticket.
func (s *EscalationService) Schedule(ctx context.Context, ticketID string, now time.Time) error {
	task := scheduler.Task{
		ID:      ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
		Kind:    scheduler.TaskKindEscalateTicket,
		Payload: map[string]string{"ticket_id": ticketID},
		FireAt:  now.Add(s.delay),
	}
	if err := s.queue.Enqueue(ctx, task); err != nil {
		return err
	}
	s.metrics.RecordTaskScheduled()
	return nil
}

func (s *EscalationService) handleTask(ctx context.Context, task scheduler.Task) error {
	ticketID, ok := task.Payload["ticket_id"]
	if !ok {
		return apperrors.NewValidationError("task payload missing ticket_id", nil)
	}
	_, err := s.Check(ctx, ticketID)
	return err
}

// Check re-reads the ticket and escalates it to HIGH when it is still
// OPEN with no first response and below HIGH priority. The outcome is
// returned for observability; none of the no-op outcomes is an error.
func (s *EscalationService) Check(ctx context.Context, ticketID string) (EscalationOutcome, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if err == pgx.ErrNoRows {
			// Deleted between scheduling and firing.
			s.metrics.RecordEscalationOutcome(string(OutcomeTicketGone))
			return OutcomeTicketGone, nil
		}
		return "", err
	}

	if ticket.Status != domain.TicketStatusOpen ||
		ticket.FirstResponseAt != nil ||
		ticket.Priority == domain.TicketPriorityHigh {
		s.metrics.RecordEscalationOutcome(string(OutcomeAlreadyHandled))
		return OutcomeAlreadyHandled, nil
	}

	oldPriority := ticket.Priority
	ticket.Priority = domain.TicketPriorityHigh
	if err := s.tickets.Update(ctx, ticket); err != nil {
		if err == pgx.ErrNoRows {
			s.metrics.RecordEscalationOutcome(string(OutcomeTicketGone))
			return OutcomeTicketGone, nil
		}
		return "", err
	}

	s.metrics.RecordEscalationOutcome(string(OutcomeEscalated))
	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        ulid.Make().String(),
			Type:      events.EventTicketEscalated,
			SubjectID: ticket.ID,
			Timestamp: time.Now(),
			Payload: events.TicketEscalatedPayload{
				OldPriority: oldPriority,
				NewPriority: ticket.Priority,
			},
		})
	}
	return OutcomeEscalated, nil
}
