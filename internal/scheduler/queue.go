// Package scheduler provides a delayed task queue and the worker pool
// that drains it. Tasks carry a fire-at instant and are delivered at
// least once on or after that instant; handlers must re-check state
// and be idempotent.
package scheduler

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Task kinds understood by registered handlers.
const (
	TaskKindEscalateTicket = "escalate_ticket"
)

// claimLease is how long a claimed task stays invisible before it is
// handed out again. Tasks that are never acked come back after this.
const claimLease = 5 * time.Minute

// Task is a unit of deferred work. Payload carries only identifiers;
// handlers re-fetch current state when the task fires.
type Task struct {
	ID      string            `json:"id"`
	Kind    string            `json:"kind"`
	Payload map[string]string `json:"payload"`
	FireAt  time.Time         `json:"fire_at"`
}

// Queue is a delayed task store. Claim leases tasks whose fire-at
// instant has passed; a leased task is invisible to other claimers
// until Ack removes it or the lease expires and it is redelivered.
type Queue interface {
	Enqueue(ctx context.Context, task Task) error
	Claim(ctx context.Context, now time.Time, limit int) ([]Task, error)
	Ack(ctx context.Context, task Task) error
}

// memoryQueue is an in-process Queue used in tests and single-node
// deployments without Redis.
type memoryQueue struct {
	mu      sync.Mutex
	pending []Task
	leases  map[string]lease
}

type lease struct {
	task  Task
	until time.Time
}

// NewMemoryQueue creates an in-process queue.
func NewMemoryQueue() Queue {
	return &memoryQueue{leases: make(map[string]lease)}
}

func (q *memoryQueue) Enqueue(ctx context.Context, task Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, task)
	sort.SliceStable(q.pending, func(i, j int) bool {
		return q.pending[i].FireAt.Before(q.pending[j].FireAt)
	})
	return nil
}

func (q *memoryQueue) Claim(ctx context.Context, now time.Time, limit int) ([]Task, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var due []Task

	// Redeliver leased tasks whose lease ran out before they were acked.
	for id, l := range q.leases {
		if len(due) >= limit {
			break
		}
		if l.until.After(now) {
			continue
		}
		q.leases[id] = lease{task: l.task, until: now.Add(claimLease)}
		due = append(due, l.task)
	}

	remaining := q.pending[:0]
	for _, task := range q.pending {
		if len(due) < limit && !task.FireAt.After(now) {
			q.leases[task.ID] = lease{task: task, until: now.Add(claimLease)}
			due = append(due, task)
			continue
		}
		remaining = append(remaining, task)
	}
	q.pending = remaining
	return due, nil
}

func (q *memoryQueue) Ack(ctx context.Context, task Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.leases, task.ID)
	return nil
}
