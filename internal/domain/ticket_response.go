package domain

import "time"

// TicketResponse is one message in a ticket conversation. The first
// agent-authored response sets Ticket.FirstResponseAt exactly once and
// suppresses the pending escalation.
type TicketResponse struct {
	ID         string
	TicketID   string
	AuthorID   string
	AuthorType AuthorType
	Content    string
	CreatedAt  time.Time
}
