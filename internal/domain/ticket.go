package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen     TicketStatus = "OPEN"
	TicketStatusPending  TicketStatus = "PENDING"
	TicketStatusResolved TicketStatus = "RESOLVED"
	TicketStatusClosed   TicketStatus = "CLOSED"
)

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
)

// AuthorType distinguishes who wrote a response.
type AuthorType string

const (
	AuthorTypeNone  AuthorType = "NONE"
	AuthorTypeUser  AuthorType = "USER"
	AuthorTypeAgent AuthorType = "AGENT"
)

// Ticket is the aggregate for support requests inside one company.
type Ticket struct {
	ID                     string
	Code                   string
	CompanyID              string
	CategoryID             string
	AreaID                 *string
	CreatedByUserID        string
	OwnerAgentID           *string
	Title                  string
	Description            string
	Status                 TicketStatus
	Priority               TicketPriority
	LastResponseAuthorType AuthorType
	FirstResponseAt        *time.Time
	ResolvedAt             *time.Time
	ClosedAt               *time.Time
	Rating                 *int
	RatingComment          *string
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// IsTerminal reports whether the ticket reached its terminal state.
func (t *Ticket) IsTerminal() bool {
	return t.Status == TicketStatusClosed
}
