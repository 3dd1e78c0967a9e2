package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	CompanyID   string                `json:"company_id"`
	CategoryID  string                `json:"category_id"`
	AreaID      *string               `json:"area_id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
}

// RespondRequest payload.
type RespondRequest struct {
	Content string `json:"content"`
}

// RateRequest payload.
type RateRequest struct {
	Rating  int     `json:"rating"`
	Comment *string `json:"comment"`
}

// AssignAgentRequest payload.
type AssignAgentRequest struct {
	AgentID string `json:"agent_id"`
}

// TicketSummary response.
type TicketSummary struct {
	ID           string                `json:"id"`
	Code         string                `json:"code"`
	CompanyID    string                `json:"company_id"`
	CategoryID   string                `json:"category_id"`
	AreaID       *string               `json:"area_id"`
	OwnerAgentID *string               `json:"owner_agent_id"`
	Title        string                `json:"title"`
	Status       domain.TicketStatus   `json:"status"`
	Priority     domain.TicketPriority `json:"priority"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info with its thread.
type TicketDetailResponse struct {
	TicketSummary
	Description     string                   `json:"description"`
	FirstResponseAt *time.Time               `json:"first_response_at"`
	ResolvedAt      *time.Time               `json:"resolved_at"`
	ClosedAt        *time.Time               `json:"closed_at"`
	Rating          *int                     `json:"rating"`
	RatingComment   *string                  `json:"rating_comment"`
	Responses       []TicketResponseResponse `json:"responses"`
}

// TicketResponseResponse represents one thread entry.
type TicketResponseResponse struct {
	ID         string            `json:"id"`
	AuthorID   string            `json:"author_id"`
	AuthorType domain.AuthorType `json:"author_type"`
	Content    string            `json:"content"`
	CreatedAt  time.Time         `json:"created_at"`
}
