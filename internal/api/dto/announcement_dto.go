package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// AnnouncementRequest covers create and update payloads.
type AnnouncementRequest struct {
	Kind    domain.AnnouncementKind `json:"kind"`
	Title   string                  `json:"title"`
	Body    string                  `json:"body"`
	Publish bool                    `json:"publish"`
}

// AnnouncementResponse response.
type AnnouncementResponse struct {
	ID          string                  `json:"id"`
	CompanyID   string                  `json:"company_id"`
	AuthorID    string                  `json:"author_id"`
	Kind        domain.AnnouncementKind `json:"kind"`
	Title       string                  `json:"title"`
	Body        string                  `json:"body"`
	PublishedAt *time.Time              `json:"published_at"`
	CreatedAt   time.Time               `json:"created_at"`
}
