package domain

import "time"

// AnnouncementKind distinguishes published content types.
type AnnouncementKind string

const (
	AnnouncementKindNews        AnnouncementKind = "NEWS"
	AnnouncementKindIncident    AnnouncementKind = "INCIDENT"
	AnnouncementKindMaintenance AnnouncementKind = "MAINTENANCE"
)

// Announcement is company-scoped published content.
type Announcement struct {
	ID          string
	CompanyID   string
	AuthorID    string
	Kind        AnnouncementKind
	Title       string
	Body        string
	PublishedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
