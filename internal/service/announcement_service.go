package service

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// Roles that manage announcements, per the catalog.
var announcementManagerRoles = domain.RolesWithPermission(domain.PermAnnouncementManage)

// AnnouncementService manages company-scoped published content.
type AnnouncementService struct {
	announcements repository.AnnouncementRepository
	companies     repository.CompanyRepository
	gate          *auth.Gate
}

// AnnouncementDependencies bundles requirements.
type AnnouncementDependencies struct {
	AnnouncementRepo repository.AnnouncementRepository
	CompanyRepo      repository.CompanyRepository
	Gate             *auth.Gate
}

// AnnouncementInput describes create/update payloads.
type AnnouncementInput struct {
	Kind    domain.AnnouncementKind
	Title   string
	Body    string
	Publish bool
}

// NewAnnouncementService constructs the service.
func NewAnnouncementService(deps AnnouncementDependencies) *AnnouncementService {
	return &AnnouncementService{
		announcements: deps.AnnouncementRepo,
		companies:     deps.CompanyRepo,
		gate:          deps.Gate,
	}
}

// Create publishes or drafts an announcement for a company.
func (s *AnnouncementService) Create(ctx context.Context, rc auth.RequestContext, companyID string, input AnnouncementInput) (*domain.Announcement, error) {
	if err := s.gate.Authorize(ctx, rc, announcementManagerRoles, &companyID); err != nil {
		return nil, err
	}
	if _, err := s.companies.GetByID(ctx, companyID); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("company", map[string]any{"company_id": companyID})
		}
		return nil, apperrors.MapError(err)
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title is required", nil)
	}

	announcement := &domain.Announcement{
		CompanyID: companyID,
		AuthorID:  rc.UserID,
		Kind:      input.Kind,
		Title:     title,
		Body:      input.Body,
	}
	if input.Publish {
		now := time.Now()
		announcement.PublishedAt = &now
	}
	if err := s.announcements.Create(ctx, announcement); err != nil {
		return nil, apperrors.MapError(err)
	}
	return announcement, nil
}

// Update edits an announcement.
func (s *AnnouncementService) Update(ctx context.Context, rc auth.RequestContext, id string, input AnnouncementInput) (*domain.Announcement, error) {
	announcement, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Authorize(ctx, rc, announcementManagerRoles, &announcement.CompanyID); err != nil {
		return nil, err
	}

	announcement.Kind = input.Kind
	announcement.Title = strings.TrimSpace(input.Title)
	announcement.Body = input.Body
	if input.Publish && announcement.PublishedAt == nil {
		now := time.Now()
		announcement.PublishedAt = &now
	}
	if err := s.announcements.Update(ctx, announcement); err != nil {
		return nil, apperrors.MapError(err)
	}
	return announcement, nil
}

// Delete removes an announcement.
func (s *AnnouncementService) Delete(ctx context.Context, rc auth.RequestContext, id string) error {
	announcement, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.gate.Authorize(ctx, rc, announcementManagerRoles, &announcement.CompanyID); err != nil {
		return err
	}
	return apperrors.MapError(s.announcements.Delete(ctx, id))
}

// ListForCompany returns announcements for a company. Admin hats of
// that company see drafts; everyone else sees published content only.
func (s *AnnouncementService) ListForCompany(ctx context.Context, rc auth.RequestContext, companyID string) ([]domain.Announcement, error) {
	publishedOnly := true
	if err := s.gate.Authorize(ctx, rc, announcementManagerRoles, &companyID); err == nil {
		publishedOnly = false
	}
	result, err := s.announcements.ListByCompany(ctx, companyID, publishedOnly)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return result, nil
}

func (s *AnnouncementService) get(ctx context.Context, id string) (*domain.Announcement, error) {
	announcement, err := s.announcements.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("announcement", map[string]any{"announcement_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return announcement, nil
}
