package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// In-memory repository fakes shared by the service tests.

type fakeUserRepo struct {
	byID map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: make(map[string]*domain.User)}
}

func (f *fakeUserRepo) add(user *domain.User) *domain.User {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	f.byID[user.ID] = user
	return user
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	for _, existing := range f.byID {
		if existing.Email == user.Email {
			return pgx.ErrNoRows
		}
	}
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	f.byID[user.ID] = user
	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := f.byID[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	f.byID[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range f.byID {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeAssignmentRepo struct {
	items []domain.RoleAssignment
}

func (f *fakeAssignmentRepo) Create(_ context.Context, a *domain.RoleAssignment) error {
	a.ID = uuid.NewString()
	a.AssignedAt = time.Now()
	f.items = append(f.items, *a)
	return nil
}

func (f *fakeAssignmentRepo) Revoke(_ context.Context, id string, revokedByID *string) error {
	for i := range f.items {
		if f.items[i].ID == id && f.items[i].RevokedAt == nil {
			now := time.Now()
			f.items[i].Active = false
			f.items[i].RevokedAt = &now
			f.items[i].RevokedByID = revokedByID
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeAssignmentRepo) GetByID(_ context.Context, id string) (*domain.RoleAssignment, error) {
	for i := range f.items {
		if f.items[i].ID == id {
			a := f.items[i]
			return &a, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeAssignmentRepo) ListActiveByUser(_ context.Context, userID string) ([]domain.RoleAssignment, error) {
	var result []domain.RoleAssignment
	for _, a := range f.items {
		if a.UserID == userID && a.Satisfies() {
			result = append(result, a)
		}
	}
	return result, nil
}

func (f *fakeAssignmentRepo) ListByUser(_ context.Context, userID string) ([]domain.RoleAssignment, error) {
	var result []domain.RoleAssignment
	for _, a := range f.items {
		if a.UserID == userID {
			result = append(result, a)
		}
	}
	return result, nil
}

// Find mirrors the store contract: revoked history rows are invisible,
// whatever order they were inserted in.
func (f *fakeAssignmentRepo) Find(_ context.Context, userID string, roleCode domain.RoleCode, companyID *string) (*domain.RoleAssignment, error) {
	for i := range f.items {
		a := f.items[i]
		if a.RevokedAt != nil {
			continue
		}
		if a.UserID == userID && a.RoleCode == roleCode && a.MatchesCompany(companyID) {
			return &a, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeRefreshRepo struct {
	byID map[string]*domain.RefreshToken
}

func newFakeRefreshRepo() *fakeRefreshRepo {
	return &fakeRefreshRepo{byID: make(map[string]*domain.RefreshToken)}
}

func (f *fakeRefreshRepo) Create(_ context.Context, token *domain.RefreshToken) error {
	token.ID = uuid.NewString()
	token.CreatedAt = time.Now()
	f.byID[token.ID] = token
	return nil
}

func (f *fakeRefreshRepo) GetByHash(_ context.Context, hash string) (*domain.RefreshToken, error) {
	for _, token := range f.byID {
		if token.TokenHash == hash {
			copied := *token
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeRefreshRepo) Revoke(_ context.Context, id string) error {
	token, ok := f.byID[id]
	if !ok || token.RevokedAt != nil {
		return pgx.ErrNoRows
	}
	now := time.Now()
	token.RevokedAt = &now
	return nil
}

func (f *fakeRefreshRepo) RevokeAllForUser(_ context.Context, userID string) error {
	now := time.Now()
	for _, token := range f.byID {
		if token.UserID == userID && token.RevokedAt == nil {
			token.RevokedAt = &now
		}
	}
	return nil
}

func (f *fakeRefreshRepo) MarkUsed(_ context.Context, id string) error {
	token, ok := f.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	now := time.Now()
	token.LastUsedAt = &now
	return nil
}

type fakeCompanyRepo struct {
	byID map[string]*domain.Company
}

func newFakeCompanyRepo() *fakeCompanyRepo {
	return &fakeCompanyRepo{byID: make(map[string]*domain.Company)}
}

func (f *fakeCompanyRepo) add(company *domain.Company) *domain.Company {
	if company.ID == "" {
		company.ID = uuid.NewString()
	}
	if company.Status == "" {
		company.Status = domain.CompanyStatusActive
	}
	f.byID[company.ID] = company
	return company
}

func (f *fakeCompanyRepo) Create(_ context.Context, company *domain.Company) error {
	company.ID = uuid.NewString()
	company.CreatedAt = time.Now()
	company.UpdatedAt = company.CreatedAt
	f.byID[company.ID] = company
	return nil
}

func (f *fakeCompanyRepo) Update(_ context.Context, company *domain.Company) error {
	if _, ok := f.byID[company.ID]; !ok {
		return pgx.ErrNoRows
	}
	f.byID[company.ID] = company
	return nil
}

func (f *fakeCompanyRepo) GetByID(_ context.Context, id string) (*domain.Company, error) {
	company, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *company
	return &copied, nil
}

func (f *fakeCompanyRepo) List(_ context.Context) ([]domain.Company, error) {
	var result []domain.Company
	for _, company := range f.byID {
		result = append(result, *company)
	}
	return result, nil
}

type fakeCategoryRepo struct {
	byID map[string]*domain.Category
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{byID: make(map[string]*domain.Category)}
}

func (f *fakeCategoryRepo) add(category *domain.Category) *domain.Category {
	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	f.byID[category.ID] = category
	return category
}

func (f *fakeCategoryRepo) Create(_ context.Context, category *domain.Category) error {
	category.ID = uuid.NewString()
	f.byID[category.ID] = category
	return nil
}

func (f *fakeCategoryRepo) Update(_ context.Context, category *domain.Category) error {
	if _, ok := f.byID[category.ID]; !ok {
		return pgx.ErrNoRows
	}
	f.byID[category.ID] = category
	return nil
}

func (f *fakeCategoryRepo) GetByID(_ context.Context, id string) (*domain.Category, error) {
	category, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *category
	return &copied, nil
}

func (f *fakeCategoryRepo) ListByCompany(_ context.Context, companyID string) ([]domain.Category, error) {
	var result []domain.Category
	for _, category := range f.byID {
		if category.CompanyID == companyID {
			result = append(result, *category)
		}
	}
	return result, nil
}

type fakeAreaRepo struct {
	byID map[string]*domain.Area
}

func newFakeAreaRepo() *fakeAreaRepo {
	return &fakeAreaRepo{byID: make(map[string]*domain.Area)}
}

func (f *fakeAreaRepo) Create(_ context.Context, area *domain.Area) error {
	area.ID = uuid.NewString()
	f.byID[area.ID] = area
	return nil
}

func (f *fakeAreaRepo) Update(_ context.Context, area *domain.Area) error {
	if _, ok := f.byID[area.ID]; !ok {
		return pgx.ErrNoRows
	}
	f.byID[area.ID] = area
	return nil
}

func (f *fakeAreaRepo) GetByID(_ context.Context, id string) (*domain.Area, error) {
	area, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *area
	return &copied, nil
}

func (f *fakeAreaRepo) ListByCompany(_ context.Context, companyID string) ([]domain.Area, error) {
	var result []domain.Area
	for _, area := range f.byID {
		if area.CompanyID == companyID {
			result = append(result, *area)
		}
	}
	return result, nil
}

type fakeTicketRepo struct {
	byID     map[string]*domain.Ticket
	sequence int64
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{byID: make(map[string]*domain.Ticket)}
}

func (f *fakeTicketRepo) add(ticket *domain.Ticket) *domain.Ticket {
	if ticket.ID == "" {
		ticket.ID = uuid.NewString()
	}
	f.byID[ticket.ID] = ticket
	return ticket
}

func (f *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	ticket.ID = uuid.NewString()
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	f.byID[ticket.ID] = ticket
	return nil
}

func (f *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	if _, ok := f.byID[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = time.Now()
	copied := *ticket
	f.byID[ticket.ID] = &copied
	return nil
}

func (f *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	ticket, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *ticket
	return &copied, nil
}

func (f *fakeTicketRepo) GetByCode(_ context.Context, code string) (*domain.Ticket, error) {
	for _, ticket := range f.byID {
		if ticket.Code == code {
			copied := *ticket
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeTicketRepo) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for _, ticket := range f.byID {
		if filter.CompanyID != nil && ticket.CompanyID != *filter.CompanyID {
			continue
		}
		if filter.CreatedByUserID != nil && ticket.CreatedByUserID != *filter.CreatedByUserID {
			continue
		}
		if filter.OwnerAgentID != nil && (ticket.OwnerAgentID == nil || *ticket.OwnerAgentID != *filter.OwnerAgentID) {
			continue
		}
		if filter.Status != nil && ticket.Status != *filter.Status {
			continue
		}
		if filter.Priority != nil && ticket.Priority != *filter.Priority {
			continue
		}
		result = append(result, *ticket)
	}
	return result, nil
}

func (f *fakeTicketRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeTicketRepo) NextCodeNumber(_ context.Context) (int64, error) {
	f.sequence++
	return f.sequence, nil
}

type fakeResponseRepo struct {
	items []domain.TicketResponse
}

func (f *fakeResponseRepo) Create(_ context.Context, response *domain.TicketResponse) error {
	response.ID = uuid.NewString()
	response.CreatedAt = time.Now()
	f.items = append(f.items, *response)
	return nil
}

func (f *fakeResponseRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketResponse, error) {
	var result []domain.TicketResponse
	for _, response := range f.items {
		if response.TicketID == ticketID {
			result = append(result, response)
		}
	}
	return result, nil
}

type fakeAnnouncementRepo struct {
	byID map[string]*domain.Announcement
}

func newFakeAnnouncementRepo() *fakeAnnouncementRepo {
	return &fakeAnnouncementRepo{byID: make(map[string]*domain.Announcement)}
}

func (f *fakeAnnouncementRepo) Create(_ context.Context, a *domain.Announcement) error {
	a.ID = uuid.NewString()
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	f.byID[a.ID] = a
	return nil
}

func (f *fakeAnnouncementRepo) Update(_ context.Context, a *domain.Announcement) error {
	if _, ok := f.byID[a.ID]; !ok {
		return pgx.ErrNoRows
	}
	f.byID[a.ID] = a
	return nil
}

func (f *fakeAnnouncementRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeAnnouncementRepo) GetByID(_ context.Context, id string) (*domain.Announcement, error) {
	a, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *a
	return &copied, nil
}

func (f *fakeAnnouncementRepo) ListByCompany(_ context.Context, companyID string, publishedOnly bool) ([]domain.Announcement, error) {
	var result []domain.Announcement
	now := time.Now()
	for _, a := range f.byID {
		if a.CompanyID != companyID {
			continue
		}
		if publishedOnly && (a.PublishedAt == nil || a.PublishedAt.After(now)) {
			continue
		}
		result = append(result, *a)
	}
	return result, nil
}
