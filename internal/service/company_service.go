package service

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// Roles that manage a company's catalog data, per the catalog.
var companyManagerRoles = domain.RolesWithPermission(domain.PermCompanyManage)

// CompanyService manages tenants and their classification catalogs.
type CompanyService struct {
	companies  repository.CompanyRepository
	categories repository.CategoryRepository
	areas      repository.AreaRepository
	gate       *auth.Gate
}

// CompanyDependencies bundles requirements for company service.
type CompanyDependencies struct {
	CompanyRepo  repository.CompanyRepository
	CategoryRepo repository.CategoryRepository
	AreaRepo     repository.AreaRepository
	Gate         *auth.Gate
}

// NewCompanyService constructs the service.
func NewCompanyService(deps CompanyDependencies) *CompanyService {
	return &CompanyService{
		companies:  deps.CompanyRepo,
		categories: deps.CategoryRepo,
		areas:      deps.AreaRepo,
		gate:       deps.Gate,
	}
}

// CreateCompany registers a tenant; platform hat only.
func (s *CompanyService) CreateCompany(ctx context.Context, rc auth.RequestContext, name, industry string) (*domain.Company, error) {
	if err := s.gate.Authorize(ctx, rc, []domain.RoleCode{domain.RolePlatformAdmin}, nil); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name is required", nil)
	}
	company := &domain.Company{
		Name:     name,
		Industry: strings.TrimSpace(industry),
		Status:   domain.CompanyStatusActive,
	}
	if err := s.companies.Create(ctx, company); err != nil {
		return nil, apperrors.MapError(err)
	}
	return company, nil
}

// SetCompanyStatus suspends or reactivates a tenant; platform hat only.
func (s *CompanyService) SetCompanyStatus(ctx context.Context, rc auth.RequestContext, companyID string, status domain.CompanyStatus) (*domain.Company, error) {
	if err := s.gate.Authorize(ctx, rc, []domain.RoleCode{domain.RolePlatformAdmin}, nil); err != nil {
		return nil, err
	}
	company, err := s.getCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	company.Status = status
	if err := s.companies.Update(ctx, company); err != nil {
		return nil, apperrors.MapError(err)
	}
	return company, nil
}

// ListCompanies returns all tenants.
func (s *CompanyService) ListCompanies(ctx context.Context) ([]domain.Company, error) {
	result, err := s.companies.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return result, nil
}

// GetCompany returns one tenant.
func (s *CompanyService) GetCompany(ctx context.Context, companyID string) (*domain.Company, error) {
	return s.getCompany(ctx, companyID)
}

// CreateCategory adds a ticket category; company admin of that company.
func (s *CompanyService) CreateCategory(ctx context.Context, rc auth.RequestContext, companyID, name string) (*domain.Category, error) {
	if err := s.gate.Authorize(ctx, rc, companyManagerRoles, &companyID); err != nil {
		return nil, err
	}
	if _, err := s.getCompany(ctx, companyID); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name is required", nil)
	}
	category := &domain.Category{CompanyID: companyID, Name: name, IsActive: true}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, apperrors.MapError(err)
	}
	return category, nil
}

// ListCategories returns a company's categories.
func (s *CompanyService) ListCategories(ctx context.Context, companyID string) ([]domain.Category, error) {
	result, err := s.categories.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return result, nil
}

// CreateArea adds an organizational area; company admin of that company.
func (s *CompanyService) CreateArea(ctx context.Context, rc auth.RequestContext, companyID, name string) (*domain.Area, error) {
	if err := s.gate.Authorize(ctx, rc, companyManagerRoles, &companyID); err != nil {
		return nil, err
	}
	if _, err := s.getCompany(ctx, companyID); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name is required", nil)
	}
	area := &domain.Area{CompanyID: companyID, Name: name, IsActive: true}
	if err := s.areas.Create(ctx, area); err != nil {
		return nil, apperrors.MapError(err)
	}
	return area, nil
}

// ListAreas returns a company's areas.
func (s *CompanyService) ListAreas(ctx context.Context, companyID string) ([]domain.Area, error) {
	result, err := s.areas.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return result, nil
}

func (s *CompanyService) getCompany(ctx context.Context, companyID string) (*domain.Company, error) {
	company, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("company", map[string]any{"company_id": companyID})
		}
		return nil, apperrors.MapError(err)
	}
	return company, nil
}
