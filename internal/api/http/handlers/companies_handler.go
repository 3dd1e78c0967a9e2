package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// CompaniesHandler exposes tenant and catalog endpoints.
type CompaniesHandler struct {
	companies *service.CompanyService
}

// NewCompaniesHandler constructs handler.
func NewCompaniesHandler(companyService *service.CompanyService) *CompaniesHandler {
	return &CompaniesHandler{companies: companyService}
}

// Create handles POST /companies.
func (h *CompaniesHandler) Create(c *fiber.Ctx) error {
	rc, ok := auth.ContextFrom(c)
	if !ok {
		return apperrors.NewAuthentication("authentication required")
	}
	var req dto.CreateCompanyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	company, err := h.companies.CreateCompany(c.UserContext(), rc, req.Name, req.Industry)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": companyResponse(company)})
}

// SetStatus handles PATCH /companies/:id/status.
func (h *CompaniesHandler) SetStatus(c *fiber.Ctx) error {
	rc, ok := auth.ContextFrom(c)
	if !ok {
		return apperrors.NewAuthentication("authentication required")
	}
	var req dto.UpdateCompanyStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Status != domain.CompanyStatusActive && req.Status != domain.CompanyStatusSuspended {
		return apperrors.NewValidationError("unknown company status", map[string]any{"status": req.Status})
	}

	company, err := h.companies.SetCompanyStatus(c.UserContext(), rc, c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": companyResponse(company)})
}

// List handles GET /companies.
func (h *CompaniesHandler) List(c *fiber.Ctx) error {
	companies, err := h.companies.ListCompanies(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.CompanyResponse, 0, len(companies))
	for i := range companies {
		items = append(items, companyResponse(&companies[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get handles GET /companies/:id.
func (h *CompaniesHandler) Get(c *fiber.Ctx) error {
	company, err := h.companies.GetCompany(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": companyResponse(company)})
}

// CreateCategory handles POST /companies/:id/categories.
func (h *CompaniesHandler) CreateCategory(c *fiber.Ctx) error {
	rc, ok := auth.ContextFrom(c)
	if !ok {
		return apperrors.NewAuthentication("authentication required")
	}
	var req dto.CreateCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	category, err := h.companies.CreateCategory(c.UserContext(), rc, c.Params("id"), req.Name)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": categoryResponse(category)})
}

// ListCategories handles GET /companies/:id/categories.
func (h *CompaniesHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.companies.ListCategories(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.CategoryResponse, 0, len(categories))
	for i := range categories {
		items = append(items, categoryResponse(&categories[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateArea handles POST /companies/:id/areas.
func (h *CompaniesHandler) CreateArea(c *fiber.Ctx) error {
	rc, ok := auth.ContextFrom(c)
	if !ok {
		return apperrors.NewAuthentication("authentication required")
	}
	var req dto.CreateAreaRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	area, err := h.companies.CreateArea(c.UserContext(), rc, c.Params("id"), req.Name)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": areaResponse(area)})
}

// ListAreas handles GET /companies/:id/areas.
func (h *CompaniesHandler) ListAreas(c *fiber.Ctx) error {
	areas, err := h.companies.ListAreas(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.AreaResponse, 0, len(areas))
	for i := range areas {
		items = append(items, areaResponse(&areas[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func companyResponse(company *domain.Company) dto.CompanyResponse {
	return dto.CompanyResponse{
		ID:        company.ID,
		Name:      company.Name,
		Industry:  company.Industry,
		Status:    company.Status,
		CreatedAt: company.CreatedAt,
	}
}

func categoryResponse(category *domain.Category) dto.CategoryResponse {
	return dto.CategoryResponse{
		ID:        category.ID,
		CompanyID: category.CompanyID,
		Name:      category.Name,
		IsActive:  category.IsActive,
	}
}

func areaResponse(area *domain.Area) dto.AreaResponse {
	return dto.AreaResponse{
		ID:        area.ID,
		CompanyID: area.CompanyID,
		Name:      area.Name,
		IsActive:  area.IsActive,
	}
}
