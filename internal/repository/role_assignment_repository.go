package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// RoleAssignmentRepository encapsulates role assignment persistence.
// ListActiveByUser is the authorization gate's source of truth and is
// consulted on every request. Find returns only the current non-revoked
// grant for a (user, role, company) triple; revoked history rows are
// never surfaced through it.
type RoleAssignmentRepository interface {
	Create(ctx context.Context, assignment *domain.RoleAssignment) error
	Revoke(ctx context.Context, id string, revokedByID *string) error
	GetByID(ctx context.Context, id string) (*domain.RoleAssignment, error)
	ListActiveByUser(ctx context.Context, userID string) ([]domain.RoleAssignment, error)
	ListByUser(ctx context.Context, userID string) ([]domain.RoleAssignment, error)
	Find(ctx context.Context, userID string, roleCode domain.RoleCode, companyID *string) (*domain.RoleAssignment, error)
}

type roleAssignmentRepository struct {
	pool *pgxpool.Pool
}

// NewRoleAssignmentRepository instantiates repository.
func NewRoleAssignmentRepository(pool *pgxpool.Pool) RoleAssignmentRepository {
	return &roleAssignmentRepository{pool: pool}
}

const roleAssignmentColumns = `id, user_id, role_code, company_id, is_active, assigned_at, revoked_at, assigned_by_id, revoked_by_id`

func (r *roleAssignmentRepository) Create(ctx context.Context, assignment *domain.RoleAssignment) error {
	const query = `
        INSERT INTO role_assignments (user_id, role_code, company_id, is_active, assigned_by_id)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, assigned_at`
	return r.pool.QueryRow(ctx, query,
		assignment.UserID,
		assignment.RoleCode,
		assignment.CompanyID,
		assignment.Active,
		assignment.AssignedByID,
	).Scan(&assignment.ID, &assignment.AssignedAt)
}

func (r *roleAssignmentRepository) Revoke(ctx context.Context, id string, revokedByID *string) error {
	const query = `
        UPDATE role_assignments SET is_active=FALSE, revoked_at=NOW(), revoked_by_id=$2
        WHERE id=$1 AND revoked_at IS NULL`
	cmd, err := r.pool.Exec(ctx, query, id, revokedByID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *roleAssignmentRepository) GetByID(ctx context.Context, id string) (*domain.RoleAssignment, error) {
	const query = `
        SELECT ` + roleAssignmentColumns + `
        FROM role_assignments WHERE id=$1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *roleAssignmentRepository) ListActiveByUser(ctx context.Context, userID string) ([]domain.RoleAssignment, error) {
	const query = `
        SELECT ` + roleAssignmentColumns + `
        FROM role_assignments
        WHERE user_id=$1 AND is_active=TRUE AND revoked_at IS NULL
        ORDER BY assigned_at`
	return r.list(ctx, query, userID)
}

func (r *roleAssignmentRepository) ListByUser(ctx context.Context, userID string) ([]domain.RoleAssignment, error) {
	const query = `
        SELECT ` + roleAssignmentColumns + `
        FROM role_assignments
        WHERE user_id=$1
        ORDER BY assigned_at`
	return r.list(ctx, query, userID)
}

// Find must never return a revoked history row: a grant/revoke cycle
// leaves old rows behind, and only the current non-revoked one may
// drive duplicate-grant decisions.
func (r *roleAssignmentRepository) Find(ctx context.Context, userID string, roleCode domain.RoleCode, companyID *string) (*domain.RoleAssignment, error) {
	const query = `
        SELECT ` + roleAssignmentColumns + `
        FROM role_assignments
        WHERE user_id=$1 AND role_code=$2 AND company_id IS NOT DISTINCT FROM $3
          AND revoked_at IS NULL
        ORDER BY assigned_at DESC
        LIMIT 1`
	return r.scanOne(r.pool.QueryRow(ctx, query, userID, roleCode, companyID))
}

func (r *roleAssignmentRepository) scanOne(row pgx.Row) (*domain.RoleAssignment, error) {
	var a domain.RoleAssignment
	if err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.RoleCode,
		&a.CompanyID,
		&a.Active,
		&a.AssignedAt,
		&a.RevokedAt,
		&a.AssignedByID,
		&a.RevokedByID,
	); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *roleAssignmentRepository) list(ctx context.Context, query string, args ...any) ([]domain.RoleAssignment, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.RoleAssignment
	for rows.Next() {
		var a domain.RoleAssignment
		if err := rows.Scan(
			&a.ID,
			&a.UserID,
			&a.RoleCode,
			&a.CompanyID,
			&a.Active,
			&a.AssignedAt,
			&a.RevokedAt,
			&a.AssignedByID,
			&a.RevokedByID,
		); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}
