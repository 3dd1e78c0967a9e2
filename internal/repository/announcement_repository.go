package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// AnnouncementRepository stores company-scoped published content.
type AnnouncementRepository interface {
	Create(ctx context.Context, announcement *domain.Announcement) error
	Update(ctx context.Context, announcement *domain.Announcement) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Announcement, error)
	ListByCompany(ctx context.Context, companyID string, publishedOnly bool) ([]domain.Announcement, error)
}

type announcementRepository struct {
	pool *pgxpool.Pool
}

// NewAnnouncementRepository instantiates repository.
func NewAnnouncementRepository(pool *pgxpool.Pool) AnnouncementRepository {
	return &announcementRepository{pool: pool}
}

func (r *announcementRepository) Create(ctx context.Context, announcement *domain.Announcement) error {
	const query = `
        INSERT INTO announcements (company_id, author_id, kind, title, body, published_at)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		announcement.CompanyID,
		announcement.AuthorID,
		announcement.Kind,
		announcement.Title,
		announcement.Body,
		announcement.PublishedAt,
	).Scan(&announcement.ID, &announcement.CreatedAt, &announcement.UpdatedAt)
}

func (r *announcementRepository) Update(ctx context.Context, announcement *domain.Announcement) error {
	const query = `
        UPDATE announcements SET kind=$1, title=$2, body=$3, published_at=$4, updated_at=NOW()
        WHERE id=$5`
	cmd, err := r.pool.Exec(ctx, query,
		announcement.Kind,
		announcement.Title,
		announcement.Body,
		announcement.PublishedAt,
		announcement.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *announcementRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM announcements WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *announcementRepository) GetByID(ctx context.Context, id string) (*domain.Announcement, error) {
	const query = `
        SELECT id, company_id, author_id, kind, title, body, published_at, created_at, updated_at
        FROM announcements WHERE id=$1`
	var announcement domain.Announcement
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&announcement.ID,
		&announcement.CompanyID,
		&announcement.AuthorID,
		&announcement.Kind,
		&announcement.Title,
		&announcement.Body,
		&announcement.PublishedAt,
		&announcement.CreatedAt,
		&announcement.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &announcement, nil
}

func (r *announcementRepository) ListByCompany(ctx context.Context, companyID string, publishedOnly bool) ([]domain.Announcement, error) {
	query := `
        SELECT id, company_id, author_id, kind, title, body, published_at, created_at, updated_at
        FROM announcements WHERE company_id=$1`
	if publishedOnly {
		query += ` AND published_at IS NOT NULL AND published_at <= NOW()`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Announcement
	for rows.Next() {
		var announcement domain.Announcement
		if err := rows.Scan(
			&announcement.ID,
			&announcement.CompanyID,
			&announcement.AuthorID,
			&announcement.Kind,
			&announcement.Title,
			&announcement.Body,
			&announcement.PublishedAt,
			&announcement.CreatedAt,
			&announcement.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, announcement)
	}
	return result, rows.Err()
}
