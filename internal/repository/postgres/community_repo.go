package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"communityhub/internal/domain"
)

type communityRepository struct {
	DB *sql.DB
}

func NewCommunityRepository(db *sql.DB) domain.CommunityRepository {
	return &communityRepository{DB: db}
}

func (r *communityRepository) Create(ctx context.Context, c *domain.Community) error {
	query := `
		INSERT INTO communities (name, slug, description, creator_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, c.Name, c.Slug, c.Description, c.CreatorID, c.CreatedAt, c.UpdatedAt).
		Scan(&c.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return domain.ErrDuplicateSlug
		}
		return err
	}
	return nil
}

func (r *communityRepository) GetByID(ctx context.Context, id string) (*domain.Community, error) {
	query := `
		SELECT id, name, slug, description, creator_id, created_at, updated_at
		FROM communities
		WHERE id = $1
	`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, id))
}

func (r *communityRepository) GetBySlug(ctx context.Context, slug string) (*domain.Community, error) {
	query := `
		SELECT id, name, slug, description, creator_id, created_at, updated_at
		FROM communities
		WHERE slug = $1
	`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, slug))
}

func (r *communityRepository) scanOne(row *sql.Row) (*domain.Community, error) {
	c := &domain.Community{}
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatorID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *communityRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Community, error) {
	query := `
		SELECT c.id, c.name, c.slug, c.description, c.creator_id, c.created_at, c.updated_at
		FROM communities c
		JOIN community_members m ON m.community_id = c.id
		WHERE m.user_id = $1
		ORDER BY c.created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Community
	for rows.Next() {
		c := &domain.Community{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatorID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if out == nil {
		out = []*domain.Community{}
	}
	return out, nil
}
