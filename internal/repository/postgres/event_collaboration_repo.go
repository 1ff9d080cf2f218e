package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"communityhub/internal/domain"
)

type eventCollaborationRepository struct {
	DB *sql.DB
}

func NewEventCollaborationRepository(db *sql.DB) domain.EventCollaborationRepository {
	return &eventCollaborationRepository{DB: db}
}

const collaborationColumns = `id, event_id, community_id, role, status, accepted_at, created_at`

func (r *eventCollaborationRepository) Create(ctx context.Context, c *domain.EventCollaboration) error {
	query := `
		INSERT INTO event_collaborations (event_id, community_id, role, status, accepted_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		c.EventID, c.CommunityID, c.Role, c.Status, c.AcceptedAt, c.CreatedAt,
	).Scan(&c.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return domain.ErrCollaborationExists
		}
		return err
	}
	return nil
}

func scanCollaboration(row rowScanner) (*domain.EventCollaboration, error) {
	c := &domain.EventCollaboration{}
	err := row.Scan(&c.ID, &c.EventID, &c.CommunityID, &c.Role, &c.Status, &c.AcceptedAt, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *eventCollaborationRepository) GetByID(ctx context.Context, id string) (*domain.EventCollaboration, error) {
	query := `SELECT ` + collaborationColumns + ` FROM event_collaborations WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *eventCollaborationRepository) GetByEventAndCommunity(ctx context.Context, eventID, communityID string) (*domain.EventCollaboration, error) {
	query := `SELECT ` + collaborationColumns + ` FROM event_collaborations WHERE event_id = $1 AND community_id = $2`
	return r.getOne(ctx, query, eventID, communityID)
}

func (r *eventCollaborationRepository) GetHostByEventID(ctx context.Context, eventID string) (*domain.EventCollaboration, error) {
	query := `SELECT ` + collaborationColumns + ` FROM event_collaborations WHERE event_id = $1 AND role = 'host'`
	return r.getOne(ctx, query, eventID)
}

func (r *eventCollaborationRepository) getOne(ctx context.Context, query string, args ...any) (*domain.EventCollaboration, error) {
	c, err := scanCollaboration(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *eventCollaborationRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.EventCollaboration, error) {
	query := `SELECT ` + collaborationColumns + ` FROM event_collaborations WHERE event_id = $1 ORDER BY created_at`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.EventCollaboration
	for rows.Next() {
		c, err := scanCollaboration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if out == nil {
		out = []*domain.EventCollaboration{}
	}
	return out, nil
}

func (r *eventCollaborationRepository) SetStatus(ctx context.Context, id, status string, acceptedAt *time.Time) error {
	query := `UPDATE event_collaborations SET status = $1, accepted_at = COALESCE($2, accepted_at) WHERE id = $3`
	result, err := r.DB.ExecContext(ctx, query, status, acceptedAt, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventCollaborationRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM event_collaborations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
