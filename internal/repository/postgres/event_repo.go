package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"communityhub/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{DB: db}
}

const eventColumns = `
	id, community_id, creator_id, title, description, location,
	start_time, end_time, timezone, capacity, status, event_type,
	registration_type, external_url, requires_approval, collect_phone,
	custom_questions, reminder_buckets, published_at, created_at, updated_at`

func (r *eventRepository) CreateWithHost(ctx context.Context, e *domain.Event) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	questions, err := e.CustomQuestionsJSON()
	if err != nil {
		return fmt.Errorf("marshal custom questions: %w", err)
	}

	query := `
		INSERT INTO events (
			community_id, creator_id, title, description, location,
			start_time, end_time, timezone, capacity, status, event_type,
			registration_type, external_url, requires_approval, collect_phone,
			custom_questions, reminder_buckets, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id
	`
	err = tx.QueryRowContext(ctx, query,
		e.CommunityID, e.CreatorID, e.Title, e.Description, e.Location,
		e.StartTime, e.EndTime, e.Timezone, e.Capacity, e.Status, e.EventType,
		e.RegistrationType, e.ExternalURL, e.RequiresApproval, e.CollectPhone,
		questions, pq.Array(e.ReminderBuckets), e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
	if err != nil {
		return err
	}

	hostQuery := `
		INSERT INTO event_collaborations (event_id, community_id, role, status, accepted_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	now := time.Now()
	if _, err := tx.ExecContext(ctx, hostQuery,
		e.ID, e.CommunityID, domain.CollabRoleHost, domain.CollabStatusAccepted, now, now,
	); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	row := r.DB.QueryRowContext(ctx, query, id)
	e, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var description, location, timezone, externalURL sql.NullString
	var questions []byte
	var buckets pq.StringArray
	err := row.Scan(
		&e.ID, &e.CommunityID, &e.CreatorID, &e.Title, &description, &location,
		&e.StartTime, &e.EndTime, &timezone, &e.Capacity, &e.Status, &e.EventType,
		&e.RegistrationType, &externalURL, &e.RequiresApproval, &e.CollectPhone,
		&questions, &buckets, &e.PublishedAt, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Description = description.String
	e.Location = location.String
	e.Timezone = timezone.String
	e.ExternalURL = externalURL.String
	e.ReminderBuckets = buckets
	if len(questions) > 0 {
		if err := json.Unmarshal(questions, &e.CustomQuestions); err != nil {
			return nil, fmt.Errorf("unmarshal custom questions: %w", err)
		}
	}
	return e, nil
}

func (r *eventRepository) ListByCommunityID(ctx context.Context, communityID string) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE community_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, communityID)
}

func (r *eventRepository) ListPublishedStartingBetween(ctx context.Context, from, to time.Time) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + `
		FROM events
		WHERE status = 'published' AND start_time BETWEEN $1 AND $2
		ORDER BY start_time`
	return r.list(ctx, query, from, to)
}

func (r *eventRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Event, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}

func (r *eventRepository) Update(ctx context.Context, id string, upd domain.EventUpdate) (*domain.Event, error) {
	sets := []string{"updated_at = NOW()"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if upd.Title != nil {
		sets = append(sets, "title = "+arg(*upd.Title))
	}
	if upd.Description != nil {
		sets = append(sets, "description = "+arg(*upd.Description))
	}
	if upd.Location != nil {
		sets = append(sets, "location = "+arg(*upd.Location))
	}
	if upd.StartTime != nil {
		sets = append(sets, "start_time = "+arg(*upd.StartTime))
	}
	if upd.EndTime != nil {
		sets = append(sets, "end_time = "+arg(*upd.EndTime))
	}
	if upd.Capacity != nil {
		sets = append(sets, "capacity = "+arg(*upd.Capacity))
	}
	query := `UPDATE events SET ` + strings.Join(sets, ", ") + ` WHERE id = ` + arg(id) + ` RETURNING ` + eventColumns
	row := r.DB.QueryRowContext(ctx, query, args...)
	e, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) SetStatus(ctx context.Context, id, status string, publishedAt *time.Time) error {
	var result sql.Result
	var err error
	if publishedAt != nil {
		query := `UPDATE events SET status = $1, published_at = $2, updated_at = NOW() WHERE id = $3`
		result, err = r.DB.ExecContext(ctx, query, status, *publishedAt, id)
	} else {
		query := `UPDATE events SET status = $1, updated_at = NOW() WHERE id = $2`
		result, err = r.DB.ExecContext(ctx, query, status, id)
	}
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
