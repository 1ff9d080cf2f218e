package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"communityhub/internal/domain"
)

type eventRegistrationRepository struct {
	DB *sql.DB
}

func NewEventRegistrationRepository(db *sql.DB) domain.EventRegistrationRepository {
	return &eventRegistrationRepository{DB: db}
}

const registrationColumns = `
	id, event_id, user_id, name, email, phone, rsvp_status, is_verified,
	approval_status, verification_token, token_expires_at, custom_answers,
	created_at, updated_at`

func (r *eventRegistrationRepository) Create(ctx context.Context, reg *domain.EventRegistration) error {
	query := `
		INSERT INTO event_registrations (
			event_id, user_id, name, email, phone, rsvp_status, is_verified,
			approval_status, verification_token, token_expires_at, custom_answers,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		reg.EventID, nullString(reg.UserID), nullString(reg.Name), nullString(reg.Email),
		nullString(reg.Phone), reg.RSVPStatus, reg.IsVerified, reg.ApprovalStatus,
		nullString(reg.VerificationToken), reg.TokenExpiresAt, nullBytes(reg.CustomAnswers),
		reg.CreatedAt, reg.UpdatedAt,
	).Scan(&reg.ID)
	if err != nil {
		// Unique indexes on (event_id, user_id) and (event_id, lower(email))
		// are the real duplicate guard; the service pre-checks are advisory.
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return domain.ErrAlreadyRegistered
		}
		return err
	}
	return nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}

func scanRegistration(row rowScanner) (*domain.EventRegistration, error) {
	reg := &domain.EventRegistration{}
	var userID, name, email, phone, token sql.NullString
	var answers []byte
	err := row.Scan(
		&reg.ID, &reg.EventID, &userID, &name, &email, &phone, &reg.RSVPStatus,
		&reg.IsVerified, &reg.ApprovalStatus, &token, &reg.TokenExpiresAt,
		&answers, &reg.CreatedAt, &reg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	reg.UserID = userID.String
	reg.Name = name.String
	reg.Email = email.String
	reg.Phone = phone.String
	reg.VerificationToken = token.String
	reg.CustomAnswers = answers
	return reg, nil
}

func (r *eventRegistrationRepository) GetByID(ctx context.Context, id string) (*domain.EventRegistration, error) {
	query := `SELECT ` + registrationColumns + ` FROM event_registrations WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *eventRegistrationRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.EventRegistration, error) {
	query := `SELECT ` + registrationColumns + ` FROM event_registrations WHERE event_id = $1 AND user_id = $2`
	return r.getOne(ctx, query, eventID, userID)
}

func (r *eventRegistrationRepository) GetByEventAndEmail(ctx context.Context, eventID, email string) (*domain.EventRegistration, error) {
	query := `SELECT ` + registrationColumns + ` FROM event_registrations WHERE event_id = $1 AND lower(email) = lower($2)`
	return r.getOne(ctx, query, eventID, email)
}

func (r *eventRegistrationRepository) GetByEventAndToken(ctx context.Context, eventID, token string) (*domain.EventRegistration, error) {
	query := `SELECT ` + registrationColumns + ` FROM event_registrations WHERE event_id = $1 AND verification_token = $2`
	return r.getOne(ctx, query, eventID, token)
}

func (r *eventRegistrationRepository) getOne(ctx context.Context, query string, args ...any) (*domain.EventRegistration, error) {
	reg, err := scanRegistration(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (r *eventRegistrationRepository) ListByEventID(ctx context.Context, eventID string, params domain.PaginationParams) ([]*domain.EventRegistration, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM event_registrations WHERE event_id = $1`, eventID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + registrationColumns + `
		FROM event_registrations
		WHERE event_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	regs, err := r.list(ctx, query, eventID, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	return regs, total, nil
}

func (r *eventRegistrationRepository) ListApprovedGoing(ctx context.Context, eventID string) ([]*domain.EventRegistration, error) {
	query := `SELECT ` + registrationColumns + `
		FROM event_registrations
		WHERE event_id = $1 AND is_verified = TRUE
		  AND approval_status = 'approved' AND rsvp_status = 'going'
		ORDER BY created_at`
	return r.list(ctx, query, eventID)
}

func (r *eventRegistrationRepository) list(ctx context.Context, query string, args ...any) ([]*domain.EventRegistration, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var regs []*domain.EventRegistration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if regs == nil {
		regs = []*domain.EventRegistration{}
	}
	return regs, nil
}

func (r *eventRegistrationRepository) SetVerified(ctx context.Context, id string) error {
	query := `
		UPDATE event_registrations
		SET is_verified = TRUE, verification_token = NULL, token_expires_at = NULL, updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRegistrationRepository) SetApprovalStatus(ctx context.Context, id, status string) error {
	query := `UPDATE event_registrations SET approval_status = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.DB.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRegistrationRepository) DeleteByEventAndUser(ctx context.Context, eventID, userID string) error {
	result, err := r.DB.ExecContext(ctx,
		`DELETE FROM event_registrations WHERE event_id = $1 AND user_id = $2`, eventID, userID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRegistrationRepository) DeleteByEventAndEmail(ctx context.Context, eventID, email string) error {
	result, err := r.DB.ExecContext(ctx,
		`DELETE FROM event_registrations WHERE event_id = $1 AND lower(email) = lower($2)`, eventID, email)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
