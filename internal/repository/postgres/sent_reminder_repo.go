package postgres

import (
	"context"
	"database/sql"
	"time"

	"communityhub/internal/domain"
)

type sentReminderRepository struct {
	DB *sql.DB
}

func NewSentReminderRepository(db *sql.DB) domain.SentReminderRepository {
	return &sentReminderRepository{DB: db}
}

// Claim is a conditional insert against the (registration_id, bucket) unique
// index. Two overlapping scheduler runs race on the insert; exactly one sees
// claimed=true and sends the email.
func (r *sentReminderRepository) Claim(ctx context.Context, registrationID, bucket string, sentAt time.Time) (bool, error) {
	query := `
		INSERT INTO sent_reminders (registration_id, bucket, sent_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (registration_id, bucket) DO NOTHING
	`
	result, err := r.DB.ExecContext(ctx, query, registrationID, bucket, sentAt)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

func (r *sentReminderRepository) Release(ctx context.Context, registrationID, bucket string) error {
	query := `DELETE FROM sent_reminders WHERE registration_id = $1 AND bucket = $2`
	_, err := r.DB.ExecContext(ctx, query, registrationID, bucket)
	return err
}
