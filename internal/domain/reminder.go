package domain

import (
	"context"
	"errors"
	"time"
)

// Reminder buckets: fixed lead times before an event's start at which a
// reminder email may be sent once per registrant.
const (
	ReminderOneHour    = "1-hour"
	ReminderThreeHours = "3-hours"
	ReminderOneDay     = "1-day"
)

// ErrUnknownReminderBucket is returned for an unrecognized reminder bucket name.
var ErrUnknownReminderBucket = errors.New("unknown reminder bucket")

// reminderOffsets maps each bucket to its lead time and window tolerance. The
// tolerance absorbs jitter in the external cron invoker.
var reminderOffsets = map[string]struct {
	Offset    time.Duration
	Tolerance time.Duration
}{
	ReminderOneHour:    {Offset: time.Hour, Tolerance: 10 * time.Minute},
	ReminderThreeHours: {Offset: 3 * time.Hour, Tolerance: 15 * time.Minute},
	ReminderOneDay:     {Offset: 24 * time.Hour, Tolerance: 30 * time.Minute},
}

// ReminderWindow returns the [from, to] query window for the bucket around now.
func ReminderWindow(bucket string, now time.Time) (from, to time.Time, err error) {
	spec, ok := reminderOffsets[bucket]
	if !ok {
		return time.Time{}, time.Time{}, ErrUnknownReminderBucket
	}
	center := now.Add(spec.Offset)
	return center.Add(-spec.Tolerance), center.Add(spec.Tolerance), nil
}

// ValidReminderBucket reports whether bucket is one of the known lead times.
func ValidReminderBucket(bucket string) bool {
	_, ok := reminderOffsets[bucket]
	return ok
}

// SentReminder is the idempotency record for reminder sends: one row per
// (registration, bucket).
type SentReminder struct {
	ID             string    `json:"id"`
	RegistrationID string    `json:"registration_id"`
	Bucket         string    `json:"bucket"`
	SentAt         time.Time `json:"sent_at"`
}

// SentReminderRepository defines storage for the reminder idempotency ledger.
type SentReminderRepository interface {
	// Claim inserts the (registration, bucket) row if absent and reports
	// whether this call inserted it. The insert is the idempotency guarantee:
	// concurrent invocations race on the unique index, and only the winner
	// sends the email.
	Claim(ctx context.Context, registrationID, bucket string, sentAt time.Time) (claimed bool, err error)
	// Release removes a claim so a later invocation can retry the recipient.
	Release(ctx context.Context, registrationID, bucket string) error
}

// ReminderFailure describes a recipient whose reminder could not be sent.
type ReminderFailure struct {
	RegistrationID string `json:"registration_id"`
	Email          string `json:"email,omitempty"`
	Reason         string `json:"reason"`
}

// ReminderRunResult summarizes one reminder scheduler invocation.
type ReminderRunResult struct {
	Sent     int               `json:"reminders_sent"`
	Failures []ReminderFailure `json:"failures,omitempty"`
}

// ReminderService processes externally-triggered reminder runs.
type ReminderService interface {
	// ProcessReminders sends the bucket's reminder to every eligible registrant
	// that has not been reminded for this bucket yet. Send failures are
	// collected per recipient, not retried.
	ProcessReminders(ctx context.Context, bucket string) (*ReminderRunResult, error)
}
