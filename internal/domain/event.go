package domain

import (
	"context"
	"encoding/json"
	"time"
)

// Event statuses.
const (
	EventStatusDraft     = "draft"
	EventStatusPublished = "published"
	EventStatusCancelled = "cancelled"
)

// Event types.
const (
	EventTypeInPerson = "in-person"
	EventTypeOnline   = "online"
	EventTypeHybrid   = "hybrid"
)

// Registration types. External events collect subscribers only; the actual
// RSVP happens on a third-party platform.
const (
	RegistrationTypeInternal = "internal"
	RegistrationTypeExternal = "external"
)

// CustomQuestion is an organizer-defined question answered at registration time.
type CustomQuestion struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Type     string `json:"type"` // text, select, checkbox
	Required bool   `json:"required"`
}

// Event represents an event hosted by a community.
// swagger:model Event
type Event struct {
	ID               string           `json:"id"`
	CommunityID      string           `json:"community_id"`
	CreatorID        string           `json:"creator_id"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	Location         string           `json:"location"`
	StartTime        *time.Time       `json:"start_time"`
	EndTime          *time.Time       `json:"end_time"`
	Timezone         string           `json:"timezone"`
	Capacity         int              `json:"capacity"`
	Status           string           `json:"status"`
	EventType        string           `json:"event_type"`
	RegistrationType string           `json:"registration_type"`
	ExternalURL      string           `json:"external_url"`
	RequiresApproval bool             `json:"requires_approval"`
	CollectPhone     bool             `json:"collect_phone"`
	CustomQuestions  []CustomQuestion `json:"custom_questions"`
	ReminderBuckets  []string         `json:"reminder_buckets"`
	PublishedAt      *time.Time       `json:"published_at"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// HasCustomQuestions reports whether registering for the event requires the
// custom-questions step (organizer-defined questions or phone collection).
func (e *Event) HasCustomQuestions() bool {
	return e.CollectPhone || len(e.CustomQuestions) > 0
}

// ReminderBucketEnabled reports whether the event opted in to the given reminder bucket.
func (e *Event) ReminderBucketEnabled(bucket string) bool {
	for _, b := range e.ReminderBuckets {
		if b == bucket {
			return true
		}
	}
	return false
}

// CustomQuestionsJSON marshals the custom questions for storage.
func (e *Event) CustomQuestionsJSON() ([]byte, error) {
	if len(e.CustomQuestions) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(e.CustomQuestions)
}

// EventUpdate holds the updatable event fields; nil means unchanged.
type EventUpdate struct {
	Title       *string
	Description *string
	Location    *string
	StartTime   *time.Time
	EndTime     *time.Time
	Capacity    *int
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	// CreateWithHost inserts the event and its host collaboration row in a single transaction.
	CreateWithHost(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	ListByCommunityID(ctx context.Context, communityID string) ([]*Event, error)
	Update(ctx context.Context, id string, upd EventUpdate) (*Event, error)
	// SetStatus updates the event status; publishedAt is stamped only when non-nil.
	SetStatus(ctx context.Context, id, status string, publishedAt *time.Time) error
	// ListPublishedStartingBetween returns published events whose start_time falls in [from, to].
	ListPublishedStartingBetween(ctx context.Context, from, to time.Time) ([]*Event, error)
	Delete(ctx context.Context, id string) error
}

// EventService defines organizer-facing event operations.
type EventService interface {
	// CreateEvent creates a draft event for the community. Caller must be owner or admin.
	CreateEvent(ctx context.Context, event *Event, callerID string) error
	GetEvent(ctx context.Context, eventID string) (*Event, error)
	ListCommunityEvents(ctx context.Context, communityID string) ([]*Event, error)
	UpdateEvent(ctx context.Context, eventID, callerID string, upd EventUpdate) (*Event, error)
	// PublishEvent transitions draft -> published and stamps published_at once.
	PublishEvent(ctx context.Context, eventID, callerID string) (*Event, error)
	CancelEvent(ctx context.Context, eventID, callerID string) error
}
