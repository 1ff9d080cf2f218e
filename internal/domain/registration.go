package domain

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// RSVP statuses.
const (
	RSVPGoing    = "going"
	RSVPNotGoing = "not_going"
	RSVPMaybe    = "maybe"
)

// Approval statuses.
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

// Sentinel errors for registration operations.
var (
	// ErrAlreadyRegistered is returned when a verified registration already exists for the identity.
	ErrAlreadyRegistered = errors.New("this email is already registered for the event")
	// ErrVerificationPending is returned when an unverified registration already holds the email.
	ErrVerificationPending = errors.New("a verification email has already been sent to this address")
	// ErrTokenInvalid is returned when a verification token is unknown or expired.
	ErrTokenInvalid = errors.New("verification token is invalid or expired")
)

// EventRegistration represents a visitor's registration for an event. Either
// UserID (authenticated) or Name/Email (anonymous) identifies the registrant.
// swagger:model EventRegistration
type EventRegistration struct {
	ID                string          `json:"id"`
	EventID           string          `json:"event_id"`
	UserID            string          `json:"user_id,omitempty"`
	Name              string          `json:"name,omitempty"`
	Email             string          `json:"email,omitempty"`
	Phone             string          `json:"phone,omitempty"`
	RSVPStatus        string          `json:"rsvp_status"`
	IsVerified        bool            `json:"is_verified"`
	ApprovalStatus    string          `json:"approval_status"`
	VerificationToken string          `json:"-"`
	TokenExpiresAt    *time.Time      `json:"-"`
	CustomAnswers     json.RawMessage `json:"custom_answers,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// AnonymousRegistrant carries the identity fields of an anonymous registration request.
type AnonymousRegistrant struct {
	Name  string
	Email string
	Phone string
}

// RegistrationResult is the outcome of a registration operation.
// NeedsCustomQuestions signals that nothing was written and the caller must
// re-submit through the custom-questions operation. RedirectTo carries the
// verification-pending location for anonymous flows.
type RegistrationResult struct {
	Registration         *EventRegistration `json:"registration,omitempty"`
	NeedsCustomQuestions bool               `json:"needs_custom_questions,omitempty"`
	RedirectTo           string             `json:"redirect_to,omitempty"`
}

// EventRegistrationRepository defines storage operations for event registrations.
// Create relies on store-level unique indexes over (event_id, user_id) and
// (event_id, lower(email)) and returns ErrAlreadyRegistered on conflict.
type EventRegistrationRepository interface {
	Create(ctx context.Context, reg *EventRegistration) error
	GetByID(ctx context.Context, id string) (*EventRegistration, error)
	GetByEventAndUser(ctx context.Context, eventID, userID string) (*EventRegistration, error)
	GetByEventAndEmail(ctx context.Context, eventID, email string) (*EventRegistration, error)
	GetByEventAndToken(ctx context.Context, eventID, token string) (*EventRegistration, error)
	ListByEventID(ctx context.Context, eventID string, params PaginationParams) ([]*EventRegistration, int, error)
	// ListApprovedGoing returns verified registrations with approval=approved and rsvp=going.
	ListApprovedGoing(ctx context.Context, eventID string) ([]*EventRegistration, error)
	SetVerified(ctx context.Context, id string) error
	SetApprovalStatus(ctx context.Context, id, status string) error
	DeleteByEventAndUser(ctx context.Context, eventID, userID string) error
	DeleteByEventAndEmail(ctx context.Context, eventID, email string) error
}

// RegistrationService defines the registration lifecycle operations.
type RegistrationService interface {
	// Register registers the authenticated user; verified immediately.
	Register(ctx context.Context, eventID, userID string) (*RegistrationResult, error)
	// RegisterAnonymous starts an anonymous registration. If the event defines
	// custom questions it short-circuits with NeedsCustomQuestions set and
	// writes nothing.
	RegisterAnonymous(ctx context.Context, eventID string, reg AnonymousRegistrant) (*RegistrationResult, error)
	// RegisterAnonymousWithAnswers completes an anonymous registration that
	// includes phone and custom question answers.
	RegisterAnonymousWithAnswers(ctx context.Context, eventID string, reg AnonymousRegistrant, answers json.RawMessage) (*RegistrationResult, error)
	// Subscribe records interest in an external event for the authenticated user.
	Subscribe(ctx context.Context, eventID, userID string) (*RegistrationResult, error)
	// SubscribeAnonymous records interest in an external event for an anonymous visitor.
	SubscribeAnonymous(ctx context.Context, eventID string, reg AnonymousRegistrant) (*RegistrationResult, error)
	Unregister(ctx context.Context, eventID, userID string) error
	UnsubscribeAnonymous(ctx context.Context, eventID, email string) error
	// VerifyEmail confirms an anonymous registration using its emailed token.
	VerifyEmail(ctx context.Context, eventID, token string) (*EventRegistration, error)
	// SetApprovalStatus sets the approval status. Caller must be owner or admin
	// of the host community. Idempotent; every call sends a status-update email.
	SetApprovalStatus(ctx context.Context, eventID, registrationID, status, callerID string) (*EventRegistration, error)
	ListRegistrations(ctx context.Context, eventID, callerID string, params PaginationParams) ([]*EventRegistration, int, error)
}
