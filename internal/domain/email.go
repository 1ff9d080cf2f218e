package domain

import (
	"context"
	"time"
)

// Attachment is a file attached to an outgoing email.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
	SendWithAttachment(to, subject, html, text string, attachment *Attachment) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// CalendarEventData holds the fields rendered into an ICS calendar attachment.
type CalendarEventData struct {
	UID         string
	Title       string
	Description string
	Location    string
	StartTime   time.Time
	EndTime     time.Time
	URL         string
	Organizer   string
}

// CalendarBuilder produces an ICS (RFC 5545 subset) attachment for an event.
type CalendarBuilder interface {
	Build(data *CalendarEventData) (*Attachment, error)
}

// VerificationEmailData holds data for the anonymous registration verification email.
type VerificationEmailData struct {
	Email      string
	Name       string
	EventTitle string
	VerifyURL  string
	ExpiresIn  string
}

// ConfirmationEmailData holds data for registration/subscription confirmation emails.
type ConfirmationEmailData struct {
	Email       string
	Name        string
	EventTitle  string
	EventURL    string
	ExternalURL string
	Calendar    *CalendarEventData
}

// ApprovalStatusEmailData holds data for the approval status-update email.
type ApprovalStatusEmailData struct {
	Email      string
	Name       string
	EventTitle string
	Status     string
	Calendar   *CalendarEventData
}

// CollaborationInviteEmailData holds data for the co-host invitation email.
type CollaborationInviteEmailData struct {
	Email         string
	CommunityName string
	HostName      string
	EventTitle    string
	RespondURL    string
}

// CollaborationAcceptedEmailData holds data for the acceptance notice to the host.
type CollaborationAcceptedEmailData struct {
	Email           string
	HostCommunity   string
	CoHostCommunity string
	EventTitle      string
}

// ReminderEmailData holds data for the event reminder email.
type ReminderEmailData struct {
	Email      string
	Name       string
	EventTitle string
	StartsIn   string
	EventURL   string
	Location   string
}

// AnnouncementEmailData holds data for member fan-out announcement emails.
type AnnouncementEmailData struct {
	Email         string
	Name          string
	EventTitle    string
	CommunityName string
	EventURL      string
	IsNewEvent    bool
}

// RegistrationNoticeEmailData holds data for the organizer-facing notice that
// a new registration arrived.
type RegistrationNoticeEmailData struct {
	Email           string
	OrganizerName   string
	RegistrantName  string
	RegistrantEmail string
	EventTitle      string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendVerification(ctx context.Context, data *VerificationEmailData) error
	SendRegistrationConfirmation(ctx context.Context, data *ConfirmationEmailData) error
	SendSubscriptionConfirmation(ctx context.Context, data *ConfirmationEmailData) error
	SendApprovalStatus(ctx context.Context, data *ApprovalStatusEmailData) error
	SendCollaborationInvite(ctx context.Context, data *CollaborationInviteEmailData) error
	SendCollaborationAccepted(ctx context.Context, data *CollaborationAcceptedEmailData) error
	SendEventReminder(ctx context.Context, data *ReminderEmailData) error
	SendMemberAnnouncement(ctx context.Context, data *AnnouncementEmailData) error
	SendRegistrationNotice(ctx context.Context, data *RegistrationNoticeEmailData) error
}
