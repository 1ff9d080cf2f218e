package domain

import "context"

// Notification job types accepted by the internal notification endpoint.
const (
	NotifyCollabAcceptedNewEvent      = "collaboration-accepted-new-event"
	NotifyCollabAcceptedExistingEvent = "collaboration-accepted-existing-event"
	NotifyRegistration                = "registration-notification"
)

// NotificationJob is the payload posted to the internal notification endpoint.
// Type selects the handler; the remaining fields are contextual.
type NotificationJob struct {
	Type            string `json:"type"`
	EventID         string `json:"event_id"`
	CollaborationID string `json:"collaboration_id,omitempty"`
	RegistrationID  string `json:"registration_id,omitempty"`
}

// NotificationResult summarizes a fan-out run.
type NotificationResult struct {
	Notified int      `json:"notified"`
	Failures []string `json:"failures,omitempty"`
}

// NotificationService resolves member lists for a job and emails each member.
type NotificationService interface {
	Process(ctx context.Context, job *NotificationJob) (*NotificationResult, error)
}

// NotificationDispatcher hands a job off for asynchronous processing. The
// production implementation posts it back into the app over HTTP so the
// originating request does not wait on the fan-out.
type NotificationDispatcher interface {
	Dispatch(ctx context.Context, job *NotificationJob) error
}
