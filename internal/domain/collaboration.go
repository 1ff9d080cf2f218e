package domain

import (
	"context"
	"errors"
	"time"
)

// Collaboration roles.
const (
	CollabRoleHost   = "host"
	CollabRoleCoHost = "co-host"
)

// Collaboration statuses. Pending is the only state from which accepted or
// rejected are reachable; both are terminal.
const (
	CollabStatusPending  = "pending"
	CollabStatusAccepted = "accepted"
	CollabStatusRejected = "rejected"
)

// Sentinel errors for collaboration operations.
var (
	// ErrCollaborationExists is returned when inviting a community that already
	// has a collaboration row for the event, regardless of its status.
	ErrCollaborationExists = errors.New("a collaboration already exists for this event and community")
	// ErrCollaborationResolved is returned when accepting or rejecting a
	// collaboration that is no longer pending.
	ErrCollaborationResolved = errors.New("collaboration has already been resolved")
	// ErrSelfInvitation is returned when the host community invites itself.
	ErrSelfInvitation = errors.New("host community cannot invite itself")
)

// EventCollaboration links an event to a community as host or co-host.
// swagger:model EventCollaboration
type EventCollaboration struct {
	ID          string     `json:"id"`
	EventID     string     `json:"event_id"`
	CommunityID string     `json:"community_id"`
	Role        string     `json:"role"`
	Status      string     `json:"status"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// EventCollaborationRepository defines storage operations for collaborations.
type EventCollaborationRepository interface {
	Create(ctx context.Context, collab *EventCollaboration) error
	GetByID(ctx context.Context, id string) (*EventCollaboration, error)
	GetByEventAndCommunity(ctx context.Context, eventID, communityID string) (*EventCollaboration, error)
	GetHostByEventID(ctx context.Context, eventID string) (*EventCollaboration, error)
	ListByEventID(ctx context.Context, eventID string) ([]*EventCollaboration, error)
	// SetStatus updates status and stamps accepted_at when acceptedAt is non-nil.
	SetStatus(ctx context.Context, id, status string, acceptedAt *time.Time) error
	Delete(ctx context.Context, id string) error
}

// CollaborationService defines the co-hosting workflow.
type CollaborationService interface {
	// Invite invites communityID to co-host the event. Caller must be owner or
	// admin of the host community, or the event creator.
	Invite(ctx context.Context, eventID, communityID, callerID string) (*EventCollaboration, error)
	// Accept resolves a pending collaboration. Caller must be owner or admin of
	// the invited community. Triggers the member notification fan-out.
	Accept(ctx context.Context, collaborationID, callerID string) (*EventCollaboration, error)
	// Reject resolves a pending collaboration. Caller must be owner or admin of
	// the invited community.
	Reject(ctx context.Context, collaborationID, callerID string) (*EventCollaboration, error)
	// Remove hard-deletes a co-host collaboration. Host side only.
	Remove(ctx context.Context, collaborationID, callerID string) error
	List(ctx context.Context, eventID string) ([]*EventCollaboration, error)
}
