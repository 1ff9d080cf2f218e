package domain

import (
	"context"
	"errors"
	"time"
)

// ErrAlreadyMember is returned when adding a user who is already a member of the community.
var ErrAlreadyMember = errors.New("already a community member")

// ErrDuplicateSlug is returned when creating a community whose slug is taken.
var ErrDuplicateSlug = errors.New("community slug already in use")

// Community member roles.
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Community represents a group of users that hosts and co-hosts events.
// swagger:model Community
type Community struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	CreatorID   string    `json:"creator_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewCommunity returns a new Community. ID is typically set by the repository on create.
func NewCommunity(name, slug, description, creatorID string, createdAt, updatedAt time.Time) *Community {
	return &Community{
		Name:        name,
		Slug:        slug,
		Description: description,
		CreatorID:   creatorID,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// CommunityMember represents a user's membership in a community with a role.
// swagger:model CommunityMember
type CommunityMember struct {
	CommunityID string    `json:"community_id"`
	UserID      string    `json:"user_id"`
	Role        string    `json:"role"`
	Name        string    `json:"name"`
	LastName    string    `json:"last_name"`
	Email       string    `json:"email"`
	JoinedAt    time.Time `json:"joined_at"`
}

// CanManage reports whether the role may administer the community (owner or admin).
func (m *CommunityMember) CanManage() bool {
	return m.Role == RoleOwner || m.Role == RoleAdmin
}

// CommunityRepository defines the interface for community storage.
type CommunityRepository interface {
	Create(ctx context.Context, community *Community) error
	GetByID(ctx context.Context, id string) (*Community, error)
	GetBySlug(ctx context.Context, slug string) (*Community, error)
	ListByUserID(ctx context.Context, userID string) ([]*Community, error)
}

// CommunityMemberRepository defines storage operations for community memberships.
type CommunityMemberRepository interface {
	Add(ctx context.Context, communityID, userID, role string) error
	Get(ctx context.Context, communityID, userID string) (*CommunityMember, error)
	ListByCommunityID(ctx context.Context, communityID string) ([]*CommunityMember, error)
	Remove(ctx context.Context, communityID, userID string) error
}

// CommunityService defines community management operations.
type CommunityService interface {
	// CreateCommunity creates the community and adds the creator as owner.
	CreateCommunity(ctx context.Context, name, slug, description, creatorID string) (*Community, error)
	GetCommunity(ctx context.Context, idOrSlug string) (*Community, error)
	ListMyCommunities(ctx context.Context, userID string) ([]*Community, error)
	// AddMember adds userID with the given role. Caller must be owner or admin.
	AddMember(ctx context.Context, communityID, userID, role, callerID string) error
	ListMembers(ctx context.Context, communityID, callerID string) ([]*CommunityMember, error)
	// RemoveMember removes userID from the community. Caller must be owner or admin; the owner cannot be removed.
	RemoveMember(ctx context.Context, communityID, userID, callerID string) error
}
