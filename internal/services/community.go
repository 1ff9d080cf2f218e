package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"communityhub/internal/domain"
)

var slugRegexp = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// communityIDRegexp matches a canonical UUID string (8-4-4-4-12 hex).
var communityIDRegexp = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

type communityService struct {
	communityRepo domain.CommunityRepository
	memberRepo    domain.CommunityMemberRepository
}

// NewCommunityService creates a CommunityService with the given repositories.
func NewCommunityService(communityRepo domain.CommunityRepository, memberRepo domain.CommunityMemberRepository) domain.CommunityService {
	return &communityService{
		communityRepo: communityRepo,
		memberRepo:    memberRepo,
	}
}

// requireManager returns ErrForbidden unless userID is an owner or admin of the community.
func requireManager(ctx context.Context, memberRepo domain.CommunityMemberRepository, communityID, userID string) error {
	member, err := memberRepo.Get(ctx, communityID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrForbidden
		}
		return fmt.Errorf("get community member: %w", err)
	}
	if !member.CanManage() {
		return domain.ErrForbidden
	}
	return nil
}

func (s *communityService) CreateCommunity(ctx context.Context, name, slug, description, creatorID string) (*domain.Community, error) {
	name = strings.TrimSpace(name)
	slug = strings.TrimSpace(strings.ToLower(slug))
	if name == "" || !slugRegexp.MatchString(slug) {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	community := domain.NewCommunity(name, slug, description, creatorID, now, now)
	if err := s.communityRepo.Create(ctx, community); err != nil {
		if errors.Is(err, domain.ErrDuplicateSlug) {
			return nil, domain.ErrDuplicateSlug
		}
		return nil, fmt.Errorf("create community: %w", err)
	}

	if err := s.memberRepo.Add(ctx, community.ID, creatorID, domain.RoleOwner); err != nil {
		return nil, fmt.Errorf("add creator as owner: %w", err)
	}
	return community, nil
}

func (s *communityService) GetCommunity(ctx context.Context, idOrSlug string) (*domain.Community, error) {
	// The id column is uuid typed; querying it with a slug is a Postgres type
	// error, not an empty result. Only UUID-shaped values go through GetByID.
	if communityIDRegexp.MatchString(idOrSlug) {
		community, err := s.communityRepo.GetByID(ctx, idOrSlug)
		if err == nil {
			return community, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("get community: %w", err)
		}
	}
	community, err := s.communityRepo.GetBySlug(ctx, idOrSlug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get community by slug: %w", err)
	}
	return community, nil
}

func (s *communityService) ListMyCommunities(ctx context.Context, userID string) ([]*domain.Community, error) {
	communities, err := s.communityRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list communities: %w", err)
	}
	if communities == nil {
		communities = []*domain.Community{}
	}
	return communities, nil
}

func (s *communityService) AddMember(ctx context.Context, communityID, userID, role, callerID string) error {
	if role != domain.RoleAdmin && role != domain.RoleMember {
		return domain.ErrInvalidInput
	}
	if err := requireManager(ctx, s.memberRepo, communityID, callerID); err != nil {
		return err
	}
	if err := s.memberRepo.Add(ctx, communityID, userID, role); err != nil {
		if errors.Is(err, domain.ErrAlreadyMember) {
			return domain.ErrAlreadyMember
		}
		return fmt.Errorf("add member: %w", err)
	}
	return nil
}

func (s *communityService) ListMembers(ctx context.Context, communityID, callerID string) ([]*domain.CommunityMember, error) {
	if _, err := s.memberRepo.Get(ctx, communityID, callerID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrForbidden
		}
		return nil, fmt.Errorf("get community member: %w", err)
	}
	members, err := s.memberRepo.ListByCommunityID(ctx, communityID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	if members == nil {
		members = []*domain.CommunityMember{}
	}
	return members, nil
}

func (s *communityService) RemoveMember(ctx context.Context, communityID, userID, callerID string) error {
	if err := requireManager(ctx, s.memberRepo, communityID, callerID); err != nil {
		return err
	}
	member, err := s.memberRepo.Get(ctx, communityID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get community member: %w", err)
	}
	if member.Role == domain.RoleOwner {
		return domain.ErrInvalidInput
	}
	if err := s.memberRepo.Remove(ctx, communityID, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("remove member: %w", err)
	}
	return nil
}
