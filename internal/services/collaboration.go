package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"communityhub/internal/domain"
)

type collaborationService struct {
	collabRepo    domain.EventCollaborationRepository
	eventRepo     domain.EventRepository
	communityRepo domain.CommunityRepository
	memberRepo    domain.CommunityMemberRepository
	userRepo      domain.UserRepository
	emailService  domain.EmailService
	dispatcher    domain.NotificationDispatcher
	baseURL       string
}

// NewCollaborationService creates a CollaborationService.
func NewCollaborationService(
	collabRepo domain.EventCollaborationRepository,
	eventRepo domain.EventRepository,
	communityRepo domain.CommunityRepository,
	memberRepo domain.CommunityMemberRepository,
	userRepo domain.UserRepository,
	emailService domain.EmailService,
	dispatcher domain.NotificationDispatcher,
	baseURL string,
) domain.CollaborationService {
	return &collaborationService{
		collabRepo:    collabRepo,
		eventRepo:     eventRepo,
		communityRepo: communityRepo,
		memberRepo:    memberRepo,
		userRepo:      userRepo,
		emailService:  emailService,
		dispatcher:    dispatcher,
		baseURL:       strings.TrimRight(baseURL, "/"),
	}
}

func (s *collaborationService) Invite(ctx context.Context, eventID, communityID, callerID string) (*domain.EventCollaboration, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	// Host-side owner/admin, or the event creator.
	if callerID != event.CreatorID {
		if err := requireManager(ctx, s.memberRepo, event.CommunityID, callerID); err != nil {
			return nil, err
		}
	}

	if communityID == event.CommunityID {
		return nil, domain.ErrSelfInvitation
	}

	invited, err := s.communityRepo.GetByID(ctx, communityID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get community: %w", err)
	}

	// Any existing row blocks a fresh invite, whatever its status.
	if _, err := s.collabRepo.GetByEventAndCommunity(ctx, eventID, communityID); err == nil {
		return nil, domain.ErrCollaborationExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get collaboration: %w", err)
	}

	collab := &domain.EventCollaboration{
		EventID:     eventID,
		CommunityID: communityID,
		Role:        domain.CollabRoleCoHost,
		Status:      domain.CollabStatusPending,
		CreatedAt:   time.Now(),
	}
	if err := s.collabRepo.Create(ctx, collab); err != nil {
		if errors.Is(err, domain.ErrCollaborationExists) {
			return nil, domain.ErrCollaborationExists
		}
		return nil, fmt.Errorf("create collaboration: %w", err)
	}

	s.emailInvitedCreator(ctx, event, invited, collab)
	return collab, nil
}

func (s *collaborationService) emailInvitedCreator(ctx context.Context, event *domain.Event, invited *domain.Community, collab *domain.EventCollaboration) {
	creator, err := s.userRepo.GetByID(ctx, invited.CreatorID)
	if err != nil {
		log.Printf("[COLLAB] invited creator lookup failed for community %s: %v", invited.ID, err)
		return
	}
	host, err := s.communityRepo.GetByID(ctx, event.CommunityID)
	hostName := ""
	if err == nil {
		hostName = host.Name
	}
	data := &domain.CollaborationInviteEmailData{
		Email:         creator.Email,
		CommunityName: invited.Name,
		HostName:      hostName,
		EventTitle:    event.Title,
		RespondURL:    fmt.Sprintf("%s/collaborations/%s", s.baseURL, collab.ID),
	}
	if err := s.emailService.SendCollaborationInvite(ctx, data); err != nil {
		log.Printf("[COLLAB] invite email failed for %s: %v", creator.Email, err)
	}
}

// resolvePending loads the collaboration and authorizes the caller as an
// owner/admin of the invited community. Terminal rows are rejected.
func (s *collaborationService) resolvePending(ctx context.Context, collaborationID, callerID string) (*domain.EventCollaboration, error) {
	collab, err := s.collabRepo.GetByID(ctx, collaborationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get collaboration: %w", err)
	}
	if err := requireManager(ctx, s.memberRepo, collab.CommunityID, callerID); err != nil {
		return nil, err
	}
	if collab.Status != domain.CollabStatusPending {
		return nil, domain.ErrCollaborationResolved
	}
	return collab, nil
}

func (s *collaborationService) Accept(ctx context.Context, collaborationID, callerID string) (*domain.EventCollaboration, error) {
	collab, err := s.resolvePending(ctx, collaborationID, callerID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.collabRepo.SetStatus(ctx, collaborationID, domain.CollabStatusAccepted, &now); err != nil {
		return nil, fmt.Errorf("accept collaboration: %w", err)
	}
	collab.Status = domain.CollabStatusAccepted
	collab.AcceptedAt = &now

	event, err := s.eventRepo.GetByID(ctx, collab.EventID)
	if err != nil {
		log.Printf("[COLLAB] event lookup failed after accept %s: %v", collaborationID, err)
		return collab, nil
	}

	s.emailHostCreator(ctx, event, collab)

	// Fan-out runs through the internal notification endpoint so this request
	// does not wait on the member emails. A collaboration accepted before the
	// event went live announces a new event to everyone; one added afterwards
	// only announces the co-hosting to the co-host's members.
	jobType := domain.NotifyCollabAcceptedExistingEvent
	if event.PublishedAt == nil || collab.CreatedAt.Before(*event.PublishedAt) {
		jobType = domain.NotifyCollabAcceptedNewEvent
	}
	job := &domain.NotificationJob{
		Type:            jobType,
		EventID:         collab.EventID,
		CollaborationID: collab.ID,
	}
	if err := s.dispatcher.Dispatch(ctx, job); err != nil {
		log.Printf("[COLLAB] fan-out dispatch failed for collaboration %s: %v", collab.ID, err)
	}

	return collab, nil
}

func (s *collaborationService) emailHostCreator(ctx context.Context, event *domain.Event, collab *domain.EventCollaboration) {
	host, err := s.communityRepo.GetByID(ctx, event.CommunityID)
	if err != nil {
		log.Printf("[COLLAB] host community lookup failed for event %s: %v", event.ID, err)
		return
	}
	coHost, err := s.communityRepo.GetByID(ctx, collab.CommunityID)
	if err != nil {
		log.Printf("[COLLAB] co-host community lookup failed for collaboration %s: %v", collab.ID, err)
		return
	}
	creator, err := s.userRepo.GetByID(ctx, host.CreatorID)
	if err != nil {
		log.Printf("[COLLAB] host creator lookup failed for community %s: %v", host.ID, err)
		return
	}
	data := &domain.CollaborationAcceptedEmailData{
		Email:           creator.Email,
		HostCommunity:   host.Name,
		CoHostCommunity: coHost.Name,
		EventTitle:      event.Title,
	}
	if err := s.emailService.SendCollaborationAccepted(ctx, data); err != nil {
		log.Printf("[COLLAB] accepted email failed for %s: %v", creator.Email, err)
	}
}

func (s *collaborationService) Reject(ctx context.Context, collaborationID, callerID string) (*domain.EventCollaboration, error) {
	collab, err := s.resolvePending(ctx, collaborationID, callerID)
	if err != nil {
		return nil, err
	}
	if err := s.collabRepo.SetStatus(ctx, collaborationID, domain.CollabStatusRejected, nil); err != nil {
		return nil, fmt.Errorf("reject collaboration: %w", err)
	}
	collab.Status = domain.CollabStatusRejected
	return collab, nil
}

func (s *collaborationService) Remove(ctx context.Context, collaborationID, callerID string) error {
	collab, err := s.collabRepo.GetByID(ctx, collaborationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get collaboration: %w", err)
	}
	if collab.Role == domain.CollabRoleHost {
		return domain.ErrInvalidInput
	}

	event, err := s.eventRepo.GetByID(ctx, collab.EventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if err := requireManager(ctx, s.memberRepo, event.CommunityID, callerID); err != nil {
		return err
	}

	if err := s.collabRepo.Delete(ctx, collaborationID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete collaboration: %w", err)
	}
	return nil
}

func (s *collaborationService) List(ctx context.Context, eventID string) ([]*domain.EventCollaboration, error) {
	collabs, err := s.collabRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list collaborations: %w", err)
	}
	if collabs == nil {
		collabs = []*domain.EventCollaboration{}
	}
	return collabs, nil
}
