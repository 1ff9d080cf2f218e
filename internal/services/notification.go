package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"communityhub/internal/domain"
)

type notificationService struct {
	eventRepo        domain.EventRepository
	collabRepo       domain.EventCollaborationRepository
	communityRepo    domain.CommunityRepository
	memberRepo       domain.CommunityMemberRepository
	registrationRepo domain.EventRegistrationRepository
	userRepo         domain.UserRepository
	emailService     domain.EmailService
	baseURL          string

	handlers map[string]func(context.Context, *domain.NotificationJob) (*domain.NotificationResult, error)
}

// NewNotificationService creates a NotificationService. Jobs are dispatched
// through a handler table keyed by job type.
func NewNotificationService(
	eventRepo domain.EventRepository,
	collabRepo domain.EventCollaborationRepository,
	communityRepo domain.CommunityRepository,
	memberRepo domain.CommunityMemberRepository,
	registrationRepo domain.EventRegistrationRepository,
	userRepo domain.UserRepository,
	emailService domain.EmailService,
	baseURL string,
) domain.NotificationService {
	s := &notificationService{
		eventRepo:        eventRepo,
		collabRepo:       collabRepo,
		communityRepo:    communityRepo,
		memberRepo:       memberRepo,
		registrationRepo: registrationRepo,
		userRepo:         userRepo,
		emailService:     emailService,
		baseURL:          strings.TrimRight(baseURL, "/"),
	}
	s.handlers = map[string]func(context.Context, *domain.NotificationJob) (*domain.NotificationResult, error){
		domain.NotifyCollabAcceptedNewEvent:      s.handleCollabAccepted,
		domain.NotifyCollabAcceptedExistingEvent: s.handleCollabAccepted,
		domain.NotifyRegistration:                s.handleRegistration,
	}
	return s
}

func (s *notificationService) Process(ctx context.Context, job *domain.NotificationJob) (*domain.NotificationResult, error) {
	if job == nil {
		return nil, domain.ErrInvalidInput
	}
	handler, ok := s.handlers[job.Type]
	if !ok {
		return nil, domain.ErrInvalidInput
	}
	return handler(ctx, job)
}

// handleCollabAccepted fans out to community members after a collaboration is
// accepted. New-event jobs notify host and co-host members; existing-event
// jobs notify co-host members only, since host members already knew the event.
func (s *notificationService) handleCollabAccepted(ctx context.Context, job *domain.NotificationJob) (*domain.NotificationResult, error) {
	collab, err := s.collabRepo.GetByID(ctx, job.CollaborationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get collaboration: %w", err)
	}
	event, err := s.eventRepo.GetByID(ctx, collab.EventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	isNewEvent := job.Type == domain.NotifyCollabAcceptedNewEvent
	communityIDs := []string{collab.CommunityID}
	if isNewEvent {
		communityIDs = append(communityIDs, event.CommunityID)
	}

	result := &domain.NotificationResult{}
	seen := make(map[string]struct{})
	for _, communityID := range communityIDs {
		community, err := s.communityRepo.GetByID(ctx, communityID)
		if err != nil {
			return nil, fmt.Errorf("get community %s: %w", communityID, err)
		}
		members, err := s.memberRepo.ListByCommunityID(ctx, communityID)
		if err != nil {
			return nil, fmt.Errorf("list members of %s: %w", communityID, err)
		}
		for _, member := range members {
			if _, ok := seen[member.Email]; ok {
				continue
			}
			seen[member.Email] = struct{}{}
			data := &domain.AnnouncementEmailData{
				Email:         member.Email,
				Name:          member.Name,
				EventTitle:    event.Title,
				CommunityName: community.Name,
				EventURL:      fmt.Sprintf("%s/events/%s", s.baseURL, event.ID),
				IsNewEvent:    isNewEvent,
			}
			if err := s.emailService.SendMemberAnnouncement(ctx, data); err != nil {
				result.Failures = append(result.Failures, member.Email)
				continue
			}
			result.Notified++
		}
	}
	return result, nil
}

// handleRegistration notifies host community owners and admins of a new registration.
func (s *notificationService) handleRegistration(ctx context.Context, job *domain.NotificationJob) (*domain.NotificationResult, error) {
	reg, err := s.registrationRepo.GetByID(ctx, job.RegistrationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}
	event, err := s.eventRepo.GetByID(ctx, reg.EventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	members, err := s.memberRepo.ListByCommunityID(ctx, event.CommunityID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	registrantName, registrantEmail := reg.Name, reg.Email
	if reg.UserID != "" {
		user, err := s.userRepo.GetByID(ctx, reg.UserID)
		if err != nil {
			return nil, fmt.Errorf("get registrant user: %w", err)
		}
		registrantName, registrantEmail = user.FullName(), user.Email
	}

	result := &domain.NotificationResult{}
	for _, member := range members {
		if !member.CanManage() {
			continue
		}
		data := &domain.RegistrationNoticeEmailData{
			Email:           member.Email,
			OrganizerName:   member.Name,
			RegistrantName:  registrantName,
			RegistrantEmail: registrantEmail,
			EventTitle:      event.Title,
		}
		if err := s.emailService.SendRegistrationNotice(ctx, data); err != nil {
			result.Failures = append(result.Failures, member.Email)
			continue
		}
		result.Notified++
	}
	return result, nil
}
