package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"communityhub/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	memberRepo     domain.CommunityMemberRepository
	contextTimeout time.Duration
}

func NewEventService(eventRepo domain.EventRepository, memberRepo domain.CommunityMemberRepository, timeout time.Duration) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		memberRepo:     memberRepo,
		contextTimeout: timeout,
	}
}

func validEventType(t string) bool {
	return t == domain.EventTypeInPerson || t == domain.EventTypeOnline || t == domain.EventTypeHybrid
}

func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event, callerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if event.CommunityID == "" || strings.TrimSpace(event.Title) == "" {
		return domain.ErrInvalidInput
	}
	if !validEventType(event.EventType) {
		return domain.ErrInvalidInput
	}
	if event.RegistrationType != domain.RegistrationTypeInternal && event.RegistrationType != domain.RegistrationTypeExternal {
		return domain.ErrInvalidInput
	}
	if event.RegistrationType == domain.RegistrationTypeExternal && event.ExternalURL == "" {
		return domain.ErrInvalidInput
	}
	if event.StartTime != nil && event.EndTime != nil && !event.EndTime.After(*event.StartTime) {
		return domain.ErrInvalidInput
	}
	for _, b := range event.ReminderBuckets {
		if !domain.ValidReminderBucket(b) {
			return domain.ErrInvalidInput
		}
	}

	if err := requireManager(ctx, s.memberRepo, event.CommunityID, callerID); err != nil {
		return err
	}

	event.CreatorID = callerID
	event.Status = domain.EventStatusDraft
	event.CreatedAt = time.Now()
	event.UpdatedAt = event.CreatedAt

	// The host collaboration row is created in the same transaction as the event.
	if err := s.eventRepo.CreateWithHost(ctx, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (s *eventService) GetEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) ListCommunityEvents(ctx context.Context, communityID string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.ListByCommunityID(ctx, communityID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}

// requireHostManager loads the event and checks the caller may manage its host community.
func (s *eventService) requireHostManager(ctx context.Context, eventID, callerID string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if err := requireManager(ctx, s.memberRepo, event.CommunityID, callerID); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, eventID, callerID string, upd domain.EventUpdate) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.requireHostManager(ctx, eventID, callerID)
	if err != nil {
		return nil, err
	}

	newStart := event.StartTime
	if upd.StartTime != nil {
		newStart = upd.StartTime
	}
	newEnd := event.EndTime
	if upd.EndTime != nil {
		newEnd = upd.EndTime
	}
	if newStart != nil && newEnd != nil && !newEnd.After(*newStart) {
		return nil, domain.ErrInvalidInput
	}

	updated, err := s.eventRepo.Update(ctx, eventID, upd)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return updated, nil
}

func (s *eventService) PublishEvent(ctx context.Context, eventID, callerID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.requireHostManager(ctx, eventID, callerID)
	if err != nil {
		return nil, err
	}
	if event.Status == domain.EventStatusCancelled {
		return nil, domain.ErrInvalidInput
	}
	if event.Status == domain.EventStatusPublished {
		return event, nil
	}

	now := time.Now()
	var publishedAt *time.Time
	if event.PublishedAt == nil {
		publishedAt = &now
	}
	if err := s.eventRepo.SetStatus(ctx, eventID, domain.EventStatusPublished, publishedAt); err != nil {
		return nil, fmt.Errorf("publish event: %w", err)
	}
	event.Status = domain.EventStatusPublished
	if publishedAt != nil {
		event.PublishedAt = publishedAt
	}
	return event, nil
}

func (s *eventService) CancelEvent(ctx context.Context, eventID, callerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.requireHostManager(ctx, eventID, callerID); err != nil {
		return err
	}
	if err := s.eventRepo.SetStatus(ctx, eventID, domain.EventStatusCancelled, nil); err != nil {
		return fmt.Errorf("cancel event: %w", err)
	}
	return nil
}
