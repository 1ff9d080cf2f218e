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

type reminderService struct {
	eventRepo        domain.EventRepository
	registrationRepo domain.EventRegistrationRepository
	userRepo         domain.UserRepository
	sentReminderRepo domain.SentReminderRepository
	emailService     domain.EmailService
	baseURL          string
	now              func() time.Time
}

// NewReminderService creates a ReminderService. now is injectable for tests;
// pass nil for time.Now.
func NewReminderService(
	eventRepo domain.EventRepository,
	registrationRepo domain.EventRegistrationRepository,
	userRepo domain.UserRepository,
	sentReminderRepo domain.SentReminderRepository,
	emailService domain.EmailService,
	baseURL string,
	now func() time.Time,
) domain.ReminderService {
	if now == nil {
		now = time.Now
	}
	return &reminderService{
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		userRepo:         userRepo,
		sentReminderRepo: sentReminderRepo,
		emailService:     emailService,
		baseURL:          strings.TrimRight(baseURL, "/"),
		now:              now,
	}
}

var reminderLeadText = map[string]string{
	domain.ReminderOneHour:    "1 hour",
	domain.ReminderThreeHours: "3 hours",
	domain.ReminderOneDay:     "1 day",
}

func (s *reminderService) ProcessReminders(ctx context.Context, bucket string) (*domain.ReminderRunResult, error) {
	from, to, err := domain.ReminderWindow(bucket, s.now())
	if err != nil {
		return nil, domain.ErrUnknownReminderBucket
	}

	events, err := s.eventRepo.ListPublishedStartingBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list events in window: %w", err)
	}

	result := &domain.ReminderRunResult{}
	for _, event := range events {
		if !event.ReminderBucketEnabled(bucket) {
			continue
		}
		regs, err := s.registrationRepo.ListApprovedGoing(ctx, event.ID)
		if err != nil {
			return nil, fmt.Errorf("list registrations for event %s: %w", event.ID, err)
		}
		for _, reg := range regs {
			s.remindOne(ctx, event, reg, bucket, result)
		}
	}
	return result, nil
}

// remindOne claims the ledger row, sends, and releases the claim on failure so
// the next invocation can retry the recipient.
func (s *reminderService) remindOne(ctx context.Context, event *domain.Event, reg *domain.EventRegistration, bucket string, result *domain.ReminderRunResult) {
	email, name, err := s.resolveRecipient(ctx, reg)
	if err != nil {
		result.Failures = append(result.Failures, domain.ReminderFailure{
			RegistrationID: reg.ID,
			Reason:         err.Error(),
		})
		return
	}

	claimed, err := s.sentReminderRepo.Claim(ctx, reg.ID, bucket, s.now())
	if err != nil {
		result.Failures = append(result.Failures, domain.ReminderFailure{
			RegistrationID: reg.ID,
			Email:          email,
			Reason:         err.Error(),
		})
		return
	}
	if !claimed {
		// Already reminded for this bucket, possibly by an overlapping run.
		return
	}

	data := &domain.ReminderEmailData{
		Email:      email,
		Name:       name,
		EventTitle: event.Title,
		StartsIn:   reminderLeadText[bucket],
		EventURL:   fmt.Sprintf("%s/events/%s", s.baseURL, event.ID),
		Location:   event.Location,
	}
	if err := s.emailService.SendEventReminder(ctx, data); err != nil {
		if relErr := s.sentReminderRepo.Release(ctx, reg.ID, bucket); relErr != nil {
			log.Printf("[REMINDER] release claim failed for registration %s: %v", reg.ID, relErr)
		}
		result.Failures = append(result.Failures, domain.ReminderFailure{
			RegistrationID: reg.ID,
			Email:          email,
			Reason:         err.Error(),
		})
		return
	}
	result.Sent++
}

func (s *reminderService) resolveRecipient(ctx context.Context, reg *domain.EventRegistration) (email, name string, err error) {
	if reg.Email != "" {
		return reg.Email, reg.Name, nil
	}
	user, err := s.userRepo.GetByID(ctx, reg.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", "", domain.ErrUserNotFound
		}
		return "", "", fmt.Errorf("get user: %w", err)
	}
	return user.Email, user.FullName(), nil
}
