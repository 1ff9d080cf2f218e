package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"communityhub/internal/domain"
)

const verificationTokenTTL = 24 * time.Hour

type registrationService struct {
	eventRepo        domain.EventRepository
	registrationRepo domain.EventRegistrationRepository
	communityRepo    domain.CommunityRepository
	memberRepo       domain.CommunityMemberRepository
	userRepo         domain.UserRepository
	emailService     domain.EmailService
	dispatcher       domain.NotificationDispatcher
	baseURL          string
}

// NewRegistrationService creates a RegistrationService. baseURL is the public
// application URL used to build verification links.
func NewRegistrationService(
	eventRepo domain.EventRepository,
	registrationRepo domain.EventRegistrationRepository,
	communityRepo domain.CommunityRepository,
	memberRepo domain.CommunityMemberRepository,
	userRepo domain.UserRepository,
	emailService domain.EmailService,
	dispatcher domain.NotificationDispatcher,
	baseURL string,
) domain.RegistrationService {
	return &registrationService{
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		communityRepo:    communityRepo,
		memberRepo:       memberRepo,
		userRepo:         userRepo,
		emailService:     emailService,
		dispatcher:       dispatcher,
		baseURL:          strings.TrimRight(baseURL, "/"),
	}
}

func generateVerificationToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate verification token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// getOpenEvent loads the event and checks that it accepts the given registration type.
func (s *registrationService) getOpenEvent(ctx context.Context, eventID, registrationType string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.Status != domain.EventStatusPublished {
		return nil, domain.ErrNotFound
	}
	if event.RegistrationType != registrationType {
		return nil, domain.ErrInvalidInput
	}
	return event, nil
}

func approvalStatusFor(event *domain.Event) string {
	if event.RequiresApproval {
		return domain.ApprovalPending
	}
	return domain.ApprovalApproved
}

// notifyOrganizers posts a registration-notification fan-out job. Failures are
// logged; the registration has already been persisted.
func (s *registrationService) notifyOrganizers(ctx context.Context, reg *domain.EventRegistration) {
	if s.dispatcher == nil {
		return
	}
	job := &domain.NotificationJob{
		Type:           domain.NotifyRegistration,
		EventID:        reg.EventID,
		RegistrationID: reg.ID,
	}
	if err := s.dispatcher.Dispatch(ctx, job); err != nil {
		log.Printf("[REGISTRATION] organizer notification dispatch failed for registration %s: %v", reg.ID, err)
	}
}

// calendarDataFor builds the ICS payload for the event. The host community
// name becomes the ORGANIZER display name; a failed lookup leaves it empty.
func (s *registrationService) calendarDataFor(ctx context.Context, event *domain.Event) *domain.CalendarEventData {
	if event.StartTime == nil || event.EndTime == nil {
		return nil
	}
	data := &domain.CalendarEventData{
		UID:         event.ID,
		Title:       event.Title,
		Description: event.Description,
		Location:    event.Location,
		StartTime:   *event.StartTime,
		EndTime:     *event.EndTime,
		URL:         s.eventURL(event.ID),
	}
	community, err := s.communityRepo.GetByID(ctx, event.CommunityID)
	if err != nil {
		log.Printf("[REGISTRATION] community lookup failed for event %s: %v", event.ID, err)
		return data
	}
	data.Organizer = community.Name
	return data
}

func (s *registrationService) eventURL(eventID string) string {
	return fmt.Sprintf("%s/events/%s", s.baseURL, eventID)
}

func (s *registrationService) Register(ctx context.Context, eventID, userID string) (*domain.RegistrationResult, error) {
	event, err := s.getOpenEvent(ctx, eventID, domain.RegistrationTypeInternal)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	now := time.Now()
	reg := &domain.EventRegistration{
		EventID:        eventID,
		UserID:         userID,
		RSVPStatus:     domain.RSVPGoing,
		IsVerified:     true,
		ApprovalStatus: approvalStatusFor(event),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.registrationRepo.Create(ctx, reg); err != nil {
		if errors.Is(err, domain.ErrAlreadyRegistered) {
			return nil, domain.ErrAlreadyRegistered
		}
		return nil, fmt.Errorf("create registration: %w", err)
	}

	// Confirmation is best-effort: registration success does not depend on it.
	data := &domain.ConfirmationEmailData{
		Email:      user.Email,
		Name:       user.FullName(),
		EventTitle: event.Title,
		EventURL:   s.eventURL(event.ID),
		Calendar:   s.calendarDataFor(ctx, event),
	}
	if err := s.emailService.SendRegistrationConfirmation(ctx, data); err != nil {
		log.Printf("[REGISTRATION] confirmation email failed for %s: %v", user.Email, err)
	}
	s.notifyOrganizers(ctx, reg)

	return &domain.RegistrationResult{Registration: reg}, nil
}

func (s *registrationService) RegisterAnonymous(ctx context.Context, eventID string, registrant domain.AnonymousRegistrant) (*domain.RegistrationResult, error) {
	registrant.Email = strings.TrimSpace(strings.ToLower(registrant.Email))
	registrant.Name = strings.TrimSpace(registrant.Name)
	if registrant.Name == "" || !emailRegexp.MatchString(registrant.Email) {
		return nil, domain.ErrInvalidInput
	}

	event, err := s.getOpenEvent(ctx, eventID, domain.RegistrationTypeInternal)
	if err != nil {
		return nil, err
	}

	// Events with custom questions (or phone collection) need the
	// custom-questions submission; nothing is written here.
	if event.HasCustomQuestions() {
		return &domain.RegistrationResult{NeedsCustomQuestions: true}, nil
	}

	return s.createAnonymous(ctx, event, registrant, nil)
}

func (s *registrationService) RegisterAnonymousWithAnswers(ctx context.Context, eventID string, registrant domain.AnonymousRegistrant, answers json.RawMessage) (*domain.RegistrationResult, error) {
	registrant.Email = strings.TrimSpace(strings.ToLower(registrant.Email))
	registrant.Name = strings.TrimSpace(registrant.Name)
	if registrant.Name == "" || !emailRegexp.MatchString(registrant.Email) {
		return nil, domain.ErrInvalidInput
	}

	event, err := s.getOpenEvent(ctx, eventID, domain.RegistrationTypeInternal)
	if err != nil {
		return nil, err
	}
	return s.createAnonymous(ctx, event, registrant, answers)
}

func (s *registrationService) createAnonymous(ctx context.Context, event *domain.Event, registrant domain.AnonymousRegistrant, answers json.RawMessage) (*domain.RegistrationResult, error) {
	// Advisory duplicate check; the unique index is the real guard.
	existing, err := s.registrationRepo.GetByEventAndEmail(ctx, event.ID, registrant.Email)
	if err == nil {
		if existing.IsVerified {
			return nil, domain.ErrAlreadyRegistered
		}
		return nil, domain.ErrVerificationPending
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get registration by email: %w", err)
	}

	token, err := generateVerificationToken()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	expires := now.Add(verificationTokenTTL)
	reg := &domain.EventRegistration{
		EventID:           event.ID,
		Name:              registrant.Name,
		Email:             registrant.Email,
		Phone:             registrant.Phone,
		RSVPStatus:        domain.RSVPGoing,
		IsVerified:        false,
		ApprovalStatus:    approvalStatusFor(event),
		VerificationToken: token,
		TokenExpiresAt:    &expires,
		CustomAnswers:     answers,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.registrationRepo.Create(ctx, reg); err != nil {
		if errors.Is(err, domain.ErrAlreadyRegistered) {
			return nil, domain.ErrAlreadyRegistered
		}
		return nil, fmt.Errorf("create registration: %w", err)
	}

	verifyURL := fmt.Sprintf("%s/events/%s/verify?token=%s", s.baseURL, event.ID, token)
	data := &domain.VerificationEmailData{
		Email:      registrant.Email,
		Name:       registrant.Name,
		EventTitle: event.Title,
		VerifyURL:  verifyURL,
		ExpiresIn:  "24 hours",
	}
	if err := s.emailService.SendVerification(ctx, data); err != nil {
		log.Printf("[REGISTRATION] verification email failed for %s: %v", registrant.Email, err)
	}

	redirect := fmt.Sprintf("/events/%s/verification-pending?email=%s", event.ID, url.QueryEscape(registrant.Email))
	return &domain.RegistrationResult{Registration: reg, RedirectTo: redirect}, nil
}

func (s *registrationService) Subscribe(ctx context.Context, eventID, userID string) (*domain.RegistrationResult, error) {
	event, err := s.getOpenEvent(ctx, eventID, domain.RegistrationTypeExternal)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	now := time.Now()
	reg := &domain.EventRegistration{
		EventID:        eventID,
		UserID:         userID,
		RSVPStatus:     domain.RSVPGoing,
		IsVerified:     true,
		ApprovalStatus: domain.ApprovalApproved,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.registrationRepo.Create(ctx, reg); err != nil {
		if errors.Is(err, domain.ErrAlreadyRegistered) {
			return nil, domain.ErrAlreadyRegistered
		}
		return nil, fmt.Errorf("create subscription: %w", err)
	}

	s.sendSubscriptionConfirmation(ctx, event, user.Email, user.FullName())
	return &domain.RegistrationResult{Registration: reg}, nil
}

func (s *registrationService) SubscribeAnonymous(ctx context.Context, eventID string, registrant domain.AnonymousRegistrant) (*domain.RegistrationResult, error) {
	registrant.Email = strings.TrimSpace(strings.ToLower(registrant.Email))
	registrant.Name = strings.TrimSpace(registrant.Name)
	if registrant.Name == "" || !emailRegexp.MatchString(registrant.Email) {
		return nil, domain.ErrInvalidInput
	}

	event, err := s.getOpenEvent(ctx, eventID, domain.RegistrationTypeExternal)
	if err != nil {
		return nil, err
	}

	// External events skip verification entirely: the real RSVP happens on the
	// third-party platform, this row only collects update contacts.
	now := time.Now()
	reg := &domain.EventRegistration{
		EventID:        eventID,
		Name:           registrant.Name,
		Email:          registrant.Email,
		RSVPStatus:     domain.RSVPGoing,
		IsVerified:     true,
		ApprovalStatus: domain.ApprovalApproved,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.registrationRepo.Create(ctx, reg); err != nil {
		if errors.Is(err, domain.ErrAlreadyRegistered) {
			return nil, domain.ErrAlreadyRegistered
		}
		return nil, fmt.Errorf("create subscription: %w", err)
	}

	s.sendSubscriptionConfirmation(ctx, event, registrant.Email, registrant.Name)
	return &domain.RegistrationResult{Registration: reg}, nil
}

func (s *registrationService) sendSubscriptionConfirmation(ctx context.Context, event *domain.Event, email, name string) {
	data := &domain.ConfirmationEmailData{
		Email:       email,
		Name:        name,
		EventTitle:  event.Title,
		EventURL:    s.eventURL(event.ID),
		ExternalURL: event.ExternalURL,
		Calendar:    s.calendarDataFor(ctx, event),
	}
	if err := s.emailService.SendSubscriptionConfirmation(ctx, data); err != nil {
		log.Printf("[REGISTRATION] subscription confirmation failed for %s: %v", email, err)
	}
}

func (s *registrationService) Unregister(ctx context.Context, eventID, userID string) error {
	if err := s.registrationRepo.DeleteByEventAndUser(ctx, eventID, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete registration: %w", err)
	}
	return nil
}

func (s *registrationService) UnsubscribeAnonymous(ctx context.Context, eventID, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return domain.ErrInvalidInput
	}
	if err := s.registrationRepo.DeleteByEventAndEmail(ctx, eventID, email); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete registration: %w", err)
	}
	return nil
}

func (s *registrationService) VerifyEmail(ctx context.Context, eventID, token string) (*domain.EventRegistration, error) {
	if token == "" {
		return nil, domain.ErrTokenInvalid
	}
	reg, err := s.registrationRepo.GetByEventAndToken(ctx, eventID, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, fmt.Errorf("get registration by token: %w", err)
	}
	if reg.TokenExpiresAt == nil || time.Now().After(*reg.TokenExpiresAt) {
		return nil, domain.ErrTokenInvalid
	}
	if err := s.registrationRepo.SetVerified(ctx, reg.ID); err != nil {
		return nil, fmt.Errorf("set verified: %w", err)
	}
	reg.IsVerified = true
	s.notifyOrganizers(ctx, reg)
	return reg, nil
}

func (s *registrationService) SetApprovalStatus(ctx context.Context, eventID, registrationID, status, callerID string) (*domain.EventRegistration, error) {
	if status != domain.ApprovalPending && status != domain.ApprovalApproved && status != domain.ApprovalRejected {
		return nil, domain.ErrInvalidInput
	}

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

	reg, err := s.registrationRepo.GetByID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}
	if reg.EventID != eventID {
		return nil, domain.ErrNotFound
	}

	// Idempotent set: re-applying the current status is a no-op at the data
	// level but still sends a fresh status-update email.
	if err := s.registrationRepo.SetApprovalStatus(ctx, registrationID, status); err != nil {
		return nil, fmt.Errorf("set approval status: %w", err)
	}
	reg.ApprovalStatus = status

	email, name, err := s.resolveRecipient(ctx, reg)
	if err != nil {
		log.Printf("[REGISTRATION] recipient lookup failed for registration %s: %v", reg.ID, err)
		return reg, nil
	}
	data := &domain.ApprovalStatusEmailData{
		Email:      email,
		Name:       name,
		EventTitle: event.Title,
		Status:     status,
	}
	if status == domain.ApprovalApproved {
		data.Calendar = s.calendarDataFor(ctx, event)
	}
	if err := s.emailService.SendApprovalStatus(ctx, data); err != nil {
		log.Printf("[REGISTRATION] approval status email failed for %s: %v", email, err)
	}
	return reg, nil
}

// resolveRecipient returns the registrant's email and display name, looking up
// the user record for authenticated registrations.
func (s *registrationService) resolveRecipient(ctx context.Context, reg *domain.EventRegistration) (email, name string, err error) {
	if reg.Email != "" {
		return reg.Email, reg.Name, nil
	}
	user, err := s.userRepo.GetByID(ctx, reg.UserID)
	if err != nil {
		return "", "", fmt.Errorf("get user: %w", err)
	}
	return user.Email, user.FullName(), nil
}

func (s *registrationService) ListRegistrations(ctx context.Context, eventID, callerID string, params domain.PaginationParams) ([]*domain.EventRegistration, int, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, 0, domain.ErrNotFound
		}
		return nil, 0, fmt.Errorf("get event: %w", err)
	}
	if err := requireManager(ctx, s.memberRepo, event.CommunityID, callerID); err != nil {
		return nil, 0, err
	}
	regs, total, err := s.registrationRepo.ListByEventID(ctx, eventID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list registrations: %w", err)
	}
	if regs == nil {
		regs = []*domain.EventRegistration{}
	}
	return regs, total, nil
}
