package services

import (
	"context"
	"fmt"
	"log"

	"communityhub/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	calendar domain.CalendarBuilder
}

// NewEmailService returns an EmailService that uses the given Mailer, template
// renderer, and calendar builder.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, calendar domain.CalendarBuilder) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer, calendar: calendar}
}

// send renders the named template and delivers it, attaching an ICS file when
// calendar data is present.
func (s *emailService) send(templateName, to string, data any, calendar *domain.CalendarEventData) error {
	subject, htmlBody, textBody, err := s.renderer.Render(templateName, data)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", templateName, err)
	}
	if calendar != nil {
		attachment, err := s.calendar.Build(calendar)
		if err != nil {
			return fmt.Errorf("failed to build calendar attachment: %w", err)
		}
		if err := s.mailer.SendWithAttachment(to, subject, htmlBody, textBody, attachment); err != nil {
			return fmt.Errorf("failed to send %s email: %w", templateName, err)
		}
		return nil
	}
	if err := s.mailer.Send(to, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send %s email: %w", templateName, err)
	}
	return nil
}

func (s *emailService) SendVerification(ctx context.Context, data *domain.VerificationEmailData) error {
	if data == nil {
		return fmt.Errorf("verification email data is nil")
	}
	if err := s.send("verification", data.Email, data, nil); err != nil {
		return err
	}
	log.Printf("[EMAIL] Verification email sent to %s", data.Email)
	return nil
}

func (s *emailService) SendRegistrationConfirmation(ctx context.Context, data *domain.ConfirmationEmailData) error {
	if data == nil {
		return fmt.Errorf("registration confirmation data is nil")
	}
	if err := s.send("registration_confirmation", data.Email, data, data.Calendar); err != nil {
		return err
	}
	log.Printf("[EMAIL] Registration confirmation sent to %s", data.Email)
	return nil
}

func (s *emailService) SendSubscriptionConfirmation(ctx context.Context, data *domain.ConfirmationEmailData) error {
	if data == nil {
		return fmt.Errorf("subscription confirmation data is nil")
	}
	if err := s.send("subscription_confirmation", data.Email, data, data.Calendar); err != nil {
		return err
	}
	log.Printf("[EMAIL] Subscription confirmation sent to %s", data.Email)
	return nil
}

func (s *emailService) SendApprovalStatus(ctx context.Context, data *domain.ApprovalStatusEmailData) error {
	if data == nil {
		return fmt.Errorf("approval status data is nil")
	}
	if err := s.send("approval_status", data.Email, data, data.Calendar); err != nil {
		return err
	}
	log.Printf("[EMAIL] Approval status (%s) sent to %s", data.Status, data.Email)
	return nil
}

func (s *emailService) SendCollaborationInvite(ctx context.Context, data *domain.CollaborationInviteEmailData) error {
	if data == nil {
		return fmt.Errorf("collaboration invite data is nil")
	}
	if err := s.send("collaboration_invite", data.Email, data, nil); err != nil {
		return err
	}
	log.Printf("[EMAIL] Collaboration invite sent to %s", data.Email)
	return nil
}

func (s *emailService) SendCollaborationAccepted(ctx context.Context, data *domain.CollaborationAcceptedEmailData) error {
	if data == nil {
		return fmt.Errorf("collaboration accepted data is nil")
	}
	if err := s.send("collaboration_accepted", data.Email, data, nil); err != nil {
		return err
	}
	log.Printf("[EMAIL] Collaboration accepted notice sent to %s", data.Email)
	return nil
}

func (s *emailService) SendEventReminder(ctx context.Context, data *domain.ReminderEmailData) error {
	if data == nil {
		return fmt.Errorf("reminder email data is nil")
	}
	if err := s.send("event_reminder", data.Email, data, nil); err != nil {
		return err
	}
	log.Printf("[EMAIL] Event reminder sent to %s", data.Email)
	return nil
}

func (s *emailService) SendMemberAnnouncement(ctx context.Context, data *domain.AnnouncementEmailData) error {
	if data == nil {
		return fmt.Errorf("announcement email data is nil")
	}
	if err := s.send("member_announcement", data.Email, data, nil); err != nil {
		return err
	}
	log.Printf("[EMAIL] Member announcement sent to %s", data.Email)
	return nil
}

func (s *emailService) SendRegistrationNotice(ctx context.Context, data *domain.RegistrationNoticeEmailData) error {
	if data == nil {
		return fmt.Errorf("registration notice data is nil")
	}
	if err := s.send("registration_notice", data.Email, data, nil); err != nil {
		return err
	}
	log.Printf("[EMAIL] Registration notice sent to %s", data.Email)
	return nil
}
