package email

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"log"
	"mime"
	"net/http"
	"net/mail"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"communityhub/internal/domain"
)

// SESConfig holds configuration for AWS SES.
type SESConfig struct {
	Region             string
	AccessKeyID        string
	SecretAccessKey    string
	InsecureSkipVerify bool
}

// MailerConfig holds configuration for creating a mailer.
type MailerConfig struct {
	Provider    string
	FromAddress string
	FromName    string
	SES         SESConfig
}

// NewMailer creates a mailer from config. Provider "ses" uses AWS SES; "noop" or unknown uses a no-op mailer.
func NewMailer(config MailerConfig) (domain.Mailer, error) {
	switch config.Provider {
	case "ses":
		if _, err := mail.ParseAddress(config.FromAddress); err != nil {
			return nil, fmt.Errorf("invalid from address %q: %w", config.FromAddress, err)
		}
		sesConfig := config.SES
		if config.SES.InsecureSkipVerify {
			log.Printf("[MAILER] WARNING: TLS certificate verification is disabled for SES. Use only in development.")
		}
		httpClient := &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: sesConfig.InsecureSkipVerify,
					MinVersion:         tls.VersionTLS12,
				},
			},
		}
		awsCfg := aws.Config{
			Region: sesConfig.Region,
			Credentials: aws.NewCredentialsCache(
				credentials.NewStaticCredentialsProvider(
					sesConfig.AccessKeyID,
					sesConfig.SecretAccessKey,
					"",
				),
			),
			HTTPClient: httpClient,
		}
		client := ses.NewFromConfig(awsCfg)
		return &sesMailer{
			client:      client,
			fromAddress: config.FromAddress,
			fromName:    config.FromName,
		}, nil
	case "noop":
		return &noopMailer{}, nil
	default:
		log.Printf("[MAILER] Unknown email provider %q, using noop", config.Provider)
		return &noopMailer{}, nil
	}
}

type sesMailer struct {
	client      *ses.Client
	fromAddress string
	fromName    string
}

func (s *sesMailer) source() string {
	if s.fromName != "" {
		return fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)
	}
	return s.fromAddress
}

func (s *sesMailer) Send(to, subject, html, text string) error {
	input := &ses.SendEmailInput{
		Source: aws.String(s.source()),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{},
		},
	}
	if html != "" {
		input.Message.Body.Html = &types.Content{
			Data:    aws.String(html),
			Charset: aws.String("UTF-8"),
		}
	}
	if text != "" {
		input.Message.Body.Text = &types.Content{
			Data:    aws.String(text),
			Charset: aws.String("UTF-8"),
		}
	}
	ctx := context.Background()
	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email via SES: %w", err)
	}
	log.Printf("[MAILER] Email sent via SES. MessageID: %s", aws.ToString(result.MessageId))
	return nil
}

// SendWithAttachment builds a raw MIME message because the SES SendEmail API
// has no attachment support.
func (s *sesMailer) SendWithAttachment(to, subject, html, text string, attachment *domain.Attachment) error {
	if attachment == nil {
		return s.Send(to, subject, html, text)
	}
	raw, err := buildRawMessage(s.source(), to, subject, html, text, attachment)
	if err != nil {
		return fmt.Errorf("failed to build raw message: %w", err)
	}
	ctx := context.Background()
	result, err := s.client.SendRawEmail(ctx, &ses.SendRawEmailInput{
		RawMessage:   &types.RawMessage{Data: raw},
		Source:       aws.String(s.source()),
		Destinations: []string{to},
	})
	if err != nil {
		return fmt.Errorf("failed to send raw email via SES: %w", err)
	}
	log.Printf("[MAILER] Email with attachment sent via SES. MessageID: %s", aws.ToString(result.MessageId))
	return nil
}

const (
	mixedBoundary       = "mixed-a1b2c3d4e5f6"
	alternativeBoundary = "alt-a1b2c3d4e5f6"
)

func buildRawMessage(from, to, subject, html, text string, attachment *domain.Attachment) ([]byte, error) {
	var buf bytes.Buffer
	write := func(format string, args ...any) {
		fmt.Fprintf(&buf, format, args...)
	}

	write("From: %s\r\n", from)
	write("To: %s\r\n", to)
	write("Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", subject))
	write("MIME-Version: 1.0\r\n")
	write("Content-Type: multipart/mixed; boundary=%q\r\n\r\n", mixedBoundary)

	write("--%s\r\n", mixedBoundary)
	write("Content-Type: multipart/alternative; boundary=%q\r\n\r\n", alternativeBoundary)
	if text != "" {
		write("--%s\r\n", alternativeBoundary)
		write("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
		write("%s\r\n\r\n", text)
	}
	if html != "" {
		write("--%s\r\n", alternativeBoundary)
		write("Content-Type: text/html; charset=UTF-8\r\n\r\n")
		write("%s\r\n\r\n", html)
	}
	write("--%s--\r\n\r\n", alternativeBoundary)

	contentType := attachment.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	write("--%s\r\n", mixedBoundary)
	write("Content-Type: %s; name=%q\r\n", contentType, attachment.Filename)
	write("Content-Disposition: attachment; filename=%q\r\n", attachment.Filename)
	write("Content-Transfer-Encoding: base64\r\n\r\n")

	encoded := base64.StdEncoding.EncodeToString(attachment.Content)
	for len(encoded) > 76 {
		write("%s\r\n", encoded[:76])
		encoded = encoded[76:]
	}
	write("%s\r\n", encoded)
	write("--%s--\r\n", mixedBoundary)

	return buf.Bytes(), nil
}

type noopMailer struct{}

func (n *noopMailer) Send(to, subject, html, text string) error {
	log.Println("[MAILER] Email would be sent (noop)", "to", to, "subject", subject)
	return nil
}

func (n *noopMailer) SendWithAttachment(to, subject, html, text string, attachment *domain.Attachment) error {
	filename := ""
	if attachment != nil {
		filename = attachment.Filename
	}
	log.Println("[MAILER] Email with attachment would be sent (noop)", "to", to, "subject", subject, "attachment", filename)
	return nil
}
