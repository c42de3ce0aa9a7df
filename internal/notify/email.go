package notify

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/fixam/fixam-site/pkg/logging"
)

// EmailSender defines the interface for sending emails.
// Implementations can be swapped (Resend, SendGrid, SES) without changing callers.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// EmailMessage represents an email to be sent.
type EmailMessage struct {
	From    string // "Name <addr>" or bare address
	To      []string
	ReplyTo string
	Subject string
	Text    string
	HTML    string
}

// SendGridSender sends emails via SendGrid API.
type SendGridSender struct {
	apiKey string
	host   string
	logger *logging.Logger
}

// SendGridConfig holds configuration for SendGrid.
type SendGridConfig struct {
	APIKey string
	// Host overrides https://api.sendgrid.com, mostly for tests.
	Host string
}

// NewSendGridSender creates a new SendGrid email sender.
func NewSendGridSender(cfg SendGridConfig, logger *logging.Logger) *SendGridSender {
	if cfg.APIKey == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SendGridSender{apiKey: cfg.APIKey, host: cfg.Host, logger: logger}
}

// Send sends an email via SendGrid.
func (s *SendGridSender) Send(ctx context.Context, msg EmailMessage) error {
	if s == nil || s.apiKey == "" {
		return fmt.Errorf("notify: sendgrid client not configured")
	}

	message := sgmail.NewV3Mail()
	message.SetFrom(sendgridAddress(msg.From))
	message.Subject = msg.Subject

	p := sgmail.NewPersonalization()
	for _, to := range msg.To {
		p.AddTos(sendgridAddress(to))
	}
	message.AddPersonalizations(p)
	if msg.ReplyTo != "" {
		message.SetReplyTo(sendgridAddress(msg.ReplyTo))
	}
	message.AddContent(sgmail.NewContent("text/plain", msg.Text))
	if msg.HTML != "" {
		message.AddContent(sgmail.NewContent("text/html", msg.HTML))
	}

	request := sendgrid.GetRequest(s.apiKey, "/v3/mail/send", s.host)
	request.Method = "POST"
	request.Body = sgmail.GetRequestBody(message)

	response, err := sendgrid.MakeRequestWithContext(ctx, request)
	if err != nil {
		return fmt.Errorf("notify: sendgrid send failed: %w", err)
	}
	if response.StatusCode >= 400 {
		return statusError("sendgrid", response.StatusCode, response.Body)
	}

	s.logger.Info("email sent via sendgrid", "recipients", len(msg.To), "subject", msg.Subject, "status", response.StatusCode)
	return nil
}

func sendgridAddress(raw string) *sgmail.Email {
	name, addr := splitAddress(raw)
	return sgmail.NewEmail(name, addr)
}

// splitAddress parses "Name <addr>" and falls back to the raw string.
func splitAddress(raw string) (string, string) {
	parsed, err := mail.ParseAddress(raw)
	if err != nil {
		return "", raw
	}
	return parsed.Name, parsed.Address
}

// StubEmailSender is a no-op sender for local runs or when no provider is configured.
type StubEmailSender struct {
	logger *logging.Logger
}

// NewStubEmailSender creates a stub email sender that logs but doesn't send.
func NewStubEmailSender(logger *logging.Logger) *StubEmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &StubEmailSender{logger: logger}
}

// Send logs the email but doesn't actually send it.
func (s *StubEmailSender) Send(ctx context.Context, msg EmailMessage) error {
	s.logger.Info("stub email sender: would send email", "recipients", len(msg.To), "subject", msg.Subject)
	return nil
}

var (
	_ EmailSender = (*SendGridSender)(nil)
	_ EmailSender = (*StubEmailSender)(nil)
)
