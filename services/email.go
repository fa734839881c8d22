package services

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"expert_panel_go/config"

	"github.com/resend/resend-go/v2"
)

// Email represents an outbound email message
type Email struct {
	To       []string
	Subject  string
	HTMLBody string
	TextBody string
}

// EmailSender is the outbound port to the transactional email API.
// Delivery is best-effort; callers decide whether a failure matters.
type EmailSender interface {
	Send(email *Email) error
}

// Mail is the global email sender
var Mail EmailSender

// InitializeMailer sets up the email sender based on configuration
func InitializeMailer(cfg *config.Config) {
	if cfg.EmailTestMode || cfg.ResendAPIKey == "" {
		Mail = &ConsoleSender{}
		log.Println("Email sender initialized (console - messages logged, not sent)")
		return
	}

	Mail = &ResendSender{
		client: resend.NewClient(cfg.ResendAPIKey),
		from:   fmt.Sprintf("%s <%s>", cfg.EmailFromName, cfg.EmailFrom),
	}
	log.Printf("Email sender initialized (Resend - from: %s)", cfg.EmailFrom)
}

// ResendSender sends email through the Resend API
type ResendSender struct {
	client *resend.Client
	from   string
}

// Send delivers the email via Resend
func (s *ResendSender) Send(email *Email) error {
	if email.HTMLBody == "" && email.TextBody == "" {
		return fmt.Errorf("email must have either HTMLBody or TextBody")
	}

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      email.To,
		Subject: email.Subject,
	}
	if email.HTMLBody != "" {
		params.Html = email.HTMLBody
	}
	if email.TextBody != "" {
		params.Text = email.TextBody
	}

	sent, err := s.client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send email via Resend: %w", err)
	}

	log.Printf("Email sent via Resend (ID: %s) to: %v", sent.Id, email.To)
	return nil
}

// ConsoleSender logs emails instead of sending them (development mode)
type ConsoleSender struct{}

// Send logs the email to the console
func (s *ConsoleSender) Send(email *Email) error {
	separator := strings.Repeat("=", 80)
	log.Printf("\n%s\nEMAIL (not actually sent)\n%s", separator, separator)
	log.Printf("To: %v", email.To)
	log.Printf("Subject: %s", email.Subject)
	log.Printf("\n--- HTML BODY (first 500 chars) ---\n%s", truncate(email.HTMLBody, 500))
	log.Printf("%s\n", separator)
	return nil
}

// RecorderSender captures emails for inspection in tests
type RecorderSender struct {
	mu   sync.Mutex
	sent []*Email
	// Err, when set, is returned from every Send call
	Err error
}

// Send records the email (and fails when Err is set)
func (s *RecorderSender) Send(email *Email) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	copied := &Email{
		To:       append([]string{}, email.To...),
		Subject:  email.Subject,
		HTMLBody: email.HTMLBody,
		TextBody: email.TextBody,
	}
	s.sent = append(s.sent, copied)
	return nil
}

// Sent returns a snapshot of the recorded emails. It waits out any
// in-flight dispatches first so assertions do not race the goroutine
// hand-off.
func (s *RecorderSender) Sent() []*Email {
	WaitForDispatch()
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Email{}, s.sent...)
}

// truncate truncates a string to a maximum length
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}
