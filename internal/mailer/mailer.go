// Package mailer sends the categorized statement back to its owner.
package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fjacquet/rabbit/internal/config"
	"fjacquet/rabbit/internal/logging"

	mail "github.com/wneessen/go-mail"
)

// DefaultAttachmentName is the file name of the attached CSV.
const DefaultAttachmentName = "results.csv"

// ErrIncompleteConfig is returned when SMTP settings are missing.
var ErrIncompleteConfig = errors.New("email configuration is incomplete: set SMTP_SERVER, SMTP_PORT, EMAIL_ADDRESS and EMAIL_PASSWORD")

// Message is a single email with an optional attachment.
type Message struct {
	To             string
	Subject        string
	Body           string
	AttachmentName string
	Attachment     []byte
}

// Mailer delivers messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer sends mail through an authenticated STARTTLS relay.
type SMTPMailer struct {
	cfg     config.SMTPConfig
	timeout time.Duration
	logger  logging.Logger
}

// NewSMTPMailer creates a mailer. Incomplete settings are only reported on Send.
func NewSMTPMailer(cfg config.SMTPConfig, logger logging.Logger) *SMTPMailer {
	return &SMTPMailer{
		cfg:     cfg,
		timeout: 30 * time.Second,
		logger:  logging.OrDefault(logger),
	}
}

// Configured reports whether every SMTP setting is present.
func (m *SMTPMailer) Configured() bool {
	return m.cfg.Complete()
}

// Send builds the message and delivers it.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if !m.Configured() {
		return ErrIncompleteConfig
	}

	built, err := m.build(msg)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(m.cfg.Server,
		mail.WithPort(m.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.Username),
		mail.WithPassword(m.cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithTimeout(m.timeout),
	)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, built); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", msg.To, err)
	}

	m.logger.Info("Email sent",
		logging.Field{Key: logging.FieldRecipient, Value: msg.To})
	return nil
}

func (m *SMTPMailer) build(msg Message) (*mail.Msg, error) {
	if strings.TrimSpace(msg.To) == "" {
		return nil, errors.New("email recipient is empty")
	}

	built := mail.NewMsg()
	if err := built.From(m.cfg.Username); err != nil {
		return nil, fmt.Errorf("invalid sender address %q: %w", m.cfg.Username, err)
	}
	if err := built.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient address %q: %w", msg.To, err)
	}

	subject := msg.Subject
	if subject == "" {
		subject = m.cfg.Subject
	}
	built.Subject(subject)
	built.SetBodyString(mail.TypeTextPlain, msg.Body)

	if len(msg.Attachment) > 0 {
		name := msg.AttachmentName
		if name == "" {
			name = DefaultAttachmentName
		}
		if err := built.AttachReader(name, bytes.NewReader(msg.Attachment),
			mail.WithFileContentType(mail.ContentType("text/csv"))); err != nil {
			return nil, fmt.Errorf("failed to attach %s: %w", name, err)
		}
	}
	return built, nil
}
