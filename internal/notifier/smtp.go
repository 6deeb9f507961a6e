package notifier

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/clinic-api/internal/model"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type mailer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTP delivers notices as plain text e-mail.
type SMTP struct {
	mailer mailer
	from   string
}

func NewSMTP(cfg SMTPConfig) *SMTP {
	return &SMTP{
		mailer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *SMTP) Send(ctx context.Context, recipient string, details model.AppointmentNotice) error {
	if recipient == "" {
		return ErrNoRecipient
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", recipient)
	m.SetHeader("Subject", "Appointment confirmation")
	m.SetBody("text/plain", body(details))

	if err := s.mailer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send notice to %s: %w", recipient, err)
	}
	return nil
}

func body(d model.AppointmentNotice) string {
	var b strings.Builder
	if d.PatientName != "" {
		fmt.Fprintf(&b, "Hello %s,\n\n", d.PatientName)
	}
	fmt.Fprintf(&b, "Your appointment is confirmed for %s at %s", d.Date, d.Time)
	if d.StaffName != "" {
		fmt.Fprintf(&b, " with %s", d.StaffName)
	}
	if d.SpecialtyName != "" {
		fmt.Fprintf(&b, " (%s)", d.SpecialtyName)
	}
	fmt.Fprintf(&b, ".\n\nReference: %s\n", d.AppointmentID)
	return b.String()
}
