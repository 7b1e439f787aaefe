package emailer

import (
	"context"
	"fmt"

	"github.com/dalemusser/coconsult/internal/app/system/mailer"
)

// SMTP sends through the SMTP mailer.
type SMTP struct {
	mailer  *mailer.Mailer
	to      string
	appName string
}

// NewSMTP creates the SMTP provider delivering to the inbox at to.
func NewSMTP(m *mailer.Mailer, to, appName string) (*SMTP, error) {
	if m == nil || to == "" {
		return nil, fmt.Errorf("smtp: mailer and recipient are required: %w", ErrNotConfigured)
	}
	return &SMTP{mailer: m, to: to, appName: appName}, nil
}

// Name implements Sender.
func (s *SMTP) Name() string { return ProviderSMTP }

// Send implements Sender. net/smtp has no context support, so ctx is only
// checked before dialing.
func (s *SMTP) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	out, err := render(s.appName, msg)
	if err != nil {
		return err
	}
	return s.mailer.Send(mailer.Email{
		To:       s.to,
		ReplyTo:  msg.Param(ParamReplyTo),
		Subject:  out.Subject,
		TextBody: out.Text,
		HTMLBody: out.HTML,
	})
}
