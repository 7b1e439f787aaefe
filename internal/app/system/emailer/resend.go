package emailer

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// ResendConfig configures the Resend provider.
type ResendConfig struct {
	APIKey     string
	From       string // "Name <address>"
	To         string // inbox receiving inquiries
	AudienceID string // optional; enables AddContact
	AppName    string
}

// Resend sends through the Resend API and manages the newsletter audience.
type Resend struct {
	cfg    ResendConfig
	client *resend.Client
	logger *zap.Logger
}

// NewResend creates the Resend provider.
func NewResend(cfg ResendConfig, logger *zap.Logger) (*Resend, error) {
	if cfg.APIKey == "" || cfg.From == "" || cfg.To == "" {
		return nil, fmt.Errorf("resend: api key, from and to are required: %w", ErrNotConfigured)
	}
	return &Resend{
		cfg:    cfg,
		client: resend.NewClient(cfg.APIKey),
		logger: logger,
	}, nil
}

// Name implements Sender.
func (r *Resend) Name() string { return ProviderResend }

// Send implements Sender.
func (r *Resend) Send(ctx context.Context, msg Message) error {
	out, err := render(r.cfg.AppName, msg)
	if err != nil {
		return err
	}

	req := &resend.SendEmailRequest{
		From:    r.cfg.From,
		To:      []string{r.cfg.To},
		Subject: out.Subject,
		Html:    out.HTML,
		Text:    out.Text,
		ReplyTo: msg.Param(ParamReplyTo),
	}

	sent, err := r.client.Emails.SendWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("resend: send: %w", err)
	}

	r.logger.Info("email sent",
		zap.String("provider", ProviderResend),
		zap.String("kind", msg.Kind),
		zap.String("id", sent.Id))
	return nil
}

// AddContact adds email to the configured audience. Without an audience it
// returns ErrNotConfigured so callers can fall back to Send.
func (r *Resend) AddContact(ctx context.Context, email string) error {
	if r.cfg.AudienceID == "" {
		return fmt.Errorf("resend: no audience: %w", ErrNotConfigured)
	}
	_, err := r.client.Contacts.CreateWithContext(ctx, &resend.CreateContactRequest{
		Email:        email,
		AudienceId:   r.cfg.AudienceID,
		Unsubscribed: false,
	})
	if err != nil {
		return fmt.Errorf("resend: add contact: %w", err)
	}
	return nil
}
