package emailer

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// DefaultEmailJSURL is the public EmailJS REST endpoint.
const DefaultEmailJSURL = "https://api.emailjs.com"

// EmailJSConfig configures the EmailJS provider.
type EmailJSConfig struct {
	APIURL                 string // defaults to DefaultEmailJSURL
	ServiceID              string
	TemplateID             string // contact inquiry template
	SubscriptionTemplateID string // falls back to TemplateID
	PublicKey              string // "user_id" in the REST API
	PrivateKey             string // optional "accessToken"
	Timeout                time.Duration
}

// EmailJS sends through EmailJS hosted templates.
type EmailJS struct {
	cfg    EmailJSConfig
	rest   *resty.Client
	logger *zap.Logger
}

type emailJSRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	AccessToken    string            `json:"accessToken,omitempty"`
	TemplateParams map[string]string `json:"template_params"`
}

// NewEmailJS creates the EmailJS provider.
func NewEmailJS(cfg EmailJSConfig, logger *zap.Logger) (*EmailJS, error) {
	if cfg.ServiceID == "" || cfg.TemplateID == "" || cfg.PublicKey == "" {
		return nil, fmt.Errorf("emailjs: service id, template id and public key are required: %w", ErrNotConfigured)
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultEmailJSURL
	}
	if cfg.SubscriptionTemplateID == "" {
		cfg.SubscriptionTemplateID = cfg.TemplateID
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	rest := resty.New().
		SetBaseURL(strings.TrimRight(cfg.APIURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")

	return &EmailJS{cfg: cfg, rest: rest, logger: logger}, nil
}

// Name implements Sender.
func (e *EmailJS) Name() string { return ProviderEmailJS }

// Send implements Sender.
func (e *EmailJS) Send(ctx context.Context, msg Message) error {
	templateID := e.cfg.TemplateID
	if msg.Kind == KindSubscription {
		templateID = e.cfg.SubscriptionTemplateID
	}

	resp, err := e.rest.R().
		SetContext(ctx).
		SetBody(emailJSRequest{
			ServiceID:      e.cfg.ServiceID,
			TemplateID:     templateID,
			UserID:         e.cfg.PublicKey,
			AccessToken:    e.cfg.PrivateKey,
			TemplateParams: msg.Params,
		}).
		Post("/api/v1.0/email/send")
	if err != nil {
		return fmt.Errorf("emailjs: send: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("emailjs: send failed: status %d: %s", resp.StatusCode(), strings.TrimSpace(resp.String()))
	}

	e.logger.Info("email sent",
		zap.String("provider", ProviderEmailJS),
		zap.String("kind", msg.Kind),
		zap.String("template_id", templateID))
	return nil
}
