package emailer

import (
	"fmt"

	"github.com/dalemusser/coconsult/internal/app/system/mailer"
	"go.uber.org/zap"
)

// Config selects and configures a provider.
type Config struct {
	Provider string // emailjs, resend, smtp, log
	AppName  string
	To       string // inbox receiving inquiries (resend, smtp)
	EmailJS  EmailJSConfig
	Resend   ResendConfig
}

// New builds the configured Sender. m is used by the smtp provider.
func New(cfg Config, m *mailer.Mailer, logger *zap.Logger) (Sender, error) {
	switch cfg.Provider {
	case ProviderEmailJS:
		return NewEmailJS(cfg.EmailJS, logger)
	case ProviderResend:
		rc := cfg.Resend
		if rc.To == "" {
			rc.To = cfg.To
		}
		if rc.AppName == "" {
			rc.AppName = cfg.AppName
		}
		return NewResend(rc, logger)
	case ProviderSMTP:
		return NewSMTP(m, cfg.To, cfg.AppName)
	case ProviderLog, "":
		return NewLog(logger), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}
}
