// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dalemusser/coconsult/internal/app/system/emailer"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// EnvVarPrefix is the prefix for environment variables.
const EnvVarPrefix = "COCONSULT"

// appConfigKeys defines the configuration keys for this application.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, file_api_url, etc.
//   - Environment variables: COCONSULT_MONGO_URI, COCONSULT_FILE_API_URL, etc.
//   - Command-line flags: --mongo_uri, --file_api_url, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "coconsult", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "coconsult-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "24h", Desc: "Session cookie max age (e.g., 24h, 720h, 30m)"},

	// Rate limiting configuration
	{Name: "rate_limit_enabled", Default: true, Desc: "Enable rate limiting for login and registration"},
	{Name: "rate_limit_login_attempts", Default: 5, Desc: "Max failed attempts before lockout"},
	{Name: "rate_limit_login_window", Default: "15m", Desc: "Time window for counting failed attempts"},
	{Name: "rate_limit_login_lockout", Default: "15m", Desc: "Lockout duration after exceeding limit"},

	{Name: "csrf_key", Default: "dev-only-csrf-key-please-change-0123456789", Desc: "CSRF token signing key (32+ chars in production)"},

	// Remote services
	{Name: "file_api_url", Default: "http://localhost:4000/api", Desc: "CloudVault file service base URL"},
	{Name: "auth_api_url", Default: "http://localhost:4000/api/auth", Desc: "Auth service base URL"},
	{Name: "remote_timeout", Default: "10s", Desc: "Timeout for each remote service request"},

	// Email delivery
	{Name: "email_provider", Default: "log", Desc: "Email provider: 'emailjs', 'resend', 'smtp' or 'log'"},
	{Name: "contact_to", Default: "info@coconsultants.com", Desc: "Inbox that receives contact inquiries"},
	{Name: "emailjs_api_url", Default: emailer.DefaultEmailJSURL, Desc: "EmailJS REST endpoint"},
	{Name: "emailjs_service_id", Default: "", Desc: "EmailJS service ID"},
	{Name: "emailjs_template_id", Default: "", Desc: "EmailJS template ID for contact inquiries"},
	{Name: "emailjs_subscription_template_id", Default: "", Desc: "EmailJS template ID for newsletter sign-ups (defaults to the inquiry template)"},
	{Name: "emailjs_public_key", Default: "", Desc: "EmailJS public key"},
	{Name: "emailjs_private_key", Default: "", Desc: "EmailJS private key (optional access token)"},
	{Name: "resend_api_key", Default: "", Desc: "Resend API key"},
	{Name: "resend_audience_id", Default: "", Desc: "Resend audience for newsletter sign-ups (optional)"},

	// Email/SMTP configuration
	{Name: "mail_smtp_host", Default: "localhost", Desc: "SMTP server host"},
	{Name: "mail_smtp_port", Default: 1025, Desc: "SMTP server port"},
	{Name: "mail_smtp_user", Default: "", Desc: "SMTP username"},
	{Name: "mail_smtp_pass", Default: "", Desc: "SMTP password"},
	{Name: "mail_from", Default: "noreply@coconsultants.com", Desc: "From email address"},
	{Name: "mail_from_name", Default: "CO Consultants", Desc: "From display name"},

	// Contact form
	{Name: "contact_min_fill_time", Default: "3s", Desc: "Minimum time the contact form must be open before sending"},
	{Name: "contact_hourly_limit", Default: 10, Desc: "Contact inquiries allowed per client IP per hour (0 disables)"},

	// Client addresses
	{Name: "trust_proxy_headers", Default: false, Desc: "Take the client IP from X-Forwarded-For/X-Real-IP (enable only behind a proxy that sets them)"},

	// Refresh-signal bus
	{Name: "redis_url", Default: "", Desc: "Redis URL for sharing refresh signals between instances (blank keeps them in process)"},
	{Name: "redis_channel", Default: "coconsult:events", Desc: "Redis pub/sub channel for refresh signals"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_contact", Default: "all", Desc: "Contact and newsletter event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Retention
	{Name: "inquiry_retention", Default: "2160h", Desc: "How long stored inquiries are kept (0 keeps them forever)"},
	{Name: "audit_retention", Default: "8760h", Desc: "How long audit events are kept (0 keeps them forever)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, COCONSULT_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, EnvVarPrefix, appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		SessionKey:       appValues.String("session_key"),
		SessionName:      appValues.String("session_name"),
		SessionDomain:    appValues.String("session_domain"),
		SessionMaxAge:    appValues.Duration("session_max_age", 24*time.Hour),

		// Rate limiting
		RateLimitEnabled:       appValues.Bool("rate_limit_enabled"),
		RateLimitLoginAttempts: appValues.Int("rate_limit_login_attempts"),
		RateLimitLoginWindow:   appValues.Duration("rate_limit_login_window", 15*time.Minute),
		RateLimitLoginLockout:  appValues.Duration("rate_limit_login_lockout", 15*time.Minute),

		CSRFKey: appValues.String("csrf_key"),

		// Remote services
		FileAPIURL:    appValues.String("file_api_url"),
		AuthAPIURL:    appValues.String("auth_api_url"),
		RemoteTimeout: appValues.Duration("remote_timeout", 10*time.Second),

		// Email delivery
		EmailProvider:                 strings.ToLower(appValues.String("email_provider")),
		ContactTo:                     appValues.String("contact_to"),
		EmailJSAPIURL:                 appValues.String("emailjs_api_url"),
		EmailJSServiceID:              appValues.String("emailjs_service_id"),
		EmailJSTemplateID:             appValues.String("emailjs_template_id"),
		EmailJSSubscriptionTemplateID: appValues.String("emailjs_subscription_template_id"),
		EmailJSPublicKey:              appValues.String("emailjs_public_key"),
		EmailJSPrivateKey:             appValues.String("emailjs_private_key"),
		ResendAPIKey:                  appValues.String("resend_api_key"),
		ResendAudienceID:              appValues.String("resend_audience_id"),

		// Email/SMTP
		MailSMTPHost: appValues.String("mail_smtp_host"),
		MailSMTPPort: appValues.Int("mail_smtp_port"),
		MailSMTPUser: appValues.String("mail_smtp_user"),
		MailSMTPPass: appValues.String("mail_smtp_pass"),
		MailFrom:     appValues.String("mail_from"),
		MailFromName: appValues.String("mail_from_name"),

		// Contact form
		ContactMinFillTime: appValues.Duration("contact_min_fill_time", 3*time.Second),
		ContactHourlyLimit: appValues.Int("contact_hourly_limit"),

		TrustProxyHeaders: appValues.Bool("trust_proxy_headers"),

		// Refresh-signal bus
		RedisURL:     appValues.String("redis_url"),
		RedisChannel: appValues.String("redis_channel"),

		// Audit logging
		AuditLogAuth:    appValues.String("audit_log_auth"),
		AuditLogContact: appValues.String("audit_log_contact"),

		// Retention
		InquiryRetention: appValues.Duration("inquiry_retention", 90*24*time.Hour),
		AuditRetention:   appValues.Duration("audit_retention", 365*24*time.Hour),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// All problems are reported together.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	problems := validateApp(appCfg)
	if len(problems) > 0 {
		for _, p := range problems {
			logger.Error("invalid configuration", zap.String("problem", p))
		}
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}

// validateApp checks the settings that do not depend on the core config.
func validateApp(appCfg AppConfig) []string {
	var problems []string

	for _, u := range []struct{ key, val string }{
		{"file_api_url", appCfg.FileAPIURL},
		{"auth_api_url", appCfg.AuthAPIURL},
	} {
		if err := validateServiceURL(u.val); err != nil {
			problems = append(problems, u.key+": "+err.Error())
		}
	}

	if appCfg.RedisURL != "" {
		if _, err := url.Parse(appCfg.RedisURL); err != nil {
			problems = append(problems, "redis_url: "+err.Error())
		}
	}

	if appCfg.RateLimitEnabled && appCfg.RateLimitLoginAttempts <= 0 {
		problems = append(problems, "rate_limit_login_attempts must be positive when rate limiting is enabled")
	}
	if appCfg.ContactHourlyLimit < 0 {
		problems = append(problems, "contact_hourly_limit must not be negative")
	}

	switch appCfg.EmailProvider {
	case emailer.ProviderEmailJS:
		if appCfg.EmailJSServiceID == "" || appCfg.EmailJSTemplateID == "" || appCfg.EmailJSPublicKey == "" {
			problems = append(problems, "emailjs requires emailjs_service_id, emailjs_template_id and emailjs_public_key")
		}
	case emailer.ProviderResend:
		if appCfg.ResendAPIKey == "" {
			problems = append(problems, "resend requires resend_api_key")
		}
		if appCfg.ContactTo == "" || appCfg.MailFrom == "" {
			problems = append(problems, "resend requires contact_to and mail_from")
		}
	case emailer.ProviderSMTP:
		if appCfg.MailSMTPHost == "" || appCfg.MailSMTPPort <= 0 {
			problems = append(problems, "smtp requires mail_smtp_host and mail_smtp_port")
		}
		if appCfg.ContactTo == "" {
			problems = append(problems, "smtp requires contact_to")
		}
	case emailer.ProviderLog, "":
	default:
		problems = append(problems, fmt.Sprintf("unknown email_provider %q", appCfg.EmailProvider))
	}

	return problems
}

func validateServiceURL(raw string) error {
	if raw == "" {
		return errors.New("is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("host is missing")
	}
	return nil
}
