// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like ports, TLS,
// logging, CORS and request limits. AppConfig carries everything specific
// to the CO Consultants site: the MongoDB connection, the remote file and
// auth services, the email provider and the refresh-signal bus.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Maximum connections in pool (default: 100)
	MongoMinPoolSize uint64 // Minimum connections to keep warm (default: 10)

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: coconsult-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Maximum session cookie lifetime (default: 24h)

	// Rate limiting configuration (login per email, registration per IP)
	RateLimitEnabled       bool
	RateLimitLoginAttempts int           // Max failed attempts before lockout (default: 5)
	RateLimitLoginWindow   time.Duration // Window for counting failures (default: 15m)
	RateLimitLoginLockout  time.Duration // Lockout duration (default: 15m)

	// CSRF protection configuration
	CSRFKey string // Secret key for CSRF token signing (32 bytes, must be strong in production)

	// Remote services
	FileAPIURL    string        // CloudVault file service base URL
	AuthAPIURL    string        // Auth service base URL
	RemoteTimeout time.Duration // Per-request timeout for both (default: 10s)

	// Email delivery
	EmailProvider string // emailjs, resend, smtp or log
	ContactTo     string // Inbox that receives inquiries (resend, smtp)

	EmailJSAPIURL                 string
	EmailJSServiceID              string
	EmailJSTemplateID             string
	EmailJSSubscriptionTemplateID string
	EmailJSPublicKey              string
	EmailJSPrivateKey             string

	ResendAPIKey     string
	ResendAudienceID string // Optional; newsletter sign-ups join this audience

	// SMTP configuration (smtp provider)
	MailSMTPHost string
	MailSMTPPort int
	MailSMTPUser string
	MailSMTPPass string
	MailFrom     string // From address for smtp and resend
	MailFromName string

	// Contact form anti-spam
	ContactMinFillTime time.Duration // Minimum time a form must be open (default: 3s)
	ContactHourlyLimit int           // Inquiries per client IP per hour; 0 disables

	// Client IPs come from RemoteAddr unless a trusted proxy sets the
	// forwarding headers.
	TrustProxyHeaders bool

	// Refresh-signal bus. Blank RedisURL keeps signals in process.
	RedisURL     string
	RedisChannel string

	// Audit logging configuration
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	AuditLogAuth    string // login, registration, logout
	AuditLogContact string // inquiries and newsletter sign-ups

	// Retention; 0 keeps records forever
	InquiryRetention time.Duration
	AuditRetention   time.Duration
}
