package bootstrap

import (
	"net/mail"
	"strings"
	"testing"
)

func validAppConfig() AppConfig {
	return AppConfig{
		MongoURI:               "mongodb://localhost:27017",
		FileAPIURL:             "https://files.example.com/api",
		AuthAPIURL:             "https://auth.example.com",
		EmailProvider:          "log",
		RateLimitEnabled:       true,
		RateLimitLoginAttempts: 5,
		ContactHourlyLimit:     10,
	}
}

func TestValidateApp(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantSub string // "" means valid
	}{
		{"valid", func(*AppConfig) {}, ""},
		{"missing file api", func(c *AppConfig) { c.FileAPIURL = "" }, "file_api_url: is required"},
		{"bad auth scheme", func(c *AppConfig) { c.AuthAPIURL = "ftp://auth.example.com" }, "auth_api_url: scheme"},
		{"auth without host", func(c *AppConfig) { c.AuthAPIURL = "https://" }, "auth_api_url: host is missing"},
		{"unknown provider", func(c *AppConfig) { c.EmailProvider = "pigeon" }, `unknown email_provider "pigeon"`},
		{"emailjs without keys", func(c *AppConfig) { c.EmailProvider = "emailjs" }, "emailjs requires"},
		{"emailjs complete", func(c *AppConfig) {
			c.EmailProvider = "emailjs"
			c.EmailJSServiceID = "svc"
			c.EmailJSTemplateID = "tpl"
			c.EmailJSPublicKey = "pk"
		}, ""},
		{"resend without key", func(c *AppConfig) {
			c.EmailProvider = "resend"
			c.ContactTo = "info@example.com"
			c.MailFrom = "noreply@example.com"
		}, "resend requires resend_api_key"},
		{"smtp without recipient", func(c *AppConfig) {
			c.EmailProvider = "smtp"
			c.MailSMTPHost = "localhost"
			c.MailSMTPPort = 25
		}, "smtp requires contact_to"},
		{"zero login attempts", func(c *AppConfig) { c.RateLimitLoginAttempts = 0 }, "rate_limit_login_attempts"},
		{"zero attempts but disabled", func(c *AppConfig) {
			c.RateLimitEnabled = false
			c.RateLimitLoginAttempts = 0
		}, ""},
		{"negative hourly limit", func(c *AppConfig) { c.ContactHourlyLimit = -1 }, "contact_hourly_limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validAppConfig()
			tt.mutate(&cfg)
			problems := validateApp(cfg)

			if tt.wantSub == "" {
				if len(problems) != 0 {
					t.Errorf("validateApp() = %v, want no problems", problems)
				}
				return
			}
			joined := strings.Join(problems, "; ")
			if !strings.Contains(joined, tt.wantSub) {
				t.Errorf("validateApp() = %q, want it to mention %q", joined, tt.wantSub)
			}
		})
	}
}

func TestEmailConfig_FromAddress(t *testing.T) {
	cfg := validAppConfig()
	cfg.EmailProvider = "resend"
	cfg.MailFrom = "noreply@example.com"
	cfg.MailFromName = "CO Consultants"
	cfg.ContactTo = "info@example.com"

	ec := emailConfig(cfg)
	addr, err := mail.ParseAddress(ec.Resend.From)
	if err != nil {
		t.Fatalf("Resend.From %q does not parse: %v", ec.Resend.From, err)
	}
	if addr.Name != "CO Consultants" || addr.Address != "noreply@example.com" {
		t.Errorf("Resend.From = %+v", addr)
	}
	if ec.To != "info@example.com" || ec.Provider != "resend" {
		t.Errorf("emailConfig() = %+v", ec)
	}
}

func TestAppConfigKeys_ProxyHeadersUntrustedByDefault(t *testing.T) {
	for _, k := range appConfigKeys {
		if k.Name != "trust_proxy_headers" {
			continue
		}
		if k.Default != false {
			t.Errorf("trust_proxy_headers default = %v, want false", k.Default)
		}
		return
	}
	t.Fatal("trust_proxy_headers is not a config key")
}
