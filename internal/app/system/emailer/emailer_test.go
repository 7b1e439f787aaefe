package emailer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/coconsult/internal/app/system/mailer"
	"go.uber.org/zap"
)

func inquiry() Message {
	return Message{
		Kind:      KindInquiry,
		Reference: "ref-42",
		Params: map[string]string{
			ParamFromName:    "Pat Doe",
			ParamFromEmail:   "pat@example.com",
			ParamPhone:       "5551234567",
			ParamCompany:     "Acme Build",
			ParamProjectType: "rtls-tracking",
			ParamBudget:      "50k-100k",
			ParamTimeline:    "3-6months",
			ParamTeamSize:    "11-50",
			ParamMessage:     "Two sites need tracking.",
			ParamToName:      "CO Consultants Team",
			ParamReplyTo:     "pat@example.com",
		},
	}
}

func TestEmailJS_Send(t *testing.T) {
	var got emailJSRequest
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte("OK"))
	}))
	defer srv.Close()

	e, err := NewEmailJS(EmailJSConfig{
		APIURL:     srv.URL,
		ServiceID:  "service_x",
		TemplateID: "template_y",
		PublicKey:  "pub_z",
		Timeout:    time.Second,
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewEmailJS() error = %v", err)
	}

	if err := e.Send(context.Background(), inquiry()); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if path != "/api/v1.0/email/send" {
		t.Errorf("path = %q", path)
	}
	if got.ServiceID != "service_x" || got.TemplateID != "template_y" || got.UserID != "pub_z" {
		t.Errorf("ids = %+v", got)
	}
	if got.TemplateParams[ParamToName] != "CO Consultants Team" || got.TemplateParams[ParamReplyTo] != "pat@example.com" {
		t.Errorf("template params = %v", got.TemplateParams)
	}
	if len(got.TemplateParams) != 11 {
		t.Errorf("got %d template params, want 11", len(got.TemplateParams))
	}
}

func TestEmailJS_SubscriptionTemplate(t *testing.T) {
	var got emailJSRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte("OK"))
	}))
	defer srv.Close()

	e, _ := NewEmailJS(EmailJSConfig{
		APIURL:                 srv.URL,
		ServiceID:              "s",
		TemplateID:             "contact",
		SubscriptionTemplateID: "newsletter",
		PublicKey:              "p",
	}, zap.NewNop())

	msg := Message{Kind: KindSubscription, Params: map[string]string{ParamFromEmail: "sub@example.com"}}
	if err := e.Send(context.Background(), msg); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if got.TemplateID != "newsletter" {
		t.Errorf("template = %q, want newsletter", got.TemplateID)
	}
}

func TestEmailJS_Failure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("The Public Key is invalid"))
	}))
	defer srv.Close()

	e, _ := NewEmailJS(EmailJSConfig{APIURL: srv.URL, ServiceID: "s", TemplateID: "t", PublicKey: "bad"}, zap.NewNop())
	err := e.Send(context.Background(), inquiry())
	if err == nil || !strings.Contains(err.Error(), "Public Key is invalid") {
		t.Fatalf("err = %v", err)
	}
}

func TestNewEmailJS_RequiresIDs(t *testing.T) {
	_, err := NewEmailJS(EmailJSConfig{ServiceID: "s"}, zap.NewNop())
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}

func TestNew(t *testing.T) {
	logger := zap.NewNop()
	m := mailer.New(mailer.Config{Host: "localhost", Port: 1025, From: "noreply@example.com"}, logger)

	tests := []struct {
		name     string
		cfg      Config
		wantName string
		wantErr  bool
	}{
		{"default is log", Config{}, ProviderLog, false},
		{"log", Config{Provider: "log"}, ProviderLog, false},
		{"smtp", Config{Provider: "smtp", To: "team@example.com"}, ProviderSMTP, false},
		{"smtp without recipient", Config{Provider: "smtp"}, "", true},
		{"resend", Config{Provider: "resend", To: "team@example.com", Resend: ResendConfig{APIKey: "re_x", From: "a@example.com"}}, ProviderResend, false},
		{"resend without key", Config{Provider: "resend", To: "team@example.com"}, "", true},
		{"emailjs without ids", Config{Provider: "emailjs"}, "", true},
		{"unknown", Config{Provider: "carrier-pigeon"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.cfg, m, logger)
			if tt.wantErr {
				if err == nil {
					t.Fatal("New() should fail")
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if s.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", s.Name(), tt.wantName)
			}
		})
	}
}

func TestRender(t *testing.T) {
	out, err := render("CO Consultants", inquiry())
	if err != nil {
		t.Fatalf("render() error = %v", err)
	}
	if out.Subject != "New inquiry from Pat Doe" {
		t.Errorf("Subject = %q", out.Subject)
	}
	for _, want := range []string{"Acme Build", "rtls-tracking", "ref-42"} {
		if !strings.Contains(out.Text, want) {
			t.Errorf("text missing %q", want)
		}
	}

	if _, err := render("x", Message{Kind: "bogus"}); err == nil {
		t.Error("render() should reject unknown kinds")
	}
}

func TestSMTP_CancelledContext(t *testing.T) {
	m := mailer.New(mailer.Config{Host: "localhost", Port: 1025, From: "noreply@example.com"}, zap.NewNop())
	s, _ := NewSMTP(m, "team@example.com", "CO Consultants")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Send(ctx, inquiry()); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestResend_AddContactWithoutAudience(t *testing.T) {
	r, err := NewResend(ResendConfig{APIKey: "re_x", From: "a@example.com", To: "team@example.com"}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewResend() error = %v", err)
	}
	if err := r.AddContact(context.Background(), "sub@example.com"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("AddContact() error = %v, want ErrNotConfigured", err)
	}
}
