package auditlog

import (
	"context"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObserved(cfg Config) (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return New(nil, zap.New(core), cfg), logs
}

func TestLog_RespectsCategorySetting(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		emit    func(l *Logger)
		wantLog int
	}{
		{"auth all", Config{Auth: All}, func(l *Logger) {
			l.LoginFailed(context.Background(), httptest.NewRequest("POST", "/login", nil), "a@example.com", "bad password")
		}, 1},
		{"auth off", Config{Auth: Off}, func(l *Logger) {
			l.Logout(context.Background(), httptest.NewRequest("POST", "/logout", nil), "u-1", "a@example.com")
		}, 0},
		{"auth db only", Config{Auth: DB}, func(l *Logger) {
			l.LoginSuccess(context.Background(), httptest.NewRequest("POST", "/login", nil), "u-1", "a@example.com")
		}, 0},
		{"contact defaults to all", Config{}, func(l *Logger) {
			l.InquiryRejected(context.Background(), httptest.NewRequest("POST", "/contact", nil), "honeypot")
		}, 1},
		{"contact log", Config{Contact: Log}, func(l *Logger) {
			l.Subscribed(context.Background(), httptest.NewRequest("POST", "/newsletter", nil), "b@example.com", true)
		}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, logs := newObserved(tt.cfg)
			tt.emit(l)
			if logs.Len() != tt.wantLog {
				t.Errorf("zap entries = %d, want %d", logs.Len(), tt.wantLog)
			}
		})
	}
}

func TestLog_Fields(t *testing.T) {
	l, logs := newObserved(Config{})
	req := httptest.NewRequest("POST", "/contact", nil)
	req.RemoteAddr = "203.0.113.9:40000"

	l.InquiryFailed(context.Background(), req, "jane@example.com", "ref-1", "provider down")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	e := entries[0]
	if e.Level != zapcore.WarnLevel {
		t.Errorf("level = %v, want warn for failures", e.Level)
	}
	fields := e.ContextMap()
	if fields["ip"] != "203.0.113.9" {
		t.Errorf("ip = %v", fields["ip"])
	}
	if fields["detail_reference"] != "ref-1" || fields["failure_reason"] != "provider down" {
		t.Errorf("fields = %v", fields)
	}
}

func TestLog_NilLogger(t *testing.T) {
	var l *Logger
	// must not panic
	l.LoginSuccess(context.Background(), httptest.NewRequest("POST", "/login", nil), "u-1", "a@example.com")
}
