package audit

import (
	"testing"
	"time"

	"github.com/dalemusser/coconsult/internal/testutil"
)

func TestStore_Log_FillsDefaults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := store.Log(ctx, Event{
		Category:  CategoryAuth,
		EventType: EventLoginSuccess,
		UserID:    "u-1",
		Email:     "jane@example.com",
		IP:        "192.168.1.1",
		Success:   true,
		Details:   map[string]string{"return": "/starred"},
	})
	if err != nil {
		t.Fatalf("Log() error = %v", err)
	}

	events, err := store.Query(ctx, QueryFilter{Email: "jane@example.com"})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("Query() returned %d events, want 1", len(events))
	}
	e := events[0]
	if e.ID.IsZero() {
		t.Error("ID was not assigned")
	}
	if e.CreatedAt.IsZero() {
		t.Error("CreatedAt was not assigned")
	}
	if e.UserID != "u-1" || e.Details["return"] != "/starred" {
		t.Errorf("stored event = %+v", e)
	}
}

func TestStore_Query(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	events := []Event{
		{Category: CategoryAuth, EventType: EventLoginSuccess, Email: "a@example.com", Success: true},
		{Category: CategoryAuth, EventType: EventLoginFailed, Email: "a@example.com"},
		{Category: CategoryContact, EventType: EventInquirySent, Email: "b@example.com", Success: true},
	}
	for _, e := range events {
		if err := store.Log(ctx, e); err != nil {
			t.Fatalf("Log() error = %v", err)
		}
	}

	tests := []struct {
		name      string
		filter    QueryFilter
		wantCount int
	}{
		{"all events", QueryFilter{}, 3},
		{"by email", QueryFilter{Email: "a@example.com"}, 2},
		{"by category auth", QueryFilter{Category: CategoryAuth}, 2},
		{"by category contact", QueryFilter{Category: CategoryContact}, 1},
		{"by event type", QueryFilter{EventType: EventLoginFailed}, 1},
		{"with limit", QueryFilter{Limit: 2}, 2},
		{"second page", QueryFilter{Limit: 2, Page: 2}, 1},
		{"page past end", QueryFilter{Limit: 2, Page: 3}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := store.Query(ctx, tt.filter)
			if err != nil {
				t.Fatalf("Query() error = %v", err)
			}
			if len(result) != tt.wantCount {
				t.Errorf("Query() returned %d events, want %d", len(result), tt.wantCount)
			}
			n, err := store.Count(ctx, QueryFilter{Email: tt.filter.Email, Category: tt.filter.Category, EventType: tt.filter.EventType})
			if err != nil {
				t.Fatalf("Count() error = %v", err)
			}
			if tt.filter.Limit == 0 && tt.filter.Page == 0 && int(n) != tt.wantCount {
				t.Errorf("Count() = %d, want %d", n, tt.wantCount)
			}
		})
	}
}

func TestStore_Query_TimeRange(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Now()
	past := now.Add(-1 * time.Hour)
	future := now.Add(1 * time.Hour)

	if err := store.Log(ctx, Event{Category: CategoryAuth, EventType: EventLogout, CreatedAt: now, Success: true}); err != nil {
		t.Fatalf("Log() error = %v", err)
	}

	tests := []struct {
		name      string
		since     time.Time
		until     time.Time
		wantCount int
	}{
		{"since before", past, time.Time{}, 1},
		{"since after", future, time.Time{}, 0},
		{"until after", time.Time{}, future, 1},
		{"until before", time.Time{}, past, 0},
		{"range includes", past, future, 1},
		{"until is exclusive", past, now, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := store.Query(ctx, QueryFilter{Since: tt.since, Until: tt.until})
			if err != nil {
				t.Fatalf("Query() error = %v", err)
			}
			if len(result) != tt.wantCount {
				t.Errorf("Query() returned %d events, want %d", len(result), tt.wantCount)
			}
		})
	}
}

func TestStore_DeleteOlderThan(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Now()
	store.Log(ctx, Event{Category: CategoryAuth, EventType: EventLogout, CreatedAt: now.Add(-48 * time.Hour)})
	store.Log(ctx, Event{Category: CategoryAuth, EventType: EventLogout, CreatedAt: now})

	n, err := store.DeleteOlderThan(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("DeleteOlderThan() error = %v", err)
	}
	if n != 1 {
		t.Errorf("DeleteOlderThan() = %d, want 1", n)
	}
	if left, _ := store.Count(ctx, QueryFilter{}); left != 1 {
		t.Errorf("remaining = %d, want 1", left)
	}
}
