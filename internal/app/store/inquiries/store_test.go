package inquiries

import (
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/coconsult/internal/domain/models"
	"github.com/dalemusser/coconsult/internal/testutil"
)

func sampleInquiry() models.Inquiry {
	return models.Inquiry{
		Email:    "  Jane@Example.com ",
		Provider: "log",
		ClientIP: "203.0.113.7",
		Params: map[string]string{
			"from_name": "Jane Doe",
			"message":   "We need a dashboard for our site.",
		},
	}
}

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	in, err := store.Create(ctx, sampleInquiry())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if in.ID.IsZero() || in.Reference == "" {
		t.Errorf("Create() did not assign ids: %+v", in)
	}
	if in.Status != models.InquiryPending {
		t.Errorf("Status = %q, want %q", in.Status, models.InquiryPending)
	}
	if in.Email != "jane@example.com" {
		t.Errorf("Email = %q, want normalized", in.Email)
	}

	got, err := store.GetByReference(ctx, in.Reference)
	if err != nil {
		t.Fatalf("GetByReference() error = %v", err)
	}
	if got.Params["from_name"] != "Jane Doe" {
		t.Errorf("Params = %v", got.Params)
	}
}

func TestStore_MarkSentAndFailed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	in, err := store.Create(ctx, sampleInquiry())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := store.MarkFailed(ctx, in.ID, "provider returned 500"); err != nil {
		t.Fatalf("MarkFailed() error = %v", err)
	}
	got, _ := store.GetByReference(ctx, in.Reference)
	if got.Status != models.InquiryFailed || got.Error != "provider returned 500" {
		t.Errorf("after MarkFailed = %+v", got)
	}

	if err := store.MarkSent(ctx, in.ID); err != nil {
		t.Fatalf("MarkSent() error = %v", err)
	}
	got, _ = store.GetByReference(ctx, in.Reference)
	if got.Status != models.InquirySent || got.Error != "" {
		t.Errorf("after MarkSent = %+v", got)
	}

	failed, err := store.ListByStatus(ctx, models.InquiryFailed, 10, 1)
	if err != nil {
		t.Fatalf("ListByStatus() error = %v", err)
	}
	if len(failed) != 0 {
		t.Errorf("ListByStatus(failed) = %d, want 0", len(failed))
	}
}

func TestStore_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.GetByReference(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByReference() error = %v, want ErrNotFound", err)
	}
	in, _ := store.Create(ctx, sampleInquiry())
	if _, err := db.Collection("inquiries").DeleteMany(ctx, map[string]any{}); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if err := store.MarkSent(ctx, in.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("MarkSent() error = %v, want ErrNotFound", err)
	}
}

func TestStore_CountSinceAndRetention(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for i := 0; i < 3; i++ {
		if _, err := store.Create(ctx, sampleInquiry()); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	n, err := store.CountSince(ctx, "203.0.113.7", time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("CountSince() error = %v", err)
	}
	if n != 3 {
		t.Errorf("CountSince() = %d, want 3", n)
	}

	deleted, err := store.DeleteOlderThan(ctx, time.Now().Add(time.Minute))
	if err != nil {
		t.Fatalf("DeleteOlderThan() error = %v", err)
	}
	if deleted != 3 {
		t.Errorf("DeleteOlderThan() = %d, want 3", deleted)
	}
}

func TestStore_CreateRejectsReusedStamp(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	first := sampleInquiry()
	first.StampID = "stamp-1"
	if _, err := store.Create(ctx, first); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := store.Create(ctx, first); !errors.Is(err, ErrStampUsed) {
		t.Errorf("Create() with the same stamp error = %v, want ErrStampUsed", err)
	}

	other := sampleInquiry()
	other.StampID = "stamp-2"
	if _, err := store.Create(ctx, other); err != nil {
		t.Errorf("Create() with a new stamp error = %v", err)
	}

	// Inquiries without a stamp never collide.
	for i := 0; i < 2; i++ {
		if _, err := store.Create(ctx, sampleInquiry()); err != nil {
			t.Errorf("Create() without stamp #%d error = %v", i+1, err)
		}
	}
}
