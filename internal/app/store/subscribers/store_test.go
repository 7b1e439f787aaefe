package subscribers

import (
	"testing"

	"github.com/dalemusser/coconsult/internal/testutil"
)

func TestStore_Upsert(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	sub, created, err := store.Upsert(ctx, "  Reader@Example.com ", "footer")
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if !created {
		t.Error("first Upsert() should report created")
	}
	if sub.Email != "reader@example.com" || sub.Source != "footer" || sub.Signups != 1 {
		t.Errorf("Upsert() = %+v", sub)
	}

	again, created, err := store.Upsert(ctx, "READER@example.com", "other")
	if err != nil {
		t.Fatalf("second Upsert() error = %v", err)
	}
	if created {
		t.Error("repeat Upsert() should not report created")
	}
	if again.ID != sub.ID {
		t.Errorf("repeat Upsert() created a new record")
	}
	if again.Signups != 2 {
		t.Errorf("Signups = %d, want 2", again.Signups)
	}
	if again.Source != "footer" {
		t.Errorf("Source = %q, want original source kept", again.Source)
	}

	n, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Count() = %d, want 1", n)
	}
}

func TestStore_Remove(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, _, err := store.Upsert(ctx, "gone@example.com", "footer"); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := store.Remove(ctx, "GONE@example.com"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if err := store.Remove(ctx, "never@example.com"); err != nil {
		t.Fatalf("Remove() missing error = %v", err)
	}
	if n, _ := store.Count(ctx); n != 0 {
		t.Errorf("Count() = %d, want 0", n)
	}
}
