package store

import (
	"context"
	"errors"
	"testing"
)

// TestNewsletterStoreLifecycle walks one email through subscribe,
// duplicate subscribe, unsubscribe, and reactivation, verifying that a
// single record carries the whole history.
func TestNewsletterStoreLifecycle(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	email := "lifecycle@newsletter.test"
	cleanSubscriptions(t, db, email)
	t.Cleanup(func() { cleanSubscriptions(t, db, email) })

	s := NewNewsletterStore(db)

	sub, err := s.Create(ctx, email)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !sub.Active {
		t.Error("new subscription should be active")
	}

	// Duplicate insert hits the case-insensitive unique index.
	if _, err := s.Create(ctx, "LIFECYCLE@newsletter.test"); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate Create err = %v, want ErrConflict", err)
	}

	if err := s.Deactivate(ctx, sub.ID); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}
	inactive, err := s.FindByEmail(ctx, email)
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if inactive.Active || inactive.UnsubscribedAt == nil {
		t.Errorf("after Deactivate: active=%v unsubscribedAt=%v", inactive.Active, inactive.UnsubscribedAt)
	}

	reactivated, err := s.Reactivate(ctx, sub.ID)
	if err != nil {
		t.Fatalf("Reactivate: %v", err)
	}
	if !reactivated.Active || reactivated.UnsubscribedAt != nil {
		t.Errorf("after Reactivate: active=%v unsubscribedAt=%v", reactivated.Active, reactivated.UnsubscribedAt)
	}
	if reactivated.ID != sub.ID {
		t.Error("reactivation must reuse the original record")
	}
	if !reactivated.SubscribedAt.After(sub.SubscribedAt) {
		t.Error("reactivation should refresh subscribedAt")
	}

	// Exactly one row for the email throughout.
	var count int
	db.QueryRow("SELECT COUNT(*) FROM newsletter_subscriptions WHERE LOWER(email) = LOWER($1)", email).Scan(&count)
	if count != 1 {
		t.Errorf("record count = %d, want 1", count)
	}
}
