package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"inkpress/internal/models"
)

// NewsletterStore manages newsletter subscription records.
type NewsletterStore struct {
	db *sql.DB
}

// NewNewsletterStore returns a new NewsletterStore.
func NewNewsletterStore(db *sql.DB) *NewsletterStore {
	return &NewsletterStore{db: db}
}

const subscriptionColumns = `id, email, active, subscribed_at, unsubscribed_at`

func scanSubscription(scanner interface{ Scan(...any) error }) (*models.NewsletterSubscription, error) {
	sub := &models.NewsletterSubscription{}
	err := scanner.Scan(&sub.ID, &sub.Email, &sub.Active, &sub.SubscribedAt, &sub.UnsubscribedAt)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// FindByEmail retrieves a subscription by email, case-insensitively.
// Returns nil if not found.
func (s *NewsletterStore) FindByEmail(ctx context.Context, email string) (*models.NewsletterSubscription, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+subscriptionColumns+` FROM newsletter_subscriptions WHERE LOWER(email) = LOWER($1)`,
		email)
	sub, err := scanSubscription(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find subscription by email: %w", err)
	}
	return sub, nil
}

// Create inserts a new active subscription. Returns ErrConflict if a
// record for the email already exists (racing subscribers hit the
// unique index).
func (s *NewsletterStore) Create(ctx context.Context, email string) (*models.NewsletterSubscription, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO newsletter_subscriptions (email, active)
		VALUES ($1, TRUE)
		RETURNING `+subscriptionColumns,
		email)
	sub, err := scanSubscription(row)
	if isUniqueViolation(err) {
		return nil, ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("create subscription: %w", err)
	}
	return sub, nil
}

// Reactivate flips an inactive subscription back to active, refreshing
// subscribed_at and clearing unsubscribed_at. The record identity is
// preserved — there is never more than one record per email.
func (s *NewsletterStore) Reactivate(ctx context.Context, id uuid.UUID) (*models.NewsletterSubscription, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE newsletter_subscriptions
		SET active = TRUE, subscribed_at = NOW(), unsubscribed_at = NULL
		WHERE id = $1
		RETURNING `+subscriptionColumns,
		id)
	sub, err := scanSubscription(row)
	if err != nil {
		return nil, fmt.Errorf("reactivate subscription: %w", err)
	}
	return sub, nil
}

// Deactivate marks a subscription inactive and stamps unsubscribed_at.
func (s *NewsletterStore) Deactivate(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE newsletter_subscriptions
		SET active = FALSE, unsubscribed_at = NOW()
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("deactivate subscription: %w", err)
	}
	return nil
}
