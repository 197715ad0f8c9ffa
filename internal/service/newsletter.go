package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"inkpress/internal/apperr"
	"inkpress/internal/models"
	"inkpress/internal/store"
)

// emailPattern is the standard address shape accepted for subscriptions.
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// NewsletterService manages newsletter subscriptions. Subscribing is open
// to anyone; identity is append-only with mutable status — one record per
// email, forever.
type NewsletterService struct {
	subs NewsletterStore
}

// NewNewsletterService creates a NewsletterService over the given store.
func NewNewsletterService(subs NewsletterStore) *NewsletterService {
	return &NewsletterService{subs: subs}
}

// Subscribe adds an email to the newsletter. A first-time email creates
// an active record; an inactive record is reactivated in place; an
// already-active record is a conflict.
func (s *NewsletterService) Subscribe(ctx context.Context, email string) (*models.NewsletterSubscription, error) {
	email = strings.TrimSpace(email)
	if !emailPattern.MatchString(email) {
		return nil, apperr.Invalid("a valid email address is required", "email")
	}

	existing, err := s.subs.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "subscription lookup failed", err)
	}

	if existing == nil {
		sub, err := s.subs.Create(ctx, email)
		if errors.Is(err, store.ErrConflict) {
			// A racing subscriber created the record first.
			return nil, apperr.New(apperr.Conflict, "email is already subscribed")
		}
		if err != nil {
			return nil, apperr.Wrap(apperr.Internal, "create subscription failed", err)
		}
		return sub, nil
	}

	if existing.Active {
		return nil, apperr.New(apperr.Conflict, "email is already subscribed")
	}

	sub, err := s.subs.Reactivate(ctx, existing.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "reactivate subscription failed", err)
	}
	return sub, nil
}

// Unsubscribe marks an email's subscription inactive. Unknown emails are
// NotFound; unsubscribing an already-inactive record is a no-op.
func (s *NewsletterService) Unsubscribe(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if !emailPattern.MatchString(email) {
		return apperr.Invalid("a valid email address is required", "email")
	}

	existing, err := s.subs.FindByEmail(ctx, email)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "subscription lookup failed", err)
	}
	if existing == nil {
		return apperr.New(apperr.NotFound, "email is not subscribed")
	}
	if !existing.Active {
		return nil
	}

	if err := s.subs.Deactivate(ctx, existing.ID); err != nil {
		return apperr.Wrap(apperr.Internal, "deactivate subscription failed", err)
	}
	return nil
}
