package models

import (
	"time"

	"github.com/google/uuid"
)

// NewsletterSubscription is one email on the newsletter list. There is at
// most one record per email address, permanently: unsubscribing flips
// Active to false and resubscribing reactivates the same record.
type NewsletterSubscription struct {
	ID             uuid.UUID  `json:"id"`
	Email          string     `json:"email"`
	Active         bool       `json:"active"`
	SubscribedAt   time.Time  `json:"subscribedAt"`
	UnsubscribedAt *time.Time `json:"unsubscribedAt,omitempty"`
}
