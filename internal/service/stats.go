package service

import (
	"context"

	"inkpress/internal/apperr"
	"inkpress/internal/policy"
	"inkpress/internal/store"
)

// statsBound caps the lists pulled for counting. Fine at this platform's
// scale; real aggregation queries would replace this long before the
// bound matters.
const statsBound = 10000

// Stats holds the dashboard counters.
type Stats struct {
	TotalPosts     int `json:"totalPosts"`
	PublishedPosts int `json:"publishedPosts"`
	DraftPosts     int `json:"draftPosts"`
	TotalUsers     int `json:"totalUsers"`
}

// StatsService derives simple counts from the store.
type StatsService struct {
	posts PostStore
	users UserStore
}

// NewStatsService creates a StatsService over the given stores.
func NewStatsService(posts PostStore, users UserStore) *StatsService {
	return &StatsService{posts: posts, users: users}
}

// Compute pulls bounded post and user lists and counts them in process.
// DraftPosts is derived, never stored.
func (s *StatsService) Compute(ctx context.Context, p *policy.Principal) (*Stats, error) {
	if !policy.Can(p, policy.ViewStats, nil) {
		return nil, apperr.New(apperr.Unauthorized, "authentication required")
	}

	posts, total, err := s.posts.List(ctx, store.PostFilter{Page: 1, Limit: statsBound})
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "list posts failed", err)
	}

	published := 0
	for _, post := range posts {
		if post.Published {
			published++
		}
	}

	users, err := s.users.List(ctx, statsBound, 0)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "list users failed", err)
	}

	return &Stats{
		TotalPosts:     total,
		PublishedPosts: published,
		DraftPosts:     total - published,
		TotalUsers:     len(users),
	}, nil
}
