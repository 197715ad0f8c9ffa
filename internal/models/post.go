// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Post is a blog article. Posts start as drafts (Published=false) and are
// flipped to published by their author or an admin; there is no approval
// workflow or intermediate state.
type Post struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	Slug       string    `json:"slug"`
	Content    string    `json:"content"`
	Excerpt    *string   `json:"excerpt,omitempty"`
	ImageURL   *string   `json:"imageUrl,omitempty"`
	AuthorID   uuid.UUID `json:"authorId"`
	CategoryID uuid.UUID `json:"categoryId"`
	Tags       []string  `json:"tags"`
	Published  bool      `json:"published"`
	Featured   bool      `json:"featured"`
	Views      int       `json:"views"`
	Likes      int       `json:"likes"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	// Virtual fields populated by store queries and the service layer.
	Author      *AuthorInfo   `json:"author,omitempty"`
	Category    *CategoryInfo `json:"category,omitempty"`
	ContentHTML string        `json:"contentHtml,omitempty"`
}

// IsAuthoredBy returns true if the post belongs to the given user.
func (p *Post) IsAuthoredBy(userID uuid.UUID) bool {
	return p.AuthorID == userID
}
