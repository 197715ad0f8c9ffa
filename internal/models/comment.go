// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment is a reader comment on a post. A comment may reply to another
// comment through ParentID; replies are one level deep (a reply cannot
// itself have replies as parents in public listings).
type Comment struct {
	ID        uuid.UUID  `json:"id"`
	Content   string     `json:"content"`
	AuthorID  uuid.UUID  `json:"authorId"`
	PostID    uuid.UUID  `json:"postId"`
	ParentID  *uuid.UUID `json:"parentId,omitempty"`
	Approved  bool       `json:"approved"`
	Likes     int        `json:"likes"`
	CreatedAt time.Time  `json:"createdAt"`

	// Virtual fields populated by store queries.
	Author *AuthorInfo `json:"author,omitempty"`
	Parent *CommentRef `json:"parent,omitempty"`
}

// CommentRef identifies the immediate parent of a reply, carrying just
// enough to display "in reply to" context.
type CommentRef struct {
	ID         uuid.UUID `json:"id"`
	AuthorName string    `json:"authorName"`
}
