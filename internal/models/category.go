// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Category groups posts under a named topic. Each post references exactly
// one category; categories are shared and not owned by any user.
type Category struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	ColorTag    string    `json:"colorTag"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// PostCount is a virtual field populated by store list queries.
	PostCount int `json:"postCount"`
}

// CategoryInfo is the subset of category fields embedded in post responses
// when the category reference is populated.
type CategoryInfo struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Slug     string    `json:"slug"`
	ColorTag string    `json:"colorTag"`
}
