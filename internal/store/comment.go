// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"inkpress/internal/models"
)

// CommentStore handles all comment-related database operations. Reads
// populate the author and, for replies, the parent comment's author name.
type CommentStore struct {
	db *sql.DB
}

// NewCommentStore creates a new CommentStore with the given database connection.
func NewCommentStore(db *sql.DB) *CommentStore {
	return &CommentStore{db: db}
}

// CommentFilter narrows List results.
type CommentFilter struct {
	PostID       *uuid.UUID
	ApprovedOnly bool
	Page         int
	Limit        int
}

const commentSelect = `
	SELECT cm.id, cm.content, cm.author_id, cm.post_id, cm.parent_id,
	       cm.approved, cm.likes, cm.created_at,
	       u.name, u.email, u.avatar_url,
	       pu.name
	FROM comments cm
	JOIN users u ON u.id = cm.author_id
	LEFT JOIN comments parent ON parent.id = cm.parent_id
	LEFT JOIN users pu ON pu.id = parent.author_id`

// scanComment scans a joined row into a Comment with author populated.
func scanComment(scanner interface{ Scan(...any) error }) (*models.Comment, error) {
	c := &models.Comment{Author: &models.AuthorInfo{}}
	var parentAuthor *string
	err := scanner.Scan(
		&c.ID, &c.Content, &c.AuthorID, &c.PostID, &c.ParentID,
		&c.Approved, &c.Likes, &c.CreatedAt,
		&c.Author.Name, &c.Author.Email, &c.Author.AvatarURL,
		&parentAuthor,
	)
	if err != nil {
		return nil, err
	}
	c.Author.ID = c.AuthorID
	if c.ParentID != nil && parentAuthor != nil {
		c.Parent = &models.CommentRef{ID: *c.ParentID, AuthorName: *parentAuthor}
	}
	return c, nil
}

// List returns comments matching the filter along with the total match
// count. Per-post listings read oldest first (thread order); unfiltered
// listings read newest first for moderation.
func (s *CommentStore) List(ctx context.Context, f CommentFilter) ([]models.Comment, int, error) {
	var conds []string
	var args []any

	if f.PostID != nil {
		args = append(args, *f.PostID)
		conds = append(conds, fmt.Sprintf("cm.post_id = $%d", len(args)))
	}
	if f.ApprovedOnly {
		conds = append(conds, "cm.approved = TRUE")
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM comments cm`+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count comments: %w", err)
	}

	order := "cm.created_at DESC"
	if f.PostID != nil {
		order = "cm.created_at ASC"
	}

	offset := (f.Page - 1) * f.Limit
	args = append(args, f.Limit, offset)
	query := fmt.Sprintf("%s%s ORDER BY %s LIMIT $%d OFFSET $%d",
		commentSelect, where, order, len(args)-1, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var items []models.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan comment: %w", err)
		}
		items = append(items, *c)
	}
	return items, total, rows.Err()
}

// FindByID retrieves a comment by ID. Returns nil if not found.
func (s *CommentStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	row := s.db.QueryRowContext(ctx, commentSelect+` WHERE cm.id = $1`, id)
	c, err := scanComment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find comment by id: %w", err)
	}
	return c, nil
}

// Create inserts a new comment and returns it with the author populated.
func (s *CommentStore) Create(ctx context.Context, c *models.Comment) (*models.Comment, error) {
	var id uuid.UUID
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO comments (content, author_id, post_id, parent_id, approved)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, c.Content, c.AuthorID, c.PostID, c.ParentID, c.Approved).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return s.FindByID(ctx, id)
}

// Delete removes a comment by ID. Replies keep their row; the schema
// nulls their parent reference.
func (s *CommentStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

// SetApproved toggles a comment's visibility in public listings.
func (s *CommentStore) SetApproved(ctx context.Context, id uuid.UUID, approved bool) error {
	_, err := s.db.ExecContext(ctx, `UPDATE comments SET approved = $1 WHERE id = $2`, approved, id)
	if err != nil {
		return fmt.Errorf("set comment approved: %w", err)
	}
	return nil
}

// IncrementLikes bumps the like counter for a comment.
func (s *CommentStore) IncrementLikes(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `UPDATE comments SET likes = likes + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment comment likes: %w", err)
	}
	return nil
}
