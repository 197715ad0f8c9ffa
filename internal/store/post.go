// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"inkpress/internal/models"
)

// PostStore handles all post-related database operations. Every read
// populates the author and category references in the same query.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

// PostFilter narrows List results. Nil pointer fields mean "no filter".
type PostFilter struct {
	Published  *bool
	Featured   *bool
	CategoryID *uuid.UUID
	AuthorID   *uuid.UUID
	Slug       string
	Page       int
	Limit      int
}

const postSelect = `
	SELECT p.id, p.title, p.slug, p.content, p.excerpt, p.image_url,
	       p.author_id, p.category_id, p.tags, p.published, p.featured,
	       p.views, p.likes, p.created_at, p.updated_at,
	       u.name, u.email, u.avatar_url,
	       c.name, c.slug, c.color_tag
	FROM posts p
	JOIN users u ON u.id = p.author_id
	JOIN categories c ON c.id = p.category_id`

// scanPost scans a joined row into a Post with author and category populated.
func scanPost(scanner interface{ Scan(...any) error }) (*models.Post, error) {
	p := &models.Post{
		Author:   &models.AuthorInfo{},
		Category: &models.CategoryInfo{},
	}
	var tags []byte
	err := scanner.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Content, &p.Excerpt, &p.ImageURL,
		&p.AuthorID, &p.CategoryID, &tags, &p.Published, &p.Featured,
		&p.Views, &p.Likes, &p.CreatedAt, &p.UpdatedAt,
		&p.Author.Name, &p.Author.Email, &p.Author.AvatarURL,
		&p.Category.Name, &p.Category.Slug, &p.Category.ColorTag,
	)
	if err != nil {
		return nil, err
	}
	p.Author.ID = p.AuthorID
	p.Category.ID = p.CategoryID
	if err := json.Unmarshal(tags, &p.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return p, nil
}

// buildFilter renders the WHERE clause and arguments for a PostFilter.
func buildFilter(f PostFilter) (string, []any) {
	var conds []string
	var args []any

	add := func(cond string, val any) {
		args = append(args, val)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.Published != nil {
		add("p.published = $%d", *f.Published)
	}
	if f.Featured != nil {
		add("p.featured = $%d", *f.Featured)
	}
	if f.CategoryID != nil {
		add("p.category_id = $%d", *f.CategoryID)
	}
	if f.AuthorID != nil {
		add("p.author_id = $%d", *f.AuthorID)
	}
	if f.Slug != "" {
		add("p.slug = $%d", f.Slug)
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// List returns posts matching the filter, newest first, along with the
// total match count for pagination.
func (s *PostStore) List(ctx context.Context, f PostFilter) ([]models.Post, int, error) {
	where, args := buildFilter(f)

	var total int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts p`+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}

	offset := (f.Page - 1) * f.Limit
	args = append(args, f.Limit, offset)
	query := fmt.Sprintf("%s%s ORDER BY p.created_at DESC LIMIT $%d OFFSET $%d",
		postSelect, where, len(args)-1, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var items []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan post: %w", err)
		}
		items = append(items, *p)
	}
	return items, total, rows.Err()
}

// FindByID retrieves a post by its UUID. Returns nil if not found.
func (s *PostStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	row := s.db.QueryRowContext(ctx, postSelect+` WHERE p.id = $1`, id)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by id: %w", err)
	}
	return p, nil
}

// FindBySlug retrieves a post by its slug. Returns nil if not found.
func (s *PostStore) FindBySlug(ctx context.Context, slug string) (*models.Post, error) {
	row := s.db.QueryRowContext(ctx, postSelect+` WHERE p.slug = $1`, slug)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by slug: %w", err)
	}
	return p, nil
}

// SlugExists reports whether another post already uses the slug. The
// post identified by exclude is ignored, so edit flows don't collide
// with themselves.
func (s *PostStore) SlugExists(ctx context.Context, slug string, exclude uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM posts WHERE slug = $1 AND id != $2)`,
		slug, exclude).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check post slug: %w", err)
	}
	return exists, nil
}

// Create inserts a new post and returns it fully populated. Returns
// ErrConflict when the slug is already taken (the unique index closes
// the pre-check race).
func (s *PostStore) Create(ctx context.Context, p *models.Post) (*models.Post, error) {
	tags, err := json.Marshal(p.Tags)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}

	var id uuid.UUID
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO posts (title, slug, content, excerpt, image_url,
		                   author_id, category_id, tags, published, featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`, p.Title, p.Slug, p.Content, p.Excerpt, p.ImageURL,
		p.AuthorID, p.CategoryID, tags, p.Published, p.Featured,
	).Scan(&id)
	if isUniqueViolation(err) {
		return nil, ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return s.FindByID(ctx, id)
}

// Update modifies an existing post. Returns ErrConflict when the new
// slug collides with another post.
func (s *PostStore) Update(ctx context.Context, p *models.Post) error {
	tags, err := json.Marshal(p.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE posts SET
			title = $1, slug = $2, content = $3, excerpt = $4, image_url = $5,
			category_id = $6, tags = $7, published = $8, featured = $9,
			updated_at = NOW()
		WHERE id = $10
	`, p.Title, p.Slug, p.Content, p.Excerpt, p.ImageURL,
		p.CategoryID, tags, p.Published, p.Featured, p.ID,
	)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	return nil
}

// Delete removes a post by ID. Comments cascade at the schema level.
func (s *PostStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

// IncrementViews bumps the view counter for a post.
func (s *PostStore) IncrementViews(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `UPDATE posts SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment views: %w", err)
	}
	return nil
}

// IncrementLikes bumps the like counter for a post.
func (s *PostStore) IncrementLikes(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `UPDATE posts SET likes = likes + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment likes: %w", err)
	}
	return nil
}
