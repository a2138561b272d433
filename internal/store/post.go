// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"inkpress/internal/models"
	"inkpress/internal/query"
)

// PostStore manages posts and their comments.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

// postSelect resolves author and category summaries in the same query. The
// author join is LEFT because author_id is a weak reference.
const postSelect = `
	SELECT p.id, p.title, p.slug, p.content, p.excerpt,
	       p.author_id, COALESCE(u.username, ''),
	       p.category_id, c.name, c.slug,
	       p.featured_image, p.tags, p.status, p.created_at, p.updated_at
	FROM posts p
	JOIN categories c ON c.id = p.category_id
	LEFT JOIN users u ON u.id = p.author_id`

const postFrom = `
	FROM posts p
	JOIN categories c ON c.id = p.category_id`

func scanPost(s scanner, m *pgtype.Map) (*models.Post, error) {
	var p models.Post
	err := s.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Content, &p.Excerpt,
		&p.Author.ID, &p.Author.Username,
		&p.Category.ID, &p.Category.Name, &p.Category.Slug,
		&p.FeaturedImage, m.SQLScanner(&p.Tags), &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return &p, nil
}

// List returns one page of posts matching q, newest first, together with the
// total number of matches. Comments are not loaded.
func (s *PostStore) List(ctx context.Context, q query.Params) ([]models.Post, int, error) {
	where, args := q.Where()

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) `+postFrom+` WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}

	posts := []models.Post{}
	if total == 0 || q.Offset() >= total {
		return posts, total, nil
	}

	n := len(args)
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`%s
		WHERE %s
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $%d OFFSET $%d`, postSelect, where, n+1, n+2),
		append(args, q.PageSize, q.Offset())...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	m := pgtype.NewMap()
	for rows.Next() {
		p, err := scanPost(rows, m)
		if err != nil {
			return nil, 0, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	return posts, total, nil
}

// FindByID returns a post with its comments, oldest comment first.
// Returns nil if not found.
func (s *PostStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	p, err := scanPost(s.db.QueryRowContext(ctx, postSelect+` WHERE p.id = $1`, id), pgtype.NewMap())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by id: %w", err)
	}

	comments, err := s.comments(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Comments = comments
	return p, nil
}

func (s *PostStore) comments(ctx context.Context, postID uuid.UUID) ([]models.Comment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT cm.id, cm.post_id, cm.content, cm.author_id, COALESCE(u.username, ''), cm.created_at
		FROM comments cm
		LEFT JOIN users u ON u.id = cm.author_id
		WHERE cm.post_id = $1
		ORDER BY cm.created_at ASC, cm.id ASC
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.Content, &c.Author.ID, &c.Author.Username, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// SlugTaken reports whether any post other than exclude uses slug.
func (s *PostStore) SlugTaken(ctx context.Context, slug string, exclude uuid.UUID) (bool, error) {
	var taken bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM posts WHERE slug = $1 AND id <> $2)`, slug, exclude,
	).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("check post slug: %w", err)
	}
	return taken, nil
}

// Create inserts p. ID and timestamps are filled in. A slug collision that
// slipped past SlugTaken surfaces as ErrSlugTaken.
func (s *PostStore) Create(ctx context.Context, p *models.Post) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO posts (title, slug, content, excerpt, author_id, category_id, featured_image, tags, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`, p.Title, p.Slug, p.Content, p.Excerpt, p.Author.ID, p.Category.ID,
		p.FeaturedImage, tagsArg(p.Tags), p.Status,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	switch {
	case isUniqueViolation(err, "idx_posts_slug"):
		return fmt.Errorf("create post: %w", ErrSlugTaken)
	case isForeignKeyViolation(err):
		return fmt.Errorf("create post: %w", ErrUnknownCategory)
	case err != nil:
		return fmt.Errorf("create post: %w", err)
	}
	return nil
}

// Update replaces the mutable fields of p. Author, slug history and
// created_at are left alone; updated_at is refreshed.
func (s *PostStore) Update(ctx context.Context, p *models.Post) error {
	err := s.db.QueryRowContext(ctx, `
		UPDATE posts
		SET title = $1, slug = $2, content = $3, excerpt = $4, category_id = $5,
		    featured_image = $6, tags = $7, status = $8, updated_at = NOW()
		WHERE id = $9
		RETURNING updated_at
	`, p.Title, p.Slug, p.Content, p.Excerpt, p.Category.ID,
		p.FeaturedImage, tagsArg(p.Tags), p.Status, p.ID,
	).Scan(&p.UpdatedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("update post: %w", ErrNotFound)
	case isUniqueViolation(err, "idx_posts_slug"):
		return fmt.Errorf("update post: %w", ErrSlugTaken)
	case isForeignKeyViolation(err):
		return fmt.Errorf("update post: %w", ErrUnknownCategory)
	case err != nil:
		return fmt.Errorf("update post: %w", err)
	}
	return nil
}

// Delete removes a post. Its comments go with it through ON DELETE CASCADE.
func (s *PostStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete post: %w", ErrNotFound)
	}
	return nil
}

// AddComment appends c to its post. ID and CreatedAt are filled in.
func (s *PostStore) AddComment(ctx context.Context, c *models.Comment) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO comments (post_id, author_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, c.PostID, c.Author.ID, c.Content).Scan(&c.ID, &c.CreatedAt)
	switch {
	case isForeignKeyViolation(err):
		return fmt.Errorf("add comment: %w", ErrNotFound)
	case err != nil:
		return fmt.Errorf("add comment: %w", err)
	}
	return nil
}

func tagsArg(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
