// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"inkpress/internal/authz"
	"inkpress/internal/errs"
	"inkpress/internal/markdown"
	"inkpress/internal/models"
	"inkpress/internal/query"
	"inkpress/internal/slug"
	"inkpress/internal/store"
)

// Client-facing messages.
const (
	msgPostNotFound     = "Post not found"
	msgCategoryNotFound = "Category not found"
	msgDuplicateTitle   = "Post with this title already exists"
	msgCommentRequired  = "Comment content is required"
	msgMeaninglessTitle = "Title must contain at least one letter or digit"
)

// PostInput is the body of a create or update request. Every mutable field
// is replaced on update.
type PostInput struct {
	Title         string            `json:"title" validate:"required,max=100"`
	Content       string            `json:"content" validate:"required"`
	Excerpt       string            `json:"excerpt" validate:"max=200"`
	Category      string            `json:"category" validate:"required"`
	FeaturedImage string            `json:"featuredImage" validate:"max=2048"`
	Tags          []string          `json:"tags" validate:"max=50,dive,required,max=50"`
	Status        models.PostStatus `json:"status" validate:"omitempty,oneof=draft published"`
}

func (in *PostInput) normalize() {
	in.Category = strings.TrimSpace(in.Category)
	in.FeaturedImage = strings.TrimSpace(in.FeaturedImage)
	for i, t := range in.Tags {
		in.Tags[i] = strings.TrimSpace(t)
	}
	if in.Tags == nil {
		in.Tags = []string{}
	}
	if in.Status == "" {
		in.Status = models.PostStatusDraft
	}
}

// CommentInput is the body of an add-comment request.
type CommentInput struct {
	Content string `json:"content"`
}

// Page is one page of a post listing.
type Page struct {
	Posts       []models.Post `json:"posts"`
	CurrentPage int           `json:"currentPage"`
	TotalPages  int           `json:"totalPages"`
	Total       int           `json:"totalPosts"`
}

// Posts implements the post store operations.
type Posts struct {
	posts      PostRepository
	categories CategoryRepository
}

// NewPosts creates a Posts service.
func NewPosts(posts PostRepository, categories CategoryRepository) *Posts {
	return &Posts{posts: posts, categories: categories}
}

// List returns one page of posts matching q. A page past the end is empty.
func (s *Posts) List(ctx context.Context, q query.Params) (*Page, error) {
	q = q.Normalize()
	posts, total, err := s.posts.List(ctx, q)
	if err != nil {
		return nil, errs.Internal(err)
	}
	if posts == nil {
		posts = []models.Post{}
	}
	return &Page{
		Posts:       posts,
		CurrentPage: q.Page,
		TotalPages:  query.TotalPages(total, q.PageSize),
		Total:       total,
	}, nil
}

// Get returns a post with its comments. The body and every comment carry
// sanitized HTML renderings.
func (s *Posts) Get(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	html, err := markdown.ToHTML(p.Content)
	if err != nil {
		slog.Warn("render post content failed", "post_id", id, "error", err)
	} else {
		p.ContentHTML = html
	}
	for i := range p.Comments {
		c := &p.Comments[i]
		if c.ContentHTML, err = markdown.ToHTML(c.Content); err != nil {
			slog.Warn("render comment failed", "comment_id", c.ID, "error", err)
		}
	}
	return p, nil
}

func (s *Posts) find(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	p, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, errs.Internal(err)
	}
	if p == nil {
		return nil, errs.NotFound(msgPostNotFound)
	}
	return p, nil
}

// Create stores a new post authored by caller.
func (s *Posts) Create(ctx context.Context, in PostInput, caller authz.Caller) (*models.Post, error) {
	in.normalize()
	if err := validateInput(in); err != nil {
		return nil, err
	}

	cat, err := s.category(ctx, in.Category)
	if err != nil {
		return nil, err
	}

	postSlug, err := s.slugFor(ctx, in.Title, uuid.Nil)
	if err != nil {
		return nil, err
	}

	p := &models.Post{
		Title:         in.Title,
		Slug:          postSlug,
		Content:       in.Content,
		Excerpt:       excerptFor(in),
		Author:        models.UserSummary{ID: caller.ID, Username: caller.Username},
		Category:      cat.Summary(),
		FeaturedImage: in.FeaturedImage,
		Tags:          in.Tags,
		Status:        in.Status,
	}
	if err := s.posts.Create(ctx, p); err != nil {
		return nil, translateStoreErr(err)
	}

	slog.Info("post created", "post_id", p.ID, "slug", p.Slug, "author_id", caller.ID)
	return s.find(ctx, p.ID)
}

// Update replaces the mutable fields of a post owned by caller (or any post
// when caller is an admin). The slug only changes when the title does.
func (s *Posts) Update(ctx context.Context, id uuid.UUID, in PostInput, caller authz.Caller) (*models.Post, error) {
	existing, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanMutate(caller, existing.Author.ID) {
		return nil, errs.Forbidden("Not authorized to update this post")
	}

	in.normalize()
	if err := validateInput(in); err != nil {
		return nil, err
	}

	cat, err := s.category(ctx, in.Category)
	if err != nil {
		return nil, err
	}

	postSlug := existing.Slug
	if in.Title != existing.Title {
		if postSlug, err = s.slugFor(ctx, in.Title, existing.ID); err != nil {
			return nil, err
		}
	}

	updated := *existing
	updated.Title = in.Title
	updated.Slug = postSlug
	updated.Content = in.Content
	updated.Excerpt = excerptFor(in)
	updated.Category = cat.Summary()
	updated.FeaturedImage = in.FeaturedImage
	updated.Tags = in.Tags
	updated.Status = in.Status

	if err := s.posts.Update(ctx, &updated); err != nil {
		return nil, translateStoreErr(err)
	}

	slog.Info("post updated", "post_id", id, "slug", postSlug, "by", caller.ID)
	return s.find(ctx, id)
}

// Delete removes a post owned by caller (or any post when caller is an
// admin) together with its comments.
func (s *Posts) Delete(ctx context.Context, id uuid.UUID, caller authz.Caller) error {
	existing, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if !authz.CanMutate(caller, existing.Author.ID) {
		return errs.Forbidden("Not authorized to delete this post")
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		return translateStoreErr(err)
	}

	slog.Info("post deleted", "post_id", id, "by", caller.ID)
	return nil
}

// AddComment appends a comment by caller to a post. The text is stored as
// written, minus surrounding whitespace.
func (s *Posts) AddComment(ctx context.Context, postID uuid.UUID, in CommentInput, caller authz.Caller) (*models.Comment, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, errs.Validation(msgCommentRequired)
	}

	c := &models.Comment{
		PostID:  postID,
		Content: content,
		Author:  models.UserSummary{ID: caller.ID, Username: caller.Username},
	}
	if err := s.posts.AddComment(ctx, c); err != nil {
		return nil, translateStoreErr(err)
	}
	return c, nil
}

func (s *Posts) category(ctx context.Context, raw string) (*models.Category, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, errs.BadReference(msgCategoryNotFound)
	}
	cat, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, errs.Internal(err)
	}
	if cat == nil {
		return nil, errs.BadReference(msgCategoryNotFound)
	}
	return cat, nil
}

// slugFor derives the slug for title and checks it is free, ignoring the
// post identified by exclude.
func (s *Posts) slugFor(ctx context.Context, title string, exclude uuid.UUID) (string, error) {
	derived := slug.Generate(title)
	if !slug.Meaningful(derived) {
		return "", errs.Validation(msgMeaninglessTitle)
	}
	taken, err := s.posts.SlugTaken(ctx, derived, exclude)
	if err != nil {
		return "", errs.Internal(err)
	}
	if taken {
		return "", errs.Conflict(msgDuplicateTitle)
	}
	return derived, nil
}

func excerptFor(in PostInput) string {
	if in.Excerpt != "" {
		return in.Excerpt
	}
	return models.DeriveExcerpt(in.Content)
}

// translateStoreErr maps repository sentinels onto client-facing errors.
func translateStoreErr(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return errs.NotFound(msgPostNotFound)
	case errors.Is(err, store.ErrSlugTaken):
		return errs.Conflict(msgDuplicateTitle)
	case errors.Is(err, store.ErrUnknownCategory):
		return errs.BadReference(msgCategoryNotFound)
	default:
		return errs.Internal(fmt.Errorf("post store: %w", err))
	}
}
