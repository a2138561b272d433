// Package service implements the blog's operations on top of repository
// interfaces: the category registry, the post store with its comments, and
// the credential store. Services validate typed inputs, enforce ownership
// and translate storage failures into errs values.
package service

import (
	"context"

	"github.com/google/uuid"

	"inkpress/internal/models"
	"inkpress/internal/query"
	"inkpress/internal/session"
)

// UserRepository persists accounts. Finders return (nil, nil) when nothing
// matches.
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
}

// CategoryRepository persists categories.
type CategoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
	Create(ctx context.Context, c *models.Category) error
}

// PostRepository persists posts and their comments.
type PostRepository interface {
	List(ctx context.Context, q query.Params) ([]models.Post, int, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	SlugTaken(ctx context.Context, slug string, exclude uuid.UUID) (bool, error)
	Create(ctx context.Context, p *models.Post) error
	Update(ctx context.Context, p *models.Post) error
	Delete(ctx context.Context, id uuid.UUID) error
	AddComment(ctx context.Context, c *models.Comment) error
}

// SessionRegistry tracks live login sessions.
type SessionRegistry interface {
	Create(ctx context.Context, data *session.Data) (string, error)
	Get(ctx context.Context, id string) (*session.Data, error)
	Destroy(ctx context.Context, id string) error
}

// Repositories groups one backend's repositories.
type Repositories struct {
	Users      UserRepository
	Categories CategoryRepository
	Posts      PostRepository
}
