package service

import (
	"context"
	"log/slog"
	"strings"

	"inkpress/internal/errs"
	"inkpress/internal/models"
	"inkpress/internal/slug"
)

// CategoryInput is the body of a create-category request.
type CategoryInput struct {
	Name        string `json:"name" validate:"required,max=50"`
	Description string `json:"description" validate:"max=200"`
}

// Categories is the category registry.
type Categories struct {
	repo CategoryRepository
}

// NewCategories creates a Categories service.
func NewCategories(repo CategoryRepository) *Categories {
	return &Categories{repo: repo}
}

// List returns every category ordered by name.
func (s *Categories) List(ctx context.Context) ([]models.Category, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, errs.Internal(err)
	}
	if items == nil {
		items = []models.Category{}
	}
	return items, nil
}

// Create adds a category. Slugs are derived from the name and may repeat.
func (s *Categories) Create(ctx context.Context, in CategoryInput) (*models.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	c := &models.Category{
		Name:        in.Name,
		Slug:        slug.Generate(in.Name),
		Description: in.Description,
	}
	if !slug.Meaningful(c.Slug) {
		return nil, errs.Validation("Name must contain at least one letter or digit")
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, errs.Internal(err)
	}

	slog.Info("category created", "category_id", c.ID, "slug", c.Slug)
	return c, nil
}
