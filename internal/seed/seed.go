// Package seed populates an empty store with development data.
package seed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"inkpress/internal/models"
	"inkpress/internal/service"
	"inkpress/internal/slug"
)

// Default development accounts.
const (
	DemoEmail     = "demo@example.com"
	DemoPassword  = "Demo1234"
	AdminEmail    = "admin@example.com"
	AdminPassword = "Admin1234"
)

// Hasher produces password hashes for seeded accounts.
type Hasher interface {
	HashPassword(password string) (string, error)
}

type postSeed struct {
	title    string
	content  string
	excerpt  string
	category int
	tags     []string
}

var categorySeeds = []models.Category{
	{Name: "Technology", Description: "Tech news and tutorials"},
	{Name: "Lifestyle", Description: "Life, health, and wellness"},
	{Name: "Travel", Description: "Travel stories and tips"},
}

var postSeeds = []postSeed{
	{
		title:    "Welcome to the Blog!",
		content:  "This is your first post. Edit or delete it, then start blogging!",
		category: 0,
		tags:     []string{"welcome"},
	},
	{
		title:    "Traveling the World",
		content:  "Travel opens your mind and heart. Here are some tips for your next adventure.",
		excerpt:  "Travel opens your mind and heart.",
		category: 2,
		tags:     []string{"travel", "adventure"},
	},
}

// Run inserts the demo categories, accounts and posts. It is a no-op when
// the demo account already exists.
func Run(ctx context.Context, repos service.Repositories, hasher Hasher) error {
	existing, err := repos.Users.FindByEmail(ctx, DemoEmail)
	if err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}
	if existing != nil {
		slog.Info("database already seeded, skipping")
		return nil
	}

	cats := make([]*models.Category, len(categorySeeds))
	for i, c := range categorySeeds {
		c.Slug = slug.Generate(c.Name)
		found, err := repos.Categories.FindBySlug(ctx, c.Slug)
		if err != nil {
			return fmt.Errorf("seed find category %s: %w", c.Slug, err)
		}
		if found == nil {
			if err := repos.Categories.Create(ctx, &c); err != nil {
				return fmt.Errorf("seed insert category %s: %w", c.Slug, err)
			}
			found = &c
		}
		cats[i] = found
	}

	demo, err := createUser(ctx, repos.Users, hasher, "demo", DemoEmail, DemoPassword, models.RoleMember)
	if err != nil {
		return err
	}
	if _, err := createUser(ctx, repos.Users, hasher, "admin", AdminEmail, AdminPassword, models.RoleAdmin); err != nil {
		return err
	}

	for _, ps := range postSeeds {
		postSlug := slug.Generate(ps.title)
		taken, err := repos.Posts.SlugTaken(ctx, postSlug, uuid.Nil)
		if err != nil {
			return fmt.Errorf("seed check post %s: %w", postSlug, err)
		}
		if taken {
			continue
		}

		excerpt := ps.excerpt
		if excerpt == "" {
			excerpt = models.DeriveExcerpt(ps.content)
		}
		p := &models.Post{
			Title:    ps.title,
			Slug:     postSlug,
			Content:  ps.content,
			Excerpt:  excerpt,
			Author:   demo.Summary(),
			Category: cats[ps.category].Summary(),
			Tags:     ps.tags,
			Status:   models.PostStatusPublished,
		}
		if err := repos.Posts.Create(ctx, p); err != nil {
			return fmt.Errorf("seed insert post %s: %w", postSlug, err)
		}
	}

	slog.Info("database seeded with demo data",
		"demo_email", DemoEmail,
		"admin_email", AdminEmail,
	)
	return nil
}

func createUser(ctx context.Context, users service.UserRepository, hasher Hasher, username, email, password string, role models.Role) (*models.User, error) {
	if u, err := users.FindByEmail(ctx, email); err != nil {
		return nil, fmt.Errorf("seed find user %s: %w", username, err)
	} else if u != nil {
		return u, nil
	}

	hash, err := hasher.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("seed hash password: %w", err)
	}
	u := &models.User{Username: username, Email: email, PasswordHash: hash, Role: role}
	if err := users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("seed insert user %s: %w", username, err)
	}
	return u, nil
}
