package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"inkpress/internal/authz"
	"inkpress/internal/models"
	"inkpress/internal/query"
	"inkpress/internal/session"
	"inkpress/internal/store/memory"
	"inkpress/internal/token"
)

// MockPostRepository is a testify mock of PostRepository.
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) List(ctx context.Context, q query.Params) ([]models.Post, int, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]models.Post), args.Int(1), args.Error(2)
}

func (m *MockPostRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) SlugTaken(ctx context.Context, slug string, exclude uuid.UUID) (bool, error) {
	args := m.Called(ctx, slug, exclude)
	return args.Bool(0), args.Error(1)
}

func (m *MockPostRepository) Create(ctx context.Context, p *models.Post) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPostRepository) Update(ctx context.Context, p *models.Post) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPostRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockPostRepository) AddComment(ctx context.Context, c *models.Comment) error {
	return m.Called(ctx, c).Error(0)
}

// env wires every service to a fresh in-memory backend.
type env struct {
	db         *memory.DB
	posts      *Posts
	categories *Categories
	accounts   *Accounts
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := memory.New()
	issuer, err := token.NewIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	accounts := NewAccounts(db.Users(), session.NewMemoryStore(time.Hour), issuer)
	accounts.cost = bcrypt.MinCost

	return &env{
		db:         db,
		posts:      NewPosts(db.Posts(), db.Categories()),
		categories: NewCategories(db.Categories()),
		accounts:   accounts,
	}
}

// user registers an account and returns it as a caller.
func (e *env) user(t *testing.T, name string, role models.Role) authz.Caller {
	t.Helper()
	u := &models.User{Username: name, Email: name + "@example.com", PasswordHash: "x", Role: role}
	require.NoError(t, e.db.Users().Create(context.Background(), u))
	return authz.Caller{ID: u.ID, Username: u.Username, Role: u.Role}
}

func (e *env) category(t *testing.T, name string) *models.Category {
	t.Helper()
	c, err := e.categories.Create(context.Background(), CategoryInput{Name: name})
	require.NoError(t, err)
	return c
}
