// Package memory is an in-process backend with the same semantics as the
// PostgreSQL stores: unique usernames, emails and post slugs, cascading
// comment deletion, and identical filtering through query.Params.Matches.
// It backs development runs without a database and the handler tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"inkpress/internal/models"
	"inkpress/internal/query"
	"inkpress/internal/store"
)

// DB holds every table behind a single lock.
type DB struct {
	mu         sync.RWMutex
	seq        int64
	now        func() time.Time
	users      map[uuid.UUID]*models.User
	categories map[uuid.UUID]*categoryRow
	posts      map[uuid.UUID]*postRow
}

type categoryRow struct {
	models.Category
	seq int64
}

type postRow struct {
	post     models.Post // author/category hold ids only
	comments []models.Comment
	seq      int64
}

// New returns an empty database.
func New() *DB {
	return &DB{
		now:        func() time.Time { return time.Now().UTC() },
		users:      make(map[uuid.UUID]*models.User),
		categories: make(map[uuid.UUID]*categoryRow),
		posts:      make(map[uuid.UUID]*postRow),
	}
}

// Users returns the user table.
func (db *DB) Users() *Users { return &Users{db: db} }

// Categories returns the category table.
func (db *DB) Categories() *Categories { return &Categories{db: db} }

// Posts returns the post table.
func (db *DB) Posts() *Posts { return &Posts{db: db} }

func (db *DB) nextSeq() int64 {
	db.seq++
	return db.seq
}

// userSummary resolves a weak user reference. Must be called with the lock held.
func (db *DB) userSummary(id uuid.UUID) models.UserSummary {
	if u, ok := db.users[id]; ok {
		return u.Summary()
	}
	return models.UserSummary{ID: id}
}

// Users implements the user repository.
type Users struct{ db *DB }

func (s *Users) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	if u, ok := s.db.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (s *Users) FindByEmail(_ context.Context, email string) (*models.User, error) {
	return s.find(func(u *models.User) bool { return strings.EqualFold(u.Email, email) }), nil
}

func (s *Users) FindByUsername(_ context.Context, username string) (*models.User, error) {
	return s.find(func(u *models.User) bool { return u.Username == username }), nil
}

func (s *Users) find(match func(*models.User) bool) *models.User {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	for _, u := range s.db.users {
		if match(u) {
			cp := *u
			return &cp
		}
	}
	return nil
}

func (s *Users) Create(_ context.Context, u *models.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, existing := range s.db.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return store.ErrDuplicateEmail
		}
		if existing.Username == u.Username {
			return store.ErrDuplicateUsername
		}
	}

	if u.Role == "" {
		u.Role = models.RoleMember
	}
	u.ID = uuid.New()
	u.CreatedAt = s.db.now()
	u.UpdatedAt = u.CreatedAt

	cp := *u
	s.db.users[u.ID] = &cp
	return nil
}

// Categories implements the category repository.
type Categories struct{ db *DB }

func (s *Categories) List(_ context.Context) ([]models.Category, error) {
	s.db.mu.RLock()
	rows := make([]*categoryRow, 0, len(s.db.categories))
	for _, c := range s.db.categories {
		rows = append(rows, c)
	}
	s.db.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Name != rows[j].Name {
			return rows[i].Name < rows[j].Name
		}
		return rows[i].seq < rows[j].seq
	})

	items := make([]models.Category, len(rows))
	for i, r := range rows {
		items[i] = r.Category
	}
	return items, nil
}

func (s *Categories) FindByID(_ context.Context, id uuid.UUID) (*models.Category, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	if c, ok := s.db.categories[id]; ok {
		cp := c.Category
		return &cp, nil
	}
	return nil, nil
}

func (s *Categories) FindBySlug(_ context.Context, slug string) (*models.Category, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	var found *categoryRow
	for _, c := range s.db.categories {
		if c.Slug == slug && (found == nil || c.seq < found.seq) {
			found = c
		}
	}
	if found == nil {
		return nil, nil
	}
	cp := found.Category
	return &cp, nil
}

func (s *Categories) Create(_ context.Context, c *models.Category) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	c.ID = uuid.New()
	c.CreatedAt = s.db.now()
	s.db.categories[c.ID] = &categoryRow{Category: *c, seq: s.db.nextSeq()}
	return nil
}

// Posts implements the post repository.
type Posts struct{ db *DB }

// resolve returns a copy of row with summaries filled in. Must be called
// with the lock held.
func (s *Posts) resolve(row *postRow, withComments bool) models.Post {
	p := row.post
	p.Tags = append([]string{}, row.post.Tags...)
	p.Author = s.db.userSummary(p.Author.ID)
	if c, ok := s.db.categories[p.Category.ID]; ok {
		p.Category = c.Summary()
	}
	if withComments {
		p.Comments = make([]models.Comment, len(row.comments))
		for i, c := range row.comments {
			c.Author = s.db.userSummary(c.Author.ID)
			p.Comments[i] = c
		}
	}
	return p
}

func (s *Posts) List(_ context.Context, q query.Params) ([]models.Post, int, error) {
	s.db.mu.RLock()
	type match struct {
		post models.Post
		seq  int64
	}
	var matches []match
	for _, row := range s.db.posts {
		p := s.resolve(row, false)
		if q.Matches(&p) {
			matches = append(matches, match{post: p, seq: row.seq})
		}
	}
	s.db.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if !a.post.CreatedAt.Equal(b.post.CreatedAt) {
			return a.post.CreatedAt.After(b.post.CreatedAt)
		}
		return a.seq > b.seq
	})

	total := len(matches)
	posts := []models.Post{}
	for i := max(q.Offset(), 0); i < total && len(posts) < q.PageSize; i++ {
		posts = append(posts, matches[i].post)
	}
	return posts, total, nil
}

func (s *Posts) FindByID(_ context.Context, id uuid.UUID) (*models.Post, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	row, ok := s.db.posts[id]
	if !ok {
		return nil, nil
	}
	p := s.resolve(row, true)
	return &p, nil
}

func (s *Posts) SlugTaken(_ context.Context, slug string, exclude uuid.UUID) (bool, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	return s.slugTaken(slug, exclude), nil
}

func (s *Posts) slugTaken(slug string, exclude uuid.UUID) bool {
	for id, row := range s.db.posts {
		if id != exclude && row.post.Slug == slug {
			return true
		}
	}
	return false
}

func (s *Posts) Create(_ context.Context, p *models.Post) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if s.slugTaken(p.Slug, uuid.Nil) {
		return store.ErrSlugTaken
	}
	if _, ok := s.db.categories[p.Category.ID]; !ok {
		return store.ErrUnknownCategory
	}

	p.ID = uuid.New()
	p.CreatedAt = s.db.now()
	p.UpdatedAt = p.CreatedAt
	if p.Tags == nil {
		p.Tags = []string{}
	}

	row := &postRow{post: *p, seq: s.db.nextSeq()}
	row.post.Tags = append([]string{}, p.Tags...)
	row.post.Comments = nil
	s.db.posts[p.ID] = row
	return nil
}

func (s *Posts) Update(_ context.Context, p *models.Post) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	row, ok := s.db.posts[p.ID]
	if !ok {
		return store.ErrNotFound
	}
	if s.slugTaken(p.Slug, p.ID) {
		return store.ErrSlugTaken
	}
	if _, ok := s.db.categories[p.Category.ID]; !ok {
		return store.ErrUnknownCategory
	}

	updated := row.post
	updated.Title = p.Title
	updated.Slug = p.Slug
	updated.Content = p.Content
	updated.Excerpt = p.Excerpt
	updated.Category = models.CategorySummary{ID: p.Category.ID}
	updated.FeaturedImage = p.FeaturedImage
	updated.Tags = append([]string{}, p.Tags...)
	updated.Status = p.Status
	updated.UpdatedAt = s.db.now()

	row.post = updated
	p.UpdatedAt = updated.UpdatedAt
	return nil
}

func (s *Posts) Delete(_ context.Context, id uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.posts[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.db.posts, id)
	return nil
}

func (s *Posts) AddComment(_ context.Context, c *models.Comment) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	row, ok := s.db.posts[c.PostID]
	if !ok {
		return store.ErrNotFound
	}
	c.ID = uuid.New()
	c.CreatedAt = s.db.now()

	stored := *c
	stored.Author = models.UserSummary{ID: c.Author.ID}
	row.comments = append(row.comments, stored)
	return nil
}
