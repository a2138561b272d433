// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package query turns list parameters (page, page size, category, search,
// status) into a normalized filter. Both storage backends evaluate the same
// filter: PostgreSQL through Where, the in-memory store through Matches.
package query

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"inkpress/internal/models"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Params describes one page of a filtered post listing.
type Params struct {
	Page     int
	PageSize int
	Category string // category UUID or category slug
	Search   string
	Status   models.PostStatus
}

// FromValues reads list parameters from a URL query. Missing or non-numeric
// numbers fall back to defaults; the result is normalized.
func FromValues(v url.Values) Params {
	p := Params{
		Page:     atoiOr(v.Get("page"), DefaultPage),
		PageSize: atoiOr(firstNonEmpty(v.Get("limit"), v.Get("pageSize")), DefaultPageSize),
		Category: v.Get("category"),
		Search:   v.Get("search"),
		Status:   models.PostStatus(v.Get("status")),
	}
	return p.Normalize()
}

// Normalize clamps page and page size into range and applies defaults.
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	// Offset must stay representable.
	if maxPage := math.MaxInt / p.PageSize; p.Page > maxPage {
		p.Page = maxPage
	}
	p.Category = strings.TrimSpace(p.Category)
	p.Search = strings.TrimSpace(p.Search)
	if p.Status == "" {
		p.Status = models.PostStatusPublished
	}
	return p
}

// Offset returns the number of rows to skip for the current page. Params
// that have not been normalized yield 0.
func (p Params) Offset() int {
	if p.Page < 1 || p.PageSize < 1 || p.Page > math.MaxInt/p.PageSize {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// TotalPages returns ceil(total / pageSize).
func TotalPages(total, pageSize int) int {
	if pageSize < 1 || total <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// CategoryID returns the category filter as a UUID when it parses as one.
func (p Params) CategoryID() (uuid.UUID, bool) {
	id, err := uuid.Parse(p.Category)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// Where builds the SQL predicate and its positional arguments. It expects the
// posts table aliased as p and categories as c.
func (p Params) Where() (string, []any) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	conds = append(conds, "p.status = "+arg(string(p.Status)))

	if p.Category != "" {
		if id, ok := p.CategoryID(); ok {
			conds = append(conds, "p.category_id = "+arg(id))
		} else {
			conds = append(conds, "c.slug = "+arg(p.Category))
		}
	}

	if p.Search != "" {
		n := arg("%" + EscapeLike(p.Search) + "%")
		conds = append(conds, fmt.Sprintf(
			`(p.title ILIKE %[1]s ESCAPE '\' OR p.content ILIKE %[1]s ESCAPE '\' OR EXISTS (SELECT 1 FROM unnest(p.tags) AS t(tag) WHERE t.tag ILIKE %[1]s ESCAPE '\'))`,
			n,
		))
	}

	return strings.Join(conds, " AND "), args
}

// Matches reports whether post satisfies the filter. A category filter that
// is not a UUID is compared against the post's category slug.
func (p Params) Matches(post *models.Post) bool {
	if post.Status != p.Status {
		return false
	}
	if p.Category != "" {
		if id, ok := p.CategoryID(); ok {
			if post.Category.ID != id {
				return false
			}
		} else if post.Category.Slug != p.Category {
			return false
		}
	}
	if p.Search != "" {
		needle := strings.ToLower(p.Search)
		if !containsFold(post.Title, needle) && !containsFold(post.Content, needle) && !anyContainsFold(post.Tags, needle) {
			return false
		}
	}
	return true
}

// CacheKey returns a canonical representation suitable for cache keys.
func (p Params) CacheKey() string {
	v := url.Values{}
	v.Set("page", strconv.Itoa(p.Page))
	v.Set("limit", strconv.Itoa(p.PageSize))
	v.Set("status", string(p.Status))
	if p.Category != "" {
		v.Set("category", p.Category)
	}
	if p.Search != "" {
		v.Set("search", p.Search)
	}
	return v.Encode()
}

// EscapeLike escapes LIKE metacharacters so user input matches literally.
func EscapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func containsFold(s, lowerNeedle string) bool {
	return strings.Contains(strings.ToLower(s), lowerNeedle)
}

func anyContainsFold(items []string, lowerNeedle string) bool {
	for _, s := range items {
		if containsFold(s, lowerNeedle) {
			return true
		}
	}
	return false
}

func atoiOr(s string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fallback
	}
	return n
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
