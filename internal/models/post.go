// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// PostStatus represents the publishing state of a post.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
)

// ExcerptLength is the number of characters of content used when a post has
// no explicit excerpt.
const ExcerptLength = 200

// Post is a blog entry with its comments embedded.
type Post struct {
	ID            uuid.UUID       `json:"id"`
	Title         string          `json:"title"`
	Slug          string          `json:"slug"`
	Content       string          `json:"content"`
	ContentHTML   string          `json:"contentHtml,omitempty"`
	Excerpt       string          `json:"excerpt"`
	Author        UserSummary     `json:"author"`
	Category      CategorySummary `json:"category"`
	FeaturedImage string          `json:"featuredImage"`
	Tags          []string        `json:"tags"`
	Status        PostStatus      `json:"status"`
	Comments      []Comment       `json:"comments,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// IsPublished returns true if the post is in published status.
func (p *Post) IsPublished() bool {
	return p.Status == PostStatusPublished
}

// Comment is a reader's remark on a post. Comments are append-only.
type Comment struct {
	ID          uuid.UUID   `json:"id"`
	PostID      uuid.UUID   `json:"-"`
	Content     string      `json:"content"`
	ContentHTML string      `json:"contentHtml,omitempty"`
	Author      UserSummary `json:"author"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// DeriveExcerpt returns the first ExcerptLength characters of content.
func DeriveExcerpt(content string) string {
	runes := []rune(content)
	if len(runes) <= ExcerptLength {
		return content
	}
	return string(runes[:ExcerptLength])
}
