package handlers

import (
	"net/http"

	"inkpress/internal/cache"
	"inkpress/internal/models"
	"inkpress/internal/query"
	"inkpress/internal/service"
)

const msgPostNotFound = "Post not found"

// postDetail always carries a comments array, even when empty. Listings
// use models.Post directly and omit it.
type postDetail struct {
	*models.Post
	Comments []models.Comment `json:"comments"`
}

func detailOf(p *models.Post) postDetail {
	comments := p.Comments
	if comments == nil {
		comments = []models.Comment{}
	}
	return postDetail{Post: p, Comments: comments}
}

// Posts groups the post and comment handlers.
type Posts struct {
	svc   *service.Posts
	cache *cache.ResponseCache
}

// NewPosts creates the post handler group. rc may be nil.
func NewPosts(svc *service.Posts, rc *cache.ResponseCache) *Posts {
	return &Posts{svc: svc, cache: rc}
}

// List handles GET /api/posts.
func (h *Posts) List(w http.ResponseWriter, r *http.Request) {
	q := query.FromValues(r.URL.Query())
	key := cache.PostListKey(q.CacheKey())
	if body, ok := h.cache.Get(r.Context(), key); ok {
		writeRaw(w, http.StatusOK, body)
		return
	}

	page, err := h.svc.List(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeCached(w, r, key, page)
}

// Get handles GET /api/posts/{id}.
func (h *Posts) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, msgPostNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}

	key := cache.PostKey(id)
	if body, ok := h.cache.Get(r.Context(), key); ok {
		writeRaw(w, http.StatusOK, body)
		return
	}

	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeCached(w, r, key, detailOf(p))
}

// Create handles POST /api/posts.
func (h *Posts) Create(w http.ResponseWriter, r *http.Request) {
	var in service.PostInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	p, err := h.svc.Create(r.Context(), in, callerOf(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.cache.InvalidatePosts(r.Context())
	writeJSON(w, http.StatusCreated, detailOf(p))
}

// Update handles PUT /api/posts/{id}.
func (h *Posts) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, msgPostNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in service.PostInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	p, err := h.svc.Update(r.Context(), id, in, callerOf(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.cache.InvalidatePosts(r.Context())
	writeJSON(w, http.StatusOK, detailOf(p))
}

// Delete handles DELETE /api/posts/{id}.
func (h *Posts) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, msgPostNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.svc.Delete(r.Context(), id, callerOf(r)); err != nil {
		writeError(w, r, err)
		return
	}
	h.cache.InvalidatePosts(r.Context())
	writeMessage(w, http.StatusOK, "Post deleted successfully")
}

// AddComment handles POST /api/posts/{id}/comments.
func (h *Posts) AddComment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, msgPostNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in service.CommentInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	c, err := h.svc.AddComment(r.Context(), id, in, callerOf(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.cache.InvalidatePosts(r.Context())
	writeJSON(w, http.StatusCreated, c)
}

// writeCached encodes v, stores it under key and writes it.
func (h *Posts) writeCached(w http.ResponseWriter, r *http.Request, key string, v any) {
	body, err := marshal(v)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.cache.Set(r.Context(), key, body)
	writeRaw(w, http.StatusOK, body)
}
