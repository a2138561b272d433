package handlers

import (
	"net/http"

	"inkpress/internal/cache"
	"inkpress/internal/service"
)

// Categories groups the category registry handlers.
type Categories struct {
	svc   *service.Categories
	cache *cache.ResponseCache
}

// NewCategories creates the category handlers. A nil cache disables
// response caching.
func NewCategories(svc *service.Categories, rc *cache.ResponseCache) *Categories {
	return &Categories{svc: svc, cache: rc}
}

// List handles GET /api/categories.
func (h *Categories) List(w http.ResponseWriter, r *http.Request) {
	key := cache.CategoriesKey()
	if body, ok := h.cache.Get(r.Context(), key); ok {
		writeRaw(w, http.StatusOK, body)
		return
	}

	list, err := h.svc.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	body, err := marshal(list)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.cache.Set(r.Context(), key, body)
	writeRaw(w, http.StatusOK, body)
}

// Create handles POST /api/categories.
func (h *Categories) Create(w http.ResponseWriter, r *http.Request) {
	var in service.CategoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	c, err := h.svc.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.cache.InvalidateCategories(r.Context())
	writeJSON(w, http.StatusCreated, c)
}
