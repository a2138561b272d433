// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler tests.
// Everything runs against the in-memory store and session registry.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"inkpress/internal/middleware"
	"inkpress/internal/models"
	"inkpress/internal/service"
	"inkpress/internal/session"
	"inkpress/internal/store/memory"
	"inkpress/internal/token"
)

// testEnv holds all dependencies for handler tests.
type testEnv struct {
	DB       *memory.DB
	Accounts *service.Accounts
	Uploads  *stubUploader
	Router   http.Handler
}

// newTestEnv wires the handlers onto a router shaped like the production one.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := memory.New()
	issuer, err := token.NewIssuer("handler-test-secret", time.Hour)
	require.NoError(t, err)

	accounts := service.NewAccounts(db.Users(), session.NewMemoryStore(time.Hour), issuer)
	accounts.SetCost(bcrypt.MinCost)

	uploads := &stubUploader{}
	posts := NewPosts(service.NewPosts(db.Posts(), db.Categories()), nil)
	categories := NewCategories(service.NewCategories(db.Categories()), nil)
	auth := NewAuth(accounts)
	upload := NewUpload(uploads)

	r := chi.NewRouter()
	r.Use(middleware.LoadIdentity(accounts))
	r.Route("/api", func(r chi.Router) {
		r.Get("/posts", posts.List)
		r.Get("/posts/{id}", posts.Get)
		r.Get("/categories", categories.List)
		r.Post("/auth/register", auth.Register)
		r.Post("/auth/login", auth.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Post("/posts", posts.Create)
			r.Put("/posts/{id}", posts.Update)
			r.Delete("/posts/{id}", posts.Delete)
			r.Post("/posts/{id}/comments", posts.AddComment)
			r.Post("/categories", categories.Create)
			r.Post("/auth/logout", auth.Logout)
			r.Get("/auth/me", auth.Me)
			r.Post("/upload", upload.Image)
		})
	})

	return &testEnv{DB: db, Accounts: accounts, Uploads: uploads, Router: r}
}

// do sends a JSON request and returns the recorded response.
func (e *testEnv) do(t *testing.T, method, path string, body any, tok string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	rr := httptest.NewRecorder()
	e.Router.ServeHTTP(rr, req)
	return rr
}

// register creates a member account through the API and returns its token.
func (e *testEnv) register(t *testing.T, username string) (string, *models.User) {
	t.Helper()
	rr := e.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "secret123",
	}, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var res struct {
		Token string       `json:"token"`
		User  *models.User `json:"user"`
	}
	decode(t, rr, &res)
	return res.Token, res.User
}

// admin inserts an admin account directly and logs it in.
func (e *testEnv) admin(t *testing.T) string {
	t.Helper()
	hash, err := e.Accounts.HashPassword("adminpass")
	require.NoError(t, err)
	require.NoError(t, e.DB.Users().Create(context.Background(), &models.User{
		Username: "root", Email: "root@example.com", PasswordHash: hash, Role: models.RoleAdmin,
	}))

	rr := e.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "root@example.com", "password": "adminpass",
	}, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var res struct {
		Token string `json:"token"`
	}
	decode(t, rr, &res)
	return res.Token
}

// category creates a category through the API and returns its id.
func (e *testEnv) category(t *testing.T, tok, name string) string {
	t.Helper()
	rr := e.do(t, http.MethodPost, "/api/categories", map[string]string{"name": name}, tok)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var c models.Category
	decode(t, rr, &c)
	return c.ID.String()
}

// post creates a post through the API and returns the decoded body.
func (e *testEnv) post(t *testing.T, tok string, body map[string]any) models.Post {
	t.Helper()
	rr := e.do(t, http.MethodPost, "/api/posts", body, tok)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var p models.Post
	decode(t, rr, &p)
	return p
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), dst), rr.Body.String())
}

// message extracts the {"message": ...} field of an error response.
func message(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	decode(t, rr, &body)
	return body.Message
}
