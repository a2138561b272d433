package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"inkpress/internal/authz"
	"inkpress/internal/errs"
	"inkpress/internal/models"

	"github.com/google/uuid"
)

// stubAuth accepts exactly one token.
type stubAuth struct {
	token  string
	caller authz.Caller
	err    error
	calls  int
}

func (s *stubAuth) Authenticate(_ context.Context, raw string) (authz.Caller, error) {
	s.calls++
	if s.err != nil {
		return authz.Caller{}, s.err
	}
	if raw != s.token {
		return authz.Caller{}, errs.Unauthenticated("Not authorized, token failed")
	}
	return s.caller, nil
}

func newStubAuth() *stubAuth {
	return &stubAuth{
		token:  "good-token",
		caller: authz.Caller{ID: uuid.New(), Username: "jane", Role: models.RoleMember, SessionID: "sess-1"},
	}
}

// captureCaller records the caller LoadIdentity placed in the context.
func captureCaller() (http.Handler, *authz.Caller, *bool) {
	var got authz.Caller
	var found bool
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, found = CallerFromCtx(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	return h, &got, &found
}

// okHandler is a simple handler that records whether it was invoked.
func okHandler() (http.Handler, *bool) {
	var called bool
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})
	return h, &called
}

// ---------- CallerFromCtx ----------

func TestCallerFromCtx(t *testing.T) {
	t.Run("returns caller when present", func(t *testing.T) {
		c := authz.Caller{ID: uuid.New(), Username: "jane", Role: models.RoleAdmin}
		got, ok := CallerFromCtx(WithCaller(context.Background(), c))
		if !ok {
			t.Fatal("expected caller to be present")
		}
		if got != c {
			t.Errorf("got %+v, want %+v", got, c)
		}
	})

	t.Run("reports absence", func(t *testing.T) {
		if _, ok := CallerFromCtx(context.Background()); ok {
			t.Error("expected no caller")
		}
	})

	t.Run("ignores wrong type in context", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), CallerKey, "not-a-caller")
		if _, ok := CallerFromCtx(ctx); ok {
			t.Error("expected no caller for wrong type")
		}
	})
}

// ---------- LoadIdentity ----------

func TestLoadIdentity(t *testing.T) {
	tests := []struct {
		name      string
		header    string
		wantFound bool
		wantCalls int
	}{
		{"no header", "", false, 0},
		{"valid bearer", "Bearer good-token", true, 1},
		{"case-insensitive scheme", "bearer good-token", true, 1},
		{"invalid token", "Bearer nope", false, 1},
		{"wrong scheme", "Basic good-token", false, 0},
		{"empty bearer", "Bearer ", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := newStubAuth()
			next, got, found := captureCaller()

			req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			LoadIdentity(auth)(next).ServeHTTP(rr, req)

			if rr.Code != http.StatusOK {
				t.Fatalf("status: got %d, want 200", rr.Code)
			}
			if *found != tt.wantFound {
				t.Errorf("caller found: got %v, want %v", *found, tt.wantFound)
			}
			if tt.wantFound && got.ID != auth.caller.ID {
				t.Errorf("caller ID: got %s, want %s", got.ID, auth.caller.ID)
			}
			if auth.calls != tt.wantCalls {
				t.Errorf("Authenticate calls: got %d, want %d", auth.calls, tt.wantCalls)
			}
		})
	}

	t.Run("backend failure continues unauthenticated", func(t *testing.T) {
		auth := newStubAuth()
		auth.err = errs.Internal(errors.New("valkey down"))
		next, _, found := captureCaller()

		req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
		req.Header.Set("Authorization", "Bearer good-token")
		rr := httptest.NewRecorder()
		LoadIdentity(auth)(next).ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Errorf("status: got %d, want 200", rr.Code)
		}
		if *found {
			t.Error("expected no caller after backend failure")
		}
	})
}

// ---------- RequireAuth ----------

func TestRequireAuth(t *testing.T) {
	t.Run("passes through with caller", func(t *testing.T) {
		next, called := okHandler()
		req := httptest.NewRequest(http.MethodPost, "/api/posts", nil)
		req = req.WithContext(WithCaller(req.Context(), authz.Caller{ID: uuid.New()}))
		rr := httptest.NewRecorder()

		RequireAuth(next).ServeHTTP(rr, req)

		if !*called {
			t.Error("next handler was not called")
		}
		if rr.Code != http.StatusOK {
			t.Errorf("status: got %d, want 200", rr.Code)
		}
	})

	tests := []struct {
		name    string
		header  string
		wantMsg string
	}{
		{"no token", "", `"message":"Not authorized, no token"`},
		{"rejected token", "Bearer nope", `"message":"Not authorized, token failed"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, called := okHandler()
			req := httptest.NewRequest(http.MethodPost, "/api/posts", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()

			LoadIdentity(newStubAuth())(RequireAuth(next)).ServeHTTP(rr, req)

			if *called {
				t.Error("next handler should not be called")
			}
			if rr.Code != http.StatusUnauthorized {
				t.Errorf("status: got %d, want 401", rr.Code)
			}
			if body := rr.Body.String(); !strings.Contains(body, tt.wantMsg) {
				t.Errorf("body: got %q, want it to contain %s", body, tt.wantMsg)
			}
		})
	}
}
