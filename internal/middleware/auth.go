// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"inkpress/internal/authz"
	"inkpress/internal/errs"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// CallerKey is the context key for the authenticated caller.
	CallerKey contextKey = "caller"
)

// Authenticator resolves a bearer token to the caller it belongs to.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (authz.Caller, error)
}

// LoadIdentity resolves the request's bearer token, if any, and stores the
// caller in the request context. Downstream handlers can access it via
// CallerFromCtx(). This middleware does NOT enforce authentication.
func LoadIdentity(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			caller, err := auth.Authenticate(r.Context(), raw)
			if err != nil {
				if errs.KindOf(err) == errs.KindInternal {
					// Session backend trouble: treat as unauthenticated.
					slog.Error("identity lookup failed", "path", r.URL.Path, "error", err)
				}
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
		})
	}
}

// RequireAuth rejects requests without an authenticated caller with 401.
// Must be applied after LoadIdentity in the middleware chain.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CallerFromCtx(r.Context()); !ok {
			msg := "Not authorized, no token"
			if _, hasToken := bearerToken(r); hasToken {
				msg = "Not authorized, token failed"
			}
			writeError(w, http.StatusUnauthorized, msg)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// WithCaller returns a copy of ctx carrying caller.
func WithCaller(ctx context.Context, caller authz.Caller) context.Context {
	return context.WithValue(ctx, CallerKey, caller)
}

// CallerFromCtx extracts the authenticated caller from the request context.
func CallerFromCtx(ctx context.Context) (authz.Caller, bool) {
	caller, ok := ctx.Value(CallerKey).(authz.Caller)
	return caller, ok
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, raw, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}
