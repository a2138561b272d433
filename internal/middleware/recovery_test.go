// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRecoverer(t *testing.T) {
	panics := map[string]any{
		"string": "something went wrong",
		"int":    42,
		"error":  errors.New("db exploded"),
	}

	for name, value := range panics {
		t.Run(name, func(t *testing.T) {
			logs := captureLogs(t)
			inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				panic(value)
			})

			rr := httptest.NewRecorder()
			RequestID(Recoverer(inner)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/posts", nil))

			if rr.Code != http.StatusInternalServerError {
				t.Errorf("status: got %d, want 500", rr.Code)
			}
			if body := rr.Body.String(); !strings.Contains(body, `"message":"Server error"`) {
				t.Errorf("body: got %q, want the generic JSON error", body)
			}
			if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
				t.Errorf("content-type: got %q", ct)
			}

			entry := lastLog(t, logs)
			if entry["msg"] != "panic recovered" {
				t.Errorf("log msg: got %v", entry["msg"])
			}
			if stack, _ := entry["stack"].(string); !strings.Contains(stack, "goroutine") {
				t.Error("expected a stack trace in the log")
			}
			if id, _ := entry["request_id"].(string); id == "" {
				t.Error("request_id missing from panic log")
			}
		})
	}
}

func TestRecovererPassThrough(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Custom", "kept")
		w.WriteHeader(http.StatusAccepted)
	})

	rr := httptest.NewRecorder()
	Recoverer(inner).ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/api/posts/1", nil))

	if rr.Code != http.StatusAccepted {
		t.Errorf("status: got %d, want 202", rr.Code)
	}
	if rr.Header().Get("X-Custom") != "kept" {
		t.Error("handler headers should pass through")
	}
}

func TestRecovererReraisesAbort(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	})

	defer func() {
		if rec := recover(); rec != http.ErrAbortHandler {
			t.Errorf("expected ErrAbortHandler to propagate, got %v", rec)
		}
	}()
	Recoverer(inner).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}
