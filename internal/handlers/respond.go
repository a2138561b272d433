// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the JSON API. Handlers decode requests, call
// the service layer and translate its errors into HTTP responses.
package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"inkpress/internal/authz"
	"inkpress/internal/errs"
	"inkpress/internal/middleware"
)

// maxBodySize caps JSON request bodies (1 MB).
const maxBodySize = 1 << 20

// marshal encodes v without escaping <, > and &, since rendered HTML is
// part of the payload.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// writeJSON serializes v with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := marshal(v)
	if err != nil {
		slog.Error("encode response failed", "error", err)
		writeRaw(w, http.StatusInternalServerError, []byte(`{"message":"Server error"}`))
		return
	}
	writeRaw(w, status, body)
}

// writeRaw sends an already encoded JSON body.
func writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(body)
}

// writeError maps err to its HTTP status and writes {"message": ...}.
// Internal causes are logged and never sent to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	e := errs.From(err)
	if e.StatusCode >= http.StatusInternalServerError {
		slog.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
	}
	writeJSON(w, e.StatusCode, map[string]string{"message": e.Message})
}

// writeMessage sends a bare {"message": msg} body.
func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// decodeJSON reads a JSON request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return &errs.Error{Kind: errs.KindValidation, StatusCode: http.StatusRequestEntityTooLarge, Message: "Request body too large"}
		case errors.Is(err, io.EOF):
			return errs.Validation("Request body is required")
		default:
			return errs.Validation("Invalid request body")
		}
	}
	return nil
}

// pathID parses the {id} URL parameter. A malformed id cannot name an
// existing resource, so it is reported as notFound.
func pathID(r *http.Request, notFound string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, errs.NotFound(notFound)
	}
	return id, nil
}

// callerOf returns the authenticated caller. Routes that call it sit behind
// RequireAuth.
func callerOf(r *http.Request) authz.Caller {
	c, _ := middleware.CallerFromCtx(r.Context())
	return c
}
