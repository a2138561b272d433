// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package errs defines the domain error taxonomy shared by services and
// HTTP handlers. Every failure that reaches a client is an *Error carrying a
// Kind, an HTTP status and a message that is safe to show verbatim.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a domain error.
type Kind string

const (
	KindValidation      Kind = "validation"
	KindNotFound        Kind = "not_found"
	KindForbidden       Kind = "forbidden"
	KindConflict        Kind = "conflict"
	KindUnauthenticated Kind = "unauthenticated"
	KindInternal        Kind = "internal"
)

// Error is a classified domain error.
type Error struct {
	Kind       Kind
	StatusCode int
	Message    string // shown to the client
	Cause      error  // logged, never shown
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is lets errors.Is match on Kind against the sentinel values below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

// Sentinels for errors.Is(err, errs.ErrNotFound) style checks.
var (
	ErrValidation      = &Error{Kind: KindValidation}
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrForbidden       = &Error{Kind: KindForbidden}
	ErrConflict        = &Error{Kind: KindConflict}
	ErrUnauthenticated = &Error{Kind: KindUnauthenticated}
	ErrInternal        = &Error{Kind: KindInternal}
)

// Validation reports malformed or missing input.
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, StatusCode: http.StatusBadRequest, Message: msg}
}

// NotFound reports a referenced entity that does not exist.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, StatusCode: http.StatusNotFound, Message: msg}
}

// BadReference is a NotFound raised by a dangling reference inside a request
// body, which the client fixes by changing its input. It maps to 400.
func BadReference(msg string) *Error {
	return &Error{Kind: KindNotFound, StatusCode: http.StatusBadRequest, Message: msg}
}

// Forbidden reports an authenticated caller lacking permission.
func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, StatusCode: http.StatusForbidden, Message: msg}
}

// Conflict reports a uniqueness violation. The public API answers 400 for
// these, matching the behaviour clients already depend on.
func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, StatusCode: http.StatusBadRequest, Message: msg}
}

// Unauthenticated reports a missing or invalid identity.
func Unauthenticated(msg string) *Error {
	return &Error{Kind: KindUnauthenticated, StatusCode: http.StatusUnauthorized, Message: msg}
}

// Internal wraps an unexpected failure. The cause is kept for logging only.
func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, StatusCode: http.StatusInternalServerError, Message: "Server error", Cause: cause}
}

// KindOf returns the Kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// From converts any error to an *Error, wrapping unclassified ones as Internal.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		if e.StatusCode == 0 {
			c := *e
			c.StatusCode = http.StatusInternalServerError
			return &c
		}
		return e
	}
	return Internal(err)
}

// StatusOf returns the HTTP status err maps to.
func StatusOf(err error) int {
	return From(err).StatusCode
}
