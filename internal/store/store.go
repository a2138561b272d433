// Package store provides PostgreSQL access for users, categories and posts.
// Each store struct wraps a *sql.DB and exposes typed, context-aware query
// methods. Lookups by id return (nil, nil) when nothing matches.
package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned by mutations whose target row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrSlugTaken is returned when a post slug collides with another post.
	ErrSlugTaken = errors.New("slug already taken")

	// ErrUnknownCategory is returned when a post references a category that
	// does not exist.
	ErrUnknownCategory = errors.New("unknown category")

	// ErrDuplicateEmail and ErrDuplicateUsername are returned when a new
	// account collides with an existing one.
	ErrDuplicateEmail    = errors.New("email already in use")
	ErrDuplicateUsername = errors.New("username already taken")
)

// PostgreSQL SQLSTATE codes the stores translate.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// pgError returns the PostgreSQL error wrapped in err, if any.
func pgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

func isUniqueViolation(err error, constraint string) bool {
	pgErr, ok := pgError(err)
	return ok && pgErr.Code == codeUniqueViolation && (constraint == "" || pgErr.ConstraintName == constraint)
}

func isForeignKeyViolation(err error) bool {
	pgErr, ok := pgError(err)
	return ok && pgErr.Code == codeForeignKeyViolation
}
