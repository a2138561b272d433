// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug derives URL-safe identifiers from post titles and category names.
package slug

import (
	"regexp"
	"strings"
)

var (
	// disallowed matches anything outside lowercase letters, digits, space and hyphen.
	disallowed = regexp.MustCompile(`[^a-z0-9 -]`)
	// whitespace matches runs of spaces left after stripping.
	whitespace = regexp.MustCompile(`\s+`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-+`)
)

// Generate creates a slug from the given string.
// Example: "Hello, World!" → "hello-world"
//
// Leading and trailing hyphens are kept, so " Go " becomes "-go-".
func Generate(s string) string {
	result := strings.ToLower(s)
	result = disallowed.ReplaceAllString(result, "")
	result = whitespace.ReplaceAllString(result, "-")
	result = multipleHyphens.ReplaceAllString(result, "-")
	return result
}

// Meaningful reports whether a slug carries at least one letter or digit.
// Titles made only of punctuation derive slugs like "" or "-".
func Meaningful(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
	}) >= 0
}
