// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package authz holds the ownership rules that gate post mutations.
package authz

import (
	"github.com/google/uuid"

	"inkpress/internal/models"
)

// Caller is the authenticated identity behind a request.
type Caller struct {
	ID        uuid.UUID
	Username  string
	Role      models.Role
	SessionID string
}

// IsAdmin returns true if the caller has the admin role.
func (c Caller) IsAdmin() bool {
	return c.Role == models.RoleAdmin
}

// CanMutate reports whether caller may update or delete a post written by authorID.
func CanMutate(caller Caller, authorID uuid.UUID) bool {
	return caller.ID == authorID || caller.IsAdmin()
}
