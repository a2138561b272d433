// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"inkpress/internal/authz"
	"inkpress/internal/errs"
	"inkpress/internal/models"
	"inkpress/internal/session"
	"inkpress/internal/store"
	"inkpress/internal/token"
)

const (
	msgEmailTaken         = "Email already in use"
	msgUsernameTaken      = "Username already taken"
	msgInvalidCredentials = "Invalid credentials"
	msgInvalidToken       = "Not authorized, token failed"
)

// RegisterInput is the body of a registration request.
type RegisterInput struct {
	Username string `json:"username" validate:"required,max=50"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// LoginInput is the body of a login request.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is returned by register and login.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Accounts is the credential store: it registers users, verifies passwords,
// and ties issued tokens to server-side sessions.
type Accounts struct {
	users    UserRepository
	sessions SessionRegistry
	tokens   *token.Issuer
	cost     int
}

// NewAccounts creates an Accounts service.
func NewAccounts(users UserRepository, sessions SessionRegistry, tokens *token.Issuer) *Accounts {
	return &Accounts{users: users, sessions: sessions, tokens: tokens, cost: bcrypt.DefaultCost}
}

// SetCost overrides the bcrypt work factor. Values outside bcrypt's range
// are ignored.
func (a *Accounts) SetCost(cost int) {
	if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
		a.cost = cost
	}
}

// HashPassword returns the bcrypt hash of password using the service's cost.
func (a *Accounts) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Register creates a member account and logs it in.
func (a *Accounts) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateInput(in); err != nil {
		return nil, err
	}

	if u, err := a.users.FindByEmail(ctx, in.Email); err != nil {
		return nil, errs.Internal(err)
	} else if u != nil {
		return nil, errs.Conflict(msgEmailTaken)
	}
	if u, err := a.users.FindByUsername(ctx, in.Username); err != nil {
		return nil, errs.Internal(err)
	} else if u != nil {
		return nil, errs.Conflict(msgUsernameTaken)
	}

	hash, err := a.HashPassword(in.Password)
	if err != nil {
		return nil, errs.Internal(err)
	}

	u := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         models.RoleMember,
	}
	switch err := a.users.Create(ctx, u); {
	case errors.Is(err, store.ErrDuplicateEmail):
		return nil, errs.Conflict(msgEmailTaken)
	case errors.Is(err, store.ErrDuplicateUsername):
		return nil, errs.Conflict(msgUsernameTaken)
	case err != nil:
		return nil, errs.Internal(err)
	}

	slog.Info("user registered", "user_id", u.ID, "username", u.Username)
	return a.openSession(ctx, u)
}

// Login verifies credentials and opens a new session.
func (a *Accounts) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateInput(in); err != nil {
		return nil, err
	}

	u, err := a.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, errs.Internal(err)
	}
	if u == nil || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)) != nil {
		slog.Warn("failed login attempt", "email", in.Email)
		return nil, errs.Unauthenticated(msgInvalidCredentials)
	}

	slog.Info("user logged in", "user_id", u.ID)
	return a.openSession(ctx, u)
}

func (a *Accounts) openSession(ctx context.Context, u *models.User) (*AuthResult, error) {
	sid, err := a.sessions.Create(ctx, &session.Data{UserID: u.ID, Username: u.Username, Role: u.Role})
	if err != nil {
		return nil, errs.Internal(err)
	}
	tok, err := a.tokens.Issue(u.ID, u.Role, sid)
	if err != nil {
		a.sessions.Destroy(ctx, sid)
		return nil, errs.Internal(err)
	}
	return &AuthResult{Token: tok, User: u}, nil
}

// Logout ends the caller's session; tokens issued for it stop working.
func (a *Accounts) Logout(ctx context.Context, caller authz.Caller) error {
	if err := a.sessions.Destroy(ctx, caller.SessionID); err != nil {
		return errs.Internal(err)
	}
	slog.Info("user logged out", "user_id", caller.ID)
	return nil
}

// Me returns the caller's account.
func (a *Accounts) Me(ctx context.Context, caller authz.Caller) (*models.User, error) {
	u, err := a.users.FindByID(ctx, caller.ID)
	if err != nil {
		return nil, errs.Internal(err)
	}
	if u == nil {
		return nil, errs.NotFound("User not found")
	}
	return u, nil
}

// Authenticate resolves a bearer token to its caller. The token must verify
// and its session must still exist.
func (a *Accounts) Authenticate(ctx context.Context, raw string) (authz.Caller, error) {
	claims, err := a.tokens.Parse(raw)
	if err != nil {
		return authz.Caller{}, errs.Unauthenticated(msgInvalidToken)
	}

	data, err := a.sessions.Get(ctx, claims.SessionID())
	if err != nil {
		return authz.Caller{}, errs.Internal(err)
	}
	if data == nil || data.UserID != claims.UserID {
		return authz.Caller{}, errs.Unauthenticated(msgInvalidToken)
	}

	return authz.Caller{
		ID:        data.UserID,
		Username:  data.Username,
		Role:      data.Role,
		SessionID: claims.SessionID(),
	}, nil
}
