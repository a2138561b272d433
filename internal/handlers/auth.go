package handlers

import (
	"net/http"

	"inkpress/internal/service"
)

// Auth groups the registration and session handlers.
type Auth struct {
	accounts *service.Accounts
}

// NewAuth creates a new Auth handler group.
func NewAuth(accounts *service.Accounts) *Auth {
	return &Auth{accounts: accounts}
}

// Register handles POST /api/auth/register.
func (a *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := a.accounts.Register(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// Login handles POST /api/auth/login.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var in service.LoginInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := a.accounts.Login(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Logout destroys the caller's session.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.accounts.Logout(r.Context(), callerOf(r)); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Logged out successfully")
}

// Me returns the caller's account.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	u, err := a.accounts.Me(r.Context(), callerOf(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
