package handler

import (
    "errors"    // errors.Is maps repository sentinels
    "net/http"  // HTTP status codes
    "strings"   // email normalization and username derivation

    "github.com/labstack/echo/v4" // Echo framework for HTTP routing

    "github.com/iliyamo/todo-api/internal/auth"       // password hashing and token issuing
    "github.com/iliyamo/todo-api/internal/events"     // domain events
    "github.com/iliyamo/todo-api/internal/model"      // user model
    "github.com/iliyamo/todo-api/internal/repository" // DB repositories
    "github.com/iliyamo/todo-api/internal/validate"   // request body schemas
)

// AuthHandler bundles dependencies for the public auth endpoints.
type AuthHandler struct {
	Base
	Users      *repository.UserRepo
	Tokens     *auth.Issuer
	BcryptCost int
}

func NewAuthHandler(base Base, u *repository.UserRepo, t *auth.Issuer, bcryptCost int) *AuthHandler {
	return &AuthHandler{Base: base, Users: u, Tokens: t, BcryptCost: bcryptCost}
}

// ----- DTOs -----

type registerReq struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Firstname string `json:"firstname"`
	Name      string `json:"name"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type tokenResp struct {
	Token string `json:"token"`
}

// usernameFromEmail derives the account username from the email local part.
func usernameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Register: create the account and return a session token immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := bindBody(c, validate.Register, &req); err != nil {
		return h.bindFailed(c, err)
	}
	email := normalizeEmail(req.Email)
	username := usernameFromEmail(email)

	ctx, cancel := h.dbContext(c)
	defer cancel()

	// Either clash gets the same answer so the response does not reveal which.
	taken, err := h.Users.EmailTaken(ctx, email)
	if err != nil {
		return h.internalError(c, "register lookup", err)
	}
	if !taken {
		if taken, err = h.Users.UsernameTaken(ctx, username); err != nil {
			return h.internalError(c, "register lookup", err)
		}
	}
	if taken {
		return fail(c, http.StatusConflict, msgConflict)
	}

	hash, err := auth.HashPassword(req.Password, h.BcryptCost)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return badParameter(c, "password: too long")
		}
		return h.internalError(c, "hash password", err)
	}

	u := model.User{
		Email:        email,
		PasswordHash: hash,
		Firstname:    strings.TrimSpace(req.Firstname),
		Name:         strings.TrimSpace(req.Name),
		Username:     username,
	}
	if err := h.Users.Create(ctx, &u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) { // lost a race with a concurrent register
			return fail(c, http.StatusConflict, msgConflict)
		}
		return h.internalError(c, "create user", err)
	}

	tok, err := h.Tokens.Issue(u.ID)
	if err != nil {
		return h.internalError(c, "issue token", err)
	}
	h.publish(c, events.New(events.UserRegistered, u.ID))
	return c.JSON(http.StatusCreated, tokenResp{Token: tok.Token})
}

// Login: verify credentials and return a fresh token. Unknown email and wrong
// password are indistinguishable to the client.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bindBody(c, validate.Login, &req); err != nil {
		return h.bindFailed(c, err)
	}

	ctx, cancel := h.dbContext(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusUnauthorized, msgInvalidCredentials)
		}
		return h.internalError(c, "login lookup", err)
	}
	if !auth.VerifyPassword(u.PasswordHash, req.Password) {
		return fail(c, http.StatusUnauthorized, msgInvalidCredentials)
	}

	tok, err := h.Tokens.Issue(u.ID)
	if err != nil {
		return h.internalError(c, "issue token", err)
	}
	return c.JSON(http.StatusOK, tokenResp{Token: tok.Token})
}
