package handler

import (
	"errors"
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/todo-api/internal/auth"
	"github.com/iliyamo/todo-api/internal/events"
	"github.com/iliyamo/todo-api/internal/model"
	"github.com/iliyamo/todo-api/internal/repository"
	"github.com/iliyamo/todo-api/internal/validate"
)

// minUsernameLen applies after trimming; the schema checks the raw value.
const minUsernameLen = 3

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// UserHandler serves the caller's own profile. A profile that is not the
// caller's answers 404.
type UserHandler struct {
	Base
	Users      *repository.UserRepo
	Todos      *repository.TodoRepo
	BcryptCost int
}

func NewUserHandler(base Base, users *repository.UserRepo, todos *repository.TodoRepo, bcryptCost int) *UserHandler {
	return &UserHandler{Base: base, Users: users, Todos: todos, BcryptCost: bcryptCost}
}

type updateUserReq struct {
	Email     *string `json:"email"`
	Password  *string `json:"password"`
	Firstname *string `json:"firstname"`
	Name      *string `json:"name"`
	Username  *string `json:"username"`
}

// Me handles GET /user.
func (h *UserHandler) Me(c echo.Context) error {
	uid, ok := caller(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, msgUnauthorized)
	}
	ctx, cancel := h.dbContext(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if errors.Is(err, repository.ErrNotFound) {
		return fail(c, http.StatusNotFound, msgNotFound)
	}
	if err != nil {
		return h.internalError(c, "get user", err)
	}
	return c.JSON(http.StatusOK, u)
}

// MyTodos handles GET /user/todos.
func (h *UserHandler) MyTodos(c echo.Context) error {
	uid, ok := caller(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, msgUnauthorized)
	}
	ctx, cancel := h.dbContext(c)
	defer cancel()

	list, err := h.Todos.ListByOwner(ctx, uid)
	if err != nil {
		return h.internalError(c, "list todos", err)
	}
	return c.JSON(http.StatusOK, list)
}

// Get handles GET /users/:id where :id is a numeric id or an email.
func (h *UserHandler) Get(c echo.Context) error {
	uid, ok := caller(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, msgUnauthorized)
	}
	ctx, cancel := h.dbContext(c)
	defer cancel()

	var (
		u   model.User
		err error
	)
	if id, isID := idParam(c); isID {
		if id != uid {
			return fail(c, http.StatusNotFound, msgNotFound)
		}
		u, err = h.Users.GetByID(ctx, id)
	} else if email := normalizeEmail(c.Param("id")); emailPattern.MatchString(email) {
		u, err = h.Users.GetByEmail(ctx, email)
		if err == nil && u.ID != uid {
			err = repository.ErrNotFound
		}
	} else {
		return fail(c, http.StatusNotFound, msgNotFound)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return fail(c, http.StatusNotFound, msgNotFound)
	}
	if err != nil {
		return h.internalError(c, "get user", err)
	}
	return c.JSON(http.StatusOK, u)
}

// Update handles PUT /users/:id with any non-empty subset of the profile
// fields. A new password is re-hashed before it is stored.
func (h *UserHandler) Update(c echo.Context) error {
	uid, ok := caller(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, msgUnauthorized)
	}
	var req updateUserReq
	if err := bindBody(c, validate.UserUpdate, &req); err != nil {
		return h.bindFailed(c, err)
	}
	if id, isID := idParam(c); !isID || id != uid {
		return fail(c, http.StatusNotFound, msgNotFound)
	}

	patch := repository.UserPatch{
		Firstname: trimmed(req.Firstname),
		Name:      trimmed(req.Name),
		Username:  trimmed(req.Username),
	}
	if patch.Username != nil && utf8.RuneCountInString(*patch.Username) < minUsernameLen {
		return badParameter(c, "username: must be at least 3 characters")
	}
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		patch.Email = &email
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password, h.BcryptCost)
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return badParameter(c, "password: too long")
		}
		if err != nil {
			return h.internalError(c, "hash password", err)
		}
		patch.PasswordHash = &hash
	}
	if patch.Empty() {
		return badParameter(c, "no fields to update")
	}

	ctx, cancel := h.dbContext(c)
	defer cancel()
	u, err := h.Users.Update(ctx, uid, patch)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fail(c, http.StatusNotFound, msgNotFound)
	case errors.Is(err, repository.ErrDuplicate):
		return fail(c, http.StatusConflict, msgConflict)
	case err != nil:
		return h.internalError(c, "update user", err)
	}
	return c.JSON(http.StatusOK, u)
}

// Delete handles DELETE /users/:id. The caller's todos go with the account.
func (h *UserHandler) Delete(c echo.Context) error {
	uid, ok := caller(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, msgUnauthorized)
	}
	if id, isID := idParam(c); !isID || id != uid {
		return fail(c, http.StatusNotFound, msgNotFound)
	}
	ctx, cancel := h.dbContext(c)
	defer cancel()

	err := h.Users.Delete(ctx, uid)
	if errors.Is(err, repository.ErrNotFound) {
		return fail(c, http.StatusNotFound, msgNotFound)
	}
	if err != nil {
		return h.internalError(c, "delete user", err)
	}
	h.publish(c, events.New(events.UserDeleted, uid))
	return c.JSON(http.StatusOK, deletedMessage(uid))
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
