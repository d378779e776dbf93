package handler

// todo.go implements the /todos endpoints. Every lookup is scoped to the
// caller, so another user's todo answers 404 exactly like a missing one.

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/todo-api/internal/events"
	"github.com/iliyamo/todo-api/internal/model"
	"github.com/iliyamo/todo-api/internal/repository"
	"github.com/iliyamo/todo-api/internal/validate"
)

// TodoHandler serves the caller's todos.
type TodoHandler struct {
	Base
	Todos *repository.TodoRepo
}

func NewTodoHandler(base Base, todos *repository.TodoRepo) *TodoHandler {
	return &TodoHandler{Base: base, Todos: todos}
}

type createTodoReq struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	DueTime     string  `json:"due_time"`
	Status      *string `json:"status"`
}

type updateTodoReq struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	DueTime     *string `json:"due_time"`
	Status      *string `json:"status"`
}

func todoEvent(typ string, t model.Todo) events.Event {
	ev := events.New(typ, t.UserID)
	ev.TodoID = t.ID
	ev.Title = t.Title
	ev.Status = string(t.Status)
	return ev
}

func deletedMessage(id uint64) echo.Map {
	return echo.Map{"msg": fmt.Sprintf("Successfully deleted record number: %d", id)}
}

// List handles GET /todos and GET /user/todos.
func (h *TodoHandler) List(c echo.Context) error {
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

// Get handles GET /todos/:id.
func (h *TodoHandler) Get(c echo.Context) error {
	uid, ok := caller(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, msgUnauthorized)
	}
	id, ok := idParam(c)
	if !ok {
		return badParameter(c, "id: must be a positive integer")
	}
	ctx, cancel := h.dbContext(c)
	defer cancel()

	t, err := h.Todos.GetByIDAndOwner(ctx, id, uid)
	if errors.Is(err, repository.ErrNotFound) {
		return fail(c, http.StatusNotFound, msgNotFound)
	}
	if err != nil {
		return h.internalError(c, "get todo", err)
	}
	return c.JSON(http.StatusOK, t)
}

// Create handles POST /todos. Status defaults to "not started".
func (h *TodoHandler) Create(c echo.Context) error {
	uid, ok := caller(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, msgUnauthorized)
	}
	var req createTodoReq
	if err := bindBody(c, validate.TodoCreate, &req); err != nil {
		return h.bindFailed(c, err)
	}
	due, err := model.ParseTimestamp(req.DueTime)
	if err != nil {
		return badParameter(c, "due_time: "+err.Error())
	}
	t := model.Todo{
		Title:       req.Title,
		Description: req.Description,
		DueTime:     due,
		Status:      model.StatusNotStarted,
		UserID:      uid,
	}
	if req.Status != nil {
		t.Status = model.Status(*req.Status)
	}
	if !t.Status.Valid() {
		return badParameter(c, "status: unknown value")
	}

	ctx, cancel := h.dbContext(c)
	defer cancel()
	if err := h.Todos.Create(ctx, &t); err != nil {
		return h.internalError(c, "create todo", err)
	}
	h.publish(c, todoEvent(events.TodoCreated, t))
	return c.JSON(http.StatusCreated, t)
}

// Update handles PUT /todos/:id with any non-empty subset of the fields.
func (h *TodoHandler) Update(c echo.Context) error {
	uid, ok := caller(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, msgUnauthorized)
	}
	id, ok := idParam(c)
	if !ok {
		return badParameter(c, "id: must be a positive integer")
	}
	var req updateTodoReq
	if err := bindBody(c, validate.TodoUpdate, &req); err != nil {
		return h.bindFailed(c, err)
	}

	patch := repository.TodoPatch{Title: req.Title, Description: req.Description}
	if req.DueTime != nil {
		due, err := model.ParseTimestamp(*req.DueTime)
		if err != nil {
			return badParameter(c, "due_time: "+err.Error())
		}
		patch.DueTime = &due
	}
	if req.Status != nil {
		s := model.Status(*req.Status)
		if !s.Valid() {
			return badParameter(c, "status: unknown value")
		}
		patch.Status = &s
	}
	if patch.Empty() {
		return badParameter(c, "no fields to update")
	}

	ctx, cancel := h.dbContext(c)
	defer cancel()
	t, err := h.Todos.UpdateByIDAndOwner(ctx, id, uid, patch)
	if errors.Is(err, repository.ErrNotFound) {
		return fail(c, http.StatusNotFound, msgNotFound)
	}
	if err != nil {
		return h.internalError(c, "update todo", err)
	}
	h.publish(c, todoEvent(events.TodoUpdated, t))
	return c.JSON(http.StatusOK, t)
}

// Delete handles DELETE /todos/:id.
func (h *TodoHandler) Delete(c echo.Context) error {
	uid, ok := caller(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, msgUnauthorized)
	}
	id, ok := idParam(c)
	if !ok {
		return badParameter(c, "id: must be a positive integer")
	}
	ctx, cancel := h.dbContext(c)
	defer cancel()

	err := h.Todos.DeleteByIDAndOwner(ctx, id, uid)
	if errors.Is(err, repository.ErrNotFound) {
		return fail(c, http.StatusNotFound, msgNotFound)
	}
	if err != nil {
		return h.internalError(c, "delete todo", err)
	}
	ev := events.New(events.TodoDeleted, uid)
	ev.TodoID = id
	h.publish(c, ev)
	return c.JSON(http.StatusOK, deletedMessage(id))
}
