package repository

import (
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/todo-api/internal/database/dbtest"
	"github.com/iliyamo/todo-api/internal/model"
)

func newUser(t *testing.T, users *UserRepo) model.User {
	t.Helper()
	email := gofakeit.Email()
	u := model.User{
		Email:        email,
		PasswordHash: "hash",
		Firstname:    gofakeit.FirstName(),
		Name:         gofakeit.LastName(),
		Username:     strings.SplitN(email, "@", 2)[0] + gofakeit.DigitN(6),
	}
	require.NoError(t, users.Create(t.Context(), &u))
	return u
}

func newTodo(t *testing.T, todos *TodoRepo, owner uint64, title string) model.Todo {
	t.Helper()
	td := model.Todo{
		Title:       title,
		Description: gofakeit.Sentence(6),
		DueTime:     model.NewTimestamp(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)),
		UserID:      owner,
	}
	require.NoError(t, todos.Create(t.Context(), &td))
	return td
}

func ptr[T any](v T) *T { return &v }

func TestUserRepo(t *testing.T) {
	t.Parallel()
	db := dbtest.Open(t)
	users := NewUserRepo(db)

	t.Run("Create and lookups", func(t *testing.T) {
		u := newUser(t, users)
		assert.NotZero(t, u.ID)
		assert.False(t, u.CreatedAt.IsZero())

		byID, err := users.GetByID(t.Context(), u.ID)
		require.NoError(t, err)
		assert.Equal(t, u, byID)

		byEmail, err := users.GetByEmail(t.Context(), u.Email)
		require.NoError(t, err)
		assert.Equal(t, u.ID, byEmail.ID)

		taken, err := users.EmailTaken(t.Context(), u.Email)
		require.NoError(t, err)
		assert.True(t, taken)
		taken, err = users.UsernameTaken(t.Context(), u.Username)
		require.NoError(t, err)
		assert.True(t, taken)
		taken, err = users.EmailTaken(t.Context(), "nobody@example.invalid")
		require.NoError(t, err)
		assert.False(t, taken)

		_, err = users.GetByID(t.Context(), 999999)
		require.ErrorIs(t, err, ErrNotFound)
		_, err = users.GetByEmail(t.Context(), "nobody@example.invalid")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Create duplicate", func(t *testing.T) {
		u := newUser(t, users)
		dup := model.User{Email: u.Email, PasswordHash: "h", Firstname: "F", Name: "N", Username: "other" + gofakeit.DigitN(8)}
		require.ErrorIs(t, users.Create(t.Context(), &dup), ErrDuplicate)

		dup = model.User{Email: gofakeit.Email(), PasswordHash: "h", Firstname: "F", Name: "N", Username: u.Username}
		require.ErrorIs(t, users.Create(t.Context(), &dup), ErrDuplicate)
	})

	t.Run("Update", func(t *testing.T) {
		u := newUser(t, users)
		updated, err := users.Update(t.Context(), u.ID, UserPatch{Name: ptr("Renamed"), Firstname: ptr("First")})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", updated.Name)
		assert.Equal(t, "First", updated.Firstname)
		assert.Equal(t, u.Email, updated.Email)

		_, err = users.Update(t.Context(), 999999, UserPatch{Name: ptr("x")})
		require.ErrorIs(t, err, ErrNotFound)

		other := newUser(t, users)
		_, err = users.Update(t.Context(), u.ID, UserPatch{Email: ptr(other.Email)})
		require.ErrorIs(t, err, ErrDuplicate)

		_, err = users.Update(t.Context(), u.ID, UserPatch{})
		require.Error(t, err)
		assert.True(t, UserPatch{}.Empty())
	})

	t.Run("Delete cascades todos", func(t *testing.T) {
		todos := NewTodoRepo(db)
		u := newUser(t, users)
		keep := newUser(t, users)
		newTodo(t, todos, u.ID, "a")
		newTodo(t, todos, u.ID, "b")
		kept := newTodo(t, todos, keep.ID, "c")

		require.NoError(t, users.Delete(t.Context(), u.ID))

		_, err := users.GetByID(t.Context(), u.ID)
		require.ErrorIs(t, err, ErrNotFound)

		var orphans int
		require.NoError(t, db.QueryRowContext(t.Context(),
			"SELECT COUNT(*) FROM todo WHERE user_id = ?", u.ID).Scan(&orphans))
		assert.Zero(t, orphans)

		list, err := todos.ListByOwner(t.Context(), keep.ID)
		require.NoError(t, err)
		assert.Equal(t, []model.Todo{kept}, list)

		require.ErrorIs(t, users.Delete(t.Context(), u.ID), ErrNotFound)
	})
}

func TestTodoRepo(t *testing.T) {
	t.Parallel()
	db := dbtest.Open(t)
	users := NewUserRepo(db)
	todos := NewTodoRepo(db)

	owner := newUser(t, users)
	stranger := newUser(t, users)

	t.Run("Create defaults status", func(t *testing.T) {
		td := newTodo(t, todos, owner.ID, "defaults")
		assert.NotZero(t, td.ID)
		assert.Equal(t, model.StatusNotStarted, td.Status)
		assert.Equal(t, "2025-01-01 00:00:00", td.DueTime.String())
		assert.Equal(t, owner.ID, td.UserID)
	})

	t.Run("Ownership", func(t *testing.T) {
		td := newTodo(t, todos, owner.ID, "mine")

		got, err := todos.GetByIDAndOwner(t.Context(), td.ID, owner.ID)
		require.NoError(t, err)
		assert.Equal(t, td, got)

		_, err = todos.GetByIDAndOwner(t.Context(), td.ID, stranger.ID)
		require.ErrorIs(t, err, ErrNotFound)

		_, err = todos.UpdateByIDAndOwner(t.Context(), td.ID, stranger.ID, TodoPatch{Title: ptr("stolen")})
		require.ErrorIs(t, err, ErrNotFound)

		require.ErrorIs(t, todos.DeleteByIDAndOwner(t.Context(), td.ID, stranger.ID), ErrNotFound)

		got, err = todos.GetByIDAndOwner(t.Context(), td.ID, owner.ID)
		require.NoError(t, err)
		assert.Equal(t, "mine", got.Title)
	})

	t.Run("Update subset", func(t *testing.T) {
		td := newTodo(t, todos, owner.ID, "before")
		due := model.NewTimestamp(time.Date(2026, 6, 1, 12, 30, 0, 0, time.UTC))
		updated, err := todos.UpdateByIDAndOwner(t.Context(), td.ID, owner.ID, TodoPatch{
			Status:  ptr(model.StatusDone),
			DueTime: &due,
		})
		require.NoError(t, err)
		assert.Equal(t, "before", updated.Title)
		assert.Equal(t, td.Description, updated.Description)
		assert.Equal(t, model.StatusDone, updated.Status)
		assert.Equal(t, "2026-06-01 12:30:00", updated.DueTime.String())
	})

	t.Run("Delete", func(t *testing.T) {
		td := newTodo(t, todos, owner.ID, "doomed")
		require.NoError(t, todos.DeleteByIDAndOwner(t.Context(), td.ID, owner.ID))
		_, err := todos.GetByIDAndOwner(t.Context(), td.ID, owner.ID)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("List", func(t *testing.T) {
		empty := newUser(t, users)
		list, err := todos.ListByOwner(t.Context(), empty.ID)
		require.NoError(t, err)
		assert.NotNil(t, list)
		assert.Empty(t, list)

		a := newTodo(t, todos, empty.ID, "first")
		b := newTodo(t, todos, empty.ID, "second")
		list, err = todos.ListByOwner(t.Context(), empty.ID)
		require.NoError(t, err)
		assert.Equal(t, []model.Todo{a, b}, list)
	})
}

func TestSetListStatement(t *testing.T) {
	t.Parallel()

	s := &setList{}
	assert.True(t, s.empty())
	s.add("title", "t")
	s.add("status", "done")
	q, args := s.statement("todo", "id = ? AND user_id = ?", 3, 9)
	assert.Equal(t, "UPDATE todo SET title = ?, status = ? WHERE id = ? AND user_id = ?", q)
	assert.Equal(t, []any{"t", "done", 3, 9}, args)
}
