package repository

// This file defines the Todo repository. Every query that reads or mutates a
// single todo carries both the todo id and the owner id, so a todo owned by
// someone else is indistinguishable from one that does not exist.

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/todo-api/internal/model"
)

const todoColumns = "id, title, description, created_at, due_time, status, user_id"

// TodoRepo encapsulates all database queries related to todos.
type TodoRepo struct {
	db *sql.DB
}

// NewTodoRepo constructs a TodoRepo with the provided DB handle.
func NewTodoRepo(db *sql.DB) *TodoRepo {
	return &TodoRepo{db: db}
}

// TodoPatch carries the fields a caller asked to change. Nil fields are left
// untouched.
type TodoPatch struct {
	Title       *string
	Description *string
	DueTime     *model.Timestamp
	Status      *model.Status
}

// Empty reports whether the patch changes nothing.
func (p TodoPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.DueTime == nil && p.Status == nil
}

func (p TodoPatch) setList() *setList {
	s := &setList{}
	if p.Title != nil {
		s.add("title", *p.Title)
	}
	if p.Description != nil {
		s.add("description", *p.Description)
	}
	if p.DueTime != nil {
		s.add("due_time", *p.DueTime)
	}
	if p.Status != nil {
		s.add("status", string(*p.Status))
	}
	return s
}

func scanTodo(row rowScanner) (model.Todo, error) {
	var t model.Todo
	var status string
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.CreatedAt, &t.DueTime, &status, &t.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Todo{}, ErrNotFound
	}
	t.Status = model.Status(status)
	return t, err
}

// Create inserts t for t.UserID and refreshes it from the stored row so the
// caller sees the generated id and created_at.
func (r *TodoRepo) Create(ctx context.Context, t *model.Todo) error {
	if t.Status == "" {
		t.Status = model.StatusNotStarted
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO todo (title, description, due_time, status, user_id) VALUES (?, ?, ?, ?, ?)",
		t.Title, t.Description, t.DueTime, string(t.Status), t.UserID)
	if err != nil {
		return fmt.Errorf("insert todo: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert todo id: %w", err)
	}
	created, err := r.GetByIDAndOwner(ctx, uint64(id), t.UserID)
	if err != nil {
		return err
	}
	*t = created
	return nil
}

// GetByIDAndOwner fetches a todo by id but only if it belongs to ownerID.
func (r *TodoRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (model.Todo, error) {
	t, err := scanTodo(r.db.QueryRowContext(ctx,
		"SELECT "+todoColumns+" FROM todo WHERE id = ? AND user_id = ?", id, ownerID))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return t, fmt.Errorf("get todo %d: %w", id, err)
	}
	return t, err
}

// ListByOwner returns all todos of ownerID ordered by id. The result is never
// nil so it always serializes as a JSON array.
func (r *TodoRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Todo, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+todoColumns+" FROM todo WHERE user_id = ? ORDER BY id", ownerID)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()

	out := []model.Todo{}
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return out, nil
}

// UpdateByIDAndOwner applies p to the todo in one transaction: the ownership
// check, the UPDATE and the read-back all see the same snapshot.
func (r *TodoRepo) UpdateByIDAndOwner(ctx context.Context, id, ownerID uint64, p TodoPatch) (model.Todo, error) {
	set := p.setList()
	if set.empty() {
		return model.Todo{}, errors.New("update todo: empty patch")
	}
	var out model.Todo
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		const sel = "SELECT " + todoColumns + " FROM todo WHERE id = ? AND user_id = ?"
		if _, err := scanTodo(tx.QueryRowContext(ctx, sel, id, ownerID)); err != nil {
			return err
		}
		q, args := set.statement("todo", "id = ? AND user_id = ?", id, ownerID)
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("update todo %d: %w", id, err)
		}
		t, err := scanTodo(tx.QueryRowContext(ctx, sel, id, ownerID))
		out = t
		return err
	})
	return out, err
}

// DeleteByIDAndOwner removes the todo if it belongs to ownerID, otherwise
// returns ErrNotFound.
func (r *TodoRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		var one int
		err := tx.QueryRowContext(ctx, "SELECT 1 FROM todo WHERE id = ? AND user_id = ?", id, ownerID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("lookup todo %d: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM todo WHERE id = ? AND user_id = ?", id, ownerID); err != nil {
			return fmt.Errorf("delete todo %d: %w", id, err)
		}
		return nil
	})
}
