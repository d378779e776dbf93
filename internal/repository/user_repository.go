package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/todo-api/internal/database"
	"github.com/iliyamo/todo-api/internal/model"
)

const userColumns = "id, email, password, firstname, name, username, created_at"

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// UserPatch carries the profile fields a caller asked to change. Nil fields
// are left untouched. PasswordHash must already be hashed.
type UserPatch struct {
	Email        *string
	PasswordHash *string
	Name         *string
	Firstname    *string
	Username     *string
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.Email == nil && p.PasswordHash == nil && p.Name == nil && p.Firstname == nil && p.Username == nil
}

func (p UserPatch) setList() *setList {
	s := &setList{}
	if p.Email != nil {
		s.add("email", *p.Email)
	}
	if p.PasswordHash != nil {
		s.add("password", *p.PasswordHash)
	}
	if p.Name != nil {
		s.add("name", *p.Name)
	}
	if p.Firstname != nil {
		s.add("firstname", *p.Firstname)
	}
	if p.Username != nil {
		s.add("username", *p.Username)
	}
	return s
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Firstname, &u.Name, &u.Username, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// Create inserts u and fills in its ID and CreatedAt. A unique-key clash on
// email or username yields ErrDuplicate.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO user (email, password, firstname, name, username) VALUES (?, ?, ?, ?, ?)",
		u.Email, u.PasswordHash, u.Firstname, u.Name, u.Username)
	if err != nil {
		if database.IsDuplicate(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert user id: %w", err)
	}
	created, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*u = created
	return nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM user WHERE id = ? LIMIT 1", id))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return u, fmt.Errorf("get user %d: %w", id, err)
	}
	return u, err
}

// GetByEmail fetches a user by exact email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM user WHERE email = ? LIMIT 1", email))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return u, fmt.Errorf("get user by email: %w", err)
	}
	return u, err
}

// EmailTaken reports whether any account uses email.
func (r *UserRepo) EmailTaken(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "SELECT 1 FROM user WHERE email = ? LIMIT 1", email)
}

// UsernameTaken reports whether any account uses username.
func (r *UserRepo) UsernameTaken(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, "SELECT 1 FROM user WHERE username = ? LIMIT 1", username)
}

func (r *UserRepo) exists(ctx context.Context, q string, arg any) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx, q, arg).Scan(&one)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("lookup user: %w", err)
	}
	return true, nil
}

// Update applies p to user id inside one transaction and returns the stored
// row. ErrNotFound if the user is gone, ErrDuplicate on an email/username
// clash.
func (r *UserRepo) Update(ctx context.Context, id uint64, p UserPatch) (model.User, error) {
	set := p.setList()
	if set.empty() {
		return model.User{}, errors.New("update user: empty patch")
	}
	var out model.User
	err := withTx(ctx, r.DB, func(tx *sql.Tx) error {
		if _, err := scanUser(tx.QueryRowContext(ctx,
			"SELECT "+userColumns+" FROM user WHERE id = ?", id)); err != nil {
			return err
		}
		q, args := set.statement("user", "id = ?", id)
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			if database.IsDuplicate(err) {
				return ErrDuplicate
			}
			return fmt.Errorf("update user %d: %w", id, err)
		}
		u, err := scanUser(tx.QueryRowContext(ctx,
			"SELECT "+userColumns+" FROM user WHERE id = ?", id))
		out = u
		return err
	})
	return out, err
}

// Delete removes the user and every todo it owns in one transaction.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		var one int
		if err := tx.QueryRowContext(ctx, "SELECT 1 FROM user WHERE id = ?", id).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("lookup user %d: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM todo WHERE user_id = ?", id); err != nil {
			return fmt.Errorf("delete todos of user %d: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM user WHERE id = ?", id); err != nil {
			return fmt.Errorf("delete user %d: %w", id, err)
		}
		return nil
	})
}
