package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// withTx runs fn inside a transaction, committing when fn returns nil and
// rolling back otherwise.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if cerr := tx.Commit(); cerr != nil {
			err = fmt.Errorf("commit tx: %w", cerr)
		}
	}()
	return fn(tx)
}

// setList accumulates "column = ?" assignments for a dynamic UPDATE, in the
// order they were added.
type setList struct {
	cols []string
	args []any
}

func (s *setList) add(col string, v any) {
	s.cols = append(s.cols, col+" = ?")
	s.args = append(s.args, v)
}

func (s *setList) empty() bool { return len(s.cols) == 0 }

// statement renders "UPDATE table SET ... WHERE where" with the where
// arguments appended after the assignment values.
func (s *setList) statement(table, where string, whereArgs ...any) (string, []any) {
	q := "UPDATE " + table + " SET " + strings.Join(s.cols, ", ") + " WHERE " + where
	args := make([]any, 0, len(s.args)+len(whereArgs))
	args = append(args, s.args...)
	args = append(args, whereArgs...)
	return q, args
}
