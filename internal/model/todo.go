package model

// Status is the lifecycle state of a todo.  Only the four literal values
// below are accepted by the API and the database.
type Status string

const (
    StatusNotStarted Status = "not started"
    StatusTodo       Status = "todo"
    StatusInProgress Status = "in progress"
    StatusDone       Status = "done"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
    switch s {
    case StatusNotStarted, StatusTodo, StatusInProgress, StatusDone:
        return true
    }
    return false
}

// Todo mirrors the `todo` table.  UserID is the owning account; every read
// and write is filtered on it.
type Todo struct {
    ID          uint64    `json:"id"`
    Title       string    `json:"title"`
    Description string    `json:"description"`
    CreatedAt   Timestamp `json:"created_at"`
    DueTime     Timestamp `json:"due_time"`
    Status      Status    `json:"status"`
    UserID      uint64    `json:"user_id"`
}
