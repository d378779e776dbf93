// Package events defines the domain events published over RabbitMQ and the
// consumer that records them.
package events

import "time"

// Event types.
const (
    UserRegistered = "user.registered"
    UserDeleted    = "user.deleted"
    TodoCreated    = "todo.created"
    TodoUpdated    = "todo.updated"
    TodoDeleted    = "todo.deleted"
)

// Event is published after a successful write.  It carries enough context for
// an audit trail without querying the primary database.
type Event struct {
    Type       string `json:"type"`
    UserID     uint64 `json:"user_id"`
    TodoID     uint64 `json:"todo_id,omitempty"`
    Title      string `json:"title,omitempty"`
    Status     string `json:"status,omitempty"`
    OccurredAt string `json:"occurred_at"`
}

// New stamps an event of type typ for userID with the current UTC time.
func New(typ string, userID uint64) Event {
    return Event{Type: typ, UserID: userID, OccurredAt: time.Now().UTC().Format(time.RFC3339)}
}
