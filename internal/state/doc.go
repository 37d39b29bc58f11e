// Package state provides filesystem-backed storage for session and
// task records with create-or-merge patch semantics and fire-and-forget
// change notifications.
package state

import (
	"errors"

	"github.com/freely-dev/freely/internal/types"
)

// ErrNotFound is returned by Get when no record exists under an id.
// This is the only loud failure in the persistence layer; use FindByID
// when absence is expected.
var ErrNotFound = errors.New("record not found")

// Change notification topics, payload = the full updated record.
const (
	TopicSessionUpdated = "freely:session:updated"
	TopicTaskUpdated    = "freely:task:updated"
)

// Compile-time interface compliance checks.
var _ types.SessionStore = (*SessionStore)(nil)
var _ types.TaskStore = (*TaskStore)(nil)
