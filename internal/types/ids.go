// internal/types/ids.go
package types

import (
	"github.com/google/uuid"
)

type SessionID string
type TaskID string
type MessageID string
type JobID string

func NewSessionID() SessionID {
	return SessionID(uuid.New().String())
}

func NewTaskID() TaskID {
	return TaskID(uuid.New().String())
}

func NewMessageID() MessageID {
	return MessageID(uuid.New().String())
}

func NewJobID() JobID {
	return JobID(uuid.New().String())
}

// The To* helpers brand a raw string without validation. Callers are
// trusted to pass a value that actually identifies the right entity.

func ToSessionID(raw string) SessionID {
	return SessionID(raw)
}

func ToTaskID(raw string) TaskID {
	return TaskID(raw)
}

func ToMessageID(raw string) MessageID {
	return MessageID(raw)
}
