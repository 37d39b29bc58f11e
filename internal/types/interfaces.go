// internal/types/interfaces.go
package types

import (
	"context"
)

// SessionStore persists session records keyed by SessionID.
//
// Get is the one operation that fails loudly when a record is absent;
// callers that tolerate absence use FindByID. Patch creates a default
// record before merging when none exists. Ensure is an idempotent
// upsert: it never merges seed fields into an existing record.
type SessionStore interface {
	Get(ctx context.Context, id SessionID) (*SessionRecord, error)
	Patch(ctx context.Context, id SessionID, patch SessionPatch) (*SessionRecord, error)
	Ensure(ctx context.Context, id SessionID, toolType ToolType) (*SessionRecord, error)
	FindByID(ctx context.Context, id SessionID) (*SessionRecord, bool)
}

// TaskStore persists task records keyed by TaskID, with the same
// create-or-merge semantics as SessionStore.
type TaskStore interface {
	Get(ctx context.Context, id TaskID) (*TaskRecord, error)
	Patch(ctx context.Context, id TaskID, patch TaskPatch) (*TaskRecord, error)
	Ensure(ctx context.Context, id TaskID, sessionID SessionID) (*TaskRecord, error)
	FindByID(ctx context.Context, id TaskID) (*TaskRecord, bool)
}
