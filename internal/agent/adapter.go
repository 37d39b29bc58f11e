// internal/agent/adapter.go

// Package agent normalizes the three backing coding-agent tools behind
// one streaming execution contract. Adapters share a single streaming
// runner and differ only in their gating and payload parameters.
package agent

import (
	"context"
	"errors"
	"time"

	"github.com/freely-dev/freely/internal/types"
)

// Capability is a feature an adapter advertises statically, so the
// orchestrator can rely on it without probing.
type Capability string

const (
	CapStreaming     Capability = "streaming"
	CapLiveExecution Capability = "live_execution"
	CapSessionImport Capability = "session_import"
	CapSessionCreate Capability = "session_create"
	CapSessionFork   Capability = "session_fork"
)

// CapabilitySet tracks which features an adapter supports.
type CapabilitySet map[Capability]bool

// ErrStopped is passed to OnStreamError when an execution is halted
// externally. It lets the UI distinguish "externally halted" from
// "finished normally"; the result itself carries WasStopped, not an
// error.
var ErrStopped = errors.New("execution stopped")

// StreamMeta accompanies OnStreamStart with the context of the message
// about to stream.
type StreamMeta struct {
	SessionID types.SessionID
	TaskID    types.TaskID
	Role      string
	Timestamp time.Time
}

// Callbacks receive streaming progress for one execution. Ordering is
// strictly start, then zero or more chunks, then exactly one of end or
// error. This layer enforces that ordering regardless of how the host
// delivers events. Any field may be nil.
type Callbacks struct {
	OnStreamStart func(id types.MessageID, meta StreamMeta)
	OnStreamChunk func(id types.MessageID, text string)
	OnStreamEnd   func(id types.MessageID)
	OnStreamError func(id types.MessageID, err error)
}

// Request describes one prompt execution. The context passed alongside
// it carries cancellation; no timeout is imposed at this layer.
type Request struct {
	SessionID      types.SessionID
	Prompt         string
	TaskID         types.TaskID
	PermissionMode string
	Model          string
}

// Adapter is the shared capability surface of one backing tool.
type Adapter interface {
	ToolType() types.ToolType
	Name() string
	Capabilities() CapabilitySet

	// CheckInstalled probes tool presence through the host. It never
	// raises: any probe failure reads as "not installed".
	CheckInstalled(ctx context.Context) bool

	// ExecutePromptWithStreaming runs one prompt to completion. All
	// failures are absorbed into the result's Err field; callers never
	// see a raised execution error.
	ExecutePromptWithStreaming(ctx context.Context, req Request, cb *Callbacks) *types.ExecutionResult

	// ExecutePrompt is the convenience wrapper with no callbacks.
	ExecutePrompt(ctx context.Context, req Request) *types.ExecutionResult

	// ImportSession is not supported by any current tool; it fails
	// immediately with a descriptive error rather than silently
	// no-opping.
	ImportSession(ctx context.Context, raw []byte) error
}
