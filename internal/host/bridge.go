// internal/host/bridge.go

// Package host defines the boundary to the execution host: the process
// that actually spawns and manages the agent CLIs. This layer never
// manages processes itself; it only issues invocations and subscribes
// to the per-session event channel. The real bridge exists inside the
// desktop shell; everywhere else the bridge reports unavailable and
// callers degrade gracefully.
package host

import (
	"context"
	"errors"

	"github.com/freely-dev/freely/internal/types"
)

// Command names understood by the execution host.
const (
	CommandRunClaude = "run_claude"
	CommandRunCodex  = "run_codex"
	CommandRunGemini = "run_gemini"
)

// ErrUnavailable is returned by bridge operations outside the desktop
// shell runtime.
var ErrUnavailable = errors.New("execution host unavailable")

// StreamChannel returns the event channel name for a session.
func StreamChannel(id types.SessionID) string {
	return "agent:stream:" + string(id)
}

// InvokePayload is the execution request handed to the host. APIKey is
// set only for credentialed tools; nil signals "use ambient auth" for
// the OAuth-capable ones.
type InvokePayload struct {
	SessionID         types.SessionID `json:"sessionId"`
	Prompt            string          `json:"prompt"`
	TaskID            types.TaskID    `json:"taskId,omitempty"`
	PermissionMode    string          `json:"permissionMode,omitempty"`
	Model             string          `json:"model,omitempty"`
	ContinuationToken string          `json:"continuationToken,omitempty"`
	APIKey            *string         `json:"apiKey,omitempty"`
}

// Bridge is the consumed capability surface of the execution host.
//
// Listen must be established before Invoke; live events arrive through
// the handler while Invoke is in flight. Events returned by Invoke are
// the tail of the sequence not already delivered through Listen, so a
// consumer processes handler events in arrival order followed by the
// returned slice.
type Bridge interface {
	// Available reports whether the host runtime is reachable at all.
	Available() bool

	// ProbeTool asks the host whether the named tool binary is present.
	ProbeTool(ctx context.Context, binary string) (bool, error)

	// Invoke issues an execution command and blocks until the host
	// settles the invocation. No timeout is imposed at this layer.
	Invoke(ctx context.Context, command string, payload InvokePayload) ([]types.StreamEvent, error)

	// Listen subscribes to a stream channel and returns an unsubscribe
	// function. Delivery is in emission order for a single channel.
	Listen(channel string, handler func(types.StreamEvent)) (func(), error)
}

// Unavailable is the Bridge used outside the desktop shell. Every
// operation reports the host as missing.
type Unavailable struct{}

func (Unavailable) Available() bool { return false }

func (Unavailable) ProbeTool(context.Context, string) (bool, error) {
	return false, ErrUnavailable
}

func (Unavailable) Invoke(context.Context, string, InvokePayload) ([]types.StreamEvent, error) {
	return nil, ErrUnavailable
}

func (Unavailable) Listen(string, func(types.StreamEvent)) (func(), error) {
	return func() {}, ErrUnavailable
}

var _ Bridge = Unavailable{}
