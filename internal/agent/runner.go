// internal/agent/runner.go
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/freely-dev/freely/internal/host"
	"github.com/freely-dev/freely/internal/types"
)

// hostUnavailableText is the placeholder response outside the desktop
// shell. Not an error: there is simply nothing to invoke.
const hostUnavailableText = "Agent execution is only available inside the Freely desktop app."

const eventBuffer = 256

// streamState reconciles the asynchronous event sequence of one
// execution. One instance per execution, single pass, no retries.
type streamState struct {
	text    strings.Builder
	model   string
	token   string
	stopped bool
	errMsg  string
	done    bool
}

// apply folds one event into the state and fires the chunk callback.
// Events after the terminal one are ignored.
func (s *streamState) apply(ev types.StreamEvent, id types.MessageID, cb *Callbacks) {
	if s.done {
		return
	}

	// A resolved model may arrive on any event; last seen wins.
	if ev.Model != "" {
		s.model = ev.Model
	}
	// Continuation tokens are first-writer-wins within one execution:
	// later tokens in the same stream are ignored.
	if ev.SDKSessionID != "" && s.token == "" {
		s.token = ev.SDKSessionID
	}

	switch ev.Type {
	case types.StreamPartial:
		if ev.Text != "" {
			s.text.WriteString(ev.Text)
			if cb != nil && cb.OnStreamChunk != nil {
				cb.OnStreamChunk(id, ev.Text)
			}
		}
	case types.StreamStopped:
		s.stopped = true
		s.done = true
	case types.StreamComplete:
		s.done = true
	case types.StreamError:
		s.errMsg = ev.Error
		if s.errMsg == "" {
			s.errMsg = "agent reported an error"
		}
		s.done = true
	}
}

// ExecutePromptWithStreaming runs one prompt through the host and
// reconciles its event stream into an ExecutionResult.
//
// The pass is: precondition gate, environment gate, subscribe, invoke,
// consume events in emission order, then persist continuation state.
// Continuation tokens are written only after the stream has fully
// settled, never mid-stream, so a rapid follow-up execution cannot
// read a partially-updated token.
func (t *Tool) ExecutePromptWithStreaming(ctx context.Context, req Request, cb *Callbacks) *types.ExecutionResult {
	res := &types.ExecutionResult{
		UserMessageID:       types.NewMessageID(),
		AssistantMessageIDs: []types.MessageID{},
		ToolType:            t.toolType,
		Model:               req.Model,
	}

	if t.deps.Sessions != nil {
		if _, err := t.deps.Sessions.Ensure(ctx, req.SessionID, t.toolType); err != nil {
			slog.Warn("session upsert failed", "session_id", string(req.SessionID), "error", err)
		}
	}

	// Precondition gate: a credentialed variant refuses to run without
	// its key. No callbacks fire, no host invocation occurs.
	var apiKey *string
	if t.credential != "" {
		var v string
		var ok bool
		if t.deps.Credentials != nil {
			v, ok = t.deps.Credentials.Get(t.credential)
		}
		if !ok {
			res.Err = fmt.Sprintf("missing credential %s: set it before using %s", t.credential, t.name)
			return res
		}
		apiKey = &v
	}

	// Environment gate: outside the desktop shell there is nothing to
	// invoke. Placeholder text, not an error.
	if t.deps.Bridge == nil || !t.deps.Bridge.Available() {
		res.ResponseText = hostUnavailableText
		return res
	}

	assistantID := types.NewMessageID()
	if cb != nil && cb.OnStreamStart != nil {
		cb.OnStreamStart(assistantID, StreamMeta{
			SessionID: req.SessionID,
			TaskID:    req.TaskID,
			Role:      "assistant",
			Timestamp: time.Now(),
		})
	}

	// Stored continuation token enables multi-turn context.
	var continuation string
	if t.deps.Sessions != nil {
		if rec, ok := t.deps.Sessions.FindByID(ctx, req.SessionID); ok {
			continuation = rec.SDKSessionID
		}
	}

	payload := host.InvokePayload{
		SessionID:         req.SessionID,
		Prompt:            req.Prompt,
		TaskID:            req.TaskID,
		PermissionMode:    req.PermissionMode,
		Model:             req.Model,
		ContinuationToken: continuation,
		APIKey:            apiKey,
	}

	// Subscribe before invoking; tear down unconditionally once the
	// invocation settles so listeners never leak across executions.
	events := make(chan types.StreamEvent, eventBuffer)
	unsub, err := t.deps.Bridge.Listen(host.StreamChannel(req.SessionID), func(ev types.StreamEvent) {
		events <- ev
	})
	if err != nil {
		slog.Error("stream subscription failed", "tool", t.name, "session_id", string(req.SessionID), "error", err)
		res.Err = err.Error()
		return res
	}
	defer unsub()

	type invokeOutcome struct {
		events []types.StreamEvent
		err    error
	}
	settled := make(chan invokeOutcome, 1)
	go func() {
		evs, err := t.deps.Bridge.Invoke(ctx, t.command, payload)
		settled <- invokeOutcome{events: evs, err: err}
	}()

	// Consume live events until the invocation settles. No timeout: a
	// hung host hangs the caller.
	st := &streamState{}
	var out invokeOutcome
	for waiting := true; waiting; {
		select {
		case ev := <-events:
			st.apply(ev, assistantID, cb)
		case out = <-settled:
			waiting = false
		}
	}

	// Events already delivered before unsubscribe still count.
drain:
	for {
		select {
		case ev := <-events:
			st.apply(ev, assistantID, cb)
		default:
			break drain
		}
	}

	if out.err != nil {
		// Host invocation failure: absorbed, logged, no terminal
		// callback, no continuation persistence.
		slog.Error("host invocation failed", "tool", t.name, "session_id", string(req.SessionID), "error", out.err)
		res.ResponseText = st.text.String()
		res.Err = out.err.Error()
		return res
	}

	// The tail of the sequence not delivered via the live channel.
	for _, ev := range out.events {
		st.apply(ev, assistantID, cb)
	}

	res.ResponseText = st.text.String()
	if st.model != "" {
		res.Model = st.model
	}

	// Exactly one terminal callback: end or error, never both.
	switch {
	case st.stopped:
		res.WasStopped = true
		if cb != nil && cb.OnStreamError != nil {
			cb.OnStreamError(assistantID, ErrStopped)
		}
	case st.errMsg != "":
		res.Err = st.errMsg
		if cb != nil && cb.OnStreamError != nil {
			cb.OnStreamError(assistantID, errors.New(st.errMsg))
		}
		return res
	default:
		if cb != nil && cb.OnStreamEnd != nil {
			cb.OnStreamEnd(assistantID)
		}
	}

	t.persistAfterStream(ctx, req, st, res.Model)

	res.AssistantMessageIDs = append(res.AssistantMessageIDs, assistantID)
	if t.deps.Estimator != nil {
		res.TokenUsage = t.deps.Estimator.Usage(res.Model, req.Prompt, res.ResponseText)
	}
	return res
}

// persistAfterStream writes the captured continuation token to the
// session record and the resolved model to the task record. Runs on
// completed and stopped executions; failed ones never reach it.
func (t *Tool) persistAfterStream(ctx context.Context, req Request, st *streamState, model string) {
	if st.token != "" && t.deps.Sessions != nil {
		token := st.token
		if _, err := t.deps.Sessions.Patch(ctx, req.SessionID, types.SessionPatch{SDKSessionID: &token}); err != nil {
			slog.Warn("persist continuation token failed", "session_id", string(req.SessionID), "error", err)
		}
	}
	if req.TaskID != "" && model != "" && t.deps.Tasks != nil {
		m := model
		if _, err := t.deps.Tasks.Patch(ctx, req.TaskID, types.TaskPatch{Model: &m}); err != nil {
			slog.Warn("persist resolved model failed", "task_id", string(req.TaskID), "error", err)
		}
	}
}
