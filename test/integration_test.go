//go:build integration

package test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/freely-dev/freely/internal/agent"
	"github.com/freely-dev/freely/internal/bus"
	"github.com/freely-dev/freely/internal/dispatch"
	"github.com/freely-dev/freely/internal/host"
	"github.com/freely-dev/freely/internal/state"
	"github.com/freely-dev/freely/internal/tokens"
	"github.com/freely-dev/freely/internal/types"
)

type creds map[string]string

func (c creds) Get(name string) (string, bool) {
	v, ok := c[name]
	return v, ok
}

func TestEndToEnd(t *testing.T) {
	dir := t.TempDir()

	b := bus.New()
	sessions := state.NewSessionStore(dir, b)
	tasks := state.NewTaskStore(dir, b)

	// In-process host that echoes prompts and hands out a continuation
	// token on the first turn.
	bridge := host.NewMemoryBridge()
	bridge.Handle(host.CommandRunClaude, func(_ context.Context, p host.InvokePayload, emit func(types.StreamEvent)) ([]types.StreamEvent, error) {
		emit(types.StreamEvent{Type: types.StreamPartial, Text: "reply to: " + p.Prompt, Model: "sonnet"})
		return []types.StreamEvent{{Type: types.StreamComplete, SDKSessionID: "tok-" + string(p.SessionID)}}, nil
	})

	deps := agent.Deps{
		Sessions:    sessions,
		Tasks:       tasks,
		Credentials: creds{},
		Bridge:      bridge,
		Estimator:   tokens.NewEstimator(),
	}
	registry := agent.NewRegistry()
	registry.Register(agent.NewClaude(deps))
	registry.Register(agent.NewCodex(deps))
	registry.Register(agent.NewGemini(deps))

	d := dispatch.New(registry, 2)
	ctx := context.Background()
	d.Start(ctx)
	defer d.Stop()

	// Watch change notifications for session updates.
	updates := make(chan any, 16)
	unsub := b.Subscribe(state.TopicSessionUpdated, func(payload any) {
		updates <- payload
	})
	defer unsub()

	// Three turns in the same session, plus one task-bound turn.
	sessionID := types.NewSessionID()
	taskID := types.NewTaskID()
	results := make(chan *types.ExecutionResult, 4)
	for i := 0; i < 3; i++ {
		req := agent.Request{SessionID: sessionID, Prompt: fmt.Sprintf("message %d", i)}
		if _, err := d.Submit(types.ToolClaudeCode, req,
			dispatch.WithOnComplete(func(res *types.ExecutionResult) { results <- res })); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := d.Submit(types.ToolClaudeCode,
		agent.Request{SessionID: sessionID, TaskID: taskID, Prompt: "task turn"},
		dispatch.WithOnComplete(func(res *types.ExecutionResult) { results <- res })); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 4; i++ {
		select {
		case res := <-results:
			if res.Err != "" {
				t.Fatalf("execution failed: %s", res.Err)
			}
			if res.ResponseText == "" {
				t.Error("expected response text")
			}
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for executions")
		}
	}
	if !d.Queue.WaitIdle(5 * time.Second) {
		t.Fatal("queue did not go idle")
	}

	// Continuation state persisted for the session.
	rec, err := sessions.Get(ctx, sessionID)
	if err != nil {
		t.Fatal(err)
	}
	if rec.SDKSessionID != "tok-"+string(sessionID) {
		t.Errorf("unexpected continuation token %q", rec.SDKSessionID)
	}
	if rec.ToolType != types.ToolClaudeCode {
		t.Errorf("expected tool type tagging, got %q", rec.ToolType)
	}

	// Resolved model persisted to the task.
	task, err := tasks.Get(ctx, taskID)
	if err != nil {
		t.Fatal(err)
	}
	if task.Model != "sonnet" {
		t.Errorf("expected resolved model on task, got %q", task.Model)
	}

	// Session list reflects exactly one session.
	list, err := sessions.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 session, got %d", len(list))
	}

	// Change notifications were published for the patches.
	if len(updates) == 0 {
		t.Error("expected session update notifications")
	}
}
