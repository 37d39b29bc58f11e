// internal/state/task_test.go
package state

import (
	"context"
	"errors"
	"testing"

	"github.com/freely-dev/freely/internal/bus"
	"github.com/freely-dev/freely/internal/types"
)

func TestTaskPatchScenario(t *testing.T) {
	store := NewTaskStore(t.TempDir(), nil)
	ctx := context.Background()

	// patch t1 {status: active, session_id: s1}, then {model: x}
	id := types.TaskID("t1")
	status := "active"
	sessionID := types.SessionID("s1")
	if _, err := store.Patch(ctx, id, types.TaskPatch{Status: &status, SessionID: &sessionID}); err != nil {
		t.Fatal(err)
	}

	model := "x"
	rec, err := store.Patch(ctx, id, types.TaskPatch{Model: &model})
	if err != nil {
		t.Fatal(err)
	}

	if rec.Status != "active" || rec.SessionID != "s1" || rec.Model != "x" {
		t.Errorf("merge lost fields: %+v", rec)
	}
}

func TestTaskModelOverwrittenByLaterPatch(t *testing.T) {
	store := NewTaskStore(t.TempDir(), nil)
	ctx := context.Background()

	id := types.NewTaskID()
	first := "model-a"
	if _, err := store.Patch(ctx, id, types.TaskPatch{Model: &first}); err != nil {
		t.Fatal(err)
	}

	second := "model-b"
	rec, err := store.Patch(ctx, id, types.TaskPatch{Model: &second})
	if err != nil {
		t.Fatal(err)
	}
	if rec.Model != "model-b" {
		t.Errorf("expected later patch to win, got %q", rec.Model)
	}
}

func TestTaskGetMissing(t *testing.T) {
	store := NewTaskStore(t.TempDir(), nil)

	_, err := store.Get(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTaskEnsureKeepsExisting(t *testing.T) {
	store := NewTaskStore(t.TempDir(), nil)
	ctx := context.Background()

	id := types.NewTaskID()
	if _, err := store.Ensure(ctx, id, "s1"); err != nil {
		t.Fatal(err)
	}
	rec, err := store.Ensure(ctx, id, "s2")
	if err != nil {
		t.Fatal(err)
	}
	if rec.SessionID != "s1" {
		t.Errorf("ensure must not reseed an existing record, got session %q", rec.SessionID)
	}
}

func TestTaskPatchForcesIdentity(t *testing.T) {
	store := NewTaskStore(t.TempDir(), nil)
	ctx := context.Background()

	rec, err := store.Patch(ctx, "the-id", types.TaskPatch{})
	if err != nil {
		t.Fatal(err)
	}
	if rec.TaskID != "the-id" {
		t.Errorf("identity field must equal the patched id, got %q", rec.TaskID)
	}
}

func TestTaskPatchPublishesNotification(t *testing.T) {
	b := bus.New()
	store := NewTaskStore(t.TempDir(), b)

	var got *types.TaskRecord
	b.Subscribe(TopicTaskUpdated, func(payload any) {
		got, _ = payload.(*types.TaskRecord)
	})

	id := types.NewTaskID()
	if _, err := store.Patch(context.Background(), id, types.TaskPatch{}); err != nil {
		t.Fatal(err)
	}
	if got == nil || got.TaskID != id {
		t.Errorf("expected full updated record on %s, got %+v", TopicTaskUpdated, got)
	}
}

func TestTaskList(t *testing.T) {
	store := NewTaskStore(t.TempDir(), nil)
	ctx := context.Background()

	if _, err := store.Ensure(ctx, "t1", "s1"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Ensure(ctx, "t2", "s1"); err != nil {
		t.Fatal(err)
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(list))
	}
}
