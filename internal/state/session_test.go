// internal/state/session_test.go
package state

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/freely-dev/freely/internal/bus"
	"github.com/freely-dev/freely/internal/types"
)

func TestSessionGetMissingFailsLoudly(t *testing.T) {
	store := NewSessionStore(t.TempDir(), nil)
	ctx := context.Background()

	_, err := store.Get(ctx, types.SessionID("never-created"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSessionPatchCreatesDefault(t *testing.T) {
	store := NewSessionStore(t.TempDir(), nil)
	ctx := context.Background()

	id := types.NewSessionID()
	rec, err := store.Patch(ctx, id, types.SessionPatch{})
	if err != nil {
		t.Fatal(err)
	}
	if rec.SessionID != id {
		t.Errorf("expected identity field %s, got %s", id, rec.SessionID)
	}
	if rec.CreatedAt.IsZero() || rec.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set on synthesized record")
	}
}

func TestSessionPatchMergesNotReplaces(t *testing.T) {
	store := NewSessionStore(t.TempDir(), nil)
	ctx := context.Background()

	id := types.NewSessionID()
	tool := types.ToolClaudeCode
	if _, err := store.Patch(ctx, id, types.SessionPatch{ToolType: &tool}); err != nil {
		t.Fatal(err)
	}

	token := "sdk-session-1"
	rec, err := store.Patch(ctx, id, types.SessionPatch{SDKSessionID: &token})
	if err != nil {
		t.Fatal(err)
	}
	if rec.ToolType != tool {
		t.Errorf("expected tool type preserved across patch, got %q", rec.ToolType)
	}
	if rec.SDKSessionID != token {
		t.Errorf("expected sdk session id %q, got %q", token, rec.SDKSessionID)
	}
}

func TestSessionEnsureIsNoOpOnExisting(t *testing.T) {
	store := NewSessionStore(t.TempDir(), nil)
	ctx := context.Background()

	id := types.NewSessionID()
	first, err := store.Ensure(ctx, id, types.ToolClaudeCode)
	if err != nil {
		t.Fatal(err)
	}

	time.Sleep(10 * time.Millisecond)
	second, err := store.Ensure(ctx, id, types.ToolGemini)
	if err != nil {
		t.Fatal(err)
	}

	if second.ToolType != types.ToolClaudeCode {
		t.Errorf("ensure must not merge new seed fields, got tool %q", second.ToolType)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("expected identical created_at, got %v vs %v", first.CreatedAt, second.CreatedAt)
	}
}

func TestSessionFindByIDReturnsFalseWhenAbsent(t *testing.T) {
	store := NewSessionStore(t.TempDir(), nil)

	if _, ok := store.FindByID(context.Background(), "nope"); ok {
		t.Error("expected ok=false for absent record")
	}
}

func TestSessionMalformedRecordTreatedAsAbsent(t *testing.T) {
	dir := t.TempDir()
	store := NewSessionStore(dir, nil)
	ctx := context.Background()

	id := types.SessionID("corrupt")
	path := filepath.Join(dir, "sessions", "session_corrupt.json")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, ok := store.FindByID(ctx, id); ok {
		t.Error("corrupt record must read as absent")
	}
	if _, err := store.Get(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for corrupt record, got %v", err)
	}

	// Patching a corrupt record synthesizes a fresh default.
	rec, err := store.Patch(ctx, id, types.SessionPatch{})
	if err != nil {
		t.Fatal(err)
	}
	if rec.SessionID != id {
		t.Errorf("expected identity %s, got %s", id, rec.SessionID)
	}
}

func TestSessionPatchPublishesNotification(t *testing.T) {
	b := bus.New()
	store := NewSessionStore(t.TempDir(), b)

	var got *types.SessionRecord
	b.Subscribe(TopicSessionUpdated, func(payload any) {
		got, _ = payload.(*types.SessionRecord)
	})

	id := types.NewSessionID()
	if _, err := store.Patch(context.Background(), id, types.SessionPatch{}); err != nil {
		t.Fatal(err)
	}

	if got == nil || got.SessionID != id {
		t.Errorf("expected full updated record on %s, got %+v", TopicSessionUpdated, got)
	}
}

func TestSessionDisabledStoreDegrades(t *testing.T) {
	store := NewSessionStore("", nil)
	ctx := context.Background()

	id := types.SessionID("headless")
	rec, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("disabled store must not raise: %v", err)
	}
	if rec.SessionID != id {
		t.Errorf("expected default record for %s, got %+v", id, rec)
	}

	token := "tok"
	if _, err := store.Patch(ctx, id, types.SessionPatch{SDKSessionID: &token}); err != nil {
		t.Fatalf("disabled patch must not raise: %v", err)
	}
	if _, err := store.Ensure(ctx, id, types.ToolCodex); err != nil {
		t.Fatalf("disabled ensure must not raise: %v", err)
	}
}

func TestSessionListSortedByCreation(t *testing.T) {
	store := NewSessionStore(t.TempDir(), nil)
	ctx := context.Background()

	for _, id := range []types.SessionID{"s1", "s2", "s3"} {
		if _, err := store.Ensure(ctx, id, types.ToolClaudeCode); err != nil {
			t.Fatal(err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i].CreatedAt.Before(list[i-1].CreatedAt) {
			t.Error("list is not sorted by creation time")
		}
	}
}

func TestSessionListEmptyAndDisabled(t *testing.T) {
	ctx := context.Background()

	list, err := NewSessionStore(t.TempDir(), nil).List(ctx)
	if err != nil || len(list) != 0 {
		t.Errorf("expected empty list from fresh store, got %v, %v", list, err)
	}

	list, err = NewSessionStore("", nil).List(ctx)
	if err != nil || len(list) != 0 {
		t.Errorf("expected empty list from disabled store, got %v, %v", list, err)
	}
}
