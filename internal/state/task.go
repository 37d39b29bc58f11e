// internal/state/task.go
package state

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/freely-dev/freely/internal/bus"
	"github.com/freely-dev/freely/internal/types"
)

// TaskStore is a JSON-file-backed store for task records, one file per
// record at tasks/task_<id>.json. Semantics mirror SessionStore:
// create-or-merge patches, idempotent ensure, and headless degradation
// when constructed with an empty root.
type TaskStore struct {
	root string
	bus  *bus.Bus
	mu   sync.RWMutex
}

// NewTaskStore creates a file-backed TaskStore rooted at the given
// directory. An empty root disables persistence.
func NewTaskStore(root string, b *bus.Bus) *TaskStore {
	return &TaskStore{root: root, bus: b}
}

func (s *TaskStore) disabled() bool {
	return s.root == ""
}

func (s *TaskStore) recordPath(id types.TaskID) string {
	return filepath.Join(s.root, "tasks", "task_"+string(id)+".json")
}

func defaultTask(id types.TaskID) *types.TaskRecord {
	now := time.Now()
	return &types.TaskRecord{
		TaskID:    id,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *TaskStore) load(id types.TaskID) (*types.TaskRecord, bool) {
	data, err := os.ReadFile(s.recordPath(id))
	if err != nil {
		return nil, false
	}
	var rec types.TaskRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, false
	}
	return &rec, true
}

func (s *TaskStore) save(rec *types.TaskRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal task record: %w", err)
	}

	path := s.recordPath(rec.TaskID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create tasks dir: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp task record: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp task record: %w", err)
	}
	return nil
}

// Get returns the task with the given ID, or ErrNotFound.
func (s *TaskStore) Get(_ context.Context, id types.TaskID) (*types.TaskRecord, error) {
	if s.disabled() {
		return defaultTask(id), nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.load(id)
	if !ok {
		return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return rec, nil
}

// FindByID returns (nil, false) when the task does not exist.
func (s *TaskStore) FindByID(_ context.Context, id types.TaskID) (*types.TaskRecord, bool) {
	if s.disabled() {
		return nil, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.load(id)
}

// Patch merges the given fields over the stored record, creating a
// default one first when absent, and publishes the updated record on
// the freely:task:updated topic.
func (s *TaskStore) Patch(_ context.Context, id types.TaskID, patch types.TaskPatch) (*types.TaskRecord, error) {
	if s.disabled() {
		rec := defaultTask(id)
		applyTaskPatch(rec, patch)
		return rec, nil
	}

	s.mu.Lock()
	rec, ok := s.load(id)
	if !ok {
		rec = defaultTask(id)
	}

	applyTaskPatch(rec, patch)
	rec.TaskID = id
	rec.UpdatedAt = time.Now()

	if err := s.save(rec); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.mu.Unlock()

	if s.bus != nil {
		s.bus.Publish(TopicTaskUpdated, rec)
	}
	return rec, nil
}

// Ensure returns the existing record unchanged, or creates one bound to
// the given session. Seed fields are never merged into an existing
// record.
func (s *TaskStore) Ensure(_ context.Context, id types.TaskID, sessionID types.SessionID) (*types.TaskRecord, error) {
	if s.disabled() {
		rec := defaultTask(id)
		rec.SessionID = sessionID
		return rec, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok := s.load(id); ok {
		return rec, nil
	}

	rec := defaultTask(id)
	rec.SessionID = sessionID
	if err := s.save(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// List returns all stored tasks sorted by creation time.
func (s *TaskStore) List(_ context.Context) ([]*types.TaskRecord, error) {
	if s.disabled() {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(filepath.Join(s.root, "tasks"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read tasks directory: %w", err)
	}

	var out []*types.TaskRecord
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, "task_") || !strings.HasSuffix(name, ".json") {
			continue
		}
		id := types.ToTaskID(strings.TrimSuffix(strings.TrimPrefix(name, "task_"), ".json"))
		if rec, ok := s.load(id); ok {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func applyTaskPatch(rec *types.TaskRecord, patch types.TaskPatch) {
	if patch.SessionID != nil {
		rec.SessionID = *patch.SessionID
	}
	if patch.Status != nil {
		rec.Status = *patch.Status
	}
	if patch.Model != nil {
		rec.Model = *patch.Model
	}
}
