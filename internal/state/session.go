// internal/state/session.go
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

// SessionStore is a JSON-file-backed store for session records. Each
// record lives in its own file at sessions/session_<id>.json.
//
// A store created with an empty root is disabled (the headless case):
// every operation returns a default record instead of touching disk, so
// callers never need to branch on environment.
type SessionStore struct {
	root string
	bus  *bus.Bus
	mu   sync.RWMutex
}

// NewSessionStore creates a file-backed SessionStore rooted at the
// given directory. Change notifications for patches are published on b,
// which may be nil. An empty root disables persistence entirely.
func NewSessionStore(root string, b *bus.Bus) *SessionStore {
	return &SessionStore{root: root, bus: b}
}

func (s *SessionStore) disabled() bool {
	return s.root == ""
}

func (s *SessionStore) recordPath(id types.SessionID) string {
	return filepath.Join(s.root, "sessions", "session_"+string(id)+".json")
}

func defaultSession(id types.SessionID) *types.SessionRecord {
	now := time.Now()
	return &types.SessionRecord{
		SessionID: id,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// load reads a record from disk. Missing files and corrupt JSON are
// both reported as absence. Caller must hold the lock.
func (s *SessionStore) load(id types.SessionID) (*types.SessionRecord, bool) {
	data, err := os.ReadFile(s.recordPath(id))
	if err != nil {
		return nil, false
	}
	var rec types.SessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, false
	}
	return &rec, true
}

// save writes a record atomically (temp file + rename). Caller must
// hold the lock.
func (s *SessionStore) save(rec *types.SessionRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session record: %w", err)
	}

	path := s.recordPath(rec.SessionID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create sessions dir: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp session record: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp session record: %w", err)
	}
	return nil
}

// Get returns the session with the given ID, or ErrNotFound.
func (s *SessionStore) Get(_ context.Context, id types.SessionID) (*types.SessionRecord, error) {
	if s.disabled() {
		return defaultSession(id), nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.load(id)
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return rec, nil
}

// FindByID is the non-throwing lookup: absence is (nil, false), never
// an error.
func (s *SessionStore) FindByID(_ context.Context, id types.SessionID) (*types.SessionRecord, bool) {
	if s.disabled() {
		return nil, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.load(id)
}

// Patch merges the given fields over the stored record, synthesizing a
// default record first when none exists. The identity field is always
// forced to id and UpdatedAt to now, and the full updated record is
// published on the freely:session:updated topic.
func (s *SessionStore) Patch(_ context.Context, id types.SessionID, patch types.SessionPatch) (*types.SessionRecord, error) {
	if s.disabled() {
		rec := defaultSession(id)
		applySessionPatch(rec, patch)
		return rec, nil
	}

	s.mu.Lock()
	rec, ok := s.load(id)
	if !ok {
		rec = defaultSession(id)
	}

	applySessionPatch(rec, patch)
	rec.SessionID = id // guard against a caller-embedded mismatching id
	rec.UpdatedAt = time.Now()

	if err := s.save(rec); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.mu.Unlock()

	if s.bus != nil {
		s.bus.Publish(TopicSessionUpdated, rec)
	}
	return rec, nil
}

// Ensure returns the existing record unchanged, or creates one tagged
// with the given tool type. It deliberately does NOT merge toolType
// into a pre-existing record: it models "ensure this exists", not
// "update this".
func (s *SessionStore) Ensure(_ context.Context, id types.SessionID, toolType types.ToolType) (*types.SessionRecord, error) {
	if s.disabled() {
		rec := defaultSession(id)
		rec.ToolType = toolType
		return rec, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok := s.load(id); ok {
		return rec, nil
	}

	rec := defaultSession(id)
	rec.ToolType = toolType
	if err := s.save(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// List returns all stored sessions sorted by creation time. A disabled
// store has nothing to list.
func (s *SessionStore) List(_ context.Context) ([]*types.SessionRecord, error) {
	if s.disabled() {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(filepath.Join(s.root, "sessions"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read sessions directory: %w", err)
	}

	var out []*types.SessionRecord
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, "session_") || !strings.HasSuffix(name, ".json") {
			continue
		}
		id := types.ToSessionID(strings.TrimSuffix(strings.TrimPrefix(name, "session_"), ".json"))
		if rec, ok := s.load(id); ok {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func applySessionPatch(rec *types.SessionRecord, patch types.SessionPatch) {
	if patch.SDKSessionID != nil {
		rec.SDKSessionID = *patch.SDKSessionID
	}
	if patch.ToolType != nil {
		rec.ToolType = *patch.ToolType
	}
}
