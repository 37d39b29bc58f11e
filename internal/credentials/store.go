// internal/credentials/store.go

// Package credentials resolves named secrets. Lookup checks a direct
// per-name store first and falls back to scanning the ordered provider
// configuration list; the direct store always wins, which supports an
// explicit override workflow.
package credentials

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// keyPrefix namespaces direct-store keys per variable name.
const keyPrefix = "cred_"

// providerConfig is one entry of the list-shaped providers record. Only
// the variables mapping matters for lookup.
type providerConfig struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Variables map[string]string `json:"variables,omitempty"`
}

// Store is a JSON-file-backed credential store rooted at a directory
// holding credentials.json (direct store) and providers.json (fallback
// scan source). Malformed data in either file yields absence, never a
// parse error.
type Store struct {
	dir string
	mu  sync.RWMutex
}

// NewStore creates a credential store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) directPath() string {
	return filepath.Join(s.dir, "credentials.json")
}

func (s *Store) providersPath() string {
	return filepath.Join(s.dir, "providers.json")
}

// Get resolves name, preferring the direct store over the provider
// scan. The scan honors collection order: the first provider whose
// variables carry the name wins.
func (s *Store) Get(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if v, ok := s.loadDirect()[keyPrefix+name]; ok && v != "" {
		return v, true
	}

	for _, p := range s.loadProviders() {
		if v, ok := p.Variables[name]; ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// Set writes name into the direct store only; provider configuration
// records are never touched.
func (s *Store) Set(name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	direct := s.loadDirect()
	if direct == nil {
		direct = make(map[string]string)
	}
	direct[keyPrefix+name] = value

	data, err := json.MarshalIndent(direct, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}

	// Atomic write: write to temp file then rename
	tmp := s.directPath() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp credentials: %w", err)
	}
	if err := os.Rename(tmp, s.directPath()); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp credentials: %w", err)
	}
	return nil
}

// loadDirect reads the direct store; missing or corrupt files read as
// empty. Caller must hold the lock.
func (s *Store) loadDirect() map[string]string {
	data, err := os.ReadFile(s.directPath())
	if err != nil {
		return nil
	}
	var direct map[string]string
	if err := json.Unmarshal(data, &direct); err != nil {
		return nil
	}
	return direct
}

// loadProviders reads the provider configuration list; missing or
// corrupt files read as an empty list. Caller must hold the lock.
func (s *Store) loadProviders() []providerConfig {
	data, err := os.ReadFile(s.providersPath())
	if err != nil {
		return nil
	}
	var providers []providerConfig
	if err := json.Unmarshal(data, &providers); err != nil {
		return nil
	}
	return providers
}
