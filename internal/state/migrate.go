// internal/state/migrate.go
package state

import (
	"log/slog"
	"os"
)

// MigrateLegacyDataDir renames the pluely-era data directory to the
// freely location for existing users. It only acts when oldDir exists
// and newDir does not, so a fresh install is never clobbered.
//
// Failure is survivable (the user gets a fresh data dir) whereas a hard
// crash is not, so this logs a warning and never returns an error.
// Returns true when a rename actually happened.
func MigrateLegacyDataDir(oldDir, newDir string) bool {
	if _, err := os.Stat(oldDir); err != nil {
		return false
	}
	if _, err := os.Stat(newDir); err == nil {
		return false
	}

	if err := os.Rename(oldDir, newDir); err != nil {
		slog.Warn("failed to migrate legacy data dir", "old", oldDir, "new", newDir, "error", err)
		return false
	}
	slog.Info("migrated legacy data dir", "old", oldDir, "new", newDir)
	return true
}
