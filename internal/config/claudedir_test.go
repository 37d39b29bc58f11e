package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitClaudeDir_CreatesDefaults(t *testing.T) {
	dataDir := t.TempDir()

	claudeDir, err := InitClaudeDir(dataDir)
	if err != nil {
		t.Fatalf("InitClaudeDir failed: %v", err)
	}
	if claudeDir != filepath.Join(dataDir, ".claude") {
		t.Errorf("unexpected claude dir path: %s", claudeDir)
	}

	content, err := os.ReadFile(filepath.Join(claudeDir, "CLAUDE.md"))
	if err != nil {
		t.Fatalf("CLAUDE.md was not created: %v", err)
	}
	if !strings.Contains(string(content), "Freely Assistant") {
		t.Error("CLAUDE.md should mention Freely Assistant")
	}

	raw, err := os.ReadFile(filepath.Join(claudeDir, "settings.json"))
	if err != nil {
		t.Fatalf("settings.json was not created: %v", err)
	}
	var parsed map[string]any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		t.Fatalf("settings.json is not valid JSON: %v", err)
	}
	if _, ok := parsed["permissions"]; !ok {
		t.Error("settings.json should have a permissions key")
	}
}

func TestInitClaudeDir_DoesNotOverwrite(t *testing.T) {
	dataDir := t.TempDir()

	claudeDir, err := InitClaudeDir(dataDir)
	if err != nil {
		t.Fatal(err)
	}

	custom := "# Custom config, do not overwrite"
	mdPath := filepath.Join(claudeDir, "CLAUDE.md")
	if err := os.WriteFile(mdPath, []byte(custom), 0644); err != nil {
		t.Fatal(err)
	}

	claudeDir2, err := InitClaudeDir(dataDir)
	if err != nil {
		t.Fatal(err)
	}
	if claudeDir2 != claudeDir {
		t.Errorf("second init returned different path: %s", claudeDir2)
	}

	content, err := os.ReadFile(mdPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != custom {
		t.Error("second init must preserve user edits")
	}
}

func TestInitClaudeDir_ExtraFilesSurvive(t *testing.T) {
	dataDir := t.TempDir()

	claudeDir, err := InitClaudeDir(dataDir)
	if err != nil {
		t.Fatal(err)
	}

	commandsDir := filepath.Join(claudeDir, "commands")
	if err := os.MkdirAll(commandsDir, 0755); err != nil {
		t.Fatal(err)
	}
	canary := filepath.Join(commandsDir, "custom_skill.md")
	if err := os.WriteFile(canary, []byte("# Custom Skill"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := InitClaudeDir(dataDir); err != nil {
		t.Fatal(err)
	}
	content, err := os.ReadFile(canary)
	if err != nil {
		t.Fatal("custom file should survive re-init")
	}
	if !strings.Contains(string(content), "Custom Skill") {
		t.Error("custom file content changed across re-init")
	}
}

func TestReadUpdateClaudeMD(t *testing.T) {
	dataDir := t.TempDir()

	// Read before init fails loudly
	if _, err := ReadClaudeMD(dataDir); err == nil {
		t.Error("expected error reading CLAUDE.md before init")
	}

	if err := UpdateClaudeMD(dataDir, "# Replaced"); err != nil {
		t.Fatalf("UpdateClaudeMD failed: %v", err)
	}
	content, err := ReadClaudeMD(dataDir)
	if err != nil {
		t.Fatal(err)
	}
	if content != "# Replaced" {
		t.Errorf("unexpected content %q", content)
	}
}
