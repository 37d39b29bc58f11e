package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// defaultClaudeMD seeds the instructions file for the Claude Code CLI.
// Written once; subsequent runs leave user edits untouched.
const defaultClaudeMD = `# Freely Assistant

You are an AI coding assistant running inside Freely, a desktop development tool.

## Context
- You are running as an agent provider inside the Freely desktop app
- The user interacts with you through Freely's chat interface
- You have access to the user's filesystem through Claude Code's built-in tools

## Guidelines
- Be concise and helpful
- Focus on the user's coding task
- When modifying files, explain what you changed and why
- Respect the user's project structure and conventions
`

const defaultSettingsJSON = `{
  "permissions": {
    "allow": ["Read", "Glob", "Grep", "Bash(git status)", "Bash(git diff)"],
    "deny": []
  }
}
`

// InitClaudeDir ensures a .claude/ directory exists under dataDir with
// default CLAUDE.md and settings.json files. Existing files are never
// overwritten, so user customizations survive restarts. Returns the
// path to the .claude/ directory so callers can use it as the working
// directory for the Claude CLI.
func InitClaudeDir(dataDir string) (string, error) {
	claudeDir := filepath.Join(dataDir, ".claude")
	if err := os.MkdirAll(claudeDir, 0755); err != nil {
		return "", fmt.Errorf("create .claude directory: %w", err)
	}

	mdPath := filepath.Join(claudeDir, "CLAUDE.md")
	if _, err := os.Stat(mdPath); os.IsNotExist(err) {
		if err := os.WriteFile(mdPath, []byte(defaultClaudeMD), 0644); err != nil {
			return "", fmt.Errorf("write CLAUDE.md: %w", err)
		}
	}

	settingsPath := filepath.Join(claudeDir, "settings.json")
	if _, err := os.Stat(settingsPath); os.IsNotExist(err) {
		if err := os.WriteFile(settingsPath, []byte(defaultSettingsJSON), 0644); err != nil {
			return "", fmt.Errorf("write settings.json: %w", err)
		}
	}

	return claudeDir, nil
}

// ReadClaudeMD returns the current CLAUDE.md content under dataDir.
func ReadClaudeMD(dataDir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dataDir, ".claude", "CLAUDE.md"))
	if err != nil {
		return "", fmt.Errorf("read CLAUDE.md: %w", err)
	}
	return string(data), nil
}

// UpdateClaudeMD replaces the CLAUDE.md content under dataDir, creating
// the .claude/ directory if needed.
func UpdateClaudeMD(dataDir, content string) error {
	claudeDir := filepath.Join(dataDir, ".claude")
	if err := os.MkdirAll(claudeDir, 0755); err != nil {
		return fmt.Errorf("create .claude directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(claudeDir, "CLAUDE.md"), []byte(content), 0644); err != nil {
		return fmt.Errorf("write CLAUDE.md: %w", err)
	}
	return nil
}
