package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/freely-dev/freely/internal/config"
)

func init() {
	rootCmd.AddCommand(setupCmd)
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup wizard",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		scanner := bufio.NewScanner(os.Stdin)

		fmt.Println("Freely Setup Wizard")
		fmt.Println("Press Enter to accept the default value shown in brackets.")
		fmt.Println()

		// 1. Data directory
		cfg.DataDir = prompt(scanner, "Data directory", cfg.DataDir)

		// 2. Default tool
		cfg.Defaults.Tool = prompt(scanner, "Default tool (claude-code, codex, gemini)", cfg.Defaults.Tool)

		// 3. Default model (optional)
		cfg.Defaults.Model = prompt(scanner, "Default model (optional)", cfg.Defaults.Model)

		// 4. Gemini API key (optional)
		cfg.Gemini.APIKey = prompt(scanner, "Gemini API key (optional)", cfg.Gemini.APIKey)

		// 5. Max concurrent executions
		maxStr := prompt(scanner, "Max concurrent executions", strconv.Itoa(cfg.MaxConcurrent))
		if n, err := strconv.Atoi(maxStr); err == nil && n > 0 {
			cfg.MaxConcurrent = n
		}

		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return fmt.Errorf("create data directory: %w", err)
		}
		claudeDir, err := config.InitClaudeDir(cfg.DataDir)
		if err != nil {
			return fmt.Errorf("init claude config: %w", err)
		}

		if err := config.Save(cfgPath, cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}

		fmt.Println()
		fmt.Println("Configuration saved to", cfgPath)
		fmt.Println("Claude Code config directory:", claudeDir)
		return nil
	},
}

// prompt displays a labeled prompt with a default value and reads user input.
// If the user enters nothing, the default is returned.
func prompt(scanner *bufio.Scanner, label, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", label, defaultVal)
	} else {
		fmt.Printf("%s: ", label)
	}
	if scanner.Scan() {
		input := strings.TrimSpace(scanner.Text())
		if input != "" {
			return input
		}
	}
	return defaultVal
}
