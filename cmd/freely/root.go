package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/freely-dev/freely/internal/agent"
	"github.com/freely-dev/freely/internal/bus"
	"github.com/freely-dev/freely/internal/config"
	"github.com/freely-dev/freely/internal/credentials"
	"github.com/freely-dev/freely/internal/dispatch"
	"github.com/freely-dev/freely/internal/host"
	"github.com/freely-dev/freely/internal/state"
	"github.com/freely-dev/freely/internal/tokens"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "freely",
	Short: "Agent execution bridge for the Freely desktop app",
	Long: `freely manages sessions, tasks, and credentials for the coding-agent
tools (Claude Code, Codex, Gemini) that power the Freely desktop app.

Live agent execution requires the desktop shell; outside of it, run
commands degrade to a placeholder response while session and task
state remain fully inspectable.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config",
		filepath.Join(os.Getenv("HOME"), ".freely", "config.json"),
		"config file path")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig loads the config file, sets up logging, and migrates any
// legacy data directory. Exits on failure: no command can run without
// config.
func loadConfig() *config.Config {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	setupLogging(cfg.LogLevel)

	state.MigrateLegacyDataDir(filepath.Join(os.Getenv("HOME"), ".pluely"), cfg.DataDir)
	return cfg
}

func setupLogging(logLevel string) {
	var level slog.Level
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// credentialChain resolves secrets from the credential store first,
// falling back to config for the Gemini key.
type credentialChain struct {
	store *credentials.Store
	cfg   *config.Config
}

func (c credentialChain) Get(name string) (string, bool) {
	if v, ok := c.store.Get(name); ok {
		return v, true
	}
	if name == "GEMINI_API_KEY" && c.cfg.Gemini.APIKey != "" {
		return c.cfg.Gemini.APIKey, true
	}
	return "", false
}

// app bundles the wired components every command needs.
type app struct {
	cfg        *config.Config
	bus        *bus.Bus
	sessions   *state.SessionStore
	tasks      *state.TaskStore
	creds      *credentials.Store
	registry   *agent.Registry
	dispatcher *dispatch.Dispatcher
}

// newApp wires stores, adapters, and the dispatcher against the given
// bridge. CLI commands pass host.Unavailable{}; the desktop shell
// embeds its own bridge.
func newApp(bridge host.Bridge) *app {
	cfg := loadConfig()
	b := bus.New()

	a := &app{
		cfg:      cfg,
		bus:      b,
		sessions: state.NewSessionStore(cfg.DataDir, b),
		tasks:    state.NewTaskStore(cfg.DataDir, b),
		creds:    credentials.NewStore(cfg.DataDir),
		registry: agent.NewRegistry(),
	}

	deps := agent.Deps{
		Sessions:    a.sessions,
		Tasks:       a.tasks,
		Credentials: credentialChain{store: a.creds, cfg: cfg},
		Bridge:      bridge,
		Estimator:   tokens.NewEstimator(),
	}
	a.registry.Register(agent.NewClaude(deps))
	a.registry.Register(agent.NewCodex(deps))
	a.registry.Register(agent.NewGemini(deps))

	a.dispatcher = dispatch.New(a.registry, int64(cfg.MaxConcurrent))
	return a
}
