// internal/agent/tool.go
package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/freely-dev/freely/internal/host"
	"github.com/freely-dev/freely/internal/tokens"
	"github.com/freely-dev/freely/internal/types"
)

// CredentialSource resolves a named secret; absence is (_, false).
type CredentialSource interface {
	Get(name string) (string, bool)
}

// Deps are the collaborators every adapter needs.
type Deps struct {
	Sessions    types.SessionStore
	Tasks       types.TaskStore
	Credentials CredentialSource
	Bridge      host.Bridge
	// Estimator fills in token usage when the host reports none. May
	// be nil.
	Estimator *tokens.Estimator
}

// variant holds the parameters that differ between the three tools.
type variant struct {
	toolType types.ToolType
	name     string
	command  string
	binary   string
	// credential names the secret that must exist before execution.
	// Empty means the tool authenticates ambiently (OAuth).
	credential string
}

// Tool implements Adapter for one variant. The streaming loop lives in
// runner.go; everything here is the static surface.
type Tool struct {
	variant
	deps Deps
}

func newTool(v variant, deps Deps) *Tool {
	return &Tool{variant: v, deps: deps}
}

// NewClaude creates the adapter for the Claude Code CLI. Auth is
// ambient (OAuth), so there is no credential gate.
func NewClaude(deps Deps) *Tool {
	return newTool(variant{
		toolType: types.ToolClaudeCode,
		name:     "Claude Code",
		command:  host.CommandRunClaude,
		binary:   "claude",
	}, deps)
}

// NewCodex creates the adapter for the Codex CLI. Auth is ambient
// (OAuth), so there is no credential gate.
func NewCodex(deps Deps) *Tool {
	return newTool(variant{
		toolType: types.ToolCodex,
		name:     "Codex",
		command:  host.CommandRunCodex,
		binary:   "codex",
	}, deps)
}

// NewGemini creates the adapter for the Gemini CLI, which requires an
// API key from the credential store before any execution.
func NewGemini(deps Deps) *Tool {
	return newTool(variant{
		toolType:   types.ToolGemini,
		name:       "Gemini",
		command:    host.CommandRunGemini,
		binary:     "gemini",
		credential: "GEMINI_API_KEY",
	}, deps)
}

func (t *Tool) ToolType() types.ToolType { return t.toolType }

func (t *Tool) Name() string { return t.name }

// Capabilities is a static declaration: all three tools stream and
// execute live; none import, create, or fork sessions yet.
func (t *Tool) Capabilities() CapabilitySet {
	return CapabilitySet{
		CapStreaming:     true,
		CapLiveExecution: true,
		CapSessionImport: false,
		CapSessionCreate: false,
		CapSessionFork:   false,
	}
}

// CheckInstalled reports whether the tool binary is present on the
// host. Without a bridge it is false immediately; a failed probe is
// caught and normalized to false, never raised.
func (t *Tool) CheckInstalled(ctx context.Context) bool {
	if t.deps.Bridge == nil || !t.deps.Bridge.Available() {
		return false
	}
	ok, err := t.deps.Bridge.ProbeTool(ctx, t.binary)
	if err != nil {
		slog.Debug("tool probe failed", "tool", t.name, "error", err)
		return false
	}
	return ok
}

// ExecutePrompt delegates to the streaming path with no callbacks.
func (t *Tool) ExecutePrompt(ctx context.Context, req Request) *types.ExecutionResult {
	return t.ExecutePromptWithStreaming(ctx, req, nil)
}

// ImportSession fails immediately: no backing tool supports importing
// foreign session transcripts yet.
func (t *Tool) ImportSession(context.Context, []byte) error {
	return fmt.Errorf("%s: session import is not supported", t.name)
}

// NormalizeSDKResponse belonged to the pre-streaming execution path.
//
// Deprecated: the streaming contract replaced it; it fails loudly so a
// stale caller is caught instead of silently receiving nothing.
func (t *Tool) NormalizeSDKResponse([]byte) (*types.ExecutionResult, error) {
	return nil, fmt.Errorf("%s: NormalizeSDKResponse is deprecated, use ExecutePromptWithStreaming", t.name)
}

var _ Adapter = (*Tool)(nil)
