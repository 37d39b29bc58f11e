// internal/types/models.go
package types

import (
	"fmt"
	"time"
)

// ToolType identifies which backing agent tool a session or execution uses.
type ToolType string

const (
	ToolClaudeCode ToolType = "claude-code"
	ToolCodex      ToolType = "codex"
	ToolGemini     ToolType = "gemini"
)

// ParseToolType converts a raw string into a known ToolType.
func ParseToolType(raw string) (ToolType, error) {
	switch ToolType(raw) {
	case ToolClaudeCode, ToolCodex, ToolGemini:
		return ToolType(raw), nil
	}
	return "", fmt.Errorf("unknown tool type: %q", raw)
}

// SessionRecord is the persisted continuity scope for one backing tool.
// SDKSessionID is the tool's own continuation token, captured from a
// stream and read back on the next execution for multi-turn context.
type SessionRecord struct {
	SessionID    SessionID `json:"session_id"`
	SDKSessionID string    `json:"sdk_session_id,omitempty"`
	ToolType     ToolType  `json:"tool_type,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TaskRecord tracks one unit of work within a session, carrying the
// resolved model and status as they become known mid-stream.
type TaskRecord struct {
	TaskID    TaskID    `json:"task_id"`
	SessionID SessionID `json:"session_id,omitempty"`
	Status    string    `json:"status,omitempty"`
	Model     string    `json:"model,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TokenUsage tracks token counts for one execution.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// ExecutionResult is the ephemeral outcome of one prompt execution.
// It is returned to the caller and never mutated afterwards.
type ExecutionResult struct {
	UserMessageID       MessageID   `json:"user_message_id"`
	AssistantMessageIDs []MessageID `json:"assistant_message_ids"`
	ResponseText        string      `json:"response_text"`
	ToolType            ToolType    `json:"tool_type"`
	Model               string      `json:"model,omitempty"`
	TokenUsage          *TokenUsage `json:"token_usage,omitempty"`
	WasStopped          bool        `json:"was_stopped,omitempty"`
	Err                 string      `json:"error,omitempty"`
}

// StreamEventType tags the variants of a StreamEvent.
type StreamEventType string

const (
	StreamPartial  StreamEventType = "partial"
	StreamComplete StreamEventType = "complete"
	StreamStopped  StreamEventType = "stopped"
	StreamError    StreamEventType = "error"
)

// StreamEvent is one element of the ordered event sequence a host
// invocation produces. Optional fields arrive non-deterministically:
// any event may carry a resolved model name or continuation token.
type StreamEvent struct {
	Type         StreamEventType `json:"type"`
	Text         string          `json:"text,omitempty"`
	Model        string          `json:"model,omitempty"`
	SDKSessionID string          `json:"sdk_session_id,omitempty"`
	Error        string          `json:"error,omitempty"`
}

// SessionPatch carries the fields a caller wants merged into a session
// record. Nil fields are left untouched.
type SessionPatch struct {
	SDKSessionID *string
	ToolType     *ToolType
}

// TaskPatch carries the fields a caller wants merged into a task record.
type TaskPatch struct {
	SessionID *SessionID
	Status    *string
	Model     *string
}
