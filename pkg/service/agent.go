package service

import (
	"context"

	"github.com/goccy/go-json"
)

// AgentAPI is the boundary to the external LLM coding agent. A single
// conversation is kept alive across queries until NewConversation or Close.
type AgentAPI interface {
	// Query sends one user turn and returns a channel of response frames.
	// The channel is closed after the terminating result frame, or after an
	// error frame when the agent fails mid-turn.
	Query(ctx context.Context, prompt string) (<-chan *AgentMessage, error)
	// NewConversation discards the current conversation so the next query
	// starts fresh.
	NewConversation(ctx context.Context) error
	Close() error
}

// Agent message frame types, matching what the browser chat expects.
const (
	MessageTypeSystem    = "system"
	MessageTypeAssistant = "assistant"
	MessageTypeUser      = "user"
	MessageTypeResult    = "result"
	MessageTypeError     = "error"
)

// Content block types within assistant and user frames.
const (
	BlockTypeText       = "text"
	BlockTypeToolUse    = "tool_use"
	BlockTypeToolResult = "tool_result"
	BlockTypeThinking   = "thinking"
)

// AgentMessage is one frame of the agent's streamed response. It is both
// the decoded form of the agent CLI's stream-json output and the frame
// relayed verbatim to the browser over the chat socket.
type AgentMessage struct {
	Type    string `json:"type"`
	Subtype string `json:"subtype,omitempty"`

	// Assistant and user frames.
	Content []ContentBlock `json:"content,omitempty"`
	Model   string         `json:"model,omitempty"`

	// Result frames.
	SessionID     string         `json:"session_id,omitempty"`
	IsError       bool           `json:"is_error,omitempty"`
	NumTurns      int            `json:"num_turns,omitempty"`
	DurationMS    int64          `json:"duration_ms,omitempty"`
	DurationAPIMS int64          `json:"duration_api_ms,omitempty"`
	TotalCostUSD  float64        `json:"total_cost_usd,omitempty"`
	Usage         map[string]any `json:"usage,omitempty"`
	Result        string         `json:"result,omitempty"`

	// System frames carry free-form data.
	Data map[string]any `json:"data,omitempty"`

	// Error frames carry a plain string under the "content" key, the same
	// key assistant frames use for their block list. See MarshalJSON.
	ErrorContent string `json:"-"`
}

// MarshalJSON renders error frames as {"type":"error","content":"..."}
// with a string content, which is what the chat frontend expects. All
// other frame types marshal normally.
func (m *AgentMessage) MarshalJSON() ([]byte, error) {
	if m.Type == MessageTypeError {
		return json.Marshal(struct {
			Type    string `json:"type"`
			Content string `json:"content"`
		}{
			Type:    m.Type,
			Content: m.ErrorContent,
		})
	}

	type alias AgentMessage

	return json.Marshal((*alias)(m))
}

// ContentBlock is a single block inside an assistant or user frame.
type ContentBlock struct {
	Type string `json:"type"`

	// text blocks
	Text string `json:"text,omitempty"`

	// tool_use blocks
	ID    string         `json:"id,omitempty"`
	Name  string         `json:"name,omitempty"`
	Input map[string]any `json:"input,omitempty"`

	// tool_result blocks
	ToolUseID string `json:"tool_use_id,omitempty"`
	Content   any    `json:"content,omitempty"`
	IsError   bool   `json:"is_error,omitempty"`

	// thinking blocks
	Thinking  string `json:"thinking,omitempty"`
	Signature string `json:"signature,omitempty"`
}

// ErrorMessage builds the frame surfaced to chat clients when the agent
// fails; the conversation itself continues.
func ErrorMessage(content string) *AgentMessage {
	return &AgentMessage{
		Type:         MessageTypeError,
		ErrorContent: content,
	}
}

// Text concatenates the text blocks of a frame.
func (m *AgentMessage) Text() string {
	var out string
	for _, b := range m.Content {
		if b.Type == BlockTypeText {
			out += b.Text
		}
	}

	return out
}
