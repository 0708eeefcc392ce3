package agent

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/agentic-etl/etl-backend/pkg/service"
)

// The CLI's stream-json framing nests assistant and user payloads under a
// "message" key; the frames relayed to the browser are flattened, matching
// what the chat frontend renders.

type wireFrame struct {
	Type    string       `json:"type"`
	Subtype string       `json:"subtype,omitempty"`
	Message *wireMessage `json:"message,omitempty"`

	SessionID     string         `json:"session_id,omitempty"`
	IsError       bool           `json:"is_error,omitempty"`
	NumTurns      int            `json:"num_turns,omitempty"`
	DurationMS    int64          `json:"duration_ms,omitempty"`
	DurationAPIMS int64          `json:"duration_api_ms,omitempty"`
	TotalCostUSD  float64        `json:"total_cost_usd,omitempty"`
	Usage         map[string]any `json:"usage,omitempty"`
	Result        string         `json:"result,omitempty"`

	Data map[string]any `json:"data,omitempty"`
}

type wireMessage struct {
	Role    string          `json:"role"`
	Model   string          `json:"model,omitempty"`
	Content json.RawMessage `json:"content,omitempty"`
}

type wireBlock struct {
	Type string `json:"type"`

	Text string `json:"text,omitempty"`

	ID    string         `json:"id,omitempty"`
	Name  string         `json:"name,omitempty"`
	Input map[string]any `json:"input,omitempty"`

	ToolUseID string `json:"tool_use_id,omitempty"`
	Content   any    `json:"content,omitempty"`
	IsError   bool   `json:"is_error,omitempty"`

	Thinking  string `json:"thinking,omitempty"`
	Signature string `json:"signature,omitempty"`
}

func decodeFrame(line []byte) (*service.AgentMessage, error) {
	var frame wireFrame

	err := json.Unmarshal(line, &frame)
	if err != nil {
		return nil, fmt.Errorf("unmarshalling frame: %w", err)
	}

	switch frame.Type {
	case service.MessageTypeSystem:
		data := frame.Data
		if data == nil {
			// init frames inline their payload instead of nesting it
			data = map[string]any{}
			_ = json.Unmarshal(line, &data)
			delete(data, "type")
			delete(data, "subtype")
		}

		return &service.AgentMessage{
			Type:    service.MessageTypeSystem,
			Subtype: frame.Subtype,
			Data:    data,
		}, nil

	case service.MessageTypeAssistant, service.MessageTypeUser:
		msg := &service.AgentMessage{
			Type: frame.Type,
		}
		if frame.Message == nil {
			return nil, fmt.Errorf("%s frame without message payload", frame.Type)
		}

		msg.Model = frame.Message.Model

		blocks, err := decodeBlocks(frame.Message.Content)
		if err != nil {
			return nil, fmt.Errorf("decoding %s content: %w", frame.Type, err)
		}
		msg.Content = blocks

		return msg, nil

	case service.MessageTypeResult:
		return &service.AgentMessage{
			Type:          service.MessageTypeResult,
			Subtype:       frame.Subtype,
			SessionID:     frame.SessionID,
			IsError:       frame.IsError,
			NumTurns:      frame.NumTurns,
			DurationMS:    frame.DurationMS,
			DurationAPIMS: frame.DurationAPIMS,
			TotalCostUSD:  frame.TotalCostUSD,
			Usage:         frame.Usage,
			Result:        frame.Result,
		}, nil

	default:
		return nil, fmt.Errorf("unknown frame type %q", frame.Type)
	}
}

// decodeBlocks accepts either a plain string (simple user turns) or a list
// of typed content blocks.
func decodeBlocks(raw json.RawMessage) ([]service.ContentBlock, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return []service.ContentBlock{{Type: service.BlockTypeText, Text: plain}}, nil
	}

	var wire []wireBlock
	err := json.Unmarshal(raw, &wire)
	if err != nil {
		return nil, err
	}

	blocks := make([]service.ContentBlock, 0, len(wire))
	for _, b := range wire {
		switch b.Type {
		case service.BlockTypeText:
			blocks = append(blocks, service.ContentBlock{
				Type: service.BlockTypeText,
				Text: b.Text,
			})
		case service.BlockTypeToolUse:
			blocks = append(blocks, service.ContentBlock{
				Type:  service.BlockTypeToolUse,
				ID:    b.ID,
				Name:  b.Name,
				Input: b.Input,
			})
		case service.BlockTypeToolResult:
			blocks = append(blocks, service.ContentBlock{
				Type:      service.BlockTypeToolResult,
				ToolUseID: b.ToolUseID,
				Content:   b.Content,
				IsError:   b.IsError,
			})
		case service.BlockTypeThinking:
			blocks = append(blocks, service.ContentBlock{
				Type:      service.BlockTypeThinking,
				Thinking:  b.Thinking,
				Signature: b.Signature,
			})
		default:
			// forward unknown block types as text so nothing silently
			// disappears from the transcript
			blocks = append(blocks, service.ContentBlock{
				Type: b.Type,
				Text: b.Text,
			})
		}
	}

	return blocks, nil
}

func writeUserTurn(w io.Writer, prompt string) error {
	frame := wireFrame{
		Type: service.MessageTypeUser,
		Message: &wireMessage{
			Role:    "user",
			Content: mustMarshalText(prompt),
		},
	}

	data, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("marshalling user turn: %w", err)
	}

	data = append(data, '\n')

	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("writing user turn: %w", err)
	}

	return nil
}

func mustMarshalText(text string) json.RawMessage {
	data, err := json.Marshal([]wireBlock{{Type: service.BlockTypeText, Text: text}})
	if err != nil {
		// marshalling a string slice cannot fail
		panic(err)
	}

	return data
}
