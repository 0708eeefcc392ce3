package service

import (
	"context"
)

// ChatService relays a user turn to the agent and streams response frames
// back. A conversation persists across turns until Reset.
type ChatService interface {
	Stream(ctx context.Context, userMessage string) (<-chan *AgentMessage, error)
	Reset(ctx context.Context) error
}
