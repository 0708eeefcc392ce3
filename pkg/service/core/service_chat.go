package core

import (
	"context"

	"github.com/agentic-etl/etl-backend/pkg/errs"
	"github.com/agentic-etl/etl-backend/pkg/service"
)

var _ service.ChatService = &chatService{}

type chatService struct {
	agentAPI service.AgentAPI
}

// Stream relays one user turn to the persistent agent conversation. Agent
// failures surface as error frames on the returned channel; the
// conversation itself survives and continues with the next turn.
func (s *chatService) Stream(ctx context.Context, userMessage string) (<-chan *service.AgentMessage, error) {
	const op errs.Op = "chatService.Stream"

	if userMessage == "" {
		return nil, errs.E(errs.InvalidRequest, op, errs.Parameter("message"), errs.Str("empty chat message"))
	}

	frames, err := s.agentAPI.Query(ctx, userMessage)
	if err != nil {
		return nil, errs.E(errs.Unavailable, op, err)
	}

	return frames, nil
}

func (s *chatService) Reset(ctx context.Context) error {
	const op errs.Op = "chatService.Reset"

	err := s.agentAPI.NewConversation(ctx)
	if err != nil {
		return errs.E(errs.Internal, op, err)
	}

	return nil
}

func NewChatService(agentAPI service.AgentAPI) *chatService {
	return &chatService{
		agentAPI: agentAPI,
	}
}
