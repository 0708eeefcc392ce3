package core

import (
	"context"

	"github.com/agentic-etl/etl-backend/pkg/errs"
	"github.com/agentic-etl/etl-backend/pkg/prompts"
	"github.com/agentic-etl/etl-backend/pkg/service"
)

var _ service.ModeService = &modeService{}

type modeService struct {
	state    *prompts.ModeState
	agentAPI service.AgentAPI
}

func (s *modeService) Current(_ context.Context) service.Mode {
	return s.state.Current()
}

// Switch changes the prompt-assembly mode. The running conversation is
// reset when the mode actually changes, so the next turn starts with the
// new system prompt.
func (s *modeService) Switch(ctx context.Context, mode service.Mode) (service.Mode, error) {
	const op errs.Op = "modeService.Switch"

	_, changed := s.state.Set(mode)
	if !changed {
		return mode, nil
	}

	err := s.agentAPI.NewConversation(ctx)
	if err != nil {
		return "", errs.E(errs.Internal, op, err)
	}

	return mode, nil
}

func NewModeService(state *prompts.ModeState, agentAPI service.AgentAPI) *modeService {
	return &modeService{
		state:    state,
		agentAPI: agentAPI,
	}
}
