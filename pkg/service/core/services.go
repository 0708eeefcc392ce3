package core

import (
	"github.com/agentic-etl/etl-backend/pkg/config"
	"github.com/agentic-etl/etl-backend/pkg/prompts"
	"github.com/agentic-etl/etl-backend/pkg/service"
	"github.com/agentic-etl/etl-backend/pkg/service/core/api"
	"github.com/agentic-etl/etl-backend/pkg/service/core/storage"
)

type Services struct {
	WorkspaceService service.WorkspaceService
	GenerateService  service.GenerateService
	ChatService      service.ChatService
	ModeService      service.ModeService
	BigQueryService  service.BigQueryService
}

func NewServices(
	cfg config.Config,
	stores *storage.Stores,
	clients *api.Clients,
	modeState *prompts.ModeState,
	newAgent AgentFactory,
) (*Services, error) {
	bigQueryService := NewBigQueryService(
		clients.BigQueryAPI,
		cfg.BigQuery.DefaultProject,
		cfg.BigQuery.GCPRegion,
	)

	return &Services{
		WorkspaceService: NewWorkspaceService(stores.WorkspaceStorage),
		GenerateService: NewGenerateService(
			newAgent,
			bigQueryService,
			cfg.BigQuery.DefaultProject,
			cfg.Agent.QueryTimeout(),
		),
		ChatService:     NewChatService(clients.AgentAPI),
		ModeService:     NewModeService(modeState, clients.AgentAPI),
		BigQueryService: bigQueryService,
	}, nil
}
