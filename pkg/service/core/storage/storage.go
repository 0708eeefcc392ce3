package storage

import (
	"github.com/rs/zerolog"

	"github.com/agentic-etl/etl-backend/pkg/config"
	"github.com/agentic-etl/etl-backend/pkg/service"
	"github.com/agentic-etl/etl-backend/pkg/service/core/storage/disk"
)

type Stores struct {
	WorkspaceStorage service.WorkspaceStorage
}

func NewStores(
	cfg config.Config,
	log zerolog.Logger,
) *Stores {
	return &Stores{
		WorkspaceStorage: disk.NewStore(cfg.Workspace.BaseDir, log.With().Str("component", "workspace").Logger()),
	}
}
