package api

import (
	"github.com/agentic-etl/etl-backend/pkg/bq"
	"github.com/agentic-etl/etl-backend/pkg/service"
	"github.com/agentic-etl/etl-backend/pkg/service/core/api/gcp"
)

type Clients struct {
	AgentAPI    service.AgentAPI
	BigQueryAPI service.BigQueryAPI
}

func NewClients(
	agentAPI service.AgentAPI,
	bqClient bq.Operations,
) *Clients {
	return &Clients{
		AgentAPI:    agentAPI,
		BigQueryAPI: gcp.NewBigQueryAPI(bqClient),
	}
}
