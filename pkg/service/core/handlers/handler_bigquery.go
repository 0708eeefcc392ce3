package handlers

import (
	"context"
	"net/http"

	"github.com/agentic-etl/etl-backend/pkg/service"
)

type BigQueryHandler struct {
	bigQueryService service.BigQueryService
}

func (h *BigQueryHandler) ValidateDDL(ctx context.Context, _ *http.Request, in service.ValidateDDLRequest) (*service.DryRunResult, error) {
	result, err := h.bigQueryService.ValidateDDL(ctx, in)
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (h *BigQueryHandler) DeployDDL(ctx context.Context, _ *http.Request, in service.DeployDDLRequest) (*service.JobStatistics, error) {
	stats, err := h.bigQueryService.DeployDDL(ctx, in)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

func NewBigQueryHandler(bigQueryService service.BigQueryService) *BigQueryHandler {
	return &BigQueryHandler{
		bigQueryService: bigQueryService,
	}
}
