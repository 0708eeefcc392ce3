package handlers

import (
	"context"
	"net/http"

	"github.com/agentic-etl/etl-backend/pkg/service"
)

type GenerateHandler struct {
	generateService service.GenerateService
	metrics         *Metrics
}

func (h *GenerateHandler) GenerateDDL(ctx context.Context, _ *http.Request, in service.GenerateRequest) (*service.DDLResult, error) {
	h.metrics.AgentQueries.Inc()

	result, err := h.generateService.GenerateDDL(ctx, in)
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (h *GenerateHandler) GenerateETL(ctx context.Context, _ *http.Request, in service.GenerateRequest) (*service.ETLResult, error) {
	h.metrics.AgentQueries.Inc()

	result, err := h.generateService.GenerateETL(ctx, in)
	if err != nil {
		return nil, err
	}

	return result, nil
}

func NewGenerateHandler(generateService service.GenerateService, metrics *Metrics) *GenerateHandler {
	return &GenerateHandler{
		generateService: generateService,
		metrics:         metrics,
	}
}
