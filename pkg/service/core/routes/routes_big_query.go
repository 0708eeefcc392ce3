package routes

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/rs/zerolog"

	"github.com/agentic-etl/etl-backend/pkg/service/core/handlers"
	"github.com/agentic-etl/etl-backend/pkg/service/core/transport"
)

type BigQueryEndpoints struct {
	ValidateDDL http.HandlerFunc
	DeployDDL   http.HandlerFunc
}

func NewBigQueryEndpoints(log zerolog.Logger, h *handlers.BigQueryHandler) *BigQueryEndpoints {
	return &BigQueryEndpoints{
		ValidateDDL: transport.For(h.ValidateDDL).RequestFromJSON().Build(log),
		DeployDDL:   transport.For(h.DeployDDL).RequestFromJSON().Build(log),
	}
}

func NewBigQueryRoutes(endpoints *BigQueryEndpoints) AddRoutesFn {
	return func(router chi.Router) {
		router.Route("/api/validate-ddl", func(r chi.Router) {
			r.Post("/", endpoints.ValidateDDL)
		})

		router.Route("/api/deploy-ddl", func(r chi.Router) {
			r.Post("/", endpoints.DeployDDL)
		})
	}
}
