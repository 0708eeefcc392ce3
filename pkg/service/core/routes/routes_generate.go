package routes

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/rs/zerolog"

	"github.com/agentic-etl/etl-backend/pkg/service/core/handlers"
	"github.com/agentic-etl/etl-backend/pkg/service/core/transport"
)

type GenerateEndpoints struct {
	GenerateDDL http.HandlerFunc
	GenerateETL http.HandlerFunc
}

func NewGenerateEndpoints(log zerolog.Logger, h *handlers.GenerateHandler) *GenerateEndpoints {
	return &GenerateEndpoints{
		GenerateDDL: transport.For(h.GenerateDDL).RequestFromJSON().Build(log),
		GenerateETL: transport.For(h.GenerateETL).RequestFromJSON().Build(log),
	}
}

func NewGenerateRoutes(endpoints *GenerateEndpoints) AddRoutesFn {
	return func(router chi.Router) {
		router.Route("/api/generate-ddl", func(r chi.Router) {
			r.Post("/", endpoints.GenerateDDL)
		})

		router.Route("/api/generate-etl", func(r chi.Router) {
			r.Post("/", endpoints.GenerateETL)
		})
	}
}
