package routes

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/rs/zerolog"

	"github.com/agentic-etl/etl-backend/pkg/service/core/handlers"
	"github.com/agentic-etl/etl-backend/pkg/service/core/transport"
)

type ModeEndpoints struct {
	GetMode    http.HandlerFunc
	SwitchMode http.HandlerFunc
}

func NewModeEndpoints(log zerolog.Logger, h *handlers.ModeHandler) *ModeEndpoints {
	return &ModeEndpoints{
		GetMode:    transport.For(h.GetMode).Build(log),
		SwitchMode: transport.For(h.SwitchMode).RequestFromJSON().Build(log),
	}
}

func NewModeRoutes(endpoints *ModeEndpoints) AddRoutesFn {
	return func(router chi.Router) {
		router.Route("/api/mode", func(r chi.Router) {
			r.Get("/", endpoints.GetMode)
			r.Post("/switch", endpoints.SwitchMode)
		})
	}
}
