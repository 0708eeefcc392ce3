package routes

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/rs/zerolog"

	"github.com/agentic-etl/etl-backend/pkg/service/core/handlers"
	"github.com/agentic-etl/etl-backend/pkg/service/core/transport"
)

type WorkspaceEndpoints struct {
	Upload    http.HandlerFunc
	ListFiles http.HandlerFunc
	GetFile   http.HandlerFunc
	WriteFile http.HandlerFunc
	Info      http.HandlerFunc
}

func NewWorkspaceEndpoints(log zerolog.Logger, h *handlers.WorkspaceHandler) *WorkspaceEndpoints {
	return &WorkspaceEndpoints{
		Upload:    transport.For(h.Upload).Build(log),
		ListFiles: transport.For(h.ListFiles).Build(log),
		GetFile:   transport.For(h.GetFile).Build(log),
		WriteFile: transport.For(h.WriteFile).Build(log),
		Info:      transport.For(h.Info).Build(log),
	}
}

func NewWorkspaceRoutes(endpoints *WorkspaceEndpoints) AddRoutesFn {
	return func(router chi.Router) {
		router.Route("/api/upload", func(r chi.Router) {
			r.Post("/", endpoints.Upload)
		})

		router.Route("/api/files", func(r chi.Router) {
			r.Get("/", endpoints.ListFiles)
		})

		router.Route("/api/workspace", func(r chi.Router) {
			r.Get("/", endpoints.Info)
		})

		router.Route("/api/file", func(r chi.Router) {
			r.Get("/*", endpoints.GetFile)
			r.Post("/*", endpoints.WriteFile)
		})
	}
}
