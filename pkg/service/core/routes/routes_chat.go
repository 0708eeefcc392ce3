package routes

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/rs/zerolog"

	"github.com/agentic-etl/etl-backend/pkg/service/core/handlers"
	"github.com/agentic-etl/etl-backend/pkg/service/core/transport"
)

type ChatEndpoints struct {
	Chat      http.HandlerFunc
	ResetChat http.HandlerFunc
}

func NewChatEndpoints(log zerolog.Logger, h *handlers.ChatHandler) *ChatEndpoints {
	return &ChatEndpoints{
		Chat:      h.ServeWS,
		ResetChat: transport.For(h.ResetChat).Build(log),
	}
}

func NewChatRoutes(endpoints *ChatEndpoints) AddRoutesFn {
	return func(router chi.Router) {
		router.Get("/ws/chat", endpoints.Chat)

		router.Route("/api/chat", func(r chi.Router) {
			r.Post("/reset", endpoints.ResetChat)
		})
	}
}
