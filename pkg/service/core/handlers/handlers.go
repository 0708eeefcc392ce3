package handlers

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/agentic-etl/etl-backend/pkg/config"
	"github.com/agentic-etl/etl-backend/pkg/service/core"
)

// Metrics counts the request-level events the handlers observe.
type Metrics struct {
	Uploads      prometheus.Counter
	AgentQueries prometheus.Counter
	ChatMessages prometheus.Counter
	RelayErrors  prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Uploads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "etl_backend",
			Name:      "uploaded_files_total",
			Help:      "Number of files stored in the workspace via upload.",
		}),
		AgentQueries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "etl_backend",
			Name:      "agent_queries_total",
			Help:      "Number of one-shot generation queries sent to the agent.",
		}),
		ChatMessages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "etl_backend",
			Name:      "chat_messages_total",
			Help:      "Number of user chat turns received over websocket.",
		}),
		RelayErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "etl_backend",
			Name:      "chat_relay_errors_total",
			Help:      "Number of chat turns that failed while relaying agent frames.",
		}),
	}

	reg.MustRegister(m.Uploads, m.AgentQueries, m.ChatMessages, m.RelayErrors)

	return m
}

type Handlers struct {
	WorkspaceHandler *WorkspaceHandler
	GenerateHandler  *GenerateHandler
	ChatHandler      *ChatHandler
	ModeHandler      *ModeHandler
	BigQueryHandler  *BigQueryHandler
}

func NewHandlers(cfg config.Config, s *core.Services, metrics *Metrics, log zerolog.Logger) *Handlers {
	return &Handlers{
		WorkspaceHandler: NewWorkspaceHandler(
			s.WorkspaceService,
			cfg.Workspace.MaxUploadBytes,
			metrics,
			log.With().Str("component", "workspace").Logger(),
		),
		GenerateHandler: NewGenerateHandler(s.GenerateService, metrics),
		ChatHandler: NewChatHandler(
			s.ChatService,
			cfg.CORS.AllowedOrigins,
			metrics,
			log.With().Str("component", "chat").Logger(),
		),
		ModeHandler:     NewModeHandler(s.ModeService),
		BigQueryHandler: NewBigQueryHandler(s.BigQueryService),
	}
}
