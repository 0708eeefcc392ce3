package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"github.com/agentic-etl/etl-backend/pkg/agent"
	"github.com/agentic-etl/etl-backend/pkg/config"
	"github.com/agentic-etl/etl-backend/pkg/prompts"
	"github.com/agentic-etl/etl-backend/pkg/requestlogger"
	"github.com/agentic-etl/etl-backend/pkg/service"
	"github.com/agentic-etl/etl-backend/pkg/service/core"
	apiclients "github.com/agentic-etl/etl-backend/pkg/service/core/api"
	"github.com/agentic-etl/etl-backend/pkg/service/core/handlers"
	"github.com/agentic-etl/etl-backend/pkg/service/core/routes"
	"github.com/agentic-etl/etl-backend/pkg/service/core/storage"

	"github.com/agentic-etl/etl-backend/pkg/bq"
)

var configFilePath = flag.String("config", "config.yaml", "path to config file")

func main() {
	flag.Parse()

	zlog := zerolog.New(os.Stdout).With().Timestamp().Logger()

	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.JSONFormatter{})

	fileParts, err := config.ProcessConfigPath(*configFilePath)
	if err != nil {
		log.WithError(err).Fatal("processing config path")
	}

	cfg, err := config.NewFileSystemLoader().Load(fileParts.FileName, fileParts.Path, "ETL", config.NewDefaultEnvBinder())
	if err != nil {
		log.WithError(err).Fatal("loading config")
	}

	err = cfg.Validate()
	if err != nil {
		log.WithError(err).Fatal("validating config")
	}

	l, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	log.SetLevel(l)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer cancel()

	mode, err := service.ParseMode(cfg.Mode)
	if err != nil {
		log.WithError(err).Fatal("parsing mode")
	}
	modeState := prompts.NewModeState(mode)

	stores := storage.NewStores(cfg, zlog)

	instance, err := stores.WorkspaceStorage.Reset(ctx)
	if err != nil {
		log.WithError(err).Fatal("creating workspace instance")
	}
	log.WithField("workspace", instance.Path).Info("workspace ready")

	assembler := prompts.NewAssembler(cfg.Prompts.Dir)

	agentOpts := agent.Options{
		Binary:         cfg.Agent.Binary,
		Model:          cfg.Agent.Model,
		MaxTurns:       cfg.Agent.MaxTurns,
		PermissionMode: cfg.Agent.PermissionMode,
		WorkDir:        instance.Path,
		SystemPrompt: func() (string, error) {
			return assembler.SystemPrompt(modeState.Current(), instance.Path)
		},
	}

	chatAgent := agent.New(agentOpts, zlog.With().Str("component", "agent").Logger())
	defer chatAgent.Close()

	newAgent := func() service.AgentAPI {
		return agent.New(agentOpts, zlog.With().Str("component", "agent_oneshot").Logger())
	}

	bqClient := bq.NewClient(cfg.BigQuery.Endpoint, cfg.BigQuery.EnableAuth, zlog.With().Str("component", "bq").Logger())

	apiClients := apiclients.NewClients(chatAgent, bqClient)

	services, err := core.NewServices(cfg, stores, apiClients, modeState, newAgent)
	if err != nil {
		log.WithError(err).Fatal("setting up services")
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector())
	metrics := handlers.NewMetrics(promReg)

	h := handlers.NewHandlers(cfg, services, metrics, zlog)

	router := chi.NewRouter()
	router.Use(requestlogger.Middleware(
		zlog.With().Str("component", "http").Logger(),
		"/health",
		"/internal/metrics",
	))

	routes.Add(router, cfg.CORS.AllowedOrigins,
		routes.NewWorkspaceRoutes(routes.NewWorkspaceEndpoints(zlog, h.WorkspaceHandler)),
		routes.NewGenerateRoutes(routes.NewGenerateEndpoints(zlog, h.GenerateHandler)),
		routes.NewBigQueryRoutes(routes.NewBigQueryEndpoints(zlog, h.BigQueryHandler)),
		routes.NewModeRoutes(routes.NewModeEndpoints(zlog, h.ModeHandler)),
		routes.NewChatRoutes(routes.NewChatEndpoints(zlog, h.ChatHandler)),
		routes.NewHealthRoutes(routes.NewHealthEndpoints()),
		routes.NewMetricsRoutes(routes.NewMetricsEndpoints(promReg)),
	)

	if cfg.Debug {
		if err := routes.Print(router, os.Stdout); err != nil {
			log.WithError(err).Warn("printing routes")
		}
	}

	server := http.Server{
		Addr:    net.JoinHostPort(cfg.Server.Address, cfg.Server.Port),
		Handler: router,
	}

	log.Infof("Listening on %s:%s", cfg.Server.Address, cfg.Server.Port)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("Shutdown error")
	}
}
