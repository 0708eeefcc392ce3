package routes

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/goccy/go-json"
)

type HealthEndpoints struct {
	GetHealth http.HandlerFunc
}

func NewHealthEndpoints() *HealthEndpoints {
	return &HealthEndpoints{
		GetHealth: func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
		},
	}
}

func NewHealthRoutes(endpoints *HealthEndpoints) AddRoutesFn {
	return func(router chi.Router) {
		router.Get("/health", endpoints.GetHealth)
	}
}
