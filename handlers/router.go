package handlers

import (
	"net/http"

	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"luckyDrawAPI/middleware"
)

type RouterConfig struct {
	Draw        *DrawHandler
	Leaderboard *LeaderboardHandler
	Health      *HealthHandler
	RateLimiter *middleware.RateLimiter

	MetricsUser    string
	MetricsPass    string
	AllowedOrigins []string
	StaticDir      string
}

// NewRouter wires every route. Legacy widget paths stay mounted next to /api/v1.
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.AccessLog)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(cfg.MetricsUser, cfg.MetricsPass)(promhttp.Handler())).Methods("GET")
	r.HandleFunc("/health", cfg.Health.Health).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	if cfg.RateLimiter != nil {
		api.Use(cfg.RateLimiter.Middleware)
	}

	api.HandleFunc("/v1/draw", cfg.Draw.Draw).Methods("POST")
	api.HandleFunc("/v1/leaderboard", cfg.Leaderboard.GetLeaderboard).Methods("GET")
	api.HandleFunc("/v1/prizes", cfg.Draw.GetPrizes).Methods("GET")

	api.HandleFunc("/save-result", cfg.Draw.Draw).Methods("POST")
	api.HandleFunc("/leaderboard", cfg.Leaderboard.GetLeaderboard).Methods("GET")

	if cfg.StaticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(cfg.StaticDir)))
		log.Printf("Serving widget from %s at /", cfg.StaticDir)
	}

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	corsHandler := gorillaHandlers.CORS(
		gorillaHandlers.AllowedOrigins(origins),
		gorillaHandlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		gorillaHandlers.AllowedHeaders([]string{"Content-Type"}),
		gorillaHandlers.ExposedHeaders([]string{"Content-Length"}),
	)

	return gorillaHandlers.RecoveryHandler(gorillaHandlers.PrintRecoveryStack(true))(corsHandler(r))
}
