package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Capstone-E1/soilsense_backend/config"
	"github.com/Capstone-E1/soilsense_backend/internal/ws"
)

// SetupRoutes configures the pages, the read API, exports, metrics and the
// websocket feed. wsHub may be nil.
func SetupRoutes(cfg config.ServerConfig, handlers *Handlers, wsHub *ws.Hub, metricsHandler http.Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Pages
	r.Get("/", handlers.IndexPage)
	r.Get("/mapa", handlers.MapPage)
	r.Post("/mapa", handlers.MapPage)
	r.Get("/dashboard", handlers.DashboardPage)

	r.Route("/api", func(r chi.Router) {
		// Recent window and cycling feed
		r.Get("/dados", handlers.GetRecentReadings)
		r.Get("/dados_atuais", handlers.GetCurrentReading)

		r.Get("/status", handlers.GetStatus)
		r.Get("/stats", handlers.GetDepthStats)

		r.Route("/export", func(r chi.Router) {
			r.Get("/dados.xlsx", handlers.ExportExcel)
			r.Get("/dados.csv", handlers.ExportCSV)
		})
	})

	r.Get("/healthz", handlers.Health)

	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	// WebSocket route for the live feed
	if wsHub != nil {
		r.HandleFunc("/ws", wsHub.HandleWebSocket)
	}

	return r
}
