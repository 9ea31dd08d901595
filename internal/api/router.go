package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/adoptimizer/adoptimizer/internal/api/handlers"
	"github.com/adoptimizer/adoptimizer/internal/api/response"
	"github.com/adoptimizer/adoptimizer/internal/auth"
	"github.com/adoptimizer/adoptimizer/internal/version"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check endpoint (no versioning)
	s.router.Get("/health", s.healthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		// Auth routes (no token required)
		authHandler := handlers.NewAuthHandler(s.users, s.tokens)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})

		// Everything else requires a valid token
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(s.tokens))

			r.Get("/auth/me", authHandler.Me)

			predictHandler := handlers.NewPredictHandler(s.engine, s.history)
			r.Post("/predict", predictHandler.Predict)

			modelHandler := handlers.NewModelHandler(s.engine.Lifecycle())
			r.Route("/model", func(r chi.Router) {
				r.Post("/train", modelHandler.Train)
				r.Get("/status", modelHandler.Status)
			})

			optimizeHandler := handlers.NewOptimizeHandler(s.engine, s.metrics, s.history)
			r.Post("/optimize", optimizeHandler.Optimize)

			metricsHandler := handlers.NewMetricsHandler(s.metrics)
			r.Route("/metrics", func(r chi.Router) {
				r.Post("/", metricsHandler.Insert)
				r.Get("/summary", metricsHandler.Summary)
				r.Get("/campaigns", metricsHandler.Campaigns)
				r.Post("/seed", metricsHandler.Seed)
			})

			historyHandler := handlers.NewHistoryHandler(s.history)
			r.Get("/predictions", historyHandler.Predictions)
			r.Get("/optimizations", historyHandler.Optimizations)
			r.Get("/recommendations", historyHandler.Recommendations)

			insightsHandler := handlers.NewInsightsHandler(s.engine, s.metrics)
			r.Get("/insights/ctr", insightsHandler.CTRChart)
		})
	})
}

// healthCheck returns server health status.
func (s *Server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "adoptimizer-api",
		"version": version.GetVersion(),
	})
}
