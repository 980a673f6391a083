package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/LoweKTH/MarketingAgentFactory/internal/api"
	apimiddleware "github.com/LoweKTH/MarketingAgentFactory/internal/api/middleware"
)

// setupRouter configures the application router with all routes and
// middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(apimiddleware.TraceMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	contentHandler := api.NewContentHandler(app.contentService, app.logger)
	taskHandler := api.NewTaskHandler(app.contentService, app.logger)
	healthHandler := api.NewHealthHandler(app.engineClient)
	authMiddleware := apimiddleware.NewAuthMiddleware(app.config.Auth.JWTSecret)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Post("/content/generate", contentHandler.Generate)
			r.Post("/content/generate/async", contentHandler.GenerateAsync)
			r.Post("/content/preview", contentHandler.Preview)
			r.Post("/content/save", contentHandler.SaveContent)

			r.Get("/tasks", taskHandler.ListTasks)
			r.Get("/tasks/{taskID}", taskHandler.GetTask)
			r.Post("/tasks/{taskID}/cancel", taskHandler.CancelTask)
			r.Delete("/tasks/{taskID}", taskHandler.DeleteTask)
		})
	})

	r.Get("/health", healthHandler.Health)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
