package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/promptdesk/chat-backend/internal/metrics"
)

func NewRouter(apiHandler *APIHandler, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(requestLogger(logger)) // Access log and request metrics
	r.Use(middleware.Recoverer)  // Recover from panics
	r.Use(middleware.StripSlashes)

	r.Get("/", apiHandler.RootHandler)
	r.Handle("/metrics", metrics.Handler())

	r.Post("/chat/query", apiHandler.ChatQueryHandler)

	r.Route("/history", func(r chi.Router) {
		r.Post("/", apiHandler.SaveHistoryHandler)
		r.Get("/{userID}", apiHandler.GetHistoryHandler)
	})

	r.Route("/users", func(r chi.Router) {
		r.Post("/signup", apiHandler.SignupHandler)
		r.Get("/{userID}", apiHandler.GetUserHandler)
	})

	return r
}

func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			elapsed := time.Since(start)
			metrics.RecordRequest(r.Method, route, status, elapsed)

			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", status).
				Dur("duration", elapsed).
				Msg("request")
		})
	}
}
