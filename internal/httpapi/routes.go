package httpapi

import (
	"net/http"
	"time"

	"github.com/DoyleJ11/territory-backend/internal/hub"
	"github.com/DoyleJ11/territory-backend/internal/store"
	"github.com/DoyleJ11/territory-backend/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func SetupRoutes(h *hub.Hub, rec store.Recorder, log *zap.Logger, origins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))

	// Public routes
	r.Post("/games", CreateGame(h, log))
	r.Get("/games", ListGames(h))
	r.Get("/games/{code}", GetGame(h))
	r.Delete("/games/{code}", DeleteGame(h))
	r.Get("/results", RecentResults(rec, log))
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(h, log, origins))
	return r
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("took", time.Since(start)),
			)
		})
	}
}
