package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type rootHandler struct {
	responder   Responder
	db          pinger
	startupTime time.Time
}

func newRootHandler(responder Responder, db pinger, startupTime time.Time) rootHandler {
	logger := log.With().Str("handlerName", "rootHandler").Logger()
	return rootHandler{
		responder:   responder.With(logger),
		db:          db,
		startupTime: startupTime,
	}
}

func (h rootHandler) welcome() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.responder.Render(w, r, page{Name: "welcome", Title: "Task Manager"})
	}
}

func (h rootHandler) health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		if err := h.db.Ping(ctx); err != nil {
			h.responder.logger.Error().Err(err).Msg("database ping failed")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(HealthResponse{Status: "unavailable"})
			return
		}

		_ = json.NewEncoder(w).Encode(HealthResponse{
			Status: "ok",
			Uptime: time.Since(h.startupTime).Round(time.Second).String(),
		})
	}
}
