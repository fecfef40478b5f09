package api

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/taskmanager/auth"
	"github.com/rpupo63/taskmanager/ratelimit"
	"github.com/rpupo63/taskmanager/services"
)

type sessionHandler struct {
	responder Responder
	logger    zerolog.Logger
	validator *Validator
	users     *services.UserService
	limiter   *ratelimit.KeyedRateLimiter
}

func newSessionHandler(responder Responder, validator *Validator, users *services.UserService, limiter *ratelimit.KeyedRateLimiter) sessionHandler {
	logger := log.With().Str("handlerName", "sessionHandler").Logger()
	return sessionHandler{
		responder: responder.With(logger),
		logger:    logger,
		validator: validator,
		users:     users,
		limiter:   limiter,
	}
}

func (h sessionHandler) newSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.responder.Render(w, r, page{Name: "session_form", Title: "Login"})
	}
}

func (h sessionHandler) createSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			h.responder.Fail(w, r, err, failRoute{Fallback: "/session/new"})
			return
		}

		ip := clientIP(r)
		if !h.limiter.Allow(ip) {
			h.logger.Warn().
				Str("ip", ip).
				Str("requestId", middleware.GetReqID(r.Context())).
				Msg("login throttled")
			h.responder.Flash(w, r, auth.FlashWarning, "Too many login attempts. Please try again later.", "/session/new")
			return
		}

		route := failRoute{Form: "/session/new", Fallback: "/session/new", Values: r.PostForm}

		form := parseLoginForm(r.PostForm)
		if err := h.validator.Validate("session", form); err != nil {
			h.responder.Fail(w, r, err, route)
			return
		}

		user, err := h.users.Authenticate(r.Context(), form.Email, form.Password)
		if err != nil {
			h.responder.Fail(w, r, err, route)
			return
		}

		ctxGetSession(r.Context()).SetUser(user.ID)
		h.logger.Info().Str("userId", user.ID.String()).Msg("user logged in")
		h.responder.Flash(w, r, auth.FlashSuccess, "You are logged in", "/")
	}
}

func (h sessionHandler) deleteSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctxGetSession(r.Context()).ClearUser()
		h.responder.Flash(w, r, auth.FlashInfo, "You are logged out", "/")
	}
}
