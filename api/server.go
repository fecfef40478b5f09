package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/taskmanager/auth"
	"github.com/rpupo63/taskmanager/config"
	"github.com/rpupo63/taskmanager/database"
	"github.com/rpupo63/taskmanager/ratelimit"
	"github.com/rpupo63/taskmanager/services"
)

const limiterSweepInterval = 5 * time.Minute

// Dependencies are the collaborators the HTTP layer is built from
type Dependencies struct {
	DB           database.Database
	Sessions     *auth.SessionManager
	Users        *services.UserService
	Statuses     *services.StatusService
	Labels       *services.LabelService
	Tasks        *services.TaskService
	LoginLimiter *ratelimit.KeyedRateLimiter
}

type Server struct {
	*http.Server
	startupTime time.Time
	limiter     *ratelimit.KeyedRateLimiter
	stopSweep   chan struct{}
	stopOnce    *sync.Once
}

func NewServer(cfg *config.Config, deps Dependencies) (Server, error) {
	address := fmt.Sprintf("0.0.0.0:%s", cfg.Port) // Bind to 0.0.0.0 for external access

	// Capture startup time
	startupTime := time.Now()

	handler, err := newRouter(cfg, deps, startupTime)
	if err != nil {
		return Server{}, err
	}

	server := &http.Server{
		Addr:         address,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return Server{
		Server:      server,
		startupTime: startupTime,
		limiter:     deps.LoginLimiter,
		stopSweep:   make(chan struct{}),
		stopOnce:    &sync.Once{},
	}, nil
}

func newRouter(cfg *config.Config, deps Dependencies, startupTime time.Time) (*chi.Mux, error) {
	views, err := newRenderer()
	if err != nil {
		return nil, err
	}

	responder := NewResponder(log.Logger, deps.Sessions, views)
	handlers := initializeHandlers(deps, responder, startupTime)
	authMiddleware := newAuthMiddleware(responder, deps.Sessions)

	chiRouter := chi.NewRouter()
	chiRouter.Use(middleware.RequestID)
	if cfg.TrustProxyHeaders {
		chiRouter.Use(middleware.RealIP)
	}
	chiRouter.Use(LogInternalServerErrors)
	chiRouter.Use(HTTPLoggingMiddleware(cfg.IsDevelopment()))

	if len(cfg.AcceptedOrigins) > 0 {
		chiRouter.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.AcceptedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	chiRouter.Use(methodOverride)

	setupRoutes(chiRouter, handlers, authMiddleware)

	return chiRouter, nil
}

func (s Server) Start(errChannel chan<- error) {
	if s.limiter != nil {
		go s.sweepLimiter()
	}

	log.Info().Msgf("Server started on: %s", s.Addr)
	errChannel <- s.ListenAndServe()
}

// sweepLimiter evicts idle login buckets until the server shuts down
func (s Server) sweepLimiter() {
	ticker := time.NewTicker(limiterSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if removed := s.limiter.Sweep(); removed > 0 {
				log.Debug().Int("removed", removed).Msg("swept idle login limiters")
			}
		case <-s.stopSweep:
			return
		}
	}
}

func (s Server) ShutdownGracefully(timeout time.Duration) {
	log.Info().Msg("Gracefully shutting down...")
	s.stopOnce.Do(func() { close(s.stopSweep) })

	gracefullCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(gracefullCtx); err != nil {
		log.Error().Msgf("Error shutting down the server: %v", err)
	} else {
		log.Info().Msg("HttpServer gracefully shut down")
	}
}
