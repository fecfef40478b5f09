// Package app wires the application's collaborators into a samber/do container.
package app

import (
	"time"

	"github.com/samber/do/v2"

	"github.com/rpupo63/taskmanager/api"
	"github.com/rpupo63/taskmanager/auth"
	"github.com/rpupo63/taskmanager/config"
	"github.com/rpupo63/taskmanager/database"
	"github.com/rpupo63/taskmanager/ratelimit"
	"github.com/rpupo63/taskmanager/services"
)

const shutdownTimeout = 30 * time.Second

// NewContainer creates the DI container with every provider registered. Nothing is
// built until it is invoked.
func NewContainer(cfg *config.Config) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.ProvideValue(injector, cfg)
	do.Provide(injector, ProvideDatabase)
	do.Provide(injector, ProvideHasher)
	do.Provide(injector, ProvideSessionManager)
	do.Provide(injector, ProvideLoginLimiter)

	// Stores
	do.Provide(injector, ProvideUserService)
	do.Provide(injector, ProvideStatusService)
	do.Provide(injector, ProvideLabelService)
	do.Provide(injector, ProvideTaskService)

	// HTTP
	do.Provide(injector, ProvideServer)

	return injector
}

// Shutdown stops every invoked service in reverse dependency order. It returns the
// shutdown report only when a service failed to stop.
func Shutdown(injector do.Injector) error {
	report := injector.Shutdown()
	if report == nil || len(report.Errors) == 0 {
		return nil
	}
	return report
}

// DatabaseHandle wraps the database with shutdown capability.
type DatabaseHandle struct {
	database.Database
}

// Shutdown implements do.Shutdownable.
func (h *DatabaseHandle) Shutdown() error {
	return h.Close()
}

func ProvideDatabase(i do.Injector) (*DatabaseHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)

	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, err
	}
	return &DatabaseHandle{database.New(db)}, nil
}

func ProvideHasher(i do.Injector) (*auth.Hasher, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return auth.NewHasher(cfg.Password.Algorithm, cfg.Password.Secret)
}

func ProvideSessionManager(i do.Injector) (*auth.SessionManager, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return auth.NewSessionManager(cfg.Session.Secret, cfg.Session.MaxAge, cfg.Session.Secure), nil
}

func ProvideLoginLimiter(i do.Injector) (*ratelimit.KeyedRateLimiter, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return ratelimit.PerMinute(cfg.LoginRatePerMinute, cfg.LoginRateBurst), nil
}

func ProvideUserService(i do.Injector) (*services.UserService, error) {
	db := do.MustInvoke[*DatabaseHandle](i)
	hasher := do.MustInvoke[*auth.Hasher](i)
	return services.NewUserService(db.Database, hasher), nil
}

func ProvideStatusService(i do.Injector) (*services.StatusService, error) {
	db := do.MustInvoke[*DatabaseHandle](i)
	return services.NewStatusService(db.Database), nil
}

func ProvideLabelService(i do.Injector) (*services.LabelService, error) {
	db := do.MustInvoke[*DatabaseHandle](i)
	return services.NewLabelService(db.Database), nil
}

func ProvideTaskService(i do.Injector) (*services.TaskService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	db := do.MustInvoke[*DatabaseHandle](i)
	return services.NewTaskService(db.Database, cfg.TaskUpdateReassignsCreator), nil
}

// ServerHandle wraps the HTTP server with shutdown capability.
type ServerHandle struct {
	api.Server
}

// Shutdown implements do.Shutdownable.
func (h *ServerHandle) Shutdown() error {
	h.ShutdownGracefully(shutdownTimeout)
	return nil
}

func ProvideServer(i do.Injector) (*ServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	db := do.MustInvoke[*DatabaseHandle](i)

	server, err := api.NewServer(cfg, api.Dependencies{
		DB:           db.Database,
		Sessions:     do.MustInvoke[*auth.SessionManager](i),
		Users:        do.MustInvoke[*services.UserService](i),
		Statuses:     do.MustInvoke[*services.StatusService](i),
		Labels:       do.MustInvoke[*services.LabelService](i),
		Tasks:        do.MustInvoke[*services.TaskService](i),
		LoginLimiter: do.MustInvoke[*ratelimit.KeyedRateLimiter](i),
	})
	if err != nil {
		return nil, err
	}
	return &ServerHandle{server}, nil
}
