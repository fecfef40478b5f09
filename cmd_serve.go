package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/rpupo63/taskmanager/app"
	"github.com/rpupo63/taskmanager/config"
	"github.com/rpupo63/taskmanager/database"
)

var errInterrupted = errors.New("interrupted")

func serveCmd() *cobra.Command {
	var skipMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Context())
			if err != nil {
				return err
			}
			app.ConfigureLogging(cfg)
			log.Info().Str("env", cfg.Env).Str("db", cfg.Database.Type).Msg("Initializing app...")

			injector := app.NewContainer(cfg)

			if !skipMigrate {
				db, err := do.Invoke[*app.DatabaseHandle](injector)
				if err != nil {
					return fmt.Errorf("connecting to database: %w", err)
				}
				if err := database.Migrate(cmd.Context(), db.GetDB()); err != nil {
					shutdown(injector)
					return err
				}
			}

			server, err := do.Invoke[*app.ServerHandle](injector)
			if err != nil {
				shutdown(injector)
				return fmt.Errorf("initializing server: %w", err)
			}

			errChannel := make(chan error, 2)
			go server.Start(errChannel)

			// Listen for interrupt signals to gracefully shutdown the server
			go listenToInterrupt(errChannel)

			fatalErr := <-errChannel
			log.Info().Msgf("Closing server: %v", fatalErr)

			shutdown(injector)
			return serveExitError(fatalErr)
		},
	}

	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "Do not run migrations before serving")

	return cmd
}

// serveExitError keeps a signal or a closed server a clean exit and surfaces anything
// else, such as a port already in use.
func serveExitError(err error) error {
	if err == nil || errors.Is(err, errInterrupted) || errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return fmt.Errorf("server stopped: %w", err)
}

// shutdown stops the server and closes the database in reverse dependency order
func shutdown(injector do.Injector) {
	if err := app.Shutdown(injector); err != nil {
		log.Error().Msgf("Shutdown error: %v", err)
	}
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%w: %s", errInterrupted, <-c)
}
