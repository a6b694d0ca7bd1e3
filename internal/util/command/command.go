package command

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/chainswap/internal/api"
	"github/chapool/chainswap/internal/config"
)

const shutdownTimeout = 10 * time.Second

// ConfigureLogger sets the global zerolog level and output from config.
func ConfigureLogger(config config.LoggerServer) {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.SetGlobalLevel(config.Level)

	if config.PrettyPrintConsole {
		log.Logger = log.Output(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
			w.TimeFormat = "15:04:05"
			w.Out = os.Stderr
		}))
	}
}

// WithServer wires a server from config, runs f against it and shuts it down afterwards.
// Echo and the router are not initialized.
func WithServer(ctx context.Context, config config.Server, f func(ctx context.Context, s *api.Server) error) error {
	ConfigureLogger(config.Logger)

	s, err := api.InitNewServer(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if errs := s.Shutdown(shutdownCtx); len(errs) > 0 {
			log.Error().Errs("shutdownErrors", errs).Msg("Failed to gracefully shut down server")
		}
	}()

	return f(ctx, s)
}

// NewSubcommandGroup returns a command that only groups subcommands and prints its help when run.
func NewSubcommandGroup(name string, subcommands ...*cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   name,
		Short: fmt.Sprintf("%s related subcommands", name),
		Run: func(cmd *cobra.Command, _ []string) {
			if err := cmd.Help(); err != nil {
				log.Error().Err(err).Msg("Failed to print help")
			}
		},
	}

	cmd.AddCommand(subcommands...)

	return cmd
}
