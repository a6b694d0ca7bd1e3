package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github/chapool/chainswap/internal/api"
	"github/chapool/chainswap/internal/api/router"
	"github/chapool/chainswap/internal/config"
	"github/chapool/chainswap/internal/util/command"
)

const (
	listenFlag      = "listen"
	printRoutesFlag = "print-routes"
	shutdownTimeout = 10 * time.Second
)

func New() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Starts the server",
		Long: `Starts the HTTP API.

Requires configuration through ENV and
a fully initialized key source (mnemonic, keystore file or remote signer).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), v)
		},
	}

	cmd.Flags().String(listenFlag, "", "Listen address, overrides SERVER_ECHO_LISTEN_ADDRESS")
	cmd.Flags().Bool(printRoutesFlag, false, "Log all registered routes on startup")

	_ = v.BindPFlag(listenFlag, cmd.Flags().Lookup(listenFlag))
	_ = v.BindPFlag(printRoutesFlag, cmd.Flags().Lookup(printRoutesFlag))

	return cmd
}

func run(ctx context.Context, v *viper.Viper) error {
	cfg := config.DefaultServiceConfigFromEnv()
	if listen := v.GetString(listenFlag); listen != "" {
		cfg.Echo.ListenAddress = listen
	}

	command.ConfigureLogger(cfg.Logger)

	s, err := api.InitNewServer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	router.Init(s)

	if v.GetBool(printRoutesFlag) {
		printRoutes(s)
	}

	for _, a := range s.Adapters.List() {
		log.Info().Str("network", a.Network().Name).Str("kind", string(a.Kind())).Msg("Network enabled")
	}

	go func() {
		if err := s.Start(); err != nil {
			if errors.Is(err, http.ErrServerClosed) {
				log.Info().Msg("Server closed")
			} else {
				log.Fatal().Err(err).Msg("Failed to start server")
			}
		}
	}()

	log.Info().Str("listen", cfg.Echo.ListenAddress).Msg("Server started")

	quit, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-quit.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if errs := s.Shutdown(shutdownCtx); len(errs) > 0 {
		log.Error().Errs("shutdownErrors", errs).Msg("Failed to gracefully shut down server")
		return errors.Join(errs...)
	}

	return nil
}

func printRoutes(s *api.Server) {
	routes := s.Echo.Routes()
	sort.Slice(routes, func(i, j int) bool {
		return routes[i].Path < routes[j].Path
	})

	for _, r := range routes {
		log.Info().Str("method", r.Method).Str("path", r.Path).Msg("Route")
	}
}
