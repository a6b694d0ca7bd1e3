package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github/chapool/chainswap/internal/config"
	"github/chapool/chainswap/internal/metrics"
	"github/chapool/chainswap/internal/swap"
	"github/chapool/chainswap/internal/swap/events"
	"github/chapool/chainswap/internal/swap/history"
	"github/chapool/chainswap/internal/swap/price"
	"github/chapool/chainswap/internal/util"
	"github/chapool/chainswap/internal/wallet/adapter"
	"github/chapool/chainswap/internal/wallet/chain"
	"github/chapool/chainswap/internal/wallet/keys"
)

type Router struct {
	Routes     []*echo.Route
	Root       *echo.Group
	Management *echo.Group
	APIV1      *echo.Group
	APIV1Swap  *echo.Group
}

// Server is a central struct keeping all the dependencies.
// Components are created in InitNewServer; Echo and Router are attached afterwards by router.Init.
type Server struct {
	Echo   *echo.Echo
	Router *Router

	Config   config.Server
	Metrics  *metrics.Service
	Chains   chain.Service
	Keys     keys.Service
	Adapters *adapter.Registry
	Prices   price.Feed
	History  history.Log
	Events   events.Publisher
	Swap     swap.Service
}

func NewServer(config config.Server) *Server {
	s := &Server{
		Config: config,
	}

	return s
}

func (s *Server) Ready() bool {
	if err := util.IsStructInitialized(s); err != nil {
		log.Debug().Err(err).Msg("Server is not fully initialized")
		return false
	}

	return true
}

func (s *Server) Start() error {
	if !s.Ready() {
		return errors.New("server is not ready")
	}

	if err := s.Echo.Start(s.Config.Echo.ListenAddress); err != nil {
		return fmt.Errorf("failed to start echo server: %w", err)
	}

	return nil
}

func (s *Server) Shutdown(ctx context.Context) []error {
	log.Warn().Msg("Shutting down server")

	var errs []error

	if s.Echo != nil {
		log.Debug().Msg("Shutting down echo server")

		if err := s.Echo.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Failed to shutdown echo server")
			errs = append(errs, err)
		}
	}

	if s.Events != nil {
		log.Debug().Msg("Closing event publisher")

		if err := s.Events.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close event publisher")
			errs = append(errs, err)
		}
	}

	if s.History != nil {
		log.Debug().Msg("Closing swap history")

		if err := s.History.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close swap history")
			errs = append(errs, err)
		}
	}

	return errs
}
