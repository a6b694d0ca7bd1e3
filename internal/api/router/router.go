package router

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
	"github/chapool/chainswap/internal/api"
	"github/chapool/chainswap/internal/api/handlers"
	"github/chapool/chainswap/internal/api/middleware"
)

// Init creates the echo instance with its middleware stack, defines the route groups
// and attaches all handlers.
func Init(s *api.Server) {
	s.Echo = echo.New()

	s.Echo.Debug = s.Config.Echo.Debug
	s.Echo.HideBanner = true
	s.Echo.HidePort = true
	s.Echo.Logger.SetOutput(&echoLogWriter{})
	s.Echo.HTTPErrorHandler = HTTPErrorHandler(s.Config.Echo.HideInternalServerErrorDetails)

	if s.Config.Echo.EnableRecoverMiddleware {
		s.Echo.Use(echomiddleware.Recover())
	} else {
		log.Warn().Msg("Disabling recover middleware due to environment config")
	}

	if s.Config.Echo.EnableRequestIDMiddleware {
		s.Echo.Use(middleware.RequestID())
	} else {
		log.Warn().Msg("Disabling request ID middleware due to environment config")
	}

	s.Echo.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Level: s.Config.Logger.RequestLevel,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	s.Router = &api.Router{
		Routes:     nil,
		Root:       s.Echo.Group(""),
		Management: s.Echo.Group("/-"),
		APIV1:      s.Echo.Group("/api/v1"),
	}
	s.Router.APIV1Swap = s.Router.APIV1.Group("")

	handlers.AttachAllRoutes(s)
}

// echoLogWriter forwards the few lines echo logs itself to zerolog.
type echoLogWriter struct{}

func (w *echoLogWriter) Write(p []byte) (int, error) {
	log.Debug().Str("component", "echo").Msg(string(p))
	return len(p), nil
}
