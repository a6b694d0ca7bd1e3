package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github/chapool/chainswap/internal/util"
)

type LoggerConfig struct {
	Skipper middleware.Skipper
	Level   zerolog.Level
}

var DefaultLoggerConfig = LoggerConfig{
	Skipper: middleware.DefaultSkipper,
	Level:   zerolog.InfoLevel,
}

// LoggerWithConfig attaches a request scoped zerolog logger to the request context
// and logs every completed request at config.Level.
func LoggerWithConfig(config LoggerConfig) echo.MiddlewareFunc {
	if config.Skipper == nil {
		config.Skipper = DefaultLoggerConfig.Skipper
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if config.Skipper(c) {
				return next(c)
			}

			req := c.Request()
			res := c.Response()

			id := req.Header.Get(echo.HeaderXRequestID)
			if id == "" {
				id = res.Header().Get(echo.HeaderXRequestID)
			}

			logger := log.With().
				Str("id", id).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Logger()
			c.SetRequest(req.WithContext(util.WithLogger(req.Context(), logger)))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			logger.WithLevel(config.Level).
				Int("status", res.Status).
				Int64("bytes_out", res.Size).
				Dur("duration", time.Since(start)).
				Str("remote_ip", c.RealIP()).
				Msg("Request handled")

			return nil
		}
	}
}
