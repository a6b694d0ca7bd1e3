package common

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github/chapool/chainswap/internal/api"
)

// statusNotReady is the Cloudflare "web server is down" code, picked up by our probes
const statusNotReady = 521

func GetReadyRoute(s *api.Server) *echo.Route {
	return s.Router.Management.GET("/ready", getReadyHandler(s))
}

// Readiness check
// This endpoint returns 200 when our Service is ready to serve traffic (i.e. all components are initialized).
func getReadyHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !s.Ready() {
			return c.String(statusNotReady, "Not ready.")
		}

		return c.String(http.StatusOK, "Ready.")
	}
}
