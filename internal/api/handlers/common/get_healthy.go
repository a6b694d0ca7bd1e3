package common

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github/chapool/chainswap/internal/api"
	"github/chapool/chainswap/internal/util"
)

func GetHealthyRoute(s *api.Server) *echo.Route {
	return s.Router.Management.GET("/healthy", getHealthyHandler(s))
}

// Health check
// Returns 200 when the server is ready and the swap history answers within the probe timeout.
// The body lists one line per check.
func getHealthyHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !s.Ready() {
			return c.String(statusNotReady, "Not ready.")
		}

		ctx, cancel := context.WithTimeout(c.Request().Context(), s.Config.Management.ProbeReadinessTimeout)
		defer cancel()

		lines, healthy := probe(ctx, s)

		status := http.StatusOK
		if !healthy {
			status = statusNotReady
		}

		return c.String(status, strings.Join(lines, "\n"))
	}
}

func probe(ctx context.Context, s *api.Server) ([]string, bool) {
	lines := []string{"Ready."}
	healthy := true

	if _, total, err := s.History.Paginate(ctx, 0, 1); err != nil {
		util.LogFromContext(ctx).Error().Err(err).Msg("History health check failed")
		lines = append(lines, "History: unreachable.")
		healthy = false
	} else {
		lines = append(lines, fmt.Sprintf("History: %d records.", total))
	}

	for _, a := range s.Adapters.List() {
		lines = append(lines, fmt.Sprintf("Network %s: %s.", a.Network().Name, a.Kind()))
	}

	return lines, healthy
}
