package handlers

import (
	"github.com/labstack/echo/v4"
	"github/chapool/chainswap/internal/api"
	"github/chapool/chainswap/internal/api/handlers/common"
	"github/chapool/chainswap/internal/api/handlers/swaps"
)

func AttachAllRoutes(s *api.Server) {
	s.Router.Routes = []*echo.Route{
		common.GetHealthyRoute(s),
		common.GetMetricsRoute(s),
		common.GetReadyRoute(s),
		swaps.GetAddressRoute(s),
		swaps.GetChainsRoute(s),
		swaps.GetSwapRoute(s),
		swaps.GetSwapsRoute(s),
		swaps.PostSwapRoute(s),
	}
}
