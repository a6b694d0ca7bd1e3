package swaps

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github/chapool/chainswap/internal/api"
	"github/chapool/chainswap/internal/types"
	"github/chapool/chainswap/internal/util"
)

func GetAddressRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Swap.GET("/address/:chain", getAddressHandler(s))
}

// getAddressHandler returns the pool deposit address on a network
func getAddressHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		network := c.Param("chain")

		a, err := s.Adapters.Get(network)
		if err != nil {
			return fromSwapError(err)
		}

		addr, err := s.Swap.PoolAddress(ctx, network)
		if err != nil {
			util.LogFromContext(ctx).Error().Err(err).Str("network", network).Msg("Failed to derive pool address")
			return fromSwapError(err)
		}

		return c.JSON(http.StatusOK, &types.AddressResponse{
			Network: network,
			Kind:    string(a.Kind()),
			Address: addr,
		})
	}
}
