package swaps

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github/chapool/chainswap/internal/api"
	"github/chapool/chainswap/internal/types"
)

func GetChainsRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Swap.GET("/chains", getChainsHandler(s))
}

// getChainsHandler lists the networks the pool accepts deposits on, with their tokens
func getChainsHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		adapters := s.Adapters.List()

		response := &types.GetChainsResponse{
			Chains: make([]*types.ChainItem, 0, len(adapters)),
		}
		for _, a := range adapters {
			response.Chains = append(response.Chains, toChainItem(a.Network(), s.Chains.ListTokens(a.Network().Name)))
		}

		return c.JSON(http.StatusOK, response)
	}
}
