package swaps

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github/chapool/chainswap/internal/api"
)

func GetSwapRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Swap.GET("/swaps/:hash", getSwapHandler(s))
}

// getSwapHandler finds the record holding hash as inbound or outbound transaction.
// The optional network query parameter normalizes the hash the way that network spells it.
func getSwapHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		rec, err := s.Swap.FindByHash(c.Request().Context(), c.QueryParam("network"), c.Param("hash"))
		if err != nil {
			return fromSwapError(err)
		}

		return c.JSON(http.StatusOK, toSwapRecord(rec))
	}
}
