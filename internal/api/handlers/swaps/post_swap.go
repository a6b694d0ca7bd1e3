package swaps

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github/chapool/chainswap/internal/api"
	"github/chapool/chainswap/internal/types"
	"github/chapool/chainswap/internal/util"
)

func PostSwapRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Swap.POST("/swaps", postSwapHandler(s))
}

// postSwapHandler verifies an inbound transaction and, unless verify_only is set,
// pays out the swap or returns the deposit.
func postSwapHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		var body types.PostSwapPayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		network := strings.TrimSpace(body.Network)
		hash := strings.TrimSpace(body.TxHash)

		if body.VerifyOnly {
			dep, err := s.Swap.VerifyInbound(ctx, network, hash)
			if err != nil {
				log.Debug().Err(err).Str("network", network).Str("tx_hash", hash).Msg("Deposit verification failed")
				return fromSwapError(err)
			}

			return c.JSON(http.StatusOK, toDepositResponse(dep))
		}

		rec, err := s.Swap.ProcessInbound(ctx, network, hash)
		if err != nil {
			return fromSwapError(err)
		}

		return c.JSON(http.StatusCreated, toSwapRecord(rec))
	}
}
