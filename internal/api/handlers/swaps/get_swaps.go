package swaps

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github/chapool/chainswap/internal/api"
	"github/chapool/chainswap/internal/swap/history"
	"github/chapool/chainswap/internal/types"
	"github/chapool/chainswap/internal/util"
)

func GetSwapsRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Swap.GET("/swaps", getSwapsHandler(s))
}

// getSwapsHandler pages through the swap history, newest first.
// Query: page (from 1), size (up to history.MaxPageSize).
func getSwapsHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		page, err := util.ParseQueryInt(c, "page", 1)
		if err != nil {
			return err
		}
		size, err := util.ParseQueryInt(c, "size", history.DefaultPageSize)
		if err != nil {
			return err
		}

		if page < 1 {
			page = 1
		}
		if size < 1 {
			size = history.DefaultPageSize
		}
		if size > history.MaxPageSize {
			size = history.MaxPageSize
		}

		records, total, err := s.Swap.History(ctx, page, size)
		if err != nil {
			util.LogFromContext(ctx).Error().Err(err).Msg("Failed to read swap history")
			return fromSwapError(err)
		}

		res := &types.SwapListResponse{
			Records: make([]*types.SwapRecord, 0, len(records)),
			Total:   total,
			Page:    page,
			Size:    size,
		}
		for _, rec := range records {
			res.Records = append(res.Records, toSwapRecord(rec))
		}

		return c.JSON(http.StatusOK, res)
	}
}
