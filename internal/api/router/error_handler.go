package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github/chapool/chainswap/internal/api/httperrors"
	"github/chapool/chainswap/internal/util"
)

// HTTPErrorHandler renders every error returned by a handler as types.PublicHTTPError.
// Details of internal errors are dropped when hideInternal is set.
func HTTPErrorHandler(hideInternal bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		log := util.LogFromContext(c.Request().Context())

		var he *httperrors.HTTPError
		var ee *echo.HTTPError

		switch {
		case errors.As(err, &he):
		case errors.As(err, &ee):
			he = httperrors.NewFromEcho(ee)
			if ee.Internal != nil {
				he.Internal = ee.Internal
			}
		default:
			he = httperrors.ErrInternalServer.Wrap(err)
		}

		public := he.PublicHTTPError
		if he.Code >= http.StatusInternalServerError {
			log.Error().Err(err).Int("status", he.Code).Str("type", string(he.Type)).Msg("Request failed")
			if !hideInternal && he.Internal != nil {
				public.Detail = he.Internal.Error()
			}
		} else {
			log.Debug().Err(err).Int("status", he.Code).Str("type", string(he.Type)).Msg("Request rejected")
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(he.Code)
		} else {
			writeErr = c.JSON(he.Code, public)
		}
		if writeErr != nil {
			log.Error().Err(writeErr).Msg("Failed to write error response")
		}
	}
}
