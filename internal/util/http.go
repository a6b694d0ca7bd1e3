package util

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github/chapool/chainswap/internal/api/httperrors"
	"github/chapool/chainswap/internal/types"
)

type validatable interface {
	Validate() []*types.HTTPValidationErrorDetail
}

// BindAndValidateBody binds the JSON request body into v and runs its validation.
func BindAndValidateBody(c echo.Context, v validatable) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, v); err != nil {
		return httperrors.ErrBadRequestMalformedBody.Wrap(err)
	}

	if details := v.Validate(); len(details) > 0 {
		return httperrors.NewHTTPValidationError(http.StatusBadRequest, types.PublicHTTPErrorTypeGeneric, "Bad Request", details)
	}

	return nil
}

// ParseQueryInt reads the integer query parameter name, returning def when it is absent.
func ParseQueryInt(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, httperrors.NewHTTPValidationError(http.StatusBadRequest, types.PublicHTTPErrorTypeGeneric, "Bad Request",
			[]*types.HTTPValidationErrorDetail{{Key: name, In: "query", Error: "must be a non-negative integer"}})
	}

	return v, nil
}
