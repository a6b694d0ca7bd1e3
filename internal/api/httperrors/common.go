package httperrors

import (
	"net/http"

	"github/chapool/chainswap/internal/types"
)

var (
	ErrBadRequestMalformedBody = NewHTTPError(http.StatusBadRequest, types.PublicHTTPErrorTypeMalformedBody, "Request body could not be parsed.")
	ErrBadRequestInvalidQuery  = NewHTTPError(http.StatusBadRequest, types.PublicHTTPErrorTypeGeneric, "Invalid query parameter.")
	ErrInternalServer          = NewHTTPError(http.StatusInternalServerError, types.PublicHTTPErrorTypeGeneric, "Internal server error.")
)
