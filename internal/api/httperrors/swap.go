package httperrors

import (
	"net/http"

	"github/chapool/chainswap/internal/types"
)

var (
	ErrNotFoundNetwork         = NewHTTPError(http.StatusNotFound, types.PublicHTTPErrorTypeUnknownNetwork, "Network is unknown or not enabled.")
	ErrNotFoundTransaction     = NewHTTPError(http.StatusNotFound, types.PublicHTTPErrorTypeTransactionNotFound, "Transaction not found or not yet confirmed.")
	ErrNotFoundSwap            = NewHTTPError(http.StatusNotFound, types.PublicHTTPErrorTypeSwapNotFound, "No swap recorded for this transaction.")
	ErrConflictProcessed       = NewHTTPError(http.StatusConflict, types.PublicHTTPErrorTypeAlreadyProcessed, "Transaction was already processed.")
	ErrUnprocessableNotOurs    = NewHTTPError(http.StatusUnprocessableEntity, types.PublicHTTPErrorTypeNotOurDeposit, "Transaction does not pay the pool address.")
	ErrUnprocessableFailed     = NewHTTPError(http.StatusUnprocessableEntity, types.PublicHTTPErrorTypeTransactionFailed, "Transaction failed on chain.")
	ErrUnprocessableEmpty      = NewHTTPError(http.StatusUnprocessableEntity, types.PublicHTTPErrorTypeEmptyDeposit, "Transaction carries no value.")
	ErrUnprocessableNoPipeline = NewHTTPError(http.StatusUnprocessableEntity, types.PublicHTTPErrorTypeUnsupportedOperation, "Operation is not supported on this network.")
	ErrServiceUnavailable      = NewHTTPError(http.StatusServiceUnavailable, types.PublicHTTPErrorTypeUpstreamUnavailable, "Upstream service unavailable, retry later.")
	ErrInternalUnresolved      = NewHTTPError(http.StatusInternalServerError, types.PublicHTTPErrorTypeDepositUnresolved, "Deposit could not be paid out nor returned, it needs manual review.")
)
