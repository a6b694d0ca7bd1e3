package types

// PublicHTTPErrorType is the machine readable type of an API error
type PublicHTTPErrorType string

const (
	PublicHTTPErrorTypeGeneric              PublicHTTPErrorType = "generic"
	PublicHTTPErrorTypeMalformedBody        PublicHTTPErrorType = "MALFORMED_BODY"
	PublicHTTPErrorTypeUnknownNetwork       PublicHTTPErrorType = "UNKNOWN_NETWORK"
	PublicHTTPErrorTypeTransactionNotFound  PublicHTTPErrorType = "TRANSACTION_NOT_FOUND"
	PublicHTTPErrorTypeSwapNotFound         PublicHTTPErrorType = "SWAP_NOT_FOUND"
	PublicHTTPErrorTypeAlreadyProcessed     PublicHTTPErrorType = "ALREADY_PROCESSED"
	PublicHTTPErrorTypeNotOurDeposit        PublicHTTPErrorType = "NOT_OUR_DEPOSIT"
	PublicHTTPErrorTypeTransactionFailed    PublicHTTPErrorType = "TRANSACTION_FAILED"
	PublicHTTPErrorTypeEmptyDeposit         PublicHTTPErrorType = "EMPTY_DEPOSIT"
	PublicHTTPErrorTypeUpstreamUnavailable  PublicHTTPErrorType = "UPSTREAM_UNAVAILABLE"
	PublicHTTPErrorTypeDepositUnresolved    PublicHTTPErrorType = "DEPOSIT_UNRESOLVED"
	PublicHTTPErrorTypeUnsupportedOperation PublicHTTPErrorType = "UNSUPPORTED_OPERATION"
)

// PublicHTTPError is the JSON body of every error response
type PublicHTTPError struct {
	// HTTP status code, repeated from the response
	Code int `json:"status"`

	Type  PublicHTTPErrorType `json:"type"`
	Title string              `json:"title"`

	// Optional details, hidden for internal errors unless the server runs in debug mode
	Detail string `json:"detail,omitempty"`

	ValidationErrors []*HTTPValidationErrorDetail `json:"validationErrors,omitempty"`
}

type HTTPValidationErrorDetail struct {
	Key   string `json:"key"`
	In    string `json:"in"`
	Error string `json:"error"`
}
