package httperrors

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github/chapool/chainswap/internal/types"
)

// HTTPError is returned by handlers and rendered by the error handler as types.PublicHTTPError.
type HTTPError struct {
	types.PublicHTTPError
	Internal error `json:"-"`
}

func NewHTTPError(code int, errorType types.PublicHTTPErrorType, title string) *HTTPError {
	return &HTTPError{
		PublicHTTPError: types.PublicHTTPError{
			Code:  code,
			Type:  errorType,
			Title: title,
		},
	}
}

func NewHTTPErrorWithDetail(code int, errorType types.PublicHTTPErrorType, title string, detail string) *HTTPError {
	e := NewHTTPError(code, errorType, title)
	e.Detail = detail

	return e
}

func NewHTTPValidationError(code int, errorType types.PublicHTTPErrorType, title string, details []*types.HTTPValidationErrorDetail) *HTTPError {
	e := NewHTTPError(code, errorType, title)
	e.ValidationErrors = details

	return e
}

// NewFromEcho converts the errors echo raises itself (unknown route, bad method, bind errors).
func NewFromEcho(e *echo.HTTPError) *HTTPError {
	return NewHTTPError(e.Code, types.PublicHTTPErrorTypeGeneric, http.StatusText(e.Code))
}

// Wrap returns a copy of e carrying err as the internal cause, which is logged but not rendered.
func (e *HTTPError) Wrap(err error) *HTTPError {
	c := *e
	c.Internal = err

	return &c
}

func (e *HTTPError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "HTTPError %d (%s): %s", e.Code, e.Type, e.Title)

	if e.Detail != "" {
		fmt.Fprintf(&b, " - %s", e.Detail)
	}
	for _, v := range e.ValidationErrors {
		fmt.Fprintf(&b, " - %s (%s): %s", v.Key, v.In, v.Error)
	}
	if e.Internal != nil {
		fmt.Fprintf(&b, ", %v", e.Internal)
	}

	return b.String()
}

func (e *HTTPError) Unwrap() error {
	return e.Internal
}
