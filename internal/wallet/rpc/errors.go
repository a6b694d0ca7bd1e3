package rpc

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrorKind tells callers how to react to a failed call
type ErrorKind int

const (
	// KindRPC is a definitive error reported by the node
	KindRPC ErrorKind = iota
	// KindTransient may succeed when retried (consensus failures, HTTP 5xx)
	KindTransient
	// KindIdempotent means the operation already happened, e.g. the transaction is known
	KindIdempotent
	// KindConsensusUnreachable is returned once transient retries are exhausted
	KindConsensusUnreachable
	// KindDecode means the response could not be parsed
	KindDecode
	// KindNotFound means the node has no such object (yet)
	KindNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case KindRPC:
		return "rpc"
	case KindTransient:
		return "transient"
	case KindIdempotent:
		return "idempotent"
	case KindConsensusUnreachable:
		return "consensus_unreachable"
	case KindDecode:
		return "decode"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

var (
	ErrConsensusUnreachable = errors.New("consensus unreachable")
	ErrNotFound             = errors.New("not found")
)

// Error is the typed error of every gateway call
type Error struct {
	Kind    ErrorKind
	Method  string
	Code    int
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s %s", e.Method, e.Kind)
	if e.Code != 0 {
		msg += fmt.Sprintf(" (code %d)", e.Code)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the ErrorKind of err, KindRPC for foreign errors.
func KindOf(err error) ErrorKind {
	var rpcErr *Error
	if errors.As(err, &rpcErr) {
		return rpcErr.Kind
	}

	return KindRPC
}

// IsIdempotent reports whether err says the submitted operation already took effect.
func IsIdempotent(err error) bool {
	return err != nil && KindOf(err) == KindIdempotent
}

func decodeError(method string, err error) *Error {
	return &Error{Kind: KindDecode, Method: method, Err: err}
}

func notFound(method string, what string) *Error {
	return &Error{Kind: KindNotFound, Method: method, Message: what, Err: ErrNotFound}
}

// Markers are matched case-insensitively against provider error text.
var (
	idempotentMarkers = []string{
		"already known",
		"already_exists",
		"replacement transaction underpriced",
		"nonce too low",
		"dup_transaction_error",
		"already been processed",
	}
	transientMarkers = []string{
		"no consensus",
		"systransient",
	}
)

// ClassifyRPCError maps provider error text onto an ErrorKind.
//
// Providers only signal these conditions through free-form text, so this is the one
// place in the code base that matches substrings of it. Add markers here, not at call sites.
func ClassifyRPCError(text string) ErrorKind {
	lower := strings.ToLower(text)

	for _, marker := range idempotentMarkers {
		if strings.Contains(lower, marker) {
			return KindIdempotent
		}
	}

	for _, marker := range transientMarkers {
		if strings.Contains(lower, marker) {
			return KindTransient
		}
	}

	return KindRPC
}
