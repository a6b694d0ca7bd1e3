package keys

import (
	"context"
	"strconv"

	"github.com/pkg/errors"
)

// Scheme is the signature scheme a derived key is used with
type Scheme string

const (
	SchemeSecp256k1 Scheme = "secp256k1" // EVM, Tron, Bitcoin
	SchemeEd25519   Scheme = "ed25519"   // Solana
)

const (
	DigestLength             = 32
	Secp256k1SignatureLength = 64
	Ed25519SignatureLength   = 64
	UncompressedPubKeyLength = 65
	Ed25519PubKeyLength      = 32
)

var (
	ErrSignerUnavailable  = errors.New("signer unavailable")
	ErrUnsupportedScheme  = errors.New("unsupported signature scheme")
	ErrInvalidDigest      = errors.New("invalid digest length")
	ErrSeedNotInitialized = errors.New("seed not initialized")
)

// DerivedKey is the public half of a key derived for (Owner, Purpose). Immutable once created.
type DerivedKey struct {
	Owner     string
	Purpose   string
	Scheme    Scheme
	PublicKey []byte // 65 byte uncompressed secp256k1 or 32 byte ed25519
}

// Signer is the threshold-signing backend. Private key material never leaves it.
//
// Secp256k1 signatures are 64 byte compact r||s without a recovery id.
type Signer interface {
	PublicKey(ctx context.Context, owner string, purpose string, scheme Scheme) ([]byte, error)
	Sign(ctx context.Context, owner string, purpose string, scheme Scheme, payload []byte) ([]byte, error)
}

// Service is the process-wide key store in front of a Signer
type Service interface {
	// GetOrDeriveKey returns the cached key or asks the signer once and caches the result
	GetOrDeriveKey(ctx context.Context, owner string, purpose string, scheme Scheme) (*DerivedKey, error)

	// SignDigest sends exactly one signing request. For secp256k1 the payload is a 32 byte digest,
	// for ed25519 it is the message itself.
	SignDigest(ctx context.Context, owner string, purpose string, scheme Scheme, payload []byte) ([]byte, error)

	// Len returns the number of cached keys
	Len() int
}

// UnavailableError wraps a signer backend failure. errors.Is(err, ErrSignerUnavailable) holds for it.
type UnavailableError struct {
	Op  string
	Err error
}

func (e *UnavailableError) Error() string {
	return "signer unavailable: " + e.Op + ": " + e.Err.Error()
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

func (e *UnavailableError) Is(target error) bool {
	return target == ErrSignerUnavailable //nolint:errorlint // sentinel identity
}

type ErrInvalidSignatureLength struct {
	Got  int
	Want int
}

func (e ErrInvalidSignatureLength) Error() string {
	return "invalid signature length " + strconv.Itoa(e.Got) + ", want " + strconv.Itoa(e.Want)
}
