package keys

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github/chapool/chainswap/internal/metrics"
	"golang.org/x/sync/singleflight"
)

type cacheKey struct {
	owner   string
	purpose string
	scheme  Scheme
}

func (k cacheKey) String() string {
	return k.owner + "\x00" + k.purpose + "\x00" + string(k.scheme)
}

type service struct {
	signer       Signer
	singleFlight bool
	metrics      *metrics.Service
	logger       zerolog.Logger

	mu    sync.RWMutex
	cache map[cacheKey]*DerivedKey
	group singleflight.Group
}

type Option func(*service)

// WithSingleFlight collapses concurrent first-time derivations of the same key into one signer call.
func WithSingleFlight(enabled bool) Option {
	return func(s *service) { s.singleFlight = enabled }
}

func WithMetrics(m *metrics.Service) Option {
	return func(s *service) { s.metrics = m }
}

// NewService creates a key store in front of signer
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewService(signer Signer, opts ...Option) Service {
	s := &service{
		signer:       signer,
		singleFlight: true,
		cache:        make(map[cacheKey]*DerivedKey),
		logger:       log.With().Str("component", "keys").Logger(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *service) GetOrDeriveKey(ctx context.Context, owner string, purpose string, scheme Scheme) (*DerivedKey, error) {
	if scheme != SchemeSecp256k1 && scheme != SchemeEd25519 {
		return nil, ErrUnsupportedScheme
	}

	key := cacheKey{owner: owner, purpose: purpose, scheme: scheme}

	if dk, ok := s.lookup(key); ok {
		s.metrics.KeyCache(true)
		return dk, nil
	}
	s.metrics.KeyCache(false)

	if !s.singleFlight {
		return s.derive(ctx, key)
	}

	v, err, _ := s.group.Do(key.String(), func() (any, error) {
		// a concurrent caller may have populated the cache between lookup and Do
		if dk, ok := s.lookup(key); ok {
			return dk, nil
		}
		return s.derive(ctx, key)
	})
	if err != nil {
		return nil, err
	}

	return v.(*DerivedKey), nil //nolint:forcetypeassert // only *DerivedKey is returned above
}

func (s *service) SignDigest(ctx context.Context, owner string, purpose string, scheme Scheme, payload []byte) ([]byte, error) {
	switch scheme {
	case SchemeSecp256k1:
		if len(payload) != DigestLength {
			return nil, ErrInvalidDigest
		}
	case SchemeEd25519:
	default:
		return nil, ErrUnsupportedScheme
	}

	sig, err := s.signer.Sign(ctx, owner, purpose, scheme, payload)
	if err != nil {
		s.logger.Error().Err(err).Str("owner", owner).Str("purpose", purpose).Msg("Remote signing failed")
		return nil, &UnavailableError{Op: "sign", Err: err}
	}

	want := Secp256k1SignatureLength
	if scheme == SchemeEd25519 {
		want = Ed25519SignatureLength
	}
	if len(sig) != want {
		return nil, &UnavailableError{Op: "sign", Err: ErrInvalidSignatureLength{Got: len(sig), Want: want}}
	}

	return sig, nil
}

func (s *service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.cache)
}

func (s *service) lookup(key cacheKey) (*DerivedKey, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dk, ok := s.cache[key]
	return dk, ok
}

func (s *service) derive(ctx context.Context, key cacheKey) (*DerivedKey, error) {
	pub, err := s.signer.PublicKey(ctx, key.owner, key.purpose, key.scheme)
	if err != nil {
		return nil, &UnavailableError{Op: "public key", Err: err}
	}

	if err := checkPublicKey(key.scheme, pub); err != nil {
		s.logger.Error().Err(err).Str("owner", key.owner).Str("purpose", key.purpose).Msg("Signer returned an unusable public key")
		return nil, &UnavailableError{Op: "public key", Err: err}
	}

	dk := &DerivedKey{
		Owner:     key.owner,
		Purpose:   key.purpose,
		Scheme:    key.scheme,
		PublicKey: pub,
	}

	s.mu.Lock()
	// first writer wins
	if existing, ok := s.cache[key]; ok {
		dk = existing
	} else {
		s.cache[key] = dk
	}
	s.mu.Unlock()

	s.logger.Debug().Str("owner", key.owner).Str("purpose", key.purpose).Str("scheme", string(key.scheme)).Msg("Derived key cached")

	return dk, nil
}

// checkPublicKey accepts 65 byte uncompressed secp256k1 points on the curve and 32 byte ed25519 keys.
func checkPublicKey(scheme Scheme, pub []byte) error {
	switch scheme {
	case SchemeSecp256k1:
		if len(pub) != UncompressedPubKeyLength {
			return errors.Errorf("secp256k1 public key has %d bytes, want %d", len(pub), UncompressedPubKeyLength)
		}
		if _, err := crypto.UnmarshalPubkey(pub); err != nil {
			return errors.Wrap(err, "secp256k1 public key is not on the curve")
		}
	case SchemeEd25519:
		if len(pub) != Ed25519PubKeyLength {
			return errors.Errorf("ed25519 public key has %d bytes, want %d", len(pub), Ed25519PubKeyLength)
		}
	default:
		return ErrUnsupportedScheme
	}

	return nil
}
