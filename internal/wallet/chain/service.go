package chain

import (
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrUnknownNetwork = errors.New("unknown network")
	ErrUnknownToken   = errors.New("unknown token")
)

type service struct {
	networks map[string]*Network
	order    []string
	rpcURLs  map[string][]string
	tokens   map[string][]*Token
}

// NewService creates a chain service over the built-in catalog; rpcURLs maps network name to endpoints.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewService(rpcURLs map[string][]string) Service {
	s := &service{
		networks: make(map[string]*Network, len(networks)),
		order:    make([]string, 0, len(networks)),
		rpcURLs:  make(map[string][]string, len(rpcURLs)),
		tokens:   make(map[string][]*Token),
	}

	for i := range networks {
		n := networks[i]
		s.networks[n.Name] = &n
		s.order = append(s.order, n.Name)

		s.tokens[n.Name] = append(s.tokens[n.Name], &Token{
			ID:        strings.ToLower(n.NativeSymbol) + "-" + n.Name,
			Name:      n.NativeSymbol,
			Symbol:    n.NativeSymbol,
			Network:   n.Name,
			Decimals:  n.NativeDecimals,
			IsNative:  true,
			PriceFeed: n.NativeSymbol,
		})
	}

	for i := range tokens {
		t := tokens[i]
		s.tokens[t.Network] = append(s.tokens[t.Network], &t)
	}

	for name, urls := range rpcURLs {
		s.rpcURLs[name] = ParseRPCURLs(strings.Join(urls, ","))
	}

	return s
}

func (s *service) GetNetwork(name string) (*Network, error) {
	n, ok := s.networks[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownNetwork, "network %q", name)
	}

	return n, nil
}

func (s *service) ListNetworks() []*Network {
	out := make([]*Network, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.networks[name])
	}

	return out
}

func (s *service) GetActiveNetworks() []*Network {
	out := make([]*Network, 0, len(s.rpcURLs))
	for _, name := range s.order {
		if len(s.rpcURLs[name]) > 0 {
			out = append(out, s.networks[name])
		}
	}

	return out
}

func (s *service) RPCURLs(name string) []string {
	return s.rpcURLs[name]
}

func (s *service) LookupToken(network string, address string) (*Token, error) {
	n, err := s.GetNetwork(network)
	if err != nil {
		return nil, err
	}

	for _, t := range s.tokens[network] {
		if address == "" && t.IsNative {
			return t, nil
		}
		if address != "" && !t.IsNative && SameAddress(n.Kind, t.Address, address) {
			return t, nil
		}
	}

	return nil, errors.Wrapf(ErrUnknownToken, "token %q on %s", address, network)
}

func (s *service) NativeToken(network string) (*Token, error) {
	return s.LookupToken(network, "")
}

func (s *service) ListTokens(network string) []*Token {
	return s.tokens[network]
}

// SameAddress compares addresses the way the network family does: EVM hex is case-insensitive,
// base58 families are compared exactly.
func SameAddress(kind Kind, a, b string) bool {
	if kind == KindEVM {
		return strings.EqualFold(a, b)
	}

	return a == b
}

// ParseRPCURLs splits a comma separated URL list, dropping empty entries
func ParseRPCURLs(rpcURL string) []string {
	if rpcURL == "" {
		return nil
	}

	urls := strings.Split(rpcURL, ",")
	result := make([]string, 0, len(urls))

	for _, url := range urls {
		url = strings.TrimSpace(url)
		if url != "" {
			result = append(result, url)
		}
	}

	return result
}
