package chain

// Kind groups networks that share address, transaction and signing formats.
type Kind string

const (
	KindEVM     Kind = "evm"
	KindSolana  Kind = "solana"
	KindTron    Kind = "tron"
	KindBitcoin Kind = "bitcoin"
)

// Network describes a supported network
type Network struct {
	Name           string // Unique network name (e.g. "ethereum", "solana-devnet")
	Kind           Kind   // Address / transaction family
	ChainID        int64  // EIP-155 chain ID for EVM networks, 0 otherwise
	NativeSymbol   string // Symbol of the native asset
	NativeDecimals int32  // Decimals of the native asset
	Testnet        bool
}

// Token is a static token descriptor, never mutated at runtime
type Token struct {
	ID        string
	Name      string
	Symbol    string
	Address   string // Contract / mint address, empty for the native asset
	Network   string
	Decimals  int32
	IsNative  bool
	PriceFeed string // Key used to look the token up in a price feed
}

// Service provides read access to networks, tokens and configured RPC endpoints
type Service interface {
	// GetNetwork returns a built-in network by name
	GetNetwork(name string) (*Network, error)

	// ListNetworks returns all built-in networks
	ListNetworks() []*Network

	// GetActiveNetworks returns networks with at least one configured RPC URL
	GetActiveNetworks() []*Network

	// RPCURLs returns configured RPC URLs for a network
	RPCURLs(name string) []string

	// LookupToken finds a token by network and address, empty address means the native asset
	LookupToken(network string, address string) (*Token, error)

	// NativeToken returns the native asset of a network
	NativeToken(network string) (*Token, error)

	// ListTokens returns the catalog of a network
	ListTokens(network string) []*Token
}
