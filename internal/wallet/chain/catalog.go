package chain

var networks = []Network{
	{Name: "ethereum", Kind: KindEVM, ChainID: 1, NativeSymbol: "ETH", NativeDecimals: 18},
	{Name: "bsc", Kind: KindEVM, ChainID: 56, NativeSymbol: "BNB", NativeDecimals: 18},
	{Name: "base", Kind: KindEVM, ChainID: 8453, NativeSymbol: "ETH", NativeDecimals: 18},
	{Name: "sepolia", Kind: KindEVM, ChainID: 11155111, NativeSymbol: "ETH", NativeDecimals: 18, Testnet: true},
	{Name: "solana", Kind: KindSolana, NativeSymbol: "SOL", NativeDecimals: 9},
	{Name: "solana-devnet", Kind: KindSolana, NativeSymbol: "SOL", NativeDecimals: 9, Testnet: true},
	{Name: "tron", Kind: KindTron, NativeSymbol: "TRX", NativeDecimals: 6},
	{Name: "tron-nile", Kind: KindTron, NativeSymbol: "TRX", NativeDecimals: 6, Testnet: true},
	{Name: "bitcoin", Kind: KindBitcoin, NativeSymbol: "BTC", NativeDecimals: 8},
	{Name: "bitcoin-testnet", Kind: KindBitcoin, NativeSymbol: "BTC", NativeDecimals: 8, Testnet: true},
}

var tokens = []Token{
	{ID: "usdc-ethereum", Name: "USD Coin", Symbol: "USDC", Address: "0xA0b86991c6218b36c1d19D4a2e9Eb10cE3606eB48", Network: "ethereum", Decimals: 6, PriceFeed: "USDC"},
	{ID: "usdt-ethereum", Name: "Tether USD", Symbol: "USDT", Address: "0xdAC17F958D2ee523a2206206994597C13D831ec7", Network: "ethereum", Decimals: 6, PriceFeed: "USDT"},
	{ID: "usdt-bsc", Name: "Tether USD", Symbol: "USDT", Address: "0x55d398326f99059fF775485246999027B3197955", Network: "bsc", Decimals: 18, PriceFeed: "USDT"},
	{ID: "usdc-base", Name: "USD Coin", Symbol: "USDC", Address: "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913", Network: "base", Decimals: 6, PriceFeed: "USDC"},
	{ID: "usdc-sepolia", Name: "USD Coin", Symbol: "USDC", Address: "0x1c7D4B196Cb0C7B01d743Fbc6116a902379C7238", Network: "sepolia", Decimals: 6, PriceFeed: "USDC"},
	{ID: "usdc-solana", Name: "USD Coin", Symbol: "USDC", Address: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", Network: "solana", Decimals: 6, PriceFeed: "USDC"},
	{ID: "usdt-tron", Name: "Tether USD", Symbol: "USDT", Address: "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t", Network: "tron", Decimals: 6, PriceFeed: "USDT"},
}

// Networks returns a copy of the built-in network list.
func Networks() []Network {
	out := make([]Network, len(networks))
	copy(out, networks)

	return out
}
