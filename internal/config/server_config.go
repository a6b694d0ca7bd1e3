package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github/chapool/chainswap/internal/util"
	"github/chapool/chainswap/internal/wallet/chain"
)

type EchoServer struct {
	Debug                          bool
	ListenAddress                  string
	HideInternalServerErrorDetails bool
	BaseURL                        string
	EnableRequestIDMiddleware      bool
	EnableRecoverMiddleware        bool
}

type LoggerServer struct {
	Level              zerolog.Level
	RequestLevel       zerolog.Level
	PrettyPrintConsole bool
}

type ManagementServer struct {
	ProbeReadinessTimeout time.Duration
}

// KeysServer configures how derived keys are produced.
// Exactly one of RemoteSignerURL or a mnemonic source (Mnemonic / KeystoreFile) is expected.
type KeysServer struct {
	Mnemonic           string `json:"-"`
	MnemonicPassphrase string `json:"-"`
	KeystoreFile       string
	KeystorePassword   string `json:"-"`
	RemoteSignerURL    string
	RemoteSignerToken  string `json:"-"`
	SingleFlight       bool
}

// ChainServer holds the RPC endpoints of one network. Networks without URLs stay disabled.
type ChainServer struct {
	Network string
	RPCURLs []string
	ChainID int64
}

type RPCServer struct {
	Timeout       time.Duration
	FlatRetryMax  int
	FlatRetryWait time.Duration
	HTTPRetryMax  int
	HTTPWaitMin   time.Duration
	HTTPWaitMax   time.Duration
	RateLimit     float64
	RateBurst     int
}

type HistoryServer struct {
	Backend       string
	BadgerDir     string
	RedisAddr     string
	RedisPassword string `json:"-"`
	RedisDB       int
	RedisPrefix   string
	ClaimTTL      time.Duration
}

type EventsServer struct {
	Enabled bool
	Brokers []string
	Topic   string
}

type SwapServer struct {
	Owner          string
	Purpose        string
	FeeBps         int64
	RevertAttempts int
	RevertWait     time.Duration
	PriceFeedURL   string
	PriceCacheTTL  time.Duration
	PriceTimeout   time.Duration
	StaticPrices   map[string]string
}

type Server struct {
	Echo       EchoServer
	Logger     LoggerServer
	Management ManagementServer
	Keys       KeysServer
	Chains     map[string]ChainServer
	RPC        RPCServer
	History    HistoryServer
	Events     EventsServer
	Swap       SwapServer
}

const (
	HistoryBackendMemory = "memory"
	HistoryBackendBadger = "badger"
	HistoryBackendRedis  = "redis"
)

// DefaultServiceConfigFromEnv returns the server config as parsed from environment variables
// and their respective defaults defined below.
// We don't expect that ENV_VARs change while we are running our application or our tests
// (and it would be a bad thing to do anyways with parallel testing).
// Do NOT use os.Setenv / os.Unsetenv in tests utilizing DefaultServiceConfigFromEnv()!
func DefaultServiceConfigFromEnv() Server {
	// An `.env.local` file in your project root can override the currently set variables
	DotEnvTryLoad(filepath.Join(util.GetProjectRootDir(), ".env.local"), os.Setenv)

	return Server{
		Echo: EchoServer{
			Debug:                          util.GetEnvAsBool("SERVER_ECHO_DEBUG", false),
			ListenAddress:                  util.GetEnv("SERVER_ECHO_LISTEN_ADDRESS", ":8080"),
			HideInternalServerErrorDetails: util.GetEnvAsBool("SERVER_ECHO_HIDE_INTERNAL_SERVER_ERROR_DETAILS", true),
			BaseURL:                        util.GetEnv("SERVER_ECHO_BASE_URL", "http://localhost:8080"),
			EnableRequestIDMiddleware:      util.GetEnvAsBool("SERVER_ECHO_ENABLE_REQUEST_ID_MIDDLEWARE", true),
			EnableRecoverMiddleware:        util.GetEnvAsBool("SERVER_ECHO_ENABLE_RECOVER_MIDDLEWARE", true),
		},
		Logger: LoggerServer{
			Level:              parseLevel(util.GetEnv("SERVER_LOGGER_LEVEL", "info"), zerolog.InfoLevel),
			RequestLevel:       parseLevel(util.GetEnv("SERVER_LOGGER_REQUEST_LEVEL", "info"), zerolog.InfoLevel),
			PrettyPrintConsole: util.GetEnvAsBool("SERVER_LOGGER_PRETTY_PRINT_CONSOLE", false),
		},
		Management: ManagementServer{
			ProbeReadinessTimeout: util.GetEnvAsDuration("SERVER_MANAGEMENT_PROBE_READINESS_TIMEOUT", 4*time.Second),
		},
		Keys: KeysServer{
			Mnemonic:           util.GetEnv("KEYS_MNEMONIC", ""),
			MnemonicPassphrase: util.GetEnv("KEYS_MNEMONIC_PASSPHRASE", ""),
			KeystoreFile:       util.GetEnv("KEYS_KEYSTORE_FILE", ""),
			KeystorePassword:   util.GetEnv("KEYS_KEYSTORE_PASSWORD", ""),
			RemoteSignerURL:    util.GetEnv("KEYS_REMOTE_SIGNER_URL", ""),
			RemoteSignerToken:  util.GetEnv("KEYS_REMOTE_SIGNER_TOKEN", ""),
			SingleFlight:       util.GetEnvAsBool("KEYS_SINGLE_FLIGHT", true),
		},
		Chains: chainsFromEnv(),
		RPC: RPCServer{
			Timeout:       util.GetEnvAsDuration("RPC_TIMEOUT", 15*time.Second),
			FlatRetryMax:  util.GetEnvAsInt("RPC_FLAT_RETRY_MAX", 3),
			FlatRetryWait: util.GetEnvAsDuration("RPC_FLAT_RETRY_WAIT", 0),
			HTTPRetryMax:  util.GetEnvAsInt("RPC_HTTP_RETRY_MAX", 3),
			HTTPWaitMin:   util.GetEnvAsDuration("RPC_HTTP_WAIT_MIN", 500*time.Millisecond),
			HTTPWaitMax:   util.GetEnvAsDuration("RPC_HTTP_WAIT_MAX", 8*time.Second),
			RateLimit:     util.GetEnvAsFloat("RPC_RATE_LIMIT", 0),
			RateBurst:     util.GetEnvAsInt("RPC_RATE_BURST", 10),
		},
		History: HistoryServer{
			Backend: util.GetEnvEnum("HISTORY_BACKEND", HistoryBackendMemory,
				[]string{HistoryBackendMemory, HistoryBackendBadger, HistoryBackendRedis}),
			BadgerDir:     util.GetEnv("HISTORY_BADGER_DIR", filepath.Join(util.GetProjectRootDir(), "data", "history")),
			RedisAddr:     util.GetEnv("HISTORY_REDIS_ADDR", "localhost:6379"),
			RedisPassword: util.GetEnv("HISTORY_REDIS_PASSWORD", ""),
			RedisDB:       util.GetEnvAsInt("HISTORY_REDIS_DB", 0),
			RedisPrefix:   util.GetEnv("HISTORY_REDIS_PREFIX", "chainswap:history"),
			ClaimTTL:      util.GetEnvAsDuration("HISTORY_CLAIM_TTL", 10*time.Minute),
		},
		Events: EventsServer{
			Enabled: util.GetEnvAsBool("EVENTS_ENABLED", false),
			Brokers: util.GetEnvAsStringArrTrimmed("EVENTS_KAFKA_BROKERS", []string{"localhost:9092"}),
			Topic:   util.GetEnv("EVENTS_KAFKA_TOPIC", "chainswap.swaps"),
		},
		Swap: SwapServer{
			Owner:          util.GetEnv("SWAP_OWNER", "chainswap"),
			Purpose:        util.GetEnv("SWAP_PURPOSE", "swap"),
			FeeBps:         util.GetEnvAsInt64("SWAP_FEE_BPS", 30),
			RevertAttempts: util.GetEnvAsInt("SWAP_REVERT_ATTEMPTS", 3),
			RevertWait:     util.GetEnvAsDuration("SWAP_REVERT_WAIT", 2*time.Second),
			PriceFeedURL:   util.GetEnv("SWAP_PRICE_FEED_URL", ""),
			PriceCacheTTL:  util.GetEnvAsDuration("SWAP_PRICE_CACHE_TTL", 30*time.Second),
			PriceTimeout:   util.GetEnvAsDuration("SWAP_PRICE_TIMEOUT", 10*time.Second),
			StaticPrices:   parsePrices(util.GetEnvAsStringArrTrimmed("SWAP_STATIC_PRICES", nil)),
		},
	}
}

// chainsFromEnv reads RPC_<NETWORK>_URLS for every built-in network, e.g. RPC_ETHEREUM_URLS.
func chainsFromEnv() map[string]ChainServer {
	chains := make(map[string]ChainServer)

	for _, network := range chain.Networks() {
		key := "RPC_" + strings.ToUpper(strings.ReplaceAll(network.Name, "-", "_"))

		urls := util.GetEnvAsStringArrTrimmed(key+"_URLS", nil)
		if len(urls) == 0 {
			continue
		}

		chains[network.Name] = ChainServer{
			Network: network.Name,
			RPCURLs: urls,
			ChainID: util.GetEnvAsInt64(key+"_CHAIN_ID", network.ChainID),
		}
	}

	return chains
}

// parsePrices parses "SYMBOL=price" pairs.
func parsePrices(pairs []string) map[string]string {
	prices := make(map[string]string, len(pairs))

	for _, pair := range pairs {
		symbol, price, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		prices[strings.ToUpper(strings.TrimSpace(symbol))] = strings.TrimSpace(price)
	}

	return prices
}

func parseLevel(s string, fallback zerolog.Level) zerolog.Level {
	l, err := zerolog.ParseLevel(s)
	if err != nil {
		return fallback
	}

	return l
}
