package params

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/joho/godotenv"
)

// USDC mints. The mint must exist on the cluster RPC_URL points at.
const (
	USDCMint       = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v" // mainnet-beta
	DevnetUSDCMint = "4zMMC9srt5Ri5X14GAgXhaHii3GnPAEERYPJgZJDncDU"
)

const (
	CatalogMemory = "memory"
	CatalogPebble = "pebble"
)

type Ledger struct {
	RPCURL string
	// Commitment used when fetching the recent blockhash and mint account.
	// "finalized" keeps the blockhash valid for the longest window a wallet
	// may need before submitting.
	Commitment  string
	PaymentMint string
}

type Catalog struct {
	Backend  string // "memory" or "pebble"
	Path     string // pebble directory
	SeedFile string // optional JSON seed; empty means the embedded table
}

type API struct {
	Addr           string
	CORSOrigins    []string
	RequestTimeout time.Duration
	TxLogFile      string
}

type Config struct {
	Ledger   Ledger
	Catalog  Catalog
	API      API
	LogFile  string
	LogLevel string
}

// Default targets devnet. Set RPC_URL and PAYMENT_MINT together (e.g. to
// mainnet-beta and USDCMint) when switching clusters.
func Default() Config {
	return Config{
		Ledger: Ledger{
			RPCURL:      "https://api.devnet.solana.com",
			Commitment:  "finalized",
			PaymentMint: DevnetUSDCMint,
		},
		Catalog: Catalog{
			Backend: CatalogMemory,
			Path:    "data/catalog",
		},
		API: API{
			Addr:           ":8080",
			CORSOrigins:    []string{"http://localhost:3000", "http://localhost:3001"},
			RequestTimeout: 10 * time.Second,
			TxLogFile:      "data/transactions.log",
		},
		LogFile:  "data/checkout.log",
		LogLevel: "info",
	}
}

// LoadFromEnv loads configuration from .env file (if exists) and environment variables
// Priority: ENV > .env file > defaults
func LoadFromEnv(envPath string) Config {
	cfg := Default()

	// Try to load .env file (optional - won't fail if not exists)
	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	cfg.Ledger.RPCURL = getEnv("RPC_URL", cfg.Ledger.RPCURL)
	cfg.Ledger.Commitment = getEnv("RPC_COMMITMENT", cfg.Ledger.Commitment)
	cfg.Ledger.PaymentMint = getEnv("PAYMENT_MINT", cfg.Ledger.PaymentMint)

	cfg.Catalog.Backend = getEnv("CATALOG_BACKEND", cfg.Catalog.Backend)
	cfg.Catalog.Path = getEnv("CATALOG_PATH", cfg.Catalog.Path)
	cfg.Catalog.SeedFile = getEnv("CATALOG_SEED_FILE", cfg.Catalog.SeedFile)

	cfg.API.Addr = getEnv("API_ADDR", cfg.API.Addr)
	cfg.API.TxLogFile = getEnv("TX_LOG_FILE", cfg.API.TxLogFile)
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		cfg.API.CORSOrigins = splitList(origins)
	}
	if timeout := os.Getenv("REQUEST_TIMEOUT_MS"); timeout != "" {
		if ms, err := strconv.Atoi(timeout); err == nil && ms > 0 {
			cfg.API.RequestTimeout = time.Duration(ms) * time.Millisecond
		}
	}

	cfg.LogFile = getEnv("LOG_FILE", cfg.LogFile)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	return cfg
}

// Validate checks the values that would otherwise only fail on the first request.
func (c Config) Validate() error {
	if c.Ledger.RPCURL == "" {
		return fmt.Errorf("RPC_URL is empty")
	}
	if _, err := solana.PublicKeyFromBase58(c.Ledger.PaymentMint); err != nil {
		return fmt.Errorf("invalid PAYMENT_MINT %q: %w", c.Ledger.PaymentMint, err)
	}
	switch c.Ledger.Commitment {
	case "processed", "confirmed", "finalized":
	default:
		return fmt.Errorf("unknown RPC_COMMITMENT %q", c.Ledger.Commitment)
	}
	switch c.Catalog.Backend {
	case CatalogMemory:
	case CatalogPebble:
		if c.Catalog.Path == "" {
			return fmt.Errorf("CATALOG_PATH is required for the pebble backend")
		}
	default:
		return fmt.Errorf("unknown CATALOG_BACKEND %q", c.Catalog.Backend)
	}
	return nil
}

// getEnv returns environment variable value or default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
