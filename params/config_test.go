package params

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestDefaultMintMatchesCluster(t *testing.T) {
	cfg := Default()
	if !strings.Contains(cfg.Ledger.RPCURL, "devnet") {
		t.Fatalf("default RPC = %q, expected devnet", cfg.Ledger.RPCURL)
	}
	if cfg.Ledger.PaymentMint != DevnetUSDCMint {
		t.Errorf("default mint = %s, want devnet USDC %s", cfg.Ledger.PaymentMint, DevnetUSDCMint)
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("RPC_URL", "http://127.0.0.1:8899")
	t.Setenv("PAYMENT_MINT", "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB")
	t.Setenv("CATALOG_BACKEND", "pebble")
	t.Setenv("CATALOG_PATH", "/tmp/catalog")
	t.Setenv("CORS_ORIGINS", "https://shop.example, https://admin.example")
	t.Setenv("REQUEST_TIMEOUT_MS", "2500")

	cfg := LoadFromEnv("does-not-exist.env")

	if cfg.Ledger.RPCURL != "http://127.0.0.1:8899" {
		t.Errorf("RPCURL = %q", cfg.Ledger.RPCURL)
	}
	if cfg.Catalog.Backend != CatalogPebble || cfg.Catalog.Path != "/tmp/catalog" {
		t.Errorf("catalog = %+v", cfg.Catalog)
	}
	if len(cfg.API.CORSOrigins) != 2 || cfg.API.CORSOrigins[1] != "https://admin.example" {
		t.Errorf("CORSOrigins = %v", cfg.API.CORSOrigins)
	}
	if cfg.API.RequestTimeout != 2500*time.Millisecond {
		t.Errorf("RequestTimeout = %v", cfg.API.RequestTimeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad mint", func(c *Config) { c.Ledger.PaymentMint = "not-a-key" }},
		{"unknown backend", func(c *Config) { c.Catalog.Backend = "redis" }},
		{"pebble without path", func(c *Config) { c.Catalog.Backend = CatalogPebble; c.Catalog.Path = "" }},
		{"unknown commitment", func(c *Config) { c.Ledger.Commitment = "recent" }},
		{"empty rpc", func(c *Config) { c.Ledger.RPCURL = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected error")
			}
		})
	}
}
