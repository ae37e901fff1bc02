package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gagliardetto/solana-go"

	"github.com/uhyunpark/solcheckout/params"
	"github.com/uhyunpark/solcheckout/pkg/api"
	"github.com/uhyunpark/solcheckout/pkg/catalog"
	"github.com/uhyunpark/solcheckout/pkg/checkout"
	"github.com/uhyunpark/solcheckout/pkg/ledger"
	"github.com/uhyunpark/solcheckout/pkg/util"
)

func main() {
	// Load config from .env file and environment variables
	cfg := params.LoadFromEnv("")
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	// Setup logging (write to both console and file)
	level := util.ParseLevel(cfg.LogLevel)
	logger, err := util.NewLogger(cfg.LogFile, level)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()
	sugar.Infow("logger_initialized", "log_file", cfg.LogFile, "level", level.String())

	// ---- Catalog ----
	items, closeCatalog, err := openCatalog(cfg.Catalog)
	if err != nil {
		sugar.Fatalw("catalog_init_failed", "backend", cfg.Catalog.Backend, "err", err)
	}
	defer closeCatalog()

	// ---- Ledger ----
	mint := solana.MustPublicKeyFromBase58(cfg.Ledger.PaymentMint)
	rpcClient := ledger.NewClient(cfg.Ledger.RPCURL, cfg.Ledger.Commitment)
	svc := checkout.NewService(items, rpcClient, mint)

	// ---- Transaction audit log ----
	var txLog io.Writer
	if cfg.API.TxLogFile != "" {
		f, err := api.OpenTxLog(cfg.API.TxLogFile)
		if err != nil {
			sugar.Fatalw("tx_log_open_failed", "path", cfg.API.TxLogFile, "err", err)
		}
		defer f.Close()
		txLog = f
	}

	server := api.NewServer(svc, items, api.Options{
		Logger:         sugar,
		Clock:          util.RealClock{},
		CORSOrigins:    cfg.API.CORSOrigins,
		RequestTimeout: cfg.API.RequestTimeout,
		TxLog:          txLog,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sugar.Infow("checkout_starting",
		"addr", cfg.API.Addr,
		"rpc_url", cfg.Ledger.RPCURL,
		"commitment", cfg.Ledger.Commitment,
		"payment_mint", mint.String(),
		"catalog_backend", cfg.Catalog.Backend)

	if err := server.Start(ctx, cfg.API.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		sugar.Errorw("api_server_error", "err", err)
		return
	}
	sugar.Info("shutdown complete")
}

// openCatalog builds the configured catalog backend. The pebble store is
// seeded from CATALOG_SEED_FILE when one is given; the memory backend falls
// back to the embedded product table.
func openCatalog(cfg params.Catalog) (catalog.Catalog, func(), error) {
	var seed []catalog.Item
	if cfg.SeedFile != "" {
		items, err := catalog.LoadItems(cfg.SeedFile)
		if err != nil {
			return nil, nil, err
		}
		seed = items
	}

	switch cfg.Backend {
	case params.CatalogPebble:
		store, err := catalog.OpenPebbleCatalog(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		if seed != nil {
			if err := store.Seed(seed); err != nil {
				store.Close()
				return nil, nil, err
			}
		}
		return store, func() { store.Close() }, nil
	default:
		if seed == nil {
			seed = catalog.DefaultItems()
		}
		return catalog.NewMemoryCatalog(seed), func() {}, nil
	}
}
