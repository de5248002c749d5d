package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/caldera-ledger/txregistry/internal/audit"
	"github.com/caldera-ledger/txregistry/internal/config"
	"github.com/caldera-ledger/txregistry/internal/dbpool"
	"github.com/caldera-ledger/txregistry/internal/errreport"
	"github.com/caldera-ledger/txregistry/internal/logger"
	"github.com/caldera-ledger/txregistry/internal/txmetrics"
	"github.com/caldera-ledger/txregistry/internal/txregistry"
	"github.com/caldera-ledger/txregistry/internal/txstore"
)

// registrycheck exercises a live Registry end to end: create, get, update,
// query, count, and soft-delete a single synthetic transaction. It is a
// smoke harness, not a test suite — grounded on the teacher's cmd/tests
// one-shot CLI probes (cmd/tests/callbacktest).
func main() {
	configPath := flag.String("config", "configs/local.yaml", "path to config yaml")
	orderType := flag.String("order-type", "registrycheck", "order_type used for the synthetic transaction")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.Postgres.URL == "" {
		log.Fatalf("postgres.url is not configured")
	}

	zlog := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Service:     "registrycheck",
		Environment: cfg.Logging.Environment,
	})

	pool, err := dbpool.NewSharedPool(cfg.Postgres.URL, cfg.Postgres.Pool)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}

	metrics := txmetrics.New(prometheus.NewRegistry())
	gateway := txstore.New(pool.DB(), txstore.TimeoutConfig{
		Statement: cfg.Registry.StatementTimeout.Duration,
		Lock:      cfg.Registry.LockTimeout.Duration,
	}, txstore.RetryConfig{
		Enabled:     cfg.Registry.RetryEnabled,
		MaxAttempts: cfg.Registry.RetryMaxAttempts,
		Backoff:     cfg.Registry.RetryBackoff.Duration,
	}, metrics)

	emitter := audit.New(zlog)
	emitter.Register(audit.NewLogSink(zlog))
	reporter := errreport.New(zlog)

	reg := txregistry.New(gateway, emitter, reporter, zlog, cfg.Registry.DateWindowTimezone, func() {
		if err := pool.Close(); err != nil {
			zlog.Warn().Err(err).Msg("close postgres pool")
		}
	})
	defer reg.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tx, err := reg.Create(ctx, map[string]any{
		"order_id":       fmt.Sprintf("registrycheck-%d", time.Now().UnixNano()),
		"amount":         12.50,
		"order_type":     *orderType,
		"customer_uid":   "registrycheck-customer",
		"status":         "pending",
		"direction":      "purchase",
		"payment_method": "card",
		"currency":       "usd",
		"platform":       "cli",
		"owners":         []any{"registrycheck-owner"},
	})
	if err != nil {
		log.Fatalf("create: %v", err)
	}
	fmt.Println("created transaction", tx.TransactionID)

	got, found, err := reg.Get(ctx, tx.TransactionID)
	if err != nil {
		log.Fatalf("get: %v", err)
	}
	if !found {
		log.Fatalf("get: transaction %s not found immediately after create", tx.TransactionID)
	}
	fmt.Println("fetched status", got.Status)

	updated, err := reg.Update(ctx, tx.TransactionID, map[string]any{"status": "settled"})
	if err != nil {
		log.Fatalf("update: %v", err)
	}
	fmt.Println("updated status", updated.Status)

	result, err := reg.Query(ctx, txregistry.QueryFilters{CustomerUID: "registrycheck-customer"}, txregistry.Pagination{Limit: 10})
	if err != nil {
		log.Fatalf("query: %v", err)
	}
	fmt.Printf("query returned %d of %d total\n", len(result.Rows), result.Total)

	count := reg.CountAll(ctx)
	fmt.Println("count_all", count)

	if _, err := reg.Delete(ctx, tx.TransactionID); err != nil {
		log.Fatalf("delete: %v", err)
	}
	fmt.Println("soft-deleted", tx.TransactionID)
}
