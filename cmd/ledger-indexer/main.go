package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/feral-file/ff-ledger-indexer/internal/adapter"
	"github.com/feral-file/ff-ledger-indexer/internal/config"
	"github.com/feral-file/ff-ledger-indexer/internal/domain"
	"github.com/feral-file/ff-ledger-indexer/internal/indexer"
	"github.com/feral-file/ff-ledger-indexer/internal/logger"
	"github.com/feral-file/ff-ledger-indexer/internal/messaging"
	"github.com/feral-file/ff-ledger-indexer/internal/providers/ethereum"
	"github.com/feral-file/ff-ledger-indexer/internal/providers/jetstream"
	"github.com/feral-file/ff-ledger-indexer/internal/ratelimit"
	"github.com/feral-file/ff-ledger-indexer/internal/resolver"
	"github.com/feral-file/ff-ledger-indexer/internal/store"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadIndexerConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "ledger-indexer",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting Ledger Indexer", zap.Int("chains", len(cfg.Chains)))

	mismatchPolicy, err := resolver.ParseMismatchPolicy(cfg.Indexer.MismatchPolicy)
	if err != nil {
		logger.FatalCtx(ctx, "Invalid indexer configuration", zap.Error(err))
	}

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err), zap.String("host", cfg.Database.Host))
	}

	// Configure connection pool
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Connected to database")

	// Initialize store
	dataStore := store.NewPGStore(db)

	// Initialize adapters
	clockAdapter := adapter.NewClock()
	ethDialer := adapter.NewEthClientDialer()

	// Initialize block publisher, notifications are optional
	var publisher messaging.Publisher
	if cfg.NATS.URL == "" {
		logger.WarnCtx(ctx, "NATS url not configured, block notifications are disabled")
		publisher = messaging.NewNoopPublisher()
	} else {
		publisher, err = jetstream.NewPublisher(
			ctx,
			jetstream.Config{
				URL:            cfg.NATS.URL,
				StreamName:     cfg.NATS.StreamName,
				SubjectPrefix:  cfg.NATS.SubjectPrefix,
				MaxReconnects:  cfg.NATS.MaxReconnects,
				ReconnectWait:  cfg.NATS.ReconnectWait,
				ConnectionName: cfg.NATS.ConnectionName,
				PublishTimeout: cfg.NATS.PublishTimeout,
			}, adapter.NewNatsJetStream(), adapter.NewJSON())
		if err != nil {
			logger.FatalCtx(ctx, "Failed to create NATS publisher", zap.Error(err), zap.String("url", cfg.NATS.URL))
		}
		logger.InfoCtx(ctx, "Connected to NATS JetStream", zap.String("stream", cfg.NATS.StreamName))
	}
	defer publisher.Close()

	// Build one indexer per reachable chain
	indexers := make(map[uint64]indexer.Indexer, len(cfg.Chains))
	for i := range cfg.Chains {
		chainCfg := &cfg.Chains[i]
		chainCtx := logger.WithFields(ctx, zap.String("chain", domain.CAIP2(chainCfg.ChainID)))

		client, err := ethereum.Dial(chainCtx, ethereum.Config{
			ChainID:          chainCfg.ChainID,
			RPCURL:           chainCfg.RPCURL,
			WebSocketURL:     chainCfg.WebSocketURL,
			MulticallAddress: chainCfg.MulticallTarget(),
			PollInterval:     chainCfg.PollInterval,
			ReceiptWorkers:   cfg.Indexer.ReceiptWorkers,
			UseBlockReceipts: chainCfg.UseBlockReceipts,
		}, ratelimit.NewDialer(ethDialer, ratelimit.Config{
			RequestsPerSecond: chainCfg.RequestsPerSecond,
			Burst:             chainCfg.RequestBurst,
		}), clockAdapter)
		if err != nil {
			logger.ErrorCtx(chainCtx, err, zap.String("rpc_url", chainCfg.RPCURL))
			continue
		}
		defer client.Close()

		idx, err := newChainIndexer(cfg, chainCfg, mismatchPolicy, client, dataStore, publisher, clockAdapter)
		if err != nil {
			logger.ErrorCtx(chainCtx, err)
			continue
		}
		indexers[chainCfg.ChainID] = idx
		logger.InfoCtx(chainCtx, "Chain indexer ready", zap.Bool("websocket", chainCfg.WebSocketURL != ""))
	}

	if len(indexers) == 0 {
		logger.FatalCtx(ctx, "No chain could be started")
	}

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Run every chain until shutdown
	doneCh := make(chan int, 1)
	go func() {
		doneCh <- indexer.RunAll(ctx, indexers)
	}()

	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
		<-doneCh
	case failed := <-doneCh:
		logger.WarnCtx(ctx, "All chain indexers exited", zap.Int("failed", failed))
		cancel()
	}

	// Use non-context logger for final shutdown message since context is already canceled
	logger.Info("Ledger Indexer stopped")
}

func newChainIndexer(
	cfg *config.IndexerConfig,
	chainCfg *config.ChainConfig,
	policy resolver.MismatchPolicy,
	client ethereum.ChainClient,
	st store.Store,
	publisher messaging.Publisher,
	clock adapter.Clock,
) (indexer.Indexer, error) {
	enabled, err := chainCfg.EnabledStandards()
	if err != nil {
		return nil, err
	}
	standards := make([]domain.Standard, 0, len(enabled))
	for std := range enabled {
		standards = append(standards, std)
	}

	return indexer.New(indexer.Config{
		ChainID:                 chainCfg.ChainID,
		Standards:               standards,
		WrappedNativeCurrencies: chainCfg.WrappedNativeCurrencies,
		BlockTimeout:            cfg.Indexer.BlockTimeout,
		RetryInitialInterval:    cfg.Indexer.RetryInitialInterval,
		RetryMaxInterval:        cfg.Indexer.RetryMaxInterval,
		RetryMaxElapsed:         cfg.Indexer.RetryMaxElapsed,
		TokenCacheSize:          cfg.Indexer.TokenCacheSize,
		MismatchPolicy:          policy,
	}, client, st, publisher, clock)
}
