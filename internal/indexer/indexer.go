package indexer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/feral-file/ff-ledger-indexer/internal/adapter"
	"github.com/feral-file/ff-ledger-indexer/internal/block"
	"github.com/feral-file/ff-ledger-indexer/internal/classifier"
	"github.com/feral-file/ff-ledger-indexer/internal/domain"
	"github.com/feral-file/ff-ledger-indexer/internal/ledger"
	"github.com/feral-file/ff-ledger-indexer/internal/logger"
	"github.com/feral-file/ff-ledger-indexer/internal/messaging"
	"github.com/feral-file/ff-ledger-indexer/internal/providers/ethereum"
	"github.com/feral-file/ff-ledger-indexer/internal/resolver"
	"github.com/feral-file/ff-ledger-indexer/internal/store"
)

// Config holds the configuration for one chain's indexer
type Config struct {
	ChainID uint64
	// Standards limits the events applied to these standards. Empty means all.
	Standards []domain.Standard
	// WrappedNativeCurrencies is added to the wrapped set stored on the chain record
	WrappedNativeCurrencies []string

	BlockTimeout         time.Duration
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
	// RetryMaxElapsed bounds the retries of one block, zero retries forever
	RetryMaxElapsed time.Duration

	TokenCacheSize int
	MismatchPolicy resolver.MismatchPolicy
}

// Indexer defines the interface for a chain indexer
//
//go:generate mockgen -source=indexer.go -destination=../mocks/indexer.go -package=mocks -mock_names=Indexer=MockIndexer
type Indexer interface {
	// Run indexes blocks until ctx is done or a fatal error occurs
	Run(ctx context.Context) error
	// Tip returns the highest block number observed on the chain
	Tip() uint64
}

type indexer struct {
	cfg       Config
	client    ethereum.ChainClient
	store     store.Store
	publisher messaging.Publisher
	clock     adapter.Clock
	resolver  *resolver.Resolver
	tracker   *block.Tracker

	chain     *domain.Chain
	wrapped   classifier.WrappedSet
	standards map[domain.Standard]bool
}

// New creates an indexer for one chain
func New(
	cfg Config,
	client ethereum.ChainClient,
	st store.Store,
	pub messaging.Publisher,
	clock adapter.Clock,
) (Indexer, error) {
	if cfg.BlockTimeout <= 0 {
		cfg.BlockTimeout = 2 * time.Minute
	}
	if cfg.RetryInitialInterval <= 0 {
		cfg.RetryInitialInterval = time.Second
	}
	if cfg.RetryMaxInterval <= 0 {
		cfg.RetryMaxInterval = time.Minute
	}

	res, err := resolver.New(resolver.Config{
		ChainID:        cfg.ChainID,
		CacheSize:      cfg.TokenCacheSize,
		MismatchPolicy: cfg.MismatchPolicy,
	}, st, client)
	if err != nil {
		return nil, err
	}

	standards := make(map[domain.Standard]bool)
	for _, s := range cfg.Standards {
		standards[s] = true
	}
	if len(standards) == 0 {
		standards[domain.StandardERC20] = true
		standards[domain.StandardERC721] = true
		standards[domain.StandardERC1155] = true
	}

	return &indexer{
		cfg:       cfg,
		client:    client,
		store:     st,
		publisher: pub,
		clock:     clock,
		resolver:  res,
		tracker:   block.NewTracker(),
		standards: standards,
	}, nil
}

// Tip returns the highest block number observed on the chain
func (i *indexer) Tip() uint64 {
	return i.tracker.Tip()
}

// Run loads the chain record and processes blocks in order as the tip allows
func (i *indexer) Run(ctx context.Context) error {
	ctx = logger.WithFields(ctx, zap.String("chain", domain.CAIP2(i.cfg.ChainID)))

	if err := i.loadChain(ctx); err != nil {
		return err
	}
	i.wrapped = classifier.NewWrappedSet(append(append([]string(nil), i.chain.WrappedNativeCurrencies...), i.cfg.WrappedNativeCurrencies...))

	logger.InfoCtx(ctx, "Starting indexer",
		zap.Uint64("next_block", i.chain.NextBlock()),
		zap.Int("wrapped", len(i.wrapped)))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		err := i.client.WatchTip(runCtx, func(n uint64) { i.tracker.Publish(n) })
		if err != nil && runCtx.Err() == nil {
			errCh <- fmt.Errorf("tip watcher stopped: %w", err)
			cancel()
		}
	}()

	for {
		number := i.chain.NextBlock()
		if _, err := i.tracker.WaitFor(runCtx, number); err != nil {
			return i.stopErr(ctx, errCh)
		}

		err := i.indexBlock(runCtx, number)
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrCursorConflict):
			logger.WarnCtx(ctx, "Stored cursor moved, reloading chain", zap.Uint64("block", number))
			i.resolver.Forget()
			if err := i.loadChain(runCtx); err != nil {
				if runCtx.Err() != nil {
					return i.stopErr(ctx, errCh)
				}
				return err
			}
		case runCtx.Err() != nil:
			return i.stopErr(ctx, errCh)
		default:
			return fmt.Errorf("failed to index block %d: %w", number, err)
		}
	}
}

// stopErr returns the tip watcher failure when it caused the stop, nil on shutdown
func (i *indexer) stopErr(ctx context.Context, errCh <-chan error) error {
	select {
	case err := <-errCh:
		return err
	default:
	}
	logger.InfoCtx(ctx, "Indexer stopped", zap.Uint64("cursor", i.chain.Cursor))
	return nil
}

func (i *indexer) loadChain(ctx context.Context) error {
	chain, err := i.store.FindChain(ctx, i.cfg.ChainID)
	if err != nil {
		return fmt.Errorf("failed to load chain %d: %w", i.cfg.ChainID, err)
	}
	if chain == nil {
		return fmt.Errorf("%w: %s, seed it first", domain.ErrChainNotFound, domain.CAIP2(i.cfg.ChainID))
	}
	i.chain = chain
	return nil
}

// indexBlock processes one block, retrying the whole block on failure
func (i *indexer) indexBlock(ctx context.Context, number uint64) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = i.cfg.RetryInitialInterval
	b.MaxInterval = i.cfg.RetryMaxInterval
	b.MaxElapsedTime = i.cfg.RetryMaxElapsed

	var commit domain.BlockCommit
	err := backoff.RetryNotify(func() error {
		var err error
		commit, err = i.processBlock(ctx, number)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		if errors.Is(err, domain.ErrCursorConflict) || errors.Is(err, domain.ErrChainNotFound) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(b, ctx), func(err error, next time.Duration) {
		logger.WarnCtx(ctx, "Block failed, retrying",
			zap.Uint64("block", number),
			zap.Duration("retry_in", next),
			zap.Error(err))
	})
	if err != nil {
		return err
	}

	i.chain.Cursor = commit.BlockNumber
	i.chain.CursorHash = commit.BlockHash
	i.resolver.Remember(commit.Tokens)

	tokens := make([]string, 0, len(commit.Tokens))
	for _, t := range commit.Tokens {
		tokens = append(tokens, t.Address)
	}
	event := &domain.BlockCommitted{
		Chain:       domain.CAIP2(commit.ChainID),
		ChainID:     commit.ChainID,
		BlockNumber: commit.BlockNumber,
		BlockHash:   commit.BlockHash,
		Transfers:   len(commit.Transfers),
		Tokens:      tokens,
		CommittedAt: i.clock.Now(),
	}
	if err := i.publisher.PublishBlockCommitted(ctx, event); err != nil {
		logger.WarnCtx(ctx, "Failed to publish block committed", zap.Uint64("block", number), zap.Error(err))
	}

	logger.DebugCtx(ctx, "Indexed block",
		zap.Uint64("block", number),
		zap.Int("transfers", len(commit.Transfers)),
		zap.Int("tokens", len(commit.Tokens)))
	return nil
}

// processBlock builds a working set for the block and commits it with the cursor.
// Nothing is kept from a failed attempt.
func (i *indexer) processBlock(ctx context.Context, number uint64) (domain.BlockCommit, error) {
	ctx, cancel := context.WithTimeout(ctx, i.cfg.BlockTimeout)
	defer cancel()

	blk, err := i.client.BlockWithTransactions(ctx, number)
	if err != nil {
		return domain.BlockCommit{}, err
	}
	if i.chain.Started() && number == i.chain.Cursor+1 && blk.ParentHash().Hex() != i.chain.CursorHash {
		logger.WarnCtx(ctx, "Parent hash differs from cursor hash, the chain may have reorganized",
			zap.Uint64("block", number),
			zap.String("parent_hash", blk.ParentHash().Hex()),
			zap.String("cursor_hash", i.chain.CursorHash))
	}

	receipts, err := i.client.TransactionReceipts(ctx, blk)
	if err != nil {
		return domain.BlockCommit{}, err
	}

	ws := ledger.NewWorkingSet(i.cfg.ChainID, number, i.store)
	for _, receipt := range receipts {
		if receipt == nil {
			continue
		}
		for _, vLog := range receipt.Logs {
			if err := i.applyLog(ctx, ws, vLog); err != nil {
				return domain.BlockCommit{}, err
			}
		}
	}

	commit := ws.Commit(blk.Hash().Hex())
	if err := i.store.CommitBlock(ctx, commit); err != nil {
		return domain.BlockCommit{}, err
	}
	return commit, nil
}

func (i *indexer) applyLog(ctx context.Context, ws *ledger.WorkingSet, vLog *types.Log) error {
	if vLog == nil || vLog.Removed {
		return nil
	}

	event, err := classifier.Classify(vLog, i.wrapped)
	switch {
	case errors.Is(err, domain.ErrUnrecognizedLog):
		return nil
	case errors.Is(err, domain.ErrDecodeLog):
		logger.WarnCtx(ctx, "Skipping malformed log",
			zap.String("tx_hash", vLog.TxHash.Hex()),
			zap.Uint("log_index", vLog.Index),
			zap.Error(err))
		return nil
	case err != nil:
		return err
	}

	implied := event.ImpliedStandard()
	if !i.standards[implied] {
		return nil
	}

	token, err := i.resolver.Resolve(ctx, ws, event.Meta().Contract, implied)
	if resolver.IsMismatch(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", event.Meta().Contract.Hex(), err)
	}

	return ws.Apply(ctx, event, token)
}
