package block

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/feral-file/ff-ledger-indexer/internal/adapter"
	"github.com/feral-file/ff-ledger-indexer/internal/domain"
	"github.com/feral-file/ff-ledger-indexer/internal/logger"
)

// HeadProvider serves the latest block number of each configured chain.
// Node round trips are limited by caching each chain head for a TTL.
//
//go:generate mockgen -source=head.go -destination=../mocks/head_provider.go -package=mocks -mock_names=HeadProvider=MockHeadProvider,HeadFetcher=MockHeadFetcher
type HeadProvider interface {
	// Latest returns the latest block number of a chain, potentially from cache
	Latest(ctx context.Context, chainID uint64) (uint64, error)
}

// HeadFetcher reads the current block number from a node
type HeadFetcher interface {
	LatestBlockNumber(ctx context.Context) (uint64, error)
}

// HeadConfig holds the cache windows
type HeadConfig struct {
	// TTL is how long a fetched head is served without asking the node
	TTL time.Duration

	// StaleWindow is how long an old head may be served when the node is unreachable
	StaleWindow time.Duration
}

type cachedHead struct {
	number    uint64
	fetchedAt time.Time
}

type headProvider struct {
	fetchers map[uint64]HeadFetcher
	config   HeadConfig
	clock    adapter.Clock

	mu    sync.RWMutex
	heads map[uint64]cachedHead
}

// NewHeadProvider creates a HeadProvider over one fetcher per chain id
func NewHeadProvider(fetchers map[uint64]HeadFetcher, config HeadConfig, clock adapter.Clock) HeadProvider {
	return &headProvider{
		fetchers: fetchers,
		config:   config,
		clock:    clock,
		heads:    make(map[uint64]cachedHead),
	}
}

func (p *headProvider) Latest(ctx context.Context, chainID uint64) (uint64, error) {
	fetcher, ok := p.fetchers[chainID]
	if !ok {
		return 0, fmt.Errorf("%w: no node configured for %s", domain.ErrChainClientUnavailable, domain.CAIP2(chainID))
	}

	p.mu.RLock()
	cached, hit := p.heads[chainID]
	p.mu.RUnlock()

	now := p.clock.Now()
	if hit && now.Sub(cached.fetchedAt) < p.config.TTL {
		return cached.number, nil
	}

	number, err := fetcher.LatestBlockNumber(ctx)
	if err != nil {
		if hit && now.Sub(cached.fetchedAt) < p.config.StaleWindow {
			logger.WarnCtx(ctx, "Serving stale chain head",
				zap.Uint64("chain_id", chainID),
				zap.Uint64("block_number", cached.number),
				zap.Error(err))
			return cached.number, nil
		}
		return 0, fmt.Errorf("failed to fetch head of %s: %w", domain.CAIP2(chainID), err)
	}

	p.mu.Lock()
	// a concurrent fetch may have stored a newer head
	if prev, ok := p.heads[chainID]; !ok || number >= prev.number {
		p.heads[chainID] = cachedHead{number: number, fetchedAt: now}
	} else {
		number = prev.number
	}
	p.mu.Unlock()

	return number, nil
}
