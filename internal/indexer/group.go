package indexer

import (
	"context"
	"sync/atomic"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"github.com/feral-file/ff-ledger-indexer/internal/domain"
	"github.com/feral-file/ff-ledger-indexer/internal/logger"
)

// RunAll runs every indexer on its own worker until ctx is done.
// A chain that stops with an error is reported and leaves the others running.
// It returns the number of chains that failed.
func RunAll(ctx context.Context, indexers map[uint64]Indexer) int {
	if len(indexers) == 0 {
		return 0
	}

	pool := pond.NewPool(len(indexers), pond.WithContext(ctx))
	var failed atomic.Int32

	for chainID, idx := range indexers {
		pool.Submit(func() {
			chainCtx := logger.WithFields(ctx, zap.String("chain", domain.CAIP2(chainID)))
			if err := idx.Run(chainCtx); err != nil {
				failed.Add(1)
				logger.ErrorCtx(chainCtx, err)
				return
			}
			logger.InfoCtx(chainCtx, "Chain indexer exited")
		})
	}

	pool.StopAndWait()
	return int(failed.Load())
}
