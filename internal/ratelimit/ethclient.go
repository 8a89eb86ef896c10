package ratelimit

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
	"golang.org/x/time/rate"

	"github.com/feral-file/ff-ledger-indexer/internal/adapter"
)

// Config holds the request budget of one node endpoint
type Config struct {
	// RequestsPerSecond is the sustained request rate; zero or less disables limiting
	RequestsPerSecond float64
	// Burst is the number of requests allowed at once, at least 1
	Burst int
}

// NewDialer wraps a dialer so every client it returns shares one request budget.
// Clients dialed again after a dropped subscription keep drawing from the same budget.
func NewDialer(inner adapter.EthClientDialer, cfg Config) adapter.EthClientDialer {
	if cfg.RequestsPerSecond <= 0 {
		return inner
	}
	return &dialer{inner: inner, limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), max(cfg.Burst, 1))}
}

type dialer struct {
	inner   adapter.EthClientDialer
	limiter *rate.Limiter
}

func (d *dialer) Dial(ctx context.Context, rawurl string) (adapter.EthClient, error) {
	client, err := d.inner.Dial(ctx, rawurl)
	if err != nil {
		return nil, err
	}
	return &ethClient{EthClient: client, limiter: d.limiter}, nil
}

// ethClient waits for the shared limiter before every request
type ethClient struct {
	adapter.EthClient
	limiter *rate.Limiter
}

// wait takes n tokens, capped at the burst so large batches can still proceed
func (c *ethClient) wait(ctx context.Context, n int) error {
	return c.limiter.WaitN(ctx, min(max(n, 1), c.limiter.Burst()))
}

func (c *ethClient) ChainID(ctx context.Context) (*big.Int, error) {
	if err := c.wait(ctx, 1); err != nil {
		return nil, err
	}
	return c.EthClient.ChainID(ctx)
}

func (c *ethClient) BlockNumber(ctx context.Context) (uint64, error) {
	if err := c.wait(ctx, 1); err != nil {
		return 0, err
	}
	return c.EthClient.BlockNumber(ctx)
}

func (c *ethClient) BlockByNumber(ctx context.Context, number *big.Int) (*types.Block, error) {
	if err := c.wait(ctx, 1); err != nil {
		return nil, err
	}
	return c.EthClient.BlockByNumber(ctx, number)
}

func (c *ethClient) SubscribeNewHead(ctx context.Context, ch chan<- *types.Header) (ethereum.Subscription, error) {
	if err := c.wait(ctx, 1); err != nil {
		return nil, err
	}
	return c.EthClient.SubscribeNewHead(ctx, ch)
}

func (c *ethClient) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	if err := c.wait(ctx, 1); err != nil {
		return nil, err
	}
	return c.EthClient.TransactionReceipt(ctx, txHash)
}

func (c *ethClient) BlockReceipts(ctx context.Context, blockNrOrHash rpc.BlockNumberOrHash) ([]*types.Receipt, error) {
	if err := c.wait(ctx, 1); err != nil {
		return nil, err
	}
	return c.EthClient.BlockReceipts(ctx, blockNrOrHash)
}

func (c *ethClient) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	if err := c.wait(ctx, 1); err != nil {
		return nil, err
	}
	return c.EthClient.CallContract(ctx, msg, blockNumber)
}

// BatchCallContext counts each element of the batch as one request
func (c *ethClient) BatchCallContext(ctx context.Context, batch []rpc.BatchElem) error {
	if err := c.wait(ctx, len(batch)); err != nil {
		return err
	}
	return c.EthClient.BatchCallContext(ctx, batch)
}
