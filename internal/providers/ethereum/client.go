package ethereum

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"

	"github.com/feral-file/ff-ledger-indexer/internal/adapter"
	"github.com/feral-file/ff-ledger-indexer/internal/domain"
	"github.com/feral-file/ff-ledger-indexer/internal/logger"
)

// Multicall3 aggregate3(Call3[] calls) returns (Result[] returnData)
const multicall3ABI = `[{"inputs":[{"components":[{"internalType":"address","name":"target","type":"address"},{"internalType":"bool","name":"allowFailure","type":"bool"},{"internalType":"bytes","name":"callData","type":"bytes"}],"internalType":"struct Multicall3.Call3[]","name":"calls","type":"tuple[]"}],"name":"aggregate3","outputs":[{"components":[{"internalType":"bool","name":"success","type":"bool"},{"internalType":"bytes","name":"returnData","type":"bytes"}],"internalType":"struct Multicall3.Result[]","name":"returnData","type":"tuple[]"}],"stateMutability":"payable","type":"function"}]`

var parsedMulticall3ABI = mustParseABI(multicall3ABI)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(err)
	}
	return parsed
}

// Call is a read-only contract call
type Call struct {
	Target common.Address
	Data   []byte
}

// CallResult is the outcome of one call inside a batch. A reverted call has Success false.
type CallResult struct {
	Success    bool
	ReturnData []byte
}

type multicall3Call struct {
	Target       common.Address
	AllowFailure bool
	CallData     []byte
}

type multicall3Result struct {
	Success    bool
	ReturnData []byte
}

// Config holds the chain client configuration
type Config struct {
	ChainID      uint64
	RPCURL       string
	WebSocketURL string
	// MulticallAddress is the Multicall3 deployment. Empty means calls are batched as plain eth_call.
	MulticallAddress string
	PollInterval     time.Duration
	ReceiptWorkers   int
	// UseBlockReceipts fetches all receipts of a block with eth_getBlockReceipts
	UseBlockReceipts bool
}

// ChainClient is the node access the indexer needs for one chain
//
//go:generate mockgen -source=client.go -destination=../../mocks/chain_client.go -package=mocks -mock_names=ChainClient=MockChainClient
type ChainClient interface {
	// LatestBlockNumber returns the node's current block number
	LatestBlockNumber(ctx context.Context) (uint64, error)

	// WatchTip reports the chain tip to onTip until ctx is done.
	// It subscribes to new heads when a websocket endpoint is configured and polls otherwise.
	WatchTip(ctx context.Context, onTip func(uint64)) error

	// BlockWithTransactions returns a block and its transactions
	BlockWithTransactions(ctx context.Context, number uint64) (*types.Block, error)

	// TransactionReceipt returns the receipt of one transaction
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)

	// TransactionReceipts returns the receipts of every transaction of a block in transaction order
	TransactionReceipts(ctx context.Context, block *types.Block) ([]*types.Receipt, error)

	// ReadContract executes a single read-only call at the latest block
	ReadContract(ctx context.Context, call Call) ([]byte, error)

	// Multicall executes several read-only calls in one round trip.
	// Reverted calls are reported per result; a transport failure fails the whole batch.
	Multicall(ctx context.Context, calls []Call) ([]CallResult, error)

	// Close releases the connection and worker pool
	Close()
}

type chainClient struct {
	cfg       Config
	client    adapter.EthClient
	dialer    adapter.EthClientDialer
	clock     adapter.Clock
	pool      pond.ResultPool[*types.Receipt]
	multicall *common.Address
	// multicallDisabled is set when the configured Multicall3 has no code on this chain
	multicallDisabled atomic.Bool
	// blockReceiptsDisabled is set when the node rejects eth_getBlockReceipts
	blockReceiptsDisabled atomic.Bool
}

// Dial connects to the chain's RPC endpoint and checks that it serves the configured chain.
// Errors wrap domain.ErrChainClientUnavailable and are not worth retrying.
func Dial(ctx context.Context, cfg Config, dialer adapter.EthClientDialer, clock adapter.Clock) (ChainClient, error) {
	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("%w: chain %d has no rpc url", domain.ErrChainClientUnavailable, cfg.ChainID)
	}

	client, err := dialer.Dial(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to dial chain %d: %v", domain.ErrChainClientUnavailable, cfg.ChainID, err)
	}

	remoteID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: failed to get chain id: %v", domain.ErrChainClientUnavailable, err)
	}
	if remoteID.Uint64() != cfg.ChainID {
		client.Close()
		return nil, fmt.Errorf("%w: endpoint serves chain %s, expected %d", domain.ErrChainClientUnavailable, remoteID, cfg.ChainID)
	}

	return NewClient(cfg, client, dialer, clock)
}

// NewClient wraps an already connected node client
func NewClient(cfg Config, client adapter.EthClient, dialer adapter.EthClientDialer, clock adapter.Clock) (ChainClient, error) {
	if cfg.ReceiptWorkers <= 0 {
		cfg.ReceiptWorkers = 8
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 3 * time.Second
	}

	c := &chainClient{
		cfg:    cfg,
		client: client,
		dialer: dialer,
		clock:  clock,
		pool:   pond.NewResultPool[*types.Receipt](cfg.ReceiptWorkers),
	}

	if cfg.MulticallAddress != "" {
		if !common.IsHexAddress(cfg.MulticallAddress) {
			return nil, fmt.Errorf("%w: invalid multicall address %q", domain.ErrChainClientUnavailable, cfg.MulticallAddress)
		}
		addr := common.HexToAddress(cfg.MulticallAddress)
		c.multicall = &addr
	}

	return c, nil
}

// LatestBlockNumber returns the node's current block number
func (c *chainClient) LatestBlockNumber(ctx context.Context) (uint64, error) {
	n, err := c.client.BlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get latest block number: %w", err)
	}
	return n, nil
}

// WatchTip reports the tip until ctx is done
func (c *chainClient) WatchTip(ctx context.Context, onTip func(uint64)) error {
	if c.cfg.WebSocketURL == "" {
		return c.pollTip(ctx, onTip)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.MaxInterval = time.Minute
	b.MaxElapsedTime = 0

	err := backoff.RetryNotify(func() error {
		err := c.watchHeads(ctx, onTip)
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		return err
	}, backoff.WithContext(b, ctx), func(err error, next time.Duration) {
		logger.WarnCtx(ctx, "Head subscription failed, polling until resubscribe",
			zap.Error(err),
			zap.Duration("retry_in", next))
		// keep the tip moving while the subscription is down
		if n, perr := c.LatestBlockNumber(ctx); perr == nil {
			onTip(n)
		}
	})
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// pollTip polls the block number on a fixed interval
func (c *chainClient) pollTip(ctx context.Context, onTip func(uint64)) error {
	for {
		n, err := c.LatestBlockNumber(ctx)
		if err != nil {
			logger.WarnCtx(ctx, "Failed to poll chain tip", zap.Error(err))
		} else {
			onTip(n)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-c.clock.After(c.cfg.PollInterval):
		}
	}
}

// watchHeads subscribes to new heads over websocket until the subscription fails or ctx is done
func (c *chainClient) watchHeads(ctx context.Context, onTip func(uint64)) error {
	ws, err := c.dialer.Dial(ctx, c.cfg.WebSocketURL)
	if err != nil {
		return fmt.Errorf("failed to dial websocket: %w", err)
	}
	defer ws.Close()

	heads := make(chan *types.Header, 16)
	sub, err := ws.SubscribeNewHead(ctx, heads)
	if err != nil {
		return fmt.Errorf("failed to subscribe to new heads: %w", err)
	}
	defer sub.Unsubscribe()

	// the subscription only reports new heads, seed with the current one
	if n, err := c.LatestBlockNumber(ctx); err == nil {
		onTip(n)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-sub.Err():
			if err == nil {
				err = errors.New("subscription closed")
			}
			return err
		case h := <-heads:
			if h != nil && h.Number != nil {
				onTip(h.Number.Uint64())
			}
		}
	}
}

// BlockWithTransactions returns a block and its transactions
func (c *chainClient) BlockWithTransactions(ctx context.Context, number uint64) (*types.Block, error) {
	block, err := c.client.BlockByNumber(ctx, new(big.Int).SetUint64(number))
	if err != nil {
		return nil, fmt.Errorf("failed to get block %d: %w", number, err)
	}
	return block, nil
}

// TransactionReceipt returns the receipt of one transaction
func (c *chainClient) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	receipt, err := c.client.TransactionReceipt(ctx, txHash)
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt %s: %w", txHash.Hex(), err)
	}
	return receipt, nil
}

// TransactionReceipts returns the receipts of a block in transaction order
func (c *chainClient) TransactionReceipts(ctx context.Context, block *types.Block) ([]*types.Receipt, error) {
	txs := block.Transactions()
	if len(txs) == 0 {
		return nil, nil
	}

	if c.cfg.UseBlockReceipts && !c.blockReceiptsDisabled.Load() {
		receipts, err := c.client.BlockReceipts(ctx, rpc.BlockNumberOrHashWithHash(block.Hash(), false))
		switch {
		case err == nil && len(receipts) == len(txs):
			return receipts, nil
		case err == nil:
			logger.WarnCtx(ctx, "Block receipts count mismatch, fetching per transaction",
				zap.Uint64("block", block.NumberU64()),
				zap.Int("receipts", len(receipts)),
				zap.Int("transactions", len(txs)))
		case isMethodNotFound(err):
			logger.WarnCtx(ctx, "Node does not support eth_getBlockReceipts, fetching per transaction", zap.Error(err))
			c.blockReceiptsDisabled.Store(true)
		default:
			return nil, fmt.Errorf("failed to get block receipts %d: %w", block.NumberU64(), err)
		}
	}

	// fetched concurrently, returned in submission order
	group := c.pool.NewGroupContext(ctx)
	for _, tx := range txs {
		hash := tx.Hash()
		group.SubmitErr(func() (*types.Receipt, error) {
			return c.TransactionReceipt(ctx, hash)
		})
	}

	receipts, err := group.Wait()
	if err != nil {
		return nil, err
	}
	return receipts, nil
}

// ReadContract executes a single read-only call
func (c *chainClient) ReadContract(ctx context.Context, call Call) ([]byte, error) {
	to := call.Target
	out, err := c.client.CallContract(ctx, ethereum.CallMsg{To: &to, Data: call.Data}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to call contract %s: %w", to.Hex(), err)
	}
	return out, nil
}

// Multicall executes calls through Multicall3 aggregate3 with failures allowed,
// or as a JSON-RPC batch of eth_call when no Multicall3 is available
func (c *chainClient) Multicall(ctx context.Context, calls []Call) ([]CallResult, error) {
	if len(calls) == 0 {
		return nil, nil
	}
	if c.multicall == nil || c.multicallDisabled.Load() {
		return c.batchCall(ctx, calls)
	}

	packed := make([]multicall3Call, len(calls))
	for i, call := range calls {
		packed[i] = multicall3Call{Target: call.Target, AllowFailure: true, CallData: call.Data}
	}
	data, err := parsedMulticall3ABI.Pack("aggregate3", packed)
	if err != nil {
		return nil, fmt.Errorf("failed to pack aggregate3: %w", err)
	}

	out, err := c.client.CallContract(ctx, ethereum.CallMsg{To: c.multicall, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to call multicall: %w", err)
	}
	if len(out) == 0 {
		logger.WarnCtx(ctx, "Multicall3 returned no data, falling back to batched eth_call",
			zap.Uint64("chain_id", c.cfg.ChainID),
			zap.String("multicall", c.multicall.Hex()))
		c.multicallDisabled.Store(true)
		return c.batchCall(ctx, calls)
	}

	values, err := parsedMulticall3ABI.Unpack("aggregate3", out)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack aggregate3: %w", err)
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("unexpected aggregate3 output length %d", len(values))
	}
	decoded := *abi.ConvertType(values[0], new([]multicall3Result)).(*[]multicall3Result)
	if len(decoded) != len(calls) {
		return nil, fmt.Errorf("aggregate3 returned %d results for %d calls", len(decoded), len(calls))
	}

	results := make([]CallResult, len(decoded))
	for i, r := range decoded {
		results[i] = CallResult{Success: r.Success, ReturnData: r.ReturnData}
	}
	return results, nil
}

// batchCall sends calls as one JSON-RPC batch. Reverted calls are reported as unsuccessful,
// any other per-call error fails the batch.
func (c *chainClient) batchCall(ctx context.Context, calls []Call) ([]CallResult, error) {
	batch := make([]rpc.BatchElem, len(calls))
	outputs := make([]hexutil.Bytes, len(calls))
	for i, call := range calls {
		batch[i] = rpc.BatchElem{
			Method: "eth_call",
			Args: []any{
				map[string]any{
					"to":   call.Target,
					"data": hexutil.Bytes(call.Data),
				},
				"latest",
			},
			Result: &outputs[i],
		}
	}

	if err := c.client.BatchCallContext(ctx, batch); err != nil {
		return nil, fmt.Errorf("failed to batch eth_call: %w", err)
	}

	results := make([]CallResult, len(calls))
	for i, elem := range batch {
		if elem.Error != nil {
			if !isRevert(elem.Error) {
				return nil, fmt.Errorf("failed to call %s: %w", calls[i].Target.Hex(), elem.Error)
			}
			logger.DebugCtx(ctx, "Batched call reverted",
				zap.String("target", calls[i].Target.Hex()),
				zap.Error(elem.Error))
			continue
		}
		results[i] = CallResult{Success: true, ReturnData: outputs[i]}
	}
	return results, nil
}

// Close releases the connection and worker pool
func (c *chainClient) Close() {
	c.pool.StopAndWait()
	c.client.Close()
}

func isMethodNotFound(err error) bool {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) && rpcErr.ErrorCode() == -32601 {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "method not found") || strings.Contains(msg, "does not exist")
}

// isRevert reports whether a call error is an execution failure of the callee rather than of the node
func isRevert(err error) bool {
	var dataErr rpc.DataError
	if errors.As(err, &dataErr) && dataErr.ErrorData() != nil {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "revert") ||
		strings.Contains(msg, "invalid opcode") ||
		strings.Contains(msg, "out of gas")
}
