package adapter

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// EthClient is the subset of node RPC the indexer uses, defined as an interface to enable mocking
//
//go:generate mockgen -source=ethclient.go -destination=../mocks/ethclient.go -package=mocks -mock_names=EthClient=MockEthClient,EthClientDialer=MockEthClientDialer
type EthClient interface {
	// ChainID returns the chain id reported by the node
	ChainID(ctx context.Context) (*big.Int, error)

	// BlockNumber returns the most recent block number
	BlockNumber(ctx context.Context) (uint64, error)

	// BlockByNumber returns a block with its transactions
	BlockByNumber(ctx context.Context, number *big.Int) (*types.Block, error)

	// SubscribeNewHead subscribes to new chain heads. Only available over websocket or IPC.
	SubscribeNewHead(ctx context.Context, ch chan<- *types.Header) (ethereum.Subscription, error)

	// TransactionReceipt returns the receipt of a mined transaction
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)

	// BlockReceipts returns all receipts of a block in transaction order
	BlockReceipts(ctx context.Context, blockNrOrHash rpc.BlockNumberOrHash) ([]*types.Receipt, error)

	// CallContract executes a read-only contract call
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)

	// BatchCallContext sends several JSON-RPC requests in one round trip
	BatchCallContext(ctx context.Context, batch []rpc.BatchElem) error

	// Close closes the connection
	Close()
}

// EthClientDialer dials node endpoints
type EthClientDialer interface {
	Dial(ctx context.Context, rawurl string) (EthClient, error)
}

// RealEthClientDialer dials with go-ethereum's rpc and ethclient packages
type RealEthClientDialer struct{}

// NewEthClientDialer creates a new real Ethereum client dialer
func NewEthClientDialer() EthClientDialer {
	return &RealEthClientDialer{}
}

func (d *RealEthClientDialer) Dial(ctx context.Context, rawurl string) (EthClient, error) {
	rc, err := rpc.DialContext(ctx, rawurl)
	if err != nil {
		return nil, err
	}
	return &ethClient{Client: ethclient.NewClient(rc), rpc: rc}, nil
}

// ethClient adds raw batch calls to ethclient.Client
type ethClient struct {
	*ethclient.Client
	rpc *rpc.Client
}

func (c *ethClient) BatchCallContext(ctx context.Context, batch []rpc.BatchElem) error {
	return c.rpc.BatchCallContext(ctx, batch)
}
