package store

import (
	"context"

	"github.com/feral-file/ff-ledger-indexer/internal/domain"
)

// Store defines the interface for ledger persistence.
// Find methods return nil without error when the record does not exist.
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore
type Store interface {
	// FindChain retrieves a chain with its cursor
	FindChain(ctx context.Context, chainID uint64) (*domain.Chain, error)
	// SaveChain inserts a chain, or updates the currency settings of an existing one leaving its cursor untouched
	SaveChain(ctx context.Context, chain *domain.Chain) error
	// ListChains retrieves every seeded chain ordered by chain id
	ListChains(ctx context.Context) ([]*domain.Chain, error)

	// FindAddress retrieves an address with its present balances
	FindAddress(ctx context.Context, chainID uint64, hash string) (*domain.Address, error)
	// BatchUpsertAddresses creates the addresses that do not exist yet
	BatchUpsertAddresses(ctx context.Context, chainID uint64, hashes []string) error

	// FindToken retrieves a token by contract address
	FindToken(ctx context.Context, chainID uint64, address string) (*domain.Token, error)
	// BatchUpsertTokens creates tokens or updates their counters and metadata. The standard is never changed.
	BatchUpsertTokens(ctx context.Context, tokens []*domain.Token) error
	// ListTokens retrieves tokens ordered by address
	ListTokens(ctx context.Context, chainID uint64, limit, offset int) ([]*domain.Token, error)

	// FindBalance retrieves one present balance
	FindBalance(ctx context.Context, chainID uint64, holder, token, tokenID string) (*domain.Balance, error)
	// ListBalancesByHolder retrieves the present balances of a holder
	ListBalancesByHolder(ctx context.Context, chainID uint64, holder string, limit, offset int) ([]domain.Balance, error)

	// AppendTransfers inserts transfer records, ignoring records already stored
	AppendTransfers(ctx context.Context, transfers []domain.Transfer) error
	// ListTransfers retrieves transfers matching the filter, newest first
	ListTransfers(ctx context.Context, filter TransferFilter) ([]domain.Transfer, error)

	// CommitBlock persists everything a block produced and advances the chain cursor in one transaction.
	// It returns domain.ErrCursorConflict when the block does not follow the stored cursor.
	CommitBlock(ctx context.Context, commit domain.BlockCommit) error
}

// TransferFilter selects transfers. Empty fields do not filter.
type TransferFilter struct {
	ChainID   uint64
	Token     string
	Address   string
	FromBlock *uint64
	ToBlock   *uint64
	Limit     int
	Offset    int
}
