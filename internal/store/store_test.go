package store

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-ledger-indexer/internal/domain"
)

const testChainID uint64 = 813

const (
	holderA = "0xaaa0000000000000000000000000000000000aaa"
	holderB = "0xbbb0000000000000000000000000000000000bbb"
	tokenX  = "0x1000000000000000000000000000000000000001"
	tokenY  = "0x2000000000000000000000000000000000000002"
	wrapped = "0x4200000000000000000000000000000000000006"
)

// =============================================================================
// Test Data Builders
// =============================================================================

func seedTestChain(t *testing.T, store Store, startBlock uint64) {
	err := store.SaveChain(context.Background(), &domain.Chain{
		ChainID:                 testChainID,
		Cursor:                  startBlock,
		NativeCurrency:          "ETH",
		WrappedNativeCurrencies: []string{wrapped},
	})
	require.NoError(t, err)
}

func buildTestToken(address string, standard domain.Standard, holders, supply int64) *domain.Token {
	token := domain.NewToken(testChainID, address, standard, "Token", "TKN")
	token.Holders.SetInt64(holders)
	token.TotalSupply.SetInt64(supply)
	return token
}

func buildTestBalance(holder, token, tokenID string, amount int64) domain.Balance {
	return domain.Balance{ChainID: testChainID, Holder: holder, Token: token, TokenID: tokenID, Amount: big.NewInt(amount)}
}

func buildTestTransfer(block uint64, logIndex uint, batchIndex int, from, to string, amount int64) domain.Transfer {
	return domain.Transfer{
		ChainID:     testChainID,
		BlockNumber: block,
		Token:       tokenX,
		From:        from,
		To:          to,
		TxHash:      "0xfeed",
		LogIndex:    logIndex,
		BatchIndex:  batchIndex,
		Amount:      big.NewInt(amount),
	}
}

func buildMintCommit(block uint64, hash string) domain.BlockCommit {
	return domain.BlockCommit{
		ChainID:     testChainID,
		BlockNumber: block,
		BlockHash:   hash,
		Addresses:   []string{domain.ETHEREUM_ZERO_ADDRESS, tokenX, holderA},
		Tokens:      []*domain.Token{buildTestToken(tokenX, domain.StandardERC20, 1, 100)},
		Balances:    []domain.Balance{buildTestBalance(holderA, tokenX, "", 100)},
		Transfers:   []domain.Transfer{buildTestTransfer(block, 0, 0, domain.ETHEREUM_ZERO_ADDRESS, holderA, 100)},
	}
}

// =============================================================================
// Tests
// =============================================================================

func testChains(t *testing.T, store Store) {
	ctx := context.Background()

	chain, err := store.FindChain(ctx, testChainID)
	require.NoError(t, err)
	assert.Nil(t, chain)

	seedTestChain(t, store, 42)

	chain, err = store.FindChain(ctx, testChainID)
	require.NoError(t, err)
	require.NotNil(t, chain)
	assert.Equal(t, uint64(42), chain.Cursor)
	assert.False(t, chain.Started())
	assert.Equal(t, uint64(42), chain.NextBlock())
	assert.Equal(t, "ETH", chain.NativeCurrency)
	assert.Equal(t, []string{wrapped}, chain.WrappedNativeCurrencies)

	t.Run("re-seeding keeps the cursor and refreshes currencies", func(t *testing.T) {
		require.NoError(t, store.CommitBlock(ctx, domain.BlockCommit{ChainID: testChainID, BlockNumber: 42, BlockHash: "0x42"}))

		err := store.SaveChain(ctx, &domain.Chain{
			ChainID:                 testChainID,
			Cursor:                  0,
			NativeCurrency:          "XTZ",
			WrappedNativeCurrencies: []string{"0xABCDEFABCDEFABCDEFABCDEFABCDEFABCDEFABCD"},
		})
		require.NoError(t, err)

		chain, err := store.FindChain(ctx, testChainID)
		require.NoError(t, err)
		assert.Equal(t, uint64(42), chain.Cursor)
		assert.Equal(t, "0x42", chain.CursorHash)
		assert.Equal(t, "XTZ", chain.NativeCurrency)
		assert.Equal(t, []string{"0xabcdefabcdefabcdefabcdefabcdefabcdefabcd"}, chain.WrappedNativeCurrencies)
	})

	t.Run("list", func(t *testing.T) {
		require.NoError(t, store.SaveChain(ctx, &domain.Chain{ChainID: 1, NativeCurrency: "ETH"}))

		chains, err := store.ListChains(ctx)
		require.NoError(t, err)
		require.Len(t, chains, 2)
		assert.Equal(t, uint64(1), chains[0].ChainID)
		assert.Equal(t, testChainID, chains[1].ChainID)
	})
}

func testCommitBlock(t *testing.T, store Store) {
	ctx := context.Background()
	seedTestChain(t, store, 10)

	require.NoError(t, store.CommitBlock(ctx, buildMintCommit(10, "0x10")))

	chain, err := store.FindChain(ctx, testChainID)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), chain.Cursor)
	assert.Equal(t, "0x10", chain.CursorHash)
	assert.Equal(t, uint64(11), chain.NextBlock())

	token, err := store.FindToken(ctx, testChainID, tokenX)
	require.NoError(t, err)
	require.NotNil(t, token)
	assert.Equal(t, domain.StandardERC20, token.Standard)
	assert.Equal(t, "1", token.Holders.String())
	assert.Equal(t, "100", token.TotalSupply.String())

	balance, err := store.FindBalance(ctx, testChainID, holderA, tokenX, "")
	require.NoError(t, err)
	require.NotNil(t, balance)
	assert.Equal(t, "100", balance.Amount.String())

	t.Run("replaying a committed block conflicts and writes nothing", func(t *testing.T) {
		replay := buildMintCommit(10, "0x10")
		replay.Balances[0].Amount = big.NewInt(200)

		err := store.CommitBlock(ctx, replay)
		require.ErrorIs(t, err, domain.ErrCursorConflict)

		balance, err := store.FindBalance(ctx, testChainID, holderA, tokenX, "")
		require.NoError(t, err)
		assert.Equal(t, "100", balance.Amount.String())

		transfers, err := store.ListTransfers(ctx, TransferFilter{ChainID: testChainID})
		require.NoError(t, err)
		assert.Len(t, transfers, 1)
	})

	t.Run("skipping a block conflicts", func(t *testing.T) {
		err := store.CommitBlock(ctx, domain.BlockCommit{ChainID: testChainID, BlockNumber: 12, BlockHash: "0x12"})
		assert.ErrorIs(t, err, domain.ErrCursorConflict)
	})

	t.Run("moving the whole balance removes the entry", func(t *testing.T) {
		commit := domain.BlockCommit{
			ChainID:         testChainID,
			BlockNumber:     11,
			BlockHash:       "0x11",
			Addresses:       []string{holderB},
			Tokens:          []*domain.Token{buildTestToken(tokenX, domain.StandardERC20, 1, 100)},
			Balances:        []domain.Balance{buildTestBalance(holderB, tokenX, "", 100)},
			RemovedBalances: []domain.Balance{buildTestBalance(holderA, tokenX, "", 0)},
			Transfers:       []domain.Transfer{buildTestTransfer(11, 3, 0, holderA, holderB, 100)},
		}
		require.NoError(t, store.CommitBlock(ctx, commit))

		removed, err := store.FindBalance(ctx, testChainID, holderA, tokenX, "")
		require.NoError(t, err)
		assert.Nil(t, removed)

		moved, err := store.FindBalance(ctx, testChainID, holderB, tokenX, "")
		require.NoError(t, err)
		require.NotNil(t, moved)
		assert.Equal(t, "100", moved.Amount.String())
	})

	t.Run("unknown chain", func(t *testing.T) {
		err := store.CommitBlock(ctx, domain.BlockCommit{ChainID: 999, BlockNumber: 1, BlockHash: "0x1"})
		assert.ErrorIs(t, err, domain.ErrChainNotFound)
	})
}

func testCommitGenesisBlock(t *testing.T, store Store) {
	ctx := context.Background()
	seedTestChain(t, store, 0)

	require.NoError(t, store.CommitBlock(ctx, domain.BlockCommit{ChainID: testChainID, BlockNumber: 0, BlockHash: "0x00"}))

	chain, err := store.FindChain(ctx, testChainID)
	require.NoError(t, err)
	assert.True(t, chain.Started())
	assert.Equal(t, uint64(1), chain.NextBlock())

	err = store.CommitBlock(ctx, domain.BlockCommit{ChainID: testChainID, BlockNumber: 0, BlockHash: "0x00"})
	assert.ErrorIs(t, err, domain.ErrCursorConflict)
}

func testCommitOversizedAmounts(t *testing.T, store Store) {
	ctx := context.Background()
	seedTestChain(t, store, 10)

	// nine mints of 2^256-1 need 79 digits
	huge := new(big.Int).Mul(math.MaxBig256, big.NewInt(9))
	require.Len(t, huge.String(), 79)

	commit := buildMintCommit(10, "0x10")
	commit.Tokens[0].TotalSupply = new(big.Int).Set(huge)
	commit.Balances[0].Amount = new(big.Int).Set(huge)
	commit.Transfers[0].Amount = new(big.Int).Set(math.MaxBig256)
	require.NoError(t, store.CommitBlock(ctx, commit))

	token, err := store.FindToken(ctx, testChainID, tokenX)
	require.NoError(t, err)
	require.NotNil(t, token)
	assert.Equal(t, huge.String(), token.TotalSupply.String())

	balance, err := store.FindBalance(ctx, testChainID, holderA, tokenX, "")
	require.NoError(t, err)
	require.NotNil(t, balance)
	assert.Equal(t, huge.String(), balance.Amount.String())

	chain, err := store.FindChain(ctx, testChainID)
	require.NoError(t, err)
	assert.Equal(t, uint64(11), chain.NextBlock())
}

func testTokens(t *testing.T, store Store) {
	ctx := context.Background()
	seedTestChain(t, store, 0)

	require.NoError(t, store.BatchUpsertTokens(ctx, []*domain.Token{
		buildTestToken(tokenY, domain.StandardERC1155, 0, 0),
		buildTestToken(tokenX, domain.StandardERC721, 2, 2),
	}))

	t.Run("standard is immutable", func(t *testing.T) {
		changed := buildTestToken(tokenX, domain.StandardERC20, 3, 4)
		require.NoError(t, store.BatchUpsertTokens(ctx, []*domain.Token{changed}))

		token, err := store.FindToken(ctx, testChainID, tokenX)
		require.NoError(t, err)
		assert.Equal(t, domain.StandardERC721, token.Standard)
		assert.Equal(t, "3", token.Holders.String())
		assert.Equal(t, "4", token.TotalSupply.String())
	})

	t.Run("large counters", func(t *testing.T) {
		big78, ok := new(big.Int).SetString("115792089237316195423570985008687907853269984665640564039457584007913129639935", 10)
		require.True(t, ok)

		token := buildTestToken(tokenY, domain.StandardERC1155, 1, 0)
		token.TotalSupply = big78
		require.NoError(t, store.BatchUpsertTokens(ctx, []*domain.Token{token}))

		stored, err := store.FindToken(ctx, testChainID, tokenY)
		require.NoError(t, err)
		assert.Equal(t, 0, big78.Cmp(stored.TotalSupply))
	})

	t.Run("list", func(t *testing.T) {
		tokens, err := store.ListTokens(ctx, testChainID, 10, 0)
		require.NoError(t, err)
		require.Len(t, tokens, 2)
		assert.Equal(t, tokenX, tokens[0].Address)
		assert.Equal(t, tokenY, tokens[1].Address)

		tokens, err = store.ListTokens(ctx, testChainID, 1, 1)
		require.NoError(t, err)
		require.Len(t, tokens, 1)
		assert.Equal(t, tokenY, tokens[0].Address)
	})

	t.Run("missing", func(t *testing.T) {
		token, err := store.FindToken(ctx, testChainID, holderA)
		require.NoError(t, err)
		assert.Nil(t, token)
	})
}

func testAddresses(t *testing.T, store Store) {
	ctx := context.Background()
	seedTestChain(t, store, 5)

	address, err := store.FindAddress(ctx, testChainID, holderA)
	require.NoError(t, err)
	assert.Nil(t, address)

	require.NoError(t, store.BatchUpsertAddresses(ctx, testChainID, []string{holderA, holderB}))
	require.NoError(t, store.BatchUpsertAddresses(ctx, testChainID, []string{holderA}))

	address, err = store.FindAddress(ctx, testChainID, holderB)
	require.NoError(t, err)
	require.NotNil(t, address)
	assert.Empty(t, address.Balances)

	require.NoError(t, store.CommitBlock(ctx, domain.BlockCommit{
		ChainID:     testChainID,
		BlockNumber: 5,
		BlockHash:   "0x05",
		Tokens:      []*domain.Token{buildTestToken(tokenY, domain.StandardERC1155, 1, 0)},
		Balances: []domain.Balance{
			buildTestBalance(holderA, tokenY, "2", 3),
			buildTestBalance(holderA, tokenY, "1", 5),
		},
	}))

	address, err = store.FindAddress(ctx, testChainID, holderA)
	require.NoError(t, err)
	require.Len(t, address.Balances, 2)
	assert.Equal(t, "1", address.Balances[0].TokenID)
	assert.Equal(t, "5", address.Balances[0].Amount.String())
	assert.Equal(t, "2", address.Balances[1].TokenID)

	balances, err := store.ListBalancesByHolder(ctx, testChainID, holderA, 1, 1)
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Equal(t, "2", balances[0].TokenID)
}

func testTransfers(t *testing.T, store Store) {
	ctx := context.Background()
	seedTestChain(t, store, 0)

	nft := domain.Transfer{
		ChainID:     testChainID,
		BlockNumber: 8,
		Token:       tokenY,
		From:        domain.ETHEREUM_ZERO_ADDRESS,
		To:          holderB,
		TxHash:      "0xbeef",
		LogIndex:    1,
		TokenID:     "7",
	}
	transfers := []domain.Transfer{
		buildTestTransfer(5, 0, 0, domain.ETHEREUM_ZERO_ADDRESS, holderA, 10),
		buildTestTransfer(6, 0, 0, holderA, holderB, 4),
		nft,
	}
	require.NoError(t, store.AppendTransfers(ctx, transfers))
	// appending the same events again is a no-op
	require.NoError(t, store.AppendTransfers(ctx, transfers))

	all, err := store.ListTransfers(ctx, TransferFilter{ChainID: testChainID})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, uint64(8), all[0].BlockNumber)
	assert.Nil(t, all[0].Amount)
	assert.Equal(t, "7", all[0].TokenID)

	byToken, err := store.ListTransfers(ctx, TransferFilter{ChainID: testChainID, Token: tokenX})
	require.NoError(t, err)
	assert.Len(t, byToken, 2)

	byAddress, err := store.ListTransfers(ctx, TransferFilter{ChainID: testChainID, Address: holderB})
	require.NoError(t, err)
	assert.Len(t, byAddress, 2)

	from, to := uint64(5), uint64(6)
	byRange, err := store.ListTransfers(ctx, TransferFilter{ChainID: testChainID, FromBlock: &from, ToBlock: &to})
	require.NoError(t, err)
	require.Len(t, byRange, 2)
	assert.Equal(t, "4", byRange[0].Amount.String())
}

// RunStoreTests runs every store test against the given implementation
func RunStoreTests(t *testing.T, initDB func(t *testing.T) Store) {
	tests := []struct {
		name string
		fn   func(*testing.T, Store)
	}{
		{"Chains", testChains},
		{"CommitBlock", testCommitBlock},
		{"CommitGenesisBlock", testCommitGenesisBlock},
		{"CommitOversizedAmounts", testCommitOversizedAmounts},
		{"Tokens", testTokens},
		{"Addresses", testAddresses},
		{"Transfers", testTransfers},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := initDB(t)
			tt.fn(t, store)
		})
	}
}

func TestCalculateSafeBatchSize(t *testing.T) {
	assert.Equal(t, 10, calculateSafeBatchSize(10, 6))
	assert.Equal(t, 64535/11, calculateSafeBatchSize(100000, 11))
	assert.Equal(t, 1, calculateSafeBatchSize(0, 3))
}

func TestNormalizeConnectionPoolSettings(t *testing.T) {
	open, idle, lifetime, idleTime := NormalizeConnectionPoolSettings(0, 50, 0, 0)
	assert.Equal(t, 20, open)
	assert.Equal(t, 20, idle)
	assert.NotZero(t, lifetime)
	assert.NotZero(t, idleTime)
}
