package resolver

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-ledger-indexer/internal/domain"
	"github.com/feral-file/ff-ledger-indexer/internal/ledger"
	"github.com/feral-file/ff-ledger-indexer/internal/mocks"
	"github.com/feral-file/ff-ledger-indexer/internal/providers/ethereum"
)

const testChainID = 813

var contract = common.HexToAddress("0x1000000000000000000000000000000000000001")

type testResolver struct {
	ctrl   *gomock.Controller
	store  *mocks.MockTokenFinder
	client *mocks.MockMulticaller
	r      *Resolver
}

func setupTestResolver(t *testing.T, policy MismatchPolicy) *testResolver {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockTokenFinder(ctrl)
	client := mocks.NewMockMulticaller(ctrl)
	r, err := New(Config{ChainID: testChainID, CacheSize: 16, MismatchPolicy: policy}, store, client)
	require.NoError(t, err)
	return &testResolver{ctrl: ctrl, store: store, client: client, r: r}
}

func boolResult(t *testing.T, v bool) ethereum.CallResult {
	data, err := parsedABI.Methods["supportsInterface"].Outputs.Pack(v)
	require.NoError(t, err)
	return ethereum.CallResult{Success: true, ReturnData: data}
}

func stringResult(t *testing.T, s string) ethereum.CallResult {
	data, err := parsedABI.Methods["name"].Outputs.Pack(s)
	require.NoError(t, err)
	return ethereum.CallResult{Success: true, ReturnData: data}
}

func failed() ethereum.CallResult {
	return ethereum.CallResult{Success: false}
}

func TestResolve_Introspection(t *testing.T) {
	tests := []struct {
		name     string
		results  func(t *testing.T) []ethereum.CallResult
		expected domain.Standard
	}{
		{
			name: "erc721",
			results: func(t *testing.T) []ethereum.CallResult {
				return []ethereum.CallResult{boolResult(t, true), boolResult(t, false), stringResult(t, "Art"), stringResult(t, "ART")}
			},
			expected: domain.StandardERC721,
		},
		{
			name: "erc1155",
			results: func(t *testing.T) []ethereum.CallResult {
				return []ethereum.CallResult{boolResult(t, false), boolResult(t, true), failed(), failed()}
			},
			expected: domain.StandardERC1155,
		},
		{
			name: "erc721 wins when both are reported",
			results: func(t *testing.T) []ethereum.CallResult {
				return []ethereum.CallResult{boolResult(t, true), boolResult(t, true), failed(), failed()}
			},
			expected: domain.StandardERC721,
		},
		{
			name: "no erc165 falls back to erc20",
			results: func(t *testing.T) []ethereum.CallResult {
				return []ethereum.CallResult{failed(), failed(), stringResult(t, "Wrapped Ether"), stringResult(t, "WETH")}
			},
			expected: domain.StandardERC20,
		},
		{
			name: "short return data is not support",
			results: func(t *testing.T) []ethereum.CallResult {
				return []ethereum.CallResult{{Success: true, ReturnData: []byte{0x01}}, {Success: true}, failed(), failed()}
			},
			expected: domain.StandardERC20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := setupTestResolver(t, MismatchTrustTopic)
			ws := ledger.NewWorkingSet(testChainID, 1, nil)

			tr.store.EXPECT().FindToken(gomock.Any(), uint64(testChainID), domain.NormalizeAddress(contract)).Return(nil, nil)
			tr.client.EXPECT().Multicall(gomock.Any(), gomock.Len(4)).Return(tt.results(t), nil)

			token, err := tr.r.Resolve(context.Background(), ws, contract, tt.expected)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, token.Standard)
			assert.Equal(t, domain.NormalizeAddress(contract), token.Address)
			assert.Equal(t, 0, token.Holders.Sign())
			assert.Equal(t, 0, token.TotalSupply.Sign())

			cached, ok := ws.Token(token.Address)
			require.True(t, ok)
			assert.Same(t, token, cached)
		})
	}
}

func TestResolve_Metadata(t *testing.T) {
	tr := setupTestResolver(t, MismatchTrustTopic)
	ws := ledger.NewWorkingSet(testChainID, 1, nil)

	tr.store.EXPECT().FindToken(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
	tr.client.EXPECT().Multicall(gomock.Any(), gomock.Any()).Return([]ethereum.CallResult{
		failed(), failed(), stringResult(t, "Token X"), stringResult(t, "X"),
	}, nil)

	token, err := tr.r.Resolve(context.Background(), ws, contract, domain.StandardERC20)
	require.NoError(t, err)
	assert.Equal(t, "Token X", token.Name)
	assert.Equal(t, "X", token.Symbol)
}

func TestResolve_OncePerContract(t *testing.T) {
	tr := setupTestResolver(t, MismatchTrustTopic)
	ctx := context.Background()

	tr.store.EXPECT().FindToken(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil).Times(1)
	tr.client.EXPECT().Multicall(gomock.Any(), gomock.Any()).Return([]ethereum.CallResult{
		failed(), failed(), failed(), failed(),
	}, nil).Times(1)

	ws := ledger.NewWorkingSet(testChainID, 1, nil)
	first, err := tr.r.Resolve(ctx, ws, contract, domain.StandardERC20)
	require.NoError(t, err)
	second, err := tr.r.Resolve(ctx, ws, contract, domain.StandardERC20)
	require.NoError(t, err)
	assert.Same(t, first, second)

	// committed tokens are served from the cache in later blocks
	first.Holders = big.NewInt(3)
	tr.r.Remember([]*domain.Token{first})

	next := ledger.NewWorkingSet(testChainID, 2, nil)
	third, err := tr.r.Resolve(ctx, next, contract, domain.StandardERC20)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Equal(t, int64(3), third.Holders.Int64())

	// the cached snapshot is not shared with the working copy
	third.Holders.SetInt64(10)
	fourth, err := tr.r.Resolve(ctx, ledger.NewWorkingSet(testChainID, 3, nil), contract, domain.StandardERC20)
	require.NoError(t, err)
	assert.Equal(t, int64(3), fourth.Holders.Int64())
}

func TestResolve_StoredToken(t *testing.T) {
	tr := setupTestResolver(t, MismatchTrustTopic)
	stored := domain.NewToken(testChainID, domain.NormalizeAddress(contract), domain.StandardERC721, "Art", "ART")
	stored.Holders.SetInt64(2)

	tr.store.EXPECT().FindToken(gomock.Any(), uint64(testChainID), stored.Address).Return(stored, nil)

	token, err := tr.r.Resolve(context.Background(), ledger.NewWorkingSet(testChainID, 1, nil), contract, domain.StandardERC721)
	require.NoError(t, err)
	assert.Equal(t, domain.StandardERC721, token.Standard)
	assert.Equal(t, int64(2), token.Holders.Int64())
	assert.NotSame(t, stored, token)

	token.Holders.SetInt64(5)
	assert.Equal(t, int64(2), stored.Holders.Int64())
}

func TestResolve_Errors(t *testing.T) {
	t.Run("store", func(t *testing.T) {
		tr := setupTestResolver(t, MismatchTrustTopic)
		tr.store.EXPECT().FindToken(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("connection refused"))

		_, err := tr.r.Resolve(context.Background(), ledger.NewWorkingSet(testChainID, 1, nil), contract, domain.StandardERC20)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
	})

	t.Run("multicall", func(t *testing.T) {
		tr := setupTestResolver(t, MismatchTrustTopic)
		ws := ledger.NewWorkingSet(testChainID, 1, nil)
		tr.store.EXPECT().FindToken(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
		tr.client.EXPECT().Multicall(gomock.Any(), gomock.Any()).Return(nil, errors.New("timeout"))

		_, err := tr.r.Resolve(context.Background(), ws, contract, domain.StandardERC20)
		require.Error(t, err)
		_, ok := ws.Token(domain.NormalizeAddress(contract))
		assert.False(t, ok)
	})

	t.Run("result count", func(t *testing.T) {
		tr := setupTestResolver(t, MismatchTrustTopic)
		tr.store.EXPECT().FindToken(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
		tr.client.EXPECT().Multicall(gomock.Any(), gomock.Any()).Return([]ethereum.CallResult{failed()}, nil)

		_, err := tr.r.Resolve(context.Background(), ledger.NewWorkingSet(testChainID, 1, nil), contract, domain.StandardERC20)
		require.Error(t, err)
	})
}

func TestResolve_MismatchPolicy(t *testing.T) {
	stored := func() *domain.Token {
		return domain.NewToken(testChainID, domain.NormalizeAddress(contract), domain.StandardERC20, "", "")
	}

	t.Run("topic", func(t *testing.T) {
		tr := setupTestResolver(t, MismatchTrustTopic)
		tr.store.EXPECT().FindToken(gomock.Any(), gomock.Any(), gomock.Any()).Return(stored(), nil)

		token, err := tr.r.Resolve(context.Background(), ledger.NewWorkingSet(testChainID, 1, nil), contract, domain.StandardERC721)
		require.NoError(t, err)
		assert.Equal(t, domain.StandardERC20, token.Standard)
	})

	t.Run("resolved", func(t *testing.T) {
		tr := setupTestResolver(t, MismatchTrustResolved)
		tr.store.EXPECT().FindToken(gomock.Any(), gomock.Any(), gomock.Any()).Return(stored(), nil)

		token, err := tr.r.Resolve(context.Background(), ledger.NewWorkingSet(testChainID, 1, nil), contract, domain.StandardERC721)
		require.ErrorIs(t, err, domain.ErrStandardMismatch)
		assert.True(t, IsMismatch(err))
		require.NotNil(t, token)
		assert.Equal(t, domain.StandardERC20, token.Standard)
	})
}

func TestParseMismatchPolicy(t *testing.T) {
	p, err := ParseMismatchPolicy("")
	require.NoError(t, err)
	assert.Equal(t, MismatchTrustTopic, p)

	p, err = ParseMismatchPolicy("Resolved")
	require.NoError(t, err)
	assert.Equal(t, MismatchTrustResolved, p)

	_, err = ParseMismatchPolicy("strict")
	assert.Error(t, err)
}

func TestDecodeString(t *testing.T) {
	bytes32 := make([]byte, 32)
	copy(bytes32, "MKR")

	assert.Equal(t, "Token", decodeString(stringResult(t, "Token")))
	assert.Equal(t, "MKR", decodeString(ethereum.CallResult{Success: true, ReturnData: bytes32}))
	assert.Equal(t, "AB", decodeString(stringResult(t, "A\x00B\n")))
	assert.Equal(t, "", decodeString(ethereum.CallResult{Success: true, ReturnData: []byte{0x01, 0x02}}))
	assert.Equal(t, "", decodeString(failed()))
}
