package classifier_test

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-ledger-indexer/internal/classifier"
	"github.com/feral-file/ff-ledger-indexer/internal/domain"
)

var (
	contract = common.HexToAddress("0x1000000000000000000000000000000000000001")
	weth     = common.HexToAddress("0x470cbfb236860eb5257bbf78715fb5bd77119c2f")
	alice    = common.HexToAddress("0xaaaa000000000000000000000000000000000001")
	bob      = common.HexToAddress("0xbbbb000000000000000000000000000000000002")
	operator = common.HexToAddress("0xcccc000000000000000000000000000000000003")
	txHash   = common.HexToHash("0xdead")
)

func addressTopic(a common.Address) common.Hash {
	return common.BytesToHash(a.Bytes())
}

func word(v int64) []byte {
	return math.U256Bytes(big.NewInt(v))
}

func words(vs ...int64) []byte {
	var out []byte
	for _, v := range vs {
		out = append(out, word(v)...)
	}
	return out
}

func batchData(t *testing.T, ids, values []int64) []byte {
	t.Helper()
	toBig := func(vs []int64) []*big.Int {
		out := make([]*big.Int, len(vs))
		for i, v := range vs {
			out[i] = big.NewInt(v)
		}
		return out
	}
	// head: two offsets, then each array as length + elements
	data := words(64, int64(64+32*(len(ids)+1)))
	data = append(data, word(int64(len(ids)))...)
	for _, v := range toBig(ids) {
		data = append(data, math.U256Bytes(v)...)
	}
	data = append(data, word(int64(len(values)))...)
	for _, v := range toBig(values) {
		data = append(data, math.U256Bytes(v)...)
	}
	return data
}

func TestSignatureConstants(t *testing.T) {
	assert.Equal(t, "0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef", classifier.TransferEventSignature.Hex())
	assert.Equal(t, "0xc3d58168c5ae7397731d063d5bbf3d657854427343f4c083240f7aacaa2d0f62", classifier.TransferSingleEventSignature.Hex())
	assert.Equal(t, "0x4a39dc06d4c0dbc64b70af90fd698a233a518aa5d07e595d983b8c0526c8f7fb", classifier.TransferBatchEventSignature.Hex())
	assert.Equal(t, "0xe1fffcc4923d04b559f4d29a8bfc6cda04eb5b0d3c460751c2402c5c5cc9109c", classifier.DepositEventSignature.Hex())
	assert.Equal(t, "0x7fcf532c15f0a6db0bd6d0e038bea71d30d808c7d98cb3bf7268a95bf5081b65", classifier.WithdrawalEventSignature.Hex())
}

func TestClassify_TopicCountDisambiguation(t *testing.T) {
	fungible := &types.Log{
		Address: contract,
		Topics:  []common.Hash{classifier.TransferEventSignature, addressTopic(alice), addressTopic(bob)},
		Data:    word(100),
		TxHash:  txHash,
		Index:   3,
	}
	event, err := classifier.Classify(fungible, nil)
	require.NoError(t, err)
	ft, ok := event.(*domain.FungibleTransfer)
	require.True(t, ok, "3-topic Transfer must be fungible, got %T", event)
	assert.Equal(t, alice, ft.From)
	assert.Equal(t, bob, ft.To)
	assert.Equal(t, int64(100), ft.Amount.Int64())
	assert.Equal(t, uint(3), ft.Meta().LogIndex)
	assert.Equal(t, contract, ft.Meta().Contract)

	nonFungible := &types.Log{
		Address: contract,
		Topics: []common.Hash{
			classifier.TransferEventSignature,
			addressTopic(alice),
			addressTopic(bob),
			common.BigToHash(big.NewInt(42)),
		},
	}
	event, err = classifier.Classify(nonFungible, nil)
	require.NoError(t, err)
	nft, ok := event.(*domain.NonFungibleTransfer)
	require.True(t, ok, "4-topic Transfer must be non-fungible, got %T", event)
	assert.Equal(t, alice, nft.From)
	assert.Equal(t, bob, nft.To)
	assert.Equal(t, int64(42), nft.TokenID.Int64())
}

func TestClassify_TransferSingle(t *testing.T) {
	vLog := &types.Log{
		Address: contract,
		Topics: []common.Hash{
			classifier.TransferSingleEventSignature,
			addressTopic(operator),
			addressTopic(alice),
			addressTopic(bob),
		},
		Data: words(7, 25),
	}

	event, err := classifier.Classify(vLog, nil)
	require.NoError(t, err)
	sf, ok := event.(*domain.SemiFungibleTransfer)
	require.True(t, ok)
	assert.False(t, sf.Batch)
	assert.Equal(t, operator, sf.Operator)
	assert.Equal(t, alice, sf.From)
	assert.Equal(t, bob, sf.To)
	require.Len(t, sf.IDs, 1)
	assert.Equal(t, int64(7), sf.IDs[0].Int64())
	assert.Equal(t, int64(25), sf.Values[0].Int64())
}

func TestClassify_TransferBatch(t *testing.T) {
	vLog := &types.Log{
		Address: contract,
		Topics: []common.Hash{
			classifier.TransferBatchEventSignature,
			addressTopic(operator),
			addressTopic(common.Address{}),
			addressTopic(bob),
		},
		Data: batchData(t, []int64{1, 2}, []int64{5, 3}),
	}

	event, err := classifier.Classify(vLog, nil)
	require.NoError(t, err)
	sf, ok := event.(*domain.SemiFungibleTransfer)
	require.True(t, ok)
	assert.True(t, sf.Batch)
	require.Len(t, sf.IDs, 2)
	assert.Equal(t, int64(1), sf.IDs[0].Int64())
	assert.Equal(t, int64(2), sf.IDs[1].Int64())
	assert.Equal(t, int64(5), sf.Values[0].Int64())
	assert.Equal(t, int64(3), sf.Values[1].Int64())
}

func TestClassify_WrappedNative(t *testing.T) {
	wrapped := classifier.NewWrappedSet([]string{weth.Hex(), "not-an-address"})

	deposit := &types.Log{
		Address: weth,
		Topics:  []common.Hash{classifier.DepositEventSignature, addressTopic(alice)},
		Data:    word(9),
	}
	event, err := classifier.Classify(deposit, wrapped)
	require.NoError(t, err)
	wrap, ok := event.(*domain.NativeWrap)
	require.True(t, ok)
	assert.Equal(t, alice, wrap.Account)
	assert.Equal(t, int64(9), wrap.Amount.Int64())

	withdrawal := &types.Log{
		Address: weth,
		Topics:  []common.Hash{classifier.WithdrawalEventSignature, addressTopic(alice)},
		Data:    word(4),
	}
	event, err = classifier.Classify(withdrawal, wrapped)
	require.NoError(t, err)
	unwrap, ok := event.(*domain.NativeUnwrap)
	require.True(t, ok)
	assert.Equal(t, int64(4), unwrap.Amount.Int64())

	// same log from a contract outside the wrapped set is ignored
	deposit.Address = contract
	_, err = classifier.Classify(deposit, wrapped)
	assert.ErrorIs(t, err, domain.ErrUnrecognizedLog)
}

func TestClassify_Unrecognized(t *testing.T) {
	tests := []struct {
		name string
		log  *types.Log
	}{
		{name: "nil log", log: nil},
		{name: "no topics", log: &types.Log{Address: contract}},
		{
			name: "transfer with two topics",
			log:  &types.Log{Topics: []common.Hash{classifier.TransferEventSignature, addressTopic(alice)}, Data: word(1)},
		},
		{
			name: "transfer with five topics",
			log: &types.Log{Topics: []common.Hash{
				classifier.TransferEventSignature, addressTopic(alice), addressTopic(bob), {}, {},
			}},
		},
		{
			name: "unknown signature",
			log:  &types.Log{Topics: []common.Hash{common.HexToHash("0x01"), addressTopic(alice), addressTopic(bob)}},
		},
		{
			name: "deposit with three topics",
			log: &types.Log{Address: weth, Topics: []common.Hash{
				classifier.DepositEventSignature, addressTopic(alice), addressTopic(bob),
			}, Data: word(1)},
		},
	}

	wrapped := classifier.NewWrappedSet([]string{weth.Hex()})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := classifier.Classify(tt.log, wrapped)
			assert.Nil(t, event)
			assert.ErrorIs(t, err, domain.ErrUnrecognizedLog)
		})
	}
}

func TestClassify_DecodeErrors(t *testing.T) {
	dirtyTopic := common.HexToHash("0xff000000000000000000000000aaaa000000000000000000000000000000000001")

	tests := []struct {
		name string
		log  *types.Log
	}{
		{
			name: "fungible transfer without data",
			log:  &types.Log{Topics: []common.Hash{classifier.TransferEventSignature, addressTopic(alice), addressTopic(bob)}},
		},
		{
			name: "fungible transfer with dirty address topic",
			log:  &types.Log{Topics: []common.Hash{classifier.TransferEventSignature, dirtyTopic, addressTopic(bob)}, Data: word(1)},
		},
		{
			name: "transfer single with short data",
			log: &types.Log{Topics: []common.Hash{
				classifier.TransferSingleEventSignature, addressTopic(operator), addressTopic(alice), addressTopic(bob),
			}, Data: word(1)},
		},
		{
			name: "transfer batch with garbage data",
			log: &types.Log{Topics: []common.Hash{
				classifier.TransferBatchEventSignature, addressTopic(operator), addressTopic(alice), addressTopic(bob),
			}, Data: []byte{0x01, 0x02}},
		},
		{
			name: "transfer batch with length mismatch",
			log: &types.Log{Topics: []common.Hash{
				classifier.TransferBatchEventSignature, addressTopic(operator), addressTopic(alice), addressTopic(bob),
			}, Data: batchData(t, []int64{1, 2}, []int64{5})},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := classifier.Classify(tt.log, nil)
			assert.Nil(t, event)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrDecodeLog))
			assert.False(t, errors.Is(err, domain.ErrUnrecognizedLog))
		})
	}
}
