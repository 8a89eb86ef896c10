// Package classifier maps raw EVM logs to typed ledger events.
//
// The Transfer signature is shared by ERC20 and ERC721, so classification keys on
// the signature hash together with the number of topics.
package classifier

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/feral-file/ff-ledger-indexer/internal/domain"
)

// Event signatures
var (
	// ERC20: Transfer(address indexed from, address indexed to, uint256 value) - 3 topics
	// ERC721: Transfer(address indexed from, address indexed to, uint256 indexed tokenId) - 4 topics
	TransferEventSignature = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))

	// ERC1155 TransferSingle(address indexed operator, address indexed from, address indexed to, uint256 id, uint256 value)
	TransferSingleEventSignature = crypto.Keccak256Hash([]byte("TransferSingle(address,address,address,uint256,uint256)"))

	// ERC1155 TransferBatch(address indexed operator, address indexed from, address indexed to, uint256[] ids, uint256[] values)
	TransferBatchEventSignature = crypto.Keccak256Hash([]byte("TransferBatch(address,address,address,uint256[],uint256[])"))

	// WETH9 Deposit(address indexed dst, uint256 wad)
	DepositEventSignature = crypto.Keccak256Hash([]byte("Deposit(address,uint256)"))

	// WETH9 Withdrawal(address indexed src, uint256 wad)
	WithdrawalEventSignature = crypto.Keccak256Hash([]byte("Withdrawal(address,uint256)"))
)

const wordSize = 32

var batchArguments = mustBatchArguments()

func mustBatchArguments() abi.Arguments {
	uintArray, err := abi.NewType("uint256[]", "", nil)
	if err != nil {
		panic(err)
	}
	return abi.Arguments{{Name: "ids", Type: uintArray}, {Name: "values", Type: uintArray}}
}

// WrappedSet is the set of wrapped native currency contracts of a chain
type WrappedSet map[common.Address]struct{}

// NewWrappedSet builds a WrappedSet from hex addresses. Invalid entries are ignored.
func NewWrappedSet(addresses []string) WrappedSet {
	set := make(WrappedSet, len(addresses))
	for _, a := range addresses {
		if !common.IsHexAddress(a) {
			continue
		}
		set[common.HexToAddress(a)] = struct{}{}
	}
	return set
}

// Contains reports whether addr is a wrapped native currency contract
func (s WrappedSet) Contains(addr common.Address) bool {
	_, ok := s[addr]
	return ok
}

// Classify maps a log to an event.
// It returns domain.ErrUnrecognizedLog for logs the ledger does not track and an error
// wrapping domain.ErrDecodeLog when a tracked signature has malformed topics or data.
func Classify(vLog *types.Log, wrapped WrappedSet) (domain.Event, error) {
	if vLog == nil || len(vLog.Topics) == 0 {
		return nil, domain.ErrUnrecognizedLog
	}

	meta := domain.EventMeta{
		Contract:    vLog.Address,
		TxHash:      vLog.TxHash,
		LogIndex:    vLog.Index,
		BlockNumber: vLog.BlockNumber,
	}
	topics := vLog.Topics

	switch {
	case topics[0] == DepositEventSignature && len(topics) == 2 && wrapped.Contains(vLog.Address):
		account, amount, err := decodeWad(topics[1], vLog.Data)
		if err != nil {
			return nil, decodeError("Deposit", err)
		}
		return &domain.NativeWrap{EventMeta: meta, Account: account, Amount: amount}, nil

	case topics[0] == WithdrawalEventSignature && len(topics) == 2 && wrapped.Contains(vLog.Address):
		account, amount, err := decodeWad(topics[1], vLog.Data)
		if err != nil {
			return nil, decodeError("Withdrawal", err)
		}
		return &domain.NativeUnwrap{EventMeta: meta, Account: account, Amount: amount}, nil

	case topics[0] == TransferEventSignature && len(topics) == 3:
		from, to, err := decodeAddressPair(topics[1], topics[2])
		if err != nil {
			return nil, decodeError("Transfer", err)
		}
		amount, err := decodeWord(vLog.Data, 0)
		if err != nil {
			return nil, decodeError("Transfer", err)
		}
		return &domain.FungibleTransfer{EventMeta: meta, From: from, To: to, Amount: amount}, nil

	case topics[0] == TransferEventSignature && len(topics) == 4:
		from, to, err := decodeAddressPair(topics[1], topics[2])
		if err != nil {
			return nil, decodeError("Transfer", err)
		}
		return &domain.NonFungibleTransfer{
			EventMeta: meta,
			From:      from,
			To:        to,
			TokenID:   new(big.Int).SetBytes(topics[3].Bytes()),
		}, nil

	case topics[0] == TransferSingleEventSignature && len(topics) == 4:
		operator, from, to, err := decodeParties(topics)
		if err != nil {
			return nil, decodeError("TransferSingle", err)
		}
		id, err := decodeWord(vLog.Data, 0)
		if err != nil {
			return nil, decodeError("TransferSingle", err)
		}
		value, err := decodeWord(vLog.Data, 1)
		if err != nil {
			return nil, decodeError("TransferSingle", err)
		}
		return &domain.SemiFungibleTransfer{
			EventMeta: meta,
			Operator:  operator,
			From:      from,
			To:        to,
			IDs:       []*big.Int{id},
			Values:    []*big.Int{value},
		}, nil

	case topics[0] == TransferBatchEventSignature && len(topics) == 4:
		operator, from, to, err := decodeParties(topics)
		if err != nil {
			return nil, decodeError("TransferBatch", err)
		}
		ids, values, err := decodeBatch(vLog.Data)
		if err != nil {
			return nil, decodeError("TransferBatch", err)
		}
		return &domain.SemiFungibleTransfer{
			EventMeta: meta,
			Operator:  operator,
			From:      from,
			To:        to,
			IDs:       ids,
			Values:    values,
			Batch:     true,
		}, nil
	}

	return nil, domain.ErrUnrecognizedLog
}

func decodeError(event string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrDecodeLog, event, err)
}

// decodeAddress reads an indexed address parameter. The upper 12 bytes must be zero.
func decodeAddress(topic common.Hash) (common.Address, error) {
	for _, b := range topic[:common.HashLength-common.AddressLength] {
		if b != 0 {
			return common.Address{}, fmt.Errorf("topic %s is not a left-padded address", topic.Hex())
		}
	}
	return common.BytesToAddress(topic.Bytes()), nil
}

func decodeAddressPair(a, b common.Hash) (common.Address, common.Address, error) {
	first, err := decodeAddress(a)
	if err != nil {
		return common.Address{}, common.Address{}, err
	}
	second, err := decodeAddress(b)
	if err != nil {
		return common.Address{}, common.Address{}, err
	}
	return first, second, nil
}

// decodeParties reads operator, from and to of an ERC1155 event
func decodeParties(topics []common.Hash) (operator, from, to common.Address, err error) {
	if operator, err = decodeAddress(topics[1]); err != nil {
		return
	}
	from, to, err = decodeAddressPair(topics[2], topics[3])
	return
}

func decodeWad(topic common.Hash, data []byte) (common.Address, *big.Int, error) {
	account, err := decodeAddress(topic)
	if err != nil {
		return common.Address{}, nil, err
	}
	wad, err := decodeWord(data, 0)
	if err != nil {
		return common.Address{}, nil, err
	}
	return account, wad, nil
}

// decodeWord reads the i-th 32-byte word of data as a uint256
func decodeWord(data []byte, i int) (*big.Int, error) {
	end := (i + 1) * wordSize
	if len(data) < end {
		return nil, fmt.Errorf("data has %d bytes, need at least %d", len(data), end)
	}
	return new(big.Int).SetBytes(data[i*wordSize : end]), nil
}

func decodeBatch(data []byte) ([]*big.Int, []*big.Int, error) {
	values, err := batchArguments.Unpack(data)
	if err != nil {
		return nil, nil, err
	}
	if len(values) != 2 {
		return nil, nil, fmt.Errorf("expected 2 arrays, got %d", len(values))
	}

	ids, ok := values[0].([]*big.Int)
	if !ok {
		return nil, nil, fmt.Errorf("unexpected ids type %T", values[0])
	}
	amounts, ok := values[1].([]*big.Int)
	if !ok {
		return nil, nil, fmt.Errorf("unexpected values type %T", values[1])
	}
	if len(ids) != len(amounts) {
		return nil, nil, fmt.Errorf("ids and values length mismatch: %d != %d", len(ids), len(amounts))
	}
	return ids, amounts, nil
}
