package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// EventMeta locates an event on chain
type EventMeta struct {
	Contract    common.Address
	TxHash      common.Hash
	LogIndex    uint
	BlockNumber uint64
}

// Event is a classified transfer-like log. The concrete type carries the decoded
// fields of exactly one event kind:
//
//	*NativeWrap, *NativeUnwrap, *FungibleTransfer, *NonFungibleTransfer, *SemiFungibleTransfer
type Event interface {
	Meta() EventMeta
	// ImpliedStandard is the token standard the log's shape implies
	ImpliedStandard() Standard
	isEvent()
}

// NativeWrap is a Deposit on a wrapped native currency contract
type NativeWrap struct {
	EventMeta
	Account common.Address
	Amount  *big.Int
}

// NativeUnwrap is a Withdrawal on a wrapped native currency contract
type NativeUnwrap struct {
	EventMeta
	Account common.Address
	Amount  *big.Int
}

// FungibleTransfer is a 3-topic Transfer
type FungibleTransfer struct {
	EventMeta
	From   common.Address
	To     common.Address
	Amount *big.Int
}

// NonFungibleTransfer is a 4-topic Transfer
type NonFungibleTransfer struct {
	EventMeta
	From    common.Address
	To      common.Address
	TokenID *big.Int
}

// SemiFungibleTransfer is a TransferSingle (one id) or a TransferBatch
type SemiFungibleTransfer struct {
	EventMeta
	Operator common.Address
	From     common.Address
	To       common.Address
	IDs      []*big.Int
	Values   []*big.Int
	Batch    bool
}

func (e *NativeWrap) Meta() EventMeta           { return e.EventMeta }
func (e *NativeUnwrap) Meta() EventMeta         { return e.EventMeta }
func (e *FungibleTransfer) Meta() EventMeta     { return e.EventMeta }
func (e *NonFungibleTransfer) Meta() EventMeta  { return e.EventMeta }
func (e *SemiFungibleTransfer) Meta() EventMeta { return e.EventMeta }

func (e *NativeWrap) ImpliedStandard() Standard           { return StandardERC20 }
func (e *NativeUnwrap) ImpliedStandard() Standard         { return StandardERC20 }
func (e *FungibleTransfer) ImpliedStandard() Standard     { return StandardERC20 }
func (e *NonFungibleTransfer) ImpliedStandard() Standard  { return StandardERC721 }
func (e *SemiFungibleTransfer) ImpliedStandard() Standard { return StandardERC1155 }

func (*NativeWrap) isEvent()           {}
func (*NativeUnwrap) isEvent()         {}
func (*FungibleTransfer) isEvent()     {}
func (*NonFungibleTransfer) isEvent()  {}
func (*SemiFungibleTransfer) isEvent() {}
