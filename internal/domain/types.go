package domain

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Standard represents a token standard
type Standard string

const (
	StandardERC20   Standard = "erc20"
	StandardERC721  Standard = "erc721"
	StandardERC1155 Standard = "erc1155"
)

// IsValidStandard checks if a standard is one the ledger tracks
func IsValidStandard(s Standard) bool {
	return s == StandardERC20 || s == StandardERC721 || s == StandardERC1155
}

// ParseStandard parses a standard name case-insensitively
func ParseStandard(s string) (Standard, error) {
	std := Standard(strings.ToLower(strings.TrimSpace(s)))
	if !IsValidStandard(std) {
		return "", fmt.Errorf("unknown token standard: %q", s)
	}
	return std, nil
}

// Fungible reports whether balances of this standard carry an amount without a token ID
func (s Standard) Fungible() bool {
	return s == StandardERC20
}

// CAIP2 returns the CAIP-2 identifier of an EVM chain, e.g. "eip155:1"
func CAIP2(chainID uint64) string {
	return fmt.Sprintf("eip155:%d", chainID)
}

// NormalizeAddress returns the lowercase 0x-prefixed hex form used as a storage key
func NormalizeAddress(addr common.Address) string {
	return strings.ToLower(addr.Hex())
}

// NormalizeHex lowercases a hex address string, adding the 0x prefix when missing
func NormalizeHex(addr string) string {
	addr = strings.ToLower(strings.TrimSpace(addr))
	if !strings.HasPrefix(addr, "0x") {
		addr = "0x" + addr
	}
	return addr
}

// IsZeroAddress reports whether a normalized address is the zero address
func IsZeroAddress(addr string) bool {
	return addr == ETHEREUM_ZERO_ADDRESS
}

// Chain is a tracked network and its indexing progress
type Chain struct {
	ChainID uint64
	// Cursor is the last fully processed block number
	Cursor uint64
	// CursorHash is the hash of the cursor block, empty before the first block is processed
	CursorHash              string
	NativeCurrency          string
	WrappedNativeCurrencies []string
	UpdatedAt               time.Time
}

// Started reports whether any block has been committed for this chain
func (c *Chain) Started() bool {
	return c.CursorHash != ""
}

// NextBlock returns the next block number to process
func (c *Chain) NextBlock() uint64 {
	if !c.Started() {
		return c.Cursor
	}
	return c.Cursor + 1
}

// Address is an account on a chain with the balances it currently holds
type Address struct {
	ChainID  uint64
	Hash     string
	Balances []Balance
}

// Token is a token contract with its aggregate counters
type Token struct {
	ChainID     uint64
	Address     string
	Standard    Standard
	Name        string
	Symbol      string
	Holders     *big.Int
	TotalSupply *big.Int
}

// NewToken returns a token with zeroed counters
func NewToken(chainID uint64, address string, standard Standard, name, symbol string) *Token {
	return &Token{
		ChainID:     chainID,
		Address:     address,
		Standard:    standard,
		Name:        name,
		Symbol:      symbol,
		Holders:     new(big.Int),
		TotalSupply: new(big.Int),
	}
}

// Clone returns a deep copy of the token
func (t *Token) Clone() *Token {
	c := *t
	c.Holders = cloneInt(t.Holders)
	c.TotalSupply = cloneInt(t.TotalSupply)
	return &c
}

// Balance is a present holding of a token. TokenID is empty for fungible tokens.
type Balance struct {
	ChainID uint64
	Holder  string
	Token   string
	TokenID string
	Amount  *big.Int
}

// Transfer is an immutable record of one transfer-like event
type Transfer struct {
	ChainID     uint64
	BlockNumber uint64
	Token       string
	From        string
	To          string
	TxHash      string
	LogIndex    uint
	// BatchIndex is the position of the id inside a batch transfer, 0 otherwise
	BatchIndex int
	TokenID    string
	// Amount is nil for non-fungible transfers
	Amount *big.Int
}

// BlockCommit is everything one block contributes to the ledger
type BlockCommit struct {
	ChainID     uint64
	BlockNumber uint64
	BlockHash   string
	Addresses   []string
	Tokens      []*Token
	// Balances are upserted, RemovedBalances are deleted
	Balances        []Balance
	RemovedBalances []Balance
	Transfers       []Transfer
}

// BlockCommitted is the notification published after a block is committed
type BlockCommitted struct {
	Chain       string    `json:"chain"`
	ChainID     uint64    `json:"chain_id"`
	BlockNumber uint64    `json:"block_number"`
	BlockHash   string    `json:"block_hash"`
	Transfers   int       `json:"transfers"`
	Tokens      []string  `json:"tokens"`
	CommittedAt time.Time `json:"committed_at"`
}

func cloneInt(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}
