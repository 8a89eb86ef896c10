package dto

import (
	"math/big"
	"time"

	"github.com/feral-file/ff-ledger-indexer/internal/domain"
)

// ChainResponse represents a tracked chain and its indexing progress
type ChainResponse struct {
	Chain                   string    `json:"chain"`
	ChainID                 uint64    `json:"chain_id"`
	Cursor                  uint64    `json:"cursor"`
	CursorHash              string    `json:"cursor_hash,omitempty"`
	NextBlock               uint64    `json:"next_block"`
	Tip                     *uint64   `json:"tip,omitempty"`
	Lag                     *uint64   `json:"lag,omitempty"`
	NativeCurrency          string    `json:"native_currency"`
	WrappedNativeCurrencies []string  `json:"wrapped_native_currencies"`
	UpdatedAt               time.Time `json:"updated_at"`
}

// TokenResponse represents a token contract with its counters
type TokenResponse struct {
	Chain       string          `json:"chain"`
	Address     string          `json:"address"`
	Standard    domain.Standard `json:"standard"`
	Name        string          `json:"name"`
	Symbol      string          `json:"symbol"`
	Holders     string          `json:"holders"`
	TotalSupply string          `json:"total_supply"`
}

// BalanceResponse represents a present holding
type BalanceResponse struct {
	Token   string `json:"token"`
	TokenID string `json:"token_id,omitempty"`
	Amount  string `json:"amount"`
}

// TransferResponse represents one recorded transfer
type TransferResponse struct {
	BlockNumber uint64  `json:"block_number"`
	TxHash      string  `json:"tx_hash"`
	LogIndex    uint    `json:"log_index"`
	BatchIndex  int     `json:"batch_index"`
	Token       string  `json:"token"`
	From        string  `json:"from"`
	To          string  `json:"to"`
	TokenID     string  `json:"token_id,omitempty"`
	Amount      *string `json:"amount,omitempty"`
}

// PaginatedBalances represents a page of balances of one holder
type PaginatedBalances struct {
	Holder   string            `json:"holder"`
	Balances []BalanceResponse `json:"items"`
	Offset   int               `json:"offset"`
	Limit    int               `json:"limit"`
}

// PaginatedTokens represents a page of tokens of one chain
type PaginatedTokens struct {
	Tokens []TokenResponse `json:"items"`
	Offset int             `json:"offset"`
	Limit  int             `json:"limit"`
}

// PaginatedTransfers represents a page of transfers, newest first
type PaginatedTransfers struct {
	Transfers []TransferResponse `json:"items"`
	Offset    int                `json:"offset"`
	Limit     int                `json:"limit"`
}

// NewChainResponse maps a chain. tip is nil when the head is unknown.
func NewChainResponse(chain *domain.Chain, tip *uint64) ChainResponse {
	resp := ChainResponse{
		Chain:                   domain.CAIP2(chain.ChainID),
		ChainID:                 chain.ChainID,
		Cursor:                  chain.Cursor,
		CursorHash:              chain.CursorHash,
		NextBlock:               chain.NextBlock(),
		NativeCurrency:          chain.NativeCurrency,
		WrappedNativeCurrencies: chain.WrappedNativeCurrencies,
		UpdatedAt:               chain.UpdatedAt,
	}
	if resp.WrappedNativeCurrencies == nil {
		resp.WrappedNativeCurrencies = []string{}
	}
	if tip != nil {
		var lag uint64
		if next := chain.NextBlock(); *tip >= next {
			lag = *tip - next + 1
		}
		resp.Tip = tip
		resp.Lag = &lag
	}
	return resp
}

// NewTokenResponse maps a token
func NewTokenResponse(token *domain.Token) TokenResponse {
	return TokenResponse{
		Chain:       domain.CAIP2(token.ChainID),
		Address:     token.Address,
		Standard:    token.Standard,
		Name:        token.Name,
		Symbol:      token.Symbol,
		Holders:     intString(token.Holders),
		TotalSupply: intString(token.TotalSupply),
	}
}

// NewTokensResponse maps a page of tokens
func NewTokensResponse(tokens []*domain.Token, offset, limit int) PaginatedTokens {
	items := make([]TokenResponse, 0, len(tokens))
	for _, t := range tokens {
		items = append(items, NewTokenResponse(t))
	}
	return PaginatedTokens{Tokens: items, Offset: offset, Limit: limit}
}

// NewBalancesResponse maps a page of balances
func NewBalancesResponse(holder string, balances []domain.Balance, offset, limit int) PaginatedBalances {
	items := make([]BalanceResponse, 0, len(balances))
	for _, b := range balances {
		items = append(items, BalanceResponse{
			Token:   b.Token,
			TokenID: b.TokenID,
			Amount:  intString(b.Amount),
		})
	}
	return PaginatedBalances{Holder: holder, Balances: items, Offset: offset, Limit: limit}
}

// NewTransfersResponse maps a page of transfers
func NewTransfersResponse(transfers []domain.Transfer, offset, limit int) PaginatedTransfers {
	items := make([]TransferResponse, 0, len(transfers))
	for _, t := range transfers {
		item := TransferResponse{
			BlockNumber: t.BlockNumber,
			TxHash:      t.TxHash,
			LogIndex:    t.LogIndex,
			BatchIndex:  t.BatchIndex,
			Token:       t.Token,
			From:        t.From,
			To:          t.To,
			TokenID:     t.TokenID,
		}
		if t.Amount != nil {
			amount := t.Amount.String()
			item.Amount = &amount
		}
		items = append(items, item)
	}
	return PaginatedTransfers{Transfers: items, Offset: offset, Limit: limit}
}

func intString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
