package ledger

import (
	"context"
	"fmt"
	"math/big"

	"go.uber.org/zap"

	"github.com/feral-file/ff-ledger-indexer/internal/domain"
	"github.com/feral-file/ff-ledger-indexer/internal/logger"
)

// BalanceSource loads persisted balances on first reference within a block
//
//go:generate mockgen -source=ledger.go -destination=../mocks/balance_source.go -package=mocks -mock_names=BalanceSource=MockBalanceSource
type BalanceSource interface {
	// FindBalance returns the stored balance or nil when the holder has none
	FindBalance(ctx context.Context, chainID uint64, holder, token, tokenID string) (*domain.Balance, error)
}

type balanceKey struct {
	holder  string
	token   string
	tokenID string
}

type balanceEntry struct {
	// amount is nil while the entry is absent
	amount *big.Int
	// stored is the amount persisted before this block, nil if none
	stored *big.Int
}

func (e *balanceEntry) present() bool {
	return e.amount != nil
}

// WorkingSet is the mutable ledger state of one block. Every address, token and
// balance touched by the block has exactly one working copy here until Commit.
// A WorkingSet is owned by a single goroutine.
type WorkingSet struct {
	chainID     uint64
	blockNumber uint64
	source      BalanceSource

	addresses    map[string]struct{}
	addressOrder []string
	tokens       map[string]*domain.Token
	tokenOrder   []string
	balances     map[balanceKey]*balanceEntry
	balanceOrder []balanceKey
	transfers    []domain.Transfer
}

// NewWorkingSet returns an empty working set for a block. The zero address is always part of it.
func NewWorkingSet(chainID, blockNumber uint64, source BalanceSource) *WorkingSet {
	ws := &WorkingSet{
		chainID:     chainID,
		blockNumber: blockNumber,
		source:      source,
		addresses:   make(map[string]struct{}),
		tokens:      make(map[string]*domain.Token),
		balances:    make(map[balanceKey]*balanceEntry),
	}
	ws.touch(domain.ETHEREUM_ZERO_ADDRESS)
	return ws
}

// ChainID returns the chain the working set belongs to
func (ws *WorkingSet) ChainID() uint64 {
	return ws.chainID
}

// BlockNumber returns the block being processed
func (ws *WorkingSet) BlockNumber() uint64 {
	return ws.blockNumber
}

// Token returns the working copy of a token
func (ws *WorkingSet) Token(address string) (*domain.Token, bool) {
	t, ok := ws.tokens[address]
	return t, ok
}

// PutToken registers the working copy of a token. An existing copy is kept.
func (ws *WorkingSet) PutToken(token *domain.Token) *domain.Token {
	if existing, ok := ws.tokens[token.Address]; ok {
		return existing
	}
	ws.tokens[token.Address] = token
	ws.tokenOrder = append(ws.tokenOrder, token.Address)
	ws.touch(token.Address)
	return token
}

// Balance returns the current working amount of a balance, nil when absent or not loaded
func (ws *WorkingSet) Balance(holder, token, tokenID string) *big.Int {
	e, ok := ws.balances[balanceKey{holder, token, tokenID}]
	if !ok || !e.present() {
		return nil
	}
	return new(big.Int).Set(e.amount)
}

// Transfers returns the transfer records appended so far
func (ws *WorkingSet) Transfers() []domain.Transfer {
	return ws.transfers
}

// Apply applies one event to the working set against the given token working copy.
// Every balance the event needs is loaded before anything is mutated, so an error
// leaves the working set untouched.
func (ws *WorkingSet) Apply(ctx context.Context, event domain.Event, token *domain.Token) error {
	if token == nil {
		return fmt.Errorf("apply %T: nil token", event)
	}
	token = ws.PutToken(token)
	meta := event.Meta()

	switch e := event.(type) {
	case *domain.NativeWrap:
		account := domain.NormalizeAddress(e.Account)
		if err := ws.load(ctx, token.Address, "", account); err != nil {
			return err
		}
		ws.touch(account)
		ws.credit(ctx, account, token, "", e.Amount)
		ws.record(meta, token, domain.ETHEREUM_ZERO_ADDRESS, account, "", e.Amount, 0)

	case *domain.NativeUnwrap:
		account := domain.NormalizeAddress(e.Account)
		if err := ws.load(ctx, token.Address, "", account); err != nil {
			return err
		}
		ws.touch(account)
		ws.debit(ctx, account, token, "", e.Amount)
		ws.record(meta, token, account, domain.ETHEREUM_ZERO_ADDRESS, "", e.Amount, 0)

	case *domain.FungibleTransfer:
		from, to := domain.NormalizeAddress(e.From), domain.NormalizeAddress(e.To)
		if err := ws.load(ctx, token.Address, "", from, to); err != nil {
			return err
		}
		ws.touch(from, to)
		ws.move(ctx, from, to, token, "", e.Amount)
		ws.adjustSupply(from, to, token, e.Amount)
		ws.record(meta, token, from, to, "", e.Amount, 0)

	case *domain.NonFungibleTransfer:
		from, to := domain.NormalizeAddress(e.From), domain.NormalizeAddress(e.To)
		tokenID := e.TokenID.String()
		if err := ws.load(ctx, token.Address, tokenID, from, to); err != nil {
			return err
		}
		ws.touch(from, to)
		if ws.moveItem(ctx, from, to, token, tokenID) {
			ws.adjustSupply(from, to, token, big.NewInt(1))
		}
		ws.record(meta, token, from, to, tokenID, nil, 0)

	case *domain.SemiFungibleTransfer:
		from, to := domain.NormalizeAddress(e.From), domain.NormalizeAddress(e.To)
		for _, id := range e.IDs {
			if err := ws.load(ctx, token.Address, id.String(), from, to); err != nil {
				return err
			}
		}
		ws.touch(domain.NormalizeAddress(e.Operator), from, to)
		for i, id := range e.IDs {
			tokenID := id.String()
			ws.move(ctx, from, to, token, tokenID, e.Values[i])
			ws.record(meta, token, from, to, tokenID, e.Values[i], i)
		}

	default:
		return fmt.Errorf("apply: unsupported event type %T", event)
	}

	return nil
}

// Commit drains the working set into the batch written for the block.
// Only balances whose amount differs from the stored one are included.
func (ws *WorkingSet) Commit(blockHash string) domain.BlockCommit {
	commit := domain.BlockCommit{
		ChainID:     ws.chainID,
		BlockNumber: ws.blockNumber,
		BlockHash:   blockHash,
		Addresses:   append([]string(nil), ws.addressOrder...),
		Transfers:   ws.transfers,
	}

	for _, addr := range ws.tokenOrder {
		commit.Tokens = append(commit.Tokens, ws.tokens[addr])
	}

	for _, key := range ws.balanceOrder {
		e := ws.balances[key]
		balance := domain.Balance{
			ChainID: ws.chainID,
			Holder:  key.holder,
			Token:   key.token,
			TokenID: key.tokenID,
		}
		switch {
		case e.present() && (e.stored == nil || e.stored.Cmp(e.amount) != 0):
			balance.Amount = new(big.Int).Set(e.amount)
			commit.Balances = append(commit.Balances, balance)
		case !e.present() && e.stored != nil:
			commit.RemovedBalances = append(commit.RemovedBalances, balance)
		}
	}

	return commit
}

func (ws *WorkingSet) touch(addresses ...string) {
	for _, a := range addresses {
		if _, ok := ws.addresses[a]; ok {
			continue
		}
		ws.addresses[a] = struct{}{}
		ws.addressOrder = append(ws.addressOrder, a)
	}
}

// load brings the balances of holders into the working set. The zero address never holds balances.
func (ws *WorkingSet) load(ctx context.Context, token, tokenID string, holders ...string) error {
	for _, holder := range holders {
		if domain.IsZeroAddress(holder) {
			continue
		}
		key := balanceKey{holder, token, tokenID}
		if _, ok := ws.balances[key]; ok {
			continue
		}

		stored, err := ws.source.FindBalance(ctx, ws.chainID, holder, token, tokenID)
		if err != nil {
			return fmt.Errorf("failed to load balance of %s: %w", holder, err)
		}

		e := &balanceEntry{}
		if stored != nil && stored.Amount != nil && stored.Amount.Sign() > 0 {
			e.stored = new(big.Int).Set(stored.Amount)
			e.amount = new(big.Int).Set(stored.Amount)
		}
		ws.balances[key] = e
		ws.balanceOrder = append(ws.balanceOrder, key)
	}
	return nil
}

// move debits from and credits to as one step. Mints and burns touch one side only.
func (ws *WorkingSet) move(ctx context.Context, from, to string, token *domain.Token, tokenID string, amount *big.Int) {
	ws.debit(ctx, from, token, tokenID, amount)
	ws.credit(ctx, to, token, tokenID, amount)
}

// moveItem transfers ownership of a single non-fungible item.
// It reports whether any ownership record was removed or added.
func (ws *WorkingSet) moveItem(ctx context.Context, from, to string, token *domain.Token, tokenID string) bool {
	changed := false
	if !domain.IsZeroAddress(from) {
		e := ws.balances[balanceKey{from, token.Address, tokenID}]
		if e.present() {
			ws.remove(e, token)
			changed = true
		} else {
			logger.WarnCtx(ctx, "Non-fungible transfer from an address that does not own the item",
				zap.String("holder", from),
				zap.String("token", token.Address),
				zap.String("tokenId", tokenID))
		}
	}
	if !domain.IsZeroAddress(to) {
		e := ws.balances[balanceKey{to, token.Address, tokenID}]
		if !e.present() {
			e.amount = big.NewInt(1)
			token.Holders.Add(token.Holders, big.NewInt(1))
			changed = true
		}
	}
	return changed
}

// credit adds amount to a balance. A new entry increments the holder count.
func (ws *WorkingSet) credit(_ context.Context, holder string, token *domain.Token, tokenID string, amount *big.Int) {
	if domain.IsZeroAddress(holder) || amount == nil || amount.Sign() <= 0 {
		return
	}
	e := ws.balances[balanceKey{holder, token.Address, tokenID}]
	if e.present() {
		e.amount.Add(e.amount, amount)
		return
	}
	e.amount = new(big.Int).Set(amount)
	token.Holders.Add(token.Holders, big.NewInt(1))
}

// debit subtracts amount from a balance. Reaching zero removes the entry and decrements the holder count.
// Debits beyond the held amount clamp to zero, since history before the start block is unknown.
func (ws *WorkingSet) debit(ctx context.Context, holder string, token *domain.Token, tokenID string, amount *big.Int) {
	if domain.IsZeroAddress(holder) || amount == nil || amount.Sign() <= 0 {
		return
	}
	e := ws.balances[balanceKey{holder, token.Address, tokenID}]
	if !e.present() {
		logger.WarnCtx(ctx, "Debit from an address without balance",
			zap.String("holder", holder),
			zap.String("token", token.Address),
			zap.String("tokenId", tokenID),
			zap.String("amount", amount.String()))
		return
	}

	switch e.amount.Cmp(amount) {
	case 1:
		e.amount.Sub(e.amount, amount)
	case -1:
		logger.WarnCtx(ctx, "Debit exceeds balance, clamping to zero",
			zap.String("holder", holder),
			zap.String("token", token.Address),
			zap.String("tokenId", tokenID),
			zap.String("balance", e.amount.String()),
			zap.String("amount", amount.String()))
		ws.remove(e, token)
	default:
		ws.remove(e, token)
	}
}

func (ws *WorkingSet) remove(e *balanceEntry, token *domain.Token) {
	e.amount = nil
	token.Holders.Sub(token.Holders, big.NewInt(1))
	if token.Holders.Sign() < 0 {
		token.Holders.SetInt64(0)
	}
}

// adjustSupply applies mint and burn to the total supply. Peer transfers leave it unchanged.
func (ws *WorkingSet) adjustSupply(from, to string, token *domain.Token, amount *big.Int) {
	mint, burn := domain.IsZeroAddress(from), domain.IsZeroAddress(to)
	switch {
	case mint && burn:
	case mint:
		token.TotalSupply.Add(token.TotalSupply, amount)
	case burn:
		token.TotalSupply.Sub(token.TotalSupply, amount)
		if token.TotalSupply.Sign() < 0 {
			token.TotalSupply.SetInt64(0)
		}
	}
}

func (ws *WorkingSet) record(meta domain.EventMeta, token *domain.Token, from, to, tokenID string, amount *big.Int, batchIndex int) {
	var amt *big.Int
	if amount != nil {
		amt = new(big.Int).Set(amount)
	}
	ws.transfers = append(ws.transfers, domain.Transfer{
		ChainID:     ws.chainID,
		BlockNumber: ws.blockNumber,
		Token:       token.Address,
		From:        from,
		To:          to,
		TxHash:      meta.TxHash.Hex(),
		LogIndex:    meta.LogIndex,
		BatchIndex:  batchIndex,
		TokenID:     tokenID,
		Amount:      amt,
	})
}
