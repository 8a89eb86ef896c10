// Package ctl implements the operator commands of ledgerctl.
package ctl

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/feral-file/ff-ledger-indexer/internal/config"
	"github.com/feral-file/ff-ledger-indexer/internal/domain"
	"github.com/feral-file/ff-ledger-indexer/internal/store"
)

// Seed inserts a chain record for every configured chain that has none, starting at its
// start block. Existing records keep their cursor and pick up the configured currencies.
func Seed(ctx context.Context, st store.Store, chains []config.ChainConfig, out io.Writer) error {
	for _, cfg := range chains {
		existing, err := st.FindChain(ctx, cfg.ChainID)
		if err != nil {
			return err
		}

		chain := &domain.Chain{
			ChainID:                 cfg.ChainID,
			Cursor:                  cfg.StartBlock,
			NativeCurrency:          cfg.NativeCurrency,
			WrappedNativeCurrencies: cfg.WrappedNativeCurrencies,
		}
		if existing != nil {
			chain.Cursor = existing.Cursor
			chain.CursorHash = existing.CursorHash
		}

		if err := st.SaveChain(ctx, chain); err != nil {
			return fmt.Errorf("failed to seed %s: %w", domain.CAIP2(cfg.ChainID), err)
		}

		if existing == nil {
			fmt.Fprintf(out, "seeded %s from block %d\n", domain.CAIP2(cfg.ChainID), cfg.StartBlock)
			continue
		}
		fmt.Fprintf(out, "updated %s, next block %d\n", domain.CAIP2(cfg.ChainID), existing.NextBlock())
		if !existing.Started() && existing.Cursor != cfg.StartBlock {
			fmt.Fprintf(out, "  start_block %d ignored, the stored cursor is %d\n", cfg.StartBlock, existing.Cursor)
		}
	}
	return nil
}

// Status prints the cursor of every seeded chain
func Status(ctx context.Context, st store.Store, out io.Writer) error {
	chains, err := st.ListChains(ctx)
	if err != nil {
		return err
	}
	if len(chains) == 0 {
		fmt.Fprintln(out, "no chains seeded")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CHAIN\tCURSOR\tNEXT\tCURSOR HASH\tNATIVE\tWRAPPED\tUPDATED")
	for _, c := range chains {
		hash := c.CursorHash
		if hash == "" {
			hash = "-"
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\t%s\t%s\n",
			domain.CAIP2(c.ChainID),
			c.Cursor,
			c.NextBlock(),
			hash,
			c.NativeCurrency,
			strings.Join(c.WrappedNativeCurrencies, ","),
			c.UpdatedAt.UTC().Format(time.RFC3339))
	}
	return w.Flush()
}

// Balances prints the present balances of a holder
func Balances(ctx context.Context, st store.Store, chainID uint64, holder string, limit, offset int, out io.Writer) error {
	if !common.IsHexAddress(holder) {
		return fmt.Errorf("%w: invalid address %q", domain.ErrInvalidArgument, holder)
	}
	holder = domain.NormalizeAddress(common.HexToAddress(holder))

	chain, err := st.FindChain(ctx, chainID)
	if err != nil {
		return err
	}
	if chain == nil {
		return fmt.Errorf("%w: %s", domain.ErrChainNotFound, domain.CAIP2(chainID))
	}

	balances, err := st.ListBalancesByHolder(ctx, chainID, holder, limit, offset)
	if err != nil {
		return err
	}
	if len(balances) == 0 {
		fmt.Fprintf(out, "%s holds nothing on %s\n", holder, domain.CAIP2(chainID))
		return nil
	}

	tokens := make(map[string]*domain.Token)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TOKEN\tSTANDARD\tSYMBOL\tTOKEN ID\tAMOUNT")
	for _, b := range balances {
		token, ok := tokens[b.Token]
		if !ok {
			token, err = st.FindToken(ctx, chainID, b.Token)
			if err != nil {
				return err
			}
			tokens[b.Token] = token
		}

		standard, symbol := "-", "-"
		if token != nil {
			standard, symbol = string(token.Standard), token.Symbol
		}
		tokenID := b.TokenID
		if tokenID == "" {
			tokenID = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", b.Token, standard, symbol, tokenID, b.Amount)
	}
	return w.Flush()
}
