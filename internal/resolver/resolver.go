// Package resolver determines the token standard of a contract through ERC165
// introspection, once per contract and chain.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/feral-file/ff-ledger-indexer/internal/domain"
	"github.com/feral-file/ff-ledger-indexer/internal/ledger"
	"github.com/feral-file/ff-ledger-indexer/internal/logger"
	"github.com/feral-file/ff-ledger-indexer/internal/providers/ethereum"
)

const introspectionABI = `[
	{"inputs":[{"name":"interfaceId","type":"bytes4"}],"name":"supportsInterface","outputs":[{"name":"","type":"bool"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"name","outputs":[{"name":"","type":"string"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"symbol","outputs":[{"name":"","type":"string"}],"stateMutability":"view","type":"function"}
]`

var (
	parsedABI = mustParseABI()

	erc721InterfaceID  = [4]byte(common.FromHex(domain.ERC721_INTERFACE_ID))
	erc1155InterfaceID = [4]byte(common.FromHex(domain.ERC1155_INTERFACE_ID))
)

func mustParseABI() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(introspectionABI))
	if err != nil {
		panic(err)
	}
	return parsed
}

// MismatchPolicy decides what happens when an event's shape implies a different
// standard than the one resolved for its contract
type MismatchPolicy string

const (
	// MismatchTrustTopic applies the event under the standard its topics imply
	MismatchTrustTopic MismatchPolicy = "topic"
	// MismatchTrustResolved skips events that disagree with the resolved standard
	MismatchTrustResolved MismatchPolicy = "resolved"
)

// ParseMismatchPolicy parses a policy name, defaulting to MismatchTrustTopic when empty
func ParseMismatchPolicy(s string) (MismatchPolicy, error) {
	switch MismatchPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", MismatchTrustTopic:
		return MismatchTrustTopic, nil
	case MismatchTrustResolved:
		return MismatchTrustResolved, nil
	}
	return "", fmt.Errorf("unknown mismatch policy: %q", s)
}

// TokenFinder loads persisted tokens
//
//go:generate mockgen -source=resolver.go -destination=../mocks/resolver.go -package=mocks -mock_names=TokenFinder=MockTokenFinder,Multicaller=MockMulticaller
type TokenFinder interface {
	// FindToken returns the stored token or nil when the contract has not been seen
	FindToken(ctx context.Context, chainID uint64, address string) (*domain.Token, error)
}

// Multicaller batches contract reads
type Multicaller interface {
	Multicall(ctx context.Context, calls []ethereum.Call) ([]ethereum.CallResult, error)
}

// Config holds resolver configuration
type Config struct {
	ChainID        uint64
	CacheSize      int
	MismatchPolicy MismatchPolicy
}

// Resolver resolves contracts to tokens. Lookups go through the block working set,
// an LRU of committed tokens, the store, and finally the node.
type Resolver struct {
	cfg    Config
	store  TokenFinder
	client Multicaller
	cache  *lru.Cache[string, *domain.Token]
}

// New creates a resolver for one chain
func New(cfg Config, store TokenFinder, client Multicaller) (*Resolver, error) {
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 10_000
	}
	if cfg.MismatchPolicy == "" {
		cfg.MismatchPolicy = MismatchTrustTopic
	}

	cache, err := lru.New[string, *domain.Token](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create token cache: %w", err)
	}

	return &Resolver{cfg: cfg, store: store, client: client, cache: cache}, nil
}

// Resolve returns the working copy of the token for contract, creating it on first encounter.
// It returns the token together with domain.ErrStandardMismatch when the policy says the
// event implying the requested standard must be skipped.
func (r *Resolver) Resolve(ctx context.Context, ws *ledger.WorkingSet, contract common.Address, requested domain.Standard) (*domain.Token, error) {
	address := domain.NormalizeAddress(contract)

	token, err := r.lookup(ctx, ws, contract, address)
	if err != nil {
		return nil, err
	}

	if token.Standard == requested {
		return token, nil
	}

	fields := []zap.Field{
		zap.String("token", address),
		zap.String("resolved", string(token.Standard)),
		zap.String("implied", string(requested)),
		zap.String("policy", string(r.cfg.MismatchPolicy)),
	}
	if r.cfg.MismatchPolicy == MismatchTrustResolved {
		logger.WarnCtx(ctx, "Skipping event whose shape disagrees with the token standard", fields...)
		return token, domain.ErrStandardMismatch
	}
	logger.WarnCtx(ctx, "Applying event under the standard its shape implies", fields...)
	return token, nil
}

// Remember caches committed tokens so later blocks skip the store
func (r *Resolver) Remember(tokens []*domain.Token) {
	for _, t := range tokens {
		r.cache.Add(t.Address, t.Clone())
	}
}

// Forget drops every cached token
func (r *Resolver) Forget() {
	r.cache.Purge()
}

func (r *Resolver) lookup(ctx context.Context, ws *ledger.WorkingSet, contract common.Address, address string) (*domain.Token, error) {
	if token, ok := ws.Token(address); ok {
		return token, nil
	}

	if cached, ok := r.cache.Get(address); ok {
		return ws.PutToken(cached.Clone()), nil
	}

	stored, err := r.store.FindToken(ctx, r.cfg.ChainID, address)
	if err != nil {
		return nil, fmt.Errorf("failed to find token %s: %w", address, err)
	}
	if stored != nil {
		// the working set mutates its copy, a failed attempt must not touch the stored one
		return ws.PutToken(stored.Clone()), nil
	}

	token, err := r.introspect(ctx, contract, address)
	if err != nil {
		return nil, err
	}
	logger.InfoCtx(ctx, "Discovered token",
		zap.String("token", address),
		zap.String("standard", string(token.Standard)),
		zap.String("name", token.Name),
		zap.String("symbol", token.Symbol))
	return ws.PutToken(token), nil
}

// introspect reads supportsInterface(ERC721), supportsInterface(ERC1155), name and symbol in one multicall
func (r *Resolver) introspect(ctx context.Context, contract common.Address, address string) (*domain.Token, error) {
	calls := make([]ethereum.Call, 0, 4)
	for _, args := range [][]any{{erc721InterfaceID}, {erc1155InterfaceID}} {
		data, err := parsedABI.Pack("supportsInterface", args...)
		if err != nil {
			return nil, fmt.Errorf("failed to pack supportsInterface: %w", err)
		}
		calls = append(calls, ethereum.Call{Target: contract, Data: data})
	}
	for _, method := range []string{"name", "symbol"} {
		data, err := parsedABI.Pack(method)
		if err != nil {
			return nil, fmt.Errorf("failed to pack %s: %w", method, err)
		}
		calls = append(calls, ethereum.Call{Target: contract, Data: data})
	}

	results, err := r.client.Multicall(ctx, calls)
	if err != nil {
		return nil, fmt.Errorf("failed to introspect %s: %w", address, err)
	}
	if len(results) != len(calls) {
		return nil, fmt.Errorf("introspection of %s returned %d results for %d calls", address, len(results), len(calls))
	}

	standard := domain.StandardERC20
	switch {
	case decodeBool(results[0]):
		standard = domain.StandardERC721
	case decodeBool(results[1]):
		standard = domain.StandardERC1155
	}

	return domain.NewToken(r.cfg.ChainID, address, standard, decodeString(results[2]), decodeString(results[3])), nil
}

func decodeBool(result ethereum.CallResult) bool {
	if !result.Success {
		return false
	}
	values, err := parsedABI.Unpack("supportsInterface", result.ReturnData)
	if err != nil || len(values) != 1 {
		return false
	}
	b, ok := values[0].(bool)
	return ok && b
}

// decodeString decodes an ABI string, falling back to the bytes32 form some early tokens return
func decodeString(result ethereum.CallResult) string {
	if !result.Success || len(result.ReturnData) == 0 {
		return ""
	}

	values, err := parsedABI.Unpack("name", result.ReturnData)
	if err == nil && len(values) == 1 {
		if s, ok := values[0].(string); ok {
			return sanitize(s)
		}
	}

	if len(result.ReturnData) == 32 {
		end := 0
		for end < 32 && result.ReturnData[end] != 0 {
			end++
		}
		return sanitize(string(result.ReturnData[:end]))
	}

	return ""
}

// sanitize drops invalid UTF-8 and control characters, which postgres text columns reject
func sanitize(s string) string {
	s = strings.ToValidUTF8(s, "")
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

// IsMismatch reports whether err asks the caller to skip the event
func IsMismatch(err error) bool {
	return errors.Is(err, domain.ErrStandardMismatch)
}
