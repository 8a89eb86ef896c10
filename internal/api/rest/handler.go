package rest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/feral-file/ff-ledger-indexer/internal/api/rest/dto"
	"github.com/feral-file/ff-ledger-indexer/internal/block"
	"github.com/feral-file/ff-ledger-indexer/internal/domain"
	"github.com/feral-file/ff-ledger-indexer/internal/logger"
	"github.com/feral-file/ff-ledger-indexer/internal/store"
)

// Handler defines the interface for REST API handlers
type Handler interface {
	// ListChains lists tracked chains with their cursors
	// GET /api/v1/chains
	ListChains(c *gin.Context)

	// GetChain returns one chain with its cursor, tip and lag
	// GET /api/v1/chains/:chain_id
	GetChain(c *gin.Context)

	// ListBalances lists the present balances of a holder
	// GET /api/v1/chains/:chain_id/addresses/:address/balances?limit=<limit>&offset=<offset>
	ListBalances(c *gin.Context)

	// ListTokens lists the token contracts seen on a chain
	// GET /api/v1/chains/:chain_id/tokens?limit=<limit>&offset=<offset>
	ListTokens(c *gin.Context)

	// GetToken returns a token contract with its holder count and supply
	// GET /api/v1/chains/:chain_id/tokens/:address
	GetToken(c *gin.Context)

	// ListTransfers lists transfers newest first
	// GET /api/v1/chains/:chain_id/transfers?token=<address>&address=<address>&from_block=<n>&to_block=<n>&limit=<limit>&offset=<offset>
	ListTransfers(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	store store.Store
	heads block.HeadProvider
}

// NewHandler creates a new REST API handler
func NewHandler(st store.Store, heads block.HeadProvider) Handler {
	return &handler{
		store: st,
		heads: heads,
	}
}

// ListChains lists tracked chains. Tips are not fetched for the listing.
func (h *handler) ListChains(c *gin.Context) {
	chains, err := h.store.ListChains(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "Failed to list chains")
		return
	}

	items := make([]dto.ChainResponse, 0, len(chains))
	for _, chain := range chains {
		items = append(items, dto.NewChainResponse(chain, nil))
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// GetChain returns a chain with its lag behind the latest head
func (h *handler) GetChain(c *gin.Context) {
	chain, ok := h.loadChain(c)
	if !ok {
		return
	}

	var tip *uint64
	if n, err := h.heads.Latest(c.Request.Context(), chain.ChainID); err != nil {
		logger.WarnCtx(c.Request.Context(), "Chain head unavailable",
			zap.Uint64("chain_id", chain.ChainID),
			zap.Error(err))
	} else {
		tip = &n
	}

	c.JSON(http.StatusOK, dto.NewChainResponse(chain, tip))
}

// ListBalances lists the present balances of a holder
func (h *handler) ListBalances(c *gin.Context) {
	chain, ok := h.loadChain(c)
	if !ok {
		return
	}

	holder, err := parseAddress(c.Param("address"))
	if err != nil {
		respondBadRequest(c, "Invalid address", err)
		return
	}

	page, err := ParsePaginationQuery(c)
	if err != nil {
		respondValidationError(c, err)
		return
	}

	balances, err := h.store.ListBalancesByHolder(c.Request.Context(), chain.ChainID, holder, page.Limit, page.Offset)
	if err != nil {
		respondInternalError(c, err, "Failed to list balances", zap.String("holder", holder))
		return
	}

	c.JSON(http.StatusOK, dto.NewBalancesResponse(holder, balances, page.Offset, page.Limit))
}

// ListTokens lists the token contracts seen on a chain
func (h *handler) ListTokens(c *gin.Context) {
	chain, ok := h.loadChain(c)
	if !ok {
		return
	}

	page, err := ParsePaginationQuery(c)
	if err != nil {
		respondValidationError(c, err)
		return
	}

	tokens, err := h.store.ListTokens(c.Request.Context(), chain.ChainID, page.Limit, page.Offset)
	if err != nil {
		respondInternalError(c, err, "Failed to list tokens")
		return
	}

	c.JSON(http.StatusOK, dto.NewTokensResponse(tokens, page.Offset, page.Limit))
}

// GetToken returns a token contract
func (h *handler) GetToken(c *gin.Context) {
	chain, ok := h.loadChain(c)
	if !ok {
		return
	}

	address, err := parseAddress(c.Param("address"))
	if err != nil {
		respondBadRequest(c, "Invalid token address", err)
		return
	}

	token, err := h.store.FindToken(c.Request.Context(), chain.ChainID, address)
	if err != nil {
		respondInternalError(c, err, "Failed to get token", zap.String("token", address))
		return
	}
	if token == nil {
		respondNotFound(c, "Token not found", address)
		return
	}

	c.JSON(http.StatusOK, dto.NewTokenResponse(token))
}

// ListTransfers lists transfers matching the query filters
func (h *handler) ListTransfers(c *gin.Context) {
	chain, ok := h.loadChain(c)
	if !ok {
		return
	}

	params, err := ParseListTransfersQuery(c)
	if err != nil {
		respondValidationError(c, err)
		return
	}

	transfers, err := h.store.ListTransfers(c.Request.Context(), store.TransferFilter{
		ChainID:   chain.ChainID,
		Token:     params.Token,
		Address:   params.Address,
		FromBlock: params.FromBlock,
		ToBlock:   params.ToBlock,
		Limit:     params.Limit,
		Offset:    params.Offset,
	})
	if err != nil {
		respondInternalError(c, err, "Failed to list transfers")
		return
	}

	c.JSON(http.StatusOK, dto.NewTransfersResponse(transfers, params.Offset, params.Limit))
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"service":   "ff-ledger-api",
		"timestamp": time.Now().UTC(),
	})
}

// loadChain resolves the :chain_id parameter, responding when it is invalid or unknown
func (h *handler) loadChain(c *gin.Context) (*domain.Chain, bool) {
	chainID, err := parseChainID(c.Param("chain_id"))
	if err != nil {
		respondBadRequest(c, "Invalid chain id", err)
		return nil, false
	}

	chain, err := h.store.FindChain(c.Request.Context(), chainID)
	if err != nil {
		respondInternalError(c, err, "Failed to get chain", zap.Uint64("chain_id", chainID))
		return nil, false
	}
	if chain == nil {
		respondNotFound(c, "Chain not found", domain.CAIP2(chainID))
		return nil, false
	}
	return chain, true
}
