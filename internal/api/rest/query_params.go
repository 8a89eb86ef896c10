package rest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"

	"github.com/feral-file/ff-ledger-indexer/internal/domain"
)

const MAX_PAGE_SIZE = 100

// PaginationQueryParams holds limit and offset
type PaginationQueryParams struct {
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}

// ListTransfersQueryParams holds query parameters for GET /chains/:chain_id/transfers
type ListTransfersQueryParams struct {
	// Filters
	Token     string  `form:"token"`
	Address   string  `form:"address"`
	FromBlock *uint64 `form:"from_block"`
	ToBlock   *uint64 `form:"to_block"`

	PaginationQueryParams
}

// ParsePaginationQuery parses limit and offset
func ParsePaginationQuery(c *gin.Context) (*PaginationQueryParams, error) {
	var params PaginationQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return nil, err
	}
	if err := params.normalize(); err != nil {
		return nil, err
	}
	return &params, nil
}

// ParseListTransfersQuery parses query parameters for GET /chains/:chain_id/transfers
func ParseListTransfersQuery(c *gin.Context) (*ListTransfersQueryParams, error) {
	var params ListTransfersQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return nil, err
	}
	if err := params.normalize(); err != nil {
		return nil, err
	}

	if params.Token != "" {
		token, err := parseAddress(params.Token)
		if err != nil {
			return nil, fmt.Errorf("token: %w", err)
		}
		params.Token = token
	}
	if params.Address != "" {
		address, err := parseAddress(params.Address)
		if err != nil {
			return nil, fmt.Errorf("address: %w", err)
		}
		params.Address = address
	}
	if params.FromBlock != nil && params.ToBlock != nil && *params.FromBlock > *params.ToBlock {
		return nil, fmt.Errorf("from_block %d is after to_block %d", *params.FromBlock, *params.ToBlock)
	}

	return &params, nil
}

func (p *PaginationQueryParams) normalize() error {
	if p.Limit <= 0 {
		return fmt.Errorf("limit must be positive")
	}
	if p.Offset < 0 {
		return fmt.Errorf("offset must not be negative")
	}
	// Cap limit
	if p.Limit > MAX_PAGE_SIZE {
		p.Limit = MAX_PAGE_SIZE
	}
	return nil
}

// parseChainID accepts a decimal chain id or its CAIP-2 form
func parseChainID(raw string) (uint64, error) {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "eip155:")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: invalid chain id %q", domain.ErrInvalidArgument, raw)
	}
	return id, nil
}

// parseAddress validates a hex address and returns its normalized form
func parseAddress(raw string) (string, error) {
	if !common.IsHexAddress(raw) {
		return "", fmt.Errorf("%w: invalid address %q", domain.ErrInvalidArgument, raw)
	}
	return domain.NormalizeAddress(common.HexToAddress(raw)), nil
}
