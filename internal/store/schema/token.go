package schema

import (
	"time"
)

// Standard represents the token standard of a contract
type Standard string

const (
	// StandardERC20 represents fungible tokens
	StandardERC20 Standard = "erc20"
	// StandardERC721 represents non-fungible tokens
	StandardERC721 Standard = "erc721"
	// StandardERC1155 represents multi-token contracts
	StandardERC1155 Standard = "erc1155"
)

// Token represents the tokens table - one row per token contract
type Token struct {
	ChainID int64 `gorm:"column:chain_id;primaryKey;autoIncrement:false"`
	// Address is the lowercase contract address
	Address string `gorm:"column:address;primaryKey;type:text"`
	// Standard is decided once by ERC165 introspection and never changes
	Standard Standard `gorm:"column:standard;not null;type:text"`
	Name     string   `gorm:"column:name;not null;default:'';type:text"`
	Symbol   string   `gorm:"column:symbol;not null;default:'';type:text"`
	// Holders is the number of addresses with a present balance (stored as string, unbounded numeric)
	Holders string `gorm:"column:holders;not null;default:0;type:numeric"`
	// TotalSupply is changed by mints and burns only. Repeated uint256 mints can exceed 78 digits.
	TotalSupply string    `gorm:"column:total_supply;not null;default:0;type:numeric"`
	CreatedAt   time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	UpdatedAt   time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Token model
func (Token) TableName() string {
	return "tokens"
}
