package schema

import (
	"time"
)

// Balance represents the balances table - a row exists only while the holder owns something
type Balance struct {
	ChainID int64  `gorm:"column:chain_id;primaryKey;autoIncrement:false"`
	Holder  string `gorm:"column:holder;primaryKey;type:text"`
	Token   string `gorm:"column:token;primaryKey;type:text"`
	// TokenID is empty for fungible tokens
	TokenID string `gorm:"column:token_id;primaryKey;type:text"`
	// Amount is always 1 for ERC721 tokens
	Amount    string    `gorm:"column:amount;not null;type:numeric"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Balance model
func (Balance) TableName() string {
	return "balances"
}
