package schema

import (
	"time"

	"gorm.io/datatypes"
)

// Chain represents the chains table - one row per tracked network with its indexing progress
type Chain struct {
	// ChainID is the EIP-155 chain id
	ChainID int64 `gorm:"column:chain_id;primaryKey;autoIncrement:false"`
	// Cursor is the last fully processed block, or the start block while CursorHash is empty
	Cursor int64 `gorm:"column:cursor;not null;default:0"`
	// CursorHash is the hash of the cursor block
	CursorHash string `gorm:"column:cursor_hash;not null;default:'';type:text"`
	// NativeCurrency is the symbol of the chain's native currency (e.g., "ETH")
	NativeCurrency string `gorm:"column:native_currency;not null;default:'';type:text"`
	// WrappedNativeCurrencies lists the contracts whose Deposit/Withdrawal events are indexed
	WrappedNativeCurrencies datatypes.JSONSlice[string] `gorm:"column:wrapped_native_currencies;not null;type:jsonb"`
	// CreatedAt is the timestamp when the chain was seeded
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp of the last cursor advance
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Chain model
func (Chain) TableName() string {
	return "chains"
}
