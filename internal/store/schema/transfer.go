package schema

import (
	"time"
)

// Transfer represents the transfers table - an append-only record per transfer-like event
type Transfer struct {
	ID          int64  `gorm:"column:id;primaryKey;autoIncrement"`
	ChainID     int64  `gorm:"column:chain_id;not null;uniqueIndex:idx_transfers_event,priority:1"`
	BlockNumber int64  `gorm:"column:block_number;not null"`
	Token       string `gorm:"column:token;not null;type:text"`
	FromAddress string `gorm:"column:from_address;not null;type:text"`
	ToAddress   string `gorm:"column:to_address;not null;type:text"`
	TxHash      string `gorm:"column:tx_hash;not null;type:text;uniqueIndex:idx_transfers_event,priority:2"`
	LogIndex    int64  `gorm:"column:log_index;not null;uniqueIndex:idx_transfers_event,priority:3"`
	// BatchIndex distinguishes the ids of one TransferBatch event
	BatchIndex int       `gorm:"column:batch_index;not null;default:0;uniqueIndex:idx_transfers_event,priority:4"`
	TokenID    string    `gorm:"column:token_id;not null;default:'';type:text"`
	Amount     *string   `gorm:"column:amount;type:numeric(78,0)"`
	CreatedAt  time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Transfer model
func (Transfer) TableName() string {
	return "transfers"
}
