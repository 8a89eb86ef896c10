package schema

import (
	"time"
)

// Address represents the addresses table - every account seen as sender, receiver, operator or contract
type Address struct {
	ChainID int64 `gorm:"column:chain_id;primaryKey;autoIncrement:false"`
	// Hash is the lowercase 0x-prefixed address
	Hash      string    `gorm:"column:hash;primaryKey;type:text"`
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Address model
func (Address) TableName() string {
	return "addresses"
}
