package store

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/feral-file/ff-ledger-indexer/internal/domain"
	"github.com/feral-file/ff-ledger-indexer/internal/logger"
	"github.com/feral-file/ff-ledger-indexer/internal/store/schema"
)

const (
	defaultListLimit = 100

	addressFields  = 2
	tokenFields    = 8
	balanceFields  = 6
	transferFields = 11
	removalFields  = 3
)

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// ConfigureConnectionPool configures the connection pool of the underlying *sql.DB.
// Zero settings fall back to the defaults of NormalizeConnectionPoolSettings.
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime =
		NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// NormalizeConnectionPoolSettings applies defaults (20 open, 5 idle, 5m lifetime, 10m idle time)
// and keeps MaxIdleConns within MaxOpenConns.
func NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (int, int, time.Duration, time.Duration) {
	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	return maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime
}

// calculateSafeBatchSize keeps a batch insert under PostgreSQL's limit of 65535 bind
// parameters per statement, with headroom for timestamps and ON CONFLICT clauses.
func calculateSafeBatchSize(totalRecords int, fieldsPerRecord int) int {
	const maxParams = 65535
	const totalHeadroom = 1000

	availableParams := maxParams - totalHeadroom
	safeBatchSize := max(availableParams/fieldsPerRecord, 1)

	if safeBatchSize > totalRecords {
		return max(totalRecords, 1)
	}

	return safeBatchSize
}

// =============================================================================
// Chains
// =============================================================================

// FindChain retrieves a chain with its cursor
func (s *pgStore) FindChain(ctx context.Context, chainID uint64) (*domain.Chain, error) {
	var chain schema.Chain
	err := s.db.WithContext(ctx).Where("chain_id = ?", int64(chainID)).First(&chain).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get chain: %w", err)
	}
	return toDomainChain(&chain), nil
}

// SaveChain inserts a chain or refreshes the currency settings of an existing one
func (s *pgStore) SaveChain(ctx context.Context, chain *domain.Chain) error {
	wrapped := make([]string, 0, len(chain.WrappedNativeCurrencies))
	for _, w := range chain.WrappedNativeCurrencies {
		wrapped = append(wrapped, domain.NormalizeHex(w))
	}

	row := schema.Chain{
		ChainID:                 int64(chain.ChainID),
		Cursor:                  int64(chain.Cursor),
		CursorHash:              chain.CursorHash,
		NativeCurrency:          chain.NativeCurrency,
		WrappedNativeCurrencies: datatypes.NewJSONSlice(wrapped),
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chain_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"native_currency", "wrapped_native_currencies", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save chain: %w", err)
	}
	return nil
}

// ListChains retrieves every seeded chain
func (s *pgStore) ListChains(ctx context.Context) ([]*domain.Chain, error) {
	var rows []schema.Chain
	if err := s.db.WithContext(ctx).Order("chain_id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list chains: %w", err)
	}

	chains := make([]*domain.Chain, 0, len(rows))
	for i := range rows {
		chains = append(chains, toDomainChain(&rows[i]))
	}
	return chains, nil
}

// =============================================================================
// Addresses
// =============================================================================

// FindAddress retrieves an address with its present balances
func (s *pgStore) FindAddress(ctx context.Context, chainID uint64, hash string) (*domain.Address, error) {
	var row schema.Address
	err := s.db.WithContext(ctx).
		Where("chain_id = ? AND hash = ?", int64(chainID), hash).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get address: %w", err)
	}

	var balances []schema.Balance
	err = s.db.WithContext(ctx).
		Where("chain_id = ? AND holder = ?", int64(chainID), hash).
		Order("token ASC, token_id ASC").
		Find(&balances).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get balances of address: %w", err)
	}

	address := &domain.Address{ChainID: chainID, Hash: row.Hash}
	for i := range balances {
		b, err := toDomainBalance(&balances[i])
		if err != nil {
			return nil, err
		}
		address.Balances = append(address.Balances, *b)
	}
	return address, nil
}

// BatchUpsertAddresses creates the addresses that do not exist yet
func (s *pgStore) BatchUpsertAddresses(ctx context.Context, chainID uint64, hashes []string) error {
	return upsertAddresses(s.db.WithContext(ctx), chainID, hashes)
}

func upsertAddresses(tx *gorm.DB, chainID uint64, hashes []string) error {
	if len(hashes) == 0 {
		return nil
	}

	rows := make([]schema.Address, 0, len(hashes))
	for _, h := range hashes {
		rows = append(rows, schema.Address{ChainID: int64(chainID), Hash: h})
	}

	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chain_id"}, {Name: "hash"}},
		DoNothing: true,
	}).CreateInBatches(&rows, calculateSafeBatchSize(len(rows), addressFields)).Error
	if err != nil {
		return fmt.Errorf("failed to upsert addresses: %w", err)
	}
	return nil
}

// =============================================================================
// Tokens
// =============================================================================

// FindToken retrieves a token by contract address
func (s *pgStore) FindToken(ctx context.Context, chainID uint64, address string) (*domain.Token, error) {
	var row schema.Token
	err := s.db.WithContext(ctx).
		Where("chain_id = ? AND address = ?", int64(chainID), address).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get token: %w", err)
	}
	return toDomainToken(&row)
}

// BatchUpsertTokens creates tokens or updates their counters and metadata
func (s *pgStore) BatchUpsertTokens(ctx context.Context, tokens []*domain.Token) error {
	return upsertTokens(s.db.WithContext(ctx), tokens)
}

func upsertTokens(tx *gorm.DB, tokens []*domain.Token) error {
	if len(tokens) == 0 {
		return nil
	}

	rows := make([]schema.Token, 0, len(tokens))
	for _, t := range tokens {
		rows = append(rows, schema.Token{
			ChainID:     int64(t.ChainID),
			Address:     t.Address,
			Standard:    schema.Standard(t.Standard),
			Name:        t.Name,
			Symbol:      t.Symbol,
			Holders:     numericString(t.Holders),
			TotalSupply: numericString(t.TotalSupply),
		})
	}

	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chain_id"}, {Name: "address"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "symbol", "holders", "total_supply", "updated_at"}),
	}).CreateInBatches(&rows, calculateSafeBatchSize(len(rows), tokenFields)).Error
	if err != nil {
		return fmt.Errorf("failed to upsert tokens: %w", err)
	}
	return nil
}

// ListTokens retrieves tokens ordered by address
func (s *pgStore) ListTokens(ctx context.Context, chainID uint64, limit, offset int) ([]*domain.Token, error) {
	var rows []schema.Token
	err := s.db.WithContext(ctx).
		Where("chain_id = ?", int64(chainID)).
		Order("address ASC").
		Limit(listLimit(limit)).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tokens: %w", err)
	}

	tokens := make([]*domain.Token, 0, len(rows))
	for i := range rows {
		t, err := toDomainToken(&rows[i])
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, nil
}

// =============================================================================
// Balances
// =============================================================================

// FindBalance retrieves one present balance
func (s *pgStore) FindBalance(ctx context.Context, chainID uint64, holder, token, tokenID string) (*domain.Balance, error) {
	var row schema.Balance
	err := s.db.WithContext(ctx).
		Where("chain_id = ? AND holder = ? AND token = ? AND token_id = ?", int64(chainID), holder, token, tokenID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}
	return toDomainBalance(&row)
}

// ListBalancesByHolder retrieves the present balances of a holder
func (s *pgStore) ListBalancesByHolder(ctx context.Context, chainID uint64, holder string, limit, offset int) ([]domain.Balance, error) {
	var rows []schema.Balance
	err := s.db.WithContext(ctx).
		Where("chain_id = ? AND holder = ?", int64(chainID), holder).
		Order("token ASC, token_id ASC").
		Limit(listLimit(limit)).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list balances: %w", err)
	}

	balances := make([]domain.Balance, 0, len(rows))
	for i := range rows {
		b, err := toDomainBalance(&rows[i])
		if err != nil {
			return nil, err
		}
		balances = append(balances, *b)
	}
	return balances, nil
}

func upsertBalances(tx *gorm.DB, balances []domain.Balance) error {
	if len(balances) == 0 {
		return nil
	}

	rows := make([]schema.Balance, 0, len(balances))
	for _, b := range balances {
		rows = append(rows, schema.Balance{
			ChainID: int64(b.ChainID),
			Holder:  b.Holder,
			Token:   b.Token,
			TokenID: b.TokenID,
			Amount:  numericString(b.Amount),
		})
	}

	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chain_id"}, {Name: "holder"}, {Name: "token"}, {Name: "token_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount", "updated_at"}),
	}).CreateInBatches(&rows, calculateSafeBatchSize(len(rows), balanceFields)).Error
	if err != nil {
		return fmt.Errorf("failed to upsert balances: %w", err)
	}
	return nil
}

func deleteBalances(tx *gorm.DB, chainID uint64, balances []domain.Balance) error {
	if len(balances) == 0 {
		return nil
	}

	batchSize := calculateSafeBatchSize(len(balances), removalFields)
	for start := 0; start < len(balances); start += batchSize {
		end := min(start+batchSize, len(balances))

		keys := make([][]any, 0, end-start)
		for _, b := range balances[start:end] {
			keys = append(keys, []any{b.Holder, b.Token, b.TokenID})
		}

		err := tx.Where("chain_id = ? AND (holder, token, token_id) IN ?", int64(chainID), keys).
			Delete(&schema.Balance{}).Error
		if err != nil {
			return fmt.Errorf("failed to delete balances: %w", err)
		}
	}
	return nil
}

// =============================================================================
// Transfers
// =============================================================================

// AppendTransfers inserts transfer records, ignoring records already stored
func (s *pgStore) AppendTransfers(ctx context.Context, transfers []domain.Transfer) error {
	return insertTransfers(s.db.WithContext(ctx), transfers)
}

func insertTransfers(tx *gorm.DB, transfers []domain.Transfer) error {
	if len(transfers) == 0 {
		return nil
	}

	rows := make([]schema.Transfer, 0, len(transfers))
	for _, t := range transfers {
		row := schema.Transfer{
			ChainID:     int64(t.ChainID),
			BlockNumber: int64(t.BlockNumber),
			Token:       t.Token,
			FromAddress: t.From,
			ToAddress:   t.To,
			TxHash:      t.TxHash,
			LogIndex:    int64(t.LogIndex),
			BatchIndex:  t.BatchIndex,
			TokenID:     t.TokenID,
		}
		if t.Amount != nil {
			amount := t.Amount.String()
			row.Amount = &amount
		}
		rows = append(rows, row)
	}

	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chain_id"}, {Name: "tx_hash"}, {Name: "log_index"}, {Name: "batch_index"}},
		DoNothing: true,
	}).CreateInBatches(&rows, calculateSafeBatchSize(len(rows), transferFields)).Error
	if err != nil {
		return fmt.Errorf("failed to append transfers: %w", err)
	}
	return nil
}

// ListTransfers retrieves transfers matching the filter, newest first
func (s *pgStore) ListTransfers(ctx context.Context, filter TransferFilter) ([]domain.Transfer, error) {
	query := s.db.WithContext(ctx).Where("chain_id = ?", int64(filter.ChainID))
	if filter.Token != "" {
		query = query.Where("token = ?", filter.Token)
	}
	if filter.Address != "" {
		query = query.Where("(from_address = ? OR to_address = ?)", filter.Address, filter.Address)
	}
	if filter.FromBlock != nil {
		query = query.Where("block_number >= ?", int64(*filter.FromBlock))
	}
	if filter.ToBlock != nil {
		query = query.Where("block_number <= ?", int64(*filter.ToBlock))
	}

	var rows []schema.Transfer
	err := query.
		Order("block_number DESC, log_index DESC, batch_index DESC").
		Limit(listLimit(filter.Limit)).
		Offset(filter.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}

	transfers := make([]domain.Transfer, 0, len(rows))
	for i := range rows {
		t, err := toDomainTransfer(&rows[i])
		if err != nil {
			return nil, err
		}
		transfers = append(transfers, *t)
	}
	return transfers, nil
}

// =============================================================================
// Block commit
// =============================================================================

// CommitBlock persists a block and advances the cursor in one transaction
func (s *pgStore) CommitBlock(ctx context.Context, commit domain.BlockCommit) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. Advance the cursor first so a block that does not follow it writes nothing
		if err := advanceCursor(tx, commit); err != nil {
			return err
		}

		// 2. Addresses and tokens before the balances referencing them
		if err := upsertAddresses(tx, commit.ChainID, commit.Addresses); err != nil {
			return err
		}
		if err := upsertTokens(tx, commit.Tokens); err != nil {
			return err
		}

		// 3. Balances
		if err := upsertBalances(tx, commit.Balances); err != nil {
			return err
		}
		if err := deleteBalances(tx, commit.ChainID, commit.RemovedBalances); err != nil {
			return err
		}

		// 4. Transfers
		return insertTransfers(tx, commit.Transfers)
	})
	if err != nil {
		return err
	}

	logger.DebugCtx(ctx, "Committed block",
		zap.Uint64("chain_id", commit.ChainID),
		zap.Uint64("block_number", commit.BlockNumber),
		zap.Int("tokens", len(commit.Tokens)),
		zap.Int("balances", len(commit.Balances)),
		zap.Int("removed_balances", len(commit.RemovedBalances)),
		zap.Int("transfers", len(commit.Transfers)))

	return nil
}

func advanceCursor(tx *gorm.DB, commit domain.BlockCommit) error {
	number := int64(commit.BlockNumber)

	query := tx.Model(&schema.Chain{}).Where("chain_id = ?", int64(commit.ChainID))
	if commit.BlockNumber == 0 {
		query = query.Where("cursor_hash = '' AND cursor = 0")
	} else {
		query = query.Where("((cursor_hash = '' AND cursor = ?) OR (cursor_hash <> '' AND cursor = ?))", number, number-1)
	}

	result := query.Updates(map[string]any{
		"cursor":      number,
		"cursor_hash": commit.BlockHash,
		"updated_at":  time.Now(),
	})
	if result.Error != nil {
		return fmt.Errorf("failed to advance cursor: %w", result.Error)
	}
	if result.RowsAffected == 1 {
		return nil
	}

	var count int64
	if err := tx.Model(&schema.Chain{}).Where("chain_id = ?", int64(commit.ChainID)).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check chain: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("%w: %s", domain.ErrChainNotFound, domain.CAIP2(commit.ChainID))
	}
	return fmt.Errorf("%w: block %d", domain.ErrCursorConflict, commit.BlockNumber)
}

// =============================================================================
// Mapping
// =============================================================================

func listLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	return limit
}

func numericString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func parseNumeric(column, v string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(v, 10)
	if !ok {
		return nil, fmt.Errorf("invalid %s value: %q", column, v)
	}
	return n, nil
}

func toDomainChain(row *schema.Chain) *domain.Chain {
	return &domain.Chain{
		ChainID:                 uint64(row.ChainID),
		Cursor:                  uint64(row.Cursor),
		CursorHash:              row.CursorHash,
		NativeCurrency:          row.NativeCurrency,
		WrappedNativeCurrencies: []string(row.WrappedNativeCurrencies),
		UpdatedAt:               row.UpdatedAt,
	}
}

func toDomainToken(row *schema.Token) (*domain.Token, error) {
	holders, err := parseNumeric("holders", row.Holders)
	if err != nil {
		return nil, err
	}
	supply, err := parseNumeric("total_supply", row.TotalSupply)
	if err != nil {
		return nil, err
	}
	return &domain.Token{
		ChainID:     uint64(row.ChainID),
		Address:     row.Address,
		Standard:    domain.Standard(row.Standard),
		Name:        row.Name,
		Symbol:      row.Symbol,
		Holders:     holders,
		TotalSupply: supply,
	}, nil
}

func toDomainBalance(row *schema.Balance) (*domain.Balance, error) {
	amount, err := parseNumeric("amount", row.Amount)
	if err != nil {
		return nil, err
	}
	return &domain.Balance{
		ChainID: uint64(row.ChainID),
		Holder:  row.Holder,
		Token:   row.Token,
		TokenID: row.TokenID,
		Amount:  amount,
	}, nil
}

func toDomainTransfer(row *schema.Transfer) (*domain.Transfer, error) {
	t := &domain.Transfer{
		ChainID:     uint64(row.ChainID),
		BlockNumber: uint64(row.BlockNumber),
		Token:       row.Token,
		From:        row.FromAddress,
		To:          row.ToAddress,
		TxHash:      row.TxHash,
		LogIndex:    uint(row.LogIndex),
		BatchIndex:  row.BatchIndex,
		TokenID:     row.TokenID,
	}
	if row.Amount != nil {
		amount, err := parseNumeric("amount", *row.Amount)
		if err != nil {
			return nil, err
		}
		t.Amount = amount
	}
	return t, nil
}
