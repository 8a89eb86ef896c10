package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/feral-file/ff-ledger-indexer/internal/domain"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`     // Maximum number of open connections to the database
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`     // Maximum number of idle connections in the pool
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`  // Maximum amount of time a connection may be reused (e.g., "5m", "1h")
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"` // Maximum amount of time a connection may be idle (e.g., "10m", "30m")
}

// NATSConfig holds NATS JetStream configuration. An empty URL disables block notifications.
type NATSConfig struct {
	URL            string        `mapstructure:"url"`
	StreamName     string        `mapstructure:"stream_name"`
	SubjectPrefix  string        `mapstructure:"subject_prefix"`
	MaxReconnects  int           `mapstructure:"max_reconnects"`
	ReconnectWait  time.Duration `mapstructure:"reconnect_wait"`
	ConnectionName string        `mapstructure:"connection_name"`
	PublishTimeout time.Duration `mapstructure:"publish_timeout"`
}

// ChainConfig holds the configuration of one tracked EVM chain
type ChainConfig struct {
	ChainID      uint64 `mapstructure:"chain_id"`
	RPCURL       string `mapstructure:"rpc_url"`
	WebSocketURL string `mapstructure:"websocket_url"`
	// NativeCurrency is the symbol of the native currency, e.g. "ETH"
	NativeCurrency string `mapstructure:"native_currency"`
	// WrappedNativeCurrencies are the contracts whose Deposit/Withdrawal events are indexed
	WrappedNativeCurrencies []string `mapstructure:"wrapped_native_currencies"`
	// MulticallAddress is the Multicall3 deployment; "none" falls back to JSON-RPC batches
	MulticallAddress string `mapstructure:"multicall_address"`
	// StartBlock is the first block indexed for a freshly seeded chain
	StartBlock uint64 `mapstructure:"start_block"`
	// Standards lists the enabled token standards; empty enables all
	Standards        []string      `mapstructure:"standards"`
	PollInterval     time.Duration `mapstructure:"poll_interval"`
	UseBlockReceipts bool          `mapstructure:"use_block_receipts"`
	// RequestsPerSecond caps node requests for the chain; zero means unlimited
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	RequestBurst      int     `mapstructure:"request_burst"`
}

// IndexerSettings holds the block loop settings shared by every chain runner
type IndexerSettings struct {
	// BlockTimeout bounds one attempt at processing a block
	BlockTimeout time.Duration `mapstructure:"block_timeout"`
	// RetryInitialInterval and RetryMaxInterval shape the exponential backoff between attempts
	RetryInitialInterval time.Duration `mapstructure:"retry_initial_interval"`
	RetryMaxInterval     time.Duration `mapstructure:"retry_max_interval"`
	// RetryMaxElapsed stops retrying a block after this long; zero retries forever
	RetryMaxElapsed time.Duration `mapstructure:"retry_max_elapsed"`
	ReceiptWorkers  int           `mapstructure:"receipt_workers"`
	TokenCacheSize  int           `mapstructure:"token_cache_size"`
	// MismatchPolicy is "topic" or "resolved"
	MismatchPolicy string `mapstructure:"mismatch_policy"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // in seconds
	IdleTimeout  int    `mapstructure:"idle_timeout"`  // in seconds
	// CORSOrigins is a comma separated list in the environment
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// BlockHeadConfig holds the chain head cache windows used by the API
type BlockHeadConfig struct {
	TTL         time.Duration `mapstructure:"ttl"`
	StaleWindow time.Duration `mapstructure:"stale_window"`
}

// IndexerConfig holds configuration for ledger-indexer
type IndexerConfig struct {
	BaseConfig `mapstructure:",squash"`
	Database   DatabaseConfig  `mapstructure:"database"`
	NATS       NATSConfig      `mapstructure:"nats"`
	Indexer    IndexerSettings `mapstructure:"indexer"`
	Chains     []ChainConfig   `mapstructure:"chains"`
}

// APIConfig holds configuration for the API server
type APIConfig struct {
	BaseConfig `mapstructure:",squash"`
	Server     ServerConfig    `mapstructure:"server"`
	Database   DatabaseConfig  `mapstructure:"database"`
	BlockHead  BlockHeadConfig `mapstructure:"block_head"`
	Chains     []ChainConfig   `mapstructure:"chains"`
}

// CtlConfig holds configuration for ledgerctl
type CtlConfig struct {
	BaseConfig `mapstructure:",squash"`
	Database   DatabaseConfig `mapstructure:"database"`
	Chains     []ChainConfig  `mapstructure:"chains"`
}

// LoadIndexerConfig loads configuration for ledger-indexer
func LoadIndexerConfig(configFile string, envPath string) (*IndexerConfig, error) {
	v := configureViper("ledger-indexer", configFile, envPath)

	// Set defaults
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", "2s")
	v.SetDefault("nats.stream_name", "LEDGER_BLOCKS")
	v.SetDefault("nats.subject_prefix", "ledger")
	v.SetDefault("nats.connection_name", "ledger-indexer")
	v.SetDefault("nats.publish_timeout", "5s")
	v.SetDefault("indexer.block_timeout", "2m")
	v.SetDefault("indexer.retry_initial_interval", "1s")
	v.SetDefault("indexer.retry_max_interval", "1m")
	v.SetDefault("indexer.retry_max_elapsed", 0)
	v.SetDefault("indexer.receipt_workers", 8)
	v.SetDefault("indexer.token_cache_size", 10000)
	v.SetDefault("indexer.mismatch_policy", "topic")

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var config IndexerConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateChains(config.Chains, true); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadAPIConfig loads configuration for the API server
func LoadAPIConfig(configFile string, envPath string) (*APIConfig, error) {
	v := configureViper("api", configFile, envPath)

	// Set defaults
	v.SetDefault("debug", false)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.idle_timeout", 120)
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("block_head.ttl", "12s")
	v.SetDefault("block_head.stale_window", "1m")

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var config APIConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateChains(config.Chains, false); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadCtlConfig loads configuration for ledgerctl
func LoadCtlConfig(configFile string, envPath string) (*CtlConfig, error) {
	v := configureViper("ledgerctl", configFile, envPath)

	// Set defaults
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var config CtlConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateChains(config.Chains, false); err != nil {
		return nil, err
	}

	return &config, nil
}

// EnabledStandards returns the set of standards indexed for the chain
func (c *ChainConfig) EnabledStandards() (map[domain.Standard]bool, error) {
	enabled := make(map[domain.Standard]bool, 3)
	if len(c.Standards) == 0 {
		enabled[domain.StandardERC20] = true
		enabled[domain.StandardERC721] = true
		enabled[domain.StandardERC1155] = true
		return enabled, nil
	}

	for _, s := range c.Standards {
		std, err := domain.ParseStandard(s)
		if err != nil {
			return nil, fmt.Errorf("chain %d: %w", c.ChainID, err)
		}
		enabled[std] = true
	}
	return enabled, nil
}

// MulticallTarget returns the Multicall3 address the chain client should use.
// Unset means the canonical deployment and "none" means plain JSON-RPC batches.
func (c *ChainConfig) MulticallTarget() string {
	switch strings.ToLower(strings.TrimSpace(c.MulticallAddress)) {
	case "":
		return domain.MULTICALL3_ADDRESS
	case "none":
		return ""
	}
	return c.MulticallAddress
}

// FindChain returns the configuration of a chain id
func FindChain(chains []ChainConfig, chainID uint64) (*ChainConfig, bool) {
	for i := range chains {
		if chains[i].ChainID == chainID {
			return &chains[i], true
		}
	}
	return nil, false
}

func validateChains(chains []ChainConfig, requireRPC bool) error {
	seen := make(map[uint64]struct{}, len(chains))
	for i := range chains {
		c := &chains[i]
		if c.ChainID == 0 {
			return fmt.Errorf("chains[%d].chain_id is required", i)
		}
		if _, dup := seen[c.ChainID]; dup {
			return fmt.Errorf("chain %d is configured twice", c.ChainID)
		}
		seen[c.ChainID] = struct{}{}

		if requireRPC && c.RPCURL == "" {
			return fmt.Errorf("chain %d: rpc_url is required", c.ChainID)
		}
		if _, err := c.EnabledStandards(); err != nil {
			return err
		}
	}
	return nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			// Config file not found, use environment variables
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	// Load environment variables
	loadEnv(envPath, service)

	// Set config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		v.AddConfigPath("config/")
	}

	// Set environment variables
	v.SetEnvPrefix("FF_LEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind all environment variables
	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all scalar keys.
// This is required for viper to map env vars to config struct fields when no config file exists.
// Chains are lists and can only be configured through the config file.
func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"sentry_dsn",
		// Database
		"database.host",
		"database.port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"database.conn_max_idle_time",
		// NATS
		"nats.url",
		"nats.stream_name",
		"nats.subject_prefix",
		"nats.max_reconnects",
		"nats.reconnect_wait",
		"nats.connection_name",
		"nats.publish_timeout",
		// Indexer
		"indexer.block_timeout",
		"indexer.retry_initial_interval",
		"indexer.retry_max_interval",
		"indexer.retry_max_elapsed",
		"indexer.receipt_workers",
		"indexer.token_cache_size",
		"indexer.mismatch_policy",
		// Server
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",
		"server.idle_timeout",
		"server.cors_origins",
		// Block head cache
		"block_head.ttl",
		"block_head.stale_window",
	}

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	// Always try shared base first, then local, then optional per-service local.
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // Overload lets later files override earlier ones
	}
}

// ChdirRepoRoot changes the current working directory to the repository root
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for range 5 {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
