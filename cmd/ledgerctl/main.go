package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/feral-file/ff-ledger-indexer/internal/config"
	"github.com/feral-file/ff-ledger-indexer/internal/ctl"
	"github.com/feral-file/ff-ledger-indexer/internal/logger"
	"github.com/feral-file/ff-ledger-indexer/internal/store"
)

var (
	configFile string
	envPath    string
)

var rootCmd = &cobra.Command{
	Use:           "ledgerctl",
	Short:         "Operate the ledger indexer database",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create chain records for the configured chains",
	Long: `Creates a chain record for every configured chain that has none, starting at its start_block.
Existing records keep their cursor and pick up the configured native and wrapped currencies.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, st, err := open(cmd.Context())
		if err != nil {
			return err
		}
		return ctl.Seed(cmd.Context(), st, cfg.Chains, cmd.OutOrStdout())
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the cursor of every seeded chain",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, st, err := open(cmd.Context())
		if err != nil {
			return err
		}
		return ctl.Status(cmd.Context(), st, cmd.OutOrStdout())
	},
}

var (
	balancesLimit  int
	balancesOffset int
)

var balancesCmd = &cobra.Command{
	Use:   "balances <chain_id> <address>",
	Short: "Show the present balances of an address",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		chainID, err := strconv.ParseUint(strings.TrimPrefix(args[0], "eip155:"), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid chain id %q", args[0])
		}
		if balancesLimit <= 0 || balancesOffset < 0 {
			return fmt.Errorf("limit must be positive and offset not negative")
		}

		_, st, err := open(cmd.Context())
		if err != nil {
			return err
		}
		return ctl.Balances(cmd.Context(), st, chainID, args[1], balancesLimit, balancesOffset, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&envPath, "env", "config/", "Path to environment files")

	balancesCmd.Flags().IntVar(&balancesLimit, "limit", 50, "Maximum number of balances to show")
	balancesCmd.Flags().IntVar(&balancesOffset, "offset", 0, "Number of balances to skip")

	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(balancesCmd)
}

// open loads the configuration and connects to the database
func open(ctx context.Context) (*config.CtlConfig, store.Store, error) {
	cfg, err := config.LoadCtlConfig(configFile, envPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "ledgerctl",
		},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := store.ConfigureConnectionPool(db, 2, 1, time.Minute, time.Minute); err != nil {
		return nil, nil, err
	}

	return cfg, store.NewPGStore(db), nil
}

func main() {
	config.ChdirRepoRoot()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logger.Flush(2 * time.Second)

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
