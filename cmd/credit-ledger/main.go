package main

import (
	"fmt"
	"log"
	"os"

	"github.com/LavaJover/credit-ledger/internal/config"
	"github.com/LavaJover/credit-ledger/internal/infrastructure/logger"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "credit-ledger",
	Short:         "Collateral-backed credit ledger",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the YAML config (defaults to $LEDGER_CONFIG_PATH)")
}

// loadConfig reads the config named by --config or LEDGER_CONFIG_PATH and
// builds the process logger from it.
func loadConfig() (*config.LedgerConfig, *logrus.Logger, error) {
	path := configPath
	if path == "" {
		path = os.Getenv("LEDGER_CONFIG_PATH")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.LogConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("logger: %w", err)
	}
	return cfg, log, nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
