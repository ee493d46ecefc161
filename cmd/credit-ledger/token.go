package main

import (
	"fmt"

	"github.com/LavaJover/credit-ledger/internal/domain"
	"github.com/LavaJover/credit-ledger/internal/infrastructure/auth"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(tokenCmd)
}

var tokenCmd = &cobra.Command{
	Use:   "token <address>",
	Short: "Issue a bearer token that acts as address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		address, err := domain.ParseAddress(args[0])
		if err != nil {
			return err
		}
		tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
		if err != nil {
			return err
		}
		token, err := tokens.Issue(address)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}
