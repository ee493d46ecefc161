package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/LavaJover/credit-ledger/internal/delivery/http/handlers"
	"github.com/spf13/cobra"
)

var queryAddress string

func init() {
	queryCmd.PersistentFlags().StringVar(&queryAddress, "addr", "http://localhost:8081", "query API base URL")
	queryCmd.AddCommand(queryLoanCmd, queryReserveCmd, queryBalanceCmd)
	rootCmd.AddCommand(queryCmd)
}

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Read state from a running ledger",
}

var queryLoanCmd = &cobra.Command{
	Use:   "loan <id>",
	Short: "Show a loan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("loan id: %w", err)
		}
		client, err := handlers.NewHTTPQueryClient(queryAddress)
		if err != nil {
			return err
		}
		loan, err := client.GetLoan(cmd.Context(), id)
		if err != nil {
			return err
		}
		return printJSON(cmd, loan)
	},
}

var queryReserveCmd = &cobra.Command{
	Use:   "reserve",
	Short: "Show pool balance, reserve and supply",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := handlers.NewHTTPQueryClient(queryAddress)
		if err != nil {
			return err
		}
		reserve, err := client.Reserve(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd, reserve)
	},
}

var queryBalanceCmd = &cobra.Command{
	Use:   "balance <address>",
	Short: "Show a credit token balance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := handlers.NewHTTPQueryClient(queryAddress)
		if err != nil {
			return err
		}
		balance, err := client.Balance(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, balance)
	},
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
