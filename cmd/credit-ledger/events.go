package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/LavaJover/credit-ledger/internal/app/setup"
	publisher "github.com/LavaJover/credit-ledger/internal/infrastructure/kafka"
	"github.com/spf13/cobra"
)

var eventsGroup string

func init() {
	eventsTailCmd.Flags().StringVar(&eventsGroup, "group", "credit-ledger-tail", "kafka consumer group")
	eventsCmd.AddCommand(eventsTailCmd)
	rootCmd.AddCommand(eventsCmd)
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect published ledger events",
}

var eventsTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print ledger events from the events topic as they arrive",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		sub := publisher.NewDefaultKafkaSubscriber(setup.KafkaBrokers(cfg))
		msgs, errc := sub.Subscribe(ctx, cfg.KafkaService.Topic, eventsGroup)
		for msg := range msgs {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", msg.Key, msg.Value)
		}
		select {
		case err := <-errc:
			return err
		default:
			return nil
		}
	},
}
