package main

import (
	"context"
	"fmt"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/drfirst/go-edi/internal/infrastructure/postgres"
	"github.com/drfirst/go-edi/internal/infrastructure/redpanda"
)

func (c *cli) payersCmd() *cobra.Command {
	var asYAML bool

	cmd := &cobra.Command{
		Use:   "payers",
		Short: "List the payer directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			payers, err := cfg.Directory()
			if err != nil {
				return err
			}

			if asYAML {
				data, err := payers.Marshal()
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PAYER ID\tNAME\tNAME ONLY\tREQUIRED")
			for _, p := range payers.All() {
				fmt.Fprintf(w, "%s\t%s\t%t\t%v\n", p.PayerID, p.DisplayName, p.AllowsNameOnly, p.RequiredFields)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print the directory as YAML")
	return cmd
}

func (c *cli) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the transaction log, outbox and inbox tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			pool, err := pgxpool.New(ctx, cfg.Database.URL)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer pool.Close()

			if err := postgres.Migrate(ctx, pool); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema applied")
			return nil
		},
	}
}

func (c *cli) topicsCmd() *cobra.Command {
	var (
		ensure bool
		group  string
	)

	cmd := &cobra.Command{
		Use:   "topics",
		Short: "List Redpanda topics, create missing ones or report consumer lag",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			admin, err := redpanda.NewAdmin(cfg.Kafka.Brokers, nil)
			if err != nil {
				return err
			}
			defer admin.Close()

			if ensure {
				if err := admin.EnsureTopics(ctx); err != nil {
					return err
				}
			}

			if group != "" {
				lag, err := admin.GetConsumerGroupLag(ctx, group)
				if err != nil {
					return err
				}
				return printLag(cmd, lag)
			}

			topics, err := admin.ListTopics(ctx)
			if err != nil {
				return err
			}
			sort.Strings(topics)
			for _, t := range topics {
				fmt.Fprintln(cmd.OutOrStdout(), t)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&ensure, "ensure", false, "create the gateway topics when missing")
	cmd.Flags().StringVar(&group, "lag", "", "report lag for this consumer group")
	return cmd
}

func printLag(cmd *cobra.Command, lag map[string]map[int32]int64) error {
	topics := make([]string, 0, len(lag))
	for t := range lag {
		topics = append(topics, t)
	}
	sort.Strings(topics)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TOPIC\tPARTITION\tLAG")
	for _, t := range topics {
		parts := make([]int32, 0, len(lag[t]))
		for p := range lag[t] {
			parts = append(parts, p)
		}
		sort.Slice(parts, func(i, j int) bool { return parts[i] < parts[j] })
		for _, p := range parts {
			fmt.Fprintf(w, "%s\t%d\t%d\n", t, p, lag[t][p])
		}
	}
	return w.Flush()
}
