// Command seed is the manual seeding CLI.
//
// Usage:
//
//	sportseed-cli list
//	sportseed-cli run schedule --season 2025
//	sportseed-cli run --all
//	sportseed-cli infer https://api.sportsdata.io/v3/nfl/scores/json/Teams --key TeamID
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"sportseed/internal/client"
	"sportseed/internal/config"
	"sportseed/internal/datasets"
	"sportseed/internal/repository"
	"sportseed/internal/seeder"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	})

	root := &cobra.Command{
		Use:   "sportseed-cli",
		Short: "Manual seeding CLI for sportseed",
	}

	root.AddCommand(listCmd())
	root.AddCommand(runCmd())
	root.AddCommand(inferCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered datasets",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			reg := datasets.Registry(cfg)
			for _, name := range datasets.Names(reg) {
				entry := reg[name]
				fmt.Printf("%-12s -> %s\n", name, entry.Table)
			}
			return nil
		},
	}
}

func runCmd() *cobra.Command {
	var season int
	var all bool

	cmd := &cobra.Command{
		Use:   "run [dataset]",
		Short: "Seed one dataset, or all with --all",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all && len(args) != 1 {
				return fmt.Errorf("expected exactly one dataset name, or --all")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if season > 0 {
				cfg.Season = season
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
			defer cancel()

			db, err := repository.NewDatabase(ctx, repository.Config{
				Host:     cfg.DatabaseHost,
				Port:     strconv.Itoa(cfg.DatabasePort),
				User:     cfg.DatabaseUser,
				Password: cfg.DatabasePassword,
				Database: cfg.DatabaseName,
				SSLMode:  cfg.DatabaseSSLMode,
			})
			if err != nil {
				return err
			}
			defer db.Close()

			keyed := seeder.New(client.NewClient(cfg.SportsDataAPIKey, cfg.SportsDataTimeout, nil), db.Pool, cfg.CommitInterval)
			keyless := seeder.New(client.NewClient("", cfg.SportsDataTimeout, nil), db.Pool, cfg.CommitInterval)
			reg := datasets.Registry(cfg)

			names := args
			if all {
				names = datasets.Names(reg)
			}

			for _, name := range names {
				entry, ok := reg[name]
				if !ok {
					return fmt.Errorf("unknown dataset %q, try the list command", name)
				}

				sdr := keyed
				if entry.Keyless {
					sdr = keyless
				}

				start := time.Now()
				outcome, err := sdr.SeedFromAPI(ctx, entry.URL(cfg), nil, entry.Dataset)
				if err != nil {
					return fmt.Errorf("seeding %s failed: %w", name, err)
				}

				fmt.Printf("%s: %s (%s)\n", name, outcome.Summary(), time.Since(start).Round(time.Millisecond))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&season, "season", 0, "Season year (defaults to configured season)")
	cmd.Flags().BoolVar(&all, "all", false, "Seed every registered dataset")
	return cmd
}

func inferCmd() *cobra.Command {
	var key []string

	cmd := &cobra.Command{
		Use:   "infer <url>",
		Short: "Fetch a sample record and print the inferred column spec",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()

			sourceClient := client.NewClient(cfg.SportsDataAPIKey, cfg.SportsDataTimeout, nil)
			records, err := sourceClient.FetchRecords(ctx, args[0], nil)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				return fmt.Errorf("source returned no records to infer from")
			}

			spec := seeder.InferColumns(records[0], seeder.PrimaryKey(key))
			for _, col := range spec.Columns {
				fmt.Printf("%-24s %s\n", col.Name, col.Type)
			}
			if len(spec.PrimaryKey) > 0 {
				fmt.Printf("PRIMARY KEY (%s)\n", strings.Join(spec.PrimaryKey, ", "))
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&key, "key", nil, "Primary key column(s) for the inferred spec")
	return cmd
}
