package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/clinsight-ai/clinsight/pkg/config"
	"github.com/clinsight-ai/clinsight/pkg/tracker"
)

func newCostCmd() *cobra.Command {
	var (
		configPath string
		date       string
	)

	cmd := &cobra.Command{
		Use:   "cost",
		Short: "Show estimated assistant costs for one day",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			day := time.Now().UTC()
			if date != "" {
				day, err = time.Parse("2006-01-02", date)
				if err != nil {
					return fmt.Errorf("invalid --date (use YYYY-MM-DD): %w", err)
				}
			}

			tr, err := tracker.New(cfg.DBPath)
			if err != nil {
				return err
			}
			defer func() { _ = tr.Close() }()

			summary, err := tr.DailyCosts(context.Background(), day)
			if err != nil {
				return err
			}

			if summary.Requests == 0 {
				fmt.Printf("No usage recorded on %s.\n", summary.Date)
				return nil
			}

			fmt.Printf("Costs for %s: %d requests, %d tokens, $%.4f estimated\n\n",
				summary.Date, summary.Requests, summary.TokensUsed, summary.EstimatedCost)

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "MODEL\tREQUESTS\tINPUT\tOUTPUT\tTOTAL\tEST. COST")
			for _, m := range summary.ByModel {
				fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t$%.4f\n",
					m.Model, m.RequestCount, m.InputTokens, m.OutputTokens, m.TotalTokens, m.EstimatedCost)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "clinsight.yaml", "path to config file")
	cmd.Flags().StringVar(&date, "date", "", "day to report (YYYY-MM-DD, default: today)")

	return cmd
}
