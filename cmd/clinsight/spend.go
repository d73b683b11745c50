package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/clinsight-ai/clinsight/pkg/budget"
	"github.com/clinsight-ai/clinsight/pkg/config"
	"github.com/clinsight-ai/clinsight/pkg/tracker"
)

func newSpendCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "spend",
		Short: "Show spend against configured limits",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if len(cfg.Spend.Policies) == 0 {
				fmt.Println("No spend policies configured.")
				return nil
			}

			tr, err := tracker.New(cfg.DBPath)
			if err != nil {
				return err
			}
			defer func() { _ = tr.Close() }()

			enforcer := budget.New(tr, cfg.Spend.Policies)
			statuses, err := enforcer.Status(context.Background())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "MODEL\tPERIOD\tMAX USD\tUSED\tREMAINING")
			for _, s := range statuses {
				model := s.Policy.Model
				if model == "" {
					model = "(all models)"
				}
				fmt.Fprintf(w, "%s\t%s\t$%.2f\t$%.4f\t$%.4f\n",
					model, s.Policy.Period, s.Policy.MaxUSD, s.Used, s.Remaining)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "clinsight.yaml", "path to config file")

	return cmd
}
