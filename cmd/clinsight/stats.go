package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/clinsight-ai/clinsight/pkg/config"
	"github.com/clinsight-ai/clinsight/pkg/tracker"
)

func newStatsCmd() *cobra.Command {
	var (
		configPath string
		model      string
		sessions   bool
		sessionID  string
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show assistant usage statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			tr, err := tracker.New(cfg.DBPath)
			if err != nil {
				return err
			}
			defer func() { _ = tr.Close() }()

			ctx := context.Background()

			// Session detail view
			if sessionID != "" {
				interactions, err := tr.SessionInteractions(ctx, sessionID)
				if err != nil {
					return err
				}
				if len(interactions) == 0 {
					fmt.Println("No interactions found for session.")
					return nil
				}
				w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "TIME\tMODEL\tQUERY TYPE\tINPUT\tOUTPUT\tLATENCY\tEST. COST")
				for _, in := range interactions {
					fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%dms\t$%.4f\n",
						in.CreatedAt.Format("2006-01-02T15:04:05"), in.Model, in.QueryType,
						in.InputTokens, in.OutputTokens, in.LatencyMs, in.EstimatedCost)
				}
				return w.Flush()
			}

			// Session list view
			if sessions {
				sess, err := tr.ListSessions(ctx)
				if err != nil {
					return err
				}
				if len(sess) == 0 {
					fmt.Println("No sessions found.")
					return nil
				}
				w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "SESSION ID\tSTARTED\tLAST ACTIVITY\tREQUESTS\tTOKENS\tEST. COST")
				for _, s := range sess {
					fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t$%.4f\n",
						s.ID, s.StartedAt.Format("2006-01-02T15:04:05"),
						s.LastActivity.Format("2006-01-02T15:04:05"),
						s.RequestCount, s.TotalTokens, s.EstimatedCost)
				}
				return w.Flush()
			}

			// Default: per-model usage summary
			summaries, err := tr.Summary(ctx, model)
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				fmt.Println("No usage data found.")
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "MODEL\tREQUESTS\tINPUT\tOUTPUT\tTOTAL\tEST. COST")
			for _, s := range summaries {
				fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t$%.4f\n",
					s.Model, s.RequestCount, s.InputTokens, s.OutputTokens, s.TotalTokens, s.EstimatedCost)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "clinsight.yaml", "path to config file")
	cmd.Flags().StringVar(&model, "model", "", "filter by model")
	cmd.Flags().BoolVar(&sessions, "sessions", false, "list sessions instead of the usage summary")
	cmd.Flags().StringVar(&sessionID, "session", "", "show per-request detail for one session")

	return cmd
}
