package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/clinsight-ai/clinsight/pkg/blob"
	"github.com/clinsight-ai/clinsight/pkg/config"
	"github.com/clinsight-ai/clinsight/pkg/jobs"
	"github.com/clinsight-ai/clinsight/pkg/tracker"
	"github.com/clinsight-ai/clinsight/pkg/vte"
)

func newJobsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List or run the background jobs",
	}
	cmd.AddCommand(newJobsListCmd(), newJobsRunCmd())
	return cmd
}

func buildScheduler(configPath string) (*jobs.Scheduler, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	tr, err := tracker.New(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}

	blobs, err := blob.NewFileStore(cfg.BlobDir)
	if err != nil {
		tr.Close()
		return nil, nil, err
	}

	store := vte.NewStore(cfg.DataPath)
	if _, err := store.Reload(); err != nil {
		log.Printf("vte dataset not loaded: %v", err)
	}

	scheduler, err := jobs.NewScheduler(jobs.Defaults(cfg, store, tr, blobs))
	if err != nil {
		tr.Close()
		return nil, nil, err
	}
	return scheduler, func() { _ = tr.Close() }, nil
}

func newJobsListCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs and their schedules",
		RunE: func(cmd *cobra.Command, args []string) error {
			scheduler, cleanup, err := buildScheduler(configPath)
			if err != nil {
				return err
			}
			defer cleanup()

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "JOB\tSCHEDULE")
			for _, j := range scheduler.Jobs() {
				fmt.Fprintf(w, "%s\t%s\n", j.Name, j.Schedule)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "clinsight.yaml", "path to config file")
	return cmd
}

func newJobsRunCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "run <job>",
		Short: "Run one job immediately",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scheduler, cleanup, err := buildScheduler(configPath)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := scheduler.RunByName(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Printf("job %s completed\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "clinsight.yaml", "path to config file")
	return cmd
}
