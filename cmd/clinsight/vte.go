package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/clinsight-ai/clinsight/pkg/config"
	"github.com/clinsight-ai/clinsight/pkg/vte"
)

func newVTECmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vte",
		Short: "Inspect VTE prevention performance",
	}
	cmd.AddCommand(newVTECheckCmd(), newVTEReportCmd(), newVTEGenerateCmd())
	return cmd
}

func loadVTEStore(configPath string) (*config.Config, *vte.Store, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	store := vte.NewStore(cfg.DataPath)
	if _, err := store.Reload(); err != nil {
		return nil, nil, err
	}
	return cfg, store, nil
}

func newVTECheckCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check department metrics against clinical goals",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, store, err := loadVTEStore(configPath)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "DEPARTMENT\tPATIENTS\tPROPHYLAXIS\tVTE EVENTS\tVTE RATE")
			for _, m := range store.Metrics() {
				fmt.Fprintf(w, "%s\t%d\t%.1f%%\t%d\t%.1f%%\n",
					m.Department, m.Patients, m.ProphylaxisRate, m.VTEEvents, m.VTERate)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			check := store.CheckThresholds(cfg.VTE.GoalPercent, cfg.VTE.MaxEventRate)
			if len(check.Alerts) == 0 {
				fmt.Printf("\nAll %d departments meet their clinical goals.\n", check.DepartmentsChecked)
				return nil
			}
			fmt.Printf("\n%d alert(s):\n", len(check.Alerts))
			for _, a := range check.Alerts {
				fmt.Printf("  [%s] %s: %s %.1f%% (goal %.1f%%)\n",
					a.Severity, a.Department, a.Metric, a.Value, a.Goal)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "clinsight.yaml", "path to config file")
	return cmd
}

func newVTEReportCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Compile the weekly stakeholder report",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, store, err := loadVTEStore(configPath)
			if err != nil {
				return err
			}

			report := store.WeeklyReport(time.Now().UTC(), cfg.VTE.GoalPercent)
			fmt.Printf("Weekly VTE report %s to %s\n", report.PeriodStart, report.PeriodEnd)
			fmt.Printf("  Patients:         %d\n", report.TotalPatients)
			fmt.Printf("  Prophylaxis rate: %.1f%% (goal %.1f%%)\n", report.OverallProphylaxis, cfg.VTE.GoalPercent)
			fmt.Printf("  VTE events:       %d (%.1f%%)\n", report.VTEEvents, report.VTEEventRate)
			if len(report.DepartmentsBelowGoal) > 0 {
				fmt.Printf("  Below goal:       %v\n", report.DepartmentsBelowGoal)
			}
			if len(report.DepartmentsMeetingGoal) > 0 {
				fmt.Printf("  Meeting goal:     %v\n", report.DepartmentsMeetingGoal)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "clinsight.yaml", "path to config file")
	return cmd
}

func newVTEGenerateCmd() *cobra.Command {
	var (
		configPath string
		count      int
		seed       int64
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a synthetic patient dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			records := vte.Generate(count, seed, cfg.VTE.Departments, time.Now().UTC())
			store := vte.NewStore(cfg.DataPath)
			store.SetRecords(records)
			if err := store.Save(); err != nil {
				return err
			}

			fmt.Printf("Wrote %d patient records to %s\n", len(records), cfg.DataPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "clinsight.yaml", "path to config file")
	cmd.Flags().IntVar(&count, "count", 500, "number of records to generate")
	cmd.Flags().Int64Var(&seed, "seed", 42, "random seed")
	return cmd
}
