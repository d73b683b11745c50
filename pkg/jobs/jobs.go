package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/clinsight-ai/clinsight/pkg/blob"
	"github.com/clinsight-ai/clinsight/pkg/config"
	"github.com/clinsight-ai/clinsight/pkg/tracker"
	"github.com/clinsight-ai/clinsight/pkg/vte"
)

// NewDataRefreshJob reloads the VTE dataset from disk.
func NewDataRefreshJob(schedule string, store *vte.Store) Job {
	return Job{
		Name:     "data-refresh",
		Schedule: schedule,
		Run: func(ctx context.Context) error {
			n, err := store.Reload()
			if err != nil {
				return fmt.Errorf("reload vte data: %w", err)
			}
			log.Printf("data refresh loaded %d patient records", n)
			return nil
		},
	}
}

// NewThresholdCheckJob evaluates department metrics against clinical goals
// and writes the outcome to alerts/<timestamp>.json.
func NewThresholdCheckJob(schedule string, store *vte.Store, blobs blob.Store, cfg config.VTEConfig) Job {
	return Job{
		Name:     "threshold-check",
		Schedule: schedule,
		Run: func(ctx context.Context) error {
			check := store.CheckThresholds(cfg.GoalPercent, cfg.MaxEventRate)
			name := fmt.Sprintf("alerts/%s.json", check.Timestamp.UTC().Format("2006-01-02T150405"))
			if err := blobs.Put(name, check); err != nil {
				return fmt.Errorf("write threshold check: %w", err)
			}
			if len(check.Alerts) > 0 {
				log.Printf("threshold check raised %d alerts across %d departments",
					len(check.Alerts), check.DepartmentsChecked)
			}
			return nil
		},
	}
}

// NewCostAggregatorJob rolls up yesterday's usage into
// costs/daily/<date>.json.
func NewCostAggregatorJob(schedule string, tr tracker.Tracker, blobs blob.Store) Job {
	return Job{
		Name:     "cost-aggregator",
		Schedule: schedule,
		Run: func(ctx context.Context) error {
			day := time.Now().UTC().AddDate(0, 0, -1)
			summary, err := tr.DailyCosts(ctx, day)
			if err != nil {
				return fmt.Errorf("aggregate daily costs: %w", err)
			}
			name := fmt.Sprintf("costs/daily/%s.json", summary.Date)
			if err := blobs.Put(name, summary); err != nil {
				return fmt.Errorf("write daily costs: %w", err)
			}
			log.Printf("cost aggregator wrote %s: %d requests, $%.4f",
				summary.Date, summary.Requests, summary.EstimatedCost)
			return nil
		},
	}
}

// NewWeeklyReportJob compiles the stakeholder report into
// reports/weekly/<date>.json.
func NewWeeklyReportJob(schedule string, store *vte.Store, blobs blob.Store, cfg config.VTEConfig) Job {
	return Job{
		Name:     "weekly-report",
		Schedule: schedule,
		Run: func(ctx context.Context) error {
			report := store.WeeklyReport(time.Now().UTC(), cfg.GoalPercent)
			name := fmt.Sprintf("reports/weekly/%s.json", report.PeriodEnd)
			if err := blobs.Put(name, report); err != nil {
				return fmt.Errorf("write weekly report: %w", err)
			}
			return nil
		},
	}
}

// Defaults assembles the standard job set from configuration.
func Defaults(cfg *config.Config, store *vte.Store, tr tracker.Tracker, blobs blob.Store) []Job {
	return []Job{
		NewDataRefreshJob(cfg.Jobs.DataRefresh, store),
		NewThresholdCheckJob(cfg.Jobs.ThresholdCheck, store, blobs, cfg.VTE),
		NewCostAggregatorJob(cfg.Jobs.CostAggregator, tr, blobs),
		NewWeeklyReportJob(cfg.Jobs.WeeklyReport, store, blobs, cfg.VTE),
	}
}
