package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/clinsight-ai/clinsight/pkg/analytics"
	"github.com/clinsight-ai/clinsight/pkg/blob"
	"github.com/clinsight-ai/clinsight/pkg/budget"
	cachepkg "github.com/clinsight-ai/clinsight/pkg/cache/sqlite"
	"github.com/clinsight-ai/clinsight/pkg/chat"
	"github.com/clinsight-ai/clinsight/pkg/config"
	"github.com/clinsight-ai/clinsight/pkg/costs"
	"github.com/clinsight-ai/clinsight/pkg/jobs"
	"github.com/clinsight-ai/clinsight/pkg/pricing"
	"github.com/clinsight-ai/clinsight/pkg/server"
	"github.com/clinsight-ai/clinsight/pkg/telemetry"
	"github.com/clinsight-ai/clinsight/pkg/tracker"
	"github.com/clinsight-ai/clinsight/pkg/vte"
)

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard API server and background jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			table, err := pricing.Load(cfg.PricingPath)
			if err != nil {
				return fmt.Errorf("load price table: %w", err)
			}

			tr, err := tracker.New(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("init tracker: %w", err)
			}
			defer func() { _ = tr.Close() }()

			var cache *cachepkg.Cache
			if cfg.Cache.Enabled {
				cache, err = cachepkg.New(cfg.DBPath, cfg.Cache.TTL)
				if err != nil {
					return fmt.Errorf("init cache: %w", err)
				}
				defer func() { _ = cache.Close() }()
			}

			var enforcer *budget.Enforcer
			if cfg.Spend.Enabled {
				enforcer = budget.New(tr, cfg.Spend.Policies)
			}

			store := vte.NewStore(cfg.DataPath)
			if n, err := store.Reload(); err != nil {
				log.Printf("vte dataset not loaded: %v", err)
			} else {
				log.Printf("loaded %d patient records", n)
			}

			var collector *analytics.Collector
			if cfg.Analytics.WorkspaceID != "" {
				collector = analytics.NewCollector(cfg.Analytics.WorkspaceID, cfg.Analytics.SharedKey, cfg.Analytics.LogType)
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			tracer, shutdownTracing, err := telemetry.Init(ctx, cfg.Telemetry)
			if err != nil {
				return fmt.Errorf("init telemetry: %w", err)
			}
			defer func() {
				if err := shutdownTracing(context.Background()); err != nil {
					log.Printf("telemetry shutdown: %v", err)
				}
			}()

			if cfg.Jobs.Enabled {
				blobs, err := blob.NewFileStore(cfg.BlobDir)
				if err != nil {
					return fmt.Errorf("init blob store: %w", err)
				}
				scheduler, err := jobs.NewScheduler(jobs.Defaults(cfg, store, tr, blobs))
				if err != nil {
					return fmt.Errorf("init scheduler: %w", err)
				}
				go scheduler.Start(ctx)
			}

			calc := costs.New(table)
			client := chat.New(cfg.OpenAI)
			srv := server.New(cfg, client, calc, tr, cache, enforcer, store, collector, tracer)

			log.Printf("starting clinsight with config: %s", configPath)
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "clinsight.yaml", "path to config file")

	return cmd
}
