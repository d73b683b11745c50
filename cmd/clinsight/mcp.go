package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/clinsight-ai/clinsight/pkg/budget"
	cachepkg "github.com/clinsight-ai/clinsight/pkg/cache/sqlite"
	"github.com/clinsight-ai/clinsight/pkg/config"
	"github.com/clinsight-ai/clinsight/pkg/mcp"
	"github.com/clinsight-ai/clinsight/pkg/tracker"
	"github.com/clinsight-ai/clinsight/pkg/vte"
)

func newMCPCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve dashboard data to MCP clients over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			tr, err := tracker.New(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("init tracker: %w", err)
			}
			defer func() { _ = tr.Close() }()

			var cache mcp.CacheStatter
			if cfg.Cache.Enabled {
				c, err := cachepkg.New(cfg.DBPath, cfg.Cache.TTL)
				if err != nil {
					return fmt.Errorf("init cache: %w", err)
				}
				defer func() { _ = c.Close() }()
				cache = c
			}

			var enforcer *budget.Enforcer
			if cfg.Spend.Enabled {
				enforcer = budget.New(tr, cfg.Spend.Policies)
			}

			store := vte.NewStore(cfg.DataPath)
			if _, err := store.Reload(); err != nil {
				// MCP clients can still query cost tools without the dataset.
				log.Printf("vte dataset not loaded: %v", err)
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := mcp.New(tr, store, cfg.VTE, cache, enforcer, version)
			return srv.Run(ctx, os.Stdin, os.Stdout)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "clinsight.yaml", "path to config file")

	return cmd
}
