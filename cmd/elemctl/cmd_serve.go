package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveFlags struct {
	statsInterval time.Duration
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the engine: status tick loop and periodic cache reporting",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().DurationVar(&serveFlags.statsInterval, "stats-interval", 30*time.Second, "cache stats log period")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	e, cleanup, err := buildEngine(ctx, nil)
	if err != nil {
		return err
	}
	defer cleanup()

	slog.Info("elemctl serve starting",
		"elements", e.Store().Len(),
		"contributors", e.Registry().SystemIDs(),
		"mastery_store", cfg.Mastery.Store)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := e.Run(gctx); err != nil {
			return fmt.Errorf("engine: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(serveFlags.statsInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s := e.CacheStats()
				slog.Info("cache stats",
					"hits", s.Hits,
					"misses", s.Misses,
					"evictions", s.Evictions,
					"entries", s.Len,
					"actors_with_effects", e.Statuses().Actors())
			case <-gctx.Done():
				return nil
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	slog.Info("elemctl serve stopped")
	return nil
}
