package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/udisondev/elemcore/internal/config"
	"github.com/udisondev/elemcore/internal/contrib"
	"github.com/udisondev/elemcore/internal/db"
	"github.com/udisondev/elemcore/internal/engine"
)

// buildEngine creates the engine with bonus tables and, when enabled, the
// mastery contributor. The returned cleanup closes the database if one
// was opened.
func buildEngine(ctx context.Context, mem *contrib.MemoryMasteryStore) (*engine.Engine, func(), error) {
	cleanup := func() {}

	store, err := loadStore()
	if err != nil {
		return nil, cleanup, err
	}
	e, err := engine.New(cfg, store)
	if err != nil {
		return nil, cleanup, err
	}

	tables, err := config.LoadTables(cfg.TablesFile)
	if err != nil {
		return nil, cleanup, err
	}
	if err := e.RegisterTables(tables); err != nil {
		return nil, cleanup, fmt.Errorf("registering tables: %w", err)
	}

	if !cfg.Mastery.Enabled {
		return e, cleanup, nil
	}

	var src contrib.MasteryStore
	switch cfg.Mastery.Store {
	case "", "memory":
		if mem == nil {
			mem = contrib.NewMemoryMasteryStore()
		}
		src = mem
	case "postgres":
		database, err := db.New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, cleanup, err
		}
		cleanup = database.Close
		if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
			cleanup()
			return nil, func() {}, fmt.Errorf("running migrations: %w", err)
		}
		src = database.Mastery()
		slog.Info("database connected")
	default:
		return nil, cleanup, fmt.Errorf("unknown mastery store %q", cfg.Mastery.Store)
	}

	if err := e.EnableMastery(src); err != nil {
		cleanup()
		return nil, func() {}, err
	}
	return e, cleanup, nil
}
