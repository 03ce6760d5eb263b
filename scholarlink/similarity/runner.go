package similarity

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"scholarlink/scholarlink/monitoring"
)

// RunCells executes every cell over a bounded worker pool. openDB is
// called once per worker so each holds its own read-only connection.
// The write directory must not already exist: a previous run's output is
// never silently mixed with a new one.
func RunCells(cells []Cell, cfg Config, ncores int, openDB func() (*gorm.DB, error)) error {
	if ncores < 1 {
		ncores = 1
	}

	dir := cfg.cellDir()
	if _, err := os.Stat(dir); err == nil {
		return fmt.Errorf("write directory %s already exists", dir)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating write directory: %w", err)
	}

	slog.Info("running similarity cells", "cells", len(cells), "ncores", ncores, "write_dir", dir)

	work := make(chan Cell, len(cells))
	for _, cell := range cells {
		work <- cell
	}
	close(work)

	var group errgroup.Group
	for i := 0; i < ncores; i++ {
		group.Go(func() error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer func() {
				if sqlDB, err := db.DB(); err == nil {
					sqlDB.Close()
				}
			}()

			queries := NewQueries(db)
			for cell := range work {
				if err := ComputeCell(queries, cell, cfg); err != nil {
					monitoring.SimilarityCellErrors.Inc()
					return fmt.Errorf("cell %s: %w", cell, err)
				}
				monitoring.SimilarityCellsCompleted.Inc()
				slog.Info("cell complete", "cell", cell.String())
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return err
	}

	reconcileOutputs(dir, len(cells))
	return nil
}

// reconcileOutputs compares the written part files against the minimum a
// complete run produces. A shortfall means some cell died without
// failing the pool; the fix is rerunning those cells, so this only warns.
func reconcileOutputs(dir string, cells int) {
	files, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		slog.Warn("could not list output files", "dir", dir, "error", err)
		return
	}
	expected := cells * FilesPerCell
	if len(files) < expected {
		slog.Warn("output file count below expected", "found", len(files), "expected_at_least", expected)
	} else {
		slog.Info("output reconciliation passed", "files", len(files), "expected_at_least", expected)
	}
}
