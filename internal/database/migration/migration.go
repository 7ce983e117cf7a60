package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"busgallery/internal/logger"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_categories",
		SQL: `CREATE TABLE IF NOT EXISTS categories (
  id    TEXT PRIMARY KEY,
  title TEXT NOT NULL
);`,
	},
	{
		Name: "create_table_bus_models",
		SQL: `CREATE TABLE IF NOT EXISTS bus_models (
  id          TEXT PRIMARY KEY,
  title       TEXT NOT NULL,
  category_id TEXT NOT NULL REFERENCES categories (id)
);`,
	},
	{
		Name: "create_table_buses",
		SQL: `CREATE TABLE IF NOT EXISTS buses (
  id            TEXT PRIMARY KEY,
  serial_number TEXT NOT NULL,
  model_id      TEXT NOT NULL REFERENCES bus_models (id)
);`,
	},
	{
		// bus_id carries no foreign key: uploads are accepted for any bus reference.
		Name: "create_table_bus_images",
		SQL: `CREATE TABLE IF NOT EXISTS bus_images (
  id          TEXT        PRIMARY KEY,
  bus_id      TEXT        NOT NULL,
  label       TEXT        NOT NULL,
  asset_ref   TEXT        NOT NULL,
  upload_date TIMESTAMPTZ NOT NULL DEFAULT now(),
  status      TEXT        NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'ready')),
  batch_key   TEXT        NOT NULL DEFAULT ''
);`,
	},
	{
		Name: "create_index_bus_models_category",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_bus_models_category_id ON bus_models (category_id);`,
	},
	{
		Name: "create_index_buses_model",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_buses_model_id ON buses (model_id);`,
	},
	{
		Name: "create_index_bus_images_bus_status",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_bus_images_bus_id_status ON bus_images (bus_id, status);`,
	},
}

// EnsureMigrated checks if the 'bus_images' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, dbHost string) error {
	start := time.Now()

	logger.Info(ctx, "db_migration_check", logger.Fields{
		"component": "database",
		"status":    "starting",
		"db_host":   dbHost,
	})

	var exists bool
	query := "SELECT to_regclass('public.bus_images') IS NOT NULL"
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		logger.Error(ctx, "db_migration_failed", err, logger.Fields{
			"component":   "database",
			"db_host":     dbHost,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		logger.Info(ctx, "db_migration_skip", logger.Fields{
			"component":   "database",
			"status":      "success",
			"db_host":     dbHost,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return nil
	}

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			logger.Error(ctx, "db_migration_failed", err, logger.Fields{
				"component":        "database",
				"migration_step":   step.Name,
				"db_host":          dbHost,
				"duration_ms":      time.Since(start).Milliseconds(),
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			})
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		logger.Debug(ctx, "db_migration_step", logger.Fields{
			"component":        "database",
			"migration_step":   step.Name,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		})
	}

	logger.Info(ctx, "db_migration_success", logger.Fields{
		"component":   "database",
		"status":      "success",
		"db_host":     dbHost,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return nil
}
