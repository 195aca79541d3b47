package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"agrimarket-be/internal/logger"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	logger.Init(os.Getenv("APP_ENV"))
	defer logger.Sync()

	mode := flag.String("mode", "up", "migration mode: up or down")
	dir := flag.String("dir", "./migrations", "directory holding *.sql migrations")
	flag.Parse()

	dsn := os.Getenv("DB_URL")
	if dsn == "" {
		dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			os.Getenv("DB_HOST"), os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD"),
			os.Getenv("DB_NAME"), os.Getenv("DB_PORT"))
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		logger.L().Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	if err := run(context.Background(), db, *mode, *dir); err != nil {
		logger.L().Fatal("migration failed", zap.Error(err))
	}
}

func run(ctx context.Context, db *sql.DB, mode, migrationsDir string) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL DEFAULT NOW()
		);
	`)
	if err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}

	files, err := filepath.Glob(filepath.Join(migrationsDir, "*.sql"))
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	// File names start with a sortable version prefix.
	sort.Strings(files)

	switch mode {
	case "up":
		return migrateUp(ctx, db, files)
	case "down":
		return migrateDown(ctx, db, files)
	default:
		return fmt.Errorf("unknown mode %q (use up or down)", mode)
	}
}

// migrateUp applies every pending file in order. Each file and its version
// record commit together.
func migrateUp(ctx context.Context, db *sql.DB, files []string) error {
	log := logger.FromCtx(ctx)
	applied := 0

	for _, file := range files {
		version := filepath.Base(file)

		var exists bool
		err := db.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, version).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check %s: %w", version, err)
		}
		if exists {
			log.Debug("migration already applied", zap.String("version", version))
			continue
		}

		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read %s: %w", file, err)
		}

		err = inTx(ctx, db, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, section(string(content), "Up")); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, version)
			return err
		})
		if err != nil {
			return fmt.Errorf("apply %s: %w", version, err)
		}

		log.Info("migration applied", zap.String("version", version))
		applied++
	}

	log.Info("migrations up to date", zap.Int("applied", applied))
	return nil
}

// migrateDown rolls back the most recently applied migration.
func migrateDown(ctx context.Context, db *sql.DB, files []string) error {
	log := logger.FromCtx(ctx)

	var last string
	err := db.QueryRowContext(ctx,
		`SELECT version FROM schema_migrations ORDER BY applied_at DESC, version DESC LIMIT 1`).Scan(&last)
	if errors.Is(err, sql.ErrNoRows) {
		log.Info("no migrations to roll back")
		return nil
	}
	if err != nil {
		return fmt.Errorf("find last migration: %w", err)
	}

	idx := sort.Search(len(files), func(i int) bool { return filepath.Base(files[i]) >= last })
	if idx == len(files) || filepath.Base(files[idx]) != last {
		return fmt.Errorf("migration file not found for version %s", last)
	}

	content, err := os.ReadFile(files[idx])
	if err != nil {
		return fmt.Errorf("read %s: %w", files[idx], err)
	}

	err = inTx(ctx, db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, section(string(content), "Down")); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM schema_migrations WHERE version = $1`, last)
		return err
	})
	if err != nil {
		return fmt.Errorf("roll back %s: %w", last, err)
	}

	log.Info("migration rolled back", zap.String("version", last))
	return nil
}

func inTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// section returns the statements between "-- +migrate <name>" and the next
// marker.
func section(content, name string) string {
	var part strings.Builder
	in := false

	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "-- +migrate") {
			if in {
				break
			}
			in = strings.Contains(line, "-- +migrate "+name)
			continue
		}
		if in {
			part.WriteString(line)
			part.WriteByte('\n')
		}
	}
	return part.String()
}
