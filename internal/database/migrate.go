package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"

	"academy-quiz/internal/config"
	"academy-quiz/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

//go:embed migrations
var migrationFS embed.FS

// Direction selects which half of the migration files to run.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// RunMigrations applies the embedded schema for the configured driver.
// Postgres and SQLite go through golang-migrate; Oracle files are executed
// statement by statement and tracked in schema_migrations.
func RunMigrations(ctx context.Context, db *sqlx.DB, driver string, dir Direction) error {
	if driver == config.DriverOracle {
		return runOracleMigrations(ctx, db, dir)
	}

	src, err := iofs.New(migrationFS, path.Join("migrations", driver))
	if err != nil {
		return fmt.Errorf("could not open migrations for %s: %w", driver, err)
	}

	var dbDriver migratedb.Driver
	switch driver {
	case config.DriverPostgres:
		dbDriver, err = migratepgx.WithInstance(db.DB, &migratepgx.Config{})
	case config.DriverSQLite:
		dbDriver, err = migratesqlite.WithInstance(db.DB, &migratesqlite.Config{})
	default:
		return fmt.Errorf("unsupported database driver: %s", driver)
	}
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	// m.Close would close db, which the caller still owns.
	m, err := migrate.NewWithInstance("iofs", src, driver, dbDriver)
	if err != nil {
		return fmt.Errorf("could not create migrator: %w", err)
	}

	if dir == Down {
		err = m.Down()
	} else {
		err = m.Up()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations %s: %w", dir, err)
	}

	logger.Get().Info("Migrations completed successfully", zap.String("driver", driver), zap.String("direction", string(dir)))
	return nil
}

type migrationFile struct {
	version int
	name    string
}

func listMigrations(dir string, direction Direction) ([]migrationFile, error) {
	entries, err := fs.ReadDir(migrationFS, dir)
	if err != nil {
		return nil, fmt.Errorf("could not read migrations directory: %w", err)
	}

	suffix := "." + string(direction) + ".sql"
	var files []migrationFile
	for _, entry := range entries {
		if !strings.HasSuffix(entry.Name(), suffix) {
			continue
		}
		prefix, _, ok := strings.Cut(entry.Name(), "_")
		if !ok {
			return nil, fmt.Errorf("migration %s has no version prefix", entry.Name())
		}
		version, err := strconv.Atoi(prefix)
		if err != nil {
			return nil, fmt.Errorf("migration %s: invalid version: %w", entry.Name(), err)
		}
		files = append(files, migrationFile{version: version, name: entry.Name()})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].version < files[j].version })
	if direction == Down {
		sort.Slice(files, func(i, j int) bool { return files[i].version > files[j].version })
	}
	return files, nil
}

// splitStatements splits a migration file on ';'. go-ora executes one statement per call.
func splitStatements(content string) []string {
	var stmts []string
	for _, part := range strings.Split(content, ";") {
		if stmt := strings.TrimSpace(part); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}

func runOracleMigrations(ctx context.Context, db *sqlx.DB, dir Direction) error {
	var exists int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM user_tables WHERE table_name = 'SCHEMA_MIGRATIONS'").Scan(&exists); err != nil {
		return fmt.Errorf("could not inspect schema_migrations: %w", err)
	}
	if exists == 0 {
		if _, err := db.ExecContext(ctx, "CREATE TABLE schema_migrations (version NUMBER(10) PRIMARY KEY, applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP NOT NULL)"); err != nil {
			return fmt.Errorf("could not create schema_migrations: %w", err)
		}
	}

	applied := make(map[int]bool)
	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return fmt.Errorf("could not read schema_migrations: %w", err)
	}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			rows.Close()
			return err
		}
		applied[v] = true
	}
	rows.Close()

	files, err := listMigrations("migrations/oracle", dir)
	if err != nil {
		return err
	}

	for _, file := range files {
		if (dir == Up) == applied[file.version] {
			continue
		}
		content, err := migrationFS.ReadFile(path.Join("migrations/oracle", file.name))
		if err != nil {
			return fmt.Errorf("could not read migration file %s: %w", file.name, err)
		}
		for _, stmt := range splitStatements(string(content)) {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("could not execute migration %s: %w", file.name, err)
			}
		}

		bookkeeping := "INSERT INTO schema_migrations (version) VALUES (:1)"
		if dir == Down {
			bookkeeping = "DELETE FROM schema_migrations WHERE version = :1"
		}
		if _, err := db.ExecContext(ctx, bookkeeping, file.version); err != nil {
			return fmt.Errorf("could not record migration %s: %w", file.name, err)
		}
		logger.Get().Info("Executed migration", zap.String("file", file.name))
	}

	logger.Get().Info("Migrations completed successfully", zap.String("driver", config.DriverOracle), zap.String("direction", string(dir)))
	return nil
}
