package db

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var migrationFilePattern = regexp.MustCompile(`^(\d+)_.*\.sql$`)

// ErrMigrationModified means a migration that was already applied no longer
// matches the SQL shipped in the binary.
var ErrMigrationModified = errors.New("applied migration was modified")

type migration struct {
	Version  int
	Name     string
	SQL      string
	Checksum string
}

type migrationRecord struct {
	Version  int    `gorm:"column:version"`
	Name     string `gorm:"column:name"`
	Checksum string `gorm:"column:checksum"`
}

func applyMigrations(database *gorm.DB, files fs.FS, logger *logrus.Logger) error {
	if err := ensureSchemaMigrationsTable(database); err != nil {
		return err
	}

	pending, err := loadMigrations(files)
	if err != nil {
		return err
	}

	applied, err := loadMigrationRecords(database)
	if err != nil {
		return err
	}

	for _, next := range pending {
		if record, ok := applied[next.Version]; ok {
			if record.Checksum != next.Checksum {
				return fmt.Errorf("%w: %s", ErrMigrationModified, next.Name)
			}
			continue
		}

		if err := applyMigration(database, next); err != nil {
			return err
		}
		if logger != nil {
			logger.WithField("migration", next.Name).Info("applied migration")
		}
	}

	return nil
}

func ensureSchemaMigrationsTable(database *gorm.DB) error {
	const createTableSQL = `
CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  checksum TEXT NOT NULL,
  applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);`
	if err := database.Exec(createTableSQL).Error; err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}
	return nil
}

func loadMigrations(files fs.FS) ([]migration, error) {
	entries, err := fs.ReadDir(files, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	migrations := make([]migration, 0, len(entries))
	seen := make(map[int]string, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		fileName := entry.Name()
		matches := migrationFilePattern.FindStringSubmatch(fileName)
		if len(matches) != 2 {
			continue
		}

		version, err := strconv.Atoi(matches[1])
		if err != nil {
			return nil, fmt.Errorf("parse migration version from %s: %w", fileName, err)
		}
		if existing, ok := seen[version]; ok {
			return nil, fmt.Errorf("duplicate migration version %d in %s and %s", version, existing, fileName)
		}
		seen[version] = fileName

		rawSQL, err := fs.ReadFile(files, fileName)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", fileName, err)
		}

		sum := sha256.Sum256(rawSQL)
		migrations = append(migrations, migration{
			Version:  version,
			Name:     fileName,
			SQL:      string(rawSQL),
			Checksum: hex.EncodeToString(sum[:]),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

func loadMigrationRecords(database *gorm.DB) (map[int]migrationRecord, error) {
	rows := make([]migrationRecord, 0)
	if err := database.Raw(`SELECT version, name, checksum FROM schema_migrations`).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("load applied migrations: %w", err)
	}

	records := make(map[int]migrationRecord, len(rows))
	for _, row := range rows {
		records[row.Version] = row
	}
	return records, nil
}

func applyMigration(database *gorm.DB, next migration) error {
	statements := splitSQLStatements(next.SQL)
	if len(statements) == 0 {
		return fmt.Errorf("migration %s has no SQL statements", next.Name)
	}

	return database.Transaction(func(tx *gorm.DB) error {
		for _, statement := range statements {
			if err := tx.Exec(statement).Error; err != nil {
				return fmt.Errorf("execute migration %s statement %q: %w", next.Name, statement, err)
			}
		}

		if err := tx.Exec(
			`INSERT INTO schema_migrations(version, name, checksum) VALUES (?, ?, ?)`,
			next.Version,
			next.Name,
			next.Checksum,
		).Error; err != nil {
			return fmt.Errorf("record migration %s: %w", next.Name, err)
		}
		return nil
	})
}

// splitSQLStatements breaks a migration on ";". Migrations must not embed
// semicolons inside string literals or trigger bodies.
func splitSQLStatements(sqlText string) []string {
	parts := strings.Split(sqlText, ";")
	statements := make([]string, 0, len(parts))
	for _, part := range parts {
		statement := strings.TrimSpace(part)
		if statement != "" {
			statements = append(statements, statement)
		}
	}
	return statements
}
