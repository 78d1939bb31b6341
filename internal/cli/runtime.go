package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/cyclelog/internal/config"
	"github.com/terraincognita07/cyclelog/internal/db"
	"github.com/terraincognita07/cyclelog/internal/logging"
	"gorm.io/gorm"
)

// runtime is what every command needs: validated configuration, the logger
// and an open database.
type runtime struct {
	cfg      *config.Config
	logger   *logrus.Logger
	database *gorm.DB
	repos    *db.Repositories
	location *time.Location
}

func openRuntime(scope config.Scope) (*runtime, error) {
	cfg := config.Load()
	if err := cfg.Validate(scope); err != nil {
		return nil, err
	}
	logger := logging.New(cfg.LogLevel, cfg.AppEnv)

	location, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("load TZ: %w", err)
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	database, err := db.OpenSQLite(cfg.DBPath, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	return &runtime{
		cfg:      cfg,
		logger:   logger,
		database: database,
		repos:    db.NewRepositories(database),
		location: location,
	}, nil
}

func (rt *runtime) Close() {
	sqlDB, err := rt.database.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		rt.logger.WithError(err).Warn("close database failed")
	}
}
