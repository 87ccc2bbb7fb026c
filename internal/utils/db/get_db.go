package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/claimdesk/claims-crm/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GetDB opens the database described by cfg and applies pending migrations.
func GetDB(ctx context.Context, cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DBPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	case "postgres", "":
		username, password, err := retrieveCredentials(ctx, cfg)
		if err != nil {
			return nil, err
		}
		dialector = postgres.Open(postgresDSN(cfg, username, password))
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	database, err := Open(dialector, logLevel(cfg.Environment))
	if err != nil {
		return nil, err
	}
	if err := Migrate(database); err != nil {
		return nil, err
	}
	version, err := SchemaVersion(database)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema version: %w", err)
	}
	log.Printf("Database schema at version %d", version)
	return database, nil
}

// Open connects with the gorm settings every environment shares.
func Open(dialector gorm.Dialector, level logger.LogLevel) (*gorm.DB, error) {
	database, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := database.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Println("Database connection established")
	return database, nil
}

func Close(database *gorm.DB) error {
	if database == nil {
		return nil
	}
	sqlDB, err := database.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.Close()
}

func postgresDSN(cfg *config.Config, username, password string) string {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d", cfg.DBHost, username, password, cfg.DBName, cfg.DBPort)
	if cfg.DBSSLModeDisable {
		dsn += " sslmode=disable"
	}
	return dsn
}

func logLevel(environment string) logger.LogLevel {
	if environment == "production" {
		return logger.Error
	}
	return logger.Warn
}
