package store

import (
	"errors"
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"cofounder/models"
	"cofounder/pkg/logger"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
)

// Open connects to the configured database driver and migrates the schema.
func Open(driver, dsn string, log *logger.Logger) (*gorm.DB, error) {
	log = log.With("service", "Store", "driver", driver)

	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	log.Info("Connecting to database...")
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newGormLogger(log).LogMode(gormlogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if driver == "sqlite" {
		// cascades on conversation delete rely on this
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("enable sqlite foreign keys: %w", err)
		}
	}
	if err := Migrate(db); err != nil {
		log.Error("Auto migration failed", "error", err)
		return nil, err
	}
	log.Info("Database ready")
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Profile{}, &models.Conversation{}, &models.Message{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
