// Package db opens the database and keeps its schema current
package db

import (
	"errors"
	"fmt"
	"os"
	"time"

	"bitwise74/blog-api/internal/model"

	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New opens the database configured under db.* and migrates it
func New() (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch viper.GetString("db.type") {
	case "postgres":
		dialector = postgres.Open(viper.GetString("db.dsn"))
	case "sqlite", "":
		path := viper.GetString("db.path")

		// If running in a docker container don't allow the sqlite file to be created.
		// The host should instead mount it using volumes
		if runningInDocker() {
			if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("SQLite database file not mounted, please use docker volumes to mount it to /app/%s", path)
			}
		}

		dialector = sqlite.Open(path)
	default:
		return nil, fmt.Errorf("unsupported database type %q", viper.GetString("db.type"))
	}

	return Open(dialector)
}

// Open connects through d and runs all migrations
func Open(d gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(d, &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database, %w", err)
	}

	err = db.AutoMigrate(
		model.User{},
		model.AccessToken{},
		model.PasswordResetToken{},
		model.Post{},
		model.Like{},
		model.Migration{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to automigrate tables, %w", err)
	}

	if err := runMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

func runningInDocker() bool {
	_, err := os.Stat("/.dockerenv")
	return err == nil
}
