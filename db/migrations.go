package db

import (
	"fmt"
	"strings"

	"bitwise74/blog-api/internal/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Data fixes that AutoMigrate can't express. Each one runs once and is
// recorded in the migrations table.
type migration struct {
	name string
	up   func(tx *gorm.DB) error
}

var migrations = []migration{
	{
		// Lookups compare normalized addresses, rows imported from the old
		// deployment may still carry mixed case
		name: "0001_lowercase_user_emails",
		up: func(tx *gorm.DB) error {
			// Addresses differing only by case would break the unique index,
			// those accounts have to be merged by hand first
			var clashes []string
			err := tx.Raw("SELECT LOWER(email) FROM users GROUP BY LOWER(email) HAVING COUNT(*) > 1 ORDER BY LOWER(email)").
				Scan(&clashes).Error
			if err != nil {
				return err
			}
			if len(clashes) > 0 {
				return fmt.Errorf("accounts share an email address when lowercased: %s", strings.Join(clashes, ", "))
			}

			return tx.Exec("UPDATE users SET email = LOWER(email) WHERE email <> LOWER(email)").Error
		},
	},
}

func runMigrations(db *gorm.DB) error {
	for _, m := range migrations {
		err := db.Transaction(func(tx *gorm.DB) error {
			var applied int64
			if err := tx.Model(&model.Migration{}).Where("name = ?", m.name).Count(&applied).Error; err != nil {
				return err
			}

			if applied > 0 {
				return nil
			}

			if err := m.up(tx); err != nil {
				return err
			}

			zap.L().Info("Applied migration", zap.String("name", m.name))
			return tx.Create(&model.Migration{Name: m.name}).Error
		})
		if err != nil {
			return fmt.Errorf("failed to apply migration %s, %w", m.name, err)
		}
	}

	return nil
}
