package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/licitaflash/licitaflash/app/models"
	"github.com/licitaflash/licitaflash/internal/pkg/config"
)

const maxRetries = 5
const retryDelay = 5 * time.Second

// Dialector picks the gorm driver for the configured store. The hosted store
// is postgres; mysql is kept for self-hosted installs.
func Dialector(cfg config.Database) gorm.Dialector {
	if cfg.Driver == "mysql" {
		return mysql.New(mysql.Config{
			DSN:                       mysqlDSN(cfg),
			DefaultStringSize:         256,
			SkipInitializeWithVersion: false,
		})
	}
	return postgres.New(postgres.Config{
		DSN: postgresDSN(cfg),
	})
}

func postgresDSN(cfg config.Database) string {
	if cfg.URL != "" {
		return cfg.URL
	}
	port := cfg.Port
	if port == "" {
		port = "5432"
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=require TimeZone=UTC",
		cfg.Host, cfg.User, cfg.Password, cfg.Name, port)
}

func mysqlDSN(cfg config.Database) string {
	if cfg.URL != "" {
		return cfg.URL
	}
	port := cfg.Port
	if port == "" {
		port = "3306"
	}
	// clientFoundRows makes RowsAffected count matched rows like postgres does,
	// so an idempotent re-apply is not mistaken for a missing subscriber.
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC&clientFoundRows=true",
		cfg.User, cfg.Password, cfg.Host, port, cfg.Name)
}

// SetupDatabase opens the store, retrying while it comes up. The schema of the
// hosted store is owned elsewhere; tables are only created for local dev.
func SetupDatabase(cfg config.Database, migrate bool) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	for i := 0; i < maxRetries; i++ {
		db, err = gorm.Open(Dialector(cfg), &gorm.Config{TranslateError: true})
		if err == nil {
			if migrate {
				if err := Migrate(db); err != nil {
					return nil, err
				}
			}
			return db, nil
		}

		log.Printf("Failed to connect to database (try %d/%d): %v", i+1, maxRetries, err)
		if i < maxRetries-1 {
			log.Printf("Retry in %v...", retryDelay)
			time.Sleep(retryDelay)
		}
	}
	return nil, err
}

// Migrate creates the tables this service reads and writes.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Subscriber{},
		&models.Tender{},
		&models.WaitlistEntry{},
		&models.Draft{},
	)
}
