package postgres

import (
	"errors"
	"log"

	"github.com/LavaJover/credit-ledger/internal/config"
	"github.com/LavaJover/credit-ledger/internal/infrastructure/logger"
	"github.com/LavaJover/credit-ledger/internal/infrastructure/postgres/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func MustInitDB(cfg *config.LedgerConfig) *gorm.DB {
	db, err := InitDB(cfg)
	if err != nil {
		log.Fatalf("failed to init db: %v\n", err.Error())
	}
	return db
}

// InitDB opens the ledger database and makes sure its tables exist.
func InitDB(cfg *config.LedgerConfig) (*gorm.DB, error) {
	db, err := OpenDB(cfg)
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&models.JournalEntryModel{}, &models.SnapshotModel{}, &logger.OperationFailedEvent{}); err != nil {
		return nil, err
	}
	return db, nil
}

// OpenDB opens the ledger database without touching the schema.
func OpenDB(cfg *config.LedgerConfig) (*gorm.DB, error) {
	if cfg.LedgerDB.Dsn == "" {
		return nil, errors.New("ledger_db.dsn is empty")
	}
	return gorm.Open(postgres.Open(cfg.LedgerDB.Dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
}
