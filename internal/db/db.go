package db

import (
	"errors"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/HanyangXu0508/clinic-appointment-system/internal/config"
)

// ErrStoreUnavailable — файл хранилища не открывается или недоступен на запись.
var ErrStoreUnavailable = errors.New("store unavailable")

// NewGormDB открывает файловое SQLite-хранилище через GORM.
// Каждая операция выполняется в собственном autocommit-стейтменте,
// многошаговых транзакций нет.
func NewGormDB(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	}

	db, err := gorm.Open(sqlite.Open(cfg.DBPath()), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("%w: gorm open %s: %v", ErrStoreUnavailable, cfg.DBPath(), err)
	}

	// Одно локальное файловое хранилище — одно соединение достаточно
	// и исключает SQLITE_BUSY между стейтментами.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("%w: db.DB(): %v", ErrStoreUnavailable, err)
	}
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}
