package data

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"bizdir-backend/internal/config"
)

// NewMySQL opens a gorm connection with pool settings from config.
func NewMySQL(cfg config.MySQLConfig, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("mysql db handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime.Std())
	if log != nil {
		log.Info("mysql pool configured",
			zap.Int("maxOpen", cfg.MaxOpenConns),
			zap.Int("maxIdle", cfg.MaxIdleConns),
			zap.Duration("maxLifetime", cfg.ConnMaxLifetime.Std()),
		)
	}
	return db, nil
}
