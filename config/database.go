package config

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/vnkhanh/e-storybook-backend/models"
)

// OpenPostgres kết nối PostgreSQL, thử lại vài lần khi DB chưa sẵn sàng
func OpenPostgres(ctx context.Context, cfg DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	level := gormlogger.Warn
	if cfg.LogSQL {
		level = gormlogger.Info
	}

	var db *gorm.DB
	err := retry.Do(
		func() error {
			var err error
			db, err = gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
				Logger:         gormlogger.Default.LogMode(level),
				TranslateError: true,
			})
			if err != nil {
				return err
			}
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		retry.Context(ctx),
		retry.Attempts(cfg.ConnectAttempts),
		retry.Delay(500*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Warn("database not ready, retrying", zap.Uint("attempt", n+1), zap.Error(err))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB from gorm: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	log.Info("postgres connected", zap.String("host", cfg.Host), zap.String("db", cfg.Name))
	return db, nil
}

// MigratePostgres tạo/cập nhật bảng cho các model
func MigratePostgres(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Storybook{},
		&models.StoryPage{},
		&models.StorybookLike{},
	); err != nil {
		return fmt.Errorf("autoMigrate: %w", err)
	}
	return nil
}
