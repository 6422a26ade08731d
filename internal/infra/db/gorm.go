package db

import (
	"bakery/internal/config"
	"bakery/internal/domain/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect はDBに接続して *gorm.DB を返す。
func Connect(cfg config.Config) (*gorm.DB, error) {
	level := logger.Warn
	if !cfg.IsProd() && cfg.LogLevel == "debug" {
		level = logger.Info
	}
	return gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
}

// テーブル作成・カラム追加
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Category{},
		&model.Product{},
		&model.ProductSize{},
		&model.Address{},
		&model.Cart{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.Reservation{},
		&model.Notification{},
		&model.AuditLog{},
		&model.OutboxEvent{},
	)
}
