// Package db contains the database bootstrap
package db

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/juveniletion/medcore/internal/model"
	"github.com/juveniletion/medcore/pkg/security"
)

func New() (*gorm.DB, error) {
	var dialector gorm.Dialector

	dsn := viper.GetString("db.dsn")

	switch viper.GetString("db.driver") {
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}

	err = db.AutoMigrate(model.User{}, model.Article{}, model.EmailCode{})
	if err != nil {
		return nil, fmt.Errorf("failed to automigrate tables, %w", err)
	}

	if err := seedAdmin(db, security.New()); err != nil {
		return nil, fmt.Errorf("failed to seed admin account, %w", err)
	}

	return db, nil
}

// seedAdmin creates the configured admin account on first start. There is no
// endpoint that grants the admin role, so the only way to get one is here.
// Safe to run on every startup (idempotent).
func seedAdmin(db *gorm.DB, argon *security.ArgonHash) error {
	email := viper.GetString("admin.email")
	if email == "" {
		zap.L().Debug("No admin account configured, skipping seed")
		return nil
	}

	username := viper.GetString("admin.username")
	password := viper.GetString("admin.password")
	if username == "" || password == "" {
		return errors.New("admin.username and admin.password must be set together with admin.email")
	}

	var exists bool
	err := db.Model(model.User{}).
		Select("count(*) > 0").
		Where("email = ?", email).
		Find(&exists).
		Error
	if err != nil {
		return err
	}

	if exists {
		return nil
	}

	hash, err := argon.GenerateFromPassword(password)
	if err != nil {
		return err
	}

	zap.L().Info("Seeding admin account", zap.String("email", email))

	return db.Create(&model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
	}).Error
}
