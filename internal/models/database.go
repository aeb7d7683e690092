package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/NafisaTasnimR/UpNext/internal/config"
	"github.com/NafisaTasnimR/UpNext/internal/utils"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Open connects to the configured database without touching the global handle.
func Open(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	logLevel := logger.Warn
	if cfg.Debug {
		logLevel = logger.Info
	}
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	// every connection to an in-memory sqlite database sees its own empty database
	if cfg.Driver == "sqlite" && strings.Contains(cfg.DSN, ":memory:") {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

func InitDB(cfg *config.DatabaseConfig) error {
	db, err := Open(cfg)
	if err != nil {
		return err
	}
	DB = db
	return nil
}

// Migrate creates or updates every table on the given connection.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Project{},
		&ProjectMember{},
		&Task{},
		&TaskDependency{},
		&ActivityLog{},
		&Notification{},
		&Comment{},
		&Attachment{},
		&SchedulerLock{},
	)
}

func AutoMigrate() error {
	return Migrate(DB)
}

func GetDB() *gorm.DB {
	return DB
}

const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin123"
)

// SeedDefaultData creates the bootstrap admin account if no user with that name exists.
func SeedDefaultData() error {
	return SeedAdmin(DB)
}

func SeedAdmin(db *gorm.DB) error {
	var existing User
	err := db.Where("username = ?", DefaultAdminUsername).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := utils.HashPassword(DefaultAdminPassword)
	if err != nil {
		return err
	}
	admin := User{
		Username:   DefaultAdminUsername,
		Password:   hash,
		Email:      "admin@upnext.local",
		FullName:   "Administrator",
		GlobalRole: RoleAdmin,
		Status:     UserActive,
	}
	return db.Create(&admin).Error
}
