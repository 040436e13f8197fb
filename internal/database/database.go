package database

import (
	"errors"
	"log"

	"upline/config"
	"upline/internal/domain"
	"upline/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error), // Only log errors, not every SQL query
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// AutoMigrate runs Gorm auto-migration for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Package{},
		&models.PackageCode{},
		&models.Transaction{},
		&models.Notification{},
		&models.Withdrawal{},
	)
}

// SeedSuperadmin creates the root of the referral tree if it does not exist.
// Every user registered without a referrer hangs off this account.
func SeedSuperadmin(db *gorm.DB) {
	var u models.User
	err := db.Where("username = ?", domain.SuperadminUsername).First(&u).Error
	if err == nil {
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("[seed] superadmin lookup failed: %v", err)
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte("change-me-now"), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("[seed] superadmin hash failed: %v", err)
		return
	}
	u = models.User{
		Name:         "Super Admin",
		Username:     domain.SuperadminUsername,
		Email:        "admin@upline.local",
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
	}
	if err := db.Create(&u).Error; err != nil {
		log.Printf("[seed] superadmin create failed: %v", err)
		return
	}
	log.Printf("[seed] superadmin created (change the default password)")
}
