package repository

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"upline/internal/models"

	"gorm.io/gorm"
)

type PackageCodeRepository struct {
	db *gorm.DB
}

func NewPackageCodeRepository(db *gorm.DB) *PackageCodeRepository {
	return &PackageCodeRepository{db: db}
}

// generatePackageCode returns a 10-character uppercase hex code.
func generatePackageCode() (string, error) {
	b := make([]byte, 5)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(b)), nil
}

// GenerateBatch creates quantity fresh codes for a package and returns the
// code strings. A unique-index collision is retried with a new code.
func (r *PackageCodeRepository) GenerateBatch(packageID uint, quantity int) ([]string, error) {
	codes := make([]string, 0, quantity)
	for i := 0; i < quantity; i++ {
		var created bool
		for attempt := 0; attempt < 10; attempt++ {
			code, err := generatePackageCode()
			if err != nil {
				return codes, err
			}
			pc := models.PackageCode{Code: code, PackageID: packageID}
			if err := r.db.Create(&pc).Error; err == nil {
				codes = append(codes, code)
				created = true
				break
			}
		}
		if !created {
			return codes, fmt.Errorf("failed to generate a unique package code after retries")
		}
	}
	return codes, nil
}

// GetUnused returns the code record only if it exists and has not been
// redeemed yet.
func (r *PackageCodeRepository) GetUnused(code string) (*models.PackageCode, error) {
	var pc models.PackageCode
	err := r.db.Preload("Package").Where("code = ? AND assigned_to IS NULL", code).First(&pc).Error
	if err != nil {
		return nil, err
	}
	return &pc, nil
}

// Assign marks the code as redeemed by the given user. Redemption is never
// reversed.
func (r *PackageCodeRepository) Assign(codeID, userID uint) error {
	return r.db.Model(&models.PackageCode{}).
		Where("id = ? AND assigned_to IS NULL", codeID).
		Update("assigned_to", userID).Error
}

func (r *PackageCodeRepository) List(limit, offset int) ([]models.PackageCode, error) {
	var list []models.PackageCode
	err := r.db.Preload("Package").Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}
