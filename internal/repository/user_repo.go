package repository

import (
	"upline/internal/models"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(u *models.User) error {
	return r.db.Create(u).Error
}

func (r *UserRepository) GetByID(id uint) (*models.User, error) {
	var u models.User
	err := r.db.Preload("Package").First(&u, id).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	var u models.User
	err := r.db.Preload("Package").Where("email = ?", email).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByUsername(username string) (*models.User, error) {
	var u models.User
	err := r.db.Preload("Package").Where("username = ?", username).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByVerificationCode(code string) (*models.User, error) {
	var u models.User
	err := r.db.Where("verification_code = ?", code).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) Update(u *models.User) error {
	return r.db.Save(u).Error
}

// ListReferrals returns the direct children of the given username, in
// insertion order.
func (r *UserRepository) ListReferrals(username string) ([]models.User, error) {
	var list []models.User
	err := r.db.Preload("Package").Where("referred_by = ?", username).Order("id ASC").Find(&list).Error
	return list, err
}

func (r *UserRepository) ListByRole(role string, limit, offset int) ([]models.User, error) {
	var list []models.User
	err := r.db.Preload("Package").Where("role = ?", role).Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}
