package repository

import (
	"upline/internal/models"

	"gorm.io/gorm"
)

type PackageRepository struct {
	db *gorm.DB
}

func NewPackageRepository(db *gorm.DB) *PackageRepository {
	return &PackageRepository{db: db}
}

func (r *PackageRepository) Create(p *models.Package) error {
	return r.db.Create(p).Error
}

func (r *PackageRepository) GetByID(id uint) (*models.Package, error) {
	var p models.Package
	err := r.db.First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PackageRepository) GetByName(name string) (*models.Package, error) {
	var p models.Package
	err := r.db.Where("name = ?", name).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PackageRepository) List() ([]models.Package, error) {
	var list []models.Package
	err := r.db.Order("price ASC").Find(&list).Error
	return list, err
}
