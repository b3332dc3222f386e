package db

import (
	"errors"

	"github.com/terraincognita07/bitebuddy/internal/models"
	"gorm.io/gorm"
)

type ProfileRepository struct {
	database *gorm.DB
}

func NewProfileRepository(database *gorm.DB) *ProfileRepository {
	return &ProfileRepository{database: database}
}

func (repo *ProfileRepository) Count() (int64, error) {
	var count int64
	if err := repo.database.Model(&models.Profile{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (repo *ProfileRepository) FindByID(profileID uint) (models.Profile, error) {
	var profile models.Profile
	if err := repo.database.First(&profile, profileID).Error; err != nil {
		return models.Profile{}, err
	}
	return profile, nil
}

func (repo *ProfileRepository) FindByNormalizedEmail(email string) (models.Profile, error) {
	var profile models.Profile
	if err := repo.database.Where("lower(trim(email)) = ?", email).First(&profile).Error; err != nil {
		return models.Profile{}, err
	}
	return profile, nil
}

// FindOwner returns the first profile; the ledger has a single owner.
func (repo *ProfileRepository) FindOwner() (models.Profile, bool, error) {
	var profile models.Profile
	err := repo.database.Order("id ASC").First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Profile{}, false, nil
	}
	if err != nil {
		return models.Profile{}, false, err
	}
	return profile, true, nil
}

func (repo *ProfileRepository) Create(profile *models.Profile) error {
	return repo.database.Create(profile).Error
}

func (repo *ProfileRepository) Save(profile *models.Profile) error {
	return repo.database.Save(profile).Error
}

func (repo *ProfileRepository) UpdatePassword(profileID uint, passwordHash string, mustChangePassword bool) error {
	return repo.database.Model(&models.Profile{}).Where("id = ?", profileID).Updates(map[string]any{
		"password_hash":        passwordHash,
		"must_change_password": mustChangePassword,
	}).Error
}
