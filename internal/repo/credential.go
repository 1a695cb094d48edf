package repo

import (
	"errors"

	"github.com/Eddie1114/portfolio-tracker/internal/models"

	"gorm.io/gorm"
)

// UpsertPlatformCredential stores one credential row per (user, platform),
// overwriting any previous bundle for that platform.
func (r *Repository) UpsertPlatformCredential(cred *models.PlatformCredential) error {
	var existing models.PlatformCredential
	err := r.db.Where("user_id = ? AND platform = ?", cred.UserID, cred.Platform).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.Create(cred).Error
	}
	if err != nil {
		return err
	}

	cred.ID = existing.ID
	cred.CreatedAt = existing.CreatedAt
	return r.db.Save(cred).Error
}

func (r *Repository) GetPlatformCredential(userID int64, platform models.Platform) (*models.PlatformCredential, error) {
	var cred models.PlatformCredential
	if err := r.db.Where("user_id = ? AND platform = ?", userID, platform).First(&cred).Error; err != nil {
		return nil, err
	}
	return &cred, nil
}

func (r *Repository) GetCredentialsByUser(userID int64) ([]models.PlatformCredential, error) {
	var creds []models.PlatformCredential
	if err := r.db.Where("user_id = ?", userID).Order("platform").Find(&creds).Error; err != nil {
		return nil, err
	}
	return creds, nil
}

// GetCredentialUserIDs returns the distinct users that stored platform
// credentials. The background sync iterates over this set.
func (r *Repository) GetCredentialUserIDs() ([]int64, error) {
	var ids []int64
	if err := r.db.Model(&models.PlatformCredential{}).Distinct("user_id").Pluck("user_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
