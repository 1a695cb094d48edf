package service

import (
	"errors"

	"github.com/Eddie1114/portfolio-tracker/internal/models"
	"github.com/Eddie1114/portfolio-tracker/internal/repo"
	"github.com/Eddie1114/portfolio-tracker/pkg/config"
	"github.com/Eddie1114/portfolio-tracker/pkg/types/platforms"

	"gorm.io/gorm"
)

// CredentialResolver supplies the credential bundle for a (user, platform)
// pair. Per-user rows stored through the API win over the process-wide
// defaults from the environment. A missing bundle is a skip signal for the
// orchestrator, not an error.
type CredentialResolver struct {
	repo     *repo.Repository
	defaults map[string]platforms.Credentials
}

func NewCredentialResolver(r *repo.Repository, cfg config.Config) *CredentialResolver {
	return &CredentialResolver{
		repo: r,
		defaults: map[string]platforms.Credentials{
			platforms.PlatformGemini:   {Key: cfg.GeminiAPIKey, Secret: cfg.GeminiAPISecret},
			platforms.PlatformFidelity: {Key: cfg.FidelityClientID, Secret: cfg.FidelityClientSecret},
		},
	}
}

func (c *CredentialResolver) Resolve(userID int64, platform string) (platforms.Credentials, bool) {
	if c.repo != nil {
		cred, err := c.repo.GetPlatformCredential(userID, models.Platform(platform))
		if err == nil {
			bundle := platforms.Credentials{Key: cred.APIKey, Secret: cred.APISecret}
			if !bundle.Empty() {
				return bundle, true
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return platforms.Credentials{}, false
		}
	}

	bundle, ok := c.defaults[platform]
	if !ok || bundle.Empty() {
		return platforms.Credentials{}, false
	}
	return bundle, true
}
