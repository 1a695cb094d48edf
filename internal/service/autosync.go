package service

import (
	"context"

	"github.com/pkg/errors"
)

// SyncAll runs one sync pass for every user that has platform credentials
// on file. It is the handler the background scheduler ticks; per-user
// failures are already absorbed into each user's report, so the only
// error surfaced here is failing to enumerate users.
func (s *SyncService) SyncAll(ctx context.Context) error {
	userIDs, err := s.repo.GetCredentialUserIDs()
	if err != nil {
		return errors.Wrap(err, "failed to list users for auto-sync")
	}

	for _, userID := range userIDs {
		if err := ctx.Err(); err != nil {
			return err
		}
		report := s.Sync(ctx, userID)
		s.logger.Info("auto-sync completed",
			"user_id", userID,
			"synced", len(report.Success),
			"failed", len(report.Errors),
		)
	}

	return nil
}
