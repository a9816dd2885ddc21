package seed

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/achievement-portal/internal/app/models"
	"github.com/yigit/achievement-portal/internal/config"
)

// AdminProvisioner is the subset of the auth service needed to seed the administrator
type AdminProvisioner interface {
	EnsureAdmin(ctx context.Context, username, password string) (*models.Admin, bool, error)
}

// EnsureAdmin creates the configured administrator on first start. Nothing
// is seeded while no admin password is configured.
func EnsureAdmin(ctx context.Context, auth AdminProvisioner, cfg *config.Config, lgr zerolog.Logger) error {
	if cfg.Admin.Password == "" {
		lgr.Info().Msg("No admin password configured, skipping admin seed")
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	admin, created, err := auth.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Password)
	if err != nil {
		return err
	}
	if created {
		lgr.Info().Int64("adminID", admin.ID).Str("username", admin.Username).Msg("Default admin account created")
	} else {
		lgr.Debug().Str("username", admin.Username).Msg("Admin account already present")
	}
	return nil
}
