// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"

	credentialstore "github.com/deskhubhq/deskhub/internal/app/store/credentials"
	userstore "github.com/deskhubhq/deskhub/internal/app/store/users"
	"github.com/deskhubhq/deskhub/internal/app/system/authz"
	"github.com/deskhubhq/deskhub/internal/app/system/identity"
	"github.com/deskhubhq/deskhub/internal/app/system/metrics"
	"github.com/deskhubhq/deskhub/internal/app/system/status"
	"github.com/deskhubhq/deskhub/internal/domain/models"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	metrics.Init()

	if appCfg.AdminEmail == "" {
		logger.Info("admin seeding disabled (admin_email not set)")
		return nil
	}
	return seedAdmin(ctx, deps, appCfg.AdminEmail, appCfg.AdminPassword, appCfg.AdminName, logger)
}

// seedAdmin makes sure an active admin account exists so a fresh install is
// usable. It is idempotent: restarting with the same config never creates a
// second account or a second user record.
func seedAdmin(ctx context.Context, deps DBDeps, email, password, name string, logger *zap.Logger) error {
	users := userstore.New(deps.MongoDatabase)
	creds := credentialstore.New(deps.MongoDatabase)

	authID, err := creds.CreateAccount(ctx, email, password)
	if errors.Is(err, identity.ErrEmailInUse) {
		// Account already exists; sign in to recover its auth id.
		authID, err = creds.SignIn(ctx, email, password)
		if errors.Is(err, identity.ErrInvalidCredentials) {
			logger.Warn("admin account exists with a different password; skipping seed",
				zap.String("email", email))
			return nil
		}
	}
	if err != nil {
		return fmt.Errorf("seed admin account: %w", err)
	}

	existing, err := users.FindAllByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("seed admin lookup: %w", err)
	}
	if len(existing) > 0 {
		logger.Info("admin user record already present", zap.String("email", email))
		return nil
	}

	now := time.Now().UTC()
	admin := models.User{
		ID:        authID,
		Email:     email,
		FirstName: name,
		Role:      authz.RoleAdmin,
		UserType:  "employee",
		Status:    status.Active,
		Project:   nil,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := users.Insert(ctx, admin); err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}

	logger.Info("seeded admin user", zap.String("email", email))
	return nil
}
