// Package app wires configuration, logging, the platform client and the
// database together for the two admin commands.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/patric-chuzhbe/lmkadmin/internal/auth"
	"github.com/patric-chuzhbe/lmkadmin/internal/config"
	"github.com/patric-chuzhbe/lmkadmin/internal/db/postgresdb"
	"github.com/patric-chuzhbe/lmkadmin/internal/logger"
	"github.com/patric-chuzhbe/lmkadmin/internal/models"
	"github.com/patric-chuzhbe/lmkadmin/internal/platform"
	"github.com/patric-chuzhbe/lmkadmin/internal/schema"
	"github.com/patric-chuzhbe/lmkadmin/internal/service"
)

// App holds the loaded configuration shared by both commands.
type App struct {
	cfg *config.Config
}

// New loads the configuration, initializes the logger and checks the
// service role key.
func New(optionsProto ...config.InitOption) (*App, error) {
	cfg, err := config.New(optionsProto...)
	if err != nil {
		return nil, err
	}

	err = logger.Init(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	inspectServiceKey(cfg.ServiceRoleKey, time.Now())

	return &App{cfg: cfg}, nil
}

// inspectServiceKey only warns: opaque keys are legal and the platform has
// the final word on what the key may do.
func inspectServiceKey(key string, now time.Time) {
	claims, err := auth.ParseServiceKey(key)
	if err != nil {
		logger.Log.Warnln("The service role key is not a JWT, skipping key checks:", err)
		return
	}

	if !claims.IsServiceRole() {
		logger.Log.Warnw("The configured key is not a service role key, admin calls will be rejected", "role", claims.Role)
	}

	if claims.Expired(now) {
		logger.Log.Warnw("The service role key has expired", "expiredAt", claims.ExpiresAt.Time)
	}
}

// CreateTestUser provisions a verified test user and its profile.
func (a *App) CreateTestUser(ctx context.Context) (*models.TestAccount, error) {
	client := platform.New(a.cfg.ProjectURL, a.cfg.ServiceRoleKey, a.cfg.RequestTimeout)

	return service.New(client).Create(ctx, models.TestUserParams{
		Email:    a.cfg.TestUserEmail,
		Password: a.cfg.TestUserPassword,
		FullName: a.cfg.TestUserFullName,
		Location: a.cfg.TestUserLocation,
		Tags:     a.cfg.TestUserTags,
	})
}

// InitSchema replays the SQL script against the project database, then
// applies goose migrations when a migrations directory is configured.
func (a *App) InitSchema(ctx context.Context) (models.SchemaSummary, error) {
	script, err := schema.Load(a.cfg.SchemaFile)
	if err != nil {
		return models.SchemaSummary{}, err
	}

	source := a.cfg.SchemaFile
	if source == "" {
		source = schema.DefaultScriptName + " (embedded)"
	}
	logger.Log.Infoln("Loaded SQL migration from", source)

	dsn, err := a.cfg.DSN()
	if err != nil {
		return models.SchemaSummary{}, err
	}

	logger.Log.Infoln("Connecting to PostgreSQL...", "driver", a.cfg.DBDriver)

	db, err := postgresdb.New(ctx, a.cfg.DBDriver, dsn, a.cfg.DBConnectionTimeout)
	if err != nil {
		return models.SchemaSummary{}, err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Log.Errorln("Error closing the database connection:", err)
		}
	}()

	logger.Log.Infoln("Connected to PostgreSQL")

	summary, err := schema.NewInitializer(db).Run(ctx, schema.Split(script))
	if err != nil {
		return summary, err
	}

	if a.cfg.MigrationsDir != "" {
		if err := db.ApplyMigrations(ctx, a.cfg.MigrationsDir); err != nil {
			return summary, fmt.Errorf("applying migrations from %s: %w", a.cfg.MigrationsDir, err)
		}
	}

	return summary, nil
}

// Close finalizes resources used by App such as logging.
func (a *App) Close() {
	if err := logger.Sync(); err != nil {
		fmt.Println("Logger sync error:", err)
	}
}
