package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"referral-intake/internal/auth"
	"referral-intake/internal/referrals"
	"referral-intake/internal/services/health"
	"referral-intake/internal/sessions"
	"referral-intake/internal/shared/config"
	"referral-intake/internal/shared/server"
	"referral-intake/internal/shared/storage/db"
	"referral-intake/internal/shared/storage/docdb"
	"referral-intake/internal/shared/storage/object"
	localstore "referral-intake/internal/shared/storage/object/local"
	s3store "referral-intake/internal/shared/storage/object/s3"
	"referral-intake/internal/shared/telemetry"
)

// App holds shared dependencies.
type App struct {
	Config          config.Config
	Router          *gin.Engine
	DB              *sql.DB
	Mongo           *mongo.Client
	Store           object.ObjectStore
	Repo            referrals.Repo
	Sessions        *sessions.Manager
	ReferralService *referrals.Service
	AuthService     *auth.Service
	ReferralHandler *referrals.Handler
	AuthHandler     *auth.Handler
	Health          *health.Service
}

// Build connects storage, constructs services and wires the router.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	if strings.TrimSpace(cfg.SessionSecret) == "" {
		if !cfg.IsDevLike() {
			return nil, errors.New("SESSION_SECRET is required")
		}
		cfg.SessionSecret = config.DefaultSessionSecret
	}

	app := &App{Config: cfg}

	if err := app.buildRepo(ctx); err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		app.Close(ctx)
		return nil, err
	}
	app.Store = store

	app.Sessions = sessions.NewManager(
		sessions.NewMemoryStore(nil),
		cfg.SessionSecret,
		cfg.SessionTTL,
		cfg.SessionCookieSecure,
	)
	app.AuthService = auth.NewService(cfg.AdminUser, cfg.AdminPassword)
	app.ReferralService = &referrals.Service{
		Repo:              app.Repo,
		Store:             app.Store,
		DeleteResumeFiles: cfg.DeleteResumeFiles,
	}
	app.AuthHandler = auth.NewHandler(app.AuthService, app.Sessions)
	app.ReferralHandler = referrals.NewHandler(app.ReferralService, cfg.MaxUploadBytes)
	app.Health = health.NewService(app.healthChecks())

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          cfg,
		Sessions:        app.Sessions,
		AuthHandler:     app.AuthHandler,
		ReferralHandler: app.ReferralHandler,
		Health:          app.Health,
	})

	return app, nil
}

// Close releases database connections.
func (a *App) Close(ctx context.Context) {
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			telemetry.Warn("bootstrap.db_close_failed", map[string]any{"error": err})
		}
	}
	if a.Mongo != nil {
		if err := a.Mongo.Disconnect(ctx); err != nil {
			telemetry.Warn("bootstrap.mongo_close_failed", map[string]any{"error": err})
		}
	}
}

func (a *App) buildRepo(ctx context.Context) error {
	cfg := a.Config
	url := strings.TrimSpace(cfg.DatabaseURL)
	if url == "" {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.memory_repo", map[string]any{"reason": "DATABASE_URL empty"})
			a.Repo = referrals.NewMemoryRepo()
			return nil
		}
		return errors.New("DATABASE_URL is required")
	}

	if docdb.IsMongoURI(url) {
		client, err := docdb.Connect(ctx, url)
		if err != nil {
			return a.fallbackOr(err)
		}
		repo := referrals.NewMongoRepo(client.Database(docdb.DatabaseFromURI(url, cfg.MongoDatabase)))
		if err := repo.EnsureIndexes(ctx); err != nil {
			telemetry.Warn("bootstrap.mongo_index_failed", map[string]any{"error": err})
		}
		a.Mongo = client
		a.Repo = repo
		telemetry.Info("bootstrap.repo", map[string]any{"backend": "mongo"})
		return nil
	}

	sqlDB, err := db.Connect(ctx, url, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		return a.fallbackOr(err)
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		return a.fallbackOr(fmt.Errorf("run migrations: %w", err))
	}
	a.DB = sqlDB
	a.Repo = &referrals.PGRepo{DB: sqlDB}
	telemetry.Info("bootstrap.repo", map[string]any{"backend": "postgres"})
	return nil
}

// fallbackOr switches to the in-memory repo in dev-like environments and
// returns err everywhere else.
func (a *App) fallbackOr(err error) error {
	if !a.Config.IsDevLike() {
		return err
	}
	telemetry.Warn("bootstrap.memory_repo", map[string]any{"reason": "database connect failed", "error": err})
	a.Repo = referrals.NewMemoryRepo()
	return nil
}

func (a *App) healthChecks() map[string]health.Check {
	checks := map[string]health.Check{}
	if a.DB != nil {
		checks["postgres"] = a.DB.PingContext
	}
	if a.Mongo != nil {
		checks["mongo"] = func(ctx context.Context) error {
			return a.Mongo.Ping(ctx, nil)
		}
	}
	return checks
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, errors.New("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		storeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return s3store.New(storeCtx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}
