package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"projector/internal/config"
	"projector/internal/db"
	"projector/internal/domain"
	"projector/internal/engine"
	"projector/internal/engine/auth"
	"projector/internal/migrate"
	"projector/internal/telemetry"
)

// Runtime is everything a command needs to talk to one workspace.
type Runtime struct {
	Workspace string
	Env       config.Env
	Config    *config.Config
	DB        *sqlx.DB
	Engine    engine.Engine
	Logger    *zap.Logger
	Metrics   *telemetry.Metrics
}

// Open connects to the workspace store, applies migrations, loads
// projector.yml (defaults when absent) and seeds the first administrator when
// the environment provides a password.
func Open(ctx context.Context, workspace string, env config.Env) (*Runtime, error) {
	logger, err := telemetry.NewLogger(env.LogLevel, env.Environment)
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadOptional(workspace)
	if err != nil {
		return nil, err
	}
	conn, err := db.Open(db.Config{Workspace: workspace, Driver: env.DBDriver, URL: env.DatabaseURL})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if err := migrate.Migrate(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	metrics := telemetry.NewMetrics(env.MetricsPrefix)
	e := engine.New(conn, cfg)
	e.Logger = logger
	e.Metrics = metrics

	rt := &Runtime{
		Workspace: workspace,
		Env:       env,
		Config:    cfg,
		DB:        conn,
		Engine:    e,
		Logger:    logger,
		Metrics:   metrics,
	}
	if env.AdminPassword != "" {
		created, err := e.SeedAdmin(ctx, env.AdminEmployeeID, env.AdminPassword)
		if err != nil {
			rt.Close()
			return nil, err
		}
		if created {
			logger.Info("seeded administrator", zap.String("employee_id", env.AdminEmployeeID))
		}
	}
	return rt, nil
}

// NewAuth builds the session manager with the configured token lifetime.
func (rt *Runtime) NewAuth(secret []byte) (*auth.Manager, error) {
	m, err := auth.NewManager(rt.Engine.Repo, secret, rt.Config.Session.TTL)
	if err != nil {
		return nil, err
	}
	m.Logger = rt.Logger
	m.Metrics = rt.Metrics
	return m, nil
}

// PurgeSessions drops session rows that expired before now minus grace.
func (rt *Runtime) PurgeSessions(ctx context.Context, grace time.Duration) (int64, error) {
	before := time.Now().UTC().Add(-grace).Format(domain.TimestampLayout)
	n, err := rt.Engine.Repo.PurgeSessions(ctx, before)
	if err != nil {
		return 0, domain.RemoteError{Op: "purge sessions", Err: err}
	}
	if n > 0 {
		rt.Logger.Info("purged expired sessions", zap.Int64("count", n))
	}
	return n, nil
}

func (rt *Runtime) Close() error {
	_ = rt.Logger.Sync()
	return rt.DB.Close()
}
