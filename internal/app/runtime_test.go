package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"projector/internal/config"
	"projector/internal/engine"
	"projector/internal/engine/auth"
)

func testEnv() config.Env {
	return config.Env{
		DBDriver:        "sqlite",
		AdminEmployeeID: "admin",
		AdminPassword:   "admin-password",
		LogLevel:        "error",
		Environment:     "test",
		MetricsPrefix:   "projector",
	}
}

func TestOpenSeedsAdminOnce(t *testing.T) {
	auth.BcryptCost = bcrypt.MinCost
	workspace := t.TempDir()
	ctx := context.Background()

	rt, err := Open(ctx, workspace, testEnv())
	require.NoError(t, err)
	emps, err := rt.Engine.ListEmployees(ctx, engine.EmployeeListOptions{})
	require.NoError(t, err)
	require.Len(t, emps, 1)
	require.Equal(t, "admin", emps[0].EmployeeID)
	require.NoError(t, rt.Close())

	rt, err = Open(ctx, workspace, testEnv())
	require.NoError(t, err)
	defer rt.Close()
	emps, err = rt.Engine.ListEmployees(ctx, engine.EmployeeListOptions{})
	require.NoError(t, err)
	require.Len(t, emps, 1)
}

func TestNewAuthUsesConfiguredTTL(t *testing.T) {
	auth.BcryptCost = bcrypt.MinCost
	ctx := context.Background()
	rt, err := Open(ctx, t.TempDir(), testEnv())
	require.NoError(t, err)
	defer rt.Close()

	_, err = rt.NewAuth(nil)
	require.Error(t, err)

	m, err := rt.NewAuth([]byte("secret"))
	require.NoError(t, err)
	s, err := m.Login(ctx, "admin", "admin-password")
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(rt.Config.Session.TTL), s.ExpiresAt, 5*time.Second)

	n, err := rt.PurgeSessions(ctx, 0)
	require.NoError(t, err)
	require.Zero(t, n)
}
