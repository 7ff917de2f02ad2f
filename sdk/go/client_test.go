package projectorsdk

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"projector/internal/config"
	"projector/internal/db"
	"projector/internal/engine"
	"projector/internal/engine/auth"
	"projector/internal/migrate"
	"projector/internal/server"
)

func newAPI(t *testing.T) *httptest.Server {
	t.Helper()
	auth.BcryptCost = bcrypt.MinCost
	conn, err := db.Open(db.Config{Workspace: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, migrate.Migrate(conn))
	e := engine.New(conn, config.Default())
	_, err = e.SeedAdmin(context.Background(), "admin", "admin-password")
	require.NoError(t, err)
	m, err := auth.NewManager(e.Repo, []byte("sdk-secret"), 15*time.Minute)
	require.NoError(t, err)
	h, err := server.New(server.Config{Engine: e, Auth: m})
	require.NoError(t, err)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func TestClientRoundTrip(t *testing.T) {
	srv := newAPI(t)
	ctx := context.Background()
	c := New(srv.URL)

	_, err := c.Programs(ctx, "", "")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)

	s, err := c.Login(ctx, "admin", "admin-password")
	require.NoError(t, err)
	require.Equal(t, "procurement_manager", s.Employee.Role)

	total := 5
	p, err := c.CreateProgram(ctx, CreateProgramInput{
		Title:          "Server racks",
		RequesterName:  "Dana",
		EngagementType: "standard_purchase",
		TotalStations:  &total,
		TargetDate:     "2026-09-01",
	})
	require.NoError(t, err)
	require.Equal(t, "open", p.Status)

	p, err = c.UpdateProgram(ctx, p.ID, map[string]any{"current_station": 4, "target_date": nil})
	require.NoError(t, err)
	require.Nil(t, p.TargetDate)

	view, err := c.Program(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, 80, view.Percentage)
	require.Len(t, view.Stations, 5)

	items, err := c.Programs(ctx, "racks", "open")
	require.NoError(t, err)
	require.Len(t, items, 1)

	dash, err := c.Dashboard(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, dash.Total)

	_, err = c.UpdateProgram(ctx, p.ID, map[string]any{"priority": "someday"})
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	require.Equal(t, "bad_request", apiErr.Code)

	require.NoError(t, c.Logout(ctx))
	_, err = c.Workload(ctx)
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestReadsRetryOnUnavailable(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":{"code":"store_unavailable","message":"store unavailable, try again"}}`))
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	loads, err := c.Workload(context.Background())
	require.NoError(t, err)
	require.Empty(t, loads)
	require.EqualValues(t, 3, calls.Load())
}
