package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"projector/internal/db"
	"projector/internal/domain"
	"projector/internal/migrate"
	"projector/internal/repo"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func setupManager(t *testing.T) (*Manager, *clock, repo.Repo) {
	t.Helper()
	BcryptCost = bcrypt.MinCost
	conn, err := db.Open(db.Config{Workspace: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, migrate.Migrate(conn))
	r := repo.Repo{DB: conn}

	hash, err := HashPassword("correct-horse")
	require.NoError(t, err)
	stamp := "2026-01-01T00:00:00.000000Z"
	require.NoError(t, r.InsertEmployee(context.Background(), nil, domain.Employee{
		ID: "e1", EmployeeID: "dana", FullName: "Dana", PasswordHash: hash,
		Role: domain.RoleTeamLeader, IsActive: true, CreatedDate: stamp, UpdatedDate: stamp,
	}))

	c := &clock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	m, err := NewManager(r, []byte("test-secret"), 15*time.Minute)
	require.NoError(t, err)
	m.Now = c.now
	return m, c, r
}

func TestLoginAndVerify(t *testing.T) {
	m, _, _ := setupManager(t)
	ctx := context.Background()
	s, err := m.Login(ctx, " dana ", "correct-horse")
	require.NoError(t, err)
	require.NotEmpty(t, s.Token)
	require.Equal(t, "e1", s.Employee.ID)
	require.Equal(t, "Team leader", s.Employee.RoleLabel)

	id, err := m.Verify(ctx, s.Token)
	require.NoError(t, err)
	require.Equal(t, "dana", id.EmployeeID)
	require.Equal(t, s.Employee.SessionID, id.SessionID)
}

func TestLoginFailuresLookAlike(t *testing.T) {
	m, _, r := setupManager(t)
	ctx := context.Background()
	_, wrongPassword := m.Login(ctx, "dana", "nope-nope")
	_, unknown := m.Login(ctx, "ghost", "correct-horse")

	emp, err := r.GetEmployee(ctx, "e1")
	require.NoError(t, err)
	emp.IsActive = false
	require.NoError(t, r.UpdateEmployee(ctx, nil, emp))
	_, inactive := m.Login(ctx, "dana", "correct-horse")

	for _, err := range []error{wrongPassword, unknown, inactive} {
		require.True(t, domain.IsAuth(err), "got %v", err)
		require.Equal(t, "invalid credentials", err.Error())
	}
}

func TestVerifyRejectsExpiredTokens(t *testing.T) {
	m, c, _ := setupManager(t)
	ctx := context.Background()
	s, err := m.Login(ctx, "dana", "correct-horse")
	require.NoError(t, err)
	c.t = c.t.Add(16 * time.Minute)
	_, err = m.Verify(ctx, s.Token)
	require.True(t, domain.IsAuth(err))
}

func TestVerifyRevalidatesEmployee(t *testing.T) {
	m, _, r := setupManager(t)
	ctx := context.Background()
	s, err := m.Login(ctx, "dana", "correct-horse")
	require.NoError(t, err)

	emp, err := r.GetEmployee(ctx, "e1")
	require.NoError(t, err)
	emp.IsActive = false
	require.NoError(t, r.UpdateEmployee(ctx, nil, emp))

	_, err = m.Verify(ctx, s.Token)
	require.True(t, domain.IsAuth(err))
}

func TestVerifyRejectsTampering(t *testing.T) {
	m, _, r := setupManager(t)
	ctx := context.Background()
	s, err := m.Login(ctx, "dana", "correct-horse")
	require.NoError(t, err)

	other, err := NewManager(r, []byte("other-secret"), time.Minute)
	require.NoError(t, err)
	_, err = other.Verify(ctx, s.Token)
	require.True(t, domain.IsAuth(err))

	_, err = m.Verify(ctx, s.Token+"x")
	require.True(t, domain.IsAuth(err))
	_, err = m.Verify(ctx, "")
	require.True(t, domain.IsAuth(err))
}

func TestRefreshAndLogout(t *testing.T) {
	m, c, _ := setupManager(t)
	ctx := context.Background()
	s, err := m.Login(ctx, "dana", "correct-horse")
	require.NoError(t, err)

	c.t = c.t.Add(10 * time.Minute)
	fresh, err := m.Refresh(ctx, s.Token)
	require.NoError(t, err)
	require.NotEqual(t, s.Token, fresh.Token)
	require.True(t, fresh.ExpiresAt.After(s.ExpiresAt))

	_, err = m.Verify(ctx, s.Token)
	require.True(t, domain.IsAuth(err), "old session must be revoked")

	require.NoError(t, m.Logout(ctx, fresh.Token))
	_, err = m.Verify(ctx, fresh.Token)
	require.True(t, domain.IsAuth(err))
	require.True(t, domain.IsAuth(m.Logout(ctx, fresh.Token)))
}

func TestPasswordRules(t *testing.T) {
	require.True(t, domain.IsValidation(ValidatePassword("short")))
	require.True(t, domain.IsValidation(ValidatePassword(strings.Repeat("x", MaxPasswordLen+1))))
	require.NoError(t, ValidatePassword(strings.Repeat("x", MaxPasswordLen)))

	BcryptCost = bcrypt.MinCost
	hash, err := HashPassword("correct-horse")
	require.NoError(t, err)
	require.True(t, CheckPassword(hash, "correct-horse"))
	require.False(t, CheckPassword(hash, "correct-horsE"))
}

func TestRolePermissions(t *testing.T) {
	manager := Identity{Role: domain.RoleProcurementManager}
	leader := Identity{Role: domain.RoleTeamLeader}
	junior := Identity{Role: domain.RoleJuniorOfficer}

	require.NoError(t, Require(manager, PermManageEmployees))
	require.NoError(t, Require(leader, PermManageCatalog))

	err := Require(leader, PermManageEmployees)
	var fe ForbiddenError
	require.True(t, errors.As(err, &fe))
	require.Equal(t, PermManageEmployees, fe.Permission)

	require.Error(t, Require(junior, PermManageCatalog))
	require.NoError(t, Require(junior, PermWritePrograms))
	require.Len(t, Permissions(domain.RoleProcurementManager), 3)
}

func TestNewManagerNeedsSecret(t *testing.T) {
	_, err := NewManager(repo.Repo{}, nil, time.Minute)
	require.Error(t, err)
}
