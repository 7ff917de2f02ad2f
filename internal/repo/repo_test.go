package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"projector/internal/db"
	"projector/internal/domain"
	"projector/internal/migrate"
)

const stamp = "2026-01-02T03:04:05.000000Z"

func setupRepo(t *testing.T) Repo {
	t.Helper()
	conn, err := db.Open(db.Config{Workspace: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, migrate.Migrate(conn))
	return Repo{DB: conn}
}

func sampleProgram(id, created string) domain.Program {
	return domain.Program{
		ID:             id,
		Title:          "Laptops " + id,
		Status:         domain.StatusOpen,
		RequesterName:  "Dana",
		EngagementType: domain.DefaultEngagementKind,
		Priority:       domain.PriorityMedium,
		CurrentStation: 1,
		TotalStations:  5,
		CreatedDate:    created,
		UpdatedDate:    created,
	}
}

func TestProgramRoundTrip(t *testing.T) {
	r := setupRepo(t)
	ctx := context.Background()
	budget := 1200.5
	target := "2026-03-01"
	p := sampleProgram("p1", stamp)
	p.EstimatedBudget = &budget
	p.TargetDate = &target
	require.NoError(t, r.InsertProgram(ctx, nil, p))

	got, err := r.GetProgram(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, p, got)

	got.Status = domain.StatusInProgress
	got.CurrentStation = 3
	got.TargetDate = nil
	require.NoError(t, r.UpdateProgram(ctx, nil, got))
	again, err := r.GetProgram(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, domain.StatusInProgress, again.Status)
	require.Equal(t, 3, again.CurrentStation)
	require.Nil(t, again.TargetDate)
}

func TestMissingRowsReportNotFound(t *testing.T) {
	r := setupRepo(t)
	ctx := context.Background()
	_, err := r.GetProgram(ctx, "nope")
	require.ErrorIs(t, err, domain.ErrNotFound)
	err = r.UpdateProgram(ctx, nil, sampleProgram("nope", stamp))
	require.ErrorIs(t, err, domain.ErrNotFound)
	err = r.DeleteEmployee(ctx, nil, "nope")
	require.ErrorIs(t, err, domain.ErrNotFound)
	_, err = r.GetReference(ctx, domain.ReferenceDivision, "nope")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListProgramsSorts(t *testing.T) {
	r := setupRepo(t)
	ctx := context.Background()
	require.NoError(t, r.InsertProgram(ctx, nil, sampleProgram("a", "2026-01-01T00:00:00.000000Z")))
	require.NoError(t, r.InsertProgram(ctx, nil, sampleProgram("b", "2026-01-03T00:00:00.000000Z")))
	require.NoError(t, r.InsertProgram(ctx, nil, sampleProgram("c", "2026-01-02T00:00:00.000000Z")))

	items, err := r.ListPrograms(ctx, "")
	require.NoError(t, err)
	require.Equal(t, []string{"b", "c", "a"}, programIDs(items))

	items, err = r.ListPrograms(ctx, "created_date")
	require.NoError(t, err)
	require.Equal(t, []string{"a", "c", "b"}, programIDs(items))

	_, err = r.ListPrograms(ctx, "password_hash")
	require.True(t, domain.IsValidation(err))
}

func programIDs(items []domain.Program) []string {
	out := make([]string, 0, len(items))
	for _, p := range items {
		out = append(out, p.ID)
	}
	return out
}

func TestEmployeesActiveFilterAndRename(t *testing.T) {
	r := setupRepo(t)
	ctx := context.Background()
	for _, e := range []domain.Employee{
		{ID: "e1", EmployeeID: "dana", FullName: "Dana", PasswordHash: "x", Role: domain.RoleTeamLeader, IsActive: true, CreatedDate: stamp, UpdatedDate: stamp},
		{ID: "e2", EmployeeID: "omer", FullName: "Omer", PasswordHash: "x", Role: domain.RoleJuniorOfficer, IsActive: false, CreatedDate: stamp, UpdatedDate: stamp},
	} {
		require.NoError(t, r.InsertEmployee(ctx, nil, e))
	}
	all, err := r.ListEmployees(ctx, "", false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	active, err := r.ListEmployees(ctx, "", true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, "e1", active[0].ID)

	byLogin, err := r.GetEmployeeByLogin(ctx, "omer")
	require.NoError(t, err)
	require.False(t, byLogin.IsActive)

	p := sampleProgram("p1", stamp)
	p.AssignedEmployeeID = "e1"
	p.AssignedEmployee = "Dana"
	require.NoError(t, r.InsertProgram(ctx, nil, p))
	require.NoError(t, r.RenameAssignee(ctx, nil, "e1", "Dana Levi"))
	got, err := r.GetProgram(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, "Dana Levi", got.AssignedEmployee)

	dup := domain.Employee{ID: "e3", EmployeeID: "dana", FullName: "Other", PasswordHash: "x", Role: domain.RoleTeamLeader, CreatedDate: stamp, UpdatedDate: stamp}
	require.Error(t, r.InsertEmployee(ctx, nil, dup))
}

func TestReferenceKindsAreSeparateTables(t *testing.T) {
	r := setupRepo(t)
	ctx := context.Background()
	require.NoError(t, r.InsertReference(ctx, nil, domain.Reference{ID: "d1", Kind: domain.ReferenceDepartment, Name: "Finance", CreatedDate: stamp, UpdatedDate: stamp}))
	require.NoError(t, r.InsertReference(ctx, nil, domain.Reference{ID: "v1", Kind: domain.ReferenceDivision, Name: "North", CreatedDate: stamp, UpdatedDate: stamp}))

	deps, err := r.ListReferences(ctx, domain.ReferenceDepartment, "")
	require.NoError(t, err)
	require.Len(t, deps, 1)
	require.Equal(t, domain.ReferenceDepartment, deps[0].Kind)

	_, err = r.GetReference(ctx, domain.ReferenceDepartment, "v1")
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = r.ListReferences(ctx, domain.ReferenceKind("vendors"), "")
	require.Error(t, err)
}

func TestCatalogJSONColumns(t *testing.T) {
	r := setupRepo(t)
	ctx := context.Background()
	et := domain.EngagementType{
		ID:             "t1",
		TypeName:       "framework",
		ApprovalLevels: domain.StringList{"manager", "board"},
		DefaultActivities: domain.ActivityTemplate{
			{Station: 1, ActivityName: "Scope"},
			{Station: 2, ActivityName: "Tender", EstimatedDays: 10},
		},
		IsActive:    true,
		CreatedDate: stamp,
		UpdatedDate: stamp,
	}
	require.NoError(t, r.InsertEngagementType(ctx, nil, et))
	got, err := r.GetEngagementTypeByName(ctx, "framework")
	require.NoError(t, err)
	require.Equal(t, et, got)

	a := domain.ActivityPool{
		ID:              "a1",
		ActivityName:    "Market survey",
		Category:        domain.ActivityCategories[1],
		ComplexityLevel: domain.ComplexityLevel("medium"),
		RequiredSkills:  domain.StringList{"analysis"},
		IsMandatory:     true,
		CreatedDate:     stamp,
		UpdatedDate:     stamp,
	}
	require.NoError(t, r.InsertActivity(ctx, nil, a))
	list, err := r.ListActivities(ctx, "")
	require.NoError(t, err)
	require.Equal(t, []domain.ActivityPool{a}, list)
}

func TestSessionsRevokeAndExtend(t *testing.T) {
	r := setupRepo(t)
	ctx := context.Background()
	require.NoError(t, r.InsertEmployee(ctx, nil, domain.Employee{ID: "e1", EmployeeID: "dana", FullName: "Dana", PasswordHash: "x", Role: domain.RoleTeamLeader, IsActive: true, CreatedDate: stamp, UpdatedDate: stamp}))
	require.NoError(t, r.InsertSession(ctx, nil, domain.Session{ID: "s1", EmployeeID: "e1", CreatedAt: stamp, ExpiresAt: "2026-01-02T04:00:00.000000Z"}))

	require.NoError(t, r.ExtendSession(ctx, nil, "s1", "2026-01-02T05:00:00.000000Z"))
	s, err := r.GetSession(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, "2026-01-02T05:00:00.000000Z", s.ExpiresAt)
	require.Nil(t, s.RevokedAt)

	require.NoError(t, r.RevokeSession(ctx, nil, "s1", "2026-01-02T04:30:00.000000Z"))
	require.NoError(t, r.RevokeSession(ctx, nil, "s1", "2026-01-02T04:45:00.000000Z"))
	s, err = r.GetSession(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, s.RevokedAt)
	require.Equal(t, "2026-01-02T04:30:00.000000Z", *s.RevokedAt)

	err = r.ExtendSession(ctx, nil, "s1", "2026-01-03T00:00:00.000000Z")
	require.True(t, errors.Is(err, domain.ErrNotFound))

	n, err := r.PurgeSessions(ctx, "2026-01-04T00:00:00.000000Z")
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestEventsCursor(t *testing.T) {
	r := setupRepo(t)
	ctx := context.Background()
	for i, id := range []string{"p1", "p2", "p1"} {
		_, err := r.DB.Exec(`INSERT INTO events(ts,type,entity_kind,entity_id,actor_id,payload_json) VALUES (?,?,?,?,?,?)`,
			stamp, "program.updated", "program", id, "system", `{"n":`+string(rune('0'+i))+`}`)
		require.NoError(t, err)
	}
	latest, err := r.LatestEventID(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 3, latest)

	after, err := r.EventsAfter(ctx, 10, 1)
	require.NoError(t, err)
	require.Len(t, after, 2)
	require.EqualValues(t, 2, after[0].ID)

	forP1, err := r.LatestEvents(ctx, "program", "p1", 10)
	require.NoError(t, err)
	require.Len(t, forP1, 2)
	require.EqualValues(t, 3, forP1[0].ID)
	require.Equal(t, `{"n":2}`, forP1[0].Payload)
}
