package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"projector/internal/domain"
)

func strPtr(s string) *string { return &s }

func TestPercentageBounds(t *testing.T) {
	cases := []struct {
		current, total, want int
	}{
		{3, 5, 60},
		{1, 5, 20},
		{5, 5, 100},
		{6, 5, 100},
		{0, 5, 0},
		{-2, 5, 0},
		{4, 0, 0},
		{4, -1, 0},
		{1, 3, 33},
		{2, 3, 67},
	}
	for _, tc := range cases {
		got := Percentage(tc.current, tc.total)
		require.Equal(t, tc.want, got, "Percentage(%d,%d)", tc.current, tc.total)
		require.GreaterOrEqual(t, got, 0)
		require.LessOrEqual(t, got, 100)
	}
}

func TestStationsMidway(t *testing.T) {
	p := domain.Program{CurrentStation: 3, TotalStations: 5}
	stations := Stations(p, ProjectionOptions{Now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)})
	require.Len(t, stations, 5)
	want := []StationState{StationCompleted, StationCompleted, StationInProgress, StationPending, StationPending}
	for i, st := range stations {
		require.Equal(t, i+1, st.Number)
		require.Equal(t, want[i], st.State, "station %d", st.Number)
	}
	require.Equal(t, 60, Percentage(p.CurrentStation, p.TotalStations))
}

func TestStationsOverRangeAllCompleted(t *testing.T) {
	p := domain.Program{CurrentStation: 6, TotalStations: 5}
	stations := Stations(p, ProjectionOptions{Now: time.Now()})
	require.Len(t, stations, 5)
	for _, st := range stations {
		require.Equal(t, StationCompleted, st.State)
	}
	require.Equal(t, 100, Percentage(6, 5))
}

func TestStationsZeroTotal(t *testing.T) {
	require.Empty(t, Stations(domain.Program{CurrentStation: 1}, ProjectionOptions{}))
}

func TestStationDueDatesBackwardFromTarget(t *testing.T) {
	p := domain.Program{CurrentStation: 1, TotalStations: 3, TargetDate: strPtr("2024-03-22")}
	stations := Stations(p, ProjectionOptions{Now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)})
	require.Equal(t, time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC), stations[0].DueDate)
	require.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), stations[1].DueDate)
	require.Equal(t, time.Date(2024, 3, 22, 0, 0, 0, 0, time.UTC), stations[2].DueDate)
}

func TestStationDueDatesForwardFromNow(t *testing.T) {
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	p := domain.Program{CurrentStation: 1, TotalStations: 2}
	stations := Stations(p, ProjectionOptions{Now: now})
	require.Equal(t, now.AddDate(0, 0, 7), stations[0].DueDate)
	require.Equal(t, now.AddDate(0, 0, 14), stations[1].DueDate)
}

func TestStationNames(t *testing.T) {
	names := StationNames{"Kickoff", "Specification"}
	require.Equal(t, "Kickoff", names.ActivityName(1))
	require.Equal(t, "Station 3 activity", names.ActivityName(3))

	tmpl := TemplateNames{
		Template: domain.ActivityTemplate{{Station: 2, ActivityName: "Market survey"}},
		Fallback: names,
	}
	require.Equal(t, "Kickoff", tmpl.ActivityName(1))
	require.Equal(t, "Market survey", tmpl.ActivityName(2))
	require.Equal(t, "Station 4 activity", tmpl.ActivityName(4))
}

func TestClampStation(t *testing.T) {
	got, changed := ClampStation(7, 5)
	require.True(t, changed)
	require.Equal(t, 5, got)
	got, changed = ClampStation(0, 5)
	require.True(t, changed)
	require.Equal(t, 1, got)
	got, changed = ClampStation(3, 5)
	require.False(t, changed)
	require.Equal(t, 3, got)
}

func TestWorkloadCountsActiveStatusesOnly(t *testing.T) {
	employees := []domain.Employee{{ID: "emp-a", FullName: "A", IsActive: true}}
	programs := []domain.Program{
		{AssignedEmployeeID: "emp-a", AssignedEmployee: "A", Status: domain.StatusOpen},
		{AssignedEmployeeID: "emp-a", AssignedEmployee: "A", Status: domain.StatusDone},
		{AssignedEmployeeID: "emp-a", AssignedEmployee: "A", Status: domain.StatusPlan},
	}
	loads := Workload(employees, programs, WorkloadOptions{})
	require.Len(t, loads, 1)
	require.Equal(t, 2, loads[0].ActiveTasks)
	require.Equal(t, 40, loads[0].Percentage)
	require.Equal(t, "yellow", loads[0].Level)
}

func TestWorkloadJoinsByIDNotName(t *testing.T) {
	employees := []domain.Employee{
		{ID: "e1", FullName: "Dana Levi", IsActive: true},
		{ID: "e2", FullName: "Dana Levi", IsActive: true},
	}
	programs := []domain.Program{
		{AssignedEmployeeID: "e2", AssignedEmployee: "Dana Levi", Status: domain.StatusInProgress},
		// ambiguous legacy name: counted for nobody
		{AssignedEmployee: "Dana Levi", Status: domain.StatusOpen},
	}
	loads := Workload(employees, programs, WorkloadOptions{})
	require.Len(t, loads, 2)
	require.Equal(t, "e2", loads[0].Employee.ID)
	require.Equal(t, 1, loads[0].ActiveTasks)
	require.Equal(t, 0, loads[1].ActiveTasks)
}

func TestWorkloadLegacyNameFallback(t *testing.T) {
	employees := []domain.Employee{{ID: "e1", FullName: "Noa", IsActive: true}}
	programs := []domain.Program{{AssignedEmployee: "Noa", Status: domain.StatusOpen}}
	loads := Workload(employees, programs, WorkloadOptions{})
	require.Equal(t, 1, loads[0].ActiveTasks)
}

func TestWorkloadSkipsInactiveSortsAndCaps(t *testing.T) {
	var employees []domain.Employee
	var programs []domain.Program
	for i := 0; i < 10; i++ {
		id := string(rune('a' + i))
		employees = append(employees, domain.Employee{ID: id, FullName: id, IsActive: i != 9})
		for j := 0; j < i; j++ {
			programs = append(programs, domain.Program{AssignedEmployeeID: id, Status: domain.StatusOpen})
		}
	}
	loads := Workload(employees, programs, WorkloadOptions{})
	require.Len(t, loads, WorkloadTop)
	require.Equal(t, "i", loads[0].Employee.ID)
	require.Equal(t, 8, loads[0].ActiveTasks)
	require.Equal(t, 100, loads[0].Percentage)
	require.Equal(t, "red", loads[0].Level)
	for i := 1; i < len(loads); i++ {
		require.GreaterOrEqual(t, loads[i-1].ActiveTasks, loads[i].ActiveTasks)
	}
	for _, l := range loads {
		require.NotEqual(t, "j", l.Employee.ID)
	}

	all := Workload(employees, programs, WorkloadOptions{Limit: -1})
	require.Len(t, all, 9)
}

func TestLoadLevels(t *testing.T) {
	require.Equal(t, "green", LoadLevel(20))
	require.Equal(t, "yellow", LoadLevel(40))
	require.Equal(t, "orange", LoadLevel(60))
	require.Equal(t, "red", LoadLevel(80))
	require.Equal(t, 60, LoadPercentage(3, 5))
	require.Equal(t, 30, LoadPercentage(3, 10))
}

func TestFilterByQueryAndStatus(t *testing.T) {
	programs := []domain.Program{
		{ID: "1", Title: "Laptops", Status: domain.StatusOpen},
		{ID: "2", Title: "Chairs", Status: domain.StatusDone},
	}

	got := Filter{Query: "lap", Status: StatusAll}.Apply(programs)
	require.Len(t, got, 1)
	require.Equal(t, "Laptops", got[0].Title)

	got = Filter{Query: "", Status: "done"}.Apply(programs)
	require.Len(t, got, 1)
	require.Equal(t, "Chairs", got[0].Title)

	got = Filter{Query: "chair", Status: "open"}.Apply(programs)
	require.Empty(t, got)
}

func TestFilterMatchesAnyTextField(t *testing.T) {
	programs := []domain.Program{
		{ID: "1", Title: "Servers", Description: "Rack HARDWARE refresh"},
		{ID: "2", Title: "Desks", AssignedEmployee: "Yossi Hardy"},
		{ID: "3", Title: "Paper", RequesterName: "Logistics"},
	}
	got := Filter{Query: "hard"}.Apply(programs)
	require.Len(t, got, 2)
	require.Equal(t, "1", got[0].ID)
	require.Equal(t, "2", got[1].ID)

	got = Filter{Query: "LOGISTICS"}.Apply(programs)
	require.Len(t, got, 1)
	require.Equal(t, "3", got[0].ID)
}

func TestFilterIsIdempotentAndLeavesInputAlone(t *testing.T) {
	programs := []domain.Program{
		{ID: "3", Title: "Gamma tender", Status: domain.StatusPlan},
		{ID: "1", Title: "Alpha tender", Status: domain.StatusOpen},
		{ID: "2", Title: "Beta purchase", Status: domain.StatusOpen},
	}
	snapshot := append([]domain.Program(nil), programs...)
	f := Filter{Query: "tender", Status: StatusAll}
	first := f.Apply(programs)
	second := f.Apply(programs)
	require.Equal(t, first, second)
	require.Equal(t, []string{"3", "1"}, []string{first[0].ID, first[1].ID})
	require.Equal(t, snapshot, programs)
}

func TestDescribeKnownAndUnknown(t *testing.T) {
	for _, s := range domain.Statuses {
		info := Describe(s)
		require.True(t, info.Known)
		require.NotEmpty(t, info.Label)
		require.NotEmpty(t, info.Color)
	}
	info := Describe("archived")
	require.False(t, info.Known)
	require.Equal(t, "archived", info.Label)
	require.Empty(t, info.Color)
	require.Equal(t, UnknownWeight, info.Weight)

	tax := Taxonomy()
	require.Len(t, tax, 7)
	for i := 1; i < len(tax); i++ {
		require.Less(t, tax[i-1].Weight, tax[i].Weight)
	}
}

func TestStatusCounts(t *testing.T) {
	programs := []domain.Program{
		{Status: domain.StatusOpen},
		{Status: domain.StatusOpen},
		{Status: domain.StatusDone},
		{Status: "legacy"},
	}
	counts := StatusCounts(programs)
	require.Len(t, counts, 7)
	require.Equal(t, domain.StatusOpen, counts[0].Key)
	require.Equal(t, 2, counts[0].Count)
	require.Equal(t, 50, counts[0].Percent)
	require.Equal(t, 1, counts[4].Count)
	require.Equal(t, 25, counts[4].Percent)

	empty := StatusCounts(nil)
	for _, c := range empty {
		require.Zero(t, c.Percent)
	}
}

func TestRecent(t *testing.T) {
	programs := []domain.Program{
		{ID: "old", CreatedDate: "2024-01-01T00:00:00.000000Z"},
		{ID: "new", CreatedDate: "2024-03-01T00:00:00.000000Z"},
		{ID: "mid", CreatedDate: "2024-02-01T00:00:00.000000Z"},
	}
	got := Recent(programs, 2)
	require.Equal(t, "new", got[0].ID)
	require.Equal(t, "mid", got[1].ID)
	require.Equal(t, "old", programs[0].ID)
}

func TestFilterSearchFields(t *testing.T) {
	programs := []domain.Program{
		{ID: "a", Title: "Chairs", Description: "Ergonomic seating"},
		{ID: "b", Title: "Desks", RequesterName: "Ergo Team"},
		{ID: "c", Title: "Lamps", AssignedEmployee: "Noa Ergon"},
		{ID: "d", Title: "Cables", ProgramNumber: "ERGO-7", RequesterUnit: "Ergonomics"},
	}
	got := Filter{Query: "ergo"}.Apply(programs)
	ids := make([]string, len(got))
	for i, p := range got {
		ids[i] = p.ID
	}
	require.Equal(t, []string{"a", "b", "c"}, ids)
}
