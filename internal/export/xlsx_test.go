package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"projector/internal/domain"
	"projector/internal/workflow"
)

func TestWriteRegister(t *testing.T) {
	budget := 1000.0
	target := "2026-05-01"
	programs := []domain.Program{
		{ID: "abcd1234", Title: "Laptops", Status: domain.StatusInProgress, Priority: domain.PriorityHigh,
			EngagementType: "standard_purchase", RequesterName: "Dana", AssignedEmployee: "Omer",
			CurrentStation: 2, TotalStations: 4, TargetDate: &target, EstimatedBudget: &budget},
		{ID: "p2", ProgramNumber: "REQ-7", Title: "Toner", Status: domain.StatusOpen, Priority: domain.PriorityLow,
			CurrentStation: 1, TotalStations: 5},
	}
	loads := []workflow.Load{{
		Employee:    domain.Employee{FullName: "Omer", EmployeeID: "omer"},
		RoleLabel:   "Team leader",
		ActiveTasks: 1,
		Percentage:  20,
		Level:       "green",
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteRegister(&buf, programs, loads))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	require.Equal(t, []string{ProgramsSheet, WorkloadSheet}, f.GetSheetList())

	rows, err := f.GetRows(ProgramsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	require.Equal(t, programHeaders, rows[0])
	require.Equal(t, "1234", rows[1][0])
	require.Equal(t, "In progress", rows[1][2])
	require.Equal(t, "2/4", rows[1][7])
	require.Equal(t, "50", rows[1][8])
	require.Equal(t, "REQ-7", rows[2][0])
	require.Equal(t, "Total", rows[3][0])

	wl, err := f.GetRows(WorkloadSheet)
	require.NoError(t, err)
	require.Len(t, wl, 2)
	require.Equal(t, []string{"Omer", "omer", "Team leader", "1", "20", "green"}, wl[1])
}
