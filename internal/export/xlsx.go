package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"projector/internal/domain"
	"projector/internal/workflow"
)

const (
	ProgramsSheet = "Programs"
	WorkloadSheet = "Workload"
	ContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var programHeaders = []string{
	"Code", "Title", "Status", "Priority", "Engagement", "Requester", "Assignee",
	"Station", "Progress %", "Start", "Target", "Completed", "Budget", "Actual cost",
}

var workloadHeaders = []string{"Employee", "Login", "Role", "Active programs", "Load %", "Level"}

// Register builds the program register workbook.
func Register(programs []domain.Program, loads []workflow.Load) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", ProgramsSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(WorkloadSheet); err != nil {
		return nil, fmt.Errorf("add workload sheet: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	if err := writeHeader(f, ProgramsSheet, programHeaders, headerStyle); err != nil {
		return nil, err
	}
	if err := writeHeader(f, WorkloadSheet, workloadHeaders, headerStyle); err != nil {
		return nil, err
	}

	var budget, actual float64
	for i, p := range programs {
		row := []any{
			p.DisplayCode(),
			p.Title,
			workflow.Describe(p.Status).Label,
			string(p.Priority),
			p.EngagementType,
			p.RequesterName,
			p.AssignedEmployee,
			fmt.Sprintf("%d/%d", p.CurrentStation, p.TotalStations),
			workflow.Percentage(p.CurrentStation, p.TotalStations),
			deref(p.StartDate),
			deref(p.TargetDate),
			deref(p.CompletionDate),
			amount(p.EstimatedBudget),
			amount(p.ActualCost),
		}
		if p.EstimatedBudget != nil {
			budget += *p.EstimatedBudget
		}
		if p.ActualCost != nil {
			actual += *p.ActualCost
		}
		if err := f.SetSheetRow(ProgramsSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return nil, fmt.Errorf("write program row: %w", err)
		}
	}

	summaryRow := len(programs) + 2
	summaryStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("summary style: %w", err)
	}
	summary := []any{"Total", fmt.Sprintf("%d programs", len(programs))}
	if err := f.SetSheetRow(ProgramsSheet, fmt.Sprintf("A%d", summaryRow), &summary); err != nil {
		return nil, err
	}
	_ = f.SetCellValue(ProgramsSheet, fmt.Sprintf("M%d", summaryRow), budget)
	_ = f.SetCellValue(ProgramsSheet, fmt.Sprintf("N%d", summaryRow), actual)
	_ = f.SetCellStyle(ProgramsSheet, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("N%d", summaryRow), summaryStyle)

	for i, l := range loads {
		row := []any{l.Employee.FullName, l.Employee.EmployeeID, l.RoleLabel, l.ActiveTasks, l.Percentage, l.Level}
		if err := f.SetSheetRow(WorkloadSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return nil, fmt.Errorf("write workload row: %w", err)
		}
	}

	setWidths(f, ProgramsSheet, []float64{10, 32, 12, 10, 20, 18, 18, 9, 11, 12, 12, 12, 12, 12})
	setWidths(f, WorkloadSheet, []float64{24, 14, 22, 16, 9, 9})
	return f, nil
}

// WriteRegister streams the workbook to w.
func WriteRegister(w io.Writer, programs []domain.Program, loads []workflow.Load) error {
	f, err := Register(programs, loads)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, headers []string, style int) error {
	for i, h := range headers {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		cell := col + "1"
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return err
		}
	}
	return nil
}

func setWidths(f *excelize.File, sheet string, widths []float64) {
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(sheet, col, col, w)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func amount(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}
