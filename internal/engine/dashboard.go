package engine

import (
	"context"

	"projector/internal/domain"
	"projector/internal/workflow"
)

// RecentProgram is one row of the dashboard's recent list.
type RecentProgram struct {
	Program     domain.Program      `json:"program"`
	DisplayCode string              `json:"display_code"`
	Percentage  int                 `json:"percentage"`
	StatusInfo  workflow.StatusInfo `json:"status_info"`
}

type Dashboard struct {
	Total    int                    `json:"total"`
	Statuses []workflow.StatusCount `json:"statuses"`
	Recent   []RecentProgram        `json:"recent"`
	Workload []workflow.Load        `json:"workload"`
}

func (e Engine) Dashboard(ctx context.Context) (d Dashboard, err error) {
	ctx, span := e.span(ctx, "Dashboard")
	defer func() { endSpan(span, err) }()

	programs, err := e.allPrograms(ctx, "")
	if err != nil {
		return Dashboard{}, err
	}
	employees, err := e.allEmployees(ctx, false)
	if err != nil {
		return Dashboard{}, err
	}
	recent := workflow.Recent(programs, e.cfg().Dashboard.Recent)
	d = Dashboard{
		Total:    len(programs),
		Statuses: workflow.StatusCounts(programs),
		Recent:   make([]RecentProgram, 0, len(recent)),
		Workload: e.workload(employees, programs),
	}
	for _, p := range recent {
		d.Recent = append(d.Recent, RecentProgram{
			Program:     p,
			DisplayCode: p.DisplayCode(),
			Percentage:  workflow.Percentage(p.CurrentStation, p.TotalStations),
			StatusInfo:  workflow.Describe(p.Status),
		})
	}
	return d, nil
}

// Workload ranks active employees by active assignments.
func (e Engine) Workload(ctx context.Context) (loads []workflow.Load, err error) {
	ctx, span := e.span(ctx, "Workload")
	defer func() { endSpan(span, err) }()

	programs, err := e.allPrograms(ctx, "")
	if err != nil {
		return nil, err
	}
	employees, err := e.allEmployees(ctx, false)
	if err != nil {
		return nil, err
	}
	return e.workload(employees, programs), nil
}

func (e Engine) workload(employees []domain.Employee, programs []domain.Program) []workflow.Load {
	cfg := e.cfg().Workload
	return workflow.Workload(employees, programs, workflow.WorkloadOptions{FullLoad: cfg.FullLoad, Limit: cfg.Top})
}
