package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"projector/internal/domain"
	"projector/internal/events"
	"projector/internal/repo"
	"projector/internal/workflow"
)

const entityProgram = "program"

// ProgramCreateOptions are parameters for opening a new requirement.
// Nil station pointers take defaults.
type ProgramCreateOptions struct {
	ProgramNumber      string
	Title              string
	Description        string
	Status             string
	RequesterName      string
	RequesterUnit      string
	AssignedEmployeeID string
	TeamLeader         string
	Department         string
	EngagementType     string
	Priority           string
	CurrentStation     *int
	TotalStations      *int
	StartDate          string
	TargetDate         string
	CompletionDate     string
	EstimatedBudget    *float64
	ActualCost         *float64
	Notes              string
	ActorID            string
}

func (e Engine) CreateProgram(ctx context.Context, opts ProgramCreateOptions) (p domain.Program, err error) {
	ctx, span := e.span(ctx, "CreateProgram")
	defer func() { endSpan(span, err) }()

	p = domain.Program{
		ID:             uuid.NewString(),
		ProgramNumber:  strings.TrimSpace(opts.ProgramNumber),
		Title:          strings.TrimSpace(opts.Title),
		Description:    opts.Description,
		RequesterName:  strings.TrimSpace(opts.RequesterName),
		RequesterUnit:  opts.RequesterUnit,
		TeamLeader:     opts.TeamLeader,
		Department:     opts.Department,
		EngagementType: strings.TrimSpace(opts.EngagementType),
		Notes:          opts.Notes,
		Status:         domain.StatusOpen,
		Priority:       domain.PriorityMedium,
	}
	if p.Title == "" {
		return domain.Program{}, domain.NewValidationError("title", "is required")
	}
	if p.RequesterName == "" {
		return domain.Program{}, domain.NewValidationError("requester_name", "is required")
	}
	if p.EngagementType == "" {
		return domain.Program{}, domain.NewValidationError("engagement_type", "is required")
	}
	if opts.Status != "" {
		if p.Status, err = domain.ParseStatus(opts.Status); err != nil {
			return domain.Program{}, err
		}
	}
	if opts.Priority != "" {
		if p.Priority, err = domain.ParsePriority(opts.Priority); err != nil {
			return domain.Program{}, err
		}
	}
	if p.StartDate, err = parseDate("start_date", opts.StartDate); err != nil {
		return domain.Program{}, err
	}
	if p.StartDate == nil {
		today := e.today()
		p.StartDate = &today
	}
	if p.TargetDate, err = parseDate("target_date", opts.TargetDate); err != nil {
		return domain.Program{}, err
	}
	if p.CompletionDate, err = parseDate("completion_date", opts.CompletionDate); err != nil {
		return domain.Program{}, err
	}
	if p.EstimatedBudget, err = parseAmount("estimated_budget", opts.EstimatedBudget); err != nil {
		return domain.Program{}, err
	}
	if p.ActualCost, err = parseAmount("actual_cost", opts.ActualCost); err != nil {
		return domain.Program{}, err
	}

	cctx, cancel := e.withTimeout(ctx)
	defer cancel()

	template, err := e.resolveEngagement(cctx, p.EngagementType)
	if err != nil {
		return domain.Program{}, err
	}
	p.TotalStations = e.cfg().Workflow.DefaultTotalStations
	if len(template) > 0 {
		p.TotalStations = len(template)
	}
	if opts.TotalStations != nil {
		p.TotalStations = *opts.TotalStations
	}
	p.CurrentStation = 1
	if opts.CurrentStation != nil {
		p.CurrentStation = *opts.CurrentStation
	}
	if err := e.fixStations(&p); err != nil {
		return domain.Program{}, err
	}
	if err := e.assign(cctx, &p, opts.AssignedEmployeeID); err != nil {
		return domain.Program{}, err
	}
	e.stampCompletion(&p)
	p.CreatedDate = e.stamp()
	p.UpdatedDate = p.CreatedDate

	tx, err := e.DB.BeginTxx(cctx, nil)
	if err != nil {
		return domain.Program{}, storeErr("begin", entityProgram, p.ID, err)
	}
	defer tx.Rollback()
	if err := e.Repo.InsertProgram(cctx, tx, p); err != nil {
		return domain.Program{}, storeErr("insert program", entityProgram, p.ID, err)
	}
	if err := e.eventWriter().Append(cctx, tx, "program.created", entityProgram, p.ID, opts.ActorID, events.EventPayload{
		"title":  p.Title,
		"status": p.Status,
	}); err != nil {
		return domain.Program{}, storeErr("append event", entityProgram, p.ID, err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Program{}, storeErr("commit", entityProgram, p.ID, err)
	}
	return p, nil
}

// ProgramUpdateOptions carries a partial update. Nil fields are left alone;
// an empty date string clears the date.
type ProgramUpdateOptions struct {
	ID                 string
	ProgramNumber      *string
	Title              *string
	Description        *string
	Status             *string
	RequesterName      *string
	RequesterUnit      *string
	AssignedEmployeeID *string
	TeamLeader         *string
	Department         *string
	EngagementType     *string
	Priority           *string
	CurrentStation     *int
	TotalStations      *int
	StartDate          *string
	TargetDate         *string
	CompletionDate     *string
	EstimatedBudget    *float64
	ActualCost         *float64
	// ClearBudget and ClearActualCost unset the amount.
	ClearBudget     bool
	ClearActualCost bool
	Notes           *string
	ActorID         string
}

func (e Engine) UpdateProgram(ctx context.Context, opts ProgramUpdateOptions) (p domain.Program, err error) {
	ctx, span := e.span(ctx, "UpdateProgram")
	defer func() { endSpan(span, err) }()

	release, err := e.beginSave(entityProgram, opts.ID)
	if err != nil {
		return domain.Program{}, err
	}
	defer release()

	cctx, cancel := e.withTimeout(ctx)
	defer cancel()

	tx, err := e.DB.BeginTxx(cctx, nil)
	if err != nil {
		return domain.Program{}, storeErr("begin", entityProgram, opts.ID, err)
	}
	defer tx.Rollback()
	original, err := e.Repo.GetProgramTx(cctx, tx, opts.ID)
	if err != nil {
		return domain.Program{}, storeErr("get program", entityProgram, opts.ID, err)
	}
	p = original

	if opts.ProgramNumber != nil {
		p.ProgramNumber = strings.TrimSpace(*opts.ProgramNumber)
	}
	if opts.Title != nil {
		p.Title = strings.TrimSpace(*opts.Title)
		if p.Title == "" {
			return domain.Program{}, domain.NewValidationError("title", "is required")
		}
	}
	if opts.Description != nil {
		p.Description = *opts.Description
	}
	if opts.RequesterName != nil {
		p.RequesterName = strings.TrimSpace(*opts.RequesterName)
		if p.RequesterName == "" {
			return domain.Program{}, domain.NewValidationError("requester_name", "is required")
		}
	}
	if opts.RequesterUnit != nil {
		p.RequesterUnit = *opts.RequesterUnit
	}
	if opts.TeamLeader != nil {
		p.TeamLeader = *opts.TeamLeader
	}
	if opts.Department != nil {
		p.Department = *opts.Department
	}
	if opts.Notes != nil {
		p.Notes = *opts.Notes
	}
	if opts.Status != nil {
		if p.Status, err = domain.ParseStatus(*opts.Status); err != nil {
			return domain.Program{}, err
		}
	}
	if opts.Priority != nil {
		if p.Priority, err = domain.ParsePriority(*opts.Priority); err != nil {
			return domain.Program{}, err
		}
	}
	for _, d := range []struct {
		field string
		in    *string
		out   **string
	}{
		{"start_date", opts.StartDate, &p.StartDate},
		{"target_date", opts.TargetDate, &p.TargetDate},
		{"completion_date", opts.CompletionDate, &p.CompletionDate},
	} {
		if d.in == nil {
			continue
		}
		if *d.out, err = parseDate(d.field, *d.in); err != nil {
			return domain.Program{}, err
		}
	}
	if opts.EstimatedBudget != nil {
		if p.EstimatedBudget, err = parseAmount("estimated_budget", opts.EstimatedBudget); err != nil {
			return domain.Program{}, err
		}
	}
	if opts.ActualCost != nil {
		if p.ActualCost, err = parseAmount("actual_cost", opts.ActualCost); err != nil {
			return domain.Program{}, err
		}
	}
	if opts.ClearBudget {
		p.EstimatedBudget = nil
	}
	if opts.ClearActualCost {
		p.ActualCost = nil
	}
	if opts.EngagementType != nil {
		p.EngagementType = strings.TrimSpace(*opts.EngagementType)
		if p.EngagementType == "" {
			return domain.Program{}, domain.NewValidationError("engagement_type", "is required")
		}
		if p.EngagementType != original.EngagementType {
			if _, err := e.resolveEngagement(cctx, p.EngagementType); err != nil {
				return domain.Program{}, err
			}
		}
	}
	if opts.TotalStations != nil {
		p.TotalStations = *opts.TotalStations
	}
	if opts.CurrentStation != nil {
		p.CurrentStation = *opts.CurrentStation
	}
	if err := e.fixStations(&p); err != nil {
		return domain.Program{}, err
	}
	if opts.AssignedEmployeeID != nil && *opts.AssignedEmployeeID != original.AssignedEmployeeID {
		if err := e.assign(cctx, &p, *opts.AssignedEmployeeID); err != nil {
			return domain.Program{}, err
		}
	}
	if p.Status != original.Status {
		e.stampCompletion(&p)
	}
	p.UpdatedDate = e.stamp()

	if err := e.Repo.UpdateProgram(cctx, tx, p); err != nil {
		return domain.Program{}, storeErr("update program", entityProgram, p.ID, err)
	}
	changes := events.Changes(programSnapshot(original), programSnapshot(p))
	if len(changes) > 0 {
		if err := e.eventWriter().Append(cctx, tx, "program.updated", entityProgram, p.ID, opts.ActorID, changes); err != nil {
			return domain.Program{}, storeErr("append event", entityProgram, p.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return domain.Program{}, storeErr("commit", entityProgram, p.ID, err)
	}
	return p, nil
}

// fixStations enforces 1 <= current <= total. Out-of-range current values are
// clamped and logged; a total below one is rejected.
func (e Engine) fixStations(p *domain.Program) error {
	if p.TotalStations < 1 {
		return domain.NewValidationError("total_stations", "must be at least 1")
	}
	clamped, changed := workflow.ClampStation(p.CurrentStation, p.TotalStations)
	if changed {
		e.log().Warn("current station out of range, clamped",
			zap.String("program_id", p.ID),
			zap.Int("requested", p.CurrentStation),
			zap.Int("clamped", clamped),
			zap.Int("total_stations", p.TotalStations))
		p.CurrentStation = clamped
	}
	return nil
}

// assign resolves the assignee by record id and copies the display name.
func (e Engine) assign(ctx context.Context, p *domain.Program, employeeID string) error {
	employeeID = strings.TrimSpace(employeeID)
	if employeeID == "" {
		p.AssignedEmployeeID = ""
		p.AssignedEmployee = ""
		return nil
	}
	emp, err := e.Repo.GetEmployee(ctx, employeeID)
	if errors.Is(err, repo.ErrNotFound) {
		return domain.NewValidationError("assigned_employee_id", fmt.Sprintf("unknown employee %s", employeeID))
	}
	if err != nil {
		return storeErr("get employee", entityEmployee, employeeID, err)
	}
	if !emp.IsActive {
		return domain.NewValidationError("assigned_employee_id", fmt.Sprintf("employee %s is inactive", emp.EmployeeID))
	}
	p.AssignedEmployeeID = emp.ID
	p.AssignedEmployee = emp.FullName
	return nil
}

// stampCompletion dates a program the first time it reaches done.
func (e Engine) stampCompletion(p *domain.Program) {
	if p.Status == domain.StatusDone && p.CompletionDate == nil {
		today := e.today()
		p.CompletionDate = &today
	}
}

// resolveEngagement accepts a built-in kind or an active engagement type name
// and returns the type's station template when there is one.
func (e Engine) resolveEngagement(ctx context.Context, name string) (domain.ActivityTemplate, error) {
	et, err := e.Repo.GetEngagementTypeByName(ctx, name)
	switch {
	case err == nil && et.IsActive:
		return et.DefaultActivities, nil
	case err == nil || errors.Is(err, repo.ErrNotFound):
		if domain.IsEngagementKind(name) {
			return nil, nil
		}
		return nil, domain.NewValidationError("engagement_type", fmt.Sprintf("unknown engagement type %q", name))
	default:
		return nil, storeErr("get engagement type", entityEngagementType, name, err)
	}
}

func parseDate(field, raw string) (*string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(domain.DateLayout, raw)
	if err != nil {
		return nil, domain.NewValidationError(field, "must be a YYYY-MM-DD date")
	}
	s := t.Format(domain.DateLayout)
	return &s, nil
}

func parseAmount(field string, v *float64) (*float64, error) {
	if v == nil {
		return nil, nil
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) || *v < 0 {
		return nil, domain.NewValidationError(field, "must be a non-negative number")
	}
	out := *v
	return &out, nil
}

func programSnapshot(p domain.Program) map[string]any {
	return map[string]any{
		"program_number":       p.ProgramNumber,
		"title":                p.Title,
		"description":          p.Description,
		"status":               string(p.Status),
		"requester_name":       p.RequesterName,
		"requester_unit":       p.RequesterUnit,
		"assigned_employee_id": p.AssignedEmployeeID,
		"assigned_employee":    p.AssignedEmployee,
		"team_leader":          p.TeamLeader,
		"department":           p.Department,
		"engagement_type":      p.EngagementType,
		"priority":             string(p.Priority),
		"current_station":      p.CurrentStation,
		"total_stations":       p.TotalStations,
		"start_date":           derefString(p.StartDate),
		"target_date":          derefString(p.TargetDate),
		"completion_date":      derefString(p.CompletionDate),
		"estimated_budget":     derefFloat(p.EstimatedBudget),
		"actual_cost":          derefFloat(p.ActualCost),
		"notes":                p.Notes,
	}
}

func (e Engine) GetProgram(ctx context.Context, id string) (domain.Program, error) {
	var p domain.Program
	err := e.readWithRetry(ctx, "get program", func(ctx context.Context) error {
		var err error
		p, err = e.Repo.GetProgram(ctx, id)
		return storeErr("get program", entityProgram, id, err)
	})
	return p, err
}

// ProgramView is a program with its derived progress projection.
type ProgramView struct {
	Program     domain.Program      `json:"program"`
	DisplayCode string              `json:"display_code"`
	Percentage  int                 `json:"percentage"`
	StatusInfo  workflow.StatusInfo `json:"status_info"`
	Stations    []workflow.Station  `json:"stations"`
}

func (e Engine) ProgramView(ctx context.Context, id string) (view ProgramView, err error) {
	ctx, span := e.span(ctx, "ProgramView")
	defer func() { endSpan(span, err) }()

	p, err := e.GetProgram(ctx, id)
	if err != nil {
		return ProgramView{}, err
	}
	names, err := e.stationNamer(ctx, p.EngagementType)
	if err != nil {
		return ProgramView{}, err
	}
	return ProgramView{
		Program:     p,
		DisplayCode: p.DisplayCode(),
		Percentage:  workflow.Percentage(p.CurrentStation, p.TotalStations),
		StatusInfo:  workflow.Describe(p.Status),
		Stations: workflow.Stations(p, workflow.ProjectionOptions{
			Now:      e.now(),
			Interval: e.cfg().Workflow.StationInterval,
			Names:    names,
		}),
	}, nil
}

// stationNamer prefers the engagement type's template, then the configured list.
func (e Engine) stationNamer(ctx context.Context, engagement string) (workflow.ActivityNamer, error) {
	fallback := workflow.StationNames(e.cfg().Workflow.StationActivities)
	var et domain.EngagementType
	err := e.readWithRetry(ctx, "get engagement type", func(ctx context.Context) error {
		var err error
		et, err = e.Repo.GetEngagementTypeByName(ctx, engagement)
		if errors.Is(err, repo.ErrNotFound) {
			return err
		}
		return storeErr("get engagement type", entityEngagementType, engagement, err)
	})
	if errors.Is(err, repo.ErrNotFound) || (err == nil && (!et.IsActive || len(et.DefaultActivities) == 0)) {
		return fallback, nil
	}
	if err != nil {
		return nil, err
	}
	return workflow.TemplateNames{Template: et.DefaultActivities, Fallback: fallback}, nil
}

// ProgramListOptions narrows a program listing. Status may be "all" or empty.
type ProgramListOptions struct {
	Query  string
	Status string
	Sort   string
}

func (e Engine) ListPrograms(ctx context.Context, opts ProgramListOptions) (items []domain.Program, err error) {
	ctx, span := e.span(ctx, "ListPrograms")
	defer func() { endSpan(span, err) }()

	status := strings.TrimSpace(opts.Status)
	if status != "" && status != workflow.StatusAll {
		if _, err := domain.ParseStatus(status); err != nil {
			return nil, err
		}
	}
	all, err := e.allPrograms(ctx, opts.Sort)
	if err != nil {
		return nil, err
	}
	return workflow.Filter{Query: opts.Query, Status: status}.Apply(all), nil
}

func (e Engine) allPrograms(ctx context.Context, sort string) ([]domain.Program, error) {
	var items []domain.Program
	err := e.readWithRetry(ctx, "list programs", func(ctx context.Context) error {
		var err error
		items, err = e.Repo.ListPrograms(ctx, sort)
		return storeErr("list programs", entityProgram, "", err)
	})
	return items, err
}

// ProgramEvents returns a program's audit history, newest first.
func (e Engine) ProgramEvents(ctx context.Context, id string, limit int) ([]domain.Event, error) {
	if _, err := e.GetProgram(ctx, id); err != nil {
		return nil, err
	}
	return e.RecentEvents(ctx, entityProgram, id, limit)
}

// RecentEvents lists audit events, optionally narrowed to one entity.
func (e Engine) RecentEvents(ctx context.Context, entityKind, entityID string, limit int) ([]domain.Event, error) {
	var items []domain.Event
	err := e.readWithRetry(ctx, "list events", func(ctx context.Context) error {
		var err error
		items, err = e.Repo.LatestEvents(ctx, entityKind, entityID, limit)
		return storeErr("list events", "event", "", err)
	})
	return items, err
}
