package server

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"projector/internal/domain"
	"projector/internal/engine"
	"projector/internal/engine/auth"
	"projector/internal/export"
)

type programListQuery struct {
	Query  string `query:"q" doc:"Case-insensitive match on title, description, assignee or requester"`
	Status string `query:"status" doc:"Status key or all"`
	Sort   string `query:"sort" doc:"Column to sort by, prefix with - for descending" default:"-created_date"`
}

func (q programListQuery) options() engine.ProgramListOptions {
	return engine.ProgramListOptions{Query: q.Query, Status: q.Status, Sort: q.Sort}
}

func registerPrograms(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "list-programs",
		Method:      http.MethodGet,
		Path:        "/programs",
		Summary:     "List programs matching a search and status filter",
		Errors:      []int{http.StatusBadRequest, http.StatusServiceUnavailable},
	}, func(ctx context.Context, input *programListQuery) (*struct {
		Body []domain.Program `json:"body"`
	}, error) {
		items, err := e.ListPrograms(ctx, input.options())
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []domain.Program `json:"body"`
		}{Body: nonNilSlice(items)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "export-programs",
		Method:      http.MethodGet,
		Path:        "/programs/export",
		Summary:     "Download the filtered program register as a spreadsheet",
		Errors:      []int{http.StatusBadRequest, http.StatusServiceUnavailable},
	}, func(ctx context.Context, input *programListQuery) (*struct {
		ContentType        string `header:"Content-Type"`
		ContentDisposition string `header:"Content-Disposition"`
		Body               []byte
	}, error) {
		items, err := e.ListPrograms(ctx, input.options())
		if err != nil {
			return nil, handleError(err)
		}
		loads, err := e.Workload(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		var buf bytes.Buffer
		if err := export.WriteRegister(&buf, items, loads); err != nil {
			return nil, handleError(err)
		}
		return &struct {
			ContentType        string `header:"Content-Type"`
			ContentDisposition string `header:"Content-Disposition"`
			Body               []byte
		}{
			ContentType:        export.ContentType,
			ContentDisposition: fmt.Sprintf("attachment; filename=%q", "programs.xlsx"),
			Body:               buf.Bytes(),
		}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-program",
		Method:        http.MethodPost,
		Path:          "/programs",
		Summary:       "Open a new procurement program",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusForbidden, http.StatusServiceUnavailable},
	}, func(ctx context.Context, input *struct {
		Body CreateProgramRequest `json:"body"`
	}) (*struct {
		Body domain.Program `json:"body"`
	}, error) {
		id, err := requirePermission(ctx, auth.PermWritePrograms)
		if err != nil {
			return nil, handleError(err)
		}
		b := input.Body
		p, err := e.CreateProgram(ctx, engine.ProgramCreateOptions{
			ProgramNumber:      b.ProgramNumber,
			Title:              b.Title,
			Description:        b.Description,
			Status:             b.Status,
			RequesterName:      b.RequesterName,
			RequesterUnit:      b.RequesterUnit,
			AssignedEmployeeID: b.AssignedEmployeeID,
			TeamLeader:         b.TeamLeader,
			Department:         b.Department,
			EngagementType:     b.EngagementType,
			Priority:           b.Priority,
			CurrentStation:     b.CurrentStation,
			TotalStations:      b.TotalStations,
			StartDate:          b.StartDate,
			TargetDate:         b.TargetDate,
			CompletionDate:     b.CompletionDate,
			EstimatedBudget:    b.EstimatedBudget,
			ActualCost:         b.ActualCost,
			Notes:              b.Notes,
			ActorID:            id.EmployeeID,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Program `json:"body"`
		}{Body: p}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-program",
		Method:      http.MethodGet,
		Path:        "/programs/{id}",
		Summary:     "Program with its station progress",
		Errors:      []int{http.StatusNotFound, http.StatusServiceUnavailable},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct {
		Body engine.ProgramView `json:"body"`
	}, error) {
		view, err := e.ProgramView(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body engine.ProgramView `json:"body"`
		}{Body: view}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-program",
		Method:      http.MethodPatch,
		Path:        "/programs/{id}",
		Summary:     "Partially update a program",
		Errors:      []int{http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound, http.StatusConflict, http.StatusServiceUnavailable},
	}, func(ctx context.Context, input *struct {
		ID   string               `path:"id"`
		Body UpdateProgramRequest `json:"body"`
	}) (*struct {
		Body domain.Program `json:"body"`
	}, error) {
		id, err := requirePermission(ctx, auth.PermWritePrograms)
		if err != nil {
			return nil, handleError(err)
		}
		raw := rawBodyMap(ctx)
		b := input.Body
		p, err := e.UpdateProgram(ctx, engine.ProgramUpdateOptions{
			ID:                 input.ID,
			ProgramNumber:      b.ProgramNumber,
			Title:              b.Title,
			Description:        b.Description,
			Status:             b.Status,
			RequesterName:      b.RequesterName,
			RequesterUnit:      b.RequesterUnit,
			AssignedEmployeeID: clearedIfNull(raw, "assigned_employee_id", b.AssignedEmployeeID),
			TeamLeader:         b.TeamLeader,
			Department:         b.Department,
			EngagementType:     b.EngagementType,
			Priority:           b.Priority,
			CurrentStation:     b.CurrentStation,
			TotalStations:      b.TotalStations,
			StartDate:          clearedIfNull(raw, "start_date", b.StartDate),
			TargetDate:         clearedIfNull(raw, "target_date", b.TargetDate),
			CompletionDate:     clearedIfNull(raw, "completion_date", b.CompletionDate),
			EstimatedBudget:    b.EstimatedBudget,
			ActualCost:         b.ActualCost,
			ClearBudget:        b.EstimatedBudget == nil && nullIn(raw, "estimated_budget"),
			ClearActualCost:    b.ActualCost == nil && nullIn(raw, "actual_cost"),
			Notes:              b.Notes,
			ActorID:            id.EmployeeID,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Program `json:"body"`
		}{Body: p}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "program-events",
		Method:      http.MethodGet,
		Path:        "/programs/{id}/events",
		Summary:     "Audit history of a program, newest first",
		Errors:      []int{http.StatusNotFound, http.StatusServiceUnavailable},
	}, func(ctx context.Context, input *struct {
		ID    string `path:"id"`
		Limit int    `query:"limit"`
	}) (*struct {
		Body []domain.Event `json:"body"`
	}, error) {
		items, err := e.ProgramEvents(ctx, input.ID, normalizeLimit(input.Limit))
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []domain.Event `json:"body"`
		}{Body: nonNilSlice(items)}, nil
	})
}
