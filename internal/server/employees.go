package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"projector/internal/domain"
	"projector/internal/engine"
	"projector/internal/engine/auth"
)

func registerEmployees(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "list-employees",
		Method:      http.MethodGet,
		Path:        "/employees",
		Summary:     "List employees",
		Errors:      []int{http.StatusBadRequest, http.StatusServiceUnavailable},
	}, func(ctx context.Context, input *struct {
		Active bool   `query:"active" doc:"Only active employees"`
		Sort   string `query:"sort"`
	}) (*struct {
		Body []domain.Employee `json:"body"`
	}, error) {
		items, err := e.ListEmployees(ctx, engine.EmployeeListOptions{ActiveOnly: input.Active, Sort: input.Sort})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []domain.Employee `json:"body"`
		}{Body: nonNilSlice(items)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-employee",
		Method:      http.MethodGet,
		Path:        "/employees/{id}",
		Summary:     "Get an employee",
		Errors:      []int{http.StatusNotFound, http.StatusServiceUnavailable},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct {
		Body domain.Employee `json:"body"`
	}, error) {
		emp, err := e.GetEmployee(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Employee `json:"body"`
		}{Body: emp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-employee",
		Method:        http.MethodPost,
		Path:          "/employees",
		Summary:       "Create an employee",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusForbidden, http.StatusServiceUnavailable},
	}, func(ctx context.Context, input *struct {
		Body CreateEmployeeRequest `json:"body"`
	}) (*struct {
		Body domain.Employee `json:"body"`
	}, error) {
		id, err := requirePermission(ctx, auth.PermManageEmployees)
		if err != nil {
			return nil, handleError(err)
		}
		b := input.Body
		emp, err := e.CreateEmployee(ctx, engine.EmployeeCreateOptions{
			EmployeeID: b.EmployeeID,
			FullName:   b.FullName,
			Password:   b.Password,
			Role:       b.Role,
			Team:       b.Team,
			Department: b.Department,
			Email:      b.Email,
			Phone:      b.Phone,
			Active:     b.IsActive,
			ActorID:    id.EmployeeID,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Employee `json:"body"`
		}{Body: emp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-employee",
		Method:      http.MethodPatch,
		Path:        "/employees/{id}",
		Summary:     "Partially update an employee",
		Errors:      []int{http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound, http.StatusConflict, http.StatusServiceUnavailable},
	}, func(ctx context.Context, input *struct {
		ID   string                `path:"id"`
		Body UpdateEmployeeRequest `json:"body"`
	}) (*struct {
		Body domain.Employee `json:"body"`
	}, error) {
		id, err := requirePermission(ctx, auth.PermManageEmployees)
		if err != nil {
			return nil, handleError(err)
		}
		b := input.Body
		emp, err := e.UpdateEmployee(ctx, engine.EmployeeUpdateOptions{
			ID:         input.ID,
			EmployeeID: b.EmployeeID,
			FullName:   b.FullName,
			Password:   b.Password,
			Role:       b.Role,
			Team:       b.Team,
			Department: b.Department,
			Email:      b.Email,
			Phone:      b.Phone,
			Active:     b.IsActive,
			ActorID:    id.EmployeeID,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Employee `json:"body"`
		}{Body: emp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-employee",
		Method:        http.MethodDelete,
		Path:          "/employees/{id}",
		Summary:       "Delete an employee",
		DefaultStatus: http.StatusNoContent,
		Errors:        []int{http.StatusForbidden, http.StatusNotFound, http.StatusConflict, http.StatusServiceUnavailable},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct{}, error) {
		id, err := requirePermission(ctx, auth.PermManageEmployees)
		if err != nil {
			return nil, handleError(err)
		}
		if err := e.DeleteEmployee(ctx, input.ID, id.EmployeeID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}
