package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"projector/internal/domain"
	"projector/internal/engine/auth"
	"projector/internal/events"
	"projector/internal/repo"
)

const entityEmployee = "employee"

type EmployeeCreateOptions struct {
	EmployeeID string
	FullName   string
	Password   string
	Role       string
	Team       string
	Department string
	Email      string
	Phone      string
	Active     *bool
	ActorID    string
}

func (e Engine) CreateEmployee(ctx context.Context, opts EmployeeCreateOptions) (emp domain.Employee, err error) {
	ctx, span := e.span(ctx, "CreateEmployee")
	defer func() { endSpan(span, err) }()

	emp = domain.Employee{
		ID:         uuid.NewString(),
		EmployeeID: strings.TrimSpace(opts.EmployeeID),
		FullName:   strings.TrimSpace(opts.FullName),
		Team:       opts.Team,
		Department: opts.Department,
		Email:      strings.TrimSpace(opts.Email),
		Phone:      strings.TrimSpace(opts.Phone),
		IsActive:   true,
	}
	if emp.EmployeeID == "" {
		return domain.Employee{}, domain.NewValidationError("employee_id", "is required")
	}
	if emp.FullName == "" {
		return domain.Employee{}, domain.NewValidationError("full_name", "is required")
	}
	if emp.Role, err = domain.ParseRole(opts.Role); err != nil {
		return domain.Employee{}, err
	}
	if opts.Active != nil {
		emp.IsActive = *opts.Active
	}
	if emp.PasswordHash, err = auth.HashPassword(opts.Password); err != nil {
		return domain.Employee{}, err
	}

	cctx, cancel := e.withTimeout(ctx)
	defer cancel()
	if err := e.ensureLoginFree(cctx, emp.EmployeeID, ""); err != nil {
		return domain.Employee{}, err
	}
	emp.CreatedDate = e.stamp()
	emp.UpdatedDate = emp.CreatedDate

	tx, err := e.DB.BeginTxx(cctx, nil)
	if err != nil {
		return domain.Employee{}, storeErr("begin", entityEmployee, emp.ID, err)
	}
	defer tx.Rollback()
	if err := e.Repo.InsertEmployee(cctx, tx, emp); err != nil {
		return domain.Employee{}, storeErr("insert employee", entityEmployee, emp.ID, err)
	}
	if err := e.eventWriter().Append(cctx, tx, "employee.created", entityEmployee, emp.ID, opts.ActorID, events.EventPayload{
		"employee_id": emp.EmployeeID,
		"role":        emp.Role,
	}); err != nil {
		return domain.Employee{}, storeErr("append event", entityEmployee, emp.ID, err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Employee{}, storeErr("commit", entityEmployee, emp.ID, err)
	}
	return emp, nil
}

func (e Engine) ensureLoginFree(ctx context.Context, login, selfID string) error {
	existing, err := e.Repo.GetEmployeeByLogin(ctx, login)
	if errors.Is(err, repo.ErrNotFound) {
		return nil
	}
	if err != nil {
		return storeErr("get employee", entityEmployee, login, err)
	}
	if existing.ID != selfID {
		return domain.NewValidationError("employee_id", fmt.Sprintf("%s is already taken", login))
	}
	return nil
}

type EmployeeUpdateOptions struct {
	ID         string
	EmployeeID *string
	FullName   *string
	Password   *string
	Role       *string
	Team       *string
	Department *string
	Email      *string
	Phone      *string
	Active     *bool
	ActorID    string
}

// UpdateEmployee applies a partial update. Renames flow into assigned programs and
// deactivation revokes open sessions.
func (e Engine) UpdateEmployee(ctx context.Context, opts EmployeeUpdateOptions) (emp domain.Employee, err error) {
	ctx, span := e.span(ctx, "UpdateEmployee")
	defer func() { endSpan(span, err) }()

	release, err := e.beginSave(entityEmployee, opts.ID)
	if err != nil {
		return domain.Employee{}, err
	}
	defer release()

	cctx, cancel := e.withTimeout(ctx)
	defer cancel()
	original, err := e.Repo.GetEmployee(cctx, opts.ID)
	if err != nil {
		return domain.Employee{}, storeErr("get employee", entityEmployee, opts.ID, err)
	}
	emp = original
	if opts.EmployeeID != nil {
		emp.EmployeeID = strings.TrimSpace(*opts.EmployeeID)
		if emp.EmployeeID == "" {
			return domain.Employee{}, domain.NewValidationError("employee_id", "is required")
		}
		if emp.EmployeeID != original.EmployeeID {
			if err := e.ensureLoginFree(cctx, emp.EmployeeID, emp.ID); err != nil {
				return domain.Employee{}, err
			}
		}
	}
	if opts.FullName != nil {
		emp.FullName = strings.TrimSpace(*opts.FullName)
		if emp.FullName == "" {
			return domain.Employee{}, domain.NewValidationError("full_name", "is required")
		}
	}
	if opts.Role != nil {
		if emp.Role, err = domain.ParseRole(*opts.Role); err != nil {
			return domain.Employee{}, err
		}
	}
	if opts.Team != nil {
		emp.Team = *opts.Team
	}
	if opts.Department != nil {
		emp.Department = *opts.Department
	}
	if opts.Email != nil {
		emp.Email = strings.TrimSpace(*opts.Email)
	}
	if opts.Phone != nil {
		emp.Phone = strings.TrimSpace(*opts.Phone)
	}
	if opts.Active != nil {
		emp.IsActive = *opts.Active
	}
	passwordChanged := false
	if opts.Password != nil && *opts.Password != "" {
		if emp.PasswordHash, err = auth.HashPassword(*opts.Password); err != nil {
			return domain.Employee{}, err
		}
		passwordChanged = true
	}
	emp.UpdatedDate = e.stamp()

	tx, err := e.DB.BeginTxx(cctx, nil)
	if err != nil {
		return domain.Employee{}, storeErr("begin", entityEmployee, emp.ID, err)
	}
	defer tx.Rollback()
	if err := e.Repo.UpdateEmployee(cctx, tx, emp); err != nil {
		return domain.Employee{}, storeErr("update employee", entityEmployee, emp.ID, err)
	}
	if emp.FullName != original.FullName {
		if err := e.Repo.RenameAssignee(cctx, tx, emp.ID, emp.FullName); err != nil {
			return domain.Employee{}, storeErr("rename assignee", entityEmployee, emp.ID, err)
		}
	}
	if (original.IsActive && !emp.IsActive) || passwordChanged {
		if err := e.Repo.RevokeEmployeeSessions(cctx, tx, emp.ID, emp.UpdatedDate); err != nil {
			return domain.Employee{}, storeErr("revoke sessions", entityEmployee, emp.ID, err)
		}
	}
	changes := events.Changes(employeeSnapshot(original), employeeSnapshot(emp))
	if passwordChanged {
		changes["password"] = "changed"
	}
	if len(changes) > 0 {
		if err := e.eventWriter().Append(cctx, tx, "employee.updated", entityEmployee, emp.ID, opts.ActorID, changes); err != nil {
			return domain.Employee{}, storeErr("append event", entityEmployee, emp.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return domain.Employee{}, storeErr("commit", entityEmployee, emp.ID, err)
	}
	return emp, nil
}

func employeeSnapshot(emp domain.Employee) map[string]any {
	return map[string]any{
		"employee_id": emp.EmployeeID,
		"full_name":   emp.FullName,
		"role":        string(emp.Role),
		"team":        emp.Team,
		"department":  emp.Department,
		"email":       emp.Email,
		"phone":       emp.Phone,
		"is_active":   emp.IsActive,
	}
}

// DeleteEmployee removes the record. Programs keep the last resolved display name.
func (e Engine) DeleteEmployee(ctx context.Context, id, actorID string) (err error) {
	ctx, span := e.span(ctx, "DeleteEmployee")
	defer func() { endSpan(span, err) }()

	release, err := e.beginSave(entityEmployee, id)
	if err != nil {
		return err
	}
	defer release()

	cctx, cancel := e.withTimeout(ctx)
	defer cancel()
	tx, err := e.DB.BeginTxx(cctx, nil)
	if err != nil {
		return storeErr("begin", entityEmployee, id, err)
	}
	defer tx.Rollback()
	if err := e.Repo.DeleteEmployee(cctx, tx, id); err != nil {
		return storeErr("delete employee", entityEmployee, id, err)
	}
	if err := e.Repo.UnlinkAssignee(cctx, tx, id); err != nil {
		return storeErr("unlink programs", entityEmployee, id, err)
	}
	if err := e.eventWriter().Append(cctx, tx, "employee.deleted", entityEmployee, id, actorID, nil); err != nil {
		return storeErr("append event", entityEmployee, id, err)
	}
	return storeErr("commit", entityEmployee, id, tx.Commit())
}

func (e Engine) GetEmployee(ctx context.Context, id string) (domain.Employee, error) {
	var emp domain.Employee
	err := e.readWithRetry(ctx, "get employee", func(ctx context.Context) error {
		var err error
		emp, err = e.Repo.GetEmployee(ctx, id)
		return storeErr("get employee", entityEmployee, id, err)
	})
	return emp, err
}

type EmployeeListOptions struct {
	ActiveOnly bool
	Sort       string
}

func (e Engine) ListEmployees(ctx context.Context, opts EmployeeListOptions) ([]domain.Employee, error) {
	var items []domain.Employee
	err := e.readWithRetry(ctx, "list employees", func(ctx context.Context) error {
		var err error
		items, err = e.Repo.ListEmployees(ctx, opts.Sort, opts.ActiveOnly)
		return storeErr("list employees", entityEmployee, "", err)
	})
	return items, err
}

func (e Engine) allEmployees(ctx context.Context, activeOnly bool) ([]domain.Employee, error) {
	return e.ListEmployees(ctx, EmployeeListOptions{ActiveOnly: activeOnly})
}

// SeedAdmin creates an active procurement manager when no employees exist yet.
// It reports whether an account was created.
func (e Engine) SeedAdmin(ctx context.Context, login, password string) (bool, error) {
	if strings.TrimSpace(login) == "" || password == "" {
		return false, nil
	}
	var n int
	err := e.readWithRetry(ctx, "count employees", func(ctx context.Context) error {
		var err error
		n, err = e.Repo.CountEmployees(ctx)
		return storeErr("count employees", entityEmployee, "", err)
	})
	if err != nil || n > 0 {
		return false, err
	}
	_, err = e.CreateEmployee(ctx, EmployeeCreateOptions{
		EmployeeID: login,
		FullName:   "Administrator",
		Password:   password,
		Role:       string(domain.RoleProcurementManager),
		ActorID:    "system",
	})
	if err != nil {
		return false, fmt.Errorf("seed admin: %w", err)
	}
	return true, nil
}
