package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"projector/internal/domain"
)

type Repo struct {
	DB *sqlx.DB
}

var ErrNotFound = domain.ErrNotFound

// ext returns the transaction when present so callers can share one code path.
func (r Repo) ext(tx *sqlx.Tx) sqlx.ExtContext {
	if tx != nil {
		return tx
	}
	return r.DB
}

func get(ctx context.Context, q sqlx.ExtContext, dest any, query string, args ...any) error {
	err := sqlx.GetContext(ctx, q, dest, q.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func selectAll(ctx context.Context, q sqlx.ExtContext, dest any, query string, args ...any) error {
	return sqlx.SelectContext(ctx, q, dest, q.Rebind(query), args...)
}

func execAffecting(ctx context.Context, q sqlx.ExtContext, query string, args ...any) error {
	res, err := q.ExecContext(ctx, q.Rebind(query), args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func namedAffecting(ctx context.Context, q sqlx.ExtContext, query string, arg any) error {
	res, err := sqlx.NamedExecContext(ctx, q, query, arg)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

const programColumns = `id,program_number,title,description,status,requester_name,requester_unit,
assigned_employee_id,assigned_employee,team_leader,department,engagement_type,priority,
current_station,total_stations,start_date,target_date,completion_date,estimated_budget,actual_cost,
notes,created_date,updated_date`

var programSortable = map[string]struct{}{
	"created_date":    {},
	"updated_date":    {},
	"title":           {},
	"status":          {},
	"priority":        {},
	"target_date":     {},
	"current_station": {},
	"program_number":  {},
}

// OrderBy turns a sort spec like "-created_date" into an ORDER BY clause.
// An empty spec uses fallback.
func OrderBy(spec string, allowed map[string]struct{}, fallback string) (string, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return fallback, nil
	}
	dir := "ASC"
	if strings.HasPrefix(spec, "-") {
		dir = "DESC"
		spec = strings.TrimPrefix(spec, "-")
	}
	if _, ok := allowed[spec]; !ok {
		return "", domain.NewValidationError("sort", fmt.Sprintf("cannot sort by %q", spec))
	}
	return fmt.Sprintf("%s %s, id %s", spec, dir, dir), nil
}

func (r Repo) InsertProgram(ctx context.Context, tx *sqlx.Tx, p domain.Program) error {
	_, err := sqlx.NamedExecContext(ctx, r.ext(tx), `INSERT INTO programs(`+programColumns+`) VALUES (
:id,:program_number,:title,:description,:status,:requester_name,:requester_unit,
:assigned_employee_id,:assigned_employee,:team_leader,:department,:engagement_type,:priority,
:current_station,:total_stations,:start_date,:target_date,:completion_date,:estimated_budget,:actual_cost,
:notes,:created_date,:updated_date)`, p)
	return err
}

// UpdateProgram replaces every mutable column. created_date is left alone.
func (r Repo) UpdateProgram(ctx context.Context, tx *sqlx.Tx, p domain.Program) error {
	return namedAffecting(ctx, r.ext(tx), `UPDATE programs SET
program_number=:program_number,title=:title,description=:description,status=:status,
requester_name=:requester_name,requester_unit=:requester_unit,assigned_employee_id=:assigned_employee_id,
assigned_employee=:assigned_employee,team_leader=:team_leader,department=:department,
engagement_type=:engagement_type,priority=:priority,current_station=:current_station,
total_stations=:total_stations,start_date=:start_date,target_date=:target_date,
completion_date=:completion_date,estimated_budget=:estimated_budget,actual_cost=:actual_cost,
notes=:notes,updated_date=:updated_date
WHERE id=:id`, p)
}

func (r Repo) GetProgram(ctx context.Context, id string) (domain.Program, error) {
	var p domain.Program
	err := get(ctx, r.DB, &p, `SELECT `+programColumns+` FROM programs WHERE id=?`, id)
	return p, err
}

func (r Repo) GetProgramTx(ctx context.Context, tx *sqlx.Tx, id string) (domain.Program, error) {
	var p domain.Program
	err := get(ctx, tx, &p, `SELECT `+programColumns+` FROM programs WHERE id=?`, id)
	return p, err
}

// ListPrograms returns every program ordered by sort ("-created_date" when empty).
func (r Repo) ListPrograms(ctx context.Context, sort string) ([]domain.Program, error) {
	order, err := OrderBy(sort, programSortable, "created_date DESC, id DESC")
	if err != nil {
		return nil, err
	}
	items := []domain.Program{}
	if err := selectAll(ctx, r.DB, &items, `SELECT `+programColumns+` FROM programs ORDER BY `+order); err != nil {
		return nil, err
	}
	return items, nil
}

// RenameAssignee keeps the denormalised assignee name in step with the employee record.
func (r Repo) RenameAssignee(ctx context.Context, tx *sqlx.Tx, employeeID, fullName string) error {
	_, err := r.ext(tx).ExecContext(ctx, r.ext(tx).Rebind(`UPDATE programs SET assigned_employee=? WHERE assigned_employee_id=?`), fullName, employeeID)
	return err
}

func (r Repo) CountPrograms(ctx context.Context) (int, error) {
	var n int
	err := get(ctx, r.DB, &n, `SELECT COUNT(*) FROM programs`)
	return n, err
}

// UnlinkAssignee drops the employee link but keeps the last display name.
func (r Repo) UnlinkAssignee(ctx context.Context, tx *sqlx.Tx, employeeID string) error {
	_, err := r.ext(tx).ExecContext(ctx, r.ext(tx).Rebind(`UPDATE programs SET assigned_employee_id='' WHERE assigned_employee_id=?`), employeeID)
	return err
}
