package repo

import (
	"context"

	"github.com/jmoiron/sqlx"

	"projector/internal/domain"
)

const employeeColumns = `id,employee_id,full_name,password_hash,role,team,department,email,phone,is_active,created_date,updated_date`

var employeeSortable = map[string]struct{}{
	"created_date": {},
	"full_name":    {},
	"employee_id":  {},
	"role":         {},
}

func (r Repo) InsertEmployee(ctx context.Context, tx *sqlx.Tx, e domain.Employee) error {
	_, err := sqlx.NamedExecContext(ctx, r.ext(tx), `INSERT INTO employees(`+employeeColumns+`) VALUES (
:id,:employee_id,:full_name,:password_hash,:role,:team,:department,:email,:phone,:is_active,:created_date,:updated_date)`, e)
	return err
}

func (r Repo) UpdateEmployee(ctx context.Context, tx *sqlx.Tx, e domain.Employee) error {
	return namedAffecting(ctx, r.ext(tx), `UPDATE employees SET
employee_id=:employee_id,full_name=:full_name,password_hash=:password_hash,role=:role,team=:team,
department=:department,email=:email,phone=:phone,is_active=:is_active,updated_date=:updated_date
WHERE id=:id`, e)
}

func (r Repo) DeleteEmployee(ctx context.Context, tx *sqlx.Tx, id string) error {
	return execAffecting(ctx, r.ext(tx), `DELETE FROM employees WHERE id=?`, id)
}

func (r Repo) GetEmployee(ctx context.Context, id string) (domain.Employee, error) {
	var e domain.Employee
	err := get(ctx, r.DB, &e, `SELECT `+employeeColumns+` FROM employees WHERE id=?`, id)
	return e, err
}

// GetEmployeeByLogin looks an employee up by login handle.
func (r Repo) GetEmployeeByLogin(ctx context.Context, employeeID string) (domain.Employee, error) {
	var e domain.Employee
	err := get(ctx, r.DB, &e, `SELECT `+employeeColumns+` FROM employees WHERE employee_id=?`, employeeID)
	return e, err
}

func (r Repo) ListEmployees(ctx context.Context, sort string, activeOnly bool) ([]domain.Employee, error) {
	order, err := OrderBy(sort, employeeSortable, "full_name ASC, id ASC")
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + employeeColumns + ` FROM employees`
	var args []any
	if activeOnly {
		query += ` WHERE is_active=?`
		args = append(args, true)
	}
	items := []domain.Employee{}
	if err := selectAll(ctx, r.DB, &items, query+` ORDER BY `+order, args...); err != nil {
		return nil, err
	}
	return items, nil
}

func (r Repo) CountEmployees(ctx context.Context) (int, error) {
	var n int
	err := get(ctx, r.DB, &n, `SELECT COUNT(*) FROM employees`)
	return n, err
}
