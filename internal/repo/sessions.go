package repo

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"projector/internal/domain"
)

// InsertSession stores the server-side half of an issued token.
func (r Repo) InsertSession(ctx context.Context, tx *sqlx.Tx, s domain.Session) error {
	if s.ID == "" {
		return errors.New("id required")
	}
	if s.EmployeeID == "" {
		return errors.New("employee_id required")
	}
	_, err := sqlx.NamedExecContext(ctx, r.ext(tx), `INSERT INTO sessions(id,employee_id,created_at,expires_at,revoked_at)
VALUES (:id,:employee_id,:created_at,:expires_at,:revoked_at)`, s)
	return err
}

func (r Repo) GetSession(ctx context.Context, id string) (domain.Session, error) {
	var s domain.Session
	err := get(ctx, r.DB, &s, `SELECT id,employee_id,created_at,expires_at,revoked_at FROM sessions WHERE id=?`, id)
	return s, err
}

// RevokeSession marks a session revoked. Revoking twice keeps the first timestamp.
func (r Repo) RevokeSession(ctx context.Context, tx *sqlx.Tx, id, at string) error {
	return execAffecting(ctx, r.ext(tx), `UPDATE sessions SET revoked_at=COALESCE(revoked_at, ?) WHERE id=?`, at, id)
}

// RevokeEmployeeSessions revokes every open session of one employee.
func (r Repo) RevokeEmployeeSessions(ctx context.Context, tx *sqlx.Tx, employeeID, at string) error {
	q := r.ext(tx)
	_, err := q.ExecContext(ctx, q.Rebind(`UPDATE sessions SET revoked_at=? WHERE employee_id=? AND revoked_at IS NULL`), at, employeeID)
	return err
}

// ExtendSession moves the expiry of a live session forward.
func (r Repo) ExtendSession(ctx context.Context, tx *sqlx.Tx, id, expiresAt string) error {
	return execAffecting(ctx, r.ext(tx), `UPDATE sessions SET expires_at=? WHERE id=? AND revoked_at IS NULL`, expiresAt, id)
}

// PurgeSessions deletes sessions that expired before the cutoff.
func (r Repo) PurgeSessions(ctx context.Context, before string) (int64, error) {
	res, err := r.DB.ExecContext(ctx, r.DB.Rebind(`DELETE FROM sessions WHERE expires_at < ?`), before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
