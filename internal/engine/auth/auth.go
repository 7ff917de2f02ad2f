package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"projector/internal/domain"
	"projector/internal/repo"
	"projector/internal/telemetry"
)

const issuer = "projector"

// DefaultTTL is the token lifetime when the manager has none configured.
const DefaultTTL = 15 * time.Minute

// Identity is the authenticated employee behind a token.
type Identity struct {
	SessionID  string      `json:"session_id"`
	ID         string      `json:"id"`
	EmployeeID string      `json:"employee_id"`
	FullName   string      `json:"full_name"`
	Role       domain.Role `json:"role"`
	RoleLabel  string      `json:"role_label"`
	ExpiresAt  time.Time   `json:"expires_at"`
}

// Session is what a successful login or refresh hands back.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Employee  Identity  `json:"employee"`
}

type claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// Manager is the single session authority. It issues short-lived HS256 tokens
// backed by a session row and revalidates both on every Verify.
type Manager struct {
	Repo    repo.Repo
	Secret  []byte
	TTL     time.Duration
	Now     func() time.Time
	Logger  *zap.Logger
	Metrics *telemetry.Metrics
}

func NewManager(r repo.Repo, secret []byte, ttl time.Duration) (*Manager, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwt secret required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{Repo: r, Secret: secret, TTL: ttl, Now: time.Now, Logger: zap.NewNop()}, nil
}

func (m *Manager) now() time.Time {
	if m.Now != nil {
		return m.Now().UTC()
	}
	return time.Now().UTC()
}

func (m *Manager) log() *zap.Logger { return telemetry.OrNop(m.Logger) }

func (m *Manager) ttl() time.Duration {
	if m.TTL > 0 {
		return m.TTL
	}
	return DefaultTTL
}

// Login checks credentials and opens a session. Every failure is the same AuthError.
func (m *Manager) Login(ctx context.Context, employeeID, password string) (Session, error) {
	employeeID = strings.TrimSpace(employeeID)
	emp, err := m.Repo.GetEmployeeByLogin(ctx, employeeID)
	if errors.Is(err, repo.ErrNotFound) {
		burnCompare(password)
		return Session{}, m.loginFailed(employeeID, "unknown employee")
	}
	if err != nil {
		return Session{}, domain.RemoteError{Op: "login", Err: err}
	}
	if !CheckPassword(emp.PasswordHash, password) {
		return Session{}, m.loginFailed(employeeID, "wrong password")
	}
	if !emp.IsActive {
		return Session{}, m.loginFailed(employeeID, "inactive employee")
	}
	s, err := m.issue(ctx, emp)
	if err != nil {
		return Session{}, err
	}
	m.Metrics.LoginAttempt("success")
	m.log().Info("login", zap.String("employee_id", employeeID), zap.String("session_id", s.Employee.SessionID))
	return s, nil
}

func (m *Manager) loginFailed(employeeID, reason string) error {
	m.Metrics.LoginAttempt("failure")
	m.log().Warn("login failed", zap.String("employee_id", employeeID), zap.String("reason", reason))
	return domain.AuthError{Reason: reason}
}

func (m *Manager) issue(ctx context.Context, emp domain.Employee) (Session, error) {
	now := m.now()
	exp := now.Add(m.ttl())
	row := domain.Session{
		ID:         uuid.NewString(),
		EmployeeID: emp.ID,
		CreatedAt:  now.Format(domain.TimestampLayout),
		ExpiresAt:  exp.Format(domain.TimestampLayout),
	}
	if err := m.Repo.InsertSession(ctx, nil, row); err != nil {
		return Session{}, domain.RemoteError{Op: "insert session", Err: err}
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   emp.ID,
			ID:        row.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Role: string(emp.Role),
	})
	signed, err := token.SignedString(m.Secret)
	if err != nil {
		return Session{}, fmt.Errorf("sign token: %w", err)
	}
	return Session{Token: signed, ExpiresAt: exp, Employee: identityOf(emp, row.ID, exp)}, nil
}

func identityOf(emp domain.Employee, sessionID string, exp time.Time) Identity {
	return Identity{
		SessionID:  sessionID,
		ID:         emp.ID,
		EmployeeID: emp.EmployeeID,
		FullName:   emp.FullName,
		Role:       emp.Role,
		RoleLabel:  emp.Role.Label(),
		ExpiresAt:  exp,
	}
}

func (m *Manager) parse(token string) (*claims, error) {
	c := &claims{}
	_, err := jwt.ParseWithClaims(strings.TrimSpace(token), c, func(t *jwt.Token) (any, error) {
		return m.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, domain.AuthError{Reason: err.Error()}
	}
	return c, nil
}

// Verify checks the token signature and expiry, then the session row, then
// that the employee still exists and is active.
func (m *Manager) Verify(ctx context.Context, token string) (Identity, error) {
	c, err := m.parse(token)
	if err != nil {
		return Identity{}, err
	}
	s, err := m.Repo.GetSession(ctx, c.ID)
	if errors.Is(err, repo.ErrNotFound) {
		return Identity{}, domain.AuthError{Reason: "unknown session"}
	}
	if err != nil {
		return Identity{}, domain.RemoteError{Op: "get session", Err: err}
	}
	if s.RevokedAt != nil {
		return Identity{}, domain.AuthError{Reason: "session revoked"}
	}
	exp, err := time.Parse(domain.TimestampLayout, s.ExpiresAt)
	if err != nil || !m.now().Before(exp) {
		return Identity{}, domain.AuthError{Reason: "session expired"}
	}
	if s.EmployeeID != c.Subject {
		return Identity{}, domain.AuthError{Reason: "subject mismatch"}
	}
	emp, err := m.Repo.GetEmployee(ctx, s.EmployeeID)
	if errors.Is(err, repo.ErrNotFound) {
		return Identity{}, domain.AuthError{Reason: "employee removed"}
	}
	if err != nil {
		return Identity{}, domain.RemoteError{Op: "get employee", Err: err}
	}
	if !emp.IsActive {
		return Identity{}, domain.AuthError{Reason: "employee inactive"}
	}
	return identityOf(emp, s.ID, exp), nil
}

// Refresh swaps a live token for a new one and revokes the old session.
func (m *Manager) Refresh(ctx context.Context, token string) (Session, error) {
	id, err := m.Verify(ctx, token)
	if err != nil {
		return Session{}, err
	}
	emp, err := m.Repo.GetEmployee(ctx, id.ID)
	if err != nil {
		return Session{}, domain.RemoteError{Op: "get employee", Err: err}
	}
	if err := m.Repo.RevokeSession(ctx, nil, id.SessionID, m.now().Format(domain.TimestampLayout)); err != nil {
		return Session{}, domain.RemoteError{Op: "revoke session", Err: err}
	}
	return m.issue(ctx, emp)
}

// Logout revokes the session behind token.
func (m *Manager) Logout(ctx context.Context, token string) error {
	id, err := m.Verify(ctx, token)
	if err != nil {
		return err
	}
	if err := m.Repo.RevokeSession(ctx, nil, id.SessionID, m.now().Format(domain.TimestampLayout)); err != nil {
		return domain.RemoteError{Op: "revoke session", Err: err}
	}
	m.log().Info("logout", zap.String("employee_id", id.EmployeeID), zap.String("session_id", id.SessionID))
	return nil
}
