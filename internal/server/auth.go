package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"projector/internal/domain"
	"projector/internal/engine/auth"
)

type identityKey struct{}
type tokenKey struct{}

func withIdentity(ctx context.Context, id auth.Identity, token string) context.Context {
	ctx = context.WithValue(ctx, identityKey{}, id)
	return context.WithValue(ctx, tokenKey{}, token)
}

func identityFromContext(ctx context.Context) (auth.Identity, huma.StatusError) {
	if id, ok := ctx.Value(identityKey{}).(auth.Identity); ok && id.ID != "" {
		return id, nil
	}
	return auth.Identity{}, newAPIError(http.StatusUnauthorized, "unauthorized", "authentication required", nil)
}

func tokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// actorFromContext is the login handle recorded on audit events.
func actorFromContext(ctx context.Context) (string, huma.StatusError) {
	id, err := identityFromContext(ctx)
	if err != nil {
		return "", err
	}
	return id.EmployeeID, nil
}

// requirePermission resolves the caller and checks their role grants perm.
func requirePermission(ctx context.Context, perm string) (auth.Identity, error) {
	id, authErr := identityFromContext(ctx)
	if authErr != nil {
		return auth.Identity{}, authErr
	}
	if err := auth.Require(id, perm); err != nil {
		return auth.Identity{}, err
	}
	return id, nil
}

func bearerToken(authz string) (string, bool) {
	parts := strings.Fields(authz)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

// newAuthMiddleware verifies the bearer token on every API request. Each
// request revalidates the session and the employee behind it.
func newAuthMiddleware(basePath string, m *auth.Manager) func(http.Handler) http.Handler {
	public := publicPaths(basePath)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if basePath != "" && !strings.HasPrefix(req.URL.Path, basePath) {
				next.ServeHTTP(w, req)
				return
			}
			if _, ok := public[req.URL.Path]; ok {
				next.ServeHTTP(w, req)
				return
			}
			authz := strings.TrimSpace(req.Header.Get("Authorization"))
			if authz == "" {
				respondStatusError(w, newAPIError(http.StatusUnauthorized, "unauthorized", "authentication required", nil))
				return
			}
			token, ok := bearerToken(authz)
			if !ok {
				respondStatusError(w, newAPIError(http.StatusUnauthorized, "invalid_credentials", "invalid credentials", nil))
				return
			}
			id, err := m.Verify(req.Context(), token)
			if err != nil {
				respondStatusError(w, handleError(err))
				return
			}
			next.ServeHTTP(w, req.WithContext(withIdentity(req.Context(), id, token)))
		})
	}
}

func respondStatusError(w http.ResponseWriter, err huma.StatusError) {
	status := http.StatusInternalServerError
	if e, ok := err.(interface{ GetStatus() int }); ok {
		status = e.GetStatus()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(err)
}

func registerAuth(api huma.API, m *auth.Manager) {
	huma.Register(api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/auth/login",
		Summary:     "Exchange employee credentials for a session token",
		Errors:      []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusServiceUnavailable},
	}, func(ctx context.Context, input *struct {
		Body LoginRequest `json:"body"`
	}) (*struct {
		Body auth.Session `json:"body"`
	}, error) {
		if strings.TrimSpace(input.Body.EmployeeID) == "" {
			return nil, handleError(domain.NewValidationError("employee_id", "is required"))
		}
		s, err := m.Login(ctx, input.Body.EmployeeID, input.Body.Password)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body auth.Session `json:"body"`
		}{Body: s}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "refresh-session",
		Method:      http.MethodPost,
		Path:        "/auth/refresh",
		Summary:     "Swap the current token for a fresh one",
		Errors:      []int{http.StatusUnauthorized},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body auth.Session `json:"body"`
	}, error) {
		s, err := m.Refresh(ctx, tokenFromContext(ctx))
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body auth.Session `json:"body"`
		}{Body: s}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "logout",
		Method:        http.MethodPost,
		Path:          "/auth/logout",
		Summary:       "Revoke the current session",
		DefaultStatus: http.StatusNoContent,
		Errors:        []int{http.StatusUnauthorized},
	}, func(ctx context.Context, _ *struct{}) (*struct{}, error) {
		if err := m.Logout(ctx, tokenFromContext(ctx)); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}
