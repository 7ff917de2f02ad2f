package projectorsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
)

// Client is a minimal Projector HTTP API client.
type Client struct {
	BaseURL     string
	BasePath    string
	BearerToken string
	HTTPClient  *http.Client
	Timeout     time.Duration
	// ReadRetries bounds retries of GET requests answered with 503.
	ReadRetries uint64
}

// New creates a client with sane defaults.
func New(baseURL string) *Client {
	return &Client{
		BaseURL:     baseURL,
		BasePath:    "/v1",
		Timeout:     10 * time.Second,
		ReadRetries: 3,
	}
}

// Program represents the API program model (partial).
type Program struct {
	ID                 string   `json:"id"`
	ProgramNumber      string   `json:"program_number,omitempty"`
	Title              string   `json:"title"`
	Status             string   `json:"status"`
	Priority           string   `json:"priority"`
	RequesterName      string   `json:"requester_name"`
	AssignedEmployeeID string   `json:"assigned_employee_id,omitempty"`
	AssignedEmployee   string   `json:"assigned_employee,omitempty"`
	EngagementType     string   `json:"engagement_type"`
	CurrentStation     int      `json:"current_station"`
	TotalStations      int      `json:"total_stations"`
	TargetDate         *string  `json:"target_date,omitempty"`
	CompletionDate     *string  `json:"completion_date,omitempty"`
	EstimatedBudget    *float64 `json:"estimated_budget,omitempty"`
	CreatedDate        string   `json:"created_date"`
	UpdatedDate        string   `json:"updated_date"`
}

// Station is one step of a program's progress projection.
type Station struct {
	Number       int       `json:"station_number"`
	ActivityName string    `json:"activity_name"`
	State        string    `json:"status"`
	DueDate      time.Time `json:"due_date"`
}

// StatusInfo is the display metadata of a status.
type StatusInfo struct {
	Key    string `json:"key"`
	Label  string `json:"label"`
	Color  string `json:"color"`
	Weight int    `json:"weight"`
}

// ProgramView is a program with its derived progress.
type ProgramView struct {
	Program     Program    `json:"program"`
	DisplayCode string     `json:"display_code"`
	Percentage  int        `json:"percentage"`
	StatusInfo  StatusInfo `json:"status_info"`
	Stations    []Station  `json:"stations"`
}

// Load is one employee's workload.
type Load struct {
	Employee struct {
		ID         string `json:"id"`
		EmployeeID string `json:"employee_id"`
		FullName   string `json:"full_name"`
	} `json:"employee"`
	RoleLabel   string `json:"role_label"`
	ActiveTasks int    `json:"active_tasks"`
	Percentage  int    `json:"workload_percentage"`
	Level       string `json:"level"`
}

// Dashboard is the landing page summary.
type Dashboard struct {
	Total    int `json:"total"`
	Statuses []struct {
		StatusInfo
		Count int `json:"count"`
	} `json:"statuses"`
	Recent []struct {
		Program     Program `json:"program"`
		DisplayCode string  `json:"display_code"`
		Percentage  int     `json:"percentage"`
	} `json:"recent"`
	Workload []Load `json:"workload"`
}

// Session is a login result.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Employee  struct {
		ID         string `json:"id"`
		EmployeeID string `json:"employee_id"`
		FullName   string `json:"full_name"`
		Role       string `json:"role"`
	} `json:"employee"`
}

// CreateProgramInput carries the fields of a new program.
type CreateProgramInput struct {
	Title              string   `json:"title"`
	RequesterName      string   `json:"requester_name"`
	EngagementType     string   `json:"engagement_type"`
	ProgramNumber      string   `json:"program_number,omitempty"`
	Description        string   `json:"description,omitempty"`
	Status             string   `json:"status,omitempty"`
	Priority           string   `json:"priority,omitempty"`
	AssignedEmployeeID string   `json:"assigned_employee_id,omitempty"`
	CurrentStation     *int     `json:"current_station,omitempty"`
	TotalStations      *int     `json:"total_stations,omitempty"`
	TargetDate         string   `json:"target_date,omitempty"`
	EstimatedBudget    *float64 `json:"estimated_budget,omitempty"`
}

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error: status=%d code=%s message=%s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
}

// Login exchanges credentials for a token and keeps it on the client.
func (c *Client) Login(ctx context.Context, employeeID, password string) (Session, error) {
	var resp Session
	err := c.do(ctx, http.MethodPost, "auth/login", map[string]any{
		"employee_id": employeeID,
		"password":    password,
	}, &resp)
	if err == nil {
		c.BearerToken = resp.Token
	}
	return resp, err
}

// Logout revokes the client's token.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "auth/logout", nil, nil)
	if err == nil {
		c.BearerToken = ""
	}
	return err
}

// Programs lists programs matching query and status ("" or "all" for every status).
func (c *Client) Programs(ctx context.Context, query, status string) ([]Program, error) {
	q := url.Values{}
	if query != "" {
		q.Set("q", query)
	}
	if status != "" {
		q.Set("status", status)
	}
	endpoint := "programs"
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}
	var resp []Program
	err := c.get(ctx, endpoint, &resp)
	return resp, err
}

// Program fetches a program with its station projection.
func (c *Client) Program(ctx context.Context, id string) (ProgramView, error) {
	var resp ProgramView
	err := c.get(ctx, "programs/"+url.PathEscape(id), &resp)
	return resp, err
}

// CreateProgram opens a new program.
func (c *Client) CreateProgram(ctx context.Context, in CreateProgramInput) (Program, error) {
	var resp Program
	err := c.do(ctx, http.MethodPost, "programs", in, &resp)
	return resp, err
}

// UpdateProgram sends a partial update. A nil value in fields clears a date.
func (c *Client) UpdateProgram(ctx context.Context, id string, fields map[string]any) (Program, error) {
	var resp Program
	err := c.do(ctx, http.MethodPatch, "programs/"+url.PathEscape(id), fields, &resp)
	return resp, err
}

// Dashboard returns the landing summary.
func (c *Client) Dashboard(ctx context.Context) (Dashboard, error) {
	var resp Dashboard
	err := c.get(ctx, "dashboard", &resp)
	return resp, err
}

// Workload returns per-employee load.
func (c *Client) Workload(ctx context.Context) ([]Load, error) {
	var resp []Load
	err := c.get(ctx, "workload", &resp)
	return resp, err
}

// get retries idempotent reads while the store reports itself unavailable.
func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	b := retry.WithMaxRetries(c.ReadRetries, retry.NewExponential(200*time.Millisecond))
	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := c.do(ctx, http.MethodGet, endpoint, nil, out)
		if apiErr, ok := err.(*APIError); ok && apiErr.StatusCode == http.StatusServiceUnavailable {
			return retry.RetryableError(err)
		}
		return err
	})
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	url := c.base() + "/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.BearerToken)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(b)}
		var env struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(b, &env) == nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		return apiErr
	}
	if out != nil && resp.StatusCode != http.StatusNoContent {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) base() string {
	return strings.TrimRight(c.BaseURL, "/") + "/" + strings.Trim(c.BasePath, "/")
}
