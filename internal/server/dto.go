package server

import (
	"context"
	"encoding/json"
	"time"

	"projector/internal/domain"
	"projector/internal/engine/auth"
)

type LoginRequest struct {
	EmployeeID string `json:"employee_id" minLength:"1"`
	Password   string `json:"password"`
}

type MeResponse struct {
	SessionID   string      `json:"session_id"`
	ID          string      `json:"id"`
	EmployeeID  string      `json:"employee_id"`
	FullName    string      `json:"full_name"`
	Role        domain.Role `json:"role"`
	RoleLabel   string      `json:"role_label"`
	ExpiresAt   time.Time   `json:"expires_at"`
	Permissions []string    `json:"permissions"`
}

func newMeResponse(id auth.Identity) MeResponse {
	return MeResponse{
		SessionID:   id.SessionID,
		ID:          id.ID,
		EmployeeID:  id.EmployeeID,
		FullName:    id.FullName,
		Role:        id.Role,
		RoleLabel:   id.RoleLabel,
		ExpiresAt:   id.ExpiresAt,
		Permissions: nonNilSlice(auth.Permissions(id.Role)),
	}
}

type CreateProgramRequest struct {
	ProgramNumber      string   `json:"program_number,omitempty"`
	Title              string   `json:"title"`
	Description        string   `json:"description,omitempty"`
	Status             string   `json:"status,omitempty"`
	RequesterName      string   `json:"requester_name"`
	RequesterUnit      string   `json:"requester_unit,omitempty"`
	AssignedEmployeeID string   `json:"assigned_employee_id,omitempty"`
	TeamLeader         string   `json:"team_leader,omitempty"`
	Department         string   `json:"department,omitempty"`
	EngagementType     string   `json:"engagement_type"`
	Priority           string   `json:"priority,omitempty"`
	CurrentStation     *int     `json:"current_station,omitempty"`
	TotalStations      *int     `json:"total_stations,omitempty"`
	StartDate          string   `json:"start_date,omitempty"`
	TargetDate         string   `json:"target_date,omitempty"`
	CompletionDate     string   `json:"completion_date,omitempty"`
	EstimatedBudget    *float64 `json:"estimated_budget,omitempty"`
	ActualCost         *float64 `json:"actual_cost,omitempty"`
	Notes              string   `json:"notes,omitempty"`
}

// UpdateProgramRequest is a partial update. A null date, assignee or amount clears it.
type UpdateProgramRequest struct {
	ProgramNumber      *string  `json:"program_number,omitempty"`
	Title              *string  `json:"title,omitempty"`
	Description        *string  `json:"description,omitempty"`
	Status             *string  `json:"status,omitempty"`
	RequesterName      *string  `json:"requester_name,omitempty"`
	RequesterUnit      *string  `json:"requester_unit,omitempty"`
	AssignedEmployeeID *string  `json:"assigned_employee_id,omitempty"`
	TeamLeader         *string  `json:"team_leader,omitempty"`
	Department         *string  `json:"department,omitempty"`
	EngagementType     *string  `json:"engagement_type,omitempty"`
	Priority           *string  `json:"priority,omitempty"`
	CurrentStation     *int     `json:"current_station,omitempty"`
	TotalStations      *int     `json:"total_stations,omitempty"`
	StartDate          *string  `json:"start_date,omitempty" nullable:"true"`
	TargetDate         *string  `json:"target_date,omitempty" nullable:"true"`
	CompletionDate     *string  `json:"completion_date,omitempty" nullable:"true"`
	EstimatedBudget    *float64 `json:"estimated_budget,omitempty" nullable:"true"`
	ActualCost         *float64 `json:"actual_cost,omitempty" nullable:"true"`
	Notes              *string  `json:"notes,omitempty"`
}

type CreateEmployeeRequest struct {
	EmployeeID string `json:"employee_id"`
	FullName   string `json:"full_name"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	Team       string `json:"team,omitempty"`
	Department string `json:"department,omitempty"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	IsActive   *bool  `json:"is_active,omitempty"`
}

type UpdateEmployeeRequest struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	FullName   *string `json:"full_name,omitempty"`
	Password   *string `json:"password,omitempty"`
	Role       *string `json:"role,omitempty"`
	Team       *string `json:"team,omitempty"`
	Department *string `json:"department,omitempty"`
	Email      *string `json:"email,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	IsActive   *bool   `json:"is_active,omitempty"`
}

type ReferenceRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

type EngagementTypeRequest struct {
	TypeName           *string `json:"type_name,omitempty"`
	TypeDescription    *string `json:"type_description,omitempty"`
	EstimatedDuration  *int    `json:"estimated_duration,omitempty"`
	TypicalBudgetRange *string `json:"typical_budget_range,omitempty"`
	ApprovalLevels     *string `json:"approval_levels,omitempty" doc:"Comma separated approval levels"`
	DefaultActivities  *string `json:"default_activities,omitempty" doc:"JSON array of {station, activity_name, estimated_days}"`
	IsActive           *bool   `json:"is_active,omitempty"`
}

type ActivityRequest struct {
	ActivityName        *string `json:"activity_name,omitempty"`
	ActivityDescription *string `json:"activity_description,omitempty"`
	Category            *string `json:"category,omitempty"`
	ComplexityLevel     *string `json:"complexity_level,omitempty"`
	EstimatedDuration   *int    `json:"estimated_duration,omitempty"`
	IsMandatory         *bool   `json:"is_mandatory,omitempty"`
	RequiredSkills      *string `json:"required_skills,omitempty" doc:"Comma separated skills"`
	DefaultAssigneeRole *string `json:"default_assignee_role,omitempty"`
}

func bodyBytes(ctx context.Context) []byte {
	if ctx == nil {
		return nil
	}
	if b, ok := ctx.Value(bodyBytesKey{}).([]byte); ok {
		return b
	}
	return nil
}

func rawBodyMap(ctx context.Context) map[string]json.RawMessage {
	data := bodyBytes(ctx)
	if len(data) == 0 {
		return nil
	}
	var out map[string]json.RawMessage
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}

func isNullRaw(raw json.RawMessage) bool {
	return string(raw) == "null"
}

// clearedIfNull turns an explicit JSON null into an empty string, which clears
// the field downstream.
func clearedIfNull(raw map[string]json.RawMessage, key string, v *string) *string {
	if v != nil {
		return v
	}
	if r, ok := raw[key]; ok && isNullRaw(r) {
		empty := ""
		return &empty
	}
	return nil
}

// nullIn reports whether key was sent as an explicit JSON null.
func nullIn(raw map[string]json.RawMessage, key string) bool {
	r, ok := raw[key]
	return ok && isNullRaw(r)
}

func nonNilSlice[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
