package domain

import "strings"

const (
	// DateLayout is the calendar-date format used for program dates.
	DateLayout = "2006-01-02"
	// TimestampLayout is fixed width so stored timestamps sort as text.
	TimestampLayout = "2006-01-02T15:04:05.000000Z"
)

type Program struct {
	ID                 string   `json:"id" db:"id"`
	ProgramNumber      string   `json:"program_number,omitempty" db:"program_number"`
	Title              string   `json:"title" db:"title"`
	Description        string   `json:"description,omitempty" db:"description"`
	Status             Status   `json:"status" db:"status"`
	RequesterName      string   `json:"requester_name" db:"requester_name"`
	RequesterUnit      string   `json:"requester_unit,omitempty" db:"requester_unit"`
	AssignedEmployeeID string   `json:"assigned_employee_id,omitempty" db:"assigned_employee_id"`
	AssignedEmployee   string   `json:"assigned_employee,omitempty" db:"assigned_employee"`
	TeamLeader         string   `json:"team_leader,omitempty" db:"team_leader"`
	Department         string   `json:"department,omitempty" db:"department"`
	EngagementType     string   `json:"engagement_type" db:"engagement_type"`
	Priority           Priority `json:"priority" db:"priority"`
	CurrentStation     int      `json:"current_station" db:"current_station"`
	TotalStations      int      `json:"total_stations" db:"total_stations"`
	StartDate          *string  `json:"start_date,omitempty" db:"start_date" format:"date"`
	TargetDate         *string  `json:"target_date,omitempty" db:"target_date" format:"date"`
	CompletionDate     *string  `json:"completion_date,omitempty" db:"completion_date" format:"date"`
	EstimatedBudget    *float64 `json:"estimated_budget,omitempty" db:"estimated_budget"`
	ActualCost         *float64 `json:"actual_cost,omitempty" db:"actual_cost"`
	Notes              string   `json:"notes,omitempty" db:"notes"`
	CreatedDate        string   `json:"created_date" db:"created_date" format:"date-time"`
	UpdatedDate        string   `json:"updated_date" db:"updated_date" format:"date-time"`
}

// DisplayCode is the short code shown next to a program title.
func (p Program) DisplayCode() string {
	if p.ProgramNumber != "" {
		return p.ProgramNumber
	}
	id := []rune(p.ID)
	if len(id) > 4 {
		id = id[len(id)-4:]
	}
	return strings.ToUpper(string(id))
}

type Employee struct {
	ID           string `json:"id" db:"id"`
	EmployeeID   string `json:"employee_id" db:"employee_id"`
	FullName     string `json:"full_name" db:"full_name"`
	PasswordHash string `json:"-" db:"password_hash"`
	Role         Role   `json:"role" db:"role"`
	Team         string `json:"team,omitempty" db:"team"`
	Department   string `json:"department,omitempty" db:"department"`
	Email        string `json:"email,omitempty" db:"email"`
	Phone        string `json:"phone,omitempty" db:"phone"`
	IsActive     bool   `json:"is_active" db:"is_active"`
	CreatedDate  string `json:"created_date" db:"created_date" format:"date-time"`
	UpdatedDate  string `json:"updated_date" db:"updated_date" format:"date-time"`
}

// Reference is the shared shape of departments, divisions, domains and procurement teams.
type Reference struct {
	ID          string        `json:"id" db:"id"`
	Kind        ReferenceKind `json:"kind" db:"-"`
	Name        string        `json:"name" db:"name"`
	Description string        `json:"description,omitempty" db:"description"`
	CreatedDate string        `json:"created_date" db:"created_date" format:"date-time"`
	UpdatedDate string        `json:"updated_date" db:"updated_date" format:"date-time"`
}

type StationActivity struct {
	Station       int    `json:"station"`
	ActivityName  string `json:"activity_name"`
	EstimatedDays int    `json:"estimated_days,omitempty"`
}

type EngagementType struct {
	ID                 string           `json:"id" db:"id"`
	TypeName           string           `json:"type_name" db:"type_name"`
	TypeDescription    string           `json:"type_description,omitempty" db:"type_description"`
	EstimatedDuration  int              `json:"estimated_duration,omitempty" db:"estimated_duration"`
	TypicalBudgetRange string           `json:"typical_budget_range,omitempty" db:"typical_budget_range"`
	ApprovalLevels     StringList       `json:"approval_levels" db:"approval_levels"`
	DefaultActivities  ActivityTemplate `json:"default_activities" db:"default_activities"`
	IsActive           bool             `json:"is_active" db:"is_active"`
	CreatedDate        string           `json:"created_date" db:"created_date" format:"date-time"`
	UpdatedDate        string           `json:"updated_date" db:"updated_date" format:"date-time"`
}

type ActivityPool struct {
	ID                  string           `json:"id" db:"id"`
	ActivityName        string           `json:"activity_name" db:"activity_name"`
	ActivityDescription string           `json:"activity_description,omitempty" db:"activity_description"`
	Category            ActivityCategory `json:"category" db:"category"`
	ComplexityLevel     ComplexityLevel  `json:"complexity_level" db:"complexity_level"`
	EstimatedDuration   int              `json:"estimated_duration,omitempty" db:"estimated_duration"`
	IsMandatory         bool             `json:"is_mandatory" db:"is_mandatory"`
	RequiredSkills      StringList       `json:"required_skills" db:"required_skills"`
	DefaultAssigneeRole Role             `json:"default_assignee_role,omitempty" db:"default_assignee_role"`
	CreatedDate         string           `json:"created_date" db:"created_date" format:"date-time"`
	UpdatedDate         string           `json:"updated_date" db:"updated_date" format:"date-time"`
}

// Session is the server-side record behind an issued token.
type Session struct {
	ID         string  `json:"id" db:"id"`
	EmployeeID string  `json:"employee_id" db:"employee_id"`
	CreatedAt  string  `json:"created_at" db:"created_at"`
	ExpiresAt  string  `json:"expires_at" db:"expires_at"`
	RevokedAt  *string `json:"revoked_at,omitempty" db:"revoked_at"`
}

type Event struct {
	ID         int64  `json:"id" db:"id"`
	TS         string `json:"ts" db:"ts"`
	Type       string `json:"type" db:"type"`
	EntityKind string `json:"entity_kind" db:"entity_kind"`
	EntityID   string `json:"entity_id,omitempty" db:"entity_id"`
	ActorID    string `json:"actor_id" db:"actor_id"`
	Payload    string `json:"payload" db:"payload_json"`
}
