package domain

import (
	"fmt"
	"strings"
)

type Status string

const (
	StatusOpen       Status = "open"
	StatusPlan       Status = "plan"
	StatusInProgress Status = "in_progress"
	StatusComplete   Status = "complete"
	StatusDone       Status = "done"
	StatusFreeze     Status = "freeze"
	StatusCancel     Status = "cancel"
)

// Statuses lists every assignable program status in canonical order.
var Statuses = []Status{
	StatusOpen,
	StatusPlan,
	StatusInProgress,
	StatusComplete,
	StatusDone,
	StatusFreeze,
	StatusCancel,
}

func (s Status) Valid() bool { return contains(Statuses, s) }

// Active reports whether a program in this status counts toward workload.
func (s Status) Active() bool {
	return s == StatusOpen || s == StatusPlan || s == StatusInProgress
}

func ParseStatus(v string) (Status, error) {
	s := Status(strings.TrimSpace(v))
	if !s.Valid() {
		return "", NewValidationError("status", fmt.Sprintf("must be one of %s", join(Statuses)))
	}
	return s, nil
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

func (p Priority) Valid() bool { return contains(Priorities, p) }

func ParsePriority(v string) (Priority, error) {
	p := Priority(strings.TrimSpace(v))
	if !p.Valid() {
		return "", NewValidationError("priority", fmt.Sprintf("must be one of %s", join(Priorities)))
	}
	return p, nil
}

type Role string

const (
	RoleProcurementManager Role = "procurement_manager"
	RoleTeamLeader         Role = "team_leader"
	RoleProcurementOfficer Role = "procurement_officer"
	RoleJuniorOfficer      Role = "junior_officer"
)

var Roles = []Role{RoleProcurementManager, RoleTeamLeader, RoleProcurementOfficer, RoleJuniorOfficer}

var roleLabels = map[Role]string{
	RoleProcurementManager: "Procurement manager",
	RoleTeamLeader:         "Team leader",
	RoleProcurementOfficer: "Procurement officer",
	RoleJuniorOfficer:      "Junior officer",
}

func (r Role) Valid() bool { return contains(Roles, r) }

// Label returns the display label, or the raw value for unknown roles.
func (r Role) Label() string {
	if l, ok := roleLabels[r]; ok {
		return l
	}
	return string(r)
}

func ParseRole(v string) (Role, error) {
	r := Role(strings.TrimSpace(v))
	if !r.Valid() {
		return "", NewValidationError("role", fmt.Sprintf("must be one of %s", join(Roles)))
	}
	return r, nil
}

type ActivityCategory string

var ActivityCategories = []ActivityCategory{
	"planning",
	"market_research",
	"tender_preparation",
	"evaluation",
	"negotiation",
	"contracting",
	"approval",
	"execution",
}

func (c ActivityCategory) Valid() bool { return contains(ActivityCategories, c) }

func ParseActivityCategory(v string) (ActivityCategory, error) {
	c := ActivityCategory(strings.TrimSpace(v))
	if !c.Valid() {
		return "", NewValidationError("category", fmt.Sprintf("must be one of %s", join(ActivityCategories)))
	}
	return c, nil
}

type ComplexityLevel string

var ComplexityLevels = []ComplexityLevel{"simple", "medium", "complex"}

func (c ComplexityLevel) Valid() bool { return contains(ComplexityLevels, c) }

func ParseComplexityLevel(v string) (ComplexityLevel, error) {
	c := ComplexityLevel(strings.TrimSpace(v))
	if !c.Valid() {
		return "", NewValidationError("complexity_level", fmt.Sprintf("must be one of %s", join(ComplexityLevels)))
	}
	return c, nil
}

// EngagementKinds are the built-in engagement types offered on new requirements.
// Engagement type records add to this set by type_name.
var EngagementKinds = []string{
	"standard_purchase",
	"complex_tender",
	"framework_agreement",
	"urgent_purchase",
	"strategic_procurement",
}

const DefaultEngagementKind = "standard_purchase"

func IsEngagementKind(v string) bool { return contains(EngagementKinds, v) }

type ReferenceKind string

const (
	ReferenceDepartment      ReferenceKind = "departments"
	ReferenceDivision        ReferenceKind = "divisions"
	ReferenceDomain          ReferenceKind = "domains"
	ReferenceProcurementTeam ReferenceKind = "procurement-teams"
)

var ReferenceKinds = []ReferenceKind{ReferenceDepartment, ReferenceDivision, ReferenceDomain, ReferenceProcurementTeam}

func (k ReferenceKind) Valid() bool { return contains(ReferenceKinds, k) }

// Singular is used in event types and error messages.
func (k ReferenceKind) Singular() string {
	switch k {
	case ReferenceDepartment:
		return "department"
	case ReferenceDivision:
		return "division"
	case ReferenceDomain:
		return "domain"
	case ReferenceProcurementTeam:
		return "procurement_team"
	}
	return string(k)
}

func ParseReferenceKind(v string) (ReferenceKind, error) {
	k := ReferenceKind(strings.ToLower(strings.TrimSpace(v)))
	if !k.Valid() {
		return "", NewValidationError("kind", fmt.Sprintf("must be one of %s", join(ReferenceKinds)))
	}
	return k, nil
}

func contains[T comparable](set []T, v T) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func join[T ~string](set []T) string {
	parts := make([]string, len(set))
	for i, s := range set {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}
