package workflow

import (
	"math"
	"sort"

	"projector/internal/domain"
)

const (
	// FullLoad is the number of active programs that counts as 100% workload.
	FullLoad = 5
	// WorkloadTop caps the number of employees shown on the dashboard.
	WorkloadTop = 8
)

type Load struct {
	Employee    domain.Employee `json:"employee"`
	RoleLabel   string          `json:"role_label"`
	ActiveTasks int             `json:"active_tasks"`
	Percentage  int             `json:"workload_percentage"`
	Level       string          `json:"level"`
}

type WorkloadOptions struct {
	FullLoad int
	Limit    int
}

// Workload counts active-status programs per active employee, joined by the
// program's assigned employee id. Programs without an id fall back to the
// display name, only when that name belongs to exactly one employee.
// Output is ordered by count descending, stable for ties, and capped at Limit
// (no cap when Limit < 0).
func Workload(employees []domain.Employee, programs []domain.Program, opts WorkloadOptions) []Load {
	fullLoad := opts.FullLoad
	if fullLoad <= 0 {
		fullLoad = FullLoad
	}
	limit := opts.Limit
	if limit == 0 {
		limit = WorkloadTop
	}

	byID := make(map[string]int, len(employees))
	nameCount := make(map[string]int, len(employees))
	byName := make(map[string]int, len(employees))
	for i, emp := range employees {
		byID[emp.ID] = i
		nameCount[emp.FullName]++
		byName[emp.FullName] = i
	}
	counts := make([]int, len(employees))
	for _, p := range programs {
		if !p.Status.Active() {
			continue
		}
		if p.AssignedEmployeeID != "" {
			if i, ok := byID[p.AssignedEmployeeID]; ok {
				counts[i]++
			}
			continue
		}
		if p.AssignedEmployee != "" && nameCount[p.AssignedEmployee] == 1 {
			counts[byName[p.AssignedEmployee]]++
		}
	}

	out := make([]Load, 0, len(employees))
	for i, emp := range employees {
		if !emp.IsActive {
			continue
		}
		pct := LoadPercentage(counts[i], fullLoad)
		out = append(out, Load{
			Employee:    emp,
			RoleLabel:   emp.Role.Label(),
			ActiveTasks: counts[i],
			Percentage:  pct,
			Level:       LoadLevel(pct),
		})
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].ActiveTasks > out[b].ActiveTasks })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// LoadPercentage is min(100, active/fullLoad*100), rounded.
func LoadPercentage(active, fullLoad int) int {
	if fullLoad <= 0 {
		fullLoad = FullLoad
	}
	pct := math.Round(float64(active) / float64(fullLoad) * 100)
	if pct > 100 {
		return 100
	}
	return int(pct)
}

func LoadLevel(pct int) string {
	switch {
	case pct >= 80:
		return "red"
	case pct >= 60:
		return "orange"
	case pct >= 40:
		return "yellow"
	default:
		return "green"
	}
}
