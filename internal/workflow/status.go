// Package workflow holds the derived views over programs: status taxonomy,
// station progress, team workload and list filtering. Everything here is pure.
package workflow

import (
	"math"

	"projector/internal/domain"
)

type StatusInfo struct {
	Key    domain.Status `json:"key"`
	Label  string        `json:"label"`
	Color  string        `json:"color,omitempty"`
	Weight int           `json:"weight"`
	Known  bool          `json:"known"`
}

var taxonomy = map[domain.Status]StatusInfo{
	domain.StatusOpen:       {Key: domain.StatusOpen, Label: "New", Color: "orange", Weight: 1, Known: true},
	domain.StatusPlan:       {Key: domain.StatusPlan, Label: "Planning", Color: "blue", Weight: 2, Known: true},
	domain.StatusInProgress: {Key: domain.StatusInProgress, Label: "In progress", Color: "yellow", Weight: 3, Known: true},
	domain.StatusComplete:   {Key: domain.StatusComplete, Label: "Ready", Color: "green", Weight: 4, Known: true},
	domain.StatusDone:       {Key: domain.StatusDone, Label: "Done", Color: "emerald", Weight: 5, Known: true},
	domain.StatusFreeze:     {Key: domain.StatusFreeze, Label: "Frozen", Color: "gray", Weight: 6, Known: true},
	domain.StatusCancel:     {Key: domain.StatusCancel, Label: "Canceled", Color: "red", Weight: 7, Known: true},
}

// UnknownWeight sorts unrecognised statuses after every known one.
const UnknownWeight = 100

// Describe never fails: unknown keys get their raw value as label and no color.
func Describe(s domain.Status) StatusInfo {
	if info, ok := taxonomy[s]; ok {
		return info
	}
	return StatusInfo{Key: s, Label: string(s), Weight: UnknownWeight}
}

// Taxonomy returns the status table in canonical order.
func Taxonomy() []StatusInfo {
	out := make([]StatusInfo, 0, len(domain.Statuses))
	for _, s := range domain.Statuses {
		out = append(out, taxonomy[s])
	}
	return out
}

type StatusCount struct {
	StatusInfo
	Count   int `json:"count"`
	Percent int `json:"percent"`
}

// StatusCounts tallies programs per known status, in canonical order.
// Percent is the rounded share of all programs, unknown statuses included.
func StatusCounts(programs []domain.Program) []StatusCount {
	tally := make(map[domain.Status]int, len(domain.Statuses))
	for _, p := range programs {
		tally[p.Status]++
	}
	total := len(programs)
	out := make([]StatusCount, 0, len(domain.Statuses))
	for _, s := range domain.Statuses {
		n := tally[s]
		pct := 0
		if total > 0 {
			pct = int(math.Round(float64(n) / float64(total) * 100))
		}
		out = append(out, StatusCount{StatusInfo: taxonomy[s], Count: n, Percent: pct})
	}
	return out
}
