package workflow

import (
	"fmt"
	"math"
	"time"

	"projector/internal/domain"
)

type StationState string

const (
	StationCompleted  StationState = "completed"
	StationInProgress StationState = "in_progress"
	StationPending    StationState = "pending"
)

// DefaultStationInterval spaces estimated station due dates.
const DefaultStationInterval = 7 * 24 * time.Hour

// Station is a display projection of one workflow step. It is never persisted,
// and DueDate is an estimate, not scheduling data.
type Station struct {
	Number       int          `json:"station_number"`
	ActivityName string       `json:"activity_name"`
	State        StationState `json:"status"`
	DueDate      time.Time    `json:"due_date"`
}

// Percentage is round(current/total*100) clamped to [0,100]; 0 when total <= 0.
func Percentage(current, total int) int {
	if total <= 0 {
		return 0
	}
	pct := math.Round(float64(current) / float64(total) * 100)
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	}
	return int(pct)
}

// StateOf reports station i's state given the program's current station.
func StateOf(station, current int) StationState {
	switch {
	case station < current:
		return StationCompleted
	case station == current:
		return StationInProgress
	default:
		return StationPending
	}
}

// ActivityNamer names the activity performed at a 1-based station.
type ActivityNamer interface {
	ActivityName(station int) string
}

// StationNames is a fixed list of activity names indexed from station 1.
type StationNames []string

func (n StationNames) ActivityName(station int) string {
	if station >= 1 && station <= len(n) && n[station-1] != "" {
		return n[station-1]
	}
	return fmt.Sprintf("Station %d activity", station)
}

// TemplateNames prefers an engagement template and falls back to a base namer.
type TemplateNames struct {
	Template domain.ActivityTemplate
	Fallback ActivityNamer
}

func (t TemplateNames) ActivityName(station int) string {
	if name, ok := t.Template.NameFor(station); ok {
		return name
	}
	if t.Fallback != nil {
		return t.Fallback.ActivityName(station)
	}
	return StationNames(nil).ActivityName(station)
}

type ProjectionOptions struct {
	Now      time.Time
	Interval time.Duration
	Names    ActivityNamer
}

// Stations projects one descriptor per station 1..total. With a target date
// due dates are spaced backward from it so the last station lands on the target;
// without one they step forward from now.
func Stations(p domain.Program, opts ProjectionOptions) []Station {
	total := p.TotalStations
	if total <= 0 {
		return []Station{}
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultStationInterval
	}
	names := opts.Names
	if names == nil {
		names = StationNames(nil)
	}
	var target *time.Time
	if p.TargetDate != nil {
		if t, err := time.Parse(domain.DateLayout, *p.TargetDate); err == nil {
			target = &t
		}
	}
	out := make([]Station, 0, total)
	for i := 1; i <= total; i++ {
		var due time.Time
		if target != nil {
			due = target.Add(-time.Duration(total-i) * interval)
		} else {
			due = opts.Now.Add(time.Duration(i) * interval)
		}
		out = append(out, Station{
			Number:       i,
			ActivityName: names.ActivityName(i),
			State:        StateOf(i, p.CurrentStation),
			DueDate:      due.UTC(),
		})
	}
	return out
}

// ClampStation forces current into [1,total]. It reports whether a change was made.
func ClampStation(current, total int) (int, bool) {
	if total < 1 {
		return current, false
	}
	switch {
	case current < 1:
		return 1, true
	case current > total:
		return total, true
	}
	return current, false
}
