package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// StringList is stored as a JSON array column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src any) error {
	data, err := columnBytes(src)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		*l = StringList{}
		return nil
	}
	var out []string
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("scan string list: %w", err)
	}
	*l = out
	return nil
}

// SplitList parses comma separated input, trimming entries and dropping empties.
func SplitList(raw string) StringList {
	out := StringList{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ActivityTemplate is the per-station activity plan of an engagement type.
type ActivityTemplate []StationActivity

func (t ActivityTemplate) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]StationActivity(t))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (t *ActivityTemplate) Scan(src any) error {
	data, err := columnBytes(src)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		*t = ActivityTemplate{}
		return nil
	}
	var out []StationActivity
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("scan activity template: %w", err)
	}
	*t = out
	return nil
}

// ParseActivityTemplate decodes a JSON array of station activities.
func ParseActivityTemplate(raw string) (ActivityTemplate, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ActivityTemplate{}, nil
	}
	var probe any
	if err := json.Unmarshal([]byte(raw), &probe); err != nil {
		return nil, NewValidationError("default_activities", "must be valid JSON")
	}
	if _, ok := probe.([]any); !ok {
		return nil, NewValidationError("default_activities", "must be a JSON array")
	}
	var out ActivityTemplate
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, NewValidationError("default_activities", "entries must be {station, activity_name, estimated_days}")
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// Validate checks station numbers and names, then orders entries by station.
func (t ActivityTemplate) Validate() error {
	seen := make(map[int]struct{}, len(t))
	for _, a := range t {
		if a.Station < 1 {
			return NewValidationError("default_activities", "station must be positive")
		}
		if _, dup := seen[a.Station]; dup {
			return NewValidationError("default_activities", fmt.Sprintf("station %d listed twice", a.Station))
		}
		seen[a.Station] = struct{}{}
		if strings.TrimSpace(a.ActivityName) == "" {
			return NewValidationError("default_activities", fmt.Sprintf("station %d needs an activity_name", a.Station))
		}
		if a.EstimatedDays < 0 {
			return NewValidationError("default_activities", "estimated_days must not be negative")
		}
	}
	sort.SliceStable(t, func(i, j int) bool { return t[i].Station < t[j].Station })
	return nil
}

// NameFor returns the activity planned for a station.
func (t ActivityTemplate) NameFor(station int) (string, bool) {
	for _, a := range t {
		if a.Station == station {
			return a.ActivityName, true
		}
	}
	return "", false
}

func columnBytes(src any) ([]byte, error) {
	switch v := src.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported column type %T", src)
	}
}
