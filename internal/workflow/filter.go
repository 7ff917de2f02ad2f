package workflow

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"projector/internal/domain"
)

// StatusAll disables the status filter.
const StatusAll = "all"

type Filter struct {
	Query  string
	Status string
}

// Apply returns the programs matching f in input order. The input slice is not touched.
func (f Filter) Apply(programs []domain.Program) []domain.Program {
	fold := cases.Fold()
	query := fold.String(f.Query)
	status := strings.TrimSpace(f.Status)
	out := make([]domain.Program, 0, len(programs))
	for _, p := range programs {
		if status != "" && status != StatusAll && string(p.Status) != status {
			continue
		}
		if query != "" && !matchesText(fold, p, query) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matchesText(fold cases.Caser, p domain.Program, query string) bool {
	for _, field := range []string{p.Title, p.Description, p.AssignedEmployee, p.RequesterName} {
		if field != "" && strings.Contains(fold.String(field), query) {
			return true
		}
	}
	return false
}

// Recent returns up to n programs, newest created first, as a new slice.
func Recent(programs []domain.Program, n int) []domain.Program {
	out := make([]domain.Program, len(programs))
	copy(out, programs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedDate > out[j].CreatedDate })
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
