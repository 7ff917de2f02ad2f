package repo

import (
	"context"
	"strings"

	"projector/internal/domain"
)

const eventColumns = `id,ts,type,entity_kind,entity_id,actor_id,payload_json`

// LatestEvents returns the newest events for an entity, newest first.
// An empty entityID matches every entity of the kind; an empty kind matches all.
func (r Repo) LatestEvents(ctx context.Context, entityKind, entityID string, limit int) ([]domain.Event, error) {
	if limit <= 0 {
		limit = 50
	}
	clauses := []string{"1=1"}
	var args []any
	if entityKind != "" {
		clauses = append(clauses, "entity_kind=?")
		args = append(args, entityKind)
	}
	if entityID != "" {
		clauses = append(clauses, "entity_id=?")
		args = append(args, entityID)
	}
	args = append(args, limit)
	res := []domain.Event{}
	err := selectAll(ctx, r.DB, &res, `SELECT `+eventColumns+` FROM events WHERE `+strings.Join(clauses, " AND ")+` ORDER BY id DESC LIMIT ?`, args...)
	return res, err
}

// EventsAfter returns events with IDs greater than the cursor in ascending order.
func (r Repo) EventsAfter(ctx context.Context, limit int, cursor int64) ([]domain.Event, error) {
	if limit <= 0 {
		limit = 100
	}
	res := []domain.Event{}
	err := selectAll(ctx, r.DB, &res, `SELECT `+eventColumns+` FROM events WHERE id>? ORDER BY id ASC LIMIT ?`, cursor, limit)
	return res, err
}

func (r Repo) LatestEventID(ctx context.Context) (int64, error) {
	var id int64
	err := get(ctx, r.DB, &id, `SELECT COALESCE(MAX(id),0) FROM events`)
	return id, err
}
