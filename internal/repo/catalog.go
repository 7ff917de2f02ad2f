package repo

import (
	"context"

	"github.com/jmoiron/sqlx"

	"projector/internal/domain"
)

const engagementColumns = `id,type_name,type_description,estimated_duration,typical_budget_range,approval_levels,default_activities,is_active,created_date,updated_date`

var engagementSortable = map[string]struct{}{
	"created_date": {},
	"type_name":    {},
}

func (r Repo) InsertEngagementType(ctx context.Context, tx *sqlx.Tx, et domain.EngagementType) error {
	_, err := sqlx.NamedExecContext(ctx, r.ext(tx), `INSERT INTO engagement_types(`+engagementColumns+`) VALUES (
:id,:type_name,:type_description,:estimated_duration,:typical_budget_range,:approval_levels,:default_activities,:is_active,:created_date,:updated_date)`, et)
	return err
}

func (r Repo) UpdateEngagementType(ctx context.Context, tx *sqlx.Tx, et domain.EngagementType) error {
	return namedAffecting(ctx, r.ext(tx), `UPDATE engagement_types SET
type_name=:type_name,type_description=:type_description,estimated_duration=:estimated_duration,
typical_budget_range=:typical_budget_range,approval_levels=:approval_levels,
default_activities=:default_activities,is_active=:is_active,updated_date=:updated_date
WHERE id=:id`, et)
}

func (r Repo) DeleteEngagementType(ctx context.Context, tx *sqlx.Tx, id string) error {
	return execAffecting(ctx, r.ext(tx), `DELETE FROM engagement_types WHERE id=?`, id)
}

func (r Repo) GetEngagementType(ctx context.Context, id string) (domain.EngagementType, error) {
	var et domain.EngagementType
	err := get(ctx, r.DB, &et, `SELECT `+engagementColumns+` FROM engagement_types WHERE id=?`, id)
	return et, err
}

func (r Repo) GetEngagementTypeByName(ctx context.Context, typeName string) (domain.EngagementType, error) {
	var et domain.EngagementType
	err := get(ctx, r.DB, &et, `SELECT `+engagementColumns+` FROM engagement_types WHERE type_name=?`, typeName)
	return et, err
}

func (r Repo) ListEngagementTypes(ctx context.Context, sort string) ([]domain.EngagementType, error) {
	order, err := OrderBy(sort, engagementSortable, "type_name ASC, id ASC")
	if err != nil {
		return nil, err
	}
	items := []domain.EngagementType{}
	if err := selectAll(ctx, r.DB, &items, `SELECT `+engagementColumns+` FROM engagement_types ORDER BY `+order); err != nil {
		return nil, err
	}
	return items, nil
}

const activityColumns = `id,activity_name,activity_description,category,complexity_level,estimated_duration,is_mandatory,required_skills,default_assignee_role,created_date,updated_date`

var activitySortable = map[string]struct{}{
	"created_date":  {},
	"activity_name": {},
	"category":      {},
}

func (r Repo) InsertActivity(ctx context.Context, tx *sqlx.Tx, a domain.ActivityPool) error {
	_, err := sqlx.NamedExecContext(ctx, r.ext(tx), `INSERT INTO activity_pool(`+activityColumns+`) VALUES (
:id,:activity_name,:activity_description,:category,:complexity_level,:estimated_duration,:is_mandatory,:required_skills,:default_assignee_role,:created_date,:updated_date)`, a)
	return err
}

func (r Repo) UpdateActivity(ctx context.Context, tx *sqlx.Tx, a domain.ActivityPool) error {
	return namedAffecting(ctx, r.ext(tx), `UPDATE activity_pool SET
activity_name=:activity_name,activity_description=:activity_description,category=:category,
complexity_level=:complexity_level,estimated_duration=:estimated_duration,is_mandatory=:is_mandatory,
required_skills=:required_skills,default_assignee_role=:default_assignee_role,updated_date=:updated_date
WHERE id=:id`, a)
}

func (r Repo) DeleteActivity(ctx context.Context, tx *sqlx.Tx, id string) error {
	return execAffecting(ctx, r.ext(tx), `DELETE FROM activity_pool WHERE id=?`, id)
}

func (r Repo) GetActivity(ctx context.Context, id string) (domain.ActivityPool, error) {
	var a domain.ActivityPool
	err := get(ctx, r.DB, &a, `SELECT `+activityColumns+` FROM activity_pool WHERE id=?`, id)
	return a, err
}

func (r Repo) ListActivities(ctx context.Context, sort string) ([]domain.ActivityPool, error) {
	order, err := OrderBy(sort, activitySortable, "activity_name ASC, id ASC")
	if err != nil {
		return nil, err
	}
	items := []domain.ActivityPool{}
	if err := selectAll(ctx, r.DB, &items, `SELECT `+activityColumns+` FROM activity_pool ORDER BY `+order); err != nil {
		return nil, err
	}
	return items, nil
}
