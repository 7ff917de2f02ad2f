package repo

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"projector/internal/domain"
)

var referenceTables = map[domain.ReferenceKind]string{
	domain.ReferenceDepartment:      "departments",
	domain.ReferenceDivision:        "divisions",
	domain.ReferenceDomain:          "domains",
	domain.ReferenceProcurementTeam: "procurement_teams",
}

var referenceSortable = map[string]struct{}{
	"created_date": {},
	"name":         {},
}

func referenceTable(kind domain.ReferenceKind) (string, error) {
	table, ok := referenceTables[kind]
	if !ok {
		return "", fmt.Errorf("unknown reference kind %q", kind)
	}
	return table, nil
}

func (r Repo) InsertReference(ctx context.Context, tx *sqlx.Tx, ref domain.Reference) error {
	table, err := referenceTable(ref.Kind)
	if err != nil {
		return err
	}
	_, err = sqlx.NamedExecContext(ctx, r.ext(tx), `INSERT INTO `+table+`(id,name,description,created_date,updated_date)
VALUES (:id,:name,:description,:created_date,:updated_date)`, ref)
	return err
}

func (r Repo) UpdateReference(ctx context.Context, tx *sqlx.Tx, ref domain.Reference) error {
	table, err := referenceTable(ref.Kind)
	if err != nil {
		return err
	}
	return namedAffecting(ctx, r.ext(tx), `UPDATE `+table+` SET name=:name,description=:description,updated_date=:updated_date WHERE id=:id`, ref)
}

func (r Repo) DeleteReference(ctx context.Context, tx *sqlx.Tx, kind domain.ReferenceKind, id string) error {
	table, err := referenceTable(kind)
	if err != nil {
		return err
	}
	return execAffecting(ctx, r.ext(tx), `DELETE FROM `+table+` WHERE id=?`, id)
}

func (r Repo) GetReference(ctx context.Context, kind domain.ReferenceKind, id string) (domain.Reference, error) {
	table, err := referenceTable(kind)
	if err != nil {
		return domain.Reference{}, err
	}
	var ref domain.Reference
	if err := get(ctx, r.DB, &ref, `SELECT id,name,description,created_date,updated_date FROM `+table+` WHERE id=?`, id); err != nil {
		return domain.Reference{}, err
	}
	ref.Kind = kind
	return ref, nil
}

func (r Repo) ListReferences(ctx context.Context, kind domain.ReferenceKind, sort string) ([]domain.Reference, error) {
	table, err := referenceTable(kind)
	if err != nil {
		return nil, err
	}
	order, err := OrderBy(sort, referenceSortable, "name ASC, id ASC")
	if err != nil {
		return nil, err
	}
	items := []domain.Reference{}
	if err := selectAll(ctx, r.DB, &items, `SELECT id,name,description,created_date,updated_date FROM `+table+` ORDER BY `+order); err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Kind = kind
	}
	return items, nil
}
