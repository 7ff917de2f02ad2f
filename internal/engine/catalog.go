package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"projector/internal/domain"
	"projector/internal/events"
	"projector/internal/repo"
)

const (
	entityEngagementType = "engagement_type"
	entityActivity       = "activity"
)

type ReferenceOptions struct {
	Kind        domain.ReferenceKind
	Name        *string
	Description *string
	ActorID     string
}

func (e Engine) CreateReference(ctx context.Context, opts ReferenceOptions) (domain.Reference, error) {
	if !opts.Kind.Valid() {
		_, err := domain.ParseReferenceKind(string(opts.Kind))
		return domain.Reference{}, err
	}
	ref := domain.Reference{ID: uuid.NewString(), Kind: opts.Kind}
	if opts.Name != nil {
		ref.Name = strings.TrimSpace(*opts.Name)
	}
	if ref.Name == "" {
		return domain.Reference{}, domain.NewValidationError("name", "is required")
	}
	if opts.Description != nil {
		ref.Description = *opts.Description
	}
	ref.CreatedDate = e.stamp()
	ref.UpdatedDate = ref.CreatedDate
	entity := opts.Kind.Singular()
	err := e.inTx(ctx, entity, ref.ID, func(ctx context.Context, w txWriter) error {
		if err := e.Repo.InsertReference(ctx, w.tx, ref); err != nil {
			return storeErr("insert "+entity, entity, ref.ID, err)
		}
		return w.append(entity+".created", opts.ActorID, events.EventPayload{"name": ref.Name})
	})
	if err != nil {
		return domain.Reference{}, err
	}
	return ref, nil
}

func (e Engine) UpdateReference(ctx context.Context, id string, opts ReferenceOptions) (domain.Reference, error) {
	if !opts.Kind.Valid() {
		_, err := domain.ParseReferenceKind(string(opts.Kind))
		return domain.Reference{}, err
	}
	entity := opts.Kind.Singular()
	release, err := e.beginSave(entity, id)
	if err != nil {
		return domain.Reference{}, err
	}
	defer release()

	var ref domain.Reference
	err = e.inTx(ctx, entity, id, func(ctx context.Context, w txWriter) error {
		original, err := e.Repo.GetReference(ctx, opts.Kind, id)
		if err != nil {
			return storeErr("get "+entity, entity, id, err)
		}
		ref = original
		if opts.Name != nil {
			ref.Name = strings.TrimSpace(*opts.Name)
			if ref.Name == "" {
				return domain.NewValidationError("name", "is required")
			}
		}
		if opts.Description != nil {
			ref.Description = *opts.Description
		}
		ref.UpdatedDate = e.stamp()
		if err := e.Repo.UpdateReference(ctx, w.tx, ref); err != nil {
			return storeErr("update "+entity, entity, id, err)
		}
		return w.append(entity+".updated", opts.ActorID, events.Changes(
			map[string]any{"name": original.Name, "description": original.Description},
			map[string]any{"name": ref.Name, "description": ref.Description},
		))
	})
	return ref, err
}

func (e Engine) DeleteReference(ctx context.Context, kind domain.ReferenceKind, id, actorID string) error {
	if !kind.Valid() {
		_, err := domain.ParseReferenceKind(string(kind))
		return err
	}
	entity := kind.Singular()
	release, err := e.beginSave(entity, id)
	if err != nil {
		return err
	}
	defer release()
	return e.inTx(ctx, entity, id, func(ctx context.Context, w txWriter) error {
		if err := e.Repo.DeleteReference(ctx, w.tx, kind, id); err != nil {
			return storeErr("delete "+entity, entity, id, err)
		}
		return w.append(entity+".deleted", actorID, nil)
	})
}

func (e Engine) ListReferences(ctx context.Context, kind domain.ReferenceKind, sort string) ([]domain.Reference, error) {
	if !kind.Valid() {
		_, err := domain.ParseReferenceKind(string(kind))
		return nil, err
	}
	var items []domain.Reference
	err := e.readWithRetry(ctx, "list "+string(kind), func(ctx context.Context) error {
		var err error
		items, err = e.Repo.ListReferences(ctx, kind, sort)
		return storeErr("list "+string(kind), kind.Singular(), "", err)
	})
	return items, err
}

// EngagementTypeOptions carry form input. ApprovalLevels is comma separated and
// DefaultActivities is a JSON array of {station, activity_name, estimated_days}.
type EngagementTypeOptions struct {
	TypeName           *string
	TypeDescription    *string
	EstimatedDuration  *int
	TypicalBudgetRange *string
	ApprovalLevels     *string
	DefaultActivities  *string
	Active             *bool
	ActorID            string
}

func (e Engine) applyEngagementType(et *domain.EngagementType, opts EngagementTypeOptions) error {
	if opts.TypeName != nil {
		et.TypeName = strings.TrimSpace(*opts.TypeName)
	}
	if et.TypeName == "" {
		return domain.NewValidationError("type_name", "is required")
	}
	if opts.TypeDescription != nil {
		et.TypeDescription = *opts.TypeDescription
	}
	if opts.EstimatedDuration != nil {
		if *opts.EstimatedDuration < 0 {
			return domain.NewValidationError("estimated_duration", "must not be negative")
		}
		et.EstimatedDuration = *opts.EstimatedDuration
	}
	if opts.TypicalBudgetRange != nil {
		et.TypicalBudgetRange = *opts.TypicalBudgetRange
	}
	if opts.ApprovalLevels != nil {
		et.ApprovalLevels = domain.SplitList(*opts.ApprovalLevels)
	}
	if opts.DefaultActivities != nil {
		tmpl, err := domain.ParseActivityTemplate(*opts.DefaultActivities)
		if err != nil {
			return err
		}
		et.DefaultActivities = tmpl
	}
	if opts.Active != nil {
		et.IsActive = *opts.Active
	}
	return nil
}

func (e Engine) ensureTypeNameFree(ctx context.Context, name, selfID string) error {
	existing, err := e.Repo.GetEngagementTypeByName(ctx, name)
	if errors.Is(err, repo.ErrNotFound) {
		return nil
	}
	if err != nil {
		return storeErr("get engagement type", entityEngagementType, name, err)
	}
	if existing.ID != selfID {
		return domain.NewValidationError("type_name", fmt.Sprintf("%s already exists", name))
	}
	return nil
}

func (e Engine) CreateEngagementType(ctx context.Context, opts EngagementTypeOptions) (domain.EngagementType, error) {
	et := domain.EngagementType{
		ID:                uuid.NewString(),
		ApprovalLevels:    domain.StringList{},
		DefaultActivities: domain.ActivityTemplate{},
		IsActive:          true,
	}
	if err := e.applyEngagementType(&et, opts); err != nil {
		return domain.EngagementType{}, err
	}
	et.CreatedDate = e.stamp()
	et.UpdatedDate = et.CreatedDate
	err := e.inTx(ctx, entityEngagementType, et.ID, func(ctx context.Context, w txWriter) error {
		if err := e.ensureTypeNameFree(ctx, et.TypeName, ""); err != nil {
			return err
		}
		if err := e.Repo.InsertEngagementType(ctx, w.tx, et); err != nil {
			return storeErr("insert engagement type", entityEngagementType, et.ID, err)
		}
		return w.append("engagement_type.created", opts.ActorID, events.EventPayload{
			"type_name": et.TypeName,
			"stations":  len(et.DefaultActivities),
		})
	})
	if err != nil {
		return domain.EngagementType{}, err
	}
	return et, nil
}

func (e Engine) UpdateEngagementType(ctx context.Context, id string, opts EngagementTypeOptions) (domain.EngagementType, error) {
	release, err := e.beginSave(entityEngagementType, id)
	if err != nil {
		return domain.EngagementType{}, err
	}
	defer release()

	var et domain.EngagementType
	err = e.inTx(ctx, entityEngagementType, id, func(ctx context.Context, w txWriter) error {
		original, err := e.Repo.GetEngagementType(ctx, id)
		if err != nil {
			return storeErr("get engagement type", entityEngagementType, id, err)
		}
		et = original
		if err := e.applyEngagementType(&et, opts); err != nil {
			return err
		}
		if et.TypeName != original.TypeName {
			if err := e.ensureTypeNameFree(ctx, et.TypeName, et.ID); err != nil {
				return err
			}
		}
		et.UpdatedDate = e.stamp()
		if err := e.Repo.UpdateEngagementType(ctx, w.tx, et); err != nil {
			return storeErr("update engagement type", entityEngagementType, id, err)
		}
		return w.append("engagement_type.updated", opts.ActorID, events.Changes(
			engagementSnapshot(original), engagementSnapshot(et)))
	})
	return et, err
}

func engagementSnapshot(et domain.EngagementType) map[string]any {
	return map[string]any{
		"type_name":            et.TypeName,
		"type_description":     et.TypeDescription,
		"estimated_duration":   et.EstimatedDuration,
		"typical_budget_range": et.TypicalBudgetRange,
		"approval_levels":      strings.Join(et.ApprovalLevels, ","),
		"stations":             len(et.DefaultActivities),
		"is_active":            et.IsActive,
	}
}

func (e Engine) DeleteEngagementType(ctx context.Context, id, actorID string) error {
	release, err := e.beginSave(entityEngagementType, id)
	if err != nil {
		return err
	}
	defer release()
	return e.inTx(ctx, entityEngagementType, id, func(ctx context.Context, w txWriter) error {
		if err := e.Repo.DeleteEngagementType(ctx, w.tx, id); err != nil {
			return storeErr("delete engagement type", entityEngagementType, id, err)
		}
		return w.append("engagement_type.deleted", actorID, nil)
	})
}

func (e Engine) ListEngagementTypes(ctx context.Context, sort string) ([]domain.EngagementType, error) {
	var items []domain.EngagementType
	err := e.readWithRetry(ctx, "list engagement types", func(ctx context.Context) error {
		var err error
		items, err = e.Repo.ListEngagementTypes(ctx, sort)
		return storeErr("list engagement types", entityEngagementType, "", err)
	})
	return items, err
}

// ActivityOptions carry form input. RequiredSkills is comma separated.
type ActivityOptions struct {
	ActivityName        *string
	ActivityDescription *string
	Category            *string
	ComplexityLevel     *string
	EstimatedDuration   *int
	IsMandatory         *bool
	RequiredSkills      *string
	DefaultAssigneeRole *string
	ActorID             string
}

func applyActivity(a *domain.ActivityPool, opts ActivityOptions) error {
	var err error
	if opts.ActivityName != nil {
		a.ActivityName = strings.TrimSpace(*opts.ActivityName)
	}
	if a.ActivityName == "" {
		return domain.NewValidationError("activity_name", "is required")
	}
	if opts.ActivityDescription != nil {
		a.ActivityDescription = *opts.ActivityDescription
	}
	if opts.Category != nil {
		if a.Category, err = domain.ParseActivityCategory(*opts.Category); err != nil {
			return err
		}
	}
	if !a.Category.Valid() {
		return domain.NewValidationError("category", "is required")
	}
	if opts.ComplexityLevel != nil {
		if a.ComplexityLevel, err = domain.ParseComplexityLevel(*opts.ComplexityLevel); err != nil {
			return err
		}
	}
	if a.ComplexityLevel == "" {
		a.ComplexityLevel = "medium"
	}
	if opts.EstimatedDuration != nil {
		if *opts.EstimatedDuration < 0 {
			return domain.NewValidationError("estimated_duration", "must not be negative")
		}
		a.EstimatedDuration = *opts.EstimatedDuration
	}
	if opts.IsMandatory != nil {
		a.IsMandatory = *opts.IsMandatory
	}
	if opts.RequiredSkills != nil {
		a.RequiredSkills = domain.SplitList(*opts.RequiredSkills)
	}
	if opts.DefaultAssigneeRole != nil {
		role := strings.TrimSpace(*opts.DefaultAssigneeRole)
		if role == "" {
			a.DefaultAssigneeRole = ""
		} else if a.DefaultAssigneeRole, err = domain.ParseRole(role); err != nil {
			return domain.NewValidationError("default_assignee_role", "must be a known role")
		}
	}
	return nil
}

func (e Engine) CreateActivity(ctx context.Context, opts ActivityOptions) (domain.ActivityPool, error) {
	a := domain.ActivityPool{ID: uuid.NewString(), IsMandatory: true, RequiredSkills: domain.StringList{}}
	if err := applyActivity(&a, opts); err != nil {
		return domain.ActivityPool{}, err
	}
	a.CreatedDate = e.stamp()
	a.UpdatedDate = a.CreatedDate
	err := e.inTx(ctx, entityActivity, a.ID, func(ctx context.Context, w txWriter) error {
		if err := e.Repo.InsertActivity(ctx, w.tx, a); err != nil {
			return storeErr("insert activity", entityActivity, a.ID, err)
		}
		return w.append("activity.created", opts.ActorID, events.EventPayload{
			"activity_name": a.ActivityName,
			"category":      a.Category,
		})
	})
	if err != nil {
		return domain.ActivityPool{}, err
	}
	return a, nil
}

func (e Engine) UpdateActivity(ctx context.Context, id string, opts ActivityOptions) (domain.ActivityPool, error) {
	release, err := e.beginSave(entityActivity, id)
	if err != nil {
		return domain.ActivityPool{}, err
	}
	defer release()

	var a domain.ActivityPool
	err = e.inTx(ctx, entityActivity, id, func(ctx context.Context, w txWriter) error {
		original, err := e.Repo.GetActivity(ctx, id)
		if err != nil {
			return storeErr("get activity", entityActivity, id, err)
		}
		a = original
		if err := applyActivity(&a, opts); err != nil {
			return err
		}
		a.UpdatedDate = e.stamp()
		if err := e.Repo.UpdateActivity(ctx, w.tx, a); err != nil {
			return storeErr("update activity", entityActivity, id, err)
		}
		return w.append("activity.updated", opts.ActorID, events.Changes(activitySnapshot(original), activitySnapshot(a)))
	})
	return a, err
}

func activitySnapshot(a domain.ActivityPool) map[string]any {
	return map[string]any{
		"activity_name":         a.ActivityName,
		"activity_description":  a.ActivityDescription,
		"category":              string(a.Category),
		"complexity_level":      string(a.ComplexityLevel),
		"estimated_duration":    a.EstimatedDuration,
		"is_mandatory":          a.IsMandatory,
		"required_skills":       strings.Join(a.RequiredSkills, ","),
		"default_assignee_role": string(a.DefaultAssigneeRole),
	}
}

func (e Engine) DeleteActivity(ctx context.Context, id, actorID string) error {
	release, err := e.beginSave(entityActivity, id)
	if err != nil {
		return err
	}
	defer release()
	return e.inTx(ctx, entityActivity, id, func(ctx context.Context, w txWriter) error {
		if err := e.Repo.DeleteActivity(ctx, w.tx, id); err != nil {
			return storeErr("delete activity", entityActivity, id, err)
		}
		return w.append("activity.deleted", actorID, nil)
	})
}

func (e Engine) ListActivities(ctx context.Context, sort string) ([]domain.ActivityPool, error) {
	var items []domain.ActivityPool
	err := e.readWithRetry(ctx, "list activities", func(ctx context.Context) error {
		var err error
		items, err = e.Repo.ListActivities(ctx, sort)
		return storeErr("list activities", entityActivity, "", err)
	})
	return items, err
}
