package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"projector/internal/domain"
	"projector/internal/engine"
	"projector/internal/engine/auth"
)

func registerReferences(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "list-references",
		Method:      http.MethodGet,
		Path:        "/references/{kind}",
		Summary:     "List departments, divisions, domains or procurement teams",
		Errors:      []int{http.StatusBadRequest, http.StatusServiceUnavailable},
	}, func(ctx context.Context, input *struct {
		Kind string `path:"kind" enum:"departments,divisions,domains,procurement-teams"`
		Sort string `query:"sort"`
	}) (*struct {
		Body []domain.Reference `json:"body"`
	}, error) {
		items, err := e.ListReferences(ctx, domain.ReferenceKind(input.Kind), input.Sort)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []domain.Reference `json:"body"`
		}{Body: nonNilSlice(items)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-reference",
		Method:        http.MethodPost,
		Path:          "/references/{kind}",
		Summary:       "Add a reference entry",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusForbidden, http.StatusServiceUnavailable},
	}, func(ctx context.Context, input *struct {
		Kind string           `path:"kind" enum:"departments,divisions,domains,procurement-teams"`
		Body ReferenceRequest `json:"body"`
	}) (*struct {
		Body domain.Reference `json:"body"`
	}, error) {
		id, err := requirePermission(ctx, auth.PermManageCatalog)
		if err != nil {
			return nil, handleError(err)
		}
		ref, err := e.CreateReference(ctx, engine.ReferenceOptions{
			Kind:        domain.ReferenceKind(input.Kind),
			Name:        input.Body.Name,
			Description: input.Body.Description,
			ActorID:     id.EmployeeID,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Reference `json:"body"`
		}{Body: ref}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-reference",
		Method:      http.MethodPatch,
		Path:        "/references/{kind}/{id}",
		Summary:     "Rename or describe a reference entry",
		Errors:      []int{http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound, http.StatusConflict, http.StatusServiceUnavailable},
	}, func(ctx context.Context, input *struct {
		Kind string           `path:"kind" enum:"departments,divisions,domains,procurement-teams"`
		ID   string           `path:"id"`
		Body ReferenceRequest `json:"body"`
	}) (*struct {
		Body domain.Reference `json:"body"`
	}, error) {
		id, err := requirePermission(ctx, auth.PermManageCatalog)
		if err != nil {
			return nil, handleError(err)
		}
		ref, err := e.UpdateReference(ctx, input.ID, engine.ReferenceOptions{
			Kind:        domain.ReferenceKind(input.Kind),
			Name:        input.Body.Name,
			Description: input.Body.Description,
			ActorID:     id.EmployeeID,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Reference `json:"body"`
		}{Body: ref}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-reference",
		Method:        http.MethodDelete,
		Path:          "/references/{kind}/{id}",
		Summary:       "Remove a reference entry",
		DefaultStatus: http.StatusNoContent,
		Errors:        []int{http.StatusForbidden, http.StatusNotFound, http.StatusConflict, http.StatusServiceUnavailable},
	}, func(ctx context.Context, input *struct {
		Kind string `path:"kind" enum:"departments,divisions,domains,procurement-teams"`
		ID   string `path:"id"`
	}) (*struct{}, error) {
		id, err := requirePermission(ctx, auth.PermManageCatalog)
		if err != nil {
			return nil, handleError(err)
		}
		if err := e.DeleteReference(ctx, domain.ReferenceKind(input.Kind), input.ID, id.EmployeeID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}

func registerEngagementTypes(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "list-engagement-types",
		Method:      http.MethodGet,
		Path:        "/engagement-types",
		Summary:     "List engagement types and their station templates",
		Errors:      []int{http.StatusBadRequest, http.StatusServiceUnavailable},
	}, func(ctx context.Context, input *struct {
		Sort string `query:"sort"`
	}) (*struct {
		Body []domain.EngagementType `json:"body"`
	}, error) {
		items, err := e.ListEngagementTypes(ctx, input.Sort)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []domain.EngagementType `json:"body"`
		}{Body: nonNilSlice(items)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-engagement-type",
		Method:        http.MethodPost,
		Path:          "/engagement-types",
		Summary:       "Create an engagement type",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusForbidden, http.StatusServiceUnavailable},
	}, func(ctx context.Context, input *struct {
		Body EngagementTypeRequest `json:"body"`
	}) (*struct {
		Body domain.EngagementType `json:"body"`
	}, error) {
		id, err := requirePermission(ctx, auth.PermManageCatalog)
		if err != nil {
			return nil, handleError(err)
		}
		et, err := e.CreateEngagementType(ctx, engagementOptions(input.Body, id.EmployeeID))
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.EngagementType `json:"body"`
		}{Body: et}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-engagement-type",
		Method:      http.MethodPatch,
		Path:        "/engagement-types/{id}",
		Summary:     "Partially update an engagement type",
		Errors:      []int{http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound, http.StatusConflict, http.StatusServiceUnavailable},
	}, func(ctx context.Context, input *struct {
		ID   string                `path:"id"`
		Body EngagementTypeRequest `json:"body"`
	}) (*struct {
		Body domain.EngagementType `json:"body"`
	}, error) {
		id, err := requirePermission(ctx, auth.PermManageCatalog)
		if err != nil {
			return nil, handleError(err)
		}
		et, err := e.UpdateEngagementType(ctx, input.ID, engagementOptions(input.Body, id.EmployeeID))
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.EngagementType `json:"body"`
		}{Body: et}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-engagement-type",
		Method:        http.MethodDelete,
		Path:          "/engagement-types/{id}",
		Summary:       "Delete an engagement type",
		DefaultStatus: http.StatusNoContent,
		Errors:        []int{http.StatusForbidden, http.StatusNotFound, http.StatusConflict, http.StatusServiceUnavailable},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct{}, error) {
		id, err := requirePermission(ctx, auth.PermManageCatalog)
		if err != nil {
			return nil, handleError(err)
		}
		if err := e.DeleteEngagementType(ctx, input.ID, id.EmployeeID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}

func engagementOptions(b EngagementTypeRequest, actorID string) engine.EngagementTypeOptions {
	return engine.EngagementTypeOptions{
		TypeName:           b.TypeName,
		TypeDescription:    b.TypeDescription,
		EstimatedDuration:  b.EstimatedDuration,
		TypicalBudgetRange: b.TypicalBudgetRange,
		ApprovalLevels:     b.ApprovalLevels,
		DefaultActivities:  b.DefaultActivities,
		Active:             b.IsActive,
		ActorID:            actorID,
	}
}

func registerActivities(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "list-activities",
		Method:      http.MethodGet,
		Path:        "/activities",
		Summary:     "List the activity pool",
		Errors:      []int{http.StatusBadRequest, http.StatusServiceUnavailable},
	}, func(ctx context.Context, input *struct {
		Sort string `query:"sort"`
	}) (*struct {
		Body []domain.ActivityPool `json:"body"`
	}, error) {
		items, err := e.ListActivities(ctx, input.Sort)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []domain.ActivityPool `json:"body"`
		}{Body: nonNilSlice(items)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-activity",
		Method:        http.MethodPost,
		Path:          "/activities",
		Summary:       "Add an activity to the pool",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusForbidden, http.StatusServiceUnavailable},
	}, func(ctx context.Context, input *struct {
		Body ActivityRequest `json:"body"`
	}) (*struct {
		Body domain.ActivityPool `json:"body"`
	}, error) {
		id, err := requirePermission(ctx, auth.PermManageCatalog)
		if err != nil {
			return nil, handleError(err)
		}
		a, err := e.CreateActivity(ctx, activityOptions(input.Body, id.EmployeeID))
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.ActivityPool `json:"body"`
		}{Body: a}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-activity",
		Method:      http.MethodPatch,
		Path:        "/activities/{id}",
		Summary:     "Partially update an activity",
		Errors:      []int{http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound, http.StatusConflict, http.StatusServiceUnavailable},
	}, func(ctx context.Context, input *struct {
		ID   string          `path:"id"`
		Body ActivityRequest `json:"body"`
	}) (*struct {
		Body domain.ActivityPool `json:"body"`
	}, error) {
		id, err := requirePermission(ctx, auth.PermManageCatalog)
		if err != nil {
			return nil, handleError(err)
		}
		a, err := e.UpdateActivity(ctx, input.ID, activityOptions(input.Body, id.EmployeeID))
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.ActivityPool `json:"body"`
		}{Body: a}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-activity",
		Method:        http.MethodDelete,
		Path:          "/activities/{id}",
		Summary:       "Remove an activity from the pool",
		DefaultStatus: http.StatusNoContent,
		Errors:        []int{http.StatusForbidden, http.StatusNotFound, http.StatusConflict, http.StatusServiceUnavailable},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct{}, error) {
		id, err := requirePermission(ctx, auth.PermManageCatalog)
		if err != nil {
			return nil, handleError(err)
		}
		if err := e.DeleteActivity(ctx, input.ID, id.EmployeeID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}

func activityOptions(b ActivityRequest, actorID string) engine.ActivityOptions {
	return engine.ActivityOptions{
		ActivityName:        b.ActivityName,
		ActivityDescription: b.ActivityDescription,
		Category:            b.Category,
		ComplexityLevel:     b.ComplexityLevel,
		EstimatedDuration:   b.EstimatedDuration,
		IsMandatory:         b.IsMandatory,
		RequiredSkills:      b.RequiredSkills,
		DefaultAssigneeRole: b.DefaultAssigneeRole,
		ActorID:             actorID,
	}
}
