package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"projector/internal/app"
	"projector/internal/domain"
	"projector/internal/engine"
)

func referenceCmd() *cobra.Command {
	kinds := make([]string, len(domain.ReferenceKinds))
	for i, k := range domain.ReferenceKinds {
		kinds[i] = string(k)
	}
	cmd := &cobra.Command{
		Use:     "ref",
		Aliases: []string{"reference"},
		Short:   "Manage reference lists (" + strings.Join(kinds, ", ") + ")",
	}
	cmd.PersistentFlags().String("sort", "", "sort column")
	cmd.AddCommand(&cobra.Command{
		Use:   "list <kind>",
		Short: "List entries of a reference list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := domain.ParseReferenceKind(args[0])
			if err != nil {
				return err
			}
			sort, _ := cmd.Flags().GetString("sort")
			return withRuntime(cmd.Context(), func(ctx context.Context, rt *app.Runtime) error {
				items, err := rt.Engine.ListReferences(ctx, kind, sort)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := newTable([]any{"ID", "Name", "Description"})
				for _, r := range items {
					tw.AppendRow([]any{r.ID, r.Name, r.Description})
				}
				tw.Render()
				return nil
			})
		},
	})
	cmd.AddCommand(referenceAddCmd())
	cmd.AddCommand(referenceUpdateCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <kind> <id>",
		Short: "Delete a reference entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := domain.ParseReferenceKind(args[0])
			if err != nil {
				return err
			}
			return withRuntime(cmd.Context(), func(ctx context.Context, rt *app.Runtime) error {
				return rt.Engine.DeleteReference(ctx, kind, args[1], actorID())
			})
		},
	})
	return cmd
}

func referenceAddCmd() *cobra.Command {
	var name, description string
	cmd := &cobra.Command{
		Use:   "add <kind>",
		Short: "Add a reference entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := domain.ParseReferenceKind(args[0])
			if err != nil {
				return err
			}
			opts := engine.ReferenceOptions{
				Kind:        kind,
				Name:        &name,
				Description: optional(cmd, "description", description),
				ActorID:     actorID(),
			}
			return withRuntime(cmd.Context(), func(ctx context.Context, rt *app.Runtime) error {
				ref, err := rt.Engine.CreateReference(ctx, opts)
				if err != nil {
					return err
				}
				return printJSONOrTable(ref)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "name")
	cmd.Flags().StringVar(&description, "description", "", "description")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func referenceUpdateCmd() *cobra.Command {
	var name, description string
	cmd := &cobra.Command{
		Use:   "update <kind> <id>",
		Short: "Rename or describe a reference entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := domain.ParseReferenceKind(args[0])
			if err != nil {
				return err
			}
			opts := engine.ReferenceOptions{
				Kind:        kind,
				Name:        optional(cmd, "name", name),
				Description: optional(cmd, "description", description),
				ActorID:     actorID(),
			}
			return withRuntime(cmd.Context(), func(ctx context.Context, rt *app.Runtime) error {
				ref, err := rt.Engine.UpdateReference(ctx, args[1], opts)
				if err != nil {
					return err
				}
				return printJSONOrTable(ref)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "name")
	cmd.Flags().StringVar(&description, "description", "", "description")
	return cmd
}

type engagementFlags struct {
	name, description, budget, approvals, activities string
	duration                                         int
	active                                           bool
}

func (f *engagementFlags) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.name, "name", "", "type name")
	fs.StringVar(&f.description, "description", "", "description")
	fs.IntVar(&f.duration, "duration", 0, "estimated duration in days")
	fs.StringVar(&f.budget, "budget-range", "", "typical budget range")
	fs.StringVar(&f.approvals, "approvals", "", "comma-separated approval levels")
	fs.StringVar(&f.activities, "activities", "", `default activities as JSON, e.g. [{"station":1,"activity_name":"Scoping"}]`)
	fs.BoolVar(&f.active, "active", true, "active")
}

func (f *engagementFlags) options(cmd *cobra.Command) engine.EngagementTypeOptions {
	return engine.EngagementTypeOptions{
		TypeName:           optional(cmd, "name", f.name),
		TypeDescription:    optional(cmd, "description", f.description),
		EstimatedDuration:  optionalInt(cmd, "duration", f.duration),
		TypicalBudgetRange: optional(cmd, "budget-range", f.budget),
		ApprovalLevels:     optional(cmd, "approvals", f.approvals),
		DefaultActivities:  optional(cmd, "activities", f.activities),
		Active:             optionalBool(cmd, "active", f.active),
		ActorID:            actorID(),
	}
}

func engagementCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "engagement",
		Aliases: []string{"engagements"},
		Short:   "Manage engagement types and their station templates",
	}
	var sort string
	list := &cobra.Command{
		Use:   "list",
		Short: "List engagement types",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), func(ctx context.Context, rt *app.Runtime) error {
				items, err := rt.Engine.ListEngagementTypes(ctx, sort)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := newTable([]any{"ID", "Name", "Days", "Stations", "Active"})
				for _, et := range items {
					tw.AppendRow([]any{et.ID, et.TypeName, et.EstimatedDuration, len(et.DefaultActivities), et.IsActive})
				}
				tw.Render()
				return nil
			})
		},
	}
	list.Flags().StringVar(&sort, "sort", "", "sort column")
	cmd.AddCommand(list)

	var create engagementFlags
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an engagement type",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := create.options(cmd)
			return withRuntime(cmd.Context(), func(ctx context.Context, rt *app.Runtime) error {
				et, err := rt.Engine.CreateEngagementType(ctx, opts)
				if err != nil {
					return err
				}
				return printJSONOrTable(et)
			})
		},
	}
	create.bind(createCmd)
	_ = createCmd.MarkFlagRequired("name")
	cmd.AddCommand(createCmd)

	var update engagementFlags
	updateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update an engagement type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := update.options(cmd)
			return withRuntime(cmd.Context(), func(ctx context.Context, rt *app.Runtime) error {
				et, err := rt.Engine.UpdateEngagementType(ctx, args[0], opts)
				if err != nil {
					return err
				}
				return printJSONOrTable(et)
			})
		},
	}
	update.bind(updateCmd)
	cmd.AddCommand(updateCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an engagement type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), func(ctx context.Context, rt *app.Runtime) error {
				return rt.Engine.DeleteEngagementType(ctx, args[0], actorID())
			})
		},
	})
	return cmd
}

type activityFlags struct {
	name, description, category, complexity, skills, role string
	duration                                               int
	mandatory                                              bool
}

func (f *activityFlags) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.name, "name", "", "activity name")
	fs.StringVar(&f.description, "description", "", "description")
	fs.StringVar(&f.category, "category", "", fmt.Sprintf("one of %v", domain.ActivityCategories))
	fs.StringVar(&f.complexity, "complexity", "", "simple, medium or complex")
	fs.IntVar(&f.duration, "duration", 0, "estimated duration in days")
	fs.BoolVar(&f.mandatory, "mandatory", false, "mandatory for every program")
	fs.StringVar(&f.skills, "skills", "", "comma-separated required skills")
	fs.StringVar(&f.role, "assignee-role", "", "default assignee role")
}

func (f *activityFlags) options(cmd *cobra.Command) engine.ActivityOptions {
	return engine.ActivityOptions{
		ActivityName:        optional(cmd, "name", f.name),
		ActivityDescription: optional(cmd, "description", f.description),
		Category:            optional(cmd, "category", f.category),
		ComplexityLevel:     optional(cmd, "complexity", f.complexity),
		EstimatedDuration:   optionalInt(cmd, "duration", f.duration),
		IsMandatory:         optionalBool(cmd, "mandatory", f.mandatory),
		RequiredSkills:      optional(cmd, "skills", f.skills),
		DefaultAssigneeRole: optional(cmd, "assignee-role", f.role),
		ActorID:             actorID(),
	}
}

func activityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "activity",
		Aliases: []string{"activities"},
		Short:   "Manage the activity pool",
	}
	var sort string
	list := &cobra.Command{
		Use:   "list",
		Short: "List pool activities",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), func(ctx context.Context, rt *app.Runtime) error {
				items, err := rt.Engine.ListActivities(ctx, sort)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := newTable([]any{"ID", "Name", "Category", "Complexity", "Days", "Mandatory"})
				for _, a := range items {
					tw.AppendRow([]any{a.ID, a.ActivityName, a.Category, a.ComplexityLevel, a.EstimatedDuration, a.IsMandatory})
				}
				tw.Render()
				return nil
			})
		},
	}
	list.Flags().StringVar(&sort, "sort", "", "sort column")
	cmd.AddCommand(list)

	var create activityFlags
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Add an activity to the pool",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := create.options(cmd)
			return withRuntime(cmd.Context(), func(ctx context.Context, rt *app.Runtime) error {
				a, err := rt.Engine.CreateActivity(ctx, opts)
				if err != nil {
					return err
				}
				return printJSONOrTable(a)
			})
		},
	}
	create.bind(createCmd)
	_ = createCmd.MarkFlagRequired("name")
	_ = createCmd.MarkFlagRequired("category")
	cmd.AddCommand(createCmd)

	var update activityFlags
	updateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a pool activity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := update.options(cmd)
			return withRuntime(cmd.Context(), func(ctx context.Context, rt *app.Runtime) error {
				a, err := rt.Engine.UpdateActivity(ctx, args[0], opts)
				if err != nil {
					return err
				}
				return printJSONOrTable(a)
			})
		},
	}
	update.bind(updateCmd)
	cmd.AddCommand(updateCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Remove an activity from the pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), func(ctx context.Context, rt *app.Runtime) error {
				return rt.Engine.DeleteActivity(ctx, args[0], actorID())
			})
		},
	})
	return cmd
}
