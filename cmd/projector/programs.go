package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"projector/internal/app"
	"projector/internal/engine"
	"projector/internal/export"
	"projector/internal/workflow"
)

func programCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "program",
		Aliases: []string{"programs"},
		Short:   "Manage procurement programs",
	}
	cmd.AddCommand(programListCmd())
	cmd.AddCommand(programShowCmd())
	cmd.AddCommand(programCreateCmd())
	cmd.AddCommand(programUpdateCmd())
	cmd.AddCommand(programExportCmd())
	return cmd
}

func addListFlags(cmd *cobra.Command, opts *engine.ProgramListOptions) {
	cmd.Flags().StringVarP(&opts.Query, "query", "q", "", "case-insensitive search on title, description, assignee or requester")
	cmd.Flags().StringVar(&opts.Status, "status", workflow.StatusAll, "status filter")
	cmd.Flags().StringVar(&opts.Sort, "sort", "-created_date", "sort column, prefix with - for descending")
}

func programListCmd() *cobra.Command {
	var opts engine.ProgramListOptions
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List programs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), func(ctx context.Context, rt *app.Runtime) error {
				items, err := rt.Engine.ListPrograms(ctx, opts)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := newTable([]any{"ID", "Code", "Title", "Status", "Priority", "Assignee", "Station", "Target"})
				for _, p := range items {
					tw.AppendRow([]any{
						p.ID, p.DisplayCode(), p.Title, workflow.Describe(p.Status).Label, p.Priority,
						p.AssignedEmployee, fmt.Sprintf("%d/%d", p.CurrentStation, p.TotalStations), deref(p.TargetDate),
					})
				}
				tw.Render()
				return nil
			})
		},
	}
	addListFlags(cmd, &opts)
	return cmd
}

func programShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a program and its stations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), func(ctx context.Context, rt *app.Runtime) error {
				view, err := rt.Engine.ProgramView(ctx, args[0])
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(view)
				}
				p := view.Program
				fmt.Printf("%s  %s\n", view.DisplayCode, p.Title)
				fmt.Printf("Status: %s  Priority: %s  Progress: %d%%\n", view.StatusInfo.Label, p.Priority, view.Percentage)
				fmt.Printf("Requester: %s  Assignee: %s\n", p.RequesterName, p.AssignedEmployee)
				tw := newTable([]any{"#", "Activity", "State", "Due"})
				for _, s := range view.Stations {
					tw.AppendRow([]any{s.Number, s.ActivityName, s.State, s.DueDate.Format("2006-01-02")})
				}
				tw.Render()
				return nil
			})
		},
	}
}

func programCreateCmd() *cobra.Command {
	var opts engine.ProgramCreateOptions
	var current, total int
	var budget, cost float64
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Open a new program",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.CurrentStation = optionalInt(cmd, "current-station", current)
			opts.TotalStations = optionalInt(cmd, "total-stations", total)
			opts.EstimatedBudget = optionalFloat(cmd, "budget", budget)
			opts.ActualCost = optionalFloat(cmd, "actual-cost", cost)
			opts.ActorID = actorID()
			return withRuntime(cmd.Context(), func(ctx context.Context, rt *app.Runtime) error {
				p, err := rt.Engine.CreateProgram(ctx, opts)
				if err != nil {
					return err
				}
				return printJSONOrTable(p)
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.Title, "title", "", "title")
	f.StringVar(&opts.RequesterName, "requester", "", "requester name")
	f.StringVar(&opts.EngagementType, "engagement", "", "engagement type")
	f.StringVar(&opts.ProgramNumber, "number", "", "program number")
	f.StringVar(&opts.Description, "description", "", "description")
	f.StringVar(&opts.Status, "status", "", "initial status")
	f.StringVar(&opts.Priority, "priority", "", "priority")
	f.StringVar(&opts.RequesterUnit, "requester-unit", "", "requester unit")
	f.StringVar(&opts.AssignedEmployeeID, "assignee", "", "assigned employee record id")
	f.StringVar(&opts.TeamLeader, "team-leader", "", "team leader")
	f.StringVar(&opts.Department, "department", "", "department")
	f.StringVar(&opts.StartDate, "start-date", "", "start date (YYYY-MM-DD)")
	f.StringVar(&opts.TargetDate, "target-date", "", "target date (YYYY-MM-DD)")
	f.StringVar(&opts.Notes, "notes", "", "notes")
	f.IntVar(&current, "current-station", 1, "current station")
	f.IntVar(&total, "total-stations", 0, "total stations")
	f.Float64Var(&budget, "budget", 0, "estimated budget")
	f.Float64Var(&cost, "actual-cost", 0, "actual cost")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("requester")
	_ = cmd.MarkFlagRequired("engagement")
	return cmd
}

func programUpdateCmd() *cobra.Command {
	var number, title, description, status, requester, unit, assignee, leader, department, engagement, priority string
	var start, target, completion, notes string
	var current, total int
	var budget, cost float64
	var clearBudget, clearCost bool
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update program fields; pass an empty date to clear it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := engine.ProgramUpdateOptions{
				ID:                 args[0],
				ProgramNumber:      optional(cmd, "number", number),
				Title:              optional(cmd, "title", title),
				Description:        optional(cmd, "description", description),
				Status:             optional(cmd, "status", status),
				RequesterName:      optional(cmd, "requester", requester),
				RequesterUnit:      optional(cmd, "requester-unit", unit),
				AssignedEmployeeID: optional(cmd, "assignee", assignee),
				TeamLeader:         optional(cmd, "team-leader", leader),
				Department:         optional(cmd, "department", department),
				EngagementType:     optional(cmd, "engagement", engagement),
				Priority:           optional(cmd, "priority", priority),
				CurrentStation:     optionalInt(cmd, "current-station", current),
				TotalStations:      optionalInt(cmd, "total-stations", total),
				StartDate:          optional(cmd, "start-date", start),
				TargetDate:         optional(cmd, "target-date", target),
				CompletionDate:     optional(cmd, "completion-date", completion),
				EstimatedBudget:    optionalFloat(cmd, "budget", budget),
				ActualCost:         optionalFloat(cmd, "actual-cost", cost),
				ClearBudget:        clearBudget,
				ClearActualCost:    clearCost,
				Notes:              optional(cmd, "notes", notes),
				ActorID:            actorID(),
			}
			return withRuntime(cmd.Context(), func(ctx context.Context, rt *app.Runtime) error {
				p, err := rt.Engine.UpdateProgram(ctx, opts)
				if err != nil {
					return err
				}
				return printJSONOrTable(p)
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&number, "number", "", "program number")
	f.StringVar(&title, "title", "", "title")
	f.StringVar(&description, "description", "", "description")
	f.StringVar(&status, "status", "", "status")
	f.StringVar(&requester, "requester", "", "requester name")
	f.StringVar(&unit, "requester-unit", "", "requester unit")
	f.StringVar(&assignee, "assignee", "", "assigned employee record id, empty to unassign")
	f.StringVar(&leader, "team-leader", "", "team leader")
	f.StringVar(&department, "department", "", "department")
	f.StringVar(&engagement, "engagement", "", "engagement type")
	f.StringVar(&priority, "priority", "", "priority")
	f.IntVar(&current, "current-station", 0, "current station")
	f.IntVar(&total, "total-stations", 0, "total stations")
	f.StringVar(&start, "start-date", "", "start date")
	f.StringVar(&target, "target-date", "", "target date")
	f.StringVar(&completion, "completion-date", "", "completion date")
	f.Float64Var(&budget, "budget", 0, "estimated budget")
	f.Float64Var(&cost, "actual-cost", 0, "actual cost")
	f.BoolVar(&clearBudget, "clear-budget", false, "unset the estimated budget")
	f.BoolVar(&clearCost, "clear-actual-cost", false, "unset the actual cost")
	f.StringVar(&notes, "notes", "", "notes")
	cmd.MarkFlagsMutuallyExclusive("budget", "clear-budget")
	cmd.MarkFlagsMutuallyExclusive("actual-cost", "clear-actual-cost")
	return cmd
}

func programExportCmd() *cobra.Command {
	var opts engine.ProgramListOptions
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the program register and workload to an xlsx workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), func(ctx context.Context, rt *app.Runtime) error {
				items, err := rt.Engine.ListPrograms(ctx, opts)
				if err != nil {
					return err
				}
				loads, err := rt.Engine.Workload(ctx)
				if err != nil {
					return err
				}
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				if err := export.WriteRegister(f, items, loads); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				fmt.Printf("Wrote %d programs to %s\n", len(items), out)
				return nil
			})
		},
	}
	addListFlags(cmd, &opts)
	cmd.Flags().StringVarP(&out, "out", "o", "programs.xlsx", "output file")
	return cmd
}
