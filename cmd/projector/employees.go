package main

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"projector/internal/app"
	"projector/internal/engine"
)

func employeeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "employee",
		Aliases: []string{"employees"},
		Short:   "Manage employees",
	}
	cmd.AddCommand(employeeListCmd())
	cmd.AddCommand(employeeCreateCmd())
	cmd.AddCommand(employeeUpdateCmd())
	cmd.AddCommand(employeeDeleteCmd())
	cmd.AddCommand(workloadCmd())
	return cmd
}

func employeeListCmd() *cobra.Command {
	var opts engine.EmployeeListOptions
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List employees",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), func(ctx context.Context, rt *app.Runtime) error {
				items, err := rt.Engine.ListEmployees(ctx, opts)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := newTable([]any{"ID", "Login", "Name", "Role", "Team", "Active"})
				for _, e := range items {
					tw.AppendRow([]any{e.ID, e.EmployeeID, e.FullName, e.Role.Label(), e.Team, e.IsActive})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&opts.ActiveOnly, "active", false, "only active employees")
	cmd.Flags().StringVar(&opts.Sort, "sort", "", "sort column")
	return cmd
}

func employeeCreateCmd() *cobra.Command {
	var opts engine.EmployeeCreateOptions
	var active bool
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an employee",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Active = optionalBool(cmd, "active", active)
			opts.ActorID = actorID()
			return withRuntime(cmd.Context(), func(ctx context.Context, rt *app.Runtime) error {
				emp, err := rt.Engine.CreateEmployee(ctx, opts)
				if err != nil {
					return err
				}
				return printJSONOrTable(emp)
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.EmployeeID, "login", "", "login handle")
	f.StringVar(&opts.FullName, "name", "", "full name")
	f.StringVar(&opts.Password, "password", "", "initial password")
	f.StringVar(&opts.Role, "role", "", "procurement_manager, team_leader, procurement_officer or junior_officer")
	f.StringVar(&opts.Team, "team", "", "team")
	f.StringVar(&opts.Department, "department", "", "department")
	f.StringVar(&opts.Email, "email", "", "email")
	f.StringVar(&opts.Phone, "phone", "", "phone")
	f.BoolVar(&active, "active", true, "active")
	_ = cmd.MarkFlagRequired("login")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}

func employeeUpdateCmd() *cobra.Command {
	var login, name, password, role, team, department, email, phone string
	var active bool
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update an employee; deactivating or changing the password ends their sessions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := engine.EmployeeUpdateOptions{
				ID:         args[0],
				EmployeeID: optional(cmd, "login", login),
				FullName:   optional(cmd, "name", name),
				Password:   optional(cmd, "password", password),
				Role:       optional(cmd, "role", role),
				Team:       optional(cmd, "team", team),
				Department: optional(cmd, "department", department),
				Email:      optional(cmd, "email", email),
				Phone:      optional(cmd, "phone", phone),
				Active:     optionalBool(cmd, "active", active),
				ActorID:    actorID(),
			}
			return withRuntime(cmd.Context(), func(ctx context.Context, rt *app.Runtime) error {
				emp, err := rt.Engine.UpdateEmployee(ctx, opts)
				if err != nil {
					return err
				}
				return printJSONOrTable(emp)
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&login, "login", "", "login handle")
	f.StringVar(&name, "name", "", "full name")
	f.StringVar(&password, "password", "", "new password")
	f.StringVar(&role, "role", "", "role")
	f.StringVar(&team, "team", "", "team")
	f.StringVar(&department, "department", "", "department")
	f.StringVar(&email, "email", "", "email")
	f.StringVar(&phone, "phone", "", "phone")
	f.BoolVar(&active, "active", true, "active")
	return cmd
}

func employeeDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an employee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), func(ctx context.Context, rt *app.Runtime) error {
				return rt.Engine.DeleteEmployee(ctx, args[0], actorID())
			})
		},
	}
}

func workloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "workload",
		Short: "Active programs per employee",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), func(ctx context.Context, rt *app.Runtime) error {
				loads, err := rt.Engine.Workload(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(loads)
				}
				renderWorkload(loads)
				return nil
			})
		},
	}
}
