package main

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"projector/internal/app"
	"projector/internal/config"
	"projector/internal/db"
	"projector/internal/server"
	"projector/internal/telemetry"
	"projector/internal/workflow"
)

func initCmd() *cobra.Command {
	var adminID, adminPassword string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a workspace with a default projector.yml and secret",
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace := viper.GetString("workspace")
			if _, err := db.EnsureWorkspace(workspace); err != nil {
				return err
			}
			cfgPath := config.Path(workspace)
			if _, err := os.Stat(cfgPath); errors.Is(err, os.ErrNotExist) {
				if err := os.WriteFile(cfgPath, []byte(config.GenerateDefault()), 0o644); err != nil {
					return err
				}
				fmt.Printf("Wrote %s\n", cfgPath)
			}
			envPath := filepath.Join(workspace, ".env")
			if os.Getenv("PROJECTOR_JWT_SECRET") == "" {
				secret, err := randomSecret()
				if err != nil {
					return err
				}
				if err := setEnvValue(envPath, "PROJECTOR_JWT_SECRET", secret); err != nil {
					return err
				}
				os.Setenv("PROJECTOR_JWT_SECRET", secret)
				fmt.Printf("Set PROJECTOR_JWT_SECRET in %s\n", envPath)
			}
			if adminPassword != "" {
				os.Setenv("PROJECTOR_ADMIN_EMPLOYEE_ID", adminID)
				os.Setenv("PROJECTOR_ADMIN_PASSWORD", adminPassword)
			}
			return withRuntime(cmd.Context(), func(ctx context.Context, rt *app.Runtime) error {
				n, err := rt.Engine.Repo.CountEmployees(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("Workspace ready at %s (%d employees)\n", workspace, n)
				if n == 0 {
					fmt.Println("No employees yet; rerun with --admin-password to create the first administrator.")
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&adminID, "admin-id", "admin", "login of the first administrator")
	cmd.Flags().StringVar(&adminPassword, "admin-password", "", "password of the first administrator")
	return cmd
}

func serveCmd() *cobra.Command {
	var addr, basePath string
	var purgeEvery time.Duration
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), func(ctx context.Context, rt *app.Runtime) error {
				secret := []byte(rt.Env.JWTSecret)
				if len(secret) == 0 {
					generated, err := randomSecret()
					if err != nil {
						return err
					}
					secret = []byte(generated)
					rt.Logger.Warn("PROJECTOR_JWT_SECRET not set; using a random secret, tokens will not survive a restart")
				}
				m, err := rt.NewAuth(secret)
				if err != nil {
					return err
				}
				shutdownTracing, err := telemetry.SetupTracing(ctx, "projector", rt.Env.OTelEndpoint)
				if err != nil {
					return err
				}
				defer shutdownTracing(context.Background())

				handler, err := server.New(server.Config{
					Engine:   rt.Engine,
					Auth:     m,
					BasePath: basePath,
					Logger:   rt.Logger,
					Metrics:  rt.Metrics,
				})
				if err != nil {
					return err
				}
				server.StartWebhooks(ctx, rt.Engine.Repo, rt.Config, rt.Logger, rt.Metrics)
				go purgeSessions(ctx, rt, purgeEvery)

				srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
				go func() {
					<-ctx.Done()
					sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					srv.Shutdown(sctx)
				}()
				rt.Logger.Info("serving projector api",
					zap.String("addr", "http://"+addr+basePath),
					zap.String("openapi", basePath+"/openapi.json"),
					zap.String("docs", "/docs"))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().StringVar(&basePath, "base-path", "/v1", "API base path")
	cmd.Flags().DurationVar(&purgeEvery, "purge-interval", time.Hour, "how often expired sessions are purged")
	return cmd
}

func purgeSessions(ctx context.Context, rt *app.Runtime, every time.Duration) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		if _, err := rt.PurgeSessions(ctx, time.Hour); err != nil {
			rt.Logger.Warn("purge sessions failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func loginCmd() *cobra.Command {
	var employeeID, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Issue an API token for an employee",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), func(ctx context.Context, rt *app.Runtime) error {
				if rt.Env.JWTSecret == "" {
					return fmt.Errorf("PROJECTOR_JWT_SECRET is required to issue tokens")
				}
				m, err := rt.NewAuth([]byte(rt.Env.JWTSecret))
				if err != nil {
					return err
				}
				s, err := m.Login(ctx, employeeID, password)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(s)
				}
				fmt.Printf("Logged in as %s (%s), token expires %s\n", s.Employee.FullName, s.Employee.RoleLabel, s.ExpiresAt.Format(time.RFC3339))
				fmt.Println(s.Token)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&employeeID, "employee-id", "", "employee login")
	cmd.Flags().StringVar(&password, "password", "", "password")
	_ = cmd.MarkFlagRequired("employee-id")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the status taxonomy and program counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), func(ctx context.Context, rt *app.Runtime) error {
				d, err := rt.Engine.Dashboard(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(d.Statuses)
				}
				tw := newTable([]any{"Status", "Label", "Color", "Programs", "%"})
				for _, s := range d.Statuses {
					tw.AppendRow([]any{s.Key, s.Label, s.Color, s.Count, s.Percent})
				}
				tw.AppendFooter([]any{"", "Total", "", d.Total, ""})
				tw.Render()
				return nil
			})
		},
	}
}

func dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Recent programs and team workload",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), func(ctx context.Context, rt *app.Runtime) error {
				d, err := rt.Engine.Dashboard(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(d)
				}
				fmt.Printf("Programs: %d\n\nRecent:\n", d.Total)
				recent := newTable([]any{"Code", "Title", "Status", "Progress"})
				for _, r := range d.Recent {
					recent.AppendRow([]any{r.DisplayCode, r.Program.Title, r.StatusInfo.Label, fmt.Sprintf("%d%%", r.Percentage)})
				}
				recent.Render()
				fmt.Println("\nWorkload:")
				renderWorkload(d.Workload)
				return nil
			})
		},
	}
}

func renderWorkload(loads []workflow.Load) {
	tw := newTable([]any{"Employee", "Role", "Active", "Load", "Level"})
	for _, l := range loads {
		tw.AppendRow([]any{l.Employee.FullName, l.RoleLabel, l.ActiveTasks, fmt.Sprintf("%d%%", l.Percentage), l.Level})
	}
	tw.Render()
}

func logCmd() *cobra.Command {
	log := &cobra.Command{
		Use:   "log",
		Short: "Event log",
		Long:  "Every create, update and delete is recorded with its actor and changed fields.",
	}
	log.AddCommand(logTailCmd())
	return log
}

func logTailCmd() *cobra.Command {
	var n int
	var entityKind, entityID string
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Show the newest events",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), func(ctx context.Context, rt *app.Runtime) error {
				events, err := rt.Engine.RecentEvents(ctx, entityKind, entityID, n)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(events)
				}
				tw := newTable([]any{"ID", "Time", "Type", "Entity", "Actor", "Payload"})
				for _, e := range events {
					tw.AppendRow([]any{e.ID, e.TS, e.Type, e.EntityKind + ":" + e.EntityID, e.ActorID, e.Payload})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&n, "n", 20, "number of events")
	cmd.Flags().StringVar(&entityKind, "entity-kind", "", "entity kind")
	cmd.Flags().StringVar(&entityID, "entity-id", "", "entity id")
	return cmd
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func setEnvValue(path, key, value string) error {
	var lines []string
	seen := false
	f, err := os.Open(path)
	if err == nil {
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := scanner.Text()
			if strings.HasPrefix(line, key+"=") {
				lines = append(lines, fmt.Sprintf("%s=%s", key, value))
				seen = true
			} else {
				lines = append(lines, line)
			}
		}
		if err := scanner.Err(); err != nil {
			f.Close()
			return err
		}
		f.Close()
	} else if !os.IsNotExist(err) {
		return err
	}
	if !seen {
		lines = append(lines, fmt.Sprintf("%s=%s", key, value))
	}
	content := strings.Join(lines, "\n")
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return os.WriteFile(path, []byte(content), 0o600)
}
