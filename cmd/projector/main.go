package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"projector/internal/app"
	"projector/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "projector",
	Short: "Projector procurement tracker",
	Long: `Projector tracks procurement programs from request to completion.
- Programs move through stations; progress is the share of stations reached.
- Statuses: open, plan, in_progress, complete, done, freeze, cancel. Only the first three count as active work.
- Workload: active programs per employee, where 5 is a full load.
- Catalog: departments, divisions, domains, procurement teams, engagement types and the activity pool.
- Event log: every change is recorded; view it with 'projector log tail'.`,
	SilenceUsage: true,
}

func main() {
	workspaceEnv := filepath.Join(workspaceFromArgs(os.Args[1:]), ".env")
	// A missing .env is fine; the process environment still applies.
	_ = godotenv.Load(workspaceEnv)

	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("PROJECTOR")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().String("actor-id", "system", "actor recorded on events")
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("actor-id", rootCmd.PersistentFlags().Lookup("actor-id"))
}

func registerCommands() {
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(dashboardCmd())
	rootCmd.AddCommand(programCmd())
	rootCmd.AddCommand(employeeCmd())
	rootCmd.AddCommand(referenceCmd())
	rootCmd.AddCommand(engagementCmd())
	rootCmd.AddCommand(activityCmd())
	rootCmd.AddCommand(logCmd())
}

// workspaceFromArgs finds -w/--workspace before flags are parsed so the
// workspace .env can seed the environment.
func workspaceFromArgs(args []string) string {
	for i, a := range args {
		switch {
		case a == "-w" || a == "--workspace":
			if i+1 < len(args) {
				return args[i+1]
			}
		case strings.HasPrefix(a, "--workspace="):
			return strings.TrimPrefix(a, "--workspace=")
		}
	}
	if ws := os.Getenv("PROJECTOR_WORKSPACE"); ws != "" {
		return ws
	}
	return "."
}

// --- helpers ---

func withRuntime(ctx context.Context, fn func(context.Context, *app.Runtime) error) error {
	env, err := config.ParseEnv()
	if err != nil {
		return err
	}
	rt, err := app.Open(ctx, viper.GetString("workspace"), env)
	if err != nil {
		return err
	}
	defer rt.Close()
	return fn(ctx, rt)
}

func actorID() string {
	return viper.GetString("actor-id")
}

// printJSONOrTable prints v as JSON with --json, otherwise as a field/value table.
func printJSONOrTable(v any) error {
	if viper.GetBool("json") {
		return printJSON(v)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return printJSON(v)
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	tw := newTable(table.Row{"Field", "Value"})
	for _, k := range keys {
		tw.AppendRow(table.Row{k, fieldValue(fields[k])})
	}
	tw.Render()
	return nil
}

func fieldValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case map[string]any, []any:
		b, _ := json.Marshal(val)
		return string(b)
	default:
		return fmt.Sprint(val)
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(header table.Row) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(header)
	return tw
}

func optional(cmd *cobra.Command, flag string, v string) *string {
	if !cmd.Flags().Changed(flag) {
		return nil
	}
	return &v
}

func optionalInt(cmd *cobra.Command, flag string, v int) *int {
	if !cmd.Flags().Changed(flag) {
		return nil
	}
	return &v
}

func optionalFloat(cmd *cobra.Command, flag string, v float64) *float64 {
	if !cmd.Flags().Changed(flag) {
		return nil
	}
	return &v
}

func optionalBool(cmd *cobra.Command, flag string, v bool) *bool {
	if !cmd.Flags().Changed(flag) {
		return nil
	}
	return &v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
