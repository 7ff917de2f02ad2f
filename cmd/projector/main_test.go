package main

import (
	"io"
	"os"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func captureStdout(t *testing.T, fn func() error) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	orig := os.Stdout
	os.Stdout = w
	runErr := fn()
	os.Stdout = orig
	w.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read stdout: %v", err)
	}
	if runErr != nil {
		t.Fatalf("print: %v", runErr)
	}
	return string(out)
}

func TestPrintJSONOrTable(t *testing.T) {
	record := map[string]any{
		"title":            "Laptop refresh",
		"estimated_budget": 1500.5,
		"approval_levels":  []string{"manager", "board"},
		"target_date":      nil,
	}

	viper.Set("json", false)
	defer viper.Set("json", false)
	out := captureStdout(t, func() error { return printJSONOrTable(record) })
	for _, want := range []string{"FIELD", "VALUE", "Laptop refresh", "1500.5", `["manager","board"]`} {
		if !strings.Contains(out, want) {
			t.Fatalf("table output missing %q:\n%s", want, out)
		}
	}
	if strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Fatalf("expected a table, got JSON:\n%s", out)
	}

	viper.Set("json", true)
	out = captureStdout(t, func() error { return printJSONOrTable(record) })
	if !strings.HasPrefix(strings.TrimSpace(out), "{") || !strings.Contains(out, `"title": "Laptop refresh"`) {
		t.Fatalf("expected JSON output:\n%s", out)
	}
}

func TestActorIDDefaultsToSystem(t *testing.T) {
	addPersistentFlags()
	flag := rootCmd.PersistentFlags().Lookup("actor-id")
	if flag == nil || flag.DefValue != "system" {
		t.Fatalf("actor-id default: %+v", flag)
	}
	if got := actorID(); got != "system" {
		t.Fatalf("actorID() = %q, want system", got)
	}
}
