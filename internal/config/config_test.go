package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Workflow.DefaultTotalStations != 5 {
		t.Fatalf("default stations = %d", cfg.Workflow.DefaultTotalStations)
	}
	if cfg.Workflow.StationInterval != 7*24*time.Hour {
		t.Fatalf("station interval = %s", cfg.Workflow.StationInterval)
	}
	if len(cfg.Workflow.StationActivities) != 8 {
		t.Fatalf("station activities = %d", len(cfg.Workflow.StationActivities))
	}
	if cfg.Workload.FullLoad != 5 || cfg.Workload.Top != 8 {
		t.Fatalf("workload defaults = %+v", cfg.Workload)
	}
	if cfg.Session.TTL != 15*time.Minute {
		t.Fatalf("session ttl = %s", cfg.Session.TTL)
	}
}

func TestFromYAMLOverridesKeepDefaults(t *testing.T) {
	cfg, err := FromYAML([]byte("workload:\n  full_load: 10\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Workload.FullLoad != 10 {
		t.Fatalf("full_load = %d", cfg.Workload.FullLoad)
	}
	if cfg.Workload.Top != 8 || cfg.Store.RequestTimeout != 5*time.Second {
		t.Fatalf("defaults lost: %+v %+v", cfg.Workload, cfg.Store)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]string{
		"workflow:\n  default_total_stations: 0\n": "default_total_stations",
		"session:\n  ttl: 10s\n":                    "ttl",
		"webhooks:\n  - events: [program.create]\n": "url",
		"workflow:\n  station_activities: ['']\n":   "station_activities",
	}
	for doc, want := range cases {
		_, err := FromYAML([]byte(doc))
		if err == nil || !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q error for %q, got %v", want, doc, err)
		}
	}
}

func TestLoadOptional(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadOptional(dir)
	if err != nil || cfg == nil {
		t.Fatalf("missing file should yield defaults: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "projector.yml"), []byte("dashboard:\n  recent: 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = LoadOptional(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Dashboard.Recent != 3 {
		t.Fatalf("recent = %d", cfg.Dashboard.Recent)
	}
}

func TestParseEnv(t *testing.T) {
	t.Setenv("PROJECTOR_DB_DRIVER", "sqlite")
	t.Setenv("PROJECTOR_JWT_SECRET", "s3cret")
	e, err := ParseEnv()
	if err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if e.JWTSecret != "s3cret" || e.AdminEmployeeID != "admin" || e.MetricsPrefix != "projector" {
		t.Fatalf("unexpected env %+v", e)
	}

	t.Setenv("PROJECTOR_DB_DRIVER", "postgres")
	t.Setenv("PROJECTOR_DATABASE_URL", "")
	if _, err := ParseEnv(); err == nil || !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected postgres url error, got %v", err)
	}
}
