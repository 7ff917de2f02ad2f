package migrate

import (
	"testing"

	"projector/internal/db"
)

func TestMigrateIsRepeatable(t *testing.T) {
	conn, err := db.Open(db.Config{Workspace: t.TempDir()})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer conn.Close()
	if err := Migrate(conn); err != nil {
		t.Fatalf("first migrate: %v", err)
	}
	if err := Migrate(conn); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	v, err := Version(conn)
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if v != 1 {
		t.Fatalf("version = %d", v)
	}
	for _, table := range []string{"programs", "employees", "departments", "divisions", "domains", "procurement_teams", "engagement_types", "activity_pool", "sessions", "events"} {
		var n int
		if err := conn.Get(&n, `SELECT COUNT(*) FROM `+table); err != nil {
			t.Fatalf("table %s: %v", table, err)
		}
	}
}

func TestProgramChecksRejectBadRows(t *testing.T) {
	conn, err := db.Open(db.Config{Workspace: t.TempDir()})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer conn.Close()
	if err := Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	_, err = conn.Exec(`INSERT INTO programs(id,title,status,requester_name,engagement_type,priority,current_station,total_stations,created_date,updated_date)
VALUES ('p1','t','archived','r','standard_purchase','medium',1,5,'x','x')`)
	if err == nil {
		t.Fatalf("expected status check to fail")
	}
	_, err = conn.Exec(`INSERT INTO programs(id,title,status,requester_name,engagement_type,priority,current_station,total_stations,created_date,updated_date)
VALUES ('p2','t','open','r','standard_purchase','medium',6,5,'x','x')`)
	if err == nil {
		t.Fatalf("expected station check to fail")
	}
}
