package domain

import (
	"errors"
	"testing"
)

func TestParseClosedSets(t *testing.T) {
	if _, err := ParseStatus("in_progress"); err != nil {
		t.Fatalf("in_progress: %v", err)
	}
	if _, err := ParseStatus("review"); !IsValidation(err) {
		t.Fatalf("expected validation error for review, got %v", err)
	}
	if _, err := ParsePriority("urgent"); err != nil {
		t.Fatalf("urgent: %v", err)
	}
	if _, err := ParseRole("intern"); !IsValidation(err) {
		t.Fatalf("expected validation error for intern, got %v", err)
	}
	if _, err := ParseActivityCategory("negotiation"); err != nil {
		t.Fatalf("negotiation: %v", err)
	}
	if _, err := ParseComplexityLevel("hard"); !IsValidation(err) {
		t.Fatalf("expected validation error for hard, got %v", err)
	}
	if k, err := ParseReferenceKind("Procurement-Teams"); err != nil || k != ReferenceProcurementTeam {
		t.Fatalf("reference kind: %v %v", k, err)
	}
	if !StatusInProgress.Active() || StatusDone.Active() {
		t.Fatalf("unexpected active set")
	}
}

func TestParseActivityTemplate(t *testing.T) {
	tmpl, err := ParseActivityTemplate(`[{"station":2,"activity_name":"Tender","estimated_days":10},{"station":1,"activity_name":"Kickoff"}]`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(tmpl) != 2 || tmpl[0].Station != 1 || tmpl[1].ActivityName != "Tender" {
		t.Fatalf("unexpected template %+v", tmpl)
	}
	if name, ok := tmpl.NameFor(2); !ok || name != "Tender" {
		t.Fatalf("name for 2: %q %v", name, ok)
	}
	for _, raw := range []string{`{"station":1}`, `not json`, `[{"station":0,"activity_name":"x"}]`, `[{"station":1,"activity_name":"a"},{"station":1,"activity_name":"b"}]`} {
		if _, err := ParseActivityTemplate(raw); !IsValidation(err) {
			t.Fatalf("expected validation error for %s, got %v", raw, err)
		}
	}
}

func TestColumnsRoundTripThroughDriverValues(t *testing.T) {
	v, err := StringList{"Manager", "Director"}.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	var back StringList
	if err := back.Scan(v); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(back) != 2 || back[1] != "Director" {
		t.Fatalf("unexpected list %v", back)
	}
	var empty StringList
	if err := empty.Scan(nil); err != nil || empty == nil {
		t.Fatalf("scan nil: %v %v", empty, err)
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList(" legal , , finance,")
	if len(got) != 2 || got[0] != "legal" || got[1] != "finance" {
		t.Fatalf("unexpected split %v", got)
	}
}

func TestErrorsMatchSentinels(t *testing.T) {
	var err error = NotFoundError{Entity: "program", ID: "p1"}
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("not found should match sentinel")
	}
	if (AuthError{Reason: "inactive"}).Error() != "invalid credentials" {
		t.Fatalf("auth error must stay generic")
	}
	wrapped := RemoteError{Op: "list programs", Err: errors.New("disk I/O error")}
	if !IsRemote(wrapped) {
		t.Fatalf("remote error not detected")
	}
}

func TestDisplayCode(t *testing.T) {
	if got := (Program{ID: "abc-12ef"}).DisplayCode(); got != "12EF" {
		t.Fatalf("display code %q", got)
	}
	if got := (Program{ID: "x", ProgramNumber: "2024-17"}).DisplayCode(); got != "2024-17" {
		t.Fatalf("display code %q", got)
	}
}
