package status

import (
	"testing"

	"github.com/kettle/taskdeck/internal/record"
)

func TestMap_CoversEveryKnownStatus(t *testing.T) {
	statuses := []record.WorkStatus{
		record.StatusNone,
		record.StatusInProcessed,
		record.StatusSuccessful,
		record.StatusFailed,
		record.StatusStopped,
	}
	seen := map[string]record.WorkStatus{}
	for _, s := range statuses {
		w := Map(s)
		if w.Glyph == "" || w.Label == "" {
			t.Fatalf("status %q has empty widget: %#v", s, w)
		}
		if prev, dup := seen[w.Glyph]; dup {
			t.Fatalf("statuses %q and %q share glyph %q", prev, s, w.Glyph)
		}
		seen[w.Glyph] = s
	}
}

func TestMap_Labels(t *testing.T) {
	cases := []struct {
		status record.WorkStatus
		label  string
	}{
		{record.StatusNone, "no runs yet"},
		{record.StatusInProcessed, "run in progress"},
		{record.StatusSuccessful, "last run succeeded"},
		{record.StatusFailed, "last run failed"},
		{record.StatusStopped, "last run was stopped"},
	}
	for _, tc := range cases {
		if got := Map(tc.status).Label; got != tc.label {
			t.Fatalf("Map(%q).Label = %q, want %q", tc.status, got, tc.label)
		}
	}
}

func TestMap_UnknownStatusFallsBack(t *testing.T) {
	w := Map(record.WorkStatus("half_done"))
	if w.Glyph != "?" {
		t.Fatalf("unknown status glyph = %q, want ?", w.Glyph)
	}
	if w.Label != "unknown status half_done" {
		t.Fatalf("unknown status label = %q", w.Label)
	}
}

func TestRender_NeverEmpty(t *testing.T) {
	if Render(record.StatusSuccessful) == "" {
		t.Fatal("empty rendering for known status")
	}
	if Render(record.WorkStatus("???")) == "" {
		t.Fatal("empty rendering for unknown status")
	}
}
