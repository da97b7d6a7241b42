package record

import "testing"

func TestRecord_IDNormalization(t *testing.T) {
	cases := []struct {
		name string
		rec  Record
		want string
	}{
		{"float64 json number", Record{"id": float64(42)}, "42"},
		{"string id", Record{"id": "run-7"}, "run-7"},
		{"int id", Record{"id": 3}, "3"},
		{"missing id", Record{"name": "x"}, ""},
		{"nil id", Record{"id": nil}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.rec.ID(); got != tc.want {
				t.Fatalf("ID() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRecord_MergeUnionsFields(t *testing.T) {
	base := Record{"id": "1", "name": "backup", "is_enabled": true}
	upd := Record{"id": "1", "is_enabled": false}

	merged := base.Merge(upd)

	if v, _ := merged.Bool("is_enabled"); v {
		t.Fatalf("is_enabled = true, want false after update")
	}
	if merged.String("name") != "backup" {
		t.Fatalf("name lost on partial update: %v", merged)
	}
	// Merge must not mutate the receiver.
	if v, _ := base.Bool("is_enabled"); !v {
		t.Fatal("Merge mutated the original record")
	}
}

func TestRecord_Status(t *testing.T) {
	if got := (Record{"id": "1"}).Status(); got != StatusNone {
		t.Fatalf("missing status field = %q, want none", got)
	}
	if got := (Record{"status": "in_processed"}).Status(); got != StatusInProcessed {
		t.Fatalf("status = %q, want in_processed", got)
	}
}

func TestWorkStatus_Terminal(t *testing.T) {
	terminal := []WorkStatus{StatusSuccessful, StatusFailed, StatusStopped}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Fatalf("%s.IsTerminal() = false, want true", s)
		}
	}
	for _, s := range []WorkStatus{StatusNone, StatusInProcessed, WorkStatus("bogus")} {
		if s.IsTerminal() {
			t.Fatalf("%s.IsTerminal() = true, want false", s)
		}
	}
	if WorkStatus("bogus").Known() {
		t.Fatal("unknown status reported as known")
	}
}

func TestRecord_Equal(t *testing.T) {
	a := Record{"id": "1", "name": "x", "runs": float64(3)}
	b := Record{"name": "x", "id": "1", "runs": float64(3)}
	if !a.Equal(b) {
		t.Fatal("records with identical fields compare unequal")
	}
	if a.Equal(Record{"id": "1", "name": "y", "runs": float64(3)}) {
		t.Fatal("records with different values compare equal")
	}
}
