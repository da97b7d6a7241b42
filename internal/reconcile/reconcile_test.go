package reconcile

import (
	"testing"

	"github.com/kettle/taskdeck/internal/record"
)

func collection(recs ...record.Record) record.Collection {
	return record.Collection(recs)
}

func TestReconcile_InsertThenUpdate(t *testing.T) {
	v := NewView("tasks-table", 10)

	plan := v.Reconcile(collection(
		record.Record{"id": float64(1), "name": "backup", "status": "none"},
		record.Record{"id": float64(2), "name": "cleanup", "status": "none"},
	))
	if len(plan.Inserts) != 2 || len(plan.Updates) != 0 {
		t.Fatalf("plan = %d inserts %d updates, want 2/0", len(plan.Inserts), len(plan.Updates))
	}
	if v.Len() != 2 {
		t.Fatalf("Len = %d, want 2", v.Len())
	}

	plan = v.Reconcile(collection(
		record.Record{"id": float64(1), "status": "in_processed"},
	))
	if len(plan.Updates) != 1 || len(plan.Inserts) != 0 {
		t.Fatalf("plan = %d updates %d inserts, want 1/0", len(plan.Updates), len(plan.Inserts))
	}
	got, _ := v.Get("1")
	if got.Status() != record.StatusInProcessed {
		t.Fatalf("status = %q, want in_processed", got.Status())
	}
	// Partial update keeps previously known fields.
	if got.String("name") != "backup" {
		t.Fatalf("name = %q, want backup", got.String("name"))
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	v := NewView("tasks-table", 10)
	c := collection(
		record.Record{"id": float64(1), "name": "a"},
		record.Record{"id": float64(2), "name": "b"},
	)

	v.Reconcile(c)
	before := v.Rows()

	plan := v.Reconcile(c)
	if !plan.Empty() {
		t.Fatalf("second reconcile produced a non-empty plan: %+v", plan)
	}
	after := v.Rows()
	if len(before) != len(after) {
		t.Fatalf("row count changed: %d -> %d", len(before), len(after))
	}
	for i := range before {
		if !before[i].Data.Equal(after[i].Data) {
			t.Fatalf("row %d changed on identical reconcile", i)
		}
	}
}

func TestReconcile_UpdatePreservesPageAndSort(t *testing.T) {
	v := NewView("task-1-runs", 2)
	var c record.Collection
	for i := 1; i <= 6; i++ {
		c = append(c, record.Record{"id": float64(i), "status": "none"})
	}
	v.Reconcile(c)
	v.SetSort("id", false)
	v.Page = 2

	plan := v.Reconcile(collection(
		record.Record{"id": float64(3), "status": "successful"},
	))
	if len(plan.Updates) != 1 {
		t.Fatalf("updates = %d, want 1", len(plan.Updates))
	}
	if v.Page != 2 {
		t.Fatalf("page reset to %d by an in-place update", v.Page)
	}
	if v.SortBy != "id" || v.SortAsc {
		t.Fatal("sort context lost on update")
	}
}

func TestReconcile_InsertResetsPage(t *testing.T) {
	v := NewView("tasks-table", 2)
	var c record.Collection
	for i := 1; i <= 5; i++ {
		c = append(c, record.Record{"id": float64(i)})
	}
	v.Reconcile(c)
	v.Page = 1

	v.Reconcile(collection(record.Record{"id": float64(99)}))
	if v.Page != 0 {
		t.Fatalf("page = %d after insert, want 0", v.Page)
	}
}

func TestReconcile_AbsenceDoesNotRemove(t *testing.T) {
	v := NewView("tasks-table", 10)
	v.Reconcile(collection(
		record.Record{"id": float64(1)},
		record.Record{"id": float64(2)},
	))

	// A later snapshot missing id=2 must not drop the row.
	v.Reconcile(collection(record.Record{"id": float64(1)}))
	if _, ok := v.Get("2"); !ok {
		t.Fatal("row 2 removed by ordinary reconciliation")
	}
}

func TestView_RemoveIsExplicit(t *testing.T) {
	v := NewView("tasks-table", 10)
	v.Reconcile(collection(
		record.Record{"id": float64(1)},
		record.Record{"id": float64(2)},
		record.Record{"id": float64(3)},
	))

	if !v.Remove("2") {
		t.Fatal("Remove(2) = false, want true")
	}
	if v.Remove("2") {
		t.Fatal("second Remove(2) = true, want false")
	}
	if _, ok := v.Get("2"); ok {
		t.Fatal("row 2 still present after Remove")
	}
	// Index stays consistent for the shifted row.
	if got, ok := v.Get("3"); !ok || got.ID() != "3" {
		t.Fatalf("row 3 lookup broken after Remove: %v %v", got, ok)
	}
}

func TestView_VisibleRowsSortAndPage(t *testing.T) {
	v := NewView("task-1-runs", 2)
	v.Reconcile(collection(
		record.Record{"id": float64(2), "name": "b"},
		record.Record{"id": float64(10), "name": "c"},
		record.Record{"id": float64(1), "name": "a"},
	))
	v.SetSort("id", true)

	page := v.VisibleRows()
	if len(page) != 2 {
		t.Fatalf("page len = %d, want 2", len(page))
	}
	// Numeric sort: 1, 2 — not lexical "1", "10".
	if page[0].ID != "1" || page[1].ID != "2" {
		t.Fatalf("page order = %s,%s want 1,2", page[0].ID, page[1].ID)
	}

	v.NextPage()
	page = v.VisibleRows()
	if len(page) != 1 || page[0].ID != "10" {
		t.Fatalf("second page = %+v, want single row id=10", page)
	}

	// Clamp beyond last page.
	v.NextPage()
	if v.Page != 1 {
		t.Fatalf("page = %d after clamp, want 1", v.Page)
	}
}

func TestBuildPlan_DoesNotMutateView(t *testing.T) {
	v := NewView("tasks-table", 10)
	v.Reconcile(collection(record.Record{"id": float64(1), "n": "x"}))

	_ = v.BuildPlan(collection(
		record.Record{"id": float64(1), "n": "y"},
		record.Record{"id": float64(2)},
	))
	if v.Len() != 1 {
		t.Fatalf("BuildPlan inserted rows: len=%d", v.Len())
	}
	got, _ := v.Get("1")
	if got.String("n") != "x" {
		t.Fatal("BuildPlan mutated row data")
	}
}

func TestBuildPlan_SkipsRecordsWithoutID(t *testing.T) {
	v := NewView("tasks-table", 10)
	plan := v.BuildPlan(collection(record.Record{"name": "orphan"}))
	if !plan.Empty() {
		t.Fatalf("plan for id-less record not empty: %+v", plan)
	}
}
