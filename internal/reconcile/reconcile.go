// Package reconcile merges server snapshots into live table views.
// The merge itself is a pure plan computation; applying the plan to
// the view is a separate step, so the algorithm is testable without
// any rendering environment.
package reconcile

import (
	"sort"
	"strconv"

	"github.com/kettle/taskdeck/internal/record"
)

// Row is one live table row: a stable identity plus the latest known
// record data for it.
type Row struct {
	ID   string
	Data record.Record
}

// Plan is the outcome of comparing an incoming Collection against the
// live view. Updates are applied in place and keep the user's page,
// sort and scroll context (a soft redraw). Inserts append new rows and
// reset the view to its first page — new items are rare and their
// visibility is prioritized over page stability, an explicit tradeoff
// inherited from the server-rendered original. Ordinary reconciliation
// never removes rows; removal is its own operation driven by a
// confirmed delete.
type Plan struct {
	Updates []record.Record
	Inserts []record.Record
}

// Empty reports whether applying the plan would change nothing.
func (p Plan) Empty() bool {
	return len(p.Updates) == 0 && len(p.Inserts) == 0
}

// View is the live, identity-keyed row set of one table together with
// the interaction context that must survive refreshes. A View is owned
// by a single goroutine (the TUI model); it is not safe for concurrent
// use.
type View struct {
	id    record.ViewIdentity
	rows  []Row
	index map[string]int

	Page     int
	PageSize int
	SortBy   string
	SortAsc  bool
}

// NewView creates an empty view. pageSize <= 0 falls back to 10 rows,
// the default page length of the original tables.
func NewView(id record.ViewIdentity, pageSize int) *View {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &View{
		id:       id,
		index:    make(map[string]int),
		PageSize: pageSize,
		SortAsc:  true,
	}
}

// ID returns the view's stable identity.
func (v *View) ID() record.ViewIdentity { return v.id }

// Len returns the number of live rows.
func (v *View) Len() int { return len(v.rows) }

// Get returns the current data for a row by id.
func (v *View) Get(id string) (record.Record, bool) {
	i, ok := v.index[id]
	if !ok {
		return nil, false
	}
	return v.rows[i].Data, true
}

// Rows returns a copy of the live row slice in server order.
func (v *View) Rows() []Row {
	out := make([]Row, len(v.rows))
	copy(out, v.rows)
	return out
}

// BuildPlan compares incoming against the live rows and returns the
// minimal plan that brings the view up to date. Records without an id
// are skipped. The plan is empty when incoming carries nothing new, so
// applying the same Collection twice is a visible no-op.
func (v *View) BuildPlan(incoming record.Collection) Plan {
	var plan Plan
	seen := make(map[string]bool, len(incoming))
	for _, rec := range incoming {
		id := rec.ID()
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true

		i, exists := v.index[id]
		if !exists {
			plan.Inserts = append(plan.Inserts, rec)
			continue
		}
		merged := v.rows[i].Data.Merge(rec)
		if merged.Equal(v.rows[i].Data) {
			continue
		}
		plan.Updates = append(plan.Updates, rec)
	}
	return plan
}

// Apply folds a plan into the live rows. Updates merge into existing
// rows without touching Page or sort; any insert appends and resets
// Page to the first page (the default redraw).
func (v *View) Apply(plan Plan) {
	for _, rec := range plan.Updates {
		if i, ok := v.index[rec.ID()]; ok {
			v.rows[i].Data = v.rows[i].Data.Merge(rec)
		}
	}
	for _, rec := range plan.Inserts {
		id := rec.ID()
		if _, ok := v.index[id]; ok {
			continue
		}
		v.index[id] = len(v.rows)
		v.rows = append(v.rows, Row{ID: id, Data: rec})
	}
	if len(plan.Inserts) > 0 {
		v.Page = 0
	}
}

// Reconcile is BuildPlan followed by Apply, returning the plan so the
// caller can report what changed.
func (v *View) Reconcile(incoming record.Collection) Plan {
	plan := v.BuildPlan(incoming)
	v.Apply(plan)
	return plan
}

// Remove deletes one row by id. Only a confirmed delete mutation or an
// explicit out-of-band removal calls this; absence from a polled
// snapshot never does.
func (v *View) Remove(id string) bool {
	i, ok := v.index[id]
	if !ok {
		return false
	}
	v.rows = append(v.rows[:i], v.rows[i+1:]...)
	delete(v.index, id)
	for j := i; j < len(v.rows); j++ {
		v.index[v.rows[j].ID] = j
	}
	v.clampPage()
	return true
}

// SetSort changes the display sort. Repeating the same column flips
// the direction, matching the usual table header behavior.
func (v *View) SetSort(column string, asc bool) {
	v.SortBy = column
	v.SortAsc = asc
}

// PageCount returns the number of display pages.
func (v *View) PageCount() int {
	if len(v.rows) == 0 {
		return 1
	}
	return (len(v.rows) + v.PageSize - 1) / v.PageSize
}

// NextPage and PrevPage move the visible page with clamping.
func (v *View) NextPage() {
	v.Page++
	v.clampPage()
}

func (v *View) PrevPage() {
	v.Page--
	v.clampPage()
}

func (v *View) clampPage() {
	if max := v.PageCount() - 1; v.Page > max {
		v.Page = max
	}
	if v.Page < 0 {
		v.Page = 0
	}
}

// VisibleRows returns the current page of rows under the display sort.
// Sorting is stable so equal keys keep server order.
func (v *View) VisibleRows() []Row {
	sorted := v.Rows()
	if v.SortBy != "" {
		sort.SliceStable(sorted, func(i, j int) bool {
			less := fieldLess(sorted[i].Data, sorted[j].Data, v.SortBy)
			if v.SortAsc {
				return less
			}
			return fieldLess(sorted[j].Data, sorted[i].Data, v.SortBy)
		})
	}
	start := v.Page * v.PageSize
	if start >= len(sorted) {
		return nil
	}
	end := start + v.PageSize
	if end > len(sorted) {
		end = len(sorted)
	}
	return sorted[start:end]
}

// fieldLess orders two records by one field, numerically when both
// values parse as numbers, lexically otherwise.
func fieldLess(a, b record.Record, field string) bool {
	as, bs := a.String(field), b.String(field)
	an, aerr := strconv.ParseFloat(as, 64)
	bn, berr := strconv.ParseFloat(bs, 64)
	if aerr == nil && berr == nil {
		return an < bn
	}
	return as < bs
}
