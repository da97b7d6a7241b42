package tui

import (
	"fmt"
	"strings"
	"sync"

	"github.com/mattn/go-runewidth"

	"github.com/kettle/taskdeck/internal/prefs"
	"github.com/kettle/taskdeck/internal/reconcile"
	"github.com/kettle/taskdeck/internal/record"
	"github.com/kettle/taskdeck/internal/status"
)

const maxCellWidth = 28

// TableView renders one reconciled view as a paged table. It is
// mutex-guarded because the polling layer writes rows from its own
// goroutine while the UI renders.
type TableView struct {
	mu      sync.Mutex
	title   string
	schema  record.Schema
	view    *reconcile.View
	visible map[string]bool
	cursor  int
	// pending maps row id to the action awaiting server confirmation.
	// Pending rows render a marker and refuse further actions; the
	// value on screen only changes when a poll brings the new state.
	pending map[string]string

	// statusField names the column holding the work status, rendered
	// as a glyph instead of raw text. Empty means no status column.
	statusField string
}

func NewTableView(title string, id record.ViewIdentity, schema record.Schema, pageSize int) *TableView {
	visible := make(map[string]bool, len(schema))
	for _, col := range schema {
		visible[col.DataSource] = col.DefaultVisible
	}
	return &TableView{
		title:   title,
		schema:  schema,
		view:    reconcile.NewView(id, pageSize),
		visible: visible,
		pending: make(map[string]string),
	}
}

// SetStatusField marks a column as the work-status column.
func (t *TableView) SetStatusField(dataSource string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.statusField = dataSource
}

func (t *TableView) ID() record.ViewIdentity {
	return t.view.ID()
}

// ApplyPrefs overlays saved column choices on the schema defaults.
func (t *TableView) ApplyPrefs(st prefs.State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.visible = prefs.Resolve(st, t.schema)
}

// ColumnChoices returns the current visibility map for persisting.
func (t *TableView) ColumnChoices() map[string]bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]bool, len(t.visible))
	for k, v := range t.visible {
		out[k] = v
	}
	return out
}

// ToggleColumn flips one column's visibility and returns the new
// value. Unknown columns are ignored.
func (t *TableView) ToggleColumn(dataSource string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.visible[dataSource]; !ok {
		return false
	}
	t.visible[dataSource] = !t.visible[dataSource]
	return t.visible[dataSource]
}

// Columns returns the schema in declaration order.
func (t *TableView) Columns() record.Schema {
	return t.schema
}

// SetRows reconciles a fresh server snapshot into the table and
// returns the applied plan. Rows confirmed by the server clear their
// pending marker.
func (t *TableView) SetRows(rows record.Collection) reconcile.Plan {
	t.mu.Lock()
	defer t.mu.Unlock()

	plan := t.view.Reconcile(rows)
	for _, rec := range plan.Updates {
		delete(t.pending, rec.ID())
	}
	for _, rec := range plan.Inserts {
		delete(t.pending, rec.ID())
	}
	t.clampCursor()
	return plan
}

// RemoveRow drops a row after a confirmed delete.
func (t *TableView) RemoveRow(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.pending, id)
	ok := t.view.Remove(id)
	t.clampCursor()
	return ok
}

func (t *TableView) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.view.Len()
}

// MarkPending records that an action for a row is awaiting the server.
func (t *TableView) MarkPending(id, action string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending[id] = action
}

// ResolvePending clears a row's pending marker, typically after a
// rejected mutation.
func (t *TableView) ResolvePending(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.pending, id)
}

func (t *TableView) IsPending(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.pending[id]
	return ok
}

// MoveCursor moves the selection within the current page.
func (t *TableView) MoveCursor(delta int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cursor += delta
	t.clampCursor()
}

// Selected returns the record under the cursor.
func (t *TableView) Selected() (record.Record, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rows := t.view.VisibleRows()
	if t.cursor < 0 || t.cursor >= len(rows) {
		return nil, false
	}
	return rows[t.cursor].Data, true
}

func (t *TableView) NextPage() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.view.NextPage()
	t.cursor = 0
}

func (t *TableView) PrevPage() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.view.PrevPage()
	t.cursor = 0
}

// SetSort orders the table by a column.
func (t *TableView) SetSort(dataSource string, asc bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.view.SetSort(dataSource, asc)
}

func (t *TableView) clampCursor() {
	n := len(t.view.VisibleRows())
	if t.cursor >= n {
		t.cursor = n - 1
	}
	if t.cursor < 0 {
		t.cursor = 0
	}
}

func (t *TableView) visibleColumns() []record.Column {
	out := make([]record.Column, 0, len(t.schema))
	for _, col := range t.schema {
		if t.visible[col.DataSource] {
			out = append(out, col)
		}
	}
	return out
}

func (t *TableView) View() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	cols := t.visibleColumns()
	rows := t.view.VisibleRows()

	widths := make([]int, len(cols))
	for i, col := range cols {
		widths[i] = runewidth.StringWidth(col.Title)
		for _, row := range rows {
			if w := runewidth.StringWidth(t.cellText(row.Data, col)); w > widths[i] {
				widths[i] = w
			}
		}
		if widths[i] > maxCellWidth {
			widths[i] = maxCellWidth
		}
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(t.title) + "\n")

	var header strings.Builder
	for i, col := range cols {
		header.WriteString(pad(col.Title, widths[i]) + "  ")
	}
	b.WriteString(dimStyle.Render(header.String()) + "\n")

	if len(rows) == 0 {
		b.WriteString(dimStyle.Render("  (no rows)") + "\n")
	}
	for ri, row := range rows {
		var line strings.Builder
		for i, col := range cols {
			line.WriteString(pad(t.cellText(row.Data, col), widths[i]) + "  ")
		}
		text := line.String()
		switch {
		case ri == t.cursor:
			text = cursorStyle.Render(text)
		case t.pending[row.ID] != "":
			text = dimStyle.Render(text + "…")
		default:
			if isErr, ok := row.Data.Bool("err"); ok && isErr {
				text = errStyle.Render(text)
			}
		}
		b.WriteString(text + "\n")
	}

	b.WriteString(dimStyle.Render(fmt.Sprintf("page %d/%d · %d rows",
		t.view.Page+1, t.view.PageCount(), t.view.Len())) + "\n")
	return b.String()
}

func (t *TableView) cellText(rec record.Record, col record.Column) string {
	if col.DataSource == t.statusField {
		st := record.WorkStatus(rec.String(col.DataSource))
		if st == "" {
			st = record.StatusNone
		}
		w := status.Map(st)
		return w.Glyph + " " + w.Label
	}
	val, ok := rec[col.DataSource]
	if !ok || val == nil {
		return ""
	}
	if bv, isBool := val.(bool); isBool {
		if bv {
			return "[x]"
		}
		return "[ ]"
	}
	return fmt.Sprintf("%v", val)
}

// pad fits s into width terminal cells, truncating on rune boundaries
// so glyphs and wide characters never get split mid-byte.
func pad(s string, width int) string {
	if runewidth.StringWidth(s) > width {
		if width <= 3 {
			return runewidth.Truncate(s, width, "")
		}
		return runewidth.Truncate(s, width, "...")
	}
	return runewidth.FillRight(s, width)
}
