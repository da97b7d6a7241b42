// Package status maps a record's work status to its display widget.
package status

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/kettle/taskdeck/internal/record"
)

// Widget is the visual descriptor for one work status. Glyph is the
// single-cell table marker; Label is the long form for detail panes.
type Widget struct {
	Glyph string
	Label string
	Style lipgloss.Style
}

var (
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	stopStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
)

var widgets = map[record.WorkStatus]Widget{
	record.StatusNone:        {Glyph: "·", Label: "no runs yet", Style: dimStyle},
	record.StatusInProcessed: {Glyph: "◐", Label: "run in progress", Style: runningStyle},
	record.StatusSuccessful:  {Glyph: "✓", Label: "last run succeeded", Style: okStyle},
	record.StatusFailed:      {Glyph: "✗", Label: "last run failed", Style: failStyle},
	record.StatusStopped:     {Glyph: "■", Label: "last run was stopped", Style: stopStyle},
}

// Map returns the widget for a status. Unknown values get a visible
// fallback instead of an error: a new server-side status must never
// break rendering.
func Map(s record.WorkStatus) Widget {
	if w, ok := widgets[s]; ok {
		return w
	}
	return Widget{Glyph: "?", Label: "unknown status " + string(s), Style: dimStyle}
}

// Render returns the styled glyph for a status.
func Render(s record.WorkStatus) string {
	w := Map(s)
	return w.Style.Render(w.Glyph)
}
