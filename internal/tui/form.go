package tui

import (
	"strings"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/kettle/taskdeck/internal/cronpreview"
)

const formFieldCount = 4 // Name, Command, Schedule, Button

// TaskSubmittedMsg carries a completed task form. ID is empty for a
// new task and set when editing an existing one.
type TaskSubmittedMsg struct {
	ID       string
	Name     string
	Command  string
	Schedule string
}

// FormCancelledMsg reports that the form was dismissed.
type FormCancelledMsg struct{}

// TaskForm creates or edits a scheduled task. Editing the schedule
// field live-previews the next fire times so a wrong expression is
// visible before saving.
type TaskForm struct {
	open       bool
	focusIndex int
	editID     string

	nameField     string
	commandField  string
	scheduleField string

	preview []time.Time
	err     string
}

// Open resets the form for a new task.
func (f *TaskForm) Open() {
	*f = TaskForm{open: true}
}

// OpenEdit pre-fills the form from an existing task.
func (f *TaskForm) OpenEdit(id, name, command, schedule string) {
	*f = TaskForm{
		open:          true,
		editID:        id,
		nameField:     name,
		commandField:  command,
		scheduleField: schedule,
	}
	f.refreshPreview()
}

func (f *TaskForm) Close()       { f.open = false }
func (f TaskForm) IsOpen() bool  { return f.open }
func (f TaskForm) Err() string   { return f.err }
func (f TaskForm) Editing() bool { return f.editID != "" }

func (f *TaskForm) Update(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		f.Close()
		return func() tea.Msg { return FormCancelledMsg{} }
	case "tab", "down":
		f.focusIndex = (f.focusIndex + 1) % formFieldCount
		return nil
	case "shift+tab", "up":
		f.focusIndex = (f.focusIndex + formFieldCount - 1) % formFieldCount
		return nil
	case "enter":
		if f.focusIndex == formFieldCount-1 {
			return f.submit()
		}
		f.focusIndex = (f.focusIndex + 1) % formFieldCount
		return nil
	case "backspace":
		switch f.focusIndex {
		case 0:
			f.nameField = chop(f.nameField)
		case 1:
			f.commandField = chop(f.commandField)
		case 2:
			f.scheduleField = chop(f.scheduleField)
			f.refreshPreview()
		}
		return nil
	default:
		text := msg.String()
		if utf8.RuneCountInString(text) != 1 {
			return nil
		}
		switch f.focusIndex {
		case 0:
			f.nameField += text
		case 1:
			f.commandField += text
		case 2:
			f.scheduleField += text
			f.refreshPreview()
		}
	}
	return nil
}

func (f *TaskForm) submit() tea.Cmd {
	name := strings.TrimSpace(f.nameField)
	if name == "" {
		f.err = "Name is required"
		return nil
	}
	if strings.TrimSpace(f.commandField) == "" {
		f.err = "Command is required"
		return nil
	}
	schedule := strings.TrimSpace(f.scheduleField)
	if schedule != "" {
		if err := cronpreview.Validate(schedule); err != nil {
			f.err = "Schedule is not a valid cron expression"
			return nil
		}
	}
	msg := TaskSubmittedMsg{
		ID:       f.editID,
		Name:     name,
		Command:  strings.TrimSpace(f.commandField),
		Schedule: schedule,
	}
	f.Close()
	return func() tea.Msg { return msg }
}

func (f *TaskForm) refreshPreview() {
	f.err = ""
	f.preview = nil
	expr := strings.TrimSpace(f.scheduleField)
	if expr == "" {
		return
	}
	dates, err := cronpreview.NextDates(expr, 3, time.Now())
	if err != nil {
		return
	}
	f.preview = dates
}

func (f TaskForm) View() string {
	if !f.open {
		return ""
	}

	border := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).Padding(1, 2).Width(60)

	mk := func(idx int) string {
		if f.focusIndex == idx {
			return focusStyle.Render("▸ ")
		}
		return "  "
	}

	heading := "New Task"
	if f.Editing() {
		heading = "Edit Task"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(heading) + "\n\n")
	b.WriteString(mk(0) + "Name:     [ " + f.nameField + " ]\n")
	b.WriteString(mk(1) + "Command:  [ " + clip(f.commandField, 38) + " ]\n")
	b.WriteString(mk(2) + "Schedule: [ " + f.scheduleField + " ]\n")
	if len(f.preview) > 0 {
		b.WriteString(dimStyle.Render("    next: ") + "\n")
		for _, d := range f.preview {
			b.WriteString(dimStyle.Render("      "+d.Format("2006-01-02 15:04")) + "\n")
		}
	} else if strings.TrimSpace(f.scheduleField) != "" {
		b.WriteString(warnStyle.Render("    schedule does not parse yet") + "\n")
	}
	b.WriteString("\n")
	btn := "[ Save ]"
	if f.focusIndex == formFieldCount-1 {
		btn = focusStyle.Render(btn)
	}
	b.WriteString("  " + btn + dimStyle.Render("  (Esc to cancel)") + "\n")
	if f.err != "" {
		b.WriteString("\n" + errStyle.Render("  ⚠ "+f.err))
	}
	return border.Render(b.String())
}

// chop removes the last rune, not the last byte.
func chop(s string) string {
	if len(s) == 0 {
		return s
	}
	_, size := utf8.DecodeLastRuneInString(s)
	return s[:len(s)-size]
}

func clip(s string, n int) string {
	if runewidth.StringWidth(s) <= n {
		return s
	}
	return runewidth.Truncate(s, n, "...")
}
