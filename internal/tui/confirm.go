package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ConfirmResultMsg reports the user's answer for the dialog opened
// with the same token.
type ConfirmResultMsg struct {
	Token    string
	Accepted bool
}

// ConfirmDialog is a yes/no modal guarding destructive actions. No is
// focused by default; a stray enter must not delete anything.
type ConfirmDialog struct {
	open   bool
	token  string
	prompt string
	yes    bool
}

func (d *ConfirmDialog) Open(token, prompt string) {
	d.open = true
	d.token = token
	d.prompt = prompt
	d.yes = false
}

func (d *ConfirmDialog) Close()       { d.open = false }
func (d ConfirmDialog) IsOpen() bool  { return d.open }
func (d ConfirmDialog) Token() string { return d.token }

func (d *ConfirmDialog) Update(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "n", "N":
		return d.resolve(false)
	case "y", "Y":
		return d.resolve(true)
	case "left", "right", "tab":
		d.yes = !d.yes
		return nil
	case "enter":
		return d.resolve(d.yes)
	}
	return nil
}

func (d *ConfirmDialog) resolve(accepted bool) tea.Cmd {
	token := d.token
	d.Close()
	return func() tea.Msg {
		return ConfirmResultMsg{Token: token, Accepted: accepted}
	}
}

func (d ConfirmDialog) View() string {
	if !d.open {
		return ""
	}

	border := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("196")).Padding(1, 2).Width(50)

	yesBtn, noBtn := "[ Yes ]", "[ No ]"
	if d.yes {
		yesBtn = focusStyle.Render(yesBtn)
	} else {
		noBtn = focusStyle.Render(noBtn)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Confirm") + "\n\n")
	b.WriteString(d.prompt + "\n\n")
	b.WriteString("  " + yesBtn + "   " + noBtn + dimStyle.Render("  (Esc cancels)"))
	return border.Render(b.String())
}
