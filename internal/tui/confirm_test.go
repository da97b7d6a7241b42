package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func specialKey(k string) tea.KeyMsg {
	switch k {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func keyMsg(k string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func resultOf(t *testing.T, cmd tea.Cmd) ConfirmResultMsg {
	t.Helper()
	if cmd == nil {
		t.Fatal("no command returned")
	}
	msg, ok := cmd().(ConfirmResultMsg)
	if !ok {
		t.Fatalf("message type %T", cmd())
	}
	return msg
}

func TestConfirmDialog_DefaultsToNo(t *testing.T) {
	var d ConfirmDialog
	d.Open("delete:t-1", "Delete task?")
	if !d.IsOpen() {
		t.Fatal("dialog not open")
	}

	res := resultOf(t, d.Update(specialKey("enter")))
	if res.Accepted {
		t.Fatal("bare enter accepted a destructive action")
	}
	if res.Token != "delete:t-1" {
		t.Fatalf("token = %q", res.Token)
	}
	if d.IsOpen() {
		t.Fatal("dialog still open after answer")
	}
}

func TestConfirmDialog_ExplicitYes(t *testing.T) {
	var d ConfirmDialog
	d.Open("delete:t-1", "Delete task?")
	if res := resultOf(t, d.Update(keyMsg("y"))); !res.Accepted {
		t.Fatal("y did not accept")
	}

	d.Open("delete:t-2", "Delete task?")
	d.Update(specialKey("tab"))
	if res := resultOf(t, d.Update(specialKey("enter"))); !res.Accepted {
		t.Fatal("enter on focused Yes did not accept")
	}
}

func TestConfirmDialog_EscDeclines(t *testing.T) {
	var d ConfirmDialog
	d.Open("delete:t-1", "Delete task?")
	if res := resultOf(t, d.Update(specialKey("esc"))); res.Accepted {
		t.Fatal("esc accepted")
	}
}

func TestConfirmDialog_ViewOnlyWhenOpen(t *testing.T) {
	var d ConfirmDialog
	if d.View() != "" {
		t.Fatal("closed dialog rendered")
	}
	d.Open("delete:t-1", "Delete task?")
	if d.View() == "" {
		t.Fatal("open dialog rendered nothing")
	}
}
