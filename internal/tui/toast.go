package tui

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/kettle/taskdeck/internal/notify"
)

// Toast is one entry in the notification feed.
type Toast struct {
	Severity notify.Severity
	Message  string
	At       time.Time
}

// ToastFeed keeps the recent notifications and counts the ones the
// user has not looked at yet.
type ToastFeed struct {
	mu       sync.Mutex
	items    []Toast
	maxItems int
	unseen   int
}

func NewToastFeed() *ToastFeed {
	return &ToastFeed{maxItems: 50}
}

func (f *ToastFeed) Add(sev notify.Severity, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, Toast{Severity: sev, Message: message, At: time.Now()})
	if len(f.items) > f.maxItems {
		f.items = f.items[1:]
	}
	f.unseen++
}

// UnseenCount returns how many toasts arrived since MarkSeen.
func (f *ToastFeed) UnseenCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unseen
}

// MarkSeen clears the unseen badge, typically when the notifications
// screen opens.
func (f *ToastFeed) MarkSeen() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unseen = 0
}

func (f *ToastFeed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

// CleanupOld drops toasts older than maxAge and returns how many were
// removed. Unseen toasts survive cleanup until the user has had a
// chance to see them.
func (f *ToastFeed) CleanupOld(maxAge time.Duration) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	firstUnseen := len(f.items) - f.unseen
	kept := f.items[:0]
	removed := 0
	for i, it := range f.items {
		if i < firstUnseen && now.Sub(it.At) >= maxAge {
			removed++
			continue
		}
		kept = append(kept, it)
	}
	f.items = kept
	return removed
}

// Badge renders the unseen counter for the status bar, or "" when
// everything has been seen.
func (f *ToastFeed) Badge() string {
	n := f.UnseenCount()
	if n == 0 {
		return ""
	}
	badge := lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	return badge.Render(fmt.Sprintf("● %d", n))
}

func (f *ToastFeed) View() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.items) == 0 {
		return dimStyle.Render("No notifications.") + "\n"
	}

	var out strings.Builder
	for i := len(f.items) - 1; i >= 0; i-- {
		it := f.items[i]
		style := dimStyle
		switch it.Severity {
		case notify.SeverityError:
			style = errStyle
		case notify.SeverityWarning:
			style = warnStyle
		case notify.SeveritySuccess:
			style = okStyle
		}
		out.WriteString(fmt.Sprintf("%s %s %s\n",
			dimStyle.Render(it.At.Format("15:04:05")),
			style.Render(string(it.Severity)),
			it.Message,
		))
	}
	return out.String()
}
