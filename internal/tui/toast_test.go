package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/kettle/taskdeck/internal/notify"
)

func TestToastFeed_UnseenBadge(t *testing.T) {
	f := NewToastFeed()
	if f.Badge() != "" {
		t.Fatal("badge shown with no toasts")
	}

	f.Add(notify.SeveritySuccess, "task started")
	f.Add(notify.SeverityError, "refresh failed")
	if f.UnseenCount() != 2 {
		t.Fatalf("unseen = %d, want 2", f.UnseenCount())
	}
	if !strings.Contains(f.Badge(), "2") {
		t.Fatalf("badge = %q", f.Badge())
	}

	f.MarkSeen()
	if f.UnseenCount() != 0 || f.Badge() != "" {
		t.Fatalf("badge survived MarkSeen: %q", f.Badge())
	}
	if f.Len() != 2 {
		t.Fatalf("toasts dropped by MarkSeen: %d", f.Len())
	}
}

func TestToastFeed_CapsItems(t *testing.T) {
	f := NewToastFeed()
	for i := 0; i < 60; i++ {
		f.Add(notify.SeveritySuccess, "x")
	}
	if f.Len() != 50 {
		t.Fatalf("len = %d, want 50", f.Len())
	}
}

func TestToastFeed_CleanupKeepsUnseen(t *testing.T) {
	f := NewToastFeed()
	f.Add(notify.SeverityWarning, "old but unseen")

	removed := f.CleanupOld(0)
	if removed != 0 {
		t.Fatalf("unseen toast removed")
	}

	f.MarkSeen()
	removed = f.CleanupOld(0)
	if removed != 1 || f.Len() != 0 {
		t.Fatalf("seen toast survived cleanup: removed=%d len=%d", removed, f.Len())
	}
}

func TestToastFeed_CleanupRespectsAge(t *testing.T) {
	f := NewToastFeed()
	f.Add(notify.SeveritySuccess, "fresh")
	f.MarkSeen()
	if removed := f.CleanupOld(time.Hour); removed != 0 {
		t.Fatalf("fresh toast removed")
	}
}

func TestToastFeed_ViewShowsMessages(t *testing.T) {
	f := NewToastFeed()
	if !strings.Contains(f.View(), "No notifications") {
		t.Fatalf("empty view = %q", f.View())
	}
	f.Add(notify.SeverityError, "disk full")
	if !strings.Contains(f.View(), "disk full") {
		t.Fatalf("view missing message: %q", f.View())
	}
}
