package cronpreview

import (
	"testing"
	"time"
)

func TestNextDates_EveryFiveMinutes(t *testing.T) {
	after := time.Date(2026, 3, 1, 12, 2, 0, 0, time.UTC)
	dates, err := NextDates("*/5 * * * *", 3, after)
	if err != nil {
		t.Fatalf("next dates: %v", err)
	}
	want := []time.Time{
		time.Date(2026, 3, 1, 12, 5, 0, 0, time.UTC),
		time.Date(2026, 3, 1, 12, 10, 0, 0, time.UTC),
		time.Date(2026, 3, 1, 12, 15, 0, 0, time.UTC),
	}
	if len(dates) != len(want) {
		t.Fatalf("dates = %d, want %d", len(dates), len(want))
	}
	for i := range want {
		if !dates[i].Equal(want[i]) {
			t.Fatalf("dates[%d] = %s, want %s", i, dates[i], want[i])
		}
	}
}

func TestNextDates_StrictlyIncreasing(t *testing.T) {
	dates, err := NextDates("0 9 * * 1-5", 10, time.Date(2026, 3, 6, 9, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("next dates: %v", err)
	}
	for i := 1; i < len(dates); i++ {
		if !dates[i].After(dates[i-1]) {
			t.Fatalf("dates[%d]=%s not after dates[%d]=%s", i, dates[i], i-1, dates[i-1])
		}
	}
	// "after" itself is excluded even when it matches the expression.
	if dates[0].Equal(time.Date(2026, 3, 6, 9, 0, 0, 0, time.UTC)) {
		t.Fatal("fire time at the boundary included")
	}
}

func TestNextDates_RejectsMalformed(t *testing.T) {
	for _, expr := range []string{"", "* * *", "61 * * * *", "* * * * * *"} {
		if _, err := NextDates(expr, 3, time.Now()); err == nil {
			t.Fatalf("expression %q accepted", expr)
		}
	}
}

func TestValidate(t *testing.T) {
	if err := Validate("30 2 * * *"); err != nil {
		t.Fatalf("valid expression rejected: %v", err)
	}
	if err := Validate("banana"); err == nil {
		t.Fatal("garbage accepted")
	}
}

func TestNextDates_ZeroCount(t *testing.T) {
	dates, err := NextDates("* * * * *", 0, time.Now())
	if err != nil {
		t.Fatalf("next dates: %v", err)
	}
	if len(dates) != 0 {
		t.Fatalf("dates = %d, want 0", len(dates))
	}
}
