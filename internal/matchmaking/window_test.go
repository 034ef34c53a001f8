package matchmaking

import (
	"testing"
	"time"
)

func at(hour, min, sec int) time.Time {
	return time.Date(2025, 6, 10, hour, min, sec, 0, time.Local)
}

func TestWindowBoundaries(t *testing.T) {
	cases := []struct {
		now  time.Time
		open bool
	}{
		{at(20, 59, 59), false},
		{at(21, 0, 0), true},
		{at(22, 30, 0), true},
		{at(23, 59, 59), true},
		{at(0, 0, 0), false},
		{at(9, 15, 0), false},
	}
	for _, c := range cases {
		if got := IsWindowOpen(c.now); got != c.open {
			t.Fatalf("IsWindowOpen(%s) = %v, want %v", c.now.Format("15:04:05"), got, c.open)
		}
	}
}

func TestWindowBoundsInsideWindow(t *testing.T) {
	now := at(22, 15, 0)
	opensAt, closesAt := WindowBounds(now)
	if opensAt.Hour() != 21 || opensAt.Day() != now.Day() {
		t.Fatalf("opensAt = %s, want today 21:00", opensAt)
	}
	if !closesAt.Equal(opensAt.Add(3 * time.Hour)) {
		t.Fatalf("closesAt = %s, want midnight after opensAt", closesAt)
	}
	if !now.After(opensAt) || !now.Before(closesAt) {
		t.Fatalf("now should sit inside the returned bounds")
	}
}

func TestWindowBoundsJustAfterMidnight(t *testing.T) {
	now := at(0, 30, 0)
	opensAt, closesAt := WindowBounds(now)
	if opensAt.Day() != now.Day() || opensAt.Hour() != 21 {
		t.Fatalf("opensAt = %s, want the same day's 21:00", opensAt)
	}
	if !opensAt.After(now) {
		t.Fatalf("opensAt = %s should be ahead of %s", opensAt, now)
	}
	if !closesAt.Equal(opensAt.Add(3 * time.Hour)) {
		t.Fatalf("closesAt = %s, want midnight after opensAt", closesAt)
	}
}

func TestWindowBoundsBeforeOpening(t *testing.T) {
	now := at(8, 0, 0)
	opensAt, _ := WindowBounds(now)
	if !opensAt.After(now) {
		t.Fatalf("opensAt = %s should be in the future when the window is closed", opensAt)
	}
	if opensAt.Day() != now.Day() {
		t.Fatalf("next opening should be the same calendar day, got %s", opensAt)
	}
}
