// Package matchmaking implements the V/S match pairing service: the
// nightly eligibility window, the pairing engine that matches two
// waiting tickets into a shared room, and the timeout supervisor
// that expires tickets no opponent ever arrived for.
package matchmaking

import "time"

// The nightly matchmaking window, in local hours: [21:00, 24:00).
const (
	windowOpenHour  = 21
	windowCloseHour = 24
	windowDuration  = time.Duration(windowCloseHour-windowOpenHour) * time.Hour
)

// IsWindowOpen reports whether now falls inside the nightly
// matchmaking window.  Pure; the boundary is crisp: 20:59:59 is
// closed, 21:00:00 is open, 00:00:00 is closed again.
func IsWindowOpen(now time.Time) bool {
	h := now.Hour()
	return h >= windowOpenHour && h < windowCloseHour
}

// WindowBounds returns the boundaries of the matchmaking window
// relative to now, for display purposes: the window opening at 21:00
// of now's calendar day and closing at the following midnight.
// Because the window ends exactly at midnight, the next future
// occurrence of 21:00 always lies on the same calendar day as now,
// whether the window is currently open (closesAt is the upcoming
// midnight) or closed (opensAt is still ahead).
func WindowBounds(now time.Time) (opensAt, closesAt time.Time) {
	y, m, d := now.Date()
	opensAt = time.Date(y, m, d, windowOpenHour, 0, 0, 0, now.Location())
	return opensAt, opensAt.Add(windowDuration)
}
