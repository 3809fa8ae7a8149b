package domain

import (
	"fmt"
	"time"
)

// FormatRemaining renders a countdown as mm:ss. Partial seconds round up so
// the display reads 00:01 until the step is actually over.
func FormatRemaining(d time.Duration) string {
	if d <= 0 {
		return "00:00"
	}
	secs := int((d + time.Second - 1) / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

// FormatDuration renders a duration as a compact h/m/s string for summaries.
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d / time.Hour)
	m := int(d/time.Minute) % 60
	s := int(d/time.Second) % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh%02dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm%02ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

// ProgressFraction returns how much of duration has been used, 0.0 to 1.0.
func ProgressFraction(remaining, duration time.Duration) float64 {
	if duration <= 0 {
		return 0
	}
	f := 1 - float64(remaining)/float64(duration)
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
