// utils/dates.go
package utils

import (
	"fmt"
	"time"
)

func BeginningOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func SameDay(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// ParseClockTime converts a 24h "HH:MM" string into minutes since midnight.
func ParseClockTime(s string) (int, error) {
	var hour, min int
	if _, err := fmt.Sscanf(s, "%d:%d", &hour, &min); err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	if hour < 0 || hour > 23 || min < 0 || min > 59 {
		return 0, fmt.Errorf("invalid time %q: out of range", s)
	}
	return hour*60 + min, nil
}

// MinutesOfDay returns the wall-clock minutes since midnight of t.
func MinutesOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
