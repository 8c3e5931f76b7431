package models

import (
	"fmt"
	"time"
)

type Session struct {
	ID          string      `json:"id"`
	EmployeeID  string      `json:"employee_id"`
	OpenedAt    time.Time   `json:"opened_at"`
	ClosedAt    *time.Time  `json:"closed_at,omitempty"`
	Punctuality Punctuality `json:"punctuality,omitempty"`
}

// Open reports whether the session has not been closed yet.
func (s *Session) Open() bool {
	return s.ClosedAt == nil
}

type Punctuality string

const (
	PunctualityEarly  Punctuality = "early"
	PunctualityOnTime Punctuality = "on_time"
	PunctualityLate   Punctuality = "late"
)

// DayClock is a time of day expressed as minutes since midnight, used for
// facility thresholds (work start, late cutoff, closing time).
type DayClock int

func NewDayClock(hour, minute int) DayClock {
	return DayClock(hour*60 + minute)
}

// ParseDayClock parses a "HH:MM" string into a DayClock.
func ParseDayClock(s string) (DayClock, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(s, "%d:%d", &hour, &minute); err != nil {
		return 0, fmt.Errorf("invalid clock value %q: %w", s, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	return NewDayClock(hour, minute), nil
}

// At anchors the clock value on the calendar day of t, in t's location.
func (d DayClock) At(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), int(d)/60, int(d)%60, 0, 0, t.Location())
}

// Classify maps a check-in instant to a punctuality bucket. Both thresholds
// are inclusive on the on-time side: start <= t <= lateCutoff is on time.
func Classify(t time.Time, start, lateCutoff DayClock) Punctuality {
	switch {
	case t.Before(start.At(t)):
		return PunctualityEarly
	case t.After(lateCutoff.At(t)):
		return PunctualityLate
	default:
		return PunctualityOnTime
	}
}
