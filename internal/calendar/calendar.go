// Package calendar decides which calendar days count as working days. The
// excluded-weekday set and the holiday list are deployment configuration, not
// code: facilities disagree on whether Saturday is a working day.
package calendar

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const dateLayout = "2006-01-02"

type Rule struct {
	excluded map[time.Weekday]bool
	holidays map[string]bool
}

type calendarFile struct {
	ExcludedWeekdays []string `yaml:"excluded_weekdays"`
	Holidays         []string `yaml:"holidays"`
}

// Default excludes Saturday and Sunday and knows no holidays.
func Default() *Rule {
	return New([]time.Weekday{time.Saturday, time.Sunday}, nil)
}

func New(excludedWeekdays []time.Weekday, holidays []time.Time) *Rule {
	rule := &Rule{
		excluded: make(map[time.Weekday]bool),
		holidays: make(map[string]bool),
	}
	for _, day := range excludedWeekdays {
		rule.excluded[day] = true
	}
	for _, holiday := range holidays {
		rule.holidays[holiday.Format(dateLayout)] = true
	}
	return rule
}

// LoadFile reads a YAML calendar file:
//
//	excluded_weekdays: [saturday, sunday]
//	holidays:
//	  - 2026-12-25
//	  - 2027-01-01
func LoadFile(path string) (*Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read calendar file: %w", err)
	}

	var cal calendarFile
	if err := yaml.Unmarshal(data, &cal); err != nil {
		return nil, fmt.Errorf("parse calendar file: %w", err)
	}

	rule := &Rule{
		excluded: make(map[time.Weekday]bool),
		holidays: make(map[string]bool),
	}
	for _, name := range cal.ExcludedWeekdays {
		day, err := parseWeekday(name)
		if err != nil {
			return nil, err
		}
		rule.excluded[day] = true
	}
	for _, date := range cal.Holidays {
		parsed, err := time.Parse(dateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("parse holiday %q: %w", date, err)
		}
		rule.holidays[parsed.Format(dateLayout)] = true
	}
	return rule, nil
}

// WorkingDay reports whether t's calendar day counts toward expected
// attendance.
func (r *Rule) WorkingDay(t time.Time) bool {
	if r.excluded[t.Weekday()] {
		return false
	}
	return !r.holidays[t.Format(dateLayout)]
}

func parseWeekday(name string) (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sunday":
		return time.Sunday, nil
	case "monday":
		return time.Monday, nil
	case "tuesday":
		return time.Tuesday, nil
	case "wednesday":
		return time.Wednesday, nil
	case "thursday":
		return time.Thursday, nil
	case "friday":
		return time.Friday, nil
	case "saturday":
		return time.Saturday, nil
	}
	return 0, fmt.Errorf("unknown weekday %q", name)
}
