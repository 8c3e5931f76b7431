// Package stats derives month-to-date attendance figures from raw session
// history. It is a pure computation: no caching, no incremental state, every
// call recomputes from the full session set it is given.
package stats

import (
	"time"

	"github.com/vericlock-systems/vericlock/internal/calendar"
	"github.com/vericlock-systems/vericlock/internal/models"
)

type Summary struct {
	WorkingDays int
	PresentDays int
	Absent      int
}

// MonthToDate summarizes attendance from the 1st of now's month through now,
// inclusive. employeeCount scales the expected presence for an org-wide view;
// pass 1 for a single employee's summary. Sessions opened outside the window
// are ignored, so callers may pass a wider list than strictly needed.
func MonthToDate(sessions []*models.Session, now time.Time, rule *calendar.Rule, employeeCount int) Summary {
	if employeeCount < 1 {
		employeeCount = 1
	}

	loc := now.Location()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)

	workingDays := 0
	for day := monthStart; !day.After(now); day = day.AddDate(0, 0, 1) {
		if rule.WorkingDay(day) {
			workingDays++
		}
	}

	nowDate := dateOf(now)
	present := make(map[[2]string]bool)
	for _, session := range sessions {
		opened := session.OpenedAt.In(loc)
		if opened.Before(monthStart) || dateOf(opened) > nowDate {
			continue
		}
		present[[2]string{session.EmployeeID, dateOf(opened)}] = true
	}

	absent := workingDays*employeeCount - len(present)
	if absent < 0 {
		absent = 0
	}

	return Summary{
		WorkingDays: workingDays,
		PresentDays: len(present),
		Absent:      absent,
	}
}

func dateOf(t time.Time) string {
	return t.Format("2006-01-02")
}
