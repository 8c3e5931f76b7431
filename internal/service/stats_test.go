package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmployeeStatsMonthToDate(t *testing.T) {
	f := newFixture(testConfig())
	employee := f.addEmployee(true)

	// March 2026 starts on a Sunday; Mar 2-6 are the first working week.
	for day := 2; day <= 4; day++ {
		opened := time.Date(2026, 3, day, 8, 0, 0, 0, time.UTC)
		session := f.openSessionAt(t, employee.ID, opened)
		_, err := f.repo.CloseSession(context.Background(), session.ID, opened.Add(9*time.Hour))
		require.NoError(t, err)
	}

	f.at(time.Date(2026, 3, 6, 12, 0, 0, 0, time.UTC))
	resp, err := f.svc.EmployeeStats(context.Background(), employee.ID)
	require.NoError(t, err)

	assert.Equal(t, employee.ID, resp.EmployeeID)
	assert.Equal(t, 5, resp.WorkingDays)
	assert.Equal(t, 3, resp.PresentDays)
	assert.Equal(t, 2, resp.AbsentDays)
}

func TestEmployeeStatsIncludesSessionOpenedNow(t *testing.T) {
	f := newFixture(testConfig())
	employee := f.addEmployee(true)

	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	f.openSessionAt(t, employee.ID, now)

	f.at(now)
	resp, err := f.svc.EmployeeStats(context.Background(), employee.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, resp.PresentDays)
	assert.Equal(t, 0, resp.AbsentDays)
}

func TestEmployeeStatsUnknownEmployee(t *testing.T) {
	f := newFixture(testConfig())

	_, err := f.svc.EmployeeStats(context.Background(), "missing-id")
	assert.ErrorIs(t, err, ErrEmployeeNotFound)
}

func TestOrgStatsCountsAllEmployees(t *testing.T) {
	f := newFixture(testConfig())
	a := f.addEmployee(true)
	b := f.addEmployee(true)

	opened := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	session := f.openSessionAt(t, a.ID, opened)
	_, err := f.repo.CloseSession(context.Background(), session.ID, opened.Add(8*time.Hour))
	require.NoError(t, err)
	_ = b

	f.at(time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC))
	resp, err := f.svc.OrgStats(context.Background())
	require.NoError(t, err)

	// Two working days so far, two employees: four expected attendances,
	// one present.
	assert.Equal(t, 2, resp.WorkingDays)
	assert.Equal(t, 1, resp.PresentDays)
	assert.Equal(t, 3, resp.AbsentDays)
}
