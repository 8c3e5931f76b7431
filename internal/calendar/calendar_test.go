package calendar

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRule(t *testing.T) {
	rule := Default()

	monday := time.Date(2026, time.March, 2, 12, 0, 0, 0, time.UTC)
	saturday := time.Date(2026, time.March, 7, 12, 0, 0, 0, time.UTC)
	sunday := time.Date(2026, time.March, 8, 12, 0, 0, 0, time.UTC)

	assert.True(t, rule.WorkingDay(monday))
	assert.False(t, rule.WorkingDay(saturday))
	assert.False(t, rule.WorkingDay(sunday))
}

func TestSaturdayWorkingVariant(t *testing.T) {
	// Some facilities run Saturdays; only Sunday is excluded.
	rule := New([]time.Weekday{time.Sunday}, nil)

	saturday := time.Date(2026, time.March, 7, 12, 0, 0, 0, time.UTC)
	assert.True(t, rule.WorkingDay(saturday))
}

func TestHolidays(t *testing.T) {
	christmas := time.Date(2026, time.December, 25, 0, 0, 0, 0, time.UTC)
	rule := New([]time.Weekday{time.Sunday}, []time.Time{christmas})

	assert.False(t, rule.WorkingDay(christmas))
	assert.True(t, rule.WorkingDay(christmas.AddDate(0, 0, -1)))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calendar.yaml")
	content := `excluded_weekdays: [saturday, sunday]
holidays:
  - 2026-12-25
  - 2027-01-01
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	rule, err := LoadFile(path)
	require.NoError(t, err)

	assert.False(t, rule.WorkingDay(time.Date(2026, time.December, 25, 8, 0, 0, 0, time.UTC)))
	assert.False(t, rule.WorkingDay(time.Date(2026, time.March, 7, 8, 0, 0, 0, time.UTC)))
	assert.True(t, rule.WorkingDay(time.Date(2026, time.March, 9, 8, 0, 0, 0, time.UTC)))
}

func TestLoadFileBadWeekday(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calendar.yaml")
	require.NoError(t, os.WriteFile(path, []byte("excluded_weekdays: [caturday]\n"), 0o644))

	_, err := LoadFile(path)
	assert.Error(t, err)
}
