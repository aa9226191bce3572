package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestScheduleStartsAfterLeadTime(t *testing.T) {
	today := day(2025, 6, 1)

	dates := Schedule(today, 7, 4)

	require.NotEmpty(t, dates)
	assert.Equal(t, day(2025, 6, 8), dates[0])
	for i := 1; i < len(dates); i++ {
		assert.Equal(t, dates[i-1].AddDate(0, 0, 7), dates[i])
	}
}

func TestScheduleCappedAtWeeksAhead(t *testing.T) {
	today := day(2025, 6, 1)

	dates := Schedule(today, 7, 4)

	end := today.AddDate(0, 0, 4*7)
	for _, d := range dates {
		assert.False(t, d.After(end), "date %v beyond window end %v", d, end)
	}
	// 8, 15, 22, 29 June
	assert.Len(t, dates, 4)
}

func TestScheduleZeroLeadTimeIncludesToday(t *testing.T) {
	today := day(2025, 6, 1)

	dates := Schedule(today, 0, 2)

	require.NotEmpty(t, dates)
	assert.Equal(t, today, dates[0])
	assert.Len(t, dates, 3)
}

func TestScheduleLeadTimeBeyondWindow(t *testing.T) {
	today := day(2025, 6, 1)

	dates := Schedule(today, 30, 2)

	assert.Empty(t, dates)
}
