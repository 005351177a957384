package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDatesSortsAndNormalizes(t *testing.T) {
	dates, err := ParseDates([]string{"2025-06-02", "2025-06-01"})
	assert.NoError(t, err)
	assert.Len(t, dates, 2)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), dates[0])
	assert.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), dates[1])
}

func TestParseDatesRejectsEmpty(t *testing.T) {
	_, err := ParseDates(nil)
	assert.ErrorIs(t, err, ErrNoDates)
}

func TestParseDatesRejectsDuplicates(t *testing.T) {
	_, err := ParseDates([]string{"2025-06-01", "2025-06-01"})
	assert.ErrorIs(t, err, ErrDuplicateDates)
}

func TestParseDatesRejectsBadFormat(t *testing.T) {
	for _, bad := range []string{"01-06-2025", "2025/06/01", "2025-06-01T10:00:00Z", "yesterday"} {
		_, err := ParseDates([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestDateBounds(t *testing.T) {
	dates, _ := ParseDates([]string{"2025-07-03", "2025-07-01", "2025-07-02"})
	start, end := DateBounds(dates)
	assert.Equal(t, "2025-07-01", start.Format(DateLayout))
	assert.Equal(t, "2025-07-03", end.Format(DateLayout))
}

func TestMissingDates(t *testing.T) {
	want, _ := ParseDates([]string{"2025-07-01", "2025-07-02", "2025-07-03"})
	have, _ := ParseDates([]string{"2025-07-02"})
	missing := MissingDates(want, have)
	assert.Equal(t, []string{"2025-07-01", "2025-07-03"}, FormatDates(missing))

	assert.Nil(t, MissingDates(want, want))
}
