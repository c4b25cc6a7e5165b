package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimeStringFromString(t *testing.T) {
	ts, err := NewTimeStringFromString("09:30")
	require.NoError(t, err)
	assert.Equal(t, "09:30", ts.String())

	_, err = NewTimeStringFromString("9:30am")
	assert.ErrorIs(t, err, ErrInvalidTimeString)

	_, err = NewTimeStringFromString("25:00")
	assert.ErrorIs(t, err, ErrInvalidTimeString)
}

func TestTimeString_Minutes(t *testing.T) {
	ts := TimeString("10:45")
	minutes, err := ts.Minutes()
	require.NoError(t, err)
	assert.Equal(t, 645, minutes)
}

func TestTimeString_AddMinutes(t *testing.T) {
	ts := TimeString("09:00")

	result, err := ts.AddMinutes(75)
	require.NoError(t, err)
	assert.Equal(t, TimeString("10:15"), result)

	// 24:00 нормализуется в конец суток
	endOfDay, err := TimeString("23:00").AddMinutes(60)
	require.NoError(t, err)
	assert.Equal(t, TimeString("23:59"), endOfDay)

	_, err = TimeString("23:30").AddMinutes(45)
	assert.ErrorIs(t, err, ErrTimeOutOfRange)
}

func TestTimeString_Comparisons(t *testing.T) {
	assert.True(t, TimeString("09:00").IsBefore(TimeString("10:00")))
	assert.False(t, TimeString("10:00").IsBefore(TimeString("10:00")))
	assert.True(t, TimeString("18:00").IsAfter(TimeString("17:45")))
	assert.False(t, TimeString("17:45").IsAfter(TimeString("17:45")))
}

func TestTimeString_OnDate(t *testing.T) {
	madrid, err := time.LoadLocation("Europe/Madrid")
	require.NoError(t, err)

	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	at, err := TimeString("09:30").OnDate(date, madrid)
	require.NoError(t, err)

	assert.Equal(t, 2026, at.Year())
	assert.Equal(t, time.March, at.Month())
	assert.Equal(t, 10, at.Day())
	assert.Equal(t, 9, at.Hour())
	assert.Equal(t, 30, at.Minute())
	assert.Equal(t, madrid, at.Location())
}
