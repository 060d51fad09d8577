package generic_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/generic"
)

var colombo = time.FixedZone("+0530", 5*3600+1800)

func TestParseDate(t *testing.T) {
	tp, err := generic.ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, generic.NewTimePoint(2024, time.February, 29), tp)
	assert.Equal(t, "2024-02-29", tp.String())

	for _, bad := range []string{"", "2023-02-29", "29/02/2024", "2024-2-9"} {
		_, err := generic.ParseDate(bad)
		assert.ErrorIs(t, err, generic.ErrInvalidDate, bad)
	}
}

func TestFromUnixMilli_UsesLocation(t *testing.T) {
	// 2023-12-31T18:30:00Z is already 1 January in Colombo.
	const ms = 1704047400000

	assert.Equal(t, "2024-01-01", generic.FromUnixMilli(ms, colombo).String())
	assert.Equal(t, "2023-12-31", generic.FromUnixMilli(ms, time.UTC).String())

	day := generic.NewTimePoint(2024, time.January, 1)
	assert.Equal(t, int64(ms), day.UnixMilli(colombo))
}

func TestDateOf_IgnoresClock(t *testing.T) {
	late := time.Date(2024, time.March, 5, 23, 59, 0, 0, colombo)
	early := time.Date(2024, time.March, 5, 0, 1, 0, 0, time.UTC)

	assert.True(t, generic.DateOf(late).Equal(generic.DateOf(early)))
}

func TestTimePoint_Arithmetic(t *testing.T) {
	jan31 := generic.NewTimePoint(2024, time.January, 31)

	assert.Equal(t, "2024-02-01", jan31.AddDays(1).String())
	assert.Equal(t, "2024-03-01", generic.NewTimePoint(2024, time.February, 1).AddMonths(1).String())
	assert.Equal(t, "2024-02-29", generic.EndOfMonth(2024, time.February).String())
	assert.Equal(t, "2023-12-31", generic.EndOfMonth(2023, time.December).String())
	assert.True(t, jan31.BeforeOrEqual(jan31))
	assert.True(t, generic.TimePoint{}.IsZero())
}
