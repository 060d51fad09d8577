package generic_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/generic"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func date(year int, month time.Month, day int) generic.TimePoint {
	return generic.NewTimePoint(year, month, day)
}

func rec(at generic.TimePoint, v int) generic.Effective[int] {
	return generic.Effective[int]{At: at, Value: v}
}

// =============================================================================
// EFFECTIVE SERIES
// =============================================================================

func TestEffectiveSeries_EmptyReturnsNone(t *testing.T) {
	series := generic.NewEffectiveSeries[int](nil)

	_, ok := series.ValueAt(date(2024, time.March, 1))
	assert.False(t, ok, "empty series has no value")
	assert.Equal(t, 0, series.Len())

	_, ok = series.Latest()
	assert.False(t, ok)
}

func TestEffectiveSeries_LastRecordNotAfterDateWins(t *testing.T) {
	// GIVEN: records inserted out of order
	series := generic.NewEffectiveSeries([]generic.Effective[int]{
		rec(date(2024, time.April, 1), 1800),
		rec(date(2024, time.January, 1), 1500),
	})

	// THEN: lookups resolve by effective date, not insertion order
	v, ok := series.ValueAt(date(2024, time.March, 1))
	require.True(t, ok)
	assert.Equal(t, 1500, v)

	v, ok = series.ValueAt(date(2024, time.April, 1))
	require.True(t, ok)
	assert.Equal(t, 1800, v, "record effective on the lookup date applies")

	v, ok = series.ValueAt(date(2030, time.January, 1))
	require.True(t, ok)
	assert.Equal(t, 1800, v)

	_, ok = series.ValueAt(date(2023, time.December, 31))
	assert.False(t, ok, "nothing in force before the first record")
}

func TestEffectiveSeries_SameDateLaterInsertWins(t *testing.T) {
	series := generic.NewEffectiveSeries([]generic.Effective[int]{
		rec(date(2024, time.January, 1), 100),
		rec(date(2024, time.February, 1), 200),
		rec(date(2024, time.February, 1), 250),
		rec(date(2024, time.January, 1), 150),
	})

	v, ok := series.ValueAt(date(2024, time.January, 15))
	require.True(t, ok)
	assert.Equal(t, 150, v)

	v, ok = series.ValueAt(date(2024, time.February, 1))
	require.True(t, ok)
	assert.Equal(t, 250, v)

	latest, ok := series.Latest()
	require.True(t, ok)
	assert.Equal(t, 250, latest)
}

func TestEffectiveSeries_LookupIsDeterministic(t *testing.T) {
	series := generic.NewEffectiveSeries([]generic.Effective[int]{
		rec(date(2024, time.January, 1), 1),
		rec(date(2024, time.June, 1), 2),
	})

	first, _ := series.ValueAt(date(2024, time.July, 1))
	for i := 0; i < 10; i++ {
		again, _ := series.ValueAt(date(2024, time.July, 1))
		assert.Equal(t, first, again)
	}
}

func TestEffectiveSeries_DoesNotAliasInput(t *testing.T) {
	input := []generic.Effective[int]{rec(date(2024, time.January, 1), 1)}
	series := generic.NewEffectiveSeries(input)

	input[0].Value = 99

	v, _ := series.ValueAt(date(2024, time.January, 1))
	assert.Equal(t, 1, v)
	assert.Equal(t, 1, series.Len())
}
