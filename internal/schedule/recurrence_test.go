package schedule

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/asset-maintenance/internal/model"
)

func mustDate(t *testing.T, s string) model.Date {
	t.Helper()
	d, err := model.ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestNextDate(t *testing.T) {
	tests := []struct {
		anchor    string
		unit      model.FrequencyType
		magnitude int
		want      string
	}{
		{"2024-03-10", model.FrequencyDays, 10, "2024-03-20"},
		{"2024-12-25", model.FrequencyDays, 10, "2025-01-04"},
		{"2024-03-10", model.FrequencyWeeks, 2, "2024-03-24"},
		{"2024-03-10", model.FrequencyKilometers, 120, "2024-03-13"},
		{"2024-03-10", model.FrequencyKilometers, 50, "2024-03-11"},
		{"2024-03-10", model.FrequencyKilometers, 1, "2024-03-11"},
		{"2024-03-10", model.FrequencyHours, 10, "2024-03-12"},
		{"2024-03-10", model.FrequencyHours, 8, "2024-03-11"},
		{"2024-03-10", model.FrequencyMonths, 1, "2024-04-10"},
		{"2024-03-10", model.FrequencyMonths, 12, "2025-03-10"},
		// month-end overflow clamps to the last day of the target month
		{"2024-01-31", model.FrequencyMonths, 1, "2024-02-29"},
		{"2023-01-31", model.FrequencyMonths, 1, "2023-02-28"},
		{"2024-03-31", model.FrequencyMonths, 1, "2024-04-30"},
		{"2024-08-31", model.FrequencyMonths, 6, "2025-02-28"},
	}
	for _, tt := range tests {
		t.Run(tt.anchor+"+"+string(tt.unit), func(t *testing.T) {
			got, err := NextDate(mustDate(t, tt.anchor), tt.unit, tt.magnitude)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestNextDateStrictlyAfterAnchorAndDeterministic(t *testing.T) {
	anchors := []string{"2024-01-31", "2024-02-29", "2023-12-31", "2025-06-15"}
	for _, a := range anchors {
		anchor := mustDate(t, a)
		for _, unit := range model.FrequencyTypes {
			for _, mag := range []int{1, 2, 7, 49, 51, 365} {
				first, err := NextDate(anchor, unit, mag)
				require.NoError(t, err)
				second, err := NextDate(anchor, unit, mag)
				require.NoError(t, err)
				assert.True(t, first.After(anchor), "%s %d %s", a, mag, unit)
				assert.Equal(t, first.String(), second.String())
			}
		}
	}
}

func TestNextDateRejectsBadInput(t *testing.T) {
	anchor := mustDate(t, "2024-03-10")

	_, err := NextDate(anchor, model.FrequencyDays, 0)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = NextDate(anchor, model.FrequencyWeeks, -3)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NextDate(anchor, model.FrequencyType("fortnights"), 1)
	assert.ErrorIs(t, err, ErrUnknownFrequency)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRecurrenceDefaultsToToday(t *testing.T) {
	r := Recurrence{Clock: FixedClock{Date: mustDate(t, "2024-02-20")}}

	got, err := r.Next(nil, model.FrequencyDays, 10)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", got.String())

	anchor := mustDate(t, "2024-01-01")
	got, err = r.Next(&anchor, model.FrequencyDays, 10)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-11", got.String())
}

func TestNextDateBoundsMagnitude(t *testing.T) {
	anchor := mustDate(t, "2024-03-10")

	for _, unit := range model.FrequencyTypes {
		for _, n := range []int{MaxFrequencyValue + 1, math.MaxInt32, math.MaxInt} {
			_, err := NextDate(anchor, unit, n)
			assert.ErrorIs(t, err, ErrValidation, "%s %d", unit, n)
		}
	}

	for _, unit := range []model.FrequencyType{model.FrequencyDays, model.FrequencyWeeks, model.FrequencyKilometers, model.FrequencyHours} {
		next, err := NextDate(anchor, unit, MaxFrequencyValue)
		require.NoError(t, err, unit)
		assert.True(t, next.After(anchor), unit)
	}
}

func TestNextDateStaysWritable(t *testing.T) {
	_, err := NextDate(mustDate(t, "2024-03-10"), model.FrequencyMonths, MaxFrequencyValue)
	assert.ErrorIs(t, err, ErrValidation, "past year 9999")

	_, err = NextDate(mustDate(t, "9999-12-31"), model.FrequencyDays, 1)
	assert.ErrorIs(t, err, ErrValidation)

	next, err := NextDate(mustDate(t, "9999-12-30"), model.FrequencyDays, 1)
	require.NoError(t, err)
	back, err := model.ParseDate(next.String())
	require.NoError(t, err)
	assert.True(t, back.Equal(next))
}
