package schedule

import (
	"github.com/iliyamo/asset-maintenance/internal/model"
)

// Usage-rate heuristics that turn distance and running-time frequencies
// into calendar days.  They are fixed approximations, not measurements.
const (
	KilometersPerDay = 50
	HoursPerDay      = 8
)

// MaxFrequencyValue bounds a recurrence magnitude.  It keeps date
// arithmetic far from overflow and fits the INT column.
const MaxFrequencyValue = 100000

// maxYear is the last year a Date can be written and read back.
const maxYear = 9999

// NextDate returns the due date that follows anchor for a recurrence of
// magnitude units.  It is pure: the same inputs always give the same date,
// and for every valid input the result is strictly after anchor.
//
// Months are calendar months with the day clamped to the end of the target
// month (2024-01-31 + 1 month = 2024-02-29).  Kilometers and hours are
// converted to whole days with ceiling division.
func NextDate(anchor model.Date, unit model.FrequencyType, magnitude int) (model.Date, error) {
	if magnitude <= 0 {
		return model.Date{}, invalid("frequency_value must be greater than zero")
	}
	if magnitude > MaxFrequencyValue {
		return model.Date{}, invalid("frequency_value must be at most %d", MaxFrequencyValue)
	}
	var next model.Date
	switch unit {
	case model.FrequencyDays:
		next = anchor.AddDays(magnitude)
	case model.FrequencyWeeks:
		next = anchor.AddDays(magnitude * 7)
	case model.FrequencyMonths:
		next = anchor.AddMonths(magnitude)
	case model.FrequencyKilometers:
		next = anchor.AddDays(ceilDiv(magnitude, KilometersPerDay))
	case model.FrequencyHours:
		next = anchor.AddDays(ceilDiv(magnitude, HoursPerDay))
	default:
		return model.Date{}, ErrUnknownFrequency
	}
	if !next.After(anchor) || next.Time().Year() > maxYear {
		return model.Date{}, invalid("next due date after %s is out of range", anchor)
	}
	return next, nil
}

// Recurrence binds NextDate to a clock so a missing anchor means today.
type Recurrence struct {
	Clock Clock
}

// Next computes the next due date from anchor, or from today when anchor
// is nil.
func (r Recurrence) Next(anchor *model.Date, unit model.FrequencyType, magnitude int) (model.Date, error) {
	from := r.Clock.Today()
	if anchor != nil {
		from = *anchor
	}
	return NextDate(from, unit, magnitude)
}

func ceilDiv(n, d int) int {
	return (n + d - 1) / d
}
