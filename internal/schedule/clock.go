package schedule

import (
	"time"

	"github.com/iliyamo/asset-maintenance/internal/model"
)

// Clock supplies "today" to the engine.  Recurrence anchoring and overdue
// detection both read it, so tests pin it with FixedClock.
type Clock interface {
	Today() model.Date
}

// SystemClock reads the wall clock.  A nil Location means UTC.
type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Today() model.Date {
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	return model.DateOf(time.Now().In(loc))
}

// FixedClock always reports the same date.
type FixedClock struct {
	Date model.Date
}

func (c FixedClock) Today() model.Date { return c.Date }
