package schedule

import (
	"errors"
	"fmt"
)

// Error taxonomy of the scheduling engine.  Handlers translate these with
// errors.Is; anything else coming out of the service is a store failure.
var (
	// ErrNotFound: the schedule, asset or type does not exist for the user.
	ErrNotFound = errors.New("not found")
	// ErrInvalidReference: a referenced asset, type or record fails the
	// ownership check during create/update/complete.
	ErrInvalidReference = errors.New("invalid reference")
	// ErrValidation: malformed input, rejected before any store access.
	ErrValidation = errors.New("validation failed")
	// ErrScheduleCompleted: the schedule is already completed and cannot
	// be edited or completed again.
	ErrScheduleCompleted = errors.New("schedule already completed")
	// ErrUnknownFrequency is returned by NextDate for a unit outside the enum.
	ErrUnknownFrequency = fmt.Errorf("%w: unknown frequency type", ErrValidation)
)

func notFound(entity string) error {
	return fmt.Errorf("%s %w", entity, ErrNotFound)
}

func invalidReference(entity string) error {
	return fmt.Errorf("%w: %s not found or not owned by user", ErrInvalidReference, entity)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
