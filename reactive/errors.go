package reactive

import (
	"errors"
	"fmt"
)

// Causes wrapped by InvalidSelectionError and slot registration errors.
var (
	// ErrUnknownSignal is returned when an event names a signal the group
	// does not declare.
	ErrUnknownSignal = errors.New("unknown signal")

	// ErrOutOfDomain is returned when a value is not in the signal's domain.
	ErrOutOfDomain = errors.New("value outside signal domain")

	// ErrDuplicateSlot is returned when a slot name is registered twice.
	ErrDuplicateSlot = errors.New("duplicate slot")

	// ErrSlotFailed is returned when a slot function panics or errors during
	// recompute; the event is rolled back.
	ErrSlotFailed = errors.New("slot recompute failed")
)

// InvalidSelectionError rejects a control event. The group's FilterState
// and slots are unchanged when it is returned.
type InvalidSelectionError struct {
	Group  string
	Signal string
	Value  string
	Err    error // ErrUnknownSignal or ErrOutOfDomain
}

func (e *InvalidSelectionError) Error() string {
	return fmt.Sprintf("%s: %s=%q: %v", e.Group, e.Signal, e.Value, e.Err)
}

func (e *InvalidSelectionError) Unwrap() error { return e.Err }
