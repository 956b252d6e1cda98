package sim

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the simulator. Configuration problems are
// reported before a run starts; queue-full is recovered per frame and
// recorded as a drop; the remaining two indicate setup or programming
// bugs and abort the run.
var (
	// ErrInvalidConfiguration reports bad CBS or run parameters.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrUnknownNode reports an event that references a node the
	// simulator does not own.
	ErrUnknownNode = errors.New("unknown node")

	// ErrQueueFull reports an enqueue against a CBS queue at capacity.
	// The frame is dropped and counted, never transmitted.
	ErrQueueFull = errors.New("queue full")

	// ErrInvalidEventTime reports an attempt to schedule an event
	// earlier than the last popped event time.
	ErrInvalidEventTime = errors.New("invalid event time")
)

func errUnknownNodef(id string) error {
	return fmt.Errorf("%w: %q", ErrUnknownNode, id)
}

func errConfigf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfiguration, fmt.Sprintf(format, args...))
}

func errInvalidTimef(t, lastPopped float64) error {
	return fmt.Errorf("%w: %.9f is before last popped time %.9f", ErrInvalidEventTime, t, lastPopped)
}
