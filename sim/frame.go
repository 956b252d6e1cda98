// Defines the Frame struct that models a single transmittable unit in the
// simulation. Tracks arrival, transmission start, and completion timestamps.

package sim

import "fmt"

// timeUnset marks a timestamp field that has not been assigned yet.
// Simulated time is never negative, so -1 is unambiguous.
const timeUnset = -1.0

// Frame models one Ethernet frame moving through a CBS queue.
// It is created by the traffic generator, mutated only by the node that
// transmits it, and frozen once it completes or is dropped.
type Frame struct {
	ID          int64  // monotonic identifier across the whole run
	Source      string // originating node
	Destination string // target node (informational; no forwarding here)
	Size        int    // bytes on the wire
	Priority    int    // 802.1Q priority, 0-7

	ArrivalTime       float64 // seconds, set at creation
	TransmissionStart float64 // seconds, set by the node; timeUnset until then
	CompletionTime    float64 // seconds, set by the node; timeUnset until then

	Dropped bool
}

// NewFrame returns a frame with unset transmission timestamps.
func NewFrame(id int64, source, destination string, size, priority int, arrival float64) *Frame {
	return &Frame{
		ID:                id,
		Source:            source,
		Destination:       destination,
		Size:              size,
		Priority:          priority,
		ArrivalTime:       arrival,
		TransmissionStart: timeUnset,
		CompletionTime:    timeUnset,
	}
}

// Completed reports whether the frame finished transmission.
func (f *Frame) Completed() bool {
	return f.CompletionTime != timeUnset
}

// Latency returns completion minus arrival time. Only meaningful for
// completed frames.
func (f *Frame) Latency() float64 {
	return f.CompletionTime - f.ArrivalTime
}

func (f *Frame) String() string {
	return fmt.Sprintf("Frame(ID: %d, prio: %d, size: %dB, arrival: %.6fs, dropped: %v)",
		f.ID, f.Priority, f.Size, f.ArrivalTime, f.Dropped)
}
