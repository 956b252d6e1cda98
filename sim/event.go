package sim

import "github.com/sirupsen/logrus"

// Event defines the interface for all simulation events.
// Each event carries a Timestamp (seconds of simulated time) and an
// Execute method that advances simulation state when invoked.
type Event interface {
	Timestamp() float64
	Execute(*Simulator) error
}

// arrivalEvent represents a frame arriving at its source node's egress
// queues.
type arrivalEvent struct {
	time  float64
	frame *Frame
}

func (e *arrivalEvent) Timestamp() float64 { return e.time }

// Execute enqueues the frame and, if the node's link is idle, starts the
// next eligible transmission immediately.
func (e *arrivalEvent) Execute(sim *Simulator) error {
	logrus.Debugf("<< Arrival: frame %d (prio %d) at %.6fs", e.frame.ID, e.frame.Priority, e.time)

	node, ok := sim.nodes[e.frame.Source]
	if !ok {
		return errUnknownNodef(e.frame.Source)
	}

	if err := node.EnqueueFrame(e.frame); err != nil {
		// Queue at capacity: the frame is dropped, recorded, and the
		// simulation continues.
		e.frame.Dropped = true
		node.framesDropped++
		sim.results.recordFrame(e.frame)
		logrus.Warnf("frame %d dropped at node %s: %v", e.frame.ID, node.ID, err)
		return nil
	}

	if !node.transmitting {
		return sim.startNextTransmission(node, e.time)
	}
	return nil
}

// departureEvent represents the completion of the in-flight transmission
// on a node's link.
type departureEvent struct {
	time   float64
	nodeID string
}

func (e *departureEvent) Timestamp() float64 { return e.time }

// Execute finishes the current transmission, records the frame, and keeps
// the link busy while any queue remains eligible (work-conserving).
func (e *departureEvent) Execute(sim *Simulator) error {
	node, ok := sim.nodes[e.nodeID]
	if !ok {
		return errUnknownNodef(e.nodeID)
	}

	frame := node.CompleteTransmission(e.time)
	logrus.Debugf(">> Departure: frame %d at %.6fs (latency %.6fs)", frame.ID, e.time, frame.Latency())
	sim.results.recordFrame(frame)

	return sim.startNextTransmission(node, e.time)
}

// measurementEvent snapshots per-node counters and utilization.
type measurementEvent struct {
	time float64
}

func (e *measurementEvent) Timestamp() float64 { return e.time }

func (e *measurementEvent) Execute(sim *Simulator) error {
	snap := Snapshot{Time: e.time, Nodes: make(map[string]NodeSnapshot, len(sim.nodes))}
	for id, node := range sim.nodes {
		snap.Nodes[id] = NodeSnapshot{
			FramesTransmitted: node.framesTransmitted,
			FramesDropped:     node.framesDropped,
			Utilization:       node.Utilization(e.time),
		}
	}
	sim.results.Snapshots = append(sim.results.Snapshots, snap)
	return nil
}
