// NetworkNode models one egress link: a set of per-priority CBS queues
// competing for a single transmitter.

package sim

import (
	"math"
	"sort"

	"github.com/sirupsen/logrus"
)

// NetworkNode owns one CBS queue per configured priority plus the
// currently-transmitting frame state.
type NetworkNode struct {
	ID           string
	LinkSpeedBps float64

	queues          map[int]*CBSQueue
	transmitting    bool
	current         *Frame
	transmissionEnd float64

	// counters feeding statistics snapshots and the jitter series
	framesTransmitted int
	framesDropped     int
	bytesTransmitted  int64
	latencySum        float64
	maxLatency        float64
	lastLatency       float64
	hasLastLatency    bool
	jitterSum         float64
	jitterCount       int
	maxJitter         float64
}

// NewNetworkNode creates a node with no queues configured.
func NewNetworkNode(id string, linkSpeedMbps float64) (*NetworkNode, error) {
	if linkSpeedMbps <= 0 {
		return nil, errConfigf("link speed %.3f Mbps must be positive", linkSpeedMbps)
	}
	return &NetworkNode{
		ID:           id,
		LinkSpeedBps: linkSpeedMbps * 1e6,
		queues:       make(map[int]*CBSQueue),
	}, nil
}

// ConfigureCBS installs a CBS queue for the given priority. Reconfiguring
// an already-configured priority is rejected.
func (n *NetworkNode) ConfigureCBS(priority int, idleSlopeMbps float64, maxFrameSize, capacity int) error {
	if _, exists := n.queues[priority]; exists {
		return errConfigf("node %s: priority %d already configured", n.ID, priority)
	}
	q, err := NewCBSQueue(priority, idleSlopeMbps, n.LinkSpeedBps, maxFrameSize, capacity)
	if err != nil {
		return err
	}
	n.queues[priority] = q
	logrus.Infof("node %s: CBS configured for priority %d (idleSlope=%.0fbps hiCredit=%.1fb)",
		n.ID, priority, q.IdleSlope, q.HiCredit)
	return nil
}

// Queue returns the CBS queue for a priority, or nil if none is configured.
func (n *NetworkNode) Queue(priority int) *CBSQueue {
	return n.queues[priority]
}

// EnqueueFrame routes the frame into the queue matching its priority.
// ErrQueueFull propagates so the caller can record the drop; a frame for
// an unconfigured priority is likewise a drop, not a fatal error.
func (n *NetworkNode) EnqueueFrame(f *Frame) error {
	q, ok := n.queues[f.Priority]
	if !ok {
		return errConfigf("node %s has no CBS queue for priority %d", n.ID, f.Priority)
	}
	return q.Enqueue(f)
}

// SelectNextFrame brings every queue's credit up to now, then dequeues the
// head of the highest-priority eligible queue. Returns nil when no queue
// is eligible.
func (n *NetworkNode) SelectNextFrame(now float64) *Frame {
	// Deterministic iteration order; map order would still pick the same
	// queue (one queue per priority) but keeps credit-update sequencing
	// reproducible for tests that inspect intermediate state.
	prios := make([]int, 0, len(n.queues))
	for p := range n.queues {
		prios = append(prios, p)
	}
	sort.Ints(prios)

	var selected *CBSQueue
	for _, p := range prios {
		q := n.queues[p]
		q.UpdateCredit(now, n.transmitting)
		if q.Eligible() && (selected == nil || q.Priority > selected.Priority) {
			selected = q
		}
	}
	if selected == nil {
		return nil
	}
	return selected.Dequeue()
}

// StartTransmission puts the frame on the wire and returns its scheduled
// completion time.
func (n *NetworkNode) StartTransmission(f *Frame, now float64) float64 {
	duration := float64(f.Size) * 8 / n.LinkSpeedBps
	n.transmitting = true
	n.current = f
	n.transmissionEnd = now + duration
	f.TransmissionStart = now
	return n.transmissionEnd
}

// CompleteTransmission finishes the in-flight frame, updates the node
// counters and the sequential-latency-delta jitter series, and frees the
// link.
func (n *NetworkNode) CompleteTransmission(now float64) *Frame {
	f := n.current
	f.CompletionTime = now

	n.framesTransmitted++
	n.bytesTransmitted += int64(f.Size)

	latency := f.Latency()
	n.latencySum += latency
	n.maxLatency = math.Max(n.maxLatency, latency)

	if n.hasLastLatency {
		delta := math.Abs(latency - n.lastLatency)
		n.jitterSum += delta
		n.jitterCount++
		n.maxJitter = math.Max(n.maxJitter, delta)
	}
	n.lastLatency = latency
	n.hasLastLatency = true

	n.transmitting = false
	n.current = nil
	n.transmissionEnd = 0
	return f
}

// Transmitting reports whether a frame is currently on the wire.
func (n *NetworkNode) Transmitting() bool {
	return n.transmitting
}

// Utilization returns the fraction of link capacity consumed up to now.
func (n *NetworkNode) Utilization(now float64) float64 {
	if now <= 0 {
		return 0
	}
	return float64(n.bytesTransmitted) * 8 / (n.LinkSpeedBps * now)
}
