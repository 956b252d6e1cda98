// Implements the Credit-Based Shaper queue of IEEE 802.1Qav: a FIFO frame
// buffer gated by a credit counter that accrues at idleSlope while waiting
// and drains at sendSlope while the link transmits.

package sim

// DefaultQueueCapacity bounds the number of frames a CBS queue buffers
// before arrivals are dropped.
const DefaultQueueCapacity = 100

// CBSQueue is the per-priority credit state machine plus its frame buffer.
// It is owned by exactly one NetworkNode; all mutation goes through that
// node's event handling.
type CBSQueue struct {
	Priority  int
	IdleSlope float64 // bps, credit gain while queued frames wait
	SendSlope float64 // bps, negative; credit drain while transmitting
	HiCredit  float64 // bits, upper clamp
	LoCredit  float64 // bits, lower clamp

	credit     float64
	frames     []*Frame
	lastUpdate float64
	capacity   int
}

// NewCBSQueue validates the CBS parameters against the link speed and
// derives the slopes and the symmetric credit bounds
// (hi = maxFrameSize*8*idleSlope/linkSpeed, lo = -hi).
func NewCBSQueue(priority int, idleSlopeMbps, linkSpeedBps float64, maxFrameSize, capacity int) (*CBSQueue, error) {
	if priority < 0 || priority > 7 {
		return nil, errConfigf("priority %d outside 0-7", priority)
	}
	if idleSlopeMbps <= 0 {
		return nil, errConfigf("idle slope %.3f Mbps must be positive", idleSlopeMbps)
	}
	idleSlope := idleSlopeMbps * 1e6
	if idleSlope > linkSpeedBps {
		return nil, errConfigf("idle slope %.3f Mbps exceeds link speed %.3f Mbps",
			idleSlopeMbps, linkSpeedBps/1e6)
	}
	if maxFrameSize <= 0 {
		return nil, errConfigf("max frame size %d must be positive", maxFrameSize)
	}
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}

	hiCredit := float64(maxFrameSize) * 8 * idleSlope / linkSpeedBps
	return &CBSQueue{
		Priority:  priority,
		IdleSlope: idleSlope,
		SendSlope: idleSlope - linkSpeedBps,
		HiCredit:  hiCredit,
		LoCredit:  -hiCredit,
		capacity:  capacity,
	}, nil
}

// SetCreditBounds overrides the derived clamps with values supplied by an
// external CBS calculator. Validated here rather than trusted.
func (q *CBSQueue) SetCreditBounds(hi, lo float64) error {
	if hi <= 0 {
		return errConfigf("hi credit %.3f must be positive", hi)
	}
	if lo >= 0 {
		return errConfigf("lo credit %.3f must be negative", lo)
	}
	q.HiCredit = hi
	q.LoCredit = lo
	return nil
}

// UpdateCredit advances the credit counter to now.
// An empty queue resets its credit to zero; this matches the reference
// switch behavior the reported numbers were measured against, and is kept
// even though 802.1Qav does not strictly require it.
func (q *CBSQueue) UpdateCredit(now float64, transmitting bool) {
	dt := now - q.lastUpdate
	q.lastUpdate = now

	switch {
	case len(q.frames) == 0:
		q.credit = 0
	case transmitting:
		q.credit = max(q.LoCredit, q.credit+q.SendSlope*dt)
	default:
		q.credit = min(q.HiCredit, q.credit+q.IdleSlope*dt)
	}
}

// Eligible reports whether the queue may contend for the link: it holds at
// least one frame and its credit is non-negative.
func (q *CBSQueue) Eligible() bool {
	return len(q.frames) > 0 && q.credit >= 0
}

// Enqueue appends a frame, or returns ErrQueueFull at capacity.
func (q *CBSQueue) Enqueue(f *Frame) error {
	if len(q.frames) >= q.capacity {
		return ErrQueueFull
	}
	q.frames = append(q.frames, f)
	return nil
}

// Dequeue pops the head frame. Only the owning node calls this, at
// transmission start. Returns nil when empty.
func (q *CBSQueue) Dequeue() *Frame {
	if len(q.frames) == 0 {
		return nil
	}
	f := q.frames[0]
	q.frames = q.frames[1:]
	return f
}

// Credit returns the current credit value in bits.
func (q *CBSQueue) Credit() float64 {
	return q.credit
}

// Len returns the number of buffered frames.
func (q *CBSQueue) Len() int {
	return len(q.frames)
}
