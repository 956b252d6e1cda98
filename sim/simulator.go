// sim/simulator.go
package sim

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Simulator is the core object that holds simulation time, the event
// scheduler, the node set, and the results accumulator. One Simulator
// owns one run; concurrent runs must each build their own.
type Simulator struct {
	clock     float64
	scheduler *EventScheduler
	nodes     map[string]*NetworkNode
	rng       *PartitionedRNG
	traffic   *TrafficGenerator
	results   *SimulationResults
	cfg       Config
}

// NewSimulator builds a simulator from a validated configuration.
// Any ErrInvalidConfiguration surfaces here, before event processing.
func NewSimulator(cfg Config) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	node, err := NewNetworkNode(cfg.NodeID, cfg.LinkSpeedMbps)
	if err != nil {
		return nil, err
	}
	for _, qc := range cfg.Queues {
		if err := node.ConfigureCBS(qc.Priority, qc.IdleSlopeMbps, qc.maxFrameSize(), cfg.QueueCapacity); err != nil {
			return nil, err
		}
		if qc.HiCredit != 0 || qc.LoCredit != 0 {
			if err := node.Queue(qc.Priority).SetCreditBounds(qc.HiCredit, qc.LoCredit); err != nil {
				return nil, err
			}
		}
	}

	rng := NewPartitionedRNG(NewSimulationKey(cfg.Seed))
	return &Simulator{
		scheduler: NewEventScheduler(),
		nodes:     map[string]*NetworkNode{node.ID: node},
		rng:       rng,
		traffic:   NewTrafficGenerator(rng.ForSubsystem(SubsystemTraffic)),
		results:   newSimulationResults(),
		cfg:       cfg,
	}, nil
}

// Clock returns the current simulated time in seconds. It only advances
// to popped event timestamps, never from wall-clock time.
func (sim *Simulator) Clock() float64 {
	return sim.clock
}

// Node returns the node with the given id, or nil.
func (sim *Simulator) Node(id string) *NetworkNode {
	return sim.nodes[id]
}

// AddNode creates and registers a further node sharing this run's clock
// and scheduler. The node from the run configuration exists already;
// extra nodes are enqueued into by programmatic arrivals.
func (sim *Simulator) AddNode(id string, linkSpeedMbps float64) (*NetworkNode, error) {
	if _, exists := sim.nodes[id]; exists {
		return nil, errConfigf("node %q already exists", id)
	}
	node, err := NewNetworkNode(id, linkSpeedMbps)
	if err != nil {
		return nil, err
	}
	sim.nodes[id] = node
	return node, nil
}

// Schedule pushes an event into the scheduler.
func (sim *Simulator) Schedule(ev Event) error {
	return sim.scheduler.Schedule(ev)
}

// startNextTransmission is the work-conserving step shared by arrival and
// departure handling: while the link is idle and some queue is eligible,
// a frame goes on the wire and its departure is scheduled immediately.
func (sim *Simulator) startNextTransmission(node *NetworkNode, now float64) error {
	frame := node.SelectNextFrame(now)
	if frame == nil {
		return nil
	}
	end := node.StartTransmission(frame, now)
	return sim.Schedule(&departureEvent{time: end, nodeID: node.ID})
}

// Run executes the simulation for the configured duration.
// See RunContext for semantics.
func (sim *Simulator) Run() (*SimulationResults, error) {
	return sim.RunContext(context.Background())
}

// RunContext pre-schedules the measurement series, generates all traffic,
// then drains the scheduler in time order up to the configured duration.
// ctx is consulted once per popped event; on cancellation the partial
// results compiled so far are returned together with the context error.
func (sim *Simulator) RunContext(ctx context.Context) (*SimulationResults, error) {
	duration := sim.cfg.DurationS
	logrus.Infof("starting simulation: node %s, link %.0f Mbps, duration %.2fs, seed %d",
		sim.cfg.NodeID, sim.cfg.LinkSpeedMbps, duration, sim.cfg.Seed)

	interval := sim.cfg.measurementInterval()
	for t := interval; t <= duration; t += interval {
		if err := sim.Schedule(&measurementEvent{time: t}); err != nil {
			return nil, err
		}
	}

	for _, spec := range sim.cfg.Traffic {
		if _, err := sim.traffic.Generate(sim.scheduler, spec, duration); err != nil {
			return nil, err
		}
	}

	for {
		ev, ok := sim.scheduler.PopNext()
		if !ok {
			break
		}
		if err := ctx.Err(); err != nil {
			sim.results.compile()
			return sim.results, err
		}
		if ev.Timestamp() > duration {
			break
		}
		sim.clock = ev.Timestamp()
		if err := ev.Execute(sim); err != nil {
			return nil, err
		}
	}

	sim.results.compile()
	logrus.Infof("simulation ended at %.6fs: %d frames, %d dropped",
		sim.clock, sim.results.Stats.TotalFrames, sim.results.Stats.TotalDropped)
	return sim.results, nil
}
