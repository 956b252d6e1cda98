// Traffic generation: turns declarative TrafficSpec entries into the
// arrival events that drive a run. All randomness flows through the
// simulator's seeded RNG, so a run is fully reproducible from its seed.

package sim

import (
	"math/rand"

	"github.com/sirupsen/logrus"
)

// Traffic patterns.
const (
	PatternCBR     = "cbr"
	PatternPoisson = "poisson"
	PatternBurst   = "burst"
)

// Poisson frame sizes are drawn uniformly from [minPoissonFrameSize, FrameSize].
const minPoissonFrameSize = 64

// Burst pattern defaults: 10-frame bursts, frames 1 ms apart, bursts
// every 100 ms.
const (
	defaultBurstSize     = 10
	defaultBurstInterval = 0.1
	burstFrameSpacing    = 0.001
)

// TrafficSpec declares one generated stream.
type TrafficSpec struct {
	Pattern     string  `yaml:"pattern"`
	Source      string  `yaml:"source"`
	Destination string  `yaml:"destination"`
	RateMbps    float64 `yaml:"rate_mbps"`
	FrameSize   int     `yaml:"frame_size"`
	Priority    int     `yaml:"priority"`

	// Burst shape overrides; zero values select the defaults.
	BurstSize     int     `yaml:"burst_size,omitempty"`
	BurstInterval float64 `yaml:"burst_interval,omitempty"`
}

// Validate checks the spec in isolation. Cross-checks against configured
// queues happen in Config.Validate.
func (ts *TrafficSpec) Validate() error {
	switch ts.Pattern {
	case PatternCBR, PatternPoisson, PatternBurst:
	default:
		return errConfigf("unknown traffic pattern %q", ts.Pattern)
	}
	if ts.Source == "" {
		return errConfigf("traffic spec missing source node")
	}
	if ts.RateMbps <= 0 {
		return errConfigf("traffic rate %.3f Mbps must be positive", ts.RateMbps)
	}
	if ts.FrameSize <= 0 {
		return errConfigf("traffic frame size %d must be positive", ts.FrameSize)
	}
	if ts.Priority < 0 || ts.Priority > 7 {
		return errConfigf("traffic priority %d outside 0-7", ts.Priority)
	}
	return nil
}

// TrafficGenerator produces the finite arrival sequence for a run.
// Frame IDs are monotonic across all specs in generation order.
type TrafficGenerator struct {
	rng    *rand.Rand
	nextID int64
}

// NewTrafficGenerator creates a generator drawing from rng.
func NewTrafficGenerator(rng *rand.Rand) *TrafficGenerator {
	return &TrafficGenerator{rng: rng}
}

// Generate emits arrival events for spec into the scheduler, never past
// duration. Inter-arrival spacing follows the spec's pattern:
//
//	cbr:     fixed interval frameSize*8/rate
//	poisson: exponential inter-arrival with the CBR interval as mean,
//	         frame size uniform in [64, frameSize]
//	burst:   groups of burstSize frames 1 ms apart, every burstInterval
func (g *TrafficGenerator) Generate(sched *EventScheduler, spec TrafficSpec, duration float64) (int, error) {
	if err := spec.Validate(); err != nil {
		return 0, err
	}

	rateBps := spec.RateMbps * 1e6
	count := 0

	schedule := func(t float64, size int) error {
		f := NewFrame(g.nextID, spec.Source, spec.Destination, size, spec.Priority, t)
		if err := sched.Schedule(&arrivalEvent{time: t, frame: f}); err != nil {
			return err
		}
		g.nextID++
		count++
		return nil
	}

	switch spec.Pattern {
	case PatternCBR:
		interval := float64(spec.FrameSize) * 8 / rateBps
		for t := 0.0; t < duration; t += interval {
			if err := schedule(t, spec.FrameSize); err != nil {
				return count, err
			}
		}

	case PatternPoisson:
		meanInterval := float64(spec.FrameSize) * 8 / rateBps
		for t := 0.0; t < duration; {
			size := minPoissonFrameSize
			if spec.FrameSize > minPoissonFrameSize {
				size += g.rng.Intn(spec.FrameSize - minPoissonFrameSize + 1)
			}
			if err := schedule(t, size); err != nil {
				return count, err
			}
			t += g.rng.ExpFloat64() * meanInterval
		}

	case PatternBurst:
		burstSize := spec.BurstSize
		if burstSize <= 0 {
			burstSize = defaultBurstSize
		}
		burstInterval := spec.BurstInterval
		if burstInterval <= 0 {
			burstInterval = defaultBurstInterval
		}
		for burstStart := 0.0; burstStart < duration; burstStart += burstInterval {
			for i := 0; i < burstSize; i++ {
				t := burstStart + float64(i)*burstFrameSpacing
				if t >= duration {
					break
				}
				if err := schedule(t, spec.FrameSize); err != nil {
					return count, err
				}
			}
		}
	}

	logrus.Debugf("traffic: %s stream prio %d from %s generated %d frames", spec.Pattern, spec.Priority, spec.Source, count)
	return count, nil
}
