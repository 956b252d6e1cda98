package sim

// DefaultMeasurementInterval is the spacing of periodic snapshot events.
const DefaultMeasurementInterval = 0.1

// DefaultMaxFrameSize is the worst-case frame size used for derived
// credit bounds when a queue config does not set one (1500B payload plus
// 802.1Q overhead).
const DefaultMaxFrameSize = 1522

// QueueConfig declares one CBS queue on the node. IdleSlopeMbps usually
// comes from an external CBS calculator; it is validated here, never
// trusted blindly. HiCredit/LoCredit, when both non-zero, override the
// derived symmetric bounds.
type QueueConfig struct {
	Priority      int     `yaml:"priority"`
	IdleSlopeMbps float64 `yaml:"idle_slope_mbps"`
	MaxFrameSize  int     `yaml:"max_frame_size,omitempty"`
	HiCredit      float64 `yaml:"hi_credit,omitempty"`
	LoCredit      float64 `yaml:"lo_credit,omitempty"`
}

// Config is the full run configuration.
type Config struct {
	NodeID        string  `yaml:"node_id"`
	LinkSpeedMbps float64 `yaml:"link_speed_mbps"`
	DurationS     float64 `yaml:"duration_s"`
	Seed          int64   `yaml:"seed"`

	// MeasurementInterval spaces the periodic snapshots; zero selects
	// DefaultMeasurementInterval.
	MeasurementInterval float64 `yaml:"measurement_interval,omitempty"`

	// QueueCapacity bounds every queue's frame buffer; zero selects
	// DefaultQueueCapacity.
	QueueCapacity int `yaml:"queue_capacity,omitempty"`

	Queues  []QueueConfig `yaml:"queues"`
	Traffic []TrafficSpec `yaml:"traffic"`
}

// Validate rejects malformed configuration before any event processing.
func (c *Config) Validate() error {
	if c.NodeID == "" {
		return errConfigf("node_id must be set")
	}
	if c.LinkSpeedMbps <= 0 {
		return errConfigf("link speed %.3f Mbps must be positive", c.LinkSpeedMbps)
	}
	if c.DurationS <= 0 {
		return errConfigf("duration %.3f s must be positive", c.DurationS)
	}
	if c.MeasurementInterval < 0 {
		return errConfigf("measurement interval %.3f s must not be negative", c.MeasurementInterval)
	}
	if len(c.Queues) == 0 {
		return errConfigf("at least one CBS queue must be configured")
	}

	configured := make(map[int]bool, len(c.Queues))
	for _, qc := range c.Queues {
		if configured[qc.Priority] {
			return errConfigf("priority %d configured twice", qc.Priority)
		}
		configured[qc.Priority] = true
		if qc.Priority < 0 || qc.Priority > 7 {
			return errConfigf("priority %d outside 0-7", qc.Priority)
		}
		if qc.IdleSlopeMbps <= 0 || qc.IdleSlopeMbps > c.LinkSpeedMbps {
			return errConfigf("priority %d idle slope %.3f Mbps outside (0, %.3f]",
				qc.Priority, qc.IdleSlopeMbps, c.LinkSpeedMbps)
		}
		if (qc.HiCredit != 0) != (qc.LoCredit != 0) {
			return errConfigf("priority %d: hi_credit and lo_credit must be overridden together", qc.Priority)
		}
	}

	for i, ts := range c.Traffic {
		if err := ts.Validate(); err != nil {
			return err
		}
		if ts.Source != c.NodeID {
			return errConfigf("traffic[%d] source %q is not the configured node %q", i, ts.Source, c.NodeID)
		}
		if !configured[ts.Priority] {
			return errConfigf("traffic[%d] priority %d has no CBS queue", i, ts.Priority)
		}
	}
	return nil
}

// measurementInterval returns the configured interval or the default.
func (c *Config) measurementInterval() float64 {
	if c.MeasurementInterval > 0 {
		return c.MeasurementInterval
	}
	return DefaultMeasurementInterval
}

// maxFrameSize returns the queue's override or the default worst case.
func (qc *QueueConfig) maxFrameSize() int {
	if qc.MaxFrameSize > 0 {
		return qc.MaxFrameSize
	}
	return DefaultMaxFrameSize
}
