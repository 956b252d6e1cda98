package cmd

import (
	"bytes"
	"os"

	sim "github.com/hwkim3330/cbs-sim/sim"
	"gopkg.in/yaml.v3"
)

// LoadScenario reads a YAML scenario file into a run configuration.
// Strict field checking so that a typo in a scenario fails fast instead
// of silently selecting a default.
func LoadScenario(path string) (sim.Config, error) {
	var cfg sim.Config

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// DefaultScenario is the built-in automotive ADAS run: control messages,
// camera streams, bursty LiDAR and background traffic sharing one
// gigabit ECU egress port.
func DefaultScenario() sim.Config {
	const nodeID = "ECU"
	return sim.Config{
		NodeID:        nodeID,
		LinkSpeedMbps: 1000,
		DurationS:     10,
		Seed:          42,
		Queues: []sim.QueueConfig{
			{Priority: 7, IdleSlopeMbps: 5},   // control messages
			{Priority: 6, IdleSlopeMbps: 100}, // camera streams
			{Priority: 5, IdleSlopeMbps: 150}, // LiDAR data
			{Priority: 3, IdleSlopeMbps: 50},  // diagnostics
			{Priority: 0, IdleSlopeMbps: 100}, // best effort
		},
		Traffic: []sim.TrafficSpec{
			{Pattern: sim.PatternCBR, Source: nodeID, Destination: "Actuator", RateMbps: 2, Priority: 7, FrameSize: 256},
			{Pattern: sim.PatternCBR, Source: nodeID, Destination: "Display0", RateMbps: 25, Priority: 6, FrameSize: 1500},
			{Pattern: sim.PatternCBR, Source: nodeID, Destination: "Display1", RateMbps: 25, Priority: 6, FrameSize: 1500},
			{Pattern: sim.PatternCBR, Source: nodeID, Destination: "Display2", RateMbps: 25, Priority: 6, FrameSize: 1500},
			{Pattern: sim.PatternCBR, Source: nodeID, Destination: "Display3", RateMbps: 25, Priority: 6, FrameSize: 1500},
			{Pattern: sim.PatternBurst, Source: nodeID, Destination: "Processor", RateMbps: 100, Priority: 5, FrameSize: 9000},
			{Pattern: sim.PatternPoisson, Source: nodeID, Destination: "Logger", RateMbps: 200, Priority: 0, FrameSize: 1500},
		},
	}
}
