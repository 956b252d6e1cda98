package sim

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completedFrame(id int64, prio int, arrival, latency float64) *Frame {
	f := NewFrame(id, "SW0", "B", 1500, prio, arrival)
	f.TransmissionStart = arrival
	f.CompletionTime = arrival + latency
	return f
}

func TestResults_Compile_CountsBalance(t *testing.T) {
	// GIVEN three completed frames and one drop
	r := newSimulationResults()
	r.recordFrame(completedFrame(0, 6, 0.0, 0.001))
	r.recordFrame(completedFrame(1, 6, 0.1, 0.003))
	dropped := NewFrame(2, "SW0", "B", 1500, 6, 0.2)
	dropped.Dropped = true
	r.recordFrame(dropped)
	r.recordFrame(completedFrame(3, 0, 0.3, 0.002))

	r.compile()

	// THEN dropped + transmitted == total, with no double counting
	assert.Equal(t, 4, r.Stats.TotalFrames)
	assert.Equal(t, 3, r.Stats.TotalTransmitted)
	assert.Equal(t, 1, r.Stats.TotalDropped)
	assert.InDelta(t, 0.25, r.Stats.DropRate, 1e-12)
}

func TestResults_Compile_LatencyAggregates(t *testing.T) {
	r := newSimulationResults()
	r.recordFrame(completedFrame(0, 6, 0.0, 0.001))
	r.recordFrame(completedFrame(1, 6, 0.1, 0.003))
	r.recordFrame(completedFrame(2, 6, 0.2, 0.002))

	r.compile()

	assert.InDelta(t, 0.002, r.Stats.AvgLatency, 1e-12)
	assert.InDelta(t, 0.001, r.Stats.MinLatency, 1e-12)
	assert.InDelta(t, 0.003, r.Stats.MaxLatency, 1e-12)
	assert.InDelta(t, 0.002, r.Stats.P50Latency, 1e-12)

	// Jitter is the mean absolute delta between consecutive
	// completion-ordered latencies: |3-1| and |2-3| ms -> mean 1.5ms.
	assert.InDelta(t, 0.0015, r.Stats.AvgJitter, 1e-12)
	assert.InDelta(t, 0.002, r.Stats.MaxJitter, 1e-12)
}

func TestResults_Compile_PerPriority(t *testing.T) {
	r := newSimulationResults()
	r.recordFrame(completedFrame(0, 7, 0.0, 0.001))
	r.recordFrame(completedFrame(1, 7, 0.1, 0.003))
	dropped := NewFrame(2, "SW0", "B", 1500, 0, 0.2)
	dropped.Dropped = true
	r.recordFrame(dropped)

	r.compile()

	p7 := r.PerPriority[7]
	assert.Equal(t, 2, p7.Frames)
	assert.Equal(t, 0, p7.Dropped)
	assert.InDelta(t, 0.002, p7.AvgLatency, 1e-12)
	assert.InDelta(t, 0.003, p7.MaxLatency, 1e-12)

	p0 := r.PerPriority[0]
	assert.Equal(t, 1, p0.Frames)
	assert.Equal(t, 1, p0.Dropped)
	assert.Equal(t, 0.0, p0.AvgLatency)
}

func TestResults_Compile_Empty(t *testing.T) {
	r := newSimulationResults()
	r.compile()

	assert.Equal(t, 0, r.Stats.TotalFrames)
	assert.Equal(t, 0.0, r.Stats.DropRate)
	assert.Equal(t, 0.0, r.Stats.AvgLatency)
}

func TestResults_WriteJSON(t *testing.T) {
	r := newSimulationResults()
	r.recordFrame(completedFrame(0, 6, 0.0, 0.001))
	r.Snapshots = append(r.Snapshots, Snapshot{
		Time:  0.1,
		Nodes: map[string]NodeSnapshot{"SW0": {FramesTransmitted: 1, Utilization: 0.5}},
	})
	r.compile()

	path := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, r.WriteJSON(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	// Every interface field named in the results contract must be present.
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Contains(t, decoded, "frames")
	require.Contains(t, decoded, "snapshots")
	require.Contains(t, decoded, "statistics")

	stats := decoded["statistics"].(map[string]any)
	for _, key := range []string{
		"total_frames", "total_transmitted", "total_dropped", "drop_rate",
		"avg_latency", "min_latency", "max_latency",
		"p50_latency", "p95_latency", "p99_latency",
		"avg_jitter", "max_jitter",
	} {
		assert.Contains(t, stats, key)
	}

	frame := decoded["frames"].([]any)[0].(map[string]any)
	for _, key := range []string{
		"frame_id", "priority", "size", "arrival_time",
		"transmission_time", "completion_time", "latency", "dropped",
	} {
		assert.Contains(t, frame, key)
	}

	snap := decoded["snapshots"].([]any)[0].(map[string]any)
	node := snap["nodes"].(map[string]any)["SW0"].(map[string]any)
	for _, key := range []string{"frames_transmitted", "frames_dropped", "utilization"} {
		assert.Contains(t, node, key)
	}
}
