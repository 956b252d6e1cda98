// Aggregates per-frame records and periodic node snapshots into the
// SimulationResults record returned to collaborators (report generators,
// dashboards). Field names in the JSON output are the stable interface.

package sim

import (
	"encoding/json"
	"math"
	"os"
)

// FrameRecord is the per-frame result entry. Dropped frames carry -1 for
// the timestamps they never reached.
type FrameRecord struct {
	ID                int64   `json:"frame_id"`
	Priority          int     `json:"priority"`
	Size              int     `json:"size"`
	ArrivalTime       float64 `json:"arrival_time"`
	TransmissionStart float64 `json:"transmission_time"`
	CompletionTime    float64 `json:"completion_time"`
	Latency           float64 `json:"latency"`
	Dropped           bool    `json:"dropped"`
}

// NodeSnapshot is one node's state at a measurement instant.
type NodeSnapshot struct {
	FramesTransmitted int     `json:"frames_transmitted"`
	FramesDropped     int     `json:"frames_dropped"`
	Utilization       float64 `json:"utilization"`
}

// Snapshot is the periodic measurement record across all nodes.
type Snapshot struct {
	Time  float64                 `json:"time"`
	Nodes map[string]NodeSnapshot `json:"nodes"`
}

// AggregateStats is the final statistics record, computed over all frame
// records once the run ends. Latencies are in seconds.
//
// AvgJitter/MaxJitter are the mean/max absolute delta between consecutive
// completion-ordered latencies (sequential latency delta), not an
// RFC-style packet-delay-variation metric.
type AggregateStats struct {
	TotalFrames      int     `json:"total_frames"`
	TotalTransmitted int     `json:"total_transmitted"`
	TotalDropped     int     `json:"total_dropped"`
	DropRate         float64 `json:"drop_rate"`

	AvgLatency float64 `json:"avg_latency"`
	MinLatency float64 `json:"min_latency"`
	MaxLatency float64 `json:"max_latency"`
	P50Latency float64 `json:"p50_latency"`
	P95Latency float64 `json:"p95_latency"`
	P99Latency float64 `json:"p99_latency"`
	LatencyStd float64 `json:"latency_std"`

	AvgJitter float64 `json:"avg_jitter"`
	MaxJitter float64 `json:"max_jitter"`
}

// PriorityStats is the per-priority breakdown over completed frames.
type PriorityStats struct {
	Frames     int     `json:"frames"`
	Dropped    int     `json:"dropped"`
	AvgLatency float64 `json:"avg_latency"`
	MaxLatency float64 `json:"max_latency"`
}

// SimulationResults is the complete output of one run: the ordered frame
// records, the periodic snapshot series, and the aggregate statistics.
// Immutable once Run returns it.
type SimulationResults struct {
	Frames      []FrameRecord         `json:"frames"`
	Snapshots   []Snapshot            `json:"snapshots"`
	Stats       AggregateStats        `json:"statistics"`
	PerPriority map[int]PriorityStats `json:"per_priority"`
}

func newSimulationResults() *SimulationResults {
	return &SimulationResults{
		Frames:      make([]FrameRecord, 0),
		Snapshots:   make([]Snapshot, 0),
		PerPriority: make(map[int]PriorityStats),
	}
}

// recordFrame appends the final record for a completed or dropped frame.
// Records are appended in outcome order (completion time for transmitted
// frames, arrival time for drops), which is the order jitter is computed
// over.
func (r *SimulationResults) recordFrame(f *Frame) {
	rec := FrameRecord{
		ID:                f.ID,
		Priority:          f.Priority,
		Size:              f.Size,
		ArrivalTime:       f.ArrivalTime,
		TransmissionStart: f.TransmissionStart,
		CompletionTime:    f.CompletionTime,
		Dropped:           f.Dropped,
	}
	if f.Completed() {
		rec.Latency = f.Latency()
	} else {
		rec.Latency = timeUnset
	}
	r.Frames = append(r.Frames, rec)
}

// compile computes the aggregate and per-priority statistics from the
// accumulated frame records.
func (r *SimulationResults) compile() {
	stats := AggregateStats{TotalFrames: len(r.Frames)}

	latencies := make([]float64, 0, len(r.Frames))
	perPrio := make(map[int]*PriorityStats)
	for _, rec := range r.Frames {
		ps, ok := perPrio[rec.Priority]
		if !ok {
			ps = &PriorityStats{}
			perPrio[rec.Priority] = ps
		}
		ps.Frames++
		if rec.Dropped {
			stats.TotalDropped++
			ps.Dropped++
			continue
		}
		stats.TotalTransmitted++
		latencies = append(latencies, rec.Latency)
		ps.AvgLatency += rec.Latency // sum for now, divided below
		ps.MaxLatency = math.Max(ps.MaxLatency, rec.Latency)
	}

	if stats.TotalFrames > 0 {
		stats.DropRate = float64(stats.TotalDropped) / float64(stats.TotalFrames)
	}

	if len(latencies) > 0 {
		stats.AvgLatency = mean(latencies)
		stats.MinLatency, stats.MaxLatency = minMax(latencies)
		stats.P50Latency = percentile(latencies, 50)
		stats.P95Latency = percentile(latencies, 95)
		stats.P99Latency = percentile(latencies, 99)
		stats.LatencyStd = stdDev(latencies)
	}

	if len(latencies) > 1 {
		deltas := make([]float64, 0, len(latencies)-1)
		for i := 1; i < len(latencies); i++ {
			deltas = append(deltas, math.Abs(latencies[i]-latencies[i-1]))
		}
		stats.AvgJitter = mean(deltas)
		_, stats.MaxJitter = minMax(deltas)
	}

	for prio, ps := range perPrio {
		completed := ps.Frames - ps.Dropped
		if completed > 0 {
			ps.AvgLatency /= float64(completed)
		} else {
			ps.AvgLatency = 0
		}
		r.PerPriority[prio] = *ps
	}

	r.Stats = stats
}

// WriteJSON saves the results to path, indented for human consumption.
func (r *SimulationResults) WriteJSON(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
