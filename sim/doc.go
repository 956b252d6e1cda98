// Package sim provides the discrete-event simulation engine for IEEE
// 802.1Qav Credit-Based Shaper behavior on an Ethernet egress link.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - cbsqueue.go: the per-priority credit state machine and frame buffer
//   - event.go: the event types that drive the simulation (Arrival, Departure, Measurement)
//   - simulator.go: the event loop and work-conserving transmission logic
//
// # Architecture
//
// A run is single-threaded and purely event-driven. The TrafficGenerator
// pre-schedules arrival events; the Simulator pops events in (time,
// sequence) order and dispatches them; a NetworkNode selects among its
// eligible CBS queues by priority whenever its link goes idle; the
// departure handler records results and immediately restarts selection so
// the link never idles while an eligible frame waits.
//
// Determinism: identical Config (including seed) gives byte-identical
// SimulationResults. All randomness flows through the run's
// PartitionedRNG, and the clock only ever takes values from popped event
// timestamps.
package sim
