package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/hwkim3330/cbs-sim/sim"
)

var (
	// CLI flags
	seed                int64   // Seed for traffic randomness
	durationS           float64 // Simulated duration in seconds
	linkSpeedMbps       float64 // Egress link speed
	measurementInterval float64 // Snapshot spacing in seconds
	queueCapacity       int     // Per-queue frame buffer size
	scenarioFile        string  // YAML scenario path (overrides built-in scenario)
	outputFile          string  // Where to write the results JSON
	logLevel            string  // Log verbosity level
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "cbs-sim",
	Short: "Discrete-event simulator for IEEE 802.1Qav credit-based shaping",
}

// runCmd executes one simulation run using parameters from CLI flags and
// an optional YAML scenario file.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the CBS simulation",
	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", logLevel, err)
		}
		logrus.SetLevel(level)

		cfg := DefaultScenario()
		if scenarioFile != "" {
			cfg, err = LoadScenario(scenarioFile)
			if err != nil {
				return fmt.Errorf("load scenario %s: %w", scenarioFile, err)
			}
		}

		// Flags the user set explicitly win over the scenario file.
		if cmd.Flags().Changed("seed") {
			cfg.Seed = seed
		}
		if cmd.Flags().Changed("duration") {
			cfg.DurationS = durationS
		}
		if cmd.Flags().Changed("link-speed-mbps") {
			cfg.LinkSpeedMbps = linkSpeedMbps
		}
		if cmd.Flags().Changed("measurement-interval") {
			cfg.MeasurementInterval = measurementInterval
		}
		if cmd.Flags().Changed("queue-capacity") {
			cfg.QueueCapacity = queueCapacity
		}

		s, err := sim.NewSimulator(cfg)
		if err != nil {
			return err
		}

		// Ctrl-C ends the run cleanly with the partial results so far.
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		startTime := time.Now()
		results, runErr := s.RunContext(ctx)
		if runErr != nil && results == nil {
			return runErr
		}
		if runErr != nil {
			logrus.Warnf("run ended early: %v", runErr)
		}
		logrus.Infof("simulated %.2fs in %v", cfg.DurationS, time.Since(startTime))

		printSummary(results)

		if outputFile != "" {
			if err := results.WriteJSON(outputFile); err != nil {
				return fmt.Errorf("write results: %w", err)
			}
			logrus.Infof("results written to %s", outputFile)
		}
		return nil
	},
}

// printSummary displays the aggregate statistics of a finished run.
func printSummary(r *sim.SimulationResults) {
	s := r.Stats
	fmt.Println("=== Simulation Results ===")
	fmt.Printf("Total frames     : %d\n", s.TotalFrames)
	fmt.Printf("Transmitted      : %d\n", s.TotalTransmitted)
	fmt.Printf("Dropped          : %d (%.2f%%)\n", s.TotalDropped, s.DropRate*100)
	if s.TotalTransmitted > 0 {
		fmt.Printf("Avg latency      : %.3f ms\n", s.AvgLatency*1000)
		fmt.Printf("P95 latency      : %.3f ms\n", s.P95Latency*1000)
		fmt.Printf("P99 latency      : %.3f ms\n", s.P99Latency*1000)
		fmt.Printf("Max latency      : %.3f ms\n", s.MaxLatency*1000)
		fmt.Printf("Avg jitter       : %.3f ms\n", s.AvgJitter*1000)
	}
	for prio := 7; prio >= 0; prio-- {
		ps, ok := r.PerPriority[prio]
		if !ok {
			continue
		}
		fmt.Printf("Priority %d       : %d frames, %d dropped, avg latency %.3f ms\n",
			prio, ps.Frames, ps.Dropped, ps.AvgLatency*1000)
	}
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for traffic generation randomness")
	runCmd.Flags().Float64Var(&durationS, "duration", 10, "Simulated duration in seconds")
	runCmd.Flags().Float64Var(&linkSpeedMbps, "link-speed-mbps", 1000, "Egress link speed in Mbps")
	runCmd.Flags().Float64Var(&measurementInterval, "measurement-interval", sim.DefaultMeasurementInterval, "Snapshot interval in seconds")
	runCmd.Flags().IntVar(&queueCapacity, "queue-capacity", sim.DefaultQueueCapacity, "Frame buffer size per CBS queue")
	runCmd.Flags().StringVar(&scenarioFile, "scenario", "", "YAML scenario file (default: built-in automotive scenario)")
	runCmd.Flags().StringVar(&outputFile, "output", "", "Write SimulationResults JSON to this path")
	runCmd.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")

	rootCmd.AddCommand(runCmd)
}
