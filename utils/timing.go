package utils

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Verbose controls whether progress and timing statistics are printed.
// Set to false to suppress output.
var Verbose = true

// Output is the writer where progress and timing statistics are printed.
// Defaults to os.Stdout.
var Output io.Writer = os.Stdout

// Logf prints a formatted line to Output when Verbose is set.
func Logf(format string, args ...interface{}) {
	if !Verbose {
		return
	}
	fmt.Fprintf(Output, format+"\n", args...)
}

// TimingStats holds timing information for assembling and running a model.
type TimingStats struct {
	TotalTime       time.Duration
	ModelInitTime   time.Duration
	WeightLoadTime  time.Duration
	ParamInitTime   time.Duration
	ForwardPassTime time.Duration
}

// PrintTimingStats prints the timing breakdown.
// Respects the Verbose flag - does nothing if Verbose is false.
func PrintTimingStats(stats *TimingStats) {
	if !Verbose {
		return
	}
	pct := func(d time.Duration) float64 {
		if stats.TotalTime == 0 {
			return 0
		}
		return float64(d) / float64(stats.TotalTime) * 100
	}
	fmt.Fprintln(Output, "\n=== TIMING STATISTICS ===")
	fmt.Fprintf(Output, "Total time: %v\n", stats.TotalTime)
	fmt.Fprintf(Output, "  Model assembly: %v (%.1f%%)\n", stats.ModelInitTime, pct(stats.ModelInitTime))
	fmt.Fprintf(Output, "  Weight loading: %v (%.1f%%)\n", stats.WeightLoadTime, pct(stats.WeightLoadTime))
	fmt.Fprintf(Output, "  Parameter init: %v (%.1f%%)\n", stats.ParamInitTime, pct(stats.ParamInitTime))
	fmt.Fprintf(Output, "  Forward pass: %v (%.1f%%)\n", stats.ForwardPassTime, pct(stats.ForwardPassTime))
}

// DurationUS converts any time.Duration to micro-seconds as float64
func DurationUS(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1_000.0
}
