package utils

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"
)

func TestDurationUS(t *testing.T) {
	d := 1234*time.Microsecond + 567*time.Nanosecond
	got := DurationUS(d)
	if math.Abs(got-1234.567) > 0.001 {
		t.Fatalf("want 1234.567µs, got %.3f", got)
	}
}

func TestLogfRespectsVerbose(t *testing.T) {
	var buf bytes.Buffer
	oldOut, oldVerbose := Output, Verbose
	defer func() { Output, Verbose = oldOut, oldVerbose }()
	Output = &buf

	Verbose = false
	Logf("hidden %d", 1)
	PrintTimingStats(&TimingStats{TotalTime: time.Second})
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}

	Verbose = true
	Logf("shown %d", 2)
	PrintTimingStats(&TimingStats{TotalTime: time.Second, ForwardPassTime: 500 * time.Millisecond})
	out := buf.String()
	if !strings.Contains(out, "shown 2") || !strings.Contains(out, "Forward pass: 500ms (50.0%)") {
		t.Fatalf("unexpected output: %q", out)
	}
}
