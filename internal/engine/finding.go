package engine

import "fmt"

// Pattern labels attached to individual accounts.
const (
	PatternFanIn             = "fan_in"
	PatternFanOut            = "fan_out"
	PatternShellIntermediate = "shell_intermediate"
	PatternShellEndpoint     = "shell_endpoint"
	PatternHighVelocity      = "high_velocity"
)

// Ring pattern families, in descending certainty of fraud intent.
const (
	RingPatternCycle    = "cycle"
	RingPatternLayering = "layering"
	RingPatternSmurfing = "smurfing"
)

// cyclePattern returns the account label for a cycle of the given length.
func cyclePattern(length int) string {
	return fmt.Sprintf("cycle_length_%d", length)
}

// finding is a candidate detection emitted by one detector. Findings are
// value objects: detectors never share or mutate each other's output.
type finding struct {
	// ringType is the ring pattern family this finding argues for.
	ringType string
	// members lists participant accounts in detection order.
	members []string
	// labels maps each member to the pattern label it earned.
	labels map[string]string
	// score is the contribution score for participating accounts.
	score float64
}
