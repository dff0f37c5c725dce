package engine

import (
	"sort"
	"time"
)

// detectSmurfing flags structuring hubs: accounts receiving from (fan-in) or
// paying out to (fan-out) at least the configured number of unique
// counterparties. Qualifying transfers clustered inside the temporal window
// earn a concentration bonus. An account may match both directions.
func (e *Engine) detectSmurfing(g *txGraph, profiles profileIndex) []finding {
	var findings []finding

	for _, hub := range g.nodes {
		p := profiles[hub]
		if p == nil {
			continue
		}

		if p.uniqueSenders() >= e.cfg.FanThreshold {
			concentration := temporalConcentration(g.inTimestamps(hub), e.cfg.FanWindow)
			findings = append(findings, e.fanFinding(hub, sortedKeys(p.senders), PatternFanIn, p.uniqueSenders(), concentration))
		}

		if p.uniqueReceivers() >= e.cfg.FanThreshold {
			concentration := temporalConcentration(g.outTimestamps(hub), e.cfg.FanWindow)
			findings = append(findings, e.fanFinding(hub, sortedKeys(p.receivers), PatternFanOut, p.uniqueReceivers(), concentration))
		}
	}

	return findings
}

// fanFinding builds a smurfing finding with the hub first, followed by its
// counterparties. All participants share the directional label.
func (e *Engine) fanFinding(hub string, counterparties []string, label string, count int, concentration float64) finding {
	capped := float64(count)
	if capped > 50 {
		capped = 50
	}
	score := clampScore(35 + capped*0.6 + concentration*15)

	members := append([]string{hub}, counterparties...)
	labels := make(map[string]string, len(members))
	for _, acc := range members {
		labels[acc] = label
	}

	return finding{
		ringType: RingPatternSmurfing,
		members:  members,
		labels:   labels,
		score:    score,
	}
}

// temporalConcentration returns the peak fraction of timestamps falling
// inside any window of the given width, in [0,1]. Fewer than three
// timestamps carry no temporal signal.
func temporalConcentration(ts []time.Time, window time.Duration) float64 {
	if len(ts) < 3 {
		return 0
	}
	sorted := append([]time.Time(nil), ts...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	maxInWindow := 0
	j := 0
	for i := range sorted {
		if j < i {
			j = i
		}
		for j < len(sorted) && sorted[j].Sub(sorted[i]) <= window {
			j++
		}
		if n := j - i; n > maxInWindow {
			maxInWindow = n
		}
	}

	frac := float64(maxInWindow) / float64(len(sorted))
	if frac > 1 {
		frac = 1
	}
	return frac
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
