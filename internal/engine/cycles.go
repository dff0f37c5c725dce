package engine

import (
	"sort"
	"strings"
)

// detectCycles enumerates simple directed cycles of bounded length.
//
// Enumeration is an explicit depth-bounded DFS rather than a general cycle
// finder: starting from each node in ascending order, the search only walks
// through nodes greater than the start. Every simple cycle is therefore
// discovered exactly once, rooted at its lexicographically smallest member,
// which doubles as the canonical form demanded for rotation dedup.
//
// The second return value reports whether the search budget was exhausted;
// dense graphs can hold combinatorially many cycles and the depth and count
// bounds are the safeguards that keep enumeration tractable.
func (e *Engine) detectCycles(g *txGraph) ([]finding, bool) {
	var findings []finding
	seenSets := make(map[string]struct{})
	truncated := false

	var path []string
	onPath := make(map[string]struct{})

	var dfs func(start, curr string) bool
	dfs = func(start, curr string) bool {
		for _, next := range g.successors(curr) {
			if next == start {
				if len(path) >= e.cfg.MinCycleLength {
					cycle := append([]string(nil), path...)
					if f, fresh := e.cycleFinding(g, cycle, seenSets); fresh {
						findings = append(findings, f)
						if len(findings) >= e.cfg.MaxCycleFindings {
							return false
						}
					}
				}
				continue
			}
			if next < start {
				continue
			}
			if _, visiting := onPath[next]; visiting {
				continue
			}
			if len(path) >= e.cfg.MaxCycleLength {
				continue
			}

			path = append(path, next)
			onPath[next] = struct{}{}
			ok := dfs(start, next)
			delete(onPath, next)
			path = path[:len(path)-1]
			if !ok {
				return false
			}
		}
		return true
	}

	for _, start := range g.nodes {
		path = append(path[:0], start)
		onPath = map[string]struct{}{start: {}}
		if !dfs(start, start) {
			truncated = true
			break
		}
	}

	return findings, truncated
}

// cycleFinding scores a canonical cycle, deduplicating by member set so the
// same loop traversed through different edges is reported once.
func (e *Engine) cycleFinding(g *txGraph, cycle []string, seenSets map[string]struct{}) (finding, bool) {
	members := append([]string(nil), cycle...)
	sort.Strings(members)
	setKey := strings.Join(members, "\x1f")
	if _, dup := seenSets[setKey]; dup {
		return finding{}, false
	}
	seenSets[setKey] = struct{}{}

	length := len(cycle)
	var flow float64
	for i := range cycle {
		if edge := g.edge(cycle[i], cycle[(i+1)%length]); edge != nil {
			flow += edge.totalAmount
		}
	}

	flowBonus := flow / float64(length) * 0.005
	if flowBonus > 20 {
		flowBonus = 20
	}
	// Tighter loops signal more deliberate routing and score higher.
	lengthBonus := float64(e.cfg.MaxCycleLength+1-length) * 4

	label := cyclePattern(length)
	labels := make(map[string]string, length)
	for _, acc := range cycle {
		labels[acc] = label
	}

	return finding{
		ringType: RingPatternCycle,
		members:  append([]string(nil), cycle...),
		labels:   labels,
		score:    clampScore(60 + flowBonus + lengthBonus),
	}, true
}
