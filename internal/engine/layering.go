package engine

import (
	"sort"
	"strings"
)

// detectLayering searches for layered shell chains: simple directed paths of
// at least four nodes whose intermediate hops are dominated by shell
// accounts (total transaction count inside the shell band). Overlapping
// chains through the same shell cluster deduplicate by node set here and
// merge into a single ring downstream.
func (e *Engine) detectLayering(g *txGraph, profiles profileIndex) []finding {
	shells := make(map[string]struct{})
	for _, id := range g.nodes {
		if p := profiles[id]; p != nil && p.txCount >= e.cfg.ShellMinTx && p.txCount <= e.cfg.ShellMaxTx {
			shells[id] = struct{}{}
		}
	}
	if len(shells) == 0 {
		return nil
	}

	var findings []finding
	seenChains := make(map[string]struct{})

	// Chains are anchored at non-shell sources: shells are pass-throughs,
	// not origins.
	for _, start := range g.nodes {
		if _, isShell := shells[start]; isShell {
			continue
		}
		e.walkChains(g, start, shells, seenChains, &findings)
	}

	return findings
}

type chainFrame struct {
	node string
	path []string
}

func (e *Engine) walkChains(g *txGraph, start string, shells map[string]struct{}, seen map[string]struct{}, findings *[]finding) {
	stack := []chainFrame{{node: start, path: []string{start}}}

	for len(stack) > 0 {
		frame := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, next := range g.successors(frame.node) {
			if containsNode(frame.path, next) {
				continue
			}
			path := append(append([]string(nil), frame.path...), next)

			if f, ok := e.chainFinding(path, shells, seen); ok {
				*findings = append(*findings, f)
			}
			if len(path) < e.cfg.MaxChainNodes {
				stack = append(stack, chainFrame{node: next, path: path})
			}
		}
	}
}

// chainFinding validates and scores a candidate path. A chain qualifies when
// it spans at least four nodes and the shell share among its intermediates
// reaches the configured ratio.
func (e *Engine) chainFinding(path []string, shells map[string]struct{}, seen map[string]struct{}) (finding, bool) {
	if len(path) < 4 {
		return finding{}, false
	}
	intermediates := path[1 : len(path)-1]
	if len(intermediates) < 2 {
		return finding{}, false
	}

	shellCount := 0
	for _, n := range intermediates {
		if _, ok := shells[n]; ok {
			shellCount++
		}
	}
	if float64(shellCount) < float64(len(intermediates))*e.cfg.ShellIntermediateRatio {
		return finding{}, false
	}

	members := append([]string(nil), path...)
	sort.Strings(members)
	setKey := strings.Join(members, "\x1f")
	if _, dup := seen[setKey]; dup {
		return finding{}, false
	}
	seen[setKey] = struct{}{}

	labels := make(map[string]string, len(path))
	for _, acc := range path {
		if _, ok := shells[acc]; ok {
			labels[acc] = PatternShellIntermediate
		} else {
			labels[acc] = PatternShellEndpoint
		}
	}

	score := clampScore(50 + float64(shellCount)*10 + float64(len(path))*3)

	return finding{
		ringType: RingPatternLayering,
		members:  append([]string(nil), path...),
		labels:   labels,
		score:    score,
	}, true
}

func containsNode(path []string, id string) bool {
	for _, n := range path {
		if n == id {
			return true
		}
	}
	return false
}
