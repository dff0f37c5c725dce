package engine

import (
	"fmt"
	"sort"

	"github.com/ringsight/backend/internal/domain"
)

// unionFind tracks connected components over account ids.
type unionFind struct {
	parent map[string]string
}

func newUnionFind() *unionFind {
	return &unionFind{parent: make(map[string]string)}
}

func (u *unionFind) find(x string) string {
	root, ok := u.parent[x]
	if !ok {
		u.parent[x] = x
		return x
	}
	if root == x {
		return x
	}
	resolved := u.find(root)
	u.parent[x] = resolved
	return resolved
}

func (u *unionFind) union(a, b string) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	// Deterministic root choice keeps grouping stable across runs.
	if rb < ra {
		ra, rb = rb, ra
	}
	u.parent[rb] = ra
}

// accountState accumulates per-account suspicion during resolution.
type accountState struct {
	score    float64
	patterns []string
	ringID   string
}

func (s *accountState) addPattern(label string) {
	for _, p := range s.patterns {
		if p == label {
			return
		}
	}
	s.patterns = append(s.patterns, label)
}

// resolveRings merges findings with intersecting participant sets into
// disjoint rings and computes per-account and per-ring scores.
//
// Findings arrive in detection order (cycle, smurfing, layering); ring ids
// are assigned by the earliest finding in each merged group, so reports are
// reproducible. Merging is idempotent: resolving an already-merged finding
// set yields the same rings. If two candidate rings would share an account
// they are merged outright, never split.
func (e *Engine) resolveRings(findings []finding, profiles profileIndex) ([]domain.Ring, map[string]*accountState) {
	accounts := make(map[string]*accountState)
	if len(findings) == 0 {
		return nil, accounts
	}

	uf := newUnionFind()
	for _, f := range findings {
		anchor := f.members[0]
		for _, m := range f.members[1:] {
			uf.union(anchor, m)
		}
	}

	// Per-account suspicion: score of the highest-scoring finding the
	// account participates in, plus the union of earned labels.
	for _, f := range findings {
		for _, m := range f.members {
			state, ok := accounts[m]
			if !ok {
				state = &accountState{}
				accounts[m] = state
			}
			if f.score > state.score {
				state.score = f.score
			}
			state.addPattern(f.labels[m])
		}
	}

	// Velocity augmentation applies only to already-flagged accounts and
	// never to recognized merchant/payroll hubs.
	for id, state := range accounts {
		p := profiles[id]
		if e.isLegitimateHub(p) {
			continue
		}
		if e.hasHighVelocity(p) {
			state.addPattern(PatternHighVelocity)
			state.score = clampScore(state.score + velocityBonus)
		}
	}

	type group struct {
		firstFinding int
		members      map[string]struct{}
		typeCounts   map[string]int
	}
	groups := make(map[string]*group)
	var rootOrder []string

	for i, f := range findings {
		root := uf.find(f.members[0])
		grp, ok := groups[root]
		if !ok {
			grp = &group{
				firstFinding: i,
				members:      make(map[string]struct{}),
				typeCounts:   make(map[string]int),
			}
			groups[root] = grp
			rootOrder = append(rootOrder, root)
		}
		grp.typeCounts[f.ringType]++
		for _, m := range f.members {
			grp.members[m] = struct{}{}
		}
	}

	sort.Slice(rootOrder, func(i, j int) bool {
		return groups[rootOrder[i]].firstFinding < groups[rootOrder[j]].firstFinding
	})

	var rings []domain.Ring
	for _, root := range rootOrder {
		grp := groups[root]
		if len(grp.members) < 2 {
			continue
		}

		members := sortedKeys(grp.members)
		ringID := fmt.Sprintf("RING_%03d", len(rings)+1)

		var maxScore, sumScore float64
		for _, m := range members {
			s := accounts[m].score
			sumScore += s
			if s > maxScore {
				maxScore = s
			}
			accounts[m].ringID = ringID
		}
		risk := clampScore(0.6*maxScore + 0.4*sumScore/float64(len(members)))

		rings = append(rings, domain.Ring{
			RingID:         ringID,
			MemberAccounts: members,
			PatternType:    dominantPattern(grp.typeCounts),
			RiskScore:      round1(risk),
		})
	}

	return rings, accounts
}

// dominantPattern picks the plurality ring type, breaking ties by descending
// certainty of intent: cycle, then layering, then smurfing.
func dominantPattern(counts map[string]int) string {
	priority := []string{RingPatternCycle, RingPatternLayering, RingPatternSmurfing}
	best := priority[0]
	bestCount := -1
	for _, pattern := range priority {
		if c := counts[pattern]; c > bestCount {
			best = pattern
			bestCount = c
		}
	}
	return best
}
