package engine

import (
	"sort"

	"github.com/ringsight/backend/internal/domain"
)

// assembleResult builds the outward-facing report from the resolved state.
// All slices come out sorted so the report is byte-stable across runs.
func (e *Engine) assembleResult(g *txGraph, profiles profileIndex, rings []domain.Ring, accounts map[string]*accountState, notes []string) domain.AnalysisResult {
	ringsByAccount := make(map[string][]string)
	for _, ring := range rings {
		for _, m := range ring.MemberAccounts {
			ringsByAccount[m] = append(ringsByAccount[m], ring.RingID)
		}
	}

	nodes := make([]domain.GraphNode, 0, len(g.nodes))
	for _, id := range g.nodes {
		p := profiles[id]
		node := domain.GraphNode{
			ID:    id,
			Rings: []string{},
		}
		if p != nil {
			node.TotalSent = round2(p.totalSent)
			node.TotalReceived = round2(p.totalReceived)
			node.TxCount = p.txCount
		}
		if state, ok := accounts[id]; ok {
			node.Suspicious = true
			node.Score = round1(state.score)
		}
		if memberships, ok := ringsByAccount[id]; ok {
			node.Rings = memberships
		}
		nodes = append(nodes, node)
	}

	edges := make([]domain.GraphEdge, 0, len(g.edges))
	for key, e := range g.edges {
		edges = append(edges, domain.GraphEdge{
			Source: key.src,
			Target: key.dst,
			Amount: round2(e.totalAmount),
			Count:  e.count,
		})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Source != edges[j].Source {
			return edges[i].Source < edges[j].Source
		}
		return edges[i].Target < edges[j].Target
	})

	suspicious := make([]domain.SuspiciousAccount, 0, len(accounts))
	for id, state := range accounts {
		suspicious = append(suspicious, domain.SuspiciousAccount{
			AccountID:        id,
			SuspicionScore:   round1(state.score),
			DetectedPatterns: state.patterns,
			RingID:           state.ringID,
		})
	}
	sort.Slice(suspicious, func(i, j int) bool {
		if suspicious[i].SuspicionScore != suspicious[j].SuspicionScore {
			return suspicious[i].SuspicionScore > suspicious[j].SuspicionScore
		}
		return suspicious[i].AccountID < suspicious[j].AccountID
	})

	if rings == nil {
		rings = []domain.Ring{}
	}

	return domain.AnalysisResult{
		SuspiciousAccounts: suspicious,
		FraudRings:         rings,
		Summary: domain.Summary{
			TotalAccountsAnalyzed:     len(g.nodes),
			SuspiciousAccountsFlagged: len(suspicious),
			FraudRingsDetected:        len(rings),
		},
		Graph: domain.GraphView{
			Nodes: nodes,
			Edges: edges,
		},
		Notes: notes,
	}
}
