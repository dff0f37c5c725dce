// Package repository mirrors finished analysis results into a graph store so
// analysts can drill into flagged accounts and rings with ad-hoc cypher. The
// mirror is write-only from the engine's point of view; it never feeds back
// into detection.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/ringsight/backend/internal/domain"
	"github.com/ringsight/backend/internal/graph"
)

// Repository encapsulates graph persistence of analysis results.
type Repository struct {
	client graph.Client
}

// New instantiates a Repository backed by the supplied graph client.
func New(client graph.Client) *Repository {
	return &Repository{client: client}
}

const upsertAccountsCypher = `
UNWIND $accounts AS acc
MERGE (a:Account {accountId: acc.accountId})
SET a.totalSent = acc.totalSent,
    a.totalReceived = acc.totalReceived,
    a.txCount = acc.txCount,
    a.suspicious = acc.suspicious,
    a.suspicionScore = acc.score,
    a.analysisId = $analysisId
`

const upsertFlowsCypher = `
UNWIND $flows AS flow
MATCH (src:Account {accountId: flow.source})
MATCH (dst:Account {accountId: flow.target})
MERGE (src)-[r:SENT_TO]->(dst)
SET r.totalAmount = flow.amount,
    r.txCount = flow.count,
    r.analysisId = $analysisId
`

const upsertRingsCypher = `
UNWIND $rings AS ring
MERGE (g:Ring {ringId: ring.ringId, analysisId: $analysisId})
SET g.patternType = ring.patternType,
    g.riskScore = ring.riskScore
WITH g, ring
UNWIND ring.members AS memberId
MATCH (a:Account {accountId: memberId})
MERGE (a)-[:MEMBER_OF]->(g)
`

// SaveAnalysis persists the graph view and resolved rings of one analysis
// run under the provided analysis id.
func (r *Repository) SaveAnalysis(ctx context.Context, analysisID string, result domain.AnalysisResult) error {
	if analysisID == "" {
		return errors.New("analysis id is required")
	}

	accounts := make([]map[string]any, 0, len(result.Graph.Nodes))
	for _, node := range result.Graph.Nodes {
		accounts = append(accounts, map[string]any{
			"accountId":     node.ID,
			"totalSent":     node.TotalSent,
			"totalReceived": node.TotalReceived,
			"txCount":       node.TxCount,
			"suspicious":    node.Suspicious,
			"score":         node.Score,
		})
	}
	if _, err := r.client.ExecuteWrite(ctx, upsertAccountsCypher, map[string]any{
		"analysisId": analysisID,
		"accounts":   accounts,
	}); err != nil {
		return fmt.Errorf("mirror accounts: %w", err)
	}

	flows := make([]map[string]any, 0, len(result.Graph.Edges))
	for _, edge := range result.Graph.Edges {
		flows = append(flows, map[string]any{
			"source": edge.Source,
			"target": edge.Target,
			"amount": edge.Amount,
			"count":  edge.Count,
		})
	}
	if _, err := r.client.ExecuteWrite(ctx, upsertFlowsCypher, map[string]any{
		"analysisId": analysisID,
		"flows":      flows,
	}); err != nil {
		return fmt.Errorf("mirror flows: %w", err)
	}

	if len(result.FraudRings) == 0 {
		return nil
	}
	rings := make([]map[string]any, 0, len(result.FraudRings))
	for _, ring := range result.FraudRings {
		rings = append(rings, map[string]any{
			"ringId":      ring.RingID,
			"patternType": ring.PatternType,
			"riskScore":   ring.RiskScore,
			"members":     ring.MemberAccounts,
		})
	}
	if _, err := r.client.ExecuteWrite(ctx, upsertRingsCypher, map[string]any{
		"analysisId": analysisID,
		"rings":      rings,
	}); err != nil {
		return fmt.Errorf("mirror rings: %w", err)
	}

	return nil
}
