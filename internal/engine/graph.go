package engine

import (
	"sort"
	"time"

	"github.com/ringsight/backend/internal/domain"
)

// edgeKey identifies an aggregated directed edge.
type edgeKey struct {
	src string
	dst string
}

// flowEdge carries the aggregate of all transfers between one ordered
// account pair. Timestamps are kept for temporal-concentration analysis.
type flowEdge struct {
	totalAmount float64
	count       int
	timestamps  []time.Time
}

// txGraph is the directed simple graph built from the ledger. The multigraph
// of raw transactions collapses into one edge per (sender, receiver) pair.
// Node and adjacency slices are sorted so every traversal is deterministic.
type txGraph struct {
	nodes []string
	out   map[string][]string
	in    map[string][]string
	edges map[edgeKey]*flowEdge
}

// buildGraph aggregates the ledger into a txGraph in a single pass.
// Self-transfers contribute no edge; a 1-cycle is never meaningful evidence.
func buildGraph(txs []domain.Transaction) *txGraph {
	g := &txGraph{
		out:   make(map[string][]string),
		in:    make(map[string][]string),
		edges: make(map[edgeKey]*flowEdge),
	}

	seen := make(map[string]struct{})
	addNode := func(id string) {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			g.nodes = append(g.nodes, id)
		}
	}

	for _, tx := range txs {
		addNode(tx.SenderID)
		addNode(tx.ReceiverID)

		if tx.SenderID == tx.ReceiverID {
			continue
		}

		key := edgeKey{src: tx.SenderID, dst: tx.ReceiverID}
		e, ok := g.edges[key]
		if !ok {
			e = &flowEdge{}
			g.edges[key] = e
			g.out[tx.SenderID] = append(g.out[tx.SenderID], tx.ReceiverID)
			g.in[tx.ReceiverID] = append(g.in[tx.ReceiverID], tx.SenderID)
		}
		e.totalAmount += tx.Amount
		e.count++
		e.timestamps = append(e.timestamps, tx.Timestamp)
	}

	sort.Strings(g.nodes)
	for _, adj := range g.out {
		sort.Strings(adj)
	}
	for _, adj := range g.in {
		sort.Strings(adj)
	}

	return g
}

// edge returns the aggregated edge for the ordered pair, or nil.
func (g *txGraph) edge(src, dst string) *flowEdge {
	return g.edges[edgeKey{src: src, dst: dst}]
}

// successors returns the sorted adjacency list of the node.
func (g *txGraph) successors(id string) []string {
	return g.out[id]
}

// inTimestamps collects timestamps of every transfer into the node.
func (g *txGraph) inTimestamps(id string) []time.Time {
	var ts []time.Time
	for _, src := range g.in[id] {
		if e := g.edge(src, id); e != nil {
			ts = append(ts, e.timestamps...)
		}
	}
	return ts
}

// outTimestamps collects timestamps of every transfer out of the node.
func (g *txGraph) outTimestamps(id string) []time.Time {
	var ts []time.Time
	for _, dst := range g.out[id] {
		if e := g.edge(id, dst); e != nil {
			ts = append(ts, e.timestamps...)
		}
	}
	return ts
}
