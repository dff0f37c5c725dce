package engine

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ringsight/backend/internal/domain"
)

var testBase = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func tx(id, sender, receiver string, amount float64, ts time.Time) domain.Transaction {
	return domain.Transaction{
		ID:         id,
		SenderID:   sender,
		ReceiverID: receiver,
		Amount:     amount,
		Timestamp:  ts,
	}
}

func newTestEngine() *Engine {
	return New(Config{}, nil)
}

func TestAnalyzeEmptyLedger(t *testing.T) {
	result := newTestEngine().Analyze(nil)

	assert.Empty(t, result.SuspiciousAccounts)
	assert.Empty(t, result.FraudRings)
	assert.Equal(t, 0, result.Summary.TotalAccountsAnalyzed)
	assert.Equal(t, 0, result.Summary.SuspiciousAccountsFlagged)
	assert.Equal(t, 0, result.Summary.FraudRingsDetected)
	assert.Empty(t, result.Graph.Nodes)
	assert.Empty(t, result.Graph.Edges)
}

func TestAnalyzeThreeNodeCycle(t *testing.T) {
	txs := []domain.Transaction{
		tx("T1", "A", "B", 1000, testBase),
		tx("T2", "B", "C", 1000, testBase.Add(time.Hour)),
		tx("T3", "C", "A", 1000, testBase.Add(2*time.Hour)),
	}

	result := newTestEngine().Analyze(txs)

	require.Len(t, result.FraudRings, 1)
	ring := result.FraudRings[0]
	assert.Equal(t, "RING_001", ring.RingID)
	assert.Equal(t, RingPatternCycle, ring.PatternType)
	assert.ElementsMatch(t, []string{"A", "B", "C"}, ring.MemberAccounts)

	require.Len(t, result.SuspiciousAccounts, 3)
	for _, acc := range result.SuspiciousAccounts {
		assert.Contains(t, acc.DetectedPatterns, "cycle_length_3")
		assert.Equal(t, "RING_001", acc.RingID)
	}
}

func TestAnalyzeFanInWithTemporalBonus(t *testing.T) {
	var txs []domain.Transaction
	for i := 1; i <= 10; i++ {
		txs = append(txs, tx(
			fmt.Sprintf("T%d", i),
			fmt.Sprintf("S%d", i),
			"H",
			100,
			testBase.Add(time.Duration(i)*time.Minute),
		))
	}

	result := newTestEngine().Analyze(txs)

	require.Len(t, result.FraudRings, 1)
	ring := result.FraudRings[0]
	assert.Equal(t, RingPatternSmurfing, ring.PatternType)
	assert.Contains(t, ring.MemberAccounts, "H")

	hub := findAccount(t, result, "H")
	assert.Contains(t, hub.DetectedPatterns, PatternFanIn)
	// 10 counterparties all inside one window: 35 + 6 + 15, plus the
	// velocity bonus for 10 transfers inside ten minutes.
	assert.InDelta(t, 71.0, hub.SuspicionScore, 0.01)
	assert.Contains(t, hub.DetectedPatterns, PatternHighVelocity)
}

func TestAnalyzeMerchantNotFlaggedAsFanIn(t *testing.T) {
	var txs []domain.Transaction
	for i := 1; i <= 25; i++ {
		txs = append(txs, tx(
			fmt.Sprintf("P%d", i),
			fmt.Sprintf("PAYER%02d", i),
			"M",
			100,
			testBase.Add(time.Duration(i)*time.Hour),
		))
	}
	txs = append(txs,
		tx("O1", "M", "BANK1", 1200, testBase.Add(30*time.Hour)),
		tx("O2", "M", "BANK2", 1300, testBase.Add(31*time.Hour)),
	)

	result := newTestEngine().Analyze(txs)

	assert.Empty(t, result.FraudRings)
	assert.Empty(t, result.SuspiciousAccounts)
}

func TestAnalyzeShellChain(t *testing.T) {
	txs := []domain.Transaction{
		tx("T1", "A", "B", 5000, testBase),
		tx("T2", "B", "C", 5000, testBase.Add(6*time.Hour)),
		tx("T3", "C", "D", 5000, testBase.Add(12*time.Hour)),
	}
	// Extra activity lifts the endpoints out of the shell band while B and
	// C stay at two or three transactions each.
	for i := 1; i <= 5; i++ {
		txs = append(txs, tx(
			fmt.Sprintf("XA%d", i), "A", fmt.Sprintf("MISC%d", i), 50,
			testBase.Add(time.Duration(24+i)*time.Hour),
		))
		txs = append(txs, tx(
			fmt.Sprintf("XD%d", i), fmt.Sprintf("MISC%d", i), "D", 50,
			testBase.Add(time.Duration(48+i)*time.Hour),
		))
	}

	result := newTestEngine().Analyze(txs)

	require.NotEmpty(t, result.FraudRings)
	ring := result.FraudRings[0]
	assert.Equal(t, RingPatternLayering, ring.PatternType)
	for _, id := range []string{"A", "B", "C", "D"} {
		assert.Contains(t, ring.MemberAccounts, id)
	}

	b := findAccount(t, result, "B")
	assert.Contains(t, b.DetectedPatterns, PatternShellIntermediate)
	c := findAccount(t, result, "C")
	assert.Contains(t, c.DetectedPatterns, PatternShellIntermediate)
}

func TestAnalyzeOverlappingCyclesMergeIntoOneRing(t *testing.T) {
	txs := []domain.Transaction{
		tx("T1", "A", "B", 500, testBase),
		tx("T2", "B", "C", 500, testBase.Add(time.Hour)),
		tx("T3", "C", "A", 500, testBase.Add(2*time.Hour)),
		tx("T4", "B", "D", 500, testBase.Add(3*time.Hour)),
		tx("T5", "D", "E", 500, testBase.Add(4*time.Hour)),
		tx("T6", "E", "B", 500, testBase.Add(5*time.Hour)),
	}

	result := newTestEngine().Analyze(txs)

	require.Len(t, result.FraudRings, 1)
	assert.ElementsMatch(t, []string{"A", "B", "C", "D", "E"}, result.FraudRings[0].MemberAccounts)
}

func TestAnalyzeRingDisjointness(t *testing.T) {
	txs := mixedLedger()
	result := newTestEngine().Analyze(txs)

	seen := make(map[string]string)
	for _, ring := range result.FraudRings {
		require.NotEmpty(t, ring.MemberAccounts)
		for _, m := range ring.MemberAccounts {
			prev, dup := seen[m]
			require.Falsef(t, dup, "account %s appears in both %s and %s", m, prev, ring.RingID)
			seen[m] = ring.RingID
		}
	}
}

func TestAnalyzeScoreBounds(t *testing.T) {
	result := newTestEngine().Analyze(mixedLedger())

	for _, acc := range result.SuspiciousAccounts {
		assert.GreaterOrEqual(t, acc.SuspicionScore, 0.0)
		assert.LessOrEqual(t, acc.SuspicionScore, 100.0)
	}
	for _, ring := range result.FraudRings {
		assert.GreaterOrEqual(t, ring.RiskScore, 0.0)
		assert.LessOrEqual(t, ring.RiskScore, 100.0)
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	txs := mixedLedger()
	eng := newTestEngine()

	first := eng.Analyze(txs)
	second := eng.Analyze(txs)

	first.Summary.ProcessingTimeSeconds = 0
	second.Summary.ProcessingTimeSeconds = 0
	assert.Equal(t, first, second)
}

func TestAnalyzeCycleSearchTruncation(t *testing.T) {
	// A dense bidirectional clique holds far more cycles than the budget.
	var txs []domain.Transaction
	nodes := []string{"N1", "N2", "N3", "N4", "N5", "N6"}
	seq := 0
	for _, a := range nodes {
		for _, b := range nodes {
			if a == b {
				continue
			}
			seq++
			txs = append(txs, tx(fmt.Sprintf("T%d", seq), a, b, 100, testBase.Add(time.Duration(seq)*time.Hour)))
		}
	}

	eng := New(Config{MaxCycleFindings: 3}, nil)
	result := eng.Analyze(txs)

	require.NotEmpty(t, result.Notes)
	assert.Contains(t, result.Notes[0], "truncated")
	require.NotEmpty(t, result.FraudRings)
}

func TestAnalyzeGraphView(t *testing.T) {
	txs := []domain.Transaction{
		tx("T1", "A", "B", 100, testBase),
		tx("T2", "A", "B", 50, testBase.Add(time.Hour)),
		tx("T3", "B", "A", 25, testBase.Add(2*time.Hour)),
		tx("T4", "C", "C", 10, testBase.Add(3*time.Hour)),
	}

	result := newTestEngine().Analyze(txs)

	assert.Equal(t, 3, result.Summary.TotalAccountsAnalyzed)
	require.Len(t, result.Graph.Edges, 2)
	// Duplicate (sender, receiver) pairs collapse into one aggregate edge;
	// the self-transfer contributes no edge at all.
	assert.Equal(t, domain.GraphEdge{Source: "A", Target: "B", Amount: 150, Count: 2}, result.Graph.Edges[0])
	assert.Equal(t, domain.GraphEdge{Source: "B", Target: "A", Amount: 25, Count: 1}, result.Graph.Edges[1])
}

// mixedLedger combines a planted cycle, a fan-in hub, and a shell chain.
func mixedLedger() []domain.Transaction {
	var txs []domain.Transaction
	txs = append(txs,
		tx("C1", "A", "B", 1000, testBase),
		tx("C2", "B", "C", 1000, testBase.Add(time.Hour)),
		tx("C3", "C", "A", 1000, testBase.Add(2*time.Hour)),
	)
	for i := 1; i <= 11; i++ {
		txs = append(txs, tx(
			fmt.Sprintf("F%d", i),
			fmt.Sprintf("SMF%02d", i),
			"HUB",
			200,
			testBase.Add(time.Duration(i)*time.Minute),
		))
	}
	txs = append(txs,
		tx("L1", "SRC", "SH1", 4000, testBase.Add(24*time.Hour)),
		tx("L2", "SH1", "SH2", 4000, testBase.Add(30*time.Hour)),
		tx("L3", "SH2", "DST", 4000, testBase.Add(36*time.Hour)),
		tx("L4", "SRC", "OTHER1", 80, testBase.Add(40*time.Hour)),
		tx("L5", "SRC", "OTHER2", 80, testBase.Add(41*time.Hour)),
		tx("L6", "SRC", "OTHER3", 80, testBase.Add(42*time.Hour)),
		tx("L7", "OTHER1", "DST", 90, testBase.Add(43*time.Hour)),
		tx("L8", "OTHER2", "DST", 90, testBase.Add(44*time.Hour)),
		tx("L9", "OTHER3", "DST", 90, testBase.Add(45*time.Hour)),
	)
	return txs
}

func findAccount(t *testing.T, result domain.AnalysisResult, id string) domain.SuspiciousAccount {
	t.Helper()
	for _, acc := range result.SuspiciousAccounts {
		if acc.AccountID == id {
			return acc
		}
	}
	t.Fatalf("account %s not flagged", id)
	return domain.SuspiciousAccount{}
}
