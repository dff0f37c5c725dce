package domain

// GraphNode is the per-account view returned for visualization.
type GraphNode struct {
	ID            string   `json:"id"`
	TotalSent     float64  `json:"total_sent"`
	TotalReceived float64  `json:"total_received"`
	TxCount       int      `json:"tx_count"`
	Suspicious    bool     `json:"suspicious"`
	Rings         []string `json:"rings"`
	Score         float64  `json:"score"`
}

// GraphEdge is an aggregated money flow between two accounts.
type GraphEdge struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Amount float64 `json:"amount"`
	Count  int     `json:"count"`
}

// GraphView bundles the analyzed transaction graph for rendering.
type GraphView struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// SuspiciousAccount is an account implicated by at least one detector.
type SuspiciousAccount struct {
	AccountID        string   `json:"account_id"`
	SuspicionScore   float64  `json:"suspicion_score"`
	DetectedPatterns []string `json:"detected_patterns"`
	RingID           string   `json:"ring_id"`
}

// Ring is a disjoint group of accounts jointly implicated in one pattern.
// Membership never overlaps between rings within a single result.
type Ring struct {
	RingID         string   `json:"ring_id"`
	MemberAccounts []string `json:"member_accounts"`
	PatternType    string   `json:"pattern_type"`
	RiskScore      float64  `json:"risk_score"`
}

// Summary captures run-level counters computed once at the end of a run.
type Summary struct {
	TotalAccountsAnalyzed     int     `json:"total_accounts_analyzed"`
	SuspiciousAccountsFlagged int     `json:"suspicious_accounts_flagged"`
	FraudRingsDetected        int     `json:"fraud_rings_detected"`
	ProcessingTimeSeconds     float64 `json:"processing_time_seconds"`
}

// AnalysisResult is the full report produced by one engine run. Notes carry
// non-fatal coverage warnings such as a truncated cycle search.
type AnalysisResult struct {
	SuspiciousAccounts []SuspiciousAccount `json:"suspicious_accounts"`
	FraudRings         []Ring              `json:"fraud_rings"`
	Summary            Summary             `json:"summary"`
	Graph              GraphView           `json:"graph"`
	Notes              []string            `json:"notes,omitempty"`
}
