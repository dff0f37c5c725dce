// Package engine implements the forensics detection pipeline: it turns a
// validated transaction ledger into a directed flow graph, runs the pattern
// detectors over it, reconciles their findings into disjoint fraud rings,
// and assembles the final report.
package engine

import (
	"io"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/ringsight/backend/internal/domain"
)

// Config carries the detection thresholds. DefaultConfig matches the
// documented detection rules; individual fields can be overridden.
type Config struct {
	MinCycleLength   int
	MaxCycleLength   int
	MaxCycleFindings int

	FanThreshold int
	FanWindow    time.Duration

	ShellMinTx             int
	ShellMaxTx             int
	MaxChainNodes          int
	ShellIntermediateRatio float64

	VelocityPerHour float64
	VelocityMinTx   int

	MerchantMinSenders   int
	MerchantMaxReceivers int
	PayrollMinReceivers  int
	PayrollMaxCV         float64
}

// DefaultConfig returns the baseline thresholds.
func DefaultConfig() Config {
	return Config{
		MinCycleLength:   3,
		MaxCycleLength:   5,
		MaxCycleFindings: 1000,

		FanThreshold: 10,
		FanWindow:    72 * time.Hour,

		ShellMinTx:             2,
		ShellMaxTx:             3,
		MaxChainNodes:          6,
		ShellIntermediateRatio: 0.6,

		VelocityPerHour: 5,
		VelocityMinTx:   5,

		MerchantMinSenders:   20,
		MerchantMaxReceivers: 3,
		PayrollMinReceivers:  20,
		PayrollMaxCV:         0.25,
	}
}

// Engine is the deterministic, single-pass detection pipeline. It holds no
// state between runs; every Analyze call builds its structures fresh.
type Engine struct {
	cfg    Config
	logger *slog.Logger
}

// New constructs an Engine. Zero config fields fall back to defaults and a
// nil logger discards output.
func New(cfg Config, logger *slog.Logger) *Engine {
	defaults := DefaultConfig()
	if cfg.MinCycleLength <= 0 {
		cfg.MinCycleLength = defaults.MinCycleLength
	}
	if cfg.MaxCycleLength <= 0 {
		cfg.MaxCycleLength = defaults.MaxCycleLength
	}
	if cfg.MaxCycleFindings <= 0 {
		cfg.MaxCycleFindings = defaults.MaxCycleFindings
	}
	if cfg.FanThreshold <= 0 {
		cfg.FanThreshold = defaults.FanThreshold
	}
	if cfg.FanWindow <= 0 {
		cfg.FanWindow = defaults.FanWindow
	}
	if cfg.ShellMinTx <= 0 {
		cfg.ShellMinTx = defaults.ShellMinTx
	}
	if cfg.ShellMaxTx <= 0 {
		cfg.ShellMaxTx = defaults.ShellMaxTx
	}
	if cfg.MaxChainNodes <= 0 {
		cfg.MaxChainNodes = defaults.MaxChainNodes
	}
	if cfg.ShellIntermediateRatio <= 0 {
		cfg.ShellIntermediateRatio = defaults.ShellIntermediateRatio
	}
	if cfg.VelocityPerHour <= 0 {
		cfg.VelocityPerHour = defaults.VelocityPerHour
	}
	if cfg.VelocityMinTx <= 0 {
		cfg.VelocityMinTx = defaults.VelocityMinTx
	}
	if cfg.MerchantMinSenders <= 0 {
		cfg.MerchantMinSenders = defaults.MerchantMinSenders
	}
	if cfg.MerchantMaxReceivers <= 0 {
		cfg.MerchantMaxReceivers = defaults.MerchantMaxReceivers
	}
	if cfg.PayrollMinReceivers <= 0 {
		cfg.PayrollMinReceivers = defaults.PayrollMinReceivers
	}
	if cfg.PayrollMaxCV <= 0 {
		cfg.PayrollMaxCV = defaults.PayrollMaxCV
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{cfg: cfg, logger: logger}
}

// Analyze runs the full forensics pipeline over the ledger snapshot. It is
// pure apart from wall-clock timing: no input is mutated and identical
// ledgers yield identical results, including ring ids and scores. An empty
// ledger is a valid "no fraud found" outcome, not an error.
func (e *Engine) Analyze(txs []domain.Transaction) domain.AnalysisResult {
	start := time.Now()

	graph := buildGraph(txs)
	profiles := buildProfiles(txs)

	// The structural detectors share only the immutable graph and profile
	// index, so they fan out with nothing to synchronize beyond the join.
	var (
		wg        sync.WaitGroup
		cycles    []finding
		truncated bool
		smurfs    []finding
		chains    []finding
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		cycles, truncated = e.detectCycles(graph)
	}()
	go func() {
		defer wg.Done()
		smurfs = e.detectSmurfing(graph, profiles)
	}()
	go func() {
		defer wg.Done()
		chains = e.detectLayering(graph, profiles)
	}()
	wg.Wait()

	// Fixed merge order keeps finding sequence, and therefore ring ids,
	// deterministic regardless of goroutine scheduling.
	findings := make([]finding, 0, len(cycles)+len(smurfs)+len(chains))
	findings = append(findings, cycles...)
	findings = append(findings, smurfs...)
	findings = append(findings, chains...)

	findings = e.suppressFalsePositives(findings, profiles)
	rings, accounts := e.resolveRings(findings, profiles)

	var notes []string
	if truncated {
		notes = append(notes, "cycle enumeration truncated: search budget exhausted, ring coverage may be partial")
	}

	result := e.assembleResult(graph, profiles, rings, accounts, notes)
	result.Summary.ProcessingTimeSeconds = round2(time.Since(start).Seconds())

	e.logger.Debug("analysis complete",
		"accounts", result.Summary.TotalAccountsAnalyzed,
		"suspicious", result.Summary.SuspiciousAccountsFlagged,
		"rings", result.Summary.FraudRingsDetected,
		"truncated", truncated,
	)

	return result
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
