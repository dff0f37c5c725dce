package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ringsight/backend/internal/config"
	"github.com/ringsight/backend/internal/engine"
	"github.com/ringsight/backend/internal/ledger"
	"github.com/ringsight/backend/internal/logging"
)

func main() {
	var (
		inputPath  = flag.String("input", "", "Path to the ledger CSV (defaults to stdin)")
		outputPath = flag.String("output", "", "Path for the JSON report (defaults to stdout)")
		pretty     = flag.Bool("pretty", false, "Indent the JSON report")
		strict     = flag.Bool("strict", false, "Fail on the first malformed row instead of skipping it")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Logging).With("component", "analyze")

	var in io.ReadCloser = os.Stdin
	if *inputPath != "" {
		file, err := os.Open(*inputPath)
		if err != nil {
			logger.Error("failed to open ledger", "error", err, "path", *inputPath)
			os.Exit(1)
		}
		in = file
	}

	parsed, err := ledger.Parse(in, ledger.Options{Strict: *strict})
	in.Close()
	if err != nil {
		logger.Error("ledger parse failed", "error", err)
		os.Exit(1)
	}
	if skipped := len(parsed.SkippedRows); skipped > 0 {
		logger.Warn("malformed rows skipped", "count", skipped, "first", parsed.SkippedRows[0].Error())
	}

	eng := engine.New(engine.Config{
		MaxCycleFindings:    cfg.Engine.MaxCycleFindings,
		FanThreshold:        cfg.Engine.FanThreshold,
		ShellMinTx:          cfg.Engine.ShellMinTx,
		ShellMaxTx:          cfg.Engine.ShellMaxTx,
		VelocityPerHour:     cfg.Engine.VelocityPerHour,
		MerchantMinSenders:  cfg.Engine.MerchantMinSenders,
		PayrollMinReceivers: cfg.Engine.PayrollMinReceivers,
	}, logger)

	start := time.Now()
	result := eng.Analyze(parsed.Transactions)
	logger.Info("analysis complete",
		"transactions", len(parsed.Transactions),
		"accounts", result.Summary.TotalAccountsAnalyzed,
		"rings", result.Summary.FraudRingsDetected,
		"duration", time.Since(start).String(),
	)

	out := os.Stdout
	if *outputPath != "" {
		file, err := os.Create(*outputPath)
		if err != nil {
			logger.Error("failed to create report file", "error", err, "path", *outputPath)
			os.Exit(1)
		}
		defer file.Close()
		out = file
	}

	encoder := json.NewEncoder(out)
	if *pretty {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(result); err != nil {
		logger.Error("failed to write report", "error", err)
		os.Exit(1)
	}
}
