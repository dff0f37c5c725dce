package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ringsight/backend/internal/generator"
)

func main() {
	cfg := generator.DefaultConfig()
	var (
		accounts     = flag.Int("accounts", cfg.NumAccounts, "number of background accounts")
		transactions = flag.Int("transactions", cfg.NumTransactions, "number of background transactions")
		cycles       = flag.Int("cycles", cfg.NumCycles, "number of planted cycle rings")
		cycleLen     = flag.Int("cycle-length", cfg.CycleLength, "accounts per planted cycle (3-5)")
		fanIn        = flag.Int("fan-in-hubs", cfg.NumFanInHubs, "number of planted fan-in hubs")
		fanOut       = flag.Int("fan-out-hubs", cfg.NumFanOutHubs, "number of planted fan-out hubs")
		fanSpread    = flag.Int("fan-spread", cfg.FanSpread, "counterparties per structuring hub")
		chains       = flag.Int("shell-chains", cfg.NumShellChains, "number of planted shell chains")
		chainLen     = flag.Int("chain-length", cfg.ChainLength, "accounts per shell chain (>=4)")
		merchants    = flag.Int("merchants", cfg.NumMerchants, "number of merchant look-alikes")
		seed         = flag.Int64("seed", cfg.Seed, "random seed for deterministic generation")
		outputDir    = flag.String("output-dir", "data", "directory for transactions.csv and ground_truth.json")
		writeStdout  = flag.Bool("stdout", false, "write the dataset as JSON to stdout instead of files")
	)
	flag.Parse()

	genCfg := generator.Config{
		NumAccounts:     *accounts,
		NumTransactions: *transactions,
		NumCycles:       *cycles,
		CycleLength:     *cycleLen,
		NumFanInHubs:    *fanIn,
		NumFanOutHubs:   *fanOut,
		FanSpread:       *fanSpread,
		NumShellChains:  *chains,
		ChainLength:     *chainLen,
		NumMerchants:    *merchants,
		Seed:            *seed,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	gen := generator.New(genCfg)
	dataset, err := gen.Generate(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generation failed: %v\n", err)
		os.Exit(1)
	}

	if *writeStdout {
		if err := json.NewEncoder(os.Stdout).Encode(dataset); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write dataset to stdout: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := generator.WriteDataset(dataset, *outputDir); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write dataset: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stdout, "Generated %d transactions into %s\n", len(dataset.Transactions), *outputDir)
}
