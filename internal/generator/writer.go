package generator

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// WriteDataset writes transactions.csv (the engine's upload format) and
// ground_truth.json (planted typology ids) under the provided directory.
func WriteDataset(dataset Dataset, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	if err := writeCSV(filepath.Join(dir, "transactions.csv"), dataset); err != nil {
		return err
	}

	truth := groundTruth{
		CycleRings:  dataset.CycleRings,
		FanInHubs:   dataset.FanInHubs,
		FanOutHubs:  dataset.FanOutHubs,
		ShellChains: dataset.ShellChains,
		Merchants:   dataset.Merchants,
	}
	return writeJSON(filepath.Join(dir, "ground_truth.json"), truth)
}

type groundTruth struct {
	CycleRings  [][]string `json:"cycle_rings"`
	FanInHubs   []string   `json:"fan_in_hubs"`
	FanOutHubs  []string   `json:"fan_out_hubs"`
	ShellChains [][]string `json:"shell_chains"`
	Merchants   []string   `json:"merchants"`
}

func writeCSV(path string, dataset Dataset) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write([]string{"transaction_id", "sender_id", "receiver_id", "amount", "timestamp"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, tx := range dataset.Transactions {
		record := []string{
			tx.ID,
			tx.SenderID,
			tx.ReceiverID,
			strconv.FormatFloat(tx.Amount, 'f', 2, 64),
			tx.Timestamp.UTC().Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}

func writeJSON(path string, data any) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("encode json for %s: %w", path, err)
	}
	return nil
}
