package generator

import "time"

// Config drives the synthetic ledger generator.
type Config struct {
	NumAccounts     int
	NumTransactions int

	// Planted typologies. Each counts whole structures, not transactions.
	NumCycles      int
	CycleLength    int
	NumFanInHubs   int
	NumFanOutHubs  int
	FanSpread      int
	NumShellChains int
	ChainLength    int
	NumMerchants   int

	Seed  int64
	Start time.Time
	Span  time.Duration
}

// DefaultConfig returns baseline settings producing a ledger where every
// detector has something to find against realistic background noise.
func DefaultConfig() Config {
	return Config{
		NumAccounts:     2000,
		NumTransactions: 20000,
		NumCycles:       4,
		CycleLength:     4,
		NumFanInHubs:    3,
		NumFanOutHubs:   2,
		FanSpread:       12,
		NumShellChains:  3,
		ChainLength:     5,
		NumMerchants:    2,
		Seed:            42,
		Start:           time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Span:            30 * 24 * time.Hour,
	}
}
