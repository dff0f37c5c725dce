// Package generator synthesises transaction ledgers with known laundering
// typologies planted in random background activity. The output is used for
// demos and for calibrating detector thresholds against ground truth.
package generator

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/ringsight/backend/internal/domain"
)

// Dataset contains the generated ledger plus the ground-truth account ids of
// each planted typology.
type Dataset struct {
	Transactions []domain.Transaction `json:"transactions"`
	CycleRings   [][]string           `json:"cycle_rings"`
	FanInHubs    []string             `json:"fan_in_hubs"`
	FanOutHubs   []string             `json:"fan_out_hubs"`
	ShellChains  [][]string           `json:"shell_chains"`
	Merchants    []string             `json:"merchants"`
}

// Generator produces synthetic ledgers aligned with the engine's CSV schema.
type Generator struct {
	cfg  Config
	rand *rand.Rand
}

// New returns a configured Generator instance.
func New(cfg Config) *Generator {
	defaults := DefaultConfig()
	if cfg.NumAccounts <= 0 {
		cfg.NumAccounts = defaults.NumAccounts
	}
	if cfg.NumTransactions <= 0 {
		cfg.NumTransactions = defaults.NumTransactions
	}
	if cfg.CycleLength < 3 || cfg.CycleLength > 5 {
		cfg.CycleLength = defaults.CycleLength
	}
	if cfg.FanSpread <= 0 {
		cfg.FanSpread = defaults.FanSpread
	}
	if cfg.ChainLength < 4 {
		cfg.ChainLength = defaults.ChainLength
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if cfg.Start.IsZero() {
		cfg.Start = defaults.Start
	}
	if cfg.Span <= 0 {
		cfg.Span = defaults.Span
	}

	return &Generator{
		cfg:  cfg,
		rand: rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Generate synthesises the ledger. It respects context cancellation.
func (g *Generator) Generate(ctx context.Context) (Dataset, error) {
	var ds Dataset

	accounts := make([]string, g.cfg.NumAccounts)
	for i := range accounts {
		accounts[i] = fmt.Sprintf("ACC-%06d", i+1)
	}

	for i := 0; i < g.cfg.NumTransactions; i++ {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}
		senderIdx := g.rand.Intn(len(accounts))
		receiverIdx := g.rand.Intn(len(accounts))
		if senderIdx == receiverIdx {
			receiverIdx = (receiverIdx + 1) % len(accounts)
		}
		ds.Transactions = append(ds.Transactions, g.tx(
			accounts[senderIdx],
			accounts[receiverIdx],
			10+g.rand.Float64()*4990,
			g.randomTime(),
		))
	}

	for i := 0; i < g.cfg.NumCycles; i++ {
		ds.CycleRings = append(ds.CycleRings, g.plantCycle(&ds, i))
	}
	for i := 0; i < g.cfg.NumFanInHubs; i++ {
		ds.FanInHubs = append(ds.FanInHubs, g.plantFan(&ds, i, true))
	}
	for i := 0; i < g.cfg.NumFanOutHubs; i++ {
		ds.FanOutHubs = append(ds.FanOutHubs, g.plantFan(&ds, i, false))
	}
	for i := 0; i < g.cfg.NumShellChains; i++ {
		ds.ShellChains = append(ds.ShellChains, g.plantShellChain(&ds, i, accounts))
	}
	for i := 0; i < g.cfg.NumMerchants; i++ {
		ds.Merchants = append(ds.Merchants, g.plantMerchant(&ds, i, accounts))
	}

	return ds, nil
}

// plantCycle routes a round sum through dedicated mule accounts and back.
func (g *Generator) plantCycle(ds *Dataset, idx int) []string {
	members := make([]string, g.cfg.CycleLength)
	for i := range members {
		members[i] = fmt.Sprintf("CYC-%02d-%d", idx+1, i+1)
	}

	base := g.randomTime()
	amount := float64(1000 * (1 + g.rand.Intn(9)))
	for i := range members {
		ds.Transactions = append(ds.Transactions, g.tx(
			members[i],
			members[(i+1)%len(members)],
			amount,
			base.Add(time.Duration(i)*time.Hour),
		))
	}
	return members
}

// plantFan builds a structuring hub: many small transfers in (or out)
// clustered inside a tight window.
func (g *Generator) plantFan(ds *Dataset, idx int, fanIn bool) string {
	direction := "IN"
	if !fanIn {
		direction = "OUT"
	}
	hub := fmt.Sprintf("HUB-%s-%02d", direction, idx+1)

	base := g.randomTime()
	for i := 0; i < g.cfg.FanSpread; i++ {
		counterparty := fmt.Sprintf("SMF-%s-%02d-%02d", direction, idx+1, i+1)
		ts := base.Add(time.Duration(g.rand.Intn(600)) * time.Second)
		amount := 50 + g.rand.Float64()*450
		if fanIn {
			ds.Transactions = append(ds.Transactions, g.tx(counterparty, hub, amount, ts))
		} else {
			ds.Transactions = append(ds.Transactions, g.tx(hub, counterparty, amount, ts))
		}
	}
	return hub
}

// plantShellChain threads one sum through low-activity pass-through accounts
// between two busy endpoints drawn from the background population.
func (g *Generator) plantShellChain(ds *Dataset, idx int, accounts []string) []string {
	chain := make([]string, g.cfg.ChainLength)
	chain[0] = accounts[g.rand.Intn(len(accounts))]
	for i := 1; i < len(chain)-1; i++ {
		chain[i] = fmt.Sprintf("SHL-%02d-%d", idx+1, i)
	}
	chain[len(chain)-1] = accounts[g.rand.Intn(len(accounts))]

	base := g.randomTime()
	amount := float64(500 * (1 + g.rand.Intn(20)))
	for i := 0; i < len(chain)-1; i++ {
		ds.Transactions = append(ds.Transactions, g.tx(
			chain[i],
			chain[i+1],
			amount,
			base.Add(time.Duration(i*6)*time.Hour),
		))
	}
	return chain
}

// plantMerchant produces a legitimate-looking collection account: a wide
// payer base funneling into at most two settlement accounts.
func (g *Generator) plantMerchant(ds *Dataset, idx int, accounts []string) string {
	merchant := fmt.Sprintf("MRC-%02d", idx+1)
	for i := 0; i < 25; i++ {
		payer := accounts[g.rand.Intn(len(accounts))]
		ds.Transactions = append(ds.Transactions, g.tx(payer, merchant, 5+g.rand.Float64()*95, g.randomTime()))
	}
	settlement := fmt.Sprintf("MRC-%02d-SETTLE", idx+1)
	for i := 0; i < 4; i++ {
		ds.Transactions = append(ds.Transactions, g.tx(merchant, settlement, 400+g.rand.Float64()*100, g.randomTime()))
	}
	return merchant
}

func (g *Generator) tx(sender, receiver string, amount float64, ts time.Time) domain.Transaction {
	return domain.Transaction{
		ID:         uuid.NewString(),
		SenderID:   sender,
		ReceiverID: receiver,
		Amount:     amount,
		Timestamp:  ts,
	}
}

func (g *Generator) randomTime() time.Time {
	offset := time.Duration(g.rand.Int63n(int64(g.cfg.Span)))
	return g.cfg.Start.Add(offset)
}
