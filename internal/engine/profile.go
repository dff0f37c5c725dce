package engine

import (
	"sort"
	"time"

	"github.com/ringsight/backend/internal/domain"
)

// profile aggregates one account's activity across the whole ledger. Profiles
// are built once per run and are read-only afterwards, so all detectors can
// share the index without synchronization.
type profile struct {
	totalSent     float64
	totalReceived float64
	txCount       int
	senders       map[string]struct{}
	receivers     map[string]struct{}
	timestamps    []time.Time
	amountsSent   []float64
}

// profileIndex maps account id to its activity profile.
type profileIndex map[string]*profile

// buildProfiles derives the account profile index in one pass over the ledger.
func buildProfiles(txs []domain.Transaction) profileIndex {
	idx := make(profileIndex)

	get := func(id string) *profile {
		p, ok := idx[id]
		if !ok {
			p = &profile{
				senders:   make(map[string]struct{}),
				receivers: make(map[string]struct{}),
			}
			idx[id] = p
		}
		return p
	}

	for _, tx := range txs {
		sender := get(tx.SenderID)
		sender.totalSent += tx.Amount
		sender.txCount++
		sender.receivers[tx.ReceiverID] = struct{}{}
		sender.timestamps = append(sender.timestamps, tx.Timestamp)
		sender.amountsSent = append(sender.amountsSent, tx.Amount)

		receiver := get(tx.ReceiverID)
		receiver.totalReceived += tx.Amount
		receiver.txCount++
		receiver.senders[tx.SenderID] = struct{}{}
		receiver.timestamps = append(receiver.timestamps, tx.Timestamp)
	}

	for _, p := range idx {
		sort.Slice(p.timestamps, func(i, j int) bool {
			return p.timestamps[i].Before(p.timestamps[j])
		})
	}

	return idx
}

// uniqueSenders returns the count of distinct counterparties paying the account.
func (p *profile) uniqueSenders() int { return len(p.senders) }

// uniqueReceivers returns the count of distinct counterparties paid by the account.
func (p *profile) uniqueReceivers() int { return len(p.receivers) }
