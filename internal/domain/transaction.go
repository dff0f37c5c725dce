package domain

import "time"

// Transaction is a single validated ledger row. Records are immutable once
// loaded; every analysis run works on a fresh snapshot of the full set.
type Transaction struct {
	ID         string
	SenderID   string
	ReceiverID string
	Amount     float64
	Timestamp  time.Time
}
