package engine

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ringsight/backend/internal/domain"
)

func merchantLedger(payers int) []domain.Transaction {
	var txs []domain.Transaction
	for i := 0; i < payers; i++ {
		txs = append(txs, tx(
			fmt.Sprintf("P%d", i),
			fmt.Sprintf("PAYER%02d", i),
			"M",
			75+float64(i),
			testBase.Add(time.Duration(i)*time.Hour),
		))
	}
	txs = append(txs,
		tx("O1", "M", "BANK1", 900, testBase.Add(100*time.Hour)),
		tx("O2", "M", "BANK2", 850, testBase.Add(101*time.Hour)),
	)
	return txs
}

func payrollLedger(employees int, salary float64) []domain.Transaction {
	var txs []domain.Transaction
	for i := 0; i < employees; i++ {
		txs = append(txs, tx(
			fmt.Sprintf("W%d", i),
			"CORP",
			fmt.Sprintf("EMP%02d", i),
			salary,
			testBase.Add(time.Duration(i)*time.Minute),
		))
	}
	return txs
}

func TestIsMerchant(t *testing.T) {
	eng := newTestEngine()

	t.Run("qualifies", func(t *testing.T) {
		profiles := buildProfiles(merchantLedger(25))
		assert.True(t, eng.isMerchant(profiles["M"]))
	})

	t.Run("too few senders", func(t *testing.T) {
		profiles := buildProfiles(merchantLedger(19))
		assert.False(t, eng.isMerchant(profiles["M"]))
	})

	t.Run("too many receivers", func(t *testing.T) {
		txs := append(merchantLedger(25),
			tx("O3", "M", "BANK3", 10, testBase),
			tx("O4", "M", "BANK4", 10, testBase),
		)
		profiles := buildProfiles(txs)
		assert.False(t, eng.isMerchant(profiles["M"]))
	})
}

func TestIsPayroll(t *testing.T) {
	eng := newTestEngine()

	t.Run("uniform salaries qualify", func(t *testing.T) {
		profiles := buildProfiles(payrollLedger(22, 3200))
		assert.True(t, eng.isPayroll(profiles["CORP"]))
	})

	t.Run("irregular amounts do not", func(t *testing.T) {
		txs := payrollLedger(22, 3200)
		for i := range txs {
			txs[i].Amount = float64(100 * (i + 1))
		}
		profiles := buildProfiles(txs)
		assert.False(t, eng.isPayroll(profiles["CORP"]))
	})

	t.Run("too few receivers", func(t *testing.T) {
		profiles := buildProfiles(payrollLedger(15, 3200))
		assert.False(t, eng.isPayroll(profiles["CORP"]))
	})
}

func TestSuppressFalsePositives(t *testing.T) {
	eng := newTestEngine()

	t.Run("merchant hub drops the whole finding", func(t *testing.T) {
		profiles := buildProfiles(merchantLedger(25))
		f := mkFinding(RingPatternSmurfing, 56, PatternFanIn, "M", "PAYER00", "PAYER01")
		kept := eng.suppressFalsePositives([]finding{f}, profiles)
		assert.Empty(t, kept)
	})

	t.Run("cycle findings pass through", func(t *testing.T) {
		profiles := buildProfiles(merchantLedger(25))
		f := mkFinding(RingPatternCycle, 77, "cycle_length_3", "M", "BANK1", "BANK2")
		kept := eng.suppressFalsePositives([]finding{f}, profiles)
		require.Len(t, kept, 1)
		assert.Equal(t, f, kept[0])
	})

	t.Run("legitimate counterparty is pruned", func(t *testing.T) {
		// HUB fans out to many accounts, one of which happens to be a
		// payroll processor. The finding survives without it.
		txs := payrollLedger(22, 3200)
		f := mkFinding(RingPatternSmurfing, 50, PatternFanOut, "HUB", "CORP", "X", "Y")
		kept := eng.suppressFalsePositives([]finding{f}, buildProfiles(txs))
		require.Len(t, kept, 1)
		assert.Equal(t, []string{"HUB", "X", "Y"}, kept[0].members)
		assert.NotContains(t, kept[0].labels, "CORP")
	})

	t.Run("pruned below three members drops", func(t *testing.T) {
		txs := payrollLedger(22, 3200)
		f := mkFinding(RingPatternSmurfing, 50, PatternFanOut, "HUB", "CORP", "X")
		kept := eng.suppressFalsePositives([]finding{f}, buildProfiles(txs))
		assert.Empty(t, kept)
	})
}

func TestCoefficientOfVariation(t *testing.T) {
	t.Run("uniform samples", func(t *testing.T) {
		cv, ok := coefficientOfVariation([]float64{100, 100, 100})
		require.True(t, ok)
		assert.Zero(t, cv)
	})

	t.Run("spread samples", func(t *testing.T) {
		cv, ok := coefficientOfVariation([]float64{50, 150})
		require.True(t, ok)
		assert.InDelta(t, 0.5, cv, 0.001)
	})

	t.Run("undefined cases", func(t *testing.T) {
		_, ok := coefficientOfVariation([]float64{100})
		assert.False(t, ok)
		_, ok = coefficientOfVariation(nil)
		assert.False(t, ok)
		_, ok = coefficientOfVariation([]float64{100, -100})
		assert.False(t, ok)
	})
}
