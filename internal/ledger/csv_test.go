package ledger

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validHeader = "transaction_id,sender_id,receiver_id,amount,timestamp\n"

func TestParseValidLedger(t *testing.T) {
	input := validHeader +
		"T1,ACC1,ACC2,150.50,2025-03-01T12:00:00Z\n" +
		"T2,ACC2,ACC3,99.99,2025-03-01 13:30:00\n"

	result, err := Parse(strings.NewReader(input), Options{})

	require.NoError(t, err)
	require.Len(t, result.Transactions, 2)
	assert.Empty(t, result.SkippedRows)

	first := result.Transactions[0]
	assert.Equal(t, "T1", first.ID)
	assert.Equal(t, "ACC1", first.SenderID)
	assert.Equal(t, "ACC2", first.ReceiverID)
	assert.Equal(t, 150.50, first.Amount)
	assert.Equal(t, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC), first.Timestamp)
	assert.Equal(t, time.Date(2025, 3, 1, 13, 30, 0, 0, time.UTC), result.Transactions[1].Timestamp)
}

func TestParseColumnOrderAndExtras(t *testing.T) {
	input := "timestamp,amount,notes,receiver_id,sender_id,transaction_id\n" +
		"2025-03-01T12:00:00Z,42.00,ignored,ACC2,ACC1,T1\n"

	result, err := Parse(strings.NewReader(input), Options{})

	require.NoError(t, err)
	require.Len(t, result.Transactions, 1)
	assert.Equal(t, "ACC1", result.Transactions[0].SenderID)
	assert.Equal(t, 42.0, result.Transactions[0].Amount)
}

func TestParseMissingColumns(t *testing.T) {
	input := "transaction_id,sender_id,amount\nT1,ACC1,10\n"

	_, err := Parse(strings.NewReader(input), Options{})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingColumns)
	assert.Contains(t, err.Error(), "receiver_id")
	assert.Contains(t, err.Error(), "timestamp")
}

func TestParseEmptyInput(t *testing.T) {
	t.Run("no bytes", func(t *testing.T) {
		_, err := Parse(strings.NewReader(""), Options{})
		assert.ErrorIs(t, err, ErrEmptyLedger)
	})

	t.Run("header only", func(t *testing.T) {
		_, err := Parse(strings.NewReader(validHeader), Options{})
		assert.ErrorIs(t, err, ErrEmptyLedger)
	})
}

func TestParseTolerantSkipsMalformedRows(t *testing.T) {
	input := validHeader +
		"T1,ACC1,ACC2,100,2025-03-01T12:00:00Z\n" +
		"T2,,ACC3,100,2025-03-01T12:01:00Z\n" +
		"T3,ACC1,ACC3,abc,2025-03-01T12:02:00Z\n" +
		"T4,ACC1,ACC3,-5,2025-03-01T12:03:00Z\n" +
		"T5,ACC1,ACC3,100,not-a-date\n" +
		"T6,ACC3,ACC1,25,2025-03-01T12:05:00Z\n"

	result, err := Parse(strings.NewReader(input), Options{})

	require.NoError(t, err)
	require.Len(t, result.Transactions, 2)
	assert.Equal(t, "T1", result.Transactions[0].ID)
	assert.Equal(t, "T6", result.Transactions[1].ID)

	require.Len(t, result.SkippedRows, 4)
	assert.Equal(t, 3, result.SkippedRows[0].Line)
	assert.Contains(t, result.SkippedRows[0].Reason, "sender_id")
	assert.Contains(t, result.SkippedRows[1].Reason, "amount")
	assert.Contains(t, result.SkippedRows[2].Reason, "negative")
	assert.Contains(t, result.SkippedRows[3].Reason, "timestamp")
}

func TestParseStrictFailsOnFirstBadRow(t *testing.T) {
	input := validHeader +
		"T1,ACC1,ACC2,100,2025-03-01T12:00:00Z\n" +
		"T2,ACC1,ACC2,abc,2025-03-01T12:01:00Z\n"

	_, err := Parse(strings.NewReader(input), Options{Strict: true})

	require.Error(t, err)
	var rowErr RowError
	require.True(t, errors.As(err, &rowErr))
	assert.Equal(t, 3, rowErr.Line)
	assert.Contains(t, rowErr.Reason, "amount")
}

func TestParseAllRowsMalformed(t *testing.T) {
	input := validHeader + "T1,,ACC2,100,2025-03-01T12:00:00Z\n"

	result, err := Parse(strings.NewReader(input), Options{})

	require.NoError(t, err)
	assert.Empty(t, result.Transactions)
	assert.Len(t, result.SkippedRows, 1)
}

func TestParseTimestampFormats(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Time
	}{
		{"2025-03-01T12:00:00Z", time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)},
		{"2025-03-01T12:00:00.500Z", time.Date(2025, 3, 1, 12, 0, 0, 500e6, time.UTC)},
		{"2025-03-01T14:00:00+02:00", time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)},
		{"2025-03-01 12:00:00", time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)},
		{"2025-03-01T12:00:00", time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)},
		{"2025-03-01", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			input := validHeader + "T1,ACC1,ACC2,10," + tc.raw + "\n"
			result, err := Parse(strings.NewReader(input), Options{})
			require.NoError(t, err)
			require.Len(t, result.Transactions, 1)
			assert.True(t, result.Transactions[0].Timestamp.Equal(tc.want))
		})
	}
}

func TestParseRaggedRowSkipped(t *testing.T) {
	input := validHeader +
		"T1,ACC1,ACC2,100,2025-03-01T12:00:00Z\n" +
		"T2,ACC1,ACC2\n" +
		"T3,ACC2,ACC1,50,2025-03-01T13:00:00Z\n"

	result, err := Parse(strings.NewReader(input), Options{})

	require.NoError(t, err)
	assert.Len(t, result.Transactions, 2)
	require.Len(t, result.SkippedRows, 1)
	assert.Equal(t, 3, result.SkippedRows[0].Line)
}

func TestParseZeroAmountAllowed(t *testing.T) {
	input := validHeader + "T1,ACC1,ACC2,0,2025-03-01T12:00:00Z\n"

	result, err := Parse(strings.NewReader(input), Options{})

	require.NoError(t, err)
	require.Len(t, result.Transactions, 1)
	assert.Zero(t, result.Transactions[0].Amount)
}
