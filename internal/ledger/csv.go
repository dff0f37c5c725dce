// Package ledger loads and validates transaction ledgers from CSV. It is the
// boundary that guarantees the detection engine is never handed malformed
// records: column checks, amount and timestamp parsing all happen here.
package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ringsight/backend/internal/domain"
)

// Required ledger columns. Order in the file is free; extras are ignored.
var requiredColumns = []string{"transaction_id", "sender_id", "receiver_id", "amount", "timestamp"}

var (
	// ErrEmptyLedger indicates a CSV with a header but no data rows.
	ErrEmptyLedger = errors.New("ledger contains no transactions")
	// ErrMissingColumns indicates the header lacks required columns.
	ErrMissingColumns = errors.New("ledger is missing required columns")
)

// RowError describes a single malformed data row.
type RowError struct {
	Line   int
	Reason string
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Line, e.Reason)
}

// ParseResult carries the validated transactions plus row-level diagnostics
// from a tolerant parse.
type ParseResult struct {
	Transactions []domain.Transaction
	SkippedRows  []RowError
}

// Options controls parse behaviour.
type Options struct {
	// Strict makes any malformed row fail the whole parse. The default
	// (tolerant) mode drops malformed rows and records them in SkippedRows.
	Strict bool
}

// Parse reads and validates a CSV ledger. The header must contain exactly
// the required column set; a violation fails immediately regardless of mode.
func Parse(r io.Reader, opts Options) (ParseResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return ParseResult{}, ErrEmptyLedger
	}
	if err != nil {
		return ParseResult{}, fmt.Errorf("read header: %w", err)
	}

	columns, err := mapColumns(header)
	if err != nil {
		return ParseResult{}, err
	}

	var result ParseResult
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			// Only malformed rows are skippable; an I/O failure means the
			// rest of the stream is unreadable.
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				return ParseResult{}, fmt.Errorf("read ledger: %w", err)
			}
			rowErr := RowError{Line: line, Reason: err.Error()}
			if opts.Strict {
				return ParseResult{}, rowErr
			}
			result.SkippedRows = append(result.SkippedRows, rowErr)
			continue
		}

		tx, rowErr := parseRow(record, columns, line)
		if rowErr != nil {
			if opts.Strict {
				return ParseResult{}, *rowErr
			}
			result.SkippedRows = append(result.SkippedRows, *rowErr)
			continue
		}
		result.Transactions = append(result.Transactions, tx)
	}

	if len(result.Transactions) == 0 && len(result.SkippedRows) == 0 {
		return ParseResult{}, ErrEmptyLedger
	}

	return result, nil
}

func mapColumns(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := columns[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	return columns, nil
}

func parseRow(record []string, columns map[string]int, line int) (domain.Transaction, *RowError) {
	field := func(name string) string {
		idx := columns[name]
		if idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	sender := field("sender_id")
	receiver := field("receiver_id")
	if sender == "" || receiver == "" {
		return domain.Transaction{}, &RowError{Line: line, Reason: "empty sender_id or receiver_id"}
	}

	amountRaw := field("amount")
	amount, err := strconv.ParseFloat(amountRaw, 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return domain.Transaction{}, &RowError{Line: line, Reason: fmt.Sprintf("unparseable amount %q", amountRaw)}
	}
	if amount < 0 {
		return domain.Transaction{}, &RowError{Line: line, Reason: fmt.Sprintf("negative amount %q", amountRaw)}
	}

	tsRaw := field("timestamp")
	ts, err := parseTimestamp(tsRaw)
	if err != nil {
		return domain.Transaction{}, &RowError{Line: line, Reason: fmt.Sprintf("unparseable timestamp %q", tsRaw)}
	}

	return domain.Transaction{
		ID:         field("transaction_id"),
		SenderID:   sender,
		ReceiverID: receiver,
		Amount:     amount,
		Timestamp:  ts,
	}, nil
}

// Accepted timestamp layouts, most specific first.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseTimestamp(value string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp format %q", value)
}
