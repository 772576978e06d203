package flexreport

import (
	"time"

	"github.com/flexquery-dev/flexquery/internal/model"
)

// FilterRecords returns the records whose date component falls inside
// [start, end], preserving relative order. When excludeCashMovements is set,
// deposits and withdrawals are dropped regardless of date. Pure: the input
// slice is never modified.
func FilterRecords(records []model.TransactionRecord, start, end time.Time, excludeCashMovements bool) []model.TransactionRecord {
	out := make([]model.TransactionRecord, 0, len(records))
	for _, rec := range records {
		if excludeCashMovements && rec.IsCashMovement() {
			continue
		}
		if !inRange(rec.DateTime, start, end) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// FilterStatement returns a copy of doc with trades and cash transactions
// outside [start, end] removed. The document structure is otherwise
// untouched; entries without a parseable date are kept. The input document
// is not modified.
func FilterStatement(doc *FlexQueryResponse, start, end time.Time, excludeCashMovements bool) *FlexQueryResponse {
	filtered := *doc
	filtered.FlexStatements.Statements = make([]FlexStatement, len(doc.FlexStatements.Statements))

	for i, stmt := range doc.FlexStatements.Statements {
		copied := stmt

		copied.Trades = make([]Trade, 0, len(stmt.Trades))
		for _, trade := range stmt.Trades {
			if date, err := parseStatementTime(trade.TradeDate); err == nil && !inRange(date, start, end) {
				continue
			}
			copied.Trades = append(copied.Trades, trade)
		}

		copied.CashTransactions = make([]CashTransaction, 0, len(stmt.CashTransactions))
		for _, cash := range stmt.CashTransactions {
			if date, err := parseStatementTime(cash.DateTime); err == nil && !inRange(date, start, end) {
				continue
			}
			if excludeCashMovements && isCashMovementType(cash.Type) {
				continue
			}
			copied.CashTransactions = append(copied.CashTransactions, cash)
		}

		filtered.FlexStatements.Statements[i] = copied
	}
	return &filtered
}

func isCashMovementType(typ string) bool {
	return typ == "Deposits/Withdrawals" || typ == "Deposits & Withdrawals"
}

// inRange tests the date component only: time-of-day never affects the
// boundary comparison.
func inRange(t, start, end time.Time) bool {
	day := dateOnly(t)
	return !day.Before(dateOnly(start)) && !day.After(dateOnly(end))
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
