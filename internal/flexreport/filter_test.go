package flexreport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flexquery-dev/flexquery/internal/model"
)

func day(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestFilterRecordsInclusiveBounds(t *testing.T) {
	records := []model.TransactionRecord{
		{Symbol: "before", DateTime: day(2025, 1, 31)},
		{Symbol: "start", DateTime: day(2025, 2, 1)},
		{Symbol: "inside", DateTime: time.Date(2025, 2, 15, 23, 59, 59, 0, time.UTC)},
		{Symbol: "end", DateTime: time.Date(2025, 2, 28, 18, 0, 0, 0, time.UTC)},
		{Symbol: "after", DateTime: day(2025, 3, 1)},
	}

	got := FilterRecords(records, day(2025, 2, 1), day(2025, 2, 28), false)

	require.Len(t, got, 3)
	assert.Equal(t, "start", got[0].Symbol)
	assert.Equal(t, "inside", got[1].Symbol)
	assert.Equal(t, "end", got[2].Symbol, "time of day on the end date does not exclude the record")
}

func TestFilterRecordsPreservesOrderAndInput(t *testing.T) {
	records := []model.TransactionRecord{
		{Symbol: "a", DateTime: day(2025, 1, 2)},
		{Symbol: "b", DateTime: day(2025, 6, 2)},
		{Symbol: "c", DateTime: day(2025, 1, 3)},
		{Symbol: "d", DateTime: day(2025, 1, 4)},
	}

	got := FilterRecords(records, day(2025, 1, 1), day(2025, 1, 31), false)

	require.Len(t, got, 3)
	assert.Equal(t, []string{"a", "c", "d"}, []string{got[0].Symbol, got[1].Symbol, got[2].Symbol})
	assert.Len(t, records, 4, "input is untouched")
}

func TestFilterRecordsIdempotent(t *testing.T) {
	records := []model.TransactionRecord{
		{Symbol: "a", DateTime: day(2025, 1, 2)},
		{Symbol: "b", DateTime: day(2025, 2, 2), Category: model.CategoryDeposit},
		{Symbol: "c", DateTime: day(2025, 1, 3)},
	}

	once := FilterRecords(records, day(2025, 1, 1), day(2025, 1, 31), true)
	twice := FilterRecords(once, day(2025, 1, 1), day(2025, 1, 31), true)
	assert.Equal(t, once, twice)
}

func TestFilterRecordsExcludeCashMovements(t *testing.T) {
	records := []model.TransactionRecord{
		{Symbol: "deposit", DateTime: day(2025, 1, 2), Category: model.CategoryDeposit},
		{Symbol: "trade", DateTime: day(2025, 1, 3), Category: model.CategoryBuy},
		{Symbol: "withdrawal", DateTime: day(2025, 1, 4), Category: model.CategoryWithdrawal},
		{Symbol: "dividend", DateTime: day(2025, 1, 5), Category: model.CategoryDividend},
	}

	got := FilterRecords(records, day(2025, 1, 1), day(2025, 1, 31), true)

	require.Len(t, got, 2)
	assert.Equal(t, "trade", got[0].Symbol)
	assert.Equal(t, "dividend", got[1].Symbol)
}

func TestFilterRecordsEmptyResult(t *testing.T) {
	records := []model.TransactionRecord{
		{Symbol: "a", DateTime: day(2025, 6, 1)},
	}
	got := FilterRecords(records, day(2024, 1, 1), day(2024, 12, 31), false)
	assert.Empty(t, got)
}

func TestFilterStatementRoundTrip(t *testing.T) {
	// Filtering the document to the full original range and extracting must
	// match direct extraction.
	doc, err := Parse([]byte(sampleStatement))
	require.NoError(t, err)

	direct, err := Records(doc)
	require.NoError(t, err)

	filtered := FilterStatement(doc, day(2025, 1, 1), day(2025, 12, 31), false)
	viaFilter, err := Records(filtered)
	require.NoError(t, err)

	assert.Equal(t, direct, viaFilter)
}

func TestFilterStatement(t *testing.T) {
	doc, err := Parse([]byte(sampleStatement))
	require.NoError(t, err)

	filtered := FilterStatement(doc, day(2025, 3, 1), day(2025, 4, 30), true)

	require.Len(t, filtered.FlexStatements.Statements, 1)
	stmt := filtered.FlexStatements.Statements[0]
	assert.Empty(t, stmt.Trades)
	require.Len(t, stmt.CashTransactions, 2)
	assert.Equal(t, "Dividends", stmt.CashTransactions[0].Type)
	assert.Equal(t, "Broker Interest Received", stmt.CashTransactions[1].Type)

	// Original document is untouched.
	assert.Len(t, doc.FlexStatements.Statements[0].Trades, 2)
	assert.Len(t, doc.FlexStatements.Statements[0].CashTransactions, 5)

	// The filtered copy still round-trips through XML.
	body, err := Marshal(filtered)
	require.NoError(t, err)
	reparsed, err := Parse(body)
	require.NoError(t, err)
	assert.Equal(t, "U1234567", reparsed.FlexStatements.Statements[0].AccountID)
}
