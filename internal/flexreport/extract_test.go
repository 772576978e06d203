package flexreport

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flexquery-dev/flexquery/internal/model"
)

const sampleStatement = `<FlexQueryResponse queryName="parqet" type="AF">
  <FlexStatements count="1">
    <FlexStatement accountId="U1234567" fromDate="20250101" toDate="20250630">
      <Trades>
        <Trade tradeID="1" tradeDate="20250103" symbol="VWCE" description="VANGUARD FTSE ALL-WORLD" isin="IE00BK5BQT80" buySell="BUY" quantity="10" tradePrice="115.50" tradeMoney="1155.00" ibCommission="-1.25" taxes="0" currency="EUR"/>
        <Trade tradeID="2" tradeDate="20250215" symbol="AAPL" description="APPLE INC" isin="US0378331005" buySell="SELL" quantity="-10" tradePrice="50" tradeMoney="-500.00" ibCommission="-1" taxes="0" currency="USD"/>
      </Trades>
      <CashTransactions>
        <CashTransaction dateTime="20250310;093000" type="Dividends" symbol="AAPL" description="AAPL CASH DIVIDEND" isin="US0378331005" amount="12.40" currency="USD"/>
        <CashTransaction dateTime="20250401" type="Broker Interest Received" description="EUR CREDIT INT" amount="3.21" currency="EUR"/>
        <CashTransaction dateTime="20250415" type="Deposits/Withdrawals" description="CASH RECEIPT" amount="1000" currency="EUR"/>
        <CashTransaction dateTime="20250420" type="Deposits/Withdrawals" description="DISBURSEMENT" amount="-250" currency="EUR"/>
        <CashTransaction dateTime="20250502" type="Other Fees" description="MARKET DATA FEE" amount="-4.50" currency="EUR"/>
      </CashTransactions>
    </FlexStatement>
  </FlexStatements>
</FlexQueryResponse>`

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func mustRecords(t *testing.T, xml string) []model.TransactionRecord {
	t.Helper()
	doc, err := Parse([]byte(xml))
	require.NoError(t, err)
	records, err := Records(doc)
	require.NoError(t, err)
	return records
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse([]byte(`<FlexQueryResponse><FlexStatements>`))
	require.ErrorIs(t, err, ErrMalformedReport)
}

func TestRecords(t *testing.T) {
	records := mustRecords(t, sampleStatement)
	require.Len(t, records, 7)

	buy := records[0]
	assert.Equal(t, model.KindTrade, buy.Kind)
	assert.Equal(t, model.CategoryBuy, buy.Category)
	assert.Equal(t, "U1234567", buy.AccountID)
	assert.Equal(t, "VWCE", buy.Symbol)
	assert.Equal(t, "IE00BK5BQT80", buy.ISIN)
	assert.Equal(t, time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC), buy.DateTime)
	assert.True(t, buy.Quantity.Equal(dec("10")))
	assert.True(t, buy.Price.Equal(dec("115.50")))
	assert.True(t, buy.Amount.Equal(dec("-1155.00")), "buys are outflows: %s", buy.Amount)
	assert.True(t, buy.Fee.Equal(dec("-1.25")))
	assert.Equal(t, "EUR", buy.Currency)

	sell := records[1]
	assert.Equal(t, model.CategorySell, sell.Category)
	assert.True(t, sell.Amount.Equal(dec("500.00")), "sells are inflows: %s", sell.Amount)

	dividend := records[2]
	assert.Equal(t, model.KindCash, dividend.Kind)
	assert.Equal(t, model.CategoryDividend, dividend.Category)
	assert.Equal(t, time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC), dividend.DateTime, "time part after semicolon is parsed")
	assert.True(t, dividend.Amount.Equal(dec("12.40")))

	assert.Equal(t, model.CategoryInterest, records[3].Category)
	assert.Equal(t, model.CategoryDeposit, records[4].Category)
	assert.Equal(t, model.CategoryWithdrawal, records[5].Category, "negative funding movements are withdrawals")
	assert.Equal(t, model.CategoryFee, records[6].Category)
}

func TestRecordsMissingTradeDate(t *testing.T) {
	const broken = `<FlexQueryResponse>
  <FlexStatements count="1">
    <FlexStatement accountId="U1">
      <Trades>
        <Trade tradeID="1" symbol="VWCE" buySell="BUY" quantity="10" tradePrice="115.50" tradeMoney="1155" currency="EUR"/>
      </Trades>
    </FlexStatement>
  </FlexStatements>
</FlexQueryResponse>`

	doc, err := Parse([]byte(broken))
	require.NoError(t, err)

	_, err = Records(doc)
	var sv *SchemaViolationError
	require.ErrorAs(t, err, &sv)
	assert.Equal(t, "Trade", sv.Element)
	assert.Equal(t, 0, sv.Index)
	assert.Equal(t, "tradeDate", sv.Field)
}

func TestRecordsMissingCashAmount(t *testing.T) {
	const broken = `<FlexQueryResponse>
  <FlexStatements count="1">
    <FlexStatement accountId="U1">
      <CashTransactions>
        <CashTransaction dateTime="20250310" type="Dividends" description="DIV" currency="USD"/>
      </CashTransactions>
    </FlexStatement>
  </FlexStatements>
</FlexQueryResponse>`

	doc, err := Parse([]byte(broken))
	require.NoError(t, err)

	_, err = Records(doc)
	var sv *SchemaViolationError
	require.ErrorAs(t, err, &sv)
	assert.Equal(t, "CashTransaction", sv.Element)
	assert.Equal(t, "amount", sv.Field)
}

func TestRecordsAllOrNothing(t *testing.T) {
	// One good trade followed by a broken one: extraction must not partially
	// succeed.
	const mixed = `<FlexQueryResponse>
  <FlexStatements count="1">
    <FlexStatement accountId="U1">
      <Trades>
        <Trade tradeID="1" tradeDate="20250103" symbol="VWCE" buySell="BUY" quantity="10" tradePrice="115.50" tradeMoney="1155" currency="EUR"/>
        <Trade tradeID="2" tradeDate="20250104" symbol="AAPL" buySell="SELL" quantity="-5" tradePrice="200" currency="USD"/>
      </Trades>
    </FlexStatement>
  </FlexStatements>
</FlexQueryResponse>`

	doc, err := Parse([]byte(mixed))
	require.NoError(t, err)

	records, err := Records(doc)
	var sv *SchemaViolationError
	require.ErrorAs(t, err, &sv)
	assert.Equal(t, 1, sv.Index)
	assert.Equal(t, "tradeMoney", sv.Field)
	assert.Nil(t, records)
}

func TestRecordsUnknownBuySellStaysOther(t *testing.T) {
	const cancelled = `<FlexQueryResponse>
  <FlexStatements count="1">
    <FlexStatement accountId="U1">
      <Trades>
        <Trade tradeID="1" tradeDate="20250103" symbol="VWCE" buySell="BUY (Ca.)" quantity="-10" tradePrice="115.50" tradeMoney="-1155" currency="EUR"/>
      </Trades>
    </FlexStatement>
  </FlexStatements>
</FlexQueryResponse>`

	records := mustRecords(t, cancelled)
	require.Len(t, records, 1)
	assert.Equal(t, model.CategoryOther, records[0].Category)
}
