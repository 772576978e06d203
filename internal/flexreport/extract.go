package flexreport

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/flexquery-dev/flexquery/internal/model"
)

// ErrMalformedReport means the body was detected as XML but is not a
// well-formed statement document. Fatal, not retryable.
var ErrMalformedReport = errors.New("malformed report")

// SchemaViolationError reports a statement element missing (or carrying an
// unparseable) required field. Extraction is all-or-nothing, so one violation
// fails the whole sequence.
type SchemaViolationError struct {
	Element string // "Trade" or "CashTransaction"
	Index   int    // position within the element's section
	Field   string
}

func (e *SchemaViolationError) Error() string {
	return fmt.Sprintf("%s[%d]: missing or invalid required field %q", e.Element, e.Index, e.Field)
}

// Statement date layouts: date-only, and date with a semicolon time part.
const (
	dateLayout     = "20060102"
	dateTimeLayout = "20060102;150405"
)

// Parse decodes XML statement bytes into a document.
func Parse(data []byte) (*FlexQueryResponse, error) {
	var doc FlexQueryResponse
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReport, err)
	}
	return &doc, nil
}

// Records walks every statement's Trades and CashTransactions sections in
// document order and returns a flat record sequence. Either the full sequence
// is produced or a *SchemaViolationError is returned; there is no partial
// success.
func Records(doc *FlexQueryResponse) ([]model.TransactionRecord, error) {
	var records []model.TransactionRecord
	for _, stmt := range doc.FlexStatements.Statements {
		for i, trade := range stmt.Trades {
			rec, err := tradeRecord(stmt, trade, i)
			if err != nil {
				return nil, err
			}
			records = append(records, rec)
		}
		for i, cash := range stmt.CashTransactions {
			rec, err := cashRecord(stmt, cash, i)
			if err != nil {
				return nil, err
			}
			records = append(records, rec)
		}
	}
	return records, nil
}

func tradeRecord(stmt FlexStatement, t Trade, index int) (model.TransactionRecord, error) {
	violation := func(field string) (model.TransactionRecord, error) {
		return model.TransactionRecord{}, &SchemaViolationError{Element: "Trade", Index: index, Field: field}
	}

	if t.Symbol == "" {
		return violation("symbol")
	}
	if t.Currency == "" {
		return violation("currency")
	}

	date, err := parseStatementTime(t.TradeDate)
	if err != nil {
		return violation("tradeDate")
	}
	quantity, err := parseDecimal(t.Quantity)
	if err != nil {
		return violation("quantity")
	}
	price, err := parseDecimal(t.TradePrice)
	if err != nil {
		return violation("tradePrice")
	}
	money, err := parseDecimal(t.TradeMoney)
	if err != nil {
		return violation("tradeMoney")
	}

	var category model.Category
	switch t.BuySell {
	case "BUY":
		category = model.CategoryBuy
	case "SELL":
		category = model.CategorySell
	case "":
		return violation("buySell")
	default:
		// Cancellations and corrections ("BUY (Ca.)") stay in the sequence
		// but never map to an importable row.
		category = model.CategoryOther
	}

	// Normalize the sign so buys are outflows and sells inflows, whatever
	// convention the statement used for tradeMoney.
	amount := money.Abs()
	if category == model.CategoryBuy {
		amount = amount.Neg()
	}
	if category == model.CategoryOther {
		amount = money
	}

	// Commission and taxes are optional on trades; default to zero.
	fee, err := parseOptionalDecimal(t.IBCommission)
	if err != nil {
		return violation("ibCommission")
	}
	tax, err := parseOptionalDecimal(t.Taxes)
	if err != nil {
		return violation("taxes")
	}

	accountID := t.AccountID
	if accountID == "" {
		accountID = stmt.AccountID
	}

	return model.TransactionRecord{
		Kind:        model.KindTrade,
		AccountID:   accountID,
		Symbol:      t.Symbol,
		Description: t.Description,
		ISIN:        t.ISIN,
		DateTime:    date,
		Quantity:    quantity,
		Price:       price,
		Amount:      amount,
		Fee:         fee,
		Tax:         tax,
		Currency:    t.Currency,
		Category:    category,
	}, nil
}

func cashRecord(stmt FlexStatement, c CashTransaction, index int) (model.TransactionRecord, error) {
	violation := func(field string) (model.TransactionRecord, error) {
		return model.TransactionRecord{}, &SchemaViolationError{Element: "CashTransaction", Index: index, Field: field}
	}

	if c.Type == "" {
		return violation("type")
	}
	if c.Currency == "" {
		return violation("currency")
	}

	date, err := parseStatementTime(c.DateTime)
	if err != nil {
		return violation("dateTime")
	}
	amount, err := parseDecimal(c.Amount)
	if err != nil {
		return violation("amount")
	}

	accountID := c.AccountID
	if accountID == "" {
		accountID = stmt.AccountID
	}

	symbol := c.Symbol
	if symbol == "" {
		symbol = c.Description
	}

	return model.TransactionRecord{
		Kind:        model.KindCash,
		AccountID:   accountID,
		Symbol:      symbol,
		Description: c.Description,
		ISIN:        c.ISIN,
		DateTime:    date,
		Amount:      amount,
		Currency:    c.Currency,
		Category:    cashCategory(c.Type, amount),
	}, nil
}

// cashCategory maps the statement's cash transaction type strings onto the
// closed category set. Deposits/Withdrawals share one type string and split
// by sign.
func cashCategory(typ string, amount decimal.Decimal) model.Category {
	switch typ {
	case "Dividends", "Payment In Lieu Of Dividends":
		return model.CategoryDividend
	case "Broker Interest Received", "Broker Interest Paid", "Credit Interest", "Debit Interest":
		return model.CategoryInterest
	case "Deposits/Withdrawals", "Deposits & Withdrawals":
		if amount.IsNegative() {
			return model.CategoryWithdrawal
		}
		return model.CategoryDeposit
	case "Other Fees", "Commission Adjustments":
		return model.CategoryFee
	case "Withholding Tax", "Transaction Tax":
		return model.CategoryTax
	default:
		return model.CategoryOther
	}
}

// parseStatementTime accepts YYYYMMDD with an optional ;HHMMSS time part.
func parseStatementTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if strings.Contains(s, ";") {
		return time.Parse(dateTimeLayout, s)
	}
	return time.Parse(dateLayout, s)
}

func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Decimal{}, fmt.Errorf("empty decimal")
	}
	return decimal.NewFromString(s)
}

func parseOptionalDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Decimal{}, nil
	}
	return decimal.NewFromString(s)
}
