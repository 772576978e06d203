package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category classifies a transaction record. The set is closed: extraction maps
// every statement entry onto exactly one of these, falling back to CategoryOther.
type Category string

const (
	CategoryBuy        Category = "buy"
	CategorySell       Category = "sell"
	CategoryDividend   Category = "dividend"
	CategoryInterest   Category = "interest"
	CategoryDeposit    Category = "deposit"
	CategoryWithdrawal Category = "withdrawal"
	CategoryFee        Category = "fee"
	CategoryTax        Category = "tax"
	CategoryOther      Category = "other"
)

// RecordKind distinguishes the two statement sections a record can come from.
type RecordKind string

const (
	KindTrade RecordKind = "trade"
	KindCash  RecordKind = "cash"
)

// TransactionRecord is the format-independent view of one statement entry,
// either a trade or a cash transaction.
type TransactionRecord struct {
	Kind        RecordKind
	AccountID   string
	Symbol      string // symbol for trades, description for cash entries
	Description string
	ISIN        string // empty when the entry has no security identifier
	DateTime    time.Time
	Quantity    decimal.Decimal // trades only
	Price       decimal.Decimal // trades only
	Amount      decimal.Decimal // signed; outflows negative
	Fee         decimal.Decimal // trades only (commission)
	Tax         decimal.Decimal // trades only
	Currency    string
	Category    Category
}

// IsCashMovement reports whether the record is a pure funding movement
// (deposit or withdrawal) rather than trading activity.
func (r TransactionRecord) IsCashMovement() bool {
	return r.Category == CategoryDeposit || r.Category == CategoryWithdrawal
}

// HasSecurity reports whether the record carries a security identifier.
func (r TransactionRecord) HasSecurity() bool {
	return r.ISIN != ""
}
