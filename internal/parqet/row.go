// Package parqet maps transaction records onto the Parqet import schema:
// semicolon-delimited CSV, comma as the decimal separator, and two output
// partitions (security rows and cash rows).
package parqet

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/flexquery-dev/flexquery/internal/model"
)

// RowType is the Parqet transaction type.
type RowType string

const (
	TypeBuy         RowType = "Buy"
	TypeSell        RowType = "Sell"
	TypeDividend    RowType = "Dividend"
	TypeInterest    RowType = "Interest"
	TypeTransferIn  RowType = "TransferIn"
	TypeTransferOut RowType = "TransferOut"
)

// typeByCategory is the closed mapping from record categories to Parqet
// types. Categories absent here (fee, tax, other) have no importable
// representation and are reported as skipped.
var typeByCategory = map[model.Category]RowType{
	model.CategoryBuy:        TypeBuy,
	model.CategorySell:       TypeSell,
	model.CategoryDividend:   TypeDividend,
	model.CategoryInterest:   TypeInterest,
	model.CategoryDeposit:    TypeTransferIn,
	model.CategoryWithdrawal: TypeTransferOut,
}

// Row is one line of a Parqet import CSV. Shares and Price are only
// meaningful on security rows; Holding is the ISIN and stays blank on cash
// rows.
type Row struct {
	DateTime time.Time
	Type     RowType
	Holding  string
	Shares   decimal.Decimal
	Price    decimal.Decimal
	Amount   decimal.Decimal
	Currency string
	Fee      decimal.Decimal
	Tax      decimal.Decimal
}

// UnsupportedCategoryError reports a record whose category has no Parqet
// mapping. Per-record and non-fatal: the transformer accumulates these and
// keeps converting.
type UnsupportedCategoryError struct {
	Index    int
	Symbol   string
	Category model.Category
}

func (e *UnsupportedCategoryError) Error() string {
	return fmt.Sprintf("record %d (%s): no Parqet mapping for category %q", e.Index, e.Symbol, e.Category)
}

// amountString renders a signed amount with two fractional digits and a
// comma separator, e.g. "-500,00".
func amountString(d decimal.Decimal) string {
	return strings.ReplaceAll(d.StringFixed(2), ".", ",")
}

// decimalString renders a decimal with its natural precision and a comma
// separator, e.g. "10" or "2,5".
func decimalString(d decimal.Decimal) string {
	return strings.ReplaceAll(d.String(), ".", ",")
}
