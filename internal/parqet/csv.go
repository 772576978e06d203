package parqet

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Parqet import files are semicolon-delimited.
const delimiter = ';'

// SecurityHeader is the CSV header for the security-row file.
const SecurityHeader = "date;time;type;holding;shares;price;amount;currency;fee;tax"

// CashHeader is the CSV header for the cash-row file.
const CashHeader = "date;time;type;amount;currency;fee;tax"

const (
	securityNumFields = 10
	secColDate        = 0
	secColTime        = 1
	secColType        = 2
	secColHolding     = 3
	secColShares      = 4
	secColPrice       = 5
	secColAmount      = 6
	secColCurrency    = 7
	secColFee         = 8
	secColTax         = 9
)

const (
	cashNumFields   = 7
	cashColDate     = 0
	cashColTime     = 1
	cashColType     = 2
	cashColAmount   = 3
	cashColCurrency = 4
	cashColFee      = 5
	cashColTax      = 6
)

const (
	dateFormat = "2006-01-02"
	timeFormat = "15:04:05"
)

// MarshalSecurityRow converts a security Row to a CSV record.
func MarshalSecurityRow(r Row) []string {
	row := make([]string, securityNumFields)
	row[secColDate] = r.DateTime.Format(dateFormat)
	row[secColTime] = r.DateTime.Format(timeFormat)
	row[secColType] = string(r.Type)
	row[secColHolding] = r.Holding
	if !r.Shares.IsZero() {
		row[secColShares] = decimalString(r.Shares)
	}
	if !r.Price.IsZero() {
		row[secColPrice] = decimalString(r.Price)
	}
	row[secColAmount] = amountString(r.Amount)
	row[secColCurrency] = r.Currency
	row[secColFee] = amountString(r.Fee)
	row[secColTax] = amountString(r.Tax)
	return row
}

// MarshalCashRow converts a cash Row to a CSV record. Shares and price
// columns do not exist in the cash file.
func MarshalCashRow(r Row) []string {
	row := make([]string, cashNumFields)
	row[cashColDate] = r.DateTime.Format(dateFormat)
	row[cashColTime] = r.DateTime.Format(timeFormat)
	row[cashColType] = string(r.Type)
	row[cashColAmount] = amountString(r.Amount)
	row[cashColCurrency] = r.Currency
	row[cashColFee] = amountString(r.Fee)
	row[cashColTax] = amountString(r.Tax)
	return row
}

// WriteSecurityRows writes the security CSV (including header).
func WriteSecurityRows(w io.Writer, rows []Row) error {
	return writeRows(w, SecurityHeader, rows, MarshalSecurityRow)
}

// WriteCashRows writes the cash CSV (including header).
func WriteCashRows(w io.Writer, rows []Row) error {
	return writeRows(w, CashHeader, rows, MarshalCashRow)
}

func writeRows(w io.Writer, header string, rows []Row, marshal func(Row) []string) error {
	cw := csv.NewWriter(w)
	cw.Comma = delimiter
	defer cw.Flush()

	if err := cw.Write(strings.Split(header, string(delimiter))); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, row := range rows {
		if err := cw.Write(marshal(row)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}
