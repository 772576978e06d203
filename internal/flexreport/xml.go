// Package flexreport parses XML statement bodies into a structured document
// and extracts format-independent transaction records from it.
package flexreport

import "encoding/xml"

// FlexQueryResponse is the root element of an XML statement.
type FlexQueryResponse struct {
	XMLName        xml.Name       `xml:"FlexQueryResponse"`
	QueryName      string         `xml:"queryName,attr,omitempty"`
	Type           string         `xml:"type,attr,omitempty"`
	FlexStatements FlexStatements `xml:"FlexStatements"`
}

// FlexStatements wraps the per-account statements.
type FlexStatements struct {
	Count      string          `xml:"count,attr,omitempty"`
	Statements []FlexStatement `xml:"FlexStatement"`
}

// FlexStatement holds one account's trades and cash transactions.
type FlexStatement struct {
	AccountID        string            `xml:"accountId,attr,omitempty"`
	FromDate         string            `xml:"fromDate,attr,omitempty"`
	ToDate           string            `xml:"toDate,attr,omitempty"`
	Trades           []Trade           `xml:"Trades>Trade"`
	CashTransactions []CashTransaction `xml:"CashTransactions>CashTransaction"`
}

// Trade is one executed trade. All fields are XML attributes; numeric fields
// stay strings here and are decimal-parsed during extraction.
type Trade struct {
	AccountID    string `xml:"accountId,attr,omitempty"`
	TradeID      string `xml:"tradeID,attr,omitempty"`
	TradeDate    string `xml:"tradeDate,attr,omitempty"`
	Symbol       string `xml:"symbol,attr,omitempty"`
	Description  string `xml:"description,attr,omitempty"`
	ISIN         string `xml:"isin,attr,omitempty"`
	BuySell      string `xml:"buySell,attr,omitempty"`
	Quantity     string `xml:"quantity,attr,omitempty"`
	TradePrice   string `xml:"tradePrice,attr,omitempty"`
	TradeMoney   string `xml:"tradeMoney,attr,omitempty"`
	IBCommission string `xml:"ibCommission,attr,omitempty"`
	Taxes        string `xml:"taxes,attr,omitempty"`
	Cost         string `xml:"cost,attr,omitempty"`
	Currency     string `xml:"currency,attr,omitempty"`
}

// CashTransaction is one cash movement (dividend, interest, deposit, fee...).
type CashTransaction struct {
	AccountID   string `xml:"accountId,attr,omitempty"`
	DateTime    string `xml:"dateTime,attr,omitempty"`
	Type        string `xml:"type,attr,omitempty"`
	Symbol      string `xml:"symbol,attr,omitempty"`
	Description string `xml:"description,attr,omitempty"`
	ISIN        string `xml:"isin,attr,omitempty"`
	Amount      string `xml:"amount,attr,omitempty"`
	Currency    string `xml:"currency,attr,omitempty"`
}

// Marshal renders a document back to XML bytes with the standard header.
func Marshal(doc *FlexQueryResponse) ([]byte, error) {
	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}
