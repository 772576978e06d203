package parqet

import (
	"github.com/flexquery-dev/flexquery/internal/model"
)

// Result holds the two output partitions plus the records the transformer
// could not map. Skipped entries are diagnostics, not failures.
type Result struct {
	SecurityRows []Row
	CashRows     []Row
	Skipped      []*UnsupportedCategoryError
}

// ToParqetRows converts records into Parqet rows, partitioning them into
// security and cash rows. Buy, Sell, and Dividend records (and anything else
// carrying an ISIN) become security rows; interest and funding movements
// become cash rows. Records with no category mapping are skipped and
// accumulated in Result.Skipped. Relative order is preserved within each
// partition.
func ToParqetRows(records []model.TransactionRecord) Result {
	var res Result
	for i, rec := range records {
		typ, ok := typeByCategory[rec.Category]
		if !ok {
			res.Skipped = append(res.Skipped, &UnsupportedCategoryError{
				Index:    i,
				Symbol:   rec.Symbol,
				Category: rec.Category,
			})
			continue
		}

		row := Row{
			DateTime: rec.DateTime,
			Type:     typ,
			Amount:   rec.Amount,
			Currency: rec.Currency,
			Fee:      rec.Fee.Abs(),
			Tax:      rec.Tax.Abs(),
		}

		if isSecurityRow(typ, rec) {
			row.Holding = rec.ISIN
			row.Shares = rec.Quantity.Abs()
			row.Price = rec.Price
			res.SecurityRows = append(res.SecurityRows, row)
		} else {
			res.CashRows = append(res.CashRows, row)
		}
	}
	return res
}

// isSecurityRow decides the output partition: instrument-linked types always
// go to the security file, as does any record with a security identifier.
func isSecurityRow(typ RowType, rec model.TransactionRecord) bool {
	switch typ {
	case TypeBuy, TypeSell, TypeDividend:
		return true
	}
	return rec.HasSecurity()
}
