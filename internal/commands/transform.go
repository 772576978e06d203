package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/flexquery-dev/flexquery/internal/flexreport"
	"github.com/flexquery-dev/flexquery/internal/parqet"
)

func newTransformCommand(loadConfig configLoader) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "transform <statement.xml>",
		Short: "Convert an XML statement to Parqet import CSVs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadConfig(); err != nil {
				return err
			}
			return runTransform(args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output CSV path (default: input with .csv extension)")

	return cmd
}

func runTransform(input, output string) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("reading statement: %w", err)
	}

	doc, err := flexreport.Parse(data)
	if err != nil {
		return err
	}
	records, err := flexreport.Records(doc)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		slog.Warn("no transactions found in statement", "input", input)
		return nil
	}

	res := parqet.ToParqetRows(records)
	for _, skipped := range res.Skipped {
		slog.Warn("skipping record with no Parqet mapping",
			"index", skipped.Index, "symbol", skipped.Symbol, "category", skipped.Category)
	}

	if output == "" {
		output = strings.TrimSuffix(input, ".xml") + ".csv"
	}
	cashOutput := strings.TrimSuffix(output, ".csv") + "_cash.csv"

	if len(res.SecurityRows) > 0 {
		if err := writeCSV(output, res.SecurityRows, parqet.WriteSecurityRows); err != nil {
			return err
		}
		slog.Info("security rows written", "path", output, "rows", len(res.SecurityRows))
		fmt.Println(output)
	}
	if len(res.CashRows) > 0 {
		if err := writeCSV(cashOutput, res.CashRows, parqet.WriteCashRows); err != nil {
			return err
		}
		slog.Info("cash rows written", "path", cashOutput, "rows", len(res.CashRows))
		fmt.Println(cashOutput)
	}

	slog.Info("transform complete",
		"security_rows", len(res.SecurityRows),
		"cash_rows", len(res.CashRows),
		"skipped", len(res.Skipped))
	return nil
}

func writeCSV(path string, rows []parqet.Row, write func(w io.Writer, rows []parqet.Row) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if err := write(f, rows); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
