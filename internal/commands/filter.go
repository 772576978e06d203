package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/flexquery-dev/flexquery/internal/config"
	"github.com/flexquery-dev/flexquery/internal/flexreport"
	"github.com/flexquery-dev/flexquery/internal/model"
)

const flagDateFormat = "2006-01-02"

func newFilterCommand(loadConfig configLoader) *cobra.Command {
	var startStr, endStr string
	var excludeCash bool
	var output string

	cmd := &cobra.Command{
		Use:   "filter <statement.xml>",
		Short: "Keep only transactions inside a date range",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadConfig(); err != nil {
				return err
			}

			start, end, err := resolveDateRange(startStr, endStr)
			if err != nil {
				return err
			}
			return runFilter(args[0], output, start, end, excludeCash)
		},
	}

	cmd.Flags().StringVar(&startStr, "start", "", "start date YYYY-MM-DD (env "+config.EnvStartDate+")")
	cmd.Flags().StringVar(&endStr, "end", "", "end date YYYY-MM-DD (env "+config.EnvEndDate+")")
	cmd.Flags().BoolVar(&excludeCash, "exclude-cash", false, "drop deposits and withdrawals")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path for the filtered XML")

	return cmd
}

func resolveDateRange(startStr, endStr string) (time.Time, time.Time, error) {
	if startStr == "" {
		startStr = os.Getenv(config.EnvStartDate)
	}
	if endStr == "" {
		endStr = os.Getenv(config.EnvEndDate)
	}
	if startStr == "" || endStr == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("both --start and --end are required")
	}

	start, err := time.Parse(flagDateFormat, startStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parsing start date %q: %w", startStr, err)
	}
	end, err := time.Parse(flagDateFormat, endStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parsing end date %q: %w", endStr, err)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end date %s is before start date %s", endStr, startStr)
	}
	return start, end, nil
}

func runFilter(input, output string, start, end time.Time, excludeCash bool) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("reading statement: %w", err)
	}

	doc, err := flexreport.Parse(data)
	if err != nil {
		return err
	}

	filtered := flexreport.FilterStatement(doc, start, end, excludeCash)

	if output == "" {
		output = filteredPath(input, start, end)
	}
	body, err := flexreport.Marshal(filtered)
	if err != nil {
		return fmt.Errorf("rendering filtered statement: %w", err)
	}
	if err := os.WriteFile(output, body, 0o644); err != nil {
		return fmt.Errorf("writing filtered statement: %w", err)
	}

	records, err := flexreport.Records(filtered)
	if err != nil {
		return err
	}
	printRecords(os.Stdout, records)
	fmt.Println(output)
	return nil
}

// filteredPath derives the output name from the input's report number prefix:
// 123456_20250923_statement.xml -> 123456_20250101-20250630_statement.xml.
func filteredPath(input string, start, end time.Time) string {
	base := filepath.Base(input)
	reportNumber := strings.SplitN(base, "_", 2)[0]
	name := fmt.Sprintf("%s_%s-%s_statement.xml",
		reportNumber, start.Format("20060102"), end.Format("20060102"))
	return filepath.Join(filepath.Dir(input), name)
}

// printRecords renders surviving records as an aligned console table.
func printRecords(w io.Writer, records []model.TransactionRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "no transactions in range")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tKIND\tCATEGORY\tSYMBOL\tQUANTITY\tAMOUNT\tCURRENCY")
	for _, r := range records {
		quantity := ""
		if r.Kind == model.KindTrade {
			quantity = r.Quantity.String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.DateTime.Format(flagDateFormat), r.Kind, r.Category, r.Symbol,
			quantity, r.Amount.StringFixed(2), r.Currency)
	}
	tw.Flush()
}
