package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/flexquery-dev/flexquery/internal/config"
	"github.com/flexquery-dev/flexquery/internal/history"
	"github.com/flexquery-dev/flexquery/internal/reportfile"
)

func newListCommand(loadConfig configLoader) *cobra.Command {
	var outputDir string
	var showHistory bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved statements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if outputDir != "" {
				cfg.OutputDir = outputDir
			}
			if showHistory {
				return runListHistory(cfg.OutputDir)
			}
			return runList(cfg.OutputDir)
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "output directory (env "+config.EnvOutputDir+")")
	cmd.Flags().BoolVar(&showHistory, "history", false, "show the download log instead of files")

	return cmd
}

func runList(dir string) error {
	files, err := reportfile.Scan(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("no statements saved")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSIZE")
	for _, f := range files {
		fmt.Fprintf(tw, "%s\t%d\n", f.Name, f.Size)
	}
	return tw.Flush()
}

func runListHistory(dir string) error {
	entries, err := history.Read(dir)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("no downloads recorded")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIMESTAMP\tREPORT\tFORMAT\tFILE")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			e.Timestamp.Format("2006-01-02 15:04:05"), e.ReportNumber, e.Format, e.File)
	}
	return tw.Flush()
}
