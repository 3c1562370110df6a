package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"stockdiff/internal"
	"stockdiff/internal/pipeline"
)

func (a *app) compareCmd() *cobra.Command {
	var (
		sourcePath  string
		targetPath  string
		outPath     string
		format      string
		sourceSheet string
		targetSheet string
		sourceLabel string
		targetLabel string
	)

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Report stock differences between two exports",
		Example: `  stockdiff compare --source netsuite.xlsx --target deposco.xlsx
  stockdiff compare --source ns.xlsx --target dep.xls --out out/differences.xlsx
  stockdiff compare --source ns.csv --target report.eml --format json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			outFormat, err := parseOutputFormat(format)
			if err != nil {
				return err
			}

			opts := a.cfg.Options()
			if sourceSheet != "" {
				opts.SourceSheet = sourceSheet
			}
			if targetSheet != "" {
				opts.TargetSheet = targetSheet
			}
			if sourceLabel != "" {
				opts.SourceLabel = sourceLabel
			}
			if targetLabel != "" {
				opts.TargetLabel = targetLabel
			}

			svc := pipeline.NewComparisonService(opts, a.log)
			report, err := svc.CompareFiles(sourcePath, targetPath)
			if err != nil {
				var resErr *internal.ResolutionError
				if errors.As(err, &resErr) {
					renderResolutionError(cmd, resErr, opts)
				}
				return err
			}

			if err := printReport(cmd.OutOrStdout(), report, outFormat); err != nil {
				return err
			}

			if strings.TrimSpace(outPath) != "" {
				outPath = a.exportPath(outPath)
				if err := pipeline.ExportReport(report, outPath); err != nil {
					return fmt.Errorf("export %s: %w", outPath, err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "exported %d rows to %s\n", len(report.Records), outPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sourcePath, "source", "", "source-of-record export (xlsx, csv, html/xls, eml)")
	cmd.Flags().StringVar(&targetPath, "target", "", "fulfillment system export (xlsx, csv, html/xls, eml)")
	cmd.Flags().StringVar(&outPath, "out", "", "write differences to this .xlsx or .csv file (bare names go to output_dir)")
	cmd.Flags().StringVar(&format, "format", "table", "console output (table, json, yaml)")
	cmd.Flags().StringVar(&sourceSheet, "source-sheet", "", "worksheet to read from the source workbook")
	cmd.Flags().StringVar(&targetSheet, "target-sheet", "", "worksheet to read from the target workbook")
	cmd.Flags().StringVar(&sourceLabel, "source-label", "", "name of the source system in headers")
	cmd.Flags().StringVar(&targetLabel, "target-label", "", "name of the target system in headers")
	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}

// exportPath places a bare file name under the configured output directory.
func (a *app) exportPath(out string) string {
	if filepath.IsAbs(out) || filepath.Dir(out) != "." || a.cfg.OutputDir == "" {
		return out
	}
	return filepath.Join(a.cfg.OutputDir, out)
}

func renderResolutionError(cmd *cobra.Command, err *internal.ResolutionError, opts pipeline.Options) {
	w := cmd.ErrOrStderr()
	fmt.Fprintln(w, "Could not detect the columns needed for the comparison:")
	for _, m := range err.Missing {
		label := opts.SourceLabel
		if m.Side == internal.SideTarget {
			label = opts.TargetLabel
		}
		keywords := opts.Rules.Keywords(m.Side, m.Role)
		fmt.Fprintf(w, "  - %s: no %s column (looked for: %s)\n", label, roleName(m.Role), strings.Join(keywords, ", "))
	}
	fmt.Fprintf(w, "%s columns: %s\n", opts.SourceLabel, strings.Join(err.SourceColumns, ", "))
	fmt.Fprintf(w, "%s columns: %s\n", opts.TargetLabel, strings.Join(err.TargetColumns, ", "))
}

func roleName(role internal.ColumnRole) string {
	switch role {
	case internal.RoleIdentifier:
		return "EAN"
	case internal.RoleSecondaryIdentifier:
		return "item number"
	case internal.RoleQuantity:
		return "stock quantity"
	case internal.RoleDescription:
		return "description"
	default:
		return string(role)
	}
}
