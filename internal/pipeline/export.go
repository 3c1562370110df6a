package pipeline

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"stockdiff/internal"
	"stockdiff/internal/util"
)

const (
	differencesSheet = "Differences"
	summarySheet     = "Summary"
)

// ExportReport writes the discrepancies as .csv or, for any other extension,
// as an .xlsx workbook.
func ExportReport(report Report, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	if strings.EqualFold(filepath.Ext(outputPath), ".csv") {
		return ExportCSV(report, outputPath)
	}
	return ExportXLSX(report, outputPath)
}

func ReportHeaders(report Report) []string {
	key := "EAN"
	if report.KeyKind == internal.KeyItem {
		key = "Item"
	}
	return []string{
		key, "Description", "Item Code",
		"Stock_" + report.SourceLabel, "Stock_" + report.TargetLabel,
		"Difference", "Presence",
	}
}

// ReportRows renders records as text, in report order.
func ReportRows(report Report) [][]string {
	out := make([][]string, 0, len(report.Records))
	for _, rec := range report.Records {
		out = append(out, []string{
			rec.Key,
			util.DerefString(rec.Description),
			util.DerefString(rec.ItemCode),
			rec.QuantitySource.String(),
			rec.QuantityTarget.String(),
			rec.Difference.String(),
			PresenceLabel(report, rec.Presence),
		})
	}
	return out
}

func PresenceLabel(report Report, p internal.Presence) string {
	switch p {
	case internal.OnlyInSource:
		return "Only in " + report.SourceLabel
	case internal.OnlyInTarget:
		return "Only in " + report.TargetLabel
	default:
		return "Both"
	}
}

func ExportCSV(report Report, outputPath string) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(ReportHeaders(report)); err != nil {
		return err
	}
	if err := w.WriteAll(ReportRows(report)); err != nil {
		return err
	}
	return f.Close()
}

func ExportXLSX(report Report, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), differencesSheet); err != nil {
		return err
	}
	for i, h := range ReportHeaders(report) {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(differencesSheet, cell, h)
	}

	for i, rec := range report.Records {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(differencesSheet, cell, value)
		}
		// numeric cells holding the exact decimal text
		setNumber := func(col int, value decimal.Decimal) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellDefault(differencesSheet, cell, value.String())
		}

		// keys stay text so leading zeros survive
		set(1, rec.Key)
		set(2, util.DerefString(rec.Description))
		set(3, util.DerefString(rec.ItemCode))
		setNumber(4, rec.QuantitySource)
		setNumber(5, rec.QuantityTarget)
		setNumber(6, rec.Difference)
		set(7, PresenceLabel(report, rec.Presence))
	}
	if err := f.SetPanes(differencesSheet, &excelize.Panes{
		Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
	}); err != nil {
		return err
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}
	s := report.Summary
	summary := [][]any{
		{"run_id", report.RunID},
		{"source_file", report.SourceName},
		{"target_file", report.TargetName},
		{"key", string(report.KeyKind)},
		{"source_key_column", report.SourceColumns.Key.Name},
		{"source_qty_column", report.SourceColumns.Quantity.Name},
		{"target_key_column", report.TargetColumns.Key.Name},
		{"target_qty_column", report.TargetColumns.Quantity.Name},
		{"source_rows", s.SourceRows},
		{"target_rows", s.TargetRows},
		{"missing_keys", s.MissingKeys},
		{"excluded", s.Excluded},
		{"invalid_quantities", s.InvalidQuantities},
		{"duplicate_keys", s.DuplicateKeys},
		{"matched", s.Matched},
		{"mismatched", s.Mismatched},
		{"only_in_source", s.OnlyInSource},
		{"only_in_target", s.OnlyInTarget},
	}
	for i, row := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		_ = f.SetSheetRow(summarySheet, cell, &row)
	}

	return f.SaveAs(outputPath)
}
